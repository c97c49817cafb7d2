package validation_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/Vishwas132/university-admin-panel/internal/apperr"
	"github.com/Vishwas132/university-admin-panel/internal/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type signup struct {
	Name           string   `json:"name" validate:"required,min=2,max=50"`
	Email          string   `json:"email" validate:"required,email"`
	Password       string   `json:"password" validate:"required,min=6,max=50,bcrypt_len,password_strength"`
	PhoneNumber    string   `json:"phoneNumber" validate:"omitempty,phone"`
	Qualifications []string `json:"qualifications" validate:"omitempty,min=1,dive,notblank"`
	Gender         string   `json:"gender" validate:"omitempty,oneof=male female other"`
}

func fieldMessages(t *testing.T, err error) map[string]string {
	t.Helper()
	require.Error(t, err)
	require.True(t, errors.Is(err, apperr.ErrValidation))

	out := map[string]string{}
	for _, f := range apperr.Fields(err) {
		out[f.Field] = f.Message
	}
	return out
}

func TestStruct_Valid(t *testing.T) {
	v := validation.New()

	err := v.Struct(signup{
		Name:           "Alice",
		Email:          "alice@example.com",
		Password:       "Abc123",
		PhoneNumber:    "+1 555-123-4567",
		Qualifications: []string{"BSc"},
		Gender:         "female",
	})

	assert.NoError(t, err)
}

func TestStruct_FieldMessages(t *testing.T) {
	v := validation.New()

	msgs := fieldMessages(t, v.Struct(signup{
		Name:        "A",
		Email:       "not-an-email",
		Password:    "abcdef",
		PhoneNumber: "12",
		Gender:      "unknown",
	}))

	assert.Equal(t, "Name must be at least 2 characters", msgs["name"])
	assert.Equal(t, "Invalid email format", msgs["email"])
	assert.Equal(t, "Password must contain at least one uppercase letter, one lowercase letter, and one number", msgs["password"])
	assert.Equal(t, "Invalid phone number format", msgs["phoneNumber"])
	assert.Equal(t, "Gender must be one of: male, female, other", msgs["gender"])
}

func TestStruct_Required(t *testing.T) {
	v := validation.New()

	msgs := fieldMessages(t, v.Struct(signup{}))

	assert.Equal(t, "Name is required", msgs["name"])
	assert.Equal(t, "Email is required", msgs["email"])
	assert.Equal(t, "Password is required", msgs["password"])
}

func TestStrongPassword(t *testing.T) {
	assert.True(t, validation.StrongPassword("Abc123"))
	assert.False(t, validation.StrongPassword("abc123"))
	assert.False(t, validation.StrongPassword("ABC123"))
	assert.False(t, validation.StrongPassword("Abcdef"))
}

func TestStruct_PasswordByteLimit(t *testing.T) {
	v := validation.New()

	// 50 runes but 97 bytes.
	pw := "Aa1" + strings.Repeat("ü", 47)
	require.Len(t, []rune(pw), 50)

	msgs := fieldMessages(t, v.Struct(signup{
		Name:     "Alice",
		Email:    "alice@example.com",
		Password: pw,
	}))

	assert.Equal(t, "Password must be at most 72 bytes", msgs["password"])
}

func TestStruct_BlankQualification(t *testing.T) {
	v := validation.New()

	msgs := fieldMessages(t, v.Struct(signup{
		Name:           "Alice",
		Email:          "alice@example.com",
		Password:       "Abc123",
		Qualifications: []string{"BSc", "  "},
	}))

	assert.Equal(t, "Qualifications must not be blank", msgs["qualifications[1]"])
}
