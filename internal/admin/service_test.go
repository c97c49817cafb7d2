package admin_test

import (
	"context"
	"errors"
	"testing"

	"github.com/Vishwas132/university-admin-panel/internal/admin"
	"github.com/Vishwas132/university-admin-panel/internal/apperr"
	"github.com/Vishwas132/university-admin-panel/internal/logger"
	"github.com/Vishwas132/university-admin-panel/internal/password"
	"github.com/Vishwas132/university-admin-panel/internal/testutil/memstore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newService(t *testing.T) (*admin.Service, *memstore.Admins, *password.Hasher) {
	t.Helper()
	repo := memstore.NewAdmins()
	hasher := password.NewHasher(bcrypt.MinCost)
	return admin.NewService(repo, hasher, logger.Discard()), repo, hasher
}

func seedAdmin(t *testing.T, repo *memstore.Admins, hasher *password.Hasher, email string) *admin.Admin {
	t.Helper()
	hash, err := hasher.Hash("Abc123")
	require.NoError(t, err)
	a := &admin.Admin{Name: "Ada Admin", Email: email, PasswordHash: hash}
	require.NoError(t, repo.Create(context.Background(), a))
	return a
}

func strPtr(s string) *string { return &s }

func TestUpdateProfile(t *testing.T) {
	svc, repo, hasher := newService(t)
	a := seedAdmin(t, repo, hasher, "a@x.com")
	seedAdmin(t, repo, hasher, "taken@x.com")

	t.Run("name and email", func(t *testing.T) {
		updated, err := svc.UpdateProfile(context.Background(), a.ID, admin.UpdateProfileRequest{
			Name:  strPtr("  Ada Lovelace "),
			Email: strPtr("ADA@X.com"),
		})
		require.NoError(t, err)
		assert.Equal(t, "Ada Lovelace", updated.Name)
		assert.Equal(t, "ada@x.com", updated.Email)
	})

	t.Run("email in use", func(t *testing.T) {
		_, err := svc.UpdateProfile(context.Background(), a.ID, admin.UpdateProfileRequest{Email: strPtr("taken@x.com")})
		require.Error(t, err)
		assert.True(t, errors.Is(err, apperr.ErrConflict))
		assert.Equal(t, "Email already in use", err.Error())
	})

	t.Run("unchanged email is not a conflict", func(t *testing.T) {
		_, err := svc.UpdateProfile(context.Background(), a.ID, admin.UpdateProfileRequest{Email: strPtr("ada@x.com")})
		assert.NoError(t, err)
	})
}

func TestChangePassword(t *testing.T) {
	svc, repo, hasher := newService(t)
	a := seedAdmin(t, repo, hasher, "a@x.com")

	err := svc.ChangePassword(context.Background(), a.ID, admin.ChangePasswordRequest{CurrentPassword: "wrong", NewPassword: "NewPass1"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrAuthentication))
	assert.Equal(t, "Current password is incorrect", err.Error())

	require.NoError(t, svc.ChangePassword(context.Background(), a.ID, admin.ChangePasswordRequest{CurrentPassword: "Abc123", NewPassword: "NewPass1"}))

	stored := repo.Get(a.ID)
	assert.True(t, hasher.Verify(stored.PasswordHash, "NewPass1"))
	assert.False(t, hasher.Verify(stored.PasswordHash, "Abc123"))
}

func TestPicture(t *testing.T) {
	svc, repo, hasher := newService(t)
	a := seedAdmin(t, repo, hasher, "a@x.com")

	_, _, err := svc.Picture(context.Background(), a.ID)
	assert.True(t, errors.Is(err, apperr.ErrNotFound))

	require.NoError(t, svc.UploadPicture(context.Background(), a.ID, []byte("img"), "image/png"))

	data, contentType, err := svc.Picture(context.Background(), a.ID)
	require.NoError(t, err)
	assert.Equal(t, []byte("img"), data)
	assert.Equal(t, "image/png", contentType)

	profile, err := svc.Profile(context.Background(), a.ID)
	require.NoError(t, err)
	assert.Nil(t, profile.ProfilePicture)
}
