package student

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

type Student struct {
	bun.BaseModel `bun:"table:students,alias:s"`

	ID                  uuid.UUID  `bun:"id,pk,type:uuid,nullzero,default:gen_random_uuid()" json:"id"`
	Name                string     `bun:"name,notnull" json:"name"`
	Email               string     `bun:"email,notnull,unique" json:"email"`
	PasswordHash        string     `bun:"password_hash,notnull" json:"-"`
	PhoneNumber         string     `bun:"phone_number,notnull" json:"phoneNumber"`
	Qualifications      []string   `bun:"qualifications,array,notnull" json:"qualifications"`
	Gender              Gender     `bun:"gender,notnull" json:"gender"`
	ProfileImage        []byte     `bun:"profile_image,type:bytea" json:"-"`
	ProfileImageType    string     `bun:"profile_image_type,nullzero" json:"-"`
	ResetTokenHash      *string    `bun:"reset_token_hash" json:"-"`
	ResetTokenExpiresAt *time.Time `bun:"reset_token_expires_at" json:"-"`
	CreatedAt           time.Time  `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"createdAt"`
	UpdatedAt           time.Time  `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updatedAt"`
}

type CreateRequest struct {
	Name           string   `json:"name" validate:"required,min=2,max=50"`
	Email          string   `json:"email" validate:"required,email"`
	PhoneNumber    string   `json:"phoneNumber" validate:"required,phone"`
	Qualifications []string `json:"qualifications" validate:"required,min=1,dive,notblank"`
	Gender         Gender   `json:"gender" validate:"required,oneof=male female other"`
	Password       string   `json:"password" validate:"required,min=6,max=100,bcrypt_len"`
}

// UpdateRequest carries a partial update; nil fields are left unchanged.
type UpdateRequest struct {
	Name           *string   `json:"name" validate:"omitempty,min=2,max=50"`
	Email          *string   `json:"email" validate:"omitempty,email"`
	PhoneNumber    *string   `json:"phoneNumber" validate:"omitempty,phone"`
	Qualifications *[]string `json:"qualifications" validate:"omitempty,min=1,dive,notblank"`
	Gender         *Gender   `json:"gender" validate:"omitempty,oneof=male female other"`
	Password       *string   `json:"password" validate:"omitempty,min=6,max=100,bcrypt_len"`
}

type ListParams struct {
	Page   int
	Limit  int
	Search string
}

type ListResponse struct {
	Students   []Student `json:"students"`
	Page       int       `json:"page"`
	TotalPages int       `json:"totalPages"`
	Total      int       `json:"total"`
}

type ImageResponse struct {
	Message      string    `json:"message"`
	ProfileImage ImageInfo `json:"profileImage"`
}

type ImageInfo struct {
	ContentType string `json:"contentType"`
	Size        int64  `json:"size"`
}
