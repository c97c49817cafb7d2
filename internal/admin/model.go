package admin

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type Admin struct {
	bun.BaseModel `bun:"table:admins,alias:a"`

	ID                  uuid.UUID  `bun:"id,pk,type:uuid,nullzero,default:gen_random_uuid()" json:"id"`
	Name                string     `bun:"name,notnull" json:"name"`
	Email               string     `bun:"email,notnull,unique" json:"email"`
	PasswordHash        string     `bun:"password_hash,notnull" json:"-"`
	LastLoginAt         *time.Time `bun:"last_login_at" json:"lastLoginAt,omitempty"`
	ProfilePicture      []byte     `bun:"profile_picture,type:bytea" json:"-"`
	ProfilePictureType  string     `bun:"profile_picture_type,nullzero" json:"-"`
	ResetTokenHash      *string    `bun:"reset_token_hash" json:"-"`
	ResetTokenExpiresAt *time.Time `bun:"reset_token_expires_at" json:"-"`
	CreatedAt           time.Time  `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"createdAt"`
	UpdatedAt           time.Time  `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updatedAt"`
}

// ProfileResponse is the admin as returned by the profile endpoints.
type ProfileResponse struct {
	ID          uuid.UUID  `json:"id"`
	Name        string     `json:"name"`
	Email       string     `json:"email"`
	LastLoginAt *time.Time `json:"lastLoginAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

func (a *Admin) Profile() ProfileResponse {
	return ProfileResponse{
		ID:          a.ID,
		Name:        a.Name,
		Email:       a.Email,
		LastLoginAt: a.LastLoginAt,
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}
}

type UpdateProfileRequest struct {
	Name  *string `json:"name" validate:"omitempty,min=2,max=50"`
	Email *string `json:"email" validate:"omitempty,email"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=6,max=50,bcrypt_len,password_strength"`
}

type PictureResponse struct {
	Message        string      `json:"message"`
	ProfilePicture PictureInfo `json:"profilePicture"`
}

type PictureInfo struct {
	ContentType string `json:"contentType"`
	Size        int64  `json:"size"`
}
