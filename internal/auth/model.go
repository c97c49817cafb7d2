package auth

import (
	"time"

	"github.com/google/uuid"
)

// Kind names the store an account lives in.
type Kind string

const (
	KindAdmin   Kind = "admin"
	KindStudent Kind = "student"
)

// AccountRef points at exactly one account in either store.
type AccountRef struct {
	Kind  Kind
	ID    uuid.UUID
	Email string
}

type Config struct {
	// ResetURLBase is the frontend origin; reset links point at
	// ResetURLBase + "/reset-password?token=...".
	ResetURLBase string
	// TestMode returns reset tokens in the response instead of mailing them.
	TestMode bool
	ResetTTL time.Duration
}

type RegisterRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=50,bcrypt_len,password_strength"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type ResetPasswordRequest struct {
	Token    string `json:"token" validate:"required"`
	Password string `json:"password" validate:"required,min=6,max=50,bcrypt_len,password_strength"`
}

type AuthResponse struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
	Role  string    `json:"role,omitempty"`
	Token string    `json:"token"`
}

type ForgotPasswordResponse struct {
	Message    string `json:"message"`
	ResetToken string `json:"resetToken,omitempty"`
	ResetURL   string `json:"resetUrl,omitempty"`
}
