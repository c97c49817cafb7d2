package admin

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Vishwas132/university-admin-panel/internal/apperr"

	"github.com/google/uuid"
)

// PasswordHasher is satisfied by *password.Hasher.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(hash, plaintext string) bool
}

type Service struct {
	repo   Repository
	hasher PasswordHasher
	logger *slog.Logger
}

func NewService(repo Repository, hasher PasswordHasher, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		hasher: hasher,
		logger: logger,
	}
}

// NormalizeEmail trims and lowercases an email before any lookup or write.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *Service) Profile(ctx context.Context, id uuid.UUID) (*Admin, error) {
	admin, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	return admin, nil
}

func (s *Service) UpdateProfile(ctx context.Context, id uuid.UUID, req UpdateProfileRequest) (*Admin, error) {
	admin, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}

	if req.Name != nil {
		admin.Name = strings.TrimSpace(*req.Name)
	}

	if req.Email != nil {
		email := NormalizeEmail(*req.Email)
		if email != admin.Email {
			existing, err := s.repo.GetByEmail(ctx, email)
			switch {
			case err == nil && existing.ID != admin.ID:
				return nil, apperr.Conflict("Email already in use")
			case err != nil && !errors.Is(err, ErrAdminNotFound):
				return nil, fmt.Errorf("failed to check email: %w", err)
			}
			admin.Email = email
		}
	}

	if err := s.repo.UpdateProfile(ctx, admin); err != nil {
		if errors.Is(err, ErrEmailTaken) {
			return nil, apperr.Conflict("Email already in use")
		}
		return nil, notFound(err)
	}

	s.logger.InfoContext(ctx, "admin profile updated", "admin_id", admin.ID)
	return admin, nil
}

func (s *Service) ChangePassword(ctx context.Context, id uuid.UUID, req ChangePasswordRequest) error {
	admin, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return notFound(err)
	}

	if !s.hasher.Verify(admin.PasswordHash, req.CurrentPassword) {
		return apperr.Authentication("Current password is incorrect")
	}

	hash, err := s.hasher.Hash(req.NewPassword)
	if err != nil {
		return err
	}

	if err := s.repo.UpdatePassword(ctx, id, hash); err != nil {
		return notFound(err)
	}

	s.logger.InfoContext(ctx, "admin password changed", "admin_id", id)
	return nil
}

func (s *Service) UploadPicture(ctx context.Context, id uuid.UUID, data []byte, contentType string) error {
	if err := s.repo.SetPicture(ctx, id, data, contentType); err != nil {
		return notFound(err)
	}
	return nil
}

func (s *Service) Picture(ctx context.Context, id uuid.UUID) ([]byte, string, error) {
	data, contentType, err := s.repo.GetPicture(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNoPicture) {
			return nil, "", apperr.NotFound("Profile picture not found")
		}
		return nil, "", notFound(err)
	}
	return data, contentType, nil
}

func notFound(err error) error {
	if errors.Is(err, ErrAdminNotFound) {
		return apperr.NotFound("Admin not found")
	}
	return err
}
