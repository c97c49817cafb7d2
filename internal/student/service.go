package student

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Vishwas132/university-admin-panel/internal/apperr"
	"github.com/Vishwas132/university-admin-panel/internal/events"
	"github.com/Vishwas132/university-admin-panel/internal/metrics"

	"github.com/google/uuid"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// PasswordHasher is satisfied by *password.Hasher.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(hash, plaintext string) bool
}

type Service struct {
	repo      Repository
	hasher    PasswordHasher
	publisher events.Publisher
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

func NewService(repo Repository, hasher PasswordHasher, publisher events.Publisher, m *metrics.Metrics, logger *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		hasher:    hasher,
		publisher: publisher,
		metrics:   m,
		logger:    logger,
	}
}

// NormalizeEmail trims and lowercases an email before any lookup or write.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Normalize clamps paging parameters to their allowed ranges.
func (p ListParams) Normalize() ListParams {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = DefaultPageSize
	}
	if p.Limit > MaxPageSize {
		p.Limit = MaxPageSize
	}
	p.Search = strings.TrimSpace(p.Search)
	return p
}

func (s *Service) List(ctx context.Context, params ListParams) (*ListResponse, error) {
	params = params.Normalize()

	students, total, err := s.repo.List(ctx, params)
	if err != nil {
		return nil, err
	}

	s.metrics.RecordStudentListViewed(ctx)

	return &ListResponse{
		Students:   students,
		Page:       params.Page,
		TotalPages: (total + params.Limit - 1) / params.Limit,
		Total:      total,
	}, nil
}

func (s *Service) Create(ctx context.Context, req CreateRequest) (*Student, error) {
	email := NormalizeEmail(req.Email)

	if _, err := s.repo.GetByEmail(ctx, email); err == nil {
		return nil, apperr.Conflict("Email already exists")
	} else if !errors.Is(err, ErrStudentNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	student := &Student{
		Name:           strings.TrimSpace(req.Name),
		Email:          email,
		PasswordHash:   hash,
		PhoneNumber:    strings.TrimSpace(req.PhoneNumber),
		Qualifications: trimAll(req.Qualifications),
		Gender:         req.Gender,
	}

	if err := s.repo.Create(ctx, student); err != nil {
		if errors.Is(err, ErrEmailTaken) {
			return nil, apperr.Conflict("Email already exists")
		}
		return nil, err
	}

	s.logger.InfoContext(ctx, "student created", "student_id", student.ID)
	s.metrics.RecordStudentCreated(ctx)
	events.Emit(ctx, s.publisher, s.logger, events.Event{
		Type:        events.StudentCreated,
		AccountID:   student.ID.String(),
		AccountKind: "student",
		Email:       student.Email,
	})

	return student, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Student, error) {
	student, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	s.metrics.RecordStudentViewed(ctx)
	return student, nil
}

// Update applies a partial update. The password is re-hashed only when a new
// one is supplied.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req UpdateRequest) (*Student, error) {
	student, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}

	if req.Email != nil {
		email := NormalizeEmail(*req.Email)
		if email != student.Email {
			existing, err := s.repo.GetByEmail(ctx, email)
			switch {
			case err == nil && existing.ID != student.ID:
				return nil, apperr.Conflict("Email already in use")
			case err != nil && !errors.Is(err, ErrStudentNotFound):
				return nil, fmt.Errorf("failed to check email: %w", err)
			}
			student.Email = email
		}
	}
	if req.Name != nil {
		student.Name = strings.TrimSpace(*req.Name)
	}
	if req.PhoneNumber != nil {
		student.PhoneNumber = strings.TrimSpace(*req.PhoneNumber)
	}
	if req.Qualifications != nil {
		student.Qualifications = trimAll(*req.Qualifications)
	}
	if req.Gender != nil {
		student.Gender = *req.Gender
	}
	if req.Password != nil {
		hash, err := s.hasher.Hash(*req.Password)
		if err != nil {
			return nil, err
		}
		student.PasswordHash = hash
	}

	if err := s.repo.Update(ctx, student); err != nil {
		if errors.Is(err, ErrEmailTaken) {
			return nil, apperr.Conflict("Email already in use")
		}
		return nil, notFound(err)
	}

	s.logger.InfoContext(ctx, "student updated", "student_id", student.ID)
	events.Emit(ctx, s.publisher, s.logger, events.Event{
		Type:        events.StudentUpdated,
		AccountID:   student.ID.String(),
		AccountKind: "student",
		Email:       student.Email,
	})

	return student, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return notFound(err)
	}

	s.logger.InfoContext(ctx, "student deleted", "student_id", id)
	s.metrics.RecordStudentDeleted(ctx)
	events.Emit(ctx, s.publisher, s.logger, events.Event{
		Type:        events.StudentDeleted,
		AccountID:   id.String(),
		AccountKind: "student",
	})
	return nil
}

func (s *Service) UploadImage(ctx context.Context, id uuid.UUID, data []byte, contentType string) error {
	if err := s.repo.SetImage(ctx, id, data, contentType); err != nil {
		return notFound(err)
	}
	return nil
}

func (s *Service) Image(ctx context.Context, id uuid.UUID) ([]byte, string, error) {
	data, contentType, err := s.repo.GetImage(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNoImage) {
			return nil, "", apperr.NotFound("Profile image not found")
		}
		return nil, "", notFound(err)
	}
	return data, contentType, nil
}

func notFound(err error) error {
	if errors.Is(err, ErrStudentNotFound) {
		return apperr.NotFound("Student not found")
	}
	return err
}

func trimAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		out = append(out, strings.TrimSpace(v))
	}
	return out
}
