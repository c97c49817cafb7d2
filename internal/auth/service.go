package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/Vishwas132/university-admin-panel/internal/admin"
	"github.com/Vishwas132/university-admin-panel/internal/apperr"
	"github.com/Vishwas132/university-admin-panel/internal/events"
	"github.com/Vishwas132/university-admin-panel/internal/mailer"
	"github.com/Vishwas132/university-admin-panel/internal/metrics"
	"github.com/Vishwas132/university-admin-panel/internal/resettoken"
	"github.com/Vishwas132/university-admin-panel/internal/student"
	"github.com/Vishwas132/university-admin-panel/internal/token"

	"github.com/google/uuid"
)

const (
	msgInvalidCredentials = "Invalid credentials"
	msgInvalidResetToken  = "Invalid or expired reset token"
	msgResetMailed        = "Password reset instructions sent to email"
	msgResetTestMode      = "Password reset token generated (email delivery disabled)"
)

// AdminStore is the part of admin.Repository the auth flows use.
type AdminStore interface {
	Create(ctx context.Context, a *admin.Admin) error
	GetByEmail(ctx context.Context, email string) (*admin.Admin, error)
	UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
	SetResetToken(ctx context.Context, id uuid.UUID, tokenHash string, expiresAt time.Time) error
	ConsumeResetToken(ctx context.Context, tokenHash, passwordHash string, now time.Time) (uuid.UUID, error)
}

// StudentStore is the part of student.Repository the auth flows use.
type StudentStore interface {
	GetByEmail(ctx context.Context, email string) (*student.Student, error)
	SetResetToken(ctx context.Context, id uuid.UUID, tokenHash string, expiresAt time.Time) error
	ConsumeResetToken(ctx context.Context, tokenHash, passwordHash string, now time.Time) (uuid.UUID, error)
}

type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(hash, plaintext string) bool
}

type TokenIssuer interface {
	Issue(id, email string, role token.Role) (string, error)
}

type Service struct {
	admins    AdminStore
	students  StudentStore
	hasher    PasswordHasher
	issuer    TokenIssuer
	sender    mailer.Sender
	publisher events.Publisher
	metrics   *metrics.Metrics
	logger    *slog.Logger
	cfg       Config
	now       func() time.Time
}

type Deps struct {
	Admins    AdminStore
	Students  StudentStore
	Hasher    PasswordHasher
	Issuer    TokenIssuer
	Sender    mailer.Sender
	Publisher events.Publisher
	Metrics   *metrics.Metrics
	Logger    *slog.Logger
}

func NewService(deps Deps, cfg Config) *Service {
	if cfg.ResetTTL <= 0 {
		cfg.ResetTTL = resettoken.DefaultTTL
	}
	return &Service{
		admins:    deps.Admins,
		students:  deps.Students,
		hasher:    deps.Hasher,
		issuer:    deps.Issuer,
		sender:    deps.Sender,
		publisher: deps.Publisher,
		metrics:   deps.Metrics,
		logger:    deps.Logger,
		cfg:       cfg,
		now:       time.Now,
	}
}

// WithClock replaces the service clock. Used by tests to move past expiry.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *Service) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	email := normalizeEmail(req.Email)

	if _, err := s.admins.GetByEmail(ctx, email); err == nil {
		return nil, apperr.Conflict("Admin already exists")
	} else if !errors.Is(err, admin.ErrAdminNotFound) {
		return nil, fmt.Errorf("failed to look up admin: %w", err)
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	a := &admin.Admin{
		Name:         strings.TrimSpace(req.Name),
		Email:        email,
		PasswordHash: hash,
	}
	if err := s.admins.Create(ctx, a); err != nil {
		if errors.Is(err, admin.ErrEmailTaken) {
			return nil, apperr.Conflict("Admin already exists")
		}
		return nil, err
	}

	signed, err := s.issuer.Issue(a.ID.String(), a.Email, token.RoleAdmin)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "admin registered", "admin_id", a.ID)
	s.metrics.RecordAdminRegistration(ctx)
	events.Emit(ctx, s.publisher, s.logger, events.Event{
		Type:        events.AdminRegistered,
		AccountID:   a.ID.String(),
		AccountKind: string(KindAdmin),
		Email:       a.Email,
	})

	return &AuthResponse{ID: a.ID, Name: a.Name, Email: a.Email, Token: signed}, nil
}

// Login authenticates an admin. Unknown email and wrong password fail with
// the same error.
func (s *Service) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	a, err := s.admins.GetByEmail(ctx, normalizeEmail(req.Email))
	if err != nil && !errors.Is(err, admin.ErrAdminNotFound) {
		return nil, fmt.Errorf("failed to look up admin: %w", err)
	}
	if a == nil || !s.hasher.Verify(a.PasswordHash, req.Password) {
		s.metrics.RecordLogin(ctx, string(KindAdmin), false)
		return nil, apperr.Authentication(msgInvalidCredentials)
	}

	now := s.now()
	if err := s.admins.UpdateLastLogin(ctx, a.ID, now); err != nil {
		return nil, fmt.Errorf("failed to record login: %w", err)
	}
	a.LastLoginAt = &now

	signed, err := s.issuer.Issue(a.ID.String(), a.Email, token.RoleAdmin)
	if err != nil {
		return nil, err
	}

	s.metrics.RecordLogin(ctx, string(KindAdmin), true)
	return &AuthResponse{ID: a.ID, Name: a.Name, Email: a.Email, Token: signed}, nil
}

// StudentLogin authenticates a student. No last-login time is kept for students.
func (s *Service) StudentLogin(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	st, err := s.students.GetByEmail(ctx, normalizeEmail(req.Email))
	if err != nil && !errors.Is(err, student.ErrStudentNotFound) {
		return nil, fmt.Errorf("failed to look up student: %w", err)
	}
	if st == nil || !s.hasher.Verify(st.PasswordHash, req.Password) {
		s.metrics.RecordLogin(ctx, string(KindStudent), false)
		return nil, apperr.Authentication(msgInvalidCredentials)
	}

	signed, err := s.issuer.Issue(st.ID.String(), st.Email, token.RoleStudent)
	if err != nil {
		return nil, err
	}

	s.metrics.RecordLogin(ctx, string(KindStudent), true)
	return &AuthResponse{ID: st.ID, Name: st.Name, Email: st.Email, Role: string(token.RoleStudent), Token: signed}, nil
}

// resolve finds the account holding email, trying admins before students.
func (s *Service) resolve(ctx context.Context, email string) (*AccountRef, error) {
	a, err := s.admins.GetByEmail(ctx, email)
	if err == nil {
		return &AccountRef{Kind: KindAdmin, ID: a.ID, Email: a.Email}, nil
	}
	if !errors.Is(err, admin.ErrAdminNotFound) {
		return nil, fmt.Errorf("failed to look up admin: %w", err)
	}

	st, err := s.students.GetByEmail(ctx, email)
	if err == nil {
		return &AccountRef{Kind: KindStudent, ID: st.ID, Email: st.Email}, nil
	}
	if !errors.Is(err, student.ErrStudentNotFound) {
		return nil, fmt.Errorf("failed to look up student: %w", err)
	}

	return nil, apperr.NotFound("Account not found")
}

func (s *Service) ForgotPassword(ctx context.Context, req ForgotPasswordRequest) (*ForgotPasswordResponse, error) {
	ref, err := s.resolve(ctx, normalizeEmail(req.Email))
	if err != nil {
		return nil, err
	}

	tok, err := resettoken.Generate(s.now(), s.cfg.ResetTTL)
	if err != nil {
		return nil, err
	}

	switch ref.Kind {
	case KindAdmin:
		err = s.admins.SetResetToken(ctx, ref.ID, tok.Hash, tok.ExpiresAt)
	case KindStudent:
		err = s.students.SetResetToken(ctx, ref.ID, tok.Hash, tok.ExpiresAt)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to store reset token: %w", err)
	}

	s.metrics.RecordResetRequested(ctx, string(ref.Kind))
	events.Emit(ctx, s.publisher, s.logger, events.Event{
		Type:        events.PasswordResetRequested,
		AccountID:   ref.ID.String(),
		AccountKind: string(ref.Kind),
		Email:       ref.Email,
	})

	resetURL := s.resetURL(tok.Plain)

	if s.cfg.TestMode {
		s.logger.WarnContext(ctx, "mail test mode: returning reset token in response", "account_kind", ref.Kind)
		return &ForgotPasswordResponse{
			Message:    msgResetTestMode,
			ResetToken: tok.Plain,
			ResetURL:   resetURL,
		}, nil
	}

	msg, err := mailer.ResetPasswordMessage(ref.Email, resetURL, s.cfg.ResetTTL)
	if err != nil {
		return nil, err
	}
	if err := s.sender.Send(ctx, msg); err != nil {
		return nil, fmt.Errorf("failed to send reset email: %w", err)
	}

	s.logger.InfoContext(ctx, "password reset email sent", "account_kind", ref.Kind, "account_id", ref.ID)
	return &ForgotPasswordResponse{Message: msgResetMailed}, nil
}

func (s *Service) resetURL(plain string) string {
	return strings.TrimRight(s.cfg.ResetURLBase, "/") + "/reset-password?token=" + url.QueryEscape(plain)
}

// ResetPassword redeems a reset token against admins first, then students.
func (s *Service) ResetPassword(ctx context.Context, req ResetPasswordRequest) error {
	digest := resettoken.Hash(req.Token)

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return err
	}

	now := s.now()

	kind := KindAdmin
	id, err := s.admins.ConsumeResetToken(ctx, digest, hash, now)
	if errors.Is(err, resettoken.ErrInvalid) {
		kind = KindStudent
		id, err = s.students.ConsumeResetToken(ctx, digest, hash, now)
	}
	if err != nil {
		if errors.Is(err, resettoken.ErrInvalid) {
			return apperr.Authentication(msgInvalidResetToken)
		}
		return fmt.Errorf("failed to reset password: %w", err)
	}

	s.logger.InfoContext(ctx, "password reset completed", "account_kind", kind, "account_id", id)
	s.metrics.RecordResetCompleted(ctx, string(kind))
	events.Emit(ctx, s.publisher, s.logger, events.Event{
		Type:        events.PasswordResetCompleted,
		AccountID:   id.String(),
		AccountKind: string(kind),
	})
	return nil
}
