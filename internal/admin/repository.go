package admin

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/Vishwas132/university-admin-panel/internal/db"
	"github.com/Vishwas132/university-admin-panel/internal/metrics"
	"github.com/Vishwas132/university-admin-panel/internal/resettoken"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

const table = "admins"

var (
	ErrAdminNotFound = errors.New("admin not found")
	ErrEmailTaken    = errors.New("admin email already taken")
	ErrNoPicture     = errors.New("admin has no profile picture")
)

type Repository interface {
	Create(ctx context.Context, admin *Admin) error
	GetByID(ctx context.Context, id uuid.UUID) (*Admin, error)
	GetByEmail(ctx context.Context, email string) (*Admin, error)
	UpdateProfile(ctx context.Context, admin *Admin) error
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
	UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
	SetResetToken(ctx context.Context, id uuid.UUID, tokenHash string, expiresAt time.Time) error
	ConsumeResetToken(ctx context.Context, tokenHash, passwordHash string, now time.Time) (uuid.UUID, error)
	SetPicture(ctx context.Context, id uuid.UUID, data []byte, contentType string) error
	GetPicture(ctx context.Context, id uuid.UUID) ([]byte, string, error)
}

type repository struct {
	db      *bun.DB
	metrics *metrics.Metrics
}

func NewRepository(db *bun.DB, m *metrics.Metrics) Repository {
	return &repository{
		db:      db,
		metrics: m,
	}
}

func (r *repository) record(ctx context.Context, operation string, start time.Time, err error) {
	r.metrics.Database.RecordQuery(ctx, operation, table, time.Since(start), err)
}

func (r *repository) Create(ctx context.Context, admin *Admin) error {
	start := time.Now()
	_, err := r.db.NewInsert().
		Model(admin).
		Returning("id, created_at, updated_at").
		Exec(ctx)

	r.record(ctx, "insert", start, err)

	if db.IsUniqueViolation(err) {
		return ErrEmailTaken
	}
	return err
}

func (r *repository) getOne(ctx context.Context, column string, value interface{}) (*Admin, error) {
	start := time.Now()
	admin := new(Admin)
	err := r.db.NewSelect().
		Model(admin).
		ExcludeColumn("profile_picture").
		Where("? = ?", bun.Ident(column), value).
		Scan(ctx)

	r.record(ctx, "select", start, err)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAdminNotFound
		}
		return nil, err
	}
	return admin, nil
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Admin, error) {
	return r.getOne(ctx, "id", id)
}

func (r *repository) GetByEmail(ctx context.Context, email string) (*Admin, error) {
	return r.getOne(ctx, "email", email)
}

func (r *repository) UpdateProfile(ctx context.Context, admin *Admin) error {
	start := time.Now()
	admin.UpdatedAt = time.Now()
	res, err := r.db.NewUpdate().
		Model(admin).
		Column("name", "email", "updated_at").
		WherePK().
		Exec(ctx)

	r.record(ctx, "update", start, err)

	if db.IsUniqueViolation(err) {
		return ErrEmailTaken
	}
	return affected(res, err)
}

func (r *repository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	start := time.Now()
	res, err := r.db.NewUpdate().
		Model((*Admin)(nil)).
		Set("password_hash = ?", passwordHash).
		Set("updated_at = ?", time.Now()).
		Where("id = ?", id).
		Exec(ctx)

	r.record(ctx, "update", start, err)
	return affected(res, err)
}

func (r *repository) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	start := time.Now()
	res, err := r.db.NewUpdate().
		Model((*Admin)(nil)).
		Set("last_login_at = ?", at).
		Where("id = ?", id).
		Exec(ctx)

	r.record(ctx, "update", start, err)
	return affected(res, err)
}

// SetResetToken stores the digest and expiry together, replacing any
// outstanding token.
func (r *repository) SetResetToken(ctx context.Context, id uuid.UUID, tokenHash string, expiresAt time.Time) error {
	start := time.Now()
	res, err := r.db.NewUpdate().
		Model((*Admin)(nil)).
		Set("reset_token_hash = ?", tokenHash).
		Set("reset_token_expires_at = ?", expiresAt).
		Where("id = ?", id).
		Exec(ctx)

	r.record(ctx, "update", start, err)
	return affected(res, err)
}

// ConsumeResetToken sets the new password and clears the token in one
// conditional statement, so a token can be redeemed at most once.
func (r *repository) ConsumeResetToken(ctx context.Context, tokenHash, passwordHash string, now time.Time) (uuid.UUID, error) {
	start := time.Now()
	var ids []uuid.UUID
	_, err := r.db.NewUpdate().
		Model((*Admin)(nil)).
		Set("password_hash = ?", passwordHash).
		Set("reset_token_hash = NULL").
		Set("reset_token_expires_at = NULL").
		Set("updated_at = ?", now).
		Where("reset_token_hash = ?", tokenHash).
		Where("reset_token_expires_at > ?", now).
		Returning("id").
		Exec(ctx, &ids)

	r.record(ctx, "update", start, err)

	if err != nil {
		return uuid.Nil, err
	}
	if len(ids) == 0 {
		return uuid.Nil, resettoken.ErrInvalid
	}
	return ids[0], nil
}

func (r *repository) SetPicture(ctx context.Context, id uuid.UUID, data []byte, contentType string) error {
	start := time.Now()
	res, err := r.db.NewUpdate().
		Model((*Admin)(nil)).
		Set("profile_picture = ?", data).
		Set("profile_picture_type = ?", contentType).
		Set("updated_at = ?", time.Now()).
		Where("id = ?", id).
		Exec(ctx)

	r.record(ctx, "update", start, err)
	return affected(res, err)
}

func (r *repository) GetPicture(ctx context.Context, id uuid.UUID) ([]byte, string, error) {
	start := time.Now()
	admin := new(Admin)
	err := r.db.NewSelect().
		Model(admin).
		Column("profile_picture", "profile_picture_type").
		Where("id = ?", id).
		Scan(ctx)

	r.record(ctx, "select", start, err)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, "", ErrAdminNotFound
		}
		return nil, "", err
	}
	if len(admin.ProfilePicture) == 0 {
		return nil, "", ErrNoPicture
	}
	return admin.ProfilePicture, admin.ProfilePictureType, nil
}

func affected(res sql.Result, err error) error {
	if err != nil {
		return err
	}
	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrAdminNotFound
	}
	return nil
}
