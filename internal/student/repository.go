package student

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/Vishwas132/university-admin-panel/internal/db"
	"github.com/Vishwas132/university-admin-panel/internal/metrics"
	"github.com/Vishwas132/university-admin-panel/internal/resettoken"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

const table = "students"

var (
	ErrStudentNotFound = errors.New("student not found")
	ErrEmailTaken      = errors.New("student email already taken")
	ErrNoImage         = errors.New("student has no profile image")
)

type Repository interface {
	Create(ctx context.Context, student *Student) error
	List(ctx context.Context, params ListParams) ([]Student, int, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Student, error)
	GetByEmail(ctx context.Context, email string) (*Student, error)
	Update(ctx context.Context, student *Student) error
	Delete(ctx context.Context, id uuid.UUID) error
	SetResetToken(ctx context.Context, id uuid.UUID, tokenHash string, expiresAt time.Time) error
	ConsumeResetToken(ctx context.Context, tokenHash, passwordHash string, now time.Time) (uuid.UUID, error)
	SetImage(ctx context.Context, id uuid.UUID, data []byte, contentType string) error
	GetImage(ctx context.Context, id uuid.UUID) ([]byte, string, error)
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

func (r *repository) Create(ctx context.Context, student *Student) error {
	start := time.Now()
	_, err := r.db.NewInsert().
		Model(student).
		Returning("id, created_at, updated_at").
		Exec(ctx)

	r.record(ctx, "insert", start, err)

	if db.IsUniqueViolation(err) {
		return ErrEmailTaken
	}
	return err
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// List returns one page of students, newest first, and the total number of
// students matching the search.
func (r *repository) List(ctx context.Context, params ListParams) ([]Student, int, error) {
	start := time.Now()
	students := make([]Student, 0, params.Limit)

	q := r.db.NewSelect().
		Model(&students).
		ExcludeColumn("profile_image").
		OrderExpr("s.created_at DESC").
		OrderExpr("s.id").
		Limit(params.Limit).
		Offset((params.Page - 1) * params.Limit)

	if params.Search != "" {
		q = q.Where("s.name ILIKE ?", "%"+likeEscaper.Replace(params.Search)+"%")
	}

	total, err := q.ScanAndCount(ctx)

	r.record(ctx, "select", start, err)

	if err != nil {
		return nil, 0, err
	}
	return students, total, nil
}

func (r *repository) getOne(ctx context.Context, column string, value interface{}) (*Student, error) {
	start := time.Now()
	student := new(Student)
	err := r.db.NewSelect().
		Model(student).
		ExcludeColumn("profile_image").
		Where("? = ?", bun.Ident("s."+column), value).
		Scan(ctx)

	r.record(ctx, "select", start, err)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrStudentNotFound
		}
		return nil, err
	}
	return student, nil
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Student, error) {
	return r.getOne(ctx, "id", id)
}

func (r *repository) GetByEmail(ctx context.Context, email string) (*Student, error) {
	return r.getOne(ctx, "email", email)
}

func (r *repository) Update(ctx context.Context, student *Student) error {
	start := time.Now()
	student.UpdatedAt = time.Now()
	res, err := r.db.NewUpdate().
		Model(student).
		Column("name", "email", "password_hash", "phone_number", "qualifications", "gender", "updated_at").
		WherePK().
		Exec(ctx)

	r.record(ctx, "update", start, err)

	if db.IsUniqueViolation(err) {
		return ErrEmailTaken
	}
	return affected(res, err)
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	start := time.Now()
	res, err := r.db.NewDelete().
		Model((*Student)(nil)).
		Where("id = ?", id).
		Exec(ctx)

	r.record(ctx, "delete", start, err)
	return affected(res, err)
}

// SetResetToken stores the digest and expiry together, replacing any
// outstanding token.
func (r *repository) SetResetToken(ctx context.Context, id uuid.UUID, tokenHash string, expiresAt time.Time) error {
	start := time.Now()
	res, err := r.db.NewUpdate().
		Model((*Student)(nil)).
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
		Model((*Student)(nil)).
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

func (r *repository) SetImage(ctx context.Context, id uuid.UUID, data []byte, contentType string) error {
	start := time.Now()
	res, err := r.db.NewUpdate().
		Model((*Student)(nil)).
		Set("profile_image = ?", data).
		Set("profile_image_type = ?", contentType).
		Set("updated_at = ?", time.Now()).
		Where("id = ?", id).
		Exec(ctx)

	r.record(ctx, "update", start, err)
	return affected(res, err)
}

func (r *repository) GetImage(ctx context.Context, id uuid.UUID) ([]byte, string, error) {
	start := time.Now()
	student := new(Student)
	err := r.db.NewSelect().
		Model(student).
		Column("profile_image", "profile_image_type").
		Where("id = ?", id).
		Scan(ctx)

	r.record(ctx, "select", start, err)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, "", ErrStudentNotFound
		}
		return nil, "", err
	}
	if len(student.ProfileImage) == 0 {
		return nil, "", ErrNoImage
	}
	return student.ProfileImage, student.ProfileImageType, nil
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
		return ErrStudentNotFound
	}
	return nil
}
