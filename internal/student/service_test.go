package student_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/Vishwas132/university-admin-panel/internal/apperr"
	"github.com/Vishwas132/university-admin-panel/internal/events"
	"github.com/Vishwas132/university-admin-panel/internal/logger"
	"github.com/Vishwas132/university-admin-panel/internal/metrics"
	"github.com/Vishwas132/university-admin-panel/internal/password"
	"github.com/Vishwas132/university-admin-panel/internal/student"
	"github.com/Vishwas132/university-admin-panel/internal/testutil/memstore"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type recordingPublisher struct {
	events []events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, e events.Event) error {
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) types() []events.Type {
	out := make([]events.Type, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

type fixture struct {
	svc       *student.Service
	repo      *memstore.Students
	hasher    *password.Hasher
	publisher *recordingPublisher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		repo:      memstore.NewStudents(),
		hasher:    password.NewHasher(bcrypt.MinCost),
		publisher: &recordingPublisher{},
	}
	f.svc = student.NewService(f.repo, f.hasher, f.publisher, metrics.NewMock(), logger.Discard())
	return f
}

func createRequest(name, email string) student.CreateRequest {
	return student.CreateRequest{
		Name:           name,
		Email:          email,
		PhoneNumber:    "+1 555 0100",
		Qualifications: []string{"BSc"},
		Gender:         student.GenderFemale,
		Password:       "secret1",
	}
}

func (f *fixture) create(t *testing.T, name, email string) *student.Student {
	t.Helper()
	s, err := f.svc.Create(context.Background(), createRequest(name, email))
	require.NoError(t, err)
	return s
}

func TestCreate(t *testing.T) {
	f := newFixture(t)

	s := f.create(t, " Grace ", " Grace@Example.COM ")
	assert.Equal(t, "Grace", s.Name)
	assert.Equal(t, "grace@example.com", s.Email)
	assert.NotEqual(t, "secret1", s.PasswordHash)
	assert.True(t, f.hasher.Verify(s.PasswordHash, "secret1"))
	assert.Equal(t, []events.Type{events.StudentCreated}, f.publisher.types())

	_, err := f.svc.Create(context.Background(), createRequest("Other", "grace@example.com"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrConflict))
	assert.Equal(t, "Email already exists", err.Error())
}

func TestList(t *testing.T) {
	f := newFixture(t)
	for i := 0; i < 12; i++ {
		f.create(t, fmt.Sprintf("Student %02d", i), fmt.Sprintf("s%d@x.com", i))
	}
	f.create(t, "Alan Turing", "alan@x.com")

	t.Run("defaults", func(t *testing.T) {
		resp, err := f.svc.List(context.Background(), student.ListParams{})
		require.NoError(t, err)
		assert.Equal(t, 1, resp.Page)
		assert.Equal(t, 13, resp.Total)
		assert.Equal(t, 2, resp.TotalPages)
		require.Len(t, resp.Students, student.DefaultPageSize)
		assert.Equal(t, "Alan Turing", resp.Students[0].Name)
	})

	t.Run("second page", func(t *testing.T) {
		resp, err := f.svc.List(context.Background(), student.ListParams{Page: 2, Limit: 10})
		require.NoError(t, err)
		assert.Len(t, resp.Students, 3)
		assert.Equal(t, "Student 00", resp.Students[2].Name)
	})

	t.Run("search", func(t *testing.T) {
		resp, err := f.svc.List(context.Background(), student.ListParams{Search: " turing "})
		require.NoError(t, err)
		require.Len(t, resp.Students, 1)
		assert.Equal(t, 1, resp.TotalPages)
		assert.Equal(t, "alan@x.com", resp.Students[0].Email)
	})

	t.Run("empty result", func(t *testing.T) {
		resp, err := f.svc.List(context.Background(), student.ListParams{Search: "nobody"})
		require.NoError(t, err)
		assert.Empty(t, resp.Students)
		assert.Equal(t, 0, resp.TotalPages)
	})
}

func TestListParamsNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   student.ListParams
		want student.ListParams
	}{
		{"zero values", student.ListParams{}, student.ListParams{Page: 1, Limit: 10}},
		{"negative page", student.ListParams{Page: -3, Limit: 5}, student.ListParams{Page: 1, Limit: 5}},
		{"limit clamped", student.ListParams{Page: 2, Limit: 1000}, student.ListParams{Page: 2, Limit: student.MaxPageSize}},
		{"search trimmed", student.ListParams{Search: "  ada "}, student.ListParams{Page: 1, Limit: 10, Search: "ada"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.in.Normalize())
		})
	}
}

func TestUpdate(t *testing.T) {
	f := newFixture(t)
	s := f.create(t, "Grace", "grace@x.com")
	f.create(t, "Taken", "taken@x.com")
	originalHash := f.repo.Get(s.ID).PasswordHash

	t.Run("partial update keeps password", func(t *testing.T) {
		name := "Grace Hopper"
		quals := []string{"PhD", " MSc "}
		updated, err := f.svc.Update(context.Background(), s.ID, student.UpdateRequest{Name: &name, Qualifications: &quals})
		require.NoError(t, err)
		assert.Equal(t, "Grace Hopper", updated.Name)
		assert.Equal(t, []string{"PhD", "MSc"}, updated.Qualifications)
		assert.Equal(t, originalHash, f.repo.Get(s.ID).PasswordHash)
	})

	t.Run("password re-hashed", func(t *testing.T) {
		pw := "another1"
		_, err := f.svc.Update(context.Background(), s.ID, student.UpdateRequest{Password: &pw})
		require.NoError(t, err)
		stored := f.repo.Get(s.ID).PasswordHash
		assert.NotEqual(t, originalHash, stored)
		assert.True(t, f.hasher.Verify(stored, "another1"))
	})

	t.Run("email in use", func(t *testing.T) {
		email := "TAKEN@x.com"
		_, err := f.svc.Update(context.Background(), s.ID, student.UpdateRequest{Email: &email})
		require.Error(t, err)
		assert.True(t, errors.Is(err, apperr.ErrConflict))
		assert.Equal(t, "Email already in use", err.Error())
	})

	t.Run("missing student", func(t *testing.T) {
		name := "Nobody"
		_, err := f.svc.Update(context.Background(), uuid.New(), student.UpdateRequest{Name: &name})
		assert.True(t, errors.Is(err, apperr.ErrNotFound))
	})
}

func TestDelete(t *testing.T) {
	f := newFixture(t)
	s := f.create(t, "Grace", "grace@x.com")

	require.NoError(t, f.svc.Delete(context.Background(), s.ID))
	assert.Contains(t, f.publisher.types(), events.StudentDeleted)

	_, err := f.svc.Get(context.Background(), s.ID)
	assert.True(t, errors.Is(err, apperr.ErrNotFound))

	err = f.svc.Delete(context.Background(), s.ID)
	require.Error(t, err)
	assert.Equal(t, "Student not found", err.Error())
}

func TestImage(t *testing.T) {
	f := newFixture(t)
	s := f.create(t, "Grace", "grace@x.com")

	_, _, err := f.svc.Image(context.Background(), s.ID)
	require.Error(t, err)
	assert.Equal(t, "Profile image not found", err.Error())

	require.NoError(t, f.svc.UploadImage(context.Background(), s.ID, []byte("jpeg"), "image/jpeg"))

	data, contentType, err := f.svc.Image(context.Background(), s.ID)
	require.NoError(t, err)
	assert.Equal(t, []byte("jpeg"), data)
	assert.Equal(t, "image/jpeg", contentType)
}
