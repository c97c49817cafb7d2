// Package memstore provides in-memory admin and student repositories for
// service and handler tests.
package memstore

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Vishwas132/university-admin-panel/internal/admin"
	"github.com/Vishwas132/university-admin-panel/internal/resettoken"
	"github.com/Vishwas132/university-admin-panel/internal/student"

	"github.com/google/uuid"
)

type Admins struct {
	mu   sync.Mutex
	rows map[uuid.UUID]*admin.Admin
	// Err, when set, is returned by every call.
	Err error
}

func NewAdmins() *Admins {
	return &Admins{rows: map[uuid.UUID]*admin.Admin{}}
}

var _ admin.Repository = (*Admins)(nil)

func copyAdmin(a *admin.Admin) *admin.Admin {
	c := *a
	c.ProfilePicture = nil
	return &c
}

func (m *Admins) Create(_ context.Context, a *admin.Admin) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	for _, row := range m.rows {
		if row.Email == a.Email {
			return admin.ErrEmailTaken
		}
	}
	now := time.Now()
	a.ID = uuid.New()
	a.CreatedAt, a.UpdatedAt = now, now
	m.rows[a.ID] = copyAdmin(a)
	return nil
}

func (m *Admins) GetByID(_ context.Context, id uuid.UUID) (*admin.Admin, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	row, ok := m.rows[id]
	if !ok {
		return nil, admin.ErrAdminNotFound
	}
	return copyAdmin(row), nil
}

func (m *Admins) GetByEmail(_ context.Context, email string) (*admin.Admin, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	for _, row := range m.rows {
		if row.Email == email {
			return copyAdmin(row), nil
		}
	}
	return nil, admin.ErrAdminNotFound
}

// Get returns the stored row, including fields hidden from default reads.
func (m *Admins) Get(id uuid.UUID) *admin.Admin {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.rows[id]
	if !ok {
		return nil
	}
	c := *row
	return &c
}

func (m *Admins) update(id uuid.UUID, fn func(row *admin.Admin)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	row, ok := m.rows[id]
	if !ok {
		return admin.ErrAdminNotFound
	}
	fn(row)
	return nil
}

func (m *Admins) UpdateProfile(_ context.Context, a *admin.Admin) error {
	m.mu.Lock()
	for id, row := range m.rows {
		if id != a.ID && row.Email == a.Email {
			m.mu.Unlock()
			return admin.ErrEmailTaken
		}
	}
	m.mu.Unlock()
	return m.update(a.ID, func(row *admin.Admin) {
		row.Name, row.Email, row.UpdatedAt = a.Name, a.Email, time.Now()
	})
}

func (m *Admins) UpdatePassword(_ context.Context, id uuid.UUID, passwordHash string) error {
	return m.update(id, func(row *admin.Admin) { row.PasswordHash = passwordHash })
}

func (m *Admins) UpdateLastLogin(_ context.Context, id uuid.UUID, at time.Time) error {
	return m.update(id, func(row *admin.Admin) { row.LastLoginAt = &at })
}

func (m *Admins) SetResetToken(_ context.Context, id uuid.UUID, tokenHash string, expiresAt time.Time) error {
	return m.update(id, func(row *admin.Admin) {
		row.ResetTokenHash, row.ResetTokenExpiresAt = &tokenHash, &expiresAt
	})
}

func (m *Admins) ConsumeResetToken(_ context.Context, tokenHash, passwordHash string, now time.Time) (uuid.UUID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return uuid.Nil, m.Err
	}
	for id, row := range m.rows {
		if row.ResetTokenHash != nil && *row.ResetTokenHash == tokenHash &&
			row.ResetTokenExpiresAt != nil && row.ResetTokenExpiresAt.After(now) {
			row.PasswordHash = passwordHash
			row.ResetTokenHash, row.ResetTokenExpiresAt = nil, nil
			return id, nil
		}
	}
	return uuid.Nil, resettoken.ErrInvalid
}

func (m *Admins) SetPicture(_ context.Context, id uuid.UUID, data []byte, contentType string) error {
	return m.update(id, func(row *admin.Admin) {
		row.ProfilePicture, row.ProfilePictureType = data, contentType
	})
}

func (m *Admins) GetPicture(_ context.Context, id uuid.UUID) ([]byte, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, "", m.Err
	}
	row, ok := m.rows[id]
	if !ok {
		return nil, "", admin.ErrAdminNotFound
	}
	if len(row.ProfilePicture) == 0 {
		return nil, "", admin.ErrNoPicture
	}
	return row.ProfilePicture, row.ProfilePictureType, nil
}

type Students struct {
	mu   sync.Mutex
	rows map[uuid.UUID]*student.Student
	// seq orders rows by creation even when timestamps collide.
	seq  map[uuid.UUID]int
	next int
	Err  error
}

func NewStudents() *Students {
	return &Students{rows: map[uuid.UUID]*student.Student{}, seq: map[uuid.UUID]int{}}
}

var _ student.Repository = (*Students)(nil)

func copyStudent(s *student.Student) *student.Student {
	c := *s
	c.ProfileImage = nil
	c.Qualifications = append([]string(nil), s.Qualifications...)
	return &c
}

func (m *Students) Create(_ context.Context, s *student.Student) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	for _, row := range m.rows {
		if row.Email == s.Email {
			return student.ErrEmailTaken
		}
	}
	now := time.Now()
	s.ID = uuid.New()
	s.CreatedAt, s.UpdatedAt = now, now
	m.rows[s.ID] = copyStudent(s)
	m.next++
	m.seq[s.ID] = m.next
	return nil
}

func (m *Students) List(_ context.Context, params student.ListParams) ([]student.Student, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, 0, m.Err
	}

	search := strings.ToLower(params.Search)
	matched := make([]*student.Student, 0, len(m.rows))
	for _, row := range m.rows {
		if search == "" || strings.Contains(strings.ToLower(row.Name), search) {
			matched = append(matched, row)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		return m.seq[matched[i].ID] > m.seq[matched[j].ID]
	})

	out := make([]student.Student, 0, params.Limit)
	start := (params.Page - 1) * params.Limit
	for i := start; i < len(matched) && i < start+params.Limit; i++ {
		out = append(out, *copyStudent(matched[i]))
	}
	return out, len(matched), nil
}

func (m *Students) GetByID(_ context.Context, id uuid.UUID) (*student.Student, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	row, ok := m.rows[id]
	if !ok {
		return nil, student.ErrStudentNotFound
	}
	return copyStudent(row), nil
}

func (m *Students) GetByEmail(_ context.Context, email string) (*student.Student, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	for _, row := range m.rows {
		if row.Email == email {
			return copyStudent(row), nil
		}
	}
	return nil, student.ErrStudentNotFound
}

// Get returns the stored row, including fields hidden from default reads.
func (m *Students) Get(id uuid.UUID) *student.Student {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.rows[id]
	if !ok {
		return nil
	}
	c := *row
	return &c
}

func (m *Students) update(id uuid.UUID, fn func(row *student.Student)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	row, ok := m.rows[id]
	if !ok {
		return student.ErrStudentNotFound
	}
	fn(row)
	return nil
}

func (m *Students) Update(_ context.Context, s *student.Student) error {
	m.mu.Lock()
	for id, row := range m.rows {
		if id != s.ID && row.Email == s.Email {
			m.mu.Unlock()
			return student.ErrEmailTaken
		}
	}
	m.mu.Unlock()
	return m.update(s.ID, func(row *student.Student) {
		row.Name = s.Name
		row.Email = s.Email
		row.PasswordHash = s.PasswordHash
		row.PhoneNumber = s.PhoneNumber
		row.Qualifications = append([]string(nil), s.Qualifications...)
		row.Gender = s.Gender
		row.UpdatedAt = time.Now()
	})
}

func (m *Students) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	if _, ok := m.rows[id]; !ok {
		return student.ErrStudentNotFound
	}
	delete(m.rows, id)
	delete(m.seq, id)
	return nil
}

func (m *Students) SetResetToken(_ context.Context, id uuid.UUID, tokenHash string, expiresAt time.Time) error {
	return m.update(id, func(row *student.Student) {
		row.ResetTokenHash, row.ResetTokenExpiresAt = &tokenHash, &expiresAt
	})
}

func (m *Students) ConsumeResetToken(_ context.Context, tokenHash, passwordHash string, now time.Time) (uuid.UUID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return uuid.Nil, m.Err
	}
	for id, row := range m.rows {
		if row.ResetTokenHash != nil && *row.ResetTokenHash == tokenHash &&
			row.ResetTokenExpiresAt != nil && row.ResetTokenExpiresAt.After(now) {
			row.PasswordHash = passwordHash
			row.ResetTokenHash, row.ResetTokenExpiresAt = nil, nil
			return id, nil
		}
	}
	return uuid.Nil, resettoken.ErrInvalid
}

func (m *Students) SetImage(_ context.Context, id uuid.UUID, data []byte, contentType string) error {
	return m.update(id, func(row *student.Student) {
		row.ProfileImage, row.ProfileImageType = data, contentType
	})
}

func (m *Students) GetImage(_ context.Context, id uuid.UUID) ([]byte, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, "", m.Err
	}
	row, ok := m.rows[id]
	if !ok {
		return nil, "", student.ErrStudentNotFound
	}
	if len(row.ProfileImage) == 0 {
		return nil, "", student.ErrNoImage
	}
	return row.ProfileImage, row.ProfileImageType, nil
}
