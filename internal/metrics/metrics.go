package metrics

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type Metrics struct {
	Database     *DatabaseMetrics
	Dependencies *DependencyMetrics
	Messaging    *MessagingMetrics

	adminsRegistered  metric.Int64Counter
	logins            metric.Int64Counter
	resetsRequested   metric.Int64Counter
	resetsCompleted   metric.Int64Counter
	studentsCreated   metric.Int64Counter
	studentsDeleted   metric.Int64Counter
	studentsViewed    metric.Int64Counter
	studentListViewed metric.Int64Counter
}

func New(meter metric.Meter) (*Metrics, error) {
	database, err := NewDatabaseMetrics(meter)
	if err != nil {
		return nil, err
	}

	dependencies, err := NewDependencyMetrics(meter)
	if err != nil {
		return nil, err
	}
	messaging, err := NewMessagingMetrics(meter)
	if err != nil {
		return nil, err
	}

	m := &Metrics{Database: database, Dependencies: dependencies, Messaging: messaging}

	counters := []struct {
		dst         *metric.Int64Counter
		name        string
		description string
		unit        string
	}{
		{&m.adminsRegistered, "admin_panel.admins.registered", "Total number of admins registered", "{admin}"},
		{&m.logins, "admin_panel.logins", "Login attempts by account kind and outcome", "{login}"},
		{&m.resetsRequested, "admin_panel.password_resets.requested", "Password reset tokens issued", "{reset}"},
		{&m.resetsCompleted, "admin_panel.password_resets.completed", "Password resets completed", "{reset}"},
		{&m.studentsCreated, "admin_panel.students.created", "Total number of students created", "{student}"},
		{&m.studentsDeleted, "admin_panel.students.deleted", "Total number of students deleted", "{student}"},
		{&m.studentsViewed, "admin_panel.students.viewed", "Total number of students viewed", "{view}"},
		{&m.studentListViewed, "admin_panel.students.list_viewed", "Total number of times the student list was viewed", "{view}"},
	}

	for _, c := range counters {
		*c.dst, err = meter.Int64Counter(c.name, metric.WithDescription(c.description), metric.WithUnit(c.unit))
		if err != nil {
			return nil, err
		}
	}

	return m, nil
}

// NewMock creates a no-op Metrics instance for testing
// The returned Metrics will safely ignore all Record* calls
func NewMock() *Metrics {
	return &Metrics{
		Database:     &DatabaseMetrics{},
		Dependencies: &DependencyMetrics{},
		Messaging:    &MessagingMetrics{},
	}
}

func add(ctx context.Context, c metric.Int64Counter, attrs ...attribute.KeyValue) {
	if c == nil {
		return
	}
	c.Add(ctx, 1, metric.WithAttributes(attrs...))
}

func (m *Metrics) RecordAdminRegistration(ctx context.Context) {
	if m != nil {
		add(ctx, m.adminsRegistered)
	}
}

// RecordLogin counts a login attempt. kind is "admin" or "student".
func (m *Metrics) RecordLogin(ctx context.Context, kind string, success bool) {
	if m == nil {
		return
	}
	outcome := "failure"
	if success {
		outcome = "success"
	}
	add(ctx, m.logins, attribute.String("kind", kind), attribute.String("outcome", outcome))
}

func (m *Metrics) RecordResetRequested(ctx context.Context, kind string) {
	if m != nil {
		add(ctx, m.resetsRequested, attribute.String("kind", kind))
	}
}

func (m *Metrics) RecordResetCompleted(ctx context.Context, kind string) {
	if m != nil {
		add(ctx, m.resetsCompleted, attribute.String("kind", kind))
	}
}

func (m *Metrics) RecordStudentCreated(ctx context.Context) {
	if m != nil {
		add(ctx, m.studentsCreated)
	}
}

func (m *Metrics) RecordStudentDeleted(ctx context.Context) {
	if m != nil {
		add(ctx, m.studentsDeleted)
	}
}

func (m *Metrics) RecordStudentViewed(ctx context.Context) {
	if m != nil {
		add(ctx, m.studentsViewed)
	}
}

func (m *Metrics) RecordStudentListViewed(ctx context.Context) {
	if m != nil {
		add(ctx, m.studentListViewed)
	}
}
