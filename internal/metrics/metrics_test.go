package metrics_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/Vishwas132/university-admin-panel/internal/metrics"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Aggregation {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	out := map[string]metricdata.Aggregation{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m.Data
		}
	}
	return out
}

func TestRecorders(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	m, err := metrics.New(provider.Meter("test"))
	require.NoError(t, err)

	ctx := context.Background()
	m.RecordLogin(ctx, "admin", true)
	m.RecordLogin(ctx, "admin", false)
	m.RecordStudentCreated(ctx)
	m.Database.RecordQuery(ctx, "select", "admins", 3*time.Millisecond, nil)
	m.Database.RecordQuery(ctx, "select", "admins", time.Millisecond, sql.ErrNoRows)
	m.Database.RecordQuery(ctx, "insert", "admins", time.Millisecond, errors.New("duplicate"))

	data := collect(t, reader)

	logins, ok := data["admin_panel.logins"].(metricdata.Sum[int64])
	require.True(t, ok)
	assert.Len(t, logins.DataPoints, 2)

	created, ok := data["admin_panel.students.created"].(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, created.DataPoints, 1)
	assert.Equal(t, int64(1), created.DataPoints[0].Value)

	queryErrors, ok := data["db.query.errors"].(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, queryErrors.DataPoints, 1)
	assert.Equal(t, int64(1), queryErrors.DataPoints[0].Value)
}

func TestMockIgnoresCalls(t *testing.T) {
	m := metrics.NewMock()
	ctx := context.Background()

	assert.NotPanics(t, func() {
		m.RecordAdminRegistration(ctx)
		m.RecordLogin(ctx, "student", true)
		m.RecordResetRequested(ctx, "admin")
		m.RecordResetCompleted(ctx, "admin")
		m.RecordStudentDeleted(ctx)
		m.Database.RecordQuery(ctx, "select", "students", time.Millisecond, nil)
		m.Dependencies.RecordCheck(ctx, "postgres", time.Millisecond, nil)
		m.Messaging.RecordPublish(ctx, "kafka", "account-events", time.Millisecond, nil)
	})

	var nilMetrics *metrics.Metrics
	assert.NotPanics(t, func() { nilMetrics.RecordStudentViewed(ctx) })
}

func TestDependencyAndMessaging(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	m, err := metrics.New(provider.Meter("test"))
	require.NoError(t, err)

	ctx := context.Background()
	m.Dependencies.RecordCheck(ctx, "postgres", 2*time.Millisecond, nil)
	m.Dependencies.RecordCheck(ctx, "postgres", 2*time.Millisecond, errors.New("down"))
	m.Messaging.RecordPublish(ctx, "nats", "mail.outbound", time.Millisecond, nil)
	m.Messaging.RecordPublish(ctx, "nats", "mail.outbound", time.Millisecond, errors.New("timeout"))

	data := collect(t, reader)

	up, ok := data["dependency.up"].(metricdata.Gauge[int64])
	require.True(t, ok)
	require.Len(t, up.DataPoints, 1)
	assert.Equal(t, int64(0), up.DataPoints[0].Value)

	published, ok := data["messaging.messages.published"].(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, published.DataPoints, 1)
	assert.Equal(t, int64(2), published.DataPoints[0].Value)

	failed, ok := data["messaging.message.errors"].(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, failed.DataPoints, 1)
	assert.Equal(t, int64(1), failed.DataPoints[0].Value)
}

func TestRegisterRuntime(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	require.NoError(t, metrics.RegisterRuntime(provider.Meter("test")))

	data := collect(t, reader)

	goroutines, ok := data["runtime.go.goroutines"].(metricdata.Gauge[int64])
	require.True(t, ok)
	require.Len(t, goroutines.DataPoints, 1)
	assert.Positive(t, goroutines.DataPoints[0].Value)
	assert.Contains(t, data, "service.uptime")
}
