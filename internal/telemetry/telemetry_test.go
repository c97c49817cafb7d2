package telemetry_test

import (
	"context"
	"testing"

	"github.com/Vishwas132/university-admin-panel/internal/logger"
	"github.com/Vishwas132/university-admin-panel/internal/telemetry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitWithoutEndpoint(t *testing.T) {
	ctx := context.Background()
	log := logger.Discard()

	tel, err := telemetry.Init(ctx, telemetry.Config{}, "admin-panel", "test", log)
	require.NoError(t, err)
	require.NotNil(t, tel.Metrics)

	assert.NotPanics(t, func() { tel.Metrics.RecordAdminRegistration(ctx) })
	assert.NoError(t, tel.Shutdown(ctx, log))
}

func TestShutdownNil(t *testing.T) {
	var tel *telemetry.Telemetry
	assert.NoError(t, tel.Shutdown(context.Background(), logger.Discard()))
}
