package config_test

import (
	"testing"
	"time"

	"github.com/Vishwas132/university-admin-panel/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("ENV", "unittest")
	t.Setenv("JWT_SECRET", "s3cret")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "unittest", cfg.Env)
	assert.Equal(t, "5000", cfg.Server.Port)
	assert.Equal(t, "s3cret", cfg.Auth.JWTSecret)
	assert.Equal(t, 24*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, time.Hour, cfg.Auth.ResetTokenTTL)
	assert.Equal(t, int64(5<<20), cfg.Auth.MaxUploadBytes)
	assert.Equal(t, "smtp", cfg.Mail.Transport)
	assert.False(t, cfg.Mail.TestMode)
	assert.NoError(t, cfg.Validate())
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("ENV", "unittest")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("DB_USER", "college")
	t.Setenv("DB_PASSWORD", "pw")
	t.Setenv("EMAIL_TEST_MODE", "true")
	t.Setenv("FRONTEND_URL", "https://panel.college.edu")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092,kafka-2:9092")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "college", cfg.Database.User)
	assert.Equal(t, "pw", cfg.Database.Password)
	assert.True(t, cfg.Mail.TestMode)
	assert.Equal(t, "https://panel.college.edu", cfg.Auth.FrontendURL)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Kafka.Brokers)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.Config
		wantErr bool
	}{
		{"missing secret", config.Config{Mail: config.MailConfig{Transport: "smtp"}}, true},
		{"unknown transport", config.Config{Auth: config.AuthConfig{JWTSecret: "x"}, Mail: config.MailConfig{Transport: "pigeon"}}, true},
		{"nats without url", config.Config{Auth: config.AuthConfig{JWTSecret: "x"}, Mail: config.MailConfig{Transport: "nats"}}, true},
		{"nats with url", config.Config{
			Auth: config.AuthConfig{JWTSecret: "x"},
			Mail: config.MailConfig{Transport: "nats"},
			NATS: config.NATSConfig{URL: "nats://localhost:4222"},
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestIsProduction(t *testing.T) {
	assert.True(t, (&config.Config{Env: "prod"}).IsProduction())
	assert.False(t, (&config.Config{Env: "local"}).IsProduction())
}
