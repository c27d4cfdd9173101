package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("MONGO_URI", "mongodb://localhost:27017")
	t.Setenv("DATABASE_NAME", "auth")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("SMTP_EMAIL", "noreply@example.com")
	t.Setenv("SMTP_PASSWORD", "app-password")
	for _, k := range []string{"HTTP_ADDR", "STORE_DRIVER", "DATABASE_URL", "SMTP_HOST", "SMTP_PORT", "REQUEST_TIMEOUT", "TOKEN_TTL", "SNOWFLAKE_NODE"} {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DefaultHTTPAddr, cfg.HTTPAddr)
	assert.Equal(t, DriverMongo, cfg.StoreDriver)
	assert.Equal(t, DefaultSMTPHost, cfg.SMTPHost)
	assert.Equal(t, DefaultSMTPPort, cfg.SMTPPort)
	assert.Equal(t, time.Hour, cfg.TokenTTL)
	assert.Equal(t, 10*time.Second, cfg.RequestTimeout)
	assert.Equal(t, int64(1), cfg.SnowflakeNode)
}

func TestLoad_MissingRequired(t *testing.T) {
	for _, key := range []string{"MONGO_URI", "DATABASE_NAME", "JWT_SECRET", "SMTP_EMAIL", "SMTP_PASSWORD"} {
		t.Run(key, func(t *testing.T) {
			setRequired(t)
			t.Setenv(key, "")

			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), key)
		})
	}
}

func TestLoad_PostgresDriver(t *testing.T) {
	setRequired(t)
	t.Setenv("STORE_DRIVER", DriverPostgres)
	t.Setenv("MONGO_URI", "")
	t.Setenv("DATABASE_NAME", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL")

	t.Setenv("DATABASE_URL", "postgres://u:p@localhost/auth?sslmode=disable")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, DriverPostgres, cfg.StoreDriver)
}

func TestLoad_UnknownDriver(t *testing.T) {
	setRequired(t)
	t.Setenv("STORE_DRIVER", "redis")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "STORE_DRIVER")
}

func TestLoad_BadValues(t *testing.T) {
	cases := map[string]string{
		"REQUEST_TIMEOUT": "soon",
		"TOKEN_TTL":       "1 hour",
		"SMTP_PORT":       "smtp",
		"SNOWFLAKE_NODE":  "one",
	}
	for key, val := range cases {
		t.Run(key, func(t *testing.T) {
			setRequired(t)
			t.Setenv(key, val)

			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), key)
		})
	}
}

func TestLoad_InvalidSMTPEmail(t *testing.T) {
	setRequired(t)
	t.Setenv("SMTP_EMAIL", "not-an-email")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SMTP_EMAIL")
}

func TestLoad_Overrides(t *testing.T) {
	setRequired(t)
	t.Setenv("HTTP_ADDR", "127.0.0.1:8080")
	t.Setenv("SMTP_PORT", "2525")
	t.Setenv("TOKEN_TTL", "30m")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:8080", cfg.HTTPAddr)
	assert.Equal(t, 2525, cfg.SMTPPort)
	assert.Equal(t, 30*time.Minute, cfg.TokenTTL)
}
