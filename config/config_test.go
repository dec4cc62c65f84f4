package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "5000", cfg.Port)
	assert.Equal(t, 720*time.Hour, cfg.JWTExpire)
	assert.Equal(t, int64(1000000), cfg.MaxFileUpload)
	assert.Equal(t, 10*time.Minute, cfg.ResetTokenTTL)
	assert.False(t, cfg.IsProduction())
	assert.Empty(t, cfg.ESAddrs())
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("PORT", "8080")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("JWT_EXPIRE", "1h")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.test, ,http://b.test")
	t.Setenv("ELASTICSEARCH_ADDRS", "http://es:9200")
	t.Setenv("PUBLIC_BASE_URL", "https://devcamper.io/")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "s3cret", cfg.JWTSecret)
	assert.Equal(t, time.Hour, cfg.JWTExpire)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSOrigins())
	assert.Equal(t, []string{"http://es:9200"}, cfg.ESAddrs())
	assert.Equal(t, "https://devcamper.io", cfg.PublicBaseURL)
}

func TestLoad_InvalidValues(t *testing.T) {
	t.Run("unparsable duration", func(t *testing.T) {
		t.Setenv("JWT_EXPIRE", "soon")
		_, err := Load()
		assert.Error(t, err)
	})
	t.Run("non positive upload size", func(t *testing.T) {
		t.Setenv("MAX_FILE_UPLOAD", "0")
		_, err := Load()
		assert.Error(t, err)
	})
	t.Run("relative public base url", func(t *testing.T) {
		t.Setenv("PUBLIC_BASE_URL", "devcamper.io")
		_, err := Load()
		assert.Error(t, err)
	})
}

func TestPostgresDSN(t *testing.T) {
	cfg := &Config{DBUser: "u", DBPassword: "p", DBHost: "h", DBPort: "5432", DBName: "d", DBSSLMode: "disable"}
	assert.Equal(t, "postgres://u:p@h:5432/d?sslmode=disable", cfg.PostgresDSN())
}

func TestMailFrom(t *testing.T) {
	cfg := &Config{MailFromName: "DevCamper", MailFromEmail: "noreply@devcamper.io"}
	assert.Equal(t, "DevCamper <noreply@devcamper.io>", cfg.MailFrom())

	cfg.MailFromName = ""
	assert.Equal(t, "noreply@devcamper.io", cfg.MailFrom())
}
