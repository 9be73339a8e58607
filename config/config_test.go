package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("SERVER_PORT", "")
	t.Setenv("SESSION_TTL_HOURS", "")
	t.Setenv("ALLOWED_ORIGINS", "")

	cfg := Load()

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins)
	assert.True(t, cfg.EmailTestMode)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("SESSION_TTL_HOURS", "2")
	t.Setenv("ALLOWED_ORIGINS", "http://a.test, http://b.test,")
	t.Setenv("EMAIL_TEST_MODE", "off")
	t.Setenv("ENVIRONMENT", "production")

	cfg := Load()

	assert.Equal(t, 2*time.Hour, cfg.SessionTTL)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.AllowedOrigins)
	assert.False(t, cfg.EmailTestMode)
	assert.True(t, cfg.IsProduction())
}

func TestGetEnvIntRejectsGarbage(t *testing.T) {
	t.Setenv("SOME_INT", "abc")
	assert.Equal(t, 7, getEnvInt("SOME_INT", 7))

	t.Setenv("SOME_INT", "-3")
	assert.Equal(t, 7, getEnvInt("SOME_INT", 7))
}

func TestR2Configured(t *testing.T) {
	cfg := &Config{R2AccountID: "acc", R2AccessKeyID: "key", R2SecretAccessKey: "secret"}
	assert.False(t, cfg.R2Configured())

	cfg.R2BucketName = "bucket"
	assert.True(t, cfg.R2Configured())
}
