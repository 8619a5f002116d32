package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnvDefaults(t *testing.T) {
	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, "userchannels/userchannel1", cfg.Backend.Channel)
	assert.Equal(t, 15*time.Second, cfg.Backend.Timeout)
	assert.Equal(t, 2*time.Second, cfg.Registration.RedirectDelay)
	assert.Equal(t, 60, cfg.Registration.CountdownSeconds)
	assert.Equal(t, 30*time.Minute, cfg.Registration.SessionTTL)
	assert.Equal(t, 5, cfg.Throttle.Limit)
	assert.Empty(t, cfg.Redis.URL)
	assert.Equal(t, 24*time.Hour, cfg.Audit.Retention)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("ENROLL_ADDR", ":9999")
	t.Setenv("ENROLL_BACKEND_BASE_URL", "https://shop.example.com")
	t.Setenv("ENROLL_REGISTRATION_CAMPAIGN", "spring-2026")
	t.Setenv("ENROLL_REGISTRATION_COUNTDOWN_SECONDS", "90")
	t.Setenv("ENROLL_REDIS_URL", "redis://localhost:6379/0")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, ":9999", cfg.Addr)
	assert.Equal(t, "https://shop.example.com", cfg.Backend.BaseURL)
	assert.Equal(t, "spring-2026", cfg.Registration.Campaign)
	assert.Equal(t, 90, cfg.Registration.CountdownSeconds)
	assert.Equal(t, "redis://localhost:6379/0", cfg.Redis.URL)
}

func TestFromEnvRejectsInvalid(t *testing.T) {
	t.Run("non-positive countdown", func(t *testing.T) {
		t.Setenv("ENROLL_REGISTRATION_COUNTDOWN_SECONDS", "0")
		_, err := FromEnv()
		assert.Error(t, err)
	})
	t.Run("zero cleanup interval", func(t *testing.T) {
		t.Setenv("ENROLL_REGISTRATION_CLEANUP_INTERVAL", "0s")
		_, err := FromEnv()
		assert.ErrorContains(t, err, "cleanup interval")
	})
	t.Run("negative cleanup interval", func(t *testing.T) {
		t.Setenv("ENROLL_REGISTRATION_CLEANUP_INTERVAL", "-1m")
		_, err := FromEnv()
		assert.ErrorContains(t, err, "cleanup interval")
	})
	t.Run("throttle without window", func(t *testing.T) {
		t.Setenv("ENROLL_OTP_THROTTLE_WINDOW", "0s")
		_, err := FromEnv()
		assert.ErrorContains(t, err, "throttle window")
	})
	t.Run("disabled throttle ignores window", func(t *testing.T) {
		t.Setenv("ENROLL_OTP_THROTTLE_LIMIT", "0")
		t.Setenv("ENROLL_OTP_THROTTLE_WINDOW", "0s")
		_, err := FromEnv()
		assert.NoError(t, err)
	})
	t.Run("zero audit retention", func(t *testing.T) {
		t.Setenv("ENROLL_AUDIT_RETENTION", "0s")
		_, err := FromEnv()
		assert.ErrorContains(t, err, "audit retention")
	})
	t.Run("malformed duration", func(t *testing.T) {
		t.Setenv("ENROLL_REGISTRATION_SESSION_TTL", "soon")
		_, err := FromEnv()
		assert.Error(t, err)
	})
}
