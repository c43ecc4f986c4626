package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "/api/v1", cfg.APIPrefix)
	assert.Equal(t, 2*time.Hour, cfg.Sessions.DraftTTL)
	assert.Equal(t, 10*time.Minute, cfg.Courses.CacheTTL)
	assert.True(t, cfg.Courses.CacheEnabled)
	assert.False(t, cfg.Redis.Enabled)
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("SESSION_DRAFT_TTL", "15m")
	t.Setenv("SESSION_MAX_CONCURRENT_WRITES", "4")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example ,")
	t.Setenv("COURSE_CACHE_TTL", "not-a-duration")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, 15*time.Minute, cfg.Sessions.DraftTTL)
	assert.Equal(t, 4, cfg.Sessions.MaxConcurrentWrites)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, 10*time.Minute, cfg.Courses.CacheTTL)
}

func TestSessionLocation(t *testing.T) {
	assert.Equal(t, time.UTC, SessionConfig{}.Location())
	assert.Equal(t, time.UTC, SessionConfig{Timezone: "Nowhere/Invalid"}.Location())
	assert.Equal(t, "UTC", SessionConfig{Timezone: "UTC"}.Location().String())
}
