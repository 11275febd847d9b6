package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfig_Defaults(t *testing.T) {
	for _, k := range []string{
		"APP_ENV", "PORT", "STATIC_DIR", "EXEC_URL", "EXEC_TIMEOUT",
		"REDIS_ADDR", "REDIS_DB", "CACHE_TTL", "ROOM_TTL", "CORS_ALLOW",
	} {
		t.Setenv(k, "")
	}

	cfg := LoadConfig()
	assert.Equal(t, "dev", cfg.Env)
	assert.Equal(t, ":5000", cfg.HTTPAddr)
	assert.Equal(t, "./frontend/dist", cfg.StaticDir)
	assert.Equal(t, "https://emkc.org/api/v2/piston/execute", cfg.ExecURL)
	assert.Equal(t, 15*time.Second, cfg.ExecTimeout)
	assert.Empty(t, cfg.RedisAddr)
	assert.Equal(t, 10*time.Minute, cfg.RoomTTL)
	assert.Equal(t, []string{"*"}, cfg.CORSAllow)
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("APP_ENV", "prod")
	t.Setenv("PORT", "9000")
	t.Setenv("ROOM_TTL", "30m")
	t.Setenv("EXEC_TIMEOUT", "2s")
	t.Setenv("CORS_ALLOW", "https://a.example, https://b.example")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("REDIS_DB", "3")

	cfg := LoadConfig()
	assert.Equal(t, "prod", cfg.Env)
	assert.Equal(t, ":9000", cfg.HTTPAddr)
	assert.Equal(t, 30*time.Minute, cfg.RoomTTL)
	assert.Equal(t, 2*time.Second, cfg.ExecTimeout)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllow)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
	assert.Equal(t, 3, cfg.RedisDB)
}

func TestLoadConfig_BadValuesFallBack(t *testing.T) {
	t.Setenv("ROOM_TTL", "not-a-duration")
	t.Setenv("REDIS_DB", "minus two")

	cfg := LoadConfig()
	assert.Equal(t, 10*time.Minute, cfg.RoomTTL)
	assert.Equal(t, 0, cfg.RedisDB)
}
