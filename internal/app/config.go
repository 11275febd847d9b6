package app

import (
	"fmt"
	"os"
	"strings"
	"time"
)

type Config struct {
	Env       string
	HTTPAddr  string
	CORSAllow []string

	StaticDir string

	ExecURL     string // remote code execution endpoint
	ExecTimeout time.Duration

	RedisAddr string // empty disables the execution result cache
	RedisDB   int
	CacheTTL  time.Duration

	RoomTTL time.Duration // how long an empty room survives before eviction
}

func LoadConfig() Config {
	cfg := Config{
		Env:       getEnv("APP_ENV", "dev"),
		HTTPAddr:  ":" + getEnv("PORT", "5000"),
		StaticDir: getEnv("STATIC_DIR", "./frontend/dist"),
		ExecURL:   getEnv("EXEC_URL", "https://emkc.org/api/v2/piston/execute"),
		RedisAddr: getEnv("REDIS_ADDR", ""),
	}
	cfg.RedisDB = getEnvInt("REDIS_DB", 0)
	cfg.ExecTimeout = getEnvDur("EXEC_TIMEOUT", 15*time.Second)
	cfg.CacheTTL = getEnvDur("CACHE_TTL", 30*time.Second)
	cfg.RoomTTL = getEnvDur("ROOM_TTL", 10*time.Minute)
	// CORS allowlist (the editor frontend may be served from anywhere)
	cfg.CORSAllow = splitCSV(getEnv("CORS_ALLOW", "*"))
	return cfg
}

// getEnv returns the env var or a default
func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

// getEnvInt parses an int env var with a fallback
func getEnvInt(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		var i int
		_, _ = fmt.Sscanf(v, "%d", &i)
		if i > 0 {
			return i
		}
	}
	return def
}

// getEnvDur parses a duration env var ("30s", "10m") with a fallback
func getEnvDur(k string, def time.Duration) time.Duration {
	if v := os.Getenv(k); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return def
}

// splitCSV trims and filters a comma-separated list
func splitCSV(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		s = strings.TrimSpace(s)
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
