package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	placeholderTMDBKey   = "your_tmdb_api_key_here"
	placeholderGeminiKey = "your_gemini_api_key_here"

	defaultPort     = "3001"
	defaultCacheTTL = 10 * time.Minute
)

// Config holds the process configuration, read once at startup.
type Config struct {
	Port         string
	Environment  string
	TMDBAPIKey   string
	GeminiAPIKey string
	CacheTTL     time.Duration
}

// Load reads configuration from the environment. Placeholder values copied
// from a sample .env are treated the same as missing keys.
func Load() Config {
	cfg := Config{
		Port:         envOr("PORT", defaultPort),
		Environment:  envOr("ENVIRONMENT", "development"),
		TMDBAPIKey:   strings.TrimSpace(os.Getenv("TMDB_API_KEY")),
		GeminiAPIKey: strings.TrimSpace(os.Getenv("GEMINI_API_KEY")),
		CacheTTL:     defaultCacheTTL,
	}

	if v := os.Getenv("CACHE_TTL_MINUTES"); v != "" {
		if minutes, err := strconv.Atoi(v); err == nil && minutes > 0 {
			cfg.CacheTTL = time.Duration(minutes) * time.Minute
		}
	}

	if cfg.TMDBAPIKey == placeholderTMDBKey {
		cfg.TMDBAPIKey = ""
	}
	if cfg.GeminiAPIKey == placeholderGeminiKey {
		cfg.GeminiAPIKey = ""
	}

	return cfg
}

// IsProduction reports whether the process runs in production mode. Error
// responses omit internal details in production.
func (c Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}
