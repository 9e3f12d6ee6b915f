package config

import (
	"log/slog"
	"os"
	"strconv"
)

type Config struct {
	Port        string
	DatabaseDSN string
	Env         string

	// TaxRate is the flat VAT rate applied to every invoice (0..1).
	// Kept out of the ledger so a per-jurisdiction scheme can replace it later.
	TaxRate float64

	// FreeClientLimit caps the number of clients on the free plan.
	FreeClientLimit int

	AIBaseURL string
	AIAPIKey  string
	AIModel   string
}

// Load loads configuration from environment with sensible defaults.
// Precedence: explicit env var > .env file (if loaded by caller) > default.
func Load() Config {
	cfg := Config{}
	cfg.Port = getEnv("PORT", "8080")
	cfg.DatabaseDSN = getEnv("DATABASE_DSN", "")
	cfg.Env = getEnv("APP_ENV", "development")
	cfg.TaxRate = ParseFloat("TAX_RATE", 0.23)
	cfg.FreeClientLimit = ParseInt("FREE_PLAN_CLIENT_LIMIT", 5)
	cfg.AIBaseURL = getEnv("AI_BASE_URL", "https://api.openai.com/v1")
	cfg.AIAPIKey = getEnv("AI_API_KEY", "")
	cfg.AIModel = getEnv("AI_MODEL", "gpt-4o-mini")
	return cfg
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// ParseBool reads an env var as bool with default.
func ParseBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			slog.Warn("invalid boolean env var", "key", key, "value", v)
			return def
		}
		return b
	}
	return def
}

// ParseFloat reads an env var as float64 with default.
func ParseFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			slog.Warn("invalid float env var", "key", key, "value", v)
			return def
		}
		return f
	}
	return def
}

// ParseInt reads an env var as int with default.
func ParseInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			slog.Warn("invalid integer env var", "key", key, "value", v)
			return def
		}
		return n
	}
	return def
}
