package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"recon-engine/internal/core"
	"recon-engine/internal/logger"
)

type Config struct {
	DatabaseURL string

	// Match decision thresholds on the 0..100 combined score.
	AutoMatchThreshold float64
	SuggestThreshold   float64

	// Creditor fuzzy match threshold on the 0..1 similarity.
	CreditorThreshold float64

	DateWindowDays int
	MaxCandidates  int
	Workers        int
	PreviewLimit   int

	DedicatedRangeStart   int
	DedicatedRangeEnd     int
	FallbackPaymentMethod string
	Similarity            string

	ServerPort     string
	AllowedOrigins string
	JWTSecret      string

	LogLevel      string
	LogFormat     string
	LogTimeFormat string
	LogOutput     string
}

// Load reads configuration from the environment. DATABASE_URL is checked by the
// commands that need it, not here.
func Load() (*Config, error) {
	c := &Config{
		DatabaseURL:           getEnv("DATABASE_URL", ""),
		FallbackPaymentMethod: getEnv("RECON_FALLBACK_PAYMENT_METHOD", "Rechnung"),
		Similarity:            getEnv("RECON_SIMILARITY", "token"),
		ServerPort:            getEnv("SERVER_PORT", "8080"),
		AllowedOrigins:        getEnv("ALLOWED_ORIGINS", ""),
		JWTSecret:             getEnv("RECON_JWT_SECRET", ""),
		LogLevel:              getEnv("LOG_LEVEL", "info"),
		LogFormat:             getEnv("LOG_FORMAT", "console"),
		LogTimeFormat:         getEnv("LOG_TIME_FORMAT", "2006-01-02T15:04:05Z07:00"),
		LogOutput:             getEnv("LOG_OUTPUT", "stderr"),
	}

	var err error
	floats := []struct {
		key  string
		def  float64
		dest *float64
	}{
		{"RECON_AUTO_MATCH_THRESHOLD", core.DefaultAutoMatchThreshold, &c.AutoMatchThreshold},
		{"RECON_SUGGEST_THRESHOLD", core.DefaultSuggestThreshold, &c.SuggestThreshold},
		{"RECON_CREDITOR_THRESHOLD", core.DefaultCreditorThreshold, &c.CreditorThreshold},
	}
	for _, f := range floats {
		if *f.dest, err = getFloat(f.key, f.def); err != nil {
			return nil, err
		}
	}

	ints := []struct {
		key  string
		def  int
		dest *int
	}{
		{"RECON_DATE_WINDOW_DAYS", core.DefaultDateWindowDays, &c.DateWindowDays},
		{"RECON_MAX_CANDIDATES", core.DefaultMaxCandidates, &c.MaxCandidates},
		{"RECON_WORKERS", 4, &c.Workers},
		{"RECON_PREVIEW_LIMIT", core.DefaultPreviewLimit, &c.PreviewLimit},
		{"RECON_DEDICATED_RANGE_START", 10000, &c.DedicatedRangeStart},
		{"RECON_DEDICATED_RANGE_END", 69999, &c.DedicatedRangeEnd},
	}
	for _, i := range ints {
		if *i.dest, err = getInt(i.key, i.def); err != nil {
			return nil, err
		}
	}

	if err := c.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return c, nil
}

func (c *Config) validate() error {
	if c.SuggestThreshold < 0 || c.AutoMatchThreshold > 100 {
		return fmt.Errorf("thresholds must lie within 0..100")
	}
	if c.SuggestThreshold > c.AutoMatchThreshold {
		return fmt.Errorf("RECON_SUGGEST_THRESHOLD (%v) must not exceed RECON_AUTO_MATCH_THRESHOLD (%v)", c.SuggestThreshold, c.AutoMatchThreshold)
	}
	if c.CreditorThreshold <= 0 || c.CreditorThreshold > 1 {
		return fmt.Errorf("RECON_CREDITOR_THRESHOLD must be in (0,1], got %v", c.CreditorThreshold)
	}
	if c.DedicatedRangeStart >= c.DedicatedRangeEnd {
		return fmt.Errorf("dedicated account range %d..%d is empty", c.DedicatedRangeStart, c.DedicatedRangeEnd)
	}
	if c.Workers < 1 {
		return fmt.Errorf("RECON_WORKERS must be at least 1")
	}
	if c.DateWindowDays < 1 || c.MaxCandidates < 1 {
		return fmt.Errorf("candidate window and cap must be positive")
	}
	return nil
}

// ReconcilerConfig returns the match decision engine settings.
func (c *Config) ReconcilerConfig() core.ReconcilerConfig {
	return core.ReconcilerConfig{
		Thresholds:    core.Thresholds{AutoMatch: c.AutoMatchThreshold, Suggest: c.SuggestThreshold},
		WindowDays:    c.DateWindowDays,
		MaxCandidates: c.MaxCandidates,
		Workers:       c.Workers,
		PreviewLimit:  c.PreviewLimit,
		Similarity:    core.SimilarityByName(c.Similarity),
	}
}

// AccountConfig returns the debtor rule engine settings.
func (c *Config) AccountConfig() core.AccountConfig {
	return core.AccountConfig{
		DedicatedRange: core.AccountRange{Start: c.DedicatedRangeStart, End: c.DedicatedRangeEnd},
		FallbackLabel:  c.FallbackPaymentMethod,
		Workers:        c.Workers,
		PreviewLimit:   c.PreviewLimit,
	}
}

// GetLoggerConfig returns a logger configuration from the main config
func (c *Config) GetLoggerConfig() logger.LogConfig {
	return logger.LogConfig{
		Level:      c.LogLevel,
		Format:     c.LogFormat,
		TimeFormat: c.LogTimeFormat,
		Output:     c.LogOutput,
	}
}

func getEnv(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) (int, error) {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return v, nil
}

func getFloat(key string, defaultValue float64) (float64, error) {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return v, nil
}
