package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config represents the full service configuration surface.
type Config struct {
	DBPath    string
	Addr      string
	JWTSecret string // empty means generate-and-persist in settings
	LogPath   string

	// Alert policy: the fraction of the minimum threshold below which a low
	// condition escalates to critical.
	CriticalFraction float64

	// Dashboard snapshot window for the recent-transaction count.
	RecentWindow time.Duration

	// Bound on waiting for a stock record's critical section.
	LockWait time.Duration

	// Cron expression for the scheduled ledger reconciliation.
	ReconcileCron string

	// BCP 47 locale tag for list-view collation.
	Locale string
}

// Load reads environment variables (optionally from the provided env file)
// and materializes a Config instance.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("loading env file %s: %w", envFile, err)
			}
		}
	} else {
		// Missing .env files are fine when configuration comes from the
		// environment directly.
		_ = godotenv.Load()
	}

	cfg := &Config{
		DBPath:        getenvWithDefault("MEDINV_DB", "medinv.sqlite3"),
		Addr:          getenvWithDefault("MEDINV_ADDR", ":8080"),
		JWTSecret:     os.Getenv("MEDINV_JWT_SECRET"),
		LogPath:       os.Getenv("MEDINV_LOG"),
		ReconcileCron: getenvWithDefault("MEDINV_RECONCILE_CRON", "@hourly"),
		Locale:        getenvWithDefault("MEDINV_LOCALE", "en"),
	}

	var err error
	cfg.CriticalFraction, err = parseFloat("MEDINV_CRITICAL_FRACTION", 0.3)
	if err != nil {
		return nil, err
	}
	cfg.RecentWindow, err = parseDuration("MEDINV_RECENT_WINDOW", 24*time.Hour)
	if err != nil {
		return nil, err
	}
	cfg.LockWait, err = parseDuration("MEDINV_LOCK_WAIT", 3*time.Second)
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if c.DBPath == "" {
		return errors.New("MEDINV_DB must not be empty")
	}
	if c.Addr == "" {
		return errors.New("MEDINV_ADDR must not be empty")
	}
	if c.CriticalFraction <= 0 || c.CriticalFraction > 1 {
		return errors.New("MEDINV_CRITICAL_FRACTION must be in (0, 1]")
	}
	if c.RecentWindow <= 0 {
		return errors.New("MEDINV_RECENT_WINDOW must be positive")
	}
	if c.LockWait <= 0 {
		return errors.New("MEDINV_LOCK_WAIT must be positive")
	}
	if c.ReconcileCron == "" {
		return errors.New("MEDINV_RECONCILE_CRON must not be empty")
	}
	return nil
}

func getenvWithDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func parseFloat(key string, fallback float64) (float64, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing %s: %w", key, err)
	}
	return f, nil
}

func parseDuration(key string, fallback time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("parsing %s: %w", key, err)
	}
	return d, nil
}
