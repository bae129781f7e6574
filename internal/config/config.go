package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port              string
	LogLevel          string
	LogFormat         string
	JurisdictionsFile string
	MaxParallel       int
	ShutdownTimeout   time.Duration
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	MaxBodyBytes      int
}

// Load reads an optional .env file and then the process environment.
// Variables already set in the environment win over .env entries.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds the configuration from a lookup function. Invalid values are
// reported instead of silently replaced by defaults.
func FromEnv(getenv func(string) string) (Config, error) {
	get := func(key, fallback string) string {
		if v := getenv(key); v != "" {
			return v
		}
		return fallback
	}

	cfg := Config{
		Port:              get("PORT", "8080"),
		LogLevel:          get("LOG_LEVEL", "info"),
		LogFormat:         get("LOG_FORMAT", "json"),
		JurisdictionsFile: get("JURISDICTIONS_FILE", ""),
	}

	var errs []error
	cfg.MaxParallel = positiveInt(get("MAX_PARALLEL", "8"), "MAX_PARALLEL", &errs)
	cfg.MaxBodyBytes = positiveInt(get("MAX_BODY_BYTES", "1048576"), "MAX_BODY_BYTES", &errs)
	cfg.ShutdownTimeout = duration(get("SHUTDOWN_TIMEOUT", "10s"), "SHUTDOWN_TIMEOUT", &errs)
	cfg.ReadTimeout = duration(get("READ_TIMEOUT", "15s"), "READ_TIMEOUT", &errs)
	cfg.WriteTimeout = duration(get("WRITE_TIMEOUT", "15s"), "WRITE_TIMEOUT", &errs)

	if p, err := strconv.Atoi(cfg.Port); err != nil || p < 1 || p > 65535 {
		errs = append(errs, fmt.Errorf("PORT: %q is not a valid port", cfg.Port))
	}

	if err := errors.Join(errs...); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Addr is the listen address for the HTTP server.
func (c Config) Addr() string {
	return ":" + c.Port
}

func positiveInt(v, key string, errs *[]error) int {
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		*errs = append(*errs, fmt.Errorf("%s: %q is not a positive integer", key, v))
		return 0
	}
	return n
}

func duration(v, key string, errs *[]error) time.Duration {
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		*errs = append(*errs, fmt.Errorf("%s: %q is not a positive duration", key, v))
		return 0
	}
	return d
}
