package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"salarydash/internal/engine"
	"salarydash/internal/log"
)

type Config struct {
	// HTTP Server
	Port            string
	CORSOrigins     []string
	ShutdownTimeout time.Duration

	// Data
	DataSource         string
	SkipPolicy         string
	MaxSkippedRecorded int
	LoadTimeout        time.Duration

	// Logging
	LogLevel  string
	LogFormat string
}

func Load() *Config {
	return &Config{
		Port:            getEnv("PORT", "8080"),
		CORSOrigins:     getEnvList("CORS_ORIGINS", []string{"*"}),
		ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 10*time.Second),

		DataSource:         getEnv("DATA_SOURCE", "salaries.csv"),
		SkipPolicy:         getEnv("SKIP_POLICY", "count"),
		MaxSkippedRecorded: getEnvInt("MAX_SKIPPED_RECORDED", 1000),
		LoadTimeout:        getEnvDuration("LOAD_TIMEOUT", 30*time.Second),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),
	}
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if strings.TrimSpace(c.DataSource) == "" {
		errors = append(errors, "data source cannot be empty")
	}

	if _, err := engine.ParseSkipPolicy(c.SkipPolicy); err != nil {
		errors = append(errors, err.Error())
	}

	if c.MaxSkippedRecorded < 0 {
		errors = append(errors, fmt.Sprintf("invalid max skipped recorded %d: must not be negative", c.MaxSkippedRecorded))
	}

	if c.LoadTimeout < time.Second {
		errors = append(errors, fmt.Sprintf("invalid load timeout %v: must be at least 1 second", c.LoadTimeout))
	}
	if c.ShutdownTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("invalid shutdown timeout %v: must be positive", c.ShutdownTimeout))
	}

	if _, ok := log.ParseLevel(c.LogLevel); !ok {
		errors = append(errors, fmt.Sprintf("invalid log level '%s': must be one of debug, info, warn, error", c.LogLevel))
	}
	if f := strings.ToLower(c.LogFormat); f != "text" && f != "json" {
		errors = append(errors, fmt.Sprintf("invalid log format '%s': must be text or json", c.LogFormat))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}
	return nil
}

// AggregateOptions turns the data settings into engine options. Call after Validate.
func (c *Config) AggregateOptions() engine.Options {
	policy, _ := engine.ParseSkipPolicy(c.SkipPolicy)
	return engine.Options{Policy: policy, MaxRecorded: c.MaxSkippedRecorded}
}

// LoggerConfig builds the logger settings. Call after Validate.
func (c *Config) LoggerConfig() log.Config {
	lc := log.DefaultConfig()
	lc.Level, _ = log.ParseLevel(c.LogLevel)
	lc.Format = strings.ToLower(c.LogFormat)
	return lc
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, v := range strings.Split(value, ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
