package api

import (
	"os"
	"strconv"
	"strings"
)

// DefaultSubmitLink is the route hint sent with a submission so the server
// can link notifications back to the timesheet list.
const DefaultSubmitLink = "/timesheetlist"

// Config holds all configuration for the timesheet API client.
type Config struct {
	BaseURL     string
	TimeoutMs   int
	MaxRetries  int // applies to reads only
	LogCalls    bool
	MetricsFile string
	SubmitLink  string
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		BaseURL:    "http://localhost:8000/api",
		TimeoutMs:  15000,
		MaxRetries: 1,
		SubmitLink: DefaultSubmitLink,
	}
}

// LoadConfig reads API configuration from environment variables,
// falling back to defaults for any unset values.
func LoadConfig() Config {
	cfg := DefaultConfig()

	if v := os.Getenv("TIMESHEET_API_URL"); v != "" {
		cfg.BaseURL = strings.TrimRight(v, "/")
	}
	if v := os.Getenv("TIMESHEET_API_TIMEOUT_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.TimeoutMs = n
		}
	}
	if v := os.Getenv("TIMESHEET_API_MAX_RETRIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.MaxRetries = n
		}
	}
	if v := os.Getenv("TIMESHEET_LOG_CALLS"); v != "" {
		cfg.LogCalls, _ = strconv.ParseBool(v)
	}
	if v := os.Getenv("TIMESHEET_METRICS_FILE"); v != "" {
		cfg.MetricsFile = v
	}
	if v := os.Getenv("TIMESHEET_SUBMIT_LINK"); v != "" {
		cfg.SubmitLink = v
	}

	return cfg
}
