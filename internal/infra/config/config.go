package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// AppConfig holds all configuration for the generation engine
type AppConfig struct {
	DatabaseURL          string
	LogLevel             string
	Environment          string
	CronSpecMeetingSweep string // Periodic meeting occurrence materialization
	CronSpecTaskSweep    string // Periodic recurring-task generation
	MeetingWindowDays    int    // Lookahead window for scheduled meeting sweeps
}

// Load reads configuration from environment variables and .env file (if present).
func Load() (*AppConfig, error) {
	// Attempt to load .env file. Errors are ignored if the file doesn't exist.
	// godotenv.Load will not override existing env variables.
	_ = godotenv.Load()

	cfg := &AppConfig{}

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is not set")
	}

	cfg.LogLevel = strings.ToLower(os.Getenv("LOG_LEVEL"))
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info" // Default log level
	}

	cfg.Environment = strings.ToLower(os.Getenv("ENVIRONMENT"))
	if cfg.Environment == "" {
		cfg.Environment = "development" // Default environment
	}

	cfg.CronSpecMeetingSweep = os.Getenv("CRON_SPEC_MEETING_SWEEP")
	if cfg.CronSpecMeetingSweep == "" {
		cfg.CronSpecMeetingSweep = "0 6 * * *" // Default: 06:00 daily
	}

	cfg.CronSpecTaskSweep = os.Getenv("CRON_SPEC_TASK_SWEEP")
	if cfg.CronSpecTaskSweep == "" {
		cfg.CronSpecTaskSweep = "0 5 * * *" // Default: 05:00 daily
	}

	windowStr := os.Getenv("MEETING_WINDOW_DAYS")
	if windowStr == "" {
		cfg.MeetingWindowDays = 90 // Default: generate 90 days ahead
	} else {
		window, err := strconv.Atoi(windowStr)
		if err != nil || window <= 0 {
			return nil, fmt.Errorf("invalid MEETING_WINDOW_DAYS: %q", windowStr)
		}
		cfg.MeetingWindowDays = window
	}

	return cfg, nil
}
