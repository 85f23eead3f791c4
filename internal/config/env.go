package config

import (
	"os"
	"strconv"
	"strings"
)

// FromEnv overrides base with any DAILYCHECK_* variables that are set and
// parse. Values that do not parse are ignored.
func FromEnv(base Config) Config {
	cfg := base
	if v := strings.TrimSpace(os.Getenv("DAILYCHECK_LOG_LEVEL")); v != "" {
		cfg.LogLevel = v
	}
	if v, ok := getEnvInt("DAILYCHECK_OFFSET_HOURS"); ok {
		cfg.Recurrence.OffsetHours = v
	}
	if v, ok := getEnvInt("DAILYCHECK_MAX_RETRIES"); ok && v > 0 {
		cfg.Recurrence.MaxRetries = v
	}
	if v, ok := getEnvBool("DAILYCHECK_INSERT_NEXT"); ok {
		cfg.Recurrence.InsertNext = v
	}
	if v, ok := getEnvBool("DAILYCHECK_SHORT_MODE"); ok {
		cfg.Layout.ShortMode = v
	}
	if v := strings.TrimSpace(os.Getenv("DAILYCHECK_DATABASE_PATH")); v != "" {
		cfg.Database.Path = v
	}
	if v, ok := getEnvInt("DAILYCHECK_SCHEDULER_BUFFER"); ok && v > 0 {
		cfg.Scheduler.Buffer = v
	}
	return cfg
}

func getEnvInt(name string) (int, bool) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return 0, false
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}

func getEnvBool(name string) (bool, bool) {
	raw := strings.TrimSpace(strings.ToLower(os.Getenv(name)))
	if raw == "" {
		return false, false
	}
	switch raw {
	case "1", "true", "yes", "y", "on":
		return true, true
	case "0", "false", "no", "n", "off":
		return false, true
	default:
		return false, false
	}
}
