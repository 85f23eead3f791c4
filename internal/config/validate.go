package config

import (
	"fmt"
	"os"
	"path/filepath"
	"unicode/utf8"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/hay-kot/criterio"
	"github.com/rs/zerolog"

	"github.com/sandeepkv93/dailycheck/internal/status"
)

const (
	minOffsetHours = -12
	maxOffsetHours = 14
)

// Validate checks the structure of the configuration.
func (c *Config) Validate() error {
	return criterio.ValidateStruct(
		criterio.Run("log_level", c.LogLevel, validLogLevel),
		intField("recurrence.offset_hours", c.Recurrence.OffsetHours, validOffset),
		intField("recurrence.max_retries", c.Recurrence.MaxRetries, positive),
		intField("scheduler.buffer", c.Scheduler.Buffer, positive),
		c.validateStatuses(),
		c.validateScan(),
	)
}

// ValidateDeep runs Validate and then checks the database location on disk.
func (c *Config) ValidateDeep() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.Database.Disabled || c.Database.Path == "" {
		return nil
	}
	return criterio.ValidateStruct(
		criterio.Run("database.path", c.Database.Path, isFileOrNotExist),
	)
}

func intField(field string, v int, check func(int) error) error {
	if err := check(v); err != nil {
		return criterio.NewFieldErrors(field, err)
	}
	return nil
}

func validLogLevel(level string) error {
	if _, err := zerolog.ParseLevel(level); err != nil {
		return fmt.Errorf("unknown level %q", level)
	}
	return nil
}

func validOffset(hours int) error {
	if hours < minOffsetHours || hours > maxOffsetHours {
		return fmt.Errorf("must be between %d and %d, got %d", minOffsetHours, maxOffsetHours, hours)
	}
	return nil
}

func positive(n int) error {
	if n < 1 {
		return fmt.Errorf("must be at least 1")
	}
	return nil
}

func (c *Config) validateStatuses() error {
	var errs criterio.FieldErrorsBuilder
	seen := make(map[string]int, len(c.Statuses))
	for i, s := range c.Statuses {
		field := fmt.Sprintf("statuses[%d]", i)
		if utf8.RuneCountInString(s.Symbol) != 1 {
			errs = errs.Append(field+".symbol", fmt.Errorf("must be a single character, got %q", s.Symbol))
		} else if prev, ok := seen[s.Symbol]; ok {
			errs = errs.Append(field+".symbol", fmt.Errorf("%q already used by statuses[%d]", s.Symbol, prev))
		} else {
			seen[s.Symbol] = i
		}
		if s.Next != "" && utf8.RuneCountInString(s.Next) != 1 {
			errs = errs.Append(field+".next", fmt.Errorf("must be a single character, got %q", s.Next))
		}
		st := s.Status()
		if !st.Type.IsValid() || st.Type == status.TypeEmpty {
			errs = errs.Append(field+".type", fmt.Errorf("unknown type %q", s.Type))
		}
		if s.Name == "" {
			errs = errs.Append(field+".name", fmt.Errorf("name is required"))
		}
	}
	return errs.ToError()
}

func (c *Config) validateScan() error {
	var errs criterio.FieldErrorsBuilder
	for i, p := range c.Scan.Include {
		if !doublestar.ValidatePattern(p) {
			errs = errs.Append(fmt.Sprintf("scan.include[%d]", i), fmt.Errorf("invalid pattern %q", p))
		}
	}
	for i, p := range c.Scan.Exclude {
		if !doublestar.ValidatePattern(p) {
			errs = errs.Append(fmt.Sprintf("scan.exclude[%d]", i), fmt.Errorf("invalid pattern %q", p))
		}
	}
	return errs.ToError()
}

func isFileOrNotExist(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			if dir, derr := os.Stat(filepath.Dir(path)); derr == nil && !dir.IsDir() {
				return fmt.Errorf("parent of %s is not a directory", path)
			}
			return nil
		}
		return fmt.Errorf("cannot access: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory, not a file", path)
	}
	return nil
}
