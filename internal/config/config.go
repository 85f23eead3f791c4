// Package config loads dailycheck settings from a YAML or TOML file and the
// environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/sandeepkv93/dailycheck/internal/checkbox"
	"github.com/sandeepkv93/dailycheck/internal/document"
	"github.com/sandeepkv93/dailycheck/internal/recurrence"
	"github.com/sandeepkv93/dailycheck/internal/status"
)

type Config struct {
	LogLevel   string           `yaml:"log_level" toml:"log_level"`
	LogFile    string           `yaml:"log_file" toml:"log_file"`
	Recurrence RecurrenceConfig `yaml:"recurrence" toml:"recurrence"`
	Layout     LayoutConfig     `yaml:"layout" toml:"layout"`
	Statuses   []StatusConfig   `yaml:"statuses" toml:"statuses"`
	Scan       ScanConfig       `yaml:"scan" toml:"scan"`
	Database   DatabaseConfig   `yaml:"database" toml:"database"`
	Scheduler  SchedulerConfig  `yaml:"scheduler" toml:"scheduler"`
	DataDir    string           `yaml:"-" toml:"-"`
}

type RecurrenceConfig struct {
	OffsetHours int  `yaml:"offset_hours" toml:"offset_hours"`
	MaxRetries  int  `yaml:"max_retries" toml:"max_retries"`
	InsertNext  bool `yaml:"insert_next" toml:"insert_next"`
}

type LayoutConfig struct {
	HideRecurrenceRule bool `yaml:"hide_recurrence_rule" toml:"hide_recurrence_rule"`
	HideDoneDate       bool `yaml:"hide_done_date" toml:"hide_done_date"`
	HideRecurrenceDate bool `yaml:"hide_recurrence_date" toml:"hide_recurrence_date"`
	ShortMode          bool `yaml:"short_mode" toml:"short_mode"`
}

// StatusConfig registers a custom status on top of the defaults.
type StatusConfig struct {
	Symbol             string `yaml:"symbol" toml:"symbol"`
	Name               string `yaml:"name" toml:"name"`
	Next               string `yaml:"next" toml:"next"`
	Type               string `yaml:"type" toml:"type"`
	AvailableAsCommand bool   `yaml:"available_as_command" toml:"available_as_command"`
}

type ScanConfig struct {
	Include []string `yaml:"include" toml:"include"`
	Exclude []string `yaml:"exclude" toml:"exclude"`
}

type DatabaseConfig struct {
	// Path defaults to dailycheck.db in the data directory.
	Path     string `yaml:"path" toml:"path"`
	Disabled bool   `yaml:"disabled" toml:"disabled"`
}

type SchedulerConfig struct {
	Buffer        int `yaml:"buffer" toml:"buffer"`
	ReloadSeconds int `yaml:"reload_seconds" toml:"reload_seconds"`
}

func DefaultConfig() Config {
	return Config{
		LogLevel: "info",
		Recurrence: RecurrenceConfig{
			OffsetHours: recurrence.DefaultOffsetHours,
			MaxRetries:  recurrence.DefaultMaxRetries,
			InsertNext:  true,
		},
		Scan: ScanConfig{
			Include: slices.Clone(document.DefaultInclude),
			Exclude: []string{},
		},
		Scheduler: SchedulerConfig{
			Buffer:        64,
			ReloadSeconds: 5,
		},
	}
}

// Load reads configuration from configPath and sets the data directory. A
// missing or empty configPath yields the defaults. Files ending in .toml are
// decoded as TOML, everything else as YAML.
func Load(configPath, dataDir string) (*Config, error) {
	cfg := DefaultConfig()

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			if err := decodeFile(configPath, &cfg); err != nil {
				return nil, err
			}
		}
	}
	cfg.DataDir = dataDir

	cfg = FromEnv(cfg)
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

func decodeFile(path string, cfg *Config) error {
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return fmt.Errorf("parse config file: %w", err)
		}
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func (c *Config) applyDefaults() {
	defaults := DefaultConfig()
	if c.LogLevel == "" {
		c.LogLevel = defaults.LogLevel
	}
	if c.Recurrence.MaxRetries <= 0 {
		c.Recurrence.MaxRetries = defaults.Recurrence.MaxRetries
	}
	if len(c.Scan.Include) == 0 {
		c.Scan.Include = defaults.Scan.Include
	}
	if c.Scheduler.Buffer <= 0 {
		c.Scheduler.Buffer = defaults.Scheduler.Buffer
	}
	if c.Scheduler.ReloadSeconds <= 0 {
		c.Scheduler.ReloadSeconds = defaults.Scheduler.ReloadSeconds
	}
	if c.Database.Path == "" && c.DataDir != "" {
		c.Database.Path = filepath.Join(c.DataDir, "dailycheck.db")
	}
}

// Registry builds the status registry: the defaults plus every configured
// status, first registration winning.
func (c *Config) Registry() *status.Registry {
	reg := status.NewRegistry()
	for _, s := range c.Statuses {
		reg.Add(s.Status())
	}
	return reg
}

func (s StatusConfig) Status() status.Status {
	next := s.Next
	if next == "" {
		next = s.Symbol
	}
	return status.Status{
		Symbol:             s.Symbol,
		Name:               s.Name,
		NextSymbol:         next,
		AvailableAsCommand: s.AvailableAsCommand,
		Type:               status.Type(strings.ToUpper(s.Type)),
	}
}

func (c *Config) CheckboxLayout() checkbox.Layout {
	return checkbox.NewLayout(checkbox.LayoutOptions{
		HideRecurrenceRule: c.Layout.HideRecurrenceRule,
		HideDoneDate:       c.Layout.HideDoneDate,
		HideRecurrenceDate: c.Layout.HideRecurrenceDate,
		ShortMode:          c.Layout.ShortMode,
	})
}

func (c *Config) EngineOptions() []recurrence.Option {
	return []recurrence.Option{
		recurrence.WithOffsetHours(c.Recurrence.OffsetHours),
		recurrence.WithMaxRetries(c.Recurrence.MaxRetries),
	}
}
