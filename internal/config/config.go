// Package config loads polylearner's settings from an optional YAML, TOML
// or JSON file plus POLYLEARNER_* environment overrides.
package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/alexanderramin/polylearner/internal/intelligence"
	"github.com/alexanderramin/polylearner/internal/llm"
	"github.com/alexanderramin/polylearner/internal/scheduler"
)

type Config struct {
	DBPath       string             `json:"db_path"`
	Timezone     string             `json:"timezone"`
	Schedule     ScheduleConfig     `json:"schedule"`
	AutoSchedule AutoScheduleConfig `json:"auto_schedule"`
	Calendar     CalendarConfig     `json:"calendar"`
	Daemon       DaemonConfig       `json:"daemon"`
	LLM          llm.LLMConfig      `json:"llm"`
	Log          LogConfig          `json:"log"`
}

// ScheduleConfig is the default window for weekly plans.
type ScheduleConfig struct {
	DailyStart  int                      `json:"daily_start"`
	DailyEnd    int                      `json:"daily_end"`
	Preferences intelligence.Preferences `json:"preferences"`
}

// AutoScheduleConfig bounds calendar auto-scheduling runs.
type AutoScheduleConfig struct {
	MaxDailyHours    float64 `json:"max_daily_hours"`
	MaxTasksPerDay   int     `json:"max_tasks_per_day"`
	WorkStartHour    int     `json:"work_start_hour"`
	WorkEndHour      int     `json:"work_end_hour"`
	StepMinutes      int     `json:"step_minutes"`
	MaxAttempts      int     `json:"max_attempts"`
	MinSlotMinutes   int     `json:"min_slot_minutes"`
	SpacingMinutes   int     `json:"spacing_minutes"`
	SpreadAfterTasks int     `json:"spread_after_tasks"`
	HorizonDays      int     `json:"horizon_days"`
	LookaheadDays    int     `json:"lookahead_days"`
}

type CalendarConfig struct {
	Enabled         bool   `json:"enabled"`
	CalendarID      string `json:"calendar_id"`
	CredentialsFile string `json:"credentials_file"`
	TokenFile       string `json:"token_file"`
	RedirectAddr    string `json:"redirect_addr"`
	// DryRun reads busy time from the real calendar but writes to memory.
	DryRun bool `json:"dry_run"`
}

type DaemonConfig struct {
	Cron string `json:"cron"`
}

type LogConfig struct {
	Level  string `json:"level"`
	Format string `json:"format"`
}

// Dir is polylearner's home directory, ~/.polylearner.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("finding home directory: %w", err)
	}
	return filepath.Join(home, ".polylearner"), nil
}

// DefaultPath is the config file read when no path is given.
func DefaultPath() string {
	dir, err := Dir()
	if err != nil {
		return "config.yaml"
	}
	return filepath.Join(dir, "config.yaml")
}

func Default() Config {
	dir, err := Dir()
	if err != nil {
		dir = ".polylearner"
	}
	load := scheduler.DefaultLoadConfig()
	return Config{
		DBPath:   filepath.Join(dir, "polylearner.db"),
		Timezone: "Local",
		Schedule: ScheduleConfig{
			DailyStart:  9,
			DailyEnd:    17,
			Preferences: intelligence.DefaultPreferences(),
		},
		AutoSchedule: AutoScheduleConfig{
			MaxDailyHours:    load.MaxDailyHours,
			MaxTasksPerDay:   load.MaxTasksPerDay,
			WorkStartHour:    load.WorkStartHour,
			WorkEndHour:      load.WorkEndHour,
			StepMinutes:      int(load.Step / time.Minute),
			MaxAttempts:      load.MaxAttempts,
			MinSlotMinutes:   int(load.MinSlot / time.Minute),
			SpacingMinutes:   int(load.Spacing / time.Minute),
			SpreadAfterTasks: load.SpreadAfterTasks,
			HorizonDays:      load.HorizonDays,
			LookaheadDays:    7,
		},
		Calendar: CalendarConfig{
			CalendarID:      "primary",
			CredentialsFile: filepath.Join(dir, "credentials.json"),
			TokenFile:       filepath.Join(dir, "token.json"),
			RedirectAddr:    "127.0.0.1:6789",
		},
		Daemon: DaemonConfig{Cron: "0 7 * * 1-5"},
		LLM:    llm.DefaultConfig(),
		Log:    LogConfig{Level: "info", Format: "text"},
	}
}

// Load reads path over the defaults and applies environment overrides. A
// missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(expandHome(path))
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return Config{}, fmt.Errorf("reading config: %w", err)
		default:
			if err := decode(path, data, &cfg); err != nil {
				return Config{}, fmt.Errorf("parsing %s: %w", path, err)
			}
		}
	}
	ApplyEnv(&cfg)
	cfg.DBPath = expandHome(cfg.DBPath)
	cfg.Calendar.CredentialsFile = expandHome(cfg.Calendar.CredentialsFile)
	cfg.Calendar.TokenFile = expandHome(cfg.Calendar.TokenFile)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// decode converts YAML and TOML to JSON first so every format goes
// through the same strict decoder.
func decode(path string, data []byte, cfg *Config) error {
	j, err := toJSON(path, data)
	if err != nil {
		return err
	}
	dec := json.NewDecoder(bytes.NewReader(j))
	dec.DisallowUnknownFields()
	return dec.Decode(cfg)
}

// ApplyEnv overrides cfg with any POLYLEARNER_* variables that are set.
func ApplyEnv(cfg *Config) {
	setString := func(name string, dst *string) {
		if v := os.Getenv(name); v != "" {
			*dst = v
		}
	}
	setInt := func(name string, dst *int) {
		if v := os.Getenv(name); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				*dst = n
			}
		}
	}

	setString("POLYLEARNER_DB", &cfg.DBPath)
	setString("POLYLEARNER_TIMEZONE", &cfg.Timezone)
	setInt("POLYLEARNER_DAILY_START", &cfg.Schedule.DailyStart)
	setInt("POLYLEARNER_DAILY_END", &cfg.Schedule.DailyEnd)
	setString("POLYLEARNER_PEAK_HOURS", &cfg.Schedule.Preferences.PeakHours)
	setString("POLYLEARNER_CALENDAR_ID", &cfg.Calendar.CalendarID)
	setString("POLYLEARNER_CALENDAR_CREDENTIALS", &cfg.Calendar.CredentialsFile)
	setString("POLYLEARNER_CALENDAR_TOKEN", &cfg.Calendar.TokenFile)
	if v := os.Getenv("POLYLEARNER_CALENDAR_ENABLED"); v != "" {
		cfg.Calendar.Enabled, _ = strconv.ParseBool(v)
	}
	if v := os.Getenv("POLYLEARNER_CALENDAR_DRY_RUN"); v != "" {
		cfg.Calendar.DryRun, _ = strconv.ParseBool(v)
	}
	setString("POLYLEARNER_DAEMON_CRON", &cfg.Daemon.Cron)
	setString("POLYLEARNER_LOG_LEVEL", &cfg.Log.Level)
	setString("POLYLEARNER_LOG_FORMAT", &cfg.Log.Format)
	llm.ApplyEnv(&cfg.LLM)
}

func (c Config) Validate() error {
	if err := scheduler.ValidateWindow(c.Schedule.DailyStart, c.Schedule.DailyEnd); err != nil {
		return fmt.Errorf("schedule: %w", err)
	}
	if err := c.AutoSchedule.LoadConfig().Validate(); err != nil {
		return fmt.Errorf("auto_schedule: %w", err)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	if _, err := parseLevel(c.Log.Level); err != nil {
		return err
	}
	switch strings.ToLower(c.Log.Format) {
	case "", "text", "json":
	default:
		return fmt.Errorf("log.format must be text or json, got %q", c.Log.Format)
	}
	return nil
}

// Location resolves Timezone; empty and "Local" mean the system zone.
func (c Config) Location() (*time.Location, error) {
	tz := strings.TrimSpace(c.Timezone)
	if tz == "" || strings.EqualFold(tz, "local") {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("timezone %q: %w", tz, err)
	}
	return loc, nil
}

// LoadConfig converts the file representation into scheduler limits.
func (a AutoScheduleConfig) LoadConfig() scheduler.LoadConfig {
	return scheduler.LoadConfig{
		MaxDailyHours:    a.MaxDailyHours,
		MaxTasksPerDay:   a.MaxTasksPerDay,
		WorkStartHour:    a.WorkStartHour,
		WorkEndHour:      a.WorkEndHour,
		Step:             time.Duration(a.StepMinutes) * time.Minute,
		MaxAttempts:      a.MaxAttempts,
		MinSlot:          time.Duration(a.MinSlotMinutes) * time.Minute,
		Spacing:          time.Duration(a.SpacingMinutes) * time.Minute,
		SpreadAfterTasks: a.SpreadAfterTasks,
		HorizonDays:      a.HorizonDays,
	}
}

func expandHome(p string) string {
	if p == "~" || strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(p, "~"))
		}
	}
	return p
}
