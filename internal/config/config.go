// Package config resolves runtime settings from the environment.
package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/alexanderramin/kurva/internal/calendar"
	"github.com/alexanderramin/kurva/internal/domain"
	"github.com/alexanderramin/kurva/internal/loader"
)

// Config holds the settings shared by the CLI and services.
type Config struct {
	DBPath          string
	LoadConcurrency int
	WeekEndDay      time.Weekday
	DefaultScale    domain.TimeScale
	LogLevel        slog.Level
	LogUseCases     bool
}

// DefaultConfig returns the settings used when nothing is overridden. The
// database lives under the user's home directory.
func DefaultConfig() Config {
	dbPath := "kurva.db"
	if home, err := os.UserHomeDir(); err == nil {
		dbPath = filepath.Join(home, ".kurva", "kurva.db")
	}
	return Config{
		DBPath:          dbPath,
		LoadConcurrency: loader.DefaultConcurrency,
		WeekEndDay:      domain.DefaultWeekEndDay,
		DefaultScale:    domain.ScaleWeekly,
		LogLevel:        slog.LevelWarn,
	}
}

// LoadConfig reads a .env file from the working directory when present, then
// applies KURVA_* environment variables over the defaults. Invalid values are
// ignored.
func LoadConfig() Config {
	// Missing .env is the normal case.
	_ = godotenv.Load()
	return FromEnv()
}

// EnvFileVar names an env file to load instead of ./.env.
const EnvFileVar = "KURVA_ENV_FILE"

// Load resolves the runtime config. When EnvFileVar is set the file it names
// must exist; otherwise a .env in the working directory is optional.
func Load() (Config, error) {
	if path := os.Getenv(EnvFileVar); path != "" {
		return LoadConfigFile(path)
	}
	return LoadConfig(), nil
}

// LoadConfigFile is LoadConfig with an explicit env file, which must exist.
func LoadConfigFile(path string) (Config, error) {
	if err := godotenv.Load(path); err != nil {
		return Config{}, fmt.Errorf("loading env file %s: %w", path, err)
	}
	return FromEnv(), nil
}

// FromEnv applies environment overrides without touching .env files.
func FromEnv() Config {
	cfg := DefaultConfig()

	if v := os.Getenv("KURVA_DB"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("KURVA_LOAD_CONCURRENCY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.LoadConcurrency = loader.ClampConcurrency(n)
		}
	}
	if v := os.Getenv("KURVA_WEEK_END_DAY"); v != "" {
		if d, err := calendar.ParseWeekday(v); err == nil {
			cfg.WeekEndDay = d
		}
	}
	if v := os.Getenv("KURVA_DEFAULT_SCALE"); v != "" {
		if s, err := domain.ParseTimeScale(strings.ToLower(v)); err == nil {
			cfg.DefaultScale = s
		}
	}
	if v := os.Getenv("KURVA_LOG_LEVEL"); v != "" {
		var lvl slog.Level
		if err := lvl.UnmarshalText([]byte(v)); err == nil {
			cfg.LogLevel = lvl
		}
	}
	if v := os.Getenv("KURVA_LOG_USE_CASES"); v != "" {
		cfg.LogUseCases, _ = strconv.ParseBool(v)
	}
	return cfg
}

// Logger returns a text logger at the configured level. A nil writer
// discards output.
func (c Config) Logger(w io.Writer) *slog.Logger {
	if w == nil {
		w = io.Discard
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: c.LogLevel}))
}
