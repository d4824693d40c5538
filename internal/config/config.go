package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config holds every runtime option of the bot.
type Config struct {
	TelegramToken string

	DB DBConfig

	// AdminUserID receives the scheduled report and birthday messages.
	// Zero disables both triggers.
	AdminUserID int64

	Location   *time.Location
	ReportAt   ClockTime
	BirthdayAt ClockTime
	LogLevel   string
}

// DBConfig selects and parameterises the store backend.
type DBConfig struct {
	Driver   string
	Path     string
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	SSLMode  string
	Timeout  time.Duration
}

// DSN returns the postgres keyword/value connection string. Values that
// contain spaces, quotes or backslashes are quoted.
func (c DBConfig) DSN() string {
	parts := []string{
		"host=" + dsnValue(c.Host),
		"port=" + dsnValue(c.Port),
		"dbname=" + dsnValue(c.Name),
		"sslmode=" + dsnValue(c.SSLMode),
	}
	if c.User != "" {
		parts = append(parts, "user="+dsnValue(c.User))
	}
	if c.Password != "" {
		parts = append(parts, "password="+dsnValue(c.Password))
	}
	return strings.Join(parts, " ")
}

var dsnEscaper = strings.NewReplacer(`\`, `\\`, `'`, `\'`)

func dsnValue(v string) string {
	if v != "" && !strings.ContainsAny(v, " \t\n\r'\\") {
		return v
	}
	return "'" + dsnEscaper.Replace(v) + "'"
}

// ClockTime is a wall-clock time of day.
type ClockTime struct {
	Hour   int
	Minute int
}

// ParseClockTime parses "HH:MM".
func ParseClockTime(s string) (ClockTime, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(s))
	if err != nil {
		return ClockTime{}, fmt.Errorf("invalid time of day %q, expected HH:MM", s)
	}
	return ClockTime{Hour: t.Hour(), Minute: t.Minute()}, nil
}

func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

// CronSpec returns a five-field cron expression firing daily at c.
func (c ClockTime) CronSpec() string {
	return fmt.Sprintf("%d %d * * *", c.Minute, c.Hour)
}

// LoadDotEnv loads variables from the given files, or from .env.local and .env
// in the working directory when none are given. Variables already present in
// the environment are never overwritten. Missing files are skipped.
func LoadDotEnv(paths ...string) ([]string, error) {
	if len(paths) == 0 {
		paths = []string{".env.local", ".env"}
	}
	var loaded []string
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return loaded, fmt.Errorf("failed to load %s: %w", p, err)
		}
		loaded = append(loaded, p)
	}
	return loaded, nil
}

// Load reads the configuration from the environment.
func Load() (*Config, error) {
	cfg := &Config{
		TelegramToken: GetEnv("TELEGRAM_TOKEN", ""),
		LogLevel:      strings.ToLower(GetEnv("LOG_LEVEL", "info")),
		DB: DBConfig{
			Driver:   strings.ToLower(GetEnv("DB_DRIVER", DriverSQLite)),
			Path:     GetEnv("DB_PATH", ""),
			Host:     GetEnv("DB_HOST", "localhost"),
			Port:     GetEnv("DB_PORT", "5432"),
			Name:     GetEnv("DB_NAME", "time_tracker"),
			User:     GetEnv("DB_USER", ""),
			Password: GetEnv("DB_PASSWORD", ""),
			SSLMode:  GetEnv("DB_SSLMODE", "disable"),
		},
	}

	switch cfg.DB.Driver {
	case DriverSQLite:
		if cfg.DB.Path == "" {
			p, err := defaultDatabasePath()
			if err != nil {
				return nil, fmt.Errorf("failed to get database path: %w", err)
			}
			cfg.DB.Path = p
		}
	case DriverPostgres:
	default:
		return nil, fmt.Errorf("unknown DB_DRIVER %q (want %s or %s)", cfg.DB.Driver, DriverSQLite, DriverPostgres)
	}

	timeout, err := time.ParseDuration(GetEnv("DB_TIMEOUT", "5s"))
	if err != nil || timeout <= 0 {
		return nil, fmt.Errorf("invalid DB_TIMEOUT %q", os.Getenv("DB_TIMEOUT"))
	}
	cfg.DB.Timeout = timeout

	if raw := GetEnv("ADMIN_USER_ID", ""); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid ADMIN_USER_ID %q: %w", raw, err)
		}
		cfg.AdminUserID = id
	}

	tz := GetEnv("TIMEZONE", "Europe/Moscow")
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE %q: %w", tz, err)
	}
	cfg.Location = loc

	if cfg.ReportAt, err = ParseClockTime(GetEnv("REPORT_TIME", "23:59")); err != nil {
		return nil, fmt.Errorf("REPORT_TIME: %w", err)
	}
	if cfg.BirthdayAt, err = ParseClockTime(GetEnv("BIRTHDAY_TIME", "06:00")); err != nil {
		return nil, fmt.Errorf("BIRTHDAY_TIME: %w", err)
	}

	return cfg, nil
}

// RequireTelegram fails when the bot token is missing.
func (c *Config) RequireTelegram() error {
	if c.TelegramToken == "" {
		return errors.New("TELEGRAM_TOKEN is not set")
	}
	return nil
}

// GetEnv returns the value of envVar, or defaultValue when it is unset or empty.
func GetEnv(envVar, defaultValue string) string {
	value := strings.TrimSpace(os.Getenv(envVar))
	if value == "" {
		return defaultValue
	}
	return value
}

// defaultDatabasePath returns the path to the SQLite database file
func defaultDatabasePath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".deepwork", "deepwork.db"), nil
}
