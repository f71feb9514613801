package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config keeps runtime settings for the bot and the operational tools.
type Config struct {
	TelegramToken  string  `env:"BOT_TOKEN"`
	DatabasePath   string  `env:"DB_PATH" env-default:"intake.db"`
	AdminIDs       []int64 `env:"ADMINS" env-separator:","`
	ResetOnReshare bool    `env:"RESHARE_RESETS_REGISTRATION" env-default:"false"`
	Snapshot       SnapshotConfig
	Sheets         SheetsConfig
	Archive        ArchiveConfig
	Transport      TransportConfig
}

// SnapshotConfig controls the scheduled delivery of store snapshots.
type SnapshotConfig struct {
	ChatID int64  `env:"BACKUPTO"`
	At     string `env:"SNAPSHOT_AT" env-default:"21:00"`
	Hourly bool   `env:"SNAPSHOT_HOURLY" env-default:"false"`
}

// Enabled reports whether snapshots have a destination.
func (c SnapshotConfig) Enabled() bool {
	return c.ChatID != 0
}

// SheetsConfig points the export at a Google spreadsheet.
type SheetsConfig struct {
	SpreadsheetID   string `env:"GoogleSheetsID"`
	CredentialsFile string `env:"GOOGLE_CREDENTIALS" env-default:"service-account.json"`
}

// Enabled reports whether a spreadsheet is configured.
func (c SheetsConfig) Enabled() bool {
	return c.SpreadsheetID != ""
}

// ArchiveConfig describes the optional S3-compatible bucket for snapshot copies.
type ArchiveConfig struct {
	Endpoint  string `env:"S3_ENDPOINT"`
	AccessKey string `env:"S3_ACCESS_KEY"`
	SecretKey string `env:"S3_SECRET_KEY"`
	Bucket    string `env:"S3_BUCKET" env-default:"intake-snapshots"`
	UseSSL    bool   `env:"S3_USE_SSL" env-default:"false"`
}

// Enabled reports whether the archive has an endpoint and credentials.
func (c ArchiveConfig) Enabled() bool {
	return c.Endpoint != "" && c.AccessKey != "" && c.SecretKey != ""
}

// TransportConfig bounds outbound Telegram calls.
type TransportConfig struct {
	SendTimeout time.Duration `env:"SEND_TIMEOUT" env-default:"15s"`
	RetryDelay  time.Duration `env:"SEND_RETRY_DELAY" env-default:"1s"`
	MediaPacing time.Duration `env:"MEDIA_PACING" env-default:"500ms"`
	// UploadTimeout bounds snapshot document uploads, which can be large.
	UploadTimeout time.Duration `env:"UPLOAD_TIMEOUT" env-default:"3m"`
}

// Load reads configuration from environment variables with sane defaults.
func Load() (Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return cfg, fmt.Errorf("read env: %w", err)
	}

	cfg.TelegramToken = strings.TrimSpace(cfg.TelegramToken)
	cfg.DatabasePath = strings.TrimSpace(cfg.DatabasePath)
	cfg.Snapshot.At = strings.TrimSpace(cfg.Snapshot.At)
	if cfg.DatabasePath == "" {
		cfg.DatabasePath = "intake.db"
	}

	if cfg.Snapshot.At != "" {
		if _, _, err := ParseClock(cfg.Snapshot.At); err != nil {
			return cfg, fmt.Errorf("SNAPSHOT_AT: %w", err)
		}
	}
	if cfg.Transport.SendTimeout <= 0 {
		return cfg, fmt.Errorf("SEND_TIMEOUT must be positive")
	}
	if cfg.Transport.UploadTimeout <= 0 {
		return cfg, fmt.Errorf("UPLOAD_TIMEOUT must be positive")
	}

	return cfg, nil
}

// RequireToken fails when the bot credential is absent.
func (c Config) RequireToken() error {
	if c.TelegramToken == "" {
		return fmt.Errorf("BOT_TOKEN is required")
	}
	return nil
}

// ParseClock parses an HH:MM time of day.
func ParseClock(value string) (hour, minute int, err error) {
	parts := strings.Split(value, ":")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid time %q, expected HH:MM", value)
	}
	hour, err = strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("invalid hour in %q", value)
	}
	minute, err = strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("invalid minute in %q", value)
	}
	return hour, minute, nil
}
