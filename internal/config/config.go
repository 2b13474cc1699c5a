package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	EnvConfigPath   = "CONFIG_PATH"
	EnvDBConnection = "DB_CONNECTION"
	EnvCookieSecret = "COOKIE_SECRET"
	EnvSMTPPassword = "SMTP_PASSWORD"
)

// AppConfig holds resolved application configuration values.
type AppConfig struct {
	ConfigPath string
}

// LoadFromEnv loads app config from environment variables.
func LoadFromEnv() (AppConfig, error) {
	return AppConfig{ConfigPath: ResolveConfigPath(os.Getenv(EnvConfigPath))}, nil
}

// ResolveConfigPath normalizes the config path and applies defaults.
func ResolveConfigPath(p string) string {
	trimmed := strings.TrimSpace(p)
	if trimmed == "" {
		trimmed = "./config.yaml"
	}
	if abs, err := filepath.Abs(trimmed); err == nil {
		return abs
	}
	return trimmed
}

// ErrMissingDatabaseDSN indicates no database DSN is present in the config file.
var ErrMissingDatabaseDSN = errors.New("missing database dsn (set `database-dsn` or `database.dsn` in config file)")

// LoadDatabaseDSN reads the database DSN from the YAML config file.
func LoadDatabaseDSN(configPath string) (string, error) {
	if dsn := strings.TrimSpace(os.Getenv(EnvDBConnection)); dsn != "" {
		return dsn, nil
	}

	// fileConfig maps the YAML fields needed for DSN resolution.
	type fileConfig struct {
		DatabaseDSN string `yaml:"database-dsn"`
		Database    struct {
			DSN string `yaml:"dsn"`
		} `yaml:"database"`
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return "", fmt.Errorf("read config file: %w", err)
	}

	var cfg fileConfig
	if errUnmarshal := yaml.Unmarshal(data, &cfg); errUnmarshal != nil {
		return "", fmt.Errorf("parse config file: %w", errUnmarshal)
	}

	if dsn := strings.TrimSpace(cfg.DatabaseDSN); dsn != "" {
		return dsn, nil
	}
	if dsn := strings.TrimSpace(cfg.Database.DSN); dsn != "" {
		return dsn, nil
	}
	return "", ErrMissingDatabaseDSN
}

// SessionConfig holds session cookie settings. The verification/reset
// code windows are deliberately asymmetric (registration 15m, resend
// 24h) to match the documented product behavior.
type SessionConfig struct {
	CookieSecret string        `yaml:"cookie-secret"`
	TTL          time.Duration `yaml:"ttl"`
	Secure       bool          `yaml:"secure"`
}

// SMTPConfig holds outbound mail settings.
type SMTPConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
}

// NewsConfig holds external news API settings.
type NewsConfig struct {
	URL          string        `yaml:"url"`
	SyncInterval time.Duration `yaml:"sync-interval"`
}

// AnalysisConfig holds external document-analysis backend settings.
type AnalysisConfig struct {
	URL            string        `yaml:"url"`
	Timeout        time.Duration `yaml:"timeout"`
	MaxUploadBytes int64         `yaml:"max-upload-bytes"`
}

// ServerConfig aggregates everything beyond the DSN.
type ServerConfig struct {
	Session  SessionConfig  `yaml:"session"`
	SMTP     SMTPConfig     `yaml:"smtp"`
	News     NewsConfig     `yaml:"news"`
	Analysis AnalysisConfig `yaml:"analysis"`
}

const (
	defaultSessionTTL     = 7 * 24 * time.Hour
	defaultNewsInterval   = 30 * time.Minute
	defaultAnalysisWait   = 30 * time.Second
	defaultMaxUploadBytes = 10 << 20
	defaultSMTPPort       = 587
)

// LoadServerConfig loads server settings from the YAML config file with
// env overrides and defaults applied.
func LoadServerConfig(configPath string) (ServerConfig, error) {
	// fileConfig maps the YAML sections for server settings.
	type fileConfig struct {
		ServerConfig `yaml:",inline"`
	}

	result := ServerConfig{
		Session:  SessionConfig{TTL: defaultSessionTTL},
		SMTP:     SMTPConfig{Port: defaultSMTPPort},
		News:     NewsConfig{SyncInterval: defaultNewsInterval},
		Analysis: AnalysisConfig{Timeout: defaultAnalysisWait, MaxUploadBytes: defaultMaxUploadBytes},
	}

	data, errRead := os.ReadFile(configPath)
	if errRead == nil {
		var cfg fileConfig
		if errUnmarshal := yaml.Unmarshal(data, &cfg); errUnmarshal != nil {
			return result, fmt.Errorf("parse config file: %w", errUnmarshal)
		}
		merged := cfg.ServerConfig
		if merged.Session.TTL <= 0 {
			merged.Session.TTL = defaultSessionTTL
		}
		if merged.SMTP.Port <= 0 {
			merged.SMTP.Port = defaultSMTPPort
		}
		if merged.News.SyncInterval <= 0 {
			merged.News.SyncInterval = defaultNewsInterval
		}
		if merged.Analysis.Timeout <= 0 {
			merged.Analysis.Timeout = defaultAnalysisWait
		}
		if merged.Analysis.MaxUploadBytes <= 0 {
			merged.Analysis.MaxUploadBytes = defaultMaxUploadBytes
		}
		result = merged
	}

	if secret := strings.TrimSpace(os.Getenv(EnvCookieSecret)); secret != "" {
		result.Session.CookieSecret = secret
	}
	if password := strings.TrimSpace(os.Getenv(EnvSMTPPassword)); password != "" {
		result.SMTP.Password = password
	}
	return result, nil
}
