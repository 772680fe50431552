package main

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/afero"

	"github.com/mmcdole/pgsql-auth/pkg/authentication"
	"github.com/mmcdole/pgsql-auth/pkg/backend"
	"github.com/mmcdole/pgsql-auth/pkg/logging"
)

// Supported values of the driver setting
const (
	DriverPgx      = "pgx"      // native pgx connection
	DriverPostgres = "postgres" // database/sql with lib/pq
	DriverPgxSQL   = "pgx-sql"  // database/sql with the pgx stdlib adapter
)

// Config holds the authenticator configuration
type Config struct {
	// Connection settings. Connect is a complete connection string and
	// overrides the discrete keys.
	Connect        string `json:"connect,omitempty"`
	Database       string `json:"database,omitempty"`
	Host           string `json:"host,omitempty"`
	Port           int    `json:"port,omitempty"`
	ConnectTimeout int    `json:"connect_timeout,omitempty"` // seconds
	User           string `json:"user,omitempty"`
	Password       string `json:"password,omitempty"`
	SSLMode        string `json:"sslmode,omitempty"`
	Driver         string `json:"driver,omitempty"`

	// Query settings
	AuthQuery          string `json:"auth_query"`
	PasswordType       string `json:"pw_type,omitempty"`
	StrictPlaceholders bool   `json:"strict_placeholders,omitempty"`
	ResolveTimeout     int    `json:"resolve_timeout,omitempty"` // seconds

	// Logging settings
	AuthLogPath string `json:"auth_log_path,omitempty"`
	AppLogPath  string `json:"app_log_path,omitempty"`
	LogLevel    string `json:"log_level,omitempty"`
	Debug       bool   `json:"debug,omitempty"`

	// Derived from PasswordType and LogLevel by LoadConfig
	Scheme authentication.Scheme `json:"-"`
	Level  logging.LogLevel      `json:"-"`
}

// LoadConfig loads configuration from a JSON file
func LoadConfig(fs afero.Fs, path string, config *Config) error {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}

	if err := json.Unmarshal(data, config); err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}

	// Log paths are relative to the config file location
	configDir := filepath.Dir(path)
	if config.AuthLogPath != "" && !filepath.IsAbs(config.AuthLogPath) {
		config.AuthLogPath = filepath.Join(configDir, config.AuthLogPath)
	}
	if config.AppLogPath != "" && !filepath.IsAbs(config.AppLogPath) {
		config.AppLogPath = filepath.Join(configDir, config.AppLogPath)
	}

	// Set defaults for optional settings
	if config.Driver == "" {
		config.Driver = DriverPgx
	}
	if config.PasswordType == "" {
		config.PasswordType = authentication.Clear.String()
	}
	if config.ResolveTimeout == 0 {
		config.ResolveTimeout = 5
	}

	switch config.Driver {
	case DriverPgx, DriverPostgres, DriverPgxSQL:
	default:
		return fmt.Errorf("unknown driver %q", config.Driver)
	}

	config.Scheme, err = authentication.ParseScheme(config.PasswordType)
	if err != nil {
		return fmt.Errorf("pw_type: %w", err)
	}

	config.Level, err = logging.ParseLevel(config.LogLevel)
	if err != nil {
		return fmt.Errorf("log_level: %w", err)
	}
	if config.Debug {
		config.Level = logging.LogLevelDebug
	}

	if config.Port < 0 || config.ConnectTimeout < 0 || config.ResolveTimeout < 0 {
		return fmt.Errorf("port and timeouts must not be negative")
	}

	return nil
}

// ConnInfo returns the connection settings in backend form
func (c *Config) ConnInfo() backend.ConnInfo {
	info := backend.ConnInfo{
		Connect:  c.Connect,
		Database: c.Database,
		Host:     c.Host,
		User:     c.User,
		Password: c.Password,
		SSLMode:  c.SSLMode,
	}
	if c.Port > 0 {
		info.Port = strconv.Itoa(c.Port)
	}
	if c.ConnectTimeout > 0 {
		info.ConnectTimeout = strconv.Itoa(c.ConnectTimeout)
	}
	return info
}

// ResolveTimeoutDuration is ResolveTimeout as a time.Duration
func (c *Config) ResolveTimeoutDuration() time.Duration {
	return time.Duration(c.ResolveTimeout) * time.Second
}
