package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/knadh/koanf/parsers/toml/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

var (
	ErrConfigFileNotFound    = errors.New("could not find config file in any config path")
	ErrConfigVersionMissing  = errors.New("config file is missing version field")
	ErrConfigVersionMismatch = errors.New("config file version mismatch")
)

// CurrentVersion of the config file format.
const CurrentVersion = 1

// Config represents the entire application configuration.
type Config struct {
	// Version of the config file.
	Version    int        `koanf:"version"`
	Debug      Debug      `koanf:"debug"`
	PostgreSQL PostgreSQL `koanf:"postgresql"`
	MongoDB    MongoDB    `koanf:"mongodb"`
	Redis      Redis      `koanf:"redis"`
	Oracle     Oracle     `koanf:"oracle"`
	Worker     Worker     `koanf:"worker"`
	Moderation Moderation `koanf:"moderation"`
}

// Debug contains debug-related configuration.
type Debug struct {
	// Log level (debug, info, warn, error).
	LogLevel string `koanf:"log_level"`
}

// PostgreSQL contains relational store connection configuration.
type PostgreSQL struct {
	// Database hostname.
	Host string `koanf:"host"`
	// Database port.
	Port int `koanf:"port"`
	// Database username.
	User string `koanf:"user"`
	// Database password.
	Password string `koanf:"password"`
	// Database name.
	DBName string `koanf:"db_name"`
	// Maximum open connections.
	MaxOpenConns int `koanf:"max_open_conns"`
	// Maximum idle connections.
	MaxIdleConns int `koanf:"max_idle_conns"`
	// Connection lifetime in minutes.
	MaxLifetime int `koanf:"max_lifetime"`
	// Idle timeout in minutes.
	MaxIdleTime int `koanf:"max_idle_time"`
}

// MongoDB contains document store connection configuration.
type MongoDB struct {
	// Connection URI.
	URI string `koanf:"uri"`
	// Database name.
	DBName string `koanf:"db_name"`
}

// Redis contains Redis connection configuration.
type Redis struct {
	// Redis hostname.
	Host string `koanf:"host"`
	// Redis port.
	Port int `koanf:"port"`
	// Redis username.
	Username string `koanf:"username"`
	// Redis password.
	Password string `koanf:"password"`
}

// Oracle contains classification oracle configuration.
type Oracle struct {
	// Base URL for the API.
	BaseURL string `koanf:"base_url"`
	// API key for authentication.
	APIKey string `koanf:"api_key"`
	// Moderation model to use.
	Model string `koanf:"model"`
	// Request timeout in milliseconds.
	RequestTimeout int `koanf:"request_timeout"`
	// Maximum concurrent requests.
	MaxConcurrent int64 `koanf:"max_concurrent"`
}

// Worker contains worker tuning configuration.
type Worker struct {
	// Maximum attempts before a job is parked.
	MaxJobAttempts int `koanf:"max_job_attempts"`
	// Base delay between jobs in milliseconds.
	JobInterval int `koanf:"job_interval"`
	// Jitter applied to the job interval in milliseconds.
	JobJitter int `koanf:"job_jitter"`
	// Delay before re-polling an empty queue in milliseconds.
	EmptyQueueDelay int `koanf:"empty_queue_delay"`
	// Delay applied to retried jobs in milliseconds.
	RetryDelay int `koanf:"retry_delay"`
}

// Moderation contains moderation policy configuration.
type Moderation struct {
	// Points budget per moderator per cooldown window.
	AdminPointsLimit int64 `koanf:"admin_points_limit"`
	// Cooldown window in seconds.
	AdminCooldown int64 `koanf:"admin_cooldown"`
}

// LoadConfig loads the configuration from the config file.
// Returns the config along with the directory it was found in.
func LoadConfig() (*Config, string, error) {
	k := koanf.New(".")

	// Look for config file in standard locations
	home, _ := os.UserHomeDir()
	configPaths := []string{
		".",
		"config",
		filepath.Join(home, ".askora"),
		"/etc/askora",
	}

	var configDir string

	for _, path := range configPaths {
		candidate := filepath.Join(path, "config.toml")
		if _, err := os.Stat(candidate); err != nil {
			continue
		}

		if err := k.Load(file.Provider(candidate), toml.Parser()); err != nil {
			return nil, "", fmt.Errorf("failed to load config file %s: %w", candidate, err)
		}

		configDir = path

		break
	}

	if configDir == "" {
		return nil, "", ErrConfigFileNotFound
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, "", fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.Version == 0 {
		return nil, "", ErrConfigVersionMissing
	}

	if cfg.Version != CurrentVersion {
		return nil, "", fmt.Errorf("%w: expected %d, got %d",
			ErrConfigVersionMismatch, CurrentVersion, cfg.Version)
	}

	return &cfg, configDir, nil
}
