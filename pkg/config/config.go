package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/yomikata/yomikata/pkg/observability"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Server ServerConfig `yaml:"server"`

	// Extension configuration
	Extension ExtensionConfig `yaml:"extension"`

	// Observability configuration
	Observability ObservabilityConfig `yaml:"observability"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string        `yaml:"host"`
	Port            string        `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// Health/metrics server (separate port for k8s probes)
	HealthPort string `yaml:"health_port"`

	// CORS allowed origins
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// ExtensionConfig holds source extension settings
type ExtensionConfig struct {
	// RepoURL is the base URL of the extension repository serving
	// index.json and the package tarballs.
	RepoURL string `yaml:"repo_url"`

	// Dir is the local directory extension packages are installed into.
	Dir string `yaml:"dir"`

	// DispatchTimeout bounds a single extension call.
	DispatchTimeout time.Duration `yaml:"dispatch_timeout"`

	// CacheSize is the number of dispatch results kept per engine.
	CacheSize int `yaml:"cache_size"`

	// UpdateCheckSchedule is a cron expression for the periodic
	// update check. Empty disables the worker.
	UpdateCheckSchedule string `yaml:"update_check_schedule"`
}

// ObservabilityConfig holds observability settings
type ObservabilityConfig struct {
	// Logging
	LogLevel string `yaml:"log_level"`

	// Metrics
	MetricsEnabled bool `yaml:"metrics_enabled"`
}

// LoadConfig loads configuration from an optional YAML file, then applies
// environment variable overrides.
func LoadConfig() (*Config, error) {
	cfg := defaultConfig()

	if path := getEnv("YOMIKATA_CONFIG_FILE", ""); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", path, err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            "8080",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    60 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 30 * time.Second,
			HealthPort:      "9090",
			AllowedOrigins:  []string{"*"},
		},
		Extension: ExtensionConfig{
			RepoURL:             "https://raw.githubusercontent.com/yomikata/extensions/repo",
			Dir:                 defaultExtensionDir(),
			DispatchTimeout:     30 * time.Second,
			CacheSize:           100,
			UpdateCheckSchedule: "0 */6 * * *",
		},
		Observability: ObservabilityConfig{
			LogLevel:       "info",
			MetricsEnabled: true,
		},
	}
}

func defaultExtensionDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".yomikata/plugins"
	}
	return home + "/.yomikata/plugins"
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, c)
}

func (c *Config) applyEnv() {
	c.Server.Host = getEnv("YOMIKATA_HOST", c.Server.Host)
	c.Server.Port = getEnv("YOMIKATA_PORT", c.Server.Port)
	c.Server.ReadTimeout = getEnvDuration("YOMIKATA_READ_TIMEOUT", c.Server.ReadTimeout)
	c.Server.WriteTimeout = getEnvDuration("YOMIKATA_WRITE_TIMEOUT", c.Server.WriteTimeout)
	c.Server.IdleTimeout = getEnvDuration("YOMIKATA_IDLE_TIMEOUT", c.Server.IdleTimeout)
	c.Server.ShutdownTimeout = getEnvDuration("YOMIKATA_SHUTDOWN_TIMEOUT", c.Server.ShutdownTimeout)
	c.Server.HealthPort = getEnv("YOMIKATA_HEALTH_PORT", c.Server.HealthPort)
	if origins := getEnv("YOMIKATA_ALLOWED_ORIGINS", ""); origins != "" {
		c.Server.AllowedOrigins = strings.Split(origins, ",")
	}

	c.Extension.RepoURL = getEnv("YOMIKATA_EXTENSION_REPO", c.Extension.RepoURL)
	c.Extension.Dir = getEnv("YOMIKATA_PLUGIN_DIR", c.Extension.Dir)
	c.Extension.DispatchTimeout = getEnvDuration("YOMIKATA_DISPATCH_TIMEOUT", c.Extension.DispatchTimeout)
	c.Extension.CacheSize = getEnvInt("YOMIKATA_CACHE_SIZE", c.Extension.CacheSize)
	c.Extension.UpdateCheckSchedule = getEnv("YOMIKATA_UPDATE_CHECK_SCHEDULE", c.Extension.UpdateCheckSchedule)

	c.Observability.LogLevel = getEnv("YOMIKATA_LOG_LEVEL", c.Observability.LogLevel)
	c.Observability.MetricsEnabled = getEnvBool("YOMIKATA_METRICS_ENABLED", c.Observability.MetricsEnabled)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}
	if c.Server.HealthPort == "" {
		return fmt.Errorf("health port is required")
	}
	if c.Server.Port == c.Server.HealthPort {
		return fmt.Errorf("server port and health port must be different")
	}

	if c.Extension.RepoURL == "" {
		return fmt.Errorf("extension repository URL is required")
	}
	if c.Extension.Dir == "" {
		return fmt.Errorf("extension directory is required")
	}
	if c.Extension.DispatchTimeout <= 0 {
		return fmt.Errorf("dispatch timeout must be positive")
	}
	if c.Extension.CacheSize <= 0 {
		return fmt.Errorf("cache size must be positive")
	}

	return nil
}

// LogLevel returns the parsed observability log level.
func (c *Config) LogLevel() observability.LogLevel {
	return observability.ParseLogLevel(strings.ToLower(c.Observability.LogLevel))
}

// getEnv returns an environment variable value or a default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool returns a boolean environment variable or a default
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return strings.ToLower(value) == "true" || value == "1"
	}
	return defaultValue
}

// getEnvInt returns an integer environment variable or a default
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvDuration returns a duration environment variable or a default
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
