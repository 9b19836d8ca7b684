package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/sydlexius/mintfront/internal/logging"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Static      StaticConfig      `yaml:"static"`
	Metadata    MetadataConfig    `yaml:"metadata"`
	CORS        CORSConfig        `yaml:"cors"`
	Database    DatabaseConfig    `yaml:"database"`
	Watcher     WatcherConfig     `yaml:"watcher"`
	Maintenance MaintenanceConfig `yaml:"maintenance"`
	Webhooks    []WebhookConfig   `yaml:"webhooks"`
	Logging     LoggingConfig     `yaml:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
	// PublicURL is the externally reachable address used when building
	// metadata URLs. When empty it is derived from each request.
	PublicURL string `yaml:"public_url"`
	BasePath  string `yaml:"base_path"`
	Debug     bool   `yaml:"debug"`
	// MaxConnections caps concurrent client connections. Zero means no limit.
	MaxConnections int `yaml:"max_connections"`
}

// StaticConfig holds the static file tree settings.
type StaticConfig struct {
	Dir string `yaml:"dir"`
}

// MetadataConfig holds metadata upload settings.
type MetadataConfig struct {
	AtomicWrites       bool  `yaml:"atomic_writes"`
	MaxBodyBytes       int64 `yaml:"max_body_bytes"`
	RateLimitPerMinute int   `yaml:"rate_limit_per_minute"`
}

// CORSConfig holds cross-origin settings.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// DatabaseConfig holds SQLite settings.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// WatcherConfig holds NFT directory watcher settings.
type WatcherConfig struct {
	Enabled bool `yaml:"enabled"`
}

// MaintenanceConfig holds the catalog maintenance schedule. An interval of
// zero disables the scheduler.
type MaintenanceConfig struct {
	IntervalHours int `yaml:"interval_hours"`
}

// WebhookConfig describes an outbound notification endpoint for metadata
// events. Type is one of generic, discord, slack, gotify.
type WebhookConfig struct {
	Name   string   `yaml:"name"`
	URL    string   `yaml:"url"`
	Type   string   `yaml:"type"`
	Events []string `yaml:"events"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level    string `yaml:"level"`
	Format   string `yaml:"format"`
	FilePath string `yaml:"file_path"`
}

// NFTDirName is the subdirectory of the static tree holding metadata files.
const NFTDirName = "NFTs"

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:     "0.0.0.0",
			Port:     5000,
			BasePath: "/",
		},
		Static: StaticConfig{
			Dir: "static",
		},
		Metadata: MetadataConfig{
			MaxBodyBytes: 1 << 20,
		},
		CORS: CORSConfig{
			AllowedOrigins: []string{"*"},
		},
		Database: DatabaseConfig{
			Path: "data/mintfront.db",
		},
		Watcher: WatcherConfig{
			Enabled: true,
		},
		Maintenance: MaintenanceConfig{
			IntervalHours: 24,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load reads config from a YAML file (if it exists), then a .env file in the
// working directory (if it exists), and overrides with environment variables.
// Environment variables take precedence over the file.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := cfg.loadFromFile(path); err != nil {
			return nil, fmt.Errorf("loading config file: %w", err)
		}
	}

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	cfg.loadFromEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// NFTDir returns the directory metadata files are written to.
func (c *Config) NFTDir() string {
	return strings.TrimRight(c.Static.Dir, "/") + "/" + NFTDirName
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func (c *Config) loadFromFile(path string) error {
	data, err := os.ReadFile(path) //nolint:gosec // G304: path comes from operator config
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return yaml.Unmarshal(data, c)
}

func (c *Config) loadFromEnv() {
	if v := os.Getenv("MF_HOST"); v != "" {
		c.Server.Host = v
	}
	if v := os.Getenv("MF_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Server.Port = port
		}
	}
	if v := os.Getenv("MF_MAX_CONNECTIONS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Server.MaxConnections = n
		}
	}
	if v := os.Getenv("MF_PUBLIC_URL"); v != "" {
		c.Server.PublicURL = v
	}
	if v := os.Getenv("MF_BASE_PATH"); v != "" {
		c.Server.BasePath = v
	}
	if v := os.Getenv("MF_DEBUG"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Server.Debug = b
		}
	}
	if v := os.Getenv("MF_STATIC_DIR"); v != "" {
		c.Static.Dir = v
	}
	if v := os.Getenv("MF_DB_PATH"); v != "" {
		c.Database.Path = v
	}
	if v := os.Getenv("MF_ATOMIC_WRITES"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Metadata.AtomicWrites = b
		}
	}
	if v := os.Getenv("MF_CORS_ORIGINS"); v != "" {
		var origins []string
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		c.CORS.AllowedOrigins = origins
	}
	if v := os.Getenv("MF_WATCH"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Watcher.Enabled = b
		}
	}
	if v := os.Getenv("MF_MAINTENANCE_HOURS"); v != "" {
		if h, err := strconv.Atoi(v); err == nil {
			c.Maintenance.IntervalHours = h
		}
	}
	if v := os.Getenv("MF_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("MF_LOG_FORMAT"); v != "" {
		c.Logging.Format = v
	}
	if v := os.Getenv("MF_LOG_FILE"); v != "" {
		c.Logging.FilePath = v
	}
}

// Validate checks the configuration and normalizes derived fields. It is
// called by Load and again after command-line flags are applied.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}
	if c.Static.Dir == "" {
		return fmt.Errorf("static directory is required")
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database path is required")
	}
	if c.Metadata.MaxBodyBytes <= 0 {
		return fmt.Errorf("invalid metadata max_body_bytes: %d", c.Metadata.MaxBodyBytes)
	}
	if c.Metadata.RateLimitPerMinute < 0 {
		return fmt.Errorf("invalid metadata rate_limit_per_minute: %d", c.Metadata.RateLimitPerMinute)
	}
	if c.Server.MaxConnections < 0 {
		return fmt.Errorf("invalid server max_connections: %d", c.Server.MaxConnections)
	}
	if c.Maintenance.IntervalHours < 0 {
		return fmt.Errorf("invalid maintenance interval_hours: %d", c.Maintenance.IntervalHours)
	}
	if c.Server.PublicURL != "" {
		u, err := url.Parse(c.Server.PublicURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("invalid public url: %q", c.Server.PublicURL)
		}
		c.Server.PublicURL = strings.TrimRight(c.Server.PublicURL, "/")
	}
	c.Server.BasePath = strings.TrimRight(c.Server.BasePath, "/")
	if c.Server.BasePath != "" && !strings.HasPrefix(c.Server.BasePath, "/") {
		c.Server.BasePath = "/" + c.Server.BasePath
	}
	if c.Server.Debug {
		c.Logging.Level = "debug"
		c.Logging.Format = "text"
	}
	if !logging.ValidLevel(c.Logging.Level) {
		return fmt.Errorf("invalid log level: %q", c.Logging.Level)
	}
	if !logging.ValidFormat(c.Logging.Format) {
		return fmt.Errorf("invalid log format: %q", c.Logging.Format)
	}
	return nil
}
