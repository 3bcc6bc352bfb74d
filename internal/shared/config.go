package shared

import (
	_ "embed"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Database DatabaseConfig `toml:"database"`
	Server   ServerConfig   `toml:"server"`
	Storage  StorageConfig  `toml:"storage"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host          string   `toml:"host"`
	Port          int      `toml:"port"`
	SessionSecret string   `toml:"session_secret"`
	SessionTTL    Duration `toml:"session_ttl"`
	RateLimit     float64  `toml:"rate_limit"`
	RateBurst     int      `toml:"rate_burst"`

	// SecureCookies marks the session and CSRF cookies Secure. Enable it when serving over TLS.
	SecureCookies bool `toml:"secure_cookies"`

	// LegacyUploadErrors keeps the historical behavior where a failed image upload is not reported as
	// an upload failure and instead surfaces as an internal error.
	LegacyUploadErrors bool `toml:"legacy_upload_errors"`
}

// StorageConfig selects and configures the object storage backend for playlist images.
type StorageConfig struct {
	Backend       string `toml:"backend"` // local or cloudinary
	LocalDir      string `toml:"local_dir"`
	BaseURL       string `toml:"base_url"`
	CloudinaryURL string `toml:"cloudinary_url"`
	Folder        string `toml:"folder"`
}

// Duration wraps [time.Duration] so it can be written as a string ("24h") in TOML.
type Duration struct {
	time.Duration
}

// UnmarshalText implements [encoding.TextUnmarshaler].
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("%w: duration %q: %v", ErrInvalidConfig, text, err)
	}
	d.Duration = v
	return nil
}

// MarshalText implements [encoding.TextMarshaler].
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Addr returns the host:port the HTTP server listens on.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return &config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s: %w", path, err)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ApplyEnv loads variables from the given dotenv files (missing files are ignored) and overrides
// secrets and deployment specific settings from the environment.
//
// Recognized variables: MIXTAPE_DATABASE_PATH, MIXTAPE_HOST, MIXTAPE_PORT, MIXTAPE_SESSION_SECRET,
// MIXTAPE_SECURE_COOKIES, MIXTAPE_STORAGE_BACKEND, MIXTAPE_STORAGE_BASE_URL, MIXTAPE_LEGACY_UPLOAD_ERRORS
// and CLOUDINARY_URL.
func (c *Config) ApplyEnv(files ...string) error {
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("failed to load env file %s: %w", f, err)
		}
	}

	if v := os.Getenv("MIXTAPE_DATABASE_PATH"); v != "" {
		c.Database.Path = v
	}
	if v := os.Getenv("MIXTAPE_HOST"); v != "" {
		c.Server.Host = v
	}
	if v := os.Getenv("MIXTAPE_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: MIXTAPE_PORT=%q", ErrInvalidConfig, v)
		}
		c.Server.Port = port
	}
	if v := os.Getenv("MIXTAPE_SESSION_SECRET"); v != "" {
		c.Server.SessionSecret = v
	}
	if v := os.Getenv("MIXTAPE_LEGACY_UPLOAD_ERRORS"); v != "" {
		legacy, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%w: MIXTAPE_LEGACY_UPLOAD_ERRORS=%q", ErrInvalidConfig, v)
		}
		c.Server.LegacyUploadErrors = legacy
	}
	if v := os.Getenv("MIXTAPE_SECURE_COOKIES"); v != "" {
		secure, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%w: MIXTAPE_SECURE_COOKIES=%q", ErrInvalidConfig, v)
		}
		c.Server.SecureCookies = secure
	}
	if v := os.Getenv("MIXTAPE_STORAGE_BACKEND"); v != "" {
		c.Storage.Backend = v
	}
	if v := os.Getenv("MIXTAPE_STORAGE_BASE_URL"); v != "" {
		c.Storage.BaseURL = v
	}
	if v := os.Getenv("CLOUDINARY_URL"); v != "" {
		c.Storage.CloudinaryURL = v
	}

	return nil
}

// Validate reports configuration that would prevent the server from starting.
func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return fmt.Errorf("%w: database.path is required", ErrInvalidConfig)
	}
	if c.Server.SessionSecret == "" {
		return fmt.Errorf("%w: server.session_secret is required", ErrInvalidConfig)
	}
	switch c.Storage.Backend {
	case "local":
		if c.Storage.LocalDir == "" {
			return fmt.Errorf("%w: storage.local_dir is required for the local backend", ErrInvalidConfig)
		}
	case "cloudinary":
		if c.Storage.CloudinaryURL == "" {
			return fmt.Errorf("%w: storage.cloudinary_url is required for the cloudinary backend", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown storage backend %q", ErrInvalidConfig, c.Storage.Backend)
	}
	return nil
}
