package shared

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

//go:embed config.example.toml
var exampleConf []byte

const (
	// EnvAPIURL overrides [APIConfig.BaseURL].
	EnvAPIURL = "PLAYLISTINATOR_API_URL"
	// EnvUpstreamURL overrides [RelayConfig.UpstreamURL].
	EnvUpstreamURL = "PLAYLISTINATOR_UPSTREAM_URL"

	// DefaultBaseURL is the local development address of the generation backend.
	DefaultBaseURL = "http://localhost:8080"
)

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	API      APIConfig      `toml:"api"`
	Relay    RelayConfig    `toml:"relay"`
	Database DatabaseConfig `toml:"database"`
	Server   ServerConfig   `toml:"server"`
	UI       UIConfig       `toml:"ui"`
}

// APIConfig selects the generation backend the gateway talks to.
type APIConfig struct {
	BaseURL string `toml:"base_url"`
}

// RelayConfig contains settings for the same-origin relay served by `serve`.
type RelayConfig struct {
	UpstreamURL  string  `toml:"upstream_url"`
	GeneratePath string  `toml:"generate_path"`
	RateLimit    float64 `toml:"rate_limit"` // requests per second
	Burst        int     `toml:"burst"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host           string   `toml:"host"`
	Port           int      `toml:"port"`
	AllowedOrigins []string `toml:"allowed_origins"` // CORS is off when empty
	Metrics        bool     `toml:"metrics"`         // serve GET /metrics
}

// UIConfig contains terminal UI settings.
type UIConfig struct {
	ToastSeconds int `toml:"toast_seconds"`
}

// Addr returns the host:port listen address.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// ToastDuration is how long a notification stays on screen. Defaults to four seconds.
func (u UIConfig) ToastDuration() time.Duration {
	if u.ToastSeconds <= 0 {
		return 4 * time.Second
	}
	return time.Duration(u.ToastSeconds) * time.Second
}

// BaseURL returns the configured backend base URL, or [DefaultBaseURL] when unset.
func (c *Config) BaseURL() string {
	if u := strings.TrimSpace(c.API.BaseURL); u != "" {
		return strings.TrimRight(u, "/")
	}
	return DefaultBaseURL
}

// UpstreamURL returns the relay upstream, or [DefaultBaseURL] when unset.
func (c *Config) UpstreamURL() string {
	if u := strings.TrimSpace(c.Relay.UpstreamURL); u != "" {
		return strings.TrimRight(u, "/")
	}
	return DefaultBaseURL
}

// ApplyEnv overlays environment overrides onto the config.
//
// lookup is usually [os.LookupEnv]; tests pass a map-backed function. Empty values are ignored.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	if v, ok := lookup(EnvAPIURL); ok && strings.TrimSpace(v) != "" {
		c.API.BaseURL = strings.TrimSpace(v)
	}
	if v, ok := lookup(EnvUpstreamURL); ok && strings.TrimSpace(v) != "" {
		c.Relay.UpstreamURL = strings.TrimSpace(v)
	}
}

// Validate checks that both backend URLs are absolute http(s) URLs.
func (c *Config) Validate() error {
	for name, raw := range map[string]string{"api.base_url": c.BaseURL(), "relay.upstream_url": c.UpstreamURL()} {
		u, err := url.Parse(raw)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidConfig, name, err)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return fmt.Errorf("%w: %s must be an http(s) URL, got %q", ErrInvalidConfig, name, raw)
		}
		if u.Host == "" {
			return fmt.Errorf("%w: %s is missing a host", ErrInvalidConfig, name)
		}
	}

	if c.Relay.GeneratePath != "" && !strings.HasPrefix(c.Relay.GeneratePath, "/") {
		return fmt.Errorf("%w: relay.generate_path must start with /", ErrInvalidConfig)
	}
	return nil
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Keys absent from the file keep the embedded defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// ResolveConfig loads path when it exists (defaults otherwise), then applies
// the .env file and environment overrides.
func ResolveConfig(path string) (*Config, error) {
	config := DefaultConfig()
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			loaded, err := LoadConfig(path)
			if err != nil {
				return nil, err
			}
			config = loaded
		}
	}

	if err := LoadEnvFile(".env"); err != nil {
		return nil, err
	}
	config.ApplyEnv(os.LookupEnv)

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// LoadEnvFile loads KEY=VALUE pairs from path into the process environment.
//
// Variables that are already set win. A missing file is not an error.
func LoadEnvFile(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
