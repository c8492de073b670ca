package labmatch

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	defaultConfigFile = "config.json"
	defaultAPIURL     = "http://localhost:8000"

	// DefaultObjective is sent when the user leaves the prompt empty.
	DefaultObjective = "Find professors"
)

// WindowConfig holds the initial window size of the desktop client.
type WindowConfig struct {
	Width  float32 `json:"width" yaml:"width"`
	Height float32 `json:"height" yaml:"height"`
}

// Config aggregates runtime settings persisted to config.json.
type Config struct {
	APIURL             string       `json:"apiUrl" yaml:"api_url"`
	UserID             string       `json:"userId" yaml:"user_id"`
	ObjectiveFallback  string       `json:"objectiveFallback" yaml:"objective_fallback"`
	RequestTimeoutSecs int          `json:"requestTimeoutSecs" yaml:"request_timeout_secs"`
	HealthIntervalSecs int          `json:"healthIntervalSecs" yaml:"health_interval_secs"`
	StreamGraceMillis  int          `json:"streamGraceMillis" yaml:"stream_grace_millis"`
	RecordSwipes       bool         `json:"recordSwipes" yaml:"record_swipes"`
	Window             WindowConfig `json:"window" yaml:"window"`
}

// ApplyDefaults populates zero values with sensible defaults.
func (c *Config) ApplyDefaults() {
	c.APIURL = strings.TrimRight(strings.TrimSpace(c.APIURL), "/")
	if c.APIURL == "" {
		c.APIURL = defaultAPIURL
	}
	if strings.TrimSpace(c.ObjectiveFallback) == "" {
		c.ObjectiveFallback = DefaultObjective
	}
	if c.RequestTimeoutSecs <= 0 {
		c.RequestTimeoutSecs = 30
	}
	if c.HealthIntervalSecs <= 0 {
		c.HealthIntervalSecs = 2
	}
	if c.StreamGraceMillis <= 0 {
		c.StreamGraceMillis = 1000
	}
	if c.Window.Width <= 0 {
		c.Window.Width = 480
	}
	if c.Window.Height <= 0 {
		c.Window.Height = 820
	}
}

// Validate reports configuration values that cannot work at all.
func (c Config) Validate() error {
	u, err := url.Parse(c.APIURL)
	if err != nil {
		return fmt.Errorf("invalid api url %q: %w", c.APIURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("api url must be http or https, got %q", c.APIURL)
	}
	if u.Host == "" {
		return fmt.Errorf("api url %q has no host", c.APIURL)
	}
	if c.UserID != "" {
		if _, err := uuid.Parse(c.UserID); err != nil {
			return fmt.Errorf("invalid user id %q: %w", c.UserID, err)
		}
	}
	return nil
}

// RequestTimeout is the per-request timeout for plain REST calls.
func (c Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSecs) * time.Second
}

// HealthInterval is the period of the backend health check.
func (c Config) HealthInterval() time.Duration {
	return time.Duration(c.HealthIntervalSecs) * time.Second
}

// StreamGrace is how long to wait after a stream transport error before
// fetching results.
func (c Config) StreamGrace() time.Duration {
	return time.Duration(c.StreamGraceMillis) * time.Millisecond
}

// EnsureUserID assigns a fresh user id when none is configured and reports
// whether one was generated.
func (c *Config) EnsureUserID() bool {
	if strings.TrimSpace(c.UserID) != "" {
		return false
	}
	c.UserID = uuid.NewString()
	return true
}

// LoadConfig loads configuration from the given path or the default
// config.json. A .env file in the working directory is applied first and
// environment variables override file values.
func LoadConfig(path string) (Config, error) {
	// .env is optional
	_ = godotenv.Load()

	if path == "" {
		path = defaultConfigFile
	}
	var cfg Config
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return cfg, fmt.Errorf("read config: %w", err)
	default:
		if err := decodeConfig(path, data, &cfg); err != nil {
			return cfg, fmt.Errorf("decode config: %w", err)
		}
	}
	applyEnvironmentOverrides(&cfg)
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

// SaveConfig persists configuration to disk.
func SaveConfig(path string, cfg Config) error {
	if path == "" {
		path = defaultConfigFile
	}
	tmp := path + ".tmp"
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	cfg.ApplyDefaults()
	data, err := encodeConfig(path, cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write temp config: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("rename config: %w", err)
	}
	return nil
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

func decodeConfig(path string, data []byte, cfg *Config) error {
	if isYAML(path) {
		return yaml.Unmarshal(data, cfg)
	}
	return json.Unmarshal(data, cfg)
}

func encodeConfig(path string, cfg Config) ([]byte, error) {
	if isYAML(path) {
		return yaml.Marshal(cfg)
	}
	return json.MarshalIndent(cfg, "", "  ")
}

func applyEnvironmentOverrides(cfg *Config) {
	if v := firstEnv("LABMATCH_API_URL", "EXPO_PUBLIC_API_URL"); v != "" {
		cfg.APIURL = v
	}
	if v := os.Getenv("LABMATCH_USER_ID"); v != "" {
		cfg.UserID = v
	}
}

func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := strings.TrimSpace(os.Getenv(k)); v != "" {
			return v
		}
	}
	return ""
}
