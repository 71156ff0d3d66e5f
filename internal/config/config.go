package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// StateDir is the per-repository directory repodoc keeps its files in.
const StateDir = ".repodoc"

// DefaultRetrySuffix is appended to a prompt when the first attempt fails.
const DefaultRetrySuffix = "\n\nIMPORTANT: Format your response as strict JSON only. " +
	"No markdown code blocks, no explanatory text."

// Config holds all repodoc configuration.
type Config struct {
	// Backend CLI
	Backend string `yaml:"backend"` // copilot, claude
	Binary  string `yaml:"binary,omitempty"`
	Model   string `yaml:"model,omitempty"`
	Timeout string `yaml:"timeout,omitempty"` // empty = no timeout

	RetrySuffix   string `yaml:"retry_suffix,omitempty"`
	PromptVersion string `yaml:"prompt_version"`

	Scan    ScanConfig    `yaml:"scan"`
	History HistoryConfig `yaml:"history"`
	Publish PublishConfig `yaml:"publish"`
}

// ScanConfig configures the full scan.
type ScanConfig struct {
	Concurrency int `yaml:"concurrency"`
}

// HistoryConfig configures the scan history database.
type HistoryConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
	Keep    int    `yaml:"keep"`
}

// PublishConfig configures report uploads to S3-compatible storage.
type PublishConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Endpoint  string `yaml:"endpoint,omitempty"`
	Bucket    string `yaml:"bucket,omitempty"`
	AccessKey string `yaml:"access_key,omitempty"`
	SecretKey string `yaml:"secret_key,omitempty"`
	UseSSL    bool   `yaml:"use_ssl"`
	Prefix    string `yaml:"prefix,omitempty"`
}

// ValidBackends lists the supported backend CLIs.
var ValidBackends = []string{"copilot", "claude"}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Backend:       "copilot",
		RetrySuffix:   DefaultRetrySuffix,
		PromptVersion: "v1",
		Scan: ScanConfig{
			Concurrency: 1,
		},
		History: HistoryConfig{
			Enabled: true,
			Path:    filepath.Join(StateDir, "history.db"),
			Keep:    50,
		},
		Publish: PublishConfig{
			UseSSL: true,
			Prefix: "repodoctor",
		},
	}
}

// Path returns the config file location for a repository root.
func Path(root string) string {
	return filepath.Join(root, StateDir, "config.yaml")
}

// Load loads configuration from a YAML file, then applies .env and
// environment overrides. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// LoadDotEnv loads <root>/.env into the process environment without
// overriding variables that are already set. A missing file is not an error.
func LoadDotEnv(root string) error {
	path := filepath.Join(root, ".env")
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return godotenv.Load(path)
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// applyEnvOverrides applies REPODOC_* environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("REPODOC_BACKEND"); v != "" {
		c.Backend = v
	}
	if v := os.Getenv("REPODOC_BINARY"); v != "" {
		c.Binary = v
	}
	if v := os.Getenv("REPODOC_MODEL"); v != "" {
		c.Model = v
	}
	if v := os.Getenv("REPODOC_TIMEOUT"); v != "" {
		c.Timeout = v
	}
	if v := os.Getenv("REPODOC_PROMPT_VERSION"); v != "" {
		c.PromptVersion = v
	}
	if v := os.Getenv("REPODOC_SCAN_CONCURRENCY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Scan.Concurrency = n
		}
	}
	if v := os.Getenv("REPODOC_HISTORY_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.History.Enabled = b
		}
	}

	// Publishing
	if v := os.Getenv("REPODOC_PUBLISH_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Publish.Enabled = b
		}
	}
	if v := os.Getenv("REPODOC_PUBLISH_ENDPOINT"); v != "" {
		c.Publish.Endpoint = v
	}
	if v := os.Getenv("REPODOC_PUBLISH_BUCKET"); v != "" {
		c.Publish.Bucket = v
	}
	if v := os.Getenv("REPODOC_PUBLISH_ACCESS_KEY"); v != "" {
		c.Publish.AccessKey = v
	}
	if v := os.Getenv("REPODOC_PUBLISH_SECRET_KEY"); v != "" {
		c.Publish.SecretKey = v
	}
	if v := os.Getenv("REPODOC_PUBLISH_USE_SSL"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Publish.UseSSL = b
		}
	}
}

// GetTimeout returns the backend timeout. Zero means no timeout.
func (c *Config) GetTimeout() time.Duration {
	if c.Timeout == "" {
		return 0
	}
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 0
	}
	return d
}

// GetRetrySuffix returns the retry suffix, falling back to the default.
func (c *Config) GetRetrySuffix() string {
	if c.RetrySuffix == "" {
		return DefaultRetrySuffix
	}
	return c.RetrySuffix
}

// GetConcurrency returns the scan concurrency, at least 1.
func (c *Config) GetConcurrency() int {
	if c.Scan.Concurrency < 1 {
		return 1
	}
	return c.Scan.Concurrency
}

// HistoryPath resolves the history database path against the repository root.
func (c *Config) HistoryPath(root string) string {
	if c.History.Path == "" {
		return filepath.Join(root, StateDir, "history.db")
	}
	if filepath.IsAbs(c.History.Path) {
		return c.History.Path
	}
	return filepath.Join(root, c.History.Path)
}

// BinaryName returns the executable to run for the configured backend.
func (c *Config) BinaryName() string {
	if c.Binary != "" {
		return c.Binary
	}
	return c.Backend
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	validBackend := false
	for _, b := range ValidBackends {
		if c.Backend == b {
			validBackend = true
			break
		}
	}
	if !validBackend {
		return fmt.Errorf("invalid backend: %s (valid: %v)", c.Backend, ValidBackends)
	}

	if c.Timeout != "" {
		d, err := time.ParseDuration(c.Timeout)
		if err != nil {
			return fmt.Errorf("invalid timeout %q: %w", c.Timeout, err)
		}
		if d < 0 {
			return errors.New("timeout must not be negative")
		}
	}

	if c.Scan.Concurrency < 0 {
		return fmt.Errorf("scan.concurrency must not be negative (got %d)", c.Scan.Concurrency)
	}
	if c.History.Keep < 0 {
		return fmt.Errorf("history.keep must not be negative (got %d)", c.History.Keep)
	}

	if c.Publish.Enabled {
		if c.Publish.Endpoint == "" {
			return errors.New("publish.endpoint is required when publishing is enabled")
		}
		if c.Publish.Bucket == "" {
			return errors.New("publish.bucket is required when publishing is enabled")
		}
	}

	return nil
}
