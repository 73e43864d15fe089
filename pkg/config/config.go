package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration options for the follower analyzer
type Config struct {
	// Twitter API credentials and endpoints
	Twitter TwitterConfig `yaml:"twitter" json:"twitter"`

	// Fetch behavior (pagination, bulk lookup)
	Fetch FetchConfig `yaml:"fetch" json:"fetch"`

	// Rate limiting and retry configuration
	RateLimit RateLimitConfig `yaml:"rate_limit" json:"rate_limit"`

	// Output and report settings
	Output OutputConfig `yaml:"output" json:"output"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// TwitterConfig holds Twitter API specific configuration
type TwitterConfig struct {
	BearerToken string        `yaml:"bearer_token" json:"bearer_token"`
	BaseURL     string        `yaml:"base_url" json:"base_url"`
	Timeout     time.Duration `yaml:"timeout" json:"timeout"`
}

// FetchConfig holds pagination and bulk lookup settings
type FetchConfig struct {
	// PageSize is the number of follower IDs requested per page
	PageSize int `yaml:"page_size" json:"page_size"`
	// LookupBatchSize is the number of IDs per users/lookup call (API max 100)
	LookupBatchSize int `yaml:"lookup_batch_size" json:"lookup_batch_size"`
	// CacheOnly skips remote fetching and reports from the local cache
	CacheOnly bool `yaml:"cache_only" json:"cache_only"`
}

// RateLimitConfig holds rate limiting and retry configuration
type RateLimitConfig struct {
	RequestsPerWindow int           `yaml:"requests_per_window" json:"requests_per_window"`
	Window            time.Duration `yaml:"window" json:"window"`
	// MaxRetries is the number of retries after a failed request;
	// 0 disables retrying entirely
	MaxRetries int `yaml:"max_retries" json:"max_retries"`
	// FallbackDelay is used when the API provides no reset hint
	FallbackDelay time.Duration `yaml:"fallback_delay" json:"fallback_delay"`
}

// OutputConfig holds cache file and report settings
type OutputConfig struct {
	// CacheDirectory is where per-handle CSV caches are written
	CacheDirectory string `yaml:"cache_directory" json:"cache_directory"`
	// TopN is the number of top followers to report
	TopN int `yaml:"top_n" json:"top_n"`
	// Columns selects and orders report columns
	Columns []string `yaml:"columns" json:"columns"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
	File  string `yaml:"file" json:"file"`
}

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Twitter: TwitterConfig{
			BaseURL: "https://api.twitter.com/1.1",
			Timeout: 30 * time.Second,
		},
		Fetch: FetchConfig{
			PageSize:        5000,
			LookupBatchSize: 100,
			CacheOnly:       false,
		},
		RateLimit: RateLimitConfig{
			RequestsPerWindow: 15,
			Window:            15 * time.Minute,
			MaxRetries:        5,
			FallbackDelay:     60 * time.Second,
		},
		Output: OutputConfig{
			CacheDirectory: ".",
			TopN:           20,
			Columns:        []string{"screen_name", "followers_count", "created_at", "name"},
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  "",
		},
	}
}

// LoadFromEnv loads configuration from environment variables
func (c *Config) LoadFromEnv() error {
	if token := os.Getenv("XFOLLOWERS_BEARER_TOKEN"); token != "" {
		c.Twitter.BearerToken = token
	}
	if baseURL := os.Getenv("XFOLLOWERS_BASE_URL"); baseURL != "" {
		c.Twitter.BaseURL = baseURL
	}
	if cacheDir := os.Getenv("XFOLLOWERS_CACHE_DIR"); cacheDir != "" {
		c.Output.CacheDirectory = cacheDir
	}
	if topN := os.Getenv("XFOLLOWERS_TOP_N"); topN != "" {
		if val, err := strconv.Atoi(topN); err == nil && val > 0 {
			c.Output.TopN = val
		}
	}
	if retries := os.Getenv("XFOLLOWERS_MAX_RETRIES"); retries != "" {
		if val, err := strconv.Atoi(retries); err == nil && val >= 0 {
			c.RateLimit.MaxRetries = val
		}
	}
	if logLevel := os.Getenv("XFOLLOWERS_LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = logLevel
	}
	return nil
}

// LoadFromFile loads configuration from a YAML file
func (c *Config) LoadFromFile(path string) error {
	if path == "" {
		path = c.findConfigFile()
		if path == "" {
			return nil // No config file found, not an error
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// findConfigFile searches for config file in standard locations
func (c *Config) findConfigFile() string {
	locations := []string{
		".xfollowers.yaml",
		".xfollowers.yml",
		filepath.Join(os.Getenv("HOME"), ".config", "xfollowers", "config.yaml"),
		filepath.Join(os.Getenv("HOME"), ".config", "xfollowers", "config.yml"),
		filepath.Join(os.Getenv("HOME"), ".xfollowers.yaml"),
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

// validColumns are the report columns that can be selected
var validColumns = map[string]bool{
	"id":              true,
	"screen_name":     true,
	"name":            true,
	"followers_count": true,
	"created_at":      true,
	"timestamp":       true,
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	var errs []error

	if c.Twitter.BaseURL == "" {
		errs = append(errs, errors.New("API base URL is required"))
	}
	if c.Twitter.Timeout <= 0 {
		errs = append(errs, errors.New("API timeout must be positive"))
	}

	if c.Fetch.PageSize <= 0 || c.Fetch.PageSize > 5000 {
		errs = append(errs, errors.New("page size must be between 1 and 5000"))
	}
	if c.Fetch.LookupBatchSize <= 0 || c.Fetch.LookupBatchSize > 100 {
		errs = append(errs, errors.New("lookup batch size must be between 1 and 100"))
	}

	if c.RateLimit.RequestsPerWindow <= 0 {
		errs = append(errs, errors.New("requests per window must be positive"))
	}
	if c.RateLimit.Window <= 0 {
		errs = append(errs, errors.New("rate limit window must be positive"))
	}
	if c.RateLimit.MaxRetries < 0 {
		errs = append(errs, errors.New("max retries cannot be negative"))
	}

	if c.Output.CacheDirectory == "" {
		errs = append(errs, errors.New("cache directory is required"))
	}
	if c.Output.TopN <= 0 {
		errs = append(errs, errors.New("top N must be positive"))
	}
	for _, col := range c.Output.Columns {
		if !validColumns[col] {
			errs = append(errs, fmt.Errorf("unknown report column: %s", col))
		}
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, errors.New("invalid log level"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// Save saves the configuration to a file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// MergeCommandLineFlags merges command line flags into the configuration
func (c *Config) MergeCommandLineFlags(flags map[string]interface{}) {
	if token, ok := flags["bearer-token"].(string); ok && token != "" {
		c.Twitter.BearerToken = token
	}
	if cacheDir, ok := flags["cache-dir"].(string); ok && cacheDir != "" {
		c.Output.CacheDirectory = cacheDir
	}
	if topN, ok := flags["top"].(int); ok && topN > 0 {
		c.Output.TopN = topN
	}
	if columns, ok := flags["columns"].([]string); ok && len(columns) > 0 {
		c.Output.Columns = columns
	}
	if maxRetries, ok := flags["max-retries"].(int); ok && maxRetries >= 0 {
		c.RateLimit.MaxRetries = maxRetries
	}
	if cacheOnly, ok := flags["cached"].(bool); ok {
		c.Fetch.CacheOnly = cacheOnly
	}
	if logLevel, ok := flags["log-level"].(string); ok && logLevel != "" {
		c.Logging.Level = logLevel
	}
}

// Load loads configuration from all sources with proper precedence.
// Precedence order: Command line flags > Environment variables > .env file > Config file > Defaults
func Load(configPath string, flags map[string]interface{}) (*Config, error) {
	// Try to load .env files (don't fail if they don't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".xfollowers.env"))

	config := DefaultConfig()

	if err := config.LoadFromFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	if err := config.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	config.MergeCommandLineFlags(flags)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}
