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

// Config holds all configuration options for the feed harvester
type Config struct {
	// Browser settings for the rendering surface
	Browser BrowserConfig `yaml:"browser" json:"browser"`

	// Scroll driver policy
	Scroll ScrollConfig `yaml:"scroll" json:"scroll"`

	// Link harvesting rules
	Harvest HarvestConfig `yaml:"harvest" json:"harvest"`

	// Export settings
	Export ExportConfig `yaml:"export" json:"export"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// BrowserConfig holds settings for the headless browser surface
type BrowserConfig struct {
	Headless          bool          `yaml:"headless" json:"headless"`
	UserAgent         string        `yaml:"user_agent" json:"user_agent"`
	NavigationTimeout time.Duration `yaml:"navigation_timeout" json:"navigation_timeout"`
	NavigationRetries int           `yaml:"navigation_retries" json:"navigation_retries"`
	SessionCookie     string        `yaml:"session_cookie" json:"session_cookie"`
}

// ScrollConfig holds the scroll driver's polling and termination policy
type ScrollConfig struct {
	// PollInterval is how long to wait between extent checks
	PollInterval time.Duration `yaml:"poll_interval" json:"poll_interval"`
	// SettleDelay is the pause after growth before the next iteration
	SettleDelay time.Duration `yaml:"settle_delay" json:"settle_delay"`
	// StallTimeout bounds the wait for growth within one iteration
	StallTimeout time.Duration `yaml:"stall_timeout" json:"stall_timeout"`
	// MaxRetries is the per-iteration budget for re-issued scroll commands
	MaxRetries int `yaml:"max_retries" json:"max_retries"`
	// MaxIterations is the hard safety ceiling for the whole session
	MaxIterations int `yaml:"max_iterations" json:"max_iterations"`
	// ThrottleSlack is how far a sleep may overrun before a warning is logged
	ThrottleSlack time.Duration `yaml:"throttle_slack" json:"throttle_slack"`
}

// HarvestConfig holds the URL classification and attribution rules
type HarvestConfig struct {
	// HostMarker is the domain fragment that precedes the owner segment
	HostMarker string `yaml:"host_marker" json:"host_marker"`
	// OwnerSigil prefixes the owner designator segment
	OwnerSigil string `yaml:"owner_sigil" json:"owner_sigil"`
	// VideoSegment marks a video item URL
	VideoSegment string `yaml:"video_segment" json:"video_segment"`
	// PhotoSegment marks a photo item URL
	PhotoSegment string `yaml:"photo_segment" json:"photo_segment"`
}

// ExportConfig holds artifact output settings
type ExportConfig struct {
	Directory string `yaml:"directory" json:"directory"`
	Suffix    string `yaml:"suffix" json:"suffix"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
	File  string `yaml:"file" json:"file"`
}

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Browser: BrowserConfig{
			Headless:          true,
			UserAgent:         "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			NavigationTimeout: 30 * time.Second,
			NavigationRetries: 3,
		},
		Scroll: ScrollConfig{
			PollInterval:  500 * time.Millisecond,
			SettleDelay:   time.Second,
			StallTimeout:  10 * time.Second,
			MaxRetries:    3,
			MaxIterations: 2000,
			ThrottleSlack: 200 * time.Millisecond,
		},
		Harvest: HarvestConfig{
			HostMarker:   "tiktok.com",
			OwnerSigil:   "@",
			VideoSegment: "video",
			PhotoSegment: "photo",
		},
		Export: ExportConfig{
			Directory: ".",
			Suffix:    "links",
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  "",
		},
	}
}

// LoadFromEnv loads configuration from environment variables
func (c *Config) LoadFromEnv() error {
	if cookie := os.Getenv("TOKGRAB_SESSION_COOKIE"); cookie != "" {
		c.Browser.SessionCookie = cookie
	}
	if userAgent := os.Getenv("TOKGRAB_USER_AGENT"); userAgent != "" {
		c.Browser.UserAgent = userAgent
	}
	if headless := os.Getenv("TOKGRAB_HEADLESS"); headless != "" {
		c.Browser.Headless = strings.ToLower(headless) != "false"
	}

	if interval := os.Getenv("TOKGRAB_POLL_INTERVAL"); interval != "" {
		if d, err := time.ParseDuration(interval); err == nil && d > 0 {
			c.Scroll.PollInterval = d
		}
	}
	if timeout := os.Getenv("TOKGRAB_STALL_TIMEOUT"); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil && d > 0 {
			c.Scroll.StallTimeout = d
		}
	}
	if retries := os.Getenv("TOKGRAB_MAX_RETRIES"); retries != "" {
		if val, err := strconv.Atoi(retries); err == nil && val >= 0 {
			c.Scroll.MaxRetries = val
		}
	}
	if iterations := os.Getenv("TOKGRAB_MAX_ITERATIONS"); iterations != "" {
		if val, err := strconv.Atoi(iterations); err == nil && val > 0 {
			c.Scroll.MaxIterations = val
		}
	}

	if dir := os.Getenv("TOKGRAB_EXPORT_DIR"); dir != "" {
		c.Export.Directory = dir
	}

	if logLevel := os.Getenv("TOKGRAB_LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = logLevel
	}

	return nil
}

// LoadFromFile loads configuration from a YAML file
func (c *Config) LoadFromFile(path string) error {
	// If path is empty, try default locations
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
		".tokgrab.yaml",
		".tokgrab.yml",
		filepath.Join(os.Getenv("HOME"), ".config", "tokgrab", "config.yaml"),
		filepath.Join(os.Getenv("HOME"), ".config", "tokgrab", "config.yml"),
		filepath.Join(os.Getenv("HOME"), ".tokgrab.yaml"),
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	var errs []error

	if c.Scroll.PollInterval <= 0 {
		errs = append(errs, errors.New("poll interval must be positive"))
	}
	if c.Scroll.StallTimeout <= 0 {
		errs = append(errs, errors.New("stall timeout must be positive"))
	}
	if c.Scroll.StallTimeout < c.Scroll.PollInterval {
		errs = append(errs, errors.New("stall timeout must not be shorter than the poll interval"))
	}
	if c.Scroll.MaxRetries < 0 {
		errs = append(errs, errors.New("max retries cannot be negative"))
	}
	if c.Scroll.MaxIterations <= 0 {
		errs = append(errs, errors.New("max iterations must be positive"))
	}
	if c.Scroll.ThrottleSlack < 0 {
		errs = append(errs, errors.New("throttle slack cannot be negative"))
	}

	if c.Browser.NavigationTimeout <= 0 {
		errs = append(errs, errors.New("navigation timeout must be positive"))
	}
	if c.Browser.NavigationRetries < 0 {
		errs = append(errs, errors.New("navigation retries cannot be negative"))
	}

	if c.Harvest.HostMarker == "" {
		errs = append(errs, errors.New("host marker is required"))
	}
	if c.Harvest.OwnerSigil == "" {
		errs = append(errs, errors.New("owner sigil is required"))
	}
	if c.Harvest.VideoSegment == "" || c.Harvest.PhotoSegment == "" {
		errs = append(errs, errors.New("video and photo segments are required"))
	}

	if c.Export.Directory == "" {
		errs = append(errs, errors.New("export directory is required"))
	}
	if c.Export.Suffix == "" {
		errs = append(errs, errors.New("export suffix is required"))
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
	if cookie, ok := flags["session-cookie"].(string); ok && cookie != "" {
		c.Browser.SessionCookie = cookie
	}
	if headless, ok := flags["headless"].(bool); ok {
		c.Browser.Headless = headless
	}
	if dir, ok := flags["export-dir"].(string); ok && dir != "" {
		c.Export.Directory = dir
	}
	if suffix, ok := flags["export-suffix"].(string); ok && suffix != "" {
		c.Export.Suffix = suffix
	}
	if iterations, ok := flags["max-iterations"].(int); ok && iterations > 0 {
		c.Scroll.MaxIterations = iterations
	}
	if timeout, ok := flags["stall-timeout"].(time.Duration); ok && timeout > 0 {
		c.Scroll.StallTimeout = timeout
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
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".tokgrab.env"))

	// Start with defaults
	config := DefaultConfig()

	// Load from config file
	if err := config.LoadFromFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	// Override with environment variables (includes values from .env)
	if err := config.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	// Override with command line flags
	config.MergeCommandLineFlags(flags)

	// Validate final configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}
