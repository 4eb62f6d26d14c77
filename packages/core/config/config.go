// Package config holds runner configuration: browser selection, timeouts,
// concurrency, artifact directories and screenshot policy. Values come from
// a JSON config file, FLOWRIGHT_* environment variables and CLI flags, in
// that order of increasing precedence.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Screenshot policies.
const (
	ScreenshotOnFailure = "failure"
	ScreenshotEvery     = "every"
	ScreenshotOff       = "off"
)

// Config is the runner configuration. Timeout fields are milliseconds in
// the file/env representation.
type Config struct {
	Browser           string  `json:"browser,omitempty"`
	BrowserPath       string  `json:"browserPath,omitempty"`
	Headless          *bool   `json:"headless,omitempty"`
	DefaultTimeout    int     `json:"defaultTimeout,omitempty"`    // per-action, ms
	NavigationTimeout int     `json:"navigationTimeout,omitempty"` // page loads, ms
	AssertionTimeout  int     `json:"assertionTimeout,omitempty"`  // verify* polling, ms
	Concurrency       int     `json:"concurrency,omitempty"`
	LaunchRate        float64 `json:"launchRate,omitempty"` // job starts per second, 0 = unlimited
	OutputDir         string  `json:"outputDir,omitempty"`
	ObjectsDir        string  `json:"objectsDir,omitempty"`
	KeywordsDir       string  `json:"keywordsDir,omitempty"`
	ScreenshotPolicy  string  `json:"screenshotPolicy,omitempty"`
	NoColor           *bool   `json:"noColor,omitempty"`
}

// DefaultConfig mirrors the historical runner defaults.
func DefaultConfig() *Config {
	return &Config{
		Browser:           "chrome",
		DefaultTimeout:    5000,
		NavigationTimeout: 30000,
		AssertionTimeout:  5000,
		Concurrency:       1,
		ObjectsDir:        "objects",
		KeywordsDir:       "keywords",
		ScreenshotPolicy:  ScreenshotOnFailure,
	}
}

// GetHeadless defaults to true; interactive debugging opts out explicitly.
func (c *Config) GetHeadless() bool {
	if c.Headless == nil {
		return true
	}
	return *c.Headless
}

// GetNoColor defaults to false.
func (c *Config) GetNoColor() bool {
	return c.NoColor != nil && *c.NoColor
}

// BoolPtr returns a pointer to b, for optional config fields.
func BoolPtr(b bool) *bool { return &b }

func (c *Config) DefaultTimeoutDuration() time.Duration {
	return time.Duration(c.DefaultTimeout) * time.Millisecond
}

func (c *Config) NavigationTimeoutDuration() time.Duration {
	return time.Duration(c.NavigationTimeout) * time.Millisecond
}

func (c *Config) AssertionTimeoutDuration() time.Duration {
	return time.Duration(c.AssertionTimeout) * time.Millisecond
}

// ConfigFilenames contains the config file names searched in order.
var ConfigFilenames = []string{
	".flowright.config.json",
	"flowright.config.json",
	".flowrightrc",
	".flowrightrc.json",
}

// LoadConfig loads configuration from the given path, or searches the
// current directory when path is empty. Environment overrides are applied
// on top either way.
func LoadConfig(path string) (*Config, error) {
	var cfg *Config
	var err error

	if path != "" {
		cfg, err = loadConfigFromFile(path)
	} else {
		cfg, err = FindAndLoadConfig(".")
	}
	if err != nil {
		return nil, err
	}

	cfg.applyEnv()
	return cfg, nil
}

// FindAndLoadConfig searches for a config file in the given directory and
// falls back to defaults when none exists.
func FindAndLoadConfig(dir string) (*Config, error) {
	for _, filename := range ConfigFilenames {
		configPath := filepath.Join(dir, filename)
		if _, err := os.Stat(configPath); err == nil {
			return loadConfigFromFile(configPath)
		}
	}
	return DefaultConfig(), nil
}

func loadConfigFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg := DefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return cfg, nil
}

// applyEnv layers FLOWRIGHT_* environment variables over the config.
func (c *Config) applyEnv() {
	if v := os.Getenv("FLOWRIGHT_BROWSER"); v != "" {
		c.Browser = v
	}
	if v := os.Getenv("FLOWRIGHT_BROWSER_PATH"); v != "" {
		c.BrowserPath = v
	}
	if v := os.Getenv("FLOWRIGHT_HEADLESS"); v != "" {
		c.Headless = BoolPtr(v != "0" && v != "false" && v != "False")
	}
	if v := envMs("FLOWRIGHT_DEFAULT_TIMEOUT_MS"); v > 0 {
		c.DefaultTimeout = v
	}
	if v := envMs("FLOWRIGHT_NAVIGATION_TIMEOUT_MS"); v > 0 {
		c.NavigationTimeout = v
	}
	if v := envMs("FLOWRIGHT_ASSERTION_TIMEOUT_MS"); v > 0 {
		c.AssertionTimeout = v
	}
	if v := os.Getenv("FLOWRIGHT_SCREENSHOT_POLICY"); v != "" {
		c.ScreenshotPolicy = v
	}
	if v := os.Getenv("FLOWRIGHT_OBJECTS_DIR"); v != "" {
		c.ObjectsDir = v
	}
	if v := os.Getenv("FLOWRIGHT_KEYWORDS_DIR"); v != "" {
		c.KeywordsDir = v
	}
}

func envMs(name string) int {
	v := os.Getenv(name)
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0
	}
	return n
}
