package rdl

import (
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/PrairieTrailDave/RDLReport/pkg/rdl/render"
)

// Config contains all configuration options for the report engine
type Config struct {
	// CacheMaxSize is the maximum number of prepared reports to cache. 0 disables caching.
	CacheMaxSize int `yaml:"cache_max_size"`
	// CacheTTL is the time-to-live for cached reports. 0 means no expiration.
	CacheTTL time.Duration `yaml:"cache_ttl"`
	// LogLevel controls the verbosity of logging (debug, info, warn, error, off)
	LogLevel string `yaml:"log_level"`
	// MaxRenderDepth bounds nesting of report items and of formulas resolved through
	// declared field values
	MaxRenderDepth int `yaml:"max_render_depth"`
	// StrictMode aborts a render on the first item failure and surfaces expression errors
	StrictMode bool `yaml:"strict_mode"`
	// InchPixels is the pixel factor for inch lengths
	InchPixels float64 `yaml:"inch_pixels"`
	// CMPixels is the pixel factor for centimetre lengths
	CMPixels float64 `yaml:"cm_pixels"`
	// ApplyPageMargins adds the page top and left margins to absolute positions
	ApplyPageMargins bool `yaml:"apply_page_margins"`
}

var (
	globalConfig      *Config
	globalConfigMutex sync.RWMutex
	configOnce        sync.Once
)

func loadGlobalConfig() {
	configOnce.Do(func() {
		globalConfig = ConfigFromEnvironment()
	})
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		CacheMaxSize:     100,
		CacheTTL:         0,
		LogLevel:         "info",
		MaxRenderDepth:   100,
		StrictMode:       false,
		InchPixels:       render.DefaultInchPixels,
		CMPixels:         render.DefaultCMPixels,
		ApplyPageMargins: false,
	}
}

// ConfigFromEnvironment creates a configuration from environment variables
func ConfigFromEnvironment() *Config {
	config := DefaultConfig()

	// RDL_CACHE_MAX_SIZE
	if val := os.Getenv("RDL_CACHE_MAX_SIZE"); val != "" {
		if size, err := strconv.Atoi(val); err == nil {
			config.CacheMaxSize = size
		}
	}

	// RDL_CACHE_TTL
	if val := os.Getenv("RDL_CACHE_TTL"); val != "" {
		if duration, err := time.ParseDuration(val); err == nil {
			config.CacheTTL = duration
		}
	}

	// RDL_LOG_LEVEL
	if val := os.Getenv("RDL_LOG_LEVEL"); val != "" {
		config.LogLevel = val
	}

	// RDL_MAX_RENDER_DEPTH
	if val := os.Getenv("RDL_MAX_RENDER_DEPTH"); val != "" {
		if depth, err := strconv.Atoi(val); err == nil {
			config.MaxRenderDepth = depth
		}
	}

	// RDL_STRICT_MODE
	if val := os.Getenv("RDL_STRICT_MODE"); val != "" {
		config.StrictMode = parseBool(val)
	}

	// RDL_INCH_PIXELS
	if val := os.Getenv("RDL_INCH_PIXELS"); val != "" {
		if factor, err := strconv.ParseFloat(val, 64); err == nil {
			config.InchPixels = factor
		}
	}

	// RDL_CM_PIXELS
	if val := os.Getenv("RDL_CM_PIXELS"); val != "" {
		if factor, err := strconv.ParseFloat(val, 64); err == nil {
			config.CMPixels = factor
		}
	}

	// RDL_APPLY_PAGE_MARGINS
	if val := os.Getenv("RDL_APPLY_PAGE_MARGINS"); val != "" {
		config.ApplyPageMargins = parseBool(val)
	}

	return config
}

// ConfigFromYAML reads a configuration document. Keys that are not present keep
// their default values.
func ConfigFromYAML(r io.Reader) (*Config, error) {
	config := DefaultConfig()
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(config); err != nil {
		if errors.Is(err, io.EOF) {
			return config, nil
		}
		return nil, errors.Wrap(err, "decode config")
	}
	return config, nil
}

// LoadConfigFile reads a YAML configuration file.
func LoadConfigFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, WithContext(errors.Wrap(err, "open config"), "load config", map[string]interface{}{"path": path})
	}
	defer f.Close()

	config, err := ConfigFromYAML(f)
	if err != nil {
		return nil, WithContext(err, "load config", map[string]interface{}{"path": path})
	}
	return config, nil
}

// NewConfigWithDefaults creates a new configuration with defaults applied to unset fields
func NewConfigWithDefaults(overrides *Config) *Config {
	defaults := DefaultConfig()

	if overrides == nil {
		return defaults
	}

	config := *overrides

	if config.LogLevel == "" {
		config.LogLevel = defaults.LogLevel
	}

	if config.MaxRenderDepth == 0 {
		config.MaxRenderDepth = defaults.MaxRenderDepth
	}

	if config.InchPixels == 0 {
		config.InchPixels = defaults.InchPixels
	}

	if config.CMPixels == 0 {
		config.CMPixels = defaults.CMPixels
	}

	return &config
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.CacheMaxSize < 0 {
		return errors.New("cache max size cannot be negative")
	}

	if c.CacheTTL < 0 {
		return errors.New("cache TTL cannot be negative")
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
		"off":   true,
	}

	if !validLogLevels[c.LogLevel] {
		return errors.New("invalid log level: " + c.LogLevel)
	}

	if c.MaxRenderDepth <= 0 {
		return errors.New("max render depth must be positive")
	}

	if c.InchPixels <= 0 || c.CMPixels <= 0 {
		return errors.New("unit pixel factors must be positive")
	}

	return nil
}

// Units returns the unit conversion factors configured for rendering.
func (c *Config) Units() render.Units {
	return render.Units{InchPixels: c.InchPixels, CMPixels: c.CMPixels}
}

// GetGlobalConfig returns the global configuration
func GetGlobalConfig() *Config {
	loadGlobalConfig()

	globalConfigMutex.RLock()
	defer globalConfigMutex.RUnlock()

	if globalConfig == nil {
		return DefaultConfig()
	}

	// Return a copy to prevent modification
	configCopy := *globalConfig
	return &configCopy
}

// SetGlobalConfig sets the global configuration
func SetGlobalConfig(config *Config) {
	loadGlobalConfig()

	globalConfigMutex.Lock()
	globalConfig = config
	globalConfigMutex.Unlock()

	// Outside the lock: the logger reads the config back
	UpdateLoggerFromConfig()
}

// parseBool parses a boolean value from a string
func parseBool(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "true" || s == "1" || s == "yes" || s == "on"
}
