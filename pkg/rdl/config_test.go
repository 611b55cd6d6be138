package rdl

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if config.CacheMaxSize != 100 {
		t.Errorf("DefaultConfig CacheMaxSize = %d, want 100", config.CacheMaxSize)
	}

	if config.CacheTTL != 0 {
		t.Errorf("DefaultConfig CacheTTL = %v, want 0", config.CacheTTL)
	}

	if config.LogLevel != "info" {
		t.Errorf("DefaultConfig LogLevel = %s, want info", config.LogLevel)
	}

	if config.MaxRenderDepth != 100 {
		t.Errorf("DefaultConfig MaxRenderDepth = %d, want 100", config.MaxRenderDepth)
	}

	if config.StrictMode {
		t.Errorf("DefaultConfig StrictMode = true, want false")
	}

	if config.InchPixels != 143 || config.CMPixels != 56 {
		t.Errorf("DefaultConfig pixel factors = %v/%v, want 143/56", config.InchPixels, config.CMPixels)
	}

	if config.ApplyPageMargins {
		t.Errorf("DefaultConfig ApplyPageMargins = true, want false")
	}
}

func TestConfigFromEnvironment(t *testing.T) {
	tests := []struct {
		name    string
		envVars map[string]string
		check   func(t *testing.T, config *Config)
	}{
		{
			name:    "cache max size",
			envVars: map[string]string{"RDL_CACHE_MAX_SIZE": "50"},
			check: func(t *testing.T, config *Config) {
				if config.CacheMaxSize != 50 {
					t.Errorf("CacheMaxSize = %d, want 50", config.CacheMaxSize)
				}
			},
		},
		{
			name:    "cache TTL",
			envVars: map[string]string{"RDL_CACHE_TTL": "5m"},
			check: func(t *testing.T, config *Config) {
				if config.CacheTTL != 5*time.Minute {
					t.Errorf("CacheTTL = %v, want 5m", config.CacheTTL)
				}
			},
		},
		{
			name:    "log level",
			envVars: map[string]string{"RDL_LOG_LEVEL": "debug"},
			check: func(t *testing.T, config *Config) {
				if config.LogLevel != "debug" {
					t.Errorf("LogLevel = %s, want debug", config.LogLevel)
				}
			},
		},
		{
			name: "strict mode and margins",
			envVars: map[string]string{
				"RDL_STRICT_MODE":        "yes",
				"RDL_APPLY_PAGE_MARGINS": "1",
			},
			check: func(t *testing.T, config *Config) {
				if !config.StrictMode {
					t.Error("StrictMode = false, want true")
				}
				if !config.ApplyPageMargins {
					t.Error("ApplyPageMargins = false, want true")
				}
			},
		},
		{
			name: "pixel factors",
			envVars: map[string]string{
				"RDL_INCH_PIXELS": "96",
				"RDL_CM_PIXELS":   "37.8",
			},
			check: func(t *testing.T, config *Config) {
				if config.InchPixels != 96 || config.CMPixels != 37.8 {
					t.Errorf("pixel factors = %v/%v, want 96/37.8", config.InchPixels, config.CMPixels)
				}
			},
		},
		{
			name: "invalid numbers keep defaults",
			envVars: map[string]string{
				"RDL_CACHE_MAX_SIZE":   "lots",
				"RDL_MAX_RENDER_DEPTH": "deep",
				"RDL_INCH_PIXELS":      "wide",
			},
			check: func(t *testing.T, config *Config) {
				if config.CacheMaxSize != 100 || config.MaxRenderDepth != 100 || config.InchPixels != 143 {
					t.Errorf("invalid values were applied: %+v", config)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.envVars {
				t.Setenv(k, v)
			}
			tt.check(t, ConfigFromEnvironment())
		})
	}
}

func TestConfigFromYAML(t *testing.T) {
	config, err := ConfigFromYAML(strings.NewReader(`
cache_max_size: 5
cache_ttl: 90s
log_level: warn
strict_mode: true
inch_pixels: 96
`))
	require.NoError(t, err)

	assert.Equal(t, 5, config.CacheMaxSize)
	assert.Equal(t, 90*time.Second, config.CacheTTL)
	assert.Equal(t, "warn", config.LogLevel)
	assert.True(t, config.StrictMode)
	assert.Equal(t, 96.0, config.InchPixels)
	// Keys that are absent keep their defaults
	assert.Equal(t, 56.0, config.CMPixels)
	assert.Equal(t, 100, config.MaxRenderDepth)
}

func TestConfigFromYAMLEmpty(t *testing.T) {
	config, err := ConfigFromYAML(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), config)
}

func TestConfigFromYAMLUnknownKey(t *testing.T) {
	_, err := ConfigFromYAML(strings.NewReader("cache_size: 3\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode config")
}

func TestLoadConfigFileMissing(t *testing.T) {
	_, err := LoadConfigFile("testdata/does-not-exist.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "open config")
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr string
	}{
		{name: "defaults", modify: func(*Config) {}},
		{name: "log level off", modify: func(c *Config) { c.LogLevel = "off" }},
		{name: "negative cache", modify: func(c *Config) { c.CacheMaxSize = -1 }, wantErr: "cache max size"},
		{name: "negative ttl", modify: func(c *Config) { c.CacheTTL = -time.Second }, wantErr: "cache TTL"},
		{name: "unknown log level", modify: func(c *Config) { c.LogLevel = "loud" }, wantErr: "invalid log level"},
		{name: "zero depth", modify: func(c *Config) { c.MaxRenderDepth = 0 }, wantErr: "max render depth"},
		{name: "zero inch factor", modify: func(c *Config) { c.InchPixels = 0 }, wantErr: "pixel factors"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			tt.modify(config)
			err := config.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestNewConfigWithDefaults(t *testing.T) {
	config := NewConfigWithDefaults(&Config{CacheMaxSize: 7, StrictMode: true})

	assert.Equal(t, 7, config.CacheMaxSize)
	assert.True(t, config.StrictMode)
	assert.Equal(t, "info", config.LogLevel)
	assert.Equal(t, 100, config.MaxRenderDepth)
	assert.Equal(t, 143.0, config.InchPixels)
	assert.Equal(t, 56.0, config.CMPixels)

	assert.Equal(t, DefaultConfig(), NewConfigWithDefaults(nil))
}

func TestGlobalConfigIsCopied(t *testing.T) {
	original := GetGlobalConfig()
	t.Cleanup(func() { SetGlobalConfig(original) })

	updated := DefaultConfig()
	updated.CacheMaxSize = 3
	SetGlobalConfig(updated)

	got := GetGlobalConfig()
	assert.Equal(t, 3, got.CacheMaxSize)

	got.CacheMaxSize = 99
	assert.Equal(t, 3, GetGlobalConfig().CacheMaxSize)
}

func TestConfigUnits(t *testing.T) {
	config := DefaultConfig()
	config.InchPixels = 100
	px, ok := config.Units().ToPixels("2in")
	require.True(t, ok)
	assert.Equal(t, 200, px)
}
