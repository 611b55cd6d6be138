package rdl

import (
	"io"
	"time"

	"github.com/pkg/errors"
)

// Engine prepares report definitions with its own configuration, function
// registry, element registry and cache. Use New() to create one.
type Engine struct {
	config    *Config
	cache     *ReportCache
	functions *DefaultFunctionRegistry
	elements  *ElementRegistry
}

// New creates a report engine with the global configuration.
func New() *Engine {
	return NewWithConfig(GetGlobalConfig())
}

// NewWithConfig creates a report engine with custom configuration.
func NewWithConfig(config *Config) *Engine {
	if config == nil {
		config = DefaultConfig()
	}
	return &Engine{
		config: config,
		cache: NewReportCacheWithConfig(CacheConfig{
			MaxSize: config.CacheMaxSize,
			TTL:     config.CacheTTL,
		}),
		functions: NewFunctionRegistryWithBuiltins(),
		elements:  DefaultElementRegistry().Clone(),
	}
}

// PrepareFile loads and builds a report definition file. The result is cached by
// path if caching is enabled in the configuration.
func (e *Engine) PrepareFile(path string) (*PreparedReport, error) {
	prepare := func() (*PreparedReport, error) {
		text, err := readDefinitionFile(path)
		if err != nil {
			return nil, err
		}
		report, err := e.PrepareString(text)
		if err != nil {
			return nil, errors.WithMessagef(err, "prepare %s", path)
		}
		return report, nil
	}

	if e.config.CacheMaxSize > 0 && e.cache != nil {
		return e.cache.Prepare(path, prepare)
	}
	return prepare()
}

// Prepare loads and builds a report definition from an io.Reader.
func (e *Engine) Prepare(r io.Reader) (*PreparedReport, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "read report definition")
	}
	return e.PrepareString(string(raw))
}

// PrepareString builds a report definition held in a string.
func (e *Engine) PrepareString(text string) (*PreparedReport, error) {
	return prepareReport(text, prepareSettings{
		config:    e.config,
		functions: e.functions,
		elements:  e.elements,
		logger:    GetLogger(),
	})
}

// RegisterFunction adds a custom function that value expressions can call.
func (e *Engine) RegisterFunction(fn Function) error {
	return e.functions.RegisterFunction(fn)
}

// RegisterItem makes the engine build a custom item for an element name.
func (e *Engine) RegisterItem(name string, factory ItemFactory) {
	e.elements.Register(name, factory)
}

// Functions returns the engine's function registry.
func (e *Engine) Functions() FunctionRegistry {
	return e.functions
}

// Config returns the engine's configuration.
func (e *Engine) Config() *Config {
	return e.config
}

// SetConfig updates the engine's configuration. Reports prepared earlier keep
// the configuration they were prepared with.
func (e *Engine) SetConfig(config *Config) {
	e.config = config
	if e.cache != nil {
		e.cache.Configure(CacheConfig{MaxSize: config.CacheMaxSize, TTL: config.CacheTTL})
	}
}

// ClearCache removes all reports from the cache.
func (e *Engine) ClearCache() {
	if e.cache != nil {
		e.cache.Clear()
	}
}

// Close releases any resources held by the engine.
func (e *Engine) Close() error {
	e.ClearCache()
	return nil
}

// Option represents a configuration option for the engine.
type Option func(*Engine)

// WithConfig returns an option that sets the engine configuration.
func WithConfig(config *Config) Option {
	return func(e *Engine) {
		e.SetConfig(config)
	}
}

// WithCache returns an option that sets the cache size (0 disables caching).
func WithCache(maxSize int) Option {
	return func(e *Engine) {
		config := *e.config
		config.CacheMaxSize = maxSize
		e.SetConfig(&config)
	}
}

// WithFunction returns an option that registers a custom function.
func WithFunction(fn Function) Option {
	return func(e *Engine) {
		if err := e.functions.RegisterFunction(fn); err != nil {
			GetLogger().WithField("function", fn.Name()).Warn("Function not registered: %v", err)
		}
	}
}

// WithItem returns an option that registers a custom report item.
func WithItem(name string, factory ItemFactory) Option {
	return func(e *Engine) {
		e.elements.Register(name, factory)
	}
}

// NewWithOptions creates a new engine with the specified options.
func NewWithOptions(opts ...Option) *Engine {
	engine := New()
	for _, opt := range opts {
		opt(engine)
	}
	return engine
}

// DefaultEngine is the global default engine instance.
var DefaultEngine = New()

// RegisterGlobalFunction adds a custom function to the default engine.
func RegisterGlobalFunction(fn Function) error {
	return DefaultEngine.RegisterFunction(fn)
}

// ClearCache clears the default engine's cache.
func ClearCache() {
	DefaultEngine.ClearCache()
}

// SetCacheConfig updates the default engine's cache configuration.
func SetCacheConfig(maxSize int, ttl time.Duration) {
	config := *DefaultEngine.Config()
	config.CacheMaxSize = maxSize
	config.CacheTTL = ttl
	DefaultEngine.SetConfig(&config)
}
