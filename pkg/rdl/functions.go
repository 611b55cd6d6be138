package rdl

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Function represents a callable function in value expressions
type Function interface {
	// Call executes the function with the given arguments
	Call(args ...interface{}) (interface{}, error)

	// Name returns the function name
	Name() string

	// MinArgs returns the minimum number of arguments required
	MinArgs() int

	// MaxArgs returns the maximum number of arguments allowed (-1 for unlimited)
	MaxArgs() int
}

// FunctionRegistry manages available functions. Names match case-insensitively.
type FunctionRegistry interface {
	// RegisterFunction adds a function to the registry
	RegisterFunction(fn Function) error

	// GetFunction retrieves a function by name
	GetFunction(name string) (Function, bool)

	// ListFunctions returns all registered function names
	ListFunctions() []string
}

// DefaultFunctionRegistry is the default implementation of FunctionRegistry
type DefaultFunctionRegistry struct {
	functions map[string]Function
	mutex     sync.RWMutex
}

// NewFunctionRegistry creates a new function registry
func NewFunctionRegistry() *DefaultFunctionRegistry {
	return &DefaultFunctionRegistry{
		functions: make(map[string]Function),
	}
}

// NewFunctionRegistryWithBuiltins creates a registry holding the built-in functions.
func NewFunctionRegistryWithBuiltins() *DefaultFunctionRegistry {
	registry := NewFunctionRegistry()
	registerBuiltinFunctions(registry)
	return registry
}

func (r *DefaultFunctionRegistry) RegisterFunction(fn Function) error {
	name := strings.ToLower(fn.Name())
	if name == "" {
		return fmt.Errorf("function name cannot be empty")
	}
	if name == fieldsKeyword {
		return fmt.Errorf("function name %q is reserved for field references", fn.Name())
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.functions[name] = fn
	return nil
}

func (r *DefaultFunctionRegistry) GetFunction(name string) (Function, bool) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	fn, exists := r.functions[strings.ToLower(name)]
	return fn, exists
}

func (r *DefaultFunctionRegistry) ListFunctions() []string {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	names := make([]string, 0, len(r.functions))
	for name := range r.functions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Clone returns an independent registry with the same functions.
func (r *DefaultFunctionRegistry) Clone() *DefaultFunctionRegistry {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	clone := NewFunctionRegistry()
	for name, fn := range r.functions {
		clone.functions[name] = fn
	}
	return clone
}

var (
	globalRegistry *DefaultFunctionRegistry
	registryOnce   sync.Once
)

// GetDefaultFunctionRegistry returns the default global function registry
func GetDefaultFunctionRegistry() FunctionRegistry {
	registryOnce.Do(func() {
		globalRegistry = NewFunctionRegistryWithBuiltins()
	})
	return globalRegistry
}

// SimpleFunctionImpl provides a basic implementation of Function
type SimpleFunctionImpl struct {
	name      string
	minArgs   int
	maxArgs   int
	fieldRefs bool
	handler   func(args ...interface{}) (interface{}, error)
}

func NewSimpleFunction(name string, minArgs, maxArgs int, handler func(args ...interface{}) (interface{}, error)) Function {
	return &SimpleFunctionImpl{
		name:    name,
		minArgs: minArgs,
		maxArgs: maxArgs,
		handler: handler,
	}
}

// NewScopedFunction is like NewSimpleFunction, but field arguments arrive as
// *FieldRef so the handler can pick the dataset they are read from.
func NewScopedFunction(name string, minArgs, maxArgs int, handler func(args ...interface{}) (interface{}, error)) Function {
	return &SimpleFunctionImpl{
		name:      name,
		minArgs:   minArgs,
		maxArgs:   maxArgs,
		fieldRefs: true,
		handler:   handler,
	}
}

func (f *SimpleFunctionImpl) Call(args ...interface{}) (interface{}, error) {
	argCount := len(args)
	if argCount < f.minArgs {
		return nil, fmt.Errorf("function %s requires at least %d arguments, got %d", f.name, f.minArgs, argCount)
	}
	if f.maxArgs >= 0 && argCount > f.maxArgs {
		return nil, fmt.Errorf("function %s accepts at most %d arguments, got %d", f.name, f.maxArgs, argCount)
	}

	return f.handler(args...)
}

func (f *SimpleFunctionImpl) Name() string {
	return f.name
}

func (f *SimpleFunctionImpl) MinArgs() int {
	return f.minArgs
}

func (f *SimpleFunctionImpl) MaxArgs() int {
	return f.maxArgs
}

// AcceptsFieldRefs reports whether field arguments are passed unresolved.
func (f *SimpleFunctionImpl) AcceptsFieldRefs() bool {
	return f.fieldRefs
}

func registerBuiltinFunctions(registry *DefaultFunctionRegistry) {
	// first(Fields!X.Value, "DataSet") reads X from the named dataset
	firstFn := NewScopedFunction("First", 1, 2, func(args ...interface{}) (interface{}, error) {
		dataset := ""
		if len(args) == 2 {
			qualifier, err := deref(args[1])
			if err != nil {
				return nil, err
			}
			dataset = FormatValue(qualifier)
		}
		if ref, ok := args[0].(*FieldRef); ok {
			return ref.Resolve(dataset)
		}
		return args[0], nil
	})
	registry.RegisterFunction(firstFn)

	addFn := NewSimpleFunction("Add", 1, -1, func(args ...interface{}) (interface{}, error) {
		sum := 0.0
		for _, arg := range args {
			sum += toNumber(arg)
		}
		return sum, nil
	})
	registry.RegisterFunction(addFn)

	multiplyFn := NewSimpleFunction("Multiply", 1, -1, func(args ...interface{}) (interface{}, error) {
		product := 1.0
		for _, arg := range args {
			product *= toNumber(arg)
		}
		return product, nil
	})
	registry.RegisterFunction(multiplyFn)
}
