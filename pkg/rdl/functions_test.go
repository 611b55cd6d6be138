package rdl

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFunctionRegistry(t *testing.T) {
	registry := NewFunctionRegistry()
	fn := NewSimpleFunction("Twice", 1, 1, func(args ...interface{}) (interface{}, error) {
		return toNumber(args[0]) * 2, nil
	})
	require.NoError(t, registry.RegisterFunction(fn))

	got, ok := registry.GetFunction("TWICE")
	require.True(t, ok, "lookup ignores case")
	assert.Equal(t, "Twice", got.Name())
	assert.Equal(t, []string{"twice"}, registry.ListFunctions())
}

func TestFunctionRegistryRejects(t *testing.T) {
	registry := NewFunctionRegistry()
	noop := func(args ...interface{}) (interface{}, error) { return nil, nil }

	assert.Error(t, registry.RegisterFunction(NewSimpleFunction("", 0, 0, noop)))
	assert.Error(t, registry.RegisterFunction(NewSimpleFunction("Fields", 0, 0, noop)))
	assert.Empty(t, registry.ListFunctions())
}

func TestBuiltinFunctions(t *testing.T) {
	registry := NewFunctionRegistryWithBuiltins()
	assert.Equal(t, []string{"add", "first", "multiply"}, registry.ListFunctions())
}

func TestFunctionRegistryClone(t *testing.T) {
	base := NewFunctionRegistryWithBuiltins()
	clone := base.Clone()
	require.NoError(t, clone.RegisterFunction(NewSimpleFunction("Extra", 0, 0, func(args ...interface{}) (interface{}, error) {
		return "x", nil
	})))

	_, inClone := clone.GetFunction("extra")
	_, inBase := base.GetFunction("extra")
	assert.True(t, inClone)
	assert.False(t, inBase)
}

func TestSimpleFunctionArgumentCount(t *testing.T) {
	fn := NewSimpleFunction("Pair", 2, 2, func(args ...interface{}) (interface{}, error) {
		return len(args), nil
	})

	_, err := fn.Call(1)
	assert.ErrorContains(t, err, "at least 2")
	_, err = fn.Call(1, 2, 3)
	assert.ErrorContains(t, err, "at most 2")

	got, err := fn.Call(1, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, got)
}

func TestFunctionErrorsBecomeExpressionErrors(t *testing.T) {
	functions := NewFunctionRegistryWithBuiltins()
	require.NoError(t, functions.RegisterFunction(NewSimpleFunction("Fail", 0, 0, func(args ...interface{}) (interface{}, error) {
		return nil, errors.New("no luck")
	})))

	_, err := NewResolver(nil, WithFunctions(functions)).Resolve("=Fail()", Scope{})
	require.Error(t, err)
	assert.True(t, IsExpressionError(err))
	assert.Contains(t, err.Error(), "no luck")
}

func TestScopedFunctionReceivesFieldRef(t *testing.T) {
	var seen interface{}
	functions := NewFunctionRegistryWithBuiltins()
	require.NoError(t, functions.RegisterFunction(NewScopedFunction("Peek", 1, 1, func(args ...interface{}) (interface{}, error) {
		seen = args[0]
		return "ok", nil
	})))

	_, err := NewResolver(nil, WithFunctions(functions)).ResolveRow("=Peek(Fields!A.Value)", Row{"A": 1})
	require.NoError(t, err)
	ref, ok := seen.(*FieldRef)
	require.True(t, ok, "want *FieldRef, got %T", seen)
	assert.Equal(t, "A", ref.Name)
	assert.Equal(t, "Fields!A.Value", ref.String())
}
