package rdl

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func postfixOf(t *testing.T, expr string) []Token {
	t.Helper()
	postfix, err := ToPostfix(Classify(Tokenize(expr)))
	require.NoError(t, err)
	return postfix
}

func TestToPostfix(t *testing.T) {
	tests := []struct {
		name string
		expr string
		want []Token
	}{
		{
			name: "precedence",
			expr: "=1+2*3",
			want: []Token{
				{Kind: TokenNumber, Text: "1"},
				{Kind: TokenNumber, Text: "2"},
				{Kind: TokenNumber, Text: "3"},
				{Kind: TokenOperator, Text: "*"},
				{Kind: TokenOperator, Text: "+"},
			},
		},
		{
			name: "power is right associative",
			expr: "=2^3^2",
			want: []Token{
				{Kind: TokenNumber, Text: "2"},
				{Kind: TokenNumber, Text: "3"},
				{Kind: TokenNumber, Text: "2"},
				{Kind: TokenOperator, Text: "^"},
				{Kind: TokenOperator, Text: "^"},
			},
		},
		{
			name: "parentheses override precedence",
			expr: "=(1+2)*3",
			want: []Token{
				{Kind: TokenNumber, Text: "1"},
				{Kind: TokenNumber, Text: "2"},
				{Kind: TokenOperator, Text: "+"},
				{Kind: TokenNumber, Text: "3"},
				{Kind: TokenOperator, Text: "*"},
			},
		},
		{
			name: "function arguments are counted",
			expr: "=Add(1, 2*3, 4)",
			want: []Token{
				{Kind: TokenNumber, Text: "1"},
				{Kind: TokenNumber, Text: "2"},
				{Kind: TokenNumber, Text: "3"},
				{Kind: TokenOperator, Text: "*"},
				{Kind: TokenNumber, Text: "4"},
				{Kind: TokenFunction, Text: "Add", Args: 3},
			},
		},
		{
			name: "field reference inside a call",
			expr: `=First(Fields!Name.Value, "Customers")`,
			want: []Token{
				{Kind: TokenField, Text: "Name"},
				{Kind: TokenString, Text: "Customers"},
				{Kind: TokenFunction, Text: "First", Args: 2},
			},
		},
		{
			name: "unary minus",
			expr: "=2*-3",
			want: []Token{
				{Kind: TokenNumber, Text: "2"},
				{Kind: TokenNumber, Text: "3"},
				{Kind: TokenOperator, Text: unaryMinus},
				{Kind: TokenOperator, Text: "*"},
			},
		},
		{
			name: "concatenation binds loosest",
			expr: `="n=" & 1+1`,
			want: []Token{
				{Kind: TokenString, Text: "n="},
				{Kind: TokenNumber, Text: "1"},
				{Kind: TokenNumber, Text: "1"},
				{Kind: TokenOperator, Text: "+"},
				{Kind: TokenOperator, Text: "&"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, postfixOf(t, tt.expr)); diff != "" {
				t.Errorf("ToPostfix(%q) mismatch (-want +got):\n%s", tt.expr, diff)
			}
		})
	}
}

func TestToPostfixErrors(t *testing.T) {
	tests := []struct {
		name string
		expr string
	}{
		{name: "unclosed parenthesis", expr: "=(1+2"},
		{name: "unopened parenthesis", expr: "=1+2)"},
		{name: "comma outside a call", expr: "=1,2"},
		{name: "comma inside plain parentheses", expr: "=(1,2)"},
		{name: "empty parentheses", expr: "=()"},
		{name: "function without call", expr: "=Add 1"},
		{name: "unknown operator", expr: "=1 $ 2"},
		{name: "broken field reference", expr: "=Fields!Amount"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ToPostfix(Classify(Tokenize(tt.expr)))
			require.Error(t, err)
			assert.True(t, IsExpressionError(err), "want *ExpressionError, got %T", err)
		})
	}
}

func TestEvaluate(t *testing.T) {
	resolver := NewResolver(nil)
	tests := []struct {
		expr string
		want string
	}{
		{expr: "=1+2*3", want: "7"},
		{expr: "=2^3^2", want: "512"},
		{expr: "=(1+2)*3", want: "9"},
		{expr: "=10/4", want: "2.5"},
		{expr: "=7 % 4", want: "3"},
		{expr: "=-3+5", want: "2"},
		{expr: "=2*-3", want: "-6"},
		{expr: "=+4", want: "4"},
		{expr: "=0.1+0.2", want: "0.3"},
		{expr: `="Total: " & 3*2`, want: "Total: 6"},
		{expr: `="a" + "b"`, want: "ab"},
		{expr: `=1 + "2"`, want: "12"},
		{expr: `="x" * 2`, want: "NaN"},
		{expr: "=Add(1, 2, 3)", want: "6"},
		{expr: "=add(1, 2)", want: "3"},
		{expr: "=Multiply(2, 3.5)", want: "7"},
		{expr: "=Add(Multiply(2, 3), 1)", want: "7"},
		{expr: `=First("plain")`, want: "plain"},
		{expr: "=", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			got, err := resolver.Resolve(tt.expr, Scope{})
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEvaluateErrors(t *testing.T) {
	resolver := NewResolver(nil)
	for _, expr := range []string{
		"=1/0",
		"=5 % 0",
		"=1+",
		"=1 2",
		"=Unknown(1)",
		"=Add()",
	} {
		t.Run(expr, func(t *testing.T) {
			_, err := resolver.Resolve(expr, Scope{})
			require.Error(t, err)
			assert.True(t, IsExpressionError(err), "want *ExpressionError, got %T: %v", err, err)
		})
	}
}

func TestFormatValue(t *testing.T) {
	tests := []struct {
		value interface{}
		want  string
	}{
		{value: nil, want: ""},
		{value: "text", want: "text"},
		{value: 42, want: "42"},
		{value: int64(-7), want: "-7"},
		{value: uint8(9), want: "9"},
		{value: 7.0, want: "7"},
		{value: 2.5, want: "2.5"},
		{value: 1e21, want: "1000000000000000000000"},
		{value: 1.5e15, want: "1500000000000000"},
		{value: 0.1 + 0.2, want: "0.3"},
		{value: 1e-7, want: "0.0000001"},
		{value: math.Inf(1), want: "+Inf"},
		{value: math.NaN(), want: "NaN"},
		{value: json.Number("12.50"), want: "12.50"},
		{value: true, want: "true"},
		{value: &FieldRef{Name: "X"}, want: ""},
	}
	for _, tt := range tests {
		if got := FormatValue(tt.value); got != tt.want {
			t.Errorf("FormatValue(%#v) = %q, want %q", tt.value, got, tt.want)
		}
	}
}
