package rdl

import (
	"strings"
)

// TokenKind classifies a token of a value expression
type TokenKind int

const (
	TokenFunction TokenKind = iota
	TokenString
	TokenNumber
	TokenOperator
	TokenName
	TokenComma
	// TokenField is a whole Fields!Name.Value reference; Text holds the field name.
	TokenField
)

func (k TokenKind) String() string {
	switch k {
	case TokenFunction:
		return "function"
	case TokenString:
		return "string"
	case TokenNumber:
		return "number"
	case TokenOperator:
		return "operator"
	case TokenName:
		return "name"
	case TokenComma:
		return "comma"
	case TokenField:
		return "field"
	default:
		return "unknown"
	}
}

// Token is a classified piece of a value expression.
// Args is only set on function tokens in postfix form.
type Token struct {
	Kind TokenKind
	Text string
	Args int
}

const (
	expressionOperators  = "+-*/%^()!&"
	expressionSeparators = ".,"
	expressionSpaces     = " \t\r\n"
)

func isExpressionNameChar(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') || c == '_'
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

// IsFormula reports whether a value is an expression rather than literal text.
func IsFormula(value string) bool {
	return strings.HasPrefix(value, "=")
}

// Tokenize splits a value expression into raw runs. A leading "=" marks the value
// as a formula and is not part of any run. A double quoted string runs to the next
// quote, or to the end of input when it is never closed.
func Tokenize(expr string) []string {
	expr = strings.TrimPrefix(expr, "=")

	var tokens []string
	for i := 0; i < len(expr); {
		c := expr[i]
		switch {
		case strings.IndexByte(expressionSpaces, c) >= 0:
			i++
		case strings.IndexByte(expressionSeparators, c) >= 0,
			strings.IndexByte(expressionOperators, c) >= 0:
			tokens = append(tokens, expr[i:i+1])
			i++
		case isDigit(c):
			j := i + 1
			for j < len(expr) && (isDigit(expr[j]) || expr[j] == '.') {
				j++
			}
			tokens = append(tokens, expr[i:j])
			i = j
		case isExpressionNameChar(c):
			j := i + 1
			for j < len(expr) && isExpressionNameChar(expr[j]) {
				j++
			}
			tokens = append(tokens, expr[i:j])
			i = j
		case c == '"':
			end := strings.IndexByte(expr[i+1:], '"')
			if end < 0 {
				tokens = append(tokens, expr[i:])
				i = len(expr)
			} else {
				tokens = append(tokens, expr[i:i+end+2])
				i += end + 2
			}
		default:
			tokens = append(tokens, expr[i:i+1])
			i++
		}
	}
	return tokens
}

// Classify tags raw runs using the default function registry.
func Classify(raw []string) []Token {
	return classify(raw, GetDefaultFunctionRegistry())
}

func classify(raw []string, functions FunctionRegistry) []Token {
	tokens := make([]Token, 0, len(raw))
	for _, text := range raw {
		tokens = append(tokens, classifyOne(text, functions))
	}
	return tokens
}

func classifyOne(text string, functions FunctionRegistry) Token {
	switch {
	case text == ",":
		return Token{Kind: TokenComma, Text: text}
	case text[0] == '"':
		value := text[1:]
		if len(text) > 1 && strings.HasSuffix(text, `"`) {
			value = text[1 : len(text)-1]
		}
		return Token{Kind: TokenString, Text: value}
	case isDigit(text[0]):
		return Token{Kind: TokenNumber, Text: text}
	case isExpressionNameChar(text[0]):
		if isFunctionName(text, functions) {
			return Token{Kind: TokenFunction, Text: text}
		}
		return Token{Kind: TokenName, Text: text}
	default:
		return Token{Kind: TokenOperator, Text: text}
	}
}

// fieldsKeyword introduces a field reference and is always a function token.
const fieldsKeyword = "fields"

func isFunctionName(name string, functions FunctionRegistry) bool {
	if strings.EqualFold(name, fieldsKeyword) {
		return true
	}
	if functions == nil {
		return false
	}
	_, ok := functions.GetFunction(name)
	return ok
}

// reduceFieldReferences replaces each Fields ! name . Value run with one field token.
func reduceFieldReferences(expr string, tokens []Token) ([]Token, error) {
	out := make([]Token, 0, len(tokens))
	for i := 0; i < len(tokens); i++ {
		tok := tokens[i]
		if tok.Kind != TokenFunction || !strings.EqualFold(tok.Text, fieldsKeyword) {
			out = append(out, tok)
			continue
		}
		if i+4 >= len(tokens) ||
			tokens[i+1].Text != "!" ||
			(tokens[i+2].Kind != TokenName && tokens[i+2].Kind != TokenFunction) ||
			tokens[i+3].Text != "." ||
			!strings.EqualFold(tokens[i+4].Text, "Value") {
			return nil, NewExpressionError(expr, tok.Text, "expected Fields!<name>.Value")
		}
		out = append(out, Token{Kind: TokenField, Text: tokens[i+2].Text})
		i += 4
	}
	return out, nil
}
