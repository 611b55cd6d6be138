package rdl

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

type associativity int

const (
	leftAssoc associativity = iota
	rightAssoc
)

type operatorInfo struct {
	precedence int
	assoc      associativity
	unary      bool
}

// unaryMinus is the postfix spelling of a negation, kept apart from subtraction.
const unaryMinus = "neg"

var operatorTable = map[string]operatorInfo{
	"&":        {precedence: 0, assoc: leftAssoc},
	"+":        {precedence: 1, assoc: leftAssoc},
	"-":        {precedence: 1, assoc: leftAssoc},
	"*":        {precedence: 2, assoc: leftAssoc},
	"/":        {precedence: 2, assoc: leftAssoc},
	"%":        {precedence: 2, assoc: leftAssoc},
	"^":        {precedence: 3, assoc: rightAssoc},
	unaryMinus: {precedence: 4, assoc: rightAssoc, unary: true},
}

// callFrame tracks one open parenthesis while converting to postfix.
type callFrame struct {
	call   bool
	commas int
	empty  bool
}

// ToPostfix reorders classified tokens with the shunting-yard algorithm. Field
// references are first collapsed into single field tokens. Operands go straight
// to the output; operators wait on a stack until an operator of lower precedence
// arrives.
func ToPostfix(tokens []Token) ([]Token, error) {
	expr := joinTokens(tokens)
	reduced, err := reduceFieldReferences(expr, tokens)
	if err != nil {
		return nil, err
	}
	return toPostfix(expr, reduced)
}

func toPostfix(expr string, tokens []Token) ([]Token, error) {
	var (
		output []Token
		stack  []Token
		frames []callFrame
		prev   *Token
	)

	markOperand := func() {
		if len(frames) > 0 {
			frames[len(frames)-1].empty = false
		}
	}

	for i := range tokens {
		tok := tokens[i]
		switch tok.Kind {
		case TokenNumber, TokenString, TokenName, TokenField:
			markOperand()
			output = append(output, tok)

		case TokenFunction:
			markOperand()
			if i+1 >= len(tokens) || tokens[i+1].Text != "(" {
				return nil, NewExpressionError(expr, tok.Text, "function must be followed by '('")
			}
			stack = append(stack, tok)

		case TokenComma:
			for len(stack) > 0 && stack[len(stack)-1].Text != "(" {
				output = append(output, stack[len(stack)-1])
				stack = stack[:len(stack)-1]
			}
			if len(stack) == 0 || len(frames) == 0 || !frames[len(frames)-1].call {
				return nil, NewExpressionError(expr, ",", "misplaced comma or mismatched parentheses")
			}
			frames[len(frames)-1].commas++

		case TokenOperator:
			switch tok.Text {
			case "(":
				markOperand()
				call := prev != nil && prev.Kind == TokenFunction
				frames = append(frames, callFrame{call: call, empty: true})
				stack = append(stack, tok)

			case ")":
				for len(stack) > 0 && stack[len(stack)-1].Text != "(" {
					output = append(output, stack[len(stack)-1])
					stack = stack[:len(stack)-1]
				}
				if len(stack) == 0 {
					return nil, NewExpressionError(expr, ")", "mismatched parentheses")
				}
				stack = stack[:len(stack)-1]
				frame := frames[len(frames)-1]
				frames = frames[:len(frames)-1]

				if frame.call && len(stack) > 0 && stack[len(stack)-1].Kind == TokenFunction {
					fn := stack[len(stack)-1]
					stack = stack[:len(stack)-1]
					fn.Args = 0
					if !frame.empty {
						fn.Args = frame.commas + 1
					}
					output = append(output, fn)
				} else if frame.empty {
					return nil, NewExpressionError(expr, ")", "empty parentheses")
				}

			default:
				text := tok.Text
				if text == "-" && startsOperand(prev) {
					text = unaryMinus
				} else if text == "+" && startsOperand(prev) {
					break
				}
				info, ok := operatorTable[text]
				if !ok {
					return nil, NewExpressionError(expr, tok.Text, "unexpected operator")
				}
				markOperand()
				for len(stack) > 0 && stack[len(stack)-1].Kind == TokenOperator {
					top, ok := operatorTable[stack[len(stack)-1].Text]
					if !ok {
						break
					}
					if (info.assoc == leftAssoc && info.precedence <= top.precedence) ||
						(info.assoc == rightAssoc && info.precedence < top.precedence) {
						output = append(output, stack[len(stack)-1])
						stack = stack[:len(stack)-1]
						continue
					}
					break
				}
				stack = append(stack, Token{Kind: TokenOperator, Text: text})
			}
		}
		prev = &tokens[i]
	}

	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if top.Text == "(" || top.Text == ")" {
			return nil, NewExpressionError(expr, top.Text, "mismatched parentheses")
		}
		output = append(output, top)
	}
	return output, nil
}

// startsOperand reports whether the token after prev begins a new operand, which
// makes a following "-" a negation.
func startsOperand(prev *Token) bool {
	if prev == nil {
		return true
	}
	switch prev.Kind {
	case TokenComma, TokenFunction:
		return true
	case TokenOperator:
		return prev.Text != ")"
	default:
		return false
	}
}

func joinTokens(tokens []Token) string {
	parts := make([]string, len(tokens))
	for i, tok := range tokens {
		parts[i] = tok.Text
	}
	return strings.Join(parts, " ")
}

// FieldRef is a Fields!Name.Value reference that has not been looked up yet.
// Functions built with NewScopedFunction receive it unresolved so they can choose
// the dataset it is read from.
type FieldRef struct {
	Name    string
	resolve func(dataset string) (interface{}, error)
}

// Resolve reads the field from dataset, or from the default dataset when empty.
func (f *FieldRef) Resolve(dataset string) (interface{}, error) {
	if f.resolve == nil {
		return "", nil
	}
	return f.resolve(dataset)
}

func (f *FieldRef) String() string {
	return "Fields!" + f.Name + ".Value"
}

// deref resolves a field reference against the default dataset.
func deref(v interface{}) (interface{}, error) {
	if ref, ok := v.(*FieldRef); ok {
		return ref.Resolve("")
	}
	return v, nil
}

// evaluatePostfix runs a postfix token list. field builds the reference for a
// field token so the caller decides where fields are read from.
func evaluatePostfix(expr string, postfix []Token, functions FunctionRegistry, field func(name string) *FieldRef) (interface{}, error) {
	var stack []interface{}

	pop := func() (interface{}, error) {
		if len(stack) == 0 {
			return nil, NewExpressionError(expr, "", "missing operand")
		}
		v := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		return v, nil
	}

	for _, tok := range postfix {
		switch tok.Kind {
		case TokenNumber:
			n, err := strconv.ParseFloat(tok.Text, 64)
			if err != nil {
				return nil, NewExpressionError(expr, tok.Text, "invalid number")
			}
			stack = append(stack, n)

		case TokenString, TokenName:
			stack = append(stack, tok.Text)

		case TokenField:
			stack = append(stack, field(tok.Text))

		case TokenFunction:
			if len(stack) < tok.Args {
				return nil, NewExpressionError(expr, tok.Text, "missing argument")
			}
			args := make([]interface{}, tok.Args)
			copy(args, stack[len(stack)-tok.Args:])
			stack = stack[:len(stack)-tok.Args]

			result, err := callFunction(expr, tok.Text, args, functions)
			if err != nil {
				return nil, err
			}
			stack = append(stack, result)

		case TokenOperator:
			info := operatorTable[tok.Text]
			if info.unary {
				operand, err := pop()
				if err != nil {
					return nil, err
				}
				operand, err = deref(operand)
				if err != nil {
					return nil, err
				}
				stack = append(stack, -toNumber(operand))
				continue
			}

			right, err := pop()
			if err != nil {
				return nil, err
			}
			left, err := pop()
			if err != nil {
				return nil, err
			}
			if left, err = deref(left); err != nil {
				return nil, err
			}
			if right, err = deref(right); err != nil {
				return nil, err
			}
			result, err := applyOperator(expr, tok.Text, left, right)
			if err != nil {
				return nil, err
			}
			stack = append(stack, result)

		default:
			return nil, NewExpressionError(expr, tok.Text, "unexpected token")
		}
	}

	switch len(stack) {
	case 0:
		return "", nil
	case 1:
		return deref(stack[0])
	default:
		return nil, NewExpressionError(expr, "", fmt.Sprintf("%d values left without an operator", len(stack)))
	}
}

// callFunction applies a registered function. A panicking function fails only
// the expression it was called from.
func callFunction(expr, name string, args []interface{}, functions FunctionRegistry) (result interface{}, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = NewExpressionError(expr, name, RecoverError(r).Error())
		}
	}()

	fn, ok := functions.GetFunction(name)
	if !ok {
		return nil, NewExpressionError(expr, name, "unknown function")
	}

	if scoped, ok := fn.(interface{ AcceptsFieldRefs() bool }); !ok || !scoped.AcceptsFieldRefs() {
		for i, arg := range args {
			v, err := deref(arg)
			if err != nil {
				return nil, err
			}
			args[i] = v
		}
	}

	result, err = fn.Call(args...)
	if err != nil {
		return nil, NewExpressionError(expr, name, err.Error())
	}
	return result, nil
}

func applyOperator(expr, op string, left, right interface{}) (interface{}, error) {
	switch op {
	case "&":
		return FormatValue(left) + FormatValue(right), nil
	case "+":
		l, lok := numericValue(left)
		r, rok := numericValue(right)
		if lok && rok {
			return l + r, nil
		}
		if isText(left) || isText(right) {
			return FormatValue(left) + FormatValue(right), nil
		}
		return toNumber(left) + toNumber(right), nil
	case "-":
		return toNumber(left) - toNumber(right), nil
	case "*":
		return toNumber(left) * toNumber(right), nil
	case "/":
		r := toNumber(right)
		if r == 0 {
			return nil, NewExpressionError(expr, op, "division by zero")
		}
		return toNumber(left) / r, nil
	case "%":
		r := toNumber(right)
		if r == 0 {
			return nil, NewExpressionError(expr, op, "modulo by zero")
		}
		return math.Mod(toNumber(left), r), nil
	case "^":
		return math.Pow(toNumber(left), toNumber(right)), nil
	default:
		return nil, NewExpressionError(expr, op, "unexpected operator")
	}
}

func isText(v interface{}) bool {
	_, ok := v.(string)
	return ok
}

// numericValue returns v as a float when it already holds a number.
func numericValue(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

// toNumber coerces v for arithmetic. Values that are not numbers become NaN.
func toNumber(v interface{}) float64 {
	if n, ok := numericValue(v); ok {
		return n
	}
	if s, ok := v.(string); ok {
		if n, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			return n
		}
	}
	return math.NaN()
}

// FormatValue converts a resolved value to the text placed in the output.
func FormatValue(value interface{}) string {
	if value == nil {
		return ""
	}

	switch v := value.(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	case int, int8, int16, int32, int64:
		return fmt.Sprintf("%d", v)
	case uint, uint8, uint16, uint32, uint64:
		return fmt.Sprintf("%d", v)
	case float32:
		return strconv.FormatFloat(float64(v), 'g', 10, 32)
	case float64:
		if math.IsNaN(v) {
			return SentinelNaN
		}
		if math.IsInf(v, 0) {
			return strconv.FormatFloat(v, 'g', -1, 64)
		}
		// Rounded to 15 significant digits to drop float noise, then written
		// without an exponent
		rounded, err := strconv.ParseFloat(strconv.FormatFloat(v, 'g', 15, 64), 64)
		if err != nil {
			rounded = v
		}
		return strconv.FormatFloat(rounded, 'f', -1, 64)
	case bool:
		return fmt.Sprintf("%v", v)
	case *FieldRef:
		resolved, err := v.Resolve("")
		if err != nil {
			return ""
		}
		return FormatValue(resolved)
	default:
		return fmt.Sprintf("%v", v)
	}
}
