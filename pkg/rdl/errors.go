package rdl

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/PrairieTrailDave/RDLReport/pkg/rdl/markup"
)

// Values returned in place of a field when the data lookup fails at the leaf level.
const (
	SentinelDatasetMissing = "Dataset Missing"
	SentinelNaN            = "NaN"
)

// HierarchyMismatchError is returned when a tablix declares a different number of
// row templates than row hierarchy members
type HierarchyMismatchError struct {
	Tablix  string
	Rows    int
	Members int
}

func (e *HierarchyMismatchError) Error() string {
	if e.Tablix != "" {
		return fmt.Sprintf("tablix '%s': mismatch between row hierarchy and rows (%d members, %d rows)", e.Tablix, e.Members, e.Rows)
	}
	return fmt.Sprintf("mismatch between row hierarchy and rows (%d members, %d rows)", e.Members, e.Rows)
}

// NewHierarchyMismatchError creates a new hierarchy mismatch error
func NewHierarchyMismatchError(tablix string, rows, members int) error {
	return &HierarchyMismatchError{
		Tablix:  tablix,
		Rows:    rows,
		Members: members,
	}
}

// ExpressionError represents a value expression that could not be evaluated
type ExpressionError struct {
	Expression string
	Message    string
	Token      string
}

func (e *ExpressionError) Error() string {
	if e.Token != "" {
		return fmt.Sprintf("expression error in '%s' near '%s': %s", e.Expression, e.Token, e.Message)
	}
	return fmt.Sprintf("expression error in '%s': %s", e.Expression, e.Message)
}

// NewExpressionError creates a new expression error
func NewExpressionError(expression, token, message string) error {
	return &ExpressionError{
		Expression: expression,
		Message:    message,
		Token:      token,
	}
}

// DatasetError reports a tablix whose dataset is not declared or was not supplied
type DatasetError struct {
	Tablix  string
	Dataset string
	Message string
}

func (e *DatasetError) Error() string {
	if e.Dataset != "" {
		return fmt.Sprintf("dataset error in tablix '%s' for dataset '%s': %s", e.Tablix, e.Dataset, e.Message)
	}
	return fmt.Sprintf("dataset error in tablix '%s': %s", e.Tablix, e.Message)
}

// NewDatasetError creates a new dataset error
func NewDatasetError(tablix, dataset, message string) error {
	return &DatasetError{
		Tablix:  tablix,
		Dataset: dataset,
		Message: message,
	}
}

// ItemError wraps a failure that stopped one report item from rendering
type ItemError struct {
	Item  string
	Name  string
	Cause error
}

func (e *ItemError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("%s '%s': %v", e.Item, e.Name, e.Cause)
	}
	return fmt.Sprintf("%s: %v", e.Item, e.Cause)
}

func (e *ItemError) Unwrap() error {
	return e.Cause
}

// NewItemError creates a new item error
func NewItemError(item, name string, cause error) error {
	return &ItemError{
		Item:  item,
		Name:  name,
		Cause: cause,
	}
}

// ValidationIssue represents a single validation problem
type ValidationIssue struct {
	Field   string
	Message string
}

// ValidationError represents multiple validation issues
type ValidationError struct {
	Issues []ValidationIssue
}

func (e *ValidationError) Error() string {
	if len(e.Issues) == 0 {
		return "validation error"
	}

	if len(e.Issues) == 1 {
		return fmt.Sprintf("validation error: %s - %s", e.Issues[0].Field, e.Issues[0].Message)
	}

	var parts []string
	parts = append(parts, fmt.Sprintf("%d validation issues:", len(e.Issues)))
	for _, issue := range e.Issues {
		parts = append(parts, fmt.Sprintf("  %s: %s", issue.Field, issue.Message))
	}
	return strings.Join(parts, "\n")
}

// MultiError collects multiple errors
type MultiError struct {
	errors []error
}

// NewMultiError creates a new multi-error collector
func NewMultiError() *MultiError {
	return &MultiError{
		errors: make([]error, 0),
	}
}

// Add adds an error to the collection (ignores nil errors)
func (m *MultiError) Add(err error) {
	if err != nil {
		m.errors = append(m.errors, err)
	}
}

// Len returns the number of errors
func (m *MultiError) Len() int {
	return len(m.errors)
}

// Errors returns the collected errors in the order they were added.
func (m *MultiError) Errors() []error {
	out := make([]error, len(m.errors))
	copy(out, m.errors)
	return out
}

// Err returns the multi-error or nil if empty
func (m *MultiError) Err() error {
	if len(m.errors) == 0 {
		return nil
	}
	if len(m.errors) == 1 {
		return m.errors[0]
	}
	return m
}

// Unwrap exposes the collected errors to errors.Is and errors.As.
func (m *MultiError) Unwrap() []error {
	return m.errors
}

func (m *MultiError) Error() string {
	if len(m.errors) == 0 {
		return "no errors"
	}

	if len(m.errors) == 1 {
		return m.errors[0].Error()
	}

	var parts []string
	parts = append(parts, fmt.Sprintf("%d errors occurred:", len(m.errors)))
	for i, err := range m.errors {
		parts = append(parts, fmt.Sprintf("  [%d] %v", i+1, err))
	}
	return strings.Join(parts, "\n")
}

// ContextError adds context to an existing error
type ContextError struct {
	Operation string
	Context   map[string]interface{}
	Cause     error
}

func (e *ContextError) Error() string {
	keys := make([]string, 0, len(e.Context))
	for k := range e.Context {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var contextParts []string
	for _, k := range keys {
		contextParts = append(contextParts, fmt.Sprintf("%s=%v", k, e.Context[k]))
	}

	if len(contextParts) > 0 {
		return fmt.Sprintf("%s [%s]: %v", e.Operation, strings.Join(contextParts, ", "), e.Cause)
	}
	return fmt.Sprintf("%s: %v", e.Operation, e.Cause)
}

func (e *ContextError) Unwrap() error {
	return e.Cause
}

// WithContext wraps an error with additional context
func WithContext(err error, operation string, context map[string]interface{}) error {
	if err == nil {
		return nil
	}
	return &ContextError{
		Operation: operation,
		Context:   context,
		Cause:     err,
	}
}

// RecoverError converts a panic recovery value to an error
func RecoverError(r interface{}) error {
	switch v := r.(type) {
	case error:
		return fmt.Errorf("panic recovered: %w", v)
	case string:
		return fmt.Errorf("panic recovered: %s", v)
	default:
		return fmt.Errorf("panic recovered: %v", v)
	}
}

// IsMalformedDocument checks if an error came from parsing the report definition
func IsMalformedDocument(err error) bool {
	return errors.Is(err, markup.ErrMalformedDocument)
}

// IsHierarchyMismatch checks if an error is a hierarchy mismatch error
func IsHierarchyMismatch(err error) bool {
	var target *HierarchyMismatchError
	return errors.As(err, &target)
}

// IsExpressionError checks if an error is an expression error
func IsExpressionError(err error) bool {
	var target *ExpressionError
	return errors.As(err, &target)
}

// IsDatasetError checks if an error is a dataset error
func IsDatasetError(err error) bool {
	var target *DatasetError
	return errors.As(err, &target)
}
