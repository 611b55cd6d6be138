package rdl

import (
	"fmt"
	"sort"
)

// IssueSeverity indicates validation issue severity.
type IssueSeverity string

const (
	IssueSeverityError   IssueSeverity = "error"
	IssueSeverityWarning IssueSeverity = "warning"
)

// IssueCode classifies validation issues.
type IssueCode string

const (
	IssueCodeHierarchyMismatch IssueCode = "HIERARCHY_MISMATCH"
	IssueCodeMissingDataset    IssueCode = "MISSING_DATASET"
	IssueCodeUnknownDataset    IssueCode = "UNKNOWN_DATASET"
	IssueCodeExpressionSyntax  IssueCode = "EXPRESSION_SYNTAX"
	IssueCodeUnknownField      IssueCode = "UNKNOWN_FIELD"
	IssueCodeNestedGroups      IssueCode = "NESTED_GROUPS"
)

// ReportIssue is one problem found in a prepared report.
type ReportIssue struct {
	Severity   IssueSeverity `json:"severity"`
	Code       IssueCode     `json:"code"`
	Item       string        `json:"item"`
	Expression string        `json:"expression,omitempty"`
	Message    string        `json:"message"`
}

// FieldReference is one Fields!Name.Value found in a value expression.
type FieldReference struct {
	Item       string `json:"item"`
	Dataset    string `json:"dataset,omitempty"`
	Field      string `json:"field"`
	Expression string `json:"expression"`
}

// ValidationResult contains report validation output.
type ValidationResult struct {
	Valid      bool             `json:"valid"`
	Issues     []ReportIssue    `json:"issues"`
	References []FieldReference `json:"references"`
}

// Err converts the error level issues into a *ValidationError, or nil.
func (r ValidationResult) Err() error {
	var issues []ValidationIssue
	for _, issue := range r.Issues {
		if issue.Severity != IssueSeverityError {
			continue
		}
		issues = append(issues, ValidationIssue{Field: issue.Item, Message: issue.Message})
	}
	if len(issues) == 0 {
		return nil
	}
	return &ValidationError{Issues: issues}
}

// ValidateReport checks a prepared report for problems that would fail or
// degrade a render: tablix hierarchies that do not match their rows, missing
// or undeclared datasets, unparsable expressions and fields the dataset does
// not declare. Nothing is rendered.
func ValidateReport(p *PreparedReport) ValidationResult {
	v := &validator{resolver: p.Resolver()}
	if datasets := p.Datasets(); len(datasets) > 0 {
		v.defaultDataset = datasets[0].Name
	}
	v.visit(p.Report().Root, v.defaultDataset)

	sort.SliceStable(v.issues, func(i, j int) bool {
		return v.issues[i].Severity == IssueSeverityError && v.issues[j].Severity != IssueSeverityError
	})
	result := ValidationResult{
		Issues:     v.issues,
		References: v.references,
		Valid:      true,
	}
	for _, issue := range v.issues {
		if issue.Severity == IssueSeverityError {
			result.Valid = false
			break
		}
	}
	return result
}

type validator struct {
	resolver       *Resolver
	defaultDataset string
	issues         []ReportIssue
	references     []FieldReference
}

func (v *validator) add(severity IssueSeverity, code IssueCode, item, expr, format string, args ...interface{}) {
	v.issues = append(v.issues, ReportIssue{
		Severity:   severity,
		Code:       code,
		Item:       item,
		Expression: expr,
		Message:    fmt.Sprintf(format, args...),
	})
}

func (v *validator) visit(item ReportItem, dataset string) {
	if item == nil {
		return
	}
	switch it := item.(type) {
	case *TextRun:
		v.expression(describe(item), it.Value, dataset)
	case *TextBox:
		if len(it.children) == 0 {
			v.expression(describe(item), it.Value, dataset)
		}
	case *Tablix:
		v.tablix(it)
		return
	}
	for _, child := range item.Children() {
		v.visit(child, dataset)
	}
}

func (v *validator) tablix(t *Tablix) {
	name := describe(t)
	switch {
	case t.DataSetName == "":
		v.add(IssueSeverityError, IssueCodeMissingDataset, name, "", "no dataset defined")
	default:
		if _, ok := v.resolver.Dataset(t.DataSetName); !ok {
			v.add(IssueSeverityWarning, IssueCodeUnknownDataset, name, "", "dataset %q is not declared by the report", t.DataSetName)
		}
	}

	if t.Body != nil && t.RowHierarchy != nil {
		if _, err := t.RowHierarchy.Bind(t.Body.Rows); err != nil {
			v.add(IssueSeverityError, IssueCodeHierarchyMismatch, name, "",
				"%d row hierarchy members for %d rows", len(t.RowHierarchy.Members), len(t.Body.Rows))
		}
		if t.RowHierarchy.Nested() {
			v.add(IssueSeverityWarning, IssueCodeNestedGroups, name, "", "nested row groups render only their top level")
		}
	}

	for _, child := range t.Children() {
		v.visit(child, t.DataSetName)
	}
	if t.Body == nil {
		return
	}
	for _, row := range t.Body.Rows {
		for _, cell := range row.Cells {
			v.visit(cell, t.DataSetName)
		}
	}
}

// expression compiles expr and checks each field it references against the
// dataset in scope, or against a dataset the expression names.
func (v *validator) expression(item, expr, dataset string) {
	if !IsFormula(expr) {
		return
	}
	postfix, err := v.resolver.Compile(expr)
	if err != nil {
		v.add(IssueSeverityError, IssueCodeExpressionSyntax, item, expr, "%v", err)
		return
	}

	candidates := []string{dataset}
	for _, tok := range postfix {
		if tok.Kind == TokenString {
			if _, ok := v.resolver.Dataset(tok.Text); ok {
				candidates = append(candidates, tok.Text)
			}
		}
	}

	for _, tok := range postfix {
		if tok.Kind != TokenField {
			continue
		}
		v.references = append(v.references, FieldReference{
			Item:       item,
			Dataset:    dataset,
			Field:      tok.Text,
			Expression: expr,
		})
		if !v.declared(tok.Text, candidates) {
			v.add(IssueSeverityWarning, IssueCodeUnknownField, item, expr,
				"field %q is not declared by dataset %q", tok.Text, dataset)
		}
	}
}

// declared reports whether any of the declared candidate datasets has the field.
// Fields of undeclared datasets cannot be checked and pass.
func (v *validator) declared(field string, datasets []string) bool {
	checked := false
	for _, name := range datasets {
		ds, ok := v.resolver.Dataset(name)
		if !ok {
			continue
		}
		checked = true
		if _, ok := ds.Field(field); ok {
			return true
		}
	}
	return !checked
}

func describe(item ReportItem) string {
	if name := itemName(item); name != "" {
		return item.TypeName() + " " + name
	}
	return item.TypeName()
}
