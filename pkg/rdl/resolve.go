package rdl

import "fmt"

// Scope is what a collection level expression is resolved against: the host data
// of the render and the dataset used when a field names none.
type Scope struct {
	Data    DataCollections
	Dataset string
}

// Resolver evaluates value expressions against declared datasets and host data.
// It holds no per-render state and is safe for concurrent use.
type Resolver struct {
	functions FunctionRegistry
	datasets  []*DataSet
	maxDepth  int
}

// ResolverOption configures a Resolver
type ResolverOption func(*Resolver)

// WithFunctions sets the registry used for function calls.
func WithFunctions(functions FunctionRegistry) ResolverOption {
	return func(r *Resolver) {
		if functions != nil {
			r.functions = functions
		}
	}
}

// WithMaxDepth bounds how deeply declared field values may refer to other fields.
func WithMaxDepth(depth int) ResolverOption {
	return func(r *Resolver) {
		if depth > 0 {
			r.maxDepth = depth
		}
	}
}

// NewResolver creates a resolver for the datasets declared by a report.
func NewResolver(datasets []*DataSet, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		functions: GetDefaultFunctionRegistry(),
		datasets:  datasets,
		maxDepth:  GetGlobalConfig().MaxRenderDepth,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Dataset returns the declared dataset with the given name.
func (r *Resolver) Dataset(name string) (*DataSet, bool) {
	for _, ds := range r.datasets {
		if ds.Name == name {
			return ds, true
		}
	}
	return nil, false
}

// Compile tokenizes an expression and returns its postfix form.
func (r *Resolver) Compile(expr string) ([]Token, error) {
	tokens := classify(Tokenize(expr), r.functions)
	reduced, err := reduceFieldReferences(expr, tokens)
	if err != nil {
		return nil, err
	}
	return toPostfix(expr, reduced)
}

// Resolve evaluates expr against host data collections. Text that does not start
// with "=" is returned unchanged. Lookups that fail at the data level produce
// SentinelDatasetMissing, SentinelNaN or "" rather than an error.
func (r *Resolver) Resolve(expr string, scope Scope) (string, error) {
	if !IsFormula(expr) {
		return expr, nil
	}
	value, err := r.evaluateInScope(expr, scope, 0)
	if err != nil {
		return "", err
	}
	result := FormatValue(value)
	GetLogger().DebugExpression(expr, result)
	return result, nil
}

// ResolveRow evaluates expr against one data row. Dataset qualifiers are ignored.
// A field the row does not carry resolves to its own name so a broken mapping is
// visible in the output.
func (r *Resolver) ResolveRow(expr string, row Row) (string, error) {
	return r.ResolveRowIn(expr, "", row)
}

// ResolveRowIn is ResolveRow for a row of the named dataset. That dataset's
// DataField mappings are tried before the row's own keys and before the
// mappings of other datasets.
func (r *Resolver) ResolveRowIn(expr, dataset string, row Row) (string, error) {
	if !IsFormula(expr) {
		return expr, nil
	}
	postfix, err := r.Compile(expr)
	if err != nil {
		return "", err
	}
	value, err := evaluatePostfix(expr, postfix, r.functions, func(name string) *FieldRef {
		return &FieldRef{Name: name, resolve: func(string) (interface{}, error) {
			return r.rowField(row, dataset, name), nil
		}}
	})
	if err != nil {
		return "", err
	}
	result := FormatValue(value)
	GetLogger().DebugExpression(expr, result)
	return result, nil
}

func (r *Resolver) evaluateInScope(expr string, scope Scope, depth int) (interface{}, error) {
	if depth > r.maxDepth {
		return nil, NewExpressionError(expr, "", fmt.Sprintf("field values nest deeper than %d", r.maxDepth))
	}
	postfix, err := r.Compile(expr)
	if err != nil {
		return nil, err
	}
	return evaluatePostfix(expr, postfix, r.functions, func(name string) *FieldRef {
		return &FieldRef{Name: name, resolve: func(dataset string) (interface{}, error) {
			return r.collectionField(name, dataset, scope, depth)
		}}
	})
}

func (r *Resolver) defaultDataset(scope Scope) string {
	if scope.Dataset != "" {
		return scope.Dataset
	}
	if len(r.datasets) > 0 {
		return r.datasets[0].Name
	}
	if len(scope.Data) > 0 {
		return scope.Data[0].Name
	}
	return ""
}

// collectionField reads a field through the dataset declarations: a declared
// Value is used as is (or resolved when it is a formula), a declared DataField
// names the host data column.
func (r *Resolver) collectionField(name, dataset string, scope Scope, depth int) (interface{}, error) {
	if dataset == "" {
		dataset = r.defaultDataset(scope)
	}

	decl, declared := r.Dataset(dataset)
	var field *DataSetField
	if declared {
		field, _ = decl.Field(name)
	}

	if field != nil && field.DataField == "" {
		if IsFormula(field.Value) {
			inner := Scope{Data: scope.Data, Dataset: dataset}
			return r.evaluateInScope(field.Value, inner, depth+1)
		}
		return field.Value, nil
	}

	if dataset == "" {
		return SentinelDatasetMissing, nil
	}
	collection, ok := scope.Data.Lookup(dataset)
	if !ok {
		return SentinelDatasetMissing, nil
	}
	data, ok := collection.Data(dataset)
	if !ok {
		return SentinelDatasetMissing, nil
	}

	column := name
	if declared {
		if field == nil {
			return "", nil
		}
		column = field.DataField
	}
	return readColumn(data, column), nil
}

// readColumn reads one column from host data. An array of rows is read from its
// first row; data of any other shape yields SentinelNaN.
func readColumn(data interface{}, column string) interface{} {
	if row, ok := toRow(data); ok {
		if v, ok := row[column]; ok {
			return v
		}
		return ""
	}
	rows, ok := toRows(data)
	if !ok {
		return SentinelNaN
	}
	if len(rows) == 0 {
		return ""
	}
	if v, ok := rows[0][column]; ok {
		return v
	}
	return ""
}

func (r *Resolver) rowField(row Row, dataset, name string) interface{} {
	if ds, ok := r.Dataset(dataset); ok {
		if field, ok := ds.Field(name); ok && field.DataField != "" {
			if v, ok := row[field.DataField]; ok {
				return v
			}
		}
	}
	if v, ok := row[name]; ok {
		return v
	}
	for _, ds := range r.datasets {
		field, ok := ds.Field(name)
		if !ok || field.DataField == "" {
			continue
		}
		if v, ok := row[field.DataField]; ok {
			return v
		}
	}
	return name
}
