package rdl

import (
	"errors"

	"golang.org/x/net/html"

	"github.com/PrairieTrailDave/RDLReport/pkg/rdl/render"
)

// RenderContext carries one render pass through the item tree. Item failures are
// collected into errs unless the configuration is strict.
type RenderContext struct {
	report   *Report
	resolver *Resolver
	config   *Config
	units    render.Units
	data     DataCollections
	dataset  string
	logger   *Logger
	errs     *MultiError
}

func newRenderContext(report *Report, resolver *Resolver, config *Config, logger *Logger, data DataCollections) *RenderContext {
	return &RenderContext{
		report:   report,
		resolver: resolver,
		config:   config,
		units:    config.Units(),
		data:     data,
		logger:   logger,
		errs:     NewMultiError(),
	}
}

// Build returns the side tables of the report being rendered.
func (rc *RenderContext) Build() *BuildContext {
	return rc.report.Context
}

// Data returns the host data collections of this render.
func (rc *RenderContext) Data() DataCollections {
	return rc.data
}

// Dataset returns the dataset used for fields that do not name one.
func (rc *RenderContext) Dataset() string {
	return rc.dataset
}

// Units returns the configured unit conversion.
func (rc *RenderContext) Units() render.Units {
	return rc.units
}

// WithDataset returns a context whose fields default to the named dataset.
// Collected errors are shared with rc.
func (rc *RenderContext) WithDataset(name string) *RenderContext {
	child := *rc
	child.dataset = name
	return &child
}

// Resolve evaluates a value against the host data collections. Outside strict
// mode a broken expression is logged and renders as empty text.
func (rc *RenderContext) Resolve(expr string) (string, error) {
	text, err := rc.resolver.Resolve(expr, Scope{Data: rc.data, Dataset: rc.dataset})
	if err != nil {
		return rc.expressionFailed(expr, err)
	}
	return text, nil
}

// ResolveRow evaluates a value against one data row of the dataset in scope.
func (rc *RenderContext) ResolveRow(expr string, row Row) (string, error) {
	text, err := rc.resolver.ResolveRowIn(expr, rc.dataset, row)
	if err != nil {
		return rc.expressionFailed(expr, err)
	}
	return text, nil
}

func (rc *RenderContext) expressionFailed(expr string, err error) (string, error) {
	if rc.config.StrictMode {
		return "", err
	}
	rc.logger.WithField("expression", expr).Warn("Value rendered empty: %v", err)
	return "", nil
}

// Position returns the absolute position declarations for a top and left
// length. Page margins are added when the configuration asks for it.
func (rc *RenderContext) Position(top, left string) render.Declarations {
	topOffset, leftOffset := 0, 0
	if rc.config.ApplyPageMargins {
		margins := rc.Build().Margins
		if px, ok := rc.units.ToPixels(margins.Top); ok {
			topOffset = px
		}
		if px, ok := rc.units.ToPixels(margins.Left); ok {
			leftOffset = px
		}
	}
	return render.Position(rc.units.OffsetPixels(top, topOffset), rc.units.OffsetPixels(left, leftOffset))
}

// RenderChildren renders items in order. A failing item is recorded and skipped
// so its siblings still render; in strict mode the failure is returned instead.
func (rc *RenderContext) RenderChildren(items []ReportItem) ([]*html.Node, error) {
	var nodes []*html.Node
	for _, item := range items {
		out, err := item.Render(rc)
		if err != nil {
			if err := rc.contain(item, err); err != nil {
				return nodes, err
			}
			continue
		}
		nodes = append(nodes, out...)
	}
	return nodes, nil
}

// RenderChildrenRow is RenderChildren inside a tablix row. A nil row renders the
// items as static content.
func (rc *RenderContext) RenderChildrenRow(items []ReportItem, row Row) ([]*html.Node, error) {
	var nodes []*html.Node
	for _, item := range items {
		out, err := item.RenderRow(rc, row)
		if err != nil {
			if err := rc.contain(item, err); err != nil {
				return nodes, err
			}
			continue
		}
		nodes = append(nodes, out...)
	}
	return nodes, nil
}

// contain records an item failure. It returns the error only in strict mode.
func (rc *RenderContext) contain(item ReportItem, err error) error {
	var itemErr *ItemError
	if !errors.As(err, &itemErr) {
		err = NewItemError(item.TypeName(), itemName(item), err)
	}
	if rc.config.StrictMode {
		return err
	}
	rc.logger.WithField("item", item.TypeName()).Error("Item failed to render: %v", err)
	rc.errs.Add(err)
	return nil
}

// Err returns the failures collected so far, or nil.
func (rc *RenderContext) Err() error {
	return rc.errs.Err()
}
