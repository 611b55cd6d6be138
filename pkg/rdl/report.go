package rdl

import (
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/net/html"

	"github.com/PrairieTrailDave/RDLReport/pkg/rdl/markup"
	"github.com/PrairieTrailDave/RDLReport/pkg/rdl/render"
)

// PreparedReport is a parsed and built report ready for rendering. It is not
// modified by rendering and may be rendered repeatedly and concurrently.
type PreparedReport struct {
	report   *Report
	resolver *Resolver
	config   *Config
	logger   *Logger
}

type prepareSettings struct {
	config    *Config
	functions FunctionRegistry
	elements  *ElementRegistry
	logger    *Logger
}

func prepareReport(text string, settings prepareSettings) (*PreparedReport, error) {
	config := settings.config
	if config == nil {
		config = GetGlobalConfig()
	}
	logger := settings.logger
	if logger == nil {
		logger = GetLogger()
	}

	doc, err := markup.Parse(text)
	if err != nil {
		return nil, err
	}
	logger.WithField("bytes", len(text)).Debug("Parsed report definition")

	opts := []BuildOption{WithBuildDepth(config.MaxRenderDepth)}
	if settings.elements != nil {
		opts = append(opts, WithElementRegistry(settings.elements))
	}
	report, err := Build(doc, opts...)
	if err != nil {
		return nil, err
	}

	resolver := NewResolver(report.Context.Datasets,
		WithFunctions(settings.functions),
		WithMaxDepth(config.MaxRenderDepth),
	)

	return &PreparedReport{
		report:   report,
		resolver: resolver,
		config:   config,
		logger:   logger,
	}, nil
}

// Report returns the built item tree.
func (p *PreparedReport) Report() *Report {
	return p.report
}

// Resolver returns the resolver bound to the report's declared datasets.
func (p *PreparedReport) Resolver() *Resolver {
	return p.resolver
}

// Datasets returns the datasets the report declares, in document order.
func (p *PreparedReport) Datasets() []*DataSet {
	return p.report.Context.Datasets
}

// RenderNodes renders the report to an HTML node list. Items that fail are left
// out and reported together in a *MultiError next to the partial output. With
// StrictMode the first failure stops the render.
func (p *PreparedReport) RenderNodes(data ...DataCollection) ([]*html.Node, error) {
	if p == nil || p.report == nil || p.report.Root == nil {
		return nil, errors.New("render: report is not prepared")
	}

	rc := newRenderContext(p.report, p.resolver, p.config, p.logger, DataCollections(data))
	p.logger.WithField("collections", len(data)).Debug("Rendering report")

	nodes, err := rc.RenderChildren([]ReportItem{p.report.Root})
	if err != nil {
		return nodes, err
	}
	if rc.errs.Len() > 0 {
		return nodes, rc.errs
	}
	return nodes, nil
}

// Render renders the report to an HTML string.
func (p *PreparedReport) Render(data ...DataCollection) (string, error) {
	var sb strings.Builder
	err := p.RenderTo(&sb, data...)
	return sb.String(), err
}

// RenderTo writes the rendered report to w. Partial output is written even when
// some items failed.
func (p *PreparedReport) RenderTo(w io.Writer, data ...DataCollection) error {
	nodes, renderErr := p.RenderNodes(data...)
	if err := render.Write(w, nodes); err != nil {
		return errors.Wrap(err, "write report")
	}
	return renderErr
}

// Prepare parses and builds a report definition read from r using the default engine.
func Prepare(r io.Reader) (*PreparedReport, error) {
	return DefaultEngine.Prepare(r)
}

// PrepareString parses and builds a report definition held in a string.
func PrepareString(text string) (*PreparedReport, error) {
	return DefaultEngine.PrepareString(text)
}

// PrepareFile parses and builds a report definition file using the default engine.
func PrepareFile(path string) (*PreparedReport, error) {
	return DefaultEngine.PrepareFile(path)
}

func readDefinitionFile(path string) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", errors.Wrapf(err, "read report definition %s", path)
	}
	return string(raw), nil
}
