package rdl

import (
	"fmt"
	"strings"

	"github.com/PrairieTrailDave/RDLReport/pkg/rdl/markup"
)

// PageMargins holds the page margins as written in the report definition.
type PageMargins struct {
	Top    string
	Left   string
	Bottom string
	Right  string
}

// BuildContext holds the side tables collected while building one report:
// declared datasets, embedded images and page margins. Every Build creates a new one.
type BuildContext struct {
	Datasets []*DataSet
	Images   map[string]*EmbeddedImage
	Margins  PageMargins
}

func newBuildContext() *BuildContext {
	return &BuildContext{
		Images: make(map[string]*EmbeddedImage),
	}
}

// AddDataset records a declared dataset. A later declaration with the same name
// replaces the earlier one.
func (c *BuildContext) AddDataset(ds *DataSet) {
	for i, existing := range c.Datasets {
		if existing.Name == ds.Name {
			c.Datasets[i] = ds
			return
		}
	}
	c.Datasets = append(c.Datasets, ds)
}

// Dataset returns the declared dataset with the given name.
func (c *BuildContext) Dataset(name string) (*DataSet, bool) {
	for _, ds := range c.Datasets {
		if ds.Name == name {
			return ds, true
		}
	}
	return nil, false
}

// AddImage records an embedded image by name.
func (c *BuildContext) AddImage(img *EmbeddedImage) {
	c.Images[img.Name] = img
}

// Image returns the embedded image with the given name.
func (c *BuildContext) Image(name string) (*EmbeddedImage, bool) {
	img, ok := c.Images[name]
	return img, ok
}

// Report is a built report: the typed item tree and its side tables.
type Report struct {
	Root     ReportItem
	Context  *BuildContext
	Document *markup.Document
}

// Builder turns markup nodes into report items. It is used for a single Build.
type Builder struct {
	registry *ElementRegistry
	doc      *markup.Document
	ctx      *BuildContext
	maxDepth int
	depth    int
}

// BuildOption configures Build
type BuildOption func(*Builder)

// WithElementRegistry builds with a registry other than the default one.
func WithElementRegistry(registry *ElementRegistry) BuildOption {
	return func(b *Builder) {
		if registry != nil {
			b.registry = registry
		}
	}
}

// WithBuildDepth limits how deeply elements may nest.
func WithBuildDepth(depth int) BuildOption {
	return func(b *Builder) {
		if depth > 0 {
			b.maxDepth = depth
		}
	}
}

// Build maps a parsed document onto report items.
func Build(doc *markup.Document, opts ...BuildOption) (*Report, error) {
	if doc == nil || doc.Root == nil {
		return nil, fmt.Errorf("build report: document has no root element")
	}

	b := &Builder{
		registry: DefaultElementRegistry(),
		doc:      doc,
		ctx:      newBuildContext(),
		maxDepth: GetGlobalConfig().MaxRenderDepth,
	}
	for _, opt := range opts {
		opt(b)
	}

	root, err := b.Item(doc.Root)
	if err != nil {
		return nil, err
	}

	GetLogger().WithFields(Fields{
		"root":     root.TypeName(),
		"datasets": len(b.ctx.Datasets),
		"images":   len(b.ctx.Images),
	}).Debug("Built report")

	return &Report{Root: root, Context: b.ctx, Document: doc}, nil
}

// Context returns the side tables of the build in progress.
func (b *Builder) Context() *BuildContext {
	return b.ctx
}

// Item creates the item registered for n's name and lets it parse n.
func (b *Builder) Item(n *markup.Node) (ReportItem, error) {
	if b.depth >= b.maxDepth {
		return nil, NewItemError(n.Name, "", fmt.Errorf("elements nest deeper than %d levels", b.maxDepth))
	}
	b.depth++
	defer func() { b.depth-- }()

	item := b.registry.Create(n.Name)
	if err := item.Parse(b, n); err != nil {
		return nil, err
	}
	return item, nil
}

// Content returns the text content of n with surrounding white space removed.
func (b *Builder) Content(n *markup.Node) string {
	return strings.TrimSpace(b.doc.Content(n))
}

// Property reads a named property of n: an attribute, or else the content of a
// leaf child element with that name.
func (b *Builder) Property(n *markup.Node, name string) string {
	if v, ok := n.Attr(name); ok {
		return v
	}
	for _, child := range n.Children {
		if child.Name == name && child.IsLeaf() {
			return b.Content(child)
		}
	}
	return ""
}

// parseChildren builds every child of n into owner. A Style child becomes the
// owner's style, DataSets and EmbeddedImages only fill the build context, and
// unknown elements that end up empty are dropped.
func (b *Builder) parseChildren(owner *itemBase, n *markup.Node) error {
	for _, child := range n.Children {
		item, err := b.Item(child)
		if err != nil {
			return err
		}
		switch it := item.(type) {
		case *Style:
			owner.style = it
		case *DataSets, *EmbeddedImages:
		case *GenericItem:
			if len(it.children) > 0 || it.style != nil {
				owner.children = append(owner.children, it)
			}
		default:
			owner.children = append(owner.children, item)
		}
	}
	return nil
}
