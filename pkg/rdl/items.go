package rdl

import (
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/PrairieTrailDave/RDLReport/pkg/rdl/markup"
	"github.com/PrairieTrailDave/RDLReport/pkg/rdl/render"
)

// ReportItem is one typed node of a built report. The set of implementations is
// closed: every item embeds itemBase.
type ReportItem interface {
	// TypeName is the element name the item was registered under.
	TypeName() string
	// Parse fills the item from its markup node.
	Parse(b *Builder, n *markup.Node) error
	// Render produces output against the host data collections.
	Render(rc *RenderContext) ([]*html.Node, error)
	// RenderRow produces output inside a tablix row. row is nil for static rows.
	RenderRow(rc *RenderContext, row Row) ([]*html.Node, error)
	// Children returns the parsed child items, never nil.
	Children() []ReportItem
	// Style returns the item's style, or nil.
	Style() *Style

	base() *itemBase
}

type itemBase struct {
	typeName string
	children []ReportItem
	style    *Style
}

func (b *itemBase) TypeName() string {
	return b.typeName
}

func (b *itemBase) Children() []ReportItem {
	if b.children == nil {
		return []ReportItem{}
	}
	return b.children
}

func (b *itemBase) Style() *Style {
	return b.style
}

func (b *itemBase) base() *itemBase {
	return b
}

func (b *itemBase) Parse(bld *Builder, n *markup.Node) error {
	return bld.parseChildren(b, n)
}

func (b *itemBase) Render(rc *RenderContext) ([]*html.Node, error) {
	return rc.RenderChildren(b.children)
}

func (b *itemBase) RenderRow(rc *RenderContext, row Row) ([]*html.Node, error) {
	return rc.RenderChildrenRow(b.children, row)
}

// namedItem is implemented by items that carry a Name, used in error reports.
type namedItem interface {
	itemName() string
}

func itemName(item ReportItem) string {
	if named, ok := item.(namedItem); ok {
		return named.itemName()
	}
	return ""
}

// GenericItem stands in for elements without a registered item. It produces no
// output of its own and renders its children.
type GenericItem struct {
	itemBase
}

func newGenericItem(name string) *GenericItem {
	return &GenericItem{itemBase: itemBase{typeName: name}}
}

// TextRun resolves its Value and renders it in a div.
type TextRun struct {
	itemBase
	Value string
	Label string
}

func newTextRun() *TextRun {
	return &TextRun{itemBase: itemBase{typeName: "TextRun"}}
}

func (t *TextRun) Parse(b *Builder, n *markup.Node) error {
	if err := b.parseChildren(&t.itemBase, n); err != nil {
		return err
	}
	t.Value = b.Property(n, "Value")
	t.Label = b.Property(n, "Label")
	return nil
}

func (t *TextRun) Render(rc *RenderContext) ([]*html.Node, error) {
	if t.Value == "" {
		return nil, nil
	}
	text, err := rc.Resolve(t.Value)
	if err != nil {
		return nil, err
	}
	return t.output(rc, text), nil
}

func (t *TextRun) RenderRow(rc *RenderContext, row Row) ([]*html.Node, error) {
	if row == nil {
		return t.Render(rc)
	}
	if t.Value == "" {
		return nil, nil
	}
	text, err := rc.ResolveRow(t.Value, row)
	if err != nil {
		return nil, err
	}
	return t.output(rc, text), nil
}

func (t *TextRun) output(rc *RenderContext, text string) []*html.Node {
	var decl render.Declarations
	if t.style != nil {
		decl = t.style.TextDeclarations(rc.Units())
	}
	return []*html.Node{render.Append(render.Styled(atom.Div, decl), render.Text(text))}
}

// TextBox positions its content. Older definitions put a Value directly on the
// text box instead of in paragraphs and text runs.
type TextBox struct {
	itemBase
	Name   string
	Top    string
	Left   string
	Width  string
	Height string
	Value  string
}

func newTextBox() *TextBox {
	return &TextBox{itemBase: itemBase{typeName: "Textbox"}}
}

func (t *TextBox) itemName() string { return t.Name }

func (t *TextBox) Parse(b *Builder, n *markup.Node) error {
	if err := b.parseChildren(&t.itemBase, n); err != nil {
		return err
	}
	t.Name = b.Property(n, "Name")
	t.Top = b.Property(n, "Top")
	t.Left = b.Property(n, "Left")
	t.Width = b.Property(n, "Width")
	t.Height = b.Property(n, "Height")
	t.Value = b.Property(n, "Value")
	return nil
}

func (t *TextBox) Render(rc *RenderContext) ([]*html.Node, error) {
	var content []*html.Node
	var err error
	if len(t.children) == 0 && t.Value != "" {
		var text string
		if text, err = rc.Resolve(t.Value); err == nil {
			content = []*html.Node{render.Text(text)}
		}
	} else {
		content, err = rc.RenderChildren(t.children)
	}
	return t.box(rc, content), err
}

func (t *TextBox) RenderRow(rc *RenderContext, row Row) ([]*html.Node, error) {
	if row == nil {
		return t.Render(rc)
	}
	var content []*html.Node
	var err error
	if len(t.children) == 0 && t.Value != "" {
		var text string
		if text, err = rc.ResolveRow(t.Value, row); err == nil {
			content = []*html.Node{render.Text(text)}
		}
	} else {
		content, err = rc.RenderChildrenRow(t.children, row)
	}
	return t.box(rc, content), err
}

func (t *TextBox) box(rc *RenderContext, content []*html.Node) []*html.Node {
	decl := rc.Position(t.Top, t.Left)
	if t.style != nil {
		decl.Merge(t.style.BoxDeclarations(rc.Units()))
	}
	div := render.Styled(atom.Div, decl)
	render.Append(div, content...)
	return []*html.Node{div}
}

// Body is the report body. A background image named in its style is emitted
// ahead of the body's items.
type Body struct {
	itemBase
	Height string
}

func newBody() *Body {
	return &Body{itemBase: itemBase{typeName: "Body"}}
}

func (b *Body) Parse(bld *Builder, n *markup.Node) error {
	if err := bld.parseChildren(&b.itemBase, n); err != nil {
		return err
	}
	b.Height = bld.Property(n, "Height")
	return nil
}

func (b *Body) Render(rc *RenderContext) ([]*html.Node, error) {
	var nodes []*html.Node
	if img := b.backgroundImage(rc); img != nil {
		nodes = append(nodes, img)
	}
	children, err := rc.RenderChildren(b.children)
	return append(nodes, children...), err
}

func (b *Body) backgroundImage(rc *RenderContext) *html.Node {
	if b.style == nil || b.style.BackgroundImage == "" {
		return nil
	}
	img, ok := rc.Build().Image(b.style.BackgroundImage)
	if !ok {
		rc.logger.WithField("image", b.style.BackgroundImage).Warn("Background image is not embedded in the report")
		return nil
	}
	var decl render.Declarations
	decl.Add("position", "absolute").Add("top", render.FormatPixels(1))
	node := render.Styled(atom.Img, decl)
	node.Attr = append(node.Attr,
		render.Attr("alt", "background image"),
		render.Attr("src", render.DataURI(img.MIMEType, img.ImageData)),
	)
	return node
}

// Page records the page margins for the build and renders page headers and
// footers like any other content.
type Page struct {
	itemBase
	Height  string
	Width   string
	Margins PageMargins
}

func newPage() *Page {
	return &Page{itemBase: itemBase{typeName: "Page"}}
}

func (p *Page) Parse(b *Builder, n *markup.Node) error {
	if err := b.parseChildren(&p.itemBase, n); err != nil {
		return err
	}
	p.Height = b.Property(n, "PageHeight")
	p.Width = b.Property(n, "PageWidth")
	p.Margins = PageMargins{
		Top:    b.Property(n, "TopMargin"),
		Left:   b.Property(n, "LeftMargin"),
		Bottom: b.Property(n, "BottomMargin"),
		Right:  b.Property(n, "RightMargin"),
	}
	b.Context().Margins = p.Margins
	return nil
}

// EmbeddedImages registers its images with the build and is not kept in the tree.
type EmbeddedImages struct {
	itemBase
}

func newEmbeddedImages() *EmbeddedImages {
	return &EmbeddedImages{itemBase: itemBase{typeName: "EmbeddedImages"}}
}

func (e *EmbeddedImages) Parse(b *Builder, n *markup.Node) error {
	for _, child := range n.ChildrenNamed("EmbeddedImage") {
		item, err := b.Item(child)
		if err != nil {
			return err
		}
		if img, ok := item.(*EmbeddedImage); ok {
			b.Context().AddImage(img)
		}
	}
	return nil
}

// EmbeddedImage is base64 image data stored in the report definition.
type EmbeddedImage struct {
	itemBase
	Name      string
	MIMEType  string
	ImageData string
}

func newEmbeddedImage() *EmbeddedImage {
	return &EmbeddedImage{itemBase: itemBase{typeName: "EmbeddedImage"}}
}

func (e *EmbeddedImage) itemName() string { return e.Name }

func (e *EmbeddedImage) Parse(b *Builder, n *markup.Node) error {
	e.Name = b.Property(n, "Name")
	e.MIMEType = b.Property(n, "MIMEType")
	e.ImageData = b.Property(n, "ImageData")
	return nil
}

func (e *EmbeddedImage) Render(rc *RenderContext) ([]*html.Node, error) {
	return nil, nil
}

func (e *EmbeddedImage) RenderRow(rc *RenderContext, row Row) ([]*html.Node, error) {
	return nil, nil
}

// DataSets registers its datasets with the build and is not kept in the tree.
type DataSets struct {
	itemBase
}

func newDataSets() *DataSets {
	return &DataSets{itemBase: itemBase{typeName: "DataSets"}}
}

func (d *DataSets) Parse(b *Builder, n *markup.Node) error {
	for _, child := range n.ChildrenNamed("DataSet") {
		item, err := b.Item(child)
		if err != nil {
			return err
		}
		if ds, ok := item.(*DataSet); ok {
			b.Context().AddDataset(ds)
		}
	}
	return nil
}

// DataSetQuery is the query a dataset was declared with. It is kept for
// reference only; data always comes from the host.
type DataSetQuery struct {
	DataSourceName string
	CommandText    string
}

// DataSetField declares one report field. DataField names the host data column;
// a field without one uses Value, which may be a formula.
type DataSetField struct {
	Name      string
	DataField string
	Value     string
	TypeName  string
}

// DataSet is a declared dataset and its fields.
type DataSet struct {
	itemBase
	Name   string
	Query  DataSetQuery
	Fields []*DataSetField
}

func newDataSet() *DataSet {
	return &DataSet{itemBase: itemBase{typeName: "DataSet"}}
}

func (d *DataSet) itemName() string { return d.Name }

func (d *DataSet) Parse(b *Builder, n *markup.Node) error {
	d.Name = b.Property(n, "Name")
	if query := n.Child("Query"); query != nil {
		d.Query = DataSetQuery{
			DataSourceName: b.Property(query, "DataSourceName"),
			CommandText:    b.Property(query, "CommandText"),
		}
	}
	for _, fields := range n.ChildrenNamed("Fields") {
		for _, f := range fields.ChildrenNamed("Field") {
			d.Fields = append(d.Fields, &DataSetField{
				Name:      b.Property(f, "Name"),
				DataField: b.Property(f, "DataField"),
				Value:     b.Property(f, "Value"),
				TypeName:  b.Property(f, "rd:TypeName"),
			})
		}
	}
	return nil
}

func (d *DataSet) Render(rc *RenderContext) ([]*html.Node, error) {
	return nil, nil
}

func (d *DataSet) RenderRow(rc *RenderContext, row Row) ([]*html.Node, error) {
	return nil, nil
}

// Field returns the declared field with the given name.
func (d *DataSet) Field(name string) (*DataSetField, bool) {
	for _, f := range d.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return nil, false
}
