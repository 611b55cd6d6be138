package rdl

import (
	"strconv"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/PrairieTrailDave/RDLReport/pkg/rdl/markup"
	"github.com/PrairieTrailDave/RDLReport/pkg/rdl/render"
)

// Tablix is a data bound table. Its rows repeat over the host rows of the dataset
// named by DataSetName.
type Tablix struct {
	itemBase
	Name            string
	DataSetName     string
	Top             string
	Left            string
	Width           string
	Height          string
	PageName        string
	Body            *TablixBody
	RowHierarchy    *TablixRowHierarchy
	ColumnHierarchy *TablixColumnHierarchy
}

func newTablix() *Tablix {
	return &Tablix{itemBase: itemBase{typeName: "Tablix"}}
}

func (t *Tablix) itemName() string { return t.Name }

func (t *Tablix) Parse(b *Builder, n *markup.Node) error {
	if err := b.parseChildren(&t.itemBase, n); err != nil {
		return err
	}
	t.Name = b.Property(n, "Name")
	t.DataSetName = b.Property(n, "DataSetName")
	t.Top = b.Property(n, "Top")
	t.Left = b.Property(n, "Left")
	t.Width = b.Property(n, "Width")
	t.Height = b.Property(n, "Height")
	t.PageName = b.Property(n, "PageName")

	// The body and hierarchies are structure, not content
	kept := t.children[:0]
	for _, child := range t.children {
		switch c := child.(type) {
		case *TablixBody:
			t.Body = c
		case *TablixRowHierarchy:
			t.RowHierarchy = c
		case *TablixColumnHierarchy:
			t.ColumnHierarchy = c
		default:
			kept = append(kept, child)
		}
	}
	t.children = kept
	return nil
}

func (t *Tablix) Render(rc *RenderContext) ([]*html.Node, error) {
	if t.DataSetName == "" {
		return nil, NewDatasetError(t.Name, "", "no dataset defined")
	}
	collection, ok := rc.Data().Lookup(t.DataSetName)
	if !ok {
		return nil, NewDatasetError(t.Name, t.DataSetName, "dataset was not supplied")
	}
	if _, ok := collection.Data(t.DataSetName); !ok {
		return nil, NewDatasetError(t.Name, t.DataSetName, "host data has no entry for the dataset")
	}
	rows, ok := collection.Rows(t.DataSetName)
	if !ok {
		return nil, NewDatasetError(t.Name, t.DataSetName, "host data is not an array of rows")
	}

	rc.logger.WithFields(Fields{
		"tablix":  t.Name,
		"dataset": t.DataSetName,
		"rows":    len(rows),
	}).Debug("Rendering tablix")

	engine := TablixEngine{Name: t.Name}
	content, err := engine.Layout(rc.WithDataset(t.DataSetName), t.Body, t.RowHierarchy, rows)
	if err != nil {
		return nil, err
	}

	decl := rc.Position(t.Top, t.Left)
	if t.style != nil {
		decl.Merge(t.style.BoxDeclarations(rc.Units()))
	}
	table := render.Styled(atom.Table, decl)
	render.Append(table, content...)
	return []*html.Node{table}, nil
}

// RenderRow renders a tablix nested in a cell the same way as a top level one.
func (t *Tablix) RenderRow(rc *RenderContext, row Row) ([]*html.Node, error) {
	return t.Render(rc)
}

// TablixBody holds the column sizes and row templates of a tablix.
type TablixBody struct {
	itemBase
	Columns []*TablixColumn
	Rows    []*TablixRow
}

func newTablixBody() *TablixBody {
	return &TablixBody{itemBase: itemBase{typeName: "TablixBody"}}
}

func (tb *TablixBody) Parse(b *Builder, n *markup.Node) error {
	for _, columns := range n.ChildrenNamed("TablixColumns") {
		for _, child := range columns.ChildrenNamed("TablixColumn") {
			item, err := b.Item(child)
			if err != nil {
				return err
			}
			if col, ok := item.(*TablixColumn); ok {
				tb.Columns = append(tb.Columns, col)
			}
		}
	}
	for _, rows := range n.ChildrenNamed("TablixRows") {
		for _, child := range rows.ChildrenNamed("TablixRow") {
			item, err := b.Item(child)
			if err != nil {
				return err
			}
			if row, ok := item.(*TablixRow); ok {
				tb.Rows = append(tb.Rows, row)
			}
		}
	}
	return nil
}

// columnWidth returns the width declared for the column at index i.
func (tb *TablixBody) columnWidth(i int) string {
	if tb == nil || i < 0 || i >= len(tb.Columns) {
		return ""
	}
	return tb.Columns[i].Width
}

// TablixColumn declares the width of one column.
type TablixColumn struct {
	itemBase
	Width string
}

func newTablixColumn() *TablixColumn {
	return &TablixColumn{itemBase: itemBase{typeName: "TablixColumn"}}
}

func (c *TablixColumn) Parse(b *Builder, n *markup.Node) error {
	c.Width = b.Property(n, "Width")
	return nil
}

func (c *TablixColumn) Render(rc *RenderContext) ([]*html.Node, error) {
	col := render.Element(atom.Col)
	if width := rc.Units().Pixels(c.Width); width != "" {
		col.Attr = append(col.Attr, render.Attr("width", width))
	}
	return []*html.Node{col}, nil
}

func (c *TablixColumn) RenderRow(rc *RenderContext, row Row) ([]*html.Node, error) {
	return c.Render(rc)
}

// TablixRow is a row template: a height and one cell per column.
type TablixRow struct {
	itemBase
	Height string
	Cells  []*TablixCell
}

func newTablixRow() *TablixRow {
	return &TablixRow{itemBase: itemBase{typeName: "TablixRow"}}
}

func (r *TablixRow) Parse(b *Builder, n *markup.Node) error {
	r.Height = b.Property(n, "Height")
	for _, cells := range n.ChildrenNamed("TablixCells") {
		for _, child := range cells.ChildrenNamed("TablixCell") {
			item, err := b.Item(child)
			if err != nil {
				return err
			}
			if cell, ok := item.(*TablixCell); ok {
				r.Cells = append(r.Cells, cell)
			}
		}
	}
	return nil
}

func (r *TablixRow) Render(rc *RenderContext) ([]*html.Node, error) {
	return r.RenderRow(rc, nil)
}

func (r *TablixRow) RenderRow(rc *RenderContext, row Row) ([]*html.Node, error) {
	return r.render(rc, nil, row)
}

// render emits one tr. Cells without a width of their own take the width of the
// column they start in.
func (r *TablixRow) render(rc *RenderContext, body *TablixBody, row Row) ([]*html.Node, error) {
	tr := render.Element(atom.Tr)
	column := 0
	for _, cell := range r.Cells {
		td, err := cell.render(rc, body.columnWidth(column), row)
		if err != nil {
			return nil, err
		}
		render.Append(tr, td)
		column += cell.span()
	}
	return []*html.Node{tr}, nil
}

// TablixCell holds the contents of one cell of a row template.
type TablixCell struct {
	itemBase
	Width   string
	ColSpan int
}

func newTablixCell() *TablixCell {
	return &TablixCell{itemBase: itemBase{typeName: "TablixCell"}}
}

func (c *TablixCell) Parse(b *Builder, n *markup.Node) error {
	c.Width = b.Property(n, "Size")
	if c.Width == "" {
		c.Width = b.Property(n, "Width")
	}
	contents := n.Child("CellContents")
	if contents == nil {
		return nil
	}
	if span, err := strconv.Atoi(b.Property(contents, "ColSpan")); err == nil && span > 1 {
		c.ColSpan = span
	}
	return b.parseChildren(&c.itemBase, contents)
}

func (c *TablixCell) span() int {
	if c.ColSpan > 1 {
		return c.ColSpan
	}
	return 1
}

func (c *TablixCell) Render(rc *RenderContext) ([]*html.Node, error) {
	td, err := c.render(rc, "", nil)
	if err != nil {
		return nil, err
	}
	return []*html.Node{td}, nil
}

func (c *TablixCell) RenderRow(rc *RenderContext, row Row) ([]*html.Node, error) {
	td, err := c.render(rc, "", row)
	if err != nil {
		return nil, err
	}
	return []*html.Node{td}, nil
}

func (c *TablixCell) render(rc *RenderContext, columnWidth string, row Row) (*html.Node, error) {
	td := render.Element(atom.Td)
	width := c.Width
	if width == "" {
		width = columnWidth
	}
	if px := rc.Units().Pixels(width); px != "" {
		td.Attr = append(td.Attr, render.Attr("width", px))
	}
	if c.ColSpan > 1 {
		td.Attr = append(td.Attr, render.Attr("colspan", strconv.Itoa(c.ColSpan)))
	}
	content, err := rc.RenderChildrenRow(c.children, row)
	if err != nil {
		return nil, err
	}
	return render.Append(td, content...), nil
}

// TablixGroup marks a hierarchy member as repeating once per data row.
type TablixGroup struct {
	itemBase
	Name             string
	GroupExpressions []string
}

func newTablixGroup() *TablixGroup {
	return &TablixGroup{itemBase: itemBase{typeName: "Group"}}
}

func (g *TablixGroup) itemName() string { return g.Name }

func (g *TablixGroup) Parse(b *Builder, n *markup.Node) error {
	g.Name = b.Property(n, "Name")
	for _, exprs := range n.ChildrenNamed("GroupExpressions") {
		for _, expr := range exprs.ChildrenNamed("GroupExpression") {
			g.GroupExpressions = append(g.GroupExpressions, b.Content(expr))
		}
	}
	return nil
}

func (g *TablixGroup) Render(rc *RenderContext) ([]*html.Node, error) {
	return nil, nil
}

func (g *TablixGroup) RenderRow(rc *RenderContext, row Row) ([]*html.Node, error) {
	return nil, nil
}

// TablixMember is one entry of a row or column hierarchy. A member with a Group
// repeats its row; one without is static.
type TablixMember struct {
	itemBase
	Group         *TablixGroup
	Members       []*TablixMember
	KeepWithGroup string
}

func newTablixMember() *TablixMember {
	return &TablixMember{itemBase: itemBase{typeName: "TablixMember"}}
}

func (m *TablixMember) Parse(b *Builder, n *markup.Node) error {
	m.KeepWithGroup = b.Property(n, "KeepWithGroup")
	if group := n.Child("Group"); group != nil {
		item, err := b.Item(group)
		if err != nil {
			return err
		}
		if g, ok := item.(*TablixGroup); ok {
			m.Group = g
		}
	}
	members, err := parseMembers(b, n)
	if err != nil {
		return err
	}
	m.Members = members
	return nil
}

func (m *TablixMember) Render(rc *RenderContext) ([]*html.Node, error) {
	return nil, nil
}

func (m *TablixMember) RenderRow(rc *RenderContext, row Row) ([]*html.Node, error) {
	return nil, nil
}

// Grouped reports whether the member repeats once per data row.
func (m *TablixMember) Grouped() bool {
	return m.Group != nil
}

// parseMembers builds the members listed under the TablixMembers child of n.
func parseMembers(b *Builder, n *markup.Node) ([]*TablixMember, error) {
	var members []*TablixMember
	for _, list := range n.ChildrenNamed("TablixMembers") {
		for _, child := range list.ChildrenNamed("TablixMember") {
			item, err := b.Item(child)
			if err != nil {
				return nil, err
			}
			if member, ok := item.(*TablixMember); ok {
				members = append(members, member)
			}
		}
	}
	return members, nil
}

// TablixRowHierarchy decides how often each row template is emitted.
type TablixRowHierarchy struct {
	itemBase
	Members []*TablixMember
}

func newTablixRowHierarchy() *TablixRowHierarchy {
	return &TablixRowHierarchy{itemBase: itemBase{typeName: "TablixRowHierarchy"}}
}

func (h *TablixRowHierarchy) Parse(b *Builder, n *markup.Node) error {
	members, err := parseMembers(b, n)
	if err != nil {
		return err
	}
	h.Members = members
	return nil
}

func (h *TablixRowHierarchy) Render(rc *RenderContext) ([]*html.Node, error) {
	return nil, nil
}

func (h *TablixRowHierarchy) RenderRow(rc *RenderContext, row Row) ([]*html.Node, error) {
	return nil, nil
}

// RowBinding pairs a top level hierarchy member with the row template at the
// same position.
type RowBinding struct {
	Member *TablixMember
	Row    *TablixRow
}

// Bind pairs members and row templates position for position. The counts must
// match. The hierarchy itself is not modified.
func (h *TablixRowHierarchy) Bind(rows []*TablixRow) ([]RowBinding, error) {
	if len(rows) != len(h.Members) {
		return nil, NewHierarchyMismatchError("", len(rows), len(h.Members))
	}
	bindings := make([]RowBinding, len(rows))
	for i := range rows {
		bindings[i] = RowBinding{Member: h.Members[i], Row: rows[i]}
	}
	return bindings, nil
}

// Nested reports whether any top level member has members of its own.
func (h *TablixRowHierarchy) Nested() bool {
	for _, m := range h.Members {
		if len(m.Members) > 0 {
			return true
		}
	}
	return false
}

// TablixColumnHierarchy is parsed for completeness. Columns never repeat.
type TablixColumnHierarchy struct {
	itemBase
	Members []*TablixMember
}

func newTablixColumnHierarchy() *TablixColumnHierarchy {
	return &TablixColumnHierarchy{itemBase: itemBase{typeName: "TablixColumnHierarchy"}}
}

func (h *TablixColumnHierarchy) Parse(b *Builder, n *markup.Node) error {
	members, err := parseMembers(b, n)
	if err != nil {
		return err
	}
	h.Members = members
	return nil
}

func (h *TablixColumnHierarchy) Render(rc *RenderContext) ([]*html.Node, error) {
	return nil, nil
}

func (h *TablixColumnHierarchy) RenderRow(rc *RenderContext, row Row) ([]*html.Node, error) {
	return nil, nil
}

// TablixEngine expands the row templates of a tablix body against data rows.
type TablixEngine struct {
	// Name identifies the tablix in errors and log lines
	Name string
}

// Layout binds the hierarchy to the body's rows and emits the column group and
// table rows. A grouped member emits its row once per data row in order; a static
// member emits its row once, resolved against the host data collections. Without
// a hierarchy every row is static. A count mismatch fails before any output.
func (e TablixEngine) Layout(rc *RenderContext, body *TablixBody, hierarchy *TablixRowHierarchy, rows []Row) ([]*html.Node, error) {
	if body == nil {
		return nil, nil
	}

	var bindings []RowBinding
	if hierarchy != nil {
		var err error
		bindings, err = hierarchy.Bind(body.Rows)
		if err != nil {
			if mismatch, ok := err.(*HierarchyMismatchError); ok {
				mismatch.Tablix = e.Name
			}
			return nil, err
		}
		if hierarchy.Nested() {
			rc.logger.WithField("tablix", e.Name).Warn("Nested row groups are not supported; only the top level members drive the layout")
		}
	} else {
		for _, row := range body.Rows {
			bindings = append(bindings, RowBinding{Row: row})
		}
	}

	var nodes []*html.Node
	if len(body.Columns) > 0 {
		colgroup := render.Element(atom.Colgroup)
		for _, col := range body.Columns {
			cols, err := col.Render(rc)
			if err != nil {
				return nil, err
			}
			render.Append(colgroup, cols...)
		}
		nodes = append(nodes, colgroup)
	}

	for _, binding := range bindings {
		if binding.Member != nil && binding.Member.Grouped() {
			for _, data := range rows {
				tr, err := binding.Row.render(rc, body, data)
				if err != nil {
					return nil, err
				}
				nodes = append(nodes, tr...)
			}
			continue
		}
		tr, err := binding.Row.render(rc, body, nil)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, tr...)
	}
	return nodes, nil
}
