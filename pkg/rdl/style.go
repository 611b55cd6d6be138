package rdl

import (
	"golang.org/x/net/html"

	"github.com/PrairieTrailDave/RDLReport/pkg/rdl/markup"
	"github.com/PrairieTrailDave/RDLReport/pkg/rdl/render"
)

// Style holds the style properties of the item it is attached to. It is never
// part of the children of an item.
type Style struct {
	itemBase
	Format          string
	PaddingTop      string
	PaddingLeft     string
	PaddingRight    string
	PaddingBottom   string
	TextDecoration  string
	TextAlign       string
	VerticalAlign   string
	Color           string
	BackgroundColor string
	Width           string
	FontFamily      string
	FontSize        string
	FontStyle       string
	FontWeight      string
	BorderColor     string
	// BackgroundImage is the name of an embedded image
	BackgroundImage string

	Border       *Border
	TopBorder    *Border
	BottomBorder *Border
	LeftBorder   *Border
	RightBorder  *Border
}

func newStyle() *Style {
	return &Style{itemBase: itemBase{typeName: "Style"}}
}

func (s *Style) Parse(b *Builder, n *markup.Node) error {
	s.Format = b.Property(n, "Format")
	s.PaddingTop = b.Property(n, "PaddingTop")
	s.PaddingLeft = b.Property(n, "PaddingLeft")
	s.PaddingRight = b.Property(n, "PaddingRight")
	s.PaddingBottom = b.Property(n, "PaddingBottom")
	s.TextDecoration = b.Property(n, "TextDecoration")
	s.TextAlign = b.Property(n, "TextAlign")
	s.VerticalAlign = b.Property(n, "VerticalAlign")
	s.Color = b.Property(n, "Color")
	s.BackgroundColor = b.Property(n, "BackgroundColor")
	s.Width = b.Property(n, "Width")
	s.FontFamily = b.Property(n, "FontFamily")
	s.FontSize = b.Property(n, "FontSize")
	s.FontStyle = b.Property(n, "FontStyle")
	s.FontWeight = b.Property(n, "FontWeight")
	s.BorderColor = b.Property(n, "BorderColor")

	if bg := n.Child("BackgroundImage"); bg != nil {
		s.BackgroundImage = b.Property(bg, "Value")
	}

	for _, child := range n.Children {
		var slot **Border
		switch child.Name {
		case "Border":
			slot = &s.Border
		case "TopBorder":
			slot = &s.TopBorder
		case "BottomBorder":
			slot = &s.BottomBorder
		case "LeftBorder":
			slot = &s.LeftBorder
		case "RightBorder":
			slot = &s.RightBorder
		default:
			continue
		}
		item, err := b.Item(child)
		if err != nil {
			return err
		}
		if border, ok := item.(*Border); ok {
			*slot = border
		}
	}
	return nil
}

func (s *Style) Render(rc *RenderContext) ([]*html.Node, error) {
	return nil, nil
}

func (s *Style) RenderRow(rc *RenderContext, row Row) ([]*html.Node, error) {
	return nil, nil
}

// plain drops formula valued style properties, which are not evaluated.
func plain(v string) string {
	if IsFormula(v) {
		return ""
	}
	return v
}

// TextDeclarations returns the font and text properties as CSS.
func (s *Style) TextDeclarations(u render.Units) render.Declarations {
	var d render.Declarations
	if s == nil {
		return d
	}
	d.Add("font-family", plain(s.FontFamily))
	d.Add("font-size", u.Pixels(plain(s.FontSize)))
	d.Add("font-style", render.FontStyle(s.FontStyle))
	d.Add("font-weight", render.FontWeight(plain(s.FontWeight)))
	d.Add("text-decoration", render.TextDecoration(s.TextDecoration))
	d.Add("text-align", render.TextAlign(s.TextAlign))
	d.Add("color", plain(s.Color))
	return d
}

// BoxDeclarations returns the border, padding and background properties as CSS.
func (s *Style) BoxDeclarations(u render.Units) render.Declarations {
	var d render.Declarations
	if s == nil {
		return d
	}
	d.Merge(s.Border.Declarations("border", u))
	d.Merge(s.TopBorder.Declarations("border-top", u))
	d.Merge(s.BottomBorder.Declarations("border-bottom", u))
	d.Merge(s.LeftBorder.Declarations("border-left", u))
	d.Merge(s.RightBorder.Declarations("border-right", u))
	if _, ok := d.Get("border-color"); !ok {
		d.Add("border-color", plain(s.BorderColor))
	}
	d.Add("padding-top", u.Pixels(s.PaddingTop))
	d.Add("padding-left", u.Pixels(s.PaddingLeft))
	d.Add("padding-right", u.Pixels(s.PaddingRight))
	d.Add("padding-bottom", u.Pixels(s.PaddingBottom))
	d.Add("background-color", plain(s.BackgroundColor))
	d.Add("width", u.Pixels(s.Width))
	return d
}

// Border is one border of a style: Border for all sides, or a single side.
type Border struct {
	itemBase
	Color       string
	BorderStyle string
	Width       string
}

func newBorder(name string) *Border {
	return &Border{itemBase: itemBase{typeName: name}}
}

func (b *Border) Parse(bld *Builder, n *markup.Node) error {
	b.Color = bld.Property(n, "Color")
	b.BorderStyle = bld.Property(n, "Style")
	b.Width = bld.Property(n, "Width")
	return nil
}

func (b *Border) Render(rc *RenderContext) ([]*html.Node, error) {
	return nil, nil
}

func (b *Border) RenderRow(rc *RenderContext, row Row) ([]*html.Node, error) {
	return nil, nil
}

// Declarations returns the border as CSS properties under prefix, for example
// "border" or "border-top". None and Default draw no border at all.
func (b *Border) Declarations(prefix string, u render.Units) render.Declarations {
	var d render.Declarations
	if b == nil || b.BorderStyle == "None" || b.BorderStyle == "Default" {
		return d
	}
	d.Add(prefix+"-style", render.BorderStyle(b.BorderStyle))
	d.Add(prefix+"-color", plain(b.Color))
	d.Add(prefix+"-width", u.Pixels(b.Width))
	return d
}
