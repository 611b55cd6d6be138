package render

import (
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Element creates an element node for a, carrying the given attributes.
func Element(a atom.Atom, attrs ...html.Attribute) *html.Node {
	return &html.Node{
		Type:     html.ElementNode,
		DataAtom: a,
		Data:     a.String(),
		Attr:     attrs,
	}
}

// Attr builds a single attribute.
func Attr(key, value string) html.Attribute {
	return html.Attribute{Key: key, Val: value}
}

// StyleAttr builds a style attribute from declarations. ok is false when there is
// nothing to emit.
func StyleAttr(d Declarations) (html.Attribute, bool) {
	if d.Len() == 0 {
		return html.Attribute{}, false
	}
	return Attr("style", d.String()), true
}

// Styled creates an element and sets its style attribute when d is not empty.
func Styled(a atom.Atom, d Declarations) *html.Node {
	n := Element(a)
	if attr, ok := StyleAttr(d); ok {
		n.Attr = append(n.Attr, attr)
	}
	return n
}

// Text creates a text node. Escaping happens when the tree is rendered.
func Text(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}

// Append adds children to parent and returns parent. Nil children are skipped.
func Append(parent *html.Node, children ...*html.Node) *html.Node {
	for _, child := range children {
		if child != nil {
			parent.AppendChild(child)
		}
	}
	return parent
}

// Write renders nodes to w in order.
func Write(w io.Writer, nodes []*html.Node) error {
	for _, n := range nodes {
		if err := html.Render(w, n); err != nil {
			return err
		}
	}
	return nil
}

// String renders nodes to a string.
func String(nodes []*html.Node) (string, error) {
	var sb strings.Builder
	if err := Write(&sb, nodes); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// GetAttr returns the value of an attribute on n.
func GetAttr(n *html.Node, key string) (string, bool) {
	if n == nil {
		return "", false
	}
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val, true
		}
	}
	return "", false
}

// TextContent concatenates the text of n and its descendants.
func TextContent(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	if n != nil {
		walk(n)
	}
	return sb.String()
}
