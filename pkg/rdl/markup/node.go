package markup

// Attribute is a single name="value" pair on an element
type Attribute struct {
	Name  string
	Value string
}

// Node is one element of the parsed tree.
//
// ContentStart and ContentEnd are byte offsets into the parsed source. They only
// describe content when ContentStart < ContentEnd; use HasContent to check.
type Node struct {
	Name         string
	Attributes   []Attribute
	Children     []*Node
	ContentStart int
	ContentEnd   int
}

// HasContent reports whether the node carries inline text content.
func (n *Node) HasContent() bool {
	return n != nil && n.ContentStart < n.ContentEnd
}

// Attr returns the value of the named attribute.
func (n *Node) Attr(name string) (string, bool) {
	if n == nil {
		return "", false
	}
	for _, attr := range n.Attributes {
		if attr.Name == name {
			return attr.Value, true
		}
	}
	return "", false
}

// Child returns the first child with the given name, or nil.
func (n *Node) Child(name string) *Node {
	if n == nil {
		return nil
	}
	for _, child := range n.Children {
		if child.Name == name {
			return child
		}
	}
	return nil
}

// ChildrenNamed returns every direct child with the given name, in document order.
func (n *Node) ChildrenNamed(name string) []*Node {
	if n == nil {
		return nil
	}
	var result []*Node
	for _, child := range n.Children {
		if child.Name == name {
			result = append(result, child)
		}
	}
	return result
}

// IsLeaf reports whether the node has no child elements.
func (n *Node) IsLeaf() bool {
	return n != nil && len(n.Children) == 0
}

// Document is a parsed tree together with the source it was parsed from
type Document struct {
	Root   *Node
	Source string
}

// Content returns the inline text content of n, or "" when it has none.
func (d *Document) Content(n *Node) string {
	if d == nil || !n.HasContent() || n.ContentEnd > len(d.Source) {
		return ""
	}
	return d.Source[n.ContentStart:n.ContentEnd]
}

// Walk visits n and its descendants depth first. Returning false from fn skips
// the children of the node just visited.
func Walk(n *Node, fn func(*Node) bool) {
	if n == nil {
		return
	}
	if !fn(n) {
		return
	}
	for _, child := range n.Children {
		Walk(child, fn)
	}
}
