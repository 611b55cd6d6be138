package markup

import "strings"

// Serialize writes the element structure of n as markup. Text content is not
// available without the source, so only names, attributes and children are written.
func Serialize(n *Node) string {
	var sb strings.Builder
	writeNode(&sb, n, nil)
	return sb.String()
}

// Serialize writes the document back out, including the content of leaf elements.
func (d *Document) Serialize() string {
	var sb strings.Builder
	writeNode(&sb, d.Root, d.Content)
	return sb.String()
}

func writeNode(sb *strings.Builder, n *Node, content func(*Node) string) {
	if n == nil {
		return
	}
	sb.WriteByte('<')
	sb.WriteString(n.Name)
	for _, attr := range n.Attributes {
		quote := byte('"')
		if strings.IndexByte(attr.Value, '"') >= 0 {
			quote = '\''
		}
		sb.WriteByte(' ')
		sb.WriteString(attr.Name)
		sb.WriteByte('=')
		sb.WriteByte(quote)
		sb.WriteString(attr.Value)
		sb.WriteByte(quote)
	}

	text := ""
	if content != nil && n.IsLeaf() {
		text = content(n)
	}
	if len(n.Children) == 0 && text == "" {
		sb.WriteString("/>")
		return
	}

	sb.WriteByte('>')
	sb.WriteString(text)
	for _, child := range n.Children {
		writeNode(sb, child, content)
	}
	sb.WriteString("</")
	sb.WriteString(n.Name)
	sb.WriteByte('>')
}
