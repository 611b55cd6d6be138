package render

import "strings"

// Declarations is an ordered list of CSS declarations for an inline style attribute.
// Declarations with an empty value are dropped when added.
type Declarations struct {
	items []declaration
}

type declaration struct {
	property string
	value    string
}

// Add appends a declaration. Empty values are ignored so callers can add optional
// properties without checking them first.
func (d *Declarations) Add(property, value string) *Declarations {
	if value == "" {
		return d
	}
	d.items = append(d.items, declaration{property: property, value: value})
	return d
}

// Merge appends every declaration of other.
func (d *Declarations) Merge(other Declarations) *Declarations {
	d.items = append(d.items, other.items...)
	return d
}

// Len returns the number of declarations.
func (d Declarations) Len() int {
	return len(d.items)
}

// Get returns the value of the last declaration for property.
func (d Declarations) Get(property string) (string, bool) {
	for i := len(d.items) - 1; i >= 0; i-- {
		if d.items[i].property == property {
			return d.items[i].value, true
		}
	}
	return "", false
}

// String formats the declarations as "prop: value; prop: value".
func (d Declarations) String() string {
	parts := make([]string, len(d.items))
	for i, item := range d.items {
		parts[i] = item.property + ": " + item.value
	}
	return strings.Join(parts, "; ")
}

// Position returns the declarations for an absolutely positioned box. Both offsets
// are already formatted pixel values; an empty offset is left out. When both are
// empty no declarations are returned.
func Position(top, left string) Declarations {
	var d Declarations
	if top == "" && left == "" {
		return d
	}
	d.Add("position", "absolute")
	d.Add("top", top)
	d.Add("left", left)
	return d
}

// BorderStyle maps a report border style to its CSS keyword. "None" and "Default"
// produce no border.
func BorderStyle(style string) string {
	switch style {
	case "Solid":
		return "solid"
	case "Dashed":
		return "dashed"
	case "Dotted":
		return "dotted"
	case "Double":
		return "double"
	default:
		return ""
	}
}

// TextDecoration maps a report text decoration to CSS.
func TextDecoration(decoration string) string {
	switch decoration {
	case "Underline":
		return "underline"
	case "Overline":
		return "overline"
	case "LineThrough":
		return "line-through"
	case "None":
		return "none"
	default:
		return ""
	}
}

// TextAlign maps a report text alignment to CSS. "General" has no CSS equivalent.
func TextAlign(align string) string {
	switch align {
	case "Left":
		return "left"
	case "Center":
		return "center"
	case "Right":
		return "right"
	default:
		return ""
	}
}

// FontWeight maps a report font weight to CSS.
func FontWeight(weight string) string {
	switch weight {
	case "Bold":
		return "bold"
	case "Normal":
		return "normal"
	case "":
		return ""
	default:
		return strings.ToLower(weight)
	}
}

// FontStyle maps a report font style to CSS.
func FontStyle(style string) string {
	switch style {
	case "Italic":
		return "italic"
	case "Normal":
		return "normal"
	default:
		return ""
	}
}
