// Package render provides the formatting helpers used while rendering a report.
//
// These are pure functions with no knowledge of report items: they convert
// report-definition units to pixels, assemble inline style declarations, encode
// embedded images as data URIs, and build and serialise HTML node trees on top of
// golang.org/x/net/html. The rdl package imports this package; this package does
// NOT import rdl.
//
// # Structure Organization
//
//   - units.go: unit parsing and pixel conversion (in, cm, mm, pt, pc, px)
//   - style.go: ordered CSS declaration lists for inline style attributes
//   - html.go: element construction and serialisation
//   - image.go: data URIs for embedded images
//
// # Pixel Conversion
//
// A length is multiplied by a fixed per-unit factor and rounded. The inch factor
// defaults to 143 rather than the nominal 96; at that scale absolutely positioned
// items line up with the report designer's layout without extra margins.
//
//	units := render.DefaultUnits()
//	px, ok := units.ToPixels("1.5in") // 215, true
package render
