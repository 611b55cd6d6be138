// Package markup provides the restricted XML parser used for report definitions.
//
// Report definitions are XML documents, but general purpose XML and HTML parsers
// either assume an HTML document (and get confused by elements such as <Body>) or
// carry far more of the XML specification than a report definition needs. This
// package implements a small character-driven state machine instead.
//
// # Structure Organization
//
//   - node.go: Node, Attribute and Document, the generic attributed tree
//   - chars.go: character classes recognised by the state machine
//   - parser.go: the state machine itself
//   - serialize.go: writing a tree back out as markup
//   - errors.go: MalformedDocumentError
//
// # Supported Syntax
//
// Elements, attributes quoted with either ' or ", self-closing elements, inline text
// content and a single leading <?xml ...?> declaration. Comments, CDATA sections,
// DOCTYPE declarations and entity references are not recognised. An attribute value
// containing & or < is rejected rather than decoded.
//
// # Content Offsets
//
// Text content is not copied out of the source. Each node records the byte offsets
// of its first and last content characters; Document.Content slices the source text
// when a caller needs the value:
//
//	doc, err := markup.Parse(`<Textbox Name="t1"><Top>1in</Top></Textbox>`)
//	if err != nil {
//	    return err
//	}
//	top := doc.Root.Child("Top")
//	fmt.Println(doc.Content(top)) // 1in
package markup
