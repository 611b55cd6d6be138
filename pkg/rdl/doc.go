// Package rdl renders Report Definition Language documents to HTML.
//
// A report definition is parsed once into a tree of report items and rendered
// any number of times against host data. Rendering produces a flat HTML
// fragment: absolutely positioned text boxes, text runs in styled divs and one
// table per tablix with a row per data row.
//
// # Quick Start
//
//	report, err := rdl.PrepareFile("invoice.rdl")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	data := rdl.NewDataCollection("Orders", []rdl.Row{
//	    {"Customer": "Ada", "Total": 42},
//	    {"Customer": "Grace", "Total": 17},
//	})
//
//	out, err := report.Render(data)
//	if err != nil {
//	    // out still holds everything that rendered
//	    log.Print(err)
//	}
//	fmt.Println(out)
//
// # Values
//
// A value that does not start with "=" is literal text. Otherwise it is an
// expression over numbers, quoted strings, field references and functions:
//
//	=Fields!Total.Value                   - Field of the dataset in scope
//	=Fields!Price.Value * Fields!Qty.Value
//	="Total: " & Fields!Total.Value       - Concatenation
//	=First(Fields!Name.Value, "Customers") - Field of a named dataset
//	=Add(1, 2, 3)
//
// Inside a grouped tablix row, fields read the current data row. Everywhere else
// they read the host data collection named by the dataset. Lookups that cannot
// be satisfied render as "Dataset Missing", "NaN" or empty text instead of
// failing.
//
// # Errors
//
// A malformed definition fails Prepare. During Render a failing item, such as a
// tablix without data, is left out of the output and reported in a *MultiError
// returned next to the partial HTML. Set Config.StrictMode to stop at the first
// failure instead.
//
// # Architecture
//
//   - markup: parser for the restricted XML used by report definitions
//   - render: unit conversion, CSS declarations and HTML node helpers
//
// The main package provides the item registry and builder, the value resolver,
// the tablix engine, configuration, caching and the Engine API.
package rdl
