package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/pkg/errors"
	"github.com/spf13/pflag"

	"github.com/PrairieTrailDave/RDLReport/pkg/rdl"
	"github.com/PrairieTrailDave/RDLReport/pkg/rdl/markup"
)

const version = "0.1.0"

const usage = `Usage: rdlreport <command> [arguments]

Commands:
  render <report.rdl>     Render a report definition to HTML
  validate <report.rdl>   Check a report definition without rendering it
  tokens <expression>     Show how a value expression is tokenized and ordered
  compact <report.rdl>    Print a report definition without layout whitespace
  version                 Show version information
`

// Exit codes: 0 success, 1 the report has problems, 2 usage or fatal error.
const (
	exitOK       = 0
	exitProblems = 1
	exitFatal    = 2
)

var (
	errorColor   = color.New(color.FgRed, color.Bold)
	warningColor = color.New(color.FgYellow)
	okColor      = color.New(color.FgGreen)
	labelColor   = color.New(color.FgCyan)
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return exitFatal
	}

	switch args[0] {
	case "render":
		return renderCommand(args[1:], stdout, stderr)
	case "validate":
		return validateCommand(args[1:], stdout, stderr)
	case "tokens":
		return tokensCommand(args[1:], stdout, stderr)
	case "compact":
		return compactCommand(args[1:], stdout, stderr)
	case "version", "--version":
		fmt.Fprintf(stdout, "rdlreport %s\n", version)
		return exitOK
	case "help", "-h", "--help":
		fmt.Fprint(stdout, usage)
		return exitOK
	default:
		errorColor.Fprintf(stderr, "Unknown command: %s\n", args[0])
		fmt.Fprint(stderr, usage)
		return exitFatal
	}
}

// engineFlags are shared by the commands that prepare a report.
type engineFlags struct {
	configPath string
	strict     bool
	margins    bool
	logLevel   string
}

func (f *engineFlags) register(fs *pflag.FlagSet) {
	fs.StringVarP(&f.configPath, "config", "c", "", "YAML configuration file")
	fs.BoolVar(&f.strict, "strict", false, "stop at the first failing item")
	fs.BoolVar(&f.margins, "margins", false, "add page margins to item positions")
	fs.StringVar(&f.logLevel, "log-level", "", "log level (debug, info, warn, error, off)")
}

// engine builds a report engine from the environment, the optional config file
// and the command line, in that order.
func (f *engineFlags) engine(fs *pflag.FlagSet) (*rdl.Engine, error) {
	config := rdl.GetGlobalConfig()
	if f.configPath != "" {
		loaded, err := rdl.LoadConfigFile(f.configPath)
		if err != nil {
			return nil, err
		}
		config = loaded
	}
	if fs.Changed("strict") {
		config.StrictMode = f.strict
	}
	if fs.Changed("margins") {
		config.ApplyPageMargins = f.margins
	}
	if f.logLevel != "" {
		config.LogLevel = f.logLevel
	}
	if err := config.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}

	rdl.SetGlobalConfig(config)
	return rdl.NewWithConfig(config), nil
}

func newFlagSet(name string, stderr io.Writer) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage of %s:\n", name)
		fs.PrintDefaults()
	}
	return fs
}

func fatal(stderr io.Writer, err error) int {
	errorColor.Fprintf(stderr, "Fatal: %v\n", err)
	return exitFatal
}

func renderCommand(args []string, stdout, stderr io.Writer) int {
	var (
		flags    engineFlags
		dataPath string
		outPath  string
	)
	fs := newFlagSet("render", stderr)
	flags.register(fs)
	fs.StringVarP(&dataPath, "data", "d", "", "JSON file of host data collections")
	fs.StringVarP(&outPath, "out", "o", "", "write HTML here instead of stdout")
	if err := fs.Parse(args); err != nil {
		return exitFatal
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return exitFatal
	}

	engine, err := flags.engine(fs)
	if err != nil {
		return fatal(stderr, err)
	}
	defer engine.Close()

	report, err := engine.PrepareFile(fs.Arg(0))
	if err != nil {
		return fatal(stderr, rdl.WithContext(err, "render", map[string]interface{}{"report": fs.Arg(0)}))
	}

	var data rdl.DataCollections
	if dataPath != "" {
		if data, err = rdl.LoadDataCollections(dataPath); err != nil {
			return fatal(stderr, err)
		}
	}

	out := stdout
	if outPath != "" {
		f, err := os.Create(outPath)
		if err != nil {
			return fatal(stderr, errors.Wrap(err, "create output"))
		}
		defer f.Close()
		out = f
	}

	renderErr := report.RenderTo(out, data...)
	if renderErr == nil {
		return exitOK
	}
	if flags.strict || engine.Config().StrictMode {
		return fatal(stderr, renderErr)
	}
	// Partial output was written; list what was left out
	var multi *rdl.MultiError
	if errors.As(renderErr, &multi) {
		for _, err := range multi.Errors() {
			warningColor.Fprintf(stderr, "skipped: %v\n", err)
		}
		return exitProblems
	}
	return fatal(stderr, renderErr)
}

func validateCommand(args []string, stdout, stderr io.Writer) int {
	var (
		flags  engineFlags
		asJSON bool
	)
	fs := newFlagSet("validate", stderr)
	flags.register(fs)
	fs.BoolVar(&asJSON, "json", false, "print the result as JSON")
	if err := fs.Parse(args); err != nil {
		return exitFatal
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return exitFatal
	}

	engine, err := flags.engine(fs)
	if err != nil {
		return fatal(stderr, err)
	}
	defer engine.Close()

	report, err := engine.PrepareFile(fs.Arg(0))
	if err != nil {
		return fatal(stderr, rdl.WithContext(err, "validate", map[string]interface{}{"report": fs.Arg(0)}))
	}
	result := rdl.ValidateReport(report)

	if asJSON {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			return fatal(stderr, errors.Wrap(err, "encode result"))
		}
	} else {
		writeIssues(stdout, fs.Arg(0), result)
	}

	if !result.Valid {
		return exitProblems
	}
	return exitOK
}

func writeIssues(w io.Writer, path string, result rdl.ValidationResult) {
	for _, issue := range result.Issues {
		c := warningColor
		if issue.Severity == rdl.IssueSeverityError {
			c = errorColor
		}
		c.Fprintf(w, "%s", strings.ToUpper(string(issue.Severity)))
		fmt.Fprintf(w, " [%s] %s: %s", issue.Code, issue.Item, issue.Message)
		if issue.Expression != "" {
			fmt.Fprintf(w, " (%s)", issue.Expression)
		}
		fmt.Fprintln(w)
	}
	if result.Valid {
		okColor.Fprintf(w, "%s is valid", path)
	} else {
		errorColor.Fprintf(w, "%s is invalid", path)
	}
	fmt.Fprintf(w, " (%d issues, %d field references)\n", len(result.Issues), len(result.References))
}

func tokensCommand(args []string, stdout, stderr io.Writer) int {
	fs := newFlagSet("tokens", stderr)
	if err := fs.Parse(args); err != nil {
		return exitFatal
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return exitFatal
	}

	expr := fs.Arg(0)
	raw := rdl.Tokenize(expr)
	tokens := rdl.Classify(raw)

	labelColor.Fprintln(stdout, "tokens:")
	for _, tok := range tokens {
		fmt.Fprintf(stdout, "  %-9s %s\n", tok.Kind, tok.Text)
	}

	postfix, err := rdl.ToPostfix(tokens)
	if err != nil {
		errorColor.Fprintf(stderr, "%v\n", err)
		return exitProblems
	}
	labelColor.Fprintln(stdout, "postfix:")
	for _, tok := range postfix {
		if tok.Kind == rdl.TokenFunction {
			fmt.Fprintf(stdout, "  %-9s %s/%d\n", tok.Kind, tok.Text, tok.Args)
			continue
		}
		fmt.Fprintf(stdout, "  %-9s %s\n", tok.Kind, tok.Text)
	}
	return exitOK
}

func compactCommand(args []string, stdout, stderr io.Writer) int {
	fs := newFlagSet("compact", stderr)
	if err := fs.Parse(args); err != nil {
		return exitFatal
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return exitFatal
	}

	raw, err := os.ReadFile(fs.Arg(0))
	if err != nil {
		return fatal(stderr, errors.Wrap(err, "read report definition"))
	}
	doc, err := markup.Parse(string(raw))
	if err != nil {
		return fatal(stderr, err)
	}
	fmt.Fprintln(stdout, doc.Serialize())
	return exitOK
}
