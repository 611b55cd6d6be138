package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	salesReport = "../../pkg/rdl/testdata/sales.rdl"
	salesData   = "../../pkg/rdl/testdata/sales.json"
)

func init() {
	color.NoColor = true
}

func runCLI(args ...string) (int, string, string) {
	var stdout, stderr bytes.Buffer
	code := run(args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRunUsage(t *testing.T) {
	tests := []struct {
		name string
		args []string
		code int
	}{
		{name: "no command", args: nil, code: exitFatal},
		{name: "unknown command", args: []string{"publish"}, code: exitFatal},
		{name: "help", args: []string{"help"}, code: exitOK},
		{name: "render without a report", args: []string{"render"}, code: exitFatal},
		{name: "validate with two reports", args: []string{"validate", "a.rdl", "b.rdl"}, code: exitFatal},
		{name: "unknown flag", args: []string{"render", "--bogus", salesReport}, code: exitFatal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _, _ := runCLI(tt.args...)
			assert.Equal(t, tt.code, code)
		})
	}
}

func TestVersion(t *testing.T) {
	code, out, _ := runCLI("version")
	assert.Equal(t, exitOK, code)
	assert.Equal(t, "rdlreport "+version+"\n", out)
}

func TestRender(t *testing.T) {
	code, out, errOut := runCLI("render", "--data", salesData, salesReport)
	require.Equal(t, exitOK, code, errOut)
	assert.Contains(t, out, "Regional Sales")
	assert.Equal(t, 4, strings.Count(out, "<tr>"))
}

func TestRenderToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sales.html")
	code, out, errOut := runCLI("render", "-d", salesData, "-o", path, salesReport)
	require.Equal(t, exitOK, code, errOut)
	assert.Empty(t, out)

	written, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(written), "North")
}

func TestRenderWithoutDataIsPartial(t *testing.T) {
	code, out, errOut := runCLI("render", salesReport)
	assert.Equal(t, exitProblems, code)
	assert.Contains(t, out, "Regional Sales", "the title still renders")
	assert.NotContains(t, out, "<table")
	assert.Contains(t, errOut, "skipped:")
	assert.Contains(t, errOut, "dataset was not supplied")
}

func TestRenderStrict(t *testing.T) {
	code, _, errOut := runCLI("render", "--strict", salesReport)
	assert.Equal(t, exitFatal, code)
	assert.Contains(t, errOut, "Fatal:")
}

func TestRenderWithConfigFile(t *testing.T) {
	config := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(config, []byte("inch_pixels: 96\nlog_level: off\n"), 0o600))

	code, out, errOut := runCLI("render", "--config", config, "--data", salesData, salesReport)
	require.Equal(t, exitOK, code, errOut)
	assert.Contains(t, out, `top: 24px; left: 96px`)
}

func TestRenderMissingFiles(t *testing.T) {
	code, _, errOut := runCLI("render", "missing.rdl")
	assert.Equal(t, exitFatal, code)
	assert.Contains(t, errOut, "read report definition")

	code, _, errOut = runCLI("render", "--data", "missing.json", salesReport)
	assert.Equal(t, exitFatal, code)
	assert.Contains(t, errOut, "read data file")

	code, _, errOut = runCLI("render", "--config", "missing.yaml", salesReport)
	assert.Equal(t, exitFatal, code)
	assert.Contains(t, errOut, "open config")
}

func TestValidate(t *testing.T) {
	code, out, _ := runCLI("validate", salesReport)
	assert.Equal(t, exitOK, code)
	assert.Contains(t, out, "is valid (0 issues, 3 field references)")
}

func TestValidateJSON(t *testing.T) {
	code, out, _ := runCLI("validate", "--json", salesReport)
	require.Equal(t, exitOK, code)

	var result struct {
		Valid      bool `json:"valid"`
		References []struct {
			Field string `json:"field"`
		} `json:"references"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.True(t, result.Valid)
	require.Len(t, result.References, 3)
	assert.Equal(t, "Title", result.References[0].Field)
}

func TestValidateInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.rdl")
	definition := `<Report><Body><ReportItems>
		<Tablix Name="Broken">
			<TablixBody><TablixRows><TablixRow/></TablixRows></TablixBody>
		</Tablix>
		<Textbox Name="Bad"><Value>=(1</Value></Textbox>
	</ReportItems></Body></Report>`
	require.NoError(t, os.WriteFile(path, []byte(definition), 0o600))

	code, out, _ := runCLI("validate", path)
	assert.Equal(t, exitProblems, code)
	assert.Contains(t, out, "ERROR [MISSING_DATASET] Tablix Broken: no dataset defined")
	assert.Contains(t, out, "ERROR [EXPRESSION_SYNTAX] Textbox Bad:")
	assert.Contains(t, out, "is invalid (2 issues")
}

func TestTokens(t *testing.T) {
	code, out, _ := runCLI("tokens", "=Add(Fields!Price.Value, 2) * 3")
	require.Equal(t, exitOK, code)
	assert.Contains(t, out, "tokens:")
	assert.Contains(t, out, "postfix:")
	assert.Contains(t, out, "Add/2")

	code, _, errOut := runCLI("tokens", "=(1+2")
	assert.Equal(t, exitProblems, code)
	assert.NotEmpty(t, errOut)
}

func TestCompact(t *testing.T) {
	path := filepath.Join(t.TempDir(), "spaced.rdl")
	definition := "<?xml version=\"1.0\"?>\n<Report>\n  <Body>\n    <Height>2in</Height>\n  </Body>\n</Report>\n"
	require.NoError(t, os.WriteFile(path, []byte(definition), 0o600))

	code, out, _ := runCLI("compact", path)
	require.Equal(t, exitOK, code)
	assert.Equal(t, "<Report><Body><Height>2in</Height></Body></Report>\n", out)

	broken := filepath.Join(t.TempDir(), "broken.rdl")
	require.NoError(t, os.WriteFile(broken, []byte("<Report>"), 0o600))
	code, _, errOut := runCLI("compact", broken)
	assert.Equal(t, exitFatal, code)
	assert.Contains(t, errOut, "Fatal:")
}
