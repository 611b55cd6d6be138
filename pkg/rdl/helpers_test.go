package rdl

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// quietConfig returns a default configuration that does not cache or log.
func quietConfig() *Config {
	config := DefaultConfig()
	config.CacheMaxSize = 0
	config.LogLevel = "off"
	return config
}

func prepareText(t *testing.T, text string, config *Config) *PreparedReport {
	t.Helper()
	if config == nil {
		config = quietConfig()
	}
	report, err := NewWithConfig(config).PrepareString(text)
	require.NoError(t, err)
	return report
}

func prepareFixture(t *testing.T, name string) *PreparedReport {
	t.Helper()
	raw, err := os.ReadFile("testdata/" + name)
	require.NoError(t, err)
	return prepareText(t, string(raw), nil)
}

func salesData() DataCollection {
	return DataCollection{
		Name: "Sales",
		HostSentData: map[string]interface{}{
			"Sales": []Row{
				{"region": "West", "amount": 10},
				{"region": "East", "amount": 20},
				{"region": "North", "amount": 30.5},
			},
		},
	}
}

// wrapReport places report items in a body of an otherwise empty report.
func wrapReport(items string) string {
	return "<Report><Body><ReportItems>" + items + "</ReportItems></Body></Report>"
}

// textbox builds a positioned text box holding a single text run.
func textbox(name, top, left, value string) string {
	var sb strings.Builder
	sb.WriteString(`<Textbox Name="` + name + `">`)
	if top != "" {
		sb.WriteString("<Top>" + top + "</Top>")
	}
	if left != "" {
		sb.WriteString("<Left>" + left + "</Left>")
	}
	sb.WriteString("<Paragraphs><Paragraph><TextRuns><TextRun><Value>" + value + "</Value></TextRun></TextRuns></Paragraph></Paragraphs>")
	sb.WriteString("</Textbox>")
	return sb.String()
}
