package rdl

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"

	"github.com/PrairieTrailDave/RDLReport/pkg/rdl/markup"
	"github.com/PrairieTrailDave/RDLReport/pkg/rdl/render"
)

func writeDefinition(t *testing.T, text string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "report.rdl")
	require.NoError(t, os.WriteFile(path, []byte(text), 0o600))
	return path
}

func TestEnginePrepareFileCaches(t *testing.T) {
	config := quietConfig()
	config.CacheMaxSize = 10
	engine := NewWithConfig(config)
	path := writeDefinition(t, wrapReport(textbox("T", "", "", "cached")))

	first, err := engine.PrepareFile(path)
	require.NoError(t, err)
	second, err := engine.PrepareFile(path)
	require.NoError(t, err)
	assert.Same(t, first, second)

	engine.ClearCache()
	third, err := engine.PrepareFile(path)
	require.NoError(t, err)
	assert.NotSame(t, first, third)
}

func TestEnginePrepareFileWithoutCache(t *testing.T) {
	engine := NewWithConfig(quietConfig())
	path := writeDefinition(t, wrapReport(textbox("T", "", "", "fresh")))

	first, err := engine.PrepareFile(path)
	require.NoError(t, err)
	second, err := engine.PrepareFile(path)
	require.NoError(t, err)
	assert.NotSame(t, first, second)
}

func TestEnginePrepareFileErrors(t *testing.T) {
	engine := NewWithConfig(quietConfig())

	_, err := engine.PrepareFile(filepath.Join(t.TempDir(), "missing.rdl"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read report definition")

	path := writeDefinition(t, "<Report><Body></Report>")
	_, err = engine.PrepareFile(path)
	require.Error(t, err)
	assert.True(t, IsMalformedDocument(err))
	assert.Contains(t, err.Error(), "prepare "+path)
}

func TestEnginePrepareReader(t *testing.T) {
	engine := NewWithConfig(quietConfig())
	report, err := engine.Prepare(strings.NewReader(wrapReport(textbox("T", "", "", "from a reader"))))
	require.NoError(t, err)

	out, err := report.Render()
	require.NoError(t, err)
	assert.Equal(t, "<div><div>from a reader</div></div>", out)
}

func TestEngineMalformedDefinition(t *testing.T) {
	engine := NewWithConfig(quietConfig())
	for _, text := range []string{"", "<Report>", `<Report Name="a&b"/>`, "<Report></Body>"} {
		_, err := engine.PrepareString(text)
		assert.True(t, IsMalformedDocument(err), "%q: %v", text, err)
	}
}

func TestEngineWithFunction(t *testing.T) {
	upper := NewSimpleFunction("Upper", 1, 1, func(args ...interface{}) (interface{}, error) {
		return strings.ToUpper(FormatValue(args[0])), nil
	})
	engine := NewWithOptions(WithConfig(quietConfig()), WithFunction(upper))
	text := wrapReport(textbox("T", "", "", `=Upper("quiet")`))

	report, err := engine.PrepareString(text)
	require.NoError(t, err)
	out, err := report.Render()
	require.NoError(t, err)
	assert.Equal(t, "<div><div>QUIET</div></div>", out)

	_, ok := engine.Functions().GetFunction("upper")
	assert.True(t, ok)

	// Other engines keep their own registries
	other := NewWithConfig(quietConfig())
	_, ok = other.Functions().GetFunction("Upper")
	assert.False(t, ok)
}

func TestEnginePanickingFunction(t *testing.T) {
	boom := NewSimpleFunction("Boom", 0, 0, func(args ...interface{}) (interface{}, error) {
		panic("kaboom")
	})
	text := wrapReport(textbox("Boom", "", "", "=Boom()") + textbox("Ok", "", "", "ok"))

	tests := []struct {
		name    string
		strict  bool
		want    string
		wantErr string
	}{
		{name: "lenient", want: "<div><div></div></div><div><div>ok</div></div>"},
		{name: "strict", strict: true, wantErr: "panic recovered: kaboom"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := quietConfig()
			config.StrictMode = tt.strict
			engine := NewWithOptions(WithConfig(config), WithFunction(boom))

			report, err := engine.PrepareString(text)
			require.NoError(t, err)
			out, err := report.Render()
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.True(t, IsExpressionError(err))
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}
}

type stampItem struct {
	itemBase
	Label string
}

func (s *stampItem) Parse(b *Builder, n *markup.Node) error {
	s.Label = b.Property(n, "Label")
	return nil
}

func (s *stampItem) Render(rc *RenderContext) ([]*html.Node, error) {
	return []*html.Node{render.Text("[" + s.Label + "]")}, nil
}

func TestEngineWithItem(t *testing.T) {
	factory := func() ReportItem { return &stampItem{itemBase: itemBase{typeName: "Stamp"}} }
	engine := NewWithOptions(WithConfig(quietConfig()), WithItem("Stamp", factory))
	text := wrapReport(`<Stamp><Label>approved</Label></Stamp>`)

	report, err := engine.PrepareString(text)
	require.NoError(t, err)
	out, err := report.Render()
	require.NoError(t, err)
	assert.Equal(t, "[approved]", out)

	plain, err := NewWithConfig(quietConfig()).PrepareString(text)
	require.NoError(t, err)
	out, err = plain.Render()
	require.NoError(t, err)
	assert.Equal(t, "", out, "unregistered elements only render their children")
}

func TestEngineOptions(t *testing.T) {
	engine := NewWithOptions(WithConfig(quietConfig()), WithCache(3))
	assert.Equal(t, 3, engine.Config().CacheMaxSize)
	assert.Equal(t, "off", engine.Config().LogLevel)

	config := quietConfig()
	config.InchPixels = 96
	engine.SetConfig(config)
	assert.Equal(t, 96.0, engine.Config().InchPixels)
	assert.NoError(t, engine.Close())
}

func TestNewWithConfigNil(t *testing.T) {
	engine := NewWithConfig(nil)
	assert.Equal(t, DefaultConfig(), engine.Config())
}

func TestPackageLevelAPI(t *testing.T) {
	saved := *DefaultEngine.Config()
	t.Cleanup(func() {
		DefaultEngine.SetConfig(&saved)
		DefaultEngine.ClearCache()
	})

	SetCacheConfig(5, time.Minute)
	assert.Equal(t, 5, DefaultEngine.Config().CacheMaxSize)
	assert.Equal(t, time.Minute, DefaultEngine.Config().CacheTTL)

	require.NoError(t, RegisterGlobalFunction(NewSimpleFunction("PackageLevelTwice", 1, 1, func(args ...interface{}) (interface{}, error) {
		return FormatValue(args[0]) + FormatValue(args[0]), nil
	})))

	report, err := PrepareString(wrapReport(textbox("T", "", "", `=PackageLevelTwice("ab")`)))
	require.NoError(t, err)
	out, err := report.Render()
	require.NoError(t, err)
	assert.Equal(t, "<div><div>abab</div></div>", out)

	report, err = Prepare(strings.NewReader(wrapReport("")))
	require.NoError(t, err)
	out, err = report.Render()
	require.NoError(t, err)
	assert.Equal(t, "", out)

	path := writeDefinition(t, wrapReport(textbox("T", "", "", "file")))
	first, err := PrepareFile(path)
	require.NoError(t, err)
	second, err := PrepareFile(path)
	require.NoError(t, err)
	assert.Same(t, first, second)

	ClearCache()
	third, err := PrepareFile(path)
	require.NoError(t, err)
	assert.NotSame(t, first, third)
}

func TestRenderNodesUnprepared(t *testing.T) {
	var report *PreparedReport
	_, err := report.RenderNodes()
	assert.Error(t, err)

	_, err = (&PreparedReport{}).Render()
	assert.Error(t, err)
}
