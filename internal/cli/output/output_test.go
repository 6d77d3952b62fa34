package output

import (
	"bytes"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/dabiro/pkg/core"
)

var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

func newTestRenderer(mode Mode, isTTY bool) (*Renderer, *bytes.Buffer, *bytes.Buffer) {
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	return NewRendererWithTTY(out, errOut, isTTY, mode), out, errOut
}

func sample() core.ResultSet {
	return core.ResultSet{
		Columns: []string{"id", "name"},
		Rows: []core.Record{
			{"id": int64(1), "name": "Alice"},
			{"id": int64(2), "name": nil},
		},
	}
}

func TestParseMode(t *testing.T) {
	tests := map[string]Mode{
		"":         ModeAuto,
		"auto":     ModeAuto,
		"TEXT":     ModeTable,
		"table":    ModeTable,
		"markdown": ModeMarkdown,
		"md":       ModeMarkdown,
		"json":     ModeJSON,
		"csv":      ModeCSV,
		"yml":      ModeYAML,
		"bogus":    ModeAuto,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseMode(in), in)
	}
}

func TestEffectiveMode(t *testing.T) {
	r, _, _ := newTestRenderer(ModeAuto, true)
	assert.Equal(t, ModeTable, r.EffectiveMode())

	r, _, _ = newTestRenderer(ModeAuto, false)
	assert.Equal(t, ModeMarkdown, r.EffectiveMode())

	r, _, _ = newTestRenderer(ModeJSON, true)
	assert.Equal(t, ModeJSON, r.EffectiveMode())
}

func TestRecords(t *testing.T) {
	tests := []struct {
		name string
		mode Mode
		want []string
	}{
		{name: "table", mode: ModeTable, want: []string{"Alice", "NULL", "(2 rows)", "│"}},
		{name: "markdown", mode: ModeMarkdown, want: []string{"| id | name |", "| 1 | Alice |"}},
		{name: "csv", mode: ModeCSV, want: []string{"id,name", "1,Alice", "2,NULL"}},
		{name: "json", mode: ModeJSON, want: []string{`"name": "Alice"`, `"name": null`}},
		{name: "yaml", mode: ModeYAML, want: []string{"name: Alice", "name: null"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, out, _ := newTestRenderer(tt.mode, false)
			require.NoError(t, r.Records(sample()))
			for _, want := range tt.want {
				assert.Contains(t, out.String(), want)
			}
		})
	}
}

func TestRecords_Empty(t *testing.T) {
	r, out, _ := newTestRenderer(ModeTable, true)
	require.NoError(t, r.Records(core.ResultSet{Columns: []string{"id"}}))
	assert.Equal(t, "(0 rows)\n", out.String())

	r, out, _ = newTestRenderer(ModeJSON, false)
	require.NoError(t, r.Records(core.ResultSet{}))
	assert.Equal(t, "[]\n", out.String())
}

func TestStatusLines(t *testing.T) {
	r, out, errOut := newTestRenderer(ModeAuto, false)
	r.Success("Drop completed successfully on 2 item(s)")
	r.Failure("Truncate completed with errors: x")
	r.Warning("careful")

	assert.False(t, ansiPattern.MatchString(out.String()), "no ANSI codes without a terminal")
	assert.Contains(t, out.String(), "✓ Drop completed successfully on 2 item(s)")
	assert.Contains(t, out.String(), "✗ Truncate completed with errors: x")
	assert.Contains(t, errOut.String(), "! careful")
}

func TestValue(t *testing.T) {
	type doc struct {
		Name string `json:"name" yaml:"name"`
	}

	r, out, _ := newTestRenderer(ModeYAML, false)
	handled, err := r.Value(doc{Name: "orders"})
	require.NoError(t, err)
	assert.True(t, handled)
	assert.Equal(t, "name: orders\n", out.String())

	r, _, _ = newTestRenderer(ModeTable, true)
	handled, err = r.Value(doc{})
	require.NoError(t, err)
	assert.False(t, handled)
}

func TestFormatValue(t *testing.T) {
	assert.Equal(t, "NULL", FormatValue(nil))
	assert.Equal(t, "42", FormatValue(int64(42)))
	assert.Equal(t, "0xcafe", FormatValue([]byte{0xca, 0xfe}))
}
