package output

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/leapstack-labs/dabiro/pkg/adapter"
	"github.com/leapstack-labs/dabiro/pkg/core"
)

// Records writes a result set in the effective mode.
func (r *Renderer) Records(rs core.ResultSet) error {
	switch r.EffectiveMode() {
	case ModeJSON:
		rows := rs.Rows
		if rows == nil {
			rows = []core.Record{}
		}
		return r.JSON(rows)
	case ModeYAML:
		return r.YAML(rs.Rows)
	}

	if len(rs.Rows) == 0 && r.EffectiveMode() != ModeCSV {
		r.Println("(0 rows)")
		return nil
	}

	t := r.newTable(rs.Columns)
	for _, rec := range rs.Rows {
		row := make(table.Row, len(rs.Columns))
		for i, col := range rs.Columns {
			row[i] = FormatValue(rec[col])
		}
		t.AppendRow(row)
	}
	r.render(t)
	if r.EffectiveMode() == ModeTable {
		r.Printf("(%d rows)\n", len(rs.Rows))
	}
	return nil
}

// Table writes a header and string rows, used for listings and metadata.
func (r *Renderer) Table(header []string, rows [][]string) {
	t := r.newTable(header)
	for _, cells := range rows {
		row := make(table.Row, len(cells))
		for i, c := range cells {
			row[i] = c
		}
		t.AppendRow(row)
	}
	r.render(t)
}

func (r *Renderer) newTable(header []string) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(r.out)
	t.SetStyle(table.StyleLight)
	h := make(table.Row, len(header))
	for i, c := range header {
		h[i] = c
	}
	t.AppendHeader(h)
	return t
}

func (r *Renderer) render(t table.Writer) {
	switch r.EffectiveMode() {
	case ModeMarkdown:
		t.RenderMarkdown()
	case ModeCSV:
		t.RenderCSV()
	default:
		t.Render()
	}
}

// FormatValue renders a cell value; NULL is spelled out.
func FormatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return "NULL"
	case []byte:
		return adapter.TextOf(x)
	}
	return fmt.Sprintf("%v", v)
}
