package export

import (
	"bytes"
	"encoding/json"
	"io"
	"time"

	"github.com/leapstack-labs/dabiro/pkg/core"
)

// orderedRecord marshals a row as a JSON object with keys in column order.
type orderedRecord struct {
	columns []string
	row     core.Record
}

func (o orderedRecord) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, c := range o.columns {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := marshal(c)
		if err != nil {
			return nil, err
		}
		v, err := marshal(o.row[c])
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// orderedTables marshals tables in export order.
type orderedTables struct {
	names []string
	rows  map[string][]orderedRecord
}

func (o orderedTables) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, n := range o.names {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := marshal(n)
		if err != nil {
			return nil, err
		}
		v, err := marshal(o.rows[n])
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func records(rs *core.ResultSet) []orderedRecord {
	out := make([]orderedRecord, rs.Len())
	for i, row := range rs.Rows {
		out[i] = orderedRecord{columns: rs.Columns, row: row}
	}
	return out
}

// marshal encodes v without HTML escaping.
func marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// writeJSON pretty-prints v with four-space indentation, leaving non-ASCII
// and HTML characters unescaped.
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	return enc.Encode(v)
}

type tableJSON struct {
	Database     string          `json:"database"`
	Table        string          `json:"table"`
	ExportedAt   string          `json:"exported_at"`
	TotalRecords int             `json:"total_records"`
	Data         []orderedRecord `json:"data"`
}

type queryJSON struct {
	Database     string          `json:"database,omitempty"`
	Query        string          `json:"query"`
	ExportedAt   string          `json:"exported_at"`
	TotalRecords int             `json:"total_records"`
	Data         []orderedRecord `json:"data"`
}

type databaseJSON struct {
	Database   string        `json:"database"`
	ExportedAt string        `json:"exported_at"`
	Server     string        `json:"server"`
	Type       string        `json:"type"`
	Tables     orderedTables `json:"tables"`
}

// WriteTableJSON writes a table export document:
// database, table, exported_at, total_records and data.
func WriteTableJSON(w io.Writer, database, table string, at time.Time, rs *core.ResultSet) error {
	return writeJSON(w, tableJSON{
		Database:     database,
		Table:        table,
		ExportedAt:   at.Format(generatedLayout),
		TotalRecords: rs.Len(),
		Data:         records(rs),
	})
}

func writeDatabaseJSON(w io.Writer, m meta, tables []tableDump) error {
	doc := databaseJSON{
		Database:   m.Database,
		ExportedAt: m.GeneratedAt.Format(generatedLayout),
		Server:     m.Server,
		Type:       m.Dialect,
		Tables:     orderedTables{rows: make(map[string][]orderedRecord, len(tables))},
	}
	for _, t := range tables {
		doc.Tables.names = append(doc.Tables.names, t.Name)
		doc.Tables.rows[t.Name] = records(t.Rows)
	}
	return writeJSON(w, doc)
}
