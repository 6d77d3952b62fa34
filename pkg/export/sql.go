package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/leapstack-labs/dabiro/pkg/adapter"
	"github.com/leapstack-labs/dabiro/pkg/core"
)

const sectionRule = "-- --------------------------------------------------------\n"

// WriteInserts writes one INSERT statement per row. Every value goes through
// q.QuoteValue, so NULL is written unquoted.
func WriteInserts(buf *bytes.Buffer, q adapter.Quoter, table string, rs *core.ResultSet) {
	if rs.Len() == 0 {
		return
	}
	cols := make([]string, len(rs.Columns))
	for i, c := range rs.Columns {
		cols[i] = q.QuoteIdentifier(c)
	}
	prefix := "INSERT INTO " + q.QuoteTable(core.TableRef{Name: table}) + " (" + strings.Join(cols, ", ") + ") VALUES ("

	for i := range rs.Rows {
		vals := rs.Values(i)
		quoted := make([]string, len(vals))
		for j, v := range vals {
			quoted[j] = q.QuoteValue(v)
		}
		buf.WriteString(prefix)
		buf.WriteString(strings.Join(quoted, ", "))
		buf.WriteString(");\n")
	}
}

// writeCreate writes the CREATE statement followed by a blank line, or a
// comment when it is not available.
func writeCreate(buf *bytes.Buffer, create string) {
	if create == "" {
		buf.WriteString("-- Could not get CREATE TABLE statement\n\n")
		return
	}
	buf.WriteString(strings.TrimRight(create, ";\n "))
	buf.WriteString(";\n\n")
}

func writeTableSQL(buf *bytes.Buffer, q adapter.Quoter, meta meta, create string, rs *core.ResultSet) {
	fmt.Fprintf(buf, "-- Table Export: %s.%s\n", meta.Database, meta.Table)
	fmt.Fprintf(buf, "-- Generated on: %s\n", meta.GeneratedAt.Format(generatedLayout))
	fmt.Fprintf(buf, "-- Total Records: %d\n\n", rs.Len())
	writeCreate(buf, create)
	WriteInserts(buf, q, meta.Table, rs)
}

// tableDump is one table of a database export.
type tableDump struct {
	Name   string
	Create string
	Rows   *core.ResultSet
}

func writeDatabaseSQL(buf *bytes.Buffer, q adapter.Quoter, meta meta, tables []tableDump) {
	fmt.Fprintf(buf, "-- Database Export: %s\n", meta.Database)
	fmt.Fprintf(buf, "-- Generated on: %s\n", meta.GeneratedAt.Format(generatedLayout))
	fmt.Fprintf(buf, "-- Server: %s\n", meta.Server)
	fmt.Fprintf(buf, "-- Database Type: %s\n\n", meta.Dialect)

	for _, t := range tables {
		buf.WriteString(sectionRule)
		fmt.Fprintf(buf, "-- Table: %s\n", t.Name)
		buf.WriteString(sectionRule)
		buf.WriteString("\n")
		writeCreate(buf, t.Create)
		if t.Rows.Len() > 0 {
			WriteInserts(buf, q, t.Name, t.Rows)
			buf.WriteString("\n")
		}
	}
}

func writeQuerySQL(buf *bytes.Buffer, meta meta, sqlStr string) {
	buf.WriteString("-- SQL Query Export\n")
	fmt.Fprintf(buf, "-- Generated on: %s\n", meta.GeneratedAt.Format(generatedLayout))
	database := meta.Database
	if database == "" {
		database = "N/A"
	}
	fmt.Fprintf(buf, "-- Database: %s\n\n", database)
	buf.WriteString(sqlStr)
	if !strings.HasSuffix(sqlStr, "\n") {
		buf.WriteString("\n")
	}
}
