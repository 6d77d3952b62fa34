package export

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"
	"time"
	"unicode"

	"github.com/leapstack-labs/dabiro/pkg/adapter"
	"github.com/leapstack-labs/dabiro/pkg/core"
)

// WriteXML writes an <export> document with one <record> per row and one
// child element per column. NULL is written as an empty element.
func WriteXML(w io.Writer, database, table string, at time.Time, rs *core.ResultSet) error {
	var sb strings.Builder
	sb.WriteString(xml.Header)
	sb.WriteString("<export>\n")
	writeElement(&sb, "  ", "database", database)
	writeElement(&sb, "  ", "table", table)
	writeElement(&sb, "  ", "exported_at", at.Format(generatedLayout))
	sb.WriteString("  <records>\n")

	names := make([]string, len(rs.Columns))
	for i, c := range rs.Columns {
		names[i] = elementName(c)
	}
	for i := range rs.Rows {
		sb.WriteString("    <record>\n")
		for j, v := range rs.Values(i) {
			writeElement(&sb, "      ", names[j], adapter.TextOf(v))
		}
		sb.WriteString("    </record>\n")
	}

	sb.WriteString("  </records>\n")
	sb.WriteString("</export>\n")
	_, err := io.WriteString(w, sb.String())
	return err
}

func writeElement(sb *strings.Builder, indent, name, value string) {
	var esc strings.Builder
	// EscapeText only fails when the writer does.
	_ = xml.EscapeText(&esc, []byte(value))
	fmt.Fprintf(sb, "%s<%s>%s</%s>\n", indent, name, esc.String(), name)
}

// elementName turns a column name into a valid XML element name.
// Invalid characters become underscores and a leading non-letter gets an
// underscore prefix.
func elementName(col string) string {
	var sb strings.Builder
	for i, r := range col {
		valid := unicode.IsLetter(r) || r == '_' ||
			(i > 0 && (unicode.IsDigit(r) || r == '-' || r == '.'))
		if i == 0 && !valid && (unicode.IsDigit(r) || r == '-' || r == '.') {
			sb.WriteByte('_')
			sb.WriteRune(r)
			continue
		}
		if !valid {
			sb.WriteByte('_')
			continue
		}
		sb.WriteRune(r)
	}
	name := sb.String()
	if name == "" || strings.HasPrefix(strings.ToLower(name), "xml") {
		name = "_" + name
	}
	return name
}
