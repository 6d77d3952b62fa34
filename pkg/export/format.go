// Package export renders table data, whole databases and ad-hoc query
// results as SQL, CSV, JSON or XML.
//
// Everything is rendered into memory; an Output carries the bytes together
// with a suggested filename and MIME type for whatever delivers it.
package export

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/dabiro/pkg/core"
)

// Format is an export format.
type Format string

// Export formats.
const (
	FormatSQL  Format = "sql"
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
	FormatXML  Format = "xml"
)

// ParseFormat resolves a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatSQL, FormatCSV, FormatJSON, FormatXML:
		return f, nil
	}
	return "", &core.ValidationError{Field: "format", Reason: fmt.Sprintf("unknown export format %q", s)}
}

// Extension returns the file extension without the dot.
func (f Format) Extension() string {
	return string(f)
}

// MIMEType returns the content type of the format.
func (f Format) MIMEType() string {
	switch f {
	case FormatSQL:
		return "text/plain"
	case FormatCSV:
		return "text/csv"
	case FormatJSON:
		return "application/json"
	case FormatXML:
		return "application/xml"
	}
	return "application/octet-stream"
}
