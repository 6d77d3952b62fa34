package adapter

import (
	"database/sql/driver"
	"encoding/hex"
	"fmt"
	"strconv"
	"time"
)

// Layouts for time values placed in statement text. They match the text
// SQLite and PostgreSQL print for their own DATE and TIMESTAMP values.
const (
	DateLayout = "2006-01-02"
	TimeLayout = "2006-01-02 15:04:05.999999999"
	zoneLayout = "-07:00"
)

var binaryTypes = map[string]bool{
	"BLOB":       true,
	"TINYBLOB":   true,
	"MEDIUMBLOB": true,
	"LONGBLOB":   true,
	"BINARY":     true,
	"VARBINARY":  true,
	"BYTEA":      true,
}

// IsBinaryType reports whether a driver database type name holds raw bytes.
func IsBinaryType(dbType string) bool {
	return binaryTypes[dbType]
}

// TimeText renders t the way the engine prints a column of type dbType.
// A DATE at midnight keeps only the date; a time outside UTC keeps its offset.
func TimeText(t time.Time, dbType string) string {
	if dbType == "DATE" && t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0 {
		return t.Format(DateLayout)
	}
	if _, offset := t.Zone(); offset != 0 {
		return t.Format(TimeLayout + zoneLayout)
	}
	return t.Format(TimeLayout)
}

// NormalizeValue converts a driver value read from a column of type dbType
// (upper case, empty when unknown) into a Record value. Byte slices become
// strings unless the column is binary, and times become engine text, so a
// value read back can be written or matched again unchanged.
func NormalizeValue(v any, dbType string) any {
	switch x := v.(type) {
	case []byte:
		if IsBinaryType(dbType) {
			return x
		}
		return string(x)
	case time.Time:
		return TimeText(x, dbType)
	default:
		return v
	}
}

// HexText returns b as upper-case hex digits for a binary literal.
func HexText(b []byte) string {
	return fmt.Sprintf("%X", b)
}

// LiteralText returns the text of v to be placed inside a quoted literal.
// ok is false when v is SQL NULL.
func LiteralText(v any) (text string, ok bool) {
	switch x := v.(type) {
	case nil:
		return "", false
	case string:
		return x, true
	case []byte:
		return string(x), true
	case bool:
		if x {
			return "1", true
		}
		return "0", true
	case time.Time:
		return TimeText(x, ""), true
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32), true
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), true
	case driver.Valuer:
		inner, err := x.Value()
		if err != nil {
			return fmt.Sprint(v), true
		}
		return LiteralText(inner)
	case fmt.Stringer:
		return x.String(), true
	default:
		return fmt.Sprint(v), true
	}
}

// TextOf renders a record value for display; nil renders as the empty string
// and bytes render as 0x-prefixed hex.
func TextOf(v any) string {
	if b, ok := v.([]byte); ok {
		return "0x" + hex.EncodeToString(b)
	}
	s, ok := LiteralText(v)
	if !ok {
		return ""
	}
	return s
}
