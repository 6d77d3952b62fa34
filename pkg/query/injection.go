package query

import (
	"log/slog"

	libinjection "github.com/corazawaf/libinjection-go"
)

// AuditValue logs a warning when a user-supplied value fingerprints as SQL
// injection. The value is still quoted and used; the log is an audit trail.
func AuditValue(logger *slog.Logger, field, value string) {
	if value == "" {
		return
	}
	if isSQLi, fingerprint := libinjection.IsSQLi(value); isSQLi {
		logger.Warn("value looks like SQL injection",
			slog.String("field", field),
			slog.String("fingerprint", string(fingerprint)))
	}
}
