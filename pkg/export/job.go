package export

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// SourceKind says what an export reads.
type SourceKind string

// Source kinds.
const (
	SourceTable    SourceKind = "table"
	SourceDatabase SourceKind = "database"
	SourceQuery    SourceKind = "query"
)

// Source identifies the data of an export.
type Source struct {
	Kind     SourceKind
	Database string
	Table    string
	SQL      string
}

// Name returns the source name used in metadata: the table, the database,
// or "query".
func (s Source) Name() string {
	switch s.Kind {
	case SourceTable:
		return s.Table
	case SourceDatabase:
		return s.Database
	}
	return "query"
}

// Job is a single export run. It is not persisted.
type Job struct {
	ID        uuid.UUID
	Source    Source
	Format    Format
	CreatedAt time.Time
}

// NewJob creates a Job stamped with now.
func NewJob(src Source, f Format, now time.Time) Job {
	return Job{ID: uuid.New(), Source: src, Format: f, CreatedAt: now}
}

// timestampLayout is the layout of timestamps embedded in filenames.
const timestampLayout = "2006-01-02_15-04-05"

// generatedLayout is the layout of timestamps in export headers and metadata.
const generatedLayout = "2006-01-02 15:04:05"

// Filename returns the suggested file name:
// <db>_<table>_<timestamp>.<ext> for tables, <db>_<timestamp>.<ext> for
// databases and query_<timestamp>.<ext> for queries.
func (j Job) Filename() string {
	var parts []string
	switch j.Source.Kind {
	case SourceTable:
		parts = append(parts, j.Source.Database, j.Source.Table)
	case SourceDatabase:
		parts = append(parts, j.Source.Database)
	default:
		parts = append(parts, "query")
	}
	parts = append(parts, j.CreatedAt.Format(timestampLayout))

	for i, p := range parts {
		parts[i] = safeName(p)
	}
	return strings.Join(parts, "_") + "." + j.Format.Extension()
}

// safeName replaces characters that are unsafe in file names.
func safeName(s string) string {
	if s == "" {
		return "export"
	}
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|', 0:
			return '_'
		}
		return r
	}, s)
}

// Output is a rendered export.
type Output struct {
	Job      Job
	Data     []byte
	Filename string
	MIMEType string
}

func newOutput(j Job, data []byte) *Output {
	return &Output{Job: j, Data: data, Filename: j.Filename(), MIMEType: j.Format.MIMEType()}
}
