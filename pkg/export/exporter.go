package export

import (
	"bytes"
	"context"
	"log/slog"
	"time"

	"github.com/leapstack-labs/dabiro/pkg/adapter"
	"github.com/leapstack-labs/dabiro/pkg/core"
	"github.com/leapstack-labs/dabiro/pkg/schema"
)

// meta is the header information of an export.
type meta struct {
	Database    string
	Table       string
	Server      string
	Dialect     string
	GeneratedAt time.Time
}

// Exporter renders exports from one handle.
type Exporter struct {
	h      adapter.Adapter
	schema *schema.Introspector
	logger *slog.Logger
	now    func() time.Time
}

// NewExporter creates an Exporter. If logger is nil, a discard logger is used.
func NewExporter(h adapter.Adapter, logger *slog.Logger) *Exporter {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Exporter{h: h, schema: schema.New(logger), logger: logger, now: time.Now}
}

func (e *Exporter) meta(database, table string, at time.Time) meta {
	desc := e.h.Descriptor()
	server := desc.Host
	if server == "" {
		server = desc.FilePath()
	}
	return meta{
		Database:    database,
		Table:       table,
		Server:      server,
		Dialect:     e.h.Dialect().GetName(),
		GeneratedAt: at,
	}
}

// use switches to database unless it is empty or already current, and
// returns the database the export reads from.
func (e *Exporter) use(ctx context.Context, database string) (string, error) {
	if database != "" && database != e.h.CurrentDatabase() {
		if err := e.h.UseDatabase(ctx, database); err != nil {
			return "", err
		}
	}
	return e.h.CurrentDatabase(), nil
}

func (e *Exporter) readTable(ctx context.Context, table string) (*core.ResultSet, error) {
	return e.h.Query(ctx, "SELECT * FROM "+e.h.QuoteTable(core.TableRef{Name: table}))
}

// createStatement returns "" when the dialect cannot produce one.
func (e *Exporter) createStatement(ctx context.Context, table string) string {
	create, err := e.h.CreateStatement(ctx, table)
	if err != nil {
		e.logger.Warn("create statement unavailable", slog.String("table", table), slog.Any("error", err))
		return ""
	}
	return create
}

// ExportTable renders every row of a table. A non-empty database other than
// the current one switches the handle to it.
func (e *Exporter) ExportTable(ctx context.Context, database, table string, f Format) (*Output, error) {
	if table == "" {
		return nil, &core.ValidationError{Field: "table", Reason: "is required"}
	}
	db, err := e.use(ctx, database)
	if err != nil {
		return nil, err
	}

	rs, err := e.readTable(ctx, table)
	if err != nil {
		return nil, err
	}

	job := NewJob(Source{Kind: SourceTable, Database: db, Table: table}, f, e.now())
	m := e.meta(db, table, job.CreatedAt)

	var buf bytes.Buffer
	switch f {
	case FormatSQL:
		writeTableSQL(&buf, e.h, m, e.createStatement(ctx, table), rs)
	case FormatCSV:
		err = WriteCSV(&buf, rs)
	case FormatJSON:
		err = WriteTableJSON(&buf, db, table, job.CreatedAt, rs)
	case FormatXML:
		err = WriteXML(&buf, db, table, job.CreatedAt, rs)
	default:
		return nil, &core.ValidationError{Field: "format", Reason: "unknown export format " + string(f)}
	}
	if err != nil {
		return nil, err
	}

	e.logger.Debug("table exported", slog.String("job", job.ID.String()), slog.String("table", table), slog.Int("rows", rs.Len()))
	return newOutput(job, buf.Bytes()), nil
}

// ExportDatabase renders every table of a database as SQL or JSON.
// A table that cannot be read fails the whole export.
func (e *Exporter) ExportDatabase(ctx context.Context, database string, f Format) (*Output, error) {
	if f != FormatSQL && f != FormatJSON {
		return nil, &core.ValidationError{Field: "format", Reason: "database export supports sql and json, got " + string(f)}
	}
	db, err := e.use(ctx, database)
	if err != nil {
		return nil, err
	}

	tables := e.schema.ListTables(ctx, e.h, "")
	dumps := make([]tableDump, 0, len(tables))
	for _, t := range tables {
		rs, err := e.readTable(ctx, t)
		if err != nil {
			return nil, err
		}
		d := tableDump{Name: t, Rows: rs}
		if f == FormatSQL {
			d.Create = e.createStatement(ctx, t)
		}
		dumps = append(dumps, d)
	}

	job := NewJob(Source{Kind: SourceDatabase, Database: db}, f, e.now())
	m := e.meta(db, "", job.CreatedAt)

	var buf bytes.Buffer
	if f == FormatSQL {
		writeDatabaseSQL(&buf, e.h, m, dumps)
	} else if err := writeDatabaseJSON(&buf, m, dumps); err != nil {
		return nil, err
	}

	e.logger.Debug("database exported", slog.String("job", job.ID.String()), slog.String("database", db), slog.Int("tables", len(dumps)))
	return newOutput(job, buf.Bytes()), nil
}

// ExportQuery exports an ad-hoc query. The SQL format saves the query text
// itself; the other formats run it and render its result set.
func (e *Exporter) ExportQuery(ctx context.Context, sqlStr string, f Format) (*Output, error) {
	if sqlStr == "" {
		return nil, &core.ValidationError{Field: "sql", Reason: "is required"}
	}
	db := e.h.CurrentDatabase()
	job := NewJob(Source{Kind: SourceQuery, Database: db, SQL: sqlStr}, f, e.now())

	var buf bytes.Buffer
	if f == FormatSQL {
		writeQuerySQL(&buf, e.meta(db, "", job.CreatedAt), sqlStr)
		return newOutput(job, buf.Bytes()), nil
	}

	rs, err := e.h.Query(ctx, sqlStr)
	if err != nil {
		return nil, err
	}

	switch f {
	case FormatCSV:
		err = WriteCSV(&buf, rs)
	case FormatJSON:
		err = writeJSON(&buf, queryJSON{
			Database:     db,
			Query:        sqlStr,
			ExportedAt:   job.CreatedAt.Format(generatedLayout),
			TotalRecords: rs.Len(),
			Data:         records(rs),
		})
	case FormatXML:
		err = WriteXML(&buf, db, "query", job.CreatedAt, rs)
	default:
		return nil, &core.ValidationError{Field: "format", Reason: "unknown export format " + string(f)}
	}
	if err != nil {
		return nil, err
	}
	return newOutput(job, buf.Bytes()), nil
}
