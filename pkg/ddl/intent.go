// Package ddl executes structural changes: databases, tables and columns.
//
// Each Intent is validated and checked against the dialect's capabilities
// before any statement runs. Statements are not wrapped in a transaction and
// commit as the engine's autocommit dictates; multi-statement intents
// (CopyTable with data, cross-database MoveTable) can stop partway and report
// what already ran.
package ddl

import (
	"github.com/leapstack-labs/dabiro/pkg/core"
)

// Kind names an intent type.
type Kind string

// Intent kinds.
const (
	KindCreateDatabase Kind = "create_database"
	KindDropDatabase   Kind = "drop_database"
	KindCreateTable    Kind = "create_table"
	KindAddColumn      Kind = "add_column"
	KindRenameTable    Kind = "rename_table"
	KindDropTable      Kind = "drop_table"
	KindTruncateTable  Kind = "truncate_table"
	KindCopyTable      Kind = "copy_table"
	KindMoveTable      Kind = "move_table"
)

// Intent is one structural change.
type Intent interface {
	Kind() Kind
	Validate() error
}

func required(field, value string) error {
	if value == "" {
		return &core.ValidationError{Field: field, Reason: "is required"}
	}
	return nil
}

// CreateDatabase creates a database.
type CreateDatabase struct {
	Name string `mapstructure:"name"`
}

func (CreateDatabase) Kind() Kind { return KindCreateDatabase }

func (i CreateDatabase) Validate() error { return required("name", i.Name) }

// DropDatabase drops a database.
type DropDatabase struct {
	Name string `mapstructure:"name"`
}

func (DropDatabase) Kind() Kind { return KindDropDatabase }

func (i DropDatabase) Validate() error { return required("name", i.Name) }

// CreateTable creates a table from column definitions.
type CreateTable struct {
	Table   string           `mapstructure:"table"`
	Columns []core.ColumnDef `mapstructure:"columns"`
}

func (CreateTable) Kind() Kind { return KindCreateTable }

func (i CreateTable) Validate() error {
	if err := required("table", i.Table); err != nil {
		return err
	}
	if len(i.Columns) == 0 {
		return &core.ValidationError{Field: "columns", Reason: "at least one column is required"}
	}
	for _, c := range i.Columns {
		if err := c.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// AddColumn adds a column to a table.
type AddColumn struct {
	Table  string         `mapstructure:"table"`
	Column core.ColumnDef `mapstructure:"column"`
}

func (AddColumn) Kind() Kind { return KindAddColumn }

func (i AddColumn) Validate() error {
	if err := required("table", i.Table); err != nil {
		return err
	}
	return i.Column.Validate()
}

// RenameTable renames a table within the current database.
type RenameTable struct {
	Table   string `mapstructure:"table"`
	NewName string `mapstructure:"new_name"`
}

func (RenameTable) Kind() Kind { return KindRenameTable }

func (i RenameTable) Validate() error {
	if err := required("table", i.Table); err != nil {
		return err
	}
	return required("new_name", i.NewName)
}

// DropTable drops a table. An empty Database means the current one.
type DropTable struct {
	Database string `mapstructure:"database"`
	Table    string `mapstructure:"table"`
}

func (DropTable) Kind() Kind { return KindDropTable }

func (i DropTable) Validate() error { return required("table", i.Table) }

// TruncateTable removes every row of a table. On SQLite this is a plain
// DELETE: triggers fire and AUTOINCREMENT counters are kept.
type TruncateTable struct {
	Database string `mapstructure:"database"`
	Table    string `mapstructure:"table"`
}

func (TruncateTable) Kind() Kind { return KindTruncateTable }

func (i TruncateTable) Validate() error { return required("table", i.Table) }

// CopyTable copies a table's structure, and optionally its rows, to a new
// table in the current database.
type CopyTable struct {
	Source   string `mapstructure:"source"`
	Target   string `mapstructure:"target"`
	CopyData bool   `mapstructure:"copy_data"`
}

func (CopyTable) Kind() Kind { return KindCopyTable }

func (i CopyTable) Validate() error {
	if err := required("source", i.Source); err != nil {
		return err
	}
	if err := required("target", i.Target); err != nil {
		return err
	}
	if i.Source == i.Target {
		return &core.ValidationError{Field: "target", Reason: "must differ from source"}
	}
	return nil
}

// MoveTable moves a table, possibly to another database. An empty target
// table keeps the source name; an empty database means the current one.
type MoveTable struct {
	SourceDatabase string `mapstructure:"source_database"`
	SourceTable    string `mapstructure:"source_table"`
	TargetDatabase string `mapstructure:"target_database"`
	TargetTable    string `mapstructure:"target_table"`
}

func (MoveTable) Kind() Kind { return KindMoveTable }

func (i MoveTable) Validate() error {
	if err := required("source_table", i.SourceTable); err != nil {
		return err
	}
	if i.TargetDatabase == "" && i.TargetTable == "" {
		return &core.ValidationError{Field: "target", Reason: "a target database or table is required"}
	}
	return nil
}
