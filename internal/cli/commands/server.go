package commands

import (
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/dabiro/pkg/core"
	"github.com/leapstack-labs/dabiro/pkg/schema"
)

// NewServerInfoCommand creates the server-info command.
func NewServerInfoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "server-info",
		Short: "Show the server version and connection details",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmdCtx, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			h := cmdCtx.Session.Handle
			version, err := h.ServerVersion(cmd.Context())
			if err != nil {
				return err
			}
			desc := cmdCtx.Session.Descriptor
			info := serverInfo{
				Dialect:  desc.NormalizedDialect(),
				Version:  version,
				Host:     desc.Host,
				Port:     desc.Port,
				Path:     desc.FilePath(),
				User:     desc.User,
				Database: h.CurrentDatabase(),
			}
			if desc.NormalizedDialect() != core.DialectSQLite {
				info.Path = ""
			}

			r := cmdCtx.Renderer
			if handled, err := r.Value(info); handled {
				return err
			}
			rows := [][]string{
				{"Dialect", info.Dialect},
				{"Version", info.Version},
				{"Database", info.Database},
			}
			if info.Path != "" {
				rows = append(rows, []string{"Path", info.Path})
			} else {
				rows = append(rows,
					[]string{"Host", info.Host},
					[]string{"Port", strconv.Itoa(info.Port)},
					[]string{"User", info.User})
			}
			r.Table([]string{"Property", "Value"}, rows)
			return nil
		},
	}
}

type serverInfo struct {
	Dialect  string `json:"dialect" yaml:"dialect"`
	Version  string `json:"version" yaml:"version"`
	Host     string `json:"host,omitempty" yaml:"host,omitempty"`
	Port     int    `json:"port,omitempty" yaml:"port,omitempty"`
	Path     string `json:"path,omitempty" yaml:"path,omitempty"`
	User     string `json:"user,omitempty" yaml:"user,omitempty"`
	Database string `json:"database" yaml:"database"`
}

// NewDatabasesCommand creates the databases command.
func NewDatabasesCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "databases",
		Aliases: []string{"dbs"},
		Short:   "List databases visible to the connection",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmdCtx, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			dbs := schema.New(cmdCtx.Logger).ListDatabases(cmd.Context(), cmdCtx.Session.Handle)
			return cmdCtx.Renderer.Records(namesResult("database", dbs))
		},
	}
}

// NewTablesCommand creates the tables command.
func NewTablesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "tables [database]",
		Short: "List tables of a database",
		Long: `List the tables of a database. Without an argument the current
database of the connection is used.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmdCtx, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			var database string
			if len(args) == 1 {
				database = args[0]
			}
			tables := schema.New(cmdCtx.Logger).ListTables(cmd.Context(), cmdCtx.Session.Handle, database)
			return cmdCtx.Renderer.Records(namesResult("table", tables))
		},
	}
}

func namesResult(column string, names []string) core.ResultSet {
	rs := core.ResultSet{Columns: []string{column}, Rows: make([]core.Record, len(names))}
	for i, n := range names {
		rs.Rows[i] = core.Record{column: n}
	}
	return rs
}

// NewDescribeCommand creates the describe command.
func NewDescribeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "describe <table>",
		Short: "Show columns and statistics of a table",
		Example: `  dabiro describe orders
  dabiro describe orders -o yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmdCtx, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			meta := schema.New(cmdCtx.Logger).Describe(cmd.Context(), cmdCtx.Session.Handle, args[0])
			return renderDescribe(cmdCtx, meta)
		},
	}
}

type describeColumn struct {
	Name       string  `json:"name" yaml:"name"`
	Type       string  `json:"type" yaml:"type"`
	Nullable   bool    `json:"nullable" yaml:"nullable"`
	Default    *string `json:"default" yaml:"default"`
	PrimaryKey bool    `json:"primary_key" yaml:"primary_key"`
	Extra      string  `json:"extra,omitempty" yaml:"extra,omitempty"`
}

type describeOutput struct {
	Table     string           `json:"table" yaml:"table"`
	Columns   []describeColumn `json:"columns" yaml:"columns"`
	SizeBytes *int64           `json:"size_bytes" yaml:"size_bytes"`
	RowCount  *int64           `json:"row_count" yaml:"row_count"`
	Collation string           `json:"collation,omitempty" yaml:"collation,omitempty"`
	Engine    string           `json:"engine,omitempty" yaml:"engine,omitempty"`
}

func renderDescribe(cmdCtx *CommandContext, meta core.TableMetadata) error {
	out := describeOutput{
		Table:     meta.Name,
		Columns:   make([]describeColumn, len(meta.Columns)),
		SizeBytes: meta.Stats.SizeBytes,
		RowCount:  meta.Stats.RowCount,
		Collation: meta.Stats.Collation,
		Engine:    meta.Stats.Engine,
	}
	rows := make([][]string, len(meta.Columns))
	for i, c := range meta.Columns {
		out.Columns[i] = describeColumn{
			Name: c.Name, Type: c.Type, Nullable: c.Nullable,
			Default: c.Default, PrimaryKey: c.PrimaryKey, Extra: c.Extra,
		}
		def := "NULL"
		if c.Default != nil {
			def = *c.Default
		}
		rows[i] = []string{c.Name, c.Type, yesNo(c.Nullable), def, yesNo(c.PrimaryKey), c.Extra}
	}

	r := cmdCtx.Renderer
	if handled, err := r.Value(out); handled {
		return err
	}

	r.Println(r.Styles().Header.Render("Table: " + meta.Name))
	r.Table([]string{"Column", "Type", "Nullable", "Default", "Key", "Extra"}, rows)
	r.Println("")
	r.Table([]string{"Statistic", "Value"}, [][]string{
		{"Rows", formatCount(meta.Stats.RowCount)},
		{"Size", formatSize(meta.Stats.SizeBytes)},
		{"Collation", orUnknown(meta.Stats.Collation)},
		{"Engine", orUnknown(meta.Stats.Engine)},
	})
	return nil
}

func yesNo(b bool) string {
	if b {
		return "YES"
	}
	return "NO"
}

func formatCount(n *int64) string {
	if n == nil {
		return "unknown"
	}
	return humanize.Comma(*n)
}

func formatSize(n *int64) string {
	if n == nil || *n < 0 {
		return "unknown"
	}
	return humanize.IBytes(uint64(*n))
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}
