package commands

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/dabiro/pkg/ddl"
)

// NewDDLCommand creates the ddl command and its subcommands.
func NewDDLCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ddl",
		Short: "Create, alter and drop databases and tables",
		Long: `Run structural changes. Every change is validated and checked against
the capabilities of the dialect before any statement runs.

Column specs are comma-separated key=value pairs:
  name=id,type=INTEGER,pk,ai
  name=email,type=VARCHAR,length=255,nullable,default=none`,
	}

	cmd.AddCommand(
		newDDLSubcommand(ddl.KindCreateDatabase, "create-database <name>", "Create a database", 1, 1,
			func(args []string, _ *ddlFlags) (map[string]any, error) {
				return map[string]any{"name": args[0]}, nil
			}),
		newDDLSubcommand(ddl.KindDropDatabase, "drop-database <name>", "Drop a database", 1, 1,
			func(args []string, _ *ddlFlags) (map[string]any, error) {
				return map[string]any{"name": args[0]}, nil
			}),
		newDDLSubcommand(ddl.KindCreateTable, "create-table <table> --column spec...", "Create a table", 1, 1,
			func(args []string, f *ddlFlags) (map[string]any, error) {
				cols := make([]map[string]any, 0, len(f.columns))
				for _, spec := range f.columns {
					col, err := parseColumnSpec(spec)
					if err != nil {
						return nil, err
					}
					cols = append(cols, col)
				}
				return map[string]any{"table": args[0], "columns": cols}, nil
			}),
		newDDLSubcommand(ddl.KindAddColumn, "add-column <table> --column spec", "Add a column to a table", 1, 1,
			func(args []string, f *ddlFlags) (map[string]any, error) {
				if len(f.columns) != 1 {
					return nil, errors.New("add-column takes exactly one --column")
				}
				col, err := parseColumnSpec(f.columns[0])
				if err != nil {
					return nil, err
				}
				return map[string]any{"table": args[0], "column": col}, nil
			}),
		newDDLSubcommand(ddl.KindRenameTable, "rename <table> <new-name>", "Rename a table", 2, 2,
			func(args []string, _ *ddlFlags) (map[string]any, error) {
				return map[string]any{"table": args[0], "new_name": args[1]}, nil
			}),
		newDDLSubcommand(ddl.KindDropTable, "drop <table>", "Drop a table", 1, 1,
			func(args []string, f *ddlFlags) (map[string]any, error) {
				return map[string]any{"database": f.database, "table": args[0]}, nil
			}),
		newDDLSubcommand(ddl.KindTruncateTable, "truncate <table>", "Remove every row of a table", 1, 1,
			func(args []string, f *ddlFlags) (map[string]any, error) {
				return map[string]any{"database": f.database, "table": args[0]}, nil
			}),
		newDDLSubcommand(ddl.KindCopyTable, "copy <source> <target>", "Copy a table's structure and optionally its rows", 2, 2,
			func(args []string, f *ddlFlags) (map[string]any, error) {
				return map[string]any{"source": args[0], "target": args[1], "copy_data": f.copyData}, nil
			}),
		newDDLSubcommand(ddl.KindMoveTable, "move <source-db> <table> <target-db> [target-table]", "Move a table to another database", 3, 4,
			func(args []string, _ *ddlFlags) (map[string]any, error) {
				target := args[1]
				if len(args) == 4 {
					target = args[3]
				}
				return map[string]any{
					"source_database": args[0],
					"source_table":    args[1],
					"target_database": args[2],
					"target_table":    target,
				}, nil
			}),
	)
	return cmd
}

type ddlFlags struct {
	columns  []string
	database string
	copyData bool
}

func newDDLSubcommand(kind ddl.Kind, use, short string, minArgs, maxArgs int,
	params func([]string, *ddlFlags) (map[string]any, error)) *cobra.Command {
	f := &ddlFlags{}

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.RangeArgs(minArgs, maxArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := params(args, f)
			if err != nil {
				return err
			}
			intent, err := ddl.Decode(string(kind), p)
			if err != nil {
				return err
			}

			cmdCtx, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			res, err := ddl.NewOperator(cmdCtx.Session.Handle, cmdCtx.Logger).Execute(cmd.Context(), intent)
			renderDDLResult(cmdCtx, res)
			return err
		},
	}

	switch kind {
	case ddl.KindCreateTable, ddl.KindAddColumn:
		cmd.Flags().StringArrayVar(&f.columns, "column", nil, "Column spec (repeatable)")
		_ = cmd.MarkFlagRequired("column")
	case ddl.KindDropTable, ddl.KindTruncateTable:
		cmd.Flags().StringVar(&f.database, "database", "", "Database of the table (default: current)")
	case ddl.KindCopyTable:
		cmd.Flags().BoolVar(&f.copyData, "data", false, "Copy rows as well as structure")
	}
	return cmd
}

func renderDDLResult(cmdCtx *CommandContext, res *ddl.Result) {
	if res == nil {
		return
	}
	r := cmdCtx.Renderer
	for _, s := range res.Statements {
		label := s.SQL
		if s.Step != "" {
			label = s.Step + ": " + s.SQL
		}
		switch {
		case s.Executed:
			r.Success(label)
		case s.Err != nil:
			r.Failure(label)
		default:
			r.Println(r.Styles().Muted.Render("- skipped " + label))
		}
	}
	if res.Partial() {
		r.Warning(fmt.Sprintf("%d of %d statements took effect", res.Executed(), len(res.Statements)))
	}
}

// parseColumnSpec parses "name=id,type=INT,length=11,nullable,pk,ai,default=0".
// Bare parts following length continue it, so "length=10,2" works.
func parseColumnSpec(spec string) (map[string]any, error) {
	col := map[string]any{}
	last := ""
	for _, part := range strings.Split(spec, ",") {
		key, val, hasVal := strings.Cut(strings.TrimSpace(part), "=")
		lower := strings.ToLower(key)
		switch {
		case hasVal && (lower == "name" || lower == "type" || lower == "length" || lower == "default"):
			col[lower] = val
		case !hasVal && (lower == "nullable" || lower == "null"):
			col["nullable"] = true
		case !hasVal && (lower == "pk" || lower == "primary_key"):
			col["primary_key"] = true
		case !hasVal && (lower == "ai" || lower == "auto_increment"):
			col["auto_increment"] = true
		case last == "length":
			col["length"] = col["length"].(string) + "," + part
			continue
		case lower == "":
		default:
			return nil, fmt.Errorf("column spec %q: unknown part %q", spec, part)
		}
		last = lower
	}
	if col["name"] == nil || col["type"] == nil {
		return nil, fmt.Errorf("column spec %q: name and type are required", spec)
	}
	return col, nil
}
