package commands

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/dabiro/pkg/query"
)

// BrowseOptions holds options for the browse command.
type BrowseOptions struct {
	Filters  []string
	Searches []string
	Sort     string
	Limit    int
	Offset   int
	Page     int
}

// NewBrowseCommand creates the browse command.
func NewBrowseCommand() *cobra.Command {
	opts := &BrowseOptions{}

	cmd := &cobra.Command{
		Use:   "browse <table>",
		Short: "Page through the rows of a table",
		Long: `Page through the rows of a table with optional filters, per-column
searches and sorting.

Filter operators: contains, equals, not_equals, starts_with, ends_with, regex.`,
		Example: `  dabiro browse orders --limit 20 --page 3
  dabiro browse orders --filter status:equals:paid --sort total:desc
  dabiro browse customers --search email=example.com`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBrowse(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringArrayVar(&opts.Filters, "filter", nil, "Filter as column:operator:value (repeatable)")
	cmd.Flags().StringArrayVar(&opts.Searches, "search", nil, "Column search as column=value (repeatable)")
	cmd.Flags().StringVar(&opts.Sort, "sort", "", "Sort as column[:asc|desc]")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "Rows per page (default: page_size from config)")
	cmd.Flags().IntVar(&opts.Offset, "offset", 0, "Rows to skip")
	cmd.Flags().IntVar(&opts.Page, "page", 0, "1-based page number, overrides --offset")

	return cmd
}

// browseParams converts flag values into the request-layer parameter map.
func browseParams(table string, opts *BrowseOptions) (map[string]any, error) {
	params := map[string]any{
		"table":  table,
		"limit":  opts.Limit,
		"offset": opts.Offset,
	}
	if opts.Page > 0 {
		params["page"] = opts.Page
		params["offset"] = 0
	}

	filters := make([]map[string]any, 0, len(opts.Filters))
	for _, f := range opts.Filters {
		parts := strings.SplitN(f, ":", 3)
		if len(parts) != 3 || parts[0] == "" {
			return nil, fmt.Errorf("invalid filter %q, expected column:operator:value", f)
		}
		filters = append(filters, map[string]any{"column": parts[0], "operator": parts[1], "value": parts[2]})
	}
	params["filters"] = filters

	if len(opts.Searches) > 0 {
		searches, err := parseAssignments(opts.Searches)
		if err != nil {
			return nil, err
		}
		params["column_searches"] = searches
	}

	if opts.Sort != "" {
		col, dir, _ := strings.Cut(opts.Sort, ":")
		params["sort"] = map[string]any{"column": col, "direction": dir}
	}
	return params, nil
}

func runBrowse(cmd *cobra.Command, table string, opts *BrowseOptions) error {
	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	params, err := browseParams(table, opts)
	if err != nil {
		return err
	}
	req, err := query.DecodeRequest(params, cmdCtx.Cfg.PageSize)
	if err != nil {
		return err
	}

	page, err := query.NewExecutor(cmdCtx.Session.Handle, cmdCtx.Logger).Browse(cmd.Context(), req)
	if err != nil {
		return err
	}

	r := cmdCtx.Renderer
	if err := r.Records(page.Records); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(r.ErrWriter(), "Page %d of %d (%d total rows)\n", page.CurrentPage, page.TotalPages, page.Total)
	return nil
}

// NewInsertCommand creates the insert command.
func NewInsertCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "insert <table> column=value...",
		Short:   "Insert a row",
		Example: `  dabiro insert customers name=Dana email=dana@example.com notes=NULL`,
		Args:    cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			rec, err := parseAssignments(args[1:])
			if err != nil {
				return err
			}
			return runWrite(cmd, "Inserted", func(e *query.Executor) (int64, error) {
				return e.Insert(cmd.Context(), args[0], rec)
			})
		},
	}
}

// NewUpdateCommand creates the update command.
func NewUpdateCommand() *cobra.Command {
	var set, where []string

	cmd := &cobra.Command{
		Use:   "update <table> --set column=value... --where column=value...",
		Short: "Update rows matching a row image",
		Long: `Update every row whose columns equal the --where values. Give the full
original row image to target a single row; duplicate rows are updated together.`,
		Example: `  dabiro update customers --set email=new@example.com --where name=Bob --where email=bob@example.com`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rec, err := parseAssignments(set)
			if err != nil {
				return err
			}
			old, err := parseAssignments(where)
			if err != nil {
				return err
			}
			for col, v := range old {
				rec[query.OldPrefix+col] = v
			}
			return runWrite(cmd, "Updated", func(e *query.Executor) (int64, error) {
				return e.Update(cmd.Context(), args[0], rec)
			})
		},
	}

	cmd.Flags().StringArrayVar(&set, "set", nil, "New value as column=value (repeatable)")
	cmd.Flags().StringArrayVar(&where, "where", nil, "Original value as column=value (repeatable)")
	_ = cmd.MarkFlagRequired("set")
	_ = cmd.MarkFlagRequired("where")
	return cmd
}

// NewDeleteCommand creates the delete command.
func NewDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "delete <table> column=value...",
		Short:   "Delete rows matching a row image",
		Example: `  dabiro delete orders id=3`,
		Args:    cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			match, err := parseAssignments(args[1:])
			if err != nil {
				return err
			}
			return runWrite(cmd, "Deleted", func(e *query.Executor) (int64, error) {
				return e.Delete(cmd.Context(), args[0], match)
			})
		},
	}
}

func runWrite(cmd *cobra.Command, verb string, fn func(*query.Executor) (int64, error)) error {
	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	n, err := fn(query.NewExecutor(cmdCtx.Session.Handle, cmdCtx.Logger))
	if err != nil {
		return err
	}
	cmdCtx.Renderer.Success(fmt.Sprintf("%s %d row(s)", verb, n))
	return nil
}

// NewExecCommand creates the exec command.
func NewExecCommand() *cobra.Command {
	var input string

	cmd := &cobra.Command{
		Use:   "exec [SQL]",
		Short: "Run an ad-hoc SQL statement",
		Long: `Run one SQL statement. Statements that return rows are rendered as a
result set; others report the number of rows affected.

The statement is read from the arguments, from --input, or from stdin.`,
		Example: `  dabiro exec "SELECT COUNT(*) FROM orders"
  echo "DELETE FROM orders WHERE total = 0" | dabiro exec`,
		RunE: func(cmd *cobra.Command, args []string) error {
			sqlStr, err := readSQL(cmd, args, input)
			if err != nil {
				return err
			}
			cmdCtx, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()
			return runStatement(cmd, cmdCtx, sqlStr)
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "", "Read SQL from file")
	return cmd
}

func runStatement(cmd *cobra.Command, cmdCtx *CommandContext, sqlStr string) error {
	res, err := query.NewExecutor(cmdCtx.Session.Handle, cmdCtx.Logger).RunStatement(cmd.Context(), sqlStr)
	if err != nil {
		return err
	}
	if res.HasRows() {
		return cmdCtx.Renderer.Records(*res.Rows)
	}
	cmdCtx.Renderer.Success(fmt.Sprintf("%d row(s) affected", res.RowsAffected))
	return nil
}

// readSQL determines the SQL source: arguments, a file, or piped stdin.
func readSQL(cmd *cobra.Command, args []string, input string) (string, error) {
	switch {
	case len(args) > 0:
		return strings.Join(args, " "), nil
	case input != "":
		content, err := os.ReadFile(input)
		if err != nil {
			return "", fmt.Errorf("failed to read file: %w", err)
		}
		return string(content), nil
	default:
		in := cmd.InOrStdin()
		if f, ok := in.(*os.File); ok && isTerminal(f) {
			return "", fmt.Errorf("no SQL given (pass it as an argument, with --input, or on stdin)")
		}
		content, err := io.ReadAll(in)
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		if strings.TrimSpace(string(content)) == "" {
			return "", fmt.Errorf("no SQL given")
		}
		return string(content), nil
	}
}
