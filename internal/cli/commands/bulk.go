package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/dabiro/pkg/bulk"
	"github.com/leapstack-labs/dabiro/pkg/core"
)

// NewBulkCommand creates the bulk command.
func NewBulkCommand() *cobra.Command {
	var database string

	cmd := &cobra.Command{
		Use:   "bulk <drop|truncate> <target>...",
		Short: "Drop or truncate many tables or databases",
		Long: `Apply drop or truncate to each target in turn. A failing target does not
stop the others; the summary lists every failure.

With --database the targets are tables of that database. Without it, drop
targets databases and truncate targets tables of the current database.`,
		Example: `  dabiro bulk truncate --database shop orders order_items
  dabiro bulk drop scratch_1 scratch_2`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			action, err := bulk.ParseAction(args[0])
			if err != nil {
				return err
			}

			cmdCtx, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			res := bulk.NewEngine(cmdCtx.Session.Handle, cmdCtx.Logger).Apply(cmd.Context(), action, database, args[1:])
			return renderBulkResult(cmdCtx, action, res)
		},
	}

	cmd.Flags().StringVar(&database, "database", "", "Database whose tables are targeted")
	return cmd
}

type bulkFailure struct {
	Target string `json:"target" yaml:"target"`
	Error  string `json:"error" yaml:"error"`
}

type bulkOutput struct {
	Action    string        `json:"action" yaml:"action"`
	Succeeded int           `json:"succeeded" yaml:"succeeded"`
	Failures  []bulkFailure `json:"failures" yaml:"failures"`
	Message   string        `json:"message" yaml:"message"`
}

func renderBulkResult(cmdCtx *CommandContext, action bulk.Action, res core.BulkResult) error {
	msg := bulk.Message(action, res)
	out := bulkOutput{Action: string(action), Succeeded: res.Succeeded, Failures: []bulkFailure{}, Message: msg}
	for _, f := range res.Failures {
		out.Failures = append(out.Failures, bulkFailure{Target: f.Target, Error: f.Err.Error()})
	}

	r := cmdCtx.Renderer
	if handled, err := r.Value(out); handled {
		return err
	}
	if res.OK() {
		r.Success(msg)
		return nil
	}
	r.Failure(msg)
	return fmt.Errorf("%d of %d targets failed", len(res.Failures), len(res.Failures)+res.Succeeded)
}

// NewSearchCommand creates the search command.
func NewSearchCommand() *cobra.Command {
	var database string
	var limit int

	cmd := &cobra.Command{
		Use:   "search <term>",
		Short: "Search every text column of every table",
		Long: `Search all text-like columns of every table for a substring. Tables that
fail to query are skipped; tables with no matches are omitted.`,
		Example: `  dabiro search alice
  dabiro search "@example.com" --database shop --limit 10`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmdCtx, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			if limit <= 0 {
				limit = cmdCtx.Cfg.SearchLimit
			}
			engine := bulk.NewEngine(cmdCtx.Session.Handle, cmdCtx.Logger, bulk.WithSearchLimit(limit))
			matches, err := engine.Search(cmd.Context(), args[0], database)
			if err != nil {
				return err
			}
			return renderMatches(cmdCtx, matches)
		},
	}

	cmd.Flags().StringVar(&database, "database", "", "Database to search (default: current)")
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum rows per table (default: search_limit from config)")
	return cmd
}

type matchOutput struct {
	Table   string        `json:"table" yaml:"table"`
	Columns []string      `json:"columns" yaml:"columns"`
	Rows    []core.Record `json:"rows" yaml:"rows"`
}

func renderMatches(cmdCtx *CommandContext, matches []bulk.TableMatch) error {
	out := make([]matchOutput, len(matches))
	for i, m := range matches {
		out[i] = matchOutput{Table: m.Table, Columns: m.Columns, Rows: m.Rows.Rows}
	}

	r := cmdCtx.Renderer
	if handled, err := r.Value(out); handled {
		return err
	}
	if len(matches) == 0 {
		r.Println("No matches")
		return nil
	}
	for _, m := range matches {
		r.Println(r.Styles().Header.Render(fmt.Sprintf("%s (%d)", m.Table, len(m.Rows.Rows))))
		if err := r.Records(m.Rows); err != nil {
			return err
		}
		r.Println("")
	}
	return nil
}
