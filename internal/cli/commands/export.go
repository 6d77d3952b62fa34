package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/dabiro/pkg/export"
)

// ExportOptions holds options shared by the export subcommands.
type ExportOptions struct {
	Format   string
	Out      string
	Database string
	Input    string
}

// NewExportCommand creates the export command.
func NewExportCommand() *cobra.Command {
	opts := &ExportOptions{}

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export a table, a database or a query result",
		Long: `Export data as sql, csv, json or xml. Whole databases support sql and json.

The file is written to the current directory under a generated name
(<db>_<table>_<timestamp>.<ext>). Use --out to pick a directory or file,
or --out - for stdout.`,
		Example: `  dabiro export table orders --format csv
  dabiro export database shop --format sql --out backups/
  dabiro export query "SELECT * FROM orders WHERE total > 100" --format json --out -`,
	}

	cmd.PersistentFlags().StringVarP(&opts.Format, "format", "f", "sql", "Export format: sql, csv, json, xml")
	cmd.PersistentFlags().StringVar(&opts.Out, "out", "", "Output directory or file, - for stdout")

	table := &cobra.Command{
		Use:   "table <table>",
		Short: "Export every row of a table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd, opts, func(e *export.Exporter, f export.Format) (*export.Output, error) {
				return e.ExportTable(cmd.Context(), opts.Database, args[0], f)
			})
		},
	}
	table.Flags().StringVar(&opts.Database, "database", "", "Database of the table (default: current)")

	database := &cobra.Command{
		Use:   "database [name]",
		Short: "Export every table of a database",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var name string
			if len(args) == 1 {
				name = args[0]
			}
			return runExport(cmd, opts, func(e *export.Exporter, f export.Format) (*export.Output, error) {
				return e.ExportDatabase(cmd.Context(), name, f)
			})
		},
	}

	queryCmd := &cobra.Command{
		Use:   "query [SQL]",
		Short: "Export the result of a query",
		Long: `Export the result of a query as csv, json or xml. With --format sql the
query text itself is saved.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			sqlStr, err := readSQL(cmd, args, opts.Input)
			if err != nil {
				return err
			}
			return runExport(cmd, opts, func(e *export.Exporter, f export.Format) (*export.Output, error) {
				return e.ExportQuery(cmd.Context(), sqlStr, f)
			})
		},
	}
	queryCmd.Flags().StringVarP(&opts.Input, "input", "i", "", "Read SQL from file")

	cmd.AddCommand(table, database, queryCmd)
	return cmd
}

func runExport(cmd *cobra.Command, opts *ExportOptions, run func(*export.Exporter, export.Format) (*export.Output, error)) error {
	f, err := export.ParseFormat(opts.Format)
	if err != nil {
		return err
	}

	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	out, err := run(export.NewExporter(cmdCtx.Session.Handle, cmdCtx.Logger), f)
	if err != nil {
		return err
	}

	if opts.Out == "-" {
		_, err := cmd.OutOrStdout().Write(out.Data)
		return err
	}

	path := exportPath(opts.Out, out.Filename)
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := os.WriteFile(path, out.Data, 0o600); err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}
	cmdCtx.Logger.Debug("export written", "job", out.Job.ID, "path", path, "mime", out.MIMEType)
	cmdCtx.Renderer.Success(fmt.Sprintf("Wrote %s (%s)", path, humanize.Bytes(uint64(len(out.Data)))))
	return nil
}

// exportPath resolves --out: empty means the generated name in the current
// directory, an existing directory or a trailing separator means the generated
// name inside it, anything else is the file path.
func exportPath(out, filename string) string {
	if out == "" {
		return filename
	}
	if fi, err := os.Stat(out); err == nil && fi.IsDir() {
		return filepath.Join(out, filename)
	}
	if last := out[len(out)-1]; last == '/' || last == filepath.Separator {
		return filepath.Join(out, filename)
	}
	return out
}
