package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/dabiro/pkg/query"
)

// NewImportCommand creates the import command.
func NewImportCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Execute a SQL script",
		Long: `Execute a SQL script, such as one produced by 'dabiro export', against
the current database. The script is sent as a single multi-statement
execution; use - to read it from stdin.`,
		Example: `  dabiro import shop_2024-03-09_14-05-07.sql
  cat dump.sql | dabiro import -`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			script, err := readScript(cmd, args[0])
			if err != nil {
				return err
			}

			cmdCtx, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			n, err := query.NewExecutor(cmdCtx.Session.Handle, cmdCtx.Logger).ImportSQL(cmd.Context(), script)
			if err != nil {
				return err
			}
			cmdCtx.Renderer.Success(fmt.Sprintf("Imported %s (%d row(s) affected)", args[0], n))
			return nil
		},
	}
}

func readScript(cmd *cobra.Command, path string) (string, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read script: %w", err)
	}
	return string(data), nil
}
