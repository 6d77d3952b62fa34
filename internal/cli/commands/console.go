package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/leapstack-labs/dabiro/pkg/schema"
	"github.com/leapstack-labs/dabiro/pkg/session"
)

const (
	primaryPrompt      = "dabiro> "
	continuationPrompt = "   ...> "
)

// NewConsoleCommand creates the console command.
func NewConsoleCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "console",
		Short: "Interactive SQL console",
		Long: `Start an interactive SQL console on the configured connection.

Statements end with a semicolon and may span lines. Dot-commands:
.tables, .databases, .use <db>, .describe <table>, .help, .quit`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmdCtx, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer func() { cleanup() }()

			c := &console{cmd: cmd, cmdCtx: cmdCtx, now: time.Now}
			cleanup = func() { _ = c.cmdCtx.Session.Close() }
			return c.run()
		},
	}
}

type console struct {
	cmd    *cobra.Command
	cmdCtx *CommandContext
	now    func() time.Time
	buf    strings.Builder
}

func (c *console) run() error {
	ctx := c.cmd.Context()

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          c.prompt(),
		HistoryFile:     historyFile(c.cmdCtx.Cfg.HistoryFile),
		AutoComplete:    c.completer(ctx),
		InterruptPrompt: "^C",
		EOFPrompt:       ".quit",
	})
	if err != nil {
		return fmt.Errorf("failed to initialize console: %w", err)
	}
	defer func() { _ = rl.Close() }()

	version, _ := c.cmdCtx.Session.Handle.ServerVersion(ctx)
	c.cmdCtx.Renderer.Printf("dabiro console (%s %s)\n", c.cmdCtx.Session.Descriptor.NormalizedDialect(), version)
	c.cmdCtx.Renderer.Println("Type .help for commands, .quit to exit")
	c.cmdCtx.Renderer.Println("")

	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			c.buf.Reset()
			rl.SetPrompt(c.prompt())
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		quit, refresh := c.handleLine(ctx, line)
		if quit {
			return nil
		}
		if refresh {
			rl.Config.AutoComplete = c.completer(ctx)
		}
		if c.buf.Len() > 0 {
			rl.SetPrompt(continuationPrompt)
		} else {
			rl.SetPrompt(c.prompt())
		}
	}
}

func (c *console) prompt() string {
	if db := c.cmdCtx.Session.Handle.CurrentDatabase(); db != "" {
		return "dabiro:" + db + "> "
	}
	return primaryPrompt
}

// handleLine processes one input line. It reports whether the console should
// exit and whether the table list may have changed.
func (c *console) handleLine(ctx context.Context, line string) (quit, refresh bool) {
	line = strings.TrimSpace(line)
	if line == "" {
		return false, false
	}
	if c.buf.Len() == 0 && strings.HasPrefix(line, ".") {
		return c.dotCommand(ctx, line)
	}

	c.buf.WriteString(line)
	if !strings.HasSuffix(line, ";") {
		c.buf.WriteString("\n")
		return false, false
	}
	stmt := strings.TrimSuffix(c.buf.String(), ";")
	c.buf.Reset()

	if err := c.ensureSession(ctx); err != nil {
		c.printError(err)
		return false, false
	}
	c.cmdCtx.Session.Touch()
	if err := runStatement(c.cmd, c.cmdCtx, stmt); err != nil {
		c.printError(err)
	}
	c.cmdCtx.Renderer.Println("")
	return false, true
}

// ensureSession reopens the session after the idle timeout has passed.
func (c *console) ensureSession(ctx context.Context) error {
	s := c.cmdCtx.Session
	if !s.Expired(c.now()) {
		return nil
	}
	database := s.Handle.CurrentDatabase()
	_ = s.Close()

	c.cmdCtx.Renderer.Warning("session expired after idle timeout, reconnecting")
	fresh, err := session.Open(ctx, s.Descriptor, c.cmdCtx.Logger, session.Options{
		IdleTimeout: c.cmdCtx.Cfg.SessionTimeout,
		Now:         c.now,
	})
	if err != nil {
		return err
	}
	c.cmdCtx.Session = fresh
	if database != "" && database != fresh.Handle.CurrentDatabase() {
		return fresh.Handle.UseDatabase(ctx, database)
	}
	return nil
}

func (c *console) dotCommand(ctx context.Context, line string) (quit, refresh bool) {
	parts := strings.Fields(line)
	r := c.cmdCtx.Renderer
	intro := schema.New(c.cmdCtx.Logger)

	switch strings.ToLower(parts[0]) {
	case ".quit", ".exit":
		return true, false
	case ".help":
		printConsoleHelp(r.Writer())
		return false, false
	case ".clear":
		r.Printf("\033[H\033[2J")
		return false, false
	}

	if err := c.ensureSession(ctx); err != nil {
		c.printError(err)
		return false, false
	}
	c.cmdCtx.Session.Touch()
	h := c.cmdCtx.Session.Handle

	switch strings.ToLower(parts[0]) {
	case ".tables":
		if err := r.Records(namesResult("table", intro.ListTables(ctx, h, ""))); err != nil {
			c.printError(err)
		}

	case ".databases":
		if err := r.Records(namesResult("database", intro.ListDatabases(ctx, h))); err != nil {
			c.printError(err)
		}

	case ".use":
		if len(parts) < 2 {
			_, _ = fmt.Fprintln(r.ErrWriter(), "Usage: .use <database>")
			return false, false
		}
		if err := h.UseDatabase(ctx, parts[1]); err != nil {
			c.printError(err)
			return false, false
		}
		r.Success("Using database " + h.CurrentDatabase())
		return false, true

	case ".describe", ".schema":
		if len(parts) < 2 {
			_, _ = fmt.Fprintln(r.ErrWriter(), "Usage: .describe <table>")
			return false, false
		}
		if err := renderDescribe(c.cmdCtx, intro.Describe(ctx, h, parts[1])); err != nil {
			c.printError(err)
		}

	default:
		_, _ = fmt.Fprintf(r.ErrWriter(), "Unknown command: %s (type .help for commands)\n", parts[0])
	}
	return false, false
}

func (c *console) printError(err error) {
	_, _ = fmt.Fprintf(c.cmdCtx.Renderer.ErrWriter(), "Error: %v\n", err)
}

func printConsoleHelp(w io.Writer) {
	help := `
Commands:
  .help               Show this help message
  .tables             List tables of the current database
  .databases          List databases
  .use <database>     Switch the current database
  .describe <table>   Show columns and statistics of a table
  .clear              Clear the screen
  .quit / .exit       Exit the console

Tips:
  - SQL statements must end with a semicolon (;)
  - Use arrow keys to navigate history
  - Tab completion works for table names
`
	_, _ = fmt.Fprintln(w, help)
}

// completer creates a readline completer for table names and dot-commands.
func (c *console) completer(ctx context.Context) *readline.PrefixCompleter {
	tables := schema.New(c.cmdCtx.Logger).ListTables(ctx, c.cmdCtx.Session.Handle, "")

	tableItems := make([]readline.PrefixCompleterInterface, 0, len(tables))
	for _, t := range tables {
		tableItems = append(tableItems, readline.PcItem(t))
	}

	items := append([]readline.PrefixCompleterInterface{}, tableItems...)
	items = append(items,
		readline.PcItem(".help"),
		readline.PcItem(".tables"),
		readline.PcItem(".databases"),
		readline.PcItem(".use"),
		readline.PcItem(".describe", tableItems...),
		readline.PcItem(".clear"),
		readline.PcItem(".quit"),
		readline.PcItem(".exit"),
	)
	return readline.NewPrefixCompleter(items...)
}

// historyFile returns the configured history path or ~/.dabiro_history.
func historyFile(configured string) string {
	if configured != "" {
		return configured
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".dabiro_history")
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
