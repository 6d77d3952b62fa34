// Package commands implements the dabiro subcommands.
package commands

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/dabiro/internal/cli/output"
	"github.com/leapstack-labs/dabiro/internal/config"
	"github.com/leapstack-labs/dabiro/pkg/core"
	"github.com/leapstack-labs/dabiro/pkg/session"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Renderer *output.Renderer
	Session  *session.Session
}

// NewCommandContext creates a CommandContext with an open session.
// Returns the context and a cleanup function that must be called (typically via defer).
func NewCommandContext(cmd *cobra.Command) (*CommandContext, func(), error) {
	cmdCtx := NewCommandContextWithoutSession(cmd)
	if err := cmdCtx.Cfg.Connection.Validate(); err != nil {
		return nil, nil, err
	}

	s, err := session.Open(cmd.Context(), cmdCtx.Cfg.ToDescriptor(), cmdCtx.Logger, session.Options{
		IdleTimeout: cmdCtx.Cfg.SessionTimeout,
	})
	if err != nil {
		return nil, nil, err
	}
	cmdCtx.Session = s

	cleanup := func() {
		_ = s.Close()
	}
	return cmdCtx, cleanup, nil
}

// NewCommandContextWithoutSession creates a CommandContext without a connection.
func NewCommandContextWithoutSession(cmd *cobra.Command) *CommandContext {
	cfg := getConfig()
	return &CommandContext{
		Cfg:      cfg,
		Logger:   config.GetLogger(cmd.Context()),
		Renderer: output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.ParseMode(cfg.Output)),
	}
}

// getConfig returns the loaded configuration, or defaults when none was loaded.
func getConfig() *config.Config {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg
	}
	cfg := &config.Config{}
	cfg.ApplyDefaults()
	return cfg
}

// parseAssignments parses col=value arguments into a record. The literal
// value NULL (any case) becomes nil.
func parseAssignments(args []string) (core.Record, error) {
	rec := make(core.Record, len(args))
	for _, arg := range args {
		col, val, ok := strings.Cut(arg, "=")
		if !ok || strings.TrimSpace(col) == "" {
			return nil, fmt.Errorf("invalid assignment %q, expected column=value", arg)
		}
		if strings.EqualFold(val, "null") {
			rec[strings.TrimSpace(col)] = nil
			continue
		}
		rec[strings.TrimSpace(col)] = val
	}
	return rec, nil
}
