package commands

import (
	"errors"
	"log/slog"

	"github.com/leapstack-labs/hybrid/internal/cli/config"
	"github.com/leapstack-labs/hybrid/internal/cli/output"
	"github.com/leapstack-labs/hybrid/pkg/hybrid"
	"github.com/spf13/cobra"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Loader   *hybrid.Loader
	Renderer *output.Renderer
}

// NewCommandContext creates a CommandContext with a Loader configured from
// the command's config.
func NewCommandContext(cmd *cobra.Command) *CommandContext {
	cfg := config.GetConfig(cmd.Context())
	logger := config.GetLogger(cmd.Context())

	loader := hybrid.NewLoader(
		hybrid.WithLogger(logger),
		hybrid.WithTempDir(cfg.TempDir),
		hybrid.WithMaxSteps(cfg.MaxSteps),
	)

	mode := output.Mode(cfg.Output)
	r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), mode)

	return &CommandContext{
		Cfg:      cfg,
		Logger:   logger,
		Loader:   loader,
		Renderer: r,
	}
}

// Helper functions shared across commands

// stateOf reports the loader state a construction error was raised in.
func stateOf(err error) hybrid.State {
	var le *hybrid.LoadError
	if errors.As(err, &le) {
		return le.State
	}
	return hybrid.Uninitialized
}
