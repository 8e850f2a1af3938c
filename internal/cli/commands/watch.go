package commands

import (
	"context"
	"fmt"

	"github.com/leapstack-labs/hybrid/internal/watch"
	"github.com/spf13/cobra"
)

// NewWatchCommand creates the watch command.
func NewWatchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch <file> [arg...]",
		Short: "Reload a kernel whenever it changes",
		Long: `Load a kernel file, then reload it each time it is written. With
arguments, the kernel is also called natively after every successful load.
Runs until interrupted.`,
		Example: `  hybrid watch addone.star
  hybrid watch addone.star 5 --watch-debounce 250ms`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			callArgs, err := parseArgs(args[1:])
			if err != nil {
				return err
			}

			cc := NewCommandContext(cmd)
			w, err := watch.New(args[0], cc.Cfg.WatchDebounce, cc.Logger)
			if err != nil {
				return err
			}

			reload := func(ctx context.Context) {
				m, err := cc.Loader.Load(ctx, args[0])
				if err != nil {
					cc.Renderer.Error(err.Error())
					return
				}
				if len(args) == 1 {
					cc.Renderer.Success(fmt.Sprintf("%s: %s", args[0], m.Signature()))
					return
				}
				result, err := m.Call(ctx, callArgs...)
				if err != nil {
					cc.Renderer.Error(err.Error())
					return
				}
				cc.Renderer.Success(fmt.Sprintf("%s = %s", m.Signature(), formatResult(result)))
			}

			reload(cmd.Context())
			cc.Renderer.Muted("watching " + w.Path())
			return w.Run(cmd.Context(), reload)
		},
	}

	cmd.Flags().Duration("watch-debounce", 0, "quiet period before reloading (default 100ms)")
	return cmd
}
