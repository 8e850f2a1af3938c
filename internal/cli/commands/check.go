package commands

import (
	"context"
	"fmt"
	"runtime"

	"github.com/leapstack-labs/hybrid/internal/cli/output"
	"github.com/leapstack-labs/hybrid/pkg/hybrid"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// NewCheckCommand creates the check command.
func NewCheckCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check <file>...",
		Short: "Load kernel files and report their entry points",
		Long: `Load each file as a hybrid module: find its single top-level definition
and bind it. Files are checked concurrently. The command fails if any file
does not load.`,
		Example: `  hybrid check kernels/*.star
  hybrid check -o json addone.star`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, args)
		},
	}
	return cmd
}

func runCheck(cmd *cobra.Command, files []string) error {
	cc := NewCommandContext(cmd)
	out := checkFiles(cmd.Context(), cc.Loader, files)

	ok, err := cc.Renderer.Structured(out)
	if err != nil {
		return err
	}
	if !ok {
		renderCheckText(cc.Renderer, out)
	}

	if out.Failed > 0 {
		return fmt.Errorf("%d of %d files failed to load", out.Failed, len(files))
	}
	return nil
}

// checkFiles loads every file with bounded concurrency. Results keep the
// order of files.
func checkFiles(ctx context.Context, loader *hybrid.Loader, files []string) output.CheckOutput {
	results := make([]output.CheckResult, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, file := range files {
		g.Go(func() error {
			m, err := loader.Load(gctx, file)
			if err != nil {
				results[i] = output.CheckResult{File: file, State: stateOf(err).String(), Error: err.Error()}
				return nil
			}
			results[i] = output.CheckResult{File: file, Name: m.Name(), State: m.State().String()}
			return nil
		})
	}
	_ = g.Wait()

	out := output.CheckOutput{Results: results}
	for _, r := range results {
		if r.Error != "" {
			out.Failed++
		} else {
			out.Passed++
		}
	}
	return out
}

func renderCheckText(r *output.Renderer, out output.CheckOutput) {
	for _, res := range out.Results {
		if res.Error != "" {
			r.Error(res.Error)
			continue
		}
		r.Success(fmt.Sprintf("%s: %s", res.File, res.Name))
	}
	r.Muted(fmt.Sprintf("%d passed, %d failed", out.Passed, out.Failed))
}
