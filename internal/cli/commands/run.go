package commands

import (
	"errors"
	"fmt"

	"github.com/leapstack-labs/hybrid/internal/cli/output"
	hstarlark "github.com/leapstack-labs/hybrid/internal/starlark"
	"github.com/leapstack-labs/hybrid/pkg/ir"
	"github.com/spf13/cobra"
)

// NewRunCommand creates the run command.
func NewRunCommand() *cobra.Command {
	var placeholders []string

	cmd := &cobra.Command{
		Use:   "run <file> [arg...]",
		Short: "Call a kernel with concrete or symbolic arguments",
		Long: `Load a kernel file and call its entry point.

Arguments are Starlark literals and run the kernel natively. With
--placeholder the call receives symbolic tensors instead and returns the
op built for them.`,
		Example: `  hybrid run addone.star 5
  hybrid run outer.star '[1, 2]' '[3, 4]'
  hybrid run outer.star -p A:4 -p B:4:float32`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(placeholders) > 0 && len(args) > 1 {
				return errors.New("--placeholder cannot be combined with literal arguments")
			}

			var callArgs []any
			var err error
			if len(placeholders) > 0 {
				callArgs, err = parsePlaceholders(placeholders)
			} else {
				callArgs, err = parseArgs(args[1:])
			}
			if err != nil {
				return err
			}

			cc := NewCommandContext(cmd)
			m, err := cc.Loader.Load(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			result, err := m.Call(cmd.Context(), callArgs...)
			if err != nil {
				return err
			}

			out := output.RunOutput{Name: m.Name(), Path: "native", Result: result}
			if op, ok := result.(*ir.Op); ok {
				out.Path = "symbolic"
				out.Result = op.String()
			}

			if ok, err := cc.Renderer.Structured(out); ok || err != nil {
				return err
			}
			cc.Renderer.Println(formatResult(out.Result))
			if op, ok := result.(*ir.Op); ok && len(op.Captures) > 0 {
				cc.Renderer.Muted(fmt.Sprintf("captures: %v", op.Captures))
			}
			return nil
		},
	}

	cmd.Flags().StringArrayVarP(&placeholders, "placeholder", "p", nil, "symbolic argument NAME[:SHAPE[:DTYPE]], repeatable")
	return cmd
}

// formatResult prints native results in Starlark notation.
func formatResult(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	sv, err := hstarlark.GoToStarlark(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return sv.String()
}
