package commands

import (
	"fmt"
	"os"

	"github.com/leapstack-labs/hybrid/pkg/hybrid"
	"github.com/spf13/cobra"
)

// NewWrapCommand creates the wrap command.
func NewWrapCommand() *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "wrap <src> <dest>",
		Short: "Turn raw kernel source into a saved hybrid module",
		Long: `Read raw source, construct a module from it and save the module.
The marker line is added if missing and the .star extension is appended to
dest unless already present. Source that does not load is not written.`,
		Example: `  hybrid wrap addone.py kernels/addone
  hybrid wrap raw.txt kernels/outer.star --name outer_product`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("reading %s: %w", args[0], err)
			}

			cc := NewCommandContext(cmd)
			var opts []hybrid.ModuleOption
			if name != "" {
				opts = append(opts, hybrid.WithName(name))
			}
			m, err := cc.Loader.New(cmd.Context(), string(src), opts...)
			if err != nil {
				return err
			}

			path, err := m.Save(args[1])
			if err != nil {
				return err
			}
			cc.Logger.Info("module saved", "name", m.Name(), "path", path)
			cc.Renderer.Success(fmt.Sprintf("wrote %s (%s)", path, m.Name()))
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "module name (default: the definition's name)")
	return cmd
}
