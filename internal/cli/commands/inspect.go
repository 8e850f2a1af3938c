package commands

import (
	"strconv"
	"strings"

	"github.com/leapstack-labs/hybrid/internal/cli/output"
	"github.com/leapstack-labs/hybrid/pkg/hybrid"
	"github.com/leapstack-labs/hybrid/pkg/script"
	"github.com/spf13/cobra"
)

// NewInspectCommand creates the inspect command.
func NewInspectCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect <file>",
		Short: "Show a kernel's entry point and module globals",
		Long: `Load a kernel file and describe the module: its name, signature,
parameters with their defaults, and the globals its bound unit exports.`,
		Example: `  hybrid inspect addone.star
  hybrid inspect -o yaml addone.star`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cc := NewCommandContext(cmd)
			m, err := cc.Loader.Load(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			info := moduleInfo(args[0], m)
			if ok, err := cc.Renderer.Structured(info); ok || err != nil {
				return err
			}
			renderInspectText(cc.Renderer, info, m.Definition())
			return nil
		},
	}
	return cmd
}

func moduleInfo(file string, m *hybrid.Module) output.ModuleInfo {
	return output.ModuleInfo{
		Name:      m.Name(),
		File:      file,
		Signature: m.Signature(),
		Params:    m.Params(),
		Required:  m.Definition().RequiredParams(),
		Globals:   m.Environment().Names(),
		UnitID:    m.Unit().ID.String(),
		State:     m.State().String(),
	}
}

func renderInspectText(r *output.Renderer, info output.ModuleInfo, def *script.FuncDef) {
	r.Header(1, info.Name)
	r.Println(output.FormatKeyValue("File", info.File))
	r.Println(output.FormatKeyValue("Signature", info.Signature))
	r.Println(output.FormatKeyValue("Globals", strings.Join(info.Globals, ", ")))
	r.Println(output.FormatKeyValue("Unit", info.UnitID))
	r.Println("")

	if len(def.Params) == 0 {
		r.Muted("no parameters")
		return
	}
	rows := make([][]string, len(def.Params))
	for i, p := range def.Params {
		dflt := "-"
		if p.Default != nil {
			dflt = script.ExprString(p.Default)
		}
		rows[i] = []string{strconv.Itoa(i), p.Name, dflt}
	}
	r.Table([]string{"#", "Param", "Default"}, rows)
}
