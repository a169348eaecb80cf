package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"quill/internal/driver"
	"quill/internal/mono"
	"quill/internal/source"
	"quill/internal/symbols"
	"quill/internal/types"
)

var instantiateCmd = &cobra.Command{
	Use:   "instantiate [modules...]",
	Short: "Check modules and print the demanded specializations",
	Long: `Instantiate runs the full pipeline including monomorphisation and
prints every function and struct specialization the program demands,
with generic parameters replaced by concrete arguments.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		cfg, err := buildConfig(cmd, args)
		if err != nil {
			return err
		}
		// Specialization results cannot come from the diagnostics cache.
		cfg.CacheDir = ""
		cfg.SkipMono = false

		res, err := driver.Check(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		if rerr := reportResult(cmd, cfg, res); rerr != nil {
			return rerr
		}
		if res.Program == nil {
			return fmt.Errorf("no specializations produced")
		}
		printProgram(cmd, res.Table, res.Program)
		return nil
	},
}

func printProgram(cmd *cobra.Command, table *symbols.Table, prog *mono.Program) {
	out := cmd.OutOrStdout()
	ti := table.Types()
	strs := table.Strings()

	fmt.Fprintf(out, "functions (%d):\n", len(prog.Funcs))
	for _, f := range prog.Funcs {
		fmt.Fprintf(out, "  %s(%s) -> %s\n", f.Name, formatParams(ti, strs, f.Params), types.Format(ti, strs, f.Result))
	}
	if len(prog.Structs) > 0 {
		fmt.Fprintf(out, "structs (%d):\n", len(prog.Structs))
		for _, s := range prog.Structs {
			fmt.Fprintf(out, "  %s = %s\n", s.Name, types.Format(ti, strs, s.Type))
		}
	}
}

func formatParams(ti *types.Interner, strs *source.Interner, params []types.Param) string {
	parts := make([]string, 0, len(params))
	for _, p := range params {
		s := types.Format(ti, strs, p.Type)
		if !p.Owned {
			s = "&" + s
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, ", ")
}
