package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/carepath/internal/compiler"
	"github.com/aretw0/carepath/internal/validator"
)

var validateCmd = &cobra.Command{
	Use:   "validate [file|dir...]",
	Short: "Check pathway documents for consistency",
	Long: `Compiles each pathway document and reports structural errors: missing
branches, dangling or duplicate node ids, bad inheritance. Directories are
expanded to the documents they contain. Without arguments the --pathways
directory is checked.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		paths := args
		if len(paths) == 0 {
			if cfg.PathwayDir == "" {
				return errors.New("nothing to validate: pass files or --pathways")
			}
			paths = []string{cfg.PathwayDir}
		}

		reports, err := validator.ValidateFiles(compiler.New(compiler.WithLogger(logger)), paths)
		out := cmd.OutOrStdout()
		failed := 0
		for _, r := range reports {
			if !r.OK() {
				failed++
				fmt.Fprintf(out, "❌ %s: %v\n", r.Path, r.Err)
				continue
			}
			fmt.Fprintf(out, "✅ %s (%s, %d nodes)\n", r.Path, r.Pathway.ID, r.Pathway.Len())
			for _, w := range r.Warnings {
				fmt.Fprintf(out, "   warning: %s\n", w)
			}
		}
		if failed > 0 {
			return fmt.Errorf("validation failed for %d of %d documents", failed, len(reports))
		}
		if err != nil {
			return err
		}
		fmt.Fprintln(out, "All pathways are valid! ✅")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
