package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/carepath/internal/cli"
	"github.com/aretw0/carepath/internal/compiler"
	"github.com/aretw0/carepath/internal/presentation/graph"
	"github.com/aretw0/carepath/pkg/domain"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph <pathway|file>",
	Short: "Export a pathway as a Mermaid diagram",
	Long: `Outputs a Mermaid flowchart of a pathway. The argument is either a pathway id
from the catalog or a path to a JSON or YAML pathway document.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := resolvePathway(args[0])
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), graph.GenerateMermaid(p, nil))
		return nil
	},
}

// resolvePathway compiles arg as a document when it names a file, else looks it up.
func resolvePathway(arg string) (*domain.Pathway, error) {
	if format, ok := compiler.FormatFromPath(arg); ok {
		if data, err := os.ReadFile(arg); err == nil {
			return compiler.New(compiler.WithLogger(logger)).Compile(data, format)
		}
	}

	ctx := context.Background()
	engine, closer, err := cli.NewEngine(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	defer closer.Close()
	return engine.Pathway(ctx, arg)
}

func init() {
	rootCmd.AddCommand(graphCmd)
}
