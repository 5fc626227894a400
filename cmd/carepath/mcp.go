package main

import (
	"context"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/carepath"
	"github.com/aretw0/carepath/internal/cli"
	"github.com/aretw0/carepath/pkg/adapters/mcp"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Starts the carepath engine as an MCP server over Standard Input/Output.
Agents can list pathways, walk consultations with a cursor and score NEWS2 as tools.
Logs go to Stderr so they never corrupt the JSON-RPC stream.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Ensure logs don't corrupt JSON-RPC on Stdout
		log.SetOutput(os.Stderr)

		engine, closer, err := cli.NewEngine(context.Background(), cfg, logger)
		if err != nil {
			return err
		}
		defer closer.Close()

		srv := mcp.NewServer(engine, carepath.Version, mcp.WithLogger(logger))
		logger.Info("Starting carepath MCP Server (Stdio)", "pathways", len(engine.Pathways()))
		if err := srv.ServeStdio(); err != nil {
			logger.Error("MCP Server execution failed", "error", err)
			return err
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
