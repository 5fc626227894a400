package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/carepath/internal/cli"
	"github.com/aretw0/carepath/internal/config"
)

// Resolved by the root command before any subcommand runs.
var (
	cfg    *config.Config
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "carepath",
	Short: "carepath walks clinical pathways and scores NEWS2",
	Long: `carepath guides a clinician through decision-tree pathways for common
minor illnesses, one question at a time, and scores vital signs with NEWS2.
The same engine runs on the console, over HTTP and as an MCP server.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		configPath, _ := cmd.Flags().GetString("config")
		envFiles, _ := cmd.Flags().GetStringSlice("env-file")

		c, err := config.Load(configPath, envFiles...)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("pathways") {
			c.PathwayDir, _ = cmd.Flags().GetString("pathways")
		}
		if debug, _ := cmd.Flags().GetBool("debug"); debug {
			c.Debug = true
		}

		l, err := cli.NewLogger(c.Debug, c.LogLevel)
		if err != nil {
			return err
		}
		cfg, logger = c, l
		slog.SetDefault(l)
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("config", "carepath.yaml", "Path to a YAML configuration file")
	rootCmd.PersistentFlags().StringSlice("env-file", nil, "Dotenv files to load (default .env)")
	rootCmd.PersistentFlags().String("pathways", "", "Directory of pathway documents (default: embedded catalog)")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
}
