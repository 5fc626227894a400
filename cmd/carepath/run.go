package main

import (
	"errors"
	"os"

	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"github.com/aretw0/carepath/internal/cli"
	"github.com/aretw0/carepath/internal/presentation/tui"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run [pathway]",
	Short: "Run an interactive consultation",
	Long: `Walks a pathway on the console, one question at a time. Without an argument
the first pathway in the catalog is used. Type 'help' during a consultation
for the available commands.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runConsultation,
}

func runConsultation(cmd *cobra.Command, args []string) error {
	sessionID, _ := cmd.Flags().GetString("session")
	history, _ := cmd.Flags().GetString("history")
	plain, _ := cmd.Flags().GetBool("plain")
	watchMode, _ := cmd.Flags().GetBool("watch")

	if watchMode && cfg.PathwayDir == "" {
		return errors.New("--watch needs a --pathways directory")
	}

	ctx := cli.NewSignalContext(cmd.Context())
	defer ctx.Cancel()

	engine, closer, err := cli.NewEngine(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closer.Close()

	pathwayID := ""
	if len(args) > 0 {
		pathwayID = args[0]
	} else {
		entry, ok := engine.Registry().Default()
		if !ok {
			return errors.New("no pathways available")
		}
		pathwayID = entry.ID
	}

	out := cmd.OutOrStdout()
	var sessionOpts []cli.SessionOption
	if !plain && cli.IsTerminal(os.Stdout) {
		tui.PrintBanner(out)
		sessionOpts = append(sessionOpts, cli.WithStyled(termenv.ColorProfile()))
	}

	if watchMode {
		go func() {
			if err := cli.WatchPathways(ctx, cfg.PathwayDir, engine, logger, out); err != nil {
				logger.Error("Watcher stopped", "error", err)
			}
		}()
	}

	return cli.Execute(ctx, engine, cli.RunOptions{
		PathwayID: pathwayID,
		SessionID: sessionID,
		History:   history,
		Debug:     cfg.Debug,
		Logger:    logger,
	}, cmd.InOrStdin(), out, sessionOpts...)
}

func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().String("session", "", "Session id to record (default: a new UUID)")
	cmd.Flags().String("history", "", `Patient history as JSON, e.g. '{"age": 4, "penicillinAllergy": true}'`)
	cmd.Flags().Bool("plain", false, "Disable the banner and markdown styling")
	cmd.Flags().BoolP("watch", "w", false, "Reload pathways from --pathways as files change")
}

func init() {
	rootCmd.AddCommand(runCmd)
	addRunFlags(runCmd)

	// 'carepath' on its own starts a consultation.
	addRunFlags(rootCmd)
	rootCmd.Args = cobra.MaximumNArgs(1)
	rootCmd.RunE = runConsultation
}
