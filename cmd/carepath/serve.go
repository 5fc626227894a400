package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/aretw0/carepath"
	"github.com/aretw0/carepath/internal/cli"
	httpadapter "github.com/aretw0/carepath/pkg/adapters/http"
	"github.com/aretw0/carepath/pkg/adapters/inference"
	"github.com/aretw0/carepath/pkg/domain"
	"github.com/aretw0/carepath/pkg/observability"
)

const shutdownTimeout = 5 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the stateless HTTP server",
	Long: `Starts the carepath engine in stateless server mode, exposing a JSON API over HTTP.
Consultations travel as cursors in the request body; the server keeps no sessions.
The API is described at /openapi.yaml and browsable at /swagger.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Flags().Changed("port") {
			cfg.Port, _ = cmd.Flags().GetInt("port")
		}
		origins, _ := cmd.Flags().GetStringSlice("allow-origin")
		watchMode, _ := cmd.Flags().GetBool("watch")

		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()

		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		metrics := observability.NewMetrics(reg)

		var hooks domain.LifecycleHooks
		if cfg.Debug {
			hooks = cli.DebugHooks(logger)
		}
		engine, closer, err := cli.NewEngine(ctx, cfg, logger,
			carepath.WithLifecycleHooks(metrics.Hooks(hooks)),
			carepath.WithScoreObserver(metrics.ObserveNEWS2),
		)
		if err != nil {
			return err
		}
		defer closer.Close()

		classifier := inference.New(cfg.BinaryEndpoint, cfg.MulticlassEndpoint,
			inference.WithTimeout(cfg.InferenceTimeout),
			inference.WithLogger(logger),
		)
		handler, err := httpadapter.NewHandler(engine,
			httpadapter.WithClassifier(classifier),
			httpadapter.WithMetrics(metrics, reg),
			httpadapter.WithAllowedOrigins(origins...),
			httpadapter.WithLogger(logger),
		)
		if err != nil {
			return err
		}

		if watchMode {
			if cfg.PathwayDir == "" {
				return errors.New("--watch needs a --pathways directory")
			}
			go func() {
				if err := cli.WatchPathways(ctx, cfg.PathwayDir, engine, logger, nil); err != nil {
					logger.Error("Watcher stopped", "error", err)
				}
			}()
		}

		srv := &http.Server{
			Addr:              cfg.Addr(),
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		}

		// Channel to listen for errors coming from the listener.
		serverErrors := make(chan error, 1)
		go func() {
			logger.Info("Starting carepath server", "addr", srv.Addr, "pathways", len(engine.Pathways()), "dir", cfg.PathwayDir)
			serverErrors <- srv.ListenAndServe()
		}()

		// Blocking main and waiting for shutdown.
		select {
		case err := <-serverErrors:
			return err
		case <-ctx.Done():
			logger.Info("Start shutdown", "signal", ctx.Signal())

			// Give outstanding requests a deadline for completion.
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()

			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Error("Graceful shutdown did not complete", "timeout", shutdownTimeout, "error", err)
				if err := srv.Close(); err != nil {
					return err
				}
			}
			logger.Info("carepath server stopped gracefully")
			return nil
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntP("port", "p", 8080, "Port to listen on (overrides config)")
	serveCmd.Flags().StringSlice("allow-origin", nil, "CORS allowed origins (default *)")
	serveCmd.Flags().BoolP("watch", "w", false, "Reload pathways from --pathways as files change")
}
