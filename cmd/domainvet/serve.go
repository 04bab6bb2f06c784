package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/hakim/domainvet/internal/logger"
	"github.com/hakim/domainvet/internal/pipeline"
	"github.com/hakim/domainvet/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the validator over HTTP",
	Long: `Start an HTTP API exposing batch validation and run history.

Endpoints:
  GET  /healthz          liveness check
  POST /v1/validate      body {"domains": ["a.com", ...]}, returns per-domain results
  GET  /v1/runs          run history, optionally ?input=<file>
  GET  /v1/runs/{id}     one run with its results, ?format=md for a markdown report

Runs submitted over HTTP are recorded in the history database under the
input name "api".`,
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, _ := cmd.Flags().GetString("addr")
		maxDomains, _ := cmd.Flags().GetInt("max-domains")
		cmd.SilenceUsage = true

		components, err := pipeline.Build(cfg, appLog)
		if err != nil {
			return err
		}

		deps := server.Deps{
			Validator: components.Engine,
			Profile:   components.Profile.Name,
			Batch: pipeline.BatchConfig{
				Concurrency: cfg.Workers,
				RateLimit:   cfg.RateLimit,
			},
			Notify:     &pipeline.NotifyConfig{WebhookURL: cfg.Notify.WebhookURL},
			MaxDomains: maxDomains,
			Logger:     appLog.With(logger.String("component", "http")),
		}

		store, err := openStore()
		if err != nil {
			return err
		}
		if store != nil {
			defer store.Close()
			deps.Store = store
		}

		srv := server.New(addr, deps)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		errCh := make(chan error, 1)
		go func() { errCh <- srv.Start() }()

		fmt.Printf("[*] Listening on %s (profile %s, %d workers)\n", addr, components.Profile.Name, cfg.Workers)

		select {
		case err := <-errCh:
			return err
		case <-ctx.Done():
		}

		fmt.Println("[*] Shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Stop(shutdownCtx)
	},
}

func init() {
	serveCmd.Flags().String("addr", ":8080", "listen address")
	serveCmd.Flags().Int("max-domains", server.DefaultMaxDomains, "maximum domains per validate request")
	rootCmd.AddCommand(serveCmd)
}
