package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/dgallion1/docoutline/internal/api"
	"github.com/dgallion1/docoutline/internal/pipeline"
)

var servePort string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Start the docoutline HTTP API.

Endpoints:
  GET  /health                  - health check
  GET  /api/schema              - JSON schema of results
  POST /api/outline             - extract an uploaded PDF (multipart "file"), ?format=json|md|html|docx
  POST /api/jobs                - queue an uploaded PDF
  GET  /api/jobs/{id}           - job status
  GET  /api/jobs/{id}/result    - job result, ?format=json|md|html|docx
  POST /api/batch               - process the configured input directory
  GET  /api/stats               - queue statistics

When server.api_key is set, /api routes require "Authorization: Bearer <key>".

Examples:
  docoutline serve
  docoutline serve --port 3000`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		cfg, log, err := loadConfig()
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("port") {
			cfg.Server.Port = servePort
		}

		// Initialize pipeline.
		worker := pipeline.NewWorker(newParsers(cfg), newExtractor(cfg), log, cfg.PDF.Preflight)
		orch := pipeline.NewOrchestrator(cfg.Server, worker, log)
		orch.Start(ctx)
		defer orch.Stop()

		// Initialize HTTP server.
		srv := api.NewServer(orch, newRunner(cfg, log), log, cfg.Server)
		httpServer := &http.Server{
			Addr:         ":" + cfg.Server.Port,
			Handler:      srv,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 120 * time.Second,
			IdleTimeout:  60 * time.Second,
		}

		// Graceful shutdown.
		go func() {
			<-ctx.Done()
			log.Info("shutting down...")

			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer shutdownCancel()
			httpServer.Shutdown(shutdownCtx)
		}()

		log.Info("starting docoutline", "port", cfg.Server.Port, "workers", cfg.Server.Workers)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().StringVar(&servePort, "port", "8090", "Port to listen on (overrides server.port)")
}
