package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"tokenpulse/internal/api"
	"tokenpulse/internal/api/handlers"
)

// apiCmd starts the query API without the scheduler: read-only access
// to signals and cycle metrics produced by a separate run process.
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Start the query API server only",
	Long: `Starts the REST API server without the scan scheduler.

Endpoints:
  GET /health
  GET /api/signals/recent
  GET /api/metrics/latest
  GET /api/metrics/history
  GET /api/metrics/summary
  GET /api/status

Example:
  go run ./cmd/pulse api
  go run ./cmd/pulse api --port 8080`,
	RunE: runAPIServer,
}

var apiPort string

func init() {
	rootCmd.AddCommand(apiCmd)

	apiCmd.Flags().StringVar(&apiPort, "port", "", "API server port (overrides PORT)")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	fmt.Println("=== tokenpulse API Server ===")

	a, err := buildApp(false)
	if err != nil {
		return err
	}
	defer a.close()

	if apiPort != "" {
		a.cfg.Port = apiPort
	}

	log := a.log
	log.Info("Connected to database")

	router := api.NewRouter(
		handlers.NewSignalHandler(a.signalRepo, a.cfg.Emission, log),
		handlers.NewMetricsHandler(a.cycleRepo, a.cache, log),
		handlers.NewStatusHandler(nil, a.db, log),
		log,
	)
	server := api.New(a.cfg, log, router)

	go func() {
		if err := server.Start(); err != nil {
			log.WithError(err).Fatal("Failed to start server")
		}
	}()

	fmt.Printf("\nServer running on http://localhost:%s\n", a.cfg.Port)
	fmt.Println("Press Ctrl+C to stop")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Info("Server stopped")
	return nil
}
