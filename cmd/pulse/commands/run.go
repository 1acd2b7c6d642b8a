package commands

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"tokenpulse/internal/api"
	"tokenpulse/internal/api/handlers"
	"tokenpulse/internal/metrics"
	"tokenpulse/internal/scheduler"
	"tokenpulse/internal/scheduler/jobs"
)

// runCmd starts the full service: scheduled scan cycles, the query API
// and the Prometheus scrape endpoint.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the scan scheduler and API server",
	Long: `Starts the full tokenpulse service.

This command:
- Runs scan cycles on the configured interval
- Serves the signal and metrics query API
- Exposes Prometheus metrics on the metrics port

Example:
  go run ./cmd/pulse run`,
	RunE: runService,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runService(cmd *cobra.Command, args []string) error {
	fmt.Println("=== tokenpulse ===")

	a, err := buildApp(true)
	if err != nil {
		return err
	}
	defer a.close()

	log := a.log
	log.Info("Connected to database")

	// Rebuild the emission dedup window so a restart does not re-emit
	// mints still inside it.
	warmCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := a.emitter.Warm(warmCtx, time.Now().UTC()); err != nil {
		log.WithError(err).Warn("Dedup window rebuild failed, starting cold")
	}
	cancel()

	// Scheduler
	sched := scheduler.New(log)
	if err := sched.AddJob(jobs.NewScanJob(a.runner, a.cfg.Pipeline.ScanInterval)); err != nil {
		return fmt.Errorf("register scan job: %w", err)
	}
	sched.Start()
	defer sched.Stop()

	// Query API
	router := api.NewRouter(
		handlers.NewSignalHandler(a.signalRepo, a.cfg.Emission, log),
		handlers.NewMetricsHandler(a.cycleRepo, a.cache, log),
		handlers.NewStatusHandler(sched, a.db, log),
		log,
	)
	server := api.New(a.cfg, log, router)
	go func() {
		if err := server.Start(); err != nil {
			log.WithError(err).Fatal("Failed to start server")
		}
	}()

	// Prometheus scrape endpoint on its own port.
	if a.collectors != nil {
		go func() {
			addr := ":" + a.cfg.MetricsPort
			log.WithField("addr", addr).Info("Metrics endpoint listening")
			mux := http.NewServeMux()
			mux.Handle("/metrics", metrics.Handler())
			if err := http.ListenAndServe(addr, mux); err != nil && err != http.ErrServerClosed {
				log.WithError(err).Error("Metrics endpoint failed")
			}
		}()
	}

	fmt.Printf("\nService running on http://localhost:%s (scan every %s)\n", a.cfg.Port, a.cfg.Pipeline.ScanInterval)
	fmt.Println("Press Ctrl+C to stop")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down...")

	ctx, cancelShutdown := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Info("Service stopped")
	return nil
}
