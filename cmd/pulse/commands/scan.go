package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"tokenpulse/internal/contracts"
)

// scanCmd runs exactly one scan cycle and prints its frozen metrics.
var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Run a single scan cycle",
	Long: `Runs one scan cycle end to end and prints the cycle metrics.

Useful for testing configuration and thresholds without starting the
scheduler.

Example:
  go run ./cmd/pulse scan`,
	RunE: runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)
}

func runScan(cmd *cobra.Command, args []string) error {
	a, err := buildApp(false)
	if err != nil {
		return err
	}
	defer a.close()

	warmCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := a.emitter.Warm(warmCtx, time.Now().UTC()); err != nil {
		a.log.WithError(err).Warn("Dedup window rebuild failed, starting cold")
	}
	cancel()

	frozen, err := a.runner.RunCycle(context.Background())
	if err != nil {
		return fmt.Errorf("scan cycle: %w", err)
	}

	printCycle(frozen)
	return nil
}

func printCycle(m contracts.CycleMetrics) {
	fmt.Printf("\nCycle %s (%dms)\n", m.CycleID, m.DurationMs)
	fmt.Printf("  discovered:   %d\n", m.Discovered)
	fmt.Printf("  after dedup:  %d\n", m.AfterDedup)
	if m.EmptyCycle {
		fmt.Println("  empty cycle: every source came back empty")
		return
	}
	if m.SweepPagesOK+m.SweepPagesFailed > 0 {
		fmt.Printf("  sweep:        %d pages ok, %d failed, %d tokens added\n",
			m.SweepPagesOK, m.SweepPagesFailed, m.SweepTokensAdded)
	}
	fmt.Printf("  accepted:     %d (%d relaxed)\n", m.Accepted, m.AcceptedRelaxed)
	fmt.Printf("  emitted:      %d (%d suppressed)\n", m.Emitted, m.Suppressed)

	if len(m.Rejections) > 0 {
		fmt.Println("  rejections:")
		for _, reason := range contracts.AllRejectionReasons() {
			if n := m.Rejections[reason]; n > 0 {
				fmt.Printf("    %-22s %d\n", reason, n)
			}
		}
	}
}
