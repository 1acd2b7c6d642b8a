package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/spf13/cobra"
)

// statusCmd queries a running service for its status.
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the status of a running service",
	Long: `Queries a running tokenpulse service for scheduler and database
status.

Example:
  go run ./cmd/pulse status
  go run ./cmd/pulse status --addr http://localhost:8080`,
	RunE: runStatus,
}

var statusAddr string

func init() {
	rootCmd.AddCommand(statusCmd)

	statusCmd.Flags().StringVar(&statusAddr, "addr", "http://localhost:8080", "service address")
}

func runStatus(cmd *cobra.Command, args []string) error {
	client := &http.Client{Timeout: 5 * time.Second}

	resp, err := client.Get(statusAddr + "/api/status")
	if err != nil {
		return fmt.Errorf("service unreachable at %s: %w", statusAddr, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("read status response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status request failed: %d", resp.StatusCode)
	}

	// Pretty-print the JSON payload.
	var pretty map[string]interface{}
	if err := json.Unmarshal(body, &pretty); err != nil {
		return fmt.Errorf("decode status response: %w", err)
	}
	out, _ := json.MarshalIndent(pretty, "", "  ")
	fmt.Println(string(out))

	return nil
}
