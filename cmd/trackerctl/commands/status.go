package commands

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/nilsio/trackerd/internal/cli/output"
)

var (
	statusOutput string
	statusRPCURL string
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the tracker's health as reported over RPC",
	Long: `status calls a running trackerd's /health/ready endpoint and
reports what it finds. It has no other way of knowing
whether the daemon is running: it is a pure RPC client, not an operator
tool that reaches into the trackerd process.`,
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().StringVarP(&statusOutput, "output", "o", "table", "Output format (table|json|yaml)")
	statusCmd.Flags().StringVar(&statusRPCURL, "rpc-url", "http://localhost:8080", "Base URL of the tracker's RPC server")
}

type trackerStatus struct {
	Reachable bool   `json:"reachable" yaml:"reachable"`
	Healthy   bool   `json:"healthy" yaml:"healthy"`
	Message   string `json:"message" yaml:"message"`
}

type healthEnvelope struct {
	Status string `json:"status"`
	Detail string `json:"detail"`
}

func runStatus(cmd *cobra.Command, args []string) error {
	format, err := output.ParseFormat(statusOutput)
	if err != nil {
		return err
	}

	status := trackerStatus{Message: "could not reach trackerd"}

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Get(strings.TrimRight(statusRPCURL, "/") + "/health/ready")
	if err == nil {
		defer func() { _ = resp.Body.Close() }()
		var env healthEnvelope
		if decodeErr := json.NewDecoder(resp.Body).Decode(&env); decodeErr == nil {
			status.Reachable = true
			status.Healthy = env.Status == "healthy"
			if status.Healthy {
				status.Message = "trackerd is reachable and healthy"
			} else {
				status.Message = fmt.Sprintf("trackerd is reachable but unhealthy: %s", env.Detail)
			}
		}
	}

	switch format {
	case output.FormatJSON:
		return output.PrintJSON(os.Stdout, status)
	case output.FormatYAML:
		return output.PrintYAML(os.Stdout, status)
	default:
		printStatusTable(status)
	}
	return nil
}

func printStatusTable(status trackerStatus) {
	fmt.Println()
	fmt.Printf("  Reachable: %v\n", status.Reachable)
	fmt.Printf("  Healthy:   %v\n", status.Healthy)
	fmt.Printf("  Message:   %s\n", status.Message)
	fmt.Println()
}
