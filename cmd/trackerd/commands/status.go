package commands

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"syscall"
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
	Short: "Show tracker daemon status",
	Long: `Display the current status of the tracker daemon, combining the PID
file with a call to its /health/ready endpoint.`,
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().StringVarP(&statusOutput, "output", "o", "table", "Output format (table|json|yaml)")
	statusCmd.Flags().StringVar(&statusRPCURL, "rpc-url", "http://localhost:8080", "Base URL of the tracker's RPC server")
}

// daemonStatus combines the PID-file check with the decoded /health/ready
// response for display purposes.
type daemonStatus struct {
	Running bool   `json:"running" yaml:"running"`
	PID     int    `json:"pid,omitempty" yaml:"pid,omitempty"`
	Healthy bool   `json:"healthy" yaml:"healthy"`
	Message string `json:"message" yaml:"message"`
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

	status := daemonStatus{Message: "trackerd is not running"}

	pidPath := GetDefaultPidFile()
	if pidData, err := os.ReadFile(pidPath); err == nil {
		if pid, err := strconv.Atoi(strings.TrimSpace(string(pidData))); err == nil {
			if process, err := os.FindProcess(pid); err == nil {
				if err := process.Signal(syscall.Signal(0)); err == nil {
					status.Running = true
					status.PID = pid
				}
			}
		}
	}

	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get(strings.TrimRight(statusRPCURL, "/") + "/health/ready")
	if err == nil {
		defer func() { _ = resp.Body.Close() }()
		var env healthEnvelope
		if err := json.NewDecoder(resp.Body).Decode(&env); err == nil {
			status.Running = true
			status.Healthy = env.Status == "healthy"
			if status.Healthy {
				status.Message = "trackerd is running and healthy"
			} else {
				status.Message = fmt.Sprintf("trackerd is running but unhealthy: %s", env.Detail)
			}
		}
	} else if status.Running {
		status.Message = "trackerd process exists but the health check failed"
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

func printStatusTable(status daemonStatus) {
	fmt.Println()
	fmt.Println("trackerd status")
	fmt.Println("===============")
	fmt.Println()
	if status.Running {
		if status.Healthy {
			fmt.Printf("  Status:  \033[32m* running\033[0m\n")
		} else {
			fmt.Printf("  Status:  \033[33m* running (unhealthy)\033[0m\n")
		}
		if status.PID != 0 {
			fmt.Printf("  PID:     %d\n", status.PID)
		}
	} else {
		fmt.Printf("  Status:  \033[31m- stopped\033[0m\n")
	}
	fmt.Println()
	fmt.Printf("  %s\n", status.Message)
	fmt.Println()
}
