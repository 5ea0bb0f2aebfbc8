package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/spf13/cobra"
)

var statusWatch bool

// NewStatusCommand creates the status command
func NewStatusCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status <task-id>",
		Short: "Show the status of a research task",
		Args:  cobra.ExactArgs(1),
		Run:   runStatus,
	}

	cmd.Flags().BoolVarP(&statusWatch, "watch", "w", false, "Poll until the task reaches a terminal status")

	return cmd
}

func runStatus(cmd *cobra.Command, args []string) {
	taskID := args[0]

	for {
		status, done, err := fetchStatus(taskID)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			return
		}
		printStatus(status)

		if !statusWatch || done {
			return
		}
		time.Sleep(5 * time.Second)
	}
}

type taskStatus struct {
	TaskID         string   `json:"task_id"`
	Location       string   `json:"location"`
	Status         string   `json:"status"`
	Stage          string   `json:"stage"`
	PrefetchErrors []string `json:"prefetch_errors"`
	ReportLength   int      `json:"report_length"`
	DocumentPath   string   `json:"document_path"`
	Error          string   `json:"error"`
}

func fetchStatus(taskID string) (taskStatus, bool, error) {
	var status taskStatus

	resp, err := http.Get(serverURL + "/api/v1/research/" + taskID)
	if err != nil {
		return status, false, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return status, false, err
	}
	if resp.StatusCode != http.StatusOK {
		return status, false, fmt.Errorf("status request failed: %s", string(body))
	}

	var envelope struct {
		Data taskStatus `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return status, false, fmt.Errorf("failed to parse response: %w", err)
	}

	status = envelope.Data
	done := status.Status == "completed" || status.Status == "failed"
	return status, done, nil
}

func printStatus(s taskStatus) {
	line := fmt.Sprintf("[%s] %s - %s", s.TaskID, s.Location, s.Status)
	if s.Stage != "" {
		line += " (" + s.Stage + ")"
	}
	fmt.Println(line)

	for _, e := range s.PrefetchErrors {
		fmt.Printf("  prefetch warning: %s\n", e)
	}
	if s.Status == "completed" {
		fmt.Printf("  report length: %d characters\n", s.ReportLength)
		fmt.Printf("  document: %s\n", s.DocumentPath)
	}
	if s.Error != "" {
		fmt.Printf("  error: %s\n", s.Error)
	}
}
