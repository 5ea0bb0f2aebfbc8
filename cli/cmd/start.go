package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/spf13/cobra"
)

var startLocation string

// NewStartCommand creates the start command
func NewStartCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start a research task for a bakery location",
		Run:   runStart,
	}

	cmd.Flags().StringVarP(&startLocation, "location", "l", "", "Bakery location to research (required)")
	cmd.MarkFlagRequired("location")

	return cmd
}

func runStart(cmd *cobra.Command, args []string) {
	jsonData, err := json.Marshal(map[string]string{"location": startLocation})
	if err != nil {
		fmt.Printf("Error: Failed to serialize data - %v\n", err)
		return
	}

	resp, err := http.Post(serverURL+"/api/v1/research", "application/json", bytes.NewBuffer(jsonData))
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	if resp.StatusCode != http.StatusOK {
		fmt.Printf("Start failed: %s\n", string(body))
		return
	}

	var envelope struct {
		Data struct {
			TaskID string `json:"task_id"`
			Status string `json:"status"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		fmt.Printf("Error: Failed to parse response - %v\n", err)
		return
	}

	fmt.Printf("Research started for %q\n", startLocation)
	fmt.Printf("Task ID: %s (status: %s)\n", envelope.Data.TaskID, envelope.Data.Status)
}
