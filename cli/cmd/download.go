package cmd

import (
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"

	"github.com/spf13/cobra"
)

var downloadOutput string

// NewDownloadCommand creates the download command
func NewDownloadCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "download <task-id>",
		Short: "Download the report document of a completed task",
		Args:  cobra.ExactArgs(1),
		Run:   runDownload,
	}

	cmd.Flags().StringVarP(&downloadOutput, "output", "o", "", "Output file path (defaults to the server's filename)")

	return cmd
}

func runDownload(cmd *cobra.Command, args []string) {
	taskID := args[0]

	resp, err := http.Get(serverURL + "/api/v1/research/" + taskID + "/document")
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		fmt.Printf("Download failed: %s\n", string(body))
		return
	}

	outPath := downloadOutput
	if outPath == "" {
		outPath = attachmentFilename(resp.Header.Get("Content-Disposition"))
	}
	if outPath == "" {
		outPath = taskID + ".pdf"
	}

	out, err := os.Create(outPath)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer out.Close()

	n, err := io.Copy(out, resp.Body)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	fmt.Printf("Saved %d bytes to %s\n", n, outPath)
}

func attachmentFilename(disposition string) string {
	if disposition == "" {
		return ""
	}
	_, params, err := mime.ParseMediaType(disposition)
	if err != nil {
		return ""
	}
	return params["filename"]
}
