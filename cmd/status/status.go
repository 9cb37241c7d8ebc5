// Package status implements the "status" CLI subcommand: a thin HTTP
// client over the control plane's GET /status, rendering results as a
// table the way crawler/cmd/sources/list.go renders its own source
// listings.
package status

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

// jobRow mirrors one entry of the control plane's GET /status response
// (§6 "{jobs:[{id,name,status}]}").
type jobRow struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Status string `json:"status"`
}

type statusResponse struct {
	Jobs []jobRow `json:"jobs"`
}

// Command returns the "status" subcommand.
func Command() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "status",
		Short: "List jobs known to the control plane",
		Long:  `Fetches GET /status from a running control plane and renders the jobs as a table.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			jobs, err := fetchJobs(cmd.Context(), addr)
			if err != nil {
				return err
			}
			renderTable(jobs)
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "http://localhost:8080", "control plane base URL")
	return cmd
}

// fetchJobs requests GET /status from the control plane at addr.
func fetchJobs(ctx context.Context, addr string) ([]jobRow, error) {
	client := &http.Client{Timeout: 10 * time.Second}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, addr+"/status", nil)
	if err != nil {
		return nil, fmt.Errorf("status: build request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("status: request control plane: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status: control plane returned %d", resp.StatusCode)
	}

	var payload statusResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("status: decode response: %w", err)
	}
	return payload.Jobs, nil
}

// renderTable prints jobs as a light-style table to stdout.
func renderTable(jobs []jobRow) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"ID", "Name", "Status"})
	for _, j := range jobs {
		t.AppendRow(table.Row{j.ID, j.Name, j.Status})
	}
	t.Render()
}
