// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export [project-id]",
	Short: "Downloads a project design as pretty-printed JSON",
	Long: `Fetches the full project from a running designer service and writes
it to a file. The file re-imports losslessly through a project patch.`,
	Args: cobra.ExactArgs(1),
	Run:  runExportCommand,
}

func runExportCommand(cmd *cobra.Command, args []string) {
	projectID := args[0]
	url := fmt.Sprintf("%s/v1/projects/%s/export", config.ServiceURL, projectID)

	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Get(url)
	if err != nil {
		log.Fatalf("Failed to reach the designer service at %s: %v", config.ServiceURL, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Fatalf("Failed to read the export response: %v", err)
	}
	if resp.StatusCode == http.StatusNotFound {
		log.Fatalf("Project %s not found", projectID)
	}
	if resp.StatusCode != http.StatusOK {
		log.Fatalf("Export failed with status %d: %s", resp.StatusCode, string(body))
	}

	// Sanity check: the payload must be the project JSON, not an error body.
	var probe map[string]interface{}
	if err := json.Unmarshal(body, &probe); err != nil || probe["id"] != projectID {
		log.Fatalf("Unexpected export payload for project %s", projectID)
	}

	output := exportOutput
	if output == "" {
		output = projectID + "-design.json"
	}
	if err := os.WriteFile(output, body, 0644); err != nil {
		log.Fatalf("Failed to write %s: %v", output, err)
	}
	fmt.Printf("Exported project %s to %s\n", projectID, output)
}
