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
	"github.com/spf13/cobra"
)

var (
	rootCmd = &cobra.Command{
		Use:   "blueprint",
		Short: "A CLI to run and query the Aleutian Blueprint design studio",
		Long: `Blueprint guides a microservices design through four phases
(domain decomposition, containerization, orchestration, resilience)
and renders deployable artifacts from the result.`,
	}

	servePort    string
	serveDataDir string

	exportOutput string
)

func init() {
	serveCmd.Flags().StringVar(&servePort, "port", "", "listen port (overrides config.yaml)")
	serveCmd.Flags().StringVar(&serveDataDir, "data-dir", "", "project database directory (overrides config.yaml)")
	rootCmd.AddCommand(serveCmd)

	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output file (default <project-id>-design.json)")
	rootCmd.AddCommand(exportCmd)
}
