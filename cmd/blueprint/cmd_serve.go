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
	"log"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/AleutianAI/AleutianBlueprint/pkg/logging"
	"github.com/AleutianAI/AleutianBlueprint/services/designer/middleware"
	"github.com/AleutianAI/AleutianBlueprint/services/designer/recommend"
	"github.com/AleutianAI/AleutianBlueprint/services/designer/routes"
	badgerstore "github.com/AleutianAI/AleutianBlueprint/services/designer/storage/badger"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Runs the designer service locally",
	Long: `Starts the designer web service with an embedded project database.
The containerized deployment runs services/designer directly; serve is
the single-binary path for local work.`,
	Run: runServeCommand,
}

func runServeCommand(cmd *cobra.Command, args []string) {
	port := servePort
	if port == "" {
		port = config.Port
	}
	dataDir := serveDataDir
	if dataDir == "" {
		dataDir = config.DataDir
	}
	dataDir = expandHome(dataDir)

	logger := logging.New(logging.Config{
		Service: "designer",
		JSON:    true,
	})
	slog.SetDefault(logger.Slog())

	dbConfig := badgerstore.DefaultConfig()
	dbConfig.Path = dataDir
	dbConfig.Logger = logger.Slog()
	db, err := badgerstore.Open(dbConfig)
	if err != nil {
		log.Fatalf("failed to open the project database at %s: %v", dataDir, err)
	}
	defer db.Close()
	repo := badgerstore.NewProjectRepository(db)

	gateway, err := recommend.NewGateway()
	if err != nil {
		log.Fatalf("failed to build the recommendation gateway: %v", err)
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger())
	routes.SetupRoutes(router, repo, gateway)

	slog.Info("Starting the designer server", "port", port, "data_dir", dataDir)
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// expandHome resolves a leading ~ against the current user's home.
func expandHome(path string) string {
	if len(path) == 0 || path[0] != '~' {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
