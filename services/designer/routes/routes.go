// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/AleutianAI/AleutianBlueprint/services/designer/handlers"
	"github.com/AleutianAI/AleutianBlueprint/services/designer/observability"
	"github.com/AleutianAI/AleutianBlueprint/services/designer/store"
)

func SetupRoutes(router *gin.Engine, repo store.ProjectRepository, gateway handlers.Recommender) {

	router.GET("/healthz", handlers.HealthCheck)
	router.GET("/metrics", gin.WrapH(observability.MetricsHandler()))

	// API version 1 group
	v1 := router.Group("/v1")
	{
		projects := v1.Group("/projects")
		{
			projects.POST("", handlers.CreateProject(repo))
			projects.GET("", handlers.ListProjects(repo))
			projects.GET("/:projectId", handlers.GetProject(repo))
			projects.PATCH("/:projectId", handlers.PatchProject(repo))
			projects.DELETE("/:projectId", handlers.DeleteProject(repo))
			projects.GET("/:projectId/export", handlers.ExportProject(repo))
		}

		v1.POST("/validate", handlers.HandleValidate())
		v1.GET("/validate/ws", handlers.HandleValidationWebSocket())

		generate := v1.Group("/generate")
		{
			generate.POST("/dockerfile", handlers.HandleGenerateDockerfile())
			generate.POST("/manifest", handlers.HandleGenerateManifest())
		}

		v1.POST("/recommendations", handlers.HandleRecommendations(gateway))
	}
}
