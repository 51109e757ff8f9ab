// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/codes"

	"github.com/AleutianAI/AleutianBlueprint/services/designer/datatypes"
	"github.com/AleutianAI/AleutianBlueprint/services/designer/generate"
	"github.com/AleutianAI/AleutianBlueprint/services/designer/observability"
	"github.com/AleutianAI/AleutianBlueprint/services/designer/validation"
)

// HandleValidate runs the validation engine over a caller-supplied
// project snapshot. Stateless: nothing is read from or written to the
// repository.
func HandleValidate() gin.HandlerFunc {
	return func(c *gin.Context) {
		_, span := tracer.Start(c.Request.Context(), "HandleValidate")
		defer span.End()

		var req datatypes.ValidateRequest
		if err := c.BindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		if err := req.Validate(); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		results := validation.Run(req.Project, req.Phase)
		observability.ValidationRuns.WithLabelValues(string(req.Phase)).Inc()
		c.JSON(http.StatusOK, datatypes.ValidateResponse{Validations: results})
	}
}

// HandleGenerateDockerfile renders the Dockerfile for one container
// config. Deterministic: the same request always yields the same bytes.
func HandleGenerateDockerfile() gin.HandlerFunc {
	return func(c *gin.Context) {
		_, span := tracer.Start(c.Request.Context(), "HandleGenerateDockerfile")
		defer span.End()

		var req datatypes.DockerfileRequest
		if err := c.BindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		if err := req.Validate(); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		text, err := generate.Dockerfile(req.ContainerConfig, req.ServiceName)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			slog.Error("Dockerfile generation failed", "service", req.ServiceName, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate Dockerfile"})
			return
		}
		observability.ArtifactsGenerated.WithLabelValues("dockerfile").Inc()
		c.JSON(http.StatusOK, datatypes.DockerfileResponse{Dockerfile: text})
	}
}

// HandleGenerateManifest renders the Deployment and Service YAML for
// one manifest descriptor. The container config is optional; defaults
// apply when it is absent.
func HandleGenerateManifest() gin.HandlerFunc {
	return func(c *gin.Context) {
		_, span := tracer.Start(c.Request.Context(), "HandleGenerateManifest")
		defer span.End()

		var req datatypes.ManifestRequest
		if err := c.BindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		if err := req.Validate(); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		text, err := generate.K8sManifests(req.Manifest, req.ServiceName, req.ContainerConfig)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			slog.Error("Manifest generation failed", "service", req.ServiceName, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate manifest"})
			return
		}
		observability.ArtifactsGenerated.WithLabelValues("manifest").Inc()
		c.JSON(http.StatusOK, datatypes.ManifestResponse{Manifest: text})
	}
}
