// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package handlers provides the gin handlers for the designer service.
// Handlers are closures over their dependencies so tests can inject
// fakes without global state.
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"

	"github.com/AleutianAI/AleutianBlueprint/services/designer/datatypes"
	"github.com/AleutianAI/AleutianBlueprint/services/designer/store"
)

var tracer = otel.Tracer("blueprint.designer.handlers")

func CreateProject(repo store.ProjectRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := tracer.Start(c.Request.Context(), "CreateProject")
		defer span.End()

		var req datatypes.CreateProjectRequest
		if err := c.BindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		if err := req.Validate(); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		project, err := repo.Create(ctx, req.Name, req.Description)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			slog.Error("Failed to create project", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create project"})
			return
		}
		slog.Info("Created project", "projectId", project.ID, "name", project.Name)
		c.JSON(http.StatusCreated, project)
	}
}

func ListProjects(repo store.ProjectRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := tracer.Start(c.Request.Context(), "ListProjects")
		defer span.End()

		projects, err := repo.List(ctx)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			slog.Error("Failed to list projects", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list projects"})
			return
		}
		if projects == nil {
			projects = []*datatypes.Project{}
		}
		c.JSON(http.StatusOK, gin.H{"projects": projects})
	}
}

func GetProject(repo store.ProjectRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := tracer.Start(c.Request.Context(), "GetProject")
		defer span.End()

		project, err := repo.Get(ctx, c.Param("projectId"))
		if err != nil {
			if errors.Is(err, store.ErrProjectNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "project not found"})
				return
			}
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			slog.Error("Failed to load project", "projectId", c.Param("projectId"), "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load project"})
			return
		}
		c.JSON(http.StatusOK, project)
	}
}

func PatchProject(repo store.ProjectRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := tracer.Start(c.Request.Context(), "PatchProject")
		defer span.End()

		var patch datatypes.ProjectPatch
		if err := c.BindJSON(&patch); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		if err := patch.Validate(); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		project, err := repo.Patch(ctx, c.Param("projectId"), &patch)
		if err != nil {
			if errors.Is(err, store.ErrProjectNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "project not found"})
				return
			}
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			slog.Error("Failed to patch project", "projectId", c.Param("projectId"), "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to patch project"})
			return
		}
		c.JSON(http.StatusOK, project)
	}
}

func DeleteProject(repo store.ProjectRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := tracer.Start(c.Request.Context(), "DeleteProject")
		defer span.End()

		id := c.Param("projectId")
		deleted, err := repo.Delete(ctx, id)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			slog.Error("Failed to delete project", "projectId", id, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete project"})
			return
		}
		if !deleted {
			c.JSON(http.StatusNotFound, gin.H{"error": "project not found"})
			return
		}
		slog.Info("Deleted project", "projectId", id)
		c.JSON(http.StatusOK, gin.H{"status": "success", "deleted_project_id": id})
	}
}

// ExportProject serves the full project as a pretty-printed JSON
// download. The payload round-trips losslessly through the import path
// (a patch carrying every collection).
func ExportProject(repo store.ProjectRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := tracer.Start(c.Request.Context(), "ExportProject")
		defer span.End()

		project, err := repo.Get(ctx, c.Param("projectId"))
		if err != nil {
			if errors.Is(err, store.ErrProjectNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "project not found"})
				return
			}
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			slog.Error("Failed to load project for export", "projectId", c.Param("projectId"), "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load project"})
			return
		}

		payload, err := json.MarshalIndent(project, "", "  ")
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to serialize project"})
			return
		}

		filename := fmt.Sprintf("%s-design.json", project.ID)
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
		c.Data(http.StatusOK, "application/json", payload)
	}
}
