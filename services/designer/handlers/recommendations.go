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
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/codes"

	"github.com/AleutianAI/AleutianBlueprint/services/designer/datatypes"
	"github.com/AleutianAI/AleutianBlueprint/services/designer/observability"
	"github.com/AleutianAI/AleutianBlueprint/services/designer/recommend"
)

// Recommender is the slice of recommend.Gateway the handler needs.
type Recommender interface {
	Recommend(ctx context.Context, project *datatypes.Project,
		phase datatypes.Phase) ([]datatypes.AIRecommendation, error)
}

// HandleRecommendations proxies a project snapshot to the AI gateway.
//
// A misconfigured gateway maps to 503 and an upstream or parse failure
// to 502; both are distinct from a successful response, which always
// carries at least one recommendation.
func HandleRecommendations(gateway Recommender) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := tracer.Start(c.Request.Context(), "HandleRecommendations")
		defer span.End()

		var req datatypes.RecommendationRequest
		if err := c.BindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		if err := req.Validate(); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		start := time.Now()
		recs, err := gateway.Recommend(ctx, req.Project, req.Phase)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			if errors.Is(err, recommend.ErrUnconfigured) {
				observability.RecommendationDuration.WithLabelValues("unconfigured").Observe(time.Since(start).Seconds())
				slog.Warn("Recommendation gateway not configured", "error", err)
				c.JSON(http.StatusServiceUnavailable, gin.H{"error": "recommendation backend is not configured"})
				return
			}
			observability.RecommendationDuration.WithLabelValues("upstream_error").Observe(time.Since(start).Seconds())
			slog.Error("Recommendation request failed", "phase", req.Phase, "error", err)
			c.JSON(http.StatusBadGateway, gin.H{"error": "recommendation backend request failed"})
			return
		}

		observability.RecommendationDuration.WithLabelValues("ok").Observe(time.Since(start).Seconds())
		c.JSON(http.StatusOK, datatypes.RecommendationResponse{Recommendations: recs})
	}
}
