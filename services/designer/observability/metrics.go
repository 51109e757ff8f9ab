// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package observability holds the designer's Prometheus metrics.
// Metrics register with the default registry via promauto; the /metrics
// endpoint serves promhttp.Handler().
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTPRequestsTotal counts HTTP requests by method, path and status.
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "blueprint_http_requests_total",
		Help: "Total HTTP requests handled by the designer service.",
	}, []string{"method", "path", "status"})

	// HTTPRequestDuration records request duration in seconds by path.
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "blueprint_http_request_duration_seconds",
		Help:    "HTTP request duration in seconds.",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	}, []string{"method", "path"})

	// ValidationRuns counts validation engine executions by phase.
	ValidationRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "blueprint_validation_runs_total",
		Help: "Total validation engine runs by phase.",
	}, []string{"phase"})

	// ArtifactsGenerated counts rendered artifacts by kind.
	ArtifactsGenerated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "blueprint_artifacts_generated_total",
		Help: "Total generated artifacts by kind (dockerfile, manifest).",
	}, []string{"kind"})

	// ProjectSaves counts debounced persistence writes by outcome.
	ProjectSaves = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "blueprint_project_saves_total",
		Help: "Total debounced project saves by outcome (ok, error).",
	}, []string{"outcome"})

	// RecommendationDuration records recommendation round trips in
	// seconds by outcome (ok, upstream_error, unconfigured).
	RecommendationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "blueprint_recommendation_duration_seconds",
		Help:    "Recommendation gateway round-trip duration in seconds.",
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
	}, []string{"outcome"})
)

// MetricsHandler returns the HTTP handler for the /metrics endpoint.
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
