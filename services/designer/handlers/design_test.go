// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/AleutianAI/AleutianBlueprint/services/designer/datatypes"
	"github.com/AleutianAI/AleutianBlueprint/services/designer/recommend"
)

func designRouter(gateway Recommender) *gin.Engine {
	router := gin.New()
	router.POST("/v1/validate", HandleValidate())
	router.POST("/v1/generate/dockerfile", HandleGenerateDockerfile())
	router.POST("/v1/generate/manifest", HandleGenerateManifest())
	router.POST("/v1/recommendations", HandleRecommendations(gateway))
	return router
}

// fakeRecommender returns canned recommendations or a sentinel error.
type fakeRecommender struct {
	recs []datatypes.AIRecommendation
	err  error
}

func (f *fakeRecommender) Recommend(_ context.Context, _ *datatypes.Project,
	_ datatypes.Phase) ([]datatypes.AIRecommendation, error) {
	return f.recs, f.err
}

// ============================================================================
// Validate Endpoint
// ============================================================================

func TestHandleValidate(t *testing.T) {
	router := designRouter(&fakeRecommender{})

	project := &datatypes.Project{ID: "p1", Name: "Shop", CurrentPhase: datatypes.PhaseDomain}
	w := doJSON(t, router, "POST", "/v1/validate",
		datatypes.ValidateRequest{Project: project, Phase: datatypes.PhaseDomain})
	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, want 200: %s", w.Code, w.Body.String())
	}

	var resp datatypes.ValidateResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	// Empty project in phase A fails the services rule.
	if len(resp.Validations) == 0 {
		t.Fatal("expected validation results for an empty project")
	}
	failed := false
	for _, v := range resp.Validations {
		if v.Status == datatypes.ValidationFailed {
			failed = true
		}
	}
	if !failed {
		t.Error("expected a failed result for an empty project in phase A")
	}
}

func TestHandleValidateRejectsUnknownPhase(t *testing.T) {
	router := designRouter(&fakeRecommender{})

	project := &datatypes.Project{ID: "p1", Name: "Shop"}
	w := doJSON(t, router, "POST", "/v1/validate",
		datatypes.ValidateRequest{Project: project, Phase: "Q"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("got status %d, want 400", w.Code)
	}
}

func TestHandleValidateRejectsMissingProject(t *testing.T) {
	router := designRouter(&fakeRecommender{})

	w := doJSON(t, router, "POST", "/v1/validate", map[string]string{"phase": "A"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("got status %d, want 400", w.Code)
	}
}

// ============================================================================
// Generation Endpoints
// ============================================================================

func TestHandleGenerateDockerfile(t *testing.T) {
	router := designRouter(&fakeRecommender{})

	req := datatypes.DockerfileRequest{
		ServiceName: "orders",
		ContainerConfig: &datatypes.ContainerConfig{
			ID:        "c1",
			ServiceID: "s1",
			BaseImage: "node:20-alpine",
			BuildType: datatypes.BuildMultiStage,
			Ports:     []int{8080},
			EnvVars: []datatypes.EnvVar{
				{Key: "API_KEY", Value: "hunter2", IsSecret: true},
			},
		},
	}
	w := doJSON(t, router, "POST", "/v1/generate/dockerfile", req)
	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, want 200: %s", w.Code, w.Body.String())
	}

	var resp datatypes.DockerfileResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if !strings.Contains(resp.Dockerfile, "FROM node:20-alpine") {
		t.Errorf("dockerfile missing base image:\n%s", resp.Dockerfile)
	}
	if strings.Contains(resp.Dockerfile, "hunter2") {
		t.Error("secret value leaked into generated Dockerfile")
	}
}

func TestHandleGenerateManifest(t *testing.T) {
	router := designRouter(&fakeRecommender{})

	req := datatypes.ManifestRequest{
		ServiceName: "Orders API",
		Manifest: &datatypes.K8sManifest{
			ID:        "m1",
			ServiceID: "s1",
			Strategy:  datatypes.DeployRollingUpdate,
			Replicas:  3,
		},
	}
	w := doJSON(t, router, "POST", "/v1/generate/manifest", req)
	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, want 200: %s", w.Code, w.Body.String())
	}

	var resp datatypes.ManifestResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if !strings.Contains(resp.Manifest, "kind: Deployment") || !strings.Contains(resp.Manifest, "kind: Service") {
		t.Errorf("manifest missing documents:\n%s", resp.Manifest)
	}
	if !strings.Contains(resp.Manifest, "orders-api") {
		t.Errorf("manifest missing normalized app name:\n%s", resp.Manifest)
	}
}

func TestHandleGenerateDockerfileRejectsMissingConfig(t *testing.T) {
	router := designRouter(&fakeRecommender{})

	w := doJSON(t, router, "POST", "/v1/generate/dockerfile", map[string]string{"serviceName": "orders"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("got status %d, want 400", w.Code)
	}
}

// ============================================================================
// Recommendations Endpoint
// ============================================================================

func TestHandleRecommendations(t *testing.T) {
	recs := []datatypes.AIRecommendation{
		{ID: "r1", Title: "Split payments", Severity: datatypes.SeverityWarning},
		{ID: "r2", Title: "Add a health check", Severity: datatypes.SeverityInfo},
		{ID: "r3", Title: "Break the cycle", Severity: datatypes.SeverityError},
	}
	router := designRouter(&fakeRecommender{recs: recs})

	project := &datatypes.Project{ID: "p1", Name: "Shop"}
	w := doJSON(t, router, "POST", "/v1/recommendations",
		datatypes.RecommendationRequest{Project: project, Phase: datatypes.PhaseDomain})
	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, want 200: %s", w.Code, w.Body.String())
	}

	var resp datatypes.RecommendationResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if len(resp.Recommendations) != 3 {
		t.Errorf("got %d recommendations, want 3", len(resp.Recommendations))
	}
}

func TestHandleRecommendationsErrorMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"upstream", fmt.Errorf("%w: timeout", recommend.ErrUpstream), http.StatusBadGateway},
		{"unconfigured", fmt.Errorf("%w: no key", recommend.ErrUnconfigured), http.StatusServiceUnavailable},
		{"other", errors.New("boom"), http.StatusBadGateway},
	}
	project := &datatypes.Project{ID: "p1", Name: "Shop"}
	for _, tc := range cases {
		router := designRouter(&fakeRecommender{err: tc.err})
		w := doJSON(t, router, "POST", "/v1/recommendations",
			datatypes.RecommendationRequest{Project: project, Phase: datatypes.PhaseDomain})
		if w.Code != tc.want {
			t.Errorf("%s: got status %d, want %d", tc.name, w.Code, tc.want)
		}
		if !strings.Contains(w.Body.String(), "error") {
			t.Errorf("%s: error body missing: %s", tc.name, w.Body.String())
		}
	}
}
