// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/AleutianAI/AleutianBlueprint/services/designer/datatypes"
	"github.com/AleutianAI/AleutianBlueprint/services/designer/store"
)

// ============================================================================
// Test Setup
// ============================================================================

func init() {
	gin.SetMode(gin.TestMode)
}

// fakeRepo is an in-memory ProjectRepository for handler tests.
type fakeRepo struct {
	projects map[string]*datatypes.Project
	nextID   int
	failWith error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{projects: map[string]*datatypes.Project{}}
}

func (r *fakeRepo) Create(_ context.Context, name, description string) (*datatypes.Project, error) {
	if r.failWith != nil {
		return nil, r.failWith
	}
	r.nextID++
	now := time.Now().UTC()
	p := &datatypes.Project{
		ID:           "p" + strconv.Itoa(r.nextID),
		Name:         name,
		Description:  description,
		CurrentPhase: datatypes.PhaseDomain,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	r.projects[p.ID] = p
	return p.Clone(), nil
}

func (r *fakeRepo) Get(_ context.Context, id string) (*datatypes.Project, error) {
	if r.failWith != nil {
		return nil, r.failWith
	}
	p, ok := r.projects[id]
	if !ok {
		return nil, store.ErrProjectNotFound
	}
	return p.Clone(), nil
}

func (r *fakeRepo) List(_ context.Context) ([]*datatypes.Project, error) {
	if r.failWith != nil {
		return nil, r.failWith
	}
	var out []*datatypes.Project
	for _, p := range r.projects {
		out = append(out, p.Clone())
	}
	return out, nil
}

func (r *fakeRepo) Patch(_ context.Context, id string, patch *datatypes.ProjectPatch) (*datatypes.Project, error) {
	p, ok := r.projects[id]
	if !ok {
		return nil, store.ErrProjectNotFound
	}
	updated := patch.Apply(p)
	updated.UpdatedAt = time.Now().UTC()
	r.projects[id] = updated
	return updated.Clone(), nil
}

func (r *fakeRepo) Delete(_ context.Context, id string) (bool, error) {
	if r.failWith != nil {
		return false, r.failWith
	}
	_, ok := r.projects[id]
	delete(r.projects, id)
	return ok, nil
}

func (r *fakeRepo) Save(_ context.Context, p *datatypes.Project) error {
	r.projects[p.ID] = p.Clone()
	return nil
}

func projectRouter(repo store.ProjectRepository) *gin.Engine {
	router := gin.New()
	router.POST("/v1/projects", CreateProject(repo))
	router.GET("/v1/projects", ListProjects(repo))
	router.GET("/v1/projects/:projectId", GetProject(repo))
	router.PATCH("/v1/projects/:projectId", PatchProject(repo))
	router.DELETE("/v1/projects/:projectId", DeleteProject(repo))
	router.GET("/v1/projects/:projectId/export", ExportProject(repo))
	return router
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Buffer
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal request body: %v", err)
		}
		reader = bytes.NewBuffer(payload)
	} else {
		reader = bytes.NewBuffer(nil)
	}
	req, _ := http.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// ============================================================================
// CRUD Tests
// ============================================================================

func TestCreateProject(t *testing.T) {
	repo := newFakeRepo()
	router := projectRouter(repo)

	w := doJSON(t, router, "POST", "/v1/projects",
		datatypes.CreateProjectRequest{Name: "Shop", Description: "demo"})
	if w.Code != http.StatusCreated {
		t.Fatalf("got status %d, want 201: %s", w.Code, w.Body.String())
	}

	var p datatypes.Project
	if err := json.Unmarshal(w.Body.Bytes(), &p); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if p.ID == "" || p.Name != "Shop" {
		t.Errorf("unexpected project %+v", p)
	}
	if p.CurrentPhase != datatypes.PhaseDomain {
		t.Errorf("new project phase = %q, want %q", p.CurrentPhase, datatypes.PhaseDomain)
	}
}

func TestCreateProjectRejectsMissingName(t *testing.T) {
	router := projectRouter(newFakeRepo())

	w := doJSON(t, router, "POST", "/v1/projects", datatypes.CreateProjectRequest{Description: "no name"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("got status %d, want 400", w.Code)
	}
	if !strings.Contains(w.Body.String(), "error") {
		t.Errorf("error body missing: %s", w.Body.String())
	}
}

func TestGetProjectNotFound(t *testing.T) {
	router := projectRouter(newFakeRepo())

	w := doJSON(t, router, "GET", "/v1/projects/missing", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("got status %d, want 404", w.Code)
	}
}

func TestPatchProjectSubset(t *testing.T) {
	repo := newFakeRepo()
	router := projectRouter(repo)

	created, err := repo.Create(context.Background(), "Shop", "demo")
	if err != nil {
		t.Fatalf("seed create failed: %v", err)
	}

	name := "Storefront"
	w := doJSON(t, router, "PATCH", "/v1/projects/"+created.ID, datatypes.ProjectPatch{Name: &name})
	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, want 200: %s", w.Code, w.Body.String())
	}

	var p datatypes.Project
	if err := json.Unmarshal(w.Body.Bytes(), &p); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if p.Name != "Storefront" {
		t.Errorf("name not patched: %q", p.Name)
	}
	if p.Description != "demo" {
		t.Errorf("description changed by subset patch: %q", p.Description)
	}
}

func TestPatchProjectRejectsUnknownPhase(t *testing.T) {
	repo := newFakeRepo()
	router := projectRouter(repo)

	created, _ := repo.Create(context.Background(), "Shop", "")
	bad := datatypes.Phase("Z")
	w := doJSON(t, router, "PATCH", "/v1/projects/"+created.ID, datatypes.ProjectPatch{CurrentPhase: &bad})
	if w.Code != http.StatusBadRequest {
		t.Errorf("got status %d, want 400", w.Code)
	}
	// No partial state change.
	stored, _ := repo.Get(context.Background(), created.ID)
	if stored.CurrentPhase != datatypes.PhaseDomain {
		t.Errorf("phase mutated by rejected patch: %q", stored.CurrentPhase)
	}
}

func TestDeleteProject(t *testing.T) {
	repo := newFakeRepo()
	router := projectRouter(repo)

	created, _ := repo.Create(context.Background(), "Shop", "")

	w := doJSON(t, router, "DELETE", "/v1/projects/"+created.ID, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, want 200", w.Code)
	}

	w = doJSON(t, router, "DELETE", "/v1/projects/"+created.ID, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("second delete: got status %d, want 404", w.Code)
	}
}

func TestListProjectsEmpty(t *testing.T) {
	router := projectRouter(newFakeRepo())

	w := doJSON(t, router, "GET", "/v1/projects", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, want 200", w.Code)
	}
	var resp struct {
		Projects []datatypes.Project `json:"projects"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if resp.Projects == nil {
		t.Error("projects should serialize as [], not null")
	}
}

func TestRepoFailureMapsTo500(t *testing.T) {
	repo := newFakeRepo()
	repo.failWith = errors.New("disk on fire")
	router := projectRouter(repo)

	w := doJSON(t, router, "GET", "/v1/projects", nil)
	if w.Code != http.StatusInternalServerError {
		t.Errorf("got status %d, want 500", w.Code)
	}
}

// ============================================================================
// Export Tests
// ============================================================================

func TestExportProjectRoundTrip(t *testing.T) {
	repo := newFakeRepo()
	router := projectRouter(repo)

	created, _ := repo.Create(context.Background(), "Shop", "demo")
	services := []datatypes.Service{{ID: "s1", Name: "orders", Dependencies: []string{"payments"}}}
	if _, err := repo.Patch(context.Background(), created.ID, &datatypes.ProjectPatch{Services: &services}); err != nil {
		t.Fatalf("seed patch failed: %v", err)
	}

	w := doJSON(t, router, "GET", "/v1/projects/"+created.ID+"/export", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, want 200", w.Code)
	}

	disposition := w.Header().Get("Content-Disposition")
	if !strings.Contains(disposition, "attachment") || !strings.Contains(disposition, created.ID) {
		t.Errorf("unexpected Content-Disposition %q", disposition)
	}
	if !strings.Contains(w.Body.String(), "\n") {
		t.Error("export should be pretty-printed")
	}

	// Lossless round trip back through the Project shape.
	var exported datatypes.Project
	if err := json.Unmarshal(w.Body.Bytes(), &exported); err != nil {
		t.Fatalf("exported JSON does not parse: %v", err)
	}
	if len(exported.Services) != 1 || exported.Services[0].Dependencies[0] != "payments" {
		t.Errorf("export lost data: %+v", exported.Services)
	}
}
