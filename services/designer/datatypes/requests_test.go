// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package datatypes

import (
	"strings"
	"testing"
)

func TestCreateProjectRequest_Validate(t *testing.T) {
	ok := &CreateProjectRequest{Name: "checkout", Description: "payments split"}
	if err := ok.Validate(); err != nil {
		t.Errorf("expected valid request, got %v", err)
	}

	missing := &CreateProjectRequest{Description: "no name"}
	if err := missing.Validate(); err == nil {
		t.Error("expected error for missing name, got nil")
	}

	long := &CreateProjectRequest{Name: strings.Repeat("x", MaxProjectNameLen+1)}
	if err := long.Validate(); err == nil {
		t.Error("expected error for oversized name, got nil")
	}
}

func TestProjectPatch_Validate_UnknownPhase(t *testing.T) {
	bad := Phase("Z")
	patch := &ProjectPatch{CurrentPhase: &bad}
	if err := patch.Validate(); err == nil {
		t.Error("expected error for unknown phase token, got nil")
	}

	good := PhaseOrchestration
	patch = &ProjectPatch{CurrentPhase: &good}
	if err := patch.Validate(); err != nil {
		t.Errorf("expected valid patch, got %v", err)
	}
}

func TestProjectPatch_Apply_SubsetSemantics(t *testing.T) {
	p := samplePhaseBProject()
	name := "renamed"
	phase := PhaseOrchestration
	empty := []Service{}

	patch := &ProjectPatch{Name: &name, CurrentPhase: &phase, Services: &empty}
	out := patch.Apply(p)

	if out.Name != "renamed" || out.CurrentPhase != PhaseOrchestration {
		t.Errorf("patched fields not applied: name=%q phase=%q", out.Name, out.CurrentPhase)
	}
	if len(out.Services) != 0 {
		t.Errorf("services should be replaced wholesale, got %d", len(out.Services))
	}
	// Omitted fields stay put.
	if out.Description != p.Description || len(out.ContainerConfigs) != 1 {
		t.Error("omitted fields were modified")
	}
	// Input untouched.
	if p.Name != "orders-platform" || len(p.Services) != 2 {
		t.Error("patch mutated its input project")
	}
}

func TestValidateRequest_Validate(t *testing.T) {
	req := &ValidateRequest{Project: samplePhaseBProject(), Phase: PhaseDomain}
	if err := req.Validate(); err != nil {
		t.Errorf("expected valid request, got %v", err)
	}

	req = &ValidateRequest{Project: samplePhaseBProject(), Phase: Phase("Q")}
	if err := req.Validate(); err == nil {
		t.Error("expected error for unknown phase, got nil")
	}

	req = &ValidateRequest{Phase: PhaseDomain}
	if err := req.Validate(); err == nil {
		t.Error("expected error for missing project, got nil")
	}
}

func TestDockerfileRequest_Validate(t *testing.T) {
	p := samplePhaseBProject()
	req := &DockerfileRequest{ContainerConfig: &p.ContainerConfigs[0], ServiceName: "orders"}
	if err := req.Validate(); err != nil {
		t.Errorf("expected valid request, got %v", err)
	}

	req = &DockerfileRequest{ServiceName: "orders"}
	if err := req.Validate(); err == nil {
		t.Error("expected error for missing container config, got nil")
	}
}

func TestManifestRequest_Validate_OptionalConfig(t *testing.T) {
	p := samplePhaseBProject()
	req := &ManifestRequest{Manifest: &p.K8sManifests[0], ServiceName: "orders"}
	if err := req.Validate(); err != nil {
		t.Errorf("container config should be optional, got %v", err)
	}
}
