// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package generate

import (
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/AleutianAI/AleutianBlueprint/services/designer/datatypes"
)

func sampleManifest() *datatypes.K8sManifest {
	return &datatypes.K8sManifest{
		ID:        "m1",
		ServiceID: "s1",
		Strategy:  datatypes.DeployRollingUpdate,
		Replicas:  3,
		Namespace: "prod",
		Labels: []datatypes.LabelPair{
			{Key: "team", Value: "sales"},
			{Key: "tier", Value: "backend"},
		},
	}
}

func TestK8sManifests_TwoDocuments(t *testing.T) {
	out, err := K8sManifests(sampleManifest(), "Order Service", nil)
	if err != nil {
		t.Fatalf("generation failed: %v", err)
	}

	docs := strings.Split(out, "\n---\n")
	if len(docs) != 2 {
		t.Fatalf("expected Deployment + Service separated by ---, got %d documents", len(docs))
	}
	if !strings.Contains(docs[0], "kind: Deployment") {
		t.Error("first document should be the Deployment")
	}
	if !strings.Contains(docs[1], "kind: Service") || !strings.Contains(docs[1], "type: ClusterIP") {
		t.Error("second document should be a ClusterIP Service")
	}

	// Both documents must be parseable YAML.
	for i, doc := range docs {
		var node map[string]any
		if err := yaml.Unmarshal([]byte(doc), &node); err != nil {
			t.Errorf("document %d is not valid YAML: %v", i, err)
		}
	}
}

func TestK8sManifests_NormalizedName(t *testing.T) {
	out, err := K8sManifests(sampleManifest(), "Order Service", nil)
	if err != nil {
		t.Fatalf("generation failed: %v", err)
	}
	if !strings.Contains(out, "name: order-service") {
		t.Error("resource name should be the lower-cased, hyphenated service name")
	}
	if !strings.Contains(out, "app: order-service") {
		t.Error("app selector label should use the normalized name")
	}
}

func TestK8sManifests_RollingUpdateSurge(t *testing.T) {
	out, err := K8sManifests(sampleManifest(), "orders", nil)
	if err != nil {
		t.Fatalf("generation failed: %v", err)
	}
	if strings.Count(out, "25%") != 2 {
		t.Errorf("RollingUpdate must render surge and unavailable at 25%% each:\n%s", out)
	}

	m := sampleManifest()
	m.Strategy = datatypes.DeployRecreate
	out, err = K8sManifests(m, "orders", nil)
	if err != nil {
		t.Fatalf("generation failed: %v", err)
	}
	if strings.Contains(out, "25%") {
		t.Error("Recreate must not render rolling-update percentages")
	}
	if !strings.Contains(out, "type: Recreate") {
		t.Error("Recreate strategy type missing")
	}
}

func TestK8sManifests_DefaultsWithoutConfig(t *testing.T) {
	out, err := K8sManifests(sampleManifest(), "orders", nil)
	if err != nil {
		t.Fatalf("generation failed: %v", err)
	}
	for _, want := range []string{
		"containerPort: 3000",
		"cpu: 100m",
		"cpu: 500m",
		"memory: 128Mi",
		"memory: 512Mi",
		"targetPort: 3000",
		"port: 80",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected default %q in manifest:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Probe") {
		t.Error("no probes should render without a health check descriptor")
	}
}

func TestK8sManifests_ProbesFromHealthCheck(t *testing.T) {
	cfg := &datatypes.ContainerConfig{
		ID:        "cc1",
		ServiceID: "s1",
		Ports:     []int{8080},
		HealthCheck: &datatypes.HealthCheck{
			Path: "/status", Port: 8080, Interval: 20,
		},
		ResourceLimits: &datatypes.ResourceLimits{
			CPURequest: "250m", CPULimit: "1", MemoryRequest: "256Mi", MemoryLimit: "1Gi",
		},
	}
	out, err := K8sManifests(sampleManifest(), "orders", cfg)
	if err != nil {
		t.Fatalf("generation failed: %v", err)
	}

	if strings.Count(out, "httpGet:") != 2 {
		t.Errorf("expected exactly two probe blocks:\n%s", out)
	}
	if strings.Count(out, "port: 8080") < 2 {
		t.Error("both probes must reference the container port")
	}
	if !strings.Contains(out, "initialDelaySeconds: 15") || !strings.Contains(out, "initialDelaySeconds: 5") {
		t.Error("liveness and readiness must use their distinct initial delays")
	}
	if strings.Count(out, "periodSeconds: 20") != 2 {
		t.Error("probe period should come from the health check interval")
	}
	if !strings.Contains(out, "cpu: 250m") || !strings.Contains(out, "memory: 1Gi") {
		t.Error("resource bounds should come from the container config")
	}
}

func TestK8sManifests_LabelOrderAndAppPrecedence(t *testing.T) {
	m := sampleManifest()
	m.Labels = []datatypes.LabelPair{
		{Key: "zeta", Value: "1"},
		{Key: "app", Value: "shadowed"},
		{Key: "alpha", Value: "2"},
	}
	out, err := K8sManifests(m, "orders", nil)
	if err != nil {
		t.Fatalf("generation failed: %v", err)
	}

	if strings.Contains(out, "shadowed") {
		t.Error("stored app label must be shadowed by the synthesized one")
	}
	zeta := strings.Index(out, "zeta: \"1\"")
	if zeta == -1 {
		zeta = strings.Index(out, "zeta: 1")
	}
	alpha := strings.Index(out, "alpha: \"2\"")
	if alpha == -1 {
		alpha = strings.Index(out, "alpha: 2")
	}
	if zeta == -1 || alpha == -1 || zeta > alpha {
		t.Error("labels must render in stored order")
	}
}

func TestK8sManifests_BlueGreenAnnotation(t *testing.T) {
	m := sampleManifest()
	m.Strategy = datatypes.DeployBlueGreen
	out, err := K8sManifests(m, "orders", nil)
	if err != nil {
		t.Fatalf("generation failed: %v", err)
	}
	if !strings.Contains(out, "blueprint.aleutian.ai/rollout: bluegreen") {
		t.Error("BlueGreen should be preserved as a rollout annotation")
	}
	if strings.Contains(out, "25%") {
		t.Error("BlueGreen should not emit rolling-update percentages")
	}
}

func TestK8sManifests_StableRendering(t *testing.T) {
	a, err := K8sManifests(sampleManifest(), "orders", nil)
	if err != nil {
		t.Fatalf("generation failed: %v", err)
	}
	b, err := K8sManifests(sampleManifest(), "orders", nil)
	if err != nil {
		t.Fatalf("generation failed: %v", err)
	}
	if a != b {
		t.Error("identical input must produce byte-identical output")
	}
}
