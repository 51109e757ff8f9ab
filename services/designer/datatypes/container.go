// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package datatypes

// BuildType selects single-stage or multi-stage Dockerfile generation.
type BuildType string

const (
	BuildSingleStage BuildType = "single-stage"
	BuildMultiStage  BuildType = "multi-stage"
)

// EnvVar is one environment variable entry in a container configuration.
//
// Values flagged IsSecret must never be rendered into generated
// artifacts; the Dockerfile generator emits a comment pointing at
// external secret management instead.
type EnvVar struct {
	Key      string `json:"key"`
	Value    string `json:"value"`
	IsSecret bool   `json:"isSecret"`
}

// HealthCheck describes an HTTP health probe for a container.
type HealthCheck struct {
	Path     string `json:"path"`
	Port     int    `json:"port"`
	Interval int    `json:"interval"` // seconds
}

// ResourceLimits holds Kubernetes-style resource request/limit strings
// (e.g. "100m", "512Mi").
type ResourceLimits struct {
	CPURequest    string `json:"cpuRequest"`
	CPULimit      string `json:"cpuLimit"`
	MemoryRequest string `json:"memoryRequest"`
	MemoryLimit   string `json:"memoryLimit"`
}

// ContainerConfig captures how one service is containerized (phase B).
//
// By convention at most one config exists per ServiceID; this is not
// enforced, and a second config for the same service simply coexists.
type ContainerConfig struct {
	ID             string          `json:"id"`
	ServiceID      string          `json:"serviceId"`
	BaseImage      string          `json:"baseImage"`
	BuildType      BuildType       `json:"buildType"`
	Ports          []int           `json:"ports"`
	EnvVars        []EnvVar        `json:"envVars"`
	HealthCheck    *HealthCheck    `json:"healthCheck,omitempty"`
	ResourceLimits *ResourceLimits `json:"resourceLimits,omitempty"`
}

// ConfigForService returns the first container config matching the given
// service id, or nil when the service is unconfigured.
func (p *Project) ConfigForService(serviceID string) *ContainerConfig {
	for i := range p.ContainerConfigs {
		if p.ContainerConfigs[i].ServiceID == serviceID {
			return &p.ContainerConfigs[i]
		}
	}
	return nil
}
