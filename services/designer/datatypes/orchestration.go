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

// MetricKind classifies an SLO target.
type MetricKind string

const (
	MetricAvailability MetricKind = "availability"
	MetricLatency      MetricKind = "latency"
	MetricThroughput   MetricKind = "throughput"
	MetricErrorRate    MetricKind = "error-rate"
)

// SLODefinition is a numeric reliability target for one service over a
// measurement window.
type SLODefinition struct {
	ID        string     `json:"id"`
	ServiceID string     `json:"serviceId"`
	Metric    MetricKind `json:"metric"`
	Target    float64    `json:"target"`
	Unit      string     `json:"unit"`
	Window    string     `json:"window"`
}

// ScalingMechanism names an autoscaling approach. The tags are opaque; no
// scaling logic runs here.
type ScalingMechanism string

const (
	ScalingHPA  ScalingMechanism = "HPA"
	ScalingVPA  ScalingMechanism = "VPA"
	ScalingKEDA ScalingMechanism = "KEDA"
)

// AutoscalingStrategy is a declared scaling policy for one service.
type AutoscalingStrategy struct {
	ID           string           `json:"id"`
	ServiceID    string           `json:"serviceId"`
	Mechanism    ScalingMechanism `json:"mechanism"`
	MinReplicas  int              `json:"minReplicas"`
	MaxReplicas  int              `json:"maxReplicas"`
	TargetMetric string           `json:"targetMetric"`
	TargetValue  int              `json:"targetValue"` // percentage
}

// DeploymentStrategy names a Kubernetes rollout approach.
type DeploymentStrategy string

const (
	DeployRollingUpdate DeploymentStrategy = "RollingUpdate"
	DeployRecreate      DeploymentStrategy = "Recreate"
	DeployBlueGreen     DeploymentStrategy = "BlueGreen"
	DeployCanary        DeploymentStrategy = "Canary"
)

// LabelPair is one label or annotation entry.
//
// Labels are kept as an ordered slice rather than a Go map so that
// generated YAML renders entries in their stored order and round-trips
// deterministically. Go maps have no insertion order to preserve.
type LabelPair struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// K8sManifest captures deployment shape for one service (phase C). The
// actual YAML is derived on demand by the generate package.
type K8sManifest struct {
	ID          string             `json:"id"`
	ServiceID   string             `json:"serviceId"`
	Strategy    DeploymentStrategy `json:"deploymentStrategy"`
	Replicas    int                `json:"replicas"`
	Namespace   string             `json:"namespace"`
	Labels      []LabelPair        `json:"labels"`
	Annotations []LabelPair        `json:"annotations,omitempty"`
}
