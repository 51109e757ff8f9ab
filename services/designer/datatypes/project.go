// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package datatypes provides the data model for the designer service.
//
// The root aggregate is Project: a single design exercise moving through
// four phases (A: domain decomposition, B: containerization,
// C: orchestration, D: resilience and observability). Child records are
// plain data; cross-references between them (serviceId fields, dependency
// names) are advisory and are resolved by filtering at read time, never
// trusted as enforced relations.
package datatypes

import "time"

// =============================================================================
// Phases
// =============================================================================

// Phase identifies one of the four design phases. The wire tokens are the
// single letters "A" through "D".
type Phase string

const (
	// PhaseDomain covers bounded contexts and service decomposition.
	PhaseDomain Phase = "A"

	// PhaseContainer covers per-service container configuration.
	PhaseContainer Phase = "B"

	// PhaseOrchestration covers Kubernetes manifests, SLOs and autoscaling.
	PhaseOrchestration Phase = "C"

	// PhaseResilience covers resilience patterns and observability.
	PhaseResilience Phase = "D"
)

// phaseOrder maps each phase to its position in the fixed A<B<C<D sequence.
var phaseOrder = map[Phase]int{
	PhaseDomain:        0,
	PhaseContainer:     1,
	PhaseOrchestration: 2,
	PhaseResilience:    3,
}

// Order returns the phase's position in the wizard sequence, or -1 for an
// unknown token.
func (p Phase) Order() int {
	idx, ok := phaseOrder[p]
	if !ok {
		return -1
	}
	return idx
}

// Valid reports whether p is one of the four known phase tokens.
func (p Phase) Valid() bool {
	_, ok := phaseOrder[p]
	return ok
}

// =============================================================================
// Project
// =============================================================================

// Project is the root aggregate for one design exercise.
//
// # Description
//
// A Project is created empty in phase A and accumulates child records as
// the user works through the wizard. Exactly one Project is active in a
// session. All child collections are ordered; ids are generated UUIDs
// unique within the project. Timestamps serialize as RFC 3339 strings.
//
// # Referential Integrity
//
// ContainerConfig.ServiceID and friends reference Service ids, and
// Service.Dependencies reference service names. Neither is enforced here;
// consumers derive views by filtering and must tolerate dangling
// references.
type Project struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`

	CurrentPhase Phase `json:"currentPhase"`

	BoundedContexts       []BoundedContext      `json:"boundedContexts"`
	Services              []Service             `json:"services"`
	ContainerConfigs      []ContainerConfig     `json:"containerConfigs"`
	SLODefinitions        []SLODefinition       `json:"sloDefinitions"`
	AutoscalingStrategies []AutoscalingStrategy `json:"autoscalingStrategies"`
	K8sManifests          []K8sManifest         `json:"k8sManifests"`
	ResiliencePatterns    []ResiliencePattern   `json:"resiliencePatterns"`
	ObservabilityConfigs  []ObservabilityConfig `json:"observabilityConfigs"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Clone returns a deep copy of the project.
//
// # Description
//
// The store applies mutations copy-on-write: every mutation operates on a
// clone so that snapshots handed to the debounced persistence writer and
// to handlers are never aliased to live state. All nested pointers
// (health checks, resource limits, resilience settings) are duplicated.
func (p *Project) Clone() *Project {
	if p == nil {
		return nil
	}
	out := *p

	out.BoundedContexts = append([]BoundedContext(nil), p.BoundedContexts...)
	for i := range out.BoundedContexts {
		bc := &out.BoundedContexts[i]
		bc.DomainEvents = append([]string(nil), bc.DomainEvents...)
		bc.Aggregates = append([]string(nil), bc.Aggregates...)
		bc.Services = append([]string(nil), bc.Services...)
	}

	out.Services = append([]Service(nil), p.Services...)
	for i := range out.Services {
		svc := &out.Services[i]
		svc.Responsibilities = append([]string(nil), svc.Responsibilities...)
		svc.Dependencies = append([]string(nil), svc.Dependencies...)
		svc.DataOwnership = append([]string(nil), svc.DataOwnership...)
	}

	out.ContainerConfigs = append([]ContainerConfig(nil), p.ContainerConfigs...)
	for i := range out.ContainerConfigs {
		cc := &out.ContainerConfigs[i]
		cc.Ports = append([]int(nil), cc.Ports...)
		cc.EnvVars = append([]EnvVar(nil), cc.EnvVars...)
		if cc.HealthCheck != nil {
			hc := *cc.HealthCheck
			cc.HealthCheck = &hc
		}
		if cc.ResourceLimits != nil {
			rl := *cc.ResourceLimits
			cc.ResourceLimits = &rl
		}
	}

	out.SLODefinitions = append([]SLODefinition(nil), p.SLODefinitions...)
	out.AutoscalingStrategies = append([]AutoscalingStrategy(nil), p.AutoscalingStrategies...)

	out.K8sManifests = append([]K8sManifest(nil), p.K8sManifests...)
	for i := range out.K8sManifests {
		m := &out.K8sManifests[i]
		m.Labels = append([]LabelPair(nil), m.Labels...)
		m.Annotations = append([]LabelPair(nil), m.Annotations...)
	}

	out.ResiliencePatterns = append([]ResiliencePattern(nil), p.ResiliencePatterns...)
	for i := range out.ResiliencePatterns {
		out.ResiliencePatterns[i].Settings = out.ResiliencePatterns[i].Settings.clone()
	}

	out.ObservabilityConfigs = append([]ObservabilityConfig(nil), p.ObservabilityConfigs...)

	return &out
}
