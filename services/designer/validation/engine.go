// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package validation implements the per-phase design health checks.
//
// Run is a pure function of (project, phase): it holds no state, performs
// no I/O, and evaluates a fixed rule sequence per phase so that two calls
// on the same inputs produce identical reports up to the generated result
// ids. Rules are not mutually exclusive; every matching rule emits.
package validation

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/AleutianAI/AleutianBlueprint/services/designer/datatypes"
)

// Run produces the ordered validation report for one phase of a project.
// An unknown phase token yields an empty report.
func Run(p *datatypes.Project, phase datatypes.Phase) []datatypes.ValidationResult {
	b := reportBuilder{phase: phase}
	switch phase {
	case datatypes.PhaseDomain:
		runDomainRules(p, &b)
	case datatypes.PhaseContainer:
		runContainerRules(p, &b)
	case datatypes.PhaseOrchestration:
		runOrchestrationRules(p, &b)
	case datatypes.PhaseResilience:
		runResilienceRules(p, &b)
	}
	return b.results
}

// reportBuilder accumulates results in rule order, stamping each with a
// fresh id. IDs are unique within the batch; cross-call uniqueness is not
// required.
type reportBuilder struct {
	phase   datatypes.Phase
	results []datatypes.ValidationResult
}

func (b *reportBuilder) add(category string, status datatypes.ValidationStatus, message, detail string) {
	b.results = append(b.results, datatypes.ValidationResult{
		ID:       uuid.NewString(),
		Phase:    b.phase,
		Category: category,
		Status:   status,
		Message:  message,
		Detail:   detail,
	})
}

// =============================================================================
// Phase A: Domain Decomposition
// =============================================================================

func runDomainRules(p *datatypes.Project, b *reportBuilder) {
	// Rule 1: at least one service must exist.
	if len(p.Services) == 0 {
		b.add("Services", datatypes.ValidationFailed,
			"No services defined",
			"Define at least one service to complete domain decomposition.")
	} else {
		b.add("Services", datatypes.ValidationPassed,
			fmt.Sprintf("%d service(s) defined", len(p.Services)), "")
	}

	// Rule 2: bounded contexts are recommended, not required.
	if len(p.BoundedContexts) == 0 {
		b.add("Bounded Contexts", datatypes.ValidationWarning,
			"No bounded contexts defined",
			"Grouping services into bounded contexts clarifies ownership boundaries.")
	} else {
		b.add("Bounded Contexts", datatypes.ValidationPassed,
			fmt.Sprintf("%d bounded context(s) defined", len(p.BoundedContexts)), "")
	}

	// Rule 3: services without a bounded context, emitted only when present.
	orphans := 0
	for _, svc := range p.Services {
		if svc.BoundedContext == "" {
			orphans++
		}
	}
	if orphans > 0 {
		b.add("Service Ownership", datatypes.ValidationWarning,
			fmt.Sprintf("%d service(s) not assigned to a bounded context", orphans), "")
	}

	// Rule 4: circular dependency scan over declared dependency names.
	//
	// Edges are recorded in iteration order and each edge is checked
	// against previously recorded reverse edges. The reported pair keeps
	// encounter order rather than a canonical order, and two services
	// sharing the same pair of names produce duplicate reports. That is
	// the documented behavior of this scan, kept as-is.
	seen := make(map[string]bool)
	for _, svc := range p.Services {
		for _, dep := range svc.Dependencies {
			if seen[dep+"->"+svc.Name] {
				b.add("Dependencies", datatypes.ValidationError,
					fmt.Sprintf("Circular dependency between %s and %s", svc.Name, dep),
					"Break the cycle with an event or a shared upstream service.")
			}
			seen[svc.Name+"->"+dep] = true
		}
	}
}

// =============================================================================
// Phase B: Containerization
// =============================================================================

func runContainerRules(p *datatypes.Project, b *reportBuilder) {
	// Rule 1: every service should carry a container config.
	var unconfigured []string
	for _, svc := range p.Services {
		if p.ConfigForService(svc.ID) == nil {
			unconfigured = append(unconfigured, svc.Name)
		}
	}
	total := len(p.Services)
	switch {
	case len(unconfigured) > 0 && len(unconfigured) == total:
		b.add("Container Coverage", datatypes.ValidationFailed,
			fmt.Sprintf("0 of %d service(s) have a container configuration", total),
			"Unconfigured: "+strings.Join(unconfigured, ", "))
	case len(unconfigured) > 0:
		b.add("Container Coverage", datatypes.ValidationWarning,
			fmt.Sprintf("%d of %d service(s) have a container configuration",
				total-len(unconfigured), total),
			"Unconfigured: "+strings.Join(unconfigured, ", "))
	default:
		b.add("Container Coverage", datatypes.ValidationPassed,
			fmt.Sprintf("All %d service(s) have a container configuration", total), "")
	}

	// Rule 2: suggest multi-stage builds.
	singleStage := 0
	for _, cfg := range p.ContainerConfigs {
		if cfg.BuildType == datatypes.BuildSingleStage {
			singleStage++
		}
	}
	if singleStage > 0 {
		b.add("Build Strategy", datatypes.ValidationInfo,
			fmt.Sprintf("%d config(s) use single-stage builds", singleStage),
			"Multi-stage builds produce smaller production images.")
	}

	// Rule 3: missing health checks.
	noHealth := 0
	for _, cfg := range p.ContainerConfigs {
		if cfg.HealthCheck == nil {
			noHealth++
		}
	}
	if noHealth > 0 {
		b.add("Health Checks", datatypes.ValidationWarning,
			fmt.Sprintf("%d config(s) have no health check", noHealth),
			"Health checks let the orchestrator detect and replace unhealthy containers.")
	}
}

// =============================================================================
// Phase C: Orchestration
// =============================================================================

func runOrchestrationRules(p *datatypes.Project, b *reportBuilder) {
	if len(p.K8sManifests) == 0 {
		b.add("Manifests", datatypes.ValidationFailed,
			"No Kubernetes manifests defined",
			"Define a deployment manifest for each service.")
	} else {
		b.add("Manifests", datatypes.ValidationPassed,
			fmt.Sprintf("%d manifest(s) defined", len(p.K8sManifests)), "")
	}

	if len(p.SLODefinitions) == 0 {
		b.add("SLOs", datatypes.ValidationWarning,
			"No SLOs defined",
			"SLOs make reliability targets explicit and measurable.")
	}

	if len(p.AutoscalingStrategies) == 0 {
		b.add("Autoscaling", datatypes.ValidationInfo,
			"No autoscaling strategies defined",
			"Consider HPA for load-sensitive services.")
	}
}

// =============================================================================
// Phase D: Resilience & Observability
// =============================================================================

func runResilienceRules(p *datatypes.Project, b *reportBuilder) {
	if len(p.ResiliencePatterns) == 0 {
		b.add("Resilience", datatypes.ValidationWarning,
			"No resilience patterns defined",
			"Circuit breakers and retries contain cascading failures.")
	} else {
		b.add("Resilience", datatypes.ValidationPassed,
			fmt.Sprintf("%d resilience pattern(s) defined", len(p.ResiliencePatterns)), "")
	}

	if len(p.ObservabilityConfigs) == 0 {
		b.add("Observability", datatypes.ValidationWarning,
			"No observability configuration defined",
			"Metrics, logging and tracing are needed to operate the system.")
	} else {
		b.add("Observability", datatypes.ValidationPassed,
			fmt.Sprintf("%d observability config(s) defined", len(p.ObservabilityConfigs)), "")
	}
}
