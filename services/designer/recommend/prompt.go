// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package recommend

import (
	"bytes"
	"strings"
	"text/template"

	"github.com/AleutianAI/AleutianBlueprint/services/designer/datatypes"
)

// =============================================================================
// Prompt Builder
// =============================================================================

// PromptBuilder renders the recommendation prompt for one design phase.
//
// # Description
//
// Builds a prompt that summarizes the relevant slice of the project for
// the requested phase and instructs the model to output a JSON array of
// recommendations. The prompt deliberately sends a compact summary, not
// the raw project JSON, to keep token usage predictable.
//
// # Thread Safety
//
// PromptBuilder is safe for concurrent use.
type PromptBuilder struct {
	tmpl *template.Template
}

// promptData is the data for prompt template rendering.
type promptData struct {
	Phase      datatypes.Phase
	PhaseTopic string
	Project    *datatypes.Project
}

// ServiceName resolves a service id to its display name. Child records
// reference services by id; the prompt shows names. Unknown ids render
// as the raw id rather than hiding the record.
func (d promptData) ServiceName(id string) string {
	for _, svc := range d.Project.Services {
		if svc.ID == id {
			return svc.Name
		}
	}
	return id
}

// phaseTopics maps each phase to the design concern the model should
// focus its recommendations on.
var phaseTopics = map[datatypes.Phase]string{
	datatypes.PhaseDomain:        "domain decomposition: service boundaries, bounded contexts, and inter-service dependencies",
	datatypes.PhaseContainer:     "containerization: base images, build strategy, environment configuration, health checks, and resource limits",
	datatypes.PhaseOrchestration: "Kubernetes orchestration: deployment strategy, replica counts, autoscaling, and SLOs",
	datatypes.PhaseResilience:    "resilience and observability: failure-handling patterns, metrics, logging, and tracing",
}

// recommendationPromptTemplate instructs the model to return JSON only.
const recommendationPromptTemplate = `You are an experienced microservices architect reviewing a system design.

Focus area for this review: {{.PhaseTopic}}.

## Project: {{.Project.Name}}
{{- if .Project.Description}}
{{.Project.Description}}
{{- end}}

## Services ({{len .Project.Services}})
{{- range .Project.Services}}
- {{.Name}}{{if .BoundedContext}} (context: {{.BoundedContext}}){{end}}{{if .Dependencies}} depends on: {{join .Dependencies ", "}}{{end}}
{{- else}}
- none defined yet
{{- end}}

## Bounded Contexts ({{len .Project.BoundedContexts}})
{{- range .Project.BoundedContexts}}
- {{.Name}}{{if .Services}}: {{join .Services ", "}}{{end}}
{{- else}}
- none defined yet
{{- end}}
{{- if .Project.ContainerConfigs}}

## Container Configs
{{- range .Project.ContainerConfigs}}
- {{$.ServiceName .ServiceID}}: image {{.BaseImage}}, build {{.BuildType}}, {{len .EnvVars}} env var(s){{if .HealthCheck}}, health check on {{.HealthCheck.Path}}{{end}}
{{- end}}
{{- end}}
{{- if .Project.K8sManifests}}

## Kubernetes Manifests
{{- range .Project.K8sManifests}}
- {{$.ServiceName .ServiceID}}: {{.Replicas}} replica(s), strategy {{.Strategy}}
{{- end}}
{{- end}}
{{- if .Project.SLODefinitions}}

## SLOs
{{- range .Project.SLODefinitions}}
- {{$.ServiceName .ServiceID}}: {{.Metric}} target {{.Target}} {{.Unit}}
{{- end}}
{{- end}}
{{- if .Project.ResiliencePatterns}}

## Resilience Patterns
{{- range .Project.ResiliencePatterns}}
- {{$.ServiceName .ServiceID}}: {{.Kind}}
{{- end}}
{{- end}}

## Instructions
Produce between 3 and 5 concrete recommendations for the focus area above.
Respond with ONLY a JSON array. No explanation, no markdown, just JSON:
[{"type":"<short_tag>","title":"<short title>","description":"<what to change>","rationale":"<why it matters>","severity":"info|warning|error","actionable":true|false,"suggestedAction":"<optional concrete step>"}]`

// NewPromptBuilder creates a new PromptBuilder.
func NewPromptBuilder() (*PromptBuilder, error) {
	funcMap := template.FuncMap{
		"join": strings.Join,
	}

	tmpl, err := template.New("recommendation").Funcs(funcMap).Parse(recommendationPromptTemplate)
	if err != nil {
		return nil, err
	}

	return &PromptBuilder{tmpl: tmpl}, nil
}

// Build renders the recommendation prompt for the given project and
// phase. Unknown phases fall back to the domain topic so the prompt is
// never empty; callers are expected to validate the phase upstream.
func (p *PromptBuilder) Build(project *datatypes.Project, phase datatypes.Phase) (string, error) {
	topic, ok := phaseTopics[phase]
	if !ok {
		topic = phaseTopics[datatypes.PhaseDomain]
	}

	data := promptData{
		Phase:      phase,
		PhaseTopic: topic,
		Project:    project,
	}

	var buf bytes.Buffer
	if err := p.tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
