// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Request and response types for the designer HTTP surface. Validation
// uses go-playground/validator with a shared instance, mirroring the rest
// of the Aleutian services.
package datatypes

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

const (
	// MaxProjectNameLen bounds project names.
	MaxProjectNameLen = 200

	// MaxDescriptionLen bounds free-text description fields.
	MaxDescriptionLen = 4000
)

// designerValidate is the shared validator instance for request types.
var designerValidate *validator.Validate

func init() {
	designerValidate = validator.New()

	_ = designerValidate.RegisterValidation("phase", validatePhase)
}

// validatePhase accepts the four known phase tokens.
func validatePhase(fl validator.FieldLevel) bool {
	return Phase(fl.Field().String()).Valid()
}

// =============================================================================
// Project CRUD
// =============================================================================

// CreateProjectRequest is the body of POST /v1/projects.
type CreateProjectRequest struct {
	Name        string `json:"name" validate:"required,max=200"`
	Description string `json:"description" validate:"max=4000"`
}

// Validate checks the request against its constraints.
func (r *CreateProjectRequest) Validate() error {
	if err := designerValidate.Struct(r); err != nil {
		return fmt.Errorf("invalid create project request: %w", err)
	}
	return nil
}

// ProjectPatch is the body of PATCH /v1/projects/:id. Every field is
// optional; nil fields leave the stored value unchanged. Collection
// fields replace the stored collection wholesale when present.
type ProjectPatch struct {
	Name         *string `json:"name,omitempty" validate:"omitempty,max=200"`
	Description  *string `json:"description,omitempty" validate:"omitempty,max=4000"`
	CurrentPhase *Phase  `json:"currentPhase,omitempty"`

	BoundedContexts       *[]BoundedContext      `json:"boundedContexts,omitempty"`
	Services              *[]Service             `json:"services,omitempty"`
	ContainerConfigs      *[]ContainerConfig     `json:"containerConfigs,omitempty"`
	SLODefinitions        *[]SLODefinition       `json:"sloDefinitions,omitempty"`
	AutoscalingStrategies *[]AutoscalingStrategy `json:"autoscalingStrategies,omitempty"`
	K8sManifests          *[]K8sManifest         `json:"k8sManifests,omitempty"`
	ResiliencePatterns    *[]ResiliencePattern   `json:"resiliencePatterns,omitempty"`
	ObservabilityConfigs  *[]ObservabilityConfig `json:"observabilityConfigs,omitempty"`
}

// Validate checks the patch; an unknown phase token is rejected before
// any state changes.
func (r *ProjectPatch) Validate() error {
	if err := designerValidate.Struct(r); err != nil {
		return fmt.Errorf("invalid project patch: %w", err)
	}
	if r.CurrentPhase != nil && !r.CurrentPhase.Valid() {
		return fmt.Errorf("invalid project patch: unknown phase %q", *r.CurrentPhase)
	}
	return nil
}

// Apply copies the patch's present fields onto a clone of the given
// project and returns it. The input project is not modified.
func (r *ProjectPatch) Apply(p *Project) *Project {
	out := p.Clone()
	if r.Name != nil {
		out.Name = *r.Name
	}
	if r.Description != nil {
		out.Description = *r.Description
	}
	if r.CurrentPhase != nil {
		out.CurrentPhase = *r.CurrentPhase
	}
	if r.BoundedContexts != nil {
		out.BoundedContexts = append([]BoundedContext(nil), *r.BoundedContexts...)
	}
	if r.Services != nil {
		out.Services = append([]Service(nil), *r.Services...)
	}
	if r.ContainerConfigs != nil {
		out.ContainerConfigs = append([]ContainerConfig(nil), *r.ContainerConfigs...)
	}
	if r.SLODefinitions != nil {
		out.SLODefinitions = append([]SLODefinition(nil), *r.SLODefinitions...)
	}
	if r.AutoscalingStrategies != nil {
		out.AutoscalingStrategies = append([]AutoscalingStrategy(nil), *r.AutoscalingStrategies...)
	}
	if r.K8sManifests != nil {
		out.K8sManifests = append([]K8sManifest(nil), *r.K8sManifests...)
	}
	if r.ResiliencePatterns != nil {
		out.ResiliencePatterns = append([]ResiliencePattern(nil), *r.ResiliencePatterns...)
	}
	if r.ObservabilityConfigs != nil {
		out.ObservabilityConfigs = append([]ObservabilityConfig(nil), *r.ObservabilityConfigs...)
	}
	return out
}

// =============================================================================
// Validation and Generation
// =============================================================================

// ValidateRequest is the body of POST /v1/validate.
type ValidateRequest struct {
	Project *Project `json:"project" validate:"required"`
	Phase   Phase    `json:"phase" validate:"required,phase"`
}

// Validate checks the request against its constraints.
func (r *ValidateRequest) Validate() error {
	if err := designerValidate.Struct(r); err != nil {
		return fmt.Errorf("invalid validate request: %w", err)
	}
	return nil
}

// ValidateResponse carries the ordered validation report.
type ValidateResponse struct {
	Validations []ValidationResult `json:"validations"`
}

// DockerfileRequest is the body of POST /v1/generate/dockerfile.
type DockerfileRequest struct {
	ContainerConfig *ContainerConfig `json:"containerConfig" validate:"required"`
	ServiceName     string           `json:"serviceName" validate:"required,max=200"`
}

// Validate checks the request against its constraints.
func (r *DockerfileRequest) Validate() error {
	if err := designerValidate.Struct(r); err != nil {
		return fmt.Errorf("invalid dockerfile request: %w", err)
	}
	return nil
}

// DockerfileResponse carries the rendered Dockerfile text.
type DockerfileResponse struct {
	Dockerfile string `json:"dockerfile"`
}

// ManifestRequest is the body of POST /v1/generate/manifest. The
// container config is optional; generation falls back to fixed defaults
// when it is absent.
type ManifestRequest struct {
	Manifest        *K8sManifest     `json:"manifest" validate:"required"`
	ServiceName     string           `json:"serviceName" validate:"required,max=200"`
	ContainerConfig *ContainerConfig `json:"containerConfig,omitempty"`
}

// Validate checks the request against its constraints.
func (r *ManifestRequest) Validate() error {
	if err := designerValidate.Struct(r); err != nil {
		return fmt.Errorf("invalid manifest request: %w", err)
	}
	return nil
}

// ManifestResponse carries the rendered Kubernetes YAML.
type ManifestResponse struct {
	Manifest string `json:"manifest"`
}

// =============================================================================
// Recommendations
// =============================================================================

// RecommendationRequest is the body of POST /v1/recommendations.
type RecommendationRequest struct {
	Project *Project `json:"project" validate:"required"`
	Phase   Phase    `json:"phase" validate:"required,phase"`
}

// Validate checks the request against its constraints.
func (r *RecommendationRequest) Validate() error {
	if err := designerValidate.Struct(r); err != nil {
		return fmt.Errorf("invalid recommendation request: %w", err)
	}
	return nil
}

// RecommendationResponse carries the gateway's suggestions.
type RecommendationResponse struct {
	Recommendations []AIRecommendation `json:"recommendations"`
}
