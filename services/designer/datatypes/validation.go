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

// ValidationStatus is the outcome of one validation rule.
type ValidationStatus string

const (
	ValidationPassed  ValidationStatus = "passed"
	ValidationInfo    ValidationStatus = "info"
	ValidationWarning ValidationStatus = "warning"
	ValidationFailed  ValidationStatus = "failed"
	ValidationError   ValidationStatus = "error"
)

// ValidationResult is one entry in the ordered report produced by the
// validation engine for a (project, phase) pair.
//
// Results are ephemeral: recomputed on demand, never persisted. IDs are
// unique within one report batch; uniqueness across batches is not
// guaranteed or needed.
type ValidationResult struct {
	ID       string           `json:"id"`
	Phase    Phase            `json:"phase"`
	Category string           `json:"category"`
	Status   ValidationStatus `json:"status"`
	Message  string           `json:"message"`
	Detail   string           `json:"detail,omitempty"`
}

// RecommendationSeverity grades an AI recommendation.
type RecommendationSeverity string

const (
	SeverityInfo    RecommendationSeverity = "info"
	SeverityWarning RecommendationSeverity = "warning"
	SeverityError   RecommendationSeverity = "error"
)

// AIRecommendation is one suggestion returned by the recommendation
// gateway. Ephemeral; ids are assigned server-side per response.
type AIRecommendation struct {
	ID              string                 `json:"id"`
	Type            string                 `json:"type"`
	Title           string                 `json:"title"`
	Description     string                 `json:"description"`
	Rationale       string                 `json:"rationale"`
	Severity        RecommendationSeverity `json:"severity"`
	Actionable      bool                   `json:"actionable"`
	SuggestedAction string                 `json:"suggestedAction,omitempty"`
}
