// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package recommend adapts an external completion backend into design
// recommendations for one project phase.
//
// The gateway is deliberately not part of the hard core: every other
// feature of the designer works without it, and a missing credential
// only surfaces at the first recommendation call.
package recommend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/AleutianAI/AleutianBlueprint/services/designer/datatypes"
	"github.com/AleutianAI/AleutianBlueprint/services/llm"
)

var tracer = otel.Tracer("blueprint.designer.recommend")

// =============================================================================
// Errors
// =============================================================================

// ErrUnconfigured means no completion backend could be constructed,
// typically a missing OPENAI_API_KEY or OLLAMA_BASE_URL. The next call
// retries construction.
var ErrUnconfigured = errors.New("recommendation backend is not configured")

// ErrUpstream means the backend was reachable in principle but the call
// or its response failed. Distinct from an empty recommendation list,
// which is never a valid success.
var ErrUpstream = errors.New("recommendation backend request failed")

// =============================================================================
// Gateway
// =============================================================================

const (
	// maxRecommendations caps how many suggestions one response carries.
	maxRecommendations = 5

	// requestTimeout bounds one completion round trip.
	requestTimeout = 60 * time.Second
)

// ClientFactory constructs the completion backend on first use.
type ClientFactory func() (llm.LLMClient, error)

// Gateway turns (project, phase) into 3 to 5 AIRecommendation entries
// by prompting a completion backend and parsing its JSON reply.
//
// # Thread Safety
//
// Gateway is safe for concurrent use. The backend is constructed at
// most once per successful attempt; failed construction is retried on
// the next call.
type Gateway struct {
	prompts *PromptBuilder
	factory ClientFactory

	mu     sync.Mutex
	client llm.LLMClient
}

// NewGateway creates a Gateway with the default environment-driven
// backend selection: OLLAMA_BASE_URL picks the local Ollama backend,
// otherwise the OpenAI backend is used.
func NewGateway() (*Gateway, error) {
	return NewGatewayWithFactory(defaultClientFactory)
}

// NewGatewayWithFactory creates a Gateway with an explicit backend
// factory. Tests inject fakes here.
func NewGatewayWithFactory(factory ClientFactory) (*Gateway, error) {
	if factory == nil {
		return nil, errors.New("factory must not be nil")
	}
	prompts, err := NewPromptBuilder()
	if err != nil {
		return nil, fmt.Errorf("failed to build recommendation prompt template: %w", err)
	}
	return &Gateway{prompts: prompts, factory: factory}, nil
}

// defaultClientFactory selects a backend from the environment.
func defaultClientFactory() (llm.LLMClient, error) {
	if os.Getenv("OLLAMA_BASE_URL") != "" {
		return llm.NewOllamaClient()
	}
	return llm.NewOpenAIClient()
}

// backend returns the lazily constructed client.
func (g *Gateway) backend() (llm.LLMClient, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.client != nil {
		return g.client, nil
	}
	client, err := g.factory()
	if err != nil {
		slog.Warn("Recommendation backend unavailable", "error", err)
		return nil, fmt.Errorf("%w: %v", ErrUnconfigured, err)
	}
	g.client = client
	return client, nil
}

// Recommend produces design recommendations for the given phase.
//
// # Description
//
// Builds a phase-scoped prompt from the project, calls the backend, and
// parses the reply into 3 to 5 recommendations with server-assigned
// ids. Any transport or parse failure returns ErrUpstream; a missing
// backend returns ErrUnconfigured. Neither case ever degrades to an
// empty success.
func (g *Gateway) Recommend(ctx context.Context, project *datatypes.Project,
	phase datatypes.Phase) ([]datatypes.AIRecommendation, error) {

	ctx, span := tracer.Start(ctx, "Gateway.Recommend")
	defer span.End()
	span.SetAttributes(
		attribute.String("designer.phase", string(phase)),
		attribute.String("designer.project_id", project.ID),
	)

	client, err := g.backend()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	prompt, err := g.prompts.Build(project, phase)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("%w: prompt rendering: %v", ErrUpstream, err)
	}

	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	raw, err := client.Generate(ctx, prompt, llm.GenerationParams{})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		slog.Error("Recommendation completion failed", "phase", phase, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	recs, err := parseRecommendations(raw)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		slog.Error("Failed to parse recommendation response", "phase", phase, "error", err)
		return nil, err
	}

	span.SetAttributes(attribute.Int("designer.recommendation_count", len(recs)))
	slog.Debug("Recommendations produced", "phase", phase, "count", len(recs))
	return recs, nil
}

// =============================================================================
// Response parsing
// =============================================================================

// rawRecommendation mirrors the JSON shape requested from the model.
// Ids are never accepted from the model; the server assigns them.
type rawRecommendation struct {
	Type            string `json:"type"`
	Title           string `json:"title"`
	Description     string `json:"description"`
	Rationale       string `json:"rationale"`
	Severity        string `json:"severity"`
	Actionable      bool   `json:"actionable"`
	SuggestedAction string `json:"suggestedAction"`
}

// parseRecommendations extracts the JSON array from the model output.
// Models wrap JSON in markdown fences often enough that stripping them
// is part of the contract.
func parseRecommendations(raw string) ([]datatypes.AIRecommendation, error) {
	trimmed := stripFences(raw)

	start := strings.Index(trimmed, "[")
	end := strings.LastIndex(trimmed, "]")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("%w: no JSON array in response", ErrUpstream)
	}

	var parsed []rawRecommendation
	if err := json.Unmarshal([]byte(trimmed[start:end+1]), &parsed); err != nil {
		return nil, fmt.Errorf("%w: invalid JSON: %v", ErrUpstream, err)
	}
	if len(parsed) == 0 {
		return nil, fmt.Errorf("%w: empty recommendation list", ErrUpstream)
	}
	if len(parsed) > maxRecommendations {
		parsed = parsed[:maxRecommendations]
	}

	out := make([]datatypes.AIRecommendation, 0, len(parsed))
	for _, r := range parsed {
		if strings.TrimSpace(r.Title) == "" {
			continue
		}
		out = append(out, datatypes.AIRecommendation{
			ID:              uuid.NewString(),
			Type:            r.Type,
			Title:           r.Title,
			Description:     r.Description,
			Rationale:       r.Rationale,
			Severity:        normalizeSeverity(r.Severity),
			Actionable:      r.Actionable,
			SuggestedAction: r.SuggestedAction,
		})
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: no usable recommendations in response", ErrUpstream)
	}
	return out, nil
}

// stripFences removes a surrounding markdown code fence, if any.
func stripFences(s string) string {
	trimmed := strings.TrimSpace(s)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}

// normalizeSeverity coerces unknown severity tokens to info.
func normalizeSeverity(s string) datatypes.RecommendationSeverity {
	switch datatypes.RecommendationSeverity(strings.ToLower(strings.TrimSpace(s))) {
	case datatypes.SeverityWarning:
		return datatypes.SeverityWarning
	case datatypes.SeverityError:
		return datatypes.SeverityError
	default:
		return datatypes.SeverityInfo
	}
}
