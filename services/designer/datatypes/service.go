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

// CommunicationType describes how a service talks to its collaborators.
type CommunicationType string

const (
	CommunicationSync  CommunicationType = "sync"
	CommunicationAsync CommunicationType = "async"
	CommunicationEvent CommunicationType = "event-driven"
)

// Service is one microservice identified during domain decomposition
// (phase A).
//
// BoundedContext is a free-text context name, not a foreign key, and
// Dependencies holds service names, not ids. Both are resolved by name
// matching at read time.
type Service struct {
	ID               string            `json:"id"`
	Name             string            `json:"name"`
	Description      string            `json:"description"`
	BoundedContext   string            `json:"boundedContext"`
	Responsibilities []string          `json:"responsibilities"`
	Dependencies     []string          `json:"dependencies"`
	Communication    CommunicationType `json:"communication"`
	DataOwnership    []string          `json:"dataOwnership"`
}

// BoundedContext is a named grouping of related domain concepts (DDD
// terminology), organizational only.
//
// The Services list is denormalized and is not kept in sync with
// Service.BoundedContext. Derived views ("services in this context")
// filter the project's service list by context name instead of trusting
// this field.
type BoundedContext struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	DomainEvents []string `json:"domainEvents"`
	Aggregates   []string `json:"aggregates"`
	Services     []string `json:"services"`
}

// ServicesInContext returns the project's services whose free-text
// bounded-context field matches the given context name.
func (p *Project) ServicesInContext(contextName string) []Service {
	var out []Service
	for _, svc := range p.Services {
		if svc.BoundedContext == contextName {
			out = append(out, svc)
		}
	}
	return out
}
