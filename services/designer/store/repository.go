// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package store owns the single active project of a design session and
// provides the only sanctioned mutation surface over it.
package store

import (
	"context"
	"errors"

	"github.com/AleutianAI/AleutianBlueprint/services/designer/datatypes"
)

// ErrProjectNotFound is returned by repository operations on an unknown
// project id. At the store's own in-memory collection operations an
// unknown child id is a silent no-op instead; the two layers follow
// different policies on purpose.
var ErrProjectNotFound = errors.New("project not found")

// ProjectRepository is the persistence collaborator consumed by the
// Store. Implementations must be safe for concurrent use; the debounced
// writer may call Save while handlers read.
type ProjectRepository interface {
	// Create allocates a new empty project in phase A with a server-assigned
	// id and timestamps.
	Create(ctx context.Context, name, description string) (*datatypes.Project, error)

	// Get returns the project or ErrProjectNotFound.
	Get(ctx context.Context, id string) (*datatypes.Project, error)

	// List returns all stored projects.
	List(ctx context.Context) ([]*datatypes.Project, error)

	// Patch applies the present fields of the patch and returns the updated
	// project, or ErrProjectNotFound.
	Patch(ctx context.Context, id string, patch *datatypes.ProjectPatch) (*datatypes.Project, error)

	// Delete removes the project, reporting whether anything was deleted.
	Delete(ctx context.Context, id string) (bool, error)

	// Save persists a full project snapshot, creating or replacing the
	// stored record. Used by the debounced writer.
	Save(ctx context.Context, p *datatypes.Project) error
}
