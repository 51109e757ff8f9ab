// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package badger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"github.com/AleutianAI/AleutianBlueprint/services/designer/datatypes"
	"github.com/AleutianAI/AleutianBlueprint/services/designer/store"
)

// projectKeyPrefix namespaces project records within the key space.
const projectKeyPrefix = "project:"

// ProjectRepository implements store.ProjectRepository on BadgerDB.
// Projects are stored as JSON values under "project:<id>" keys.
type ProjectRepository struct {
	db *badger.DB
}

// NewProjectRepository wraps an opened database. The caller retains
// ownership of db and its Close().
func NewProjectRepository(db *badger.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

func projectKey(id string) []byte {
	return []byte(projectKeyPrefix + id)
}

// Create allocates an empty project in phase A with server-assigned id
// and timestamps, and persists it.
func (r *ProjectRepository) Create(ctx context.Context, name, description string) (*datatypes.Project, error) {
	now := time.Now().UTC()
	p := &datatypes.Project{
		ID:           uuid.NewString(),
		Name:         name,
		Description:  description,
		CurrentPhase: datatypes.PhaseDomain,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := r.Save(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Get returns the stored project or store.ErrProjectNotFound.
func (r *ProjectRepository) Get(ctx context.Context, id string) (*datatypes.Project, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var p datatypes.Project
	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(projectKey(id))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &p)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, store.ErrProjectNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get project %s: %w", id, err)
	}
	return &p, nil
}

// List returns all stored projects in key order.
func (r *ProjectRepository) List(ctx context.Context) ([]*datatypes.Project, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var projects []*datatypes.Project
	err := r.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(projectKeyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			var p datatypes.Project
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &p)
			}); err != nil {
				return err
			}
			projects = append(projects, &p)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	return projects, nil
}

// Patch applies the present fields of the patch to the stored project,
// bumps UpdatedAt, and returns the result.
func (r *ProjectRepository) Patch(ctx context.Context, id string, patch *datatypes.ProjectPatch) (*datatypes.Project, error) {
	existing, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	updated := patch.Apply(existing)
	updated.UpdatedAt = time.Now().UTC()
	if err := r.Save(ctx, updated); err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes the project, reporting whether a record existed.
func (r *ProjectRepository) Delete(ctx context.Context, id string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	existed := false
	err := r.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(projectKey(id)); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return nil
			}
			return err
		}
		existed = true
		return txn.Delete(projectKey(id))
	})
	if err != nil {
		return false, fmt.Errorf("delete project %s: %w", id, err)
	}
	return existed, nil
}

// Save persists a full snapshot, creating or replacing the record.
func (r *ProjectRepository) Save(ctx context.Context, p *datatypes.Project) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal project %s: %w", p.ID, err)
	}
	err = r.db.Update(func(txn *badger.Txn) error {
		return txn.Set(projectKey(p.ID), data)
	})
	if err != nil {
		return fmt.Errorf("save project %s: %w", p.ID, err)
	}
	return nil
}
