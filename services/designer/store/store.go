// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package store

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/AleutianAI/AleutianBlueprint/services/designer/datatypes"
	"github.com/AleutianAI/AleutianBlueprint/services/designer/observability"
	"github.com/AleutianAI/AleutianBlueprint/services/designer/validation"
	"github.com/AleutianAI/AleutianBlueprint/services/designer/workflow"
)

// DefaultDebounceWindow is how long the store waits after the last
// mutation before writing the project snapshot downstream.
const DefaultDebounceWindow = time.Second

// saveTimeout bounds one persistence write.
const saveTimeout = 5 * time.Second

// Options configures a Store. Zero values select production defaults.
type Options struct {
	// Clock supplies time and timers; RealClock() when nil.
	Clock Clock

	// Logger receives persistence failures; slog.Default() when nil.
	Logger *slog.Logger

	// DebounceWindow overrides DefaultDebounceWindow when positive.
	DebounceWindow time.Duration
}

// Store owns the single active project of a design session.
//
// # Description
//
// All mutations are copy-on-write: each one produces a new Project value,
// stamps UpdatedAt, recomputes the validation report for the project's
// current phase, and schedules a debounced persistence write carrying the
// then-latest snapshot. Unknown child ids are silent no-ops. The store is
// single-writer by design; the only concurrent activity is the debounced
// save, which always sends a full snapshot, so last-write-wins holds.
//
// # Error Policy
//
// A failed persistence write is logged and swallowed; local state remains
// the source of truth with no rollback and no retry until the next
// mutation schedules another write.
type Store struct {
	mu     sync.Mutex
	repo   ProjectRepository
	clock  Clock
	logger *slog.Logger
	window time.Duration

	current     *datatypes.Project
	validations []datatypes.ValidationResult

	recommendations []datatypes.AIRecommendation
	recSeq          uint64
	recApplied      uint64
	recInFlight     int

	pending Timer
	saves   sync.WaitGroup
	fetches sync.WaitGroup
}

// NewStore builds a store around the given persistence collaborator.
func NewStore(repo ProjectRepository, opts Options) *Store {
	s := &Store{
		repo:   repo,
		clock:  opts.Clock,
		logger: opts.Logger,
		window: opts.DebounceWindow,
	}
	if s.clock == nil {
		s.clock = RealClock()
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.window <= 0 {
		s.window = DefaultDebounceWindow
	}
	return s
}

// Create makes a new empty project the active one.
func (s *Store) Create(ctx context.Context, name, description string) (*datatypes.Project, error) {
	p, err := s.repo.Create(ctx, name, description)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.current = p.Clone()
	s.validations = validation.Run(s.current, s.current.CurrentPhase)
	s.recommendations = nil
	s.mu.Unlock()
	return p, nil
}

// Open loads an existing project and makes it the active one.
func (s *Store) Open(ctx context.Context, id string) (*datatypes.Project, error) {
	p, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.current = p.Clone()
	s.validations = validation.Run(s.current, s.current.CurrentPhase)
	s.recommendations = nil
	s.mu.Unlock()
	return p, nil
}

// Discard drops the active project without persisting anything further.
func (s *Store) Discard() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending != nil {
		s.pending.Stop()
		s.pending = nil
	}
	s.current = nil
	s.validations = nil
	s.recommendations = nil
}

// Current returns a snapshot of the active project, or nil when none is
// open.
func (s *Store) Current() *datatypes.Project {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current.Clone()
}

// Validations returns the report computed after the last mutation or
// phase change.
func (s *Store) Validations() []datatypes.ValidationResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]datatypes.ValidationResult(nil), s.validations...)
}

// SetPhase moves the project to the target phase unconditionally. Gating
// is the caller's responsibility (workflow.CanNavigate); the store only
// records the navigation, revalidates for the new phase, and schedules a
// save like any other mutation.
func (s *Store) SetPhase(target datatypes.Phase) *datatypes.Project {
	return s.mutate(func(p *datatypes.Project) bool {
		p.CurrentPhase = target
		return true
	})
}

// ErrPhaseLocked is returned by Navigate when the target phase's unlock
// artifacts are missing.
var ErrPhaseLocked = errors.New("target phase is locked")

// Navigate applies the phase gate before moving the active project to
// the target phase. Backward and same-phase moves always succeed;
// forward moves require the gate's unlock artifacts.
func (s *Store) Navigate(target datatypes.Phase) (*datatypes.Project, error) {
	s.mu.Lock()
	current := s.current
	s.mu.Unlock()
	if current == nil {
		return nil, ErrProjectNotFound
	}
	if !workflow.CanNavigate(current, target) {
		return nil, ErrPhaseLocked
	}
	return s.SetPhase(target), nil
}

// Flush writes any pending snapshot synchronously. Used on shutdown.
func (s *Store) Flush(ctx context.Context) {
	s.mu.Lock()
	hadPending := s.pending != nil
	if s.pending != nil {
		s.pending.Stop()
		s.pending = nil
	}
	var snapshot *datatypes.Project
	if hadPending && s.current != nil {
		snapshot = s.current.Clone()
	}
	s.mu.Unlock()

	if snapshot != nil {
		if err := s.repo.Save(ctx, snapshot); err != nil {
			s.logger.Error("final project save failed; local state discarded unsaved",
				"project_id", snapshot.ID, "error", err)
		}
	}
	s.saves.Wait()
}

// mutate clones the active project, applies the change, and on success
// swaps it in, revalidates and schedules the debounced save. When apply
// reports false (unknown id) the project is returned unchanged, UpdatedAt
// included.
func (s *Store) mutate(apply func(p *datatypes.Project) bool) *datatypes.Project {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return nil
	}
	next := s.current.Clone()
	if !apply(next) {
		return s.current.Clone()
	}
	next.UpdatedAt = s.clock.Now()
	s.current = next
	s.validations = validation.Run(next, next.CurrentPhase)
	s.scheduleSaveLocked()
	return next.Clone()
}

// scheduleSaveLocked (re)arms the debounce timer. Mutations inside the
// window collapse into one write; the snapshot is captured when the timer
// fires so the write always carries the latest revision.
func (s *Store) scheduleSaveLocked() {
	if s.pending != nil {
		s.pending.Stop()
	}
	s.pending = s.clock.AfterFunc(s.window, s.flushPending)
}

func (s *Store) flushPending() {
	s.mu.Lock()
	s.pending = nil
	if s.current == nil {
		s.mu.Unlock()
		return
	}
	snapshot := s.current.Clone()
	s.mu.Unlock()

	s.saves.Add(1)
	go func() {
		defer s.saves.Done()
		ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
		defer cancel()
		if err := s.repo.Save(ctx, snapshot); err != nil {
			// Local state stays authoritative; the divergence heals on the
			// next successful save.
			observability.ProjectSaves.WithLabelValues("error").Inc()
			s.logger.Error("debounced project save failed; keeping local state",
				"project_id", snapshot.ID, "error", err)
			return
		}
		observability.ProjectSaves.WithLabelValues("ok").Inc()
	}()
}

// =============================================================================
// Generic collection helpers
// =============================================================================

func updateByID[T any](items []T, id string, idOf func(*T) string, change func(*T)) bool {
	for i := range items {
		if idOf(&items[i]) == id {
			change(&items[i])
			return true
		}
	}
	return false
}

func removeByID[T any](items []T, id string, idOf func(*T) string) ([]T, bool) {
	for i := range items {
		if idOf(&items[i]) == id {
			return append(items[:i:i], items[i+1:]...), true
		}
	}
	return items, false
}

// =============================================================================
// Bounded contexts
// =============================================================================

func (s *Store) AddBoundedContext(bc datatypes.BoundedContext) *datatypes.Project {
	return s.mutate(func(p *datatypes.Project) bool {
		p.BoundedContexts = append(p.BoundedContexts, bc)
		return true
	})
}

func (s *Store) UpdateBoundedContext(id string, change func(*datatypes.BoundedContext)) *datatypes.Project {
	return s.mutate(func(p *datatypes.Project) bool {
		return updateByID(p.BoundedContexts, id,
			func(v *datatypes.BoundedContext) string { return v.ID }, change)
	})
}

func (s *Store) RemoveBoundedContext(id string) *datatypes.Project {
	return s.mutate(func(p *datatypes.Project) bool {
		var ok bool
		p.BoundedContexts, ok = removeByID(p.BoundedContexts, id,
			func(v *datatypes.BoundedContext) string { return v.ID })
		return ok
	})
}

// =============================================================================
// Services
// =============================================================================

func (s *Store) AddService(svc datatypes.Service) *datatypes.Project {
	return s.mutate(func(p *datatypes.Project) bool {
		p.Services = append(p.Services, svc)
		return true
	})
}

func (s *Store) UpdateService(id string, change func(*datatypes.Service)) *datatypes.Project {
	return s.mutate(func(p *datatypes.Project) bool {
		return updateByID(p.Services, id,
			func(v *datatypes.Service) string { return v.ID }, change)
	})
}

func (s *Store) RemoveService(id string) *datatypes.Project {
	return s.mutate(func(p *datatypes.Project) bool {
		var ok bool
		p.Services, ok = removeByID(p.Services, id,
			func(v *datatypes.Service) string { return v.ID })
		return ok
	})
}

// =============================================================================
// Container configs
// =============================================================================

func (s *Store) AddContainerConfig(cc datatypes.ContainerConfig) *datatypes.Project {
	return s.mutate(func(p *datatypes.Project) bool {
		p.ContainerConfigs = append(p.ContainerConfigs, cc)
		return true
	})
}

func (s *Store) UpdateContainerConfig(id string, change func(*datatypes.ContainerConfig)) *datatypes.Project {
	return s.mutate(func(p *datatypes.Project) bool {
		return updateByID(p.ContainerConfigs, id,
			func(v *datatypes.ContainerConfig) string { return v.ID }, change)
	})
}

func (s *Store) RemoveContainerConfig(id string) *datatypes.Project {
	return s.mutate(func(p *datatypes.Project) bool {
		var ok bool
		p.ContainerConfigs, ok = removeByID(p.ContainerConfigs, id,
			func(v *datatypes.ContainerConfig) string { return v.ID })
		return ok
	})
}

// =============================================================================
// SLO definitions
// =============================================================================

func (s *Store) AddSLODefinition(slo datatypes.SLODefinition) *datatypes.Project {
	return s.mutate(func(p *datatypes.Project) bool {
		p.SLODefinitions = append(p.SLODefinitions, slo)
		return true
	})
}

func (s *Store) UpdateSLODefinition(id string, change func(*datatypes.SLODefinition)) *datatypes.Project {
	return s.mutate(func(p *datatypes.Project) bool {
		return updateByID(p.SLODefinitions, id,
			func(v *datatypes.SLODefinition) string { return v.ID }, change)
	})
}

func (s *Store) RemoveSLODefinition(id string) *datatypes.Project {
	return s.mutate(func(p *datatypes.Project) bool {
		var ok bool
		p.SLODefinitions, ok = removeByID(p.SLODefinitions, id,
			func(v *datatypes.SLODefinition) string { return v.ID })
		return ok
	})
}

// =============================================================================
// Autoscaling strategies
// =============================================================================

func (s *Store) AddAutoscalingStrategy(as datatypes.AutoscalingStrategy) *datatypes.Project {
	return s.mutate(func(p *datatypes.Project) bool {
		p.AutoscalingStrategies = append(p.AutoscalingStrategies, as)
		return true
	})
}

func (s *Store) UpdateAutoscalingStrategy(id string, change func(*datatypes.AutoscalingStrategy)) *datatypes.Project {
	return s.mutate(func(p *datatypes.Project) bool {
		return updateByID(p.AutoscalingStrategies, id,
			func(v *datatypes.AutoscalingStrategy) string { return v.ID }, change)
	})
}

func (s *Store) RemoveAutoscalingStrategy(id string) *datatypes.Project {
	return s.mutate(func(p *datatypes.Project) bool {
		var ok bool
		p.AutoscalingStrategies, ok = removeByID(p.AutoscalingStrategies, id,
			func(v *datatypes.AutoscalingStrategy) string { return v.ID })
		return ok
	})
}

// =============================================================================
// K8s manifests
// =============================================================================

func (s *Store) AddK8sManifest(m datatypes.K8sManifest) *datatypes.Project {
	return s.mutate(func(p *datatypes.Project) bool {
		p.K8sManifests = append(p.K8sManifests, m)
		return true
	})
}

func (s *Store) UpdateK8sManifest(id string, change func(*datatypes.K8sManifest)) *datatypes.Project {
	return s.mutate(func(p *datatypes.Project) bool {
		return updateByID(p.K8sManifests, id,
			func(v *datatypes.K8sManifest) string { return v.ID }, change)
	})
}

func (s *Store) RemoveK8sManifest(id string) *datatypes.Project {
	return s.mutate(func(p *datatypes.Project) bool {
		var ok bool
		p.K8sManifests, ok = removeByID(p.K8sManifests, id,
			func(v *datatypes.K8sManifest) string { return v.ID })
		return ok
	})
}

// =============================================================================
// Resilience patterns
// =============================================================================

func (s *Store) AddResiliencePattern(rp datatypes.ResiliencePattern) *datatypes.Project {
	return s.mutate(func(p *datatypes.Project) bool {
		p.ResiliencePatterns = append(p.ResiliencePatterns, rp)
		return true
	})
}

func (s *Store) UpdateResiliencePattern(id string, change func(*datatypes.ResiliencePattern)) *datatypes.Project {
	return s.mutate(func(p *datatypes.Project) bool {
		return updateByID(p.ResiliencePatterns, id,
			func(v *datatypes.ResiliencePattern) string { return v.ID }, change)
	})
}

func (s *Store) RemoveResiliencePattern(id string) *datatypes.Project {
	return s.mutate(func(p *datatypes.Project) bool {
		var ok bool
		p.ResiliencePatterns, ok = removeByID(p.ResiliencePatterns, id,
			func(v *datatypes.ResiliencePattern) string { return v.ID })
		return ok
	})
}

// =============================================================================
// Observability configs
// =============================================================================

func (s *Store) AddObservabilityConfig(oc datatypes.ObservabilityConfig) *datatypes.Project {
	return s.mutate(func(p *datatypes.Project) bool {
		p.ObservabilityConfigs = append(p.ObservabilityConfigs, oc)
		return true
	})
}

func (s *Store) UpdateObservabilityConfig(id string, change func(*datatypes.ObservabilityConfig)) *datatypes.Project {
	return s.mutate(func(p *datatypes.Project) bool {
		return updateByID(p.ObservabilityConfigs, id,
			func(v *datatypes.ObservabilityConfig) string { return v.ID }, change)
	})
}

func (s *Store) RemoveObservabilityConfig(id string) *datatypes.Project {
	return s.mutate(func(p *datatypes.Project) bool {
		var ok bool
		p.ObservabilityConfigs, ok = removeByID(p.ObservabilityConfigs, id,
			func(v *datatypes.ObservabilityConfig) string { return v.ID })
		return ok
	})
}
