// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package store

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/AleutianAI/AleutianBlueprint/services/designer/datatypes"
)

// =============================================================================
// Fakes
// =============================================================================

type fakeTimer struct {
	mu      sync.Mutex
	stopped bool
	fn      func()
}

func (t *fakeTimer) Stop() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	was := !t.stopped
	t.stopped = true
	return was
}

func (t *fakeTimer) fire() bool {
	t.mu.Lock()
	if t.stopped {
		t.mu.Unlock()
		return false
	}
	t.stopped = true
	fn := t.fn
	t.mu.Unlock()
	fn()
	return true
}

type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*fakeTimer
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Millisecond)
	return c.now
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{fn: f}
	c.timers = append(c.timers, t)
	return t
}

// firePending fires every armed (unstopped) timer and reports how many ran.
func (c *fakeClock) firePending() int {
	c.mu.Lock()
	timers := append([]*fakeTimer(nil), c.timers...)
	c.timers = c.timers[:0]
	c.mu.Unlock()

	fired := 0
	for _, t := range timers {
		if t.fire() {
			fired++
		}
	}
	return fired
}

type fakeRepo struct {
	mu      sync.Mutex
	saves   []*datatypes.Project
	saveErr error
	nextID  int
}

func (r *fakeRepo) Create(_ context.Context, name, description string) (*datatypes.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	return &datatypes.Project{
		ID:           "p1",
		Name:         name,
		Description:  description,
		CurrentPhase: datatypes.PhaseDomain,
	}, nil
}

func (r *fakeRepo) Get(_ context.Context, id string) (*datatypes.Project, error) {
	return nil, ErrProjectNotFound
}

func (r *fakeRepo) List(_ context.Context) ([]*datatypes.Project, error) { return nil, nil }

func (r *fakeRepo) Patch(_ context.Context, id string, _ *datatypes.ProjectPatch) (*datatypes.Project, error) {
	return nil, ErrProjectNotFound
}

func (r *fakeRepo) Delete(_ context.Context, id string) (bool, error) { return false, nil }

func (r *fakeRepo) Save(_ context.Context, p *datatypes.Project) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saveErr != nil {
		return r.saveErr
	}
	r.saves = append(r.saves, p)
	return nil
}

func (r *fakeRepo) saveCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.saves)
}

func (r *fakeRepo) lastSave() *datatypes.Project {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.saves) == 0 {
		return nil
	}
	return r.saves[len(r.saves)-1]
}

func newTestStore(t *testing.T) (*Store, *fakeRepo, *fakeClock) {
	t.Helper()
	repo := &fakeRepo{}
	clock := newFakeClock()
	s := NewStore(repo, Options{Clock: clock})
	if _, err := s.Create(context.Background(), "demo", "test project"); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	return s, repo, clock
}

// =============================================================================
// Tests
// =============================================================================

func TestStore_AddServiceSchedulesDebouncedSave(t *testing.T) {
	s, repo, clock := newTestStore(t)

	s.AddService(datatypes.Service{ID: "s1", Name: "orders"})
	if repo.saveCount() != 0 {
		t.Fatal("save should not happen before the debounce window elapses")
	}

	clock.firePending()
	s.Flush(context.Background())

	if repo.saveCount() != 1 {
		t.Fatalf("expected exactly one save, got %d", repo.saveCount())
	}
	if got := repo.lastSave(); len(got.Services) != 1 || got.Services[0].ID != "s1" {
		t.Errorf("saved snapshot missing the added service: %+v", got)
	}
}

func TestStore_DebounceCoalescesMutations(t *testing.T) {
	s, repo, clock := newTestStore(t)

	s.AddService(datatypes.Service{ID: "s1", Name: "orders"})
	s.AddService(datatypes.Service{ID: "s2", Name: "payments"})
	s.AddService(datatypes.Service{ID: "s3", Name: "shipping"})

	clock.firePending()
	s.Flush(context.Background())

	if repo.saveCount() != 1 {
		t.Fatalf("three mutations inside the window must coalesce into one save, got %d",
			repo.saveCount())
	}
	if got := repo.lastSave(); len(got.Services) != 3 {
		t.Errorf("coalesced save must carry the latest snapshot, got %d services",
			len(got.Services))
	}
}

func TestStore_SaveFailureKeepsLocalState(t *testing.T) {
	s, repo, clock := newTestStore(t)
	repo.saveErr = errors.New("disk on fire")

	s.AddService(datatypes.Service{ID: "s1", Name: "orders"})
	clock.firePending()
	s.Flush(context.Background())

	cur := s.Current()
	if len(cur.Services) != 1 {
		t.Error("local state must survive a failed save")
	}
}

func TestStore_RemoveUnknownIDIsNoOp(t *testing.T) {
	s, _, _ := newTestStore(t)
	s.AddService(datatypes.Service{ID: "s1", Name: "orders"})

	before := s.Current()
	after := s.RemoveService("nope")

	if !reflect.DeepEqual(before, after) {
		t.Error("removing an unknown id must return the project unchanged")
	}
}

func TestStore_UpdateUnknownIDIsNoOp(t *testing.T) {
	s, _, _ := newTestStore(t)
	s.AddK8sManifest(datatypes.K8sManifest{ID: "m1", Replicas: 1})

	before := s.Current()
	after := s.UpdateK8sManifest("missing", func(m *datatypes.K8sManifest) {
		m.Replicas = 99
	})

	if !reflect.DeepEqual(before, after) {
		t.Error("updating an unknown id must return the project unchanged")
	}
}

func TestStore_UpdateMutatesOnlyTarget(t *testing.T) {
	s, _, _ := newTestStore(t)
	s.AddService(datatypes.Service{ID: "s1", Name: "orders"})
	s.AddService(datatypes.Service{ID: "s2", Name: "payments"})

	after := s.UpdateService("s2", func(svc *datatypes.Service) {
		svc.Description = "handles charges"
	})

	if after.Services[1].Description != "handles charges" {
		t.Error("target service not updated")
	}
	if after.Services[0].Description != "" {
		t.Error("sibling service modified")
	}
}

func TestStore_CopyOnWriteSnapshots(t *testing.T) {
	s, _, _ := newTestStore(t)
	s.AddService(datatypes.Service{ID: "s1", Name: "orders"})

	snapshot := s.Current()
	s.UpdateService("s1", func(svc *datatypes.Service) { svc.Name = "orders-v2" })

	if snapshot.Services[0].Name != "orders" {
		t.Error("earlier snapshot mutated by a later write")
	}
}

func TestStore_SetPhaseRevalidates(t *testing.T) {
	s, _, _ := newTestStore(t)

	// Fresh project in phase A: first result is the failed services rule.
	vs := s.Validations()
	if len(vs) == 0 || vs[0].Phase != datatypes.PhaseDomain {
		t.Fatalf("expected phase A validations after create, got %+v", vs)
	}

	s.SetPhase(datatypes.PhaseContainer)
	vs = s.Validations()
	for _, v := range vs {
		if v.Phase != datatypes.PhaseContainer {
			t.Errorf("validations should be recomputed for phase B, got %+v", v)
		}
	}
}

func TestStore_NavigateForwardRequiresUnlockArtifacts(t *testing.T) {
	s, _, _ := newTestStore(t)

	if _, err := s.Navigate(datatypes.PhaseContainer); !errors.Is(err, ErrPhaseLocked) {
		t.Fatalf("phase B should be locked with no services, got %v", err)
	}

	s.AddService(datatypes.Service{ID: "s1", Name: "orders"})
	p, err := s.Navigate(datatypes.PhaseContainer)
	if err != nil {
		t.Fatalf("phase B should unlock once a service exists: %v", err)
	}
	if p.CurrentPhase != datatypes.PhaseContainer {
		t.Errorf("CurrentPhase = %v, want B", p.CurrentPhase)
	}

	// Forward jump past C still consults the gate.
	if _, err := s.Navigate(datatypes.PhaseResilience); !errors.Is(err, ErrPhaseLocked) {
		t.Errorf("phase D should be locked without manifests, got %v", err)
	}
}

func TestStore_NavigateBackwardAlwaysAllowed(t *testing.T) {
	s, _, _ := newTestStore(t)
	s.AddService(datatypes.Service{ID: "s1", Name: "orders"})
	if _, err := s.Navigate(datatypes.PhaseContainer); err != nil {
		t.Fatalf("navigate to B: %v", err)
	}

	p, err := s.Navigate(datatypes.PhaseDomain)
	if err != nil {
		t.Fatalf("backward navigation must not be gated: %v", err)
	}
	if p.CurrentPhase != datatypes.PhaseDomain {
		t.Errorf("CurrentPhase = %v, want A", p.CurrentPhase)
	}
}

func TestStore_NavigateWithoutProject(t *testing.T) {
	s := NewStore(&fakeRepo{}, Options{Clock: newFakeClock()})
	if _, err := s.Navigate(datatypes.PhaseDomain); !errors.Is(err, ErrProjectNotFound) {
		t.Errorf("expected ErrProjectNotFound, got %v", err)
	}
}

func TestStore_RemoveExistingItem(t *testing.T) {
	s, _, _ := newTestStore(t)
	s.AddResiliencePattern(datatypes.ResiliencePattern{ID: "rp1", Kind: datatypes.PatternRetry})
	s.AddResiliencePattern(datatypes.ResiliencePattern{ID: "rp2", Kind: datatypes.PatternTimeout})

	after := s.RemoveResiliencePattern("rp1")
	if len(after.ResiliencePatterns) != 1 || after.ResiliencePatterns[0].ID != "rp2" {
		t.Errorf("remove kept the wrong patterns: %+v", after.ResiliencePatterns)
	}
}

func TestStore_DiscardDropsStateAndTimer(t *testing.T) {
	s, repo, clock := newTestStore(t)
	s.AddService(datatypes.Service{ID: "s1", Name: "orders"})

	s.Discard()
	clock.firePending()
	s.Flush(context.Background())

	if repo.saveCount() != 0 {
		t.Error("discard should cancel the pending save")
	}
	if s.Current() != nil {
		t.Error("discard should drop the active project")
	}
	if s.AddService(datatypes.Service{ID: "s2"}) != nil {
		t.Error("mutations after discard should be nil no-ops")
	}
}

// blockingRecommender serves one Recommend call per release on the gate
// channel, returning the queued result for that call.
type blockingRecommender struct {
	gate    chan struct{}
	mu      sync.Mutex
	results [][]datatypes.AIRecommendation
	err     error
}

func (r *blockingRecommender) Recommend(_ context.Context, _ *datatypes.Project, _ datatypes.Phase) ([]datatypes.AIRecommendation, error) {
	<-r.gate
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	recs := r.results[0]
	r.results = r.results[1:]
	return recs, nil
}

func TestStore_FetchRecommendationsInFlightFlag(t *testing.T) {
	s, _, _ := newTestStore(t)
	rec := &blockingRecommender{
		gate:    make(chan struct{}),
		results: [][]datatypes.AIRecommendation{{{ID: "r1", Title: "split the monolith"}}},
	}

	if !s.FetchRecommendations(context.Background(), rec) {
		t.Fatal("fetch should start with a project open")
	}
	if !s.RecommendationsInFlight() {
		t.Error("in-flight flag should be set while the fetch is pending")
	}

	close(rec.gate)
	s.fetches.Wait()

	if s.RecommendationsInFlight() {
		t.Error("in-flight flag should clear once the fetch completes")
	}
	got := s.Recommendations()
	if len(got) != 1 || got[0].ID != "r1" {
		t.Errorf("recommendations not applied: %+v", got)
	}
}

func TestStore_StaleRecommendationResponseDropped(t *testing.T) {
	s, _, _ := newTestStore(t)

	stale := make(chan struct{})
	fresh := make(chan struct{})
	first := &blockingRecommender{
		gate:    stale,
		results: [][]datatypes.AIRecommendation{{{ID: "old", Title: "stale advice"}}},
	}
	second := &blockingRecommender{
		gate:    fresh,
		results: [][]datatypes.AIRecommendation{{{ID: "new", Title: "current advice"}}},
	}

	s.FetchRecommendations(context.Background(), first)
	s.FetchRecommendations(context.Background(), second)

	// Whichever order the responses land, the newer request wins.
	close(fresh)
	close(stale)
	s.fetches.Wait()

	got := s.Recommendations()
	if len(got) != 1 || got[0].ID != "new" {
		t.Errorf("stale response must not overwrite a newer one: %+v", got)
	}
}

func TestStore_FailedFetchKeepsPreviousRecommendations(t *testing.T) {
	s, _, _ := newTestStore(t)

	ok := &blockingRecommender{
		gate:    make(chan struct{}),
		results: [][]datatypes.AIRecommendation{{{ID: "r1", Title: "keep me"}}},
	}
	close(ok.gate)
	s.FetchRecommendations(context.Background(), ok)
	s.fetches.Wait()

	bad := &blockingRecommender{gate: make(chan struct{}), err: errors.New("model offline")}
	close(bad.gate)
	s.FetchRecommendations(context.Background(), bad)
	s.fetches.Wait()

	got := s.Recommendations()
	if len(got) != 1 || got[0].ID != "r1" {
		t.Errorf("failed fetch must leave previous recommendations intact: %+v", got)
	}
}

func TestStore_FetchRecommendationsWithoutProject(t *testing.T) {
	s := NewStore(&fakeRepo{}, Options{Clock: newFakeClock()})
	rec := &blockingRecommender{gate: make(chan struct{})}
	if s.FetchRecommendations(context.Background(), rec) {
		t.Error("fetch should refuse to start without a project")
	}
}

func TestStore_UpdatedAtAdvancesOnMutation(t *testing.T) {
	s, _, _ := newTestStore(t)
	before := s.Current().UpdatedAt
	after := s.AddSLODefinition(datatypes.SLODefinition{ID: "slo1"}).UpdatedAt
	if !after.After(before) {
		t.Errorf("UpdatedAt should advance on mutation: %v -> %v", before, after)
	}
}
