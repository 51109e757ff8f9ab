// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package store

import (
	"context"

	"github.com/AleutianAI/AleutianBlueprint/services/designer/datatypes"
)

// Recommender fetches AI recommendations for a project snapshot.
type Recommender interface {
	Recommend(ctx context.Context, p *datatypes.Project, phase datatypes.Phase) ([]datatypes.AIRecommendation, error)
}

// FetchRecommendations starts an asynchronous recommendation fetch for
// the active project's current phase. It never cancels an earlier fetch;
// responses apply last-response-wins, so a stale response landing after
// a newer one is dropped rather than overwriting it. A failed fetch is
// logged and leaves the previous recommendations in place. Returns false
// when no project is open.
func (s *Store) FetchRecommendations(ctx context.Context, rec Recommender) bool {
	s.mu.Lock()
	if s.current == nil {
		s.mu.Unlock()
		return false
	}
	snapshot := s.current.Clone()
	phase := snapshot.CurrentPhase
	s.recSeq++
	seq := s.recSeq
	s.recInFlight++
	s.mu.Unlock()

	s.fetches.Add(1)
	go func() {
		defer s.fetches.Done()
		recs, err := rec.Recommend(ctx, snapshot, phase)

		s.mu.Lock()
		defer s.mu.Unlock()
		s.recInFlight--
		if err != nil {
			s.logger.Error("recommendation fetch failed", "error", err, "phase", string(phase))
			return
		}
		if seq <= s.recApplied {
			// A newer fetch already landed
			return
		}
		s.recApplied = seq
		s.recommendations = recs
	}()
	return true
}

// RecommendationsInFlight reports whether any fetch has not completed,
// letting callers disable the triggering action instead of stacking
// overlapping requests.
func (s *Store) RecommendationsInFlight() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.recInFlight > 0
}

// Recommendations returns the most recently applied recommendation set.
func (s *Store) Recommendations() []datatypes.AIRecommendation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]datatypes.AIRecommendation(nil), s.recommendations...)
}
