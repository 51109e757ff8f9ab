// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package workflow encodes the wizard's phase sequencing rules.
//
// Phases advance A -> B -> C -> D. Each forward step unlocks when the
// previous phase has produced its driving artifacts; navigating backward
// (or staying put) is never gated. The gate is a pure predicate: it does
// not revalidate a phase already stored on the project, so a project
// whose CurrentPhase was set past A through a direct patch keeps that
// phase even if its collections no longer satisfy the gate.
package workflow

import (
	"github.com/AleutianAI/AleutianBlueprint/services/designer/datatypes"
)

// CanAdvance reports whether the target phase is unlocked for the given
// project, considering only the unlock artifacts:
//
//   - Phase A: always reachable.
//   - Phase B: requires at least one service.
//   - Phase C: requires at least one container config.
//   - Phase D: requires at least one Kubernetes manifest.
//
// Unknown phase tokens are never reachable.
func CanAdvance(p *datatypes.Project, target datatypes.Phase) bool {
	switch target {
	case datatypes.PhaseDomain:
		return true
	case datatypes.PhaseContainer:
		return len(p.Services) > 0
	case datatypes.PhaseOrchestration:
		return len(p.ContainerConfigs) > 0
	case datatypes.PhaseResilience:
		return len(p.K8sManifests) > 0
	default:
		return false
	}
}

// CanNavigate reports whether the user may move from the project's
// current phase to the target. Backward and same-phase navigation is
// always permitted; only forward jumps consult CanAdvance.
func CanNavigate(p *datatypes.Project, target datatypes.Phase) bool {
	if !target.Valid() {
		return false
	}
	if target.Order() <= p.CurrentPhase.Order() {
		return true
	}
	return CanAdvance(p, target)
}
