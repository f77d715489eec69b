// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package session tracks consecutive manual-review outcomes within one scan
// session and decides when to offer escalation.
package session

import "github.com/pdiddy/safescan/pkg/types"

// EscalationThreshold is the number of consecutive manual-review attempts
// after which escalation is offered.
const EscalationThreshold = 3

// UpdateSessionAttemptCounters returns the counters after one more attempt.
// isMRR reports whether the attempt ended in manual review. A non-MRR attempt
// resets the streak but never the escalation latch.
//
// Callers must serialize calls per session; the function itself holds no
// state.
func UpdateSessionAttemptCounters(s types.SessionCounters, isMRR bool) types.SessionCounters {
	next := types.SessionCounters{
		AttemptCount: s.AttemptCount + 1,
	}
	if isMRR {
		next.ManualReviewCount = s.ManualReviewCount + 1
	}
	next.ShouldShowEscalation = !s.EscalationShown && next.ManualReviewCount >= EscalationThreshold
	next.EscalationShown = s.EscalationShown || next.ShouldShowEscalation
	return next
}
