// Package nudge runs the behavioral triggers of one browsing session and
// arbitrates between them so at most one nudge is visible at a time.
//
// A Session is a cooperative event loop: every event method and every
// scheduled callback holds the session lock for its whole run, so detector
// code never races with itself. Detectors share one Arbiter and must
// acquire it before showing and release it on their own dismissal.
package nudge

import (
	"sync"

	"snackstack/internal/domain"
)

// Arbiter is the single arbitration slot. It does not queue: a detector
// whose TryAcquire fails simply does not show.
type Arbiter struct {
	mu     sync.Mutex
	active domain.Kind
}

func NewArbiter() *Arbiter { return &Arbiter{} }

// TryAcquire moves the slot from None to kind. It fails, leaving the slot
// untouched, when any nudge already holds it.
func (a *Arbiter) TryAcquire(kind domain.Kind) bool {
	if !kind.Valid() {
		return false
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.active != domain.None {
		return false
	}
	a.active = kind
	return true
}

// Release frees the slot. Callers only release the kind they hold; the
// slot is cleared unconditionally.
func (a *Arbiter) Release(kind domain.Kind) {
	a.mu.Lock()
	a.active = domain.None
	a.mu.Unlock()
}

func (a *Arbiter) Current() domain.Kind {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.active
}

// Free reports whether no nudge holds the slot.
func (a *Arbiter) Free() bool { return a.Current() == domain.None }
