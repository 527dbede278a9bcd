package core

import "sync"

// TriggerSet is the transient set of stages marked for execution before
// the next controller pass. Each mark is consumed exactly once: the
// controller clears a stage's flag synchronously before invoking its
// executor, which prevents re-entry or double-firing when an execution
// schedules further triggers.
type TriggerSet struct {
	mu      sync.Mutex
	pending map[Stage]bool
}

// NewTriggerSet creates an empty trigger set.
func NewTriggerSet() *TriggerSet {
	return &TriggerSet{pending: make(map[Stage]bool)}
}

// Mark flags a stage for execution. Marking an already-pending stage is
// a no-op; a stage fires at most once per drain iteration.
func (t *TriggerSet) Mark(stage Stage) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.pending[stage] = true
}

// Clear removes a stage's pending flag.
func (t *TriggerSet) Clear(stage Stage) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.pending, stage)
}

// ClearAll removes all pending flags.
func (t *TriggerSet) ClearAll() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.pending = make(map[Stage]bool)
}

// IsPending reports whether a stage is flagged.
func (t *TriggerSet) IsPending(stage Stage) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.pending[stage]
}

// Take removes and returns the earliest pending stage in canonical
// stage order. Flags set after a Take (for example by an auto-chain
// advancing mid-pass) are picked up by the next Take in the same drain
// loop.
func (t *TriggerSet) Take() (Stage, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, stage := range AllStages() {
		if t.pending[stage] {
			delete(t.pending, stage)
			return stage, true
		}
	}
	return "", false
}

// Empty reports whether no stage is flagged.
func (t *TriggerSet) Empty() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.pending) == 0
}
