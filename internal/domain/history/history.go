// Package history records which targets the player has already solved.
package history

import "sort"

// CorrectHistory is the set of target names tapped correctly at least once.
// It is owned by the session loop and not safe for concurrent use.
type CorrectHistory struct {
	solved map[string]struct{}
}

// New returns an empty history.
func New() *CorrectHistory {
	return &CorrectHistory{solved: make(map[string]struct{})}
}

// Record adds name and reports whether it was new.
func (h *CorrectHistory) Record(name string) bool {
	if _, ok := h.solved[name]; ok {
		return false
	}
	h.solved[name] = struct{}{}
	return true
}

// Contains reports whether name has been solved.
func (h *CorrectHistory) Contains(name string) bool {
	_, ok := h.solved[name]
	return ok
}

func (h *CorrectHistory) Len() int { return len(h.solved) }

// Reset forgets every solved target.
func (h *CorrectHistory) Reset() {
	clear(h.solved)
}

// Names returns solved target names sorted alphabetically.
func (h *CorrectHistory) Names() []string {
	out := make([]string, 0, len(h.solved))
	for n := range h.solved {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}
