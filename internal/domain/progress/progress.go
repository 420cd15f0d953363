// Package progress tracks tier advancement within a session.
package progress

import "fmt"

// Snapshot is a read-only copy of the tracker state.
type Snapshot struct {
	Tier        int  `json:"tier"`
	Tiers       int  `json:"tiers"`
	Successes   int  `json:"successes"`
	Required    int  `json:"required"`
	TargetCount int  `json:"target_count"`
	Won         bool `json:"won"`
}

// Tracker is a state machine over tiers 1..N with a terminal won state.
// It never decrements and is owned by a single writer.
type Tracker struct {
	tierTargets []int
	required    int
	tier        int
	successes   int
}

// New builds a tracker. tierTargets[k-1] is the number of simultaneous
// targets presented in tier k.
func New(tierTargets []int, required int) (*Tracker, error) {
	if len(tierTargets) == 0 {
		return nil, fmt.Errorf("%w: no tiers", ErrInvalidTiers)
	}
	if required <= 0 {
		return nil, fmt.Errorf("%w: required successes must be positive, got %d", ErrInvalidTiers, required)
	}
	for i, n := range tierTargets {
		if n <= 0 {
			return nil, fmt.Errorf("%w: tier %d has %d targets", ErrInvalidTiers, i+1, n)
		}
	}
	t := &Tracker{
		tierTargets: append([]int(nil), tierTargets...),
		required:    required,
	}
	t.Reset()
	return t, nil
}

// Reset returns to tier 1 with no successes.
func (t *Tracker) Reset() {
	t.tier = 1
	t.successes = 0
}

// RecordSuccess counts a correct tap. Recording past the requirement is a
// caller bug and panics.
func (t *Tracker) RecordSuccess() {
	if t.successes >= t.required {
		panic(fmt.Errorf("%w: success recorded in tier %d after %d/%d", ErrContractViolation, t.tier, t.successes, t.required))
	}
	t.successes++
}

// AdvanceIfEligible moves to the next tier when the current one is complete
// and it is not the last. It reports whether the tier changed.
func (t *Tracker) AdvanceIfEligible() bool {
	if t.successes != t.required || t.tier >= len(t.tierTargets) {
		return false
	}
	t.tier++
	t.successes = 0
	return true
}

// HasWon reports whether the last tier is complete.
func (t *Tracker) HasWon() bool {
	return t.successes == t.required && t.tier == len(t.tierTargets)
}

func (t *Tracker) Tier() int { return t.tier }
func (t *Tracker) Successes() int { return t.successes }
func (t *Tracker) Required() int { return t.required }
func (t *Tracker) Tiers() int { return len(t.tierTargets) }

// TargetCount is the number of simultaneous targets for the current tier.
func (t *Tracker) TargetCount() int {
	return t.tierTargets[t.tier-1]
}

// MaxTargetCount is the largest simultaneous target count over all tiers.
func (t *Tracker) MaxTargetCount() int {
	m := 0
	for _, n := range t.tierTargets {
		if n > m {
			m = n
		}
	}
	return m
}

func (t *Tracker) Snapshot() Snapshot {
	return Snapshot{
		Tier:        t.tier,
		Tiers:       len(t.tierTargets),
		Successes:   t.successes,
		Required:    t.required,
		TargetCount: t.TargetCount(),
		Won:         t.HasWon(),
	}
}
