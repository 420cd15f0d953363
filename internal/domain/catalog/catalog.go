// Package catalog is the static registry of targets and slots a session plays with.
package catalog

import (
	"fmt"
	"strings"

	model "github.com/okian/whackaword/internal/domain/model"
)

// Feedback and win clip ids narrated after correct taps.
const (
	FeedbackClipID = "correct"
	WinClipID      = "well_done"
)

// Catalog holds immutable targets and slots. It is safe for concurrent reads.
type Catalog struct {
	targets  []model.Target
	slots    []model.Slot
	slotByID map[string]model.Slot
	feedback model.Clip
	win      model.Clip
}

// Option customizes a Catalog.
type Option func(*Catalog)

// WithFeedbackClip overrides the clip narrated after a correct tap.
func WithFeedbackClip(id string) Option {
	return func(c *Catalog) {
		if id != "" {
			c.feedback = model.Clip{ID: id, Kind: model.ClipFeedback}
		}
	}
}

// WithWinClip overrides the clip narrated when the session is won.
func WithWinClip(id string) Option {
	return func(c *Catalog) {
		if id != "" {
			c.win = model.Clip{ID: id, Kind: model.ClipWin}
		}
	}
}

// New validates and builds a catalog. Target names and slot ids must be
// non-empty and unique.
func New(targets []model.Target, slots []model.Slot, opts ...Option) (*Catalog, error) {
	if len(targets) == 0 {
		return nil, fmt.Errorf("%w: no targets", ErrInvalidCatalog)
	}
	if len(slots) == 0 {
		return nil, fmt.Errorf("%w: no slots", ErrInvalidCatalog)
	}

	c := &Catalog{
		targets:  make([]model.Target, 0, len(targets)),
		slots:    make([]model.Slot, 0, len(slots)),
		slotByID: make(map[string]model.Slot, len(slots)),
		feedback: model.Clip{ID: FeedbackClipID, Kind: model.ClipFeedback},
		win:      model.Clip{ID: WinClipID, Kind: model.ClipWin},
	}

	names := make(map[string]struct{}, len(targets))
	for _, t := range targets {
		if t.Name == "" {
			return nil, fmt.Errorf("%w: target with empty name", ErrInvalidCatalog)
		}
		if _, dup := names[t.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate target %q", ErrInvalidCatalog, t.Name)
		}
		names[t.Name] = struct{}{}
		if t.Prompt.ID == "" {
			t.Prompt.ID = strings.ToLower(t.Name)
		}
		t.Prompt.Kind = model.ClipPrompt
		c.targets = append(c.targets, t)
	}

	for _, s := range slots {
		if s.ID == "" {
			return nil, fmt.Errorf("%w: slot with empty id", ErrInvalidCatalog)
		}
		if _, dup := c.slotByID[s.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate slot %q", ErrInvalidCatalog, s.ID)
		}
		c.slotByID[s.ID] = s
		c.slots = append(c.slots, s)
	}

	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Default returns the reference catalog: nine foods and five holes.
func Default() *Catalog {
	names := []string{"Apple", "Banana", "Bread", "Cake", "Carrot", "Egg", "Orange", "Potato", "Tomato"}
	targets := make([]model.Target, 0, len(names))
	for _, n := range names {
		lower := strings.ToLower(n)
		targets = append(targets, model.Target{
			Name:   n,
			Prompt: model.Clip{ID: lower, Kind: model.ClipPrompt},
			Image:  lower + ".png",
		})
	}
	c, err := New(targets, DefaultSlots(5))
	if err != nil {
		panic(err)
	}
	return c
}

// DefaultSlots returns n slots named hole-1..hole-n.
func DefaultSlots(n int) []model.Slot {
	slots := make([]model.Slot, 0, n)
	for i := 1; i <= n; i++ {
		id := fmt.Sprintf("hole-%d", i)
		slots = append(slots, model.Slot{ID: id, Mount: id})
	}
	return slots
}

// Targets returns a copy of all targets in catalog order.
func (c *Catalog) Targets() []model.Target {
	out := make([]model.Target, len(c.targets))
	copy(out, c.targets)
	return out
}

// Slots returns a copy of all slots in catalog order.
func (c *Catalog) Slots() []model.Slot {
	out := make([]model.Slot, len(c.slots))
	copy(out, c.slots)
	return out
}

// Slot looks a slot up by id.
func (c *Catalog) Slot(id string) (model.Slot, error) {
	s, ok := c.slotByID[id]
	if !ok {
		return model.Slot{}, fmt.Errorf("%w: %q", ErrUnknownSlot, id)
	}
	return s, nil
}

// SlotIndex returns the position of slot id in catalog order, or -1.
func (c *Catalog) SlotIndex(id string) int {
	for i, s := range c.slots {
		if s.ID == id {
			return i
		}
	}
	return -1
}

func (c *Catalog) TargetCount() int { return len(c.targets) }

func (c *Catalog) SlotCount() int { return len(c.slots) }

// FeedbackClip is narrated after every correct tap.
func (c *Catalog) FeedbackClip() model.Clip { return c.feedback }

// WinClip is narrated once the last tier is complete.
func (c *Catalog) WinClip() model.Clip { return c.win }

// Clips lists every narration clip the catalog can ask for.
func (c *Catalog) Clips() []model.Clip {
	out := make([]model.Clip, 0, len(c.targets)+2)
	for _, t := range c.targets {
		out = append(out, t.Prompt)
	}
	return append(out, c.feedback, c.win)
}
