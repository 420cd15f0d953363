package selection

import model "github.com/okian/whackaword/internal/domain/model"

// Entry pairs a target with the slot it occupies. Placed is false after a
// miss cleared the slot while the target is kept for the retry.
type Entry struct {
	Target model.Target
	Slot   model.Slot
	Placed bool
}

// Assignment is the injective target to slot mapping of one round.
type Assignment struct {
	entries []Entry
}

func (a *Assignment) Len() int { return len(a.entries) }

// Entries returns a copy of the entries in draw order.
func (a *Assignment) Entries() []Entry {
	out := make([]Entry, len(a.entries))
	copy(out, a.entries)
	return out
}

// Targets returns the assigned targets in draw order, placed or not.
func (a *Assignment) Targets() []model.Target {
	out := make([]model.Target, 0, len(a.entries))
	for _, e := range a.entries {
		out = append(out, e.Target)
	}
	return out
}

// Slots returns the slots currently occupied.
func (a *Assignment) Slots() []model.Slot {
	out := make([]model.Slot, 0, len(a.entries))
	for _, e := range a.entries {
		if e.Placed {
			out = append(out, e.Slot)
		}
	}
	return out
}

// TargetAt returns the target occupying slotID.
func (a *Assignment) TargetAt(slotID string) (model.Target, bool) {
	for _, e := range a.entries {
		if e.Placed && e.Slot.ID == slotID {
			return e.Target, true
		}
	}
	return model.Target{}, false
}

// SlotOf returns the slot holding the target named name.
func (a *Assignment) SlotOf(name string) (model.Slot, bool) {
	for _, e := range a.entries {
		if e.Placed && e.Target.Name == name {
			return e.Slot, true
		}
	}
	return model.Slot{}, false
}

// ClearSlots empties every slot while keeping the targets, returning the
// slots that were occupied.
func (a *Assignment) ClearSlots() []model.Slot {
	cleared := a.Slots()
	for i := range a.entries {
		a.entries[i].Slot = model.Slot{}
		a.entries[i].Placed = false
	}
	return cleared
}

func (a *Assignment) reset() {
	a.entries = a.entries[:0]
}
