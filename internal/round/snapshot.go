package round

// SlotView describes one occupied slot.
type SlotView struct {
	Slot   string `json:"slot"`
	Target string `json:"target"`
	Ready  bool   `json:"ready"`
}

// Snapshot is an immutable copy of the session state for readers outside
// the loop goroutine.
type Snapshot struct {
	Session          string     `json:"session"`
	Started          bool       `json:"started"`
	Phase            string     `json:"phase"`
	Token            uint64     `json:"token"`
	Retry            bool       `json:"retry"`
	Tier             int        `json:"tier"`
	Tiers            int        `json:"tiers"`
	Successes        int        `json:"successes"`
	Required         int        `json:"required"`
	TargetCount      int        `json:"target_count"`
	Prompt           string     `json:"prompt,omitempty"`
	Presented        []SlotView `json:"presented"`
	Solved           []string   `json:"solved"`
	NarrationPending int        `json:"narration_pending"`
	NarrationIdle    bool       `json:"narration_idle"`
	Won              bool       `json:"won"`
}

// CorrectSlot returns the slot holding the prompted target.
func (s Snapshot) CorrectSlot() (string, bool) {
	for _, v := range s.Presented {
		if v.Target == s.Prompt {
			return v.Slot, true
		}
	}
	return "", false
}

func (s *Session) publish() {
	p := s.progress.Snapshot()
	snap := &Snapshot{
		Session:          s.id,
		Started:          s.started,
		Phase:            s.phase.String(),
		Token:            uint64(s.token),
		Retry:            s.retry,
		Tier:             p.Tier,
		Tiers:            p.Tiers,
		Successes:        p.Successes,
		Required:         p.Required,
		TargetCount:      p.TargetCount,
		Prompt:           s.correct.Name,
		Solved:           s.history.Names(),
		NarrationPending: s.narration.Pending(),
		NarrationIdle:    s.narration.IsIdle(),
		Presented:        []SlotView{},
		Won:              s.phase == PhaseWon,
	}
	for _, en := range s.selector.Current().Entries() {
		if en.Placed {
			snap.Presented = append(snap.Presented, SlotView{
				Slot:   en.Slot.ID,
				Target: en.Target.Name,
				Ready:  s.ready[en.Slot.ID],
			})
		}
	}
	s.snapshot.Store(snap)
}
