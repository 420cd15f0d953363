package model

// ClipKind classifies narration clips.
type ClipKind int

// Narration clip kinds.
const (
	ClipPrompt ClipKind = iota + 1
	ClipFeedback
	ClipWin
)

func (k ClipKind) String() string {
	switch k {
	case ClipPrompt:
		return "prompt"
	case ClipFeedback:
		return "feedback"
	case ClipWin:
		return "win"
	default:
		return "unknown"
	}
}

// Clip references one audio asset. Decoding is the audio collaborator's job.
type Clip struct {
	ID   string   `json:"id"`
	Kind ClipKind `json:"kind"`
}

// Target is a vocabulary item that can be presented in a slot. Targets are
// compared by Name.
type Target struct {
	Name   string `json:"name"`
	Prompt Clip   `json:"prompt"`
	Image  string `json:"image"`
}

// Slot is one fixed physical position (a hole) that can hold a target.
type Slot struct {
	ID    string `json:"id"`
	Mount string `json:"mount"`
}

// Presentation asks the stage to pop target up in slot for round Token.
type Presentation struct {
	Token  RoundToken
	Slot   Slot
	Target Target
}

// Effect is an incidental sound that may overlap narration.
type Effect int

// Sound effects played outside the narration FIFO.
const (
	EffectPopUp Effect = iota + 1
	EffectHide
	EffectTick
)

func (e Effect) String() string {
	switch e {
	case EffectPopUp:
		return "pop_up"
	case EffectHide:
		return "hide"
	case EffectTick:
		return "tick"
	default:
		return "unknown"
	}
}
