// Package model contains domain models passed between layers.
package model

import (
	"time"

	"github.com/google/uuid"
)

// RoundToken identifies which presentation is currently being timed.
// It increases monotonically within a session; zero means "no round yet".
type RoundToken uint64

// EventKind enumerates what the game loop can be asked to handle.
type EventKind int

// Event kinds consumed by the session loop.
const (
	EventStart EventKind = iota + 1
	EventTap
	EventDeadline
	EventHoldElapsed
	EventPresented
	EventRetracted
	EventAudioFinished
)

var eventKindNames = map[EventKind]string{
	EventStart:         "start",
	EventTap:           "tap",
	EventDeadline:      "deadline",
	EventHoldElapsed:   "hold_elapsed",
	EventPresented:     "presented",
	EventRetracted:     "retracted",
	EventAudioFinished: "audio_finished",
}

func (k EventKind) String() string {
	if name, ok := eventKindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Event is one discrete input to the single-threaded game loop: a tap, a
// timer firing, or a collaborator's completion notification.
type Event struct {
	ID    string     // unique id, used for log correlation
	Kind  EventKind  // what happened
	Slot  string     // slot id for tap/presented/retracted
	Token RoundToken // round the event belongs to
	Seq   uint64     // narration sequence for audio_finished
	TS    time.Time  // when the event was produced
}

// NewEvent builds an event of the given kind stamped with a fresh id.
func NewEvent(kind EventKind, token RoundToken) Event {
	return Event{
		ID:    uuid.NewString(),
		Kind:  kind,
		Token: token,
		TS:    time.Now(),
	}
}

// TapEvent builds a tap on slotID made while round token was on display.
func TapEvent(slotID string, token RoundToken) Event {
	e := NewEvent(EventTap, token)
	e.Slot = slotID
	return e
}
