package audio

import "errors"

// Sentinel errors for the audio adapter.
var (
	ErrNoDevice  = errors.New("audio device unavailable")
	ErrBadClip   = errors.New("clip cannot be decoded")
	ErrNilOutput = errors.New("audio output is nil")
)
