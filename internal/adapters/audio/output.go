package audio

import (
	"fmt"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
)

// SampleRate is the rate every clip is resampled to before mixing.
const SampleRate = beep.SampleRate(44100)

const speakerBuffer = 100 * time.Millisecond

// Output is where the mixer is played. Lock must be held while the set of
// playing streamers is changed.
type Output interface {
	Play(s ...beep.Streamer)
	Lock()
	Unlock()
}

type speakerOutput struct{}

// SpeakerOutput initialises the system speaker.
func SpeakerOutput() (Output, error) {
	if err := speaker.Init(SampleRate, SampleRate.N(speakerBuffer)); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoDevice, err)
	}
	return speakerOutput{}, nil
}

func (speakerOutput) Play(s ...beep.Streamer) { speaker.Play(s...) }

func (speakerOutput) Lock() { speaker.Lock() }

func (speakerOutput) Unlock() { speaker.Unlock() }

func (speakerOutput) Close() error {
	speaker.Clear()
	return nil
}
