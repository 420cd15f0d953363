// Package audio plays narration, sound effects and background music
// through a single beep mixer.
package audio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/wav"
	model "github.com/okian/whackaword/internal/domain/model"
	"github.com/okian/whackaword/pkg/logger"
)

const (
	musicFile       = "music.wav"
	resampleQuality = 4
	effectVolume    = 0.25
	clipVolume      = 0.5
)

// Engine is the narration player and effects sink. Narration completion is
// reported from the output's goroutine; callers only ever see done().
type Engine struct {
	mu    sync.Mutex
	out   Output
	mixer *beep.Mixer
	clips map[string]*beep.Buffer

	// guarded by the output lock
	music *effects.Gain

	musicLevel  float64
	duckedLevel float64
	firstDelay  time.Duration
	delay       time.Duration
	played      bool
	assets      string

	log logger.Logger
}

// New starts a mixer on out. Nothing is audible until clips or music are
// added.
func New(out Output, opts ...Option) (*Engine, error) {
	if out == nil {
		return nil, ErrNilOutput
	}
	e := &Engine{
		out:         out,
		mixer:       &beep.Mixer{},
		clips:       make(map[string]*beep.Buffer),
		musicLevel:  DefaultMusicVolume,
		duckedLevel: DefaultDuckedMusicVolume,
		firstDelay:  DefaultFirstNarrationDelay,
		delay:       DefaultNarrationDelay,
		log:         logger.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	out.Play(e.mixer)
	return e, nil
}

// Preload decodes every clip up front. Clips without a file get a
// synthesized placeholder; a file that exists but cannot be decoded is an
// error.
func (e *Engine) Preload(clips []model.Clip) error {
	for _, c := range clips {
		buf, err := e.load(c)
		if err != nil {
			return err
		}
		e.mu.Lock()
		e.clips[c.ID] = buf
		e.mu.Unlock()
	}
	return nil
}

// ClipLength reports how long a loaded clip plays, without lead-in.
func (e *Engine) ClipLength(id string) (time.Duration, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	buf, ok := e.clips[id]
	if !ok {
		return 0, false
	}
	return SampleRate.D(buf.Len()), true
}

// Play schedules clip after the lead-in silence and calls done when its
// last sample has been mixed. Prompts duck the music while they play.
func (e *Engine) Play(ctx context.Context, clip model.Clip, done func()) {
	buf, err := e.clip(clip)
	if err != nil {
		e.log.Warn(ctx, "clip unavailable, playing silence", logger.String("clip", clip.ID), logger.Error(err))
		buf = beep.NewBuffer(format)
	}

	e.mu.Lock()
	lead := e.delay
	if !e.played {
		lead = e.firstDelay
		e.played = true
	}
	e.mu.Unlock()

	duck := clip.Kind == model.ClipPrompt
	seq := beep.Seq(
		beep.Silence(SampleRate.N(lead)),
		beep.Callback(func() {
			if duck {
				e.setMusicLocked(e.duckedLevel)
			}
		}),
		&effects.Gain{Streamer: buf.Streamer(0, buf.Len()), Gain: clipVolume - 1},
		beep.Callback(func() {
			if duck {
				e.setMusicLocked(e.musicLevel)
			}
			done()
		}),
	)

	e.log.Debug(ctx, "narration scheduled", logger.String("clip", clip.ID), logger.Duration("lead_in", lead))
	e.out.Lock()
	e.mixer.Add(seq)
	e.out.Unlock()
}

// PlayEffect mixes a short sound over whatever is playing.
func (e *Engine) PlayEffect(_ context.Context, fx model.Effect) {
	var buf *beep.Buffer
	switch fx {
	case model.EffectPopUp:
		buf = melody(effectVolume, note{c5, 40 * time.Millisecond}, note{g5, 60 * time.Millisecond})
	case model.EffectHide:
		buf = melody(effectVolume, note{g4, 40 * time.Millisecond}, note{c4, 60 * time.Millisecond})
	case model.EffectTick:
		buf = melody(effectVolume, note{e5, 30 * time.Millisecond})
	default:
		return
	}
	e.out.Lock()
	e.mixer.Add(buf.Streamer(0, buf.Len()))
	e.out.Unlock()
}

// StartMusic loops music.wav from the assets dir, or a synthesized bed when
// there is none.
func (e *Engine) StartMusic(ctx context.Context) error {
	buf, err := e.decodeFile(filepath.Join(e.assets, musicFile))
	switch {
	case errors.Is(err, os.ErrNotExist):
		buf = melody(0.2,
			note{c4, 400 * time.Millisecond}, note{e4, 400 * time.Millisecond},
			note{g4, 400 * time.Millisecond}, note{a4, 400 * time.Millisecond},
			note{g4, 400 * time.Millisecond}, note{e4, 400 * time.Millisecond},
		)
	case err != nil:
		return err
	}

	gain := &effects.Gain{Streamer: beep.Loop(-1, buf.Streamer(0, buf.Len())), Gain: e.musicLevel - 1}
	e.out.Lock()
	if e.music != nil {
		e.out.Unlock()
		return nil
	}
	e.music = gain
	e.mixer.Add(gain)
	e.out.Unlock()
	e.log.Info(ctx, "background music started", logger.Float64("volume", e.musicLevel))
	return nil
}

// MusicVolume returns the current background level, or 0 when no music
// is playing.
func (e *Engine) MusicVolume() float64 {
	e.out.Lock()
	defer e.out.Unlock()
	if e.music == nil {
		return 0
	}
	return e.music.Gain + 1
}

// Reset drops pending narration and effects between sessions. The mixer
// stays on the output and the music bed keeps looping at its normal level.
// The next clip waits the first lead-in again.
func (e *Engine) Reset() {
	e.out.Lock()
	e.mixer.Clear()
	if e.music != nil {
		e.music.Gain = e.musicLevel - 1
		e.mixer.Add(e.music)
	}
	e.out.Unlock()

	e.mu.Lock()
	e.played = false
	e.mu.Unlock()
}

// Close silences everything and releases the output. The engine cannot be
// used afterwards; pending narration never completes.
func (e *Engine) Close() error {
	e.out.Lock()
	e.mixer.Clear()
	e.music = nil
	e.out.Unlock()
	if c, ok := e.out.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// setMusicLocked runs inside a streamer callback, where the output lock is
// already held.
func (e *Engine) setMusicLocked(level float64) {
	if e.music != nil {
		e.music.Gain = level - 1
	}
}

func (e *Engine) clip(c model.Clip) (*beep.Buffer, error) {
	e.mu.Lock()
	buf, ok := e.clips[c.ID]
	e.mu.Unlock()
	if ok {
		return buf, nil
	}
	buf, err := e.load(c)
	if err != nil {
		return nil, err
	}
	e.mu.Lock()
	e.clips[c.ID] = buf
	e.mu.Unlock()
	return buf, nil
}

func (e *Engine) load(c model.Clip) (*beep.Buffer, error) {
	if e.assets != "" {
		buf, err := e.decodeFile(filepath.Join(e.assets, c.ID+".wav"))
		if err == nil {
			return buf, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}
	return placeholder(c.Kind), nil
}

func (e *Engine) decodeFile(path string) (*beep.Buffer, error) {
	if e.assets == "" {
		return nil, os.ErrNotExist
	}
	f, err := os.Open(path) //nolint:gosec // path comes from the configured assets dir
	if err != nil {
		return nil, err
	}
	stream, f2, err := wav.Decode(f)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("%w: %s: %w", ErrBadClip, path, err)
	}
	defer stream.Close()

	buf := beep.NewBuffer(format)
	if f2.SampleRate == SampleRate {
		buf.Append(stream)
	} else {
		buf.Append(beep.Resample(resampleQuality, f2.SampleRate, SampleRate, stream))
	}
	return buf, nil
}

// placeholder stands in for a missing recording.
func placeholder(kind model.ClipKind) *beep.Buffer {
	switch kind {
	case model.ClipFeedback:
		return melody(0.4, note{c5, 120 * time.Millisecond}, note{e5, 120 * time.Millisecond}, note{g5, 200 * time.Millisecond})
	case model.ClipWin:
		return melody(0.4,
			note{c4, 150 * time.Millisecond}, note{e4, 150 * time.Millisecond}, note{g4, 150 * time.Millisecond},
			note{c5, 450 * time.Millisecond},
		)
	default:
		return melody(0.4, note{a4, 200 * time.Millisecond}, note{e4, 250 * time.Millisecond})
	}
}
