package audio

import (
	"math"
	"time"

	"github.com/gopxl/beep"
)

// note is one synthesized pitch.
type note struct {
	freq float64
	dur  time.Duration
}

// oscillator plays a sine at freq with a short attack and release so
// notes do not click.
type oscillator struct {
	freq     float64
	amp      float64
	pos      int
	duration int
}

func newTone(freq float64, d time.Duration, amp float64) beep.Streamer {
	return &oscillator{freq: freq, amp: amp, duration: SampleRate.N(d)}
}

func (o *oscillator) Stream(samples [][2]float64) (n int, ok bool) {
	ramp := float64(SampleRate.N(5 * time.Millisecond))
	for i := range samples {
		if o.pos >= o.duration {
			return i, i > 0
		}
		env := math.Min(1, math.Min(float64(o.pos)/ramp, float64(o.duration-o.pos)/ramp))
		v := o.amp * env * math.Sin(2*math.Pi*o.freq*float64(o.pos)/float64(SampleRate))
		samples[i][0] = v
		samples[i][1] = v
		o.pos++
	}
	return len(samples), true
}

func (o *oscillator) Err() error { return nil }

// melody renders notes back to back into a buffer.
func melody(amp float64, notes ...note) *beep.Buffer {
	buf := beep.NewBuffer(format)
	for _, n := range notes {
		buf.Append(newTone(n.freq, n.dur, amp))
	}
	return buf
}

var format = beep.Format{SampleRate: SampleRate, NumChannels: 2, Precision: 2}

// Pitches used by the placeholder sounds.
const (
	c4 = 261.63
	e4 = 329.63
	g4 = 392.00
	a4 = 440.00
	c5 = 523.25
	e5 = 659.25
	g5 = 783.99
)
