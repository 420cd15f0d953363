package audio_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/wav"
	"github.com/okian/whackaword/internal/adapters/audio"
	model "github.com/okian/whackaword/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

// manualOutput mixes only when the test pulls samples.
type manualOutput struct {
	mu      sync.Mutex
	streams []beep.Streamer
}

func (o *manualOutput) Play(s ...beep.Streamer) {
	o.mu.Lock()
	o.streams = append(o.streams, s...)
	o.mu.Unlock()
}

func (o *manualOutput) Lock() { o.mu.Lock() }

func (o *manualOutput) Unlock() { o.mu.Unlock() }

// pull streams d of audio through every playing streamer.
func (o *manualOutput) pull(d time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	buf := make([][2]float64, 512)
	for n := audio.SampleRate.N(d); n > 0; {
		chunk := min(n, len(buf))
		for _, s := range o.streams {
			s.Stream(buf[:chunk])
		}
		n -= chunk
	}
}

func prompt(id string) model.Clip { return model.Clip{ID: id, Kind: model.ClipPrompt} }

func TestEngineNarration(t *testing.T) {
	convey.Convey("Given an engine with music and a lead-in", t, func() {
		out := &manualOutput{}
		eng, err := audio.New(out, audio.WithLeadIn(200*time.Millisecond, 100*time.Millisecond))
		convey.So(err, convey.ShouldBeNil)
		convey.So(eng.StartMusic(context.Background()), convey.ShouldBeNil)
		convey.So(eng.Preload([]model.Clip{prompt("apple")}), convey.ShouldBeNil)
		length, ok := eng.ClipLength("apple")
		convey.So(ok, convey.ShouldBeTrue)
		convey.So(length, convey.ShouldBeGreaterThan, 0)

		convey.Convey("When a prompt is played", func() {
			done := 0
			eng.Play(context.Background(), prompt("apple"), func() { done++ })

			convey.Convey("Then it waits out the first lead-in at full music volume", func() {
				out.pull(150 * time.Millisecond)
				convey.So(done, convey.ShouldEqual, 0)
				convey.So(eng.MusicVolume(), convey.ShouldAlmostEqual, audio.DefaultMusicVolume, 1e-9)
			})

			convey.Convey("Then the music is ducked while the clip plays", func() {
				out.pull(200*time.Millisecond + length/2)
				convey.So(done, convey.ShouldEqual, 0)
				convey.So(eng.MusicVolume(), convey.ShouldAlmostEqual, audio.DefaultDuckedMusicVolume, 1e-9)
			})

			convey.Convey("Then completion restores the music and reports once", func() {
				out.pull(200*time.Millisecond + length + 50*time.Millisecond)
				convey.So(done, convey.ShouldEqual, 1)
				convey.So(eng.MusicVolume(), convey.ShouldAlmostEqual, audio.DefaultMusicVolume, 1e-9)

				convey.Convey("And the next clip only waits the shorter lead-in", func() {
					eng.Play(context.Background(), prompt("apple"), func() { done++ })
					out.pull(100*time.Millisecond + length + 50*time.Millisecond)
					convey.So(done, convey.ShouldEqual, 2)
				})
			})
		})

		convey.Convey("When feedback is played", func() {
			done := false
			eng.Play(context.Background(), model.Clip{ID: "correct", Kind: model.ClipFeedback}, func() { done = true })
			out.pull(210 * time.Millisecond)

			convey.Convey("Then the music is not ducked", func() {
				convey.So(done, convey.ShouldBeFalse)
				convey.So(eng.MusicVolume(), convey.ShouldAlmostEqual, audio.DefaultMusicVolume, 1e-9)
			})
		})

		convey.Convey("When the engine is reset mid-clip and a new session plays", func() {
			stale := false
			eng.Play(context.Background(), prompt("apple"), func() { stale = true })
			out.pull(200*time.Millisecond + length/2)
			convey.So(eng.MusicVolume(), convey.ShouldAlmostEqual, audio.DefaultDuckedMusicVolume, 1e-9)

			eng.Reset()
			convey.So(eng.MusicVolume(), convey.ShouldAlmostEqual, audio.DefaultMusicVolume, 1e-9)

			done := 0
			eng.Play(context.Background(), prompt("apple"), func() { done++ })

			convey.Convey("Then the new clip waits the first lead-in again", func() {
				out.pull(150 * time.Millisecond)
				convey.So(done, convey.ShouldEqual, 0)
			})

			convey.Convey("Then the new clip completes and the music keeps its level", func() {
				out.pull(200*time.Millisecond + length + 50*time.Millisecond)
				convey.So(done, convey.ShouldEqual, 1)
				convey.So(stale, convey.ShouldBeFalse)
				convey.So(eng.MusicVolume(), convey.ShouldAlmostEqual, audio.DefaultMusicVolume, 1e-9)
			})
		})

		convey.Convey("When the engine is closed", func() {
			done := false
			eng.Play(context.Background(), prompt("apple"), func() { done = true })
			convey.So(eng.Close(), convey.ShouldBeNil)
			out.pull(2 * time.Second)

			convey.Convey("Then pending narration never completes", func() {
				convey.So(done, convey.ShouldBeFalse)
				convey.So(eng.MusicVolume(), convey.ShouldEqual, 0)
			})
		})
	})
}

func TestEngineAssets(t *testing.T) {
	convey.Convey("Given an assets dir holding one recording", t, func() {
		dir := t.TempDir()
		writeWav(t, filepath.Join(dir, "egg.wav"), 300*time.Millisecond)
		convey.So(os.WriteFile(filepath.Join(dir, "cake.wav"), []byte("not a wav"), 0o600), convey.ShouldBeNil)

		eng, err := audio.New(&manualOutput{}, audio.WithAssetsDir(dir))
		convey.So(err, convey.ShouldBeNil)

		convey.Convey("When preloading the recorded clip", func() {
			err := eng.Preload([]model.Clip{prompt("egg"), prompt("bread")})

			convey.Convey("Then it is decoded at its real length and the missing one is synthesized", func() {
				convey.So(err, convey.ShouldBeNil)
				egg, _ := eng.ClipLength("egg")
				convey.So(egg, convey.ShouldAlmostEqual, 300*time.Millisecond, float64(time.Millisecond))
				_, ok := eng.ClipLength("bread")
				convey.So(ok, convey.ShouldBeTrue)
			})
		})

		convey.Convey("When preloading a corrupt recording", func() {
			err := eng.Preload([]model.Clip{prompt("cake")})

			convey.Convey("Then the error says so", func() {
				convey.So(errors.Is(err, audio.ErrBadClip), convey.ShouldBeTrue)
			})
		})
	})

	convey.Convey("Given no output", t, func() {
		_, err := audio.New(nil)

		convey.Convey("Then the engine cannot be built", func() {
			convey.So(errors.Is(err, audio.ErrNilOutput), convey.ShouldBeTrue)
		})
	})
}

func writeWav(t *testing.T, path string, d time.Duration) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	format := beep.Format{SampleRate: audio.SampleRate, NumChannels: 2, Precision: 2}
	if err := wav.Encode(f, beep.Take(audio.SampleRate.N(d), beep.Silence(-1)), format); err != nil {
		t.Fatal(err)
	}
}
