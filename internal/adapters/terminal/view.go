// Package terminal is the tcell front-end: it draws the holes, animates
// cards as the stage and turns number keys into taps.
package terminal

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"
	model "github.com/okian/whackaword/internal/domain/model"
	round "github.com/okian/whackaword/internal/round"
	"github.com/okian/whackaword/pkg/logger"
)

// Default animation timing.
const (
	DefaultPopDuration     = 500 * time.Millisecond
	DefaultRetractDuration = 500 * time.Millisecond
	statusRefresh          = 200 * time.Millisecond
	holeWidth              = 12
)

// Tapper receives taps made on the keyboard.
type Tapper interface {
	Tap(ctx context.Context, slotID string, token uint64) error
}

// StatusFunc supplies the header line.
type StatusFunc func() round.Snapshot

type cardState int

const (
	cardRising cardState = iota + 1
	cardUp
	cardHiding
)

type card struct {
	target   string
	state    cardState
	feedback bool
}

var (
	styleHole     = tcell.StyleDefault.Foreground(tcell.ColorSaddleBrown)
	styleRising   = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleUp       = tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.ColorNavy).Bold(true)
	styleFeedback = tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(tcell.ColorYellow).Bold(true)
	styleHeader   = tcell.StyleDefault.Foreground(tcell.ColorGreen).Bold(true)
	styleHint     = tcell.StyleDefault.Foreground(tcell.ColorGray)
)

// View implements the round stage on a tcell screen.
type View struct {
	mu      sync.Mutex
	screen  tcell.Screen
	clock   round.Clock
	slots   []model.Slot
	cards   map[string]*card
	timers  *round.Timers
	token   model.RoundToken
	status  StatusFunc
	pop     time.Duration
	retract time.Duration
	log     logger.Logger
}

// Option configures a View.
type Option func(*View)

// WithClock replaces the system clock.
func WithClock(c round.Clock) Option {
	return func(v *View) {
		if c != nil {
			v.clock = c
		}
	}
}

// WithAnimation sets the pop-up and hide durations.
func WithAnimation(pop, retract time.Duration) Option {
	return func(v *View) {
		if pop >= 0 {
			v.pop = pop
		}
		if retract >= 0 {
			v.retract = retract
		}
	}
}

// WithStatus sets where the header reads progress from.
func WithStatus(f StatusFunc) Option {
	return func(v *View) {
		v.status = f
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(v *View) {
		if l != nil {
			v.log = l
		}
	}
}

// New wraps an initialised screen.
func New(screen tcell.Screen, slots []model.Slot, opts ...Option) *View {
	v := &View{
		screen:  screen,
		clock:   round.SystemClock(),
		slots:   append([]model.Slot(nil), slots...),
		cards:   make(map[string]*card),
		pop:     DefaultPopDuration,
		retract: DefaultRetractDuration,
		log:     logger.Nop(),
	}
	for _, opt := range opts {
		opt(v)
	}
	v.timers = round.NewTimers(v.clock)
	return v
}

// Present starts the pop-up animation and calls done when the card is up.
func (v *View) Present(_ context.Context, p model.Presentation, done func()) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.token = p.Token
	c := &card{target: p.Target.Name, state: cardRising}
	v.cards[p.Slot.ID] = c
	v.drawLocked()
	v.timers.After(v.pop, func() {
		v.mu.Lock()
		// A card hidden or replaced while rising stays as it is.
		if v.cards[p.Slot.ID] == c && c.state == cardRising {
			c.state = cardUp
		}
		v.drawLocked()
		v.mu.Unlock()
		done()
	})
}

// Retract starts the hide animation and calls done when the hole is empty.
func (v *View) Retract(_ context.Context, slot model.Slot, done func()) {
	v.mu.Lock()
	defer v.mu.Unlock()
	c, ok := v.cards[slot.ID]
	if ok {
		c.state = cardHiding
	}
	v.drawLocked()
	v.timers.After(v.retract, func() {
		v.mu.Lock()
		if v.cards[slot.ID] == c {
			delete(v.cards, slot.ID)
		}
		v.drawLocked()
		v.mu.Unlock()
		done()
	})
}

// EmitFeedback highlights the tapped card.
func (v *View) EmitFeedback(_ context.Context, slot model.Slot) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if c, ok := v.cards[slot.ID]; ok {
		c.feedback = true
	}
	v.drawLocked()
}

// Run reads keys until the player quits or ctx ends. Number keys tap the
// matching hole for the round currently on screen.
func (v *View) Run(ctx context.Context, tapper Tapper) error {
	events := make(chan tcell.Event, 16)
	go func() {
		for {
			ev := v.screen.PollEvent()
			if ev == nil {
				close(events)
				return
			}
			select {
			case events <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()

	ticker := time.NewTicker(statusRefresh)
	defer ticker.Stop()
	v.Draw()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			v.Draw()
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			switch ev := ev.(type) {
			case *tcell.EventResize:
				v.screen.Sync()
				v.Draw()
			case *tcell.EventKey:
				if v.handleKey(ctx, tapper, ev.Key(), ev.Rune()) {
					return nil
				}
			}
		}
	}
}

// handleKey reports whether the player asked to quit.
func (v *View) handleKey(ctx context.Context, tapper Tapper, key tcell.Key, r rune) bool {
	switch {
	case key == tcell.KeyEscape || key == tcell.KeyCtrlC:
		return true
	case key == tcell.KeyRune && (r == 'q' || r == 'Q'):
		return true
	case key == tcell.KeyRune && r >= '1' && r <= '9':
		idx := int(r - '1')
		if idx >= len(v.slots) {
			return false
		}
		v.mu.Lock()
		token := v.token
		v.mu.Unlock()
		slot := v.slots[idx].ID
		if err := tapper.Tap(ctx, slot, uint64(token)); err != nil {
			v.log.Warn(ctx, "tap rejected", logger.String("slot", slot), logger.Error(err))
		}
	}
	return false
}

// Draw repaints the whole screen.
func (v *View) Draw() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.drawLocked()
}

// Reset cancels animations and empties every hole. The view can present
// again afterwards.
func (v *View) Reset() {
	v.timers.StopAll()
	v.mu.Lock()
	defer v.mu.Unlock()
	v.cards = make(map[string]*card)
	v.token = 0
	v.drawLocked()
}

// Close cancels animations and restores the terminal.
func (v *View) Close() error {
	v.timers.StopAll()
	v.screen.Fini()
	return nil
}

func (v *View) drawLocked() {
	v.screen.Clear()
	w, h := v.screen.Size()

	if v.status != nil {
		s := v.status()
		header := fmt.Sprintf("Whack-A-Word   tier %d/%d   %s", s.Tier, s.Tiers, stars(s.Successes, s.Required))
		v.text(1, 0, header, styleHeader)
		switch {
		case s.Won:
			v.text(1, 2, "Well done!", styleFeedback)
		case s.Prompt != "":
			v.text(1, 2, "Find the "+strings.ToLower(s.Prompt)+"!", tcell.StyleDefault.Bold(true))
		}
	}

	row := h / 2
	gap := 2
	total := len(v.slots)*holeWidth + (len(v.slots)-1)*gap
	x := max(0, (w-total)/2)
	for i, slot := range v.slots {
		left := x + i*(holeWidth+gap)
		if c, ok := v.cards[slot.ID]; ok {
			style := styleUp
			switch {
			case c.feedback:
				style = styleFeedback
			case c.state != cardUp:
				style = styleRising
			}
			v.text(left, row-1, center(c.target, holeWidth), style)
		}
		v.text(left, row, "("+strings.Repeat("_", holeWidth-2)+")", styleHole)
		v.text(left, row+1, center(fmt.Sprintf("%d", i+1), holeWidth), styleHint)
	}
	v.text(1, h-1, fmt.Sprintf("keys 1-%d tap a hole, q quits", len(v.slots)), styleHint)
	v.screen.Show()
}

func (v *View) text(x, y int, s string, style tcell.Style) {
	for _, r := range s {
		v.screen.SetContent(x, y, r, nil, style)
		x++
	}
}

func center(s string, width int) string {
	if len(s) >= width {
		return s[:width]
	}
	pad := (width - len(s)) / 2
	return strings.Repeat(" ", pad) + s + strings.Repeat(" ", width-len(s)-pad)
}

func stars(n, of int) string {
	if n > of {
		n = of
	}
	return strings.Repeat("*", n) + strings.Repeat(".", of-n)
}
