package slideshow

import (
	"context"
	"sync"
	"time"

	"github.com/c9s/pythia/pkg/ranking"
)

const DefaultDelay = 5 * time.Second

// State is a snapshot of the player.
type State struct {
	Index   int            `json:"index"`
	Total   int            `json:"total"`
	Playing bool           `json:"playing"`
	DelayMs int64          `json:"delayMs"`
	Slide   *ranking.Entry `json:"slide,omitempty"`
}

//go:generate callbackgen -type Player

// Player cycles through the ranked slides. It starts playing at the first slide.
// Run drives the auto-advance, the navigation methods are safe to call from any goroutine.
// Change callbacks must be registered before Run starts.
type Player struct {
	mu      sync.Mutex
	slides  []ranking.Entry
	index   int
	playing bool
	delay   time.Duration

	// reschedule asks Run to restart its timer
	reschedule chan struct{}

	// restarts counts the timer restarts requested since the player was created,
	// a tick armed before the latest restart is stale
	restarts uint64

	changeCallbacks []func(state State)
}

func NewPlayer(slides []ranking.Entry, delay time.Duration) *Player {
	if delay <= 0 {
		delay = DefaultDelay
	}

	return &Player{
		slides:     append([]ranking.Entry(nil), slides...),
		playing:    true,
		delay:      delay,
		reschedule: make(chan struct{}, 1),
	}
}

// Current returns the slide on display, false when there are no slides.
func (p *Player) Current() (ranking.Entry, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.slides) == 0 {
		return ranking.Entry{}, false
	}
	return p.slides[p.index], true
}

func (p *Player) Slides() []ranking.Entry {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]ranking.Entry(nil), p.slides...)
}

func (p *Player) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state()
}

// Next shows the following slide, wrapping to the first one, and restarts the auto-advance timer.
func (p *Player) Next() State {
	p.mu.Lock()
	state, ok := p.moveLocked(1)
	if ok {
		p.restarts++
	}
	p.mu.Unlock()

	if ok {
		p.restartTimer()
		p.EmitChange(state)
	}
	return state
}

// Previous shows the preceding slide, wrapping to the last one. The pending auto-advance is kept.
func (p *Player) Previous() State {
	state, ok := p.move(-1)
	if ok {
		p.EmitChange(state)
	}
	return state
}

// Toggle switches between playing and paused.
func (p *Player) Toggle() State {
	p.mu.Lock()
	p.playing = !p.playing
	p.restarts++
	state := p.state()
	p.mu.Unlock()

	p.restartTimer()
	p.EmitChange(state)
	return state
}

func (p *Player) Play() State {
	return p.setPlaying(true)
}

// Pause stops the auto-advance, the pending advance is cancelled.
func (p *Player) Pause() State {
	return p.setPlaying(false)
}

// Replace swaps in a new slide list. The current symbol stays on display when it is still present,
// otherwise the player starts over at the first slide.
func (p *Player) Replace(slides []ranking.Entry) State {
	p.mu.Lock()
	var current string
	if len(p.slides) > 0 {
		current = p.slides[p.index].Symbol
	}

	p.slides = append([]ranking.Entry(nil), slides...)
	p.index = 0
	for i, s := range p.slides {
		if s.Symbol == current {
			p.index = i
			break
		}
	}

	state := p.state()
	p.mu.Unlock()

	p.EmitChange(state)
	return state
}

// Run advances the slides every delay while playing, until ctx is done.
func (p *Player) Run(ctx context.Context) {
	timer := time.NewTimer(p.delay)
	defer timer.Stop()

	armed, playing := p.arm()
	if !playing {
		stopTimer(timer)
	}

	for {
		select {
		case <-ctx.Done():
			return

		case <-p.reschedule:
			stopTimer(timer)
			armed, playing = p.arm()
			if playing {
				timer.Reset(p.delay)
			}

		case <-timer.C:
			state, ok := p.tick(armed)
			if ok {
				p.EmitChange(state)
			}

			armed, playing = p.arm()
			if playing {
				timer.Reset(p.delay)
			}
		}
	}
}

// arm returns the restart sequence a new timer belongs to.
func (p *Player) arm() (uint64, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.restarts, p.playing
}

// tick advances one slide for a timer armed at sequence armed.
// A manual Next or a toggle since then already restarted the delay, so the tick is dropped.
func (p *Player) tick(armed uint64) (State, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.playing || p.restarts != armed {
		return p.state(), false
	}
	return p.moveLocked(1)
}

func (p *Player) setPlaying(playing bool) State {
	p.mu.Lock()
	changed := p.playing != playing
	p.playing = playing
	if changed {
		p.restarts++
	}
	state := p.state()
	p.mu.Unlock()

	if changed {
		p.restartTimer()
		p.EmitChange(state)
	}
	return state
}

func (p *Player) move(step int) (State, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.moveLocked(step)
}

func (p *Player) moveLocked(step int) (State, bool) {
	n := len(p.slides)
	if n == 0 {
		return p.state(), false
	}

	p.index = ((p.index+step)%n + n) % n
	return p.state(), true
}

func (p *Player) restartTimer() {
	select {
	case p.reschedule <- struct{}{}:
	default:
		// a reschedule is already pending
	}
}

// state must be called with the lock held
func (p *Player) state() State {
	s := State{
		Index:   p.index,
		Total:   len(p.slides),
		Playing: p.playing,
		DelayMs: p.delay.Milliseconds(),
	}

	if len(p.slides) > 0 {
		slide := p.slides[p.index]
		s.Slide = &slide
	}
	return s
}

func stopTimer(timer *time.Timer) {
	if !timer.Stop() {
		select {
		case <-timer.C:
		default:
		}
	}
}
