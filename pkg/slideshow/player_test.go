package slideshow

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c9s/pythia/pkg/indicator/envelope"
	"github.com/c9s/pythia/pkg/ranking"
)

func slides(symbols ...string) []ranking.Entry {
	var entries []ranking.Entry
	for i, s := range symbols {
		entries = append(entries, ranking.Entry{
			Symbol:    s,
			Deviation: envelope.Some(float64(len(symbols) - i)),
			Image:     s + ".png",
		})
	}
	return entries
}

func currentSymbol(t *testing.T, p *Player) string {
	slide, ok := p.Current()
	require.True(t, ok)
	return slide.Symbol
}

func TestPlayer_Navigation(t *testing.T) {
	p := NewPlayer(slides("AAPL", "MSFT", "KO"), 0)
	assert.Equal(t, "AAPL", currentSymbol(t, p))

	p.Next()
	assert.Equal(t, "MSFT", currentSymbol(t, p))
	p.Next()
	p.Next()
	assert.Equal(t, "AAPL", currentSymbol(t, p), "next wraps to the first slide")

	state := p.Previous()
	assert.Equal(t, 2, state.Index)
	assert.Equal(t, "KO", state.Slide.Symbol, "previous wraps to the last slide")

	p.Previous()
	assert.Equal(t, "MSFT", currentSymbol(t, p))
}

func TestPlayer_Empty(t *testing.T) {
	p := NewPlayer(nil, time.Second)

	_, ok := p.Current()
	assert.False(t, ok)

	state := p.Next()
	assert.Equal(t, 0, state.Index)
	assert.Equal(t, 0, state.Total)
	assert.Nil(t, state.Slide)

	state = p.Previous()
	assert.Nil(t, state.Slide)
}

func TestPlayer_Toggle(t *testing.T) {
	p := NewPlayer(slides("AAPL"), 0)
	assert.True(t, p.State().Playing)
	assert.Equal(t, DefaultDelay.Milliseconds(), p.State().DelayMs)

	assert.False(t, p.Toggle().Playing)
	assert.True(t, p.Toggle().Playing)

	assert.False(t, p.Pause().Playing)
	assert.False(t, p.Pause().Playing)
	assert.True(t, p.Play().Playing)
}

func TestPlayer_Replace(t *testing.T) {
	p := NewPlayer(slides("AAPL", "MSFT", "KO"), 0)
	p.Next()

	// the current symbol moved to the front
	state := p.Replace(slides("MSFT", "IBM", "AAPL"))
	assert.Equal(t, 0, state.Index)
	assert.Equal(t, "MSFT", state.Slide.Symbol)
	assert.Equal(t, 3, state.Total)

	p.Next()
	state = p.Replace(slides("V", "KO"))
	assert.Equal(t, "V", state.Slide.Symbol, "a missing symbol starts over")

	state = p.Replace(nil)
	assert.Nil(t, state.Slide)
	_, ok := p.Current()
	assert.False(t, ok)
}

func TestPlayer_OnChange(t *testing.T) {
	p := NewPlayer(slides("AAPL", "MSFT"), 0)

	var mu sync.Mutex
	var states []State
	p.OnChange(func(state State) {
		mu.Lock()
		states = append(states, state)
		mu.Unlock()
	})

	p.Next()
	p.Toggle()
	p.Pause() // already paused, no change

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, states, 2)
	assert.Equal(t, "MSFT", states[0].Slide.Symbol)
	assert.False(t, states[1].Playing)
}

func TestPlayer_RunAutoAdvance(t *testing.T) {
	p := NewPlayer(slides("AAPL", "MSFT", "KO"), 20*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go p.Run(ctx)

	assert.Eventually(t, func() bool {
		return p.State().Index == 2
	}, time.Second, 5*time.Millisecond)

	p.Pause()
	index := p.State().Index
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, index, p.State().Index, "a paused player does not advance")

	p.Play()
	assert.Eventually(t, func() bool {
		return p.State().Index != index
	}, time.Second, 5*time.Millisecond)
}

func TestPlayer_NextRestartsTimer(t *testing.T) {
	p := NewPlayer(slides("AAPL", "MSFT", "KO"), 300*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go p.Run(ctx)

	time.Sleep(200 * time.Millisecond)
	p.Next()

	// the first advance would have been due at 300ms
	time.Sleep(150 * time.Millisecond)
	assert.Equal(t, "MSFT", currentSymbol(t, p))

	assert.Eventually(t, func() bool {
		return p.State().Index == 2
	}, time.Second, 10*time.Millisecond)
}

func TestPlayer_StartPaused(t *testing.T) {
	p := NewPlayer(slides("AAPL", "MSFT"), 10*time.Millisecond)
	p.Pause()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go p.Run(ctx)

	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, "AAPL", currentSymbol(t, p))
}

func TestPlayer_TickAfterManualMove(t *testing.T) {
	tests := []struct {
		name   string
		manual func(p *Player)
		want   string
		moved  bool
	}{
		{
			name:  "no manual move",
			want:  "MSFT",
			moved: true,
		},
		{
			name:   "next already advanced",
			manual: func(p *Player) { p.Next() },
			want:   "MSFT",
		},
		{
			name:   "previous keeps the pending advance",
			manual: func(p *Player) { p.Previous() },
			want:   "AAPL",
			moved:  true,
		},
		{
			name:   "toggled twice",
			manual: func(p *Player) { p.Toggle(); p.Toggle() },
			want:   "AAPL",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPlayer(slides("AAPL", "MSFT", "KO"), time.Second)

			armed, playing := p.arm()
			require.True(t, playing)

			if tt.manual != nil {
				tt.manual(p)
			}

			_, moved := p.tick(armed)
			assert.Equal(t, tt.moved, moved)
			assert.Equal(t, tt.want, currentSymbol(t, p))
		})
	}
}
