// Package playback toggles spoken narration of the most recent scan text.
//
// A Player is a small two-state machine: Idle or Speaking. Toggling while
// Idle synthesizes the text and plays it; toggling while Speaking stops the
// in-progress utterance immediately, discarding whatever remains unspoken.
// At most one utterance is ever in flight.
package playback

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/readlens/readlens/pkg/tts"
)

// State is the playback state.
type State int32

const (
	// StateIdle means nothing is being spoken.
	StateIdle State = iota

	// StateSpeaking means an utterance is in flight.
	StateSpeaking
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSpeaking:
		return "speaking"
	default:
		return "unknown"
	}
}

// Sink plays synthesized audio.
type Sink interface {
	// Play blocks until the audio has been played, the context is
	// cancelled, or Stop is called.
	Play(ctx context.Context, audio *tts.AudioResult) error

	// Stop aborts the in-progress playback immediately, discarding any
	// remaining audio. Safe to call when nothing is playing.
	Stop()
}

// Player toggles narration over a TTS provider and an audio sink.
type Player struct {
	provider tts.Provider
	sink     Sink
	logger   *slog.Logger

	// OnStateChange, when set, fires on every Idle/Speaking transition.
	// It runs on whichever goroutine caused the transition.
	OnStateChange func(s State)

	mu     sync.Mutex
	state  State
	cancel context.CancelFunc
	gen    uint64 // utterance generation, guards stale completions
}

// NewPlayer creates a playback controller.
func NewPlayer(provider tts.Provider, sink Sink, logger *slog.Logger) *Player {
	if logger == nil {
		logger = slog.Default()
	}

	return &Player{
		provider: provider,
		sink:     sink,
		logger:   logger.With("component", "playback.player"),
	}
}

// State returns the current playback state.
func (p *Player) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Toggle starts speaking text when idle, or stops the current utterance when
// speaking. Stopping is immediate rather than graceful-drain.
func (p *Player) Toggle(ctx context.Context, text string) {
	p.mu.Lock()

	if p.state == StateSpeaking {
		cancel := p.cancel
		p.cancel = nil
		p.state = StateIdle
		p.gen++
		p.mu.Unlock()

		if cancel != nil {
			cancel()
		}
		p.sink.Stop()
		p.notify(StateIdle)
		p.logger.Info("playback stopped")
		return
	}

	utterCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.state = StateSpeaking
	p.gen++
	gen := p.gen
	p.mu.Unlock()

	p.notify(StateSpeaking)
	p.logger.Info("playback started", "chars", len(text))

	go p.speak(utterCtx, gen, text)
}

// Stop forces playback to Idle regardless of current state.
func (p *Player) Stop() {
	p.mu.Lock()
	if p.state != StateSpeaking {
		p.mu.Unlock()
		return
	}
	cancel := p.cancel
	p.cancel = nil
	p.state = StateIdle
	p.gen++
	p.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	p.sink.Stop()
	p.notify(StateIdle)
}

// speak synthesizes and plays one utterance, then returns the player to Idle
// unless a Toggle/Stop already did.
func (p *Player) speak(ctx context.Context, gen uint64, text string) {
	audio, err := p.provider.Synthesize(ctx, text)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			p.logger.Warn("synthesis failed", "error", err)
		}
		p.finish(gen)
		return
	}

	if err := p.sink.Play(ctx, audio); err != nil && !errors.Is(err, context.Canceled) {
		p.logger.Warn("playback failed", "error", err)
	}

	p.finish(gen)
}

// finish transitions Speaking to Idle for natural utterance completion.
// A stale generation means a Toggle/Stop already won; nothing to do.
func (p *Player) finish(gen uint64) {
	p.mu.Lock()
	if p.gen != gen || p.state != StateSpeaking {
		p.mu.Unlock()
		return
	}
	p.state = StateIdle
	p.cancel = nil
	p.mu.Unlock()

	p.notify(StateIdle)
	p.logger.Debug("playback completed")
}

func (p *Player) notify(s State) {
	if p.OnStateChange != nil {
		p.OnStateChange(s)
	}
}
