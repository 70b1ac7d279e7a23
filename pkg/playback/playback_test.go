package playback

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/readlens/readlens/pkg/tts"
)

func waitForPlayerState(t *testing.T, p *Player, want State) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if p.State() == want {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("player never reached %v, stuck at %v", want, p.State())
}

func TestPlayer_ToggleStartsAndStops(t *testing.T) {
	provider := tts.NewMock()
	sink := NewMockSink()
	sink.Block = true
	p := NewPlayer(provider, sink, nil)

	if p.State() != StateIdle {
		t.Fatal("new player should be idle")
	}

	p.Toggle(context.Background(), "hello world")
	if p.State() != StateSpeaking {
		t.Fatal("first toggle should start speaking")
	}

	// Wait for synthesis to reach the sink before toggling off.
	deadline := time.Now().Add(time.Second)
	for len(sink.Played()) == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if len(sink.Played()) != 1 {
		t.Fatal("audio never reached the sink")
	}

	p.Toggle(context.Background(), "hello world")
	if p.State() != StateIdle {
		t.Fatal("second toggle should stop immediately")
	}
	if sink.StopCount() == 0 {
		t.Error("stopping should abort the sink")
	}
}

func TestPlayer_ThirdToggleStartsFreshUtterance(t *testing.T) {
	provider := tts.NewMock()
	sink := NewMockSink()
	sink.Block = true
	p := NewPlayer(provider, sink, nil)

	p.Toggle(context.Background(), "first")
	p.Toggle(context.Background(), "first") // stop
	p.Toggle(context.Background(), "second")

	waitForPlayerState(t, p, StateSpeaking)

	deadline := time.Now().Add(time.Second)
	for provider.CallCount("Synthesize") < 2 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if got := provider.CallCount("Synthesize"); got != 2 {
		t.Fatalf("expected 2 synthesize calls, got %d", got)
	}
	if last := provider.LastCall(); last.Text != "second" {
		t.Errorf("third toggle spoke %q, want \"second\"", last.Text)
	}
}

func TestPlayer_NaturalCompletionReturnsToIdle(t *testing.T) {
	provider := tts.NewMock()
	sink := NewMockSink() // non-blocking: playback completes at once
	p := NewPlayer(provider, sink, nil)

	var mu sync.Mutex
	var states []State
	p.OnStateChange = func(s State) {
		mu.Lock()
		states = append(states, s)
		mu.Unlock()
	}

	p.Toggle(context.Background(), "short")
	waitForPlayerState(t, p, StateIdle)

	mu.Lock()
	defer mu.Unlock()
	if len(states) != 2 || states[0] != StateSpeaking || states[1] != StateIdle {
		t.Errorf("expected [speaking idle], got %v", states)
	}
	if sink.StopCount() != 0 {
		t.Error("natural completion must not call sink.Stop")
	}
}

func TestPlayer_SynthesisFailureReturnsToIdle(t *testing.T) {
	provider := tts.WithError(tts.ErrProviderUnavailable)
	sink := NewMockSink()
	p := NewPlayer(provider, sink, nil)

	p.Toggle(context.Background(), "doomed")
	waitForPlayerState(t, p, StateIdle)

	if got := len(sink.Played()); got != 0 {
		t.Errorf("nothing should reach the sink on synthesis failure, got %d", got)
	}
}

func TestPlayer_StopWhenIdleIsNoOp(t *testing.T) {
	p := NewPlayer(tts.NewMock(), NewMockSink(), nil)

	var fired bool
	p.OnStateChange = func(State) { fired = true }

	p.Stop()
	if fired {
		t.Error("Stop while idle should not fire a state change")
	}
}

func TestPlayer_StaleCompletionIsIgnored(t *testing.T) {
	release := make(chan struct{})
	provider := &tts.Mock{
		SynthesizeFunc: func(ctx context.Context, text string) (*tts.AudioResult, error) {
			<-release
			return &tts.AudioResult{Audio: []byte("a")}, nil
		},
	}
	sink := NewMockSink()
	p := NewPlayer(provider, sink, nil)

	p.Toggle(context.Background(), "first") // speak goroutine blocks in synthesis
	p.Toggle(context.Background(), "first") // stop; generation advances

	sink.Block = true
	p.Toggle(context.Background(), "second") // new utterance, also blocked
	close(release)                           // stale goroutine finishes now

	time.Sleep(20 * time.Millisecond)
	if got := p.State(); got != StateSpeaking {
		t.Errorf("stale completion flipped the player to %v", got)
	}

	p.Stop()
}
