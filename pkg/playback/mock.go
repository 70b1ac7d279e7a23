package playback

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/readlens/readlens/pkg/tts"
)

// MockSink is a mock audio sink for testing.
// By default Play returns immediately; set Block to make playback wait until
// Stop, context cancellation, or Release.
type MockSink struct {
	// Block makes Play wait instead of returning immediately.
	Block bool

	mu      sync.Mutex
	stopCh  chan struct{}
	played  []*tts.AudioResult
	stopped atomic.Int64
}

// NewMockSink creates a new mock audio sink.
func NewMockSink() *MockSink {
	return &MockSink{}
}

// Play records the audio and optionally blocks.
func (m *MockSink) Play(ctx context.Context, audio *tts.AudioResult) error {
	m.mu.Lock()
	m.played = append(m.played, audio)
	var stopCh chan struct{}
	if m.Block {
		stopCh = make(chan struct{})
		m.stopCh = stopCh
	}
	m.mu.Unlock()

	if stopCh == nil {
		return nil
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-stopCh:
		return nil
	}
}

// Stop unblocks an in-progress Play and counts the call.
func (m *MockSink) Stop() {
	m.stopped.Add(1)
	m.Release()
}

// Release unblocks an in-progress Play without counting as a Stop.
func (m *MockSink) Release() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stopCh != nil {
		close(m.stopCh)
		m.stopCh = nil
	}
}

// Played returns the recorded audio results.
func (m *MockSink) Played() []*tts.AudioResult {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]*tts.AudioResult, len(m.played))
	copy(result, m.played)
	return result
}

// StopCount returns how many times Stop was called.
func (m *MockSink) StopCount() int64 {
	return m.stopped.Load()
}

// Verify MockSink implements Sink at compile time.
var _ Sink = (*MockSink)(nil)
