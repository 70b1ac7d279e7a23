package capture

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/readlens/readlens/pkg/frame"
)

// MockSource is a mock frame source for testing.
// It delivers a scripted sequence of frames on a ticker, honoring the same
// single in-flight contract as the camera: the next frame is not delivered
// until the handler has returned.
type MockSource struct {
	cfg    Config
	logger *slog.Logger

	mu      sync.Mutex
	running bool
	closed  bool
	stopCh  chan struct{}
	doneCh  chan struct{}

	// Scripted frames, delivered in order.
	frames [][]byte
	loop   bool

	// Stats
	framesDelivered atomic.Int64

	// FailStart, when set, makes Start fail with ErrDeviceUnavailable.
	// Simulates a missing or busy camera.
	FailStart bool
}

// MockSourceOption configures a MockSource.
type MockSourceOption func(*MockSource)

// WithFrames sets the scripted frame payloads.
func WithFrames(frames ...[]byte) MockSourceOption {
	return func(m *MockSource) {
		m.frames = frames
	}
}

// WithLoop makes the mock repeat the scripted frames indefinitely.
func WithLoop() MockSourceOption {
	return func(m *MockSource) {
		m.loop = true
	}
}

// NewMockSource creates a new mock frame source.
func NewMockSource(cfg Config, logger *slog.Logger, opts ...MockSourceOption) *MockSource {
	if logger == nil {
		logger = slog.Default()
	}

	m := &MockSource{
		cfg:    cfg,
		logger: logger,
	}

	for _, opt := range opts {
		opt(m)
	}

	// A source with nothing to deliver is useless; default to one
	// placeholder frame.
	if len(m.frames) == 0 {
		m.frames = [][]byte{[]byte("mock-frame")}
	}

	return m
}

// Start begins delivering scripted frames.
func (m *MockSource) Start(ctx context.Context, h frame.Handler) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return io.ErrClosedPipe
	}
	if m.FailStart {
		return ErrDeviceUnavailable
	}
	if m.running {
		return nil
	}

	m.running = true
	m.stopCh = make(chan struct{})
	m.doneCh = make(chan struct{})

	go m.deliverLoop(ctx, h)

	m.logger.Debug("mock frame source started", "frames", len(m.frames), "loop", m.loop)

	return nil
}

func (m *MockSource) deliverLoop(ctx context.Context, h frame.Handler) {
	defer close(m.doneCh)

	ticker := time.NewTicker(m.cfg.FrameInterval)
	defer ticker.Stop()

	i := 0
	for {
		select {
		case <-ctx.Done():
			return
		case <-m.stopCh:
			return
		case <-ticker.C:
			if i >= len(m.frames) {
				if !m.loop {
					return
				}
				i = 0
			}

			data := m.frames[i]
			i++

			// Synchronous delivery: this blocks the ticker select, so a
			// slow handler simply skips ticks.
			h.HandleFrame(frame.Frame{Data: data, Timestamp: time.Now()})
			m.framesDelivered.Add(1)
		}
	}
}

// Stop halts frame delivery.
// It is safe to call Stop multiple times.
func (m *MockSource) Stop() error {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return nil
	}
	m.running = false
	close(m.stopCh)
	doneCh := m.doneCh
	m.mu.Unlock()

	<-doneCh

	m.logger.Debug("mock frame source stopped")

	return nil
}

// Name returns "mock".
func (m *MockSource) Name() string {
	return "mock"
}

// Close releases resources.
func (m *MockSource) Close() error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	m.mu.Unlock()

	return m.Stop()
}

// Stats returns source statistics.
func (m *MockSource) Stats() frame.SourceStats {
	m.mu.Lock()
	running := m.running
	m.mu.Unlock()

	return frame.SourceStats{
		FramesDelivered: m.framesDelivered.Load(),
		FramesDropped:   0,
		Running:         running,
		Backend:         "mock",
	}
}

// Ensure MockSource implements SourceWithStats.
var _ frame.SourceWithStats = (*MockSource)(nil)
