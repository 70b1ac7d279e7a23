package recognize

import (
	"context"
	"sync"
	"time"
)

// Mock implements Engine for testing.
// All methods can be customized via function fields.
type Mock struct {
	// RecognizeFunc is called when Recognize is invoked.
	// If nil, returns an empty outcome (no text).
	RecognizeFunc func(ctx context.Context, jpeg []byte) (Outcome, error)

	// CloseFunc is called when Close is invoked.
	// If nil, returns nil.
	CloseFunc func() error

	// Tracking
	mu    sync.Mutex
	calls []MockCall
}

// MockCall records a method invocation for verification.
type MockCall struct {
	Method string
	Bytes  int
	Time   time.Time
}

// NewMock creates a new mock engine that finds no text.
func NewMock() *Mock {
	return &Mock{}
}

// NewMockScript creates a mock engine that replays the given outcomes in
// order, one per Recognize call. Calls past the end of the script return an
// empty outcome.
func NewMockScript(outcomes ...Outcome) *Mock {
	var mu sync.Mutex
	i := 0
	return &Mock{
		RecognizeFunc: func(ctx context.Context, jpeg []byte) (Outcome, error) {
			mu.Lock()
			defer mu.Unlock()
			if i >= len(outcomes) {
				return Outcome{}, nil
			}
			out := outcomes[i]
			i++
			return out, nil
		},
	}
}

// Recognize calls RecognizeFunc and records the call.
func (m *Mock) Recognize(ctx context.Context, jpeg []byte) (Outcome, error) {
	m.recordCall("Recognize", len(jpeg))
	if m.RecognizeFunc != nil {
		return m.RecognizeFunc(ctx, jpeg)
	}
	return Outcome{}, nil
}

// Name returns "mock".
func (m *Mock) Name() string {
	return "mock"
}

// Close calls CloseFunc and records the call.
func (m *Mock) Close() error {
	m.recordCall("Close", 0)
	if m.CloseFunc != nil {
		return m.CloseFunc()
	}
	return nil
}

// recordCall adds a call to the tracking list.
func (m *Mock) recordCall(method string, bytes int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, MockCall{
		Method: method,
		Bytes:  bytes,
		Time:   time.Now(),
	})
}

// Calls returns all recorded method calls.
func (m *Mock) Calls() []MockCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]MockCall, len(m.calls))
	copy(result, m.calls)
	return result
}

// CallCount returns the number of times a method was called.
func (m *Mock) CallCount(method string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, c := range m.calls {
		if c.Method == method {
			count++
		}
	}
	return count
}

// Reset clears all recorded calls.
func (m *Mock) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = nil
}

// WithError returns a mock whose Recognize always fails with err.
func WithError(err error) *Mock {
	return &Mock{
		RecognizeFunc: func(ctx context.Context, jpeg []byte) (Outcome, error) {
			return Outcome{}, err
		},
	}
}

// Verify Mock implements Engine at compile time.
var _ Engine = (*Mock)(nil)
