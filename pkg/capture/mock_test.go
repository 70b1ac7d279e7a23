package capture

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/readlens/readlens/pkg/frame"
)

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.FrameInterval = 5 * time.Millisecond
	return cfg
}

func TestMockSource_DeliversFramesInOrder(t *testing.T) {
	source := NewMockSource(testConfig(), nil, WithFrames(
		[]byte("one"),
		[]byte("two"),
		[]byte("three"),
	))
	defer source.Close()

	var mu sync.Mutex
	var got [][]byte
	done := make(chan struct{})

	h := frame.HandlerFunc(func(f frame.Frame) {
		mu.Lock()
		got = append(got, f.Data)
		if len(got) == 3 {
			close(done)
		}
		mu.Unlock()
	})

	if err := source.Start(context.Background(), h); err != nil {
		t.Fatalf("Start: %v", err)
	}

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for frames")
	}

	mu.Lock()
	defer mu.Unlock()
	want := [][]byte{[]byte("one"), []byte("two"), []byte("three")}
	for i := range want {
		if !bytes.Equal(got[i], want[i]) {
			t.Errorf("frame %d: got %q, want %q", i, got[i], want[i])
		}
	}
}

func TestMockSource_SingleInFlight(t *testing.T) {
	source := NewMockSource(testConfig(), nil, WithFrames([]byte("f")), WithLoop())
	defer source.Close()

	var inFlight atomic.Int32
	var overlapped atomic.Bool
	var count atomic.Int32

	h := frame.HandlerFunc(func(f frame.Frame) {
		if inFlight.Add(1) > 1 {
			overlapped.Store(true)
		}
		// A slow handler must stall delivery, not stack it up.
		time.Sleep(10 * time.Millisecond)
		inFlight.Add(-1)
		count.Add(1)
	})

	if err := source.Start(context.Background(), h); err != nil {
		t.Fatalf("Start: %v", err)
	}

	time.Sleep(100 * time.Millisecond)
	source.Stop()

	if overlapped.Load() {
		t.Error("two frames were in flight at once")
	}
	if count.Load() == 0 {
		t.Error("no frames delivered")
	}
}

func TestMockSource_StopIsIdempotent(t *testing.T) {
	source := NewMockSource(testConfig(), nil, WithFrames([]byte("f")), WithLoop())

	h := frame.HandlerFunc(func(f frame.Frame) {})
	if err := source.Start(context.Background(), h); err != nil {
		t.Fatalf("Start: %v", err)
	}

	if err := source.Stop(); err != nil {
		t.Fatalf("first Stop: %v", err)
	}
	if err := source.Stop(); err != nil {
		t.Fatalf("second Stop: %v", err)
	}
	if err := source.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	if source.Stats().Running {
		t.Error("source reports running after stop")
	}
}

func TestMockSource_StopWaitsForInFlightFrame(t *testing.T) {
	source := NewMockSource(testConfig(), nil, WithFrames([]byte("f")), WithLoop())
	defer source.Close()

	started := make(chan struct{})
	var once sync.Once
	var handlerDone atomic.Bool

	h := frame.HandlerFunc(func(f frame.Frame) {
		once.Do(func() { close(started) })
		time.Sleep(30 * time.Millisecond)
		handlerDone.Store(true)
	})

	if err := source.Start(context.Background(), h); err != nil {
		t.Fatalf("Start: %v", err)
	}

	<-started
	source.Stop()

	if !handlerDone.Load() {
		t.Error("Stop returned while a frame delivery was still in flight")
	}
}

func TestMockSource_FailStart(t *testing.T) {
	source := NewMockSource(testConfig(), nil)
	source.FailStart = true

	err := source.Start(context.Background(), frame.HandlerFunc(func(frame.Frame) {}))
	if !errors.Is(err, ErrDeviceUnavailable) {
		t.Fatalf("expected ErrDeviceUnavailable, got %v", err)
	}
}

func TestMockSource_StartAfterClose(t *testing.T) {
	source := NewMockSource(testConfig(), nil)
	source.Close()

	if err := source.Start(context.Background(), frame.HandlerFunc(func(frame.Frame) {})); err == nil {
		t.Fatal("expected error starting a closed source")
	}
}

func TestMockSource_NonLoopStopsAtEnd(t *testing.T) {
	source := NewMockSource(testConfig(), nil, WithFrames([]byte("only")))
	defer source.Close()

	var count atomic.Int32
	h := frame.HandlerFunc(func(f frame.Frame) { count.Add(1) })

	if err := source.Start(context.Background(), h); err != nil {
		t.Fatalf("Start: %v", err)
	}

	time.Sleep(60 * time.Millisecond)
	if got := count.Load(); got != 1 {
		t.Errorf("expected exactly 1 frame without loop, got %d", got)
	}
}
