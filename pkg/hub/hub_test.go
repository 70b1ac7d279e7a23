package hub

import (
	"encoding/json"
	"testing"
	"time"
)

func TestBroadcastWithoutClientsDoesNotBlock(t *testing.T) {
	h := New("test")

	// No Run loop, no clients: broadcasts must drop, never block.
	for i := 0; i < 300; i++ {
		h.Broadcast([]byte(`{}`))
	}

	if h.ClientCount() != 0 {
		t.Errorf("expected 0 clients, got %d", h.ClientCount())
	}
}

func TestBroadcastJSON(t *testing.T) {
	h := New("test")

	if err := h.BroadcastJSON(map[string]string{"type": "scan_state"}); err != nil {
		t.Fatalf("BroadcastJSON: %v", err)
	}

	// Unmarshalable values surface the encoding error.
	if err := h.BroadcastJSON(make(chan int)); err == nil {
		t.Error("expected error for unencodable value")
	}

	var event []byte
	select {
	case event = <-h.broadcast:
	default:
		t.Fatal("no event queued")
	}

	var decoded map[string]string
	if err := json.Unmarshal(event, &decoded); err != nil || decoded["type"] != "scan_state" {
		t.Errorf("bad payload %s", event)
	}
}

func TestSlowClientIsEvicted(t *testing.T) {
	h := New("test")
	go h.Run()

	// A client that never drains its send buffer. The eviction path only
	// touches the map and the channel, so no connection is needed.
	client := &Client{hub: h, send: make(chan []byte, 1)}
	h.register <- client

	// Concurrent readers of the client set while Run evicts.
	stop := make(chan struct{})
	go func() {
		for {
			select {
			case <-stop:
				return
			default:
				h.ClientCount()
			}
		}
	}()
	defer close(stop)

	h.Broadcast([]byte(`{"n":1}`)) // fills the client buffer
	h.Broadcast([]byte(`{"n":2}`)) // overflows it; client must be dropped

	deadline := time.Now().Add(time.Second)
	for h.ClientCount() != 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if got := h.ClientCount(); got != 0 {
		t.Fatalf("slow client not evicted, %d clients remain", got)
	}

	// The evicted client's channel is closed after its buffered event.
	if event, ok := <-client.send; !ok || string(event) != `{"n":1}` {
		t.Fatalf("expected buffered event then close, got %q ok=%v", event, ok)
	}
	if _, ok := <-client.send; ok {
		t.Error("send channel should be closed after eviction")
	}
}
