package tts

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestConfigValidate(t *testing.T) {
	cfg := DefaultConfig()
	if !errors.Is(cfg.Validate(), ErrNoAPIKey) {
		t.Error("missing API key should fail validation")
	}

	cfg.Apply(WithAPIKey("key"))
	if !errors.Is(cfg.Validate(), ErrNoVoiceID) {
		t.Error("missing voice ID should fail validation")
	}

	cfg.Apply(WithVoice("voice"))
	if err := cfg.Validate(); err != nil {
		t.Errorf("complete config should validate: %v", err)
	}
}

func TestSampleRateFromEncoding(t *testing.T) {
	tests := []struct {
		enc  Encoding
		want int
	}{
		{EncodingPCM16, 16000},
		{EncodingPCM22, 22050},
		{EncodingPCM24, 24000},
		{EncodingPCM44, 44100},
		{EncodingMP3, 44100},
		{Encoding("unknown"), 24000},
	}
	for _, tt := range tests {
		if got := SampleRateFromEncoding(tt.enc); got != tt.want {
			t.Errorf("SampleRateFromEncoding(%s) = %d, want %d", tt.enc, got, tt.want)
		}
	}
}

func newElevenLabsTestProvider(t *testing.T, handler http.HandlerFunc, opts ...Option) *ElevenLabs {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	opts = append([]Option{
		WithAPIKey("test-key"),
		WithVoice("test-voice"),
		WithBaseURL(server.URL),
	}, opts...)

	provider, err := NewElevenLabs(opts...)
	if err != nil {
		t.Fatalf("NewElevenLabs: %v", err)
	}
	t.Cleanup(func() { provider.Close() })

	return provider
}

func TestElevenLabsSynthesize(t *testing.T) {
	audio := make([]byte, 4800) // 100ms of 24kHz PCM16

	provider := newElevenLabsTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/text-to-speech/test-voice" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("xi-api-key"); got != "test-key" {
			t.Errorf("unexpected api key header %q", got)
		}

		var req struct {
			Text    string `json:"text"`
			ModelID string `json:"model_id"`
		}
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.Text != "hello" {
			t.Errorf("unexpected text %q", req.Text)
		}

		w.Write(audio)
	})

	result, err := provider.Synthesize(context.Background(), "hello")
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}

	if len(result.Audio) != len(audio) {
		t.Errorf("got %d audio bytes, want %d", len(result.Audio), len(audio))
	}
	if result.CharCount != 5 {
		t.Errorf("CharCount = %d, want 5", result.CharCount)
	}
	if result.Format.SampleRate != 24000 {
		t.Errorf("SampleRate = %d, want 24000", result.Format.SampleRate)
	}
	if result.Duration != 100*time.Millisecond {
		t.Errorf("Duration = %v, want 100ms", result.Duration)
	}
}

func TestElevenLabsSynthesize_Unauthorized(t *testing.T) {
	provider := newElevenLabsTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"detail": map[string]string{"message": "invalid api key", "status": "invalid_api_key"},
		})
	})

	_, err := provider.Synthesize(context.Background(), "hello")

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusUnauthorized {
		t.Errorf("StatusCode = %d, want 401", apiErr.StatusCode)
	}
	if apiErr.Message != "invalid api key" {
		t.Errorf("unexpected message %q", apiErr.Message)
	}
}

func TestElevenLabsSynthesize_RetriesServerError(t *testing.T) {
	var attempts int
	provider := newElevenLabsTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("audio"))
	}, WithRetry(3, time.Millisecond))

	result, err := provider.Synthesize(context.Background(), "hello")
	if err != nil {
		t.Fatalf("Synthesize after retries: %v", err)
	}
	if attempts != 3 {
		t.Errorf("expected 3 attempts, got %d", attempts)
	}
	if string(result.Audio) != "audio" {
		t.Errorf("unexpected audio %q", result.Audio)
	}
}

func TestElevenLabsHealth(t *testing.T) {
	provider := newElevenLabsTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/user" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.WriteHeader(http.StatusOK)
	})

	if err := provider.Health(context.Background()); err != nil {
		t.Errorf("Health: %v", err)
	}
}

func TestMockSynthesize(t *testing.T) {
	m := NewMock()

	result, err := m.Synthesize(context.Background(), "hi")
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if result.CharCount != 2 {
		t.Errorf("CharCount = %d, want 2", result.CharCount)
	}
	if len(result.Audio) == 0 {
		t.Error("mock should produce audio bytes")
	}

	if got := m.CallCount("Synthesize"); got != 1 {
		t.Errorf("CallCount = %d, want 1", got)
	}
	if last := m.LastCall(); last == nil || last.Text != "hi" {
		t.Errorf("LastCall = %+v", last)
	}
}
