package recognize

import (
	"context"
	"errors"
	"testing"
)

func TestOutcomeCandidate(t *testing.T) {
	tests := []struct {
		name     string
		lines    []string
		wantText string
		wantOK   bool
	}{
		{"nil lines", nil, "", false},
		{"empty slice", []string{}, "", false},
		{"single line", []string{"HELLO"}, "HELLO", true},
		{"two lines joined", []string{"HELLO", "WORLD"}, "HELLO\nWORLD", true},
		{"lines are trimmed", []string{"  HELLO  ", "\tWORLD\t"}, "HELLO\nWORLD", true},
		{"blank lines dropped", []string{"", "EXIT", "   ", "AHEAD"}, "EXIT\nAHEAD", true},
		{"whitespace only", []string{"   ", "\t", ""}, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := Outcome{Lines: tt.lines}
			text, ok := o.Candidate()
			if ok != tt.wantOK {
				t.Fatalf("Candidate ok = %v, want %v", ok, tt.wantOK)
			}
			if text != tt.wantText {
				t.Errorf("Candidate text = %q, want %q", text, tt.wantText)
			}
			if o.Empty() == tt.wantOK {
				t.Errorf("Empty() = %v disagrees with Candidate ok = %v", o.Empty(), tt.wantOK)
			}
		})
	}
}

func TestSplitLines(t *testing.T) {
	if SplitLines("") != nil {
		t.Error("empty text should split to nil")
	}

	lines := SplitLines("a\nb\n\nc")
	want := []string{"a", "b", "", "c"}
	if len(lines) != len(want) {
		t.Fatalf("got %d lines, want %d", len(lines), len(want))
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line %d: got %q, want %q", i, lines[i], want[i])
		}
	}
}

func TestMockScript(t *testing.T) {
	m := NewMockScript(
		Outcome{},
		Outcome{Lines: []string{"second"}},
	)

	out, err := m.Recognize(context.Background(), []byte("img"))
	if err != nil || !out.Empty() {
		t.Fatalf("first call: got %+v, %v", out, err)
	}

	out, err = m.Recognize(context.Background(), []byte("img"))
	if err != nil {
		t.Fatalf("second call: %v", err)
	}
	if text, ok := out.Candidate(); !ok || text != "second" {
		t.Errorf("second call: got %q, %v", text, ok)
	}

	// Past the end of the script the mock finds nothing.
	out, _ = m.Recognize(context.Background(), []byte("img"))
	if !out.Empty() {
		t.Error("calls past the script should be empty")
	}

	if got := m.CallCount("Recognize"); got != 3 {
		t.Errorf("CallCount = %d, want 3", got)
	}
}

func TestMockWithError(t *testing.T) {
	wantErr := errors.New("boom")
	m := WithError(wantErr)

	_, err := m.Recognize(context.Background(), nil)
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected wrapped error, got %v", err)
	}
}

func TestConfigOptions(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Apply(
		WithLanguages("eng", "deu"),
		WithAPIKey("key"),
		WithBaseURL("http://localhost:11434/v1"),
		WithModel("llava"),
	)

	if len(cfg.Languages) != 2 || cfg.Languages[1] != "deu" {
		t.Errorf("languages not applied: %v", cfg.Languages)
	}
	if cfg.Model != "llava" {
		t.Errorf("model not applied: %v", cfg.Model)
	}
	if err := cfg.ValidateRemote(); err != nil {
		t.Errorf("remote config should validate: %v", err)
	}
}

func TestValidateRemote(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Apply(WithBaseURL("http://x"))
	if !errors.Is(cfg.ValidateRemote(), ErrNoAPIKey) {
		t.Error("missing API key should fail remote validation")
	}

	cfg = DefaultConfig()
	cfg.Apply(WithAPIKey("key"))
	if !errors.Is(cfg.ValidateRemote(), ErrNoBaseURL) {
		t.Error("missing base URL should fail remote validation")
	}
}
