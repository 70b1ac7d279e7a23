// Package recognize provides a unified interface for text recognition engines.
//
// The package abstracts OCR behind a single Engine interface, enabling
// seamless switching between the local Tesseract engine and remote
// OpenAI-compatible vision models without changing caller code.
//
// Example usage:
//
//	engine := recognize.NewTesseract(
//	    recognize.WithLanguages("eng"),
//	)
//	defer engine.Close()
//
//	outcome, _ := engine.Recognize(ctx, jpegBytes)
//	if text, ok := outcome.Candidate(); ok {
//	    // text contains the recognized lines joined by newlines
//	}
package recognize

import (
	"context"
	"strings"
)

// Engine is the text recognition contract: one image in, one outcome out.
// Engines are stateless with respect to frames and safe for sequential reuse.
type Engine interface {
	// Recognize runs text detection on a JPEG-encoded image.
	// An outcome with no lines means no text was found; errors indicate an
	// engine failure for this image only.
	Recognize(ctx context.Context, jpeg []byte) (Outcome, error)

	// Name returns the engine name (e.g., "tesseract", "vision", "mock").
	Name() string

	// Close releases resources held by the engine.
	Close() error
}

// Outcome is the result of one recognition attempt.
// The zero value means no text was found.
type Outcome struct {
	// Lines are the detected text lines in reading order.
	Lines []string
}

// Empty reports whether the outcome contains no usable text.
// Lines that are blank after trimming do not count as text.
func (o Outcome) Empty() bool {
	for _, line := range o.Lines {
		if strings.TrimSpace(line) != "" {
			return false
		}
	}
	return true
}

// Candidate returns the non-empty trimmed lines joined by newlines, and
// whether the outcome is usable as a scan result.
func (o Outcome) Candidate() (string, bool) {
	var kept []string
	for _, line := range o.Lines {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			kept = append(kept, trimmed)
		}
	}
	if len(kept) == 0 {
		return "", false
	}
	return strings.Join(kept, "\n"), true
}

// SplitLines converts a block of recognized text into outcome lines.
// Blank lines are preserved here; filtering happens in Candidate.
func SplitLines(text string) []string {
	if text == "" {
		return nil
	}
	return strings.Split(text, "\n")
}
