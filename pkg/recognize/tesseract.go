package recognize

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"sync"

	"github.com/otiai10/gosseract/v2"
)

const engineTesseract = "tesseract"

// Tesseract implements Engine using the gosseract client as the local OCR
// provider. A single client is held for the lifetime of the engine; frames
// are serialized through it, which matches the pipeline's single in-flight
// frame contract.
type Tesseract struct {
	config *Config
	logger *slog.Logger

	mu     sync.Mutex
	client *gosseract.Client
	closed bool
}

// NewTesseract creates a new Tesseract-backed recognition engine.
func NewTesseract(opts ...Option) *Tesseract {
	cfg := DefaultConfig()
	cfg.Apply(opts...)

	return &Tesseract{
		config: cfg,
		logger: cfg.Logger.With("component", "recognize.tesseract"),
	}
}

// Recognize performs OCR on a JPEG-encoded image.
func (t *Tesseract) Recognize(ctx context.Context, jpeg []byte) (Outcome, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return Outcome{}, WrapError(engineTesseract, ErrEngineClosed)
	}
	if err := ctx.Err(); err != nil {
		return Outcome{}, WrapError(engineTesseract, err)
	}

	c, err := t.clientLocked()
	if err != nil {
		return Outcome{}, err
	}

	if err := c.SetImageFromBytes(jpeg); err != nil {
		return Outcome{}, WrapError(engineTesseract, fmt.Errorf("set image: %w", err))
	}

	text, err := c.Text()
	if err != nil {
		return Outcome{}, WrapError(engineTesseract, fmt.Errorf("recognize text: %w", err))
	}

	return Outcome{Lines: SplitLines(text)}, nil
}

// clientLocked lazily constructs and configures the gosseract client.
// Caller holds t.mu.
func (t *Tesseract) clientLocked() (*gosseract.Client, error) {
	if t.client != nil {
		return t.client, nil
	}

	c := gosseract.NewClient()
	if len(t.config.Languages) > 0 {
		if err := c.SetLanguage(t.config.Languages...); err != nil {
			c.Close()
			return nil, WrapError(engineTesseract, fmt.Errorf("set languages: %w", err))
		}
	}
	if t.config.DPI > 0 {
		if err := c.SetVariable(gosseract.SettableVariable("user_defined_dpi"), strconv.Itoa(t.config.DPI)); err != nil {
			c.Close()
			return nil, WrapError(engineTesseract, fmt.Errorf("set dpi: %w", err))
		}
	}

	t.client = c
	return c, nil
}

// Name returns "tesseract".
func (t *Tesseract) Name() string {
	return engineTesseract
}

// Close releases the underlying Tesseract client.
func (t *Tesseract) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return nil
	}
	t.closed = true

	if t.client != nil {
		err := t.client.Close()
		t.client = nil
		return err
	}
	return nil
}

// Verify Tesseract implements Engine at compile time.
var _ Engine = (*Tesseract)(nil)
