package recognize

import (
	"log/slog"
	"time"
)

// Config holds recognition engine configuration.
// Use functional options (WithXxx) to set these values.
type Config struct {
	// Local engine
	Languages []string // Tesseract trained-data hints (e.g., "eng")
	DPI       int      // Effective dots-per-inch; 0 means unknown

	// Remote engine
	APIKey  string
	BaseURL string
	Model   string

	// Timeouts
	Timeout time.Duration

	// Observability
	Logger *slog.Logger
}

// Option is a functional option for configuring recognition engines.
type Option func(*Config)

// WithLanguages sets the language hints for the engine.
func WithLanguages(langs ...string) Option {
	return func(c *Config) {
		c.Languages = langs
	}
}

// WithDPI sets the effective image DPI for layout heuristics.
func WithDPI(dpi int) Option {
	return func(c *Config) {
		c.DPI = dpi
	}
}

// WithAPIKey sets the API key for remote engines.
func WithAPIKey(key string) Option {
	return func(c *Config) {
		c.APIKey = key
	}
}

// WithBaseURL sets the remote API base URL.
func WithBaseURL(url string) Option {
	return func(c *Config) {
		c.BaseURL = url
	}
}

// WithModel sets the remote vision model.
func WithModel(model string) Option {
	return func(c *Config) {
		c.Model = model
	}
}

// WithTimeout sets the per-request timeout for remote engines.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Config) {
		c.Timeout = timeout
	}
}

// WithLogger sets the structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}

// DefaultConfig returns sensible default configuration.
func DefaultConfig() *Config {
	return &Config{
		Languages: []string{"eng"},
		Model:     "gpt-4o-mini",
		Timeout:   30 * time.Second,
		Logger:    slog.Default(),
	}
}

// Apply applies functional options to the config.
func (c *Config) Apply(opts ...Option) {
	for _, opt := range opts {
		opt(c)
	}
}

// ValidateRemote checks that remote engine configuration is present.
func (c *Config) ValidateRemote() error {
	if c.BaseURL == "" {
		return ErrNoBaseURL
	}
	if c.APIKey == "" {
		return ErrNoAPIKey
	}
	return nil
}
