// Package capture owns the camera lifecycle and frame production.
// It delivers JPEG frames to a handler one at a time: the next frame is not
// read until the handler has returned.
package capture

import "time"

// Config holds all capture configuration parameters.
type Config struct {
	// === Device ===
	DeviceIndex int `json:"device_index"` // V4L2 / AVFoundation device index

	// === Resolution ===
	Width  int `json:"width"`  // Frame width in pixels
	Height int `json:"height"` // Frame height in pixels

	// === Cadence ===
	// FrameInterval is the minimum time between frame deliveries.
	// The handler's own processing time extends this naturally.
	FrameInterval time.Duration `json:"frame_interval"`

	// === Encoding ===
	JPEGQuality int `json:"jpeg_quality"` // JPEG quality 1-100
}

// DefaultConfig returns the recommended configuration for text scanning.
// Uses 1280x720 at roughly 5 fps; OCR needs resolution more than cadence.
func DefaultConfig() Config {
	return Config{
		DeviceIndex:   0,
		Width:         1280,
		Height:        720,
		FrameInterval: 200 * time.Millisecond,
		JPEGQuality:   90,
	}
}

// Validate checks if the config values are within valid ranges.
// Returns a list of validation errors, or nil if valid.
func (c *Config) Validate() []string {
	var errors []string

	if c.DeviceIndex < 0 {
		errors = append(errors, "device_index must be >= 0")
	}
	if c.Width < 160 || c.Width > 4096 {
		errors = append(errors, "width must be between 160 and 4096")
	}
	if c.Height < 120 || c.Height > 2160 {
		errors = append(errors, "height must be between 120 and 2160")
	}
	if c.FrameInterval < 10*time.Millisecond || c.FrameInterval > 10*time.Second {
		errors = append(errors, "frame_interval must be between 10ms and 10s")
	}
	if c.JPEGQuality < 1 || c.JPEGQuality > 100 {
		errors = append(errors, "jpeg_quality must be between 1 and 100")
	}

	return errors
}
