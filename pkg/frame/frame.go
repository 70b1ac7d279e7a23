// Package frame defines the frame sample type and the source contract shared
// by the camera backends and the scan pipeline.
package frame

import (
	"context"
	"io"
	"time"
)

// Frame is a single JPEG-encoded image sample from a live source.
// A frame is transient: it is owned by the source for the duration of one
// delivery and must not be retained past the handler call.
type Frame struct {
	// Data is the JPEG-encoded image payload.
	Data []byte

	// Timestamp is when the frame was captured.
	Timestamp time.Time
}

// Handler consumes frames delivered by a Source.
type Handler interface {
	// HandleFrame processes one frame. The source invokes this synchronously
	// from its capture goroutine and will not deliver the next frame until
	// this call returns. This single in-flight contract is the pipeline's
	// only concurrency limit and doubles as backpressure: slow processing
	// causes frames to be skipped at the source's own cadence, never queued.
	HandleFrame(f Frame)
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(f Frame)

// HandleFrame calls fn(f).
func (fn HandlerFunc) HandleFrame(f Frame) {
	fn(f)
}

// Source produces a serialized sequence of frames for a single handler.
type Source interface {
	// Start acquires the underlying device and begins frame delivery to the
	// handler. Frames are delivered one at a time per the Handler contract.
	Start(ctx context.Context, h Handler) error

	// Stop halts frame delivery and releases the device.
	// It is safe to call Stop multiple times.
	Stop() error

	// Name returns the backend name (e.g., "gocv", "mock").
	Name() string

	// Close releases all resources.
	// After Close, the source cannot be restarted.
	io.Closer
}

// SourceStats contains statistics about a frame source.
type SourceStats struct {
	// FramesDelivered is the total number of frames handed to the handler.
	FramesDelivered int64 `json:"frames_delivered"`

	// FramesDropped is the number of frames skipped while the handler was
	// busy with a previous frame.
	FramesDropped int64 `json:"frames_dropped"`

	// Running indicates if the source is currently capturing.
	Running bool `json:"running"`

	// Backend is the name of the frame backend.
	Backend string `json:"backend"`
}

// SourceWithStats extends Source with statistics.
type SourceWithStats interface {
	Source
	Stats() SourceStats
}
