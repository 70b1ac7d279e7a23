package capture

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"gocv.io/x/gocv"

	"github.com/readlens/readlens/pkg/frame"
)

// ErrDeviceUnavailable is returned when the camera cannot be acquired or
// configured.
var ErrDeviceUnavailable = errors.New("capture: device unavailable")

// Device is a frame source backed by a local camera via gocv.
// Frames are read, JPEG-encoded, and handed to the handler one at a time.
type Device struct {
	cfg    Config
	logger *slog.Logger

	mu      sync.Mutex
	cam     *gocv.VideoCapture
	running bool
	closed  bool
	stopCh  chan struct{}
	doneCh  chan struct{}

	// Stats
	framesDelivered atomic.Int64
	framesDropped   atomic.Int64
}

// NewDevice creates a new camera-backed frame source.
func NewDevice(cfg Config, logger *slog.Logger) (*Device, error) {
	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, fmt.Errorf("capture: invalid config: %v", errs)
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Device{
		cfg:    cfg,
		logger: logger.With("component", "capture.device"),
	}, nil
}

// Start acquires the camera and begins frame delivery.
// Returns ErrDeviceUnavailable (wrapped) if the camera cannot be opened.
func (d *Device) Start(ctx context.Context, h frame.Handler) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return io.ErrClosedPipe
	}
	if d.running {
		return nil
	}

	cam, err := gocv.OpenVideoCapture(d.cfg.DeviceIndex)
	if err != nil {
		return fmt.Errorf("%w: open device %d: %v", ErrDeviceUnavailable, d.cfg.DeviceIndex, err)
	}
	if !cam.IsOpened() {
		cam.Close()
		return fmt.Errorf("%w: device %d not opened", ErrDeviceUnavailable, d.cfg.DeviceIndex)
	}

	cam.Set(gocv.VideoCaptureFrameWidth, float64(d.cfg.Width))
	cam.Set(gocv.VideoCaptureFrameHeight, float64(d.cfg.Height))

	d.cam = cam
	d.running = true
	d.stopCh = make(chan struct{})
	d.doneCh = make(chan struct{})

	go d.captureLoop(ctx, h)

	d.logger.Info("camera started",
		"device", d.cfg.DeviceIndex,
		"width", d.cfg.Width,
		"height", d.cfg.Height,
	)

	return nil
}

// captureLoop reads frames at the configured cadence and delivers them
// synchronously. The handler call blocks the next read: recognition time
// extends the effective interval instead of queueing frames.
func (d *Device) captureLoop(ctx context.Context, h frame.Handler) {
	defer close(d.doneCh)

	img := gocv.NewMat()
	defer img.Close()

	ticker := time.NewTicker(d.cfg.FrameInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-d.stopCh:
			return
		case <-ticker.C:
			if !d.cam.Read(&img) || img.Empty() {
				d.framesDropped.Add(1)
				continue
			}

			buf, err := gocv.IMEncodeWithParams(gocv.JPEGFileExt, img,
				[]int{gocv.IMWriteJpegQuality, d.cfg.JPEGQuality})
			if err != nil {
				d.framesDropped.Add(1)
				d.logger.Debug("frame encode failed", "error", err)
				continue
			}

			// Copy out before releasing the native buffer; the frame must
			// outlive buf only for the duration of the handler call.
			data := make([]byte, len(buf.GetBytes()))
			copy(data, buf.GetBytes())
			buf.Close()

			h.HandleFrame(frame.Frame{Data: data, Timestamp: time.Now()})
			d.framesDelivered.Add(1)
		}
	}
}

// Stop halts frame delivery and releases the camera.
// It is safe to call Stop multiple times.
func (d *Device) Stop() error {
	d.mu.Lock()
	if !d.running {
		d.mu.Unlock()
		return nil
	}
	d.running = false
	close(d.stopCh)
	doneCh := d.doneCh
	d.mu.Unlock()

	// Wait for the capture loop to finish its in-flight frame before
	// releasing the device.
	<-doneCh

	d.mu.Lock()
	if d.cam != nil {
		d.cam.Close()
		d.cam = nil
	}
	d.mu.Unlock()

	d.logger.Info("camera stopped")

	return nil
}

// Name returns "gocv".
func (d *Device) Name() string {
	return "gocv"
}

// Close releases resources.
func (d *Device) Close() error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	d.mu.Unlock()

	return d.Stop()
}

// Stats returns source statistics.
func (d *Device) Stats() frame.SourceStats {
	d.mu.Lock()
	running := d.running
	d.mu.Unlock()

	return frame.SourceStats{
		FramesDelivered: d.framesDelivered.Load(),
		FramesDropped:   d.framesDropped.Load(),
		Running:         running,
		Backend:         "gocv",
	}
}

// Ensure Device implements SourceWithStats.
var _ frame.SourceWithStats = (*Device)(nil)
