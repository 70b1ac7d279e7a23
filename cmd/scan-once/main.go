// scan-once - run a single bounded scan and print the recognized text.
// Useful for checking camera and OCR setup without the full service.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/readlens/readlens/internal/config"
	"github.com/readlens/readlens/internal/log"
	"github.com/readlens/readlens/pkg/capture"
	"github.com/readlens/readlens/pkg/recognize"
	"github.com/readlens/readlens/pkg/scan"
)

func main() {
	device := flag.Int("device", config.CameraDevice(), "camera device index")
	preset := flag.String("preset", capture.PresetDocument, "capture preset: default, document, fast")
	timeout := flag.Duration("timeout", 30*time.Second, "give up after this duration")
	flag.Parse()

	log.Init(config.LogLevel())
	logger := log.L()

	cfg := capture.DefaultConfig()
	if p := capture.GetPreset(*preset); p != nil {
		cfg = *p
	}
	cfg.DeviceIndex = *device

	source, err := capture.NewDevice(cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid capture config: %v\n", err)
		os.Exit(1)
	}
	defer source.Close()

	engine := recognize.NewTesseract(
		recognize.WithLanguages(config.OCRLanguage()),
		recognize.WithLogger(logger),
	)
	defer engine.Close()

	session := scan.NewSession(source, engine,
		scan.WithLogger(logger),
		scan.WithTimeout(*timeout),
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := session.Begin(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "scan failed to start: %v\n", err)
		os.Exit(1)
	}

	// Ctrl+C cancels the scan, which still delivers a terminal result.
	go func() {
		<-ctx.Done()
		session.Cancel()
	}()

	res := <-session.Result()
	if res.Status != scan.StatusCompleted {
		fmt.Fprintln(os.Stderr, "no text found")
		os.Exit(1)
	}

	fmt.Println(res.Text)
}
