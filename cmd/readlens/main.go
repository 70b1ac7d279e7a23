// readlens - point a camera at printed text, recognize it live, read it aloud.
// Serves the scan/playback API and event websocket for the UI.
package main

import (
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/readlens/readlens/internal/config"
	"github.com/readlens/readlens/internal/log"
	"github.com/readlens/readlens/pkg/capture"
	"github.com/readlens/readlens/pkg/frame"
	"github.com/readlens/readlens/pkg/playback"
	"github.com/readlens/readlens/pkg/recognize"
	"github.com/readlens/readlens/pkg/scan"
	"github.com/readlens/readlens/pkg/tts"
	"github.com/readlens/readlens/pkg/web"
)

func main() {
	port := flag.String("port", config.ListenPort(), "HTTP listen port")
	device := flag.Int("device", config.CameraDevice(), "camera device index")
	preset := flag.String("preset", capture.PresetDefault, "capture preset: default, document, fast")
	mock := flag.Bool("mock", false, "use a synthetic frame source instead of the camera")
	player := flag.String("player", "aplay", "audio player command for narration")
	timeout := flag.Duration("scan-timeout", 0, "abort a scan after this duration (0 = unbounded)")
	flag.Parse()

	log.Init(config.LogLevel())
	logger := log.L()

	// Frame source
	cfg := capture.DefaultConfig()
	if p := capture.GetPreset(*preset); p != nil {
		cfg = *p
	}
	cfg.DeviceIndex = *device

	var source frame.Source
	if *mock {
		source = capture.NewMockSource(cfg, logger, capture.WithLoop())
	} else {
		dev, err := capture.NewDevice(cfg, logger)
		if err != nil {
			log.Error("invalid capture config", "error", err)
			os.Exit(1)
		}
		source = dev
	}
	defer source.Close()

	// Recognition engine
	var engine recognize.Engine
	if url := config.VisionBaseURL(); url != "" {
		vision, err := recognize.NewVision(
			recognize.WithBaseURL(url),
			recognize.WithAPIKey(config.VisionAPIKey()),
			recognize.WithLogger(logger),
		)
		if err != nil {
			log.Error("vision engine config", "error", err)
			os.Exit(1)
		}
		engine = vision
	} else {
		engine = recognize.NewTesseract(
			recognize.WithLanguages(config.OCRLanguage()),
			recognize.WithLogger(logger),
		)
	}
	defer engine.Close()

	// Narration
	var speech *playback.Player
	if key := config.ElevenLabsKey(); key != "" {
		provider, err := tts.NewElevenLabs(
			tts.WithAPIKey(key),
			tts.WithVoice(config.ElevenLabsVoice()),
			tts.WithLogger(logger),
		)
		if err != nil {
			log.Error("tts config", "error", err)
			os.Exit(1)
		}
		defer provider.Close()

		sink := playback.NewExecSink(*player, logger)
		speech = playback.NewPlayer(provider, sink, logger)
	} else {
		log.Warn("ELEVENLABS_API_KEY not set, narration disabled")
	}

	var sessionOpts []scan.SessionOption
	if *timeout > 0 {
		sessionOpts = append(sessionOpts, scan.WithTimeout(*timeout))
	}

	server := web.NewServer(web.Config{
		Port:           *port,
		Source:         source,
		Engine:         engine,
		Player:         speech,
		Logger:         logger,
		SessionOptions: sessionOpts,
	})

	// Graceful shutdown on SIGINT/SIGTERM
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Info("shutting down")
		if speech != nil {
			speech.Stop()
		}
		server.Shutdown()
		// Give the capture teardown a moment before exit
		time.Sleep(200 * time.Millisecond)
	}()

	log.Info("readlens starting",
		"port", *port,
		"source", source.Name(),
		"engine", engine.Name(),
		"narration", speech != nil,
	)

	if err := server.Start(); err != nil {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
