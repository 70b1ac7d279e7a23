// Package web exposes the scanner over HTTP and websocket for the UI.
package web

import (
	"context"
	"log/slog"
	"sync"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/websocket/v2"

	"github.com/readlens/readlens/pkg/frame"
	"github.com/readlens/readlens/pkg/hub"
	"github.com/readlens/readlens/pkg/playback"
	"github.com/readlens/readlens/pkg/recognize"
	"github.com/readlens/readlens/pkg/scan"
)

// Config holds the server's collaborators.
type Config struct {
	Port   string
	Source frame.Source
	Engine recognize.Engine
	Player *playback.Player
	Logger *slog.Logger

	// SessionOptions are applied to every scan session the server creates
	// (e.g., scan.WithTimeout).
	SessionOptions []scan.SessionOption
}

// Event is the JSON message broadcast on /ws/events.
type Event struct {
	Type      string       `json:"type"` // scan_state, scan_result, playback_state
	SessionID string       `json:"session_id,omitempty"`
	State     string       `json:"state,omitempty"`
	Result    *scan.Result `json:"result,omitempty"`
}

// Server is the readlens HTTP and websocket surface.
// It owns at most one active scan session at a time.
type Server struct {
	app    *fiber.App
	cfg    Config
	logger *slog.Logger

	eventHub *hub.Hub

	mu       sync.Mutex
	active   *scan.Session
	lastText string
}

// NewServer creates the server and registers all routes.
func NewServer(cfg Config) *Server {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	s := &Server{
		cfg:      cfg,
		logger:   cfg.Logger.With("component", "web.server"),
		eventHub: hub.New("events"),
	}

	if cfg.Player != nil {
		cfg.Player.OnStateChange = func(st playback.State) {
			s.broadcast(Event{Type: "playback_state", State: st.String()})
		}
	}

	app := fiber.New(fiber.Config{
		AppName:               "readlens",
		DisableStartupMessage: true,
	})

	// CORS for local development
	app.Use(cors.New())

	api := app.Group("/api")
	api.Get("/status", s.handleStatus)
	api.Post("/scan", s.handleBeginScan)
	api.Delete("/scan/:id", s.handleCancelScan)
	api.Post("/playback/toggle", s.handleToggle)

	// WebSocket upgrade middleware
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	app.Get("/ws/events", websocket.New(s.handleEventsWS))

	s.app = app
	return s
}

// Start starts the web server. Blocks until shutdown.
func (s *Server) Start() error {
	go s.eventHub.Run()

	s.logger.Info("listening", "port", s.cfg.Port)

	return s.app.Listen(":" + s.cfg.Port)
}

// Shutdown gracefully stops the server, cancelling any active scan.
func (s *Server) Shutdown() error {
	s.mu.Lock()
	active := s.active
	s.mu.Unlock()

	if active != nil {
		active.Cancel()
	}

	return s.app.Shutdown()
}

// App returns the underlying fiber app, for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

// LastText returns the text of the most recently completed scan.
func (s *Server) LastText() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastText
}

// beginSession creates, wires, and starts a new scan session.
// It does not touch s.mu itself; the handler serializes calls.
func (s *Server) beginSession(ctx context.Context) (*scan.Session, error) {
	var session *scan.Session

	opts := append([]scan.SessionOption{
		scan.WithLogger(s.cfg.Logger),
		scan.WithEvents(scan.Events{
			OnStateChange: func(st scan.State) {
				s.broadcast(Event{Type: "scan_state", SessionID: session.ID(), State: st.String()})
			},
			OnResult: func(r scan.Result) {
				s.broadcast(Event{Type: "scan_result", SessionID: session.ID(), Result: &r})
			},
		}),
	}, s.cfg.SessionOptions...)

	session = scan.NewSession(s.cfg.Source, s.cfg.Engine, opts...)

	if err := session.Begin(ctx); err != nil {
		return session, err
	}

	// Foreground consumer: record the result and release the active slot.
	go func() {
		res := <-session.Result()

		s.mu.Lock()
		if res.Status == scan.StatusCompleted {
			s.lastText = res.Text
		}
		if s.active == session {
			s.active = nil
		}
		s.mu.Unlock()
	}()

	return session, nil
}

func (s *Server) broadcast(ev Event) {
	if err := s.eventHub.BroadcastJSON(ev); err != nil {
		s.logger.Warn("event broadcast failed", "error", err)
	}
}
