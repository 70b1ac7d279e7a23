package web

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"github.com/readlens/readlens/pkg/capture"
	"github.com/readlens/readlens/pkg/frame"
	"github.com/readlens/readlens/pkg/hub"
	"github.com/readlens/readlens/pkg/playback"
	"github.com/readlens/readlens/pkg/scan"
)

// StatusResponse is the body of GET /api/status.
type StatusResponse struct {
	Scanning      bool               `json:"scanning"`
	SessionID     string             `json:"session_id,omitempty"`
	ScanState     string             `json:"scan_state,omitempty"`
	Playback      string             `json:"playback"`
	LastText      string             `json:"last_text,omitempty"`
	SourceBackend string             `json:"source_backend"`
	SourceStats   *frame.SourceStats `json:"source_stats,omitempty"`
}

// handleStatus returns the scanner and playback state.
func (s *Server) handleStatus(c *fiber.Ctx) error {
	s.mu.Lock()
	active := s.active
	lastText := s.lastText
	s.mu.Unlock()

	resp := StatusResponse{
		Playback:      playback.StateIdle.String(),
		LastText:      lastText,
		SourceBackend: s.cfg.Source.Name(),
	}

	if s.cfg.Player != nil {
		resp.Playback = s.cfg.Player.State().String()
	}
	if active != nil {
		resp.Scanning = true
		resp.SessionID = active.ID()
		resp.ScanState = active.State().String()
	}
	if ws, ok := s.cfg.Source.(frame.SourceWithStats); ok {
		stats := ws.Stats()
		resp.SourceStats = &stats
	}

	return c.JSON(resp)
}

// handleBeginScan starts a new scan session.
// Only one session may be active at a time.
func (s *Server) handleBeginScan(c *fiber.Ctx) error {
	s.mu.Lock()
	if s.active != nil {
		id := s.active.ID()
		s.mu.Unlock()
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error":      "scan already in progress",
			"session_id": id,
		})
	}

	// The lock is held across session startup so two concurrent begins
	// cannot both claim the camera.
	session, err := s.beginSession(context.Background())
	if err != nil {
		s.mu.Unlock()
		if errors.Is(err, capture.ErrDeviceUnavailable) {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"error":      "camera unavailable",
				"session_id": session.ID(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	s.active = session
	s.mu.Unlock()

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"session_id": session.ID(),
	})
}

// handleCancelScan cancels the active scan session.
func (s *Server) handleCancelScan(c *fiber.Ctx) error {
	id := c.Params("id")

	s.mu.Lock()
	active := s.active
	s.mu.Unlock()

	if active == nil || active.ID() != id {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "no such scan session",
		})
	}

	active.Cancel()

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"session_id": id,
	})
}

// ToggleRequest is the request body for POST /api/playback/toggle.
type ToggleRequest struct {
	// Text overrides the last completed scan text.
	Text string `json:"text"`
}

// handleToggle toggles narration of the last scan text.
func (s *Server) handleToggle(c *fiber.Ctx) error {
	if s.cfg.Player == nil {
		return c.Status(fiber.StatusNotImplemented).JSON(fiber.Map{
			"error": "playback not configured",
		})
	}

	var req ToggleRequest
	c.BodyParser(&req) // empty body is fine

	text := req.Text
	if text == "" {
		text = s.LastText()
	}
	if text == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "nothing to speak",
		})
	}

	s.cfg.Player.Toggle(context.Background(), text)

	return c.JSON(fiber.Map{
		"playback": s.cfg.Player.State().String(),
	})
}

// handleEventsWS streams scan and playback events to the client.
func (s *Server) handleEventsWS(c *websocket.Conn) {
	client := hub.NewClient(s.eventHub, c)
	client.Run() // Blocks until connection closes
}
