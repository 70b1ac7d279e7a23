package playback

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strconv"
	"sync"

	"github.com/readlens/readlens/pkg/tts"
)

// ExecSink plays audio by piping it to an external player process
// (aplay on Linux, afplay via a temp-less stdin player, ffplay, etc.).
type ExecSink struct {
	command string
	logger  *slog.Logger

	mu  sync.Mutex
	cmd *exec.Cmd
}

// NewExecSink creates a sink that shells out to the given player command.
// An empty command defaults to aplay.
func NewExecSink(command string, logger *slog.Logger) *ExecSink {
	if command == "" {
		command = "aplay"
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &ExecSink{
		command: command,
		logger:  logger.With("component", "playback.exec", "player", command),
	}
}

// Play pipes the audio to the player's stdin and waits for it to exit.
func (s *ExecSink) Play(ctx context.Context, audio *tts.AudioResult) error {
	cmd := exec.CommandContext(ctx, s.command, s.args(audio.Format)...)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("playback: stdin pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("playback: start %s: %w", s.command, err)
	}

	s.mu.Lock()
	s.cmd = cmd
	s.mu.Unlock()

	_, writeErr := stdin.Write(audio.Audio)
	stdin.Close()

	waitErr := cmd.Wait()

	s.mu.Lock()
	s.cmd = nil
	s.mu.Unlock()

	if ctx.Err() != nil {
		return ctx.Err()
	}
	if writeErr != nil {
		return fmt.Errorf("playback: write audio: %w", writeErr)
	}
	if waitErr != nil {
		return fmt.Errorf("playback: %s: %w", s.command, waitErr)
	}
	return nil
}

// Stop kills the player process, discarding any unplayed audio.
func (s *ExecSink) Stop() {
	s.mu.Lock()
	cmd := s.cmd
	s.mu.Unlock()

	if cmd != nil && cmd.Process != nil {
		if err := cmd.Process.Kill(); err != nil {
			s.logger.Debug("kill player failed", "error", err)
		}
	}
}

// args builds player arguments for raw PCM input.
// aplay needs the sample format spelled out; compressed formats are passed
// through and rely on the player's own sniffing.
func (s *ExecSink) args(format tts.AudioFormat) []string {
	if s.command != "aplay" {
		return nil
	}
	if format.Encoding == tts.EncodingMP3 {
		return nil
	}
	return []string{
		"-q",
		"-t", "raw",
		"-f", "S16_LE",
		"-r", strconv.Itoa(format.SampleRate),
		"-c", strconv.Itoa(format.Channels),
	}
}

// Verify ExecSink implements Sink at compile time.
var _ Sink = (*ExecSink)(nil)
