package speech

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"sync"

	"lifelens/internal/logging"
)

// CommandSpeaker voices text by running name with args followed by the text.
type CommandSpeaker struct {
	name   string
	args   []string
	logger *slog.Logger

	mu      sync.Mutex
	current *exec.Cmd
}

// NewCommandSpeaker returns a speaker for the given TTS command.
func NewCommandSpeaker(name string, args []string, logger *slog.Logger) *CommandSpeaker {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &CommandSpeaker{name: name, args: append([]string(nil), args...), logger: logger}
}

func (s *CommandSpeaker) Speak(text string) <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopLocked()
	text = strings.TrimSpace(text)
	if text == "" {
		return closedChan()
	}

	args := append(append([]string(nil), s.args...), text)
	cmd := exec.Command(s.name, args...) //nolint:gosec
	setProcessGroup(cmd)
	if err := cmd.Start(); err != nil {
		s.logger.Warn("speech command failed to start",
			logging.String("command", s.name),
			logging.Error(err),
			logging.String(logging.FieldEventType, "speech_start_failed"),
		)
		return closedChan()
	}
	s.current = cmd

	done := make(chan struct{})
	go func() {
		defer close(done)
		err := cmd.Wait()
		s.mu.Lock()
		if s.current == cmd {
			s.current = nil
		}
		s.mu.Unlock()
		if err != nil {
			s.logger.Debug("speech command exited", logging.Error(err))
		}
	}()
	return done
}

func (s *CommandSpeaker) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
}

func (s *CommandSpeaker) stopLocked() {
	if s.current == nil || s.current.Process == nil {
		return
	}
	if err := killProcessGroup(s.current); err != nil {
		s.logger.Debug("speech cancel failed", logging.Error(err))
	}
	s.current = nil
}

// CommandListener runs an STT command and treats its stdout as the transcript.
type CommandListener struct {
	name string
	args []string
}

// NewCommandListener returns a listener for the given STT command.
func NewCommandListener(name string, args []string) *CommandListener {
	return &CommandListener{name: name, args: append([]string(nil), args...)}
}

func (l *CommandListener) Listen(ctx context.Context) (string, error) {
	if l == nil || l.name == "" {
		return "", ErrUnavailable
	}
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, l.name, l.args...) //nolint:gosec
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		detail := strings.TrimSpace(stderr.String())
		if detail != "" {
			return "", fmt.Errorf("listen: %w: %s", err, detail)
		}
		return "", fmt.Errorf("listen: %w", err)
	}
	return strings.TrimSpace(stdout.String()), nil
}
