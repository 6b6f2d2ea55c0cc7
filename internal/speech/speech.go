package speech

import (
	"context"
	"errors"
	"log/slog"
	"os/exec"
	"strings"

	"lifelens/internal/config"
	"lifelens/internal/logging"
)

// ErrUnavailable reports that no speech-to-text command is configured.
var ErrUnavailable = errors.New("speech recognition unavailable")

// Speaker voices text.
type Speaker interface {
	// Speak stops any utterance in progress and starts text. The returned
	// channel closes when the utterance finishes or is cancelled.
	Speak(text string) <-chan struct{}
	// Cancel stops the current utterance, if any.
	Cancel()
}

// Listener captures a single spoken phrase.
type Listener interface {
	Listen(ctx context.Context) (string, error)
}

// Nop discards speech and never hears anything.
type Nop struct{}

func (Nop) Speak(string) <-chan struct{} { return closedChan() }

func (Nop) Cancel() {}

func (Nop) Listen(context.Context) (string, error) { return "", ErrUnavailable }

func closedChan() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}

// New builds the speaker and listener described by cfg. Missing binaries
// degrade to Nop with a warning.
func New(cfg config.Speech, logger *slog.Logger) (Speaker, Listener) {
	logger = logging.NewComponentLogger(logger, "speech")
	if !cfg.Enabled {
		logger.Debug("speech disabled")
		return Nop{}, Nop{}
	}

	var speaker Speaker = Nop{}
	if name, args, ok := resolveCommand(cfg.SpeakCommand, logger, "speak_command"); ok {
		speaker = NewCommandSpeaker(name, args, logger)
	}
	var listener Listener = Nop{}
	if name, args, ok := resolveCommand(cfg.ListenCommand, logger, "listen_command"); ok {
		listener = NewCommandListener(name, args)
	}
	return speaker, listener
}

func resolveCommand(command string, logger *slog.Logger, setting string) (string, []string, bool) {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return "", nil, false
	}
	path, err := exec.LookPath(fields[0])
	if err != nil {
		impact := "speech output disabled"
		if setting == "listen_command" {
			impact = "dictation disabled"
		}
		logging.WarnWithContext(logger, "speech command not found", "speech_unavailable",
			logging.String("setting", setting),
			logging.String("command", fields[0]),
			logging.Error(err),
			logging.String(logging.FieldImpact, impact),
			logging.String(logging.FieldErrorHint, "install the command or update "+setting),
		)
		return "", nil, false
	}
	return path, fields[1:], true
}
