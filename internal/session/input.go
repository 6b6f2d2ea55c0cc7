package session

import (
	"strings"

	"lifelens/internal/diagnosis"
)

// Input is what the user has supplied for the next analysis.
type Input struct {
	Image         diagnosis.Image         `json:"-"`
	Preview       string                  `json:"image_preview,omitempty"`
	Description   string                  `json:"description"`
	HealthProfile diagnosis.HealthProfile `json:"health_profile"`
}

func newInput() Input {
	return Input{HealthProfile: diagnosis.DefaultHealthProfile()}
}

// HasImage reports whether an image has been selected.
func (in Input) HasImage() bool {
	return !in.Image.Empty()
}

// appendDescription adds dictated text after a single space.
func appendDescription(current, text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return current
	}
	if current == "" {
		return text
	}
	return current + " " + text
}
