package session

import (
	"errors"

	"lifelens/internal/services"
)

// AnalysisFailedMessage is shown when an analysis cannot be completed.
const AnalysisFailedMessage = "Could not analyze the image. Please try again."

var (
	// ErrImageRequired is returned by Submit when no image has been selected.
	ErrImageRequired = services.Validation("Please upload an image first.")
	// ErrHealthProfileIncomplete is returned by Submit from the food data
	// phase when height or weight is missing.
	ErrHealthProfileIncomplete = services.Validation("Please enter your height and weight.")
	// ErrDemoActive rejects manual actions while a demo is playing.
	ErrDemoActive = errors.New("demo in progress")
	// ErrIllegalTransition rejects an action the current phase does not allow.
	ErrIllegalTransition = errors.New("illegal transition")
	// ErrAnalysisFailed wraps diagnosis service failures returned by Submit.
	ErrAnalysisFailed = errors.New("analysis failed")
)
