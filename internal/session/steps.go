package session

import (
	"lifelens/internal/diagnosis"
	"lifelens/internal/logging"
	"lifelens/internal/services"
)

// StepGuide is the position of the voice-guided repair step player.
type StepGuide struct {
	Index   int
	Playing bool
}

var (
	// ErrGuidanceUnavailable rejects step playback for food results,
	// high-risk repairs and repairs without steps.
	ErrGuidanceUnavailable = services.Validation("Step-by-step guidance is not available for this result.")
	// ErrStepOutOfRange rejects a step index outside the repair steps.
	ErrStepOutOfRange = services.Validation("That step does not exist.")
)

// SpeakStep moves the step player to index and reads that step aloud,
// replacing any step being read. The returned channel closes when the
// utterance ends or is cancelled.
func (m *Machine) SpeakStep(index int) (<-chan struct{}, error) {
	m.stepMu.Lock()
	defer m.stepMu.Unlock()

	m.mu.Lock()
	steps, err := m.stepsLocked("speak step")
	if err != nil {
		m.mu.Unlock()
		return nil, err
	}
	if index < 0 || index >= len(steps) {
		m.mu.Unlock()
		return nil, ErrStepOutOfRange
	}
	return m.playLocked(steps, index), nil
}

// PlayStep reads the current step aloud.
func (m *Machine) PlayStep() (<-chan struct{}, error) {
	return m.SpeakStep(m.Snapshot().Guide.Index)
}

// PauseStep stops reading the current step. It is a no-op when nothing is
// being read.
func (m *Machine) PauseStep() error {
	m.stepMu.Lock()
	defer m.stepMu.Unlock()

	m.mu.Lock()
	if !m.guide.Playing {
		m.mu.Unlock()
		return nil
	}
	m.guide.Playing = false
	m.guideToken++
	m.commitLocked()
	m.speaker.Cancel()
	return nil
}

// NextStep advances the step player. While playing, the new step is read;
// otherwise any leftover speech stops. The last step stays put.
func (m *Machine) NextStep() error {
	return m.moveStep("next step", 1)
}

// PrevStep moves the step player back one step. The first step stays put.
func (m *Machine) PrevStep() error {
	return m.moveStep("previous step", -1)
}

func (m *Machine) moveStep(action string, delta int) error {
	m.stepMu.Lock()
	defer m.stepMu.Unlock()

	m.mu.Lock()
	steps, err := m.stepsLocked(action)
	if err != nil {
		m.mu.Unlock()
		return err
	}
	index := m.guide.Index + delta
	if index < 0 || index >= len(steps) {
		m.mu.Unlock()
		return nil
	}
	if m.guide.Playing {
		m.playLocked(steps, index)
		return nil
	}
	m.guide.Index = index
	m.guideToken++
	m.commitLocked()
	m.speaker.Cancel()
	return nil
}

// stepsLocked returns the steps of a repair whose guidance may be shown.
func (m *Machine) stepsLocked(action string) ([]string, error) {
	if err := m.guardLocked(action, PhaseResults); err != nil {
		return nil, err
	}
	repair, ok := m.result.(*diagnosis.Repair)
	if !ok || !repair.GuidanceAllowed() || len(repair.Steps) == 0 {
		return nil, ErrGuidanceUnavailable
	}
	return repair.Steps, nil
}

// playLocked commits the new position, releases the lock and starts the
// utterance. Callers hold stepMu so cancel and speak stay paired.
func (m *Machine) playLocked(steps []string, index int) <-chan struct{} {
	m.guide = StepGuide{Index: index, Playing: true}
	m.guideToken++
	token := m.guideToken
	m.commitLocked()

	m.logger.Debug("reading repair step",
		logging.Int("step", index+1),
		logging.Int("steps", len(steps)),
	)
	m.speaker.Cancel()
	done := m.speaker.Speak(steps[index])
	go m.awaitStep(token, done)
	return done
}

// awaitStep clears the playing flag once the utterance for token ends.
func (m *Machine) awaitStep(token uint64, done <-chan struct{}) {
	<-done
	m.mu.Lock()
	if m.guideToken != token || !m.guide.Playing {
		m.mu.Unlock()
		return
	}
	m.guide.Playing = false
	m.commitLocked()
}
