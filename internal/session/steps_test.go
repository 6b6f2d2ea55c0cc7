package session_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"lifelens/internal/diagnosis"
	"lifelens/internal/session"
)

func repairWithSteps(level diagnosis.SafetyLevel, steps ...string) *diagnosis.Repair {
	return &diagnosis.Repair{
		ProblemSummary: "Wobbly chair leg",
		SafetyLevel:    level,
		Steps:          steps,
	}
}

func (h *harness) submitRepair(t *testing.T) {
	t.Helper()
	h.selectImage(t)
	if err := h.machine.Submit(context.Background()); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	expectPhase(t, h.machine, session.PhaseResults)
}

func expectGuide(t *testing.T, m *session.Machine, want session.StepGuide) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for {
		got := m.Snapshot().Guide
		if got == want {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("expected guide %+v, got %+v", want, got)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func lastUtterance(t *testing.T, s *recordingSpeaker) string {
	t.Helper()
	spoken := s.utterances()
	if len(spoken) == 0 {
		t.Fatal("nothing was spoken")
	}
	return spoken[len(spoken)-1]
}

func TestStepPlayerReadsAndNavigates(t *testing.T) {
	h := newHarness(t, &fakeService{result: repairWithSteps(diagnosis.SafetyLow, "Flip the chair", "Tighten the bolt", "Test the leg")})
	h.speaker.hold = true
	h.submitRepair(t)
	expectGuide(t, h.machine, session.StepGuide{})

	if _, err := h.machine.SpeakStep(0); err != nil {
		t.Fatalf("SpeakStep: %v", err)
	}
	expectGuide(t, h.machine, session.StepGuide{Index: 0, Playing: true})
	if got := lastUtterance(t, h.speaker); got != "Flip the chair" {
		t.Fatalf("unexpected utterance %q", got)
	}

	cancels := h.speaker.cancelCount()
	if err := h.machine.NextStep(); err != nil {
		t.Fatalf("NextStep: %v", err)
	}
	expectGuide(t, h.machine, session.StepGuide{Index: 1, Playing: true})
	if got := lastUtterance(t, h.speaker); got != "Tighten the bolt" {
		t.Fatalf("playing player should read the new step, got %q", got)
	}
	if h.speaker.cancelCount() == cancels {
		t.Fatal("changing step must cancel the previous utterance")
	}

	h.speaker.finish()
	expectGuide(t, h.machine, session.StepGuide{Index: 1, Playing: false})

	spoken := len(h.speaker.utterances())
	if err := h.machine.NextStep(); err != nil {
		t.Fatalf("NextStep: %v", err)
	}
	if err := h.machine.NextStep(); err != nil {
		t.Fatalf("NextStep at the last step: %v", err)
	}
	expectGuide(t, h.machine, session.StepGuide{Index: 2, Playing: false})
	if len(h.speaker.utterances()) != spoken {
		t.Fatal("a paused player must not read steps")
	}

	if err := h.machine.PrevStep(); err != nil {
		t.Fatalf("PrevStep: %v", err)
	}
	expectGuide(t, h.machine, session.StepGuide{Index: 1, Playing: false})
	if _, err := h.machine.PlayStep(); err != nil {
		t.Fatalf("PlayStep: %v", err)
	}
	expectGuide(t, h.machine, session.StepGuide{Index: 1, Playing: true})

	cancels = h.speaker.cancelCount()
	if err := h.machine.PauseStep(); err != nil {
		t.Fatalf("PauseStep: %v", err)
	}
	expectGuide(t, h.machine, session.StepGuide{Index: 1, Playing: false})
	if h.speaker.cancelCount() == cancels {
		t.Fatal("pause must stop speech")
	}

	if _, err := h.machine.SpeakStep(3); !errors.Is(err, session.ErrStepOutOfRange) {
		t.Fatalf("expected ErrStepOutOfRange, got %v", err)
	}

	if _, err := h.machine.SpeakStep(2); err != nil {
		t.Fatalf("SpeakStep: %v", err)
	}
	cancels = h.speaker.cancelCount()
	h.machine.Reset()
	expectGuide(t, h.machine, session.StepGuide{})
	if h.speaker.cancelCount() == cancels {
		t.Fatal("reset must stop step speech")
	}
}

func TestStepPlayerRequiresGuidance(t *testing.T) {
	idle := newHarness(t, &fakeService{})
	if _, err := idle.machine.SpeakStep(0); !errors.Is(err, session.ErrIllegalTransition) {
		t.Fatalf("expected ErrIllegalTransition before results, got %v", err)
	}

	tests := []struct {
		name   string
		result *diagnosis.Repair
	}{
		{name: "high risk", result: repairWithSteps(diagnosis.SafetyHigh, "Open the panel")},
		{name: "no steps", result: repairWithSteps(diagnosis.SafetyLow)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, &fakeService{result: tt.result})
			h.submitRepair(t)
			if _, err := h.machine.SpeakStep(0); !errors.Is(err, session.ErrGuidanceUnavailable) {
				t.Fatalf("expected ErrGuidanceUnavailable, got %v", err)
			}
			if err := h.machine.NextStep(); !errors.Is(err, session.ErrGuidanceUnavailable) {
				t.Fatalf("expected ErrGuidanceUnavailable, got %v", err)
			}
			if len(h.speaker.utterances()) != 0 {
				t.Fatalf("no step may be spoken, got %q", h.speaker.utterances())
			}
		})
	}
}
