package session_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"lifelens/internal/diagnosis"
	"lifelens/internal/session"
)

// fakeClock records requested delays without waiting. onSleep runs before
// each sleep returns and may cancel the demo.
type fakeClock struct {
	mu      sync.Mutex
	slept   []time.Duration
	onSleep func(n int)
}

func (c *fakeClock) Sleep(ctx context.Context, d time.Duration) error {
	c.mu.Lock()
	c.slept = append(c.slept, d)
	n := len(c.slept)
	hook := c.onSleep
	c.mu.Unlock()
	if hook != nil {
		hook(n)
	}
	return ctx.Err()
}

func (c *fakeClock) total() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	var sum time.Duration
	for _, d := range c.slept {
		sum += d
	}
	return sum
}

// blockingClock waits until the context ends.
type blockingClock struct {
	entered chan struct{}
}

func (c blockingClock) Sleep(ctx context.Context, _ time.Duration) error {
	select {
	case c.entered <- struct{}{}:
	default:
	}
	<-ctx.Done()
	return ctx.Err()
}

func TestDemoRunCompletesWithoutSideEffects(t *testing.T) {
	ctx := context.Background()
	service := &fakeService{}
	var phaseMu sync.Mutex
	var phases []session.Phase
	h := newHarness(t, service, session.WithObserver(func(s session.Snapshot) {
		phaseMu.Lock()
		phases = append(phases, s.Phase)
		phaseMu.Unlock()
	}))
	clock := &fakeClock{}
	seq := session.NewSequencer(h.machine, session.WithClock(clock))

	if status := seq.Run(ctx); status != session.DemoCompleted {
		t.Fatalf("expected completed, got %s", status)
	}
	if seq.Banner() != "Demo sequence complete." {
		t.Fatalf("unexpected banner %q", seq.Banner())
	}

	snap := expectPhase(t, h.machine, session.PhaseResults)
	if snap.DemoActive {
		t.Fatal("demo flag should be cleared")
	}
	repair, ok := snap.Diagnosis.(*diagnosis.Repair)
	if !ok || repair.ProblemSummary != "Frayed charging cable (Voice Demo)" {
		t.Fatalf("expected the accessibility result, got %+v", snap.Diagnosis)
	}

	if classify, analyze := service.calls(); classify != 0 || analyze != 0 {
		t.Fatalf("demo must not call the service, got %d/%d", classify, analyze)
	}
	if meals := h.store.Meals(ctx); len(meals) != 0 {
		t.Fatalf("demo must not save meals, got %+v", meals)
	}
	if metrics := h.store.Metrics(ctx); metrics.TotalImagesAnalyzed != 0 {
		t.Fatalf("demo must not update metrics, got %+v", metrics)
	}
	for _, key := range []string{"meals", "metrics", "daily_goal"} {
		if _, exists, _ := h.backend.Get(ctx, key); exists {
			t.Fatalf("demo wrote %s", key)
		}
	}

	spoken := h.speaker.utterances()
	want := []string{
		"Demo Result: Frayed charging cable insulation exposing internal wires.",
		"Demo Result: Frayed charging cable (Voice Demo)",
	}
	if len(spoken) != len(want) || spoken[0] != want[0] || spoken[1] != want[1] {
		t.Fatalf("unexpected speech %q", spoken)
	}

	if got := clock.total(); got != 16*time.Second {
		t.Fatalf("expected 16s of pacing, got %s", got)
	}

	phaseMu.Lock()
	defer phaseMu.Unlock()
	sawFoodForm := false
	for _, p := range phases {
		if p == session.PhaseCollectingFoodData {
			sawFoodForm = true
		}
	}
	if !sawFoodForm {
		t.Fatalf("food scenario should pass through the food data phase, got %v", phases)
	}
}

func TestDemoSpeedScalesPacing(t *testing.T) {
	h := newHarness(t, &fakeService{})
	clock := &fakeClock{}
	seq := session.NewSequencer(h.machine, session.WithClock(clock), session.WithSpeed(2))

	if status := seq.Run(context.Background()); status != session.DemoCompleted {
		t.Fatalf("expected completed, got %s", status)
	}
	if got := clock.total(); got != 8*time.Second {
		t.Fatalf("expected 8s of pacing, got %s", got)
	}
}

// demoSleeps is the number of pacing boundaries in the default scenarios:
// repair 4, food 5, accessibility 3.
const demoSleeps = 12

func TestDemoCancelResetsSession(t *testing.T) {
	for n := 1; n <= demoSleeps; n++ {
		t.Run(fmt.Sprintf("sleep %d", n), func(t *testing.T) {
			h := newHarness(t, &fakeService{})
			clock := &fakeClock{}
			seq := session.NewSequencer(h.machine, session.WithClock(clock))
			clock.onSleep = func(i int) {
				if i == n {
					seq.Cancel()
				}
			}

			if status := seq.Run(context.Background()); status != session.DemoCancelled {
				t.Fatalf("expected cancelled, got %s", status)
			}
			if seq.Banner() != "Demo cancelled." {
				t.Fatalf("unexpected banner %q", seq.Banner())
			}
			snap := expectPhase(t, h.machine, session.PhaseIdle)
			if snap.Diagnosis != nil || snap.Input.HasImage() || snap.Input.Description != "" {
				t.Fatalf("expected a full reset, got %+v", snap)
			}
			if snap.DemoActive {
				t.Fatal("demo flag should be cleared")
			}
			if h.speaker.cancelCount() == 0 {
				t.Fatal("cancellation must stop pending speech")
			}
			if len(clock.slept) != n {
				t.Fatalf("no pacing after cancellation, got %d sleeps", len(clock.slept))
			}
		})
	}
}

func TestDemoContextCancellation(t *testing.T) {
	for n := 1; n <= demoSleeps; n++ {
		t.Run(fmt.Sprintf("sleep %d", n), func(t *testing.T) {
			h := newHarness(t, &fakeService{})
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			clock := &fakeClock{onSleep: func(i int) {
				if i == n {
					cancel()
				}
			}}
			seq := session.NewSequencer(h.machine, session.WithClock(clock))

			if status := seq.Run(ctx); status != session.DemoCancelled {
				t.Fatalf("expected cancelled, got %s", status)
			}
			expectPhase(t, h.machine, session.PhaseIdle)
			if len(clock.slept) != n {
				t.Fatalf("no pacing after cancellation, got %d sleeps", len(clock.slept))
			}
		})
	}
}

func TestDemoHasTwelvePacingBoundaries(t *testing.T) {
	h := newHarness(t, &fakeService{})
	clock := &fakeClock{}
	session.NewSequencer(h.machine, session.WithClock(clock)).Run(context.Background())
	if len(clock.slept) != demoSleeps {
		t.Fatalf("expected %d sleeps, got %d", demoSleeps, len(clock.slept))
	}
}

func TestDemoSingleInstanceAndManualLockout(t *testing.T) {
	h := newHarness(t, &fakeService{})
	clock := blockingClock{entered: make(chan struct{}, 1)}
	seq := session.NewSequencer(h.machine, session.WithClock(clock))

	if !seq.Start(context.Background()) {
		t.Fatal("expected demo to start")
	}
	<-clock.entered

	if seq.Start(context.Background()) {
		t.Fatal("second Start should be refused")
	}
	if status := seq.Run(context.Background()); status != session.DemoRunning {
		t.Fatalf("second Run should return running, got %s", status)
	}
	if !h.machine.Snapshot().DemoActive {
		t.Fatal("snapshot should report the demo")
	}

	checks := map[string]error{
		"submit":    h.machine.Submit(context.Background()),
		"dictate":   h.machine.Dictate("hello"),
		"dashboard": h.machine.OpenDashboard(),
		"tracker":   h.machine.OpenTracker(),
		"image":     h.machine.SelectImage(context.Background(), []byte{0xff, 0xd8, 0xff, 0xe0}),
	}
	for name, err := range checks {
		if !errors.Is(err, session.ErrDemoActive) {
			t.Fatalf("%s: expected ErrDemoActive, got %v", name, err)
		}
	}

	seq.Cancel()
	seq.Wait()
	if seq.Status() != session.DemoCancelled {
		t.Fatalf("expected cancelled, got %s", seq.Status())
	}
	if err := h.machine.OpenDashboard(); err != nil {
		t.Fatalf("manual actions should resume after the demo: %v", err)
	}
}

func TestDemoSkipsUndecodableImages(t *testing.T) {
	h := newHarness(t, &fakeService{})
	scenarios := []session.Scenario{{
		Kind:        session.ScenarioRepair,
		ImageURI:    "data:image/jpeg;base64,@@@",
		Description: "broken",
		Result:      &diagnosis.Repair{ProblemSummary: "Broken"},
	}}
	seq := session.NewSequencer(h.machine, session.WithClock(&fakeClock{}), session.WithScenarios(scenarios))

	if status := seq.Run(context.Background()); status != session.DemoCompleted {
		t.Fatalf("expected completed, got %s", status)
	}
	expectPhase(t, h.machine, session.PhaseResults)
}
