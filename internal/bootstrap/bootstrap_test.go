package bootstrap

import (
	"context"
	"testing"
	"time"

	"lifelens/internal/session"
	"lifelens/internal/testsupport"
)

func TestBuildWiresSession(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Demo.Speed = 4

	var seen []session.Phase
	components, err := Build(context.Background(), cfg, nil, Options{
		DemoSpeed: 2,
		Observer:  func(s session.Snapshot) { seen = append(seen, s.Phase) },
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	t.Cleanup(func() { _ = components.Close() })

	if components.Machine.Snapshot().Phase != session.PhaseIdle {
		t.Fatalf("expected idle session")
	}
	if err := components.Machine.OpenDashboard(); err != nil {
		t.Fatalf("OpenDashboard: %v", err)
	}
	if len(seen) != 1 || seen[0] != session.PhaseDashboard {
		t.Fatalf("observer not wired, saw %v", seen)
	}
	if goal := components.Store.DailyGoal(context.Background()); goal != 2000 {
		t.Fatalf("expected default goal, got %d", goal)
	}
}

func TestRunStopsOnContextCancel(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Logging.Format = "json"

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Run(ctx, cfg, RunOptions{LogLevel: "error"}) }()
	time.AfterFunc(200*time.Millisecond, cancel)

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancellation")
	}
}
