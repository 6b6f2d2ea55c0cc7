package daemon_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"lifelens/internal/api"
	"lifelens/internal/daemon"
	"lifelens/internal/diagnosis"
	"lifelens/internal/session"
	"lifelens/internal/testsupport"
)

type idleService struct{}

func (idleService) ClassifyImage(context.Context, diagnosis.Image) (bool, error) { return false, nil }

func (idleService) AnalyzeImage(context.Context, diagnosis.Image, string, *diagnosis.HealthProfile) (diagnosis.Diagnosis, error) {
	return &diagnosis.Repair{ProblemSummary: "noop"}, nil
}

func newDaemon(t *testing.T) *daemon.Daemon {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	machine := session.NewMachine(idleService{}, store)
	d, err := daemon.New(cfg, store, machine, session.NewSequencer(machine), nil)
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	t.Cleanup(func() { d.Stop() })
	return d
}

func TestDaemonStartStop(t *testing.T) {
	d := newDaemon(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := d.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	status := d.Status()
	if !status.Running || status.Address == "" {
		t.Fatalf("expected running daemon with address, got %+v", status)
	}

	if err := d.Start(ctx); err == nil {
		t.Fatal("expected second start to fail")
	}

	resp, err := http.Get("http://" + status.Address + "/api/session")
	if err != nil {
		t.Fatalf("GET session: %v", err)
	}
	defer resp.Body.Close()
	var state api.SessionState
	if err := json.NewDecoder(resp.Body).Decode(&state); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if state.Phase != "idle" {
		t.Fatalf("unexpected phase %q", state.Phase)
	}

	d.Stop()
	if d.Status().Running {
		t.Fatal("expected daemon to be stopped")
	}
}

func TestDaemonSingleInstance(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	machine := session.NewMachine(idleService{}, store)

	first, err := daemon.New(cfg, store, machine, session.NewSequencer(machine), nil)
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	second, err := daemon.New(cfg, store, machine, session.NewSequencer(machine), nil)
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	t.Cleanup(func() {
		second.Stop()
		first.Stop()
	})

	ctx := context.Background()
	if err := first.Start(ctx); err != nil {
		t.Fatalf("first Start: %v", err)
	}
	if err := second.Start(ctx); err == nil {
		t.Fatal("expected lock contention error")
	}
}
