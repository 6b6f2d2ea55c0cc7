package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync/atomic"

	"github.com/gofrs/flock"

	"lifelens/internal/config"
	"lifelens/internal/logging"
	"lifelens/internal/records"
	"lifelens/internal/session"
)

// Daemon owns the shared session and serves it over HTTP.
type Daemon struct {
	cfg     *config.Config
	logger  *slog.Logger
	store   *records.Store
	machine *session.Machine
	demo    *session.Sequencer
	api     *apiServer

	lockPath string
	lock     *flock.Flock

	running atomic.Bool
	cancel  context.CancelFunc
}

// Status represents daemon runtime information.
type Status struct {
	Running      bool
	PID          int
	Address      string
	StorePath    string
	LockFilePath string
	Phase        session.Phase
	Demo         session.DemoStatus
}

// New constructs a daemon around an already wired machine and sequencer.
func New(cfg *config.Config, store *records.Store, machine *session.Machine, demo *session.Sequencer, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || store == nil || machine == nil || demo == nil {
		return nil, errors.New("daemon requires config, store, machine, and demo sequencer")
	}
	logger = logging.NewComponentLogger(logger, "daemon")
	lockPath := cfg.DaemonLockPath()
	return &Daemon{
		cfg:      cfg,
		logger:   logger,
		store:    store,
		machine:  machine,
		demo:     demo,
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}, nil
}

// Start acquires the daemon lock and starts the API server.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	if err := d.cfg.EnsureDirectories(); err != nil {
		return err
	}
	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another lifelensd instance is already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	d.api = newAPIServer(d.cfg, d.machine, d.demo, d.store, d.logger, runCtx)
	if err := d.api.start(runCtx); err != nil {
		cancel()
		_ = d.lock.Unlock()
		return err
	}
	d.cancel = cancel
	d.running.Store(true)
	d.logger.Info("lifelens daemon started",
		logging.String("lock", d.lockPath),
		logging.String("address", d.api.address()),
	)
	return nil
}

// Stop cancels any demo, shuts the API server down and releases the lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}
	d.demo.Cancel()
	d.demo.Wait()
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.api.stop()
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.running.Store(false)
	d.logger.Info("lifelens daemon stopped")
}

// Close releases resources held by the daemon.
func (d *Daemon) Close() error {
	d.Stop()
	if d.store != nil {
		return d.store.Close()
	}
	return nil
}

// Status returns the current daemon status.
func (d *Daemon) Status() Status {
	status := Status{
		Running:      d.running.Load(),
		PID:          os.Getpid(),
		StorePath:    d.cfg.StorePath(),
		LockFilePath: d.lockPath,
		Phase:        d.machine.Snapshot().Phase,
		Demo:         d.demo.Status(),
	}
	if d.api != nil {
		status.Address = d.api.address()
	}
	return status
}
