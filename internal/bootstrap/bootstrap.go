// Package bootstrap wires configuration into a ready-to-use session: the
// record store, the diagnosis client, speech, the state machine and the demo
// sequencer. The CLI and lifelensd share it.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"lifelens/internal/config"
	"lifelens/internal/daemon"
	"lifelens/internal/logging"
	"lifelens/internal/preflight"
	"lifelens/internal/records"
	"lifelens/internal/services/llm"
	"lifelens/internal/session"
	"lifelens/internal/speech"
)

// Components are the long-lived objects behind one session.
type Components struct {
	Store   *records.Store
	Client  *llm.Client
	Machine *session.Machine
	Demo    *session.Sequencer
}

// Options tweaks Build.
type Options struct {
	// DemoSpeed overrides demo.speed when positive.
	DemoSpeed float64
	// Observer receives every state change.
	Observer session.Observer
}

// Close releases the record store.
func (c *Components) Close() error {
	if c == nil || c.Store == nil {
		return nil
	}
	return c.Store.Close()
}

// Build opens the store and constructs the session stack.
func Build(ctx context.Context, cfg *config.Config, logger *slog.Logger, opts Options) (*Components, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	store, err := records.Open(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("open record store: %w", err)
	}

	client := NewClient(cfg.GetLLM())
	speaker, listener := speech.New(cfg.Speech, logger)

	machineOpts := []session.Option{
		session.WithSpeaker(speaker),
		session.WithListener(listener),
		session.WithLogger(logger),
	}
	if opts.Observer != nil {
		machineOpts = append(machineOpts, session.WithObserver(opts.Observer))
	}
	machine := session.NewMachine(client, store, machineOpts...)

	speed := cfg.Demo.Speed
	if opts.DemoSpeed > 0 {
		speed = opts.DemoSpeed
	}
	demo := session.NewSequencer(machine,
		session.WithSpeed(speed),
		session.WithDemoLogger(logger),
	)

	return &Components{Store: store, Client: client, Machine: machine, Demo: demo}, nil
}

// NewClient builds the diagnosis client from resolved settings.
func NewClient(cfg config.LLMConfig, opts ...llm.Option) *llm.Client {
	return llm.NewClient(llm.Config{
		APIKey:         cfg.APIKey,
		BaseURL:        cfg.BaseURL,
		ClassifyModel:  cfg.ClassifyModel,
		AnalyzeModel:   cfg.AnalyzeModel,
		Referer:        cfg.Referer,
		Title:          cfg.Title,
		TimeoutSeconds: cfg.TimeoutSeconds,
	}, opts...)
}

// RunOptions configures daemon process runtime behavior.
type RunOptions struct {
	LogLevel string
}

// Run starts lifelensd and blocks until SIGINT, SIGTERM or ctx ends.
func Run(cmdCtx context.Context, cfg *config.Config, opts RunOptions) error {
	if cfg == nil {
		return fmt.Errorf("config is required")
	}

	signalCtx, cancel := signal.NotifyContext(cmdCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if opts.LogLevel != "" {
		cfg.Logging.Level = opts.LogLevel
	}
	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	slog.SetDefault(logger)

	preflight.LogResults(logger, preflight.RunAll(signalCtx, cfg, preflight.Options{SkipLLM: true}))

	components, err := Build(signalCtx, cfg, logger, Options{})
	if err != nil {
		return err
	}

	d, err := daemon.New(cfg, components.Store, components.Machine, components.Demo, logger)
	if err != nil {
		_ = components.Close()
		return fmt.Errorf("create daemon: %w", err)
	}
	defer d.Close()

	if err := d.Start(signalCtx); err != nil {
		return err
	}
	status := d.Status()
	logger.Info("lifelensd ready",
		logging.Int("pid", os.Getpid()),
		logging.String("address", status.Address),
		logging.String("store", status.StorePath),
		logging.String(logging.FieldEventType, "daemon_ready"),
	)

	<-signalCtx.Done()
	logger.Info("lifelensd shutting down")
	return nil
}
