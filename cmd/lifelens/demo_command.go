package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	"lifelens/internal/bootstrap"
	"lifelens/internal/session"
)

func newDemoCommand(ctx *commandContext) *cobra.Command {
	var speed float64

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Play the scripted walkthrough (Ctrl-C cancels)",
		Long: "Replays the built-in repair, nutrition and accessibility scenarios without\n" +
			"calling the diagnosis model or touching saved records.",
		RunE: func(cmd *cobra.Command, args []string) error {
			signalCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			progress := newDemoProgress(cmd.OutOrStdout())
			opts := bootstrap.Options{DemoSpeed: speed, Observer: progress.observe}

			return ctx.withSession(cmd, opts, func(_ context.Context, c *bootstrap.Components) error {
				progress.attach(c.Demo)
				status := c.Demo.Run(signalCtx)
				fmt.Fprintln(cmd.OutOrStdout(), c.Demo.Banner())
				if status == session.DemoRunning {
					return fmt.Errorf("a demo is already running")
				}
				return nil
			})
		},
	}
	cmd.Flags().Float64Var(&speed, "speed", 0, "Playback speed multiplier (default demo.speed)")
	return cmd
}

// demoProgress prints banner changes, phase changes and results as the
// machine publishes them.
type demoProgress struct {
	out io.Writer

	mu         sync.Mutex
	demo       *session.Sequencer
	lastBanner string
	lastPhase  session.Phase
}

func newDemoProgress(out io.Writer) *demoProgress {
	return &demoProgress{out: out}
}

func (p *demoProgress) attach(demo *session.Sequencer) {
	p.mu.Lock()
	p.demo = demo
	p.mu.Unlock()
}

func (p *demoProgress) observe(snap session.Snapshot) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.demo != nil && snap.DemoActive {
		if banner := p.demo.Banner(); banner != p.lastBanner {
			p.lastBanner = banner
			fmt.Fprintf(p.out, "== %s\n", banner)
		}
	}
	if snap.Phase == p.lastPhase {
		return
	}
	p.lastPhase = snap.Phase
	if snap.Phase == session.PhaseResults && snap.Diagnosis != nil {
		fmt.Fprintf(p.out, "   results: %s\n", snap.Diagnosis.Headline())
		return
	}
	fmt.Fprintf(p.out, "   %s\n", snap.Phase)
}
