package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"lifelens/internal/diagnosis"
	"lifelens/internal/logging"
	"lifelens/internal/speech"
)

// DemoStatus is the state of the demo sequencer.
type DemoStatus string

const (
	DemoIdle      DemoStatus = "idle"
	DemoRunning   DemoStatus = "running"
	DemoCompleted DemoStatus = "completed"
	DemoCancelled DemoStatus = "cancelled"
)

const (
	bannerPreloading = "Preloading demo assets..."
	bannerCompleted  = "Demo sequence complete."
	bannerCancelled  = "Demo cancelled."
)

// SequencerOption customizes a Sequencer.
type SequencerOption func(*Sequencer)

// WithScenarios replaces the built-in scenarios.
func WithScenarios(scenarios []Scenario) SequencerOption {
	return func(s *Sequencer) {
		s.scenarios = append([]Scenario(nil), scenarios...)
	}
}

// WithClock sets the clock used for pacing.
func WithClock(clock Clock) SequencerOption {
	return func(s *Sequencer) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithPacing overrides the step delays.
func WithPacing(p Pacing) SequencerOption {
	return func(s *Sequencer) {
		s.pacing = p
	}
}

// WithSpeed scales the step delays; 2 plays twice as fast.
func WithSpeed(speed float64) SequencerOption {
	return func(s *Sequencer) {
		s.speed = speed
	}
}

// WithDemoLogger sets the sequencer logger.
func WithDemoLogger(logger *slog.Logger) SequencerOption {
	return func(s *Sequencer) {
		if logger != nil {
			s.logger = logging.NewComponentLogger(logger, "demo")
		}
	}
}

// Sequencer replays scripted scenarios through a Machine. No diagnosis
// service or record store is involved.
type Sequencer struct {
	machine   *Machine
	speaker   speech.Speaker
	clock     Clock
	pacing    Pacing
	speed     float64
	scenarios []Scenario
	logger    *slog.Logger

	mu     sync.Mutex
	status DemoStatus
	banner string
	cancel context.CancelFunc
	done   chan struct{}
}

// NewSequencer returns a sequencer that drives machine and speaks through
// the machine's speaker.
func NewSequencer(machine *Machine, opts ...SequencerOption) *Sequencer {
	s := &Sequencer{
		machine:   machine,
		speaker:   machine.speaker,
		clock:     RealClock{},
		pacing:    DefaultPacing(),
		speed:     1,
		scenarios: DefaultScenarios(),
		logger:    logging.NewNop(),
		status:    DemoIdle,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.pacing = s.pacing.Scaled(s.speed)
	return s
}

// Status returns the current or last sequencer status.
func (s *Sequencer) Status() DemoStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Banner returns the progress text for the current or last run.
func (s *Sequencer) Banner() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.banner
}

// Cancel stops a running demo. It is a no-op when none is running.
func (s *Sequencer) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
	}
}

// Start runs the demo in the background. It reports false when a demo is
// already running.
func (s *Sequencer) Start(ctx context.Context) bool {
	runCtx, ok := s.begin(ctx)
	if !ok {
		return false
	}
	go s.play(runCtx)
	return true
}

// Run plays every scenario and returns the final status. A second Run while
// one is active returns DemoRunning immediately.
func (s *Sequencer) Run(ctx context.Context) DemoStatus {
	runCtx, ok := s.begin(ctx)
	if !ok {
		return DemoRunning
	}
	return s.play(runCtx)
}

// Wait blocks until the active run, if any, has finished.
func (s *Sequencer) Wait() {
	s.mu.Lock()
	done := s.done
	s.mu.Unlock()
	if done != nil {
		<-done
	}
}

func (s *Sequencer) begin(ctx context.Context) (context.Context, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.machine.demo.CompareAndSwap(false, true) {
		return nil, false
	}
	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.status = DemoRunning
	s.banner = bannerPreloading
	s.done = make(chan struct{})
	return runCtx, true
}

func (s *Sequencer) play(ctx context.Context) DemoStatus {
	s.machine.notifyDemo()
	s.logger.Info("demo started", logging.Int("scenarios", len(s.scenarios)))

	images := s.preload()
	status := DemoCompleted
	if err := s.playScenarios(ctx, images); err != nil {
		status = DemoCancelled
	}
	s.finish(status)
	return status
}

func (s *Sequencer) finish(status DemoStatus) {
	if status == DemoCancelled {
		s.speaker.Cancel()
	}

	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.status = status
	if status == DemoCancelled {
		s.banner = bannerCancelled
	} else {
		s.banner = bannerCompleted
	}
	done := s.done
	s.mu.Unlock()

	s.machine.demo.Store(false)
	if status == DemoCancelled {
		s.machine.Reset()
	} else {
		s.machine.notifyDemo()
	}
	s.logger.Info("demo finished", logging.String("status", string(status)))
	close(done)
}

// preload decodes every scenario image once. Undecodable images leave the
// scenario without an image.
func (s *Sequencer) preload() []diagnosis.Image {
	images := make([]diagnosis.Image, len(s.scenarios))
	for i, scenario := range s.scenarios {
		image, err := diagnosis.ParseDataURI(scenario.ImageURI)
		if err != nil {
			s.logger.Warn("demo image could not be decoded",
				logging.String("scenario", string(scenario.Kind)),
				logging.Error(err),
				logging.String(logging.FieldEventType, "demo_preload_failed"),
			)
			continue
		}
		images[i] = image
	}
	return images
}

func (s *Sequencer) playScenarios(ctx context.Context, images []diagnosis.Image) error {
	total := len(s.scenarios)
	for i, scenario := range s.scenarios {
		if err := ctx.Err(); err != nil {
			return err
		}
		s.setBanner(fmt.Sprintf("Running Demo Scenario %d of %d: %s", i+1, total, scenario.Label()))

		image := images[i]
		s.machine.update(func() {
			s.machine.phase = PhaseIdle
			s.machine.input = newInput()
			s.machine.input.Image = image
			s.machine.input.Preview = scenario.ImageURI
			s.machine.input.Description = scenario.Description
			s.machine.result = nil
			s.machine.errMessage = ""
			s.machine.guide = StepGuide{}
		})
		if err := s.pace(ctx, s.pacing.Setup); err != nil {
			return err
		}

		s.setPhase(PhaseCheckingImage)
		if err := s.pace(ctx, s.pacing.Classify); err != nil {
			return err
		}

		if scenario.Kind == ScenarioFood {
			s.machine.update(func() {
				s.machine.phase = PhaseCollectingFoodData
				if scenario.HealthProfile != nil {
					s.machine.input.HealthProfile = scenario.HealthProfile.Normalized()
				}
			})
			if err := s.pace(ctx, s.pacing.Collect); err != nil {
				return err
			}
		} else {
			s.setPhase(PhaseIdle)
			if err := ctx.Err(); err != nil {
				return err
			}
		}

		s.setPhase(PhaseAnalyzing)
		if err := s.pace(ctx, s.pacing.Analyze); err != nil {
			return err
		}

		s.machine.update(func() {
			s.machine.phase = PhaseResults
			s.machine.result = scenario.Result
		})
		if scenario.Kind == ScenarioRepair || scenario.Kind == ScenarioAccessibility {
			s.speaker.Speak(fmt.Sprintf("Demo Result: %s", scenario.Result.Headline()))
		}

		if i < total-1 {
			if err := s.pace(ctx, s.pacing.Dwell); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *Sequencer) setPhase(p Phase) {
	s.machine.update(func() {
		s.machine.phase = p
	})
}

func (s *Sequencer) setBanner(text string) {
	s.mu.Lock()
	s.banner = text
	s.mu.Unlock()
	s.logger.Info(text)
}

// pace waits d, checking for cancellation before and after the wait.
func (s *Sequencer) pace(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.clock.Sleep(ctx, d); err != nil {
		return err
	}
	return ctx.Err()
}
