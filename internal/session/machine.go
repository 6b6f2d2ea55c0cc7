package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"lifelens/internal/diagnosis"
	"lifelens/internal/logging"
	"lifelens/internal/records"
	"lifelens/internal/services"
	"lifelens/internal/speech"
)

// DiagnosisService classifies and analyzes images.
type DiagnosisService interface {
	ClassifyImage(ctx context.Context, image diagnosis.Image) (bool, error)
	AnalyzeImage(ctx context.Context, image diagnosis.Image, description string, profile *diagnosis.HealthProfile) (diagnosis.Diagnosis, error)
}

// RecordStore receives the side effects of completed analyses.
type RecordStore interface {
	RecordAnalysis(ctx context.Context, result diagnosis.Diagnosis) (records.Metrics, error)
	SaveMeal(ctx context.Context, food *diagnosis.Food) (records.MealRecord, error)
	SaveDailyGoal(ctx context.Context, calories float64) error
}

// Observer receives a snapshot after every state change.
type Observer func(Snapshot)

// Option customizes a Machine.
type Option func(*Machine)

// WithSpeaker sets the speaker used for result readouts.
func WithSpeaker(speaker speech.Speaker) Option {
	return func(m *Machine) {
		if speaker != nil {
			m.speaker = speaker
		}
	}
}

// WithListener sets the speech-to-text source used by Listen.
func WithListener(listener speech.Listener) Option {
	return func(m *Machine) {
		if listener != nil {
			m.listener = listener
		}
	}
}

// WithLogger sets the machine logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Machine) {
		if logger != nil {
			m.logger = logging.NewComponentLogger(logger, "session")
		}
	}
}

// WithObserver registers fn to receive snapshots.
func WithObserver(fn Observer) Option {
	return func(m *Machine) {
		if fn != nil {
			m.observers = append(m.observers, fn)
		}
	}
}

// Machine is the application state machine. It is safe for concurrent use.
type Machine struct {
	service  DiagnosisService
	store    RecordStore
	speaker  speech.Speaker
	listener speech.Listener
	logger   *slog.Logger

	observers []Observer
	notifyMu  sync.Mutex

	demo atomic.Bool

	// stepMu serializes step player actions.
	stepMu sync.Mutex

	mu         sync.Mutex
	phase      Phase
	input      Input
	result     diagnosis.Diagnosis
	errMessage string
	generation uint64
	guide      StepGuide
	guideToken uint64
}

// NewMachine returns a machine in the idle phase.
func NewMachine(service DiagnosisService, store RecordStore, opts ...Option) *Machine {
	m := &Machine{
		service:  service,
		store:    store,
		speaker:  speech.Nop{},
		listener: speech.Nop{},
		logger:   logging.NewNop(),
		phase:    PhaseIdle,
		input:    newInput(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Snapshot returns a copy of the current state.
func (m *Machine) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked()
}

// DemoActive reports whether a demo sequence is driving the machine.
func (m *Machine) DemoActive() bool {
	return m.demo.Load()
}

// SelectImage stores data as the session image and classifies it. Food
// moves the session to the food data phase; anything else, including a
// classification failure, returns to idle.
func (m *Machine) SelectImage(ctx context.Context, data []byte) error {
	image, err := diagnosis.NewImage(data)
	if err != nil {
		return err
	}

	m.mu.Lock()
	if err := m.guardLocked("select image", PhaseIdle, PhaseError, PhaseCollectingFoodData, PhaseCheckingImage); err != nil {
		m.mu.Unlock()
		return err
	}
	m.input.Image = image
	m.input.Preview = image.DataURI()
	m.errMessage = ""
	m.phase = PhaseCheckingImage
	m.generation++
	generation := m.generation
	m.commitLocked()

	ctx = m.callContext(ctx, generation, PhaseCheckingImage)
	logger := logging.WithContext(ctx, m.logger)
	logger.Info("image selected",
		logging.String("mime_type", image.MIMEType),
		logging.Int("image_bytes", len(image.Data)),
	)

	isFood, err := m.service.ClassifyImage(ctx, image)
	if err != nil {
		logging.WarnWithContext(logger, "image classification failed; using repair path", "classification_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "nutrition form skipped"),
			logging.String(logging.FieldErrorHint, "check llm.api_key and network access"),
		)
		isFood = false
	}

	next := PhaseIdle
	if isFood {
		next = PhaseCollectingFoodData
	}

	m.mu.Lock()
	if m.generation != generation || m.phase != PhaseCheckingImage {
		m.mu.Unlock()
		logger.Debug("discarding stale classification",
			logging.Bool("is_food", isFood),
			logging.Uint64("current_generation", m.currentGeneration()),
		)
		return nil
	}
	m.phase = next
	m.commitLocked()

	logger.Info("image classified",
		logging.Args(logging.DecisionAttrs("classification", string(next), fmt.Sprintf("is_food=%t", isFood))...)...,
	)
	return nil
}

// Dictate appends transcribed speech to the description.
func (m *Machine) Dictate(text string) error {
	m.mu.Lock()
	if err := m.guardLocked("dictate", inputPhases...); err != nil {
		m.mu.Unlock()
		return err
	}
	m.input.Description = appendDescription(m.input.Description, text)
	m.commitLocked()
	return nil
}

// Listen captures one phrase from the listener and dictates it. Recognition
// failures are logged and otherwise ignored.
func (m *Machine) Listen(ctx context.Context) error {
	m.mu.Lock()
	err := m.guardLocked("listen", inputPhases...)
	m.mu.Unlock()
	if err != nil {
		return err
	}

	transcript, err := m.listener.Listen(ctx)
	if err != nil {
		m.logger.Info("speech recognition produced no transcript",
			logging.Error(err),
			logging.String(logging.FieldEventType, "listen_failed"),
		)
		return nil
	}
	return m.Dictate(transcript)
}

// SetDescription replaces the description.
func (m *Machine) SetDescription(text string) error {
	m.mu.Lock()
	if err := m.guardLocked("set description", inputPhases...); err != nil {
		m.mu.Unlock()
		return err
	}
	m.input.Description = text
	m.commitLocked()
	return nil
}

// SetHealthProfile replaces the health profile.
func (m *Machine) SetHealthProfile(profile diagnosis.HealthProfile) error {
	m.mu.Lock()
	if err := m.guardLocked("set health profile", inputPhases...); err != nil {
		m.mu.Unlock()
		return err
	}
	m.input.HealthProfile = profile.Normalized()
	m.commitLocked()
	return nil
}

// Submit runs the full analysis. The health profile is sent only when
// submitting from the food data phase. Submit while analyzing is a no-op.
func (m *Machine) Submit(ctx context.Context) error {
	m.mu.Lock()
	if m.phase == PhaseAnalyzing && !m.demo.Load() {
		m.mu.Unlock()
		return nil
	}
	if err := m.guardLocked("submit", inputPhases...); err != nil {
		m.mu.Unlock()
		return err
	}
	if !m.input.HasImage() {
		m.errMessage = services.UserMessage(ErrImageRequired)
		m.commitLocked()
		return ErrImageRequired
	}

	var profile *diagnosis.HealthProfile
	if m.phase == PhaseCollectingFoodData {
		p := m.input.HealthProfile.Normalized()
		if err := p.Validate(); err != nil {
			m.errMessage = services.UserMessage(ErrHealthProfileIncomplete)
			m.commitLocked()
			return ErrHealthProfileIncomplete
		}
		profile = &p
	}

	image := m.input.Image
	description := m.input.Description
	generation := m.generation
	m.phase = PhaseAnalyzing
	m.errMessage = ""
	m.commitLocked()

	ctx = m.callContext(ctx, generation, PhaseAnalyzing)
	logger := logging.WithContext(ctx, m.logger)
	logger.Info("analysis started",
		logging.Bool("food_mode", profile != nil),
		logging.Int("description_chars", len(description)),
	)

	result, err := m.service.AnalyzeImage(ctx, image, description, profile)

	m.mu.Lock()
	if m.generation != generation || m.phase != PhaseAnalyzing {
		m.mu.Unlock()
		logger.Debug("discarding stale analysis", logging.Bool("failed", err != nil))
		return nil
	}
	if err != nil {
		m.phase = PhaseError
		m.errMessage = AnalysisFailedMessage
		m.commitLocked()
		logging.ErrorWithContext(logger, "analysis failed", "analysis_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "retry the analysis or check the diagnosis service"),
		)
		return fmt.Errorf("%w: %w", ErrAnalysisFailed, err)
	}
	m.phase = PhaseResults
	m.result = result
	m.guide = StepGuide{}
	m.commitLocked()

	logger.Info("analysis complete",
		logging.Bool("is_food", result.IsFood()),
		logging.String("headline", result.Headline()),
	)
	m.applySideEffects(ctx, logger, result)
	return nil
}

// applySideEffects updates the record store and speaks the result. Store
// failures are logged only.
func (m *Machine) applySideEffects(ctx context.Context, logger *slog.Logger, result diagnosis.Diagnosis) {
	if m.store != nil {
		if _, err := m.store.RecordAnalysis(ctx, result); err != nil {
			logging.WarnWithContext(logger, "failed to update metrics", "metrics_update_failed",
				logging.Error(err),
				logging.String(logging.FieldImpact, "dashboard totals are behind"),
			)
		}
		if food, ok := result.(*diagnosis.Food); ok {
			if meal, err := m.store.SaveMeal(ctx, food); err != nil {
				logging.WarnWithContext(logger, "failed to save meal", "meal_save_failed",
					logging.Error(err),
					logging.String(logging.FieldImpact, "meal missing from tracker"),
				)
			} else {
				logger.Debug("meal saved", logging.String("meal_id", meal.ID))
			}
			if need := food.EstimatedDailyNeed.Value; need > 0 {
				if err := m.store.SaveDailyGoal(ctx, need); err != nil {
					logging.WarnWithContext(logger, "failed to save daily goal", "daily_goal_save_failed",
						logging.Error(err),
						logging.String(logging.FieldImpact, "tracker keeps the previous goal"),
					)
				}
			}
		}
	}

	if hint := result.Hint(); hint != "" {
		m.speaker.Speak(fmt.Sprintf("Analysis complete. %s. Result: %s", hint, result.Headline()))
	}
}

// Reset clears input, diagnosis and error and returns to idle. Any response
// still in flight is discarded.
func (m *Machine) Reset() {
	m.mu.Lock()
	playing := m.guide.Playing
	m.resetLocked()
	m.commitLocked()
	if playing {
		m.speaker.Cancel()
	}
}

// OpenDashboard shows the metrics dashboard.
func (m *Machine) OpenDashboard() error {
	return m.navigate("open dashboard", PhaseDashboard, true, PhaseIdle)
}

// CloseDashboard returns from the dashboard to idle.
func (m *Machine) CloseDashboard() error {
	return m.navigate("close dashboard", PhaseIdle, false, PhaseDashboard)
}

// OpenTracker shows the nutrition tracker.
func (m *Machine) OpenTracker() error {
	return m.navigate("open tracker", PhaseTracker, true, PhaseIdle, PhaseResults)
}

// CloseTracker returns to the results when a diagnosis exists, else idle.
func (m *Machine) CloseTracker() error {
	m.mu.Lock()
	if m.phase != PhaseTracker {
		phase := m.phase
		m.mu.Unlock()
		return fmt.Errorf("%w: close tracker from %s", ErrIllegalTransition, phase)
	}
	if m.result != nil {
		m.phase = PhaseResults
	} else {
		m.phase = PhaseIdle
	}
	m.commitLocked()
	return nil
}

func (m *Machine) navigate(action string, target Phase, blockDuringDemo bool, from ...Phase) error {
	m.mu.Lock()
	var err error
	if blockDuringDemo {
		err = m.guardLocked(action, from...)
	} else if !containsPhase(from, m.phase) {
		err = fmt.Errorf("%w: %s from %s", ErrIllegalTransition, action, m.phase)
	}
	if err != nil {
		m.mu.Unlock()
		return err
	}
	m.phase = target
	m.commitLocked()
	return nil
}

var inputPhases = []Phase{PhaseIdle, PhaseCheckingImage, PhaseCollectingFoodData, PhaseError}

// guardLocked rejects manual actions during a demo and outside the allowed phases.
func (m *Machine) guardLocked(action string, allowed ...Phase) error {
	if m.demo.Load() {
		return ErrDemoActive
	}
	if !containsPhase(allowed, m.phase) {
		return fmt.Errorf("%w: %s from %s", ErrIllegalTransition, action, m.phase)
	}
	return nil
}

func containsPhase(phases []Phase, p Phase) bool {
	for _, candidate := range phases {
		if candidate == p {
			return true
		}
	}
	return false
}

func (m *Machine) resetLocked() {
	m.phase = PhaseIdle
	m.input = newInput()
	m.result = nil
	m.errMessage = ""
	m.generation++
	m.guide = StepGuide{}
	m.guideToken++
}

// commitLocked captures a snapshot, releases the lock and notifies observers.
func (m *Machine) commitLocked() {
	snap := m.snapshotLocked()
	m.mu.Unlock()
	m.publish(snap)
}

func (m *Machine) publish(snap Snapshot) {
	if len(m.observers) == 0 {
		return
	}
	m.notifyMu.Lock()
	defer m.notifyMu.Unlock()
	for _, observer := range m.observers {
		observer(snap)
	}
}

func (m *Machine) currentGeneration() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.generation
}

func (m *Machine) callContext(ctx context.Context, generation uint64, phase Phase) context.Context {
	ctx = services.WithGeneration(ctx, generation)
	return services.WithPhase(ctx, string(phase))
}

// update applies fn under the lock as one demo step. Every step bumps the
// generation so a real response that raced the demo is discarded.
func (m *Machine) update(fn func()) {
	m.mu.Lock()
	fn()
	m.generation++
	m.commitLocked()
}

// notifyDemo publishes the demo flag change.
func (m *Machine) notifyDemo() {
	m.mu.Lock()
	m.commitLocked()
}
