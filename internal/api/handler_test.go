package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"lifelens/internal/api"
	"lifelens/internal/diagnosis"
	"lifelens/internal/records"
	"lifelens/internal/session"
	"lifelens/internal/testsupport"
)

type stubService struct {
	mu         sync.Mutex
	isFood     bool
	result     diagnosis.Diagnosis
	analyzeErr error
	// entered and release, when set, hold AnalyzeImage until release closes
	// or the call context ends.
	entered chan struct{}
	release chan struct{}
}

func (s *stubService) ClassifyImage(context.Context, diagnosis.Image) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isFood, nil
}

func (s *stubService) AnalyzeImage(ctx context.Context, _ diagnosis.Image, _ string, _ *diagnosis.HealthProfile) (diagnosis.Diagnosis, error) {
	if s.release != nil {
		close(s.entered)
		select {
		case <-s.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result, s.analyzeErr
}

// waitClock blocks demo pacing until the run is cancelled.
type waitClock struct{}

func (waitClock) Sleep(ctx context.Context, _ time.Duration) error {
	<-ctx.Done()
	return ctx.Err()
}

type fixture struct {
	handler http.Handler
	machine *session.Machine
	demo    *session.Sequencer
	store   *records.Store
	service *stubService
}

func newFixture(t *testing.T, service *stubService, opts ...api.HandlerOption) *fixture {
	t.Helper()
	store := records.New(records.NewMemoryBackend())
	machine := session.NewMachine(service, store)
	demo := session.NewSequencer(machine, session.WithClock(waitClock{}))
	t.Cleanup(func() {
		demo.Cancel()
		demo.Wait()
	})
	now := func() time.Time { return time.Date(2026, 5, 1, 12, 0, 0, 0, time.Local) }
	opts = append([]api.HandlerOption{api.WithClock(now)}, opts...)
	return &fixture{
		handler: api.NewHandler(machine, demo, store, nil, opts...),
		machine: machine,
		demo:    demo,
		store:   store,
		service: service,
	}
}

func (f *fixture) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	contentType := ""
	switch v := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case []byte:
		reader = bytes.NewReader(v)
		contentType = "image/png"
	default:
		data, err := json.Marshal(v)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
		contentType = "application/json"
	}
	req := httptest.NewRequest(method, path, reader)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	f.handler.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %s: %v", w.Body.String(), err)
	}
	return out
}

func expectStatus(t *testing.T, w *httptest.ResponseRecorder, want int) {
	t.Helper()
	if w.Code != want {
		t.Fatalf("expected %d, got %d: %s", want, w.Code, w.Body.String())
	}
}

func TestSessionStartsIdle(t *testing.T) {
	f := newFixture(t, &stubService{})
	w := f.do(t, http.MethodGet, "/api/session", nil)
	expectStatus(t, w, http.StatusOK)
	state := decode[api.SessionState](t, w)
	if state.Phase != "idle" || state.HasImage || string(state.Diagnosis) != "null" {
		t.Fatalf("unexpected state %+v", state)
	}
	if state.HealthProfile.ActivityLevel != "Moderate" {
		t.Fatalf("expected default activity level, got %q", state.HealthProfile.ActivityLevel)
	}
	if w.Header().Get("X-Request-ID") == "" {
		t.Fatal("expected a request id header")
	}
}

func TestImageUpload(t *testing.T) {
	f := newFixture(t, &stubService{isFood: true})

	w := f.do(t, http.MethodPost, "/api/session/image", testsupport.PNGBytes())
	expectStatus(t, w, http.StatusOK)
	if state := decode[api.SessionState](t, w); state.Phase != "collecting_food_data" || !state.HasImage {
		t.Fatalf("unexpected state %+v", state)
	}

	f.do(t, http.MethodPost, "/api/session/reset", nil)
	uri := diagnosis.Image{Data: testsupport.PNGBytes(), MIMEType: "image/png"}.DataURI()
	w = f.do(t, http.MethodPost, "/api/session/image", api.ImageRequest{Image: uri})
	expectStatus(t, w, http.StatusOK)

	w = f.do(t, http.MethodPost, "/api/session/image", []byte("not an image"))
	expectStatus(t, w, http.StatusBadRequest)
	if resp := decode[api.ErrorResponse](t, w); resp.Error != "That file does not look like an image." {
		t.Fatalf("unexpected error %q", resp.Error)
	}
}

func TestSubmitValidation(t *testing.T) {
	f := newFixture(t, &stubService{})
	w := f.do(t, http.MethodPost, "/api/session/submit", nil)
	expectStatus(t, w, http.StatusBadRequest)
	if resp := decode[api.ErrorResponse](t, w); resp.Error != "Please upload an image first." {
		t.Fatalf("unexpected error %q", resp.Error)
	}

	w = f.do(t, http.MethodPost, "/api/session/description", "not an object")
	expectStatus(t, w, http.StatusBadRequest)
}

func TestFoodFlow(t *testing.T) {
	food := &diagnosis.Food{
		Summary:            "Pancakes",
		CaloriesEstimate:   diagnosis.CaloriesEstimate{Value: 600},
		Macros:             diagnosis.Macros{CarbsG: 80, ProteinG: 12, FatG: 20},
		EstimatedDailyNeed: diagnosis.DailyNeed{Value: 2100},
	}
	f := newFixture(t, &stubService{isFood: true, result: food})

	expectStatus(t, f.do(t, http.MethodPost, "/api/session/image", testsupport.PNGBytes()), http.StatusOK)
	expectStatus(t, f.do(t, http.MethodPost, "/api/session/dictation", api.TextRequest{Text: "with syrup"}), http.StatusOK)

	w := f.do(t, http.MethodPost, "/api/session/submit", nil)
	expectStatus(t, w, http.StatusBadRequest)
	if resp := decode[api.ErrorResponse](t, w); resp.Error != "Please enter your height and weight." {
		t.Fatalf("unexpected error %q", resp.Error)
	}

	w = f.do(t, http.MethodPut, "/api/session/health", api.HealthProfile{HeightCm: "170", WeightKg: "68", ActivityLevel: "active"})
	expectStatus(t, w, http.StatusOK)
	if state := decode[api.SessionState](t, w); state.HealthProfile.ActivityLevel != "Active" {
		t.Fatalf("expected normalized activity, got %+v", state.HealthProfile)
	}

	w = f.do(t, http.MethodPost, "/api/session/submit", nil)
	expectStatus(t, w, http.StatusOK)
	state := decode[api.SessionState](t, w)
	if state.Phase != "results" {
		t.Fatalf("expected results, got %s", state.Phase)
	}
	result, err := diagnosis.Unmarshal(state.Diagnosis)
	if err != nil || !result.IsFood() {
		t.Fatalf("expected food diagnosis, got %v (%v)", result, err)
	}

	meals := decode[api.MealListResponse](t, f.do(t, http.MethodGet, "/api/meals", nil))
	if len(meals.Meals) != 1 || meals.Meals[0].Name != "Pancakes" {
		t.Fatalf("unexpected meals %+v", meals)
	}
	today := decode[api.TodayResponse](t, f.do(t, http.MethodGet, "/api/meals/today", nil))
	if today.Calories != 600 || today.DailyGoal != 2100 || today.Remaining != 1500 || today.Date != "2026-05-01" {
		t.Fatalf("unexpected today %+v", today)
	}
	metrics := decode[api.MetricsResponse](t, f.do(t, http.MethodGet, "/api/metrics", nil))
	if metrics.TotalFoodItems != 1 || metrics.AverageCalorieReduction != 600 {
		t.Fatalf("unexpected metrics %+v", metrics)
	}
	found := decode[api.MealListResponse](t, f.do(t, http.MethodGet, "/api/meals/search?q=pancake", nil))
	if len(found.Meals) != 1 {
		t.Fatalf("expected search hit, got %+v", found)
	}

	w = f.do(t, http.MethodGet, "/api/export/meals", nil)
	expectStatus(t, w, http.StatusOK)
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, records.MealsExportName) {
		t.Fatalf("unexpected disposition %q", cd)
	}
	if exported := decode[[]records.MealRecord](t, w); len(exported) != 1 {
		t.Fatalf("unexpected export %+v", exported)
	}

	expectStatus(t, f.do(t, http.MethodDelete, "/api/meals?metrics=true", nil), http.StatusNoContent)
	if meals := f.store.Meals(context.Background()); len(meals) != 0 {
		t.Fatalf("expected cleared meals, got %+v", meals)
	}
	if m := f.store.Metrics(context.Background()); m != (records.Metrics{}) {
		t.Fatalf("expected reset metrics, got %+v", m)
	}
}

func TestSubmitFailureHidesCause(t *testing.T) {
	f := newFixture(t, &stubService{analyzeErr: errors.New("provider said: key sk-secret revoked")})
	expectStatus(t, f.do(t, http.MethodPost, "/api/session/image", testsupport.PNGBytes()), http.StatusOK)

	w := f.do(t, http.MethodPost, "/api/session/submit", nil)
	expectStatus(t, w, http.StatusOK)
	if strings.Contains(w.Body.String(), "sk-secret") {
		t.Fatalf("failure detail leaked: %s", w.Body.String())
	}
	state := decode[api.SessionState](t, w)
	if state.Phase != "error" || state.ErrorMessage != session.AnalysisFailedMessage {
		t.Fatalf("unexpected state %+v", state)
	}
}

func TestSubmitSurvivesClientDisconnect(t *testing.T) {
	service := &stubService{
		result:  &diagnosis.Repair{ProblemSummary: "Loose hinge", SafetyLevel: diagnosis.SafetyLow},
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
	f := newFixture(t, service)
	expectStatus(t, f.do(t, http.MethodPost, "/api/session/image", testsupport.PNGBytes()), http.StatusOK)

	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodPost, "/api/session/submit", nil).WithContext(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		f.handler.ServeHTTP(httptest.NewRecorder(), req)
	}()

	<-service.entered
	cancel()
	close(service.release)
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("submit did not return")
	}

	snap := f.machine.Snapshot()
	if snap.Phase != session.PhaseResults || snap.ErrorMessage != "" {
		t.Fatalf("expected results after disconnect, got phase=%s err=%q", snap.Phase, snap.ErrorMessage)
	}
}

func TestNavigate(t *testing.T) {
	f := newFixture(t, &stubService{})

	w := f.do(t, http.MethodPost, "/api/session/navigate", api.NavigateRequest{Action: "open_dashboard"})
	expectStatus(t, w, http.StatusOK)
	if state := decode[api.SessionState](t, w); state.Phase != "dashboard" {
		t.Fatalf("expected dashboard, got %s", state.Phase)
	}
	expectStatus(t, f.do(t, http.MethodPost, "/api/session/navigate", api.NavigateRequest{Action: "open_tracker"}), http.StatusConflict)
	expectStatus(t, f.do(t, http.MethodPost, "/api/session/navigate", api.NavigateRequest{Action: "sideways"}), http.StatusBadRequest)
	expectStatus(t, f.do(t, http.MethodPost, "/api/session/navigate", api.NavigateRequest{Action: "close_dashboard"}), http.StatusOK)
}

func TestRepairStepPlayer(t *testing.T) {
	repair := &diagnosis.Repair{
		ProblemSummary: "Dripping tap",
		SafetyLevel:    diagnosis.SafetyMedium,
		Steps:          []string{"Close the valve", "Replace the washer"},
	}
	f := newFixture(t, &stubService{result: repair})

	expectStatus(t, f.do(t, http.MethodPost, "/api/session/steps/play", nil), http.StatusConflict)

	expectStatus(t, f.do(t, http.MethodPost, "/api/session/image", testsupport.PNGBytes()), http.StatusOK)
	expectStatus(t, f.do(t, http.MethodPost, "/api/session/submit", nil), http.StatusOK)

	expectStatus(t, f.do(t, http.MethodPost, "/api/session/steps/speak", api.StepRequest{Index: 1}), http.StatusOK)
	if guide := f.machine.Snapshot().Guide; guide.Index != 1 {
		t.Fatalf("expected step 2 selected, got %+v", guide)
	}
	expectStatus(t, f.do(t, http.MethodPost, "/api/session/steps/pause", nil), http.StatusOK)
	w := f.do(t, http.MethodPost, "/api/session/steps/prev", nil)
	expectStatus(t, w, http.StatusOK)
	if state := decode[api.SessionState](t, w); state.StepGuide != (api.StepGuide{Index: 0}) {
		t.Fatalf("unexpected step guide %+v", state.StepGuide)
	}

	w = f.do(t, http.MethodPost, "/api/session/steps/speak", api.StepRequest{Index: 9})
	expectStatus(t, w, http.StatusBadRequest)
	if resp := decode[api.ErrorResponse](t, w); resp.Error != "That step does not exist." {
		t.Fatalf("unexpected error %q", resp.Error)
	}
	expectStatus(t, f.do(t, http.MethodPost, "/api/session/steps/rewind", nil), http.StatusBadRequest)

	repair.SafetyLevel = diagnosis.SafetyHigh
	w = f.do(t, http.MethodPost, "/api/session/steps/play", nil)
	expectStatus(t, w, http.StatusBadRequest)
}

func TestDemoLifecycle(t *testing.T) {
	f := newFixture(t, &stubService{})

	w := f.do(t, http.MethodPost, "/api/demo/start", nil)
	expectStatus(t, w, http.StatusAccepted)
	if state := decode[api.DemoState](t, w); !state.Active {
		t.Fatalf("expected active demo, got %+v", state)
	}
	expectStatus(t, f.do(t, http.MethodPost, "/api/demo/start", nil), http.StatusConflict)
	expectStatus(t, f.do(t, http.MethodPost, "/api/session/dictation", api.TextRequest{Text: "hi"}), http.StatusConflict)
	if state := decode[api.SessionState](t, f.do(t, http.MethodGet, "/api/session", nil)); !state.DemoActive {
		t.Fatalf("expected demo flag, got %+v", state)
	}

	expectStatus(t, f.do(t, http.MethodPost, "/api/demo/stop", nil), http.StatusOK)
	f.demo.Wait()
	state := decode[api.DemoState](t, f.do(t, http.MethodGet, "/api/demo", nil))
	if state.Status != "cancelled" || state.Banner != "Demo cancelled." || state.Active {
		t.Fatalf("unexpected demo state %+v", state)
	}
}

func TestTokenAuth(t *testing.T) {
	f := newFixture(t, &stubService{}, api.WithToken("s3cret"))

	expectStatus(t, f.do(t, http.MethodGet, "/api/session", nil), http.StatusUnauthorized)

	req := httptest.NewRequest(http.MethodGet, "/api/session", nil)
	req.Header.Set("Authorization", "Bearer s3cret")
	w := httptest.NewRecorder()
	f.handler.ServeHTTP(w, req)
	expectStatus(t, w, http.StatusOK)
}
