package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strings"
	"time"

	"lifelens/internal/diagnosis"
	"lifelens/internal/logging"
	"lifelens/internal/records"
	"lifelens/internal/services"
	"lifelens/internal/session"
)

const maxJSONBody = 1 << 20

// RecordStore is the read side of the record store plus the bulk clears.
type RecordStore interface {
	Meals(ctx context.Context) []records.MealRecord
	DailyGoal(ctx context.Context) int
	TodaySummary(ctx context.Context, now time.Time) records.Summary
	Metrics(ctx context.Context) records.Metrics
	SearchMeals(ctx context.Context, query string) ([]records.MealRecord, error)
	ClearHistory(ctx context.Context) error
	ResetMetrics(ctx context.Context) error
	ExportMeals(ctx context.Context, w io.Writer) error
	ExportMetrics(ctx context.Context, w io.Writer) error
}

// DemoController starts and stops the demo sequence.
type DemoController interface {
	Start(ctx context.Context) bool
	Cancel()
	Status() session.DemoStatus
	Banner() string
}

// HandlerOption customizes the handler.
type HandlerOption func(*handler)

// WithToken requires "Authorization: Bearer <token>" on every request.
func WithToken(token string) HandlerOption {
	return func(h *handler) {
		h.token = strings.TrimSpace(token)
	}
}

// WithBaseContext sets the context demo runs are bound to. Request contexts
// end with the request, so demos started over HTTP use this instead.
func WithBaseContext(ctx context.Context) HandlerOption {
	return func(h *handler) {
		if ctx != nil {
			h.baseCtx = ctx
		}
	}
}

// WithClock overrides the time source used for today's summary.
func WithClock(now func() time.Time) HandlerOption {
	return func(h *handler) {
		if now != nil {
			h.now = now
		}
	}
}

type handler struct {
	machine *session.Machine
	demo    DemoController
	store   RecordStore
	logger  *slog.Logger
	token   string
	baseCtx context.Context
	now     func() time.Time
}

// NewHandler returns the HTTP API for machine, demo and store.
func NewHandler(machine *session.Machine, demo DemoController, store RecordStore, logger *slog.Logger, opts ...HandlerOption) http.Handler {
	h := &handler{
		machine: machine,
		demo:    demo,
		store:   store,
		logger:  logging.NewComponentLogger(logger, "api"),
		baseCtx: context.Background(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/session", h.handleSession)
	mux.HandleFunc("POST /api/session/image", h.handleImage)
	mux.HandleFunc("POST /api/session/description", h.handleDescription)
	mux.HandleFunc("POST /api/session/dictation", h.handleDictation)
	mux.HandleFunc("POST /api/session/listen", h.handleListen)
	mux.HandleFunc("PUT /api/session/health", h.handleHealth)
	mux.HandleFunc("POST /api/session/submit", h.handleSubmit)
	mux.HandleFunc("POST /api/session/reset", h.handleReset)
	mux.HandleFunc("POST /api/session/navigate", h.handleNavigate)
	mux.HandleFunc("POST /api/session/steps/{action}", h.handleSteps)
	mux.HandleFunc("GET /api/demo", h.handleDemoStatus)
	mux.HandleFunc("POST /api/demo/start", h.handleDemoStart)
	mux.HandleFunc("POST /api/demo/stop", h.handleDemoStop)
	mux.HandleFunc("GET /api/metrics", h.handleMetrics)
	mux.HandleFunc("GET /api/meals", h.handleMeals)
	mux.HandleFunc("DELETE /api/meals", h.handleClearMeals)
	mux.HandleFunc("GET /api/meals/today", h.handleToday)
	mux.HandleFunc("GET /api/meals/search", h.handleSearch)
	mux.HandleFunc("GET /api/export/meals", h.handleExportMeals)
	mux.HandleFunc("GET /api/export/metrics", h.handleExportMetrics)

	return requestIDMiddleware(h.logger, authMiddleware(h.token, mux))
}

func (h *handler) handleSession(w http.ResponseWriter, r *http.Request) {
	h.writeSession(w, r, http.StatusOK)
}

func (h *handler) handleImage(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, diagnosis.MaxImageBytes*2)
	data, err := readImage(r)
	if err != nil {
		h.writeFailure(w, r, err)
		return
	}
	if err := h.machine.SelectImage(context.WithoutCancel(r.Context()), data); err != nil {
		h.writeFailure(w, r, err)
		return
	}
	h.writeSession(w, r, http.StatusOK)
}

// readImage accepts a raw image body or a JSON ImageRequest.
func readImage(r *http.Request) ([]byte, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		var req ImageRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return nil, services.Validation("The request body is not valid JSON.")
		}
		image, err := diagnosis.ParseDataURI(req.Image)
		if err != nil {
			return nil, err
		}
		return image.Data, nil
	}
	data, err := io.ReadAll(r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, services.Validation("That image is too large. Please choose a smaller photo.")
		}
		return nil, fmt.Errorf("read image: %w", err)
	}
	return data, nil
}

func (h *handler) handleDescription(w http.ResponseWriter, r *http.Request) {
	var req TextRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeFailure(w, r, err)
		return
	}
	if err := h.machine.SetDescription(req.Text); err != nil {
		h.writeFailure(w, r, err)
		return
	}
	h.writeSession(w, r, http.StatusOK)
}

func (h *handler) handleDictation(w http.ResponseWriter, r *http.Request) {
	var req TextRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeFailure(w, r, err)
		return
	}
	if err := h.machine.Dictate(req.Text); err != nil {
		h.writeFailure(w, r, err)
		return
	}
	h.writeSession(w, r, http.StatusOK)
}

func (h *handler) handleListen(w http.ResponseWriter, r *http.Request) {
	if err := h.machine.Listen(r.Context()); err != nil {
		h.writeFailure(w, r, err)
		return
	}
	h.writeSession(w, r, http.StatusOK)
}

func (h *handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	var req HealthProfile
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeFailure(w, r, err)
		return
	}
	if err := h.machine.SetHealthProfile(ToHealthProfile(req)); err != nil {
		h.writeFailure(w, r, err)
		return
	}
	h.writeSession(w, r, http.StatusOK)
}

// handleSubmit reports analysis failures through the session state; the
// underlying cause is only logged. The analysis outlives a disconnected
// client so the session still reaches its result.
func (h *handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	err := h.machine.Submit(context.WithoutCancel(r.Context()))
	if err != nil && !errors.Is(err, session.ErrAnalysisFailed) {
		h.writeFailure(w, r, err)
		return
	}
	h.writeSession(w, r, http.StatusOK)
}

func (h *handler) handleReset(w http.ResponseWriter, r *http.Request) {
	h.machine.Reset()
	h.writeSession(w, r, http.StatusOK)
}

func (h *handler) handleNavigate(w http.ResponseWriter, r *http.Request) {
	var req NavigateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeFailure(w, r, err)
		return
	}
	var err error
	switch strings.ToLower(strings.TrimSpace(req.Action)) {
	case "open_dashboard":
		err = h.machine.OpenDashboard()
	case "close_dashboard":
		err = h.machine.CloseDashboard()
	case "open_tracker":
		err = h.machine.OpenTracker()
	case "close_tracker":
		err = h.machine.CloseTracker()
	default:
		err = services.Validation(fmt.Sprintf("Unknown navigation action %q.", req.Action))
	}
	if err != nil {
		h.writeFailure(w, r, err)
		return
	}
	h.writeSession(w, r, http.StatusOK)
}

// handleSteps drives the repair step player: speak {"index": n}, play,
// pause, next and prev.
func (h *handler) handleSteps(w http.ResponseWriter, r *http.Request) {
	var err error
	switch action := r.PathValue("action"); action {
	case "speak":
		var req StepRequest
		if err = decodeJSON(w, r, &req); err == nil {
			_, err = h.machine.SpeakStep(req.Index)
		}
	case "play":
		_, err = h.machine.PlayStep()
	case "pause":
		err = h.machine.PauseStep()
	case "next":
		err = h.machine.NextStep()
	case "prev":
		err = h.machine.PrevStep()
	default:
		err = services.Validation(fmt.Sprintf("Unknown step action %q.", action))
	}
	if err != nil {
		h.writeFailure(w, r, err)
		return
	}
	h.writeSession(w, r, http.StatusOK)
}

func (h *handler) handleDemoStatus(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, FromDemo(h.demo.Status(), h.demo.Banner()))
}

func (h *handler) handleDemoStart(w http.ResponseWriter, r *http.Request) {
	if !h.demo.Start(h.baseCtx) {
		h.writeError(w, http.StatusConflict, session.ErrDemoActive.Error())
		return
	}
	logging.WithContext(r.Context(), h.logger).Info("demo started over api")
	h.writeJSON(w, http.StatusAccepted, FromDemo(session.DemoRunning, h.demo.Banner()))
}

func (h *handler) handleDemoStop(w http.ResponseWriter, _ *http.Request) {
	h.demo.Cancel()
	h.writeJSON(w, http.StatusOK, FromDemo(h.demo.Status(), h.demo.Banner()))
}

func (h *handler) handleMetrics(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, FromMetrics(h.store.Metrics(r.Context())))
}

func (h *handler) handleMeals(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, MealListResponse{Meals: h.store.Meals(r.Context())})
}

func (h *handler) handleToday(w http.ResponseWriter, r *http.Request) {
	now := h.now()
	summary := h.store.TodaySummary(r.Context(), now)
	goal := h.store.DailyGoal(r.Context())
	h.writeJSON(w, http.StatusOK, FromSummary(now, summary, goal))
}

func (h *handler) handleSearch(w http.ResponseWriter, r *http.Request) {
	meals, err := h.store.SearchMeals(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		h.writeFailure(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, MealListResponse{Meals: meals})
}

// handleClearMeals removes the meal history and goal; ?metrics=true also
// resets the dashboard totals.
func (h *handler) handleClearMeals(w http.ResponseWriter, r *http.Request) {
	if err := h.store.ClearHistory(r.Context()); err != nil {
		h.writeFailure(w, r, err)
		return
	}
	if flag := r.URL.Query().Get("metrics"); flag == "1" || strings.EqualFold(flag, "true") {
		if err := h.store.ResetMetrics(r.Context()); err != nil {
			h.writeFailure(w, r, err)
			return
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) handleExportMeals(w http.ResponseWriter, r *http.Request) {
	h.writeExport(w, r, records.MealsExportName, h.store.ExportMeals)
}

func (h *handler) handleExportMetrics(w http.ResponseWriter, r *http.Request) {
	h.writeExport(w, r, records.MetricsExportName, h.store.ExportMetrics)
}

func (h *handler) writeExport(w http.ResponseWriter, r *http.Request, name string, export func(context.Context, io.Writer) error) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": name}))
	if err := export(r.Context(), w); err != nil {
		logging.WithContext(r.Context(), h.logger).Error("export failed", logging.Error(err))
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, target any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := json.NewDecoder(r.Body).Decode(target); err != nil {
		return services.Validation("The request body is not valid JSON.")
	}
	return nil
}

func (h *handler) writeSession(w http.ResponseWriter, r *http.Request, status int) {
	state, err := FromSnapshot(h.machine.Snapshot())
	if err != nil {
		h.writeFailure(w, r, err)
		return
	}
	h.writeJSON(w, status, state)
}

// writeFailure maps err to a status code. Only validation messages and
// transition errors reach the client verbatim.
func (h *handler) writeFailure(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, session.ErrDemoActive), errors.Is(err, session.ErrIllegalTransition):
		h.writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, services.ErrValidation):
		h.writeError(w, http.StatusBadRequest, services.UserMessage(err))
	default:
		logging.ErrorWithContext(logging.WithContext(r.Context(), h.logger), "api request failed", "api_request_failed",
			logging.String("path", r.URL.Path),
			logging.Error(err),
		)
		h.writeError(w, http.StatusInternalServerError, services.UserMessage(err))
	}
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to encode response", logging.Error(err))
	}
}

func (h *handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, ErrorResponse{Error: message})
}
