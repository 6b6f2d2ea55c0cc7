package session

// Phase is the application state. Exactly one phase is active.
type Phase string

const (
	PhaseIdle               Phase = "idle"
	PhaseCheckingImage      Phase = "checking_image"
	PhaseCollectingFoodData Phase = "collecting_food_data"
	PhaseAnalyzing          Phase = "analyzing"
	PhaseResults            Phase = "results"
	PhaseTracker            Phase = "tracker"
	PhaseDashboard          Phase = "dashboard"
	PhaseError              Phase = "error"
)

// Phases lists every phase in display order.
var Phases = []Phase{
	PhaseIdle,
	PhaseCheckingImage,
	PhaseCollectingFoodData,
	PhaseAnalyzing,
	PhaseResults,
	PhaseTracker,
	PhaseDashboard,
	PhaseError,
}

func (p Phase) String() string { return string(p) }

