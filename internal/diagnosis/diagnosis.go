package diagnosis

import "strings"

// SafetyLevel grades how dangerous a repair is to attempt.
type SafetyLevel string

const (
	SafetyLow    SafetyLevel = "low"
	SafetyMedium SafetyLevel = "medium"
	SafetyHigh   SafetyLevel = "high"
)

// ParseSafetyLevel maps free text to a SafetyLevel. Unknown values become medium.
func ParseSafetyLevel(value string) SafetyLevel {
	switch SafetyLevel(strings.ToLower(strings.TrimSpace(value))) {
	case SafetyLow:
		return SafetyLow
	case SafetyHigh:
		return SafetyHigh
	default:
		return SafetyMedium
	}
}

// Diagnosis is implemented only by *Repair and *Food.
type Diagnosis interface {
	// IsFood reports the discriminator.
	IsFood() bool
	// Headline is the one-line summary shown and spoken for the result.
	Headline() string
	// Hint is the accessibility hint; may be empty.
	Hint() string

	sealed()
}

// Part is a replacement part with a shopping search query.
type Part struct {
	Name        string `json:"name"`
	SearchQuery string `json:"search_query"`
}

// Repair is the diagnosis for a broken or repairable object.
type Repair struct {
	ProblemSummary       string      `json:"problem_summary"`
	SafetyLevel          SafetyLevel `json:"safety_level"`
	SafetyWarning        string      `json:"safety_warning,omitempty"`
	EstimatedCost        string      `json:"estimated_cost"`
	EstimatedTimeMinutes int         `json:"estimated_time_minutes"`
	Parts                []Part      `json:"parts"`
	Steps                []string    `json:"steps"`
	AccessibilityHint    string      `json:"accessibility_hint"`
}

func (*Repair) IsFood() bool { return false }

func (r *Repair) Headline() string { return r.ProblemSummary }

func (r *Repair) Hint() string { return r.AccessibilityHint }

func (*Repair) sealed() {}

// GuidanceAllowed reports whether step-by-step repair guidance may be shown.
// High-risk repairs show the warning only.
func (r *Repair) GuidanceAllowed() bool {
	return r.SafetyLevel != SafetyHigh
}

// CaloriesEstimate is the model's calorie estimate for the pictured serving.
type CaloriesEstimate struct {
	Value      float64 `json:"value"`
	Unit       string  `json:"unit"`
	Confidence string  `json:"confidence"`
}

// Macros holds macronutrient grams.
type Macros struct {
	CarbsG   float64 `json:"carbs_g"`
	ProteinG float64 `json:"protein_g"`
	FatG     float64 `json:"fat_g"`
}

// DailyNeed is the estimated daily calorie requirement.
type DailyNeed struct {
	Value  float64 `json:"value"`
	Unit   string  `json:"unit"`
	Method string  `json:"method"`
}

// BMI is the body-mass index computed from the health profile.
type BMI struct {
	Value    float64 `json:"value"`
	Category string  `json:"category"`
}

// Food is the nutrition diagnosis for a meal.
type Food struct {
	Summary                 string           `json:"summary"`
	CaloriesEstimate        CaloriesEstimate `json:"calories_estimate"`
	ServingSize             string           `json:"serving_size"`
	Macros                  Macros           `json:"macros"`
	EstimatedDailyNeed      DailyNeed        `json:"estimated_daily_need"`
	BMI                     BMI              `json:"bmi"`
	NutritionRecommendation string           `json:"nutrition_recommendation"`
	FollowUpQuestions       []string         `json:"follow_up_questions"`
	AccessibilityHint       string           `json:"accessibility_hint"`
}

func (*Food) IsFood() bool { return true }

func (f *Food) Headline() string { return f.Summary }

func (f *Food) Hint() string { return f.AccessibilityHint }

func (*Food) sealed() {}
