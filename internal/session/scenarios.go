package session

import (
	_ "embed"
	"encoding/base64"
	"strings"

	"lifelens/internal/diagnosis"
)

//go:embed assets/placeholder.jpg
var placeholderJPEG []byte

// ScenarioKind labels a demo scenario.
type ScenarioKind string

const (
	ScenarioRepair        ScenarioKind = "repair"
	ScenarioFood          ScenarioKind = "food"
	ScenarioAccessibility ScenarioKind = "accessibility"
)

// Scenario is one scripted demo walkthrough.
type Scenario struct {
	Kind          ScenarioKind
	ImageURI      string
	Description   string
	HealthProfile *diagnosis.HealthProfile
	Result        diagnosis.Diagnosis
}

// Label is the upper-case kind shown in the demo banner.
func (s Scenario) Label() string {
	return strings.ToUpper(string(s.Kind))
}

func placeholderURI() string {
	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(placeholderJPEG)
}

// DefaultScenarios returns the built-in repair, food and accessibility demos.
func DefaultScenarios() []Scenario {
	image := placeholderURI()
	return []Scenario{
		{
			Kind:        ScenarioRepair,
			ImageURI:    image,
			Description: "The cable is frayed and not charging.",
			Result: &diagnosis.Repair{
				ProblemSummary:       "Frayed charging cable insulation exposing internal wires.",
				SafetyLevel:          diagnosis.SafetyMedium,
				SafetyWarning:        "Risk of short circuit or minor shock. Do not plug in while repairing.",
				EstimatedCost:        "$5 - $15",
				EstimatedTimeMinutes: 15,
				Parts: []diagnosis.Part{
					{Name: "Electrical Tape", SearchQuery: "electrical tape black"},
					{Name: "Heat Shrink Tubing", SearchQuery: "heat shrink tubing kit"},
				},
				Steps: []string{
					"Unplug the cable immediately.",
					"Clean the frayed area gently with a dry cloth.",
					"Wrap the exposed wires tightly with electrical tape.",
					"Alternatively, slide heat shrink tubing over the damage and apply heat.",
				},
				AccessibilityHint: "Visible damage to white cable. Wires exposed near the connector.",
			},
		},
		{
			Kind:        ScenarioFood,
			ImageURI:    image,
			Description: "Salad with grilled chicken and dressing.",
			HealthProfile: &diagnosis.HealthProfile{
				HeightCm:      "175",
				WeightKg:      "75",
				Age:           "30",
				Sex:           "Male",
				ActivityLevel: diagnosis.ActivityModerate,
			},
			Result: &diagnosis.Food{
				Summary:                 "Grilled Chicken Salad with Vinaigrette",
				CaloriesEstimate:        diagnosis.CaloriesEstimate{Value: 450, Unit: "kcal", Confidence: "high"},
				ServingSize:             "1 bowl (approx 350g)",
				Macros:                  diagnosis.Macros{CarbsG: 15, ProteinG: 40, FatG: 22},
				EstimatedDailyNeed:      diagnosis.DailyNeed{Value: 2400, Unit: "kcal", Method: "Mifflin-St Jeor"},
				BMI:                     diagnosis.BMI{Value: 24.5, Category: "Normal weight"},
				NutritionRecommendation: "Excellent balanced meal. High protein from chicken and healthy fats from dressing.",
				FollowUpQuestions: []string{
					"Is the dressing creamy or oil-based?",
					"Did you add croutons?",
				},
				AccessibilityHint: "Bowl of mixed greens topped with sliced grilled chicken.",
			},
		},
		{
			Kind:        ScenarioAccessibility,
			ImageURI:    image,
			Description: "Guide me step by step (Voice Mode)",
			Result: &diagnosis.Repair{
				ProblemSummary:       "Frayed charging cable (Voice Demo)",
				SafetyLevel:          diagnosis.SafetyLow,
				EstimatedCost:        "$5",
				EstimatedTimeMinutes: 10,
				Parts: []diagnosis.Part{
					{Name: "Electrical Tape", SearchQuery: "electrical tape"},
				},
				Steps: []string{
					"Unplug cable.",
					"Wrap with tape.",
					"Test connection.",
				},
				AccessibilityHint: "Voice mode active. Reading steps aloud.",
			},
		},
	}
}
