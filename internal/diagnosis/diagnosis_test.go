package diagnosis_test

import (
	"errors"
	"reflect"
	"testing"

	"lifelens/internal/diagnosis"
	"lifelens/internal/services"
)

func TestUnmarshalSelectsRepairVariant(t *testing.T) {
	payload := []byte(`{
		"is_food": false,
		"problem_summary": " Frayed charging cable ",
		"safety_level": "HIGH",
		"safety_warning": "Unplug first",
		"estimated_cost": "$10 - $20",
		"estimated_time_minutes": -5,
		"parts": [{"name": "USB-C cable", "search_query": "usb-c cable 2m"}],
		"steps": ["Unplug", "Replace"],
		"accessibility_hint": "Cable is damaged."
	}`)

	got, err := diagnosis.Unmarshal(payload)
	if err != nil {
		t.Fatalf("Unmarshal returned error: %v", err)
	}
	repair, ok := got.(*diagnosis.Repair)
	if !ok {
		t.Fatalf("expected *Repair, got %T", got)
	}
	if repair.IsFood() {
		t.Fatal("repair reported is_food")
	}
	if repair.ProblemSummary != "Frayed charging cable" {
		t.Fatalf("unexpected summary %q", repair.ProblemSummary)
	}
	if repair.SafetyLevel != diagnosis.SafetyHigh {
		t.Fatalf("unexpected safety level %q", repair.SafetyLevel)
	}
	if repair.EstimatedTimeMinutes != 0 {
		t.Fatalf("expected negative minutes clamped to 0, got %d", repair.EstimatedTimeMinutes)
	}
	if repair.GuidanceAllowed() {
		t.Fatal("expected guidance to be suppressed for high safety level")
	}
	if repair.Headline() != repair.ProblemSummary || repair.Hint() != "Cable is damaged." {
		t.Fatalf("unexpected headline/hint: %q %q", repair.Headline(), repair.Hint())
	}
}

func TestUnmarshalSelectsFoodVariant(t *testing.T) {
	payload := []byte(`{
		"is_food": true,
		"summary": "Grilled chicken salad",
		"calories_estimate": {"value": 450, "unit": "kcal", "confidence": "high"},
		"serving_size": "1 bowl",
		"macros": {"carbs_g": -1, "protein_g": 40, "fat_g": 15},
		"estimated_daily_need": {"value": 2400, "unit": "kcal", "method": "Mifflin-St Jeor"},
		"bmi": {"value": 24.5, "category": "Normal"},
		"nutrition_recommendation": "Good balance.",
		"accessibility_hint": "Healthy meal."
	}`)

	got, err := diagnosis.Unmarshal(payload)
	if err != nil {
		t.Fatalf("Unmarshal returned error: %v", err)
	}
	food, ok := got.(*diagnosis.Food)
	if !ok {
		t.Fatalf("expected *Food, got %T", got)
	}
	if !food.IsFood() {
		t.Fatal("food did not report is_food")
	}
	if food.Macros.CarbsG != 0 {
		t.Fatalf("expected negative carbs clamped to 0, got %v", food.Macros.CarbsG)
	}
	if food.EstimatedDailyNeed.Value != 2400 {
		t.Fatalf("unexpected daily need %v", food.EstimatedDailyNeed.Value)
	}
	if food.FollowUpQuestions == nil {
		t.Fatal("expected follow-up questions to default to an empty list")
	}
}

func TestUnmarshalUnknownSafetyLevelBecomesMedium(t *testing.T) {
	got, err := diagnosis.Unmarshal([]byte(`{"is_food": false, "safety_level": "extreme"}`))
	if err != nil {
		t.Fatalf("Unmarshal returned error: %v", err)
	}
	repair := got.(*diagnosis.Repair)
	if repair.SafetyLevel != diagnosis.SafetyMedium {
		t.Fatalf("expected medium, got %q", repair.SafetyLevel)
	}
	if !repair.GuidanceAllowed() {
		t.Fatal("expected guidance for medium safety level")
	}
}

func TestUnmarshalRoundsLooseMinutes(t *testing.T) {
	cases := map[string]int{
		`45.5`:   46,
		`"30"`:   30,
		`" 12 "`: 12,
		`null`:   0,
		`-3`:     0,
	}
	for raw, want := range cases {
		got, err := diagnosis.Unmarshal([]byte(`{"is_food": false, "problem_summary": "Hinge", "estimated_time_minutes": ` + raw + `}`))
		if err != nil {
			t.Fatalf("%s: Unmarshal returned error: %v", raw, err)
		}
		if minutes := got.(*diagnosis.Repair).EstimatedTimeMinutes; minutes != want {
			t.Fatalf("%s: expected %d minutes, got %d", raw, want, minutes)
		}
	}
}

func TestUnmarshalAcceptsNumericStrings(t *testing.T) {
	payload := `{
		"is_food": true,
		"summary": "Salad",
		"calories_estimate": {"value": "450", "unit": "kcal", "confidence": "high"},
		"macros": {"carbs_g": "20.5", "protein_g": 12, "fat_g": null},
		"estimated_daily_need": {"value": "2200", "unit": "kcal", "method": "Mifflin-St Jeor"},
		"bmi": {"value": "22.4", "category": "Normal"}
	}`
	got, err := diagnosis.Unmarshal([]byte(payload))
	if err != nil {
		t.Fatalf("Unmarshal returned error: %v", err)
	}
	food := got.(*diagnosis.Food)
	if food.CaloriesEstimate.Value != 450 || food.CaloriesEstimate.Unit != "kcal" {
		t.Fatalf("unexpected calories %+v", food.CaloriesEstimate)
	}
	if food.Macros != (diagnosis.Macros{CarbsG: 20.5, ProteinG: 12}) {
		t.Fatalf("unexpected macros %+v", food.Macros)
	}
	if food.EstimatedDailyNeed.Value != 2200 || food.EstimatedDailyNeed.Method != "Mifflin-St Jeor" {
		t.Fatalf("unexpected daily need %+v", food.EstimatedDailyNeed)
	}
	if food.BMI.Value != 22.4 || food.BMI.Category != "Normal" {
		t.Fatalf("unexpected bmi %+v", food.BMI)
	}

	if _, err := diagnosis.Unmarshal([]byte(`{"is_food": true, "calories_estimate": {"value": "lots"}}`)); err == nil {
		t.Fatal("expected an error for a non-numeric value")
	}
}

func TestUnmarshalRejectsMissingDiscriminator(t *testing.T) {
	_, err := diagnosis.Unmarshal([]byte(`{"summary": "no flag"}`))
	if !errors.Is(err, diagnosis.ErrMissingDiscriminator) {
		t.Fatalf("expected ErrMissingDiscriminator, got %v", err)
	}
	if _, err := diagnosis.Unmarshal([]byte(`not json`)); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestMarshalRoundTrip(t *testing.T) {
	cases := []diagnosis.Diagnosis{
		&diagnosis.Repair{
			ProblemSummary:       "Loose hinge",
			SafetyLevel:          diagnosis.SafetyLow,
			EstimatedCost:        "$5",
			EstimatedTimeMinutes: 10,
			Parts:                []diagnosis.Part{{Name: "Screw", SearchQuery: "hinge screw"}},
			Steps:                []string{"Tighten the screw"},
		},
		&diagnosis.Food{
			Summary:           "Apple",
			CaloriesEstimate:  diagnosis.CaloriesEstimate{Value: 95, Unit: "kcal", Confidence: "high"},
			Macros:            diagnosis.Macros{CarbsG: 25, ProteinG: 0.5, FatG: 0.3},
			FollowUpQuestions: []string{"Was it large?"},
		},
	}
	for _, want := range cases {
		data, err := diagnosis.Marshal(want)
		if err != nil {
			t.Fatalf("Marshal returned error: %v", err)
		}
		got, err := diagnosis.Unmarshal(data)
		if err != nil {
			t.Fatalf("Unmarshal returned error: %v", err)
		}
		if !reflect.DeepEqual(got, want) {
			t.Fatalf("round trip mismatch:\n got %#v\nwant %#v", got, want)
		}
	}
}

func TestHealthProfileValidate(t *testing.T) {
	tests := []struct {
		name    string
		profile diagnosis.HealthProfile
		ok      bool
	}{
		{"complete", diagnosis.HealthProfile{HeightCm: "175", WeightKg: "75"}, true},
		{"decimal", diagnosis.HealthProfile{HeightCm: "170.5", WeightKg: " 68.2 "}, true},
		{"missing height", diagnosis.HealthProfile{WeightKg: "75"}, false},
		{"missing weight", diagnosis.HealthProfile{HeightCm: "175"}, false},
		{"zero", diagnosis.HealthProfile{HeightCm: "0", WeightKg: "75"}, false},
		{"text", diagnosis.HealthProfile{HeightCm: "tall", WeightKg: "75"}, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.profile.Validate()
			if tc.ok && err != nil {
				t.Fatalf("expected valid profile, got %v", err)
			}
			if !tc.ok {
				if !errors.Is(err, services.ErrValidation) {
					t.Fatalf("expected validation error, got %v", err)
				}
				if services.UserMessage(err) != "Please enter your height and weight." {
					t.Fatalf("unexpected user message %q", services.UserMessage(err))
				}
			}
		})
	}
}

func TestHealthProfileNormalizedDefaultsActivity(t *testing.T) {
	got := diagnosis.HealthProfile{HeightCm: " 180 ", ActivityLevel: "active"}.Normalized()
	if got.HeightCm != "180" || got.ActivityLevel != diagnosis.ActivityActive {
		t.Fatalf("unexpected normalized profile %#v", got)
	}
	if got := (diagnosis.HealthProfile{}).Normalized().ActivityLevel; got != diagnosis.ActivityModerate {
		t.Fatalf("expected default Moderate, got %q", got)
	}
}
