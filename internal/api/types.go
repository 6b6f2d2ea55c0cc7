package api

import (
	"encoding/json"

	"lifelens/internal/records"
)

// HealthProfile is the transport form of diagnosis.HealthProfile.
type HealthProfile struct {
	HeightCm      string `json:"heightCm"`
	WeightKg      string `json:"weightKg"`
	Age           string `json:"age,omitempty"`
	Sex           string `json:"sex,omitempty"`
	ActivityLevel string `json:"activityLevel,omitempty"`
}

// SessionState describes the current session in a transport-friendly format.
type SessionState struct {
	Phase           string          `json:"phase"`
	HasImage        bool            `json:"hasImage"`
	ImagePreview    string          `json:"imagePreview,omitempty"`
	Description     string          `json:"description"`
	HealthProfile   HealthProfile   `json:"healthProfile"`
	Diagnosis       json.RawMessage `json:"diagnosis"`
	GuidanceAllowed bool            `json:"guidanceAllowed"`
	ErrorMessage    string          `json:"errorMessage,omitempty"`
	DemoActive      bool            `json:"demoActive"`
	Generation      uint64          `json:"generation"`
	StepGuide       StepGuide       `json:"stepGuide"`
}

// StepGuide is the position of the voice-guided repair step player.
type StepGuide struct {
	Index   int  `json:"index"`
	Playing bool `json:"playing"`
}

// DemoState reports the demo sequencer status.
type DemoState struct {
	Status string `json:"status"`
	Banner string `json:"banner,omitempty"`
	Active bool   `json:"active"`
}

// MetricsResponse carries the dashboard totals.
type MetricsResponse struct {
	TotalImagesAnalyzed     int     `json:"totalImagesAnalyzed"`
	TotalFoodItems          int     `json:"totalFoodItems"`
	TotalRepairs            int     `json:"totalRepairs"`
	AverageCalorieReduction float64 `json:"averageCalorieReduction"`
	AverageRepairCost       float64 `json:"averageRepairCost"`
	AverageRepairTime       float64 `json:"averageRepairTime"`
	SafetyHighCount         int     `json:"safetyHighCount"`
	SafetyLowMediumCount    int     `json:"safetyLowMediumCount"`
}

// TodayResponse summarizes today's intake against the daily goal.
type TodayResponse struct {
	Date      string         `json:"date"`
	MealCount int            `json:"mealCount"`
	Calories  float64        `json:"calories"`
	Macros    records.Macros `json:"macros"`
	DailyGoal int            `json:"dailyGoal"`
	Remaining float64        `json:"remaining"`
	Progress  float64        `json:"progress"`
}

// MealListResponse wraps a collection of meal records.
type MealListResponse struct {
	Meals []records.MealRecord `json:"meals"`
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}

// TextRequest carries free text for the description and dictation endpoints.
type TextRequest struct {
	Text string `json:"text"`
}

// ImageRequest carries an image as a data URI or bare base64 payload.
type ImageRequest struct {
	Image string `json:"image"`
}

// NavigateRequest names a navigation action: open_dashboard,
// close_dashboard, open_tracker or close_tracker.
type NavigateRequest struct {
	Action string `json:"action"`
}

// StepRequest selects the repair step to read aloud.
type StepRequest struct {
	Index int `json:"index"`
}
