package api

import (
	"encoding/json"
	"time"

	"lifelens/internal/diagnosis"
	"lifelens/internal/records"
	"lifelens/internal/session"
)

// FromSnapshot converts a session snapshot for transport.
func FromSnapshot(snap session.Snapshot) (SessionState, error) {
	state := SessionState{
		Phase:           string(snap.Phase),
		HasImage:        snap.Input.HasImage(),
		ImagePreview:    snap.Input.Preview,
		Description:     snap.Input.Description,
		HealthProfile:   FromHealthProfile(snap.Input.HealthProfile),
		Diagnosis:       json.RawMessage("null"),
		GuidanceAllowed: snap.GuidanceAllowed(),
		ErrorMessage:    snap.ErrorMessage,
		DemoActive:      snap.DemoActive,
		Generation:      snap.Generation,
		StepGuide:       StepGuide{Index: snap.Guide.Index, Playing: snap.Guide.Playing},
	}
	if snap.Diagnosis != nil {
		data, err := diagnosis.Marshal(snap.Diagnosis)
		if err != nil {
			return SessionState{}, err
		}
		state.Diagnosis = data
	}
	return state, nil
}

// FromHealthProfile converts a health profile for transport.
func FromHealthProfile(p diagnosis.HealthProfile) HealthProfile {
	return HealthProfile{
		HeightCm:      p.HeightCm,
		WeightKg:      p.WeightKg,
		Age:           p.Age,
		Sex:           p.Sex,
		ActivityLevel: string(p.ActivityLevel),
	}
}

// ToHealthProfile converts a transport profile back to the domain type.
func ToHealthProfile(p HealthProfile) diagnosis.HealthProfile {
	return diagnosis.HealthProfile{
		HeightCm:      p.HeightCm,
		WeightKg:      p.WeightKg,
		Age:           p.Age,
		Sex:           p.Sex,
		ActivityLevel: diagnosis.ActivityLevel(p.ActivityLevel),
	}.Normalized()
}

// FromMetrics converts stored metrics for transport.
func FromMetrics(m records.Metrics) MetricsResponse {
	return MetricsResponse{
		TotalImagesAnalyzed:     m.TotalImagesAnalyzed,
		TotalFoodItems:          m.TotalFoodItems,
		TotalRepairs:            m.TotalRepairs,
		AverageCalorieReduction: m.AverageCalorieReduction,
		AverageRepairCost:       m.AverageRepairCost,
		AverageRepairTime:       m.AverageRepairTime,
		SafetyHighCount:         m.SafetyHighCount,
		SafetyLowMediumCount:    m.SafetyLowMediumCount,
	}
}

// FromSummary combines today's totals with the daily goal.
func FromSummary(now time.Time, summary records.Summary, goal int) TodayResponse {
	return TodayResponse{
		Date:      now.Format(time.DateOnly),
		MealCount: summary.MealCount,
		Calories:  summary.Calories,
		Macros:    summary.Macros,
		DailyGoal: goal,
		Remaining: summary.Remaining(goal),
		Progress:  summary.Progress(goal),
	}
}

// FromDemo reports the sequencer state.
func FromDemo(status session.DemoStatus, banner string) DemoState {
	return DemoState{
		Status: string(status),
		Banner: banner,
		Active: status == session.DemoRunning,
	}
}
