package records_test

import (
	"context"
	"math"
	"testing"

	"lifelens/internal/diagnosis"
	"lifelens/internal/records"
)

func TestApplyAnalysisRunningMeans(t *testing.T) {
	var m records.Metrics

	m = records.ApplyAnalysis(m, &diagnosis.Food{CaloriesEstimate: diagnosis.CaloriesEstimate{Value: 500}})
	m = records.ApplyAnalysis(m, &diagnosis.Food{CaloriesEstimate: diagnosis.CaloriesEstimate{Value: 700}})
	m = records.ApplyAnalysis(m, &diagnosis.Food{CaloriesEstimate: diagnosis.CaloriesEstimate{Value: 900}})
	if m.TotalFoodItems != 3 || m.AverageCalorieReduction != 700 {
		t.Fatalf("unexpected food metrics: %+v", m)
	}

	m = records.ApplyAnalysis(m, &diagnosis.Repair{
		EstimatedCost:        "$45-60",
		EstimatedTimeMinutes: 30,
		SafetyLevel:          diagnosis.SafetyLow,
	})
	m = records.ApplyAnalysis(m, &diagnosis.Repair{
		EstimatedCost:        "Free",
		EstimatedTimeMinutes: 15,
		SafetyLevel:          diagnosis.SafetyHigh,
	})
	m = records.ApplyAnalysis(m, &diagnosis.Repair{
		EstimatedCost:        "about 120 dollars",
		EstimatedTimeMinutes: 60,
		SafetyLevel:          diagnosis.SafetyMedium,
	})

	if m.TotalImagesAnalyzed != 6 {
		t.Fatalf("expected 6 images, got %d", m.TotalImagesAnalyzed)
	}
	if m.TotalRepairs != 3 {
		t.Fatalf("expected 3 repairs, got %d", m.TotalRepairs)
	}
	if math.Abs(m.AverageRepairCost-55) > 1e-9 {
		t.Fatalf("expected average cost 55, got %v", m.AverageRepairCost)
	}
	if math.Abs(m.AverageRepairTime-35) > 1e-9 {
		t.Fatalf("expected average time 35, got %v", m.AverageRepairTime)
	}
	if m.SafetyHighCount != 1 || m.SafetyLowMediumCount != 2 {
		t.Fatalf("unexpected safety counts: %+v", m)
	}
	if m.AverageCalorieReduction != 700 {
		t.Fatalf("repairs must not change the calorie mean, got %v", m.AverageCalorieReduction)
	}
}

func TestRecordAnalysisPersists(t *testing.T) {
	ctx := context.Background()
	store := records.New(records.NewMemoryBackend())

	if _, err := store.RecordAnalysis(ctx, nil); err == nil {
		t.Fatal("expected error for nil diagnosis")
	}
	updated, err := store.RecordAnalysis(ctx, &diagnosis.Repair{EstimatedCost: "$20", EstimatedTimeMinutes: 10})
	if err != nil {
		t.Fatalf("RecordAnalysis: %v", err)
	}
	if updated != store.Metrics(ctx) {
		t.Fatalf("returned metrics %+v differ from stored %+v", updated, store.Metrics(ctx))
	}
	if updated.AverageRepairCost != 20 || updated.SafetyLowMediumCount != 1 {
		t.Fatalf("unexpected metrics: %+v", updated)
	}
}
