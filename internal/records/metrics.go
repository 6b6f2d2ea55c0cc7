package records

import (
	"context"
	"fmt"

	"lifelens/internal/diagnosis"
	"lifelens/internal/textutil"
)

// Metrics returns the aggregated usage metrics, zero values when unset.
func (s *Store) Metrics(ctx context.Context) Metrics {
	var metrics Metrics
	if !s.readJSON(ctx, keyMetrics, &metrics) {
		return Metrics{}
	}
	return metrics
}

// RecordAnalysis folds one completed analysis into the metrics and returns
// the updated values.
func (s *Store) RecordAnalysis(ctx context.Context, result diagnosis.Diagnosis) (Metrics, error) {
	if result == nil {
		return Metrics{}, fmt.Errorf("record analysis: nil diagnosis")
	}
	var updated Metrics
	err := s.update(ctx, func() error {
		updated = ApplyAnalysis(s.Metrics(ctx), result)
		return s.writeJSON(ctx, keyMetrics, updated)
	})
	if err != nil {
		return Metrics{}, fmt.Errorf("record analysis: %w", err)
	}
	return updated, nil
}

// ApplyAnalysis returns m with result folded in. Averages follow
// avg' = (avg*(n-1) + x) / n where n is the category count after increment.
func ApplyAnalysis(m Metrics, result diagnosis.Diagnosis) Metrics {
	m.TotalImagesAnalyzed++
	switch d := result.(type) {
	case *diagnosis.Food:
		m.TotalFoodItems++
		m.AverageCalorieReduction = runningMean(m.AverageCalorieReduction, m.TotalFoodItems, d.CaloriesEstimate.Value)
	case *diagnosis.Repair:
		m.TotalRepairs++
		cost, _ := textutil.FirstInteger(d.EstimatedCost)
		m.AverageRepairCost = runningMean(m.AverageRepairCost, m.TotalRepairs, float64(cost))
		m.AverageRepairTime = runningMean(m.AverageRepairTime, m.TotalRepairs, float64(d.EstimatedTimeMinutes))
		if d.SafetyLevel == diagnosis.SafetyHigh {
			m.SafetyHighCount++
		} else {
			m.SafetyLowMediumCount++
		}
	}
	return m
}

func runningMean(avg float64, n int, x float64) float64 {
	if n <= 0 {
		return 0
	}
	return (avg*float64(n-1) + x) / float64(n)
}

// ResetMetrics clears the metrics back to zero.
func (s *Store) ResetMetrics(ctx context.Context) error {
	return s.update(ctx, func() error {
		if err := s.backend.Delete(ctx, keyMetrics); err != nil {
			return fmt.Errorf("reset metrics: %w", err)
		}
		return nil
	})
}
