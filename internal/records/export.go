package records

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
)

const (
	// MealsExportName is the default file name for ExportMeals output.
	MealsExportName = "lifelens_nutrition_history.json"
	// MetricsExportName is the default file name for ExportMetrics output.
	MetricsExportName = "lifelens_metrics.json"
)

// ExportMeals writes the meal history as indented JSON.
func (s *Store) ExportMeals(ctx context.Context, w io.Writer) error {
	return writeIndented(w, s.Meals(ctx))
}

// ExportMetrics writes the metrics as indented JSON.
func (s *Store) ExportMetrics(ctx context.Context, w io.Writer) error {
	return writeIndented(w, s.Metrics(ctx))
}

func writeIndented(w io.Writer, value any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(value); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	return nil
}
