package testsupport

import (
	"context"
	"testing"

	"lifelens/internal/config"
	"lifelens/internal/diagnosis"
	"lifelens/internal/records"
)

// MustOpenStore opens a records.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *records.Store {
	t.Helper()

	store, err := records.Open(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("records.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// NewMeal saves a food diagnosis with the given summary and calories.
func NewMeal(t testing.TB, store *records.Store, summary string, calories float64) records.MealRecord {
	t.Helper()

	food := &diagnosis.Food{Summary: summary}
	food.CaloriesEstimate.Value = calories
	meal, err := store.SaveMeal(context.Background(), food)
	if err != nil {
		t.Fatalf("store.SaveMeal: %v", err)
	}
	return meal
}
