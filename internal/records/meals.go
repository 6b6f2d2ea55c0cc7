package records

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"lifelens/internal/diagnosis"
	"lifelens/internal/logging"
)

// Meals returns the meal history in insertion order.
func (s *Store) Meals(ctx context.Context) []MealRecord {
	var meals []MealRecord
	if !s.readJSON(ctx, keyMeals, &meals) || meals == nil {
		return []MealRecord{}
	}
	return meals
}

// SaveMeal appends a record built from a food diagnosis.
func (s *Store) SaveMeal(ctx context.Context, food *diagnosis.Food) (MealRecord, error) {
	if food == nil {
		return MealRecord{}, fmt.Errorf("save meal: nil diagnosis")
	}
	id, err := s.newID()
	if err != nil {
		return MealRecord{}, fmt.Errorf("save meal: new id: %w", err)
	}
	name := strings.TrimSpace(food.Summary)
	if name == "" {
		name = UnknownMealName
	}
	record := MealRecord{
		ID:        id.String(),
		Timestamp: s.now().UnixMilli(),
		Name:      name,
		Calories:  food.CaloriesEstimate.Value,
		Macros: Macros{
			Carbs:   food.Macros.CarbsG,
			Protein: food.Macros.ProteinG,
			Fat:     food.Macros.FatG,
		},
	}

	err = s.update(ctx, func() error {
		meals := s.Meals(ctx)
		meals = append(meals, record)
		return s.writeJSON(ctx, keyMeals, meals)
	})
	if err != nil {
		return MealRecord{}, fmt.Errorf("save meal: %w", err)
	}
	return record, nil
}

// DailyGoal returns the calorie target, DefaultDailyGoal when unset or unreadable.
func (s *Store) DailyGoal(ctx context.Context) int {
	raw, ok, err := s.backend.Get(ctx, keyDailyGoal)
	if err != nil {
		logging.WarnWithContext(s.logger, "daily goal read failed; using default", "record_read_failed",
			logging.Error(err),
			logging.Int("daily_goal", DefaultDailyGoal),
		)
		return DefaultDailyGoal
	}
	if !ok {
		return DefaultDailyGoal
	}
	goal, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || goal <= 0 {
		logging.WarnWithContext(s.logger, "stored daily goal is invalid; using default", "record_corrupt",
			logging.String("value", raw),
			logging.Int("daily_goal", DefaultDailyGoal),
		)
		return DefaultDailyGoal
	}
	return goal
}

// SaveDailyGoal stores calories truncated to an integer. Non-positive values
// are ignored.
func (s *Store) SaveDailyGoal(ctx context.Context, calories float64) error {
	goal := int(calories)
	if goal <= 0 {
		return nil
	}
	return s.update(ctx, func() error {
		if err := s.backend.Set(ctx, keyDailyGoal, strconv.Itoa(goal)); err != nil {
			return fmt.Errorf("save daily goal: %w", err)
		}
		return nil
	})
}

// TodaySummary totals the meals recorded since midnight in now's location.
func (s *Store) TodaySummary(ctx context.Context, now time.Time) Summary {
	year, month, day := now.Date()
	startOfDay := time.Date(year, month, day, 0, 0, 0, 0, now.Location()).UnixMilli()

	var summary Summary
	for _, meal := range s.Meals(ctx) {
		if meal.Timestamp < startOfDay {
			continue
		}
		summary.MealCount++
		summary.Calories += meal.Calories
		summary.Macros.Carbs += meal.Macros.Carbs
		summary.Macros.Protein += meal.Macros.Protein
		summary.Macros.Fat += meal.Macros.Fat
	}
	return summary
}

// ClearHistory removes the meal history and the daily goal. Metrics are kept.
func (s *Store) ClearHistory(ctx context.Context) error {
	return s.update(ctx, func() error {
		if err := s.backend.Delete(ctx, keyMeals, keyDailyGoal); err != nil {
			return fmt.Errorf("clear history: %w", err)
		}
		return nil
	})
}
