package records

import "time"

const (
	keyMeals     = "meals"
	keyDailyGoal = "daily_goal"
	keyMetrics   = "metrics"
)

// DefaultDailyGoal is the calorie target used until an analysis supplies one.
const DefaultDailyGoal = 2000

// UnknownMealName labels meals whose diagnosis had no summary.
const UnknownMealName = "Unknown Meal"

// Macros holds macronutrient grams for a stored meal.
type Macros struct {
	Carbs   float64 `json:"carbs"`
	Protein float64 `json:"protein"`
	Fat     float64 `json:"fat"`
}

// MealRecord is one scanned meal. Records are never mutated after creation.
type MealRecord struct {
	ID        string  `json:"id"`
	Timestamp int64   `json:"timestamp"`
	Name      string  `json:"name"`
	Calories  float64 `json:"calories"`
	Macros    Macros  `json:"macros"`
}

// Time returns the record timestamp in local time.
func (m MealRecord) Time() time.Time {
	return time.UnixMilli(m.Timestamp)
}

// Metrics aggregates every completed real analysis. AverageCalorieReduction
// holds the plain mean calories per scanned meal; the name is kept for
// compatibility with existing data.
type Metrics struct {
	TotalImagesAnalyzed     int     `json:"total_images_analyzed"`
	TotalFoodItems          int     `json:"total_food_items"`
	TotalRepairs            int     `json:"total_repairs"`
	AverageCalorieReduction float64 `json:"average_calorie_reduction"`
	AverageRepairCost       float64 `json:"average_repair_cost"`
	AverageRepairTime       float64 `json:"average_repair_time"`
	SafetyHighCount         int     `json:"safety_high_count"`
	SafetyLowMediumCount    int     `json:"safety_low_medium_count"`
}

// Summary totals the meals eaten since local midnight.
type Summary struct {
	MealCount int     `json:"meal_count"`
	Calories  float64 `json:"calories"`
	Macros    Macros  `json:"macros"`
}

// Remaining returns the calories left against goal; negative when over.
func (s Summary) Remaining(goal int) float64 {
	return float64(goal) - s.Calories
}

// Progress returns the fraction of goal consumed, capped at 1.
func (s Summary) Progress(goal int) float64 {
	if goal <= 0 {
		return 0
	}
	p := s.Calories / float64(goal)
	if p > 1 {
		return 1
	}
	return p
}
