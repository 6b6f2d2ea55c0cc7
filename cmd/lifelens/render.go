package main

import (
	"fmt"
	"io"
	"strings"

	"lifelens/internal/diagnosis"
	"lifelens/internal/records"
	"lifelens/internal/session"
	"lifelens/internal/textutil"
)

const mealTimeFormat = "Jan 2 15:04"

func renderDiagnosis(out io.Writer, snap session.Snapshot) {
	switch d := snap.Diagnosis.(type) {
	case *diagnosis.Repair:
		renderRepair(out, d)
	case *diagnosis.Food:
		renderFood(out, d)
	default:
		fmt.Fprintln(out, "No diagnosis available")
	}
}

func renderRepair(out io.Writer, r *diagnosis.Repair) {
	fmt.Fprintf(out, "Repair: %s\n", r.ProblemSummary)
	fmt.Fprintln(out, renderPairs([][2]string{
		{"Safety", textutil.Title(string(r.SafetyLevel))},
		{"Estimated cost", textutil.Ternary(r.EstimatedCost != "", r.EstimatedCost, "unknown")},
		{"Estimated time", fmt.Sprintf("%d min", r.EstimatedTimeMinutes)},
	}))
	if r.SafetyWarning != "" {
		fmt.Fprintf(out, "Warning: %s\n", r.SafetyWarning)
	}
	if len(r.Parts) > 0 {
		rows := make([][]string, 0, len(r.Parts))
		for _, p := range r.Parts {
			rows = append(rows, []string{p.Name, p.SearchQuery})
		}
		fmt.Fprintln(out, renderTable([]string{"Part", "Search"}, rows, nil))
	}
	if !r.GuidanceAllowed() {
		fmt.Fprintln(out, "This repair is high risk. Step-by-step guidance is withheld; consult a professional.")
		renderHint(out, r.AccessibilityHint)
		return
	}
	for i, step := range r.Steps {
		fmt.Fprintf(out, "%d. %s\n", i+1, step)
	}
	renderHint(out, r.AccessibilityHint)
}

func renderFood(out io.Writer, f *diagnosis.Food) {
	fmt.Fprintf(out, "Meal: %s\n", textutil.Ternary(f.Summary != "", f.Summary, records.UnknownMealName))
	rows := [][2]string{
		{"Calories", fmt.Sprintf("%.0f %s", f.CaloriesEstimate.Value, textutil.Ternary(f.CaloriesEstimate.Unit != "", f.CaloriesEstimate.Unit, "kcal"))},
		{"Confidence", textutil.Title(f.CaloriesEstimate.Confidence)},
		{"Carbs", fmt.Sprintf("%.0f g", f.Macros.CarbsG)},
		{"Protein", fmt.Sprintf("%.0f g", f.Macros.ProteinG)},
		{"Fat", fmt.Sprintf("%.0f g", f.Macros.FatG)},
	}
	if f.ServingSize != "" {
		rows = append(rows, [2]string{"Serving", f.ServingSize})
	}
	if f.EstimatedDailyNeed.Value > 0 {
		rows = append(rows, [2]string{"Daily need", fmt.Sprintf("%.0f kcal", f.EstimatedDailyNeed.Value)})
	}
	if f.BMI.Value > 0 {
		rows = append(rows, [2]string{"BMI", strings.TrimSpace(fmt.Sprintf("%.1f %s", f.BMI.Value, f.BMI.Category))})
	}
	fmt.Fprintln(out, renderPairs(rows))
	if f.NutritionRecommendation != "" {
		fmt.Fprintf(out, "Recommendation: %s\n", f.NutritionRecommendation)
	}
	for _, q := range f.FollowUpQuestions {
		fmt.Fprintf(out, "? %s\n", q)
	}
	renderHint(out, f.AccessibilityHint)
}

func renderHint(out io.Writer, hint string) {
	if strings.TrimSpace(hint) != "" {
		fmt.Fprintf(out, "Hint: %s\n", hint)
	}
}

func renderMetrics(out io.Writer, m records.Metrics) {
	fmt.Fprintln(out, renderPairs([][2]string{
		{"Images analyzed", fmt.Sprint(m.TotalImagesAnalyzed)},
		{"Meals scanned", fmt.Sprint(m.TotalFoodItems)},
		{"Repairs diagnosed", fmt.Sprint(m.TotalRepairs)},
		{"Average calories per meal", fmt.Sprintf("%.0f", m.AverageCalorieReduction)},
		{"Average repair cost", fmt.Sprintf("$%.2f", m.AverageRepairCost)},
		{"Average repair time", fmt.Sprintf("%.0f min", m.AverageRepairTime)},
		{"High-risk repairs", fmt.Sprint(m.SafetyHighCount)},
		{"Low/medium-risk repairs", fmt.Sprint(m.SafetyLowMediumCount)},
	}))
}

func renderToday(out io.Writer, summary records.Summary, goal int) {
	remaining := summary.Remaining(goal)
	fmt.Fprintln(out, renderPairs([][2]string{
		{"Daily goal", fmt.Sprintf("%d kcal", goal)},
		{"Eaten today", fmt.Sprintf("%.0f kcal (%d meals)", summary.Calories, summary.MealCount)},
		{textutil.Ternary(remaining < 0, "Over goal", "Remaining"), fmt.Sprintf("%.0f kcal", abs(remaining))},
		{"Progress", fmt.Sprintf("%.0f%%", summary.Progress(goal)*100)},
	}))
}

// renderMeals lists meals newest first.
func renderMeals(out io.Writer, meals []records.MealRecord) {
	if len(meals) == 0 {
		fmt.Fprintln(out, "No meals recorded")
		return
	}
	rows := make([][]string, 0, len(meals))
	for i := len(meals) - 1; i >= 0; i-- {
		m := meals[i]
		rows = append(rows, []string{
			m.Time().Format(mealTimeFormat),
			m.Name,
			fmt.Sprintf("%.0f", m.Calories),
			fmt.Sprintf("%.0f", m.Macros.Carbs),
			fmt.Sprintf("%.0f", m.Macros.Protein),
			fmt.Sprintf("%.0f", m.Macros.Fat),
		})
	}
	fmt.Fprintln(out, renderTable(
		[]string{"Time", "Meal", "kcal", "Carbs", "Protein", "Fat"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight},
	))
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
