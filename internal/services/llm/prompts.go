package llm

import (
	"fmt"
	"strings"

	"lifelens/internal/diagnosis"
)

// ClassifyPrompt asks the fast model for the food/repair discriminator only.
const ClassifyPrompt = `Is this image primarily of FOOD/MEAL or a BROKEN/REPAIRABLE OBJECT? Respond with JSON: { "is_food": boolean }`

// AnalyzeSystemPrompt defines both expert roles and the response shape.
const AnalyzeSystemPrompt = `You are LifeLens AI, a multimodal assistant capable of TWO distinct expert roles:
1. REPAIR EXPERT: Analyze broken items, diagnose issues, and provide repair plans.
2. NUTRITIONIST: Analyze food images, estimate calories/macros, and provide health guidance.

INPUT CONTEXT:
- If the user provides Health Data (height/weight), you MUST perform FOOD ANALYSIS.
- If the user asks about a broken item, perform REPAIR DIAGNOSIS.

RULES FOR FOOD ANALYSIS:
1. Estimate calories and macros based on the visual portion size.
2. Calculate BMI using the provided height/weight.
3. Estimate daily calorie needs (Mifflin-St Jeor) if data allows, otherwise approximate.
4. Provide practical advice (portion control, substitutions).
5. SAFETY: If BMI > 30 or meal is dangerous/excessive, add a gentle "Consult a professional" note. NO MEDICAL DIAGNOSIS.

RULES FOR REPAIR DIAGNOSIS:
1. SAFETY FIRST: If high voltage, gas, or structural danger, set safety_level='high'.
2. Be concise and actionable.

RESPONSE FORMAT:
Respond with a single JSON object. Always include "is_food" (boolean) and "accessibility_hint" (string).
For repairs add: problem_summary (string), safety_level ("low"|"medium"|"high"), safety_warning (string, optional),
estimated_cost (string), estimated_time_minutes (integer), parts ([{"name", "search_query"}]), steps ([string]).
For food add: summary (string), calories_estimate ({"value", "unit", "confidence": "low"|"medium"|"high"}),
serving_size (string), macros ({"carbs_g", "protein_g", "fat_g"}), estimated_daily_need ({"value", "unit", "method"}),
bmi ({"value", "category"}), nutrition_recommendation (string), follow_up_questions ([string]).`

const notSpecified = "Not specified"

// BuildAnalyzePrompt renders the user turn. A nil profile selects the repair task.
func BuildAnalyzePrompt(description string, profile *diagnosis.HealthProfile) string {
	description = strings.TrimSpace(description)
	var b strings.Builder
	if profile != nil {
		p := profile.Normalized()
		b.WriteString("User Health Data:\n")
		fmt.Fprintf(&b, "- Height: %s cm\n", orNotSpecified(p.HeightCm))
		fmt.Fprintf(&b, "- Weight: %s kg\n", orNotSpecified(p.WeightKg))
		fmt.Fprintf(&b, "- Age: %s\n", orNotSpecified(p.Age))
		fmt.Fprintf(&b, "- Sex: %s\n", orNotSpecified(p.Sex))
		fmt.Fprintf(&b, "- Activity: %s\n\n", orNotSpecified(string(p.ActivityLevel)))
		b.WriteString("Task: Analyze this food image. Provide calorie estimates, macros, BMI analysis, and dietary advice.\n")
	} else {
		b.WriteString("Task: Diagnose this repair issue.\n")
	}
	fmt.Fprintf(&b, "User Notes: %q", description)
	return b.String()
}

func orNotSpecified(value string) string {
	if strings.TrimSpace(value) == "" {
		return notSpecified
	}
	return value
}
