package diagnosis

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
)

// ErrMissingDiscriminator is returned when a payload has no boolean is_food field.
var ErrMissingDiscriminator = errors.New("diagnosis: missing is_food discriminator")

type discriminator struct {
	IsFood *bool `json:"is_food"`
}

// Unmarshal decodes a diagnosis payload, selecting the variant by is_food and
// normalizing out-of-range values.
func Unmarshal(data []byte) (Diagnosis, error) {
	var head discriminator
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("diagnosis: decode: %w", err)
	}
	if head.IsFood == nil {
		return nil, ErrMissingDiscriminator
	}
	if *head.IsFood {
		var food Food
		if err := json.Unmarshal(data, &food); err != nil {
			return nil, fmt.Errorf("diagnosis: decode food: %w", err)
		}
		food.normalize()
		return &food, nil
	}
	var repair Repair
	if err := json.Unmarshal(data, &repair); err != nil {
		return nil, fmt.Errorf("diagnosis: decode repair: %w", err)
	}
	repair.normalize()
	return &repair, nil
}

// Marshal encodes a diagnosis together with its is_food discriminator.
func Marshal(d Diagnosis) ([]byte, error) {
	switch v := d.(type) {
	case *Repair:
		return json.Marshal(struct {
			IsFood bool `json:"is_food"`
			*Repair
		}{false, v})
	case *Food:
		return json.Marshal(struct {
			IsFood bool `json:"is_food"`
			*Food
		}{true, v})
	default:
		return nil, fmt.Errorf("diagnosis: unsupported type %T", d)
	}
}

func (r *Repair) normalize() {
	r.ProblemSummary = strings.TrimSpace(r.ProblemSummary)
	r.SafetyLevel = ParseSafetyLevel(string(r.SafetyLevel))
	if r.EstimatedTimeMinutes < 0 {
		r.EstimatedTimeMinutes = 0
	}
	if r.Parts == nil {
		r.Parts = []Part{}
	}
	if r.Steps == nil {
		r.Steps = []string{}
	}
}

func (f *Food) normalize() {
	f.Summary = strings.TrimSpace(f.Summary)
	f.CaloriesEstimate.Value = nonNegative(f.CaloriesEstimate.Value)
	f.Macros.CarbsG = nonNegative(f.Macros.CarbsG)
	f.Macros.ProteinG = nonNegative(f.Macros.ProteinG)
	f.Macros.FatG = nonNegative(f.Macros.FatG)
	f.EstimatedDailyNeed.Value = nonNegative(f.EstimatedDailyNeed.Value)
	f.BMI.Value = nonNegative(f.BMI.Value)
	if f.FollowUpQuestions == nil {
		f.FollowUpQuestions = []string{}
	}
}

func nonNegative(v float64) float64 {
	if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
