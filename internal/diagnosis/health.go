package diagnosis

import (
	"strconv"
	"strings"

	"lifelens/internal/services"
)

// ActivityLevel describes how active the person is.
type ActivityLevel string

const (
	ActivitySedentary ActivityLevel = "Sedentary"
	ActivityLight     ActivityLevel = "Light"
	ActivityModerate  ActivityLevel = "Moderate"
	ActivityActive    ActivityLevel = "Active"
)

// ActivityLevels lists the accepted values in display order.
var ActivityLevels = []ActivityLevel{ActivitySedentary, ActivityLight, ActivityModerate, ActivityActive}

// ParseActivityLevel matches value case-insensitively. Empty or unknown values
// return ActivityModerate and false.
func ParseActivityLevel(value string) (ActivityLevel, bool) {
	trimmed := strings.TrimSpace(value)
	for _, level := range ActivityLevels {
		if strings.EqualFold(trimmed, string(level)) {
			return level, true
		}
	}
	return ActivityModerate, false
}

// HealthProfile is the personal data used to personalize a nutrition
// analysis. Values are kept as typed.
type HealthProfile struct {
	HeightCm      string        `json:"height_cm"`
	WeightKg      string        `json:"weight_kg"`
	Age           string        `json:"age,omitempty"`
	Sex           string        `json:"sex,omitempty"`
	ActivityLevel ActivityLevel `json:"activity_level"`
}

// DefaultHealthProfile returns an empty profile with the default activity level.
func DefaultHealthProfile() HealthProfile {
	return HealthProfile{ActivityLevel: ActivityModerate}
}

// Normalized trims every field and fills in the default activity level.
func (p HealthProfile) Normalized() HealthProfile {
	p.HeightCm = strings.TrimSpace(p.HeightCm)
	p.WeightKg = strings.TrimSpace(p.WeightKg)
	p.Age = strings.TrimSpace(p.Age)
	p.Sex = strings.TrimSpace(p.Sex)
	p.ActivityLevel, _ = ParseActivityLevel(string(p.ActivityLevel))
	return p
}

// Validate requires height and weight to be positive numbers.
func (p HealthProfile) Validate() error {
	if !positiveNumber(p.HeightCm) || !positiveNumber(p.WeightKg) {
		return services.Validation("Please enter your height and weight.")
	}
	return nil
}

func positiveNumber(value string) bool {
	parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	return err == nil && parsed > 0
}
