package diagnosis

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// number decodes a JSON number, a numeric string, or null. Models do not
// always honour the requested field types.
type number float64

func (n *number) UnmarshalJSON(data []byte) error {
	text := strings.TrimSpace(string(data))
	if text == "null" {
		return nil
	}
	if strings.HasPrefix(text, `"`) {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		text = strings.TrimSpace(s)
		if text == "" {
			return nil
		}
	}
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return fmt.Errorf("diagnosis: %q is not a number", text)
	}
	*n = number(v)
	return nil
}

func (n number) minutes() int {
	v := math.Round(float64(n))
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(v)
}

func (r *Repair) UnmarshalJSON(data []byte) error {
	type plain Repair
	aux := struct {
		*plain
		EstimatedTimeMinutes number `json:"estimated_time_minutes"`
	}{plain: (*plain)(r)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	r.EstimatedTimeMinutes = aux.EstimatedTimeMinutes.minutes()
	return nil
}

func (c *CaloriesEstimate) UnmarshalJSON(data []byte) error {
	type plain CaloriesEstimate
	aux := struct {
		*plain
		Value number `json:"value"`
	}{plain: (*plain)(c)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	c.Value = float64(aux.Value)
	return nil
}

func (m *Macros) UnmarshalJSON(data []byte) error {
	var aux struct {
		CarbsG   number `json:"carbs_g"`
		ProteinG number `json:"protein_g"`
		FatG     number `json:"fat_g"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	m.CarbsG = float64(aux.CarbsG)
	m.ProteinG = float64(aux.ProteinG)
	m.FatG = float64(aux.FatG)
	return nil
}

func (d *DailyNeed) UnmarshalJSON(data []byte) error {
	type plain DailyNeed
	aux := struct {
		*plain
		Value number `json:"value"`
	}{plain: (*plain)(d)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	d.Value = float64(aux.Value)
	return nil
}

func (b *BMI) UnmarshalJSON(data []byte) error {
	type plain BMI
	aux := struct {
		*plain
		Value number `json:"value"`
	}{plain: (*plain)(b)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	b.Value = float64(aux.Value)
	return nil
}
