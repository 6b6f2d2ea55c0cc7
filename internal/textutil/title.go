package textutil

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Title converts snake/kebab-case or lowercase words into title case for
// display, e.g. "collecting_food_data" becomes "Collecting Food Data".
func Title(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	value = strings.NewReplacer("_", " ", "-", " ").Replace(value)
	return cases.Title(language.Und).String(strings.ToLower(value))
}
