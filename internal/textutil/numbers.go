package textutil

import (
	"regexp"
	"strconv"
)

var integerPattern = regexp.MustCompile(`\d+`)

// FirstInteger returns the first run of decimal digits in value, or 0 and
// false when there is none. "$50 - $100" yields 50.
func FirstInteger(value string) (int, bool) {
	match := integerPattern.FindString(value)
	if match == "" {
		return 0, false
	}
	n, err := strconv.Atoi(match)
	if err != nil {
		return 0, false
	}
	return n, true
}
