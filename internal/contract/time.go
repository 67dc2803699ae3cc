package contract

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// lookbackDurationRe captures "N [units]", e.g. "7 days" or "2 weeks".
var lookbackDurationRe = regexp.MustCompile(`^(\d+)\s+(year|month|week|day|hour|minute)s?$`)

// ParseLookbackDuration converts strings like "7 days" or "168h" into a time.Duration.
// Go duration syntax is tried first; months and years are approximated as 30 and 365 days.
func ParseLookbackDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)

	if d, err := time.ParseDuration(s); err == nil {
		if d <= 0 {
			return 0, errors.New("lookback must be positive")
		}
		return d, nil
	}

	s = strings.ToLower(strings.Join(strings.Fields(s), " "))
	matches := lookbackDurationRe.FindStringSubmatch(s)
	if len(matches) == 0 {
		return 0, fmt.Errorf("invalid lookback duration format: %q", s)
	}

	value, _ := strconv.Atoi(matches[1])
	if value == 0 {
		return 0, errors.New("lookback must be positive")
	}

	day := 24 * time.Hour
	unit := map[string]time.Duration{
		"year":   365 * day,
		"month":  30 * day,
		"week":   7 * day,
		"day":    day,
		"hour":   time.Hour,
		"minute": time.Minute,
	}[matches[2]]

	return time.Duration(value) * unit, nil
}
