package tsformat

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// cursorPattern matches "2.5", "2.5s", "250ms", "1500us"
var cursorPattern = regexp.MustCompile(`^([+-]?(?:\d+\.?\d*|\.\d+))\s*(s|ms|us|µs)?$`)

var unitScale = map[string]float64{
	"":   1,
	"s":  1,
	"ms": 1e-3,
	"us": 1e-6,
	"µs": 1e-6,
}

// ParseSeconds parses a time offset into seconds
func ParseSeconds(input string) (float64, error) {
	s := strings.ToLower(strings.TrimSpace(input))
	matches := cursorPattern.FindStringSubmatch(s)
	if matches == nil {
		return 0, fmt.Errorf("invalid time %q (e.g. 2.5, 2.5s, 250ms)", input)
	}

	v, err := strconv.ParseFloat(matches[1], 64)
	if err != nil {
		return 0, fmt.Errorf("invalid time %q: %w", input, err)
	}
	return v * unitScale[matches[2]], nil
}

// FormatTick formats an axis value with three decimals
func FormatTick(seconds float64) string {
	return strconv.FormatFloat(seconds, 'f', 3, 64)
}

// FormatPosition formats the cursor for the status line
func FormatPosition(seconds float64) string {
	return fmt.Sprintf("Time Position: %.1f s", seconds)
}

// FormatRange formats a visible window
func FormatRange(start, end float64) string {
	return "[" + FormatTick(start) + ", " + FormatTick(end) + "] s"
}
