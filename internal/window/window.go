package window

import (
	"fmt"
	"sort"
	"strings"

	"github.com/TimelordUK/sigview/internal/series"
)

// DefaultTotalDuration is the fixed canvas length in seconds.
// It does not follow the length of the loaded series.
const DefaultTotalDuration = 10.0

// Granularity is a zoom level, used as a half-width around the cursor
type Granularity int

const (
	Gran10s Granularity = iota
	Gran1s
	Gran100ms
	Gran10ms
	Gran1ms
)

// All lists granularities from widest to narrowest
var All = []Granularity{Gran10s, Gran1s, Gran100ms, Gran10ms, Gran1ms}

var granularitySeconds = map[Granularity]float64{
	Gran10s:   10,
	Gran1s:    1,
	Gran100ms: 0.1,
	Gran10ms:  0.01,
	Gran1ms:   0.001,
}

var granularityNames = map[Granularity]string{
	Gran10s:   "10s",
	Gran1s:    "1s",
	Gran100ms: "100ms",
	Gran10ms:  "10ms",
	Gran1ms:   "1ms",
}

var granularityLabels = map[Granularity]string{
	Gran10s:   "10 seconds",
	Gran1s:    "1 second",
	Gran100ms: "100 milliseconds",
	Gran10ms:  "10 milliseconds",
	Gran1ms:   "1 millisecond",
}

// Seconds returns the half-width in seconds
func (g Granularity) Seconds() float64 {
	return granularitySeconds[g]
}

func (g Granularity) String() string {
	if name, ok := granularityNames[g]; ok {
		return name
	}
	return fmt.Sprintf("Granularity(%d)", int(g))
}

// Label returns the long display name
func (g Granularity) Label() string {
	return granularityLabels[g]
}

// Valid reports whether g is a known granularity
func (g Granularity) Valid() bool {
	_, ok := granularityNames[g]
	return ok
}

// Wider returns the next wider granularity, saturating at 10s
func (g Granularity) Wider() Granularity {
	if g <= Gran10s {
		return Gran10s
	}
	return g - 1
}

// Narrower returns the next narrower granularity, saturating at 1ms
func (g Granularity) Narrower() Granularity {
	if g >= Gran1ms {
		return Gran1ms
	}
	return g + 1
}

// MarshalText implements encoding.TextMarshaler
func (g Granularity) MarshalText() ([]byte, error) {
	if !g.Valid() {
		return nil, fmt.Errorf("invalid granularity %d", int(g))
	}
	return []byte(g.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (g *Granularity) UnmarshalText(text []byte) error {
	parsed, err := ParseGranularity(string(text))
	if err != nil {
		return err
	}
	*g = parsed
	return nil
}

// ParseGranularity parses names like "10s" or "100ms"
func ParseGranularity(s string) (Granularity, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for g, name := range granularityNames {
		if name == s {
			return g, nil
		}
	}
	return 0, fmt.Errorf("unknown granularity %q (want one of 10s, 1s, 100ms, 10ms, 1ms)", s)
}

// ClampCursor bounds a cursor time to [0, total]
func ClampCursor(cursor, total float64) float64 {
	return max(0, min(total, cursor))
}

// Range returns the visible interval
// [max(0, cursor-g), min(total, cursor+g)].
func Range(cursor float64, g Granularity, total float64) (start, end float64) {
	half := g.Seconds()
	start = max(0, cursor-half)
	end = min(total, cursor+half)
	return start, end
}

// Select returns the points of s whose time lies in the visible interval.
// The result is a contiguous, time-sorted run of s and is recomputed on
// every call.
func Select(s *series.Series, cursor float64, g Granularity, total float64) []series.Point {
	lo, hi := Bounds(s, cursor, g, total)
	if lo >= hi {
		return nil
	}

	points := make([]series.Point, 0, hi-lo)
	for i := lo; i < hi; i++ {
		points = append(points, s.At(i))
	}
	return points
}

// Bounds returns the half-open index range [lo, hi) of s that Select
// would return
func Bounds(s *series.Series, cursor float64, g Granularity, total float64) (lo, hi int) {
	if s.Len() == 0 {
		return 0, 0
	}
	start, end := Range(cursor, g, total)
	if start > end {
		return 0, 0
	}

	times := s.TimePoints()
	lo = sort.Search(len(times), func(i int) bool { return times[i] >= start })
	hi = sort.Search(len(times), func(i int) bool { return times[i] > end })
	return lo, hi
}

// View is the result of one window selection, ready for rendering
type View struct {
	Cursor      float64        `json:"cursor"`
	Granularity Granularity    `json:"granularity"`
	Start       float64        `json:"start"`
	End         float64        `json:"end"`
	Points      []series.Point `json:"points"`
}

// NewView clamps the cursor and selects the visible points
func NewView(s *series.Series, cursor float64, g Granularity, total float64) View {
	cursor = ClampCursor(cursor, total)
	start, end := Range(cursor, g, total)
	points := Select(s, cursor, g, total)
	if points == nil {
		points = []series.Point{}
	}
	return View{
		Cursor:      cursor,
		Granularity: g,
		Start:       start,
		End:         end,
		Points:      points,
	}
}
