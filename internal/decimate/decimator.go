package decimate

import (
	"math"
	"strconv"
	"strings"

	"github.com/TimelordUK/sigview/internal/chunk"
)

// DefaultFactor keeps one sample in every thousand
const DefaultFactor = 1000

// Counts summarises what the decimator has seen so far
type Counts struct {
	Parsed    int // numeric values, i.e. the next global index
	Skipped   int // non-blank lines that did not parse
	Fragments int // partial values dropped at chunk boundaries
	Retained  int
}

// Decimator parses chunks into samples and keeps every Nth one.
// The global index runs across chunks, so the retained set does not depend
// on how the source was sliced.
type Decimator struct {
	factor   int
	index    int
	retained []float64
	counts   Counts
}

// New creates a decimator; factor <= 0 selects DefaultFactor
func New(factor int) *Decimator {
	if factor <= 0 {
		factor = DefaultFactor
	}
	return &Decimator{factor: factor}
}

// Factor returns the decimation factor
func (d *Decimator) Factor() int {
	return d.factor
}

// Feed parses one chunk and appends the retained values.
// It returns the number of values retained from this chunk.
func (d *Decimator) Feed(c chunk.Chunk) int {
	lines := strings.Split(c.Text, "\n")
	first, last := 0, len(lines)

	// A value cut by a chunk boundary shows up as two fragments.
	// Neither half is a real sample, so both are dropped.
	if c.StartsMidValue {
		first++
		d.counts.Fragments++
	}
	if c.EndsMidValue && last > first {
		last--
		d.counts.Fragments++
	}

	before := len(d.retained)
	for _, line := range lines[first:last] {
		// Blank lines, and the blank pieces left when a boundary falls
		// between a value and its line ending, are not samples
		if strings.TrimSpace(line) == "" {
			continue
		}
		v, ok := ParseLine(line)
		if !ok {
			d.counts.Skipped++
			continue
		}
		if d.index%d.factor == 0 {
			d.retained = append(d.retained, v)
		}
		d.index++
	}

	d.counts.Parsed = d.index
	d.counts.Retained = len(d.retained)
	return len(d.retained) - before
}

// Retained returns the values kept so far
func (d *Decimator) Retained() []float64 {
	return d.retained
}

// Counts returns the running counters
func (d *Decimator) Counts() Counts {
	return d.counts
}

// ParseLine trims a line and parses it as a float.
// Empty, non-numeric and non-finite values are rejected.
func ParseLine(line string) (float64, bool) {
	s := strings.TrimSpace(line)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
