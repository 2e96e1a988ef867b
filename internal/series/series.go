package series

// DefaultSampleRate is the assumed native rate of the source in samples/sec
const DefaultSampleRate = 4_000_000

// Point is one (time, amplitude) pair
type Point struct {
	Time      float64 `json:"time"`
	Amplitude float64 `json:"amplitude"`
}

// Series is a finalized decimated series.
// TimePoints and Amplitudes always have equal length and TimePoints is
// strictly increasing. A Series is never modified after Reconstruct.
type Series struct {
	timePoints    []float64
	amplitudes    []float64
	effectiveRate float64
}

// EffectiveRate returns sampleRate / factor
func EffectiveRate(sampleRate, factor int) float64 {
	return float64(sampleRate) / float64(factor)
}

// Reconstruct assigns timePoints[i] = i / effectiveRate.
// Timing is purely positional; the source is assumed gap-free.
func Reconstruct(amplitudes []float64, effectiveRate float64) *Series {
	amps := make([]float64, len(amplitudes))
	copy(amps, amplitudes)

	times := make([]float64, len(amps))
	for i := range times {
		times[i] = float64(i) / effectiveRate
	}

	return &Series{
		timePoints:    times,
		amplitudes:    amps,
		effectiveRate: effectiveRate,
	}
}

// Len returns the number of samples
func (s *Series) Len() int {
	if s == nil {
		return 0
	}
	return len(s.amplitudes)
}

// TimePoints returns the reconstructed timestamps. Callers must not modify it.
func (s *Series) TimePoints() []float64 {
	return s.timePoints
}

// Amplitudes returns the retained values. Callers must not modify it.
func (s *Series) Amplitudes() []float64 {
	return s.amplitudes
}

// EffectiveRateHz returns the spacing rate of the series
func (s *Series) EffectiveRateHz() float64 {
	return s.effectiveRate
}

// At returns the i-th point
func (s *Series) At(i int) Point {
	return Point{Time: s.timePoints[i], Amplitude: s.amplitudes[i]}
}

// Duration returns the time of the last sample, or 0 for an empty series
func (s *Series) Duration() float64 {
	if s.Len() == 0 {
		return 0
	}
	return s.timePoints[len(s.timePoints)-1]
}

// Bounds returns the min and max amplitude
func (s *Series) Bounds() (lo, hi float64) {
	for i, v := range s.amplitudes {
		if i == 0 || v < lo {
			lo = v
		}
		if i == 0 || v > hi {
			hi = v
		}
	}
	return lo, hi
}
