package view

import (
	"github.com/TimelordUK/sigview/internal/series"
)

var blocks = []rune("▁▂▃▄▅▆▇█")

// Overview returns a one-line sparkline of the whole series over the fixed
// canvas [0, total], one cell per time bucket. Cells past the end of the
// series are blank.
func Overview(s *series.Series, width int, total float64) string {
	if s.Len() == 0 || width < 1 || total <= 0 {
		return ""
	}

	sums := make([]float64, width)
	counts := make([]int, width)
	times := s.TimePoints()
	amps := s.Amplitudes()
	for i, t := range times {
		if t > total {
			break
		}
		idx := int(t / total * float64(width))
		if idx >= width {
			idx = width - 1
		}
		sums[idx] += amps[i]
		counts[idx]++
	}

	lo, hi := 0.0, 0.0
	seen := false
	for i := range sums {
		if counts[i] == 0 {
			continue
		}
		mean := sums[i] / float64(counts[i])
		sums[i] = mean
		if !seen || mean < lo {
			lo = mean
		}
		if !seen || mean > hi {
			hi = mean
		}
		seen = true
	}

	out := make([]rune, width)
	for i := range out {
		if counts[i] == 0 {
			out[i] = ' '
			continue
		}
		level := 0
		if hi > lo {
			level = int((sums[i] - lo) / (hi - lo) * float64(len(blocks)-1))
		}
		level = max(0, min(len(blocks)-1, level))
		out[i] = blocks[level]
	}
	return string(out)
}
