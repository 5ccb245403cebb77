package binning

import "math"

// Histogram reduces a raw value column into a dense fine-grained count
// array suitable for DivideCounts, grounded on ibis::index::mapValues's
// counting loop (original_source/src/index.cpp:2591-2651): the distilled
// spec assumes cnt[] arrives pre-built, this fills that gap for callers
// that only have raw values.
//
// resolution buckets are laid out uniformly over [min(values), max(values)];
// bucket i covers [min + i*width, min + (i+1)*width). The caller is
// responsible for keeping resolution small enough that the histogram fits
// in memory (spec §9 "Histograms fit in memory").
func Histogram(values []float64, resolution int) []uint32 {
	cnt := make([]uint32, resolution)
	if len(values) == 0 || resolution <= 0 {
		return cnt
	}

	lo, hi := values[0], values[0]
	for _, v := range values {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}

	width := (hi - lo) / float64(resolution)
	if width <= 0 || math.IsNaN(width) {
		// Degenerate: every value is identical, put everything in bucket 0.
		cnt[0] = uint32(len(values)) //nolint:gosec
		return cnt
	}

	for _, v := range values {
		idx := int((v - lo) / width)
		if idx >= resolution {
			idx = resolution - 1
		}
		if idx < 0 {
			idx = 0
		}
		cnt[idx]++
	}

	return cnt
}
