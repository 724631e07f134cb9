package domain

import (
	"fmt"
	"math"
)

// PreferenceFromSliders maps slider positions in [lo, hi] onto [0,1].
// Values outside the range are clamped.
func PreferenceFromSliders(values []int, lo, hi int) (PreferenceVector, error) {
	if hi <= lo {
		return nil, fmt.Errorf("%w: slider range %d..%d", ErrInvalidInput, lo, hi)
	}
	pref := make(PreferenceVector, len(values))
	span := float64(hi - lo)
	for i, v := range values {
		if v < lo {
			v = lo
		}
		if v > hi {
			v = hi
		}
		pref[i] = float64(v-lo) / span
	}
	return pref, nil
}

// Validate checks that every component lies in [0,1].
func (p PreferenceVector) Validate(dims int) error {
	if len(p) != dims {
		return fmt.Errorf("%w: expected %d preference values, got %d", ErrInvalidInput, dims, len(p))
	}
	for i, v := range p {
		if math.IsNaN(v) || v < 0 || v > 1 {
			return fmt.Errorf("%w: preference %d out of range: %v", ErrInvalidInput, i, v)
		}
	}
	return nil
}

// ArgMax returns the index of the largest component; the first index wins
// on ties. It returns -1 for an empty vector.
//
// Evidence queries only ever ask about this single most-preferred
// dimension, never a blend.
func ArgMax(v []float64) int {
	best := -1
	for i, x := range v {
		if best < 0 || x > v[best] {
			best = i
		}
	}
	return best
}
