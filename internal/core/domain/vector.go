package domain

import "math"

// CosineSimilarity computes dot(a,b) / (|a|*|b|) for feature vectors.
// Zero-norm, empty, mismatched or non-finite inputs yield 0.
func CosineSimilarity(a, b []float64) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	return cosine(dot, na, nb)
}

// CosineSimilarity32 is CosineSimilarity for embedding vectors.
// Accumulation happens in float64.
func CosineSimilarity32(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		va, vb := float64(a[i]), float64(b[i])
		dot += va * vb
		na += va * va
		nb += vb * vb
	}
	return cosine(dot, na, nb)
}

func cosine(dot, na, nb float64) float64 {
	if !IsFinite(dot) || !IsFinite(na) || !IsFinite(nb) {
		return 0
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return clampUnit(dot / (math.Sqrt(na) * math.Sqrt(nb)))
}

// IsFinite reports whether x is neither NaN nor an infinity.
func IsFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

// clampUnit absorbs floating point drift past +-1.
func clampUnit(x float64) float64 {
	if x > 1 {
		return 1
	}
	if x < -1 {
		return -1
	}
	return x
}
