package wavelet

import (
	"math"
	"sort"
)

// BytesPerCoefficient is the assumed storage cost of one retained
// coefficient (index + value + magnitude). The same cost is assumed for
// every codec so cross-algorithm comparisons at a given memory budget
// stay fair.
const BytesPerCoefficient = 12

var (
	invSqrt2 = 1.0 / math.Sqrt2
	sqrt2    = math.Sqrt2
)

// Coefficient is one retained entry of a sparsified transform.
type Coefficient struct {
	Index     int
	Value     float64
	Magnitude float64
}

// KForBudget derives the top-K retention count from a memory budget.
func KForBudget(memoryBytes uint32) uint32 {
	return memoryBytes / BytesPerCoefficient
}

// nextPowerOfTwo returns the smallest power of two >= n, minimum 1.
func nextPowerOfTwo(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

// Analyze computes the orthonormal Haar DWT of curve. Inputs whose length
// is not a power of two are right-padded with zeros; the returned slice has
// the padded length. The input slice is not modified.
func Analyze(curve []float64) []float64 {
	n := len(curve)
	if n == 0 {
		return nil
	}
	padded := nextPowerOfTwo(n)

	current := make([]float64, padded)
	copy(current, curve)
	tmp := make([]float64, padded)

	for size := padded; size > 1; size /= 2 {
		half := size / 2
		for j := 0; j < half; j++ {
			a := current[2*j]
			b := current[2*j+1]
			tmp[j] = (a + b) * invSqrt2
			tmp[j+half] = (a - b) * invSqrt2
		}
		copy(current[:size], tmp[:size])
	}
	return current
}

// Synthesize applies the inverse Haar DWT and truncates the result to
// originalLen, dropping the zero-padding tail added by Analyze. The scale
// factor here must be sqrt(2), not 1/sqrt(2): the wrong constant halves
// reconstructed energy at every level while still producing
// plausible-looking curves.
func Synthesize(coeffs []float64, originalLen int) []float64 {
	n := len(coeffs)
	if n == 0 {
		return nil
	}
	current := make([]float64, n)
	copy(current, coeffs)
	tmp := make([]float64, n)

	for size := 1; size < n; size *= 2 {
		for j := 0; j < size; j++ {
			approx := current[j]
			detail := current[j+size]
			tmp[2*j] = (approx + detail) * sqrt2 / 2.0
			tmp[2*j+1] = (approx - detail) * sqrt2 / 2.0
		}
		copy(current[:2*size], tmp[:2*size])
	}
	if originalLen > n {
		originalLen = n
	}
	return current[:originalLen]
}

// SelectTopK returns the k largest-magnitude coefficients, ordered by
// descending magnitude. Equal magnitudes keep their original index order
// (stable sort); the tie-break is implementation-defined but fixed, since
// it decides exact reconstructed values on adversarial inputs.
func SelectTopK(coeffs []float64, k int) []Coefficient {
	all := make([]Coefficient, len(coeffs))
	for i, v := range coeffs {
		all[i] = Coefficient{Index: i, Value: v, Magnitude: math.Abs(v)}
	}
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].Magnitude > all[j].Magnitude
	})
	if k > len(all) {
		k = len(all)
	}
	if k < 0 {
		k = 0
	}
	return all[:k]
}

// CompressAndReconstruct runs the full lossy round trip: transform, keep
// the top k coefficients, zero the rest, inverse-transform, truncate to the
// input length. Pure function: same curve and k always give the same output.
func CompressAndReconstruct(curve []float64, k int) []float64 {
	if len(curve) == 0 {
		return nil
	}
	coeffs := Analyze(curve)
	kept := SelectTopK(coeffs, k)

	sparse := make([]float64, len(coeffs))
	for _, c := range kept {
		sparse[c.Index] = c.Value
	}
	return Synthesize(sparse, len(curve))
}
