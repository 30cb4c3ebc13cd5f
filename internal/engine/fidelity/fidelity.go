// Package fidelity scores a reconstructed flow curve against the original.
// All functions are pure and side-effect free over two equal-length
// vectors; mismatched lengths are a caller programming error.
package fidelity

import "math"

// epsilon guards the degenerate cases below; values smaller than this are
// treated as zero.
const epsilon = 1e-9

// EuclideanDistance is the L2 distance between the two curves.
func EuclideanDistance(original, reconstructed []float64) float64 {
	sum := 0.0
	for i := range original {
		d := original[i] - reconstructed[i]
		sum += d * d
	}
	return math.Sqrt(sum)
}

// ARE is the average relative error over points where the original is
// nonzero. A curve with no nonzero points scores 0.0 by policy, not by
// accident: an all-zero original reconstructed as all-zero has no error.
func ARE(original, reconstructed []float64) float64 {
	sum := 0.0
	nonZero := 0
	for i := range original {
		if original[i] > epsilon {
			sum += math.Abs(original[i]-reconstructed[i]) / original[i]
			nonZero++
		}
	}
	if nonZero == 0 {
		return 0.0
	}
	return sum / float64(nonZero)
}

// CosineSimilarity is dot(o,r)/(|o||r|). Two curves where either norm
// vanishes are declared identical (1.0).
func CosineSimilarity(original, reconstructed []float64) float64 {
	dot, normO, normR := 0.0, 0.0, 0.0
	for i := range original {
		dot += original[i] * reconstructed[i]
		normO += original[i] * original[i]
		normR += reconstructed[i] * reconstructed[i]
	}
	normO = math.Sqrt(normO)
	normR = math.Sqrt(normR)
	if normO < epsilon || normR < epsilon {
		return 1.0
	}
	return dot / (normO * normR)
}

// EnergySimilarity is the energy ratio folded into [0,1]: min(r, 1/r) of
// reconstructed over original energy. Both energies ~0 scores 1.0; original
// ~0 with nonzero reconstruction scores 0.0.
func EnergySimilarity(original, reconstructed []float64) float64 {
	energyO, energyR := 0.0, 0.0
	for i := range original {
		energyO += original[i] * original[i]
		energyR += reconstructed[i] * reconstructed[i]
	}
	if energyO < epsilon {
		if energyR < epsilon {
			return 1.0
		}
		return 0.0
	}
	ratio := energyR / energyO
	if ratio > 1.0 {
		return 1.0 / ratio
	}
	return ratio
}
