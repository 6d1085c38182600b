package index

import "math"

// dot computes the sparse dot product, iterating the smaller vector.
func dot(a, b SparseVector) float64 {
	if len(b) < len(a) {
		a, b = b, a
	}
	var sum float64
	for pos, w := range a {
		sum += w * b[pos]
	}
	return sum
}

// norm returns the L2 magnitude of v.
func (v SparseVector) norm() float64 {
	var sum float64
	for _, w := range v {
		sum += w * w
	}
	return math.Sqrt(sum)
}

// cosine computes cosine similarity given precomputed magnitudes.
// A zero magnitude on either side yields 0 rather than dividing by zero.
func cosine(a, b SparseVector, normA, normB float64) float64 {
	den := normA * normB
	if den == 0 {
		return 0
	}
	return dot(a, b) / den
}
