package pipeline

import "math"

// NormalizeVector scales v to unit length and returns the result as a
// new slice. Stored vectors are normalized once here so that similarity
// lookups reduce to a plain dot product. A zero or empty vector has no
// direction; it comes back as zeros.
func NormalizeVector(v []float32) []float32 {
	if len(v) == 0 {
		return v
	}

	var sumSquares float64
	for _, x := range v {
		sumSquares += float64(x) * float64(x)
	}
	magnitude := float32(math.Sqrt(sumSquares))

	result := make([]float32, len(v))
	if magnitude == 0 {
		return result
	}
	for i, x := range v {
		result[i] = x / magnitude
	}
	return result
}
