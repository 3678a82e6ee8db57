package embedding

import "math"

// Similarity returns the cosine similarity of a and b in [-1, 1]. Vectors of
// different length are compared up to the shorter one, and a zero-norm input
// scores 0.
func Similarity(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, na2, nb2 float64
	for i := 0; i < n; i++ {
		va := float64(a[i])
		vb := float64(b[i])
		dot += va * vb
		na2 += va * va
		nb2 += vb * vb
	}
	if na2 == 0 || nb2 == 0 {
		return 0
	}
	s := dot / math.Sqrt(na2*nb2)
	return math.Max(-1, math.Min(1, s))
}
