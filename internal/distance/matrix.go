package distance

import "route-optimizer/internal/models"

// Matrix is a dense, symmetric table of pairwise distances in kilometers.
// It is built once per solve and never shared between calls.
type Matrix struct {
	n    int
	data []float64 // row-major, n*n
}

// NewMatrix computes all pairwise distances between points using metric.
// Only the upper triangle is evaluated; the lower triangle is mirrored and
// the diagonal is always zero.
func NewMatrix(points []models.Coordinate, metric Metric) *Matrix {
	if metric == nil {
		metric = Haversine
	}

	n := len(points)
	m := &Matrix{
		n:    n,
		data: make([]float64, n*n),
	}

	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			d := metric(points[i], points[j])
			m.data[i*n+j] = d
			m.data[j*n+i] = d
		}
	}

	return m
}

// Size returns the number of points the matrix covers
func (m *Matrix) Size() int {
	return m.n
}

// At returns the distance between point i and point j
func (m *Matrix) At(i, j int) float64 {
	return m.data[i*m.n+j]
}

// PathCost sums the distances between consecutive indices of order
func (m *Matrix) PathCost(order []int) float64 {
	total := 0.0
	for k := 1; k < len(order); k++ {
		total += m.At(order[k-1], order[k])
	}
	return total
}
