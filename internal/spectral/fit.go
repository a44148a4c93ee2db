package spectral

import (
	"math"
	"sort"
)

// percentile computes the q-th percentile (0-100) with linear interpolation
// between closest ranks, matching the numpy default.
func percentile(values []float64, q float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	if len(sorted) == 1 {
		return sorted[0]
	}
	pos := q / 100 * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo] + frac*(sorted[hi]-sorted[lo])
}

// polyfitCubic least-squares fits a degree-3 polynomial through (x, y) and
// returns coefficients ordered from the constant term upward.
func polyfitCubic(x, y []float64) [4]float64 {
	// normal equations for the Vandermonde system
	var sums [7]float64
	var rhs [4]float64
	for i := range x {
		pow := 1.0
		for k := 0; k < 7; k++ {
			sums[k] += pow
			if k < 4 {
				rhs[k] += pow * y[i]
			}
			pow *= x[i]
		}
	}

	var m [4][5]float64
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			m[r][c] = sums[r+c]
		}
		m[r][4] = rhs[r]
	}

	// gaussian elimination with partial pivoting
	for col := 0; col < 4; col++ {
		pivot := col
		for r := col + 1; r < 4; r++ {
			if math.Abs(m[r][col]) > math.Abs(m[pivot][col]) {
				pivot = r
			}
		}
		m[col], m[pivot] = m[pivot], m[col]
		if m[col][col] == 0 {
			continue
		}
		for r := col + 1; r < 4; r++ {
			factor := m[r][col] / m[col][col]
			for c := col; c < 5; c++ {
				m[r][c] -= factor * m[col][c]
			}
		}
	}

	var coeffs [4]float64
	for r := 3; r >= 0; r-- {
		if m[r][r] == 0 {
			continue
		}
		v := m[r][4]
		for c := r + 1; c < 4; c++ {
			v -= m[r][c] * coeffs[c]
		}
		coeffs[r] = v / m[r][r]
	}
	return coeffs
}

// polyval evaluates a polynomial with coefficients ordered from the constant
// term upward.
func polyval(coeffs [4]float64, x float64) float64 {
	return coeffs[0] + x*(coeffs[1]+x*(coeffs[2]+x*coeffs[3]))
}
