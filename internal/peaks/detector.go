package peaks

import (
	"errors"
	"sort"

	"lcms-backend/internal/msdata"
)

// ErrEmptySeries means the input series is too short to contain a local
// maximum.
var ErrEmptySeries = errors.New("peaks: series has fewer than 3 points")

// Peak is a detected local maximum in a scan series. RT bounds come from the
// half-height crossings, clipped to the series extent.
type Peak struct {
	RT         float64 `json:"retentionTime"`
	Intensity  float64 `json:"intensity"`
	Mass       float64 `json:"mass,omitempty"`
	Area       float64 `json:"area"`
	Width      float64 `json:"width"`
	LeftRT     float64 `json:"leftRt"`
	RightRT    float64 `json:"rightRt"`
	Prominence float64 `json:"prominence"`
}

// DetectOptions constrains which local maxima qualify as peaks. Zero values
// disable the corresponding constraint.
type DetectOptions struct {
	// MinHeight is the minimum apex value. When HeightRelative is set it is
	// interpreted as a fraction of the series maximum.
	MinHeight      float64
	HeightRelative bool
	// MinDistance is the minimum spacing in samples between accepted peaks.
	MinDistance int
	// MinProminence is the minimum drop to the nearest higher terrain.
	MinProminence float64
	// MinWidth is the minimum width in samples at half height.
	MinWidth float64
}

// Detect finds peaks in a scan series, computes their prominence, half-height
// width and trapezoidal area, and returns them in retention time order.
func Detect(series msdata.ScanSeries, opts DetectOptions) ([]Peak, error) {
	n := series.Len()
	if n < 3 {
		return nil, ErrEmptySeries
	}
	y := series.Values
	rt := series.RT

	candidates := localMaxima(y)

	if opts.MinHeight > 0 {
		threshold := opts.MinHeight
		if opts.HeightRelative {
			threshold *= maxValue(y)
		}
		candidates = filterIdx(candidates, func(i int) bool { return y[i] >= threshold })
	}

	prominences := make(map[int]float64, len(candidates))
	for _, i := range candidates {
		prominences[i] = prominence(y, i)
	}
	if opts.MinProminence > 0 {
		candidates = filterIdx(candidates, func(i int) bool { return prominences[i] >= opts.MinProminence })
	}

	if opts.MinDistance > 1 {
		candidates = enforceDistance(candidates, y, opts.MinDistance)
	}

	var out []Peak
	for _, i := range candidates {
		leftIP, rightIP := halfHeightBounds(y, i, prominences[i])
		widthSamples := rightIP - leftIP
		if opts.MinWidth > 0 && widthSamples < opts.MinWidth {
			continue
		}
		leftRT := interpRT(rt, leftIP)
		rightRT := interpRT(rt, rightIP)
		out = append(out, Peak{
			RT:         rt[i],
			Intensity:  y[i],
			Area:       trapezoid(rt, y, int(leftIP), int(rightIP)),
			Width:      rightRT - leftRT,
			LeftRT:     leftRT,
			RightRT:    rightRT,
			Prominence: prominences[i],
		})
	}

	sort.SliceStable(out, func(a, b int) bool { return out[a].RT < out[b].RT })
	return out, nil
}

// localMaxima returns the indices of strict local maxima. A flat top
// collapses to its middle sample.
func localMaxima(y []float64) []int {
	var out []int
	i := 1
	for i < len(y)-1 {
		if y[i] <= y[i-1] {
			i++
			continue
		}
		// walk over a possible plateau
		j := i
		for j < len(y)-1 && y[j+1] == y[j] {
			j++
		}
		if j < len(y)-1 && y[j+1] < y[i] {
			out = append(out, (i+j)/2)
		}
		i = j + 1
	}
	return out
}

// prominence measures the apex height above the higher of the two valleys
// separating the peak from taller terrain (or the series boundary).
func prominence(y []float64, peak int) float64 {
	leftMin := y[peak]
	for i := peak - 1; i >= 0; i-- {
		if y[i] > y[peak] {
			break
		}
		if y[i] < leftMin {
			leftMin = y[i]
		}
	}
	rightMin := y[peak]
	for i := peak + 1; i < len(y); i++ {
		if y[i] > y[peak] {
			break
		}
		if y[i] < rightMin {
			rightMin = y[i]
		}
	}
	base := leftMin
	if rightMin > base {
		base = rightMin
	}
	return y[peak] - base
}

// enforceDistance keeps the tallest peaks first and drops any candidate
// closer than minDistance samples to an already kept peak.
func enforceDistance(candidates []int, y []float64, minDistance int) []int {
	byHeight := append([]int(nil), candidates...)
	sort.SliceStable(byHeight, func(a, b int) bool { return y[byHeight[a]] > y[byHeight[b]] })

	removed := make(map[int]bool, len(candidates))
	for _, i := range byHeight {
		if removed[i] {
			continue
		}
		for _, j := range candidates {
			if j == i || removed[j] {
				continue
			}
			if abs(j-i) < minDistance {
				removed[j] = true
			}
		}
	}
	return filterIdx(candidates, func(i int) bool { return !removed[i] })
}

// halfHeightBounds finds the fractional sample positions where the signal
// crosses half the peak's prominence below the apex, clipped to the extent
// of the peak's bases and the series.
func halfHeightBounds(y []float64, peak int, prom float64) (left, right float64) {
	evalHeight := y[peak] - 0.5*prom

	left = 0
	for i := peak; i > 0; i-- {
		if y[i-1] > y[peak] {
			left = float64(i)
			break
		}
		if y[i-1] <= evalHeight {
			// interpolate between i-1 and i
			left = float64(i) - (y[i]-evalHeight)/(y[i]-y[i-1])
			break
		}
	}

	right = float64(len(y) - 1)
	for i := peak; i < len(y)-1; i++ {
		if y[i+1] > y[peak] {
			right = float64(i)
			break
		}
		if y[i+1] <= evalHeight {
			right = float64(i) + (y[i]-evalHeight)/(y[i]-y[i+1])
			break
		}
	}
	return left, right
}

// interpRT converts a fractional sample position to a retention time.
func interpRT(rt []float64, pos float64) float64 {
	if pos <= 0 {
		return rt[0]
	}
	if pos >= float64(len(rt)-1) {
		return rt[len(rt)-1]
	}
	i := int(pos)
	frac := pos - float64(i)
	return rt[i] + frac*(rt[i+1]-rt[i])
}

// trapezoid integrates raw values between two sample indices inclusive.
func trapezoid(x, y []float64, left, right int) float64 {
	if left < 0 {
		left = 0
	}
	if right > len(y)-1 {
		right = len(y) - 1
	}
	var area float64
	for i := left; i < right; i++ {
		area += 0.5 * (y[i] + y[i+1]) * (x[i+1] - x[i])
	}
	return area
}

func filterIdx(idx []int, keep func(int) bool) []int {
	out := idx[:0]
	for _, i := range idx {
		if keep(i) {
			out = append(out, i)
		}
	}
	return out
}

func maxValue(y []float64) float64 {
	m := y[0]
	for _, v := range y[1:] {
		if v > m {
			m = v
		}
	}
	return m
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
