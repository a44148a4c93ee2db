package correlate

import (
	"errors"
	"math"
	"sort"

	"lcms-backend/internal/msdata"
)

// ErrInsufficientData means fewer than two aligned rows exist, so no
// correlation can be computed.
var ErrInsufficientData = errors.New("correlate: fewer than 2 aligned rows")

// DefaultIntensityThreshold is the normalized intensity both channels must
// exceed for a row to count as a corresponding peak pair.
const DefaultIntensityThreshold = 0.5

// AlignedRow pairs one point of channel A with its nearest-in-time point of
// channel B.
type AlignedRow struct {
	RT       float64 `json:"retentionTime"`
	ValueA   float64 `json:"valueA"`
	ValueB   float64 `json:"valueB"`
	TimeDiff float64 `json:"timeDifference"`
}

// WindowCorrelation is the correlation of one sliding window. Coefficient is
// NaN and Defined is false when either channel is constant in the window.
type WindowCorrelation struct {
	MeanRT      float64 `json:"meanRetentionTime"`
	Coefficient float64 `json:"coefficient"`
	Defined     bool    `json:"defined"`
}

// PeakPair is an aligned row where both channels show simultaneously high
// normalized intensity.
type PeakPair struct {
	RT     float64 `json:"retentionTime"`
	ValueA float64 `json:"valueA"`
	ValueB float64 `json:"valueB"`
	NormA  float64 `json:"normA"`
	NormB  float64 `json:"normB"`
}

// Result bundles the outputs of Correlate.
type Result struct {
	Coefficient        float64             `json:"coefficient"`
	PValue             float64             `json:"pValue"`
	Local              []WindowCorrelation `json:"local"`
	CorrespondingPeaks []PeakPair          `json:"correspondingPeaks"`
}

// Align matches every point of series a to the closest point of series b
// within rtTolerance. Points of a without a close enough partner are dropped;
// this is intentional lossy alignment, not interpolation.
func Align(a, b msdata.ScanSeries, rtTolerance float64) []AlignedRow {
	var out []AlignedRow
	for i, rt := range a.RT {
		j, ok := nearestIndex(b.RT, rt, rtTolerance)
		if !ok {
			continue
		}
		out = append(out, AlignedRow{
			RT:       rt,
			ValueA:   a.Values[i],
			ValueB:   b.Values[j],
			TimeDiff: math.Abs(rt - b.RT[j]),
		})
	}
	return out
}

// nearestIndex finds the index of the value in sorted rts closest to target,
// requiring the distance to be within tol.
func nearestIndex(rts []float64, target, tol float64) (int, bool) {
	if len(rts) == 0 {
		return 0, false
	}
	i := sort.SearchFloat64s(rts, target)
	best := -1
	bestDiff := math.Inf(1)
	for _, cand := range []int{i - 1, i} {
		if cand < 0 || cand >= len(rts) {
			continue
		}
		if d := math.Abs(rts[cand] - target); d < bestDiff {
			best = cand
			bestDiff = d
		}
	}
	if best < 0 || bestDiff > tol {
		return 0, false
	}
	return best, true
}

// Correlate computes the global product-moment correlation with its
// two-sided p-value, per-window local correlations advancing one row at a
// time, and the corresponding peak pairs above the intensity threshold.
// A threshold <= 0 selects DefaultIntensityThreshold.
func Correlate(rows []AlignedRow, windowSize int, intensityThreshold float64) (Result, error) {
	if len(rows) < 2 {
		return Result{}, ErrInsufficientData
	}
	if intensityThreshold <= 0 {
		intensityThreshold = DefaultIntensityThreshold
	}

	a := make([]float64, len(rows))
	b := make([]float64, len(rows))
	for i, row := range rows {
		a[i] = row.ValueA
		b[i] = row.ValueB
	}

	res := Result{}
	res.Coefficient, res.PValue = pearson(a, b)

	if windowSize >= 2 {
		for i := 0; i+windowSize <= len(rows); i++ {
			r, _ := pearson(a[i:i+windowSize], b[i:i+windowSize])
			var meanRT float64
			for _, row := range rows[i : i+windowSize] {
				meanRT += row.RT
			}
			meanRT /= float64(windowSize)
			res.Local = append(res.Local, WindowCorrelation{
				MeanRT:      meanRT,
				Coefficient: r,
				Defined:     !math.IsNaN(r),
			})
		}
	}

	maxA := maxOf(a)
	maxB := maxOf(b)
	for _, row := range rows {
		if maxA == 0 || maxB == 0 {
			break
		}
		normA := row.ValueA / maxA
		normB := row.ValueB / maxB
		if normA > intensityThreshold && normB > intensityThreshold {
			res.CorrespondingPeaks = append(res.CorrespondingPeaks, PeakPair{
				RT:     row.RT,
				ValueA: row.ValueA,
				ValueB: row.ValueB,
				NormA:  normA,
				NormB:  normB,
			})
		}
	}
	return res, nil
}

func maxOf(values []float64) float64 {
	m := math.Inf(-1)
	for _, v := range values {
		if v > m {
			m = v
		}
	}
	return m
}
