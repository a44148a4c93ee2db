package spectral

import (
	"errors"
	"fmt"

	"lcms-backend/internal/msdata"
)

// ErrNoDataInWindow means no scan rows fall inside the requested retention
// time window.
var ErrNoDataInWindow = errors.New("spectral: no data in retention window")

// BaselineStrategy selects how CorrectBaseline estimates the baseline.
type BaselineStrategy int

const (
	// BaselineSimple subtracts the 5th-percentile value and clamps at zero.
	// Used for single extracted spectra.
	BaselineSimple BaselineStrategy = iota
	// BaselineIterative fits a cubic through segment-wise 5th-percentile
	// anchors and subtracts the fitted curve. Used for whole-chromatogram
	// integration.
	BaselineIterative
)

const baselinePercentile = 5.0

// Processor runs spectral preprocessing. The optional reference spectrum is
// scoped per instance: use one Processor per in-flight sample.
type Processor struct {
	reference []float64
}

// NewProcessor returns a Processor without a reference spectrum.
func NewProcessor() *Processor { return &Processor{} }

// SetReference attaches a blank reference spectrum; it stays in effect until
// cleared or replaced.
func (p *Processor) SetReference(spectrum []float64) {
	p.reference = append([]float64(nil), spectrum...)
}

// ClearReference detaches the reference spectrum.
func (p *Processor) ClearReference() { p.reference = nil }

// HasReference reports whether a reference spectrum is attached.
func (p *Processor) HasReference() bool { return p.reference != nil }

// SubtractReference subtracts the attached reference element-wise. Without a
// reference this is a documented no-op, not an error.
func (p *Processor) SubtractReference(spectrum []float64) ([]float64, error) {
	if p.reference == nil {
		return append([]float64(nil), spectrum...), nil
	}
	if len(p.reference) != len(spectrum) {
		return nil, fmt.Errorf("spectral: reference length %d != spectrum length %d", len(p.reference), len(spectrum))
	}
	out := make([]float64, len(spectrum))
	for i, v := range spectrum {
		out[i] = v - p.reference[i]
	}
	return out, nil
}

// ExtractWindow averages all matrix rows whose retention time falls within
// [targetRT-halfwidth, targetRT+halfwidth].
func ExtractWindow(m msdata.SpectralMatrix, targetRT, halfwidth float64) ([]float64, error) {
	out := make([]float64, len(m.Axis))
	count := 0
	for i, rt := range m.RT {
		if rt < targetRT-halfwidth || rt > targetRT+halfwidth {
			continue
		}
		for j, v := range m.Rows[i] {
			out[j] += v
		}
		count++
	}
	if count == 0 {
		return nil, fmt.Errorf("%w: rt=%g halfwidth=%g", ErrNoDataInWindow, targetRT, halfwidth)
	}
	for j := range out {
		out[j] /= float64(count)
	}
	return out, nil
}

// CorrectBaseline removes the baseline with the chosen strategy and clamps
// the result at zero.
func CorrectBaseline(spectrum []float64, strategy BaselineStrategy) []float64 {
	switch strategy {
	case BaselineIterative:
		return correctBaselineIterative(spectrum)
	default:
		return correctBaselineSimple(spectrum)
	}
}

func correctBaselineSimple(spectrum []float64) []float64 {
	baseline := percentile(spectrum, baselinePercentile)
	out := make([]float64, len(spectrum))
	for i, v := range spectrum {
		if d := v - baseline; d > 0 {
			out[i] = d
		}
	}
	return out
}

// correctBaselineIterative partitions the signal into ~20 segments, anchors
// a cubic on each segment's 5th percentile, clamps the fit under the signal
// pointwise, then subtracts.
func correctBaselineIterative(signal []float64) []float64 {
	n := len(signal)
	if n == 0 {
		return nil
	}
	segment := n / 20
	if segment < 1 {
		segment = 1
	}

	var anchors []float64
	for i := 0; i < n; i += segment {
		end := i + segment
		if end > n {
			end = n
		}
		anchors = append(anchors, percentile(signal[i:end], baselinePercentile))
	}
	if len(anchors) < 4 {
		// not enough anchors to support a cubic
		return correctBaselineSimple(signal)
	}

	// anchor x positions spread evenly over the full index range
	xs := make([]float64, len(anchors))
	for i := range xs {
		xs[i] = float64(i) * float64(n-1) / float64(len(anchors)-1)
	}
	coeffs := polyfitCubic(xs, anchors)

	out := make([]float64, n)
	for i := range signal {
		baseline := polyval(coeffs, float64(i))
		if baseline > signal[i] {
			baseline = signal[i]
		}
		if d := signal[i] - baseline; d > 0 {
			out[i] = d
		}
	}
	return out
}

// Smooth applies a centered moving average of the given odd window size,
// zero-padded at the edges, producing same-length output.
func Smooth(spectrum []float64, window int) []float64 {
	out := make([]float64, len(spectrum))
	if window <= 1 {
		copy(out, spectrum)
		return out
	}
	half := (window - 1) / 2
	inv := 1.0 / float64(window)
	for i := range spectrum {
		var sum float64
		for k := i - half; k <= i-half+window-1; k++ {
			if k >= 0 && k < len(spectrum) {
				sum += spectrum[k]
			}
		}
		out[i] = sum * inv
	}
	return out
}

// Process runs the fixed preprocessing order for a spectrum at one retention
// time: extract, subtract reference, correct baseline, smooth.
func (p *Processor) Process(m msdata.SpectralMatrix, targetRT, halfwidth float64, strategy BaselineStrategy, smoothWindow int) ([]float64, error) {
	spectrum, err := ExtractWindow(m, targetRT, halfwidth)
	if err != nil {
		return nil, err
	}
	spectrum, err = p.SubtractReference(spectrum)
	if err != nil {
		return nil, err
	}
	spectrum = CorrectBaseline(spectrum, strategy)
	return Smooth(spectrum, smoothWindow), nil
}

// TotalAbsorbance collapses a spectral matrix to a chromatogram by summing
// each scan across all spectral channels.
func TotalAbsorbance(m msdata.SpectralMatrix) msdata.ScanSeries {
	values := make([]float64, len(m.Rows))
	for i, row := range m.Rows {
		var sum float64
		for _, v := range row {
			sum += v
		}
		values[i] = sum
	}
	return msdata.ScanSeries{RT: append([]float64(nil), m.RT...), Values: values}
}
