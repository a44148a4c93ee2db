package msdata

import "fmt"

// ScanSeries is an ordered sequence of (retention time, value) pairs for one
// detector channel. Retention times are minutes and non-decreasing; duplicate
// timestamps are allowed and treated as distinct sample points.
type ScanSeries struct {
	RT     []float64
	Values []float64
}

// NewScanSeries validates and constructs a ScanSeries.
func NewScanSeries(rt, values []float64) (ScanSeries, error) {
	if len(rt) != len(values) {
		return ScanSeries{}, fmt.Errorf("scan series: rt length %d != values length %d", len(rt), len(values))
	}
	for i := 1; i < len(rt); i++ {
		if rt[i] < rt[i-1] {
			return ScanSeries{}, fmt.Errorf("scan series: retention time decreases at index %d (%g < %g)", i, rt[i], rt[i-1])
		}
	}
	return ScanSeries{RT: rt, Values: values}, nil
}

// Len returns the number of sample points.
func (s ScanSeries) Len() int { return len(s.RT) }

// SpectralMatrix holds per-scan spectra: rows are scans, columns are spectral
// channels (m/z or wavelength bins). RT maps row index to retention time in
// minutes; Axis maps column index to its physical value.
type SpectralMatrix struct {
	Rows [][]float64
	RT   []float64
	Axis []float64
}

// NewSpectralMatrix validates and constructs a SpectralMatrix.
func NewSpectralMatrix(rows [][]float64, rt, axis []float64) (SpectralMatrix, error) {
	if len(rows) != len(rt) {
		return SpectralMatrix{}, fmt.Errorf("spectral matrix: %d rows but %d retention times", len(rows), len(rt))
	}
	for i, row := range rows {
		if len(row) != len(axis) {
			return SpectralMatrix{}, fmt.Errorf("spectral matrix: row %d has %d columns, axis has %d", i, len(row), len(axis))
		}
	}
	return SpectralMatrix{Rows: rows, RT: rt, Axis: axis}, nil
}

// NumScans returns the number of scan rows.
func (m SpectralMatrix) NumScans() int { return len(m.Rows) }

// IsEmpty reports whether the matrix holds no scans.
func (m SpectralMatrix) IsEmpty() bool { return len(m.Rows) == 0 }

// Spectrum is a single mass spectrum at one retention time.
type Spectrum struct {
	RT        float64
	MZ        []float64
	Intensity []float64
}

// BasePeak returns the most intense point of the spectrum, or zeros if empty.
func (s Spectrum) BasePeak() (mz, intensity float64) {
	for i, v := range s.Intensity {
		if v > intensity {
			intensity = v
			mz = s.MZ[i]
		}
	}
	return mz, intensity
}

// ChannelData bundles one MS polarity channel: its TIC trace and the
// underlying per-scan spectra.
type ChannelData struct {
	TIC     ScanSeries
	Spectra []Spectrum
}

// RawData is everything the analysis pipeline needs from one sample file.
type RawData struct {
	Positive     ChannelData
	Negative     ChannelData
	PDA          SpectralMatrix
	Chromatogram ScanSeries
}
