package samples

import (
	"context"
	"errors"
	"fmt"
	"math"

	"lcms-backend/internal/chem"
	"lcms-backend/internal/correlate"
	"lcms-backend/internal/msdata"
	"lcms-backend/internal/peaks"
	"lcms-backend/internal/spectral"
)

// ErrMissingChannel means a channel the pipeline requires was absent from
// the raw data.
var ErrMissingChannel = errors.New("samples: required channel missing")

// Phase is an orchestrator state. Completed and Failed are terminal.
type Phase string

const (
	PhaseLoading   Phase = "loading"
	PhaseAnalyzing Phase = "analyzing"
	PhaseCompleted Phase = "completed"
	PhaseFailed    Phase = "failed"
)

// PhaseListener observes orchestrator phase transitions. err is non-nil only
// for PhaseFailed.
type PhaseListener interface {
	PhaseChanged(sampleID string, phase Phase, err error)
}

// PhaseListenerFunc adapts a function to PhaseListener.
type PhaseListenerFunc func(sampleID string, phase Phase, err error)

// PhaseChanged calls f.
func (f PhaseListenerFunc) PhaseChanged(sampleID string, phase Phase, err error) {
	f(sampleID, phase, err)
}

// LoadFunc obtains the raw per-channel data for one sample.
type LoadFunc func(ctx context.Context) (*msdata.RawData, error)

// OrchestratorConfig tunes the per-sample pipeline. Zero values select the
// documented defaults.
type OrchestratorConfig struct {
	// MassTolerance is the +/- window in Da for product matching.
	MassTolerance float64
	// PurityWindowMin/Max bound the retention window for purity integration,
	// in minutes.
	PurityWindowMin float64
	PurityWindowMax float64
	// MaxMajorPeaks caps the reported major peak summaries.
	MaxMajorPeaks int
	// CorrelationWindow is the sliding window for local MS/PDA correlation;
	// negative disables the correlation stage.
	CorrelationWindow int
	// CorrelationRTTolerance bounds MS-to-PDA alignment, in minutes.
	CorrelationRTTolerance float64
	// Detect constrains peak detection on every channel.
	Detect peaks.DetectOptions
}

func (c OrchestratorConfig) withDefaults() OrchestratorConfig {
	if c.MassTolerance == 0 {
		c.MassTolerance = 0.5
	}
	if c.PurityWindowMin == 0 && c.PurityWindowMax == 0 {
		c.PurityWindowMin, c.PurityWindowMax = 0.2, 2.5
	}
	if c.MaxMajorPeaks == 0 {
		c.MaxMajorPeaks = 3
	}
	if c.CorrelationWindow == 0 {
		c.CorrelationWindow = 5
	}
	if c.CorrelationRTTolerance == 0 {
		c.CorrelationRTTolerance = 0.1
	}
	if c.Detect == (peaks.DetectOptions{}) {
		c.Detect = peaks.DetectOptions{MinHeight: 0.1, HeightRelative: true, MinDistance: 10}
	}
	return c
}

// Orchestrator sequences one sample through loading, analysis and result
// assembly. Instances are single-use per sample and independent of each
// other; run one per in-flight sample.
type Orchestrator struct {
	cfg      OrchestratorConfig
	listener PhaseListener
}

// NewOrchestrator builds an orchestrator. listener may be nil.
func NewOrchestrator(cfg OrchestratorConfig, listener PhaseListener) *Orchestrator {
	return &Orchestrator{cfg: cfg.withDefaults(), listener: listener}
}

func (o *Orchestrator) emit(sampleID string, phase Phase, err error) {
	if o.listener != nil {
		o.listener.PhaseChanged(sampleID, phase, err)
	}
}

// Run drives the state machine for one sample: load raw data, analyze,
// assemble the result. Any fault moves straight to Failed with the
// originating error preserved; there is no internal retry.
func (o *Orchestrator) Run(ctx context.Context, sampleID, smiles string, load LoadFunc) (*Result, error) {
	o.emit(sampleID, PhaseLoading, nil)
	raw, err := load(ctx)
	if err != nil {
		o.emit(sampleID, PhaseFailed, err)
		return nil, err
	}

	o.emit(sampleID, PhaseAnalyzing, nil)
	result, err := o.analyze(raw, smiles)
	// the full-resolution matrices are not referenced past this point
	raw = nil
	if err != nil {
		o.emit(sampleID, PhaseFailed, err)
		return nil, err
	}

	o.emit(sampleID, PhaseCompleted, nil)
	return result, nil
}

func (o *Orchestrator) analyze(raw *msdata.RawData, smiles string) (*Result, error) {
	profile, err := chem.ComputeMasses(smiles)
	if err != nil {
		return nil, err
	}

	posPeaks, err := o.detectChannelPeaks(raw.Positive)
	if err != nil {
		return nil, fmt.Errorf("positive channel: %w", err)
	}
	negPeaks, err := o.detectChannelPeaks(raw.Negative)
	if err != nil {
		return nil, fmt.Errorf("negative channel: %w", err)
	}
	if posPeaks == nil && negPeaks == nil {
		return nil, fmt.Errorf("%w: no MS scans in either polarity", ErrMissingChannel)
	}

	result := &Result{
		Formula:          profile.Formula,
		MonoisotopicMass: profile.Monoisotopic,
		MHMass:           profile.MH,
		MNaMass:          profile.MNa,
		MHMinusMass:      profile.MHMinus,
	}

	detection := o.detectProduct(posPeaks, negPeaks, profile)
	if detection.Detected {
		result.ProductDetected = true
		mass, rt := detection.Mass, detection.RT
		result.DetectedMass = &mass
		result.RetentionTime = &rt
	}

	var pdaSeries *msdata.ScanSeries
	if !raw.PDA.IsEmpty() {
		series := spectral.TotalAbsorbance(raw.PDA)
		series.Values = spectral.CorrectBaseline(series.Values, spectral.BaselineIterative)
		pdaSeries = &series

		pdaPeaks, err := peaks.Detect(series, o.cfg.Detect)
		if err != nil {
			return nil, fmt.Errorf("pda channel: %w", err)
		}
		result.Purity = peaks.CalculatePurity(pdaPeaks, o.cfg.PurityWindowMin, o.cfg.PurityWindowMax)
	} else {
		// no PDA trace recorded; integrate purity from the MS chromatogram
		source := posPeaks
		if source == nil {
			source = negPeaks
		}
		result.Purity = peaks.CalculatePurity(source, o.cfg.PurityWindowMin, o.cfg.PurityWindowMax)
	}

	major := posPeaks
	if major == nil {
		major = negPeaks
	}
	for _, p := range peaks.MajorPeaks(major, o.cfg.MaxMajorPeaks) {
		result.MajorPeaks = append(result.MajorPeaks, MajorPeakSummary{RT: p.RT, Mass: p.Mass})
	}

	if o.cfg.CorrelationWindow > 0 && pdaSeries != nil && raw.Positive.TIC.Len() > 0 {
		result.Correlation = o.correlateChannels(raw.Positive.TIC, *pdaSeries)
	}

	if raw.Positive.TIC.Len() > 0 {
		result.PositiveTIC = &ChannelSeries{RT: raw.Positive.TIC.RT, Values: raw.Positive.TIC.Values}
	}
	if raw.Negative.TIC.Len() > 0 {
		result.NegativeTIC = &ChannelSeries{RT: raw.Negative.TIC.RT, Values: raw.Negative.TIC.Values}
	}
	if pdaSeries != nil {
		result.PDAAbsorbance = &ChannelSeries{RT: pdaSeries.RT, Values: pdaSeries.Values}
	}
	return result, nil
}

// detectChannelPeaks finds peaks on a polarity channel's TIC trace and
// annotates each with the base peak m/z of the nearest scan. A channel with
// no scans yields nil without error; too few scans to detect on is an error.
func (o *Orchestrator) detectChannelPeaks(channel msdata.ChannelData) ([]peaks.Peak, error) {
	if channel.TIC.Len() == 0 {
		return nil, nil
	}
	detected, err := peaks.Detect(channel.TIC, o.cfg.Detect)
	if err != nil {
		return nil, err
	}
	for i := range detected {
		if spec := nearestSpectrum(channel.Spectra, detected[i].RT); spec != nil {
			mz, _ := spec.BasePeak()
			detected[i].Mass = mz
		}
	}
	return detected, nil
}

// detectProduct tries the target adducts in decreasing likelihood: [M+H]+
// and [M+Na]+ on the positive channel, [M-H]- on the negative channel.
func (o *Orchestrator) detectProduct(posPeaks, negPeaks []peaks.Peak, profile chem.MassProfile) peaks.Detection {
	attempts := []struct {
		candidates []peaks.Peak
		target     float64
	}{
		{posPeaks, profile.MH},
		{posPeaks, profile.MNa},
		{negPeaks, profile.MHMinus},
	}
	for _, attempt := range attempts {
		if len(attempt.candidates) == 0 {
			continue
		}
		if d := peaks.DetectProduct(attempt.candidates, attempt.target, o.cfg.MassTolerance); d.Detected {
			return d
		}
	}
	return peaks.Detection{}
}

func (o *Orchestrator) correlateChannels(ms, pda msdata.ScanSeries) *CorrelationSummary {
	rows := correlate.Align(ms, pda, o.cfg.CorrelationRTTolerance)
	res, err := correlate.Correlate(rows, o.cfg.CorrelationWindow, 0)
	if err != nil {
		// correlation is a best-effort enrichment, not a pipeline failure
		return nil
	}
	if math.IsNaN(res.Coefficient) {
		return nil
	}
	return &CorrelationSummary{
		Coefficient: res.Coefficient,
		PValue:      res.PValue,
		PeakPairs:   len(res.CorrespondingPeaks),
	}
}

func nearestSpectrum(spectra []msdata.Spectrum, rt float64) *msdata.Spectrum {
	var best *msdata.Spectrum
	bestDiff := math.Inf(1)
	for i := range spectra {
		if d := math.Abs(spectra[i].RT - rt); d < bestDiff {
			best = &spectra[i]
			bestDiff = d
		}
	}
	return best
}
