package samples

import (
	"context"
	"errors"
	"math"
	"testing"

	"lcms-backend/internal/chem"
	"lcms-backend/internal/msdata"
)

// benzene: monoisotopic 78.0470, [M+H]+ 79.0548
const benzeneSMILES = "c1ccccc1"

func gaussianTrace(n int, dt, center, amplitude float64) msdata.ScanSeries {
	rt := make([]float64, n)
	values := make([]float64, n)
	for i := range rt {
		rt[i] = float64(i) * dt
		d := rt[i] - center
		values[i] = amplitude * math.Exp(-d*d/(2*0.01))
	}
	return msdata.ScanSeries{RT: rt, Values: values}
}

func testRawData(productMZ float64) *msdata.RawData {
	tic := gaussianTrace(101, 0.02, 1.0, 5000)
	return &msdata.RawData{
		Positive: msdata.ChannelData{
			TIC: tic,
			Spectra: []msdata.Spectrum{
				{RT: 1.0, MZ: []float64{productMZ}, Intensity: []float64{5000}},
			},
		},
		Chromatogram: tic,
	}
}

func staticLoad(raw *msdata.RawData) LoadFunc {
	return func(ctx context.Context) (*msdata.RawData, error) { return raw, nil }
}

type phaseRecorder struct {
	phases []Phase
	errs   []error
}

func (r *phaseRecorder) PhaseChanged(sampleID string, phase Phase, err error) {
	r.phases = append(r.phases, phase)
	r.errs = append(r.errs, err)
}

func TestOrchestratorDetectsProduct(t *testing.T) {
	profile, err := chem.ComputeMasses(benzeneSMILES)
	if err != nil {
		t.Fatalf("ComputeMasses: %v", err)
	}

	rec := &phaseRecorder{}
	orch := NewOrchestrator(OrchestratorConfig{}, rec)
	result, err := orch.Run(context.Background(), "s1", benzeneSMILES, staticLoad(testRawData(profile.MH)))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	wantPhases := []Phase{PhaseLoading, PhaseAnalyzing, PhaseCompleted}
	if len(rec.phases) != len(wantPhases) {
		t.Fatalf("phases = %v, want %v", rec.phases, wantPhases)
	}
	for i, p := range wantPhases {
		if rec.phases[i] != p {
			t.Errorf("phase %d = %s, want %s", i, rec.phases[i], p)
		}
		if rec.errs[i] != nil {
			t.Errorf("phase %d carries error %v", i, rec.errs[i])
		}
	}

	if result.Formula != "C6H6" {
		t.Errorf("formula = %s, want C6H6", result.Formula)
	}
	if !result.ProductDetected {
		t.Fatal("product not detected")
	}
	if math.Abs(*result.DetectedMass-profile.MH) > 1e-9 {
		t.Errorf("detected mass = %g, want %g", *result.DetectedMass, profile.MH)
	}
	if math.Abs(*result.RetentionTime-1.0) > 1e-9 {
		t.Errorf("retention time = %g, want 1.0", *result.RetentionTime)
	}
	// the single peak owns the whole integrated area
	if result.Purity != 100 {
		t.Errorf("purity = %g, want 100", result.Purity)
	}
	if len(result.MajorPeaks) != 1 {
		t.Fatalf("got %d major peaks, want 1", len(result.MajorPeaks))
	}
	if result.PositiveTIC == nil || result.NegativeTIC != nil {
		t.Errorf("channel traces wrong: pos=%v neg=%v", result.PositiveTIC != nil, result.NegativeTIC != nil)
	}
}

func TestOrchestratorProductNotDetected(t *testing.T) {
	// base peak far from every adduct of benzene
	orch := NewOrchestrator(OrchestratorConfig{}, nil)
	result, err := orch.Run(context.Background(), "s1", benzeneSMILES, staticLoad(testRawData(500.0)))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.ProductDetected {
		t.Error("product detected with no matching mass")
	}
	if result.DetectedMass != nil || result.RetentionTime != nil {
		t.Error("detection payload set without a detection")
	}
}

func TestOrchestratorNegativeChannelFallback(t *testing.T) {
	profile, err := chem.ComputeMasses(benzeneSMILES)
	if err != nil {
		t.Fatalf("ComputeMasses: %v", err)
	}
	tic := gaussianTrace(101, 0.02, 1.0, 5000)
	raw := &msdata.RawData{
		Negative: msdata.ChannelData{
			TIC: tic,
			Spectra: []msdata.Spectrum{
				{RT: 1.0, MZ: []float64{profile.MHMinus}, Intensity: []float64{5000}},
			},
		},
		Chromatogram: tic,
	}

	orch := NewOrchestrator(OrchestratorConfig{}, nil)
	result, err := orch.Run(context.Background(), "s1", benzeneSMILES, staticLoad(raw))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !result.ProductDetected {
		t.Fatal("product not detected on negative channel")
	}
	if math.Abs(*result.DetectedMass-profile.MHMinus) > 1e-9 {
		t.Errorf("detected mass = %g, want %g", *result.DetectedMass, profile.MHMinus)
	}
	if result.NegativeTIC == nil || result.PositiveTIC != nil {
		t.Errorf("channel traces wrong: pos=%v neg=%v", result.PositiveTIC != nil, result.NegativeTIC != nil)
	}
}

func TestOrchestratorWithPDA(t *testing.T) {
	profile, err := chem.ComputeMasses(benzeneSMILES)
	if err != nil {
		t.Fatalf("ComputeMasses: %v", err)
	}
	raw := testRawData(profile.MH)

	// single-wavelength PDA trace shaped like the TIC
	rows := make([][]float64, raw.Positive.TIC.Len())
	for i, v := range raw.Positive.TIC.Values {
		rows[i] = []float64{v / 10}
	}
	raw.PDA = msdata.SpectralMatrix{
		Rows: rows,
		RT:   append([]float64(nil), raw.Positive.TIC.RT...),
		Axis: []float64{254},
	}

	orch := NewOrchestrator(OrchestratorConfig{}, nil)
	result, err := orch.Run(context.Background(), "s1", benzeneSMILES, staticLoad(raw))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.PDAAbsorbance == nil {
		t.Fatal("PDA absorbance trace missing")
	}
	if result.Purity < 99 {
		t.Errorf("purity = %g, want ~100 from the PDA trace", result.Purity)
	}
	if result.Correlation == nil {
		t.Fatal("correlation missing with both channels present")
	}
	if result.Correlation.Coefficient < 0.95 {
		t.Errorf("correlation coefficient = %g, want near 1", result.Correlation.Coefficient)
	}
}

func TestOrchestratorFailures(t *testing.T) {
	loadErr := errors.New("cannot open")

	cases := []struct {
		name      string
		smiles    string
		load      LoadFunc
		wantErr   error
		lastPhase Phase
	}{
		{
			"load failure",
			benzeneSMILES,
			func(ctx context.Context) (*msdata.RawData, error) { return nil, loadErr },
			loadErr,
			PhaseFailed,
		},
		{
			"invalid structure",
			"C1CC",
			staticLoad(testRawData(79.0)),
			chem.ErrInvalidStructure,
			PhaseFailed,
		},
		{
			"no ms channels",
			benzeneSMILES,
			staticLoad(&msdata.RawData{}),
			ErrMissingChannel,
			PhaseFailed,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := &phaseRecorder{}
			orch := NewOrchestrator(OrchestratorConfig{}, rec)
			_, err := orch.Run(context.Background(), "s1", tc.smiles, tc.load)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("err = %v, want %v", err, tc.wantErr)
			}
			last := rec.phases[len(rec.phases)-1]
			if last != tc.lastPhase {
				t.Errorf("last phase = %s, want %s", last, tc.lastPhase)
			}
			if rec.errs[len(rec.errs)-1] == nil {
				t.Error("failed phase carries no error")
			}
		})
	}
}
