package spectral

import (
	"errors"
	"math"
	"testing"

	"lcms-backend/internal/msdata"
)

func testMatrix(t *testing.T) msdata.SpectralMatrix {
	t.Helper()
	m, err := msdata.NewSpectralMatrix(
		[][]float64{
			{1, 2, 3},
			{4, 5, 6},
			{7, 8, 9},
			{10, 11, 12},
		},
		[]float64{0.5, 1.0, 1.5, 2.0},
		[]float64{200, 250, 300},
	)
	if err != nil {
		t.Fatalf("NewSpectralMatrix: %v", err)
	}
	return m
}

func TestExtractWindow(t *testing.T) {
	m := testMatrix(t)

	cases := []struct {
		name      string
		targetRT  float64
		halfwidth float64
		want      []float64
	}{
		{"single row", 1.0, 0.2, []float64{4, 5, 6}},
		{"two rows averaged", 1.25, 0.3, []float64{5.5, 6.5, 7.5}},
		{"all rows", 1.25, 1.0, []float64{5.5, 6.5, 7.5}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ExtractWindow(m, tc.targetRT, tc.halfwidth)
			if err != nil {
				t.Fatalf("ExtractWindow: %v", err)
			}
			if len(got) != len(tc.want) {
				t.Fatalf("got %d channels, want %d", len(got), len(tc.want))
			}
			for i := range got {
				if math.Abs(got[i]-tc.want[i]) > 1e-12 {
					t.Errorf("channel %d = %g, want %g", i, got[i], tc.want[i])
				}
			}
		})
	}
}

func TestExtractWindowEmpty(t *testing.T) {
	m := testMatrix(t)
	if _, err := ExtractWindow(m, 10.0, 0.1); !errors.Is(err, ErrNoDataInWindow) {
		t.Fatalf("err = %v, want ErrNoDataInWindow", err)
	}
}

func TestCorrectBaselineSimple(t *testing.T) {
	spectrum := []float64{2, 2, 2, 2, 10, 2, 2, 2, 2, 2}
	got := CorrectBaseline(spectrum, BaselineSimple)

	if len(got) != len(spectrum) {
		t.Fatalf("got %d points, want %d", len(got), len(spectrum))
	}
	for i, v := range got {
		if v < 0 {
			t.Errorf("point %d is negative: %g", i, v)
		}
	}
	// the flat floor should land at zero, the spike keeps its excess
	if got[0] != 0 {
		t.Errorf("floor value = %g, want 0", got[0])
	}
	if got[4] != 8 {
		t.Errorf("spike value = %g, want 8", got[4])
	}
}

func TestCorrectBaselineIterative(t *testing.T) {
	// flat baseline of 5 with two gaussian peaks on top
	n := 200
	signal := make([]float64, n)
	for i := range signal {
		x := float64(i)
		signal[i] = 5 +
			40*math.Exp(-(x-60)*(x-60)/(2*36)) +
			25*math.Exp(-(x-140)*(x-140)/(2*36))
	}

	got := CorrectBaseline(signal, BaselineIterative)
	if len(got) != n {
		t.Fatalf("got %d points, want %d", len(got), n)
	}
	for i, v := range got {
		if v < 0 {
			t.Fatalf("point %d is negative: %g", i, v)
		}
	}
	// far from both peaks the corrected signal should sit near zero
	for _, i := range []int{5, 100, 195} {
		if got[i] > 1.5 {
			t.Errorf("baseline residue at %d = %g, want near 0", i, got[i])
		}
	}
	// the apexes should survive roughly intact
	if got[60] < 35 || got[60] > 41 {
		t.Errorf("first apex = %g, want ~40", got[60])
	}
	if got[140] < 20 || got[140] > 26 {
		t.Errorf("second apex = %g, want ~25", got[140])
	}
}

func TestCorrectBaselineShortSignal(t *testing.T) {
	got := CorrectBaseline([]float64{3, 3, 9}, BaselineIterative)
	if len(got) != 3 {
		t.Fatalf("got %d points, want 3", len(got))
	}
	for i, v := range got {
		if v < 0 {
			t.Errorf("point %d is negative: %g", i, v)
		}
	}
	if CorrectBaseline(nil, BaselineIterative) != nil {
		t.Error("nil signal should return nil")
	}
}

func TestSmooth(t *testing.T) {
	spectrum := []float64{0, 0, 9, 0, 0}

	got := Smooth(spectrum, 3)
	want := []float64{0, 3, 3, 3, 0}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-12 {
			t.Errorf("point %d = %g, want %g", i, got[i], want[i])
		}
	}

	same := Smooth(spectrum, 1)
	for i := range spectrum {
		if same[i] != spectrum[i] {
			t.Errorf("window 1 changed point %d: %g", i, same[i])
		}
	}
}

func TestProcessorReference(t *testing.T) {
	p := NewProcessor()
	spectrum := []float64{5, 6, 7}

	out, err := p.SubtractReference(spectrum)
	if err != nil {
		t.Fatalf("SubtractReference without reference: %v", err)
	}
	for i := range spectrum {
		if out[i] != spectrum[i] {
			t.Errorf("no-op changed point %d: %g", i, out[i])
		}
	}

	p.SetReference([]float64{1, 2, 3})
	if !p.HasReference() {
		t.Fatal("HasReference = false after SetReference")
	}
	out, err = p.SubtractReference(spectrum)
	if err != nil {
		t.Fatalf("SubtractReference: %v", err)
	}
	want := []float64{4, 4, 4}
	for i := range want {
		if out[i] != want[i] {
			t.Errorf("point %d = %g, want %g", i, out[i], want[i])
		}
	}

	if _, err := p.SubtractReference([]float64{1, 2}); err == nil {
		t.Error("length mismatch should fail")
	}

	p.ClearReference()
	if p.HasReference() {
		t.Error("HasReference = true after ClearReference")
	}
}

func TestProcess(t *testing.T) {
	m := testMatrix(t)
	p := NewProcessor()

	got, err := p.Process(m, 1.0, 0.2, BaselineSimple, 1)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d channels, want 3", len(got))
	}
	for i, v := range got {
		if v < 0 {
			t.Errorf("channel %d is negative: %g", i, v)
		}
	}

	if _, err := p.Process(m, 10.0, 0.1, BaselineSimple, 1); !errors.Is(err, ErrNoDataInWindow) {
		t.Fatalf("err = %v, want ErrNoDataInWindow", err)
	}
}

func TestTotalAbsorbance(t *testing.T) {
	m := testMatrix(t)
	series := TotalAbsorbance(m)

	if series.Len() != 4 {
		t.Fatalf("got %d points, want 4", series.Len())
	}
	want := []float64{6, 15, 24, 33}
	for i := range want {
		if series.Values[i] != want[i] {
			t.Errorf("point %d = %g, want %g", i, series.Values[i], want[i])
		}
	}
	if series.RT[0] != 0.5 || series.RT[3] != 2.0 {
		t.Errorf("retention times not carried over: %v", series.RT)
	}
}
