package peaks

import (
	"errors"
	"math"
	"testing"

	"lcms-backend/internal/msdata"
)

func gaussianSeries(t *testing.T, n int, dt, center, sigma, amplitude float64) msdata.ScanSeries {
	t.Helper()
	rt := make([]float64, n)
	values := make([]float64, n)
	for i := range rt {
		rt[i] = float64(i) * dt
		d := rt[i] - center
		values[i] = amplitude * math.Exp(-d*d/(2*sigma*sigma))
	}
	series, err := msdata.NewScanSeries(rt, values)
	if err != nil {
		t.Fatalf("NewScanSeries: %v", err)
	}
	return series
}

func TestDetectSingleGaussian(t *testing.T) {
	series := gaussianSeries(t, 101, 0.02, 1.0, 0.1, 100)

	found, err := Detect(series, DetectOptions{})
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if len(found) != 1 {
		t.Fatalf("got %d peaks, want 1", len(found))
	}
	p := found[0]
	if math.Abs(p.RT-1.0) > 1e-9 {
		t.Errorf("apex RT = %g, want 1.0", p.RT)
	}
	if math.Abs(p.Intensity-100) > 1e-9 {
		t.Errorf("apex intensity = %g, want 100", p.Intensity)
	}
	if p.Prominence < 99.9 {
		t.Errorf("prominence = %g, want ~100", p.Prominence)
	}
	// full width at half maximum of a gaussian is 2.355 sigma
	if math.Abs(p.Width-0.2355) > 0.02 {
		t.Errorf("width = %g, want ~0.2355", p.Width)
	}
	if p.LeftRT >= p.RT || p.RightRT <= p.RT {
		t.Errorf("bounds [%g, %g] do not bracket apex %g", p.LeftRT, p.RightRT, p.RT)
	}
	if p.Area < 17 || p.Area > 22 {
		t.Errorf("area = %g, want roughly the half-height slice of 25", p.Area)
	}
}

func TestDetectPlateauCollapsesToMiddle(t *testing.T) {
	rt := []float64{0, 1, 2, 3, 4, 5, 6}
	values := []float64{0, 1, 5, 5, 5, 1, 0}
	series, err := msdata.NewScanSeries(rt, values)
	if err != nil {
		t.Fatalf("NewScanSeries: %v", err)
	}

	found, err := Detect(series, DetectOptions{})
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if len(found) != 1 {
		t.Fatalf("got %d peaks, want 1", len(found))
	}
	if found[0].RT != 3 {
		t.Errorf("plateau apex RT = %g, want middle sample 3", found[0].RT)
	}
}

func TestDetectConstraints(t *testing.T) {
	rt := []float64{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14}
	values := []float64{0, 1, 2, 5, 8, 10, 8, 5, 6, 4, 2, 1, 0, 0, 0}
	series, err := msdata.NewScanSeries(rt, values)
	if err != nil {
		t.Fatalf("NewScanSeries: %v", err)
	}

	cases := []struct {
		name    string
		opts    DetectOptions
		wantRTs []float64
	}{
		{"no constraints", DetectOptions{}, []float64{5, 8}},
		{"min distance keeps tallest", DetectOptions{MinDistance: 5}, []float64{5}},
		{"relative height", DetectOptions{MinHeight: 0.7, HeightRelative: true}, []float64{5}},
		{"absolute height", DetectOptions{MinHeight: 7}, []float64{5}},
		{"min prominence", DetectOptions{MinProminence: 5}, []float64{5}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			found, err := Detect(series, tc.opts)
			if err != nil {
				t.Fatalf("Detect: %v", err)
			}
			if len(found) != len(tc.wantRTs) {
				t.Fatalf("got %d peaks, want %d", len(found), len(tc.wantRTs))
			}
			for i, want := range tc.wantRTs {
				if found[i].RT != want {
					t.Errorf("peak %d RT = %g, want %g", i, found[i].RT, want)
				}
			}
		})
	}
}

func TestDetectShortSeries(t *testing.T) {
	for _, n := range []int{0, 1, 2} {
		rt := make([]float64, n)
		values := make([]float64, n)
		for i := range rt {
			rt[i] = float64(i)
		}
		series, err := msdata.NewScanSeries(rt, values)
		if err != nil {
			t.Fatalf("NewScanSeries: %v", err)
		}
		if _, err := Detect(series, DetectOptions{}); !errors.Is(err, ErrEmptySeries) {
			t.Errorf("Detect with %d points err = %v, want ErrEmptySeries", n, err)
		}
	}
}

func TestDetectReturnsRetentionTimeOrder(t *testing.T) {
	series := gaussianSeries(t, 201, 0.02, 1.0, 0.08, 50)
	for i := range series.Values {
		d := series.RT[i] - 3.0
		series.Values[i] += 120 * math.Exp(-d*d/(2*0.08*0.08))
	}

	found, err := Detect(series, DetectOptions{})
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if len(found) != 2 {
		t.Fatalf("got %d peaks, want 2", len(found))
	}
	if found[0].RT > found[1].RT {
		t.Errorf("peaks out of retention order: %g before %g", found[0].RT, found[1].RT)
	}
	if math.Abs(found[0].RT-1.0) > 0.02 || math.Abs(found[1].RT-3.0) > 0.02 {
		t.Errorf("apexes at %g and %g, want ~1.0 and ~3.0", found[0].RT, found[1].RT)
	}
}
