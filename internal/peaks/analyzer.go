package peaks

import "sort"

// Detection is the outcome of a product search over detected peaks.
type Detection struct {
	Detected bool    `json:"detected"`
	Mass     float64 `json:"mass,omitempty"`
	RT       float64 `json:"retentionTime,omitempty"`
}

// DetectProduct looks for a peak whose mass lies within tolerance of the
// target. Among matches the most intense peak wins; ties go to the earliest
// retention time.
func DetectProduct(candidates []Peak, targetMass, tolerance float64) Detection {
	var best *Peak
	for i := range candidates {
		p := &candidates[i]
		if p.Mass < targetMass-tolerance || p.Mass > targetMass+tolerance {
			continue
		}
		if best == nil || p.Intensity > best.Intensity ||
			(p.Intensity == best.Intensity && p.RT < best.RT) {
			best = p
		}
	}
	if best == nil {
		return Detection{}
	}
	return Detection{Detected: true, Mass: best.Mass, RT: best.RT}
}

// CalculatePurity returns the largest peak's share of the total peak area
// inside the retention window, as a percentage in [0, 100]. An empty window
// or zero total area yields 0.
func CalculatePurity(candidates []Peak, minRT, maxRT float64) float64 {
	var total, largest float64
	for _, p := range candidates {
		if p.RT < minRT || p.RT > maxRT {
			continue
		}
		total += p.Area
		if p.Area > largest {
			largest = p.Area
		}
	}
	if total == 0 {
		return 0.0
	}
	purity := largest / total * 100
	if purity > 100 {
		purity = 100
	}
	return purity
}

// MajorPeaks returns up to max peaks ordered by descending intensity,
// preserving the original order between equal intensities.
func MajorPeaks(candidates []Peak, max int) []Peak {
	out := append([]Peak(nil), candidates...)
	sort.SliceStable(out, func(a, b int) bool { return out[a].Intensity > out[b].Intensity })
	if max >= 0 && len(out) > max {
		out = out[:max]
	}
	return out
}
