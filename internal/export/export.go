// Package export renders completed sample analyses as downloadable reports.
package export

import (
	"strconv"

	"lcms-backend/internal/samples"
)

var columns = []string{
	"id",
	"sample_id",
	"batch_id",
	"status",
	"formula",
	"monoisotopic_mass",
	"mh_mass",
	"mna_mass",
	"mhminus_mass",
	"product_detected",
	"detected_mass",
	"retention_time",
	"purity",
	"error_code",
}

// row flattens one sample into report cells, empty where not applicable.
func row(s samples.Sample) []string {
	cells := []string{
		s.ID,
		s.SampleID,
		s.BatchID,
		s.Status,
		"", "", "", "", "", "", "", "", "", "",
	}
	if s.Result != nil {
		r := s.Result
		cells[4] = r.Formula
		cells[5] = formatMass(r.MonoisotopicMass)
		cells[6] = formatMass(r.MHMass)
		cells[7] = formatMass(r.MNaMass)
		cells[8] = formatMass(r.MHMinusMass)
		cells[9] = strconv.FormatBool(r.ProductDetected)
		if r.DetectedMass != nil {
			cells[10] = formatMass(*r.DetectedMass)
		}
		if r.RetentionTime != nil {
			cells[11] = strconv.FormatFloat(*r.RetentionTime, 'f', 2, 64)
		}
		cells[12] = strconv.FormatFloat(r.Purity, 'f', 1, 64)
	}
	if s.ErrorCode != nil {
		cells[13] = *s.ErrorCode
	}
	return cells
}

func formatMass(v float64) string {
	return strconv.FormatFloat(v, 'f', 4, 64)
}
