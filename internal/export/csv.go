package export

import (
	"encoding/csv"
	"io"

	"lcms-backend/internal/samples"
)

// WriteCSV renders the samples as a CSV report.
func WriteCSV(w io.Writer, list []samples.Sample) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(columns); err != nil {
		return err
	}
	for _, s := range list {
		if err := cw.Write(row(s)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
