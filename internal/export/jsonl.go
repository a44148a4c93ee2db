package export

import (
	"encoding/json"
	"io"

	"lcms-backend/internal/samples"
)

// WriteJSONL renders the samples as newline-delimited JSON, one full sample
// record per line.
func WriteJSONL(w io.Writer, list []samples.Sample) error {
	enc := json.NewEncoder(w)
	for _, s := range list {
		if err := enc.Encode(s); err != nil {
			return err
		}
	}
	return nil
}
