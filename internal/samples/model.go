package samples

import "time"

// Sample is one analysis job: a registered sample with its structural
// notation and raw data file, plus the analysis outcome once complete.
type Sample struct {
	ID             string     `json:"id"`
	SampleID       string     `json:"sampleId"`
	BatchID        string     `json:"batchId,omitempty"`
	SMILES         string     `json:"smiles"`
	RawFileKey     string     `json:"rawFileKey"`
	Status         string     `json:"status"`
	Result         *Result    `json:"result,omitempty"`
	ErrorCode      *string    `json:"errorCode,omitempty"`
	ErrorMessage   *string    `json:"errorMessage,omitempty"`
	ErrorRetryable bool       `json:"errorRetryable,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
	StartedAt      *time.Time `json:"startedAt,omitempty"`
	CompletedAt    *time.Time `json:"completedAt,omitempty"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

// MajorPeakSummary is one of the up-to-three most intense peaks reported
// with a result.
type MajorPeakSummary struct {
	RT   float64 `json:"retentionTime"`
	Mass float64 `json:"mass"`
}

// ChannelSeries is a compact (retention time, value) trace retained for
// presentation after the full-resolution matrices are released.
type ChannelSeries struct {
	RT     []float64 `json:"rt"`
	Values []float64 `json:"values"`
}

// CorrelationSummary captures the cross-channel correlation of the MS and
// PDA traces when both were available.
type CorrelationSummary struct {
	Coefficient float64 `json:"coefficient"`
	PValue      float64 `json:"pValue"`
	PeakPairs   int     `json:"peakPairs"`
}

// Result is the immutable outcome of one sample analysis.
type Result struct {
	Formula          string   `json:"formula"`
	MonoisotopicMass float64  `json:"monoisotopicMass"`
	MHMass           float64  `json:"mhMass"`
	MNaMass          float64  `json:"mnaMass"`
	MHMinusMass      float64  `json:"mhMinusMass"`
	ProductDetected  bool     `json:"productDetected"`
	DetectedMass     *float64 `json:"detectedMass,omitempty"`
	RetentionTime    *float64 `json:"retentionTime,omitempty"`
	Purity           float64  `json:"purity"`

	MajorPeaks []MajorPeakSummary `json:"majorPeaks,omitempty"`

	Correlation *CorrelationSummary `json:"correlation,omitempty"`

	PositiveTIC   *ChannelSeries `json:"positiveTic,omitempty"`
	NegativeTIC   *ChannelSeries `json:"negativeTic,omitempty"`
	PDAAbsorbance *ChannelSeries `json:"pdaAbsorbance,omitempty"`
}
