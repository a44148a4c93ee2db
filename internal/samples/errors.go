package samples

import "errors"

var (
	ErrNotFound = errors.New("not found")
)

// Sample status values as persisted.
const (
	StatusQueued    = "queued"
	StatusLoading   = "loading"
	StatusAnalyzing = "analyzing"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Error codes attached to failed samples.
const (
	ErrorCodeInvalidStructure  = "INVALID_STRUCTURE"
	ErrorCodeInsufficientData  = "INSUFFICIENT_DATA"
	ErrorCodeUnreadableFile    = "UNREADABLE_FILE"
	ErrorCodeUnsupportedFormat = "UNSUPPORTED_FORMAT"
	ErrorCodeStorage           = "STORAGE_ERROR"
	ErrorCodeInternal          = "INTERNAL_ERROR"
)
