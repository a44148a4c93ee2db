package samples

import (
	"context"
	"time"
)

// Repo defines persistence operations for samples.
type Repo interface {
	Create(ctx context.Context, sample Sample) error
	GetByID(ctx context.Context, sampleID string) (Sample, error)
	List(ctx context.Context, batchID string, limit, offset int) ([]Sample, error)
	UpdateStatus(ctx context.Context, sampleID, status string, startedAt *time.Time) error
	Complete(ctx context.Context, sampleID string, result *Result, completedAt time.Time) error
	Fail(ctx context.Context, sampleID, errorCode, errorMessage string, retryable bool, completedAt time.Time) error
}
