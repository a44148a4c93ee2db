package samples

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepo stores samples in memory and is safe for concurrent use.
type MemoryRepo struct {
	mu   sync.RWMutex
	byID map[string]Sample
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{byID: make(map[string]Sample)}
}

// Create stores the sample.
func (r *MemoryRepo) Create(ctx context.Context, sample Sample) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[sample.ID] = sample
	return nil
}

// GetByID returns a sample by its ID.
func (r *MemoryRepo) GetByID(ctx context.Context, sampleID string) (Sample, error) {
	if err := ctx.Err(); err != nil {
		return Sample{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	sample, ok := r.byID[sampleID]
	if !ok {
		return Sample{}, ErrNotFound
	}
	return sample, nil
}

// List returns samples newest-first, optionally filtered to one batch.
func (r *MemoryRepo) List(ctx context.Context, batchID string, limit, offset int) ([]Sample, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if offset < 0 {
		offset = 0
	}
	if limit < 0 {
		limit = 0
	}

	r.mu.RLock()
	all := make([]Sample, 0, len(r.byID))
	for _, sample := range r.byID {
		if batchID != "" && sample.BatchID != batchID {
			continue
		}
		all = append(all, sample)
	}
	r.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool {
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})

	if offset >= len(all) {
		return []Sample{}, nil
	}
	end := len(all)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return all[offset:end], nil
}

// UpdateStatus moves a sample to an intermediate status.
func (r *MemoryRepo) UpdateStatus(ctx context.Context, sampleID, status string, startedAt *time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	sample, ok := r.byID[sampleID]
	if !ok {
		return ErrNotFound
	}
	sample.Status = status
	if startedAt != nil {
		sample.StartedAt = startedAt
	} else if status == StatusLoading && sample.StartedAt == nil {
		now := time.Now().UTC()
		sample.StartedAt = &now
	}
	sample.UpdatedAt = time.Now().UTC()
	r.byID[sampleID] = sample
	return nil
}

// Complete records the analysis result and marks the sample completed.
func (r *MemoryRepo) Complete(ctx context.Context, sampleID string, result *Result, completedAt time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	sample, ok := r.byID[sampleID]
	if !ok {
		return ErrNotFound
	}
	sample.Status = StatusCompleted
	sample.Result = result
	sample.ErrorCode = nil
	sample.ErrorMessage = nil
	sample.ErrorRetryable = false
	sample.CompletedAt = &completedAt
	sample.UpdatedAt = time.Now().UTC()
	r.byID[sampleID] = sample
	return nil
}

// Fail marks the sample failed with classification details.
func (r *MemoryRepo) Fail(ctx context.Context, sampleID, errorCode, errorMessage string, retryable bool, completedAt time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	sample, ok := r.byID[sampleID]
	if !ok {
		return ErrNotFound
	}
	sample.Status = StatusFailed
	sample.ErrorCode = &errorCode
	sample.ErrorMessage = &errorMessage
	sample.ErrorRetryable = retryable
	sample.CompletedAt = &completedAt
	sample.UpdatedAt = time.Now().UTC()
	r.byID[sampleID] = sample
	return nil
}

var _ Repo = (*MemoryRepo)(nil)
