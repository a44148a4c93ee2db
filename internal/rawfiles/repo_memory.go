package rawfiles

import (
	"context"
	"sync"
)

// MemoryRepo is an in-memory implementation of Repo.
type MemoryRepo struct {
	mu   sync.RWMutex
	byID map[string]RawFile
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{byID: make(map[string]RawFile)}
}

// Create stores the raw file record.
func (r *MemoryRepo) Create(ctx context.Context, file RawFile) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[file.ID] = file
	return nil
}

// GetByID returns a raw file by ID.
func (r *MemoryRepo) GetByID(ctx context.Context, fileID string) (RawFile, error) {
	if err := ctx.Err(); err != nil {
		return RawFile{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	file, ok := r.byID[fileID]
	if !ok {
		return RawFile{}, ErrNotFound
	}
	return file, nil
}

var _ Repo = (*MemoryRepo)(nil)
