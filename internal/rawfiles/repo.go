package rawfiles

import "context"

// Repo defines persistence operations for raw files.
type Repo interface {
	Create(ctx context.Context, file RawFile) error
	GetByID(ctx context.Context, fileID string) (RawFile, error)
}
