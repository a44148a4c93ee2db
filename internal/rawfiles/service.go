package rawfiles

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"lcms-backend/internal/shared/storage/object"
)

// Service contains business logic for raw files.
type Service struct {
	Store object.ObjectStore
	Repo  Repo
}

// Upload saves the instrument file to object storage and records it.
func (s *Service) Upload(ctx context.Context, fileName string, r io.Reader) (RawFile, error) {
	if fileName == "" {
		return RawFile{}, ErrInvalidInput
	}
	ext := strings.ToLower(filepath.Ext(fileName))
	if ext != ".mzml" {
		return RawFile{}, fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}

	storageKey, size, mimeType, err := s.Store.Save(ctx, "raw", fileName, r)
	if err != nil {
		return RawFile{}, err
	}

	file := RawFile{
		ID:         uuid.NewString(),
		FileName:   fileName,
		MimeType:   mimeType,
		SizeBytes:  size,
		StorageKey: storageKey,
		CreatedAt:  time.Now().UTC(),
	}

	if err := s.Repo.Create(ctx, file); err != nil {
		return RawFile{}, err
	}

	return file, nil
}

// Get returns a raw file by ID.
func (s *Service) Get(ctx context.Context, fileID string) (RawFile, error) {
	if fileID == "" {
		return RawFile{}, ErrInvalidInput
	}
	return s.Repo.GetByID(ctx, fileID)
}
