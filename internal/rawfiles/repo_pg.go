package rawfiles

import (
	"context"
	"database/sql"
	"errors"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// Create inserts a new raw file record.
func (r *PGRepo) Create(ctx context.Context, file RawFile) error {
	const query = `
INSERT INTO raw_files (
	id, file_name, mime_type, size_bytes, storage_provider, storage_key, created_at
)
VALUES ($1, $2, $3, $4, $5, $6, $7)`

	storageProvider := file.StorageProvider
	if storageProvider == "" {
		storageProvider = "local"
	}

	_, err := r.DB.ExecContext(ctx, query,
		file.ID,
		file.FileName,
		file.MimeType,
		file.SizeBytes,
		storageProvider,
		file.StorageKey,
		file.CreatedAt,
	)
	return err
}

// GetByID returns a raw file by ID.
func (r *PGRepo) GetByID(ctx context.Context, fileID string) (RawFile, error) {
	const query = `
SELECT id, file_name, mime_type, size_bytes, storage_provider, storage_key, created_at
FROM raw_files
WHERE id = $1
LIMIT 1`

	var file RawFile
	var storageProvider sql.NullString
	err := r.DB.QueryRowContext(ctx, query, fileID).Scan(
		&file.ID,
		&file.FileName,
		&file.MimeType,
		&file.SizeBytes,
		&storageProvider,
		&file.StorageKey,
		&file.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return RawFile{}, ErrNotFound
		}
		return RawFile{}, err
	}
	if storageProvider.Valid {
		file.StorageProvider = storageProvider.String
	}
	return file, nil
}

var _ Repo = (*PGRepo)(nil)
