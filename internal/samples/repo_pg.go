package samples

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// Create inserts a new sample.
func (r *PGRepo) Create(ctx context.Context, sample Sample) error {
	const query = `
INSERT INTO samples (
	id, sample_id, batch_id, smiles, raw_file_key, status, created_at
)
VALUES ($1, $2, NULLIF($3, ''), $4, $5, $6, $7)`
	_, err := r.DB.ExecContext(ctx, query,
		sample.ID,
		sample.SampleID,
		sample.BatchID,
		sample.SMILES,
		sample.RawFileKey,
		sample.Status,
		sample.CreatedAt,
	)
	return err
}

// GetByID returns a sample by ID.
func (r *PGRepo) GetByID(ctx context.Context, sampleID string) (Sample, error) {
	const query = `
SELECT id, sample_id, batch_id, smiles, raw_file_key, status, result,
       error_code, error_message, error_retryable,
       started_at, completed_at, created_at, updated_at
FROM samples
WHERE id = $1
LIMIT 1`
	sample, err := scanSample(r.DB.QueryRowContext(ctx, query, sampleID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Sample{}, ErrNotFound
		}
		return Sample{}, err
	}
	return sample, nil
}

// List returns samples newest-first, optionally filtered to one batch.
func (r *PGRepo) List(ctx context.Context, batchID string, limit, offset int) ([]Sample, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	const query = `
SELECT id, sample_id, batch_id, smiles, raw_file_key, status, result,
       error_code, error_message, error_retryable,
       started_at, completed_at, created_at, updated_at
FROM samples
WHERE ($1 = '' OR batch_id = $1)
ORDER BY created_at DESC
LIMIT $2 OFFSET $3`

	rows, err := r.DB.QueryContext(ctx, query, batchID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Sample
	for rows.Next() {
		sample, err := scanSample(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sample)
	}
	return out, rows.Err()
}

// UpdateStatus moves a sample to an intermediate status.
func (r *PGRepo) UpdateStatus(ctx context.Context, sampleID, status string, startedAt *time.Time) error {
	const query = `
UPDATE samples
SET status = $1,
    started_at = CASE
        WHEN $2::timestamptz IS NOT NULL THEN $2::timestamptz
        WHEN $1 = 'loading' AND started_at IS NULL THEN now()
        ELSE started_at
    END,
    updated_at = now()
WHERE id = $3::uuid`

	res, err := r.DB.ExecContext(ctx, query, status, startedAt, sampleID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Complete records the analysis result and marks the sample completed.
func (r *PGRepo) Complete(ctx context.Context, sampleID string, result *Result, completedAt time.Time) error {
	const query = `
UPDATE samples
SET status = 'completed',
    result = $1::jsonb,
    error_code = NULL,
    error_message = NULL,
    error_retryable = false,
    completed_at = $2::timestamptz,
    updated_at = now()
WHERE id = $3::uuid`

	payload, err := json.Marshal(result)
	if err != nil {
		return err
	}
	res, err := r.DB.ExecContext(ctx, query, payload, completedAt, sampleID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Fail marks the sample failed with classification details.
func (r *PGRepo) Fail(ctx context.Context, sampleID, errorCode, errorMessage string, retryable bool, completedAt time.Time) error {
	const query = `
UPDATE samples
SET status = 'failed',
    error_code = $1,
    error_message = $2,
    error_retryable = $3,
    completed_at = $4::timestamptz,
    updated_at = now()
WHERE id = $5::uuid`

	res, err := r.DB.ExecContext(ctx, query, errorCode, errorMessage, retryable, completedAt, sampleID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

var _ Repo = (*PGRepo)(nil)

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSample(row rowScanner) (Sample, error) {
	var s Sample
	var batchID sql.NullString
	var result sql.NullString
	var errorCode sql.NullString
	var errorMessage sql.NullString
	var errorRetryable sql.NullBool
	var startedAt sql.NullTime
	var completedAt sql.NullTime

	err := row.Scan(
		&s.ID,
		&s.SampleID,
		&batchID,
		&s.SMILES,
		&s.RawFileKey,
		&s.Status,
		&result,
		&errorCode,
		&errorMessage,
		&errorRetryable,
		&startedAt,
		&completedAt,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		return Sample{}, err
	}
	if batchID.Valid {
		s.BatchID = batchID.String
	}
	if result.Valid {
		s.Result = &Result{}
		if err := json.Unmarshal([]byte(result.String), s.Result); err != nil {
			return Sample{}, fmt.Errorf("decode result for sample %s: %w", s.ID, err)
		}
	}
	if errorCode.Valid {
		s.ErrorCode = &errorCode.String
	}
	if errorMessage.Valid {
		s.ErrorMessage = &errorMessage.String
	}
	if errorRetryable.Valid {
		s.ErrorRetryable = errorRetryable.Bool
	}
	if startedAt.Valid {
		s.StartedAt = &startedAt.Time
	}
	if completedAt.Valid {
		s.CompletedAt = &completedAt.Time
	}
	return s, nil
}
