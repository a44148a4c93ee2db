package samples

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"lcms-backend/internal/chem"
	"lcms-backend/internal/correlate"
	"lcms-backend/internal/msdata"
	"lcms-backend/internal/peaks"
	"lcms-backend/internal/queue"
	"lcms-backend/internal/rawfiles"
	"lcms-backend/internal/shared/metrics"
	"lcms-backend/internal/shared/storage/object"
	"lcms-backend/internal/shared/telemetry"
	"lcms-backend/internal/spectral"
)

var errStorage = errors.New("storage")

// Service contains business logic for samples.
type Service struct {
	Repo          Repo
	Files         rawfiles.Repo
	Store         object.ObjectStore
	Queue         queue.Client
	Orchestration OrchestratorConfig
}

// Create registers a new sample against an uploaded raw file and kicks off
// asynchronous analysis, either through the queue or in-process.
func (s *Service) Create(ctx context.Context, sampleID, batchID, smiles, rawFileID string) (Sample, error) {
	if sampleID == "" || smiles == "" || rawFileID == "" {
		return Sample{}, errors.New("sampleID, smiles and rawFileID are required")
	}

	file, err := s.Files.GetByID(ctx, rawFileID)
	if err != nil {
		return Sample{}, fmt.Errorf("raw file lookup id=%s: %w", rawFileID, err)
	}

	sample := Sample{
		ID:         uuid.NewString(),
		SampleID:   sampleID,
		BatchID:    batchID,
		SMILES:     smiles,
		RawFileKey: file.StorageKey,
		Status:     StatusQueued,
		CreatedAt:  time.Now().UTC(),
	}

	if err := s.Repo.Create(ctx, sample); err != nil {
		return Sample{}, err
	}

	if s.Queue != nil {
		msg := queue.Message{
			SampleID:   sample.ID,
			RequestID:  requestIDFromContext(ctx),
			EnqueuedAt: time.Now().UTC().Format(time.RFC3339Nano),
			Version:    1,
		}
		if err := s.Queue.Send(ctx, msg); err != nil {
			return Sample{}, fmt.Errorf("enqueue sample id=%s: %w", sample.ID, err)
		}
	} else {
		go func(ctx context.Context, id string) {
			_ = s.Process(ctx, id)
		}(backgroundWithRequestID(ctx), sample.ID)
	}

	return sample, nil
}

// Get returns a sample by ID.
func (s *Service) Get(ctx context.Context, sampleID string) (Sample, error) {
	if sampleID == "" {
		return Sample{}, errors.New("sampleID is required")
	}
	return s.Repo.GetByID(ctx, sampleID)
}

// List returns samples newest-first, optionally filtered to one batch.
func (s *Service) List(ctx context.Context, batchID string, limit, offset int) ([]Sample, error) {
	return s.Repo.List(ctx, batchID, limit, offset)
}

// Process runs the analysis pipeline for one queued sample and persists the
// terminal state. The returned error reflects the pipeline fault so queue
// consumers can decide whether to redeliver.
func (s *Service) Process(ctx context.Context, sampleID string) (err error) {
	startedAt := time.Now().UTC()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
			s.failSample(ctx, sampleID, err, &startedAt)
		}
	}()

	sample, err := s.Repo.GetByID(ctx, sampleID)
	if err != nil {
		return fmt.Errorf("sample lookup id=%s: %w", sampleID, err)
	}
	metrics.IncAnalysisStarted()

	orch := NewOrchestrator(s.Orchestration, s.phaseListener(ctx, sample, &startedAt))
	result, err := orch.Run(ctx, sample.ID, sample.SMILES, func(ctx context.Context) (*msdata.RawData, error) {
		body, err := s.Store.Open(ctx, sample.RawFileKey)
		if err != nil {
			return nil, fmt.Errorf("%w: open raw file key=%s: %v", errStorage, sample.RawFileKey, err)
		}
		defer body.Close()
		return msdata.ReadMzML(body)
	})
	if err != nil {
		s.failSample(ctx, sampleID, err, &startedAt)
		return err
	}

	completedAt := time.Now().UTC()
	if err := s.Repo.Complete(ctx, sampleID, result, completedAt); err != nil {
		wrapped := fmt.Errorf("%w: persist result: %v", errStorage, err)
		s.failSample(ctx, sampleID, wrapped, &startedAt)
		return wrapped
	}
	metrics.IncAnalysisCompleted()
	metrics.ObserveAnalysisDurationMs(durationMs(&startedAt, &completedAt))
	telemetry.Info("sample.status", map[string]any{
		"request_id":        requestIDFromContext(ctx),
		"sample_id":         sample.SampleID,
		"batch_id":          sample.BatchID,
		"id":                sample.ID,
		"status":            StatusCompleted,
		"status_transition": "analyzing->completed",
		"product_detected":  result.ProductDetected,
		"purity":            result.Purity,
		"duration_ms":       durationMs(&startedAt, &completedAt),
	})
	return nil
}

// phaseListener persists intermediate phases and logs transitions. Terminal
// phases are persisted by Process itself because they carry payloads.
func (s *Service) phaseListener(ctx context.Context, sample Sample, startedAt *time.Time) PhaseListener {
	prev := sample.Status
	return PhaseListenerFunc(func(id string, phase Phase, phaseErr error) {
		if phase == PhaseCompleted || phase == PhaseFailed {
			return
		}
		status := string(phase)
		var at *time.Time
		if phase == PhaseLoading {
			at = startedAt
		}
		if err := s.Repo.UpdateStatus(ctx, id, status, at); err != nil {
			telemetry.Error("sample.status_update", map[string]any{
				"id":     id,
				"status": status,
				"error":  err.Error(),
			})
		}
		telemetry.Info("sample.status", map[string]any{
			"request_id":        requestIDFromContext(ctx),
			"sample_id":         sample.SampleID,
			"batch_id":          sample.BatchID,
			"id":                id,
			"status":            status,
			"status_transition": prev + "->" + status,
		})
		prev = status
	})
}

func (s *Service) failSample(ctx context.Context, sampleID string, err error, startedAt *time.Time) {
	code, retryable := classifyFailure(err)
	msg := sanitizeError(err)
	completedAt := time.Now().UTC()
	if updateErr := s.Repo.Fail(context.Background(), sampleID, code, msg, retryable, completedAt); updateErr != nil {
		telemetry.Error("sample.fail_update", map[string]any{
			"id":    sampleID,
			"error": updateErr.Error(),
			"cause": msg,
		})
	}
	metrics.IncAnalysisFailed()
	if startedAt != nil {
		metrics.ObserveAnalysisDurationMs(durationMs(startedAt, &completedAt))
	}
	telemetry.Info("sample.status", map[string]any{
		"request_id":  requestIDFromContext(ctx),
		"id":          sampleID,
		"status":      StatusFailed,
		"error_code":  code,
		"retryable":   retryable,
		"error":       msg,
		"duration_ms": durationMs(startedAt, &completedAt),
	})
}

func durationMs(startedAt, completedAt *time.Time) float64 {
	if startedAt == nil || completedAt == nil {
		return 0
	}
	return float64(completedAt.Sub(*startedAt).Microseconds()) / 1000.0
}

// classifyFailure maps a pipeline error onto a stable code and a redelivery
// hint. Only storage faults are worth retrying; everything else is a
// property of the sample itself.
func classifyFailure(err error) (string, bool) {
	switch {
	case err == nil:
		return ErrorCodeInternal, false
	case errors.Is(err, chem.ErrInvalidStructure):
		return ErrorCodeInvalidStructure, false
	case errors.Is(err, msdata.ErrUnsupportedFormat):
		return ErrorCodeUnsupportedFormat, false
	case errors.Is(err, msdata.ErrUnreadableFile):
		return ErrorCodeUnreadableFile, false
	case errors.Is(err, peaks.ErrEmptySeries),
		errors.Is(err, spectral.ErrNoDataInWindow),
		errors.Is(err, correlate.ErrInsufficientData),
		errors.Is(err, ErrMissingChannel):
		return ErrorCodeInsufficientData, false
	case errors.Is(err, errStorage), errors.Is(err, context.DeadlineExceeded):
		return ErrorCodeStorage, true
	default:
		return ErrorCodeInternal, false
	}
}

func sanitizeError(err error) string {
	if err == nil {
		return ""
	}
	msg := strings.ReplaceAll(err.Error(), "\n", " ")
	msg = strings.ReplaceAll(msg, "\r", " ")
	msg = strings.TrimSpace(msg)
	const maxLen = 500
	if len(msg) > maxLen {
		msg = msg[:maxLen]
	}
	return msg
}
