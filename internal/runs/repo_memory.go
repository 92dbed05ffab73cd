package runs

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepo stores runs in memory and is safe for concurrent use.
type MemoryRepo struct {
	mu     sync.RWMutex
	byID   map[string]Run
	byUser map[string][]Run
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		byID:   make(map[string]Run),
		byUser: make(map[string][]Run),
	}
}

// Create stores the run.
func (r *MemoryRepo) Create(ctx context.Context, run Run) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[run.ID] = run
	r.byUser[run.UserID] = append(r.byUser[run.UserID], run)
	return nil
}

// GetByID returns a run by its ID.
func (r *MemoryRepo) GetByID(ctx context.Context, runID string) (Run, error) {
	if err := ctx.Err(); err != nil {
		return Run{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	run, ok := r.byID[runID]
	if !ok {
		return Run{}, ErrNotFound
	}
	return run, nil
}

// UpdateStatusResultAndError updates status/result/error fields and timestamps.
func (r *MemoryRepo) UpdateStatusResultAndError(ctx context.Context, runID, status string, result map[string]any, errorCode, errorMessage *string, retryable *bool, startedAt, completedAt *time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	run, ok := r.byID[runID]
	if !ok {
		return ErrNotFound
	}
	run.Status = status
	if result != nil {
		run.Result = result
	}
	if errorCode != nil {
		run.ErrorCode = errorCode
	}
	if errorMessage != nil {
		run.ErrorMessage = errorMessage
	}
	if retryable != nil {
		run.ErrorRetryable = retryable
	}
	if startedAt != nil {
		run.StartedAt = startedAt
	} else if status == StatusProcessing && run.StartedAt == nil {
		now := time.Now().UTC()
		run.StartedAt = &now
	}
	if completedAt != nil {
		run.CompletedAt = completedAt
	} else if (status == StatusCompleted || status == StatusFailed) && run.CompletedAt == nil {
		now := time.Now().UTC()
		run.CompletedAt = &now
	}
	run.UpdatedAt = time.Now().UTC()
	r.byID[runID] = run

	userRuns := r.byUser[run.UserID]
	for i := range userRuns {
		if userRuns[i].ID == runID {
			userRuns[i] = run
			break
		}
	}
	r.byUser[run.UserID] = userRuns

	return nil
}

// ListByUser returns runs for a user, newest first, with limit/offset.
func (r *MemoryRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]Run, error) {
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
	userRuns := r.byUser[userID]
	r.mu.RUnlock()

	if len(userRuns) == 0 || offset >= len(userRuns) {
		return []Run{}, nil
	}

	out := make([]Run, len(userRuns))
	copy(out, userRuns)
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})

	end := len(out)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return out[offset:end], nil
}
