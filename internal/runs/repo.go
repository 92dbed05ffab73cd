package runs

import (
	"context"
	"time"
)

// Repo defines persistence operations for runs.
type Repo interface {
	Create(ctx context.Context, run Run) error
	GetByID(ctx context.Context, runID string) (Run, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]Run, error)
	UpdateStatusResultAndError(ctx context.Context, runID, status string, result map[string]any, errorCode, errorMessage *string, retryable *bool, startedAt, completedAt *time.Time) error
}
