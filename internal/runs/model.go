package runs

import (
	"time"

	"sitecopy-backend/internal/content"
	"sitecopy-backend/internal/refine"
)

// Run represents one asynchronous copy-optimization job.
type Run struct {
	ID             string                  `json:"id"`
	UserID         string                  `json:"userId"`
	Kind           string                  `json:"kind"`
	Status         string                  `json:"status"`
	Industry       string                  `json:"industry"`
	Context        content.BusinessContext `json:"context"`
	Baseline       *content.Candidate      `json:"baseline,omitempty"`
	Params         refine.Params           `json:"params"`
	Provider       string                  `json:"provider"`
	Model          string                  `json:"model"`
	Result         map[string]any          `json:"result,omitempty"`
	ErrorCode      *string                 `json:"errorCode,omitempty"`
	ErrorMessage   *string                 `json:"errorMessage,omitempty"`
	ErrorRetryable *bool                   `json:"errorRetryable,omitempty"`
	StartedAt      *time.Time              `json:"startedAt,omitempty"`
	CompletedAt    *time.Time              `json:"completedAt,omitempty"`
	CreatedAt      time.Time               `json:"createdAt"`
	UpdatedAt      time.Time               `json:"updatedAt"`
}

const (
	KindRefine   = "refine"
	KindVariants = "variants"
)
