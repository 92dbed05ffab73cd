package runs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"sitecopy-backend/internal/content"
	"sitecopy-backend/internal/generate"
	"sitecopy-backend/internal/refine"
	"sitecopy-backend/internal/rules"
	"sitecopy-backend/internal/scoring"
	"sitecopy-backend/internal/shared/metrics"
	"sitecopy-backend/internal/shared/telemetry"
	"sitecopy-backend/internal/variants"
)

const (
	StatusQueued     = "queued"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// Service contains business logic for optimization runs.
type Service struct {
	Repo         Repo
	Gen          generate.Generator
	Assessor     *scoring.Assessor
	Rules        *rules.Ruleset
	Fallback     *content.FallbackGenerator
	Provider     string
	Model        string
	Defaults     refine.Params
	VariantCount int
}

// StartRefine enqueues a refinement run and kicks off asynchronous completion.
func (s *Service) StartRefine(ctx context.Context, userID string, bctx content.BusinessContext, baseline content.Candidate, params refine.Params) (Run, error) {
	if userID == "" {
		return Run{}, errors.New("userID is required")
	}
	if baseline.IsEmpty() {
		return Run{}, errors.New("baseline candidate is required")
	}
	run := Run{
		ID:        uuid.NewString(),
		UserID:    userID,
		Kind:      KindRefine,
		Status:    StatusQueued,
		Industry:  bctx.Industry,
		Context:   bctx,
		Baseline:  &baseline,
		Params:    mergeParams(s.Defaults, params),
		Provider:  normalizeProvider(s.Provider),
		Model:     s.Model,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.Repo.Create(ctx, run); err != nil {
		return Run{}, err
	}
	go s.completeAsync(backgroundWithRequestID(ctx), run.ID)
	return run, nil
}

// StartVariants enqueues a variant-selection run.
func (s *Service) StartVariants(ctx context.Context, userID string, bctx content.BusinessContext) (Run, error) {
	if userID == "" {
		return Run{}, errors.New("userID is required")
	}
	if strings.TrimSpace(bctx.BusinessName) == "" {
		return Run{}, errors.New("business name is required")
	}
	run := Run{
		ID:        uuid.NewString(),
		UserID:    userID,
		Kind:      KindVariants,
		Status:    StatusQueued,
		Industry:  bctx.Industry,
		Context:   bctx,
		Provider:  normalizeProvider(s.Provider),
		Model:     s.Model,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.Repo.Create(ctx, run); err != nil {
		return Run{}, err
	}
	go s.completeAsync(backgroundWithRequestID(ctx), run.ID)
	return run, nil
}

// Get returns a run by ID.
func (s *Service) Get(ctx context.Context, runID string) (Run, error) {
	if runID == "" {
		return Run{}, errors.New("runID is required")
	}
	return s.Repo.GetByID(ctx, runID)
}

// List returns runs for a user ordered newest-first.
func (s *Service) List(ctx context.Context, userID string, limit, offset int) ([]Run, error) {
	if userID == "" {
		return nil, errors.New("userID is required")
	}
	return s.Repo.ListByUser(ctx, userID, limit, offset)
}

func normalizeProvider(provider string) string {
	if strings.TrimSpace(provider) == "" {
		return "openai"
	}
	return provider
}

func mergeParams(defaults, override refine.Params) refine.Params {
	merged := defaults
	if override.QualityThreshold > 0 {
		merged.QualityThreshold = override.QualityThreshold
	}
	if override.MaxPasses > 0 {
		merged.MaxPasses = override.MaxPasses
	}
	if override.MaxRetriesPerPass > 0 {
		merged.MaxRetriesPerPass = override.MaxRetriesPerPass
	}
	return merged
}

func (s *Service) completeAsync(ctx context.Context, runID string) {
	defer func() {
		if r := recover(); r != nil {
			s.failRun(ctx, runID, "", fmt.Errorf("panic: %v", r), nil)
		}
	}()
	startedAt := time.Now().UTC()
	if err := s.Repo.UpdateStatusResultAndError(ctx, runID, StatusProcessing, nil, nil, nil, nil, &startedAt, nil); err != nil {
		s.failRun(ctx, runID, "", fmt.Errorf("set processing failed: %w", err), &startedAt)
		return
	}

	run, err := s.Repo.GetByID(ctx, runID)
	if err != nil {
		s.failRun(ctx, runID, "", fmt.Errorf("run lookup: %w", err), &startedAt)
		return
	}
	metrics.IncRunStarted()
	telemetry.Info("run.status", map[string]any{
		"request_id":        requestIDFromContext(ctx),
		"user_id":           run.UserID,
		"run_id":            run.ID,
		"kind":              run.Kind,
		"status":            StatusProcessing,
		"status_transition": "queued->processing",
	})
	if s.Gen == nil || s.Assessor == nil || s.Rules == nil {
		s.failRun(ctx, runID, run.UserID, errors.New("missing engine dependencies"), &startedAt)
		return
	}

	var result map[string]any
	switch run.Kind {
	case KindRefine:
		if run.Baseline == nil {
			s.failRun(ctx, runID, run.UserID, errors.New("validation: baseline candidate missing"), &startedAt)
			return
		}
		refiner := refine.NewRefiner(s.Gen, s.Assessor, s.Rules)
		outcome := refiner.Refine(ctx, *run.Baseline, run.Context, run.Industry, run.Params)
		result, err = toResultMap(outcome)
	case KindVariants:
		selector := variants.NewSelector(s.Gen, s.Assessor, s.Rules, s.Fallback, s.VariantCount)
		selection := selector.SelectBest(ctx, run.Context, run.Industry, variants.DefaultAngles())
		result, err = toResultMap(selection)
	default:
		s.failRun(ctx, runID, run.UserID, fmt.Errorf("validation: unknown run kind %q", run.Kind), &startedAt)
		return
	}
	if err != nil {
		s.failRun(ctx, runID, run.UserID, fmt.Errorf("encode run result: %w", err), &startedAt)
		return
	}

	completedAt := time.Now().UTC()
	if err := s.Repo.UpdateStatusResultAndError(ctx, runID, StatusCompleted, result, nil, nil, nil, nil, &completedAt); err != nil {
		s.failRun(ctx, runID, run.UserID, fmt.Errorf("set run result failed: %w", err), &startedAt)
		return
	}
	metrics.IncRunCompleted()
	metrics.ObserveRunDurationMs(durationMs(&startedAt, &completedAt))
	telemetry.Info("run.status", map[string]any{
		"request_id":        requestIDFromContext(ctx),
		"user_id":           run.UserID,
		"run_id":            run.ID,
		"kind":              run.Kind,
		"status":            StatusCompleted,
		"status_transition": "processing->completed",
		"duration_ms":       durationMs(&startedAt, &completedAt),
	})
}

func (s *Service) failRun(ctx context.Context, runID, userID string, err error, startedAt *time.Time) {
	code, retryable := classifyFailure(err)
	msg := sanitizeError(err)
	completedAt := time.Now().UTC()
	if updateErr := s.Repo.UpdateStatusResultAndError(context.Background(), runID, StatusFailed, nil, &code, &msg, &retryable, nil, &completedAt); updateErr != nil {
		telemetry.Error("run.fail_update", map[string]any{
			"run_id": runID,
			"error":  updateErr.Error(),
			"cause":  sanitizeError(err),
		})
	}
	metrics.IncRunFailed()
	if startedAt != nil {
		metrics.ObserveRunDurationMs(durationMs(startedAt, &completedAt))
	}
	telemetry.Info("run.status", map[string]any{
		"request_id":        requestIDFromContext(ctx),
		"user_id":           userID,
		"run_id":            runID,
		"status":            StatusFailed,
		"status_transition": "processing->failed",
		"duration_ms":       durationMs(startedAt, &completedAt),
	})
}

func durationMs(startedAt, completedAt *time.Time) float64 {
	if startedAt == nil || completedAt == nil {
		return 0
	}
	return float64(completedAt.Sub(*startedAt).Microseconds()) / 1000.0
}

func classifyFailure(err error) (string, bool) {
	if err == nil {
		return ErrorCodeInternal, false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrorCodeLLMTimeout, true
	}
	if errors.Is(err, generate.ErrParse) {
		return ErrorCodeLLMParse, false
	}
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "openai request timeout") {
		return ErrorCodeLLMTimeout, true
	}
	if strings.Contains(msg, "parse") && strings.Contains(msg, "llm") {
		return ErrorCodeLLMParse, false
	}
	if strings.Contains(msg, "validation") {
		return ErrorCodeValidation, false
	}
	if strings.Contains(msg, "run lookup") || strings.Contains(msg, "run result") || strings.Contains(msg, "set processing") || strings.Contains(msg, "storage") {
		return ErrorCodeStorage, true
	}
	return ErrorCodeInternal, false
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

// toResultMap flattens a typed result into the JSON shape stored on the run.
func toResultMap(value any) (map[string]any, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}
