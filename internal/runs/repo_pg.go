package runs

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"sitecopy-backend/internal/content"
	"sitecopy-backend/internal/refine"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// Create inserts a new run.
func (r *PGRepo) Create(ctx context.Context, run Run) error {
	const query = `
INSERT INTO runs (
	id, user_id, kind, status, industry, business_context, baseline, params,
	provider, model, created_at, updated_at
)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $11)`
	contextPayload, err := marshalJSONB(run.Context)
	if err != nil {
		return err
	}
	baselinePayload, err := marshalJSONB(run.Baseline)
	if err != nil {
		return err
	}
	paramsPayload, err := marshalJSONB(run.Params)
	if err != nil {
		return err
	}
	_, err = r.DB.ExecContext(ctx, query,
		run.ID,
		run.UserID,
		run.Kind,
		run.Status,
		run.Industry,
		contextPayload,
		baselinePayload,
		paramsPayload,
		run.Provider,
		run.Model,
		run.CreatedAt,
	)
	return err
}

// GetByID returns a run by ID.
func (r *PGRepo) GetByID(ctx context.Context, runID string) (Run, error) {
	const query = `
SELECT id, user_id, kind, status, industry, business_context, baseline, params, result,
       provider, model, error_code, error_message, error_retryable,
       started_at, completed_at, created_at, updated_at
FROM runs
WHERE id = $1 AND deleted_at IS NULL
LIMIT 1`
	row := r.DB.QueryRowContext(ctx, query, runID)
	run, err := scanRun(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Run{}, ErrNotFound
		}
		return Run{}, err
	}
	return run, nil
}

// ListByUser returns runs for a user ordered newest-first.
func (r *PGRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	const query = `
SELECT id, user_id, kind, status, industry, business_context, baseline, params, result,
       provider, model, error_code, error_message, error_retryable,
       started_at, completed_at, created_at, updated_at
FROM runs
WHERE user_id = $1 AND deleted_at IS NULL
ORDER BY created_at DESC
LIMIT $2 OFFSET $3`
	rows, err := r.DB.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Run{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, run)
	}
	return out, rows.Err()
}

// UpdateStatusResultAndError updates status/result/error fields and timestamps.
func (r *PGRepo) UpdateStatusResultAndError(ctx context.Context, runID, status string, result map[string]any, errorCode, errorMessage *string, retryable *bool, startedAt, completedAt *time.Time) error {
	const query = `
UPDATE runs
SET status = $2,
    result = COALESCE($3, result),
    error_code = COALESCE($4, error_code),
    error_message = COALESCE($5, error_message),
    error_retryable = COALESCE($6, error_retryable),
    started_at = COALESCE($7, started_at),
    completed_at = COALESCE($8, completed_at),
    updated_at = now()
WHERE id = $1 AND deleted_at IS NULL`
	var resultPayload any
	if result != nil {
		payload, err := marshalJSONB(result)
		if err != nil {
			return err
		}
		resultPayload = payload
	}
	res, err := r.DB.ExecContext(ctx, query,
		runID,
		status,
		resultPayload,
		nullableStringPtr(errorCode),
		nullableStringPtr(errorMessage),
		nullableBoolPtr(retryable),
		nullableTimePtr(startedAt),
		nullableTimePtr(completedAt),
	)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (Run, error) {
	var run Run
	var industry sql.NullString
	var contextRaw sql.NullString
	var baselineRaw sql.NullString
	var paramsRaw sql.NullString
	var resultRaw sql.NullString
	var provider sql.NullString
	var model sql.NullString
	var errorCode sql.NullString
	var errorMessage sql.NullString
	var errorRetryable sql.NullBool
	var startedAt sql.NullTime
	var completedAt sql.NullTime
	var updatedAt sql.NullTime

	err := row.Scan(
		&run.ID,
		&run.UserID,
		&run.Kind,
		&run.Status,
		&industry,
		&contextRaw,
		&baselineRaw,
		&paramsRaw,
		&resultRaw,
		&provider,
		&model,
		&errorCode,
		&errorMessage,
		&errorRetryable,
		&startedAt,
		&completedAt,
		&run.CreatedAt,
		&updatedAt,
	)
	if err != nil {
		return Run{}, err
	}

	if industry.Valid {
		run.Industry = industry.String
	}
	if contextRaw.Valid && contextRaw.String != "" {
		if err := json.Unmarshal([]byte(contextRaw.String), &run.Context); err != nil {
			return Run{}, err
		}
	}
	if baselineRaw.Valid && baselineRaw.String != "" && baselineRaw.String != "null" {
		var baseline content.Candidate
		if err := json.Unmarshal([]byte(baselineRaw.String), &baseline); err != nil {
			return Run{}, err
		}
		run.Baseline = &baseline
	}
	if paramsRaw.Valid && paramsRaw.String != "" {
		var params refine.Params
		if err := json.Unmarshal([]byte(paramsRaw.String), &params); err != nil {
			return Run{}, err
		}
		run.Params = params
	}
	if resultRaw.Valid && resultRaw.String != "" {
		var result map[string]any
		if err := json.Unmarshal([]byte(resultRaw.String), &result); err != nil {
			return Run{}, err
		}
		run.Result = result
	}
	if provider.Valid {
		run.Provider = provider.String
	}
	if model.Valid {
		run.Model = model.String
	}
	if errorCode.Valid {
		run.ErrorCode = &errorCode.String
	}
	if errorMessage.Valid {
		run.ErrorMessage = &errorMessage.String
	}
	if errorRetryable.Valid {
		run.ErrorRetryable = &errorRetryable.Bool
	}
	if startedAt.Valid {
		run.StartedAt = &startedAt.Time
	}
	if completedAt.Valid {
		run.CompletedAt = &completedAt.Time
	}
	if updatedAt.Valid {
		run.UpdatedAt = updatedAt.Time
	}
	return run, nil
}

func marshalJSONB(value any) (any, error) {
	if value == nil {
		return nil, nil
	}
	data, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

func nullableStringPtr(value *string) any {
	if value == nil {
		return nil
	}
	return *value
}

func nullableBoolPtr(value *bool) any {
	if value == nil {
		return nil
	}
	return *value
}

func nullableTimePtr(value *time.Time) any {
	if value == nil {
		return nil
	}
	return *value
}
