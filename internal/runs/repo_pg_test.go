package runs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"sitecopy-backend/internal/content"
	"sitecopy-backend/internal/refine"
)

var runColumns = []string{
	"id", "user_id", "kind", "status", "industry", "business_context", "baseline",
	"params", "result", "provider", "model", "error_code", "error_message",
	"error_retryable", "started_at", "completed_at", "created_at", "updated_at",
}

func TestPGRepoCreatePersistsPayloads(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	baseline := content.Candidate{Headline: "Welcome to Smith Plumbing", CTAPrimary: "Learn More"}
	run := Run{
		ID:        "run-1",
		UserID:    "user-1",
		Kind:      KindRefine,
		Status:    StatusQueued,
		Industry:  "plumbing",
		Context:   content.BusinessContext{BusinessName: "Smith Plumbing", City: "Mesa"},
		Baseline:  &baseline,
		Params:    refine.Params{QualityThreshold: 78, MaxPasses: 3, MaxRetriesPerPass: 2},
		Provider:  "openai",
		Model:     "gpt-4o-mini",
		CreatedAt: time.Now().UTC(),
	}

	mock.ExpectExec("INSERT INTO runs").
		WithArgs(
			run.ID,
			run.UserID,
			run.Kind,
			run.Status,
			run.Industry,
			sqlmock.AnyArg(), // business_context
			sqlmock.AnyArg(), // baseline
			sqlmock.AnyArg(), // params
			run.Provider,
			run.Model,
			sqlmock.AnyArg(),
		).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := repo.Create(context.Background(), run); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoGetByIDDecodesPayloads(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	started := created.Add(time.Second)
	completed := created.Add(5 * time.Second)

	rows := sqlmock.NewRows(runColumns).AddRow(
		"run-1", "user-1", KindRefine, StatusCompleted, "plumbing",
		`{"businessName": "Smith Plumbing", "city": "Mesa"}`,
		`{"headline": "Welcome to Smith Plumbing", "ctaPrimary": "Learn More"}`,
		`{"qualityThreshold": 78, "maxPasses": 3}`,
		`{"improved": true, "afterScore": 84}`,
		"openai", "gpt-4o-mini", nil, nil, nil,
		started, completed, created, completed,
	)
	mock.ExpectQuery("SELECT (.+) FROM runs").WithArgs("run-1").WillReturnRows(rows)

	run, err := repo.GetByID(context.Background(), "run-1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if run.Context.BusinessName != "Smith Plumbing" || run.Context.City != "Mesa" {
		t.Errorf("context = %+v", run.Context)
	}
	if run.Baseline == nil || run.Baseline.Headline != "Welcome to Smith Plumbing" {
		t.Errorf("baseline = %+v", run.Baseline)
	}
	if run.Params.QualityThreshold != 78 || run.Params.MaxPasses != 3 {
		t.Errorf("params = %+v", run.Params)
	}
	if run.Result == nil || run.Result["afterScore"] != float64(84) {
		t.Errorf("result = %+v", run.Result)
	}
	if run.StartedAt == nil || run.CompletedAt == nil {
		t.Error("timestamps not scanned")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoGetByIDNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	mock.ExpectQuery("SELECT (.+) FROM runs").WithArgs("missing").
		WillReturnRows(sqlmock.NewRows(runColumns))

	if _, err := repo.GetByID(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoListByUserDefaultsPaging(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows(runColumns).AddRow(
		"run-1", "user-1", KindVariants, StatusQueued, "plumbing",
		`{"businessName": "Smith Plumbing"}`, nil, nil, nil,
		"openai", "gpt-4o-mini", nil, nil, nil, nil, nil, created, created,
	)
	mock.ExpectQuery("SELECT (.+) FROM runs").
		WithArgs("user-1", 20, 0).
		WillReturnRows(rows)

	out, err := repo.ListByUser(context.Background(), "user-1", 0, -5)
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(out) != 1 || out[0].ID != "run-1" {
		t.Fatalf("out = %+v", out)
	}
	if out[0].Baseline != nil {
		t.Errorf("nil baseline decoded as %+v", out[0].Baseline)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoUpdateMissingRunIsNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	mock.ExpectExec("UPDATE runs").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = repo.UpdateStatusResultAndError(context.Background(), "missing", StatusFailed, nil, nil, nil, nil, nil, nil)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}
