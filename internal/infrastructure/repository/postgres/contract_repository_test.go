package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/kirillkom/contract-intelligence/internal/core/domain"
)

func newMockRepo(t *testing.T) (*ContractRepository, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	return NewContractRepository(db), mock, func() { db.Close() }
}

func TestContractRepositoryGetByIDScansRecord(t *testing.T) {
	repo, mock, cleanup := newMockRepo(t)
	defer cleanup()

	submitted := time.Now().UTC()
	started := submitted.Add(time.Second)
	ended := submitted.Add(3 * time.Second)

	columns := []string{
		"id", "filename", "file_size", "file_type", "storage_path", "status",
		"progress", "attempt", "error_message", "submitted_at",
		"processing_started_at", "processing_ended_at", "processing_time_seconds",
		"completeness_score", "score_breakdown", "missing_fields",
		"contract_title", "contract_type", "description", "contract_dates",
		"customer", "vendor", "account_info", "financial_details",
		"payment_structure", "revenue_classification", "sla",
	}
	rows := sqlmock.NewRows(columns).AddRow(
		"c-1", "msa.pdf", int64(1024), "application/pdf", "c-1_msa.pdf", "completed",
		100, 0, nil, submitted, started, ended, 2.0,
		12.0, []byte(`{"party_identification":4,"payment_terms":8}`), []byte(`["Vendor name"]`),
		"Master Services Agreement", "Service Agreement", nil, nil,
		[]byte(`{"name":"Acme"}`), nil, nil, nil,
		[]byte(`{"payment_terms":"Net 30"}`), nil, nil,
	)

	mock.ExpectQuery("FROM contracts").
		WithArgs("c-1").
		WillReturnRows(rows)

	rec, err := repo.GetByID(context.Background(), "c-1")
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if rec.Status != domain.StatusCompleted || rec.Progress != 100 {
		t.Fatalf("unexpected record state: %s/%d", rec.Status, rec.Progress)
	}
	if rec.Customer == nil || rec.Customer.Name != "Acme" {
		t.Fatalf("expected customer group, got %+v", rec.Customer)
	}
	if rec.Vendor != nil {
		t.Fatalf("expected absent vendor group, got %+v", rec.Vendor)
	}
	if rec.ScoreBreakdown == nil || rec.ScoreBreakdown.PaymentTerms != 8 {
		t.Fatalf("expected score breakdown, got %+v", rec.ScoreBreakdown)
	}
	if len(rec.MissingFields) != 1 || rec.MissingFields[0] != "Vendor name" {
		t.Fatalf("unexpected missing fields: %v", rec.MissingFields)
	}
	if rec.ProcessingTimeSeconds == nil || *rec.ProcessingTimeSeconds != 2.0 {
		t.Fatalf("expected processing time 2.0, got %v", rec.ProcessingTimeSeconds)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestContractRepositoryGetByIDNotFound(t *testing.T) {
	repo, mock, cleanup := newMockRepo(t)
	defer cleanup()

	mock.ExpectQuery("FROM contracts").
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.GetByID(context.Background(), "missing")
	if err == nil {
		t.Fatalf("expected error")
	}
	if !domain.IsKind(err, domain.ErrContractNotFound) {
		t.Fatalf("expected not-found kind, got %v", err)
	}
}

func TestContractRepositoryMarkProcessingRequiresExistingRow(t *testing.T) {
	repo, mock, cleanup := newMockRepo(t)
	defer cleanup()

	mock.ExpectExec("UPDATE contracts").
		WithArgs("missing", "processing", 0, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.MarkProcessing(context.Background(), "missing", 0, time.Now().UTC())
	if !domain.IsKind(err, domain.ErrContractNotFound) {
		t.Fatalf("expected not-found kind, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestContractRepositoryMarkFailedWritesErrorAndResetsProgress(t *testing.T) {
	repo, mock, cleanup := newMockRepo(t)
	defer cleanup()

	endedAt := time.Now().UTC()
	mock.ExpectExec("UPDATE contracts").
		WithArgs("c-1", "failed", "llm unavailable", endedAt, 4.5, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.MarkFailed(context.Background(), "c-1", "llm unavailable", endedAt, 4.5); err != nil {
		t.Fatalf("MarkFailed() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestContractRepositoryListAppliesFiltersAndPaging(t *testing.T) {
	repo, mock, cleanup := newMockRepo(t)
	defer cleanup()

	mock.ExpectQuery("SELECT COUNT").
		WithArgs("completed", 50.0).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	listRows := sqlmock.NewRows([]string{
		"id", "filename", "status", "submitted_at", "completeness_score",
		"total_value", "currency", "customer_name", "vendor_name", "contract_type",
	}).AddRow("c-1", "msa.pdf", "completed", time.Now().UTC(), 88.5, 12000.0, "USD", "Acme", "Globex", "SaaS Contract")

	mock.ExpectQuery("FROM contracts").
		WithArgs("completed", 50.0, 20, 0).
		WillReturnRows(listRows)

	minScore := 50.0
	summaries, total, err := repo.List(context.Background(), domain.ContractFilter{
		Status:   domain.StatusCompleted,
		MinScore: &minScore,
	})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if total != 1 || len(summaries) != 1 {
		t.Fatalf("expected one summary, got total=%d len=%d", total, len(summaries))
	}
	summary := summaries[0]
	if summary.CustomerName != "Acme" || summary.VendorName != "Globex" {
		t.Fatalf("unexpected party names: %+v", summary)
	}
	if summary.TotalValue == nil || *summary.TotalValue != 12000.0 {
		t.Fatalf("expected total value 12000, got %v", summary.TotalValue)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestContractRepositoryCreateInsertsPendingRow(t *testing.T) {
	repo, mock, cleanup := newMockRepo(t)
	defer cleanup()

	now := time.Now().UTC()
	mock.ExpectExec("INSERT INTO contracts").
		WithArgs("c-1", "msa.pdf", int64(10), "application/pdf", "c-1_msa.pdf",
			"pending", 0, 0, []byte("[]"), now, now).
		WillReturnResult(sqlmock.NewResult(0, 1))

	rec := &domain.ContractRecord{
		ID:            "c-1",
		Filename:      "msa.pdf",
		FileSize:      10,
		FileType:      "application/pdf",
		StoragePath:   "c-1_msa.pdf",
		Status:        domain.StatusPending,
		MissingFields: []string{},
		SubmittedAt:   now,
	}
	if err := repo.Create(context.Background(), rec); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
