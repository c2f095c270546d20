package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/kirillkom/contract-intelligence/internal/core/domain"
)

type ContractRepository struct {
	db *sql.DB
}

func NewContractRepository(db *sql.DB) *ContractRepository {
	return &ContractRepository{db: db}
}

func OpenDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

func (r *ContractRepository) EnsureSchema(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across api/worker startups.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026083001)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS contracts (
	id TEXT PRIMARY KEY,
	filename TEXT NOT NULL,
	file_size BIGINT NOT NULL DEFAULT 0,
	file_type TEXT NOT NULL DEFAULT 'application/pdf',
	storage_path TEXT NOT NULL,
	status TEXT NOT NULL,
	progress INT NOT NULL DEFAULT 0,
	attempt INT NOT NULL DEFAULT 0,
	error_message TEXT,
	submitted_at TIMESTAMPTZ NOT NULL,
	processing_started_at TIMESTAMPTZ,
	processing_ended_at TIMESTAMPTZ,
	processing_time_seconds DOUBLE PRECISION,
	completeness_score DOUBLE PRECISION NOT NULL DEFAULT 0,
	score_breakdown JSONB,
	missing_fields JSONB NOT NULL DEFAULT '[]'::jsonb,
	contract_title TEXT,
	contract_type TEXT,
	description TEXT,
	contract_dates JSONB,
	customer JSONB,
	vendor JSONB,
	account_info JSONB,
	financial_details JSONB,
	payment_structure JSONB,
	revenue_classification JSONB,
	sla JSONB,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_contracts_status ON contracts(status);
CREATE INDEX IF NOT EXISTS idx_contracts_submitted_at ON contracts(submitted_at DESC);
CREATE INDEX IF NOT EXISTS idx_contracts_score ON contracts(completeness_score);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

func (r *ContractRepository) Create(ctx context.Context, rec *domain.ContractRecord) error {
	missingJSON, err := json.Marshal(rec.MissingFields)
	if err != nil {
		return fmt.Errorf("marshal missing fields: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
INSERT INTO contracts (
	id, filename, file_size, file_type, storage_path, status, progress, attempt,
	missing_fields, submitted_at, updated_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
`,
		rec.ID, rec.Filename, rec.FileSize, rec.FileType, rec.StoragePath,
		string(rec.Status), rec.Progress, rec.Attempt, missingJSON,
		rec.SubmittedAt, rec.SubmittedAt,
	)
	if err != nil {
		return fmt.Errorf("insert contract: %w", err)
	}
	return nil
}

func (r *ContractRepository) GetByID(ctx context.Context, id string) (*domain.ContractRecord, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, filename, file_size, file_type, storage_path, status, progress, attempt,
	error_message, submitted_at, processing_started_at, processing_ended_at,
	processing_time_seconds, completeness_score, score_breakdown, missing_fields,
	contract_title, contract_type, description, contract_dates,
	customer, vendor, account_info, financial_details, payment_structure,
	revenue_classification, sla
FROM contracts
WHERE id = $1
`, id)

	var (
		rec          domain.ContractRecord
		status       string
		errMsg       sql.NullString
		startedAt    sql.NullTime
		endedAt      sql.NullTime
		seconds      sql.NullFloat64
		breakdownRaw []byte
		missingRaw   []byte
		title        sql.NullString
		contractType sql.NullString
		description  sql.NullString
		datesRaw     []byte
		customerRaw  []byte
		vendorRaw    []byte
		accountRaw   []byte
		financialRaw []byte
		paymentRaw   []byte
		revenueRaw   []byte
		slaRaw       []byte
	)

	err := row.Scan(
		&rec.ID, &rec.Filename, &rec.FileSize, &rec.FileType, &rec.StoragePath,
		&status, &rec.Progress, &rec.Attempt, &errMsg, &rec.SubmittedAt,
		&startedAt, &endedAt, &seconds, &rec.CompletenessScore,
		&breakdownRaw, &missingRaw, &title, &contractType, &description,
		&datesRaw, &customerRaw, &vendorRaw, &accountRaw, &financialRaw,
		&paymentRaw, &revenueRaw, &slaRaw,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrContractNotFound, "get contract", fmt.Errorf("id %s", id))
		}
		return nil, fmt.Errorf("scan contract: %w", err)
	}

	rec.Status = domain.ProcessingStatus(status)
	rec.ErrorMessage = errMsg.String
	rec.ContractTitle = title.String
	rec.ContractType = contractType.String
	rec.Description = description.String
	if startedAt.Valid {
		t := startedAt.Time
		rec.ProcessingStartedAt = &t
	}
	if endedAt.Valid {
		t := endedAt.Time
		rec.ProcessingEndedAt = &t
	}
	if seconds.Valid {
		s := seconds.Float64
		rec.ProcessingTimeSeconds = &s
	}

	rec.MissingFields = []string{}
	if err := unmarshalColumn(missingRaw, &rec.MissingFields); err != nil {
		return nil, fmt.Errorf("unmarshal missing fields: %w", err)
	}
	groups := []struct {
		raw []byte
		dst any
	}{
		{breakdownRaw, &rec.ScoreBreakdown},
		{datesRaw, &rec.ContractDates},
		{customerRaw, &rec.Customer},
		{vendorRaw, &rec.Vendor},
		{accountRaw, &rec.AccountInfo},
		{financialRaw, &rec.FinancialDetails},
		{paymentRaw, &rec.PaymentStructure},
		{revenueRaw, &rec.RevenueClassification},
		{slaRaw, &rec.ServiceLevelTerms},
	}
	for _, group := range groups {
		if err := unmarshalColumn(group.raw, group.dst); err != nil {
			return nil, fmt.Errorf("unmarshal contract group: %w", err)
		}
	}

	return &rec, nil
}

func (r *ContractRepository) MarkProcessing(ctx context.Context, id string, attempt int, startedAt time.Time) error {
	result, err := r.db.ExecContext(ctx, `
UPDATE contracts
SET status = $2, progress = 10, attempt = $3, processing_started_at = $4,
	error_message = NULL, updated_at = $5
WHERE id = $1
`, id, string(domain.StatusProcessing), attempt, startedAt, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("mark contract processing: %w", err)
	}
	return requireRow(result, id)
}

func (r *ContractRepository) UpdateProgress(ctx context.Context, id string, progress int) error {
	result, err := r.db.ExecContext(ctx, `
UPDATE contracts
SET progress = $2, updated_at = $3
WHERE id = $1
`, id, progress, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update contract progress: %w", err)
	}
	return requireRow(result, id)
}

func (r *ContractRepository) SaveResults(ctx context.Context, id string, res domain.ProcessingResult) error {
	draft := res.Draft
	if draft == nil {
		draft = &domain.ContractDraft{}
	}

	breakdownJSON, err := json.Marshal(res.ScoreBreakdown)
	if err != nil {
		return fmt.Errorf("marshal score breakdown: %w", err)
	}
	missing := res.MissingFields
	if missing == nil {
		missing = []string{}
	}
	missingJSON, err := json.Marshal(missing)
	if err != nil {
		return fmt.Errorf("marshal missing fields: %w", err)
	}

	datesJSON, err := marshalColumn(draft.ContractDates)
	if err != nil {
		return fmt.Errorf("marshal contract dates: %w", err)
	}
	customerJSON, err := marshalColumn(draft.Customer)
	if err != nil {
		return fmt.Errorf("marshal customer: %w", err)
	}
	vendorJSON, err := marshalColumn(draft.Vendor)
	if err != nil {
		return fmt.Errorf("marshal vendor: %w", err)
	}
	accountJSON, err := marshalColumn(draft.AccountInfo)
	if err != nil {
		return fmt.Errorf("marshal account info: %w", err)
	}
	financialJSON, err := marshalColumn(draft.FinancialDetails)
	if err != nil {
		return fmt.Errorf("marshal financial details: %w", err)
	}
	paymentJSON, err := marshalColumn(draft.PaymentStructure)
	if err != nil {
		return fmt.Errorf("marshal payment structure: %w", err)
	}
	revenueJSON, err := marshalColumn(draft.RevenueClassification)
	if err != nil {
		return fmt.Errorf("marshal revenue classification: %w", err)
	}
	slaJSON, err := marshalColumn(draft.ServiceLevelTerms)
	if err != nil {
		return fmt.Errorf("marshal sla group: %w", err)
	}

	result, err := r.db.ExecContext(ctx, `
UPDATE contracts
SET status = $2, progress = 100, processing_ended_at = $3, processing_time_seconds = $4,
	completeness_score = $5, score_breakdown = $6, missing_fields = $7,
	contract_title = $8, contract_type = $9, description = $10,
	contract_dates = $11, customer = $12, vendor = $13, account_info = $14,
	financial_details = $15, payment_structure = $16, revenue_classification = $17,
	sla = $18, error_message = NULL, updated_at = $19
WHERE id = $1
`,
		id, string(domain.StatusCompleted), res.EndedAt, res.Seconds,
		res.CompletenessScore, breakdownJSON, missingJSON,
		nullIfEmpty(draft.ContractTitle), nullIfEmpty(draft.ContractType), nullIfEmpty(draft.Description),
		datesJSON, customerJSON, vendorJSON, accountJSON,
		financialJSON, paymentJSON, revenueJSON, slaJSON,
		time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("save contract results: %w", err)
	}
	return requireRow(result, id)
}

func (r *ContractRepository) MarkFailed(ctx context.Context, id string, errMessage string, endedAt time.Time, seconds float64) error {
	result, err := r.db.ExecContext(ctx, `
UPDATE contracts
SET status = $2, progress = 0, error_message = $3, processing_ended_at = $4,
	processing_time_seconds = $5, updated_at = $6
WHERE id = $1
`, id, string(domain.StatusFailed), errMessage, endedAt, seconds, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("mark contract failed: %w", err)
	}
	return requireRow(result, id)
}

func (r *ContractRepository) List(ctx context.Context, filter domain.ContractFilter) ([]domain.ContractSummary, int, error) {
	filter = filter.Normalize()

	where := make([]string, 0, 3)
	args := make([]any, 0, 5)
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.MinScore != nil {
		args = append(args, *filter.MinScore)
		where = append(where, fmt.Sprintf("completeness_score >= $%d", len(args)))
	}
	if filter.MaxScore != nil {
		args = append(args, *filter.MaxScore)
		where = append(where, fmt.Sprintf("completeness_score <= $%d", len(args)))
	}
	whereClause := ""
	if len(where) > 0 {
		whereClause = "WHERE " + strings.Join(where, " AND ")
	}

	var total int
	countQuery := "SELECT COUNT(*) FROM contracts " + whereClause
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count contracts: %w", err)
	}

	args = append(args, filter.PageSize, (filter.Page-1)*filter.PageSize)
	query := fmt.Sprintf(`
SELECT id, filename, status, submitted_at, completeness_score,
	(financial_details->>'total_value')::double precision,
	financial_details->>'currency',
	customer->>'name',
	vendor->>'name',
	contract_type
FROM contracts
%s
ORDER BY submitted_at DESC
LIMIT $%d OFFSET $%d
`, whereClause, len(args)-1, len(args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list contracts: %w", err)
	}
	defer rows.Close()

	summaries := make([]domain.ContractSummary, 0, filter.PageSize)
	for rows.Next() {
		var (
			summary      domain.ContractSummary
			status       string
			totalValue   sql.NullFloat64
			currency     sql.NullString
			customerName sql.NullString
			vendorName   sql.NullString
			contractType sql.NullString
		)
		err := rows.Scan(
			&summary.ID, &summary.Filename, &status, &summary.SubmittedAt,
			&summary.CompletenessScore, &totalValue, &currency,
			&customerName, &vendorName, &contractType,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("scan contract summary: %w", err)
		}
		summary.Status = domain.ProcessingStatus(status)
		if totalValue.Valid {
			v := totalValue.Float64
			summary.TotalValue = &v
		}
		summary.Currency = currency.String
		summary.CustomerName = customerName.String
		summary.VendorName = vendorName.String
		summary.ContractType = contractType.String
		summaries = append(summaries, summary)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate contracts: %w", err)
	}

	return summaries, total, nil
}

func requireRow(result sql.Result, id string) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return domain.WrapError(domain.ErrContractNotFound, "update contract", fmt.Errorf("id %s", id))
	}
	return nil
}

func marshalColumn[T any](ptr *T) (any, error) {
	if ptr == nil {
		return nil, nil
	}
	raw, err := json.Marshal(ptr)
	if err != nil {
		return nil, err
	}
	return raw, nil
}

func unmarshalColumn(raw []byte, dst any) error {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	return json.Unmarshal(raw, dst)
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
