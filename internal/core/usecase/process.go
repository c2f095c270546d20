package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/kirillkom/contract-intelligence/internal/core/domain"
	"github.com/kirillkom/contract-intelligence/internal/core/ports"
	"github.com/kirillkom/contract-intelligence/internal/core/scoring"
)

// Intermediate progress checkpoints persisted during one pipeline run.
// MarkProcessing writes 10, SaveResults writes 100 and MarkFailed resets to 0.
const (
	progressExtracting = 20
	progressExtracted  = 60
	progressScoring    = 70
	progressScored     = 90
)

// ProcessConfig bounds the pipeline retry loop and its time budget.
type ProcessConfig struct {
	// MaxRetries is the number of re-attempts after the first failure,
	// so MaxRetries+1 attempts run in total.
	MaxRetries int
	// RetryBackoff is the fixed delay between attempts.
	RetryBackoff time.Duration
	// SoftTimeLimit bounds the whole run cooperatively; exceeding it is a
	// transient failure fed back into the retry policy. The hard limit is
	// enforced by the caller's context.
	SoftTimeLimit time.Duration
}

func DefaultProcessConfig() ProcessConfig {
	return ProcessConfig{
		MaxRetries:    2,
		RetryBackoff:  60 * time.Second,
		SoftTimeLimit: 540 * time.Second,
	}
}

// ProcessContractUseCase drives a contract record through the processing
// state machine: pending -> processing -> completed|failed. Extraction and
// scoring are always redone in full on a retry; there is no partial resume.
type ProcessContractUseCase struct {
	repo   ports.ContractRepository
	texts  ports.TextExtractor
	drafts ports.DraftExtractor
	cfg    ProcessConfig
}

func NewProcessContractUseCase(
	repo ports.ContractRepository,
	texts ports.TextExtractor,
	drafts ports.DraftExtractor,
	cfg ProcessConfig,
) *ProcessContractUseCase {
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.SoftTimeLimit <= 0 {
		cfg.SoftTimeLimit = DefaultProcessConfig().SoftTimeLimit
	}
	return &ProcessContractUseCase{
		repo:   repo,
		texts:  texts,
		drafts: drafts,
		cfg:    cfg,
	}
}

// Process runs the bounded attempt loop for one submission and returns the
// terminal record. The caller guarantees single-flight per contract id; every
// failure is written to the record before the retry decision is made, so a
// polling client only ever observes processing or a terminal state.
func (uc *ProcessContractUseCase) Process(ctx context.Context, sub domain.Submission) (*domain.ContractRecord, error) {
	softDeadline := time.Now().Add(uc.cfg.SoftTimeLimit)

	var lastErr error
	for attempt := 0; attempt <= uc.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			if err := uc.waitBackoff(ctx); err != nil {
				return nil, fmt.Errorf("retry backoff: %w", err)
			}
		}

		err := uc.runAttempt(ctx, sub, attempt, softDeadline)
		if err == nil {
			return uc.repo.GetByID(ctx, sub.ContractID)
		}
		lastErr = err

		// The observed policy retries transient and permanent extraction
		// failures alike until the budget runs out.
		slog.Warn("contract_attempt_failed",
			"contract_id", sub.ContractID,
			"attempt", attempt,
			"max_retries", uc.cfg.MaxRetries,
			"error", err,
		)
	}

	rec, getErr := uc.repo.GetByID(ctx, sub.ContractID)
	if getErr != nil {
		return nil, fmt.Errorf("%w; load terminal record: %w", lastErr, getErr)
	}
	return rec, lastErr
}

// runAttempt executes one full extraction+scoring pass, persisting each
// checkpoint in order. Any stage failure is captured on the record as a
// failed state before being returned.
func (uc *ProcessContractUseCase) runAttempt(ctx context.Context, sub domain.Submission, attempt int, softDeadline time.Time) error {
	start := time.Now().UTC()

	if err := uc.repo.MarkProcessing(ctx, sub.ContractID, attempt, start); err != nil {
		return fmt.Errorf("mark processing: %w", err)
	}

	attemptCtx, cancel := context.WithDeadline(ctx, softDeadline)
	defer cancel()

	err := uc.runStages(attemptCtx, sub, start)
	if err == nil {
		return nil
	}
	err = uc.mapSoftLimit(ctx, attemptCtx, err)

	endedAt := time.Now().UTC()
	seconds := endedAt.Sub(start).Seconds()
	if failErr := uc.repo.MarkFailed(ctx, sub.ContractID, err.Error(), endedAt, seconds); failErr != nil {
		return fmt.Errorf("%w; mark failed status: %w", err, failErr)
	}
	return err
}

func (uc *ProcessContractUseCase) runStages(ctx context.Context, sub domain.Submission, start time.Time) error {
	if err := uc.repo.UpdateProgress(ctx, sub.ContractID, progressExtracting); err != nil {
		return fmt.Errorf("checkpoint extraction start: %w", err)
	}

	text, err := uc.texts.Extract(ctx, sub.StoragePath)
	if err != nil {
		return fmt.Errorf("extract document text: %w", err)
	}

	draft, err := uc.drafts.ExtractDraft(ctx, text)
	if err != nil {
		return fmt.Errorf("extract contract draft: %w", err)
	}

	if err := uc.repo.UpdateProgress(ctx, sub.ContractID, progressExtracted); err != nil {
		return fmt.Errorf("checkpoint extraction done: %w", err)
	}
	if err := uc.repo.UpdateProgress(ctx, sub.ContractID, progressScoring); err != nil {
		return fmt.Errorf("checkpoint scoring start: %w", err)
	}

	total, breakdown, missing := scoring.Score(draft)

	if err := uc.repo.UpdateProgress(ctx, sub.ContractID, progressScored); err != nil {
		return fmt.Errorf("checkpoint scoring done: %w", err)
	}

	endedAt := time.Now().UTC()
	result := domain.ProcessingResult{
		Draft:             draft,
		CompletenessScore: total,
		ScoreBreakdown:    breakdown,
		MissingFields:     missing,
		EndedAt:           endedAt,
		Seconds:           endedAt.Sub(start).Seconds(),
	}
	if err := uc.repo.SaveResults(ctx, sub.ContractID, result); err != nil {
		return fmt.Errorf("save results: %w", err)
	}

	slog.Info("contract_processing_completed",
		"contract_id", sub.ContractID,
		"score", total,
		"duration_s", result.Seconds,
	)
	return nil
}

// mapSoftLimit converts an attempt aborted by the soft time limit into a
// transient failure. The parent context still being alive distinguishes it
// from a worker shutdown or hard-limit termination.
func (uc *ProcessContractUseCase) mapSoftLimit(parent, attempt context.Context, err error) error {
	if errors.Is(attempt.Err(), context.DeadlineExceeded) && parent.Err() == nil {
		return domain.WrapError(domain.ErrTemporary, "processing soft time limit exceeded", err)
	}
	return err
}

func (uc *ProcessContractUseCase) waitBackoff(ctx context.Context) error {
	if uc.cfg.RetryBackoff <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(uc.cfg.RetryBackoff)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
