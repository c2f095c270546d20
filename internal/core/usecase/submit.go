package usecase

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kirillkom/contract-intelligence/internal/core/domain"
	"github.com/kirillkom/contract-intelligence/internal/core/ports"
)

// SubmitContractUseCase accepts an uploaded document, creates the pending
// record and hands the submission to the worker pool. Fire-and-forget: the
// caller polls the record for progress afterwards.
type SubmitContractUseCase struct {
	repo    ports.ContractRepository
	storage ports.ObjectStorage
	queue   ports.MessageQueue
}

func NewSubmitContractUseCase(
	repo ports.ContractRepository,
	storage ports.ObjectStorage,
	queue ports.MessageQueue,
) *SubmitContractUseCase {
	return &SubmitContractUseCase{
		repo:    repo,
		storage: storage,
		queue:   queue,
	}
}

func (uc *SubmitContractUseCase) Submit(
	ctx context.Context,
	filename, mimeType string,
	body io.Reader,
) (*domain.ContractRecord, error) {
	id := uuid.NewString()
	storageKey := fmt.Sprintf("%s_%s", id, sanitizeFilename(filename))

	size, err := uc.storage.Save(ctx, storageKey, body)
	if err != nil {
		return nil, fmt.Errorf("save contract file: %w", err)
	}

	rec := &domain.ContractRecord{
		ID:            id,
		Filename:      filename,
		FileSize:      size,
		FileType:      mimeType,
		StoragePath:   storageKey,
		Status:        domain.StatusPending,
		Progress:      0,
		MissingFields: []string{},
		SubmittedAt:   time.Now().UTC(),
	}

	if err := uc.repo.Create(ctx, rec); err != nil {
		return nil, fmt.Errorf("create contract record: %w", err)
	}

	sub := domain.Submission{ContractID: rec.ID, StoragePath: rec.StoragePath}
	if err := uc.queue.PublishContractSubmitted(ctx, sub); err != nil {
		return nil, fmt.Errorf("publish submission: %w", err)
	}

	return rec, nil
}

func sanitizeFilename(name string) string {
	base := filepath.Base(name)
	base = strings.ReplaceAll(base, " ", "_")
	base = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r
		case r >= 'A' && r <= 'Z':
			return r
		case r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, base)
	if base == "" {
		return "contract.pdf"
	}
	return base
}
