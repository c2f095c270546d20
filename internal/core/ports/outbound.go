package ports

import (
	"context"
	"io"
	"time"

	"github.com/kirillkom/contract-intelligence/internal/core/domain"
)

// ContractRepository persists contract records. Updates have merge semantics:
// each method writes only the columns it names, keyed by contract id.
type ContractRepository interface {
	Create(ctx context.Context, rec *domain.ContractRecord) error
	GetByID(ctx context.Context, id string) (*domain.ContractRecord, error)
	MarkProcessing(ctx context.Context, id string, attempt int, startedAt time.Time) error
	UpdateProgress(ctx context.Context, id string, progress int) error
	SaveResults(ctx context.Context, id string, res domain.ProcessingResult) error
	MarkFailed(ctx context.Context, id string, errMessage string, endedAt time.Time, seconds float64) error
	List(ctx context.Context, filter domain.ContractFilter) ([]domain.ContractSummary, int, error)
}

// ObjectStorage stores source contract documents.
type ObjectStorage interface {
	Save(ctx context.Context, key string, data io.Reader) (int64, error)
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

// MessageQueue dispatches submissions from the API to the worker pool.
type MessageQueue interface {
	PublishContractSubmitted(ctx context.Context, sub domain.Submission) error
	SubscribeContractSubmitted(ctx context.Context, handler func(context.Context, domain.Submission) error) error
}

// TextExtractor extracts plain text from a stored document.
type TextExtractor interface {
	Extract(ctx context.Context, storagePath string) (string, error)
}

// DraftExtractor turns contract text into a structured draft. Failures carry
// domain.ErrTemporary when transient and domain.ErrUnreadableDocument when the
// document has no extractable fields.
type DraftExtractor interface {
	ExtractDraft(ctx context.Context, text string) (*domain.ContractDraft, error)
}
