package ports

import (
	"context"
	"io"

	"github.com/kirillkom/contract-intelligence/internal/core/domain"
)

// ContractSubmitter is the inbound contract for the upload path.
type ContractSubmitter interface {
	Submit(ctx context.Context, filename, mimeType string, body io.Reader) (*domain.ContractRecord, error)
}

// ContractProcessor is the inbound contract for asynchronous pipeline runs.
type ContractProcessor interface {
	Process(ctx context.Context, sub domain.Submission) (*domain.ContractRecord, error)
}

// ContractReader is the inbound read model for record state and listings.
type ContractReader interface {
	GetByID(ctx context.Context, id string) (*domain.ContractRecord, error)
	List(ctx context.Context, filter domain.ContractFilter) ([]domain.ContractSummary, int, error)
}
