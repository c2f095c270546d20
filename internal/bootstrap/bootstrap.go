// Package bootstrap wires adapters into the use cases shared by both binaries.
package bootstrap

import (
	"context"
	"fmt"

	"github.com/kirillkom/contract-intelligence/internal/config"
	"github.com/kirillkom/contract-intelligence/internal/core/ports"
	"github.com/kirillkom/contract-intelligence/internal/core/usecase"
	"github.com/kirillkom/contract-intelligence/internal/infrastructure/extractor/pdftext"
	"github.com/kirillkom/contract-intelligence/internal/infrastructure/llm/openrouter"
	"github.com/kirillkom/contract-intelligence/internal/infrastructure/queue/nats"
	"github.com/kirillkom/contract-intelligence/internal/infrastructure/repository/postgres"
	"github.com/kirillkom/contract-intelligence/internal/infrastructure/resilience"
	"github.com/kirillkom/contract-intelligence/internal/infrastructure/storage/localfs"
)

type App struct {
	Config config.Config

	Queue   ports.MessageQueue
	Reader  ports.ContractReader
	Storage ports.ObjectStorage

	SubmitUC  ports.ContractSubmitter
	ProcessUC ports.ContractProcessor

	closeFn func()
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	repo := postgres.NewContractRepository(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	storage, err := localfs.New(cfg.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("init object storage: %w", err)
	}

	executor := resilience.NewExecutor(resilience.DefaultConfig())

	queue, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, nats.Options{
		ResilienceExecutor: executor,
	})
	if err != nil {
		return nil, fmt.Errorf("init message queue: %w", err)
	}

	drafts := openrouter.New(cfg.OpenRouterURL, cfg.OpenRouterAPIKey, cfg.OpenRouterModel, openrouter.Options{
		RequestsPerMinute:  cfg.LLMRequestsPerMinute,
		ResilienceExecutor: executor,
	})
	texts := pdftext.New(storage)

	submitUC := usecase.NewSubmitContractUseCase(repo, storage, queue)
	processUC := usecase.NewProcessContractUseCase(repo, texts, drafts, usecase.ProcessConfig{
		MaxRetries:    cfg.MaxRetries,
		RetryBackoff:  cfg.RetryBackoff,
		SoftTimeLimit: cfg.SoftTimeLimit,
	})

	return &App{
		Config: cfg,

		Queue:   queue,
		Reader:  repo,
		Storage: storage,

		SubmitUC:  submitUC,
		ProcessUC: processUC,

		closeFn: func() {
			queue.Close()
			_ = db.Close()
		},
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
