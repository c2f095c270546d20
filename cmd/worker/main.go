package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kirillkom/contract-intelligence/internal/bootstrap"
	"github.com/kirillkom/contract-intelligence/internal/config"
	"github.com/kirillkom/contract-intelligence/internal/core/domain"
	"github.com/kirillkom/contract-intelligence/internal/observability/logging"
	"github.com/kirillkom/contract-intelligence/internal/observability/metrics"
)

func main() {
	cfg := config.Load()
	logger := logging.Setup("worker", cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg)
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}
	defer app.Close()

	workerMetrics := metrics.NewWorkerMetrics("worker")
	metricsServer := &http.Server{
		Addr:    ":" + cfg.WorkerMetricsPort,
		Handler: workerMetrics.Handler(),
	}
	go func() {
		logger.Info("worker_metrics_listening", "port", cfg.WorkerMetricsPort)
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("worker_metrics_server_error", "error", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsServer.Shutdown(shutdownCtx)
	}()

	logger.Info("worker_subscribed", "subject", cfg.NATSSubject)
	err = app.Queue.SubscribeContractSubmitted(ctx, func(handlerCtx context.Context, sub domain.Submission) error {
		processCtx, cancel := context.WithTimeout(handlerCtx, cfg.HardTimeLimit)
		defer cancel()

		workerMetrics.StartContract()
		start := time.Now()

		rec, err := app.ProcessUC.Process(processCtx, sub)

		attempts := 0
		if rec != nil {
			attempts = rec.Attempt + 1
		}
		workerMetrics.FinishContract("worker", time.Since(start), attempts, err)
		if err == nil && rec != nil {
			workerMetrics.ObserveCompletenessScore(rec.CompletenessScore)
		}
		return err
	})
	if err != nil {
		log.Fatalf("worker subscribe error: %v", err)
	}
}
