package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ksrishi31-git/smart-document-organizer/internal/bootstrap"
	"github.com/ksrishi31-git/smart-document-organizer/internal/config"
	"github.com/ksrishi31-git/smart-document-organizer/internal/core/domain"
	"github.com/ksrishi31-git/smart-document-organizer/internal/observability/logging"
	"github.com/ksrishi31-git/smart-document-organizer/internal/observability/metrics"
)

const service = "organizer-worker"

func main() {
	cfg := config.Load()
	logging.NewJSONLogger(service, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	workerMetrics := metrics.NewWorkerMetrics(service)
	app, err := bootstrap.New(ctx, cfg, service, workerMetrics.Registerer())
	if err != nil {
		slog.Error("bootstrap_failed", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	metricsServer := &http.Server{
		Addr:              ":" + cfg.WorkerMetricsPort,
		Handler:           workerMetrics.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("worker_metrics_server_failed", "error", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsServer.Shutdown(shutdownCtx)
	}()

	slog.Info("worker_subscribed", "subject", cfg.NATSSubject)
	err = app.Queue.SubscribeOrganizeJobs(ctx, func(handlerCtx context.Context, job domain.OrganizeJob) error {
		if !job.EnqueuedAt.IsZero() {
			workerMetrics.ObserveQueueLag(service, time.Since(job.EnqueuedAt))
		}
		workerMetrics.StartJob()
		start := time.Now()

		processCtx, cancel := context.WithTimeout(handlerCtx, cfg.WorkerJobTimeout)
		defer cancel()
		result, err := app.Processor.ProcessJob(processCtx, job)
		workerMetrics.FinishJob(service, time.Since(start), err)
		if err != nil {
			return err
		}
		slog.Info("organize_job_done",
			"job_id", job.ID,
			"stored_name", result.StoredName,
			"category", result.Category.String(),
		)
		return nil
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("worker_subscribe_failed", "error", err)
		os.Exit(1)
	}
}
