package reconciler

import (
	"context"
	"log"
	"time"

	"chainorg/internal/application/dto"
	portsin "chainorg/internal/application/ports/in"
)

// CycleObserver receives the per-cycle counts of a reconcile pass.
type CycleObserver interface {
	ObserveReconcile(finalized, failed, skipped, errored int)
}

type Worker struct {
	enabled       bool
	pollInterval  time.Duration
	batchSize     int
	workerID      string
	leaseDuration time.Duration
	minAge        time.Duration
	useCase       portsin.ReconcileRegistrationsUseCase
	observer      CycleObserver
	logger        *log.Logger
}

func NewWorker(
	enabled bool,
	pollInterval time.Duration,
	batchSize int,
	workerID string,
	leaseDuration time.Duration,
	minAge time.Duration,
	useCase portsin.ReconcileRegistrationsUseCase,
	observer CycleObserver,
	logger *log.Logger,
) *Worker {
	return &Worker{
		enabled:       enabled,
		pollInterval:  pollInterval,
		batchSize:     batchSize,
		workerID:      workerID,
		leaseDuration: leaseDuration,
		minAge:        minAge,
		useCase:       useCase,
		observer:      observer,
		logger:        logger,
	}
}

func (w *Worker) Enabled() bool {
	return w != nil && w.enabled
}

func (w *Worker) Start(ctx context.Context) {
	if w == nil || !w.enabled || w.useCase == nil || w.pollInterval <= 0 {
		return
	}

	w.logf(
		"registration reconciler started worker_id=%s poll_interval=%s batch_size=%d lease_duration=%s min_age=%s",
		w.workerID,
		w.pollInterval,
		w.batchSize,
		w.leaseDuration,
		w.minAge,
	)

	w.runCycle(ctx)
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logf("registration reconciler stopped worker_id=%s", w.workerID)
			return
		case <-ticker.C:
			w.runCycle(ctx)
		}
	}
}

func (w *Worker) runCycle(ctx context.Context) {
	startedAt := time.Now().UTC()
	output, appErr := w.useCase.Execute(ctx, dto.ReconcileRegistrationsCommand{
		Now:           startedAt,
		BatchSize:     w.batchSize,
		WorkerID:      w.workerID,
		LeaseDuration: w.leaseDuration,
		MinAge:        w.minAge,
	})
	if appErr != nil {
		if w.observer != nil {
			w.observer.ObserveReconcile(0, 0, 0, 1)
		}
		w.logf(
			"registration reconcile cycle failed code=%s message=%s details=%v",
			appErr.Code,
			appErr.Message,
			appErr.Details,
		)
		return
	}

	if w.observer != nil {
		w.observer.ObserveReconcile(output.Finalized, output.Failed, output.Skipped, output.Errors)
	}
	if output.Claimed == 0 {
		return
	}

	w.logf(
		"registration reconcile cycle completed worker_id=%s claimed=%d finalized=%d failed=%d skipped=%d errors=%d latency_ms=%d",
		w.workerID,
		output.Claimed,
		output.Finalized,
		output.Failed,
		output.Skipped,
		output.Errors,
		time.Since(startedAt).Milliseconds(),
	)
}

func (w *Worker) logf(format string, args ...any) {
	if w.logger == nil {
		return
	}
	w.logger.Printf(format, args...)
}
