package repairworker

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/assetledger/internal/domain"
	"github.com/iho/assetledger/internal/infrastructure/metrics"
	"github.com/iho/assetledger/internal/usecase"
)

// Repairer re-applies the projection of one txid.
type Repairer interface {
	RepairTransaction(ctx context.Context, txid string) (*usecase.RepairReport, error)
}

// Worker drains the repair queue on an interval.
type Worker struct {
	queue          usecase.RepairQueue
	repairer       Repairer
	logger         zerolog.Logger
	metrics        *metrics.Metrics
	batchSize      int
	interval       time.Duration
	dequeueTimeout time.Duration
	repairTimeout  time.Duration
}

// Config for Worker.
type Config struct {
	Queue          usecase.RepairQueue
	Repairer       Repairer
	Logger         zerolog.Logger
	Metrics        *metrics.Metrics // optional
	BatchSize      int              // Max txids repaired per tick
	Interval       time.Duration    // Polling interval
	DequeueTimeout time.Duration    // How long one dequeue may block
}

// New creates a new Worker.
func New(cfg Config) *Worker {
	if cfg.BatchSize == 0 {
		cfg.BatchSize = 100
	}
	if cfg.Interval == 0 {
		cfg.Interval = 5 * time.Second
	}
	if cfg.DequeueTimeout == 0 {
		cfg.DequeueTimeout = 100 * time.Millisecond
	}

	return &Worker{
		queue:          cfg.Queue,
		repairer:       cfg.Repairer,
		logger:         cfg.Logger.With().Str("component", "repair_worker").Logger(),
		metrics:        cfg.Metrics,
		batchSize:      cfg.BatchSize,
		interval:       cfg.Interval,
		dequeueTimeout: cfg.DequeueTimeout,
		repairTimeout:  usecase.DefaultOperationTimeout,
	}
}

// Start runs the worker until the context is cancelled.
func (w *Worker) Start(ctx context.Context) error {
	w.logger.Info().
		Int("batch_size", w.batchSize).
		Dur("interval", w.interval).
		Msg("repair worker started")

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	// Process immediately on start
	if err := w.processQueue(ctx); err != nil {
		w.logger.Error().Err(err).Msg("error draining repair queue on start")
	}

	for {
		select {
		case <-ctx.Done():
			w.logger.Info().Msg("repair worker shutting down")
			return ctx.Err()
		case <-ticker.C:
			if err := w.processQueue(ctx); err != nil {
				w.logger.Error().Err(err).Msg("error draining repair queue")
			}
		}
	}
}

// processQueue repairs up to batchSize queued txids. It returns early when
// the queue is empty.
func (w *Worker) processQueue(ctx context.Context) error {
	var retry []string

	for i := 0; i < w.batchSize; i++ {
		txid, err := w.queue.Dequeue(ctx, w.dequeueTimeout)
		if err != nil {
			w.requeue(ctx, retry)
			return err
		}
		if txid == "" {
			break
		}

		if w.repair(ctx, txid) {
			retry = append(retry, txid)
		}
	}

	// Requeued after the loop so a txid that keeps failing is tried once per tick.
	w.requeue(ctx, retry)
	w.reportDepth(ctx)

	return nil
}

// reportDepth publishes the number of txids still queued.
func (w *Worker) reportDepth(ctx context.Context) {
	n, err := w.queue.Len(ctx)
	if err != nil {
		w.logger.Warn().Err(err).Msg("failed to read repair queue depth")
		return
	}
	if n > 0 {
		w.logger.Debug().Int64("depth", n).Msg("repair queue backlog")
	}
	if w.metrics != nil {
		w.metrics.RepairQueueDepth.Set(float64(n))
	}
}

// repair reports whether txid should be tried again later.
func (w *Worker) repair(ctx context.Context, txid string) bool {
	repairCtx, cancel := context.WithTimeout(ctx, w.repairTimeout)
	defer cancel()

	report, err := w.repairer.RepairTransaction(repairCtx, txid)
	if err == nil {
		w.logger.Info().
			Str("txid", txid).
			Int("projected", report.Projected).
			Msg("projection repaired")
		return false
	}

	if errors.Is(err, domain.ErrTransactionNotFound) ||
		errors.Is(err, usecase.ErrInconsistentLedger) ||
		errors.Is(err, domain.ErrValidationFailed) {
		w.logger.Error().Err(err).Str("txid", txid).Msg("dropping unrepairable txid")
		return false
	}

	w.logger.Warn().Err(err).Str("txid", txid).Msg("repair failed, will retry")
	return true
}

func (w *Worker) requeue(ctx context.Context, txids []string) {
	for _, txid := range txids {
		if err := w.queue.Enqueue(ctx, txid); err != nil {
			w.logger.Error().Err(err).Str("txid", txid).Msg("failed to requeue txid")
		}
	}
}
