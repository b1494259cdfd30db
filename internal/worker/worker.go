package worker

import (
	"context"
	"log/slog"
	"time"

	"news-analyzer/internal/usecase"
)

const (
	cycleTimeout   = 30 * time.Minute
	initialBackoff = 1 * time.Minute
	maxBackoff     = 30 * time.Minute
)

// AnalysisRunner is the slice of the analyzer the worker needs.
type AnalysisRunner interface {
	AnalyzeAll(ctx context.Context, hours, parallelism int) (*usecase.AnalysisRun, error)
}

// AnalysisWorker runs the all-companies analysis on a fixed interval. A
// failed cycle retries with doubling backoff instead of waiting for the next
// full interval.
type AnalysisWorker struct {
	runner      AnalysisRunner
	interval    time.Duration
	hours       int
	parallelism int
	logger      *slog.Logger
	stopChan    chan struct{}
	backoff     time.Duration
}

func NewAnalysisWorker(runner AnalysisRunner, interval time.Duration, hours, parallelism int, logger *slog.Logger) *AnalysisWorker {
	return &AnalysisWorker{
		runner:      runner,
		interval:    interval,
		hours:       hours,
		parallelism: parallelism,
		logger:      logger,
		stopChan:    make(chan struct{}),
	}
}

func (w *AnalysisWorker) Start() {
	w.logger.Info("analysis_worker_started",
		slog.Duration("interval", w.interval),
		slog.Int("hours", w.hours),
	)
	go w.run()
}

func (w *AnalysisWorker) Stop() {
	w.logger.Info("analysis_worker_stopping")
	close(w.stopChan)
}

func (w *AnalysisWorker) run() {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopChan:
			return
		case <-ticker.C:
			w.runCycle()
			if w.backoff > 0 {
				ticker.Reset(w.backoff)
			} else {
				ticker.Reset(w.interval)
			}
		}
	}
}

func (w *AnalysisWorker) runCycle() {
	ctx, cancel := context.WithTimeout(context.Background(), cycleTimeout)
	defer cancel()

	run, err := w.runner.AnalyzeAll(ctx, w.hours, w.parallelism)
	if err != nil {
		w.backoff = w.nextBackoff(w.backoff)
		w.logger.Warn("analysis_cycle_failed",
			slog.String("error", err.Error()),
			slog.Duration("backoff", w.backoff),
		)
		return
	}

	w.backoff = 0
	w.logger.Info("analysis_cycle_completed",
		slog.Int("analyzed", run.Stats.Analyzed),
		slog.Int("skipped", run.Stats.Skipped),
		slog.Int("failed", run.Stats.Failed),
	)
}

func (w *AnalysisWorker) nextBackoff(current time.Duration) time.Duration {
	if current == 0 {
		return initialBackoff
	}
	next := current * 2
	if next > maxBackoff {
		return maxBackoff
	}
	return next
}
