package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/mtlprog/budget/internal/date"
	"github.com/mtlprog/budget/internal/snapshot"
)

// SnapshotGenerator defines the interface for generating snapshots.
type SnapshotGenerator interface {
	Generate(ctx context.Context, d date.Date) (snapshot.Summary, error)
}

// AfterSnapshotHook is called after each successful snapshot generation.
type AfterSnapshotHook interface {
	Export(ctx context.Context, summary snapshot.Summary) error
}

// ReportWorker periodically generates the daily net worth snapshot.
type ReportWorker struct {
	generator SnapshotGenerator
	interval  time.Duration
	hook      AfterSnapshotHook // optional
	today     func() date.Date
}

// NewReportWorker creates a new ReportWorker with an optional post-generation hook.
func NewReportWorker(generator SnapshotGenerator, interval time.Duration, hook AfterSnapshotHook) *ReportWorker {
	return &ReportWorker{
		generator: generator,
		interval:  interval,
		hook:      hook,
		today:     date.Today,
	}
}

// runHook calls the post-generation hook if one is configured.
func (w *ReportWorker) runHook(ctx context.Context, summary snapshot.Summary) {
	if w.hook == nil {
		return
	}
	if err := w.hook.Export(ctx, summary); err != nil {
		slog.Error("ReportWorker: export hook failed", "error", err)
	} else {
		slog.Info("ReportWorker: export hook completed")
	}
}

func (w *ReportWorker) generate(ctx context.Context, what string) {
	summary, err := w.generator.Generate(ctx, w.today())
	if err != nil {
		slog.Error("ReportWorker: "+what+" failed", "error", err)
		return
	}
	slog.Info("ReportWorker: "+what+" completed", "date", summary.Date)
	w.runHook(ctx, summary)
}

// Run starts the report worker loop. It blocks until the context is cancelled.
func (w *ReportWorker) Run(ctx context.Context) {
	slog.Info("ReportWorker: starting", "interval", w.interval)

	w.generate(ctx, "initial generation")

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("ReportWorker: shutting down")
			return
		case <-ticker.C:
			w.generate(ctx, "generation")
		}
	}
}
