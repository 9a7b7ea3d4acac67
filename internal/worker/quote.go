package worker

import (
	"context"
	"log/slog"
	"time"
)

// QuoteRefresher fetches missing exchange rates and share prices.
type QuoteRefresher interface {
	Refresh(ctx context.Context) error
}

// QuoteWorker periodically refreshes quotes.
type QuoteWorker struct {
	refresher QuoteRefresher
	interval  time.Duration
}

// NewQuoteWorker creates a new QuoteWorker.
func NewQuoteWorker(refresher QuoteRefresher, interval time.Duration) *QuoteWorker {
	return &QuoteWorker{
		refresher: refresher,
		interval:  interval,
	}
}

func (w *QuoteWorker) refresh(ctx context.Context, what string) {
	if err := w.refresher.Refresh(ctx); err != nil {
		slog.Error("QuoteWorker: "+what+" failed", "error", err)
	} else {
		slog.Info("QuoteWorker: " + what + " completed")
	}
}

// Run starts the quote worker loop. It blocks until the context is cancelled.
func (w *QuoteWorker) Run(ctx context.Context) {
	slog.Info("QuoteWorker: starting", "interval", w.interval)

	w.refresh(ctx, "initial refresh")

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("QuoteWorker: shutting down")
			return
		case <-ticker.C:
			w.refresh(ctx, "refresh")
		}
	}
}
