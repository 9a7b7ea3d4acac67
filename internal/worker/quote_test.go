package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

type mockRefresher struct {
	callCount atomic.Int32
	err       error
}

func (m *mockRefresher) Refresh(_ context.Context) error {
	m.callCount.Add(1)
	return m.err
}

func TestQuoteWorkerRunsAndShutdown(t *testing.T) {
	mock := &mockRefresher{}
	w := NewQuoteWorker(mock, 50*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	w.Run(ctx)

	// Should have run at least the initial refresh + some ticks
	if got := mock.callCount.Load(); got < 2 {
		t.Errorf("call count = %d, want >= 2", got)
	}
}

func TestQuoteWorkerKeepsRunningAfterFailure(t *testing.T) {
	mock := &mockRefresher{err: errors.New("upstream down")}
	w := NewQuoteWorker(mock, 20*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	w.Run(ctx)

	if got := mock.callCount.Load(); got < 2 {
		t.Errorf("call count = %d, want >= 2", got)
	}
}
