// Package worker keeps daily snapshots in step with the transaction
// log: it reacts to transaction-recorded events and bootstraps the
// current day's snapshot on a periodic tick.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dejotaortega/finanzas-deiner/internal/amqp"
	"github.com/dejotaortega/finanzas-deiner/internal/core"
	"github.com/dejotaortega/finanzas-deiner/internal/ledger"
)

// SnapshotWorker refreshes derived snapshot data. Snapshots are
// rebuildable from the log at any time, so every operation here is
// idempotent and safe to retry.
type SnapshotWorker struct {
	ledger *ledger.Service
}

func NewSnapshotWorker(svc *ledger.Service) *SnapshotWorker {
	return &SnapshotWorker{ledger: svc}
}

// HandleTransactionEvent refreshes the snapshot of the event's date
// from the transaction chain.
func (w *SnapshotWorker) HandleTransactionEvent(ctx context.Context, msg *amqp.TransactionRecordedMessage) error {
	date, err := core.ParseDate(msg.Date)
	if err != nil {
		return fmt.Errorf("event for sequence %d: %w", msg.SequenceID, err)
	}

	snap, err := w.ledger.RefreshSnapshot(ctx, date)
	if err != nil {
		return fmt.Errorf("refresh snapshot for %s: %w", date, err)
	}

	slog.InfoContext(ctx, "Snapshot refreshed",
		"date", snap.Date.String(),
		"opening", snap.Opening.String(),
		"closing", snap.Closing.String(),
		"sequence_id", msg.SequenceID)
	return nil
}

// RunDailyBootstrap creates today's snapshot when the calendar rolls
// over without any traffic, checking every interval until ctx ends.
func (w *SnapshotWorker) RunDailyBootstrap(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// Cover the day the worker starts on as well.
	w.bootstrapOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			w.bootstrapOnce(ctx)
		}
	}
}

func (w *SnapshotWorker) bootstrapOnce(ctx context.Context) {
	snap, err := w.ledger.BootstrapToday(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to bootstrap today's snapshot", "error", err)
		return
	}
	slog.DebugContext(ctx, "Today's snapshot present",
		"date", snap.Date.String(),
		"closing", snap.Closing.String())
}
