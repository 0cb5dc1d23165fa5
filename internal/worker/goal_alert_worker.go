package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"finance/internal/amqp"
	"finance/internal/core"
	applog "finance/internal/log"
	"finance/internal/sheets"
	"finance/internal/storage"
)

// GoalAlertWorker reacts to transaction.recorded events: it exports the
// transaction and, for expenses, checks every goal period.
type GoalAlertWorker struct {
	store    storage.Repository
	exporter sheets.TransactionExporter
	log      *applog.Logger
	alerts   *applog.StructuredLogger
	now      func() time.Time
}

// NewGoalAlertWorker builds a worker. exporter may be nil.
func NewGoalAlertWorker(store storage.Repository, exporter sheets.TransactionExporter, logger *applog.Logger) *GoalAlertWorker {
	if logger == nil {
		logger = applog.FromContext(context.Background()).WithComponent(applog.ComponentWorker)
	}
	return &GoalAlertWorker{
		store:    store,
		exporter: exporter,
		log:      logger,
		alerts:   applog.NewStructuredLogger(logger),
		now:      time.Now,
	}
}

// SetClock replaces the clock that anchors goal windows.
func (w *GoalAlertWorker) SetClock(now func() time.Time) {
	w.now = now
}

// HandleTransactionRecorded processes one message. Missing transactions are
// logged and acknowledged; other failures are returned so the message is
// redelivered.
func (w *GoalAlertWorker) HandleTransactionRecorded(ctx context.Context, msg *amqp.TransactionRecordedMessage) error {
	t, err := w.store.GetTransaction(ctx, msg.ID)
	if errors.Is(err, storage.ErrNotFound) {
		w.log.WarnContext(ctx, "Transaction from message not found, skipping",
			applog.FieldTransactionID, msg.ID,
			"message_id", msg.MessageID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("get transaction %d: %w", msg.ID, err)
	}

	if err := w.export(ctx, t); err != nil {
		return err
	}

	if t.Type != core.Expense {
		return nil
	}
	return w.checkGoals(ctx, t)
}

func (w *GoalAlertWorker) export(ctx context.Context, t core.Transaction) error {
	if w.exporter == nil {
		return nil
	}
	ref, err := w.exporter.ExportTransaction(ctx, t)
	if err != nil {
		return fmt.Errorf("export transaction %d: %w", t.ID, err)
	}
	w.log.WithComponent(applog.ComponentSheets).InfoContext(ctx, "Transaction exported",
		applog.FieldOperation, applog.OpExport,
		applog.FieldTransactionID, t.ID,
		"row_ref", ref)
	return nil
}

// checkGoals evaluates each goal as of today. Expenses dated outside a
// goal's current window do not raise alerts for it.
func (w *GoalAlertWorker) checkGoals(ctx context.Context, t core.Transaction) error {
	today := core.DateOf(w.now())
	for _, period := range core.Periods() {
		p, err := storage.GoalProgress(ctx, w.store, period, today)
		if err != nil {
			return fmt.Errorf("evaluate %s goal: %w", period, err)
		}
		if !p.HasGoal() {
			continue
		}
		if t.Date.Before(p.Start.Time) || t.Date.After(p.End.Time) {
			continue
		}
		w.alerts.LogGoalAlert(ctx, p)
	}
	return nil
}

// ReviewGoals logs an alert for every goal that is exceeded or close to
// its limit today, independent of any single transaction.
func (w *GoalAlertWorker) ReviewGoals(ctx context.Context) error {
	today := core.DateOf(w.now())
	for _, period := range core.Periods() {
		p, err := storage.GoalProgress(ctx, w.store, period, today)
		if err != nil {
			return fmt.Errorf("evaluate %s goal: %w", period, err)
		}
		w.alerts.LogGoalAlert(ctx, p)
	}
	return nil
}

// RunPeriodicReview calls ReviewGoals every interval until ctx is done.
// Review failures are logged and do not stop the loop.
func (w *GoalAlertWorker) RunPeriodicReview(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := w.ReviewGoals(ctx); err != nil {
				w.alerts.LogError(ctx, "Periodic goal review failed", err, applog.OpProgress, applog.ErrorTypeDatabase)
			}
		}
	}
}
