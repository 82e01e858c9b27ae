// Package worker mirrors ledger change events into the export spreadsheet.
package worker

import (
	"context"
	"errors"
	"fmt"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/sheets"
)

// TransactionSource is the slice of the store the exporter reads.
type TransactionSource interface {
	GetTransaction(ctx context.Context, ownerID, id int64) (core.Transaction, error)
	ListTransactions(ctx context.Context, ownerID int64, f core.TransactionFilter) ([]core.Transaction, error)
}

// ExportWorker applies transaction events to the ledger. Events carry ids
// only, so created and updated rows are reloaded from the store.
type ExportWorker struct {
	store     TransactionSource
	ledger    sheets.LedgerWriter
	logger    *log.Logger
	batchSize int
}

func NewExportWorker(store TransactionSource, ledger sheets.LedgerWriter, logger *log.Logger, batchSize int) *ExportWorker {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	if batchSize <= 0 {
		batchSize = 10
	}
	return &ExportWorker{
		store:     store,
		ledger:    ledger,
		logger:    logger.WithComponent(log.ComponentExporter),
		batchSize: batchSize,
	}
}

// HandleEvent is the AMQP consumer callback. A returned error requeues the
// delivery.
func (w *ExportWorker) HandleEvent(ctx context.Context, ev *amqp.TransactionEvent) error {
	w.logger.DebugContext(ctx, "Processing ledger event",
		log.FieldEventType, string(ev.Type),
		log.FieldUserID, ev.UserID,
		log.FieldTransactionID, ev.TransactionID)

	switch ev.Type {
	case amqp.TransactionCreated, amqp.TransactionUpdated:
		return w.export(ctx, ev)
	case amqp.TransactionDeleted:
		found, err := w.ledger.Delete(ctx, ev.TransactionID)
		if err != nil {
			return fmt.Errorf("delete ledger row %d: %w", ev.TransactionID, err)
		}
		ref := ""
		if found {
			ref = "deleted"
		}
		log.NewStructuredLogger(w.logger).LogExported(ctx, string(ev.Type), ev.UserID, ev.TransactionID, ev.CategoryID, ref)
		return nil
	case amqp.CategoryDeleted:
		n, err := w.ledger.DeleteCategory(ctx, ev.CategoryID)
		if err != nil {
			return fmt.Errorf("delete ledger rows of category %d: %w", ev.CategoryID, err)
		}
		w.logger.InfoContext(ctx, "Removed category rows from ledger",
			log.FieldCategoryID, ev.CategoryID,
			"rows", n)
		return nil
	default:
		w.logger.WarnContext(ctx, "Ignoring unknown ledger event", log.FieldEventType, string(ev.Type))
		return nil
	}
}

func (w *ExportWorker) export(ctx context.Context, ev *amqp.TransactionEvent) error {
	tx, err := w.store.GetTransaction(ctx, ev.UserID, ev.TransactionID)
	if errors.Is(err, core.ErrNotFound) {
		// deleted after the event was published; its own delete event follows
		w.logger.InfoContext(ctx, "Transaction no longer exists, skipping export",
			log.FieldTransactionID, ev.TransactionID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("load transaction %d: %w", ev.TransactionID, err)
	}

	ref, err := w.ledger.Upsert(ctx, sheets.RowFromTransaction(tx))
	if err != nil {
		return fmt.Errorf("export transaction %d: %w", tx.ID, err)
	}
	log.NewStructuredLogger(w.logger).LogExported(ctx, string(ev.Type), tx.UserID, tx.ID, tx.CategoryID, ref)
	return nil
}

// ResyncOwner re-exports every transaction of one owner, batchSize rows at a
// time. It recovers a ledger after the exporter missed events.
func (w *ExportWorker) ResyncOwner(ctx context.Context, ownerID int64) (int, error) {
	exported := 0
	for offset := 0; ; offset += w.batchSize {
		batch, err := w.store.ListTransactions(ctx, ownerID, core.TransactionFilter{
			Ordering: core.OrderCreatedAsc,
			Limit:    w.batchSize,
			Offset:   offset,
		})
		if err != nil {
			return exported, fmt.Errorf("list transactions of user %d: %w", ownerID, err)
		}
		for _, tx := range batch {
			if err := ctx.Err(); err != nil {
				return exported, err
			}
			if _, err := w.ledger.Upsert(ctx, sheets.RowFromTransaction(tx)); err != nil {
				return exported, fmt.Errorf("export transaction %d: %w", tx.ID, err)
			}
			exported++
		}
		if len(batch) < w.batchSize {
			break
		}
	}
	w.logger.InfoContext(ctx, "Ledger resync completed", log.FieldUserID, ownerID, "exported", exported)
	return exported, nil
}
