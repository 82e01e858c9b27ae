// Package memory is an in-process ledger used when no spreadsheet is
// configured and in tests.
package memory

import (
	"context"
	"fmt"
	"sync"

	"fintrack/internal/sheets"
)

type Ledger struct {
	mu   sync.Mutex
	rows []sheets.LedgerRow
}

var _ sheets.Ledger = (*Ledger)(nil)

func New() *Ledger {
	return &Ledger{}
}

// Upsert stores the row and returns a synthetic row reference.
func (l *Ledger) Upsert(_ context.Context, row sheets.LedgerRow) (string, error) {
	if row.TransactionID == 0 {
		return "", fmt.Errorf("ledger row without transaction id")
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	for i := range l.rows {
		if l.rows[i].TransactionID == row.TransactionID {
			l.rows[i] = row
			return fmt.Sprintf("mem:%d", i+1), nil
		}
	}
	l.rows = append(l.rows, row)
	return fmt.Sprintf("mem:%d", len(l.rows)), nil
}

func (l *Ledger) Delete(_ context.Context, transactionID int64) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i := range l.rows {
		if l.rows[i].TransactionID == transactionID {
			l.rows = append(l.rows[:i], l.rows[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (l *Ledger) DeleteCategory(_ context.Context, categoryID int64) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	kept := l.rows[:0]
	removed := 0
	for _, r := range l.rows {
		if r.CategoryID == categoryID {
			removed++
			continue
		}
		kept = append(kept, r)
	}
	l.rows = kept
	return removed, nil
}

// Rows returns a copy of the ledger in insertion order.
func (l *Ledger) Rows(_ context.Context) ([]sheets.LedgerRow, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]sheets.LedgerRow(nil), l.rows...), nil
}
