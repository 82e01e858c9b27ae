package memory

import (
	"context"
	"testing"

	"fintrack/internal/core"
	"fintrack/internal/sheets"
)

func row(id, category int64, amount string) sheets.LedgerRow {
	return sheets.LedgerRow{
		TransactionID: id,
		UserID:        1,
		CategoryID:    category,
		Date:          core.NewDate(2024, 3, 1),
		Amount:        core.MustMoney(amount),
	}
}

func TestLedgerUpsertReplacesByTransactionID(t *testing.T) {
	ctx := context.Background()
	l := New()

	ref, err := l.Upsert(ctx, row(10, 1, "5.00"))
	if err != nil || ref != "mem:1" {
		t.Fatalf("unexpected upsert: ref=%q err=%v", ref, err)
	}
	if _, err := l.Upsert(ctx, row(11, 2, "6.00")); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	ref, err = l.Upsert(ctx, row(10, 1, "7.50"))
	if err != nil || ref != "mem:1" {
		t.Fatalf("expected in place replace, got ref=%q err=%v", ref, err)
	}

	rows, _ := l.Rows(ctx)
	if len(rows) != 2 || rows[0].Amount.String() != "7.50" {
		t.Fatalf("unexpected rows %+v", rows)
	}
	if _, err := l.Upsert(ctx, sheets.LedgerRow{}); err == nil {
		t.Fatalf("expected error for row without id")
	}
}

func TestLedgerDelete(t *testing.T) {
	ctx := context.Background()
	l := New()
	for i, cat := range []int64{1, 2, 1, 1} {
		l.Upsert(ctx, row(int64(i+1), cat, "1"))
	}

	if ok, _ := l.Delete(ctx, 2); !ok {
		t.Fatalf("expected row 2 to be deleted")
	}
	if ok, _ := l.Delete(ctx, 2); ok {
		t.Fatalf("second delete should report missing")
	}
	if n, _ := l.DeleteCategory(ctx, 1); n != 3 {
		t.Fatalf("expected 3 rows of category 1, got %d", n)
	}
	if rows, _ := l.Rows(ctx); len(rows) != 0 {
		t.Fatalf("expected empty ledger, got %+v", rows)
	}
}
