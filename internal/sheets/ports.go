// Package sheets defines the ledger export ports. The exporter mirrors every
// transaction as one spreadsheet row keyed by transaction id.
package sheets

import (
	"context"
	"strconv"
	"strings"

	"fintrack/internal/core"
)

// Header is the first row of the ledger sheet.
var Header = []any{"ID", "User", "Category ID", "Date", "Category", "Type", "Amount", "Note"}

// LedgerRow is one exported transaction.
type LedgerRow struct {
	TransactionID int64
	UserID        int64
	CategoryID    int64
	Date          core.Date
	CategoryName  string
	Type          core.CategoryType
	Amount        core.Money
	Note          string
}

func RowFromTransaction(t core.Transaction) LedgerRow {
	r := LedgerRow{
		TransactionID: t.ID,
		UserID:        t.UserID,
		CategoryID:    t.CategoryID,
		Date:          t.Date,
		CategoryName:  t.CategoryName,
		Type:          t.CategoryType,
		Amount:        t.Amount,
	}
	if t.Note != nil {
		r.Note = *t.Note
	}
	return r
}

// Values renders the row in Header column order.
func (r LedgerRow) Values() []any {
	return []any{r.TransactionID, r.UserID, r.CategoryID, r.Date.String(), r.CategoryName, string(r.Type), r.Amount.String(), r.Note}
}

// ParseLedgerRow reads a row back. Rows whose id column is not numeric, such
// as the header, report false.
func ParseLedgerRow(cols []string) (LedgerRow, bool) {
	get := func(i int) string {
		if i < len(cols) {
			return strings.TrimSpace(cols[i])
		}
		return ""
	}
	id, err := strconv.ParseInt(get(0), 10, 64)
	if err != nil {
		return LedgerRow{}, false
	}
	r := LedgerRow{TransactionID: id, CategoryName: get(4), Type: core.CategoryType(get(5)), Note: get(7)}
	r.UserID, _ = strconv.ParseInt(get(1), 10, 64)
	r.CategoryID, _ = strconv.ParseInt(get(2), 10, 64)
	r.Date, _ = core.ParseDate(get(3))
	r.Amount, _ = core.ParseMoney(get(6))
	return r, true
}

// Ports for outbound adapters.
type (
	LedgerWriter interface {
		// Upsert replaces the row of the transaction or appends a new one.
		Upsert(ctx context.Context, row LedgerRow) (rowRef string, err error)
		// Delete removes the row of the transaction, reporting whether it existed.
		Delete(ctx context.Context, transactionID int64) (bool, error)
		// DeleteCategory removes every row of the category.
		DeleteCategory(ctx context.Context, categoryID int64) (int, error)
	}

	LedgerReader interface {
		Rows(ctx context.Context) ([]LedgerRow, error)
	}

	Ledger interface {
		LedgerWriter
		LedgerReader
	}
)
