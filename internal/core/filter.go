package core

import (
	"sort"
	"strings"
)

// Orderings accepted for transaction listings. The default is newest first.
const (
	OrderDateDesc    = "-date"
	OrderDateAsc     = "date"
	OrderAmountDesc  = "-amount"
	OrderAmountAsc   = "amount"
	OrderCreatedDesc = "-created_at"
	OrderCreatedAsc  = "created_at"

	DefaultTxOrdering = OrderDateDesc
)

const (
	MaxPageSize     = 100
	DefaultPageSize = 20
)

func ValidOrdering(o string) bool {
	switch o {
	case OrderDateDesc, OrderDateAsc, OrderAmountDesc, OrderAmountAsc, OrderCreatedDesc, OrderCreatedAsc:
		return true
	}
	return false
}

// TransactionFilter narrows a transaction listing. Nil fields do not filter.
// Bounds are inclusive.
type TransactionFilter struct {
	StartDate  *Date
	EndDate    *Date
	MinAmount  *Money
	MaxAmount  *Money
	CategoryID *int64
	Type       CategoryType
	Ordering   string
	// Limit <= 0 means no limit.
	Limit  int
	Offset int
}

// MonthFilter selects every transaction dated inside p.
func MonthFilter(p Period) TransactionFilter {
	start, end := p.Bounds()
	return TransactionFilter{StartDate: &start, EndDate: &end}
}

func (f TransactionFilter) Matches(tx Transaction) bool {
	if f.StartDate != nil && tx.Date.Before(*f.StartDate) {
		return false
	}
	if f.EndDate != nil && tx.Date.After(*f.EndDate) {
		return false
	}
	if f.MinAmount != nil && tx.Amount.Cmp(*f.MinAmount) < 0 {
		return false
	}
	if f.MaxAmount != nil && tx.Amount.Cmp(*f.MaxAmount) > 0 {
		return false
	}
	if f.CategoryID != nil && tx.CategoryID != *f.CategoryID {
		return false
	}
	if f.Type != "" && tx.CategoryType != f.Type {
		return false
	}
	return true
}

// OrderingOrDefault returns the ordering to apply.
func (f TransactionFilter) OrderingOrDefault() string {
	if ValidOrdering(f.Ordering) {
		return f.Ordering
	}
	return DefaultTxOrdering
}

// SortTransactions orders txs in place. Ties fall back to newest created,
// then highest id, so listings are stable.
func SortTransactions(txs []Transaction, ordering string) {
	if !ValidOrdering(ordering) {
		ordering = DefaultTxOrdering
	}
	desc := strings.HasPrefix(ordering, "-")
	field := strings.TrimPrefix(ordering, "-")

	sort.SliceStable(txs, func(i, j int) bool {
		a, b := txs[i], txs[j]
		var c int
		switch field {
		case "date":
			c = a.Date.Compare(b.Date.Time)
		case "amount":
			c = a.Amount.Cmp(b.Amount)
		case "created_at":
			c = a.CreatedAt.Compare(b.CreatedAt)
		}
		if desc {
			c = -c
		}
		if c != 0 {
			return c < 0
		}
		if cc := a.CreatedAt.Compare(b.CreatedAt); cc != 0 {
			return cc > 0
		}
		return a.ID > b.ID
	})
}

// BudgetFilter narrows a budget listing.
type BudgetFilter struct {
	Year  *int
	Month *int
}

func (f BudgetFilter) Matches(b Budget) bool {
	if f.Year != nil && b.Year != *f.Year {
		return false
	}
	if f.Month != nil && b.Month != *f.Month {
		return false
	}
	return true
}

// SortBudgets orders newest period first.
func SortBudgets(bs []Budget) {
	sort.SliceStable(bs, func(i, j int) bool {
		if bs[i].Year != bs[j].Year {
			return bs[i].Year > bs[j].Year
		}
		if bs[i].Month != bs[j].Month {
			return bs[i].Month > bs[j].Month
		}
		return bs[i].ID > bs[j].ID
	})
}

// SortCategories orders by name, then id.
func SortCategories(cs []Category) {
	sort.SliceStable(cs, func(i, j int) bool {
		if cs[i].Name != cs[j].Name {
			return cs[i].Name < cs[j].Name
		}
		return cs[i].ID < cs[j].ID
	})
}

// Paginate applies offset and limit to an already ordered slice.
func Paginate[T any](items []T, offset, limit int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
