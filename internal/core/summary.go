package core

import "sort"

// CategoryAmount is one line of the summary breakdown.
type CategoryAmount struct {
	CategoryName string       `json:"category_name"`
	Type         CategoryType `json:"type"`
	Amount       Money        `json:"amount"`
}

// Summary is the monthly overview. MonthlyBudget and BudgetVariance are nil
// when no budget exists for the month.
type Summary struct {
	TotalIncome    Money            `json:"total_income"`
	TotalExpenses  Money            `json:"total_expenses"`
	Balance        Money            `json:"balance"`
	ByCategory     []CategoryAmount `json:"by_category"`
	MonthlyBudget  *Money           `json:"monthly_budget"`
	BudgetVariance *Money           `json:"budget_variance"`
}

// DailyStat holds the per-type sums of one day. A nil total means the day had
// no transaction of that type.
type DailyStat struct {
	Day           Date   `json:"day"`
	TotalIncome   *Money `json:"total_income"`
	TotalExpenses *Money `json:"total_expenses"`
}

// BuildSummary aggregates the given transactions, which must already be
// restricted to one owner and month. by_category keeps one line per
// transaction in input order.
func BuildSummary(txs []Transaction, budget *Budget) Summary {
	s := Summary{ByCategory: make([]CategoryAmount, 0, len(txs))}
	for _, tx := range txs {
		switch tx.CategoryType {
		case Income:
			s.TotalIncome = s.TotalIncome.Add(tx.Amount)
		case Expense:
			s.TotalExpenses = s.TotalExpenses.Add(tx.Amount)
		}
		s.ByCategory = append(s.ByCategory, CategoryAmount{
			CategoryName: tx.CategoryName,
			Type:         tx.CategoryType,
			Amount:       tx.Amount,
		})
	}
	s.Balance = s.TotalIncome.Sub(s.TotalExpenses)

	if budget != nil {
		amount := budget.Amount
		variance := amount.Sub(s.TotalExpenses)
		s.MonthlyBudget = &amount
		s.BudgetVariance = &variance
	}
	return s
}

// BuildDailyStats groups transactions by date, ascending. Days without any
// transaction are not emitted.
func BuildDailyStats(txs []Transaction) []DailyStat {
	byDay := make(map[string]*DailyStat)
	for _, tx := range txs {
		key := tx.Date.String()
		st, ok := byDay[key]
		if !ok {
			st = &DailyStat{Day: tx.Date}
			byDay[key] = st
		}
		switch tx.CategoryType {
		case Income:
			st.TotalIncome = addOptional(st.TotalIncome, tx.Amount)
		case Expense:
			st.TotalExpenses = addOptional(st.TotalExpenses, tx.Amount)
		}
	}

	stats := make([]DailyStat, 0, len(byDay))
	for _, st := range byDay {
		stats = append(stats, *st)
	}
	sort.Slice(stats, func(i, j int) bool {
		return stats[i].Day.Before(stats[j].Day)
	})
	return stats
}

func addOptional(total *Money, amount Money) *Money {
	var sum Money
	if total != nil {
		sum = *total
	}
	sum = sum.Add(amount)
	return &sum
}
