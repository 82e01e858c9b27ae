package storage

import (
	"context"
	"fmt"
	"strings"

	"fintrack/internal/core"
)

const budgetColumns = `id, user_id, year, month, amount_cents, created_at`

func (s *SQLStore) CreateBudget(ctx context.Context, b *core.Budget) error {
	b.CreatedAt = s.now().UTC()
	id, err := s.insert(ctx, s.db,
		`INSERT INTO budgets (user_id, year, month, amount_cents, created_at) VALUES (?, ?, ?, ?, ?)`,
		b.UserID, b.Year, b.Month, b.Amount.Cents(), s.dialect.timestamp(b.CreatedAt))
	if err != nil {
		return fmt.Errorf("insert budget: %w", err)
	}
	b.ID = id
	return nil
}

func (s *SQLStore) UpdateBudget(ctx context.Context, b *core.Budget) error {
	err := s.execAffecting(ctx, s.db,
		`UPDATE budgets SET year = ?, month = ?, amount_cents = ? WHERE id = ? AND user_id = ?`,
		b.Year, b.Month, b.Amount.Cents(), b.ID, b.UserID)
	if err != nil {
		return fmt.Errorf("update budget %d: %w", b.ID, err)
	}
	return nil
}

func (s *SQLStore) DeleteBudget(ctx context.Context, ownerID, id int64) error {
	if err := s.execAffecting(ctx, s.db, `DELETE FROM budgets WHERE id = ? AND user_id = ?`, id, ownerID); err != nil {
		return fmt.Errorf("delete budget %d: %w", id, err)
	}
	return nil
}

func (s *SQLStore) GetBudget(ctx context.Context, ownerID, id int64) (core.Budget, error) {
	row := s.db.QueryRowContext(ctx, s.dialect.rebind(
		`SELECT `+budgetColumns+` FROM budgets WHERE id = ? AND user_id = ?`), id, ownerID)
	b, err := scanBudget(row)
	if err != nil {
		return core.Budget{}, fmt.Errorf("get budget %d: %w", id, mapError(err))
	}
	return b, nil
}

func (s *SQLStore) FindBudget(ctx context.Context, ownerID int64, p core.Period) (core.Budget, error) {
	row := s.db.QueryRowContext(ctx, s.dialect.rebind(
		`SELECT `+budgetColumns+` FROM budgets WHERE user_id = ? AND year = ? AND month = ?`), ownerID, p.Year, p.Month)
	b, err := scanBudget(row)
	if err != nil {
		return core.Budget{}, fmt.Errorf("find budget %s: %w", p, mapError(err))
	}
	return b, nil
}

func (s *SQLStore) ListBudgets(ctx context.Context, ownerID int64, f core.BudgetFilter) ([]core.Budget, error) {
	conds := []string{"user_id = ?"}
	args := []any{ownerID}
	if f.Year != nil {
		conds = append(conds, "year = ?")
		args = append(args, *f.Year)
	}
	if f.Month != nil {
		conds = append(conds, "month = ?")
		args = append(args, *f.Month)
	}
	query := `SELECT ` + budgetColumns + ` FROM budgets WHERE ` + strings.Join(conds, " AND ") +
		` ORDER BY year DESC, month DESC, id DESC`

	rows, err := s.db.QueryContext(ctx, s.dialect.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	defer rows.Close()

	budgets := []core.Budget{}
	for rows.Next() {
		b, err := scanBudget(rows)
		if err != nil {
			return nil, fmt.Errorf("scan budget: %w", err)
		}
		budgets = append(budgets, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate budgets: %w", err)
	}
	return budgets, nil
}

func (s *SQLStore) BudgetPeriodExists(ctx context.Context, ownerID int64, p core.Period, excludeID int64) (bool, error) {
	ok, err := s.exists(ctx,
		`SELECT 1 FROM budgets WHERE user_id = ? AND year = ? AND month = ? AND id <> ?`,
		ownerID, p.Year, p.Month, excludeID)
	if err != nil {
		return false, fmt.Errorf("check budget period: %w", err)
	}
	return ok, nil
}

func scanBudget(row rowScanner) (core.Budget, error) {
	var (
		b     core.Budget
		cents int64
	)
	if err := row.Scan(&b.ID, &b.UserID, &b.Year, &b.Month, &cents, timeScanner{&b.CreatedAt}); err != nil {
		return core.Budget{}, err
	}
	b.Amount = core.MoneyFromCents(cents)
	return b, nil
}
