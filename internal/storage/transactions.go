package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"fintrack/internal/core"
)

const transactionSelect = `SELECT t.id, t.user_id, t.category_id, c.name, c.type, t.amount_cents, t.tx_date, t.note, t.created_at, t.updated_at
FROM transactions t JOIN categories c ON c.id = t.category_id`

var transactionOrderings = map[string]string{
	core.OrderDateDesc:    "t.tx_date DESC, t.created_at DESC, t.id DESC",
	core.OrderDateAsc:     "t.tx_date ASC, t.created_at DESC, t.id DESC",
	core.OrderAmountDesc:  "t.amount_cents DESC, t.created_at DESC, t.id DESC",
	core.OrderAmountAsc:   "t.amount_cents ASC, t.created_at DESC, t.id DESC",
	core.OrderCreatedDesc: "t.created_at DESC, t.id DESC",
	core.OrderCreatedAsc:  "t.created_at ASC, t.id DESC",
}

func (s *SQLStore) CreateTransaction(ctx context.Context, t *core.Transaction) error {
	now := s.now().UTC()
	t.CreatedAt, t.UpdatedAt = now, now
	id, err := s.insert(ctx, s.db,
		`INSERT INTO transactions (user_id, category_id, amount_cents, tx_date, note, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		t.UserID, t.CategoryID, t.Amount.Cents(), t.Date, nullString(t.Note),
		s.dialect.timestamp(now), s.dialect.timestamp(now))
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	t.ID = id
	return nil
}

func (s *SQLStore) UpdateTransaction(ctx context.Context, t *core.Transaction) error {
	t.UpdatedAt = s.now().UTC()
	err := s.execAffecting(ctx, s.db,
		`UPDATE transactions SET category_id = ?, amount_cents = ?, tx_date = ?, note = ?, updated_at = ? WHERE id = ? AND user_id = ?`,
		t.CategoryID, t.Amount.Cents(), t.Date, nullString(t.Note), s.dialect.timestamp(t.UpdatedAt), t.ID, t.UserID)
	if err != nil {
		return fmt.Errorf("update transaction %d: %w", t.ID, err)
	}
	return nil
}

func (s *SQLStore) DeleteTransaction(ctx context.Context, ownerID, id int64) error {
	if err := s.execAffecting(ctx, s.db, `DELETE FROM transactions WHERE id = ? AND user_id = ?`, id, ownerID); err != nil {
		return fmt.Errorf("delete transaction %d: %w", id, err)
	}
	return nil
}

func (s *SQLStore) GetTransaction(ctx context.Context, ownerID, id int64) (core.Transaction, error) {
	row := s.db.QueryRowContext(ctx, s.dialect.rebind(transactionSelect+` WHERE t.id = ? AND t.user_id = ?`), id, ownerID)
	t, err := scanTransaction(row)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction %d: %w", id, mapError(err))
	}
	return t, nil
}

func (s *SQLStore) ListTransactions(ctx context.Context, ownerID int64, f core.TransactionFilter) ([]core.Transaction, error) {
	where, args := transactionWhere(ownerID, f)
	query := transactionSelect + where + " ORDER BY " + transactionOrderings[f.OrderingOrDefault()]
	if f.Limit > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, f.Limit, max(f.Offset, 0))
	}

	rows, err := s.db.QueryContext(ctx, s.dialect.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	txs := []core.Transaction{}
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		txs = append(txs, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return txs, nil
}

func (s *SQLStore) CountTransactions(ctx context.Context, ownerID int64, f core.TransactionFilter) (int, error) {
	where, args := transactionWhere(ownerID, f)
	var n int
	err := s.db.QueryRowContext(ctx, s.dialect.rebind(
		`SELECT COUNT(*) FROM transactions t JOIN categories c ON c.id = t.category_id`+where), args...).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count transactions: %w", err)
	}
	return n, nil
}

func transactionWhere(ownerID int64, f core.TransactionFilter) (string, []any) {
	conds := []string{"t.user_id = ?"}
	args := []any{ownerID}
	if f.StartDate != nil {
		conds = append(conds, "t.tx_date >= ?")
		args = append(args, *f.StartDate)
	}
	if f.EndDate != nil {
		conds = append(conds, "t.tx_date <= ?")
		args = append(args, *f.EndDate)
	}
	if f.MinAmount != nil {
		conds = append(conds, "t.amount_cents >= ?")
		args = append(args, f.MinAmount.Cents())
	}
	if f.MaxAmount != nil {
		conds = append(conds, "t.amount_cents <= ?")
		args = append(args, f.MaxAmount.Cents())
	}
	if f.CategoryID != nil {
		conds = append(conds, "t.category_id = ?")
		args = append(args, *f.CategoryID)
	}
	if f.Type != "" {
		conds = append(conds, "c.type = ?")
		args = append(args, string(f.Type))
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func scanTransaction(row rowScanner) (core.Transaction, error) {
	var (
		t     core.Transaction
		typ   string
		cents int64
		note  sql.NullString
	)
	err := row.Scan(&t.ID, &t.UserID, &t.CategoryID, &t.CategoryName, &typ, &cents, &t.Date, &note,
		timeScanner{&t.CreatedAt}, timeScanner{&t.UpdatedAt})
	if err != nil {
		return core.Transaction{}, err
	}
	t.CategoryType = core.CategoryType(typ)
	t.Amount = core.MoneyFromCents(cents)
	if note.Valid {
		t.Note = &note.String
	}
	return t, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
