package storage

import (
	"context"
	"fmt"

	"fintrack/internal/core"
)

const categoryColumns = `id, user_id, name, type, created_at, updated_at`

func (s *SQLStore) CreateCategory(ctx context.Context, c *core.Category) error {
	now := s.now().UTC()
	c.CreatedAt, c.UpdatedAt = now, now
	id, err := s.insert(ctx, s.db,
		`INSERT INTO categories (user_id, name, type, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		c.UserID, c.Name, string(c.Type), s.dialect.timestamp(now), s.dialect.timestamp(now))
	if err != nil {
		return fmt.Errorf("insert category: %w", err)
	}
	c.ID = id
	return nil
}

func (s *SQLStore) UpdateCategory(ctx context.Context, c *core.Category) error {
	c.UpdatedAt = s.now().UTC()
	err := s.execAffecting(ctx, s.db,
		`UPDATE categories SET name = ?, type = ?, updated_at = ? WHERE id = ? AND user_id = ?`,
		c.Name, string(c.Type), s.dialect.timestamp(c.UpdatedAt), c.ID, c.UserID)
	if err != nil {
		return fmt.Errorf("update category %d: %w", c.ID, err)
	}
	return nil
}

// DeleteCategory deletes the transactions first so the cascade does not
// depend on the foreign key pragma being enabled.
func (s *SQLStore) DeleteCategory(ctx context.Context, ownerID, id int64) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin delete category: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, s.dialect.rebind(
		`DELETE FROM transactions WHERE category_id = ? AND user_id = ?`), id, ownerID)
	if err != nil {
		return 0, fmt.Errorf("delete category transactions: %w", err)
	}
	removed, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}

	if err := s.execAffecting(ctx, tx, `DELETE FROM categories WHERE id = ? AND user_id = ?`, id, ownerID); err != nil {
		return 0, fmt.Errorf("delete category %d: %w", id, err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit delete category: %w", err)
	}
	return removed, nil
}

func (s *SQLStore) GetCategory(ctx context.Context, ownerID, id int64) (core.Category, error) {
	row := s.db.QueryRowContext(ctx, s.dialect.rebind(
		`SELECT `+categoryColumns+` FROM categories WHERE id = ? AND user_id = ?`), id, ownerID)
	c, err := scanCategory(row)
	if err != nil {
		return core.Category{}, fmt.Errorf("get category %d: %w", id, mapError(err))
	}
	return c, nil
}

func (s *SQLStore) ListCategories(ctx context.Context, ownerID int64) ([]core.Category, error) {
	rows, err := s.db.QueryContext(ctx, s.dialect.rebind(
		`SELECT `+categoryColumns+` FROM categories WHERE user_id = ? ORDER BY name, id`), ownerID)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	categories := []core.Category{}
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate categories: %w", err)
	}
	return categories, nil
}

func (s *SQLStore) CategoryNameExists(ctx context.Context, ownerID int64, name string, excludeID int64) (bool, error) {
	ok, err := s.exists(ctx,
		`SELECT 1 FROM categories WHERE user_id = ? AND name = ? AND id <> ?`, ownerID, name, excludeID)
	if err != nil {
		return false, fmt.Errorf("check category name: %w", err)
	}
	return ok, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCategory(row rowScanner) (core.Category, error) {
	var (
		c   core.Category
		typ string
	)
	if err := row.Scan(&c.ID, &c.UserID, &c.Name, &typ,
		timeScanner{&c.CreatedAt}, timeScanner{&c.UpdatedAt}); err != nil {
		return core.Category{}, err
	}
	c.Type = core.CategoryType(typ)
	return c, nil
}
