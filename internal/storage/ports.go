package storage

import (
	"context"

	"fintrack/internal/core"
)

// Ports implemented by every store backend. Every category, transaction and
// budget operation is scoped by the owner id; a row owned by somebody else is
// reported as core.ErrNotFound. Unique conflicts surface as core.ErrDuplicate.
type (
	UserStore interface {
		CreateUser(ctx context.Context, u *core.User) error
		GetUserByID(ctx context.Context, id int64) (core.User, error)
		GetUserByUsername(ctx context.Context, username string) (core.User, error)
		UsernameExists(ctx context.Context, username string) (bool, error)
		EmailExists(ctx context.Context, email string) (bool, error)
	}

	CategoryStore interface {
		CreateCategory(ctx context.Context, c *core.Category) error
		UpdateCategory(ctx context.Context, c *core.Category) error
		// DeleteCategory removes the category and its transactions and
		// reports how many transactions went with it.
		DeleteCategory(ctx context.Context, ownerID, id int64) (int64, error)
		GetCategory(ctx context.Context, ownerID, id int64) (core.Category, error)
		ListCategories(ctx context.Context, ownerID int64) ([]core.Category, error)
		CategoryNameExists(ctx context.Context, ownerID int64, name string, excludeID int64) (bool, error)
	}

	TransactionStore interface {
		CreateTransaction(ctx context.Context, t *core.Transaction) error
		UpdateTransaction(ctx context.Context, t *core.Transaction) error
		DeleteTransaction(ctx context.Context, ownerID, id int64) error
		GetTransaction(ctx context.Context, ownerID, id int64) (core.Transaction, error)
		ListTransactions(ctx context.Context, ownerID int64, f core.TransactionFilter) ([]core.Transaction, error)
		CountTransactions(ctx context.Context, ownerID int64, f core.TransactionFilter) (int, error)
	}

	BudgetStore interface {
		CreateBudget(ctx context.Context, b *core.Budget) error
		UpdateBudget(ctx context.Context, b *core.Budget) error
		DeleteBudget(ctx context.Context, ownerID, id int64) error
		GetBudget(ctx context.Context, ownerID, id int64) (core.Budget, error)
		FindBudget(ctx context.Context, ownerID int64, p core.Period) (core.Budget, error)
		ListBudgets(ctx context.Context, ownerID int64, f core.BudgetFilter) ([]core.Budget, error)
		BudgetPeriodExists(ctx context.Context, ownerID int64, p core.Period, excludeID int64) (bool, error)
	}

	// Store is the full persistence port used by the services.
	Store interface {
		UserStore
		CategoryStore
		TransactionStore
		BudgetStore
		Ping(ctx context.Context) error
		Close() error
	}
)
