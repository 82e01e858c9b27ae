// Package memory is an in-process storage.Store used for development and
// tests. It honours the same ownership, uniqueness and cascade rules as the
// SQL store.
package memory

import (
	"context"
	"sync"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/storage"
)

type Store struct {
	mu           sync.RWMutex
	now          func() time.Time
	seq          int64
	users        map[int64]core.User
	categories   map[int64]core.Category
	transactions map[int64]core.Transaction
	budgets      map[int64]core.Budget
}

var _ storage.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		now:          time.Now,
		users:        make(map[int64]core.User),
		categories:   make(map[int64]core.Category),
		transactions: make(map[int64]core.Transaction),
		budgets:      make(map[int64]core.Budget),
	}
}

// WithClock replaces the timestamp source, for deterministic ordering in tests.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
	return s
}

func (s *Store) nextID() int64 {
	s.seq++
	return s.seq
}

func (s *Store) Ping(context.Context) error { return nil }

func (s *Store) Close() error { return nil }

// Users

func (s *Store) CreateUser(_ context.Context, u *core.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Username == u.Username || existing.Email == u.Email {
			return core.ErrDuplicate
		}
	}
	u.ID = s.nextID()
	u.CreatedAt = s.now().UTC()
	s.users[u.ID] = *u
	return nil
}

func (s *Store) GetUserByID(_ context.Context, id int64) (core.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return core.User{}, core.ErrNotFound
	}
	return u, nil
}

func (s *Store) GetUserByUsername(_ context.Context, username string) (core.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Username == username {
			return u, nil
		}
	}
	return core.User{}, core.ErrNotFound
}

func (s *Store) UsernameExists(ctx context.Context, username string) (bool, error) {
	_, err := s.GetUserByUsername(ctx, username)
	return err == nil, nil
}

func (s *Store) EmailExists(_ context.Context, email string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

// Categories

func (s *Store) CreateCategory(_ context.Context, c *core.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.categoryNameTaken(c.UserID, c.Name, 0) {
		return core.ErrDuplicate
	}
	now := s.now().UTC()
	c.ID = s.nextID()
	c.CreatedAt, c.UpdatedAt = now, now
	s.categories[c.ID] = *c
	return nil
}

func (s *Store) UpdateCategory(_ context.Context, c *core.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.categories[c.ID]
	if !ok || existing.UserID != c.UserID {
		return core.ErrNotFound
	}
	if s.categoryNameTaken(c.UserID, c.Name, c.ID) {
		return core.ErrDuplicate
	}
	c.CreatedAt = existing.CreatedAt
	c.UpdatedAt = s.now().UTC()
	s.categories[c.ID] = *c
	return nil
}

func (s *Store) DeleteCategory(_ context.Context, ownerID, id int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.categories[id]
	if !ok || c.UserID != ownerID {
		return 0, core.ErrNotFound
	}
	var removed int64
	for txID, t := range s.transactions {
		if t.CategoryID == id {
			delete(s.transactions, txID)
			removed++
		}
	}
	delete(s.categories, id)
	return removed, nil
}

func (s *Store) GetCategory(_ context.Context, ownerID, id int64) (core.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.categories[id]
	if !ok || c.UserID != ownerID {
		return core.Category{}, core.ErrNotFound
	}
	return c, nil
}

func (s *Store) ListCategories(_ context.Context, ownerID int64) ([]core.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []core.Category{}
	for _, c := range s.categories {
		if c.UserID == ownerID {
			out = append(out, c)
		}
	}
	core.SortCategories(out)
	return out, nil
}

func (s *Store) CategoryNameExists(_ context.Context, ownerID int64, name string, excludeID int64) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.categoryNameTaken(ownerID, name, excludeID), nil
}

func (s *Store) categoryNameTaken(ownerID int64, name string, excludeID int64) bool {
	for _, c := range s.categories {
		if c.UserID == ownerID && c.Name == name && c.ID != excludeID {
			return true
		}
	}
	return false
}

// Transactions

func (s *Store) CreateTransaction(_ context.Context, t *core.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.categories[t.CategoryID]; !ok {
		return core.ErrNotFound
	}
	now := s.now().UTC()
	t.ID = s.nextID()
	t.CreatedAt, t.UpdatedAt = now, now
	s.transactions[t.ID] = *t
	return nil
}

func (s *Store) UpdateTransaction(_ context.Context, t *core.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.transactions[t.ID]
	if !ok || existing.UserID != t.UserID {
		return core.ErrNotFound
	}
	t.CreatedAt = existing.CreatedAt
	t.UpdatedAt = s.now().UTC()
	s.transactions[t.ID] = *t
	return nil
}

func (s *Store) DeleteTransaction(_ context.Context, ownerID, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.transactions[id]
	if !ok || t.UserID != ownerID {
		return core.ErrNotFound
	}
	delete(s.transactions, id)
	return nil
}

func (s *Store) GetTransaction(_ context.Context, ownerID, id int64) (core.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.transactions[id]
	if !ok || t.UserID != ownerID {
		return core.Transaction{}, core.ErrNotFound
	}
	return s.withCategory(t), nil
}

func (s *Store) ListTransactions(_ context.Context, ownerID int64, f core.TransactionFilter) ([]core.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := s.matching(ownerID, f)
	core.SortTransactions(out, f.OrderingOrDefault())
	if f.Limit > 0 {
		out = core.Paginate(out, f.Offset, f.Limit)
	}
	return out, nil
}

func (s *Store) CountTransactions(_ context.Context, ownerID int64, f core.TransactionFilter) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.matching(ownerID, f)), nil
}

func (s *Store) matching(ownerID int64, f core.TransactionFilter) []core.Transaction {
	out := []core.Transaction{}
	for _, t := range s.transactions {
		if t.UserID != ownerID {
			continue
		}
		t = s.withCategory(t)
		if f.Matches(t) {
			out = append(out, t)
		}
	}
	return out
}

// withCategory fills the read-model fields from the current category row.
func (s *Store) withCategory(t core.Transaction) core.Transaction {
	if c, ok := s.categories[t.CategoryID]; ok {
		t.CategoryName = c.Name
		t.CategoryType = c.Type
	}
	if t.Note != nil {
		note := *t.Note
		t.Note = &note
	}
	return t
}

// Budgets

func (s *Store) CreateBudget(_ context.Context, b *core.Budget) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.budgetPeriodTaken(b.UserID, b.Period(), 0) {
		return core.ErrDuplicate
	}
	b.ID = s.nextID()
	b.CreatedAt = s.now().UTC()
	s.budgets[b.ID] = *b
	return nil
}

func (s *Store) UpdateBudget(_ context.Context, b *core.Budget) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.budgets[b.ID]
	if !ok || existing.UserID != b.UserID {
		return core.ErrNotFound
	}
	if s.budgetPeriodTaken(b.UserID, b.Period(), b.ID) {
		return core.ErrDuplicate
	}
	b.CreatedAt = existing.CreatedAt
	s.budgets[b.ID] = *b
	return nil
}

func (s *Store) DeleteBudget(_ context.Context, ownerID, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.budgets[id]
	if !ok || b.UserID != ownerID {
		return core.ErrNotFound
	}
	delete(s.budgets, id)
	return nil
}

func (s *Store) GetBudget(_ context.Context, ownerID, id int64) (core.Budget, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.budgets[id]
	if !ok || b.UserID != ownerID {
		return core.Budget{}, core.ErrNotFound
	}
	return b, nil
}

func (s *Store) FindBudget(_ context.Context, ownerID int64, p core.Period) (core.Budget, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, b := range s.budgets {
		if b.UserID == ownerID && b.Period() == p {
			return b, nil
		}
	}
	return core.Budget{}, core.ErrNotFound
}

func (s *Store) ListBudgets(_ context.Context, ownerID int64, f core.BudgetFilter) ([]core.Budget, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []core.Budget{}
	for _, b := range s.budgets {
		if b.UserID == ownerID && f.Matches(b) {
			out = append(out, b)
		}
	}
	core.SortBudgets(out)
	return out, nil
}

func (s *Store) BudgetPeriodExists(_ context.Context, ownerID int64, p core.Period, excludeID int64) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.budgetPeriodTaken(ownerID, p, excludeID), nil
}

func (s *Store) budgetPeriodTaken(ownerID int64, p core.Period, excludeID int64) bool {
	for _, b := range s.budgets {
		if b.UserID == ownerID && b.Period() == p && b.ID != excludeID {
			return true
		}
	}
	return false
}
