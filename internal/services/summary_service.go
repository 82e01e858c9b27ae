package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"fintrack/internal/cache"
	"fintrack/internal/core"
	"fintrack/internal/storage"

	"golang.org/x/sync/errgroup"
)

// SummaryService computes monthly summaries and daily series. Summaries are
// cached per owner and month until the owner writes anything.
type SummaryService struct {
	store storage.Store
	cache *cache.LRUCache[core.Summary]

	// gens counts writes per owner. A summary computed while the owner's
	// generation moved is returned but never cached.
	mu   sync.Mutex
	gens map[int64]uint64
}

// NewSummaryService builds the service. A nil cache disables caching.
func NewSummaryService(store storage.Store, c *cache.LRUCache[core.Summary]) *SummaryService {
	return &SummaryService{store: store, cache: c, gens: make(map[int64]uint64)}
}

func NewSummaryCache(size int, ttl time.Duration) *cache.LRUCache[core.Summary] {
	return cache.NewLRUCache[core.Summary](size, ttl)
}

var _ ChangeListener = (*SummaryService)(nil)

// OwnerChanged drops every cached summary of the owner.
func (s *SummaryService) OwnerChanged(ownerID int64) {
	if s.cache == nil {
		return
	}
	s.mu.Lock()
	s.gens[ownerID]++
	n := s.cache.DeletePrefix(ownerPrefix(ownerID))
	s.mu.Unlock()
	if n > 0 {
		slog.Debug("Summary cache invalidated", "user_id", ownerID, "entries", n)
	}
}

func (s *SummaryService) Summary(ctx context.Context, ownerID int64, p core.Period) (core.Summary, error) {
	if err := p.Validate(); err != nil {
		return core.Summary{}, err
	}
	key := summaryKey(ownerID, p)
	if s.cache != nil {
		if sum, ok := s.cache.Get(key); ok {
			return sum, nil
		}
	}
	gen := s.generation(ownerID)

	var (
		txs    []core.Transaction
		budget *core.Budget
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		txs, err = s.store.ListTransactions(gctx, ownerID, core.MonthFilter(p))
		if err != nil {
			return fmt.Errorf("list transactions for %s: %w", p, err)
		}
		return nil
	})
	g.Go(func() error {
		b, err := s.store.FindBudget(gctx, ownerID, p)
		switch {
		case errors.Is(err, core.ErrNotFound):
			return nil
		case err != nil:
			return fmt.Errorf("find budget for %s: %w", p, err)
		}
		budget = &b
		return nil
	})
	if err := g.Wait(); err != nil {
		return core.Summary{}, err
	}

	sum := core.BuildSummary(txs, budget)
	s.remember(ownerID, gen, key, sum)
	return sum, nil
}

func (s *SummaryService) generation(ownerID int64) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gens[ownerID]
}

// remember caches sum unless the owner wrote since gen was read.
func (s *SummaryService) remember(ownerID int64, gen uint64, key string, sum core.Summary) {
	if s.cache == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gens[ownerID] != gen {
		slog.Debug("Summary not cached, owner changed during computation", "user_id", ownerID)
		return
	}
	s.cache.Set(key, sum)
}

// DailyStats returns per day totals for start <= date <= end. Nil bounds are
// open.
func (s *SummaryService) DailyStats(ctx context.Context, ownerID int64, start, end *core.Date) ([]core.DailyStat, error) {
	txs, err := s.store.ListTransactions(ctx, ownerID, core.TransactionFilter{
		StartDate: start,
		EndDate:   end,
		Ordering:  core.OrderDateAsc,
	})
	if err != nil {
		return nil, fmt.Errorf("list transactions for stats: %w", err)
	}
	return core.BuildDailyStats(txs), nil
}

func ownerPrefix(ownerID int64) string {
	return fmt.Sprintf("summary:%d:", ownerID)
}

func summaryKey(ownerID int64, p core.Period) string {
	return ownerPrefix(ownerID) + p.String()
}
