package services

import (
	"context"
	"errors"
	"fmt"

	"fintrack/internal/core"
	"fintrack/internal/storage"
)

const duplicateBudgetMessage = "A budget for this month already exists."

type BudgetPatch struct {
	Year   *int
	Month  *int
	Amount *core.Money
}

type BudgetService struct {
	store storage.BudgetStore
	notifier
}

func NewBudgetService(store storage.BudgetStore, opts ...Option) *BudgetService {
	return &BudgetService{store: store, notifier: newNotifier(opts)}
}

func (s *BudgetService) List(ctx context.Context, ownerID int64, f core.BudgetFilter) ([]core.Budget, error) {
	bs, err := s.store.ListBudgets(ctx, ownerID, f)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	return bs, nil
}

func (s *BudgetService) Get(ctx context.Context, ownerID, id int64) (core.Budget, error) {
	b, err := s.store.GetBudget(ctx, ownerID, id)
	if err != nil {
		return core.Budget{}, fmt.Errorf("get budget %d: %w", id, err)
	}
	return b, nil
}

func (s *BudgetService) Create(ctx context.Context, ownerID int64, p core.Period, amount core.Money) (core.Budget, error) {
	b := core.Budget{UserID: ownerID, Year: p.Year, Month: p.Month, Amount: amount}
	if err := s.validate(ctx, b); err != nil {
		return core.Budget{}, err
	}
	if err := s.store.CreateBudget(ctx, &b); err != nil {
		return core.Budget{}, budgetWriteError("create budget", err)
	}
	s.changed(ownerID)
	return b, nil
}

func (s *BudgetService) Update(ctx context.Context, ownerID, id int64, patch BudgetPatch) (core.Budget, error) {
	b, err := s.store.GetBudget(ctx, ownerID, id)
	if err != nil {
		return core.Budget{}, fmt.Errorf("get budget %d: %w", id, err)
	}
	if patch.Year != nil {
		b.Year = *patch.Year
	}
	if patch.Month != nil {
		b.Month = *patch.Month
	}
	if patch.Amount != nil {
		b.Amount = *patch.Amount
	}
	if err := s.validate(ctx, b); err != nil {
		return core.Budget{}, err
	}
	if err := s.store.UpdateBudget(ctx, &b); err != nil {
		return core.Budget{}, budgetWriteError("update budget", err)
	}
	s.changed(ownerID)
	return b, nil
}

func (s *BudgetService) Delete(ctx context.Context, ownerID, id int64) error {
	if err := s.store.DeleteBudget(ctx, ownerID, id); err != nil {
		return fmt.Errorf("delete budget %d: %w", id, err)
	}
	s.changed(ownerID)
	return nil
}

func (s *BudgetService) validate(ctx context.Context, b core.Budget) error {
	if err := b.Validate(); err != nil {
		return err
	}
	taken, err := s.store.BudgetPeriodExists(ctx, b.UserID, b.Period(), b.ID)
	if err != nil {
		return fmt.Errorf("check budget period: %w", err)
	}
	if taken {
		return core.NewValidationError("non_field_errors", core.KindDuplicateBudgetPeriod, duplicateBudgetMessage)
	}
	return nil
}

func budgetWriteError(op string, err error) error {
	if errors.Is(err, core.ErrDuplicate) {
		return core.NewValidationError("non_field_errors", core.KindDuplicateBudgetPeriod, duplicateBudgetMessage)
	}
	return fmt.Errorf("%s: %w", op, err)
}
