package services

import (
	"context"
	"errors"
	"fmt"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	"fintrack/internal/storage"
)

const foreignCategoryMessage = "You can only use your own categories."

// TransactionInput is a full transaction write.
type TransactionInput struct {
	CategoryID int64
	Amount     core.Money
	Date       core.Date
	Note       *string
}

// TransactionPatch carries a partial update. Nil fields are kept; ClearNote
// resets the note to null.
type TransactionPatch struct {
	CategoryID *int64
	Amount     *core.Money
	Date       *core.Date
	Note       *string
	ClearNote  bool
}

// TransactionService owns transaction writes. Stores are written first; the
// change event is published afterwards and its failure is only logged.
type TransactionService struct {
	store storage.Store
	notifier
}

func NewTransactionService(store storage.Store, opts ...Option) *TransactionService {
	return &TransactionService{store: store, notifier: newNotifier(opts)}
}

// List returns the owner's transactions matching f. A category filter naming
// a category the owner cannot see yields an empty list rather than an error.
func (s *TransactionService) List(ctx context.Context, ownerID int64, f core.TransactionFilter) ([]core.Transaction, error) {
	visible, err := s.categoryVisible(ctx, ownerID, f.CategoryID)
	if err != nil {
		return nil, err
	}
	if !visible {
		return []core.Transaction{}, nil
	}
	txs, err := s.store.ListTransactions(ctx, ownerID, f)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return txs, nil
}

// Count reports how many transactions match f, ignoring Limit and Offset.
func (s *TransactionService) Count(ctx context.Context, ownerID int64, f core.TransactionFilter) (int, error) {
	visible, err := s.categoryVisible(ctx, ownerID, f.CategoryID)
	if err != nil || !visible {
		return 0, err
	}
	n, err := s.store.CountTransactions(ctx, ownerID, f)
	if err != nil {
		return 0, fmt.Errorf("count transactions: %w", err)
	}
	return n, nil
}

func (s *TransactionService) Get(ctx context.Context, ownerID, id int64) (core.Transaction, error) {
	t, err := s.store.GetTransaction(ctx, ownerID, id)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction %d: %w", id, err)
	}
	return t, nil
}

func (s *TransactionService) Create(ctx context.Context, ownerID int64, in TransactionInput) (core.Transaction, error) {
	t := core.Transaction{
		UserID:     ownerID,
		CategoryID: in.CategoryID,
		Amount:     in.Amount,
		Date:       in.Date,
		Note:       in.Note,
	}
	if err := s.validate(ctx, t); err != nil {
		return core.Transaction{}, err
	}
	if err := s.store.CreateTransaction(ctx, &t); err != nil {
		return core.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}
	s.changed(ownerID)
	s.publish(ctx, amqp.TransactionCreated, ownerID, t.ID, t.CategoryID)
	return s.Get(ctx, ownerID, t.ID)
}

func (s *TransactionService) Update(ctx context.Context, ownerID, id int64, patch TransactionPatch) (core.Transaction, error) {
	t, err := s.store.GetTransaction(ctx, ownerID, id)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction %d: %w", id, err)
	}
	if patch.CategoryID != nil {
		t.CategoryID = *patch.CategoryID
	}
	if patch.Amount != nil {
		t.Amount = *patch.Amount
	}
	if patch.Date != nil {
		t.Date = *patch.Date
	}
	switch {
	case patch.ClearNote:
		t.Note = nil
	case patch.Note != nil:
		t.Note = patch.Note
	}
	if err := s.validate(ctx, t); err != nil {
		return core.Transaction{}, err
	}
	if err := s.store.UpdateTransaction(ctx, &t); err != nil {
		return core.Transaction{}, fmt.Errorf("update transaction %d: %w", id, err)
	}
	s.changed(ownerID)
	s.publish(ctx, amqp.TransactionUpdated, ownerID, t.ID, t.CategoryID)
	return s.Get(ctx, ownerID, id)
}

func (s *TransactionService) Delete(ctx context.Context, ownerID, id int64) error {
	t, err := s.store.GetTransaction(ctx, ownerID, id)
	if err != nil {
		return fmt.Errorf("get transaction %d: %w", id, err)
	}
	if err := s.store.DeleteTransaction(ctx, ownerID, id); err != nil {
		return fmt.Errorf("delete transaction %d: %w", id, err)
	}
	s.changed(ownerID)
	s.publish(ctx, amqp.TransactionDeleted, ownerID, id, t.CategoryID)
	return nil
}

// validate runs the field checks and the category ownership check and reports
// every problem at once.
func (s *TransactionService) validate(ctx context.Context, t core.Transaction) error {
	var errs core.ValidationErrors
	if err := t.Validate(); err != nil {
		var ves core.ValidationErrors
		if !errors.As(err, &ves) {
			return err
		}
		errs = append(errs, ves...)
	}

	if t.CategoryID == 0 {
		errs = append(errs, core.NewValidationError("category", core.KindMissingField, "This field is required."))
	} else if _, err := s.store.GetCategory(ctx, t.UserID, t.CategoryID); err != nil {
		if !errors.Is(err, core.ErrNotFound) {
			return fmt.Errorf("load category %d: %w", t.CategoryID, err)
		}
		errs = append(errs, core.NewValidationError("category", core.KindForeignOwnership, foreignCategoryMessage))
	}
	return errs.Err()
}

func (s *TransactionService) categoryVisible(ctx context.Context, ownerID int64, categoryID *int64) (bool, error) {
	if categoryID == nil {
		return true, nil
	}
	if _, err := s.store.GetCategory(ctx, ownerID, *categoryID); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("load category %d: %w", *categoryID, err)
	}
	return true, nil
}
