package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	"fintrack/internal/storage"
)

const duplicateCategoryMessage = "A category with this name already exists."

// CategoryPatch carries the fields of a partial update. Nil fields are kept.
type CategoryPatch struct {
	Name *string
	Type *core.CategoryType
}

type CategoryService struct {
	store storage.CategoryStore
	notifier
}

func NewCategoryService(store storage.CategoryStore, opts ...Option) *CategoryService {
	return &CategoryService{store: store, notifier: newNotifier(opts)}
}

func (s *CategoryService) List(ctx context.Context, ownerID int64) ([]core.Category, error) {
	cats, err := s.store.ListCategories(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return cats, nil
}

func (s *CategoryService) Get(ctx context.Context, ownerID, id int64) (core.Category, error) {
	c, err := s.store.GetCategory(ctx, ownerID, id)
	if err != nil {
		return core.Category{}, fmt.Errorf("get category %d: %w", id, err)
	}
	return c, nil
}

func (s *CategoryService) Create(ctx context.Context, ownerID int64, name string, typ core.CategoryType) (core.Category, error) {
	c := core.Category{UserID: ownerID, Name: name, Type: typ}
	if err := s.validate(ctx, c); err != nil {
		return core.Category{}, err
	}
	if err := s.store.CreateCategory(ctx, &c); err != nil {
		return core.Category{}, categoryWriteError("create category", err)
	}
	s.changed(ownerID)
	slog.InfoContext(ctx, "Category created", "user_id", ownerID, "category_id", c.ID)
	return c, nil
}

func (s *CategoryService) Update(ctx context.Context, ownerID, id int64, patch CategoryPatch) (core.Category, error) {
	c, err := s.store.GetCategory(ctx, ownerID, id)
	if err != nil {
		return core.Category{}, fmt.Errorf("get category %d: %w", id, err)
	}
	if patch.Name != nil {
		c.Name = *patch.Name
	}
	if patch.Type != nil {
		c.Type = *patch.Type
	}
	if err := s.validate(ctx, c); err != nil {
		return core.Category{}, err
	}
	if err := s.store.UpdateCategory(ctx, &c); err != nil {
		return core.Category{}, categoryWriteError("update category", err)
	}
	s.changed(ownerID)
	return c, nil
}

// Delete removes the category together with its transactions.
func (s *CategoryService) Delete(ctx context.Context, ownerID, id int64) error {
	removed, err := s.store.DeleteCategory(ctx, ownerID, id)
	if err != nil {
		return fmt.Errorf("delete category %d: %w", id, err)
	}
	s.changed(ownerID)
	s.publish(ctx, amqp.CategoryDeleted, ownerID, 0, id)
	slog.InfoContext(ctx, "Category deleted", "user_id", ownerID, "category_id", id, "transactions_removed", removed)
	return nil
}

func (s *CategoryService) validate(ctx context.Context, c core.Category) error {
	if err := c.Validate(); err != nil {
		return err
	}
	taken, err := s.store.CategoryNameExists(ctx, c.UserID, c.Name, c.ID)
	if err != nil {
		return fmt.Errorf("check category name: %w", err)
	}
	if taken {
		return core.NewValidationError("name", core.KindDuplicateName, duplicateCategoryMessage)
	}
	return nil
}

// categoryWriteError turns a unique index violation lost to a concurrent
// writer into the same error the pre-check produces.
func categoryWriteError(op string, err error) error {
	if errors.Is(err, core.ErrDuplicate) {
		return core.NewValidationError("name", core.KindDuplicateName, duplicateCategoryMessage)
	}
	return fmt.Errorf("%s: %w", op, err)
}
