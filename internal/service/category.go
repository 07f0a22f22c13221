package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/potluckhq/potluck/internal/model"
	"github.com/potluckhq/potluck/internal/repository"
)

// ICategoryService defines the interface for the dish category tree
type ICategoryService interface {
	Create(ctx context.Context, name string, parentID *string) (*model.Category, error)
	Reparent(ctx context.Context, categoryID string, newParentID *string) error
	List(ctx context.Context) ([]*model.Category, error)
	Delete(ctx context.Context, categoryID string) error
}

// CategoryService guards the category tree against cycles. Reparenting
// validates the ancestor chain and writes the new parent pointer inside one
// transaction, so two concurrent reparents of the same subtree cannot both
// pass validation against snapshots the other is about to invalidate.
type CategoryService struct {
	store repository.Store
}

// NewCategoryService creates a new ICategoryService instance
func NewCategoryService(store repository.Store) ICategoryService {
	return &CategoryService{store: store}
}

// Create adds a category. A parent, when given, must exist; cycle checks are
// unnecessary on create since a fresh node has no descendants.
func (s *CategoryService) Create(ctx context.Context, name string, parentID *string) (*model.Category, error) {
	if parentID != nil {
		if _, err := s.store.Categories().FindByID(ctx, *parentID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrCategoryNotFound
			}
			return nil, fmt.Errorf("failed to find parent category: %w", err)
		}
	}

	category := &model.Category{
		ID:       uuid.New().String(),
		Name:     name,
		ParentID: parentID,
	}
	if err := s.store.Categories().Create(ctx, category); err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}
	return category, nil
}

// Reparent moves a category under a new parent (nil makes it a root).
// The write only happens after the ancestor walk proves no cycle forms.
func (s *CategoryService) Reparent(ctx context.Context, categoryID string, newParentID *string) error {
	if newParentID != nil && *newParentID == categoryID {
		return ErrSelfParent
	}

	return s.store.InTx(ctx, func(tx repository.Store) error {
		// Lock the node being moved so concurrent reparents of the same
		// subtree serialize instead of racing each other's validation.
		if _, err := tx.Categories().FindByIDForUpdate(ctx, categoryID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrCategoryNotFound
			}
			return fmt.Errorf("failed to find category: %w", err)
		}

		if newParentID != nil {
			if err := walkAncestors(ctx, tx.Categories(), categoryID, *newParentID); err != nil {
				return err
			}
		}

		return tx.Categories().UpdateParent(ctx, categoryID, newParentID)
	})
}

// walkAncestors climbs from startID to a root, failing if the chain passes
// through movingID. The visited set bounds the walk: stored data that
// already contains a cycle trips CycleDetected instead of looping forever.
func walkAncestors(ctx context.Context, categories repository.ICategoryRepository, movingID, startID string) error {
	visited := make(map[string]bool)
	currentID := startID
	for {
		if currentID == movingID {
			return ErrCycleDetected
		}
		if visited[currentID] {
			// Pre-existing corruption in the stored tree.
			return ErrCycleDetected
		}
		visited[currentID] = true

		node, err := categories.FindByID(ctx, currentID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrCategoryNotFound
			}
			return fmt.Errorf("failed to walk category ancestry: %w", err)
		}
		if node.ParentID == nil {
			return nil
		}
		currentID = *node.ParentID
	}
}

// List returns all categories.
func (s *CategoryService) List(ctx context.Context) ([]*model.Category, error) {
	return s.store.Categories().List(ctx)
}

// Delete removes a category; its children become roots.
func (s *CategoryService) Delete(ctx context.Context, categoryID string) error {
	return s.store.InTx(ctx, func(tx repository.Store) error {
		if _, err := tx.Categories().FindByID(ctx, categoryID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrCategoryNotFound
			}
			return fmt.Errorf("failed to find category: %w", err)
		}

		children, err := tx.Categories().ListChildren(ctx, categoryID)
		if err != nil {
			return fmt.Errorf("failed to list children: %w", err)
		}
		for _, child := range children {
			if err := tx.Categories().UpdateParent(ctx, child.ID, nil); err != nil {
				return fmt.Errorf("failed to detach child category: %w", err)
			}
		}

		return tx.Categories().Delete(ctx, categoryID)
	})
}
