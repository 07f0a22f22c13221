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

// CreateDishRequest adds a dish to the shared catalog.
type CreateDishRequest struct {
	Name        string `json:"name" binding:"required,min=1,max=100"`
	Description string `json:"description"`
	CategoryID  string `json:"category_id"`
}

// IDishService defines the interface for dish catalog operations
type IDishService interface {
	Create(ctx context.Context, req *CreateDishRequest) (*model.Dish, error)
	Get(ctx context.Context, id string) (*model.Dish, error)
	List(ctx context.Context) ([]*model.Dish, error)
	ListByCategory(ctx context.Context, categoryID string) ([]*model.Dish, error)
}

// DishService implements the IDishService interface
type DishService struct {
	store repository.Store
}

// NewDishService creates a new IDishService instance
func NewDishService(store repository.Store) IDishService {
	return &DishService{store: store}
}

func (s *DishService) Create(ctx context.Context, req *CreateDishRequest) (*model.Dish, error) {
	if req.CategoryID != "" {
		if _, err := s.store.Categories().FindByID(ctx, req.CategoryID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrCategoryNotFound
			}
			return nil, fmt.Errorf("failed to find category: %w", err)
		}
	}

	dish := &model.Dish{
		ID:          uuid.New().String(),
		Name:        req.Name,
		Description: req.Description,
		CategoryID:  req.CategoryID,
	}
	if err := s.store.Dishes().Create(ctx, dish); err != nil {
		return nil, fmt.Errorf("failed to create dish: %w", err)
	}
	return dish, nil
}

func (s *DishService) Get(ctx context.Context, id string) (*model.Dish, error) {
	dish, err := s.store.Dishes().FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDishNotFound
		}
		return nil, fmt.Errorf("failed to find dish: %w", err)
	}
	return dish, nil
}

func (s *DishService) List(ctx context.Context) ([]*model.Dish, error) {
	return s.store.Dishes().List(ctx)
}

func (s *DishService) ListByCategory(ctx context.Context, categoryID string) ([]*model.Dish, error) {
	return s.store.Dishes().ListByCategory(ctx, categoryID)
}
