package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/potluckhq/potluck/internal/model"
)

// IDishRepository defines the interface for dish catalog operations
type IDishRepository interface {
	Create(ctx context.Context, dish *model.Dish) error
	FindByID(ctx context.Context, id string) (*model.Dish, error)
	Save(ctx context.Context, dish *model.Dish) error
	List(ctx context.Context) ([]*model.Dish, error)
	ListByCategory(ctx context.Context, categoryID string) ([]*model.Dish, error)
	Delete(ctx context.Context, id string) error
}

// DishRepository implements IDishRepository on gorm
type DishRepository struct {
	db *gorm.DB
}

func NewDishRepository(db *gorm.DB) IDishRepository {
	return &DishRepository{db: db}
}

func (r *DishRepository) Create(ctx context.Context, dish *model.Dish) error {
	return r.db.WithContext(ctx).Create(dish).Error
}

func (r *DishRepository) FindByID(ctx context.Context, id string) (*model.Dish, error) {
	var dish model.Dish
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&dish).Error
	if err != nil {
		return nil, err
	}
	return &dish, nil
}

func (r *DishRepository) Save(ctx context.Context, dish *model.Dish) error {
	return r.db.WithContext(ctx).Save(dish).Error
}

func (r *DishRepository) List(ctx context.Context) ([]*model.Dish, error) {
	var dishes []*model.Dish
	err := r.db.WithContext(ctx).Order("name ASC").Find(&dishes).Error
	if err != nil {
		return nil, err
	}
	return dishes, nil
}

func (r *DishRepository) ListByCategory(ctx context.Context, categoryID string) ([]*model.Dish, error) {
	var dishes []*model.Dish
	err := r.db.WithContext(ctx).
		Where("category_id = ?", categoryID).
		Order("name ASC").
		Find(&dishes).Error
	if err != nil {
		return nil, err
	}
	return dishes, nil
}

func (r *DishRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Dish{}).Error
}

// IPartyDishRepository defines the interface for party dish requirements
type IPartyDishRepository interface {
	Create(ctx context.Context, pd *model.PartyDish) error
	Find(ctx context.Context, partyID, dishID string) (*model.PartyDish, error)
	// FindForUpdate locks the party-dish row so the needed-amount check and
	// the contribution write happen against a stable requirement.
	FindForUpdate(ctx context.Context, partyID, dishID string) (*model.PartyDish, error)
	Save(ctx context.Context, pd *model.PartyDish) error
	ListByParty(ctx context.Context, partyID string) ([]*model.PartyDish, error)
	Delete(ctx context.Context, partyID, dishID string) error
}

// PartyDishRepository implements IPartyDishRepository on gorm
type PartyDishRepository struct {
	db *gorm.DB
}

func NewPartyDishRepository(db *gorm.DB) IPartyDishRepository {
	return &PartyDishRepository{db: db}
}

func (r *PartyDishRepository) Create(ctx context.Context, pd *model.PartyDish) error {
	return r.db.WithContext(ctx).Create(pd).Error
}

func (r *PartyDishRepository) Find(ctx context.Context, partyID, dishID string) (*model.PartyDish, error) {
	var pd model.PartyDish
	err := r.db.WithContext(ctx).
		Where("party_id = ? AND dish_id = ?", partyID, dishID).
		First(&pd).Error
	if err != nil {
		return nil, err
	}
	return &pd, nil
}

func (r *PartyDishRepository) FindForUpdate(ctx context.Context, partyID, dishID string) (*model.PartyDish, error) {
	var pd model.PartyDish
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("party_id = ? AND dish_id = ?", partyID, dishID).
		First(&pd).Error
	if err != nil {
		return nil, err
	}
	return &pd, nil
}

func (r *PartyDishRepository) Save(ctx context.Context, pd *model.PartyDish) error {
	return r.db.WithContext(ctx).Save(pd).Error
}

func (r *PartyDishRepository) ListByParty(ctx context.Context, partyID string) ([]*model.PartyDish, error) {
	var pds []*model.PartyDish
	err := r.db.WithContext(ctx).
		Where("party_id = ?", partyID).
		Find(&pds).Error
	if err != nil {
		return nil, err
	}
	return pds, nil
}

func (r *PartyDishRepository) Delete(ctx context.Context, partyID, dishID string) error {
	return r.db.WithContext(ctx).
		Where("party_id = ? AND dish_id = ?", partyID, dishID).
		Delete(&model.PartyDish{}).Error
}
