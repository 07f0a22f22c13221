package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/potluckhq/potluck/internal/model"
)

// IPartyRepository defines the interface for party data operations
type IPartyRepository interface {
	Create(ctx context.Context, party *model.Party) error
	FindByID(ctx context.Context, id string) (*model.Party, error)
	// FindByIDForUpdate locks the party row for the rest of the enclosing
	// transaction. Admission and ledger checks read headcount under this
	// lock so a concurrent join cannot slip between check and write.
	FindByIDForUpdate(ctx context.Context, id string) (*model.Party, error)
	Save(ctx context.Context, party *model.Party) error
	UpdateStatus(ctx context.Context, id string, status model.PartyStatus) error
	ListByHost(ctx context.Context, hostID string) ([]*model.Party, error)
	ListPublic(ctx context.Context) ([]*model.Party, error)
}

// PartyRepository implements IPartyRepository on gorm
type PartyRepository struct {
	db *gorm.DB
}

func NewPartyRepository(db *gorm.DB) IPartyRepository {
	return &PartyRepository{db: db}
}

func (r *PartyRepository) Create(ctx context.Context, party *model.Party) error {
	return r.db.WithContext(ctx).Create(party).Error
}

func (r *PartyRepository) FindByID(ctx context.Context, id string) (*model.Party, error) {
	var party model.Party
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&party).Error
	if err != nil {
		return nil, err
	}
	return &party, nil
}

func (r *PartyRepository) FindByIDForUpdate(ctx context.Context, id string) (*model.Party, error) {
	var party model.Party
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&party).Error
	if err != nil {
		return nil, err
	}
	return &party, nil
}

func (r *PartyRepository) Save(ctx context.Context, party *model.Party) error {
	return r.db.WithContext(ctx).Save(party).Error
}

func (r *PartyRepository) UpdateStatus(ctx context.Context, id string, status model.PartyStatus) error {
	return r.db.WithContext(ctx).
		Model(&model.Party{}).
		Where("id = ?", id).
		Update("status", status).Error
}

func (r *PartyRepository) ListByHost(ctx context.Context, hostID string) ([]*model.Party, error) {
	var parties []*model.Party
	err := r.db.WithContext(ctx).
		Where("host_id = ?", hostID).
		Order("date ASC").
		Find(&parties).Error
	if err != nil {
		return nil, err
	}
	return parties, nil
}

func (r *PartyRepository) ListPublic(ctx context.Context) ([]*model.Party, error) {
	var parties []*model.Party
	err := r.db.WithContext(ctx).
		Where("privacy = ?", model.PartyPrivacyPublic).
		Order("date ASC").
		Find(&parties).Error
	if err != nil {
		return nil, err
	}
	return parties, nil
}
