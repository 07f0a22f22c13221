package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/potluckhq/potluck/internal/model"
)

// IInvitationRepository defines the interface for invitation data operations
type IInvitationRepository interface {
	Create(ctx context.Context, inv *model.PartyInvitation) error
	FindByToken(ctx context.Context, token string) (*model.PartyInvitation, error)
	// FindByTokenForUpdate locks the invitation row so two concurrent
	// redemptions of the same token serialize on the uses counter.
	FindByTokenForUpdate(ctx context.Context, token string) (*model.PartyInvitation, error)
	Save(ctx context.Context, inv *model.PartyInvitation) error
	ListByParty(ctx context.Context, partyID string) ([]*model.PartyInvitation, error)
	Delete(ctx context.Context, id string) error
}

// InvitationRepository implements IInvitationRepository on gorm
type InvitationRepository struct {
	db *gorm.DB
}

func NewInvitationRepository(db *gorm.DB) IInvitationRepository {
	return &InvitationRepository{db: db}
}

func (r *InvitationRepository) Create(ctx context.Context, inv *model.PartyInvitation) error {
	return r.db.WithContext(ctx).Create(inv).Error
}

func (r *InvitationRepository) FindByToken(ctx context.Context, token string) (*model.PartyInvitation, error) {
	var inv model.PartyInvitation
	err := r.db.WithContext(ctx).Where("token = ?", token).First(&inv).Error
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

func (r *InvitationRepository) FindByTokenForUpdate(ctx context.Context, token string) (*model.PartyInvitation, error) {
	var inv model.PartyInvitation
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("token = ?", token).
		First(&inv).Error
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

func (r *InvitationRepository) Save(ctx context.Context, inv *model.PartyInvitation) error {
	return r.db.WithContext(ctx).Save(inv).Error
}

func (r *InvitationRepository) ListByParty(ctx context.Context, partyID string) ([]*model.PartyInvitation, error) {
	var invs []*model.PartyInvitation
	err := r.db.WithContext(ctx).
		Where("party_id = ?", partyID).
		Order("created_at DESC").
		Find(&invs).Error
	if err != nil {
		return nil, err
	}
	return invs, nil
}

func (r *InvitationRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.PartyInvitation{}).Error
}
