package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/potluckhq/potluck/internal/model"
)

// IParticipantRepository defines the interface for participant data operations
type IParticipantRepository interface {
	Create(ctx context.Context, participant *model.PartyParticipant) error
	FindByID(ctx context.Context, id string) (*model.PartyParticipant, error)
	FindByPartyAndUser(ctx context.Context, partyID, userID string) (*model.PartyParticipant, error)
	ListByParty(ctx context.Context, partyID string) ([]*model.PartyParticipant, error)
	// TotalSeats recomputes the party headcount (sum of 1+num_guests) from
	// the participant rows. The value is never cached; callers that need it
	// for a check must read it inside the same transaction as their write.
	TotalSeats(ctx context.Context, partyID string) (int, error)
	Delete(ctx context.Context, id string) error
}

// ParticipantRepository implements IParticipantRepository on gorm
type ParticipantRepository struct {
	db *gorm.DB
}

func NewParticipantRepository(db *gorm.DB) IParticipantRepository {
	return &ParticipantRepository{db: db}
}

func (r *ParticipantRepository) Create(ctx context.Context, participant *model.PartyParticipant) error {
	return r.db.WithContext(ctx).Create(participant).Error
}

func (r *ParticipantRepository) FindByID(ctx context.Context, id string) (*model.PartyParticipant, error) {
	var participant model.PartyParticipant
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&participant).Error
	if err != nil {
		return nil, err
	}
	return &participant, nil
}

func (r *ParticipantRepository) FindByPartyAndUser(ctx context.Context, partyID, userID string) (*model.PartyParticipant, error) {
	var participant model.PartyParticipant
	err := r.db.WithContext(ctx).
		Where("party_id = ? AND user_id = ?", partyID, userID).
		First(&participant).Error
	if err != nil {
		return nil, err
	}
	return &participant, nil
}

func (r *ParticipantRepository) ListByParty(ctx context.Context, partyID string) ([]*model.PartyParticipant, error) {
	var participants []*model.PartyParticipant
	err := r.db.WithContext(ctx).
		Where("party_id = ?", partyID).
		Order("joined_at ASC").
		Find(&participants).Error
	if err != nil {
		return nil, err
	}
	return participants, nil
}

func (r *ParticipantRepository) TotalSeats(ctx context.Context, partyID string) (int, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&model.PartyParticipant{}).
		Where("party_id = ?", partyID).
		Select("COALESCE(SUM(1 + num_guests), 0)").
		Scan(&total).Error
	if err != nil {
		return 0, err
	}
	return int(total), nil
}

func (r *ParticipantRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&model.PartyParticipant{}).Error
}
