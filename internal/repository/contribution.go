package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/potluckhq/potluck/internal/model"
)

// IContributionRepository defines the interface for pledge data operations
type IContributionRepository interface {
	Create(ctx context.Context, c *model.Contribution) error
	Save(ctx context.Context, c *model.Contribution) error
	FindByID(ctx context.Context, id string) (*model.Contribution, error)
	FindByParticipantAndDish(ctx context.Context, partyID, dishID, participantID string) (*model.Contribution, error)
	ListByParty(ctx context.Context, partyID string) ([]*model.Contribution, error)
	ListByDish(ctx context.Context, partyID, dishID string) ([]*model.Contribution, error)
	// SumByDishExcluding totals every pledge for a dish except the given
	// contribution id (empty id excludes nothing). This is the
	// "contributed by others" figure the ledger invariant checks against.
	SumByDishExcluding(ctx context.Context, partyID, dishID, excludeID string) (float64, error)
	Delete(ctx context.Context, id string) error
	DeleteByPartyDish(ctx context.Context, partyID, dishID string) error
	DeleteByParticipant(ctx context.Context, participantID string) error
}

// ContributionRepository implements IContributionRepository on gorm
type ContributionRepository struct {
	db *gorm.DB
}

func NewContributionRepository(db *gorm.DB) IContributionRepository {
	return &ContributionRepository{db: db}
}

func (r *ContributionRepository) Create(ctx context.Context, c *model.Contribution) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *ContributionRepository) Save(ctx context.Context, c *model.Contribution) error {
	return r.db.WithContext(ctx).Save(c).Error
}

func (r *ContributionRepository) FindByID(ctx context.Context, id string) (*model.Contribution, error) {
	var c model.Contribution
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *ContributionRepository) FindByParticipantAndDish(ctx context.Context, partyID, dishID, participantID string) (*model.Contribution, error) {
	var c model.Contribution
	err := r.db.WithContext(ctx).
		Where("party_id = ? AND dish_id = ? AND participant_id = ?", partyID, dishID, participantID).
		First(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *ContributionRepository) ListByParty(ctx context.Context, partyID string) ([]*model.Contribution, error) {
	var cs []*model.Contribution
	err := r.db.WithContext(ctx).
		Where("party_id = ?", partyID).
		Find(&cs).Error
	if err != nil {
		return nil, err
	}
	return cs, nil
}

func (r *ContributionRepository) ListByDish(ctx context.Context, partyID, dishID string) ([]*model.Contribution, error) {
	var cs []*model.Contribution
	err := r.db.WithContext(ctx).
		Where("party_id = ? AND dish_id = ?", partyID, dishID).
		Find(&cs).Error
	if err != nil {
		return nil, err
	}
	return cs, nil
}

func (r *ContributionRepository) SumByDishExcluding(ctx context.Context, partyID, dishID, excludeID string) (float64, error) {
	var total float64
	q := r.db.WithContext(ctx).
		Model(&model.Contribution{}).
		Where("party_id = ? AND dish_id = ?", partyID, dishID)
	if excludeID != "" {
		q = q.Where("id <> ?", excludeID)
	}
	err := q.Select("COALESCE(SUM(amount), 0)").Scan(&total).Error
	if err != nil {
		return 0, err
	}
	return total, nil
}

func (r *ContributionRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Contribution{}).Error
}

func (r *ContributionRepository) DeleteByPartyDish(ctx context.Context, partyID, dishID string) error {
	return r.db.WithContext(ctx).
		Where("party_id = ? AND dish_id = ?", partyID, dishID).
		Delete(&model.Contribution{}).Error
}

func (r *ContributionRepository) DeleteByParticipant(ctx context.Context, participantID string) error {
	return r.db.WithContext(ctx).
		Where("participant_id = ?", participantID).
		Delete(&model.Contribution{}).Error
}
