package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	logger "github.com/potluckhq/potluck/middleware/log"
	"github.com/potluckhq/potluck/internal/model"
	"github.com/potluckhq/potluck/internal/quantity"
	"github.com/potluckhq/potluck/internal/repository"
)

// ILedgerService defines the interface for contribution pledge operations
type ILedgerService interface {
	CreateOrUpdate(ctx context.Context, partyID, dishID, callerID string, amount float64) (*model.Contribution, error)
	Delete(ctx context.Context, contributionID, callerID string) error
	DishStatus(ctx context.Context, partyID, dishID string) (*DishStatusDTO, error)
}

// DishStatusDTO reports the accounting state of one party dish. All three
// figures are recomputed from the participant and contribution tables on
// every read; nothing here is cached.
type DishStatusDTO struct {
	PartyID         string  `json:"party_id"`
	DishID          string  `json:"dish_id"`
	AmountPerPerson float64 `json:"amount_per_person"`
	Unit            string  `json:"unit"`
	Needed          float64 `json:"needed"`
	Contributed     float64 `json:"contributed"`
	Remaining       float64 `json:"remaining"`
}

// LedgerService keeps the contribution ledger consistent: for every dish,
// the sum of pledges never exceeds amountPerPerson times the current
// headcount. All checks and writes for one pledge happen inside a single
// serializable transaction with the party-dish row locked, so two pledges
// that individually fit but jointly overshoot cannot both commit.
type LedgerService struct {
	store repository.Store
	feed  FeedPublisher
	log   *logger.Logger
}

// NewLedgerService creates a new ILedgerService instance. feed may be nil.
func NewLedgerService(store repository.Store, feed FeedPublisher, log *logger.Logger) ILedgerService {
	return &LedgerService{
		store: store,
		feed:  feed,
		log:   log,
	}
}

// CreateOrUpdate writes the caller's pledge for a dish, creating or
// replacing their existing row. The caller can only ever write their own
// pledge; there is no pledging on behalf of another participant.
func (s *LedgerService) CreateOrUpdate(ctx context.Context, partyID, dishID, callerID string, amount float64) (*model.Contribution, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	var out *model.Contribution
	err := s.store.InTx(ctx, func(tx repository.Store) error {
		// Lock the party-dish row. Every concurrent pledge for this dish
		// queues behind this lock, so the sum we check below stays valid
		// until we commit.
		pd, err := tx.PartyDishes().FindForUpdate(ctx, partyID, dishID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPartyDishNotFound
			}
			return fmt.Errorf("failed to find party dish: %w", err)
		}

		participant, err := tx.Participants().FindByPartyAndUser(ctx, partyID, callerID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotParticipant
			}
			return fmt.Errorf("failed to find participant: %w", err)
		}

		existing, err := tx.Contributions().FindByParticipantAndDish(ctx, partyID, dishID, participant.ID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to find contribution: %w", err)
		}

		// Sum what everyone else brings. On update the row being replaced
		// is excluded, so its old amount does not count against the caller.
		excludeID := ""
		if existing != nil {
			excludeID = existing.ID
		}
		others, err := tx.Contributions().SumByDishExcluding(ctx, partyID, dishID, excludeID)
		if err != nil {
			return fmt.Errorf("failed to sum contributions: %w", err)
		}

		seats, err := tx.Participants().TotalSeats(ctx, partyID)
		if err != nil {
			return fmt.Errorf("failed to count participants: %w", err)
		}

		needed := quantity.Needed(pd.AmountPerPerson, seats)
		if others+amount > needed {
			return &ExceedsNeededError{MaxAllowed: quantity.MaxAllowed(needed, others)}
		}

		if existing == nil {
			out = &model.Contribution{
				ID:            uuid.New().String(),
				PartyID:       partyID,
				DishID:        dishID,
				ParticipantID: participant.ID,
				Amount:        amount,
			}
			if err := tx.Contributions().Create(ctx, out); err != nil {
				return fmt.Errorf("failed to create contribution: %w", err)
			}
			return nil
		}

		existing.Amount = amount
		if err := tx.Contributions().Save(ctx, existing); err != nil {
			return fmt.Errorf("failed to update contribution: %w", err)
		}
		out = existing
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.feed != nil {
		s.feed.PublishPartyEvent(&PartyEvent{
			Kind:    EventContributionPut,
			PartyID: partyID,
			UserID:  callerID,
			DishID:  dishID,
			Amount:  amount,
		})
	}
	return out, nil
}

// Delete removes a contribution. Allowed for the owning participant and for
// the party host. Removing supply can only shrink the contributed sum, so
// no invariant check is needed; a repeated delete reports not-found.
func (s *LedgerService) Delete(ctx context.Context, contributionID, callerID string) error {
	var partyID, dishID string
	err := s.store.InTx(ctx, func(tx repository.Store) error {
		contribution, err := tx.Contributions().FindByID(ctx, contributionID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrContributionNotFound
			}
			return fmt.Errorf("failed to find contribution: %w", err)
		}

		owner, err := tx.Participants().FindByID(ctx, contribution.ParticipantID)
		if err != nil {
			return fmt.Errorf("failed to find owning participant: %w", err)
		}

		if owner.UserID != callerID {
			party, err := tx.Parties().FindByID(ctx, contribution.PartyID)
			if err != nil {
				return fmt.Errorf("failed to find party: %w", err)
			}
			if party.HostID != callerID {
				return ErrForbidden
			}
		}

		partyID, dishID = contribution.PartyID, contribution.DishID
		return tx.Contributions().Delete(ctx, contributionID)
	})
	if err != nil {
		return err
	}

	if s.feed != nil {
		s.feed.PublishPartyEvent(&PartyEvent{
			Kind:    EventContributionDelete,
			PartyID: partyID,
			UserID:  callerID,
			DishID:  dishID,
		})
	}
	return nil
}

// DishStatus recomputes needed, contributed and remaining for one dish.
func (s *LedgerService) DishStatus(ctx context.Context, partyID, dishID string) (*DishStatusDTO, error) {
	pd, err := s.store.PartyDishes().Find(ctx, partyID, dishID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPartyDishNotFound
		}
		return nil, fmt.Errorf("failed to find party dish: %w", err)
	}

	seats, err := s.store.Participants().TotalSeats(ctx, partyID)
	if err != nil {
		return nil, fmt.Errorf("failed to count participants: %w", err)
	}

	contributed, err := s.store.Contributions().SumByDishExcluding(ctx, partyID, dishID, "")
	if err != nil {
		return nil, fmt.Errorf("failed to sum contributions: %w", err)
	}

	needed := quantity.Needed(pd.AmountPerPerson, seats)
	return &DishStatusDTO{
		PartyID:         partyID,
		DishID:          dishID,
		AmountPerPerson: pd.AmountPerPerson,
		Unit:            pd.Unit,
		Needed:          needed,
		Contributed:     contributed,
		Remaining:       quantity.Remaining(needed, contributed),
	}, nil
}
