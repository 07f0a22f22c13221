package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/potluckhq/potluck/internal/model"
	"github.com/potluckhq/potluck/internal/quantity"
	"github.com/potluckhq/potluck/internal/repository"
)

// ErrAmountBelowPledged rejects a host edit that would shrink a dish's
// needed amount below what participants have already pledged.
var ErrAmountBelowPledged = errors.New("per-person amount too low for existing pledges")

// CreatePartyRequest carries everything a host submits to open a party.
type CreatePartyRequest struct {
	Name            string             `json:"name" binding:"required,min=1,max=100"`
	Date            time.Time          `json:"date" binding:"required"`
	MaxParticipants *int               `json:"max_participants" binding:"omitempty,min=1"`
	Privacy         model.PartyPrivacy `json:"privacy"`
	Dishes          []PartyDishInput   `json:"dishes"`
}

// PartyDishInput is one required dish on a new party's menu.
type PartyDishInput struct {
	DishID          string  `json:"dish_id" binding:"required"`
	AmountPerPerson float64 `json:"amount_per_person" binding:"required,gt=0"`
	Unit            string  `json:"unit" binding:"required"`
}

// PartyDetailDTO is a party with its recomputed aggregates.
type PartyDetailDTO struct {
	Party      *model.Party    `json:"party"`
	TotalSeats int             `json:"total_seats"`
	Dishes     []DishStatusDTO `json:"dishes"`
}

// IPartyService defines the interface for party lifecycle and host operations
type IPartyService interface {
	CreateParty(ctx context.Context, hostID string, req *CreatePartyRequest) (*model.Party, error)
	GetParty(ctx context.Context, partyID string) (*PartyDetailDTO, error)
	ListPublicParties(ctx context.Context) ([]*model.Party, error)
	ListHostParties(ctx context.Context, hostID string) ([]*model.Party, error)
	ListParticipants(ctx context.Context, partyID string) ([]*model.PartyParticipant, error)
	CloseParty(ctx context.Context, partyID, hostID string) error
	ReopenParty(ctx context.Context, partyID, hostID string) error
	SetPrivacy(ctx context.Context, partyID, hostID string, privacy model.PartyPrivacy) error
	AddDish(ctx context.Context, partyID, hostID string, input *PartyDishInput) (*model.PartyDish, error)
	UpdateDishAmount(ctx context.Context, partyID, dishID, hostID string, amountPerPerson float64) error
	RemoveDish(ctx context.Context, partyID, dishID, hostID string) error
	RemoveParticipant(ctx context.Context, partyID, participantID, hostID string) error
}

// PartyService implements the IPartyService interface
type PartyService struct {
	store repository.Store
}

// NewPartyService creates a new IPartyService instance
func NewPartyService(store repository.Store) IPartyService {
	return &PartyService{store: store}
}

// CreateParty opens a party with its initial dish list. The host is not a
// participant until they join like everyone else.
func (s *PartyService) CreateParty(ctx context.Context, hostID string, req *CreatePartyRequest) (*model.Party, error) {
	if req.MaxParticipants != nil && *req.MaxParticipants < 1 {
		return nil, ErrInvalidGuests
	}
	for _, d := range req.Dishes {
		if d.AmountPerPerson <= 0 {
			return nil, ErrInvalidAmount
		}
	}

	privacy := req.Privacy
	if privacy == "" {
		privacy = model.PartyPrivacyPublic
	}

	party := &model.Party{
		ID:              uuid.New().String(),
		Name:            req.Name,
		HostID:          hostID,
		Date:            req.Date,
		MaxParticipants: req.MaxParticipants,
		Status:          model.PartyStatusOpen,
		Privacy:         privacy,
	}

	err := s.store.InTx(ctx, func(tx repository.Store) error {
		if err := tx.Parties().Create(ctx, party); err != nil {
			return fmt.Errorf("failed to create party: %w", err)
		}
		for _, d := range req.Dishes {
			if _, err := tx.Dishes().FindByID(ctx, d.DishID); err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrDishNotFound
				}
				return fmt.Errorf("failed to find dish: %w", err)
			}
			pd := &model.PartyDish{
				PartyID:         party.ID,
				DishID:          d.DishID,
				AmountPerPerson: d.AmountPerPerson,
				Unit:            d.Unit,
			}
			if err := tx.PartyDishes().Create(ctx, pd); err != nil {
				return fmt.Errorf("failed to add dish to party: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return party, nil
}

// GetParty returns a party with per-dish needed/contributed/remaining,
// recomputed from the participant and contribution tables.
func (s *PartyService) GetParty(ctx context.Context, partyID string) (*PartyDetailDTO, error) {
	party, err := s.store.Parties().FindByID(ctx, partyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPartyNotFound
		}
		return nil, fmt.Errorf("failed to find party: %w", err)
	}

	seats, err := s.store.Participants().TotalSeats(ctx, partyID)
	if err != nil {
		return nil, fmt.Errorf("failed to count participants: %w", err)
	}

	pds, err := s.store.PartyDishes().ListByParty(ctx, partyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list party dishes: %w", err)
	}

	detail := &PartyDetailDTO{
		Party:      party,
		TotalSeats: seats,
		Dishes:     make([]DishStatusDTO, 0, len(pds)),
	}
	for _, pd := range pds {
		contributed, err := s.store.Contributions().SumByDishExcluding(ctx, partyID, pd.DishID, "")
		if err != nil {
			return nil, fmt.Errorf("failed to sum contributions: %w", err)
		}
		needed := quantity.Needed(pd.AmountPerPerson, seats)
		detail.Dishes = append(detail.Dishes, DishStatusDTO{
			PartyID:         partyID,
			DishID:          pd.DishID,
			AmountPerPerson: pd.AmountPerPerson,
			Unit:            pd.Unit,
			Needed:          needed,
			Contributed:     contributed,
			Remaining:       quantity.Remaining(needed, contributed),
		})
	}
	return detail, nil
}

func (s *PartyService) ListPublicParties(ctx context.Context) ([]*model.Party, error) {
	return s.store.Parties().ListPublic(ctx)
}

func (s *PartyService) ListHostParties(ctx context.Context, hostID string) ([]*model.Party, error) {
	return s.store.Parties().ListByHost(ctx, hostID)
}

func (s *PartyService) ListParticipants(ctx context.Context, partyID string) ([]*model.PartyParticipant, error) {
	if _, err := s.store.Parties().FindByID(ctx, partyID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPartyNotFound
		}
		return nil, fmt.Errorf("failed to find party: %w", err)
	}
	return s.store.Participants().ListByParty(ctx, partyID)
}

// CloseParty stops all further joining. Terminal for admission; existing
// participants and their pledges stay valid and editable.
func (s *PartyService) CloseParty(ctx context.Context, partyID, hostID string) error {
	return s.hostStatusChange(ctx, partyID, hostID, model.PartyStatusClosed)
}

// ReopenParty clears a sticky FULL (or a CLOSED). Host action only; nothing
// reopens a party automatically.
func (s *PartyService) ReopenParty(ctx context.Context, partyID, hostID string) error {
	return s.hostStatusChange(ctx, partyID, hostID, model.PartyStatusOpen)
}

func (s *PartyService) hostStatusChange(ctx context.Context, partyID, hostID string, status model.PartyStatus) error {
	return s.store.InTx(ctx, func(tx repository.Store) error {
		party, err := tx.Parties().FindByIDForUpdate(ctx, partyID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPartyNotFound
			}
			return fmt.Errorf("failed to find party: %w", err)
		}
		if party.HostID != hostID {
			return ErrForbidden
		}
		return tx.Parties().UpdateStatus(ctx, partyID, status)
	})
}

func (s *PartyService) SetPrivacy(ctx context.Context, partyID, hostID string, privacy model.PartyPrivacy) error {
	return s.store.InTx(ctx, func(tx repository.Store) error {
		party, err := tx.Parties().FindByIDForUpdate(ctx, partyID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPartyNotFound
			}
			return fmt.Errorf("failed to find party: %w", err)
		}
		if party.HostID != hostID {
			return ErrForbidden
		}
		party.Privacy = privacy
		return tx.Parties().Save(ctx, party)
	})
}

// AddDish puts a dish on the party menu. Host only.
func (s *PartyService) AddDish(ctx context.Context, partyID, hostID string, input *PartyDishInput) (*model.PartyDish, error) {
	if input.AmountPerPerson <= 0 {
		return nil, ErrInvalidAmount
	}

	pd := &model.PartyDish{
		PartyID:         partyID,
		DishID:          input.DishID,
		AmountPerPerson: input.AmountPerPerson,
		Unit:            input.Unit,
	}
	err := s.store.InTx(ctx, func(tx repository.Store) error {
		party, err := tx.Parties().FindByID(ctx, partyID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPartyNotFound
			}
			return fmt.Errorf("failed to find party: %w", err)
		}
		if party.HostID != hostID {
			return ErrForbidden
		}
		if _, err := tx.Dishes().FindByID(ctx, input.DishID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrDishNotFound
			}
			return fmt.Errorf("failed to find dish: %w", err)
		}
		return tx.PartyDishes().Create(ctx, pd)
	})
	if err != nil {
		return nil, err
	}
	return pd, nil
}

// UpdateDishAmount edits a dish's per-person requirement. Lowering it below
// the point where existing pledges would exceed the new needed amount is
// rejected, so the ledger invariant holds through host edits too.
func (s *PartyService) UpdateDishAmount(ctx context.Context, partyID, dishID, hostID string, amountPerPerson float64) error {
	if amountPerPerson <= 0 {
		return ErrInvalidAmount
	}

	return s.store.InTx(ctx, func(tx repository.Store) error {
		party, err := tx.Parties().FindByID(ctx, partyID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPartyNotFound
			}
			return fmt.Errorf("failed to find party: %w", err)
		}
		if party.HostID != hostID {
			return ErrForbidden
		}

		pd, err := tx.PartyDishes().FindForUpdate(ctx, partyID, dishID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPartyDishNotFound
			}
			return fmt.Errorf("failed to find party dish: %w", err)
		}

		seats, err := tx.Participants().TotalSeats(ctx, partyID)
		if err != nil {
			return fmt.Errorf("failed to count participants: %w", err)
		}
		contributed, err := tx.Contributions().SumByDishExcluding(ctx, partyID, dishID, "")
		if err != nil {
			return fmt.Errorf("failed to sum contributions: %w", err)
		}
		if contributed > quantity.Needed(amountPerPerson, seats) {
			return ErrAmountBelowPledged
		}

		pd.AmountPerPerson = amountPerPerson
		return tx.PartyDishes().Save(ctx, pd)
	})
}

// RemoveDish takes a dish off the menu and cascades away its contributions.
func (s *PartyService) RemoveDish(ctx context.Context, partyID, dishID, hostID string) error {
	return s.store.InTx(ctx, func(tx repository.Store) error {
		party, err := tx.Parties().FindByID(ctx, partyID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPartyNotFound
			}
			return fmt.Errorf("failed to find party: %w", err)
		}
		if party.HostID != hostID {
			return ErrForbidden
		}
		if _, err := tx.PartyDishes().Find(ctx, partyID, dishID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPartyDishNotFound
			}
			return fmt.Errorf("failed to find party dish: %w", err)
		}
		if err := tx.Contributions().DeleteByPartyDish(ctx, partyID, dishID); err != nil {
			return fmt.Errorf("failed to cascade contributions: %w", err)
		}
		return tx.PartyDishes().Delete(ctx, partyID, dishID)
	})
}

// RemoveParticipant kicks a participant and their pledges. Host only.
// A FULL party stays FULL; freed seats do not reopen admission.
func (s *PartyService) RemoveParticipant(ctx context.Context, partyID, participantID, hostID string) error {
	return s.store.InTx(ctx, func(tx repository.Store) error {
		party, err := tx.Parties().FindByIDForUpdate(ctx, partyID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPartyNotFound
			}
			return fmt.Errorf("failed to find party: %w", err)
		}
		if party.HostID != hostID {
			return ErrForbidden
		}

		participant, err := tx.Participants().FindByID(ctx, participantID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrParticipantNotFound
			}
			return fmt.Errorf("failed to find participant: %w", err)
		}
		if participant.PartyID != partyID {
			return ErrParticipantNotFound
		}

		if err := tx.Contributions().DeleteByParticipant(ctx, participantID); err != nil {
			return fmt.Errorf("failed to cascade contributions: %w", err)
		}
		return tx.Participants().Delete(ctx, participantID)
	})
}
