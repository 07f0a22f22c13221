package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	logger "github.com/potluckhq/potluck/middleware/log"
	"github.com/potluckhq/potluck/internal/model"
	"github.com/potluckhq/potluck/internal/repository"
)

// IAdmissionService defines the interface for invitation-based joining
type IAdmissionService interface {
	Redeem(ctx context.Context, token, callerID string, numGuests int, message string) (*model.PartyParticipant, error)
	CreateInvitation(ctx context.Context, partyID, hostID string, maxUses int, ttl time.Duration) (*model.PartyInvitation, error)
	ListInvitations(ctx context.Context, partyID, hostID string) ([]*model.PartyInvitation, error)
}

// AdmissionService turns invitation tokens into participant rows while
// holding the party's capacity ceiling. The uses increment, the participant
// insert and the FULL flip commit as one transaction; with one slot left and
// two concurrent redeemers, exactly one wins.
type AdmissionService struct {
	store    repository.Store
	notifier Notifier
	feed     FeedPublisher
	log      *logger.Logger
}

// NewAdmissionService creates a new IAdmissionService instance.
// notifier and feed may be nil (degraded mode, admission still works).
func NewAdmissionService(store repository.Store, notifier Notifier, feed FeedPublisher, log *logger.Logger) IAdmissionService {
	return &AdmissionService{
		store:    store,
		notifier: notifier,
		feed:     feed,
		log:      log,
	}
}

// Redeem admits the caller into the party behind the invitation token.
func (s *AdmissionService) Redeem(ctx context.Context, token, callerID string, numGuests int, message string) (*model.PartyParticipant, error) {
	if numGuests < 0 {
		return nil, ErrInvalidGuests
	}

	var participant *model.PartyParticipant
	var party *model.Party
	err := s.store.InTx(ctx, func(tx repository.Store) error {
		// Lock the invitation row first: concurrent redemptions of one
		// token serialize here, so the uses counter cannot overshoot.
		inv, err := tx.Invitations().FindByTokenForUpdate(ctx, token)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrInvitationNotFound
			}
			return fmt.Errorf("failed to find invitation: %w", err)
		}

		if inv.Expired(time.Now()) {
			return ErrInvitationExpired
		}
		if inv.Exhausted() {
			return ErrInvitationExhausted
		}

		// Lock the party row: the headcount we read below stays valid
		// against concurrent joins until commit.
		party, err = tx.Parties().FindByIDForUpdate(ctx, inv.PartyID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPartyNotFound
			}
			return fmt.Errorf("failed to find party: %w", err)
		}

		if _, err := tx.Participants().FindByPartyAndUser(ctx, party.ID, callerID); err == nil {
			return ErrAlreadyParticipant
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to check membership: %w", err)
		}

		if !party.Status.AcceptsJoins() {
			return ErrPartyNotJoinable
		}

		seats, err := tx.Participants().TotalSeats(ctx, party.ID)
		if err != nil {
			return fmt.Errorf("failed to count participants: %w", err)
		}

		prospective := seats + 1 + numGuests
		if party.MaxParticipants != nil && prospective > *party.MaxParticipants {
			return &CapacityError{Limit: *party.MaxParticipants, Requested: 1 + numGuests}
		}

		inv.CurrentUses++
		if err := tx.Invitations().Save(ctx, inv); err != nil {
			return fmt.Errorf("failed to consume invitation use: %w", err)
		}

		participant = &model.PartyParticipant{
			ID:        uuid.New().String(),
			PartyID:   party.ID,
			UserID:    callerID,
			NumGuests: numGuests,
		}
		if err := tx.Participants().Create(ctx, participant); err != nil {
			return fmt.Errorf("failed to create participant: %w", err)
		}

		if party.MaxParticipants != nil && prospective >= *party.MaxParticipants {
			if err := tx.Parties().UpdateStatus(ctx, party.ID, model.PartyStatusFull); err != nil {
				return fmt.Errorf("failed to mark party full: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Notification is fire-and-forget: the admission above is committed and
	// a broken broker must not unwind it.
	if message != "" && s.notifier != nil {
		n := &JoinNotification{
			PartyID: party.ID,
			HostID:  party.HostID,
			UserID:  callerID,
			Message: message,
		}
		if err := s.notifier.PublishJoin(ctx, n); err != nil {
			s.log.WarnContext(ctx, "failed to publish join notification",
				zap.String("party_id", party.ID),
				zap.Error(err))
		}
	}

	if s.feed != nil {
		s.feed.PublishPartyEvent(&PartyEvent{
			Kind:    EventParticipantJoined,
			PartyID: party.ID,
			UserID:  callerID,
			Seats:   participant.Seats(),
		})
	}
	return participant, nil
}

// CreateInvitation mints an invitation token for a party. Host only.
func (s *AdmissionService) CreateInvitation(ctx context.Context, partyID, hostID string, maxUses int, ttl time.Duration) (*model.PartyInvitation, error) {
	if maxUses < 1 {
		return nil, ErrInvalidUses
	}

	party, err := s.store.Parties().FindByID(ctx, partyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPartyNotFound
		}
		return nil, fmt.Errorf("failed to find party: %w", err)
	}
	if party.HostID != hostID {
		return nil, ErrForbidden
	}

	inv := &model.PartyInvitation{
		ID:      uuid.New().String(),
		PartyID: partyID,
		Token:   uuid.New().String(),
		MaxUses: maxUses,
	}
	if ttl > 0 {
		expires := time.Now().Add(ttl)
		inv.ExpiresAt = &expires
	}

	if err := s.store.Invitations().Create(ctx, inv); err != nil {
		return nil, fmt.Errorf("failed to create invitation: %w", err)
	}
	return inv, nil
}

// ListInvitations lists a party's invitations. Host only.
func (s *AdmissionService) ListInvitations(ctx context.Context, partyID, hostID string) ([]*model.PartyInvitation, error) {
	party, err := s.store.Parties().FindByID(ctx, partyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPartyNotFound
		}
		return nil, fmt.Errorf("failed to find party: %w", err)
	}
	if party.HostID != hostID {
		return nil, ErrForbidden
	}
	return s.store.Invitations().ListByParty(ctx, partyID)
}
