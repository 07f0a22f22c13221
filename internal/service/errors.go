package service

import (
	"errors"
	"fmt"
)

var (
	// Not-found family.
	ErrPartyNotFound        = errors.New("party not found")
	ErrPartyDishNotFound    = errors.New("dish is not on this party's menu")
	ErrDishNotFound         = errors.New("dish not found")
	ErrContributionNotFound = errors.New("contribution not found")
	ErrInvitationNotFound   = errors.New("invitation not found")
	ErrCategoryNotFound     = errors.New("category not found")
	ErrParticipantNotFound  = errors.New("participant not found")

	// Permission family.
	ErrForbidden      = errors.New("caller has no rights over this resource")
	ErrNotParticipant = errors.New("caller is not a participant of this party")

	// Validation family.
	ErrInvalidAmount = errors.New("amount must be greater than zero")
	ErrInvalidGuests = errors.New("guest count must not be negative")
	ErrInvalidUses   = errors.New("max uses must be at least 1")

	// Invitation terminal conditions.
	ErrInvitationExpired   = errors.New("invitation has expired")
	ErrInvitationExhausted = errors.New("invitation has no uses left")
	ErrAlreadyParticipant  = errors.New("user already joined this party")
	ErrPartyNotJoinable    = errors.New("party is not accepting new participants")

	// Hierarchy guard.
	ErrSelfParent    = errors.New("category cannot be its own parent")
	ErrCycleDetected = errors.New("reparenting would create a category cycle")
)

// ExceedsNeededError rejects a pledge that would push a dish past its needed
// amount. MaxAllowed is the largest amount the caller could still pledge, so
// a client can retry with a corrected value instead of guessing.
type ExceedsNeededError struct {
	MaxAllowed float64
}

func (e *ExceedsNeededError) Error() string {
	return fmt.Sprintf("contribution exceeds needed amount: at most %v allowed", e.MaxAllowed)
}

// CapacityError rejects a join that would push the party past its ceiling.
// Requested is the seat count of the rejected join (1 + guests), so a client
// can shrink its guest count and retry.
type CapacityError struct {
	Limit     int
	Requested int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("party capacity exceeded: limit %d, requested party of %d", e.Limit, e.Requested)
}
