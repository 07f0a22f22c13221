package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/potluckhq/potluck/internal/repository"
	"github.com/potluckhq/potluck/internal/service"
)

// respondError maps service errors onto HTTP statuses. Typed errors carry
// their retry hints (max allowed amount, capacity limit) into the body.
func respondError(c *gin.Context, err error) {
	var exceeds *service.ExceedsNeededError
	if errors.As(err, &exceeds) {
		c.JSON(http.StatusConflict, gin.H{
			"error":       err.Error(),
			"max_allowed": exceeds.MaxAllowed,
		})
		return
	}

	var capacity *service.CapacityError
	if errors.As(err, &capacity) {
		c.JSON(http.StatusConflict, gin.H{
			"error":     err.Error(),
			"limit":     capacity.Limit,
			"requested": capacity.Requested,
		})
		return
	}

	switch {
	case errors.Is(err, service.ErrPartyNotFound),
		errors.Is(err, service.ErrPartyDishNotFound),
		errors.Is(err, service.ErrDishNotFound),
		errors.Is(err, service.ErrContributionNotFound),
		errors.Is(err, service.ErrInvitationNotFound),
		errors.Is(err, service.ErrCategoryNotFound),
		errors.Is(err, service.ErrParticipantNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})

	case errors.Is(err, service.ErrForbidden),
		errors.Is(err, service.ErrNotParticipant):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})

	case errors.Is(err, service.ErrInvalidAmount),
		errors.Is(err, service.ErrInvalidGuests),
		errors.Is(err, service.ErrInvalidUses):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

	case errors.Is(err, service.ErrInvitationExpired),
		errors.Is(err, service.ErrInvitationExhausted):
		c.JSON(http.StatusGone, gin.H{"error": err.Error()})

	case errors.Is(err, service.ErrAlreadyParticipant),
		errors.Is(err, service.ErrPartyNotJoinable),
		errors.Is(err, service.ErrSelfParent),
		errors.Is(err, service.ErrCycleDetected),
		errors.Is(err, service.ErrAmountBelowPledged):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})

	case errors.Is(err, repository.ErrTxConflict):
		// Serialization retries exhausted; the client may simply retry.
		c.JSON(http.StatusConflict, gin.H{"error": "please retry"})

	case errors.Is(err, service.ErrUserAlreadyExists):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})

	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrInvalidToken):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})

	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
