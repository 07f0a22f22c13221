package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/potluckhq/potluck/internal/model"
	"github.com/potluckhq/potluck/internal/service"
	"github.com/potluckhq/potluck/internal/ws"
)

type PartyHandler struct {
	partyService service.IPartyService
	hub          *ws.Hub
}

func NewPartyHandler(partyService service.IPartyService, hub *ws.Hub) *PartyHandler {
	return &PartyHandler{
		partyService: partyService,
		hub:          hub,
	}
}

// CreateParty handles party creation with its initial menu
func (h *PartyHandler) CreateParty(c *gin.Context) {
	var req service.CreatePartyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	party, err := h.partyService.CreateParty(c.Request.Context(), userID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, party)
}

// GetParty returns a party with its per-dish accounting
func (h *PartyHandler) GetParty(c *gin.Context) {
	detail, err := h.partyService.GetParty(c.Request.Context(), c.Param("party_id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, detail)
}

// ListParties returns publicly listed parties
func (h *PartyHandler) ListParties(c *gin.Context) {
	parties, err := h.partyService.ListPublicParties(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, parties)
}

// ListMyParties returns parties the caller hosts
func (h *PartyHandler) ListMyParties(c *gin.Context) {
	parties, err := h.partyService.ListHostParties(c.Request.Context(), c.GetString("user_id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, parties)
}

// ListParticipants returns a party's participant rows
func (h *PartyHandler) ListParticipants(c *gin.Context) {
	participants, err := h.partyService.ListParticipants(c.Request.Context(), c.Param("party_id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, participants)
}

// CloseParty stops admission for good (until an explicit reopen)
func (h *PartyHandler) CloseParty(c *gin.Context) {
	err := h.partyService.CloseParty(c.Request.Context(), c.Param("party_id"), c.GetString("user_id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "party closed"})
}

// ReopenParty clears a FULL or CLOSED state
func (h *PartyHandler) ReopenParty(c *gin.Context) {
	err := h.partyService.ReopenParty(c.Request.Context(), c.Param("party_id"), c.GetString("user_id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "party reopened"})
}

// SetPrivacy switches a party between public, closed and private listing
func (h *PartyHandler) SetPrivacy(c *gin.Context) {
	var req struct {
		Privacy model.PartyPrivacy `json:"privacy" binding:"required,oneof=public closed private"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := h.partyService.SetPrivacy(c.Request.Context(), c.Param("party_id"), c.GetString("user_id"), req.Privacy)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "privacy updated"})
}

// AddDish puts a dish on the party menu
func (h *PartyHandler) AddDish(c *gin.Context) {
	var req service.PartyDishInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	pd, err := h.partyService.AddDish(c.Request.Context(), c.Param("party_id"), c.GetString("user_id"), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, pd)
}

// UpdateDishAmount edits the per-person requirement of a menu dish
func (h *PartyHandler) UpdateDishAmount(c *gin.Context) {
	var req struct {
		AmountPerPerson float64 `json:"amount_per_person" binding:"required,gt=0"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := h.partyService.UpdateDishAmount(c.Request.Context(),
		c.Param("party_id"), c.Param("dish_id"), c.GetString("user_id"), req.AmountPerPerson)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "dish updated"})
}

// RemoveDish takes a dish off the menu along with its pledges
func (h *PartyHandler) RemoveDish(c *gin.Context) {
	err := h.partyService.RemoveDish(c.Request.Context(),
		c.Param("party_id"), c.Param("dish_id"), c.GetString("user_id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "dish removed"})
}

// RemoveParticipant kicks a participant from the party
func (h *PartyHandler) RemoveParticipant(c *gin.Context) {
	err := h.partyService.RemoveParticipant(c.Request.Context(),
		c.Param("party_id"), c.Param("participant_id"), c.GetString("user_id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "participant removed"})
}

// ServeFeed upgrades the connection to the party's live event feed
func (h *PartyHandler) ServeFeed(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	partyID := c.Param("party_id")
	detail, err := h.partyService.GetParty(c.Request.Context(), partyID)
	if err != nil {
		respondError(c, err)
		return
	}

	// Private parties stream only to the host and participants.
	if detail.Party.Privacy == model.PartyPrivacyPrivate && detail.Party.HostID != userID {
		participants, err := h.partyService.ListParticipants(c.Request.Context(), partyID)
		if err != nil {
			respondError(c, err)
			return
		}
		member := false
		for _, p := range participants {
			if p.UserID == userID {
				member = true
				break
			}
		}
		if !member {
			c.JSON(http.StatusForbidden, gin.H{"error": "not a participant"})
			return
		}
	}

	ws.ServeWs(h.hub, partyID, userID, c)
}
