package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/potluckhq/potluck/internal/service"
)

type AdmissionHandler struct {
	admissionService service.IAdmissionService
}

func NewAdmissionHandler(admissionService service.IAdmissionService) *AdmissionHandler {
	return &AdmissionHandler{
		admissionService: admissionService,
	}
}

// CreateInvitation mints an invitation token for a party
func (h *AdmissionHandler) CreateInvitation(c *gin.Context) {
	var req struct {
		MaxUses    int `json:"max_uses" binding:"required,min=1"`
		TTLMinutes int `json:"ttl_minutes" binding:"omitempty,min=1"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	inv, err := h.admissionService.CreateInvitation(c.Request.Context(),
		c.Param("party_id"), c.GetString("user_id"),
		req.MaxUses, time.Duration(req.TTLMinutes)*time.Minute)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, inv)
}

// ListInvitations lists a party's invitation tokens (host only)
func (h *AdmissionHandler) ListInvitations(c *gin.Context) {
	invs, err := h.admissionService.ListInvitations(c.Request.Context(),
		c.Param("party_id"), c.GetString("user_id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, invs)
}

// Redeem joins the caller to the party behind an invitation token
func (h *AdmissionHandler) Redeem(c *gin.Context) {
	var req struct {
		Token     string `json:"token" binding:"required"`
		NumGuests int    `json:"num_guests" binding:"omitempty,min=0"`
		Message   string `json:"message" binding:"omitempty,max=500"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	participant, err := h.admissionService.Redeem(c.Request.Context(),
		req.Token, userID, req.NumGuests, req.Message)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, participant)
}
