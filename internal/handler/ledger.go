package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/potluckhq/potluck/internal/service"
)

type LedgerHandler struct {
	ledgerService service.ILedgerService
}

func NewLedgerHandler(ledgerService service.ILedgerService) *LedgerHandler {
	return &LedgerHandler{
		ledgerService: ledgerService,
	}
}

// PutContribution creates or replaces the caller's pledge for a dish
func (h *LedgerHandler) PutContribution(c *gin.Context) {
	var req struct {
		Amount float64 `json:"amount" binding:"required,gt=0"`
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

	contribution, err := h.ledgerService.CreateOrUpdate(c.Request.Context(),
		c.Param("party_id"), c.Param("dish_id"), userID, req.Amount)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, contribution)
}

// DeleteContribution removes a pledge (owner or host)
func (h *LedgerHandler) DeleteContribution(c *gin.Context) {
	err := h.ledgerService.Delete(c.Request.Context(),
		c.Param("contribution_id"), c.GetString("user_id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "contribution removed"})
}

// DishStatus reports needed, contributed and remaining for one dish
func (h *LedgerHandler) DishStatus(c *gin.Context) {
	status, err := h.ledgerService.DishStatus(c.Request.Context(),
		c.Param("party_id"), c.Param("dish_id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, status)
}
