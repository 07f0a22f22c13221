package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/potluckhq/potluck/internal/repository"
)

type NotificationHandler struct {
	notifications repository.INotificationRepository
}

func NewNotificationHandler(notifications repository.INotificationRepository) *NotificationHandler {
	return &NotificationHandler{
		notifications: notifications,
	}
}

// ListNotifications returns the caller's notifications
func (h *NotificationHandler) ListNotifications(c *gin.Context) {
	ns, err := h.notifications.ListByUser(c.Request.Context(), c.GetString("user_id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list notifications"})
		return
	}

	c.JSON(http.StatusOK, ns)
}

// MarkNotificationRead marks one of the caller's notifications as read
func (h *NotificationHandler) MarkNotificationRead(c *gin.Context) {
	err := h.notifications.MarkRead(c.Request.Context(), c.Param("notification_id"), c.GetString("user_id"))
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "notification not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to mark notification"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "notification read"})
}
