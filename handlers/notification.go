package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/wafirapp/wafir-backend/models"
)

func GetNotifications() gin.HandlerFunc {
	return func(c *gin.Context) {
		unreadOnly := c.Query("unread") == "true"
		notifications, err := models.GetNotifications(c.Request.Context(), unreadOnly)
		if err != nil {
			writeModelError(c, "notification.go", "GetNotifications", err)
			return
		}
		c.JSON(http.StatusOK, notifications)
	}
}

func MarkNotificationRead() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		notification, err := models.MarkNotificationRead(c.Request.Context(), id)
		if err != nil {
			writeModelError(c, "notification.go", "MarkNotificationRead", err)
			return
		}
		c.JSON(http.StatusOK, notification)
	}
}
