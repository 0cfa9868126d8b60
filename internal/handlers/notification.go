package handlers

import (
	"net/http"

	"pillpall/internal/auth"
	"pillpall/internal/database"
	"pillpall/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// GetNotifications lists the user's notifications, newest first
func GetNotifications(c *gin.Context) {
	user := auth.CurrentUser(c)

	db := database.GetDB()
	var notifications []models.Notification
	if err := db.Where("user_id = ?", user.ID).
		Order("created_at desc").
		Find(&notifications).Error; err != nil {
		handleError(c, http.StatusInternalServerError, "Failed to retrieve notifications", err)
		return
	}

	c.JSON(http.StatusOK, notifications)
}

// CreateNotification creates a notification through the API
func CreateNotification(c *gin.Context) {
	user := auth.CurrentUser(c)

	var req models.CreateNotificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleError(c, http.StatusBadRequest, "Invalid input", err)
		return
	}

	notification := models.Notification{
		UserID:       user.ID,
		Title:        req.Title,
		Message:      req.Message,
		Type:         req.Type,
		Status:       models.NotificationPending,
		ScheduledFor: req.ScheduledFor,
	}

	db := database.GetDB()
	if err := db.Create(&notification).Error; err != nil {
		handleError(c, http.StatusInternalServerError, "Failed to create notification", err)
		return
	}

	c.JSON(http.StatusCreated, notification)
}

// MarkNotificationRead marks one of the user's notifications as read
func MarkNotificationRead(c *gin.Context) {
	user := auth.CurrentUser(c)

	db := database.GetDB()
	var notification models.Notification
	if err := db.Where("id = ? AND user_id = ?", c.Param("id"), user.ID).
		First(&notification).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			handleError(c, http.StatusNotFound, "Notification not found", err)
			return
		}
		handleError(c, http.StatusInternalServerError, "Failed to retrieve notification", err)
		return
	}

	if err := db.Model(&notification).Update("status", models.NotificationRead).Error; err != nil {
		handleError(c, http.StatusInternalServerError, "Failed to update notification", err)
		return
	}

	c.JSON(http.StatusOK, notification)
}

// CreateTestNotification creates a test notification for the current user
func CreateTestNotification(c *gin.Context) {
	user := auth.CurrentUser(c)

	notification := models.Notification{
		UserID:  user.ID,
		Title:   "Test Notification",
		Message: "This is a test notification to verify the system is working.",
		Type:    models.NotificationTypeTest,
		Status:  models.NotificationPending,
	}

	db := database.GetDB()
	if err := db.Create(&notification).Error; err != nil {
		handleError(c, http.StatusInternalServerError, "Failed to create notification", err)
		return
	}

	c.JSON(http.StatusCreated, notification)
}
