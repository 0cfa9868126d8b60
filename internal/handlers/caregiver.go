package handlers

import (
	"net/http"

	"pillpall/internal/auth"
	"pillpall/internal/database"
	"pillpall/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// GetCaregivers lists the user's caregivers, newest first
func GetCaregivers(c *gin.Context) {
	user := auth.CurrentUser(c)

	db := database.GetDB()
	var caregivers []models.Caregiver
	if err := db.Where("user_id = ?", user.ID).
		Order("created_at desc").
		Find(&caregivers).Error; err != nil {
		handleError(c, http.StatusInternalServerError, "Failed to retrieve caregivers", err)
		return
	}

	c.JSON(http.StatusOK, caregivers)
}

// CreateCaregiver adds a caregiver for the user
func CreateCaregiver(c *gin.Context) {
	user := auth.CurrentUser(c)

	var req models.CreateCaregiverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleError(c, http.StatusBadRequest, "Invalid input", err)
		return
	}

	caregiver := models.Caregiver{
		UserID:               user.ID,
		Name:                 req.Name,
		Relationship:         req.Relationship,
		PhoneNumber:          req.PhoneNumber,
		Email:                req.Email,
		NotificationsEnabled: true,
	}
	if req.NotificationsEnabled != nil {
		caregiver.NotificationsEnabled = *req.NotificationsEnabled
	}
	if req.EmergencyContact != nil {
		caregiver.EmergencyContact = *req.EmergencyContact
	}

	db := database.GetDB()
	if err := db.Create(&caregiver).Error; err != nil {
		handleError(c, http.StatusInternalServerError, "Failed to create caregiver", err)
		return
	}

	c.JSON(http.StatusCreated, caregiver)
}

// UpdateCaregiver updates one of the user's caregivers
func UpdateCaregiver(c *gin.Context) {
	user := auth.CurrentUser(c)

	db := database.GetDB()
	var caregiver models.Caregiver
	if err := db.Where("id = ? AND user_id = ?", c.Param("id"), user.ID).
		First(&caregiver).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			handleError(c, http.StatusNotFound, "Caregiver not found", err)
			return
		}
		handleError(c, http.StatusInternalServerError, "Failed to retrieve caregiver", err)
		return
	}

	var req models.UpdateCaregiverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleError(c, http.StatusBadRequest, "Invalid input", err)
		return
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Relationship != nil {
		updates["relationship"] = *req.Relationship
	}
	if req.PhoneNumber != nil {
		updates["phone_number"] = *req.PhoneNumber
	}
	if req.Email != nil {
		updates["email"] = *req.Email
	}
	if req.NotificationsEnabled != nil {
		updates["notifications_enabled"] = *req.NotificationsEnabled
	}
	if req.EmergencyContact != nil {
		updates["emergency_contact"] = *req.EmergencyContact
	}

	if len(updates) > 0 {
		if err := db.Model(&caregiver).Updates(updates).Error; err != nil {
			handleError(c, http.StatusInternalServerError, "Failed to update caregiver", err)
			return
		}
	}

	c.JSON(http.StatusOK, caregiver)
}

// DeleteCaregiver removes one of the user's caregivers
func DeleteCaregiver(c *gin.Context) {
	user := auth.CurrentUser(c)

	db := database.GetDB()
	result := db.Where("id = ? AND user_id = ?", c.Param("id"), user.ID).
		Delete(&models.Caregiver{})
	if result.Error != nil {
		handleError(c, http.StatusInternalServerError, "Failed to delete caregiver", result.Error)
		return
	}
	if result.RowsAffected == 0 {
		handleError(c, http.StatusNotFound, "Caregiver not found", gorm.ErrRecordNotFound)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Caregiver deleted"})
}
