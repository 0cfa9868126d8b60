package handlers

import (
	"net/http"

	"pillpall/internal/auth"
	"pillpall/internal/database"
	"pillpall/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// userOwnsMedicine verifies that the medicine belongs to the user
func userOwnsMedicine(db *gorm.DB, userID, medicineID uint) (bool, error) {
	var count int64
	err := db.Model(&models.Medicine{}).
		Where("id = ? AND user_id = ?", medicineID, userID).
		Count(&count).Error
	return count > 0, err
}

// GetSchedules lists the user's dosing rules, optionally filtered by medicine
func GetSchedules(c *gin.Context) {
	user := auth.CurrentUser(c)

	db := database.GetDB()
	query := db.Joins("JOIN medicine ON medicine.id = medicine_schedule.medicine_id").
		Where("medicine.user_id = ?", user.ID)
	if medicineID := c.Query("medicine"); medicineID != "" {
		query = query.Where("medicine_schedule.medicine_id = ?", medicineID)
	}

	var schedules []models.MedicineSchedule
	if err := query.Find(&schedules).Error; err != nil {
		handleError(c, http.StatusInternalServerError, "Failed to retrieve schedules", err)
		return
	}

	c.JSON(http.StatusOK, schedules)
}

// CreateSchedule creates a dosing rule for one of the user's medicines
func CreateSchedule(c *gin.Context) {
	user := auth.CurrentUser(c)

	var req models.CreateScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleError(c, http.StatusBadRequest, "Invalid input", err)
		return
	}

	if err := req.DaysOfWeek.Validate(); err != nil {
		handleError(c, http.StatusBadRequest, err.Error(), err)
		return
	}

	schedule := models.MedicineSchedule{
		MedicineID: req.MedicineID,
		TimeOfDay:  req.TimeOfDay,
		DaysOfWeek: req.DaysOfWeek,
		IsActive:   true,
	}
	if req.IsActive != nil {
		schedule.IsActive = *req.IsActive
	}
	if _, _, err := schedule.ParseTimeOfDay(); err != nil {
		handleError(c, http.StatusBadRequest, err.Error(), err)
		return
	}

	db := database.GetDB()
	owns, err := userOwnsMedicine(db, user.ID, req.MedicineID)
	if err != nil {
		handleError(c, http.StatusInternalServerError, "Failed to verify medicine", err)
		return
	}
	if !owns {
		handleError(c, http.StatusForbidden, "You can only create schedules for your own medicines", gorm.ErrRecordNotFound)
		return
	}

	if err := db.Create(&schedule).Error; err != nil {
		handleError(c, http.StatusInternalServerError, "Failed to create schedule", err)
		return
	}

	c.JSON(http.StatusCreated, schedule)
}

// UpdateSchedule updates one of the user's dosing rules
func UpdateSchedule(c *gin.Context) {
	user := auth.CurrentUser(c)

	db := database.GetDB()
	var schedule models.MedicineSchedule
	if err := db.Joins("JOIN medicine ON medicine.id = medicine_schedule.medicine_id").
		Where("medicine_schedule.id = ? AND medicine.user_id = ?", c.Param("id"), user.ID).
		First(&schedule).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			handleError(c, http.StatusNotFound, "Schedule not found", err)
			return
		}
		handleError(c, http.StatusInternalServerError, "Failed to retrieve schedule", err)
		return
	}

	var req models.CreateScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleError(c, http.StatusBadRequest, "Invalid input", err)
		return
	}
	if err := req.DaysOfWeek.Validate(); err != nil {
		handleError(c, http.StatusBadRequest, err.Error(), err)
		return
	}

	schedule.TimeOfDay = req.TimeOfDay
	schedule.DaysOfWeek = req.DaysOfWeek
	if req.IsActive != nil {
		schedule.IsActive = *req.IsActive
	}
	if _, _, err := schedule.ParseTimeOfDay(); err != nil {
		handleError(c, http.StatusBadRequest, err.Error(), err)
		return
	}

	if err := db.Save(&schedule).Error; err != nil {
		handleError(c, http.StatusInternalServerError, "Failed to update schedule", err)
		return
	}

	c.JSON(http.StatusOK, schedule)
}

// DeleteSchedule removes one of the user's dosing rules
func DeleteSchedule(c *gin.Context) {
	user := auth.CurrentUser(c)

	db := database.GetDB()
	var schedule models.MedicineSchedule
	if err := db.Joins("JOIN medicine ON medicine.id = medicine_schedule.medicine_id").
		Where("medicine_schedule.id = ? AND medicine.user_id = ?", c.Param("id"), user.ID).
		First(&schedule).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			handleError(c, http.StatusNotFound, "Schedule not found", err)
			return
		}
		handleError(c, http.StatusInternalServerError, "Failed to retrieve schedule", err)
		return
	}

	if err := db.Delete(&schedule).Error; err != nil {
		handleError(c, http.StatusInternalServerError, "Failed to delete schedule", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Schedule deleted"})
}
