package handlers

import (
	"log"
	"net/http"
	"time"

	"pillpall/internal/auth"
	"pillpall/internal/database"
	"pillpall/internal/models"
	"pillpall/internal/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// GetIntakes lists the user's dose history, newest scheduled first
func GetIntakes(c *gin.Context) {
	user := auth.CurrentUser(c)

	db := database.GetDB()
	var intakes []models.MedicineIntake
	if err := db.Joins("JOIN medicine ON medicine.id = medicine_intake.medicine_id").
		Where("medicine.user_id = ?", user.ID).
		Order("medicine_intake.scheduled_time desc").
		Find(&intakes).Error; err != nil {
		handleError(c, http.StatusInternalServerError, "Failed to retrieve intakes", err)
		return
	}

	c.JSON(http.StatusOK, intakes)
}

// CreateIntake records a dose slot manually (outside schedule expansion)
func CreateIntake(c *gin.Context) {
	user := auth.CurrentUser(c)

	var req models.CreateIntakeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleError(c, http.StatusBadRequest, "Invalid input", err)
		return
	}

	db := database.GetDB()
	owns, err := userOwnsMedicine(db, user.ID, req.MedicineID)
	if err != nil {
		handleError(c, http.StatusInternalServerError, "Failed to verify medicine", err)
		return
	}
	if !owns {
		handleError(c, http.StatusForbidden, "You can only record doses for your own medicines", gorm.ErrRecordNotFound)
		return
	}

	intake := models.MedicineIntake{
		MedicineID:    req.MedicineID,
		ScheduledTime: req.ScheduledTime,
		Status:        models.IntakePending,
		Notes:         req.Notes,
	}
	if err := db.Create(&intake).Error; err != nil {
		handleError(c, http.StatusInternalServerError, "Failed to create intake", err)
		return
	}

	c.JSON(http.StatusCreated, intake)
}

// UpdateIntake applies a user action to a dose: taking, missing or skipping
// it. Transitions are validated against the dose state machine, and taking
// a dose decrements the medicine's remaining supply.
func UpdateIntake(c *gin.Context) {
	user := auth.CurrentUser(c)

	var req models.UpdateIntakeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleError(c, http.StatusBadRequest, "Invalid input", err)
		return
	}
	if !models.ValidIntakeStatus(req.Status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown status"})
		return
	}

	db := database.GetDB()
	var intake models.MedicineIntake
	if err := db.Preload("Medicine").
		Joins("JOIN medicine ON medicine.id = medicine_intake.medicine_id").
		Where("medicine_intake.id = ? AND medicine.user_id = ?", c.Param("id"), user.ID).
		First(&intake).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			handleError(c, http.StatusNotFound, "Intake not found", err)
			return
		}
		handleError(c, http.StatusInternalServerError, "Failed to retrieve intake", err)
		return
	}

	if !models.CanTransition(intake.Status, req.Status) {
		c.JSON(http.StatusConflict, gin.H{
			"error": "cannot change status from " + string(intake.Status) + " to " + string(req.Status),
		})
		return
	}

	updates := map[string]interface{}{"status": req.Status}
	if req.Notes != nil {
		updates["notes"] = *req.Notes
	}
	if req.Status == models.IntakeTaken {
		updates["actual_time"] = time.Now()
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		// Conditional update so a concurrent writer cannot double-apply
		result := tx.Model(&models.MedicineIntake{}).
			Where("id = ? AND status = ?", intake.ID, intake.Status).
			Updates(updates)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		if req.Status == models.IntakeTaken && intake.Medicine.RemainingCount > 0 {
			return tx.Model(&models.Medicine{}).
				Where("id = ?", intake.MedicineID).
				Update("remaining_count", gorm.Expr("remaining_count - 1")).Error
		}
		return nil
	})
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusConflict, gin.H{"error": "intake was updated concurrently, reload and retry"})
			return
		}
		handleError(c, http.StatusInternalServerError, "Failed to update intake", err)
		return
	}

	if req.Status == models.IntakeTaken {
		checkRefillAlert(db, *user, intake.MedicineID)
	}

	if err := db.First(&intake, intake.ID).Error; err == nil {
		c.JSON(http.StatusOK, intake)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Intake updated"})
}

// checkRefillAlert creates a refill notification and emails caregivers when
// the remaining supply crosses the refill threshold
func checkRefillAlert(db *gorm.DB, user models.User, medicineID uint) {
	var medicine models.Medicine
	if err := db.First(&medicine, medicineID).Error; err != nil {
		log.Printf("Refill check: failed to load medicine %d: %v", medicineID, err)
		return
	}
	if !medicine.NeedsRefill() {
		return
	}

	notification := models.Notification{
		UserID:  user.ID,
		Title:   "Refill needed: " + medicine.Name,
		Message: "Your supply of " + medicine.Name + " is running low. Time to arrange a refill.",
		Type:    models.NotificationTypeRefill,
		Status:  models.NotificationPending,
	}
	if err := db.Create(&notification).Error; err != nil {
		log.Printf("Refill check: failed to create notification for medicine %d: %v", medicineID, err)
	}

	var caregivers []models.Caregiver
	if err := db.Where("user_id = ? AND notifications_enabled = ?", user.ID, true).
		Find(&caregivers).Error; err != nil {
		log.Printf("Refill check: failed to load caregivers for user %d: %v", user.ID, err)
		return
	}
	if len(caregivers) == 0 {
		return
	}

	emailService := services.NewEmailService()
	if err := emailService.SendRefillAlertToCaregivers(user, medicine, caregivers); err != nil {
		log.Printf("Refill check: failed to email caregivers for medicine %d: %v", medicineID, err)
	}
}

// DeleteIntake removes one of the user's dose records
func DeleteIntake(c *gin.Context) {
	user := auth.CurrentUser(c)

	db := database.GetDB()
	var intake models.MedicineIntake
	if err := db.Joins("JOIN medicine ON medicine.id = medicine_intake.medicine_id").
		Where("medicine_intake.id = ? AND medicine.user_id = ?", c.Param("id"), user.ID).
		First(&intake).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			handleError(c, http.StatusNotFound, "Intake not found", err)
			return
		}
		handleError(c, http.StatusInternalServerError, "Failed to retrieve intake", err)
		return
	}

	if err := db.Delete(&intake).Error; err != nil {
		handleError(c, http.StatusInternalServerError, "Failed to delete intake", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Intake deleted"})
}
