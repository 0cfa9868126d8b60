package handlers

import (
	"net/http"

	"pillpall/internal/auth"
	"pillpall/internal/database"
	"pillpall/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// GetMedicines lists the user's medicines, newest first, with schedules
func GetMedicines(c *gin.Context) {
	user := auth.CurrentUser(c)

	db := database.GetDB()
	var medicines []models.Medicine
	if err := db.Preload("Schedules").
		Where("user_id = ?", user.ID).
		Order("id desc").
		Find(&medicines).Error; err != nil {
		handleError(c, http.StatusInternalServerError, "Failed to retrieve medicines", err)
		return
	}

	c.JSON(http.StatusOK, medicines)
}

// GetMedicine retrieves one of the user's medicines
func GetMedicine(c *gin.Context) {
	user := auth.CurrentUser(c)

	db := database.GetDB()
	var medicine models.Medicine
	if err := db.Preload("Schedules").
		Where("id = ? AND user_id = ?", c.Param("id"), user.ID).
		First(&medicine).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			handleError(c, http.StatusNotFound, "Medicine not found", err)
			return
		}
		handleError(c, http.StatusInternalServerError, "Failed to retrieve medicine", err)
		return
	}

	c.JSON(http.StatusOK, medicine)
}

// CreateMedicine registers a new medicine for the user
func CreateMedicine(c *gin.Context) {
	user := auth.CurrentUser(c)

	var req models.CreateMedicineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleError(c, http.StatusBadRequest, "Invalid input", err)
		return
	}

	medicine := models.Medicine{
		UserID:          user.ID,
		Name:            req.Name,
		Dosage:          req.Dosage,
		MedType:         req.MedType,
		RemainingCount:  req.RemainingCount,
		RefillThreshold: req.RefillThreshold,
		Instructions:    req.Instructions,
		SideEffects:     req.SideEffects,
	}

	db := database.GetDB()
	if err := db.Create(&medicine).Error; err != nil {
		handleError(c, http.StatusInternalServerError, "Failed to create medicine", err)
		return
	}

	c.JSON(http.StatusCreated, medicine)
}

// UpdateMedicine updates one of the user's medicines
func UpdateMedicine(c *gin.Context) {
	user := auth.CurrentUser(c)

	db := database.GetDB()
	var medicine models.Medicine
	if err := db.Where("id = ? AND user_id = ?", c.Param("id"), user.ID).
		First(&medicine).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			handleError(c, http.StatusNotFound, "Medicine not found", err)
			return
		}
		handleError(c, http.StatusInternalServerError, "Failed to retrieve medicine", err)
		return
	}

	var req models.CreateMedicineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleError(c, http.StatusBadRequest, "Invalid input", err)
		return
	}

	updates := map[string]interface{}{
		"name":             req.Name,
		"dosage":           req.Dosage,
		"med_type":         req.MedType,
		"remaining_count":  req.RemainingCount,
		"refill_threshold": req.RefillThreshold,
		"instructions":     req.Instructions,
		"side_effects":     req.SideEffects,
	}
	if err := db.Model(&medicine).Updates(updates).Error; err != nil {
		handleError(c, http.StatusInternalServerError, "Failed to update medicine", err)
		return
	}

	c.JSON(http.StatusOK, medicine)
}

// DeleteMedicine removes one of the user's medicines along with its
// schedules and intakes
func DeleteMedicine(c *gin.Context) {
	user := auth.CurrentUser(c)

	db := database.GetDB()
	var medicine models.Medicine
	if err := db.Where("id = ? AND user_id = ?", c.Param("id"), user.ID).
		First(&medicine).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			handleError(c, http.StatusNotFound, "Medicine not found", err)
			return
		}
		handleError(c, http.StatusInternalServerError, "Failed to retrieve medicine", err)
		return
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("medicine_id = ?", medicine.ID).Delete(&models.MedicineIntake{}).Error; err != nil {
			return err
		}
		if err := tx.Where("medicine_id = ?", medicine.ID).Delete(&models.MedicineSchedule{}).Error; err != nil {
			return err
		}
		return tx.Delete(&medicine).Error
	})
	if err != nil {
		handleError(c, http.StatusInternalServerError, "Failed to delete medicine", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Medicine deleted"})
}
