package handlers

import (
	"log"
	"net/http"
	"strings"
	"time"

	"pillpall/internal/auth"
	"pillpall/internal/database"
	"pillpall/internal/models"
	"pillpall/internal/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// splitFullName splits a display name into first and last name the way the
// signup form expects
func splitFullName(fullName string) (first, last string) {
	fullName = strings.TrimSpace(fullName)
	if idx := strings.IndexByte(fullName, ' '); idx != -1 {
		return fullName[:idx], strings.TrimSpace(fullName[idx+1:])
	}
	return fullName, ""
}

// Signup handles new user registration
func Signup(c *gin.Context) {
	var req models.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleError(c, http.StatusBadRequest, "Invalid input", err)
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	firstName, lastName := splitFullName(req.FullName)

	hashed, err := auth.HashPassword(req.Password)
	if err != nil {
		handleError(c, http.StatusInternalServerError, "Failed to create account", err)
		return
	}

	user := models.User{
		Email:       email,
		HashedPass:  hashed,
		FirstName:   firstName,
		LastName:    lastName,
		PhoneNumber: req.PhoneNumber,
	}

	db := database.GetDB()
	if err := db.Create(&user).Error; err != nil {
		if strings.Contains(err.Error(), "duplicate key") {
			handleError(c, http.StatusConflict, "An account with this email already exists", err)
			return
		}
		handleError(c, http.StatusInternalServerError, "Failed to create account", err)
		return
	}

	logAuthEvent(c, "signup", user.Email)
	c.JSON(http.StatusCreated, user)
}

// Login handles user authentication and JWT token generation
func Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleError(c, http.StatusBadRequest, "Invalid login request", err)
		return
	}

	db := database.GetDB()
	var user models.User
	if err := db.Where("email = ?", strings.ToLower(strings.TrimSpace(req.Email))).First(&user).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			handleError(c, http.StatusUnauthorized, "Invalid email or password", err)
			return
		}
		handleError(c, http.StatusInternalServerError, "Failed to log in", err)
		return
	}

	if !auth.CheckPassword(user.HashedPass, req.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	}

	token, err := auth.GenerateToken(user.ID, user.Email)
	if err != nil {
		handleError(c, http.StatusInternalServerError, "Failed to generate token", err)
		return
	}

	db.Model(&user).Update("last_login", time.Now())
	logAuthEvent(c, "login", user.Email)

	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user":  user,
	})
}

// GetCurrentUser returns the authenticated user's profile
func GetCurrentUser(c *gin.Context) {
	user := auth.CurrentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}
	c.JSON(http.StatusOK, user)
}

// UpdateCurrentUser updates profile fields, including the SMS opt-in switch
// the reminder worker checks before sending
func UpdateCurrentUser(c *gin.Context) {
	user := auth.CurrentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	var req models.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleError(c, http.StatusBadRequest, "Invalid input", err)
		return
	}

	updates := map[string]interface{}{}
	if req.FirstName != nil {
		updates["first_name"] = *req.FirstName
	}
	if req.LastName != nil {
		updates["last_name"] = *req.LastName
	}
	if req.PhoneNumber != nil {
		updates["phone_number"] = *req.PhoneNumber
	}
	if req.SMSEnabled != nil {
		updates["sms_enabled"] = *req.SMSEnabled
	}

	if len(updates) > 0 {
		db := database.GetDB()
		if err := db.Model(user).Updates(updates).Error; err != nil {
			handleError(c, http.StatusInternalServerError, "Failed to update profile", err)
			return
		}
	}

	c.JSON(http.StatusOK, user)
}

// logAuthEvent records an auth action with the real client IP so audits
// work behind the reverse proxy
func logAuthEvent(c *gin.Context, action, email string) {
	log.Printf("%s: %s from %s", action, email, utils.GetRealClientIP(c))
}
