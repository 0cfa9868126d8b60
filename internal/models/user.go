package models

import (
	"time"

	"gorm.io/gorm"
)

// User represents a registered user of the system
type User struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Email       string         `gorm:"uniqueIndex;size:255;not null" json:"email"`
	HashedPass  string         `gorm:"size:255;not null" json:"-"`
	FirstName   string         `gorm:"size:100" json:"first_name"`
	LastName    string         `gorm:"size:100" json:"last_name"`
	PhoneNumber string         `gorm:"size:15" json:"phone_number"`
	SMSEnabled  bool           `gorm:"not null;default:false" json:"sms_enabled"`
	LastLogin   time.Time      `gorm:"not null" json:"last_login"`
	CreatedAt   time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	Medicines     []Medicine     `gorm:"foreignKey:UserID" json:"-"`
	Caregivers    []Caregiver    `gorm:"foreignKey:UserID" json:"-"`
	Notifications []Notification `gorm:"foreignKey:UserID" json:"-"`
}

// BeforeCreate hook is called before creating a new user
func (u *User) BeforeCreate(tx *gorm.DB) error {
	now := time.Now()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	if u.UpdatedAt.IsZero() {
		u.UpdatedAt = now
	}
	if u.LastLogin.IsZero() {
		u.LastLogin = now
	}
	return nil
}

// BeforeSave hook is called before saving the user
func (u *User) BeforeSave(tx *gorm.DB) error {
	u.UpdatedAt = time.Now()
	return nil
}

// CanReceiveSMS reports whether the user has opted in to SMS reminders
// and has a delivery address on file.
func (u *User) CanReceiveSMS() bool {
	return u.SMSEnabled && u.PhoneNumber != ""
}

// TableName specifies the table name for the User model
func (User) TableName() string {
	return "app_user"
}

// SignupRequest represents the data needed to create a new user
type SignupRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=6"`
	FullName    string `json:"full_name" binding:"required,max=200"`
	PhoneNumber string `json:"phone_number" binding:"omitempty,max=15"`
}

// LoginRequest represents the data needed for login
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// UpdateUserRequest represents the editable profile fields; SMSEnabled is
// the opt-in switch the reminder dispatcher checks before sending.
type UpdateUserRequest struct {
	FirstName   *string `json:"first_name" binding:"omitempty,max=100"`
	LastName    *string `json:"last_name" binding:"omitempty,max=100"`
	PhoneNumber *string `json:"phone_number" binding:"omitempty,max=15"`
	SMSEnabled  *bool   `json:"sms_enabled"`
}
