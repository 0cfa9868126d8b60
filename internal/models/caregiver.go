package models

import (
	"time"

	"gorm.io/gorm"
)

// Caregiver represents a secondary contact for a user. Caregivers with
// notifications enabled receive email alerts (e.g. refill warnings).
type Caregiver struct {
	ID                   uint      `gorm:"primaryKey" json:"id"`
	UserID               uint      `gorm:"not null;index" json:"-"`
	Name                 string    `gorm:"size:200;not null" json:"name"`
	Relationship         string    `gorm:"size:100" json:"relationship"`
	PhoneNumber          string    `gorm:"size:50" json:"phone_number"`
	Email                string    `gorm:"size:255" json:"email"`
	NotificationsEnabled bool      `gorm:"not null;default:true" json:"notifications_enabled"`
	EmergencyContact     bool      `gorm:"not null;default:false" json:"emergency_contact"`
	CreatedAt            time.Time `gorm:"not null" json:"created_at"`
}

// BeforeCreate hook is called before creating a new caregiver
func (cg *Caregiver) BeforeCreate(tx *gorm.DB) error {
	if cg.CreatedAt.IsZero() {
		cg.CreatedAt = time.Now()
	}
	return nil
}

// CanReceiveEmail reports whether the caregiver should get email alerts
func (cg *Caregiver) CanReceiveEmail() bool {
	return cg.NotificationsEnabled && cg.Email != ""
}

// TableName specifies the table name for the Caregiver model
func (Caregiver) TableName() string {
	return "caregiver"
}

// CreateCaregiverRequest represents the data needed to add a caregiver
type CreateCaregiverRequest struct {
	Name                 string `json:"name" binding:"required,max=200"`
	Relationship         string `json:"relationship" binding:"omitempty,max=100"`
	PhoneNumber          string `json:"phone_number" binding:"omitempty,max=50"`
	Email                string `json:"email" binding:"omitempty,email"`
	NotificationsEnabled *bool  `json:"notifications_enabled"`
	EmergencyContact     *bool  `json:"emergency_contact"`
}

// UpdateCaregiverRequest represents editable caregiver fields
type UpdateCaregiverRequest struct {
	Name                 *string `json:"name" binding:"omitempty,max=200"`
	Relationship         *string `json:"relationship" binding:"omitempty,max=100"`
	PhoneNumber          *string `json:"phone_number" binding:"omitempty,max=50"`
	Email                *string `json:"email" binding:"omitempty,email"`
	NotificationsEnabled *bool   `json:"notifications_enabled"`
	EmergencyContact     *bool   `json:"emergency_contact"`
}
