package models

import (
	"time"

	"gorm.io/gorm"
)

// Notification statuses
const (
	NotificationPending = "pending"
	NotificationRead    = "read"
)

// Notification types created by the system
const (
	NotificationTypeReminder = "medication_reminder"
	NotificationTypeRefill   = "refill_alert"
	NotificationTypeTest     = "test"
)

// Notification represents a user-facing message, created either by the
// reminder worker as a dispatch side effect or directly through the API
type Notification struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	UserID       uint       `gorm:"not null;index" json:"-"`
	Title        string     `gorm:"size:200;not null" json:"title"`
	Message      string     `gorm:"type:text;not null" json:"message"`
	Type         string     `gorm:"size:50" json:"type"`
	Status       string     `gorm:"size:20;not null;default:'pending'" json:"status"`
	ScheduledFor *time.Time `json:"scheduled_for"`
	CreatedAt    time.Time  `gorm:"not null" json:"created_at"`
}

// BeforeCreate hook is called before creating a new notification
func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	if n.Status == "" {
		n.Status = NotificationPending
	}
	return nil
}

// TableName specifies the table name for the Notification model
func (Notification) TableName() string {
	return "notification"
}

// CreateNotificationRequest represents the data needed to create a
// notification through the API
type CreateNotificationRequest struct {
	Title        string     `json:"title" binding:"required,max=200"`
	Message      string     `json:"message" binding:"required"`
	Type         string     `json:"type" binding:"omitempty,max=50"`
	ScheduledFor *time.Time `json:"scheduled_for"`
}
