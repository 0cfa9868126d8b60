package models

import (
	"time"

	"gorm.io/gorm"
)

// IntakeStatus represents the lifecycle state of a scheduled dose
type IntakeStatus string

const (
	IntakePending  IntakeStatus = "pending"
	IntakeNotified IntakeStatus = "notified"
	IntakeTaken    IntakeStatus = "taken"
	IntakeMissed   IntakeStatus = "missed"
	IntakeSkipped  IntakeStatus = "skipped"
)

// intakeTransitions defines the allowed status transitions. The reminder
// worker only ever performs pending -> notified; everything else is a
// user action through the API.
var intakeTransitions = map[IntakeStatus][]IntakeStatus{
	IntakePending:  {IntakeNotified, IntakeTaken, IntakeMissed, IntakeSkipped},
	IntakeNotified: {IntakeTaken, IntakeMissed},
}

// CanTransition reports whether moving from one status to another is allowed
func CanTransition(from, to IntakeStatus) bool {
	for _, next := range intakeTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// ValidIntakeStatus reports whether the given value is a known status
func ValidIntakeStatus(s IntakeStatus) bool {
	switch s {
	case IntakePending, IntakeNotified, IntakeTaken, IntakeMissed, IntakeSkipped:
		return true
	}
	return false
}

// MedicineIntake represents one concrete scheduled dose of a medicine.
// The unique index on (medicine_id, scheduled_time) is what makes schedule
// expansion safe to re-run: the same slot can never produce two rows.
type MedicineIntake struct {
	ID            uint         `gorm:"primaryKey" json:"id"`
	MedicineID    uint         `gorm:"not null;uniqueIndex:idx_intake_slot" json:"medicine"`
	ScheduleID    uint         `gorm:"index" json:"-"`
	ScheduledTime time.Time    `gorm:"not null;index;uniqueIndex:idx_intake_slot" json:"scheduled_time"`
	ActualTime    *time.Time   `json:"actual_time"`
	Status        IntakeStatus `gorm:"size:20;not null;default:'pending';index" json:"status"`
	Notes         string       `gorm:"type:text" json:"notes"`
	CreatedAt     time.Time    `gorm:"not null" json:"created_at"`

	Medicine Medicine `gorm:"foreignKey:MedicineID" json:"-"`
}

// BeforeCreate hook is called before creating a new intake
func (i *MedicineIntake) BeforeCreate(tx *gorm.DB) error {
	if i.CreatedAt.IsZero() {
		i.CreatedAt = time.Now()
	}
	if i.Status == "" {
		i.Status = IntakePending
	}
	return nil
}

// TableName specifies the table name for the MedicineIntake model
func (MedicineIntake) TableName() string {
	return "medicine_intake"
}

// CreateIntakeRequest represents the data needed to record a dose manually
type CreateIntakeRequest struct {
	MedicineID    uint      `json:"medicine" binding:"required"`
	ScheduledTime time.Time `json:"scheduled_time" binding:"required"`
	Notes         string    `json:"notes"`
}

// UpdateIntakeRequest represents a user action on a dose (taking, missing
// or skipping it)
type UpdateIntakeRequest struct {
	Status IntakeStatus `json:"status" binding:"required"`
	Notes  *string      `json:"notes"`
}
