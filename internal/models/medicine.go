package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Medicine represents a medication registered by a user
type Medicine struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	UserID          uint      `gorm:"not null;index" json:"-"`
	Name            string    `gorm:"size:200;not null" json:"name"`
	Dosage          string    `gorm:"size:100;not null" json:"dosage"`
	MedType         string    `gorm:"size:50" json:"type"`
	RemainingCount  int       `gorm:"not null;default:0" json:"remaining_count"`
	RefillThreshold int       `gorm:"not null;default:0" json:"refill_threshold"`
	Instructions    string    `gorm:"type:text" json:"instructions"`
	SideEffects     string    `gorm:"type:text" json:"side_effects"`
	CreatedAt       time.Time `gorm:"not null" json:"created_at"`

	Schedules []MedicineSchedule `gorm:"foreignKey:MedicineID" json:"schedules"`
}

// BeforeCreate hook is called before creating a new medicine
func (m *Medicine) BeforeCreate(tx *gorm.DB) error {
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now()
	}
	return nil
}

// NeedsRefill reports whether the remaining supply has reached the
// user's refill threshold.
func (m *Medicine) NeedsRefill() bool {
	return m.RefillThreshold > 0 && m.RemainingCount <= m.RefillThreshold
}

// TableName specifies the table name for the Medicine model
func (Medicine) TableName() string {
	return "medicine"
}

// WeekdayList represents a set of ISO weekday numbers (1=Monday .. 7=Sunday)
// stored as JSONB
type WeekdayList []int

func (w WeekdayList) Value() (driver.Value, error) {
	if w == nil {
		return "[]", nil
	}
	return json.Marshal(w)
}

func (w *WeekdayList) Scan(value interface{}) error {
	if value == nil {
		*w = make([]int, 0)
		return nil
	}

	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, w)
	case string:
		return json.Unmarshal([]byte(v), w)
	default:
		return fmt.Errorf("unsupported type for WeekdayList: %T", value)
	}
}

// Contains reports whether the given ISO weekday is in the set
func (w WeekdayList) Contains(day int) bool {
	for _, d := range w {
		if d == day {
			return true
		}
	}
	return false
}

// Validate checks that the set is non-empty and every entry is a valid
// ISO weekday
func (w WeekdayList) Validate() error {
	if len(w) == 0 {
		return fmt.Errorf("days_of_week must not be empty")
	}
	for _, d := range w {
		if d < 1 || d > 7 {
			return fmt.Errorf("invalid weekday %d: must be 1-7", d)
		}
	}
	return nil
}

// MedicineSchedule represents a recurring weekly dosing rule for a medicine
type MedicineSchedule struct {
	ID         uint        `gorm:"primaryKey" json:"id"`
	MedicineID uint        `gorm:"not null;index" json:"medicine"`
	TimeOfDay  string      `gorm:"size:5;not null" json:"time_of_day"` // HH:MM
	DaysOfWeek WeekdayList `gorm:"type:jsonb;default:'[]'" json:"days_of_week"`
	IsActive   bool        `gorm:"not null;default:true" json:"is_active"`
}

// ParseTimeOfDay parses the rule's HH:MM wall-clock value
func (s *MedicineSchedule) ParseTimeOfDay() (hour, minute int, err error) {
	if _, err := fmt.Sscanf(s.TimeOfDay, "%2d:%2d", &hour, &minute); err != nil {
		return 0, 0, fmt.Errorf("invalid time_of_day %q: %w", s.TimeOfDay, err)
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("invalid time_of_day %q: out of range", s.TimeOfDay)
	}
	return hour, minute, nil
}

// TableName specifies the table name for the MedicineSchedule model
func (MedicineSchedule) TableName() string {
	return "medicine_schedule"
}

// CreateMedicineRequest represents the data needed to register a medicine
type CreateMedicineRequest struct {
	Name            string `json:"name" binding:"required,max=200"`
	Dosage          string `json:"dosage" binding:"required,max=100"`
	MedType         string `json:"type" binding:"omitempty,max=50"`
	RemainingCount  int    `json:"remaining_count" binding:"omitempty,min=0"`
	RefillThreshold int    `json:"refill_threshold" binding:"omitempty,min=0"`
	Instructions    string `json:"instructions"`
	SideEffects     string `json:"side_effects"`
}

// CreateScheduleRequest represents the data needed to create a dosing rule
type CreateScheduleRequest struct {
	MedicineID uint        `json:"medicine" binding:"required"`
	TimeOfDay  string      `json:"time_of_day" binding:"required,len=5"`
	DaysOfWeek WeekdayList `json:"days_of_week" binding:"required"`
	IsActive   *bool       `json:"is_active"`
}
