package reminder

import (
	"fmt"
	"time"

	"pillpall/internal/models"

	"gorm.io/gorm"
)

// GormLedger is the Postgres-backed Ledger used in production
type GormLedger struct {
	db *gorm.DB
}

// NewGormLedger creates a ledger on top of the given database handle
func NewGormLedger(db *gorm.DB) *GormLedger {
	return &GormLedger{db: db}
}

func (l *GormLedger) ActiveSchedules() ([]models.MedicineSchedule, error) {
	var schedules []models.MedicineSchedule
	if err := l.db.Where("is_active = ?", true).Find(&schedules).Error; err != nil {
		return nil, fmt.Errorf("failed to load active schedules: %w", err)
	}
	return schedules, nil
}

func (l *GormLedger) HasIntakeAt(medicineID uint, at time.Time) (bool, error) {
	var count int64
	if err := l.db.Model(&models.MedicineIntake{}).
		Where("medicine_id = ? AND scheduled_time = ?", medicineID, at).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check existing intake: %w", err)
	}
	return count > 0, nil
}

func (l *GormLedger) CreateIntake(intake *models.MedicineIntake) error {
	if err := l.db.Create(intake).Error; err != nil {
		return fmt.Errorf("failed to create intake: %w", err)
	}
	return nil
}

func (l *GormLedger) DuePending(from, to time.Time) ([]DueReminder, error) {
	var intakes []models.MedicineIntake
	if err := l.db.Preload("Medicine").
		Where("scheduled_time >= ? AND scheduled_time <= ? AND status = ?",
			from, to, models.IntakePending).
		Order("scheduled_time asc, id asc").
		Find(&intakes).Error; err != nil {
		return nil, fmt.Errorf("failed to query due intakes: %w", err)
	}

	if len(intakes) == 0 {
		return nil, nil
	}

	// Resolve all owning users in one query
	userIDs := make([]uint, 0, len(intakes))
	for _, intake := range intakes {
		userIDs = append(userIDs, intake.Medicine.UserID)
	}
	var users []models.User
	if err := l.db.Where("id IN ?", userIDs).Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to load users for due intakes: %w", err)
	}
	usersByID := make(map[uint]models.User, len(users))
	for _, u := range users {
		usersByID[u.ID] = u
	}

	due := make([]DueReminder, 0, len(intakes))
	for _, intake := range intakes {
		user, ok := usersByID[intake.Medicine.UserID]
		if !ok {
			// Owner deleted; nothing to notify
			continue
		}
		due = append(due, DueReminder{
			Intake:   intake,
			Medicine: intake.Medicine,
			User:     user,
		})
	}
	return due, nil
}

func (l *GormLedger) MarkNotified(intakeID uint) (bool, error) {
	result := l.db.Model(&models.MedicineIntake{}).
		Where("id = ? AND status = ?", intakeID, models.IntakePending).
		Update("status", models.IntakeNotified)
	if result.Error != nil {
		return false, fmt.Errorf("failed to mark intake %d notified: %w", intakeID, result.Error)
	}
	return result.RowsAffected > 0, nil
}

func (l *GormLedger) MarkSkipped(intakeID uint, notes string) (bool, error) {
	result := l.db.Model(&models.MedicineIntake{}).
		Where("id = ? AND status = ?", intakeID, models.IntakePending).
		Updates(map[string]interface{}{
			"status": models.IntakeSkipped,
			"notes":  notes,
		})
	if result.Error != nil {
		return false, fmt.Errorf("failed to mark intake %d skipped: %w", intakeID, result.Error)
	}
	return result.RowsAffected > 0, nil
}

func (l *GormLedger) SaveNotification(n *models.Notification) error {
	if err := l.db.Create(n).Error; err != nil {
		return fmt.Errorf("failed to save notification: %w", err)
	}
	return nil
}
