package reminder

import (
	"time"

	"pillpall/internal/models"
)

// DueReminder couples a pending intake with the medicine and user needed
// to render and deliver its reminder.
type DueReminder struct {
	Intake   models.MedicineIntake
	Medicine models.Medicine
	User     models.User
}

// Ledger is the persistence surface the reminder worker runs against.
// All status writes are conditional on the row still being pending, which
// is what makes a notification happen at most once per intake.
type Ledger interface {
	// ActiveSchedules returns every dosing rule with is_active = true.
	ActiveSchedules() ([]models.MedicineSchedule, error)

	// HasIntakeAt reports whether an intake already exists for the
	// medicine at the exact scheduled timestamp.
	HasIntakeAt(medicineID uint, at time.Time) (bool, error)

	// CreateIntake persists a new pending intake.
	CreateIntake(intake *models.MedicineIntake) error

	// DuePending returns pending intakes scheduled inside [from, to],
	// earliest first, with their medicine and owning user resolved.
	DuePending(from, to time.Time) ([]DueReminder, error)

	// MarkNotified moves an intake from pending to notified. It returns
	// false without error when the intake is no longer pending.
	MarkNotified(intakeID uint) (bool, error)

	// MarkSkipped moves an intake from pending to skipped. It returns
	// false without error when the intake is no longer pending.
	MarkSkipped(intakeID uint, notes string) (bool, error)

	// SaveNotification records a user-facing notification entry.
	SaveNotification(n *models.Notification) error
}
