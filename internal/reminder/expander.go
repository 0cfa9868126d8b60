package reminder

import (
	"errors"
	"fmt"
	"time"

	"pillpall/internal/models"
)

// ErrInvalidRule marks a schedule rule that cannot be expanded (malformed
// time of day or an empty weekday set). Such rules are skipped, not retried.
var ErrInvalidRule = errors.New("invalid schedule rule")

// Expander derives concrete pending intakes from recurring weekly schedules
type Expander struct {
	ledger      Ledger
	horizonDays int
}

// NewExpander creates an expander that materializes intakes over the next
// horizonDays days
func NewExpander(ledger Ledger, horizonDays int) *Expander {
	return &Expander{ledger: ledger, horizonDays: horizonDays}
}

// isoWeekday converts Go's Sunday-based weekday to ISO numbering
// (1=Monday .. 7=Sunday), which is how schedules store their day sets
func isoWeekday(t time.Time) int {
	wd := int(t.Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}

// Expand creates a pending intake for every slot of the rule that falls in
// [now, now+horizon] and does not already exist. Expansion never mutates
// existing rows, so re-running it is safe.
func (e *Expander) Expand(rule models.MedicineSchedule, now time.Time) (int, error) {
	if !rule.IsActive {
		return 0, nil
	}
	if err := rule.DaysOfWeek.Validate(); err != nil {
		return 0, fmt.Errorf("%w: schedule %d: %v", ErrInvalidRule, rule.ID, err)
	}
	hour, minute, err := rule.ParseTimeOfDay()
	if err != nil {
		return 0, fmt.Errorf("%w: schedule %d: %v", ErrInvalidRule, rule.ID, err)
	}

	end := now.AddDate(0, 0, e.horizonDays)
	created := 0

	for offset := 0; offset <= e.horizonDays; offset++ {
		day := now.AddDate(0, 0, offset)
		if !rule.DaysOfWeek.Contains(isoWeekday(day)) {
			continue
		}

		scheduled := time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, now.Location())
		if scheduled.Before(now) || scheduled.After(end) {
			continue
		}

		exists, err := e.ledger.HasIntakeAt(rule.MedicineID, scheduled)
		if err != nil {
			return created, err
		}
		if exists {
			continue
		}

		intake := models.MedicineIntake{
			MedicineID:    rule.MedicineID,
			ScheduleID:    rule.ID,
			ScheduledTime: scheduled,
			Status:        models.IntakePending,
		}
		if err := e.ledger.CreateIntake(&intake); err != nil {
			return created, err
		}
		created++
	}

	return created, nil
}

// ExpandAll expands every active schedule. Invalid rules are collected and
// reported together; a store failure aborts immediately.
func (e *Expander) ExpandAll(now time.Time) (int, error) {
	schedules, err := e.ledger.ActiveSchedules()
	if err != nil {
		return 0, err
	}

	total := 0
	var invalid []error
	for _, rule := range schedules {
		created, err := e.Expand(rule, now)
		total += created
		if err != nil {
			if errors.Is(err, ErrInvalidRule) {
				invalid = append(invalid, err)
				continue
			}
			return total, err
		}
	}

	return total, errors.Join(invalid...)
}
