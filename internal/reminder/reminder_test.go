package reminder

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"pillpall/internal/models"
)

// -------------------------
// In-memory ledger
// -------------------------

var errLedgerDown = errors.New("ledger: store unavailable")

type fakeLedger struct {
	schedules     []models.MedicineSchedule
	medicines     map[uint]models.Medicine
	users         map[uint]models.User
	intakes       map[uint]*models.MedicineIntake
	notifications []models.Notification
	nextIntakeID  uint

	failDuePending bool
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{
		medicines: map[uint]models.Medicine{},
		users:     map[uint]models.User{},
		intakes:   map[uint]*models.MedicineIntake{},
	}
}

func (l *fakeLedger) addUser(u models.User) {
	l.users[u.ID] = u
}

func (l *fakeLedger) addMedicine(m models.Medicine) {
	l.medicines[m.ID] = m
}

func (l *fakeLedger) addSchedule(s models.MedicineSchedule) {
	l.schedules = append(l.schedules, s)
}

func (l *fakeLedger) addIntake(i models.MedicineIntake) *models.MedicineIntake {
	l.nextIntakeID++
	i.ID = l.nextIntakeID
	l.intakes[i.ID] = &i
	return &i
}

func (l *fakeLedger) ActiveSchedules() ([]models.MedicineSchedule, error) {
	var active []models.MedicineSchedule
	for _, s := range l.schedules {
		if s.IsActive {
			active = append(active, s)
		}
	}
	return active, nil
}

func (l *fakeLedger) HasIntakeAt(medicineID uint, at time.Time) (bool, error) {
	for _, i := range l.intakes {
		if i.MedicineID == medicineID && i.ScheduledTime.Equal(at) {
			return true, nil
		}
	}
	return false, nil
}

func (l *fakeLedger) CreateIntake(intake *models.MedicineIntake) error {
	for _, existing := range l.intakes {
		if existing.MedicineID == intake.MedicineID && existing.ScheduledTime.Equal(intake.ScheduledTime) {
			return fmt.Errorf("duplicate intake for medicine %d", intake.MedicineID)
		}
	}
	l.nextIntakeID++
	intake.ID = l.nextIntakeID
	copied := *intake
	l.intakes[intake.ID] = &copied
	return nil
}

func (l *fakeLedger) DuePending(from, to time.Time) ([]DueReminder, error) {
	if l.failDuePending {
		return nil, errLedgerDown
	}

	var due []DueReminder
	for _, i := range l.intakes {
		if i.Status != models.IntakePending {
			continue
		}
		if i.ScheduledTime.Before(from) || i.ScheduledTime.After(to) {
			continue
		}
		medicine := l.medicines[i.MedicineID]
		due = append(due, DueReminder{
			Intake:   *i,
			Medicine: medicine,
			User:     l.users[medicine.UserID],
		})
	}
	sort.Slice(due, func(a, b int) bool {
		if due[a].Intake.ScheduledTime.Equal(due[b].Intake.ScheduledTime) {
			return due[a].Intake.ID < due[b].Intake.ID
		}
		return due[a].Intake.ScheduledTime.Before(due[b].Intake.ScheduledTime)
	})
	return due, nil
}

func (l *fakeLedger) MarkNotified(intakeID uint) (bool, error) {
	i, ok := l.intakes[intakeID]
	if !ok || i.Status != models.IntakePending {
		return false, nil
	}
	i.Status = models.IntakeNotified
	return true, nil
}

func (l *fakeLedger) MarkSkipped(intakeID uint, notes string) (bool, error) {
	i, ok := l.intakes[intakeID]
	if !ok || i.Status != models.IntakePending {
		return false, nil
	}
	i.Status = models.IntakeSkipped
	i.Notes = notes
	return true, nil
}

func (l *fakeLedger) SaveNotification(n *models.Notification) error {
	l.notifications = append(l.notifications, *n)
	return nil
}

func (l *fakeLedger) intakesByTime() []*models.MedicineIntake {
	out := make([]*models.MedicineIntake, 0, len(l.intakes))
	for _, i := range l.intakes {
		out = append(out, i)
	}
	sort.Slice(out, func(a, b int) bool {
		return out[a].ScheduledTime.Before(out[b].ScheduledTime)
	})
	return out
}

// -------------------------
// Fake sender
// -------------------------

type fakeSender struct {
	sent    []string // "phone|message"
	failFor map[string]error
	failAll error
}

func newFakeSender() *fakeSender {
	return &fakeSender{failFor: map[string]error{}}
}

func (s *fakeSender) Send(ctx context.Context, phone, message string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.failAll != nil {
		return s.failAll
	}
	if err, ok := s.failFor[phone]; ok {
		return err
	}
	s.sent = append(s.sent, phone+"|"+message)
	return nil
}

// -------------------------
// Shared fixtures
// -------------------------

// monday is a known Monday used as the base of the time-sensitive tests
var monday = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func seedUserAndMedicine(l *fakeLedger, smsEnabled bool) (models.User, models.Medicine) {
	user := models.User{
		ID:          1,
		Email:       "ola@example.com",
		PhoneNumber: "+15550001111",
		SMSEnabled:  smsEnabled,
	}
	medicine := models.Medicine{
		ID:     10,
		UserID: user.ID,
		Name:   "Aspirin",
		Dosage: "100mg",
	}
	l.addUser(user)
	l.addMedicine(medicine)
	return user, medicine
}

func newTestWorker(l *fakeLedger, s Sender, lookahead time.Duration) *Worker {
	return &Worker{
		ledger:     l,
		expander:   NewExpander(l, 7),
		dispatcher: NewDispatcher(l, s, time.Second, OptOutRetry),
		interval:   5 * time.Minute,
		lookahead:  lookahead,
		now:        func() time.Time { return monday },
	}
}
