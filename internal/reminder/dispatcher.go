package reminder

import (
	"context"
	"fmt"
	"log"
	"time"

	"pillpall/internal/models"
)

// Sender delivers one rendered reminder to a phone number. Implementations
// wrap the external SMS gateway.
type Sender interface {
	Send(ctx context.Context, phone, message string) error
}

// OptOutPolicy controls what happens to a due intake whose owner cannot
// receive SMS at reminder time.
type OptOutPolicy string

const (
	// OptOutRetry leaves the intake pending, so a user who opts in while
	// the dose is still inside a lookahead window is notified after all.
	OptOutRetry OptOutPolicy = "retry"
	// OptOutSkip marks the intake skipped so it is never selected again.
	OptOutSkip OptOutPolicy = "skip"
)

// Dispatcher renders and sends a single reminder and records the outcome
type Dispatcher struct {
	ledger       Ledger
	sender       Sender
	sendTimeout  time.Duration
	optOutPolicy OptOutPolicy
}

// NewDispatcher creates a dispatcher. Each send is bounded by sendTimeout
// so a slow gateway cannot stall a whole tick.
func NewDispatcher(ledger Ledger, sender Sender, sendTimeout time.Duration, policy OptOutPolicy) *Dispatcher {
	if policy != OptOutSkip {
		policy = OptOutRetry
	}
	return &Dispatcher{
		ledger:       ledger,
		sender:       sender,
		sendTimeout:  sendTimeout,
		optOutPolicy: policy,
	}
}

// RenderMessage builds the reminder text for a medicine due at the given time
func RenderMessage(medicineName string, scheduled time.Time) string {
	return fmt.Sprintf("Reminder: Take your medicine %s at %s", medicineName, scheduled.Format("15:04"))
}

// Dispatch sends one reminder and updates the ledger. The intake is marked
// notified only after a successful send; on any failure it stays pending so
// the next tick retries it while it remains inside the lookahead window.
func (d *Dispatcher) Dispatch(ctx context.Context, due DueReminder) error {
	if !due.User.CanReceiveSMS() {
		if d.optOutPolicy == OptOutSkip {
			if _, err := d.ledger.MarkSkipped(due.Intake.ID, "reminders disabled at dispatch time"); err != nil {
				return err
			}
			log.Printf("Skipped intake %d: user %d has SMS reminders disabled", due.Intake.ID, due.User.ID)
			return nil
		}
		// Never mark an intake notified for a reminder that was not sent
		log.Printf("Leaving intake %d pending: user %d has SMS reminders disabled", due.Intake.ID, due.User.ID)
		return nil
	}

	message := RenderMessage(due.Medicine.Name, due.Intake.ScheduledTime)

	sendCtx, cancel := context.WithTimeout(ctx, d.sendTimeout)
	defer cancel()
	if err := d.sender.Send(sendCtx, due.User.PhoneNumber, message); err != nil {
		return fmt.Errorf("send failed for intake %d: %w", due.Intake.ID, err)
	}

	notified, err := d.ledger.MarkNotified(due.Intake.ID)
	if err != nil {
		return err
	}
	if !notified {
		// The intake left pending between selection and now (user action
		// or a concurrent worker); nothing further to record.
		log.Printf("Intake %d no longer pending after send, leaving status untouched", due.Intake.ID)
		return nil
	}

	scheduled := due.Intake.ScheduledTime
	notification := models.Notification{
		UserID:       due.User.ID,
		Title:        "Medication Reminder",
		Message:      message,
		Type:         models.NotificationTypeReminder,
		Status:       models.NotificationPending,
		ScheduledFor: &scheduled,
	}
	if err := d.ledger.SaveNotification(&notification); err != nil {
		// The SMS went out and the intake is notified; the in-app entry
		// is best effort.
		log.Printf("Failed to record notification for intake %d: %v", due.Intake.ID, err)
	}

	return nil
}
