package reminder

import (
	"context"
	"strings"
	"testing"
	"time"

	"pillpall/internal/models"
)

func TestTickSelectsOnlyIntakesInsideWindow(t *testing.T) {
	ledger := newFakeLedger()
	_, medicine := seedUserAndMedicine(ledger, true)

	nineAM := monday.Add(9 * time.Hour)
	before := ledger.addIntake(models.MedicineIntake{ // 08:59, already past
		MedicineID:    medicine.ID,
		ScheduledTime: nineAM.Add(-time.Minute),
		Status:        models.IntakePending,
	})
	inside := ledger.addIntake(models.MedicineIntake{ // 09:15, due
		MedicineID:    medicine.ID,
		ScheduledTime: nineAM.Add(15 * time.Minute),
		Status:        models.IntakePending,
	})
	after := ledger.addIntake(models.MedicineIntake{ // 09:31, outside the window
		MedicineID:    medicine.ID,
		ScheduledTime: nineAM.Add(31 * time.Minute),
		Status:        models.IntakePending,
	})

	sender := newFakeSender()
	worker := newTestWorker(ledger, sender, 30*time.Minute)
	if err := worker.Tick(context.Background(), nineAM); err != nil {
		t.Fatalf("Tick returned error: %v", err)
	}

	if len(sender.sent) != 1 {
		t.Fatalf("expected exactly 1 send, got %d", len(sender.sent))
	}
	if got := ledger.intakes[inside.ID].Status; got != models.IntakeNotified {
		t.Errorf("09:15 intake status = %s, want notified", got)
	}
	if got := ledger.intakes[before.ID].Status; got != models.IntakePending {
		t.Errorf("08:59 intake status = %s, want pending", got)
	}
	if got := ledger.intakes[after.ID].Status; got != models.IntakePending {
		t.Errorf("09:31 intake status = %s, want pending", got)
	}
}

func TestTickIsolatesDispatchFailures(t *testing.T) {
	ledger := newFakeLedger()
	user1, med1 := seedUserAndMedicine(ledger, true)
	_ = user1

	// Second user whose sends fail
	user2 := models.User{ID: 2, Email: "kim@example.com", PhoneNumber: "+15550002222", SMSEnabled: true}
	med2 := models.Medicine{ID: 20, UserID: user2.ID, Name: "Ibuprofen", Dosage: "200mg"}
	ledger.addUser(user2)
	ledger.addMedicine(med2)

	nineAM := monday.Add(9 * time.Hour)
	first := ledger.addIntake(models.MedicineIntake{
		MedicineID:    med1.ID,
		ScheduledTime: nineAM.Add(5 * time.Minute),
		Status:        models.IntakePending,
	})
	failing := ledger.addIntake(models.MedicineIntake{
		MedicineID:    med2.ID,
		ScheduledTime: nineAM.Add(10 * time.Minute),
		Status:        models.IntakePending,
	})
	third := ledger.addIntake(models.MedicineIntake{
		MedicineID:    med1.ID,
		ScheduledTime: nineAM.Add(15 * time.Minute),
		Status:        models.IntakePending,
	})

	sender := newFakeSender()
	sender.failFor[user2.PhoneNumber] = context.DeadlineExceeded

	worker := newTestWorker(ledger, sender, 30*time.Minute)
	if err := worker.Tick(context.Background(), nineAM); err != nil {
		t.Fatalf("Tick returned error: %v", err)
	}

	if got := ledger.intakes[first.ID].Status; got != models.IntakeNotified {
		t.Errorf("first intake status = %s, want notified", got)
	}
	if got := ledger.intakes[failing.ID].Status; got != models.IntakePending {
		t.Errorf("failing intake status = %s, want pending for retry", got)
	}
	if got := ledger.intakes[third.ID].Status; got != models.IntakeNotified {
		t.Errorf("third intake status = %s, want notified despite sibling failure", got)
	}
}

func TestRepeatedTicksNotifyAtMostOnce(t *testing.T) {
	ledger := newFakeLedger()
	_, medicine := seedUserAndMedicine(ledger, true)

	nineAM := monday.Add(9 * time.Hour)
	ledger.addIntake(models.MedicineIntake{
		MedicineID:    medicine.ID,
		ScheduledTime: nineAM.Add(15 * time.Minute),
		Status:        models.IntakePending,
	})

	sender := newFakeSender()
	worker := newTestWorker(ledger, sender, 30*time.Minute)

	for i := 0; i < 5; i++ {
		tick := nineAM.Add(time.Duration(i) * time.Minute)
		if err := worker.Tick(context.Background(), tick); err != nil {
			t.Fatalf("tick %d returned error: %v", i, err)
		}
	}

	if len(sender.sent) != 1 {
		t.Fatalf("occurrence notified %d times across 5 ticks, want 1", len(sender.sent))
	}
}

func TestTickFailedSendIsRetriedNextTick(t *testing.T) {
	ledger := newFakeLedger()
	user, medicine := seedUserAndMedicine(ledger, true)

	nineAM := monday.Add(9 * time.Hour)
	intake := ledger.addIntake(models.MedicineIntake{
		MedicineID:    medicine.ID,
		ScheduledTime: nineAM.Add(15 * time.Minute),
		Status:        models.IntakePending,
	})

	sender := newFakeSender()
	sender.failFor[user.PhoneNumber] = context.DeadlineExceeded
	worker := newTestWorker(ledger, sender, 30*time.Minute)

	if err := worker.Tick(context.Background(), nineAM); err != nil {
		t.Fatalf("first tick returned error: %v", err)
	}
	if got := ledger.intakes[intake.ID].Status; got != models.IntakePending {
		t.Fatalf("intake status after failed tick = %s, want pending", got)
	}

	// Gateway recovers; the next tick picks the same occurrence up again
	delete(sender.failFor, user.PhoneNumber)
	if err := worker.Tick(context.Background(), nineAM.Add(5*time.Minute)); err != nil {
		t.Fatalf("second tick returned error: %v", err)
	}
	if got := ledger.intakes[intake.ID].Status; got != models.IntakeNotified {
		t.Fatalf("intake status after retry = %s, want notified", got)
	}
	if len(sender.sent) != 1 {
		t.Fatalf("expected 1 successful send, got %d", len(sender.sent))
	}
}

func TestTickAbortsWhenStoreFails(t *testing.T) {
	ledger := newFakeLedger()
	seedUserAndMedicine(ledger, true)
	ledger.failDuePending = true

	worker := newTestWorker(ledger, newFakeSender(), 30*time.Minute)
	if err := worker.Tick(context.Background(), monday); err == nil {
		t.Fatal("expected a tick-fatal error when the store is unavailable")
	}
}

func TestTickEndToEnd(t *testing.T) {
	ledger := newFakeLedger()
	_, medicine := seedUserAndMedicine(ledger, true)

	ledger.addSchedule(models.MedicineSchedule{
		ID:         100,
		MedicineID: medicine.ID,
		TimeOfDay:  "08:00",
		DaysOfWeek: models.WeekdayList{1, 3, 5},
		IsActive:   true,
	})

	// Tick at Monday 07:45 with a 30 minute lookahead: expansion creates
	// the Mon/Wed/Fri occurrences, selection picks up Monday 08:00 only
	tick := monday.Add(7*time.Hour + 45*time.Minute)
	sender := newFakeSender()
	worker := newTestWorker(ledger, sender, 30*time.Minute)
	if err := worker.Tick(context.Background(), tick); err != nil {
		t.Fatalf("Tick returned error: %v", err)
	}

	intakes := ledger.intakesByTime()
	if len(intakes) != 3 {
		t.Fatalf("expected 3 expanded intakes, got %d", len(intakes))
	}
	if intakes[0].Status != models.IntakeNotified {
		t.Errorf("Monday intake status = %s, want notified", intakes[0].Status)
	}
	for _, later := range intakes[1:] {
		if later.Status != models.IntakePending {
			t.Errorf("intake at %s status = %s, want pending", later.ScheduledTime, later.Status)
		}
	}

	if len(sender.sent) != 1 {
		t.Fatalf("expected 1 send, got %d", len(sender.sent))
	}
	if !strings.HasSuffix(sender.sent[0], "Reminder: Take your medicine Aspirin at 08:00") {
		t.Errorf("unexpected reminder text: %q", sender.sent[0])
	}
}
