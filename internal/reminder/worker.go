package reminder

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/robfig/cron/v3"
)

// Worker is the periodic driver for the reminder cycle: expand schedules,
// select due doses, dispatch reminders.
type Worker struct {
	ledger     Ledger
	expander   *Expander
	dispatcher *Dispatcher
	interval   time.Duration
	lookahead  time.Duration
	cron       *cron.Cron
	now        func() time.Time
}

// NewWorker builds a worker configured from the environment:
// REMINDER_INTERVAL (default 5m), REMINDER_LOOKAHEAD (default 30m),
// REMINDER_HORIZON_DAYS (default 7), SMS_TIMEOUT (default 10s),
// REMINDER_OPTOUT_POLICY (retry|skip, default retry).
func NewWorker(ledger Ledger, sender Sender) *Worker {
	interval := envDuration("REMINDER_INTERVAL", 5*time.Minute)
	lookahead := envDuration("REMINDER_LOOKAHEAD", 30*time.Minute)
	horizonDays := envInt("REMINDER_HORIZON_DAYS", 7)
	sendTimeout := envDuration("SMS_TIMEOUT", 10*time.Second)
	policy := OptOutPolicy(os.Getenv("REMINDER_OPTOUT_POLICY"))

	return &Worker{
		ledger:     ledger,
		expander:   NewExpander(ledger, horizonDays),
		dispatcher: NewDispatcher(ledger, sender, sendTimeout, policy),
		interval:   interval,
		lookahead:  lookahead,
		now:        time.Now,
	}
}

// Start begins the periodic ticks. SkipIfStillRunning guarantees ticks never
// overlap: a slow tick makes the next one a no-op instead of double-sending.
func (w *Worker) Start() error {
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)))
	_, err := c.AddFunc(fmt.Sprintf("@every %s", w.interval), func() {
		if err := w.Tick(context.Background(), w.now()); err != nil {
			log.Printf("Reminder tick failed: %v", err)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule reminder worker: %w", err)
	}
	c.Start()
	w.cron = c
	log.Printf("Reminder worker started (interval %s, lookahead %s)", w.interval, w.lookahead)
	return nil
}

// Stop halts the schedule and waits for an in-flight tick to finish. An
// abandoned dispatch is harmless: its intake simply stays pending.
func (w *Worker) Stop() {
	if w.cron != nil {
		<-w.cron.Stop().Done()
	}
}

// Tick runs one full reminder cycle at the given timestamp. Time is an
// explicit parameter so tests can drive the cycle deterministically.
func (w *Worker) Tick(ctx context.Context, now time.Time) error {
	created, err := w.expander.ExpandAll(now)
	if err != nil {
		if !errors.Is(err, ErrInvalidRule) {
			return err
		}
		log.Printf("Schedule expansion skipped invalid rules: %v", err)
	}
	if created > 0 {
		log.Printf("Expanded schedules into %d new intakes", created)
	}

	due, err := w.ledger.DuePending(now, now.Add(w.lookahead))
	if err != nil {
		return err
	}

	sent := 0
	for _, reminder := range due {
		if err := w.dispatcher.Dispatch(ctx, reminder); err != nil {
			// One failed send must not block the rest of the batch
			log.Printf("Failed to dispatch reminder for intake %d: %v", reminder.Intake.ID, err)
			continue
		}
		sent++
	}
	if len(due) > 0 {
		log.Printf("Reminder tick: %d due, %d processed", len(due), sent)
	}
	return nil
}

// envDuration reads a duration from the environment with a fallback
func envDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		log.Printf("Invalid %s %q, using %s", key, value, fallback)
		return fallback
	}
	return d
}

// envInt reads an integer from the environment with a fallback
func envInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		log.Printf("Invalid %s %q, using %d", key, value, fallback)
		return fallback
	}
	return n
}
