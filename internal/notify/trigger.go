// Package notify runs the periodic reminder check for unfinished
// workouts. It only detects and logs; delivery (push, email) sits
// behind the Notifier interface.
package notify

import (
	"context"
	"time"

	"gymflow/gym-app/internal/domain"
	"gymflow/gym-app/internal/repository"

	"github.com/robfig/cron"
	log "github.com/sirupsen/logrus"
)

// Notifier delivers a reminder for one overdue schedule entry.
type Notifier interface {
	NotifyIncomplete(ctx context.Context, entry domain.ScheduleEntry)
}

// LogNotifier is the default Notifier; it records the reminder in the
// application log and nothing else.
type LogNotifier struct{}

func (LogNotifier) NotifyIncomplete(_ context.Context, entry domain.ScheduleEntry) {
	log.WithFields(log.Fields{
		"owner":   entry.OwnerID.Hex(),
		"title":   entry.Title,
		"entryId": entry.ID.Hex(),
	}).Info("workout still incomplete past cutoff")
}

// Trigger periodically scans the day's schedule for workouts that are
// still incomplete after the cutoff hour.
type Trigger struct {
	scheduleRepo repository.ScheduleRepository
	notifier     Notifier
	cutoffHour   int
	cron         *cron.Cron
	now          func() time.Time
}

// NewTrigger creates the reminder job. A nil notifier falls back to
// LogNotifier.
func NewTrigger(scheduleRepo repository.ScheduleRepository, notifier Notifier, cutoffHour int) *Trigger {
	if notifier == nil {
		notifier = LogNotifier{}
	}
	return &Trigger{
		scheduleRepo: scheduleRepo,
		notifier:     notifier,
		cutoffHour:   cutoffHour,
		now:          time.Now,
	}
}

// Start schedules the check on the given cron expression and returns
// immediately. Call Stop on shutdown.
func (t *Trigger) Start(schedule string) error {
	c := cron.New()
	if err := c.AddFunc(schedule, func() { t.RunOnce(context.Background()) }); err != nil {
		return err
	}
	c.Start()
	t.cron = c
	log.WithField("schedule", schedule).Info("reminder job started")
	return nil
}

// Stop halts the cron loop. Safe to call when Start never ran.
func (t *Trigger) Stop() {
	if t.cron != nil {
		t.cron.Stop()
	}
}

// RunOnce performs a single scan. Exposed so the check can be invoked
// directly, outside the cron loop.
func (t *Trigger) RunOnce(ctx context.Context) {
	now := t.now()
	if now.Hour() < t.cutoffHour {
		return
	}

	entries, err := t.scheduleRepo.ListIncompleteWorkoutsForDate(ctx, domain.DayOf(now))
	if err != nil {
		log.WithError(err).Warn("reminder scan failed")
		return
	}
	for _, entry := range entries {
		t.notifier.NotifyIncomplete(ctx, entry)
	}
	log.WithField("overdue", len(entries)).Debug("reminder scan complete")
}
