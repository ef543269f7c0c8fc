package main

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/Simonwafula/personal-finance-app/pkg/app"
	"github.com/Simonwafula/personal-finance-app/pkg/wealth"
)

func today() time.Time { return app.Today() }

// startScheduler registers the periodic jobs. A cron expression that fails to parse disables only that job.
func startScheduler() *cron.Cron {
	c := cron.New()
	jobs := []struct {
		name string
		spec string
		run  func(ctx context.Context) (int, error)
	}{
		{"materialize_recurring", cfg.Scheduler.RecurringSpec, func(ctx context.Context) (int, error) {
			return materializer.Run(ctx, today(), cfg.Scheduler.HorizonDays)
		}},
		{"budget_checks", cfg.Scheduler.ChecksSpec, func(ctx context.Context) (int, error) {
			return budgetNotifier.CheckAll(ctx, today())
		}},
		{"budget_ending", cfg.Scheduler.ChecksSpec, func(ctx context.Context) (int, error) {
			return budgetNotifier.RemindEnding(ctx, today(), cfg.Scheduler.ReminderDays)
		}},
		{"recurring_reminders", cfg.Scheduler.ChecksSpec, func(ctx context.Context) (int, error) {
			return reminders.Check(ctx, today(), cfg.Scheduler.ReminderDays)
		}},
		{"net_worth_snapshot", cfg.Scheduler.SnapshotSpec, func(ctx context.Context) (int, error) {
			return wealth.SnapshotAll(ctx, db, today())
		}},
		{"activity_cleanup", cfg.Scheduler.CleanupSpec, func(ctx context.Context) (int, error) {
			return activityLog.Cleanup(ctx, time.Now(), cfg.Scheduler.ActivityRetentionDays)
		}},
	}
	for _, j := range jobs {
		job := j
		if job.spec == "" {
			continue
		}
		_, err := c.AddFunc(job.spec, func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
			defer cancel()
			n, err := job.run(ctx)
			if err != nil {
				logger.Error().Err(err).Str("job", job.name).Msg("scheduled job failed")
				return
			}
			logger.Info().Str("job", job.name).Int("count", n).Msg("scheduled job done")
		})
		if err != nil {
			logger.Error().Err(err).Str("job", job.name).Str("spec", job.spec).Msg("invalid cron spec")
		}
	}
	c.Start()
	logger.Info().Int("jobs", len(c.Entries())).Msg("scheduler started")
	return c
}
