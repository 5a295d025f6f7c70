package cron

import (
	"context"

	"github.com/YeiyoNathnael/Green-Commitment-wall/internal/jobs"
	"github.com/YeiyoNathnael/Green-Commitment-wall/internal/services"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// StartCronJobs schedules the background maintenance work: the daily
// reminder scan for quiet commitments and the cleanup of expired
// notifications.
func StartCronJobs(reminder *jobs.ReminderNotifier, notifications *services.NotificationService) *cron.Cron {
	c := cron.New()

	// Nudge owners of commitments with no recent progress
	c.AddFunc("0 9 * * *", func() {
		if err := reminder.RunDailyScan(context.Background()); err != nil {
			logrus.WithError(err).Error("Reminder scan failed")
		}
	})

	// Drop notifications past their 30-day expiry
	c.AddFunc("@hourly", func() {
		if err := notifications.CleanupExpiredNotifications(context.Background()); err != nil {
			logrus.WithError(err).Error("Notification cleanup failed")
		}
	})

	c.Start()
	return c
}
