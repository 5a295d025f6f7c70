package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/YeiyoNathnael/Green-Commitment-wall/internal/models"
	"github.com/YeiyoNathnael/Green-Commitment-wall/internal/repository"
	"github.com/YeiyoNathnael/Green-Commitment-wall/internal/services"
	"github.com/sirupsen/logrus"
)

// staleAfter is how long an active commitment can sit without a progress
// update before its owner gets nudged.
const staleAfter = 3 * 24 * time.Hour

// scanBatchSize caps how many stale commitments one scan will process.
const scanBatchSize = 200

// ReminderNotifier nudges owners of active commitments that have gone quiet.
type ReminderNotifier struct {
	Commitments *repository.CommitmentRepository
	Notifier    services.Notifier
}

// NewReminderNotifier creates a new instance of ReminderNotifier.
func NewReminderNotifier(commitments *repository.CommitmentRepository, notifier services.Notifier) *ReminderNotifier {
	return &ReminderNotifier{
		Commitments: commitments,
		Notifier:    notifier,
	}
}

// RunDailyScan finds active commitments with no activity for a week and
// sends each owner a reminder notification.
func (r *ReminderNotifier) RunDailyScan(ctx context.Context) error {
	cutoff := time.Now().Add(-staleAfter)

	stale, err := r.Commitments.GetStaleActiveCommitments(ctx, cutoff, scanBatchSize)
	if err != nil {
		return fmt.Errorf("failed to fetch stale commitments: %v", err)
	}

	for _, commitment := range stale {
		r.Notifier.Notify(
			ctx,
			commitment.UserID,
			models.NotificationReminder,
			fmt.Sprintf("Keep it up! Log some progress on %q.", commitment.Summary),
			map[string]interface{}{"commitment_id": commitment.ID.Hex()},
		)
	}

	logrus.WithField("count", len(stale)).Info("Reminder scan completed")
	return nil
}
