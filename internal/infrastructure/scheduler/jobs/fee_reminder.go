// Package jobs contains the background jobs registered on the scheduler.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/stvt-hub/stvt-training-hub/internal/application/query"
	"github.com/stvt-hub/stvt-training-hub/internal/domain/enrollment"
	"github.com/stvt-hub/stvt-training-hub/internal/domain/notification"
	"github.com/stvt-hub/stvt-training-hub/pkg/logger"
	"github.com/stvt-hub/stvt-training-hub/pkg/timeutil"
)

// FeeReminderJob sends a reminder notice to every trainee whose challan is
// still unpaid past the due window. The reminder is advisory: it never mutates
// lifecycle state, so running it twice only repeats the notice.
type FeeReminderJob struct {
	fees     enrollment.Repository
	notifier notification.Dispatcher
	logger   *logger.Logger
	dueDays  int

	// now is swapped in tests.
	now func() time.Time
}

// NewFeeReminderJob creates the fee reminder job. dueDays 0 falls back to
// the dashboard's due window.
func NewFeeReminderJob(fees enrollment.Repository, notifier notification.Dispatcher, log *logger.Logger, dueDays int) *FeeReminderJob {
	if dueDays <= 0 {
		dueDays = query.FeeDueDays
	}
	return &FeeReminderJob{
		fees:     fees,
		notifier: notifier,
		logger:   log.With(logger.Component("fee-reminder")),
		dueDays:  dueDays,
		now:      timeutil.Now,
	}
}

// Name returns the unique name of the job.
func (j *FeeReminderJob) Name() string {
	return "fee-reminder"
}

// Description returns a human-readable description of the job.
func (j *FeeReminderJob) Description() string {
	return fmt.Sprintf("reminds trainees whose challan is unpaid after %d days", j.dueDays)
}

// Run finds overdue challans and dispatches one reminder each. Outside the
// 9:00-21:00 IST notice window the run is skipped; the next scheduled run
// inside the window picks the same records up.
func (j *FeeReminderJob) Run(ctx context.Context) error {
	now := j.now()
	if !timeutil.IsSafeNoticeTime(now) {
		j.logger.Debug("outside notice hours, skipping run",
			logger.Time("next_window", timeutil.NextSafeNoticeTime(now)),
		)
		return nil
	}

	cutoff := now.AddDate(0, 0, -j.dueDays)

	overdue, err := j.fees.ListFeeRecordsSentBefore(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("list overdue fee records: %w", err)
	}

	if len(overdue) == 0 {
		j.logger.Debug("no overdue challans")
		return nil
	}

	var failed int
	for _, rec := range overdue {
		notice := notification.Notice{
			TraineeID: rec.TraineeID,
			Kind:      notification.KindFeeReminder,
			Payload: map[string]string{
				"fee_record_id": rec.ID,
				"sent_at":       rec.SentAt.Format(time.RFC3339),
				"due_by":        timeutil.DueDate(rec.SentAt, j.dueDays).Format(time.RFC3339),
			},
		}

		if err := j.notifier.Notify(ctx, notice); err != nil {
			failed++
			j.logger.Warn("fee reminder failed",
				logger.TraineeID(rec.TraineeID),
				logger.Err(err),
			)
		}
	}

	j.logger.Info("fee reminders dispatched",
		logger.Int("overdue", len(overdue)),
		logger.Int("failed", failed),
	)

	if failed > 0 {
		return fmt.Errorf("failed to deliver %d of %d reminders", failed, len(overdue))
	}
	return nil
}
