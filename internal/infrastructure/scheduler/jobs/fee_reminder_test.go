package jobs

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stvt-hub/stvt-training-hub/internal/domain/enrollment"
	"github.com/stvt-hub/stvt-training-hub/internal/domain/notification"
	"github.com/stvt-hub/stvt-training-hub/internal/infrastructure/persistence/memory"
	"github.com/stvt-hub/stvt-training-hub/pkg/logger"
	"github.com/stvt-hub/stvt-training-hub/pkg/timeutil"
)

type captureNotifier struct {
	mu      sync.Mutex
	notices []notification.Notice
}

func (n *captureNotifier) Notify(ctx context.Context, notice notification.Notice) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notices = append(n.notices, notice)
	return nil
}

func (n *captureNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.notices)
}

// seedOverdueFee stores a fee record dispatched sentDaysAgo days before now.
func seedOverdueFee(t *testing.T, store *memory.Store, traineeID string, now time.Time, sentDaysAgo int) {
	t.Helper()
	fee, err := enrollment.NewFeeRecord("fee-"+traineeID, traineeID)
	require.NoError(t, err)
	require.NoError(t, fee.MarkSent(traineeID+"/challan.txt"))
	fee.SentAt = now.AddDate(0, 0, -sentDaysAgo)
	require.NoError(t, store.Enrollment().CreateFeeRecord(context.Background(), fee))
}

func TestFeeReminderSkipsOutsideNoticeHours(t *testing.T) {
	store := memory.NewStore()
	notifier := &captureNotifier{}

	// 23:30 IST, well past the 21:00 cutoff.
	lateNight := timeutil.DateTime(2026, 3, 10, 23, 30, 0)
	seedOverdueFee(t, store, "t-1", lateNight, 10)

	job := NewFeeReminderJob(store.Enrollment(), notifier, logger.Default(), 7)
	job.now = func() time.Time { return lateNight }

	require.NoError(t, job.Run(context.Background()))
	assert.Zero(t, notifier.count(), "no notices outside 9:00-21:00 IST")
}

func TestFeeReminderRunsInsideNoticeHours(t *testing.T) {
	store := memory.NewStore()
	notifier := &captureNotifier{}

	morning := timeutil.DateTime(2026, 3, 11, 10, 0, 0)
	seedOverdueFee(t, store, "t-1", morning, 10)
	seedOverdueFee(t, store, "t-2", morning, 8)
	// Inside the due window; no reminder yet.
	seedOverdueFee(t, store, "t-3", morning, 3)

	job := NewFeeReminderJob(store.Enrollment(), notifier, logger.Default(), 7)
	job.now = func() time.Time { return morning }

	require.NoError(t, job.Run(context.Background()))
	require.Equal(t, 2, notifier.count())
	for _, notice := range notifier.notices {
		assert.Equal(t, notification.KindFeeReminder, notice.Kind)
	}
}

func TestFeeReminderDeliversNextMorningWhatNightSkipped(t *testing.T) {
	store := memory.NewStore()
	notifier := &captureNotifier{}

	lateNight := timeutil.DateTime(2026, 3, 10, 22, 0, 0)
	seedOverdueFee(t, store, "t-1", lateNight, 10)

	job := NewFeeReminderJob(store.Enrollment(), notifier, logger.Default(), 7)

	job.now = func() time.Time { return lateNight }
	require.NoError(t, job.Run(context.Background()))
	require.Zero(t, notifier.count())

	// The next scheduled run inside the window picks the record up.
	nextMorning := timeutil.NextSafeNoticeTime(lateNight)
	job.now = func() time.Time { return nextMorning }
	require.NoError(t, job.Run(context.Background()))
	assert.Equal(t, 1, notifier.count())
}
