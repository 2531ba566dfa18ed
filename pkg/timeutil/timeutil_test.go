package timeutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDueDate_FullWindowFromEveningDispatch(t *testing.T) {
	// Challan sent at 23:30 IST still gets seven full days.
	sent := time.Date(2026, 3, 10, 23, 30, 0, 0, IST)

	due := DueDate(sent, 7)

	assert.Equal(t, 2026, due.Year())
	assert.Equal(t, time.March, due.Month())
	assert.Equal(t, 17, due.Day())
	assert.Equal(t, 23, due.Hour())
	assert.Equal(t, 59, due.Minute())
}

func TestIsOverdue(t *testing.T) {
	sent := time.Date(2026, 3, 10, 11, 0, 0, 0, IST)

	assert.False(t, IsOverdue(sent, 7, time.Date(2026, 3, 17, 12, 0, 0, 0, IST)))
	assert.True(t, IsOverdue(sent, 7, time.Date(2026, 3, 18, 0, 1, 0, 0, IST)))
}

func TestYearBucket(t *testing.T) {
	assert.Equal(t, 26, YearBucket(time.Date(2026, 6, 1, 12, 0, 0, 0, IST)))

	// New Year in IST while UTC is still on the previous year.
	utcEve := time.Date(2025, 12, 31, 20, 0, 0, 0, time.UTC)
	assert.Equal(t, 26, YearBucket(utcEve))
}

func TestFormatIndian(t *testing.T) {
	d := time.Date(2026, 3, 5, 10, 0, 0, 0, IST)
	assert.Equal(t, "05-03-2026", FormatIndian(d))
}

func TestIsSafeNoticeTime(t *testing.T) {
	assert.True(t, IsSafeNoticeTime(time.Date(2026, 3, 10, 9, 0, 0, 0, IST)))
	assert.True(t, IsSafeNoticeTime(time.Date(2026, 3, 10, 20, 59, 0, 0, IST)))
	assert.False(t, IsSafeNoticeTime(time.Date(2026, 3, 10, 21, 30, 0, 0, IST)))
	assert.False(t, IsSafeNoticeTime(time.Date(2026, 3, 10, 6, 0, 0, 0, IST)))
}

func TestNextSafeNoticeTime(t *testing.T) {
	lateNight := time.Date(2026, 3, 10, 22, 15, 0, 0, IST)
	next := NextSafeNoticeTime(lateNight)
	assert.Equal(t, 11, next.Day())
	assert.Equal(t, 9, next.Hour())

	earlyMorning := time.Date(2026, 3, 10, 5, 0, 0, 0, IST)
	next = NextSafeNoticeTime(earlyMorning)
	assert.Equal(t, 10, next.Day())
	assert.Equal(t, 9, next.Hour())
}

func TestParseDateIST(t *testing.T) {
	d, err := ParseDateIST("2026-06-01")
	assert.NoError(t, err)
	assert.Equal(t, time.June, d.Month())
	assert.Equal(t, IST, d.Location())

	_, err = ParseDateIST("01/06/2026")
	assert.Error(t, err)
}
