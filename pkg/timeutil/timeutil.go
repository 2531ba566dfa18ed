// Package timeutil provides timezone utilities for Indian Standard Time
// (UTC+5:30). The training hub's colleges, due dates and serial buckets all
// follow IST; IST has no daylight saving, so the offset is constant.
// No external dependencies - uses only standard library.
package timeutil

import (
	"fmt"
	"time"
)

// IST is the Indian Standard Time zone (UTC+5:30, no DST).
var IST = time.FixedZone("Asia/Kolkata", 5*60*60+30*60)

// Now returns the current time in IST.
func Now() time.Time {
	return time.Now().In(IST)
}

// ToIST converts a time to IST.
func ToIST(t time.Time) time.Time {
	return t.In(IST)
}

// ToUTC converts a time to UTC.
func ToUTC(t time.Time) time.Time {
	return t.UTC()
}

// Date creates a time in IST with the given date.
func Date(year, month, day int) time.Time {
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, IST)
}

// DateTime creates a time in IST with the given date and time.
func DateTime(year, month, day, hour, min, sec int) time.Time {
	return time.Date(year, time.Month(month), day, hour, min, sec, 0, IST)
}

// StartOfDay returns the start of the day (00:00:00) in IST.
func StartOfDay(t time.Time) time.Time {
	ist := ToIST(t)
	return time.Date(ist.Year(), ist.Month(), ist.Day(), 0, 0, 0, 0, IST)
}

// EndOfDay returns the end of the day (23:59:59.999999999) in IST.
func EndOfDay(t time.Time) time.Time {
	ist := ToIST(t)
	return time.Date(ist.Year(), ist.Month(), ist.Day(), 23, 59, 59, 999999999, IST)
}

// StartOfYear returns the start of the calendar year in IST.
// Serial buckets roll over at this boundary.
func StartOfYear(t time.Time) time.Time {
	ist := ToIST(t)
	return time.Date(ist.Year(), time.January, 1, 0, 0, 0, 0, IST)
}

// YearBucket returns the two-digit year bucket for a time in IST.
func YearBucket(t time.Time) int {
	return ToIST(t).Year() % 100
}

// IsToday checks if the given time is today in IST.
func IsToday(t time.Time) bool {
	now := Now()
	ist := ToIST(t)
	return ist.Year() == now.Year() &&
		ist.Month() == now.Month() &&
		ist.Day() == now.Day()
}

// DaysSince calculates the number of days since the given time.
func DaysSince(t time.Time) int {
	now := StartOfDay(Now())
	then := StartOfDay(t)
	duration := now.Sub(then)
	return int(duration.Hours() / 24)
}

// DaysBetween calculates the number of days between two times.
func DaysBetween(t1, t2 time.Time) int {
	a1 := StartOfDay(t1)
	a2 := StartOfDay(t2)
	duration := a2.Sub(a1)
	days := int(duration.Hours() / 24)
	if days < 0 {
		days = -days
	}
	return days
}

// DueDate returns the due date a given number of days after t, at end of day
// IST. A challan sent late in the evening still gets the full window.
func DueDate(t time.Time, days int) time.Time {
	return EndOfDay(ToIST(t).AddDate(0, 0, days))
}

// IsOverdue reports whether the due window of the given length has passed.
func IsOverdue(sentAt time.Time, days int, now time.Time) bool {
	return ToIST(now).After(DueDate(sentAt, days))
}

// Office hours for the training section.
const (
	// OfficeOpenTime is when the section office opens.
	OfficeOpenTime = 9
	// OfficeCloseTime is when the section office closes.
	OfficeCloseTime = 18
)

// IsOfficeHours checks if the given time is within office hours (9:00-18:00).
func IsOfficeHours(t time.Time) bool {
	ist := ToIST(t)
	hour := ist.Hour()
	return hour >= OfficeOpenTime && hour < OfficeCloseTime
}

// IsWeekend checks if the given time is on a weekend.
func IsWeekend(t time.Time) bool {
	ist := ToIST(t)
	weekday := ist.Weekday()
	return weekday == time.Saturday || weekday == time.Sunday
}

// IsWorkday checks if the given time is on a workday (Mon-Fri).
func IsWorkday(t time.Time) bool {
	return !IsWeekend(t)
}

// NextWorkday returns the next workday (skipping weekends).
func NextWorkday(t time.Time) time.Time {
	next := ToIST(t).AddDate(0, 0, 1)
	for IsWeekend(next) {
		next = next.AddDate(0, 0, 1)
	}
	return StartOfDay(next)
}

// Common date/time formats.
const (
	// FormatDate is the standard date format (YYYY-MM-DD).
	FormatDate = "2006-01-02"
	// FormatTime is the standard time format (HH:MM).
	FormatTime = "15:04"
	// FormatDateTime is the standard datetime format.
	FormatDateTime = "2006-01-02 15:04"
	// FormatIndianDate is the date format printed on documents (DD-MM-YYYY).
	FormatIndianDate = "02-01-2006"
	// FormatHumanDate is a human-readable format.
	FormatHumanDate = "2 January 2006"
)

// FormatIST formats a time in IST with the given layout.
func FormatIST(t time.Time, layout string) string {
	return ToIST(t).Format(layout)
}

// FormatDateStr formats a time as a date string (YYYY-MM-DD) in IST.
func FormatDateStr(t time.Time) string {
	return FormatIST(t, FormatDate)
}

// FormatIndian formats a time in document format (DD-MM-YYYY).
func FormatIndian(t time.Time) string {
	return FormatIST(t, FormatIndianDate)
}

// FormatRelative returns a human-readable relative time string.
func FormatRelative(t time.Time) string {
	now := Now()
	ist := ToIST(t)
	duration := now.Sub(ist)

	if duration < 0 {
		duration = -duration
		return formatFutureDuration(duration)
	}

	return formatPastDuration(duration)
}

func formatPastDuration(d time.Duration) string {
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%d min ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%d h ago", int(d.Hours()))
	case d < 7*24*time.Hour:
		days := int(d.Hours() / 24)
		if days == 1 {
			return "yesterday"
		}
		return fmt.Sprintf("%d days ago", days)
	default:
		weeks := int(d.Hours() / 24 / 7)
		return fmt.Sprintf("%d weeks ago", weeks)
	}
}

func formatFutureDuration(d time.Duration) string {
	switch {
	case d < time.Minute:
		return "now"
	case d < time.Hour:
		return fmt.Sprintf("in %d min", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("in %d h", int(d.Hours()))
	default:
		days := int(d.Hours() / 24)
		if days == 1 {
			return "tomorrow"
		}
		return fmt.Sprintf("in %d days", days)
	}
}

// ParseIST parses a time string in IST.
func ParseIST(layout, value string) (time.Time, error) {
	return time.ParseInLocation(layout, value, IST)
}

// ParseDateIST parses a date string (YYYY-MM-DD) in IST.
func ParseDateIST(value string) (time.Time, error) {
	return ParseIST(FormatDate, value)
}

// IsSameDay checks if two times are on the same day in IST.
func IsSameDay(t1, t2 time.Time) bool {
	a1, a2 := ToIST(t1), ToIST(t2)
	return a1.Year() == a2.Year() && a1.YearDay() == a2.YearDay()
}

// Notice timing helpers.

// IsSafeNoticeTime checks if it's appropriate to send notices (9:00-21:00).
func IsSafeNoticeTime(t time.Time) bool {
	ist := ToIST(t)
	hour := ist.Hour()
	return hour >= 9 && hour < 21
}

// NextSafeNoticeTime returns the next time when notices are appropriate.
func NextSafeNoticeTime(t time.Time) time.Time {
	ist := ToIST(t)
	hour := ist.Hour()

	if hour < 9 {
		return DateTime(ist.Year(), int(ist.Month()), ist.Day(), 9, 0, 0)
	} else if hour >= 21 {
		tomorrow := ist.AddDate(0, 0, 1)
		return DateTime(tomorrow.Year(), int(tomorrow.Month()), tomorrow.Day(), 9, 0, 0)
	}

	return ist
}
