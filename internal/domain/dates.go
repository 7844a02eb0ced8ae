package domain

import "time"

// DateLayout is the layout for all domain dates (due dates, expense dates,
// budget cycle bounds). Zero-padded YYYY-MM-DD strings compare
// lexicographically in chronological order, and the scheduled-payment
// queries depend on exactly that property. Keep dates time-zone-naive.
const DateLayout = "2006-01-02"

// ParseDate parses a YYYY-MM-DD date string.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}

// PeriodStart returns the frequency-aligned start of the period containing
// ref: this week's Monday, the first of the month, the first day of the
// quarter, or January 1st.
func PeriodStart(freq Frequency, ref time.Time) time.Time {
	y, m, _ := ref.Date()
	switch freq {
	case FrequencyWeekly:
		back := (int(ref.Weekday()) + 6) % 7 // Monday = 0
		return time.Date(y, m, ref.Day()-back, 0, 0, 0, 0, time.UTC)
	case FrequencyMonthly:
		return time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
	case FrequencyQuarterly:
		qm := time.Month((int(m)-1)/3*3 + 1)
		return time.Date(y, qm, 1, 0, 0, 0, 0, time.UTC)
	case FrequencyYearly:
		return time.Date(y, time.January, 1, 0, 0, 0, 0, time.UTC)
	default:
		return time.Date(y, m, ref.Day(), 0, 0, 0, 0, time.UTC)
	}
}

// PeriodEnd returns start shifted by exactly one frequency period minus one
// day. For month-based frequencies the day lands on "same day next period,
// minus one", with overflow clamped to the end of the target month: monthly
// from 2024-01-31 ends on 2024-02-29, not a phantom Feb 31.
func PeriodEnd(freq Frequency, start time.Time) time.Time {
	switch freq {
	case FrequencyWeekly:
		return start.AddDate(0, 0, 6)
	case FrequencyMonthly:
		return monthShiftEnd(start, 1)
	case FrequencyQuarterly:
		return monthShiftEnd(start, 3)
	case FrequencyYearly:
		return monthShiftEnd(start, 12)
	default:
		return start
	}
}

// monthShiftEnd computes (start + months, day-1) with end-of-month clamping.
func monthShiftEnd(start time.Time, months int) time.Time {
	y, m, d := start.Date()
	first := time.Date(y, m+time.Month(months), 1, 0, 0, 0, 0, time.UTC)
	if d-1 < 1 {
		// Period started on the 1st: it ends on the last day of the
		// month preceding the target.
		return first.AddDate(0, 0, -1)
	}
	day := d - 1
	if last := lastDay(first); day > last {
		day = last
	}
	return time.Date(first.Year(), first.Month(), day, 0, 0, 0, 0, time.UTC)
}

// AddMonthsClamped adds calendar months preserving the day-of-month, clamping
// to the last day of the target month when the source day overflows
// (Jan 31 + 1 month = Feb 29 in a leap year).
func AddMonthsClamped(t time.Time, months int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m+time.Month(months), 1, 0, 0, 0, 0, time.UTC)
	if last := lastDay(first); d > last {
		d = last
	}
	return time.Date(first.Year(), first.Month(), d, 0, 0, 0, 0, time.UTC)
}

func lastDay(firstOfMonth time.Time) int {
	return firstOfMonth.AddDate(0, 1, -1).Day()
}

// NextDueDate advances a due date by one recurrence interval. Unrecognized
// recurrences leave the date unchanged.
func NextDueDate(due time.Time, rec Recurrence, customDays int) time.Time {
	switch rec {
	case RecurWeekly:
		return due.AddDate(0, 0, 7)
	case RecurBiweekly:
		return due.AddDate(0, 0, 14)
	case RecurMonthly:
		return AddMonthsClamped(due, 1)
	case RecurQuarterly:
		return AddMonthsClamped(due, 3)
	case RecurYearly:
		return due.AddDate(1, 0, 0)
	case RecurCustom:
		return due.AddDate(0, 0, customDays)
	default:
		return due
	}
}
