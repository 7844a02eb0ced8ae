package domain

import (
	"testing"
	"time"
)

func date(t *testing.T, s string) time.Time {
	t.Helper()
	parsed, err := ParseDate(s)
	if err != nil {
		t.Fatalf("parse date %q: %v", s, err)
	}
	return parsed
}

func TestPeriodStart(t *testing.T) {
	tests := []struct {
		name string
		freq Frequency
		ref  string
		want string
	}{
		{"weekly mid-week snaps to monday", FrequencyWeekly, "2024-03-14", "2024-03-11"},
		{"weekly on monday stays", FrequencyWeekly, "2024-03-11", "2024-03-11"},
		{"weekly on sunday goes back six days", FrequencyWeekly, "2024-03-17", "2024-03-11"},
		{"monthly snaps to the first", FrequencyMonthly, "2024-03-14", "2024-03-01"},
		{"quarterly snaps to quarter start", FrequencyQuarterly, "2024-05-20", "2024-04-01"},
		{"quarterly in q4", FrequencyQuarterly, "2024-11-02", "2024-10-01"},
		{"yearly snaps to january first", FrequencyYearly, "2024-08-09", "2024-01-01"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PeriodStart(tt.freq, date(t, tt.ref)).Format(DateLayout)
			if got != tt.want {
				t.Errorf("PeriodStart(%s, %s) = %s, want %s", tt.freq, tt.ref, got, tt.want)
			}
		})
	}
}

func TestPeriodEnd(t *testing.T) {
	tests := []struct {
		name  string
		freq  Frequency
		start string
		want  string
	}{
		{"weekly is start plus six days", FrequencyWeekly, "2024-03-11", "2024-03-17"},
		{"monthly from the first ends on month end", FrequencyMonthly, "2024-03-01", "2024-03-31"},
		{"monthly mid-month", FrequencyMonthly, "2024-03-15", "2024-04-14"},
		{"monthly jan 31 clamps to leap feb 29", FrequencyMonthly, "2024-01-31", "2024-02-29"},
		{"monthly jan 31 clamps to feb 28 off leap", FrequencyMonthly, "2023-01-31", "2023-02-28"},
		{"monthly jan 30 also clamps", FrequencyMonthly, "2023-01-30", "2023-02-28"},
		{"quarterly from the first", FrequencyQuarterly, "2024-01-01", "2024-03-31"},
		{"quarterly nov 30 lands on feb 29", FrequencyQuarterly, "2023-11-30", "2024-02-29"},
		{"yearly from the first", FrequencyYearly, "2024-01-01", "2024-12-31"},
		{"yearly mid-year", FrequencyYearly, "2024-07-15", "2025-07-14"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PeriodEnd(tt.freq, date(t, tt.start)).Format(DateLayout)
			if got != tt.want {
				t.Errorf("PeriodEnd(%s, %s) = %s, want %s", tt.freq, tt.start, got, tt.want)
			}
		})
	}
}

func TestAddMonthsClamped(t *testing.T) {
	tests := []struct {
		name   string
		start  string
		months int
		want   string
	}{
		{"plain month add", "2024-03-15", 1, "2024-04-15"},
		{"jan 31 clamps to leap feb 29", "2024-01-31", 1, "2024-02-29"},
		{"jan 31 clamps to feb 28 off leap", "2023-01-31", 1, "2023-02-28"},
		{"oct 31 plus one clamps to nov 30", "2024-10-31", 1, "2024-11-30"},
		{"quarter add across year end", "2024-11-30", 3, "2025-02-28"},
		{"twelve months is one year", "2024-02-29", 12, "2025-02-28"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AddMonthsClamped(date(t, tt.start), tt.months).Format(DateLayout)
			if got != tt.want {
				t.Errorf("AddMonthsClamped(%s, %d) = %s, want %s", tt.start, tt.months, got, tt.want)
			}
		})
	}
}

func TestNextDueDate(t *testing.T) {
	tests := []struct {
		name       string
		due        string
		rec        Recurrence
		customDays int
		want       string
	}{
		{"weekly adds seven days", "2024-03-01", RecurWeekly, 0, "2024-03-08"},
		{"biweekly adds fourteen days", "2024-03-01", RecurBiweekly, 0, "2024-03-15"},
		{"monthly preserves day", "2024-03-15", RecurMonthly, 0, "2024-04-15"},
		{"monthly clamps at month end", "2024-01-31", RecurMonthly, 0, "2024-02-29"},
		{"quarterly", "2024-01-10", RecurQuarterly, 0, "2024-04-10"},
		{"yearly", "2024-02-29", RecurYearly, 0, "2025-03-01"},
		{"custom days", "2024-03-01", RecurCustom, 10, "2024-03-11"},
		{"unknown recurrence leaves date unchanged", "2024-03-01", Recurrence("fortnightly"), 0, "2024-03-01"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NextDueDate(date(t, tt.due), tt.rec, tt.customDays).Format(DateLayout)
			if got != tt.want {
				t.Errorf("NextDueDate(%s, %s, %d) = %s, want %s", tt.due, tt.rec, tt.customDays, got, tt.want)
			}
		})
	}
}

func TestDateStringsCompareChronologically(t *testing.T) {
	// The scheduled-payment queries rely on lexicographic order of
	// zero-padded dates matching chronological order.
	ordered := []string{"2023-12-31", "2024-01-02", "2024-01-10", "2024-02-01", "2024-10-09"}
	for i := 1; i < len(ordered); i++ {
		if !(ordered[i-1] < ordered[i]) {
			t.Errorf("expected %s < %s", ordered[i-1], ordered[i])
		}
	}
}

func TestExpenseTransactionID(t *testing.T) {
	if got := ExpenseTransactionID("abc-123"); got != "exp-abc-123" {
		t.Errorf("expected exp-abc-123, got %s", got)
	}
}

func TestNewIDUnique(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		id := NewID()
		if seen[id] {
			t.Fatalf("duplicate id generated: %s", id)
		}
		seen[id] = true
	}
}
