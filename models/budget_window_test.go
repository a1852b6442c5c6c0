package models

import (
	"testing"
	"time"
)

func TestBudget_CurrentWindowRollover(t *testing.T) {
	start := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		name          string
		cycle         BudgetCycle
		now           time.Time
		expectedStart time.Time
		expectedEnd   time.Time
	}{
		{
			name:          "monthly inside first window",
			cycle:         BudgetCycleMonthly,
			now:           time.Date(2025, 1, 20, 10, 0, 0, 0, time.UTC),
			expectedStart: start,
			expectedEnd:   time.Date(2025, 2, 15, 0, 0, 0, 0, time.UTC),
		},
		{
			name:          "monthly rolled three cycles",
			cycle:         BudgetCycleMonthly,
			now:           time.Date(2025, 4, 20, 0, 0, 0, 0, time.UTC),
			expectedStart: time.Date(2025, 4, 15, 0, 0, 0, 0, time.UTC),
			expectedEnd:   time.Date(2025, 5, 15, 0, 0, 0, 0, time.UTC),
		},
		{
			name:          "weekly rollover",
			cycle:         BudgetCycleWeekly,
			now:           time.Date(2025, 1, 30, 0, 0, 0, 0, time.UTC),
			expectedStart: time.Date(2025, 1, 29, 0, 0, 0, 0, time.UTC),
			expectedEnd:   time.Date(2025, 2, 5, 0, 0, 0, 0, time.UTC),
		},
		{
			name:          "yearly window",
			cycle:         BudgetCycleYearly,
			now:           time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC),
			expectedStart: start,
			expectedEnd:   time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tc := range cases {
		b := Budget{Cycle: tc.cycle, StartDate: start}
		gotStart, gotEnd := b.CurrentWindow(tc.now)
		if !gotStart.Equal(tc.expectedStart) || !gotEnd.Equal(tc.expectedEnd) {
			t.Fatalf("%s: expected [%s, %s), got [%s, %s)",
				tc.name, tc.expectedStart, tc.expectedEnd, gotStart, gotEnd)
		}
	}
}

func TestBudget_WindowBoundaryIsHalfOpen(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	b := Budget{Cycle: BudgetCycleMonthly, StartDate: start}

	// Exactly at the window end the next window begins.
	gotStart, _ := b.CurrentWindow(time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC))
	if !gotStart.Equal(time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("expected rollover at window end, got start %s", gotStart)
	}
}
