package core

import (
	"strings"
	"testing"
)

func TestPeriodWindow(t *testing.T) {
	cases := []struct {
		name   string
		period PeriodType
		today  Date
		start  string
	}{
		{"monthly mid month", Monthly, NewDate(2025, 3, 19), "2025-03-01"},
		{"monthly first day", Monthly, NewDate(2025, 3, 1), "2025-03-01"},
		{"weekly on wednesday", Weekly, NewDate(2025, 3, 19), "2025-03-17"},
		{"weekly on monday", Weekly, NewDate(2025, 3, 17), "2025-03-17"},
		{"weekly on sunday", Weekly, NewDate(2025, 3, 23), "2025-03-17"},
		{"weekly across month", Weekly, NewDate(2025, 4, 2), "2025-03-31"},
		{"unknown period", PeriodType("daily"), NewDate(2025, 3, 19), "2025-03-19"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			start, end := tc.period.Window(tc.today)
			if start.String() != tc.start {
				t.Errorf("start = %s, want %s", start, tc.start)
			}
			if !end.Equal(tc.today.Time) {
				t.Errorf("end = %s, want %s", end, tc.today)
			}
		})
	}
}

func TestEvaluateProgress(t *testing.T) {
	start, end := NewDate(2025, 3, 1), NewDate(2025, 3, 19)
	cases := []struct {
		name      string
		period    PeriodType
		goal      float64
		spent     float64
		remaining float64
		status    ProgressStatus
		contains  []string
	}{
		{"exceeded", Monthly, 500, 510, -10, StatusExceeded, []string{"exceeded", "monthly", "10.00"}},
		{"close to limit", Monthly, 500, 450, 50, StatusClose, []string{"close to", "50.00"}},
		{"exactly at limit", Monthly, 500, 500, 0, StatusClose, []string{"close to", "0.00"}},
		{"boundary twenty percent", Weekly, 100, 80, 20, StatusClose, []string{"close to", "20.00"}},
		{"within", Weekly, 100, 30, 70, StatusWithin, []string{"Within", "weekly", "70.00"}},
		{"nothing spent", Weekly, 100, 0, 100, StatusWithin, []string{"Within", "100.00"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := EvaluateProgress(tc.period, tc.goal, tc.spent, start, end)
			if !p.HasGoal() || *p.GoalAmount != tc.goal {
				t.Fatalf("goal amount = %v, want %v", p.GoalAmount, tc.goal)
			}
			if p.Spent != tc.spent || p.Remaining != tc.remaining {
				t.Fatalf("spent/remaining = %v/%v, want %v/%v", p.Spent, p.Remaining, tc.spent, tc.remaining)
			}
			if p.Status != tc.status {
				t.Fatalf("status = %s, want %s", p.Status, tc.status)
			}
			for _, part := range tc.contains {
				if !strings.Contains(p.Message, part) {
					t.Errorf("message %q missing %q", p.Message, part)
				}
			}
		})
	}
}

func TestEvaluateProgressAvoidsFloatNoise(t *testing.T) {
	p := EvaluateProgress(Monthly, 500, 450.1, NewDate(2025, 3, 1), NewDate(2025, 3, 2))
	if p.Remaining != 49.9 {
		t.Fatalf("expected remaining 49.9, got %v", p.Remaining)
	}
}

func TestNoGoalProgress(t *testing.T) {
	p := NoGoalProgress(Monthly)
	if p.HasGoal() || p.Spent != 0 || p.Remaining != 0 || p.Message != "No goal set." {
		t.Fatalf("unexpected no-goal progress: %+v", p)
	}
	if p.Status != StatusNoGoal {
		t.Fatalf("status = %s", p.Status)
	}
}
