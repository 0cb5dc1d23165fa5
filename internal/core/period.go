package core

import (
	"fmt"
	"math"
)

// closeThreshold is the share of the goal below which remaining budget
// is reported as close to the limit.
const closeThreshold = 0.2

const noGoalMessage = "No goal set."

// Window returns the inclusive calendar-date range accumulated for the
// period, ending today. Monthly windows start on the first of the month,
// weekly windows on the most recent Monday. Unrecognised periods yield a
// single-day window.
func (p PeriodType) Window(today Date) (start, end Date) {
	end = today
	switch p {
	case Monthly:
		start = NewDate(today.Year(), int(today.Month()), 1)
	case Weekly:
		// time.Weekday counts from Sunday; shift so Monday is 0.
		offset := (int(today.Weekday()) + 6) % 7
		start = today.AddDays(-offset)
	default:
		start = today
	}
	return start, end
}

// NoGoalProgress is the result reported when no goal is set for p.
func NoGoalProgress(p PeriodType) GoalProgress {
	return GoalProgress{
		Period:  p,
		Status:  StatusNoGoal,
		Message: noGoalMessage,
	}
}

// EvaluateProgress compares spent against goal over the given window and
// builds the status message.
func EvaluateProgress(p PeriodType, goal, spent float64, start, end Date) GoalProgress {
	remaining := subtract(goal, spent)
	status, msg := progressMessage(p, goal, remaining)
	return GoalProgress{
		Period:     p,
		GoalAmount: &goal,
		Spent:      spent,
		Remaining:  remaining,
		Status:     status,
		Message:    msg,
		Start:      start,
		End:        end,
	}
}

func progressMessage(p PeriodType, goal, remaining float64) (ProgressStatus, string) {
	switch {
	case remaining < 0:
		return StatusExceeded, fmt.Sprintf("You exceeded your %s limit by %s.", p, FormatAmount(math.Abs(remaining)))
	case remaining <= closeThreshold*goal:
		return StatusClose, fmt.Sprintf("You are close to your %s limit. Remaining: %s.", p, FormatAmount(remaining))
	default:
		return StatusWithin, fmt.Sprintf("Within your %s limit. Remaining: %s.", p, FormatAmount(remaining))
	}
}
