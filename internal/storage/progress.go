package storage

import (
	"context"
	"fmt"

	"finance/internal/core"
)

// GoalSource is what goal progress evaluation reads from a store.
type GoalSource interface {
	GoalStore
	ExpenseSummer
}

// GoalProgress evaluates the goal for period over its window ending today.
// An unset goal is reported through the result, never as an error.
func GoalProgress(ctx context.Context, src GoalSource, period core.PeriodType, today core.Date) (core.GoalProgress, error) {
	goal, ok, err := src.GetGoal(ctx, period)
	if err != nil {
		return core.GoalProgress{}, fmt.Errorf("get goal: %w", err)
	}
	if !ok {
		return core.NoGoalProgress(period), nil
	}

	start, end := period.Window(today)
	spent, err := src.SumExpenses(ctx, start, end)
	if err != nil {
		return core.GoalProgress{}, fmt.Errorf("sum expenses: %w", err)
	}

	return core.EvaluateProgress(period, goal, spent, start, end), nil
}
