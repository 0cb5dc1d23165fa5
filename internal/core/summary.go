package core

// Summary aggregates every recorded transaction.
type Summary struct {
	TotalIncome  float64
	TotalExpense float64
	Balance      float64
}

// NewSummary derives the balance from the two totals.
func NewSummary(income, expense float64) Summary {
	return Summary{
		TotalIncome:  income,
		TotalExpense: expense,
		Balance:      subtract(income, expense),
	}
}

// ProgressStatus classifies spending against a goal.
type ProgressStatus string

const (
	StatusNoGoal   ProgressStatus = "no_goal"
	StatusExceeded ProgressStatus = "exceeded"
	StatusClose    ProgressStatus = "close"
	StatusWithin   ProgressStatus = "within"
)

// GoalProgress is the evaluation of a goal over its current period window.
type GoalProgress struct {
	Period     PeriodType
	GoalAmount *float64 // nil when no goal is set for Period
	Spent      float64
	Remaining  float64
	Status     ProgressStatus
	Message    string
	Start      Date
	End        Date
}

// HasGoal reports whether a goal amount was found.
func (p GoalProgress) HasGoal() bool {
	return p.GoalAmount != nil
}
