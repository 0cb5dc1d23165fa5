package storage

import (
	"context"

	"finance/internal/core"
)

// Ports implemented by every backend.
type (
	SchemaManager interface {
		// Initialize creates the schema if absent. Safe to call on every startup.
		Initialize(ctx context.Context) error
	}

	TransactionWriter interface {
		// AddTransaction stores t and returns the id assigned by the store.
		// A zero date defaults to today.
		AddTransaction(ctx context.Context, t core.Transaction) (int64, error)
	}

	TransactionReader interface {
		// ListTransactions returns every transaction, newest date first and
		// most recently inserted first within a day.
		ListTransactions(ctx context.Context) ([]core.Transaction, error)
		GetTransaction(ctx context.Context, id int64) (core.Transaction, error)
	}

	SummaryReader interface {
		Summary(ctx context.Context) (core.Summary, error)
	}

	GoalStore interface {
		SetGoal(ctx context.Context, period core.PeriodType, amount float64) error
		// GetGoal reports ok=false when no goal is set; that is not an error.
		GetGoal(ctx context.Context, period core.PeriodType) (amount float64, ok bool, err error)
	}

	// ExpenseSummer sums expense amounts dated within [start, end].
	ExpenseSummer interface {
		SumExpenses(ctx context.Context, start, end core.Date) (float64, error)
	}

	Repository interface {
		SchemaManager
		TransactionWriter
		TransactionReader
		SummaryReader
		GoalStore
		ExpenseSummer
		Ping(ctx context.Context) error
		Close() error
	}
)
