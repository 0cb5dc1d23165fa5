// Package storagetest holds the behavioural checks every storage backend
// must pass.
package storagetest

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"finance/internal/core"
	"finance/internal/storage"
)

// Factory opens an empty, uninitialised repository whose default dates
// come from now.
type Factory func(t *testing.T, now func() time.Time) storage.Repository

// Today is the fixed clock used by the suite: Wednesday 19 March 2025.
var Today = time.Date(2025, 3, 19, 15, 4, 5, 0, time.UTC)

// Run executes the suite against repositories produced by newRepo.
func Run(t *testing.T, newRepo Factory) {
	t.Helper()

	open := func(t *testing.T) storage.Repository {
		t.Helper()
		repo := newRepo(t, func() time.Time { return Today })
		if err := repo.Initialize(context.Background()); err != nil {
			t.Fatalf("initialize: %v", err)
		}
		t.Cleanup(func() { _ = repo.Close() })
		return repo
	}

	t.Run("initialize is idempotent", func(t *testing.T) {
		repo := open(t)
		if err := repo.Initialize(context.Background()); err != nil {
			t.Fatalf("second initialize: %v", err)
		}
		if err := repo.Ping(context.Background()); err != nil {
			t.Fatalf("ping: %v", err)
		}
	})

	t.Run("empty store", func(t *testing.T) {
		repo := open(t)
		ctx := context.Background()

		list, err := repo.ListTransactions(ctx)
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(list) != 0 {
			t.Fatalf("expected no transactions, got %d", len(list))
		}

		sum, err := repo.Summary(ctx)
		if err != nil {
			t.Fatalf("summary: %v", err)
		}
		if sum != (core.Summary{}) {
			t.Fatalf("expected zero summary, got %+v", sum)
		}
	})

	t.Run("list orders by date then id descending", func(t *testing.T) {
		repo := open(t)
		ctx := context.Background()

		inputs := []core.Transaction{
			{Date: core.NewDate(2025, 3, 1), Type: core.Expense, Category: "rent", Amount: 800},
			{Date: core.NewDate(2025, 3, 10), Type: core.Income, Category: "salary", Amount: 2000, Note: "march"},
			{Date: core.NewDate(2025, 3, 1), Type: core.Expense, Category: "food", Amount: 12.5},
			{Date: core.NewDate(2025, 2, 27), Type: core.Expense, Category: "fuel", Amount: 60},
			{Date: core.NewDate(2025, 3, 10), Type: core.Expense, Category: "books", Amount: 25},
		}
		ids := make([]int64, len(inputs))
		for i, in := range inputs {
			id, err := repo.AddTransaction(ctx, in)
			if err != nil {
				t.Fatalf("add %d: %v", i, err)
			}
			ids[i] = id
		}
		seen := map[int64]bool{}
		for _, id := range ids {
			if seen[id] {
				t.Fatalf("duplicate id %d in %v", id, ids)
			}
			seen[id] = true
		}

		list, err := repo.ListTransactions(ctx)
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		wantOrder := []int{4, 1, 2, 0, 3}
		if len(list) != len(wantOrder) {
			t.Fatalf("expected %d transactions, got %d", len(wantOrder), len(list))
		}
		for pos, idx := range wantOrder {
			got, want := list[pos], inputs[idx]
			if got.ID != ids[idx] {
				t.Fatalf("position %d: id %d, want %d (list=%+v)", pos, got.ID, ids[idx], list)
			}
			if got.Date.String() != want.Date.String() || got.Type != want.Type ||
				got.Category != want.Category || got.Amount != want.Amount || got.Note != want.Note {
				t.Fatalf("position %d: got %+v, want %+v", pos, got, want)
			}
		}
	})

	t.Run("date defaults to today and note to empty", func(t *testing.T) {
		repo := open(t)
		ctx := context.Background()

		id, err := repo.AddTransaction(ctx, core.Transaction{Type: core.Expense, Category: "coffee", Amount: 2.2})
		if err != nil {
			t.Fatalf("add: %v", err)
		}
		got, err := repo.GetTransaction(ctx, id)
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if got.Date.String() != "2025-03-19" {
			t.Fatalf("expected default date 2025-03-19, got %s", got.Date)
		}
		if got.Note != "" {
			t.Fatalf("expected empty note, got %q", got.Note)
		}
	})

	t.Run("get missing transaction", func(t *testing.T) {
		repo := open(t)
		_, err := repo.GetTransaction(context.Background(), 4242)
		if !errors.Is(err, storage.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
		if !storage.IsStorageError(err) {
			t.Fatalf("expected StorageError, got %T", err)
		}
	})

	t.Run("summary totals and balance", func(t *testing.T) {
		repo := open(t)
		ctx := context.Background()

		for _, in := range []core.Transaction{
			{Type: core.Expense, Category: "food", Amount: 100},
			{Type: core.Income, Category: "salary", Amount: 1000},
			{Type: core.Expense, Category: "bus", Amount: 20.25},
			{Type: core.Income, Category: "gift", Amount: 250.5},
		} {
			if _, err := repo.AddTransaction(ctx, in); err != nil {
				t.Fatalf("add: %v", err)
			}
		}

		sum, err := repo.Summary(ctx)
		if err != nil {
			t.Fatalf("summary: %v", err)
		}
		want := core.Summary{TotalIncome: 1250.5, TotalExpense: 120.25, Balance: 1130.25}
		if sum != want {
			t.Fatalf("summary = %+v, want %+v", sum, want)
		}
		if sum.TotalIncome-sum.TotalExpense != sum.Balance {
			t.Fatalf("balance mismatch: %+v", sum)
		}
	})

	t.Run("store keeps unvalidated rows as written", func(t *testing.T) {
		repo := open(t)
		ctx := context.Background()

		if _, err := repo.AddTransaction(ctx, core.Transaction{Type: "transfer", Category: "x", Amount: 40}); err != nil {
			t.Fatalf("add unknown type: %v", err)
		}
		if _, err := repo.AddTransaction(ctx, core.Transaction{Type: core.Income, Category: "x", Amount: 10}); err != nil {
			t.Fatalf("add income: %v", err)
		}
		sum, err := repo.Summary(ctx)
		if err != nil {
			t.Fatalf("summary: %v", err)
		}
		if sum.TotalIncome != 10 || sum.TotalExpense != 0 {
			t.Fatalf("unknown type leaked into totals: %+v", sum)
		}
	})

	t.Run("malformed stored dates stay listable", func(t *testing.T) {
		repo := open(t)
		ctx := context.Background()

		if _, err := repo.AddTransaction(ctx, core.Transaction{Date: core.NewDate(2025, 3, 1), Type: core.Income, Category: "salary", Amount: 10}); err != nil {
			t.Fatalf("add: %v", err)
		}
		legacyID, err := repo.AddTransaction(ctx, core.Transaction{Date: core.StoredDate("18/03/2025"), Type: core.Expense, Category: "food", Amount: 5})
		if err != nil {
			t.Fatalf("add malformed date: %v", err)
		}

		list, err := repo.ListTransactions(ctx)
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(list) != 2 {
			t.Fatalf("expected 2 transactions, got %+v", list)
		}
		got, err := repo.GetTransaction(ctx, legacyID)
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if got.Date.String() != "18/03/2025" || !got.Date.Unparsed() {
			t.Fatalf("expected stored date kept verbatim, got %q", got.Date)
		}

		sum, err := repo.Summary(ctx)
		if err != nil {
			t.Fatalf("summary: %v", err)
		}
		if sum.TotalIncome != 10 || sum.TotalExpense != 5 {
			t.Fatalf("unexpected summary: %+v", sum)
		}
		spent, err := repo.SumExpenses(ctx, core.NewDate(2025, 3, 1), core.NewDate(2025, 3, 19))
		if err != nil {
			t.Fatalf("sum expenses: %v", err)
		}
		if spent != 0 {
			t.Fatalf("malformed date counted in a window: %v", spent)
		}
	})

	t.Run("goal upsert keeps one row per period", func(t *testing.T) {
		repo := open(t)
		ctx := context.Background()

		if _, ok, err := repo.GetGoal(ctx, core.Monthly); err != nil || ok {
			t.Fatalf("expected unset goal, got ok=%v err=%v", ok, err)
		}
		if err := repo.SetGoal(ctx, core.Monthly, 100); err != nil {
			t.Fatalf("set goal: %v", err)
		}
		if err := repo.SetGoal(ctx, core.Monthly, 250); err != nil {
			t.Fatalf("replace goal: %v", err)
		}
		amount, ok, err := repo.GetGoal(ctx, core.Monthly)
		if err != nil || !ok || amount != 250 {
			t.Fatalf("expected monthly goal 250, got %v ok=%v err=%v", amount, ok, err)
		}
		if _, ok, err := repo.GetGoal(ctx, core.Weekly); err != nil || ok {
			t.Fatalf("weekly goal should be unset, ok=%v err=%v", ok, err)
		}
	})

	today := core.DateOf(Today)

	t.Run("progress without goal", func(t *testing.T) {
		repo := open(t)
		p, err := storage.GoalProgress(context.Background(), repo, core.Monthly, today)
		if err != nil {
			t.Fatalf("progress: %v", err)
		}
		if p.HasGoal() || p.Spent != 0 || p.Remaining != 0 || p.Message != "No goal set." {
			t.Fatalf("unexpected progress: %+v", p)
		}
	})

	progressCases := []struct {
		name      string
		period    core.PeriodType
		goal      float64
		rows      []core.Transaction
		spent     float64
		remaining float64
		contains  []string
	}{
		{
			name:   "monthly exceeded",
			period: core.Monthly,
			goal:   500,
			rows: []core.Transaction{
				{Date: core.NewDate(2025, 3, 1), Type: core.Expense, Category: "rent", Amount: 300},
				{Date: core.NewDate(2025, 3, 19), Type: core.Expense, Category: "food", Amount: 210},
				{Date: core.NewDate(2025, 2, 28), Type: core.Expense, Category: "old", Amount: 999},
				{Date: core.NewDate(2025, 3, 20), Type: core.Expense, Category: "future", Amount: 999},
				{Date: core.NewDate(2025, 3, 5), Type: core.Income, Category: "salary", Amount: 999},
			},
			spent:     510,
			remaining: -10,
			contains:  []string{"exceeded", "10.00"},
		},
		{
			name:   "monthly close to limit",
			period: core.Monthly,
			goal:   500,
			rows: []core.Transaction{
				{Date: core.NewDate(2025, 3, 2), Type: core.Expense, Category: "rent", Amount: 450},
			},
			spent:     450,
			remaining: 50,
			contains:  []string{"close to", "50.00"},
		},
		{
			name:   "weekly within limit",
			period: core.Weekly,
			goal:   100,
			rows: []core.Transaction{
				{Date: core.NewDate(2025, 3, 17), Type: core.Expense, Category: "food", Amount: 30},
				{Date: core.NewDate(2025, 3, 16), Type: core.Expense, Category: "sunday", Amount: 50},
			},
			spent:     30,
			remaining: 70,
			contains:  []string{"Within", "70.00"},
		},
	}
	for _, tc := range progressCases {
		t.Run("progress "+tc.name, func(t *testing.T) {
			repo := open(t)
			ctx := context.Background()
			for _, row := range tc.rows {
				if _, err := repo.AddTransaction(ctx, row); err != nil {
					t.Fatalf("add: %v", err)
				}
			}
			if err := repo.SetGoal(ctx, tc.period, tc.goal); err != nil {
				t.Fatalf("set goal: %v", err)
			}

			p, err := storage.GoalProgress(ctx, repo, tc.period, today)
			if err != nil {
				t.Fatalf("progress: %v", err)
			}
			if !p.HasGoal() || *p.GoalAmount != tc.goal {
				t.Fatalf("goal amount = %v, want %v", p.GoalAmount, tc.goal)
			}
			if p.Spent != tc.spent || p.Remaining != tc.remaining {
				t.Fatalf("spent/remaining = %v/%v, want %v/%v", p.Spent, p.Remaining, tc.spent, tc.remaining)
			}
			for _, part := range tc.contains {
				if !strings.Contains(p.Message, part) {
					t.Errorf("message %q missing %q", p.Message, part)
				}
			}
		})
	}

	t.Run("closed store reports storage errors", func(t *testing.T) {
		repo := newRepo(t, func() time.Time { return Today })
		if err := repo.Initialize(context.Background()); err != nil {
			t.Fatalf("initialize: %v", err)
		}
		if err := repo.Close(); err != nil {
			t.Fatalf("close: %v", err)
		}
		_, err := repo.ListTransactions(context.Background())
		if !storage.IsStorageError(err) {
			t.Fatalf("expected StorageError after close, got %v", err)
		}
	})
}
