package services

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"math"
	"strings"
	"testing"
	"time"

	"finance/internal/core"
	applog "finance/internal/log"
	"finance/internal/storage"
	"finance/internal/storage/memory"
)

type fakePublisher struct {
	published []core.Transaction
	err       error
	closed    bool
}

func (f *fakePublisher) PublishTransactionRecorded(_ context.Context, t core.Transaction) error {
	f.published = append(f.published, t)
	return f.err
}

func (f *fakePublisher) Close() error {
	f.closed = true
	return nil
}

var fixedNow = time.Date(2025, 3, 19, 8, 0, 0, 0, time.UTC)

func newTestService(t *testing.T, pub Publisher) (*FinanceService, *memory.Store) {
	t.Helper()
	store := memory.New()
	store.SetClock(func() time.Time { return fixedNow })
	svc := NewFinanceService(store, pub)
	svc.SetClock(func() time.Time { return fixedNow })
	if err := svc.Initialize(context.Background()); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	return svc, store
}

func TestAddTransaction(t *testing.T) {
	pub := &fakePublisher{}
	svc, _ := newTestService(t, pub)
	ctx := context.Background()

	got, err := svc.AddTransaction(ctx, NewTransaction{Type: " Expense ", Amount: 12.5, Category: " food "})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if got.ID == 0 || got.Type != core.Expense || got.Category != "food" || got.Date.String() != "2025-03-19" {
		t.Fatalf("unexpected transaction %+v", got)
	}
	if len(pub.published) != 1 || pub.published[0].ID != got.ID {
		t.Fatalf("expected exactly one event for id %d, got %+v", got.ID, pub.published)
	}

	stored, err := svc.GetTransaction(ctx, got.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if stored.Amount != 12.5 {
		t.Fatalf("stored amount %v", stored.Amount)
	}
}

func TestAddTransactionExplicitDate(t *testing.T) {
	svc, _ := newTestService(t, nil)

	got, err := svc.AddTransaction(context.Background(), NewTransaction{Type: core.Income, Amount: 100, Category: "salary", Date: "2024-12-31", Note: "bonus"})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if got.Date.String() != "2024-12-31" || got.Note != "bonus" {
		t.Fatalf("unexpected transaction %+v", got)
	}
}

func TestZeroAmountsAccepted(t *testing.T) {
	svc, _ := newTestService(t, nil)
	ctx := context.Background()

	got, err := svc.AddTransaction(ctx, NewTransaction{Type: core.Expense, Amount: 0, Category: "refund"})
	if err != nil || got.Amount != 0 {
		t.Fatalf("zero amount: %+v, %v", got, err)
	}
	if err := svc.SetGoal(ctx, core.Weekly, 0); err != nil {
		t.Fatalf("zero goal: %v", err)
	}
	amount, ok, err := svc.GetGoal(ctx, core.Weekly)
	if err != nil || !ok || amount != 0 {
		t.Fatalf("get zero goal: %v %v %v", amount, ok, err)
	}
}

func TestAddTransactionRejectsInvalidInput(t *testing.T) {
	tests := []struct {
		name string
		in   NewTransaction
		want error
	}{
		{"unknown type", NewTransaction{Type: "transfer", Amount: 1, Category: "x"}, core.ErrInvalidType},
		{"negative amount", NewTransaction{Type: core.Expense, Amount: -5, Category: "x"}, core.ErrInvalidAmount},
		{"nan amount", NewTransaction{Type: core.Expense, Amount: math.NaN(), Category: "x"}, core.ErrInvalidAmount},
		{"empty category", NewTransaction{Type: core.Income, Amount: 1, Category: "  "}, core.ErrEmptyCategory},
		{"bad date", NewTransaction{Type: core.Income, Amount: 1, Category: "x", Date: "19/03/2025"}, core.ErrInvalidDate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pub := &fakePublisher{}
			svc, store := newTestService(t, pub)
			ctx := context.Background()

			_, err := svc.AddTransaction(ctx, tt.in)
			if !errors.Is(err, tt.want) {
				t.Fatalf("error = %v, want %v", err, tt.want)
			}
			list, _ := store.ListTransactions(ctx)
			if len(list) != 0 || len(pub.published) != 0 {
				t.Fatalf("invalid input must write nothing, got %d rows and %d events", len(list), len(pub.published))
			}
		})
	}
}

func TestAddTransactionPublishFailureKeepsWrite(t *testing.T) {
	pub := &fakePublisher{err: errors.New("broker down")}
	svc, store := newTestService(t, pub)
	var buf bytes.Buffer
	logger := applog.New(applog.Config{Level: slog.LevelInfo, Component: applog.ComponentHTTP, Output: &buf})
	ctx := applog.NewContext(context.Background(), logger)

	got, err := svc.AddTransaction(ctx, NewTransaction{Type: core.Expense, Amount: 3, Category: "bus"})
	if err != nil {
		t.Fatalf("publish failure should not fail the write: %v", err)
	}
	list, _ := store.ListTransactions(ctx)
	if len(list) != 1 || list[0].ID != got.ID {
		t.Fatalf("expected the transaction to be stored, got %+v", list)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected two log lines, got:\n%s", buf.String())
	}
	for _, want := range []string{`msg="Transaction recorded"`, "component=finance", "operation=create", "category=bus"} {
		if !strings.Contains(lines[0], want) {
			t.Errorf("recorded line missing %q: %s", want, lines[0])
		}
	}
	for _, want := range []string{"level=ERROR", "operation=publish", "error_type=network_error", `error="broker down"`} {
		if !strings.Contains(lines[1], want) {
			t.Errorf("publish failure line missing %q: %s", want, lines[1])
		}
	}
}

func TestAddTransactionStorageFailure(t *testing.T) {
	svc, store := newTestService(t, nil)
	store.Close()

	_, err := svc.AddTransaction(context.Background(), NewTransaction{Type: core.Expense, Amount: 3, Category: "bus"})
	if !storage.IsStorageError(err) {
		t.Fatalf("expected StorageError, got %v", err)
	}
}

func TestGoals(t *testing.T) {
	svc, _ := newTestService(t, nil)
	ctx := context.Background()

	if err := svc.SetGoal(ctx, "yearly", 10); !errors.Is(err, core.ErrInvalidPeriod) {
		t.Fatalf("expected ErrInvalidPeriod, got %v", err)
	}
	if err := svc.SetGoal(ctx, core.Monthly, -1); !errors.Is(err, core.ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
	if _, _, err := svc.GetGoal(ctx, "daily"); !errors.Is(err, core.ErrInvalidPeriod) {
		t.Fatalf("expected ErrInvalidPeriod, got %v", err)
	}

	if _, ok, err := svc.GetGoal(ctx, core.Monthly); err != nil || ok {
		t.Fatalf("expected no goal, ok=%v err=%v", ok, err)
	}
	if err := svc.SetGoal(ctx, core.Monthly, 500); err != nil {
		t.Fatalf("set goal: %v", err)
	}
	amount, ok, err := svc.GetGoal(ctx, core.Monthly)
	if err != nil || !ok || amount != 500 {
		t.Fatalf("goal = %v ok=%v err=%v", amount, ok, err)
	}
}

func TestGoalProgress(t *testing.T) {
	svc, _ := newTestService(t, nil)
	ctx := context.Background()

	if _, err := svc.GoalProgress(ctx, "daily"); !errors.Is(err, core.ErrInvalidPeriod) {
		t.Fatalf("expected ErrInvalidPeriod, got %v", err)
	}

	p, err := svc.GoalProgress(ctx, core.Weekly)
	if err != nil || p.HasGoal() || p.Status != core.StatusNoGoal {
		t.Fatalf("expected no goal progress, got %+v err=%v", p, err)
	}

	for _, in := range []NewTransaction{
		{Type: core.Expense, Amount: 300, Category: "rent", Date: "2025-03-01"},
		{Type: core.Expense, Amount: 210, Category: "food"},
		{Type: core.Expense, Amount: 80, Category: "old", Date: "2025-02-28"},
	} {
		if _, err := svc.AddTransaction(ctx, in); err != nil {
			t.Fatalf("add: %v", err)
		}
	}
	if err := svc.SetGoal(ctx, core.Monthly, 500); err != nil {
		t.Fatalf("set goal: %v", err)
	}

	p, err = svc.GoalProgress(ctx, core.Monthly)
	if err != nil {
		t.Fatalf("progress: %v", err)
	}
	if p.Spent != 510 || p.Remaining != -10 || p.Status != core.StatusExceeded {
		t.Fatalf("unexpected progress %+v", p)
	}
	if p.Start.String() != "2025-03-01" || p.End.String() != "2025-03-19" {
		t.Fatalf("unexpected window %s..%s", p.Start, p.End)
	}
}

func TestSummary(t *testing.T) {
	svc, _ := newTestService(t, nil)
	ctx := context.Background()

	for _, in := range []NewTransaction{
		{Type: core.Income, Amount: 1000, Category: "salary"},
		{Type: core.Expense, Amount: 250, Category: "rent"},
	} {
		if _, err := svc.AddTransaction(ctx, in); err != nil {
			t.Fatalf("add: %v", err)
		}
	}
	sum, err := svc.Summary(ctx)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if sum != (core.Summary{TotalIncome: 1000, TotalExpense: 250, Balance: 750}) {
		t.Fatalf("unexpected summary %+v", sum)
	}
}

func TestClose(t *testing.T) {
	pub := &fakePublisher{}
	svc, store := newTestService(t, pub)

	if err := svc.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if !pub.closed {
		t.Fatal("publisher not closed")
	}
	if err := store.Ping(context.Background()); !storage.IsStorageError(err) {
		t.Fatalf("store should be closed, ping = %v", err)
	}

	empty := &FinanceService{}
	if err := empty.Close(); err != nil {
		t.Fatalf("Close should not return error with nil components: %v", err)
	}
}
