package boltdb

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"finance/internal/core"
	"finance/internal/storage"
	"finance/internal/storage/storagetest"
)

func TestRepository(t *testing.T) {
	storagetest.Run(t, func(t *testing.T, now func() time.Time) storage.Repository {
		t.Helper()
		repo, err := Open(filepath.Join(t.TempDir(), "finance.bolt"))
		if err != nil {
			t.Fatalf("open: %v", err)
		}
		repo.SetClock(now)
		return repo
	})
}

func TestOperationsBeforeInitialize(t *testing.T) {
	repo, err := Open(filepath.Join(t.TempDir(), "finance.bolt"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer repo.Close()

	_, err = repo.AddTransaction(context.Background(), core.Transaction{Type: core.Expense, Category: "x", Amount: 1})
	if !storage.IsStorageError(err) {
		t.Fatalf("expected StorageError, got %v", err)
	}
}

func TestReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "finance.bolt")
	ctx := context.Background()

	repo, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := repo.Initialize(ctx); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	id, err := repo.AddTransaction(ctx, core.Transaction{Date: core.NewDate(2025, 1, 2), Type: core.Income, Category: "salary", Amount: 10})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := repo.SetGoal(ctx, core.Weekly, 75); err != nil {
		t.Fatalf("set goal: %v", err)
	}
	repo.Close()

	repo, err = Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer repo.Close()
	if err := repo.Initialize(ctx); err != nil {
		t.Fatalf("initialize again: %v", err)
	}
	got, err := repo.GetTransaction(ctx, id)
	if err != nil || got.Category != "salary" || got.Date.String() != "2025-01-02" {
		t.Fatalf("unexpected transaction %+v err=%v", got, err)
	}
	amount, ok, err := repo.GetGoal(ctx, core.Weekly)
	if err != nil || !ok || amount != 75 {
		t.Fatalf("goal = %v ok=%v err=%v", amount, ok, err)
	}
	next, err := repo.AddTransaction(ctx, core.Transaction{Type: core.Expense, Category: "food", Amount: 1})
	if err != nil || next <= id {
		t.Fatalf("expected id after %d, got %d err=%v", id, next, err)
	}
}
