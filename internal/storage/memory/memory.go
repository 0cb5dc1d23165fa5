// Package memory is a process-local Repository used in tests and for
// throwaway runs.
package memory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"finance/internal/core"
	"finance/internal/storage"
)

var errClosed = errors.New("store closed")

type Store struct {
	mu     sync.Mutex
	items  []core.Transaction
	goals  map[core.PeriodType]float64
	nextID int64
	closed bool
	now    func() time.Time
}

var _ storage.Repository = (*Store)(nil)

func New() *Store {
	return &Store{goals: map[core.PeriodType]float64{}, now: time.Now}
}

// SetClock replaces the clock used to default transaction dates.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// lock acquires the mutex and fails once the store is closed.
func (s *Store) lock(op string) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return storage.Wrap(op, errClosed)
	}
	return nil
}

func (s *Store) Initialize(_ context.Context) error {
	if err := s.lock("initialize"); err != nil {
		return err
	}
	s.mu.Unlock()
	return nil
}

func (s *Store) Ping(_ context.Context) error {
	if err := s.lock("ping"); err != nil {
		return err
	}
	s.mu.Unlock()
	return nil
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *Store) AddTransaction(_ context.Context, t core.Transaction) (int64, error) {
	if err := s.lock("add transaction"); err != nil {
		return 0, err
	}
	defer s.mu.Unlock()

	t = t.WithDefaults(s.now())
	s.nextID++
	t.ID = s.nextID
	s.items = append(s.items, t)
	return t.ID, nil
}

func (s *Store) ListTransactions(_ context.Context) ([]core.Transaction, error) {
	if err := s.lock("list transactions"); err != nil {
		return nil, err
	}
	defer s.mu.Unlock()

	out := append([]core.Transaction{}, s.items...)
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date.Time) {
			return out[i].Date.After(out[j].Date.Time)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (s *Store) GetTransaction(_ context.Context, id int64) (core.Transaction, error) {
	if err := s.lock("get transaction"); err != nil {
		return core.Transaction{}, err
	}
	defer s.mu.Unlock()

	for _, t := range s.items {
		if t.ID == id {
			return t, nil
		}
	}
	return core.Transaction{}, storage.Wrap("get transaction", fmt.Errorf("transaction %d: %w", id, storage.ErrNotFound))
}

func (s *Store) Summary(_ context.Context) (core.Summary, error) {
	if err := s.lock("summary"); err != nil {
		return core.Summary{}, err
	}
	defer s.mu.Unlock()

	var income, expense float64
	for _, t := range s.items {
		switch t.Type {
		case core.Income:
			income += t.Amount
		case core.Expense:
			expense += t.Amount
		}
	}
	return core.NewSummary(income, expense), nil
}

func (s *Store) SetGoal(_ context.Context, period core.PeriodType, amount float64) error {
	if err := s.lock("set goal"); err != nil {
		return err
	}
	defer s.mu.Unlock()
	s.goals[period] = amount
	return nil
}

func (s *Store) GetGoal(_ context.Context, period core.PeriodType) (float64, bool, error) {
	if err := s.lock("get goal"); err != nil {
		return 0, false, err
	}
	defer s.mu.Unlock()
	amount, ok := s.goals[period]
	return amount, ok, nil
}

func (s *Store) SumExpenses(_ context.Context, start, end core.Date) (float64, error) {
	if err := s.lock("sum expenses"); err != nil {
		return 0, err
	}
	defer s.mu.Unlock()

	var total float64
	for _, t := range s.items {
		if t.Type != core.Expense || t.Date.Before(start.Time) || t.Date.After(end.Time) {
			continue
		}
		total += t.Amount
	}
	return total, nil
}
