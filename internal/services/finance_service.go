package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"finance/internal/core"
	applog "finance/internal/log"
	"finance/internal/storage"
)

// Publisher announces recorded transactions to other processes.
type Publisher interface {
	PublishTransactionRecorded(ctx context.Context, t core.Transaction) error
	Close() error
}

// NewTransaction is the caller's input for AddTransaction. Date and Note
// are optional.
type NewTransaction struct {
	Type     core.TransactionType
	Amount   float64
	Category string
	Date     string
	Note     string
}

// FinanceService validates input, writes to the repository first and then
// publishes events without failing the write.
type FinanceService struct {
	repo      storage.Repository
	publisher Publisher
	now       func() time.Time
}

// NewFinanceService builds a service over repo. publisher may be nil.
func NewFinanceService(repo storage.Repository, publisher Publisher) *FinanceService {
	return &FinanceService{
		repo:      repo,
		publisher: publisher,
		now:       time.Now,
	}
}

// SetClock replaces the clock used for default dates and goal windows.
func (s *FinanceService) SetClock(now func() time.Time) {
	s.now = now
}

func (s *FinanceService) today() core.Date {
	return core.DateOf(s.now())
}

func (s *FinanceService) Initialize(ctx context.Context) error {
	return s.repo.Initialize(ctx)
}

func (s *FinanceService) Ping(ctx context.Context) error {
	return s.repo.Ping(ctx)
}

// AddTransaction validates in, stores it and publishes a
// transaction.recorded event. Invalid input writes nothing.
func (s *FinanceService) AddTransaction(ctx context.Context, in NewTransaction) (core.Transaction, error) {
	t := core.Transaction{
		Type:     core.TransactionType(strings.ToLower(strings.TrimSpace(string(in.Type)))),
		Amount:   in.Amount,
		Category: strings.TrimSpace(in.Category),
		Note:     strings.TrimSpace(in.Note),
	}
	if strings.TrimSpace(in.Date) != "" {
		d, err := core.ParseDate(in.Date)
		if err != nil {
			return core.Transaction{}, err
		}
		t.Date = d
	}
	t = t.WithDefaults(s.now())
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}

	id, err := s.repo.AddTransaction(ctx, t)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("save transaction: %w", err)
	}
	t.ID = id

	events := applog.NewStructuredLogger(applog.FromContext(ctx).WithComponent(applog.ComponentFinance))
	events.LogTransactionRecorded(ctx, t)

	if err := s.publish(ctx, t); err != nil {
		events.LogError(ctx, "Failed to publish transaction recorded message", err, applog.OpPublish, applog.ErrorTypeNetwork)
	}

	return t, nil
}

func (s *FinanceService) publish(ctx context.Context, t core.Transaction) error {
	if s.publisher == nil {
		slog.DebugContext(ctx, "No publisher configured, skipping transaction recorded message")
		return nil
	}
	return s.publisher.PublishTransactionRecorded(ctx, t)
}

func (s *FinanceService) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	list, err := s.repo.ListTransactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return list, nil
}

func (s *FinanceService) GetTransaction(ctx context.Context, id int64) (core.Transaction, error) {
	t, err := s.repo.GetTransaction(ctx, id)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction: %w", err)
	}
	return t, nil
}

func (s *FinanceService) Summary(ctx context.Context) (core.Summary, error) {
	sum, err := s.repo.Summary(ctx)
	if err != nil {
		return core.Summary{}, fmt.Errorf("get summary: %w", err)
	}
	return sum, nil
}

// SetGoal validates and upserts the goal for period.
func (s *FinanceService) SetGoal(ctx context.Context, period core.PeriodType, amount float64) error {
	g := core.Goal{Period: period, Amount: amount}
	if err := g.Validate(); err != nil {
		return err
	}
	if err := s.repo.SetGoal(ctx, g.Period, g.Amount); err != nil {
		return fmt.Errorf("set goal: %w", err)
	}
	slog.InfoContext(ctx, "Goal set", "period", period, "amount", amount)
	return nil
}

// GetGoal returns the goal for period; ok is false when none is set.
func (s *FinanceService) GetGoal(ctx context.Context, period core.PeriodType) (amount float64, ok bool, err error) {
	if !period.IsValid() {
		return 0, false, core.ErrInvalidPeriod
	}
	amount, ok, err = s.repo.GetGoal(ctx, period)
	if err != nil {
		return 0, false, fmt.Errorf("get goal: %w", err)
	}
	return amount, ok, nil
}

// GoalProgress evaluates period's goal over the window ending today.
func (s *FinanceService) GoalProgress(ctx context.Context, period core.PeriodType) (core.GoalProgress, error) {
	if !period.IsValid() {
		return core.GoalProgress{}, core.ErrInvalidPeriod
	}
	return storage.GoalProgress(ctx, s.repo, period, s.today())
}

// Close closes both the repository and the publisher.
func (s *FinanceService) Close() error {
	var errs []error

	if s.repo != nil {
		if err := s.repo.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}

	if s.publisher != nil {
		if err := s.publisher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("publisher: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close finance service: %v", errs)
	}

	return nil
}
