package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"finance/internal/core"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// SQLRepository stores transactions and goals in SQLite or PostgreSQL.
// Every operation checks out its own connection and returns it before
// returning, on success and failure alike.
type SQLRepository struct {
	db      *sql.DB
	dialect Dialect
	dsn     string
	now     func() time.Time
}

var _ Repository = (*SQLRepository)(nil)

// NewSQLiteRepository opens the SQLite database at dbPath, creating its
// directory when needed.
func NewSQLiteRepository(dbPath string) (*SQLRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, Wrap("open", fmt.Errorf("create db directory: %w", err))
	}
	return Open(SQLite, dbPath)
}

// NewPostgresRepository connects to the PostgreSQL database at url.
func NewPostgresRepository(url string) (*SQLRepository, error) {
	return Open(Postgres, url)
}

// Open connects to dsn with the driver of dialect and verifies the store
// is reachable.
func Open(dialect Dialect, dsn string) (*SQLRepository, error) {
	db, err := sql.Open(dialect.DriverName(), dsn)
	if err != nil {
		return nil, Wrap("open", fmt.Errorf("open %s database: %w", dialect, err))
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, Wrap("open", fmt.Errorf("ping database: %w", err))
	}

	return &SQLRepository{
		db:      db,
		dialect: dialect,
		dsn:     dsn,
		now:     time.Now,
	}, nil
}

// SetClock replaces the clock used to default transaction dates.
func (r *SQLRepository) SetClock(now func() time.Time) {
	r.now = now
}

// Dialect reports which SQL dialect the repository speaks.
func (r *SQLRepository) Dialect() Dialect {
	return r.dialect
}

func (r *SQLRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// withConn runs fn on a dedicated connection that is released on every
// exit path.
func (r *SQLRepository) withConn(ctx context.Context, op string, fn func(q *Queries) error) error {
	conn, err := r.db.Conn(ctx)
	if err != nil {
		return Wrap(op, fmt.Errorf("acquire connection: %w", err))
	}
	defer conn.Close()

	return Wrap(op, fn(New(conn, r.dialect)))
}

func (r *SQLRepository) Ping(ctx context.Context) error {
	return Wrap("ping", r.db.PingContext(ctx))
}

// Initialize implements SchemaManager
func (r *SQLRepository) Initialize(ctx context.Context) error {
	if err := RunMigrations(r.dialect, r.dsn); err != nil {
		return Wrap("initialize", err)
	}
	slog.InfoContext(ctx, "Schema initialized", "dialect", r.dialect)
	return nil
}

// AddTransaction implements TransactionWriter
func (r *SQLRepository) AddTransaction(ctx context.Context, t core.Transaction) (int64, error) {
	t = t.WithDefaults(r.now())

	var id int64
	err := r.withConn(ctx, "add transaction", func(q *Queries) error {
		var err error
		id, err = q.CreateTransaction(ctx, CreateTransactionParams{
			TDate:    t.Date.String(),
			TType:    string(t.Type),
			Category: t.Category,
			Amount:   t.Amount,
			Note:     sql.NullString{String: t.Note, Valid: true},
		})
		if err != nil {
			return fmt.Errorf("create transaction: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	slog.DebugContext(ctx, "Transaction saved",
		"id", id,
		"type", t.Type,
		"amount", t.Amount,
		"date", t.Date.String())

	return id, nil
}

// ListTransactions implements TransactionReader
func (r *SQLRepository) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	var out []core.Transaction
	err := r.withConn(ctx, "list transactions", func(q *Queries) error {
		rows, err := q.ListTransactions(ctx)
		if err != nil {
			return fmt.Errorf("list transactions: %w", err)
		}
		out = make([]core.Transaction, 0, len(rows))
		for _, row := range rows {
			out = append(out, row.toCore())
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// GetTransaction implements TransactionReader
func (r *SQLRepository) GetTransaction(ctx context.Context, id int64) (core.Transaction, error) {
	var t core.Transaction
	err := r.withConn(ctx, "get transaction", func(q *Queries) error {
		row, err := q.GetTransaction(ctx, id)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("transaction %d: %w", id, ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("get transaction by id: %w", err)
		}
		t = row.toCore()
		return nil
	})
	return t, err
}

// Summary implements SummaryReader
func (r *SQLRepository) Summary(ctx context.Context) (core.Summary, error) {
	var totals GetTotalsRow
	err := r.withConn(ctx, "summary", func(q *Queries) error {
		var err error
		totals, err = q.GetTotals(ctx)
		if err != nil {
			return fmt.Errorf("get totals: %w", err)
		}
		return nil
	})
	if err != nil {
		return core.Summary{}, err
	}
	return core.NewSummary(totals.TotalIncome, totals.TotalExpense), nil
}

// SetGoal implements GoalStore
func (r *SQLRepository) SetGoal(ctx context.Context, period core.PeriodType, amount float64) error {
	return r.withConn(ctx, "set goal", func(q *Queries) error {
		if err := q.UpsertGoal(ctx, string(period), amount); err != nil {
			return fmt.Errorf("upsert goal %s: %w", period, err)
		}
		return nil
	})
}

// GetGoal implements GoalStore
func (r *SQLRepository) GetGoal(ctx context.Context, period core.PeriodType) (float64, bool, error) {
	var (
		amount float64
		found  bool
	)
	err := r.withConn(ctx, "get goal", func(q *Queries) error {
		var err error
		amount, err = q.GetGoal(ctx, string(period))
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("get goal %s: %w", period, err)
		}
		found = true
		return nil
	})
	if err != nil {
		return 0, false, err
	}
	return amount, found, nil
}

// SumExpenses implements ExpenseSummer
func (r *SQLRepository) SumExpenses(ctx context.Context, start, end core.Date) (float64, error) {
	var total float64
	err := r.withConn(ctx, "sum expenses", func(q *Queries) error {
		var err error
		total, err = q.SumExpensesBetween(ctx, start.String(), end.String())
		if err != nil {
			return fmt.Errorf("sum expenses between %s and %s: %w", start, end, err)
		}
		return nil
	})
	return total, err
}

// toCore keeps dates that never parsed verbatim; rows written by other
// tools are listed as stored.
func (row TransactionRow) toCore() core.Transaction {
	return core.Transaction{
		ID:       row.ID,
		Date:     core.StoredDate(row.TDate),
		Type:     core.TransactionType(row.TType),
		Category: row.Category,
		Amount:   row.Amount,
		Note:     row.Note.String,
	}
}
