// Package boltdb stores transactions and goals in a single bbolt file.
//
// Layout:
//
//	transactions/byID/<id>          JSON transaction
//	transactions/byDate/<date>/<id> JSON transaction
//	goals/<period>                  JSON goal
package boltdb

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"finance/internal/core"
	"finance/internal/storage"

	bolt "go.etcd.io/bbolt"
)

var (
	transactionsBucketName = []byte("transactions")
	byIDBucketName         = []byte("byID")
	byDateBucketName       = []byte("byDate")
	goalsBucketName        = []byte("goals")
)

var errNotInitialized = fmt.Errorf("buckets missing, call Initialize first")

type record struct {
	ID       int64   `json:"id"`
	Date     string  `json:"date"`
	Type     string  `json:"type"`
	Category string  `json:"category"`
	Amount   float64 `json:"amount"`
	Note     string  `json:"note,omitempty"`
}

type goalRecord struct {
	Amount float64 `json:"amount"`
}

type Repository struct {
	db  *bolt.DB
	now func() time.Time
}

var _ storage.Repository = (*Repository)(nil)

// Open opens (or creates) the bolt file at path.
func Open(path string) (*Repository, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, storage.Wrap("open", fmt.Errorf("create db directory: %w", err))
	}
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, storage.Wrap("open", fmt.Errorf("open bolt file %s: %w", path, err))
	}
	return &Repository{db: db, now: time.Now}, nil
}

// SetClock replaces the clock used to default transaction dates.
func (r *Repository) SetClock(now func() time.Time) {
	r.now = now
}

func (r *Repository) Close() error {
	return r.db.Close()
}

func (r *Repository) Ping(ctx context.Context) error {
	return storage.Wrap("ping", r.db.View(func(tx *bolt.Tx) error { return nil }))
}

func (r *Repository) Initialize(ctx context.Context) error {
	err := r.db.Update(func(tx *bolt.Tx) error {
		tBucket, err := tx.CreateBucketIfNotExists(transactionsBucketName)
		if err != nil {
			return err
		}
		if _, err := tBucket.CreateBucketIfNotExists(byIDBucketName); err != nil {
			return err
		}
		if _, err := tBucket.CreateBucketIfNotExists(byDateBucketName); err != nil {
			return err
		}
		_, err = tx.CreateBucketIfNotExists(goalsBucketName)
		return err
	})
	if err != nil {
		return storage.Wrap("initialize", fmt.Errorf("create buckets: %w", err))
	}
	slog.InfoContext(ctx, "Schema initialized", "backend", "bolt", "path", r.db.Path())
	return nil
}

func buckets(tx *bolt.Tx) (byID, byDate *bolt.Bucket, err error) {
	tBucket := tx.Bucket(transactionsBucketName)
	if tBucket == nil {
		return nil, nil, errNotInitialized
	}
	return tBucket.Bucket(byIDBucketName), tBucket.Bucket(byDateBucketName), nil
}

func (r *Repository) AddTransaction(ctx context.Context, t core.Transaction) (int64, error) {
	t = t.WithDefaults(r.now())

	var id int64
	err := r.db.Update(func(tx *bolt.Tx) error {
		byID, byDate, err := buckets(tx)
		if err != nil {
			return err
		}
		seq, err := byID.NextSequence()
		if err != nil {
			return err
		}
		id = int64(seq)

		raw, err := json.Marshal(record{
			ID:       id,
			Date:     t.Date.String(),
			Type:     string(t.Type),
			Category: t.Category,
			Amount:   t.Amount,
			Note:     t.Note,
		})
		if err != nil {
			return err
		}

		key := itob(seq)
		if err := byID.Put(key, raw); err != nil {
			return err
		}
		day, err := byDate.CreateBucketIfNotExists([]byte(t.Date.String()))
		if err != nil {
			return err
		}
		return day.Put(key, raw)
	})
	if err != nil {
		return 0, storage.Wrap("add transaction", err)
	}
	return id, nil
}

// ListTransactions walks the date index backwards so rows come out newest
// date first, then highest id first.
func (r *Repository) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	out := []core.Transaction{}
	err := r.db.View(func(tx *bolt.Tx) error {
		_, byDate, err := buckets(tx)
		if err != nil {
			return err
		}
		dates := byDate.Cursor()
		for k, _ := dates.Last(); k != nil; k, _ = dates.Prev() {
			day := byDate.Bucket(k)
			if day == nil {
				continue
			}
			c := day.Cursor()
			for id, v := c.Last(); id != nil; id, v = c.Prev() {
				t, err := decode(v)
				if err != nil {
					return err
				}
				out = append(out, t)
			}
		}
		return nil
	})
	if err != nil {
		return nil, storage.Wrap("list transactions", err)
	}
	return out, nil
}

func (r *Repository) GetTransaction(ctx context.Context, id int64) (core.Transaction, error) {
	var t core.Transaction
	err := r.db.View(func(tx *bolt.Tx) error {
		byID, _, err := buckets(tx)
		if err != nil {
			return err
		}
		raw := byID.Get(itob(uint64(id)))
		if raw == nil {
			return fmt.Errorf("transaction %d: %w", id, storage.ErrNotFound)
		}
		t, err = decode(raw)
		return err
	})
	if err != nil {
		return core.Transaction{}, storage.Wrap("get transaction", err)
	}
	return t, nil
}

func (r *Repository) Summary(ctx context.Context) (core.Summary, error) {
	var income, expense float64
	err := r.db.View(func(tx *bolt.Tx) error {
		byID, _, err := buckets(tx)
		if err != nil {
			return err
		}
		return byID.ForEach(func(_, v []byte) error {
			var rec record
			if err := json.Unmarshal(v, &rec); err != nil {
				return err
			}
			switch core.TransactionType(rec.Type) {
			case core.Income:
				income += rec.Amount
			case core.Expense:
				expense += rec.Amount
			}
			return nil
		})
	})
	if err != nil {
		return core.Summary{}, storage.Wrap("summary", err)
	}
	return core.NewSummary(income, expense), nil
}

func (r *Repository) SetGoal(ctx context.Context, period core.PeriodType, amount float64) error {
	err := r.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(goalsBucketName)
		if b == nil {
			return errNotInitialized
		}
		raw, err := json.Marshal(goalRecord{Amount: amount})
		if err != nil {
			return err
		}
		return b.Put([]byte(period), raw)
	})
	return storage.Wrap("set goal", err)
}

func (r *Repository) GetGoal(ctx context.Context, period core.PeriodType) (float64, bool, error) {
	var (
		goal  goalRecord
		found bool
	)
	err := r.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(goalsBucketName)
		if b == nil {
			return errNotInitialized
		}
		raw := b.Get([]byte(period))
		if raw == nil {
			return nil
		}
		found = true
		return json.Unmarshal(raw, &goal)
	})
	if err != nil {
		return 0, false, storage.Wrap("get goal", err)
	}
	return goal.Amount, found, nil
}

// SumExpenses seeks the date index to start and stops past end.
func (r *Repository) SumExpenses(ctx context.Context, start, end core.Date) (float64, error) {
	var total float64
	err := r.db.View(func(tx *bolt.Tx) error {
		_, byDate, err := buckets(tx)
		if err != nil {
			return err
		}
		last := end.String()
		c := byDate.Cursor()
		for k, _ := c.Seek([]byte(start.String())); k != nil && string(k) <= last; k, _ = c.Next() {
			day := byDate.Bucket(k)
			if day == nil {
				continue
			}
			err := day.ForEach(func(_, v []byte) error {
				var rec record
				if err := json.Unmarshal(v, &rec); err != nil {
					return err
				}
				if core.TransactionType(rec.Type) == core.Expense {
					total += rec.Amount
				}
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, storage.Wrap("sum expenses", err)
	}
	return total, nil
}

func decode(raw []byte) (core.Transaction, error) {
	var rec record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return core.Transaction{}, fmt.Errorf("decode transaction: %w", err)
	}
	return core.Transaction{
		ID:       rec.ID,
		Date:     core.StoredDate(rec.Date),
		Type:     core.TransactionType(rec.Type),
		Category: rec.Category,
		Amount:   rec.Amount,
		Note:     rec.Note,
	}, nil
}

func itob(v uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, v)
	return b
}
