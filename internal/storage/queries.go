package storage

import (
	"context"
	"database/sql"
)

// DBTX is satisfied by *sql.DB, *sql.Conn and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

func New(db DBTX, dialect Dialect) *Queries {
	return &Queries{db: db, dialect: dialect}
}

type Queries struct {
	db      DBTX
	dialect Dialect
}

// TransactionRow mirrors one row of the transactions table.
type TransactionRow struct {
	ID       int64
	TDate    string
	TType    string
	Category string
	Amount   float64
	Note     sql.NullString
}

const createTransaction = `INSERT INTO transactions (t_date, t_type, category, amount, note)
VALUES (?, ?, ?, ?, ?)
RETURNING id`

type CreateTransactionParams struct {
	TDate    string
	TType    string
	Category string
	Amount   float64
	Note     sql.NullString
}

func (q *Queries) CreateTransaction(ctx context.Context, arg CreateTransactionParams) (int64, error) {
	row := q.db.QueryRowContext(ctx, q.dialect.rebind(createTransaction),
		arg.TDate,
		arg.TType,
		arg.Category,
		arg.Amount,
		arg.Note,
	)
	var id int64
	err := row.Scan(&id)
	return id, err
}

const listTransactions = `SELECT id, t_date, t_type, category, amount, note
FROM transactions
ORDER BY t_date DESC, id DESC`

func (q *Queries) ListTransactions(ctx context.Context) ([]TransactionRow, error) {
	rows, err := q.db.QueryContext(ctx, listTransactions)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []TransactionRow{}
	for rows.Next() {
		var i TransactionRow
		if err := rows.Scan(
			&i.ID,
			&i.TDate,
			&i.TType,
			&i.Category,
			&i.Amount,
			&i.Note,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const getTransaction = `SELECT id, t_date, t_type, category, amount, note
FROM transactions
WHERE id = ?`

func (q *Queries) GetTransaction(ctx context.Context, id int64) (TransactionRow, error) {
	row := q.db.QueryRowContext(ctx, q.dialect.rebind(getTransaction), id)
	var i TransactionRow
	err := row.Scan(
		&i.ID,
		&i.TDate,
		&i.TType,
		&i.Category,
		&i.Amount,
		&i.Note,
	)
	return i, err
}

const getTotals = `SELECT
    COALESCE(SUM(CASE WHEN t_type = 'income' THEN amount END), 0.0),
    COALESCE(SUM(CASE WHEN t_type = 'expense' THEN amount END), 0.0)
FROM transactions`

type GetTotalsRow struct {
	TotalIncome  float64
	TotalExpense float64
}

func (q *Queries) GetTotals(ctx context.Context) (GetTotalsRow, error) {
	row := q.db.QueryRowContext(ctx, getTotals)
	var i GetTotalsRow
	err := row.Scan(&i.TotalIncome, &i.TotalExpense)
	return i, err
}

const upsertGoal = `INSERT INTO goals (goal_type, amount)
VALUES (?, ?)
ON CONFLICT (goal_type) DO UPDATE SET amount = excluded.amount`

func (q *Queries) UpsertGoal(ctx context.Context, goalType string, amount float64) error {
	_, err := q.db.ExecContext(ctx, q.dialect.rebind(upsertGoal), goalType, amount)
	return err
}

const getGoal = `SELECT amount FROM goals WHERE goal_type = ?`

func (q *Queries) GetGoal(ctx context.Context, goalType string) (float64, error) {
	row := q.db.QueryRowContext(ctx, q.dialect.rebind(getGoal), goalType)
	var amount float64
	err := row.Scan(&amount)
	return amount, err
}

// Only the date part of t_date takes part in the comparison.
const sumExpensesBetween = `SELECT COALESCE(SUM(amount), 0.0)
FROM transactions
WHERE t_type = 'expense'
  AND substr(t_date, 1, 10) BETWEEN ? AND ?`

func (q *Queries) SumExpensesBetween(ctx context.Context, start, end string) (float64, error) {
	row := q.db.QueryRowContext(ctx, q.dialect.rebind(sumExpensesBetween), start, end)
	var total float64
	err := row.Scan(&total)
	return total, err
}
