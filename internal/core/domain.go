package core

import (
	"errors"
	"math"
	"strings"
	"time"
)

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"
)

const (
	Monthly PeriodType = "monthly"
	Weekly  PeriodType = "weekly"
)

// ISODate is the layout used to persist and exchange calendar dates.
const ISODate = "2006-01-02"

const (
	maxCategoryLength = 100
	maxNoteLength     = 200
)

type (
	TransactionType string

	PeriodType string

	Date struct {
		time.Time
		raw string // stored value that is not ISO-8601
	}

	Transaction struct {
		ID       int64
		Date     Date
		Type     TransactionType
		Category string
		Amount   float64 // Non-negative magnitude; the sign is implied by Type
		Note     string
	}

	Goal struct {
		Period PeriodType
		Amount float64
	}
)

var (
	ErrInvalidType     = errors.New("invalid transaction type")
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrEmptyCategory   = errors.New("empty category")
	ErrInvalidPeriod   = errors.New("invalid period type")
	ErrInvalidDate     = errors.New("invalid date")
	ErrNoteTooLong     = errors.New("note too long (max 200 characters)")
	ErrCategoryTooLong = errors.New("category too long (max 100 characters)")
)

func (t TransactionType) String() string {
	return string(t)
}

// IsValid reports whether t is one of the recognised transaction types.
func (t TransactionType) IsValid() bool {
	switch t {
	case Income, Expense:
		return true
	default:
		return false
	}
}

func (p PeriodType) String() string {
	return string(p)
}

// IsValid reports whether p is one of the recognised goal periods.
func (p PeriodType) IsValid() bool {
	switch p {
	case Monthly, Weekly:
		return true
	default:
		return false
	}
}

// Periods returns the recognised goal periods in display order.
func Periods() []PeriodType {
	return []PeriodType{Monthly, Weekly}
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar date in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, int(m), d)
}

// ParseDate parses an ISO-8601 date. A time-of-day suffix is ignored so
// rows written as "2025-01-02 10:00:00" still compare by date.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if len(s) > len(ISODate) {
		s = s[:len(ISODate)]
	}
	t, err := time.Parse(ISODate, s)
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

// StoredDate decodes a persisted date. Values that are not ISO-8601 are
// kept verbatim with a zero Time so legacy rows still list.
func StoredDate(s string) Date {
	d, err := ParseDate(s)
	if err != nil {
		return Date{raw: s}
	}
	return d
}

// Unparsed reports whether d holds a stored value that is not ISO-8601.
func (d Date) Unparsed() bool {
	return d.IsZero() && d.raw != ""
}

// String formats the date as YYYY-MM-DD, or returns the stored value
// verbatim when it never parsed.
func (d Date) String() string {
	if d.Unparsed() {
		return d.raw
	}
	return d.Format(ISODate)
}

// AddDays returns the date n days after d.
func (d Date) AddDays(n int) Date {
	return Date{Time: d.Time.AddDate(0, 0, n)}
}

// IsEmpty returns true if the date is zero (for optional dates)
func (d Date) IsEmpty() bool {
	return d.IsZero() && d.raw == ""
}

// WithDefaults fills the optional fields of a new transaction.
func (t Transaction) WithDefaults(now time.Time) Transaction {
	if t.Date.IsEmpty() {
		t.Date = DateOf(now)
	}
	return t
}

func validateAmount(amount float64) error {
	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount < 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (t Transaction) Validate() error {
	if !t.Type.IsValid() {
		return ErrInvalidType
	}
	if err := validateAmount(t.Amount); err != nil {
		return err
	}
	if strings.TrimSpace(t.Category) == "" {
		return ErrEmptyCategory
	}
	if len(t.Category) > maxCategoryLength {
		return ErrCategoryTooLong
	}
	if len(t.Note) > maxNoteLength {
		return ErrNoteTooLong
	}
	if t.Date.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

func (g Goal) Validate() error {
	if !g.Period.IsValid() {
		return ErrInvalidPeriod
	}
	return validateAmount(g.Amount)
}
