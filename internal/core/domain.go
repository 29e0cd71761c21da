package core

import (
	"errors"
	"strings"
	"time"
)

// DateLayout is the textual date format used by the form and the backing file.
const DateLayout = "2006-01-02"

const maxDescriptionLen = 200

const (
	Income  Type = "Income"
	Expense Type = "Expense"
)

const (
	Food            Category = "Food"
	Transport       Category = "Transport"
	Housing         Category = "Housing"
	Entertainment   Category = "Entertainment"
	Salary          Category = "Salary"
	EducationalFees Category = "Educational Fees"
	Rent            Category = "Rent"
	Other           Category = "Other"
)

type (
	Type string

	Category string

	Date struct {
		time.Time
	}

	// Money is an amount in cents. Transactions keep the unsigned magnitude;
	// the sign is derived from the transaction type.
	Money struct {
		Cents int64
	}

	Transaction struct {
		Date        Date
		Type        Type
		Category    Category
		Amount      Money
		Description string
	}

	// Ledger is the full ordered set of transactions, in insertion order.
	Ledger []Transaction
)

var (
	ErrInvalidDate        = errors.New("invalid date")
	ErrInvalidType        = errors.New("invalid transaction type")
	ErrInvalidCategory    = errors.New("invalid category")
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrEmptyDescription   = errors.New("empty description")
	ErrDescriptionTooLong = errors.New("description too long (max 200 characters)")
)

// Types lists transaction types in display order.
func Types() []Type {
	return []Type{Income, Expense}
}

// Categories lists every known category in display order.
func Categories() []Category {
	return []Category{Food, Transport, Housing, Entertainment, Salary, EducationalFees, Rent, Other}
}

func ParseType(s string) (Type, error) {
	for _, t := range Types() {
		if strings.EqualFold(strings.TrimSpace(s), string(t)) {
			return t, nil
		}
	}
	return "", ErrInvalidType
}

func ParseCategory(s string) (Category, error) {
	for _, c := range Categories() {
		if strings.EqualFold(strings.TrimSpace(s), string(c)) {
			return c, nil
		}
	}
	return "", ErrInvalidCategory
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

// Today returns the current calendar date in UTC.
func Today() Date {
	now := time.Now()
	return NewDate(now.Year(), int(now.Month()), now.Day())
}

func (d Date) String() string {
	return d.Format(DateLayout)
}

// MonthLabel returns the YYYY-MM label of the date's calendar month.
func (d Date) MonthLabel() string {
	return d.Format("2006-01")
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (m Money) Neg() Money {
	return Money{Cents: -m.Cents}
}

func (m Money) Abs() Money {
	if m.Cents < 0 {
		return m.Neg()
	}
	return m
}

func (t Type) Valid() bool {
	return t == Income || t == Expense
}

func (c Category) Valid() bool {
	_, err := ParseCategory(string(c))
	return err == nil
}

// Signed returns the amount with the sign implied by the transaction type:
// positive for income, negative for expenses.
func (t Transaction) Signed() Money {
	if t.Type == Expense {
		return t.Amount.Abs().Neg()
	}
	return t.Amount.Abs()
}

func (t Transaction) Validate() error {
	if err := t.Date.Validate(); err != nil {
		return err
	}
	if !t.Type.Valid() {
		return ErrInvalidType
	}
	if !t.Category.Valid() {
		return ErrInvalidCategory
	}
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if len(strings.TrimSpace(t.Description)) == 0 {
		return ErrEmptyDescription
	}
	return nil
}

// FromSigned rebuilds a transaction from its persisted signed amount. The
// sign has to agree with the type; zero amounts are rejected.
func FromSigned(date Date, typ Type, cat Category, signed Money, desc string) (Transaction, error) {
	switch {
	case typ == Income && signed.Cents <= 0:
		return Transaction{}, ErrInvalidAmount
	case typ == Expense && signed.Cents >= 0:
		return Transaction{}, ErrInvalidAmount
	}
	tx := Transaction{
		Date:        date,
		Type:        typ,
		Category:    cat,
		Amount:      signed.Abs(),
		Description: desc,
	}
	if err := tx.Validate(); err != nil {
		return Transaction{}, err
	}
	return tx, nil
}

// Append returns a new ledger with tx at the end. The receiver is left as is.
func (l Ledger) Append(tx Transaction) Ledger {
	out := make(Ledger, len(l), len(l)+1)
	copy(out, l)
	return append(out, tx)
}

func (l Ledger) Len() int {
	return len(l)
}
