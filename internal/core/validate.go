package core

import (
	"strings"
	"unicode/utf8"
)

// TransactionInput is the raw, unvalidated content of the entry form.
type TransactionInput struct {
	Date        string
	Type        string
	Category    string
	Amount      string
	Description string
}

// NewTransaction validates form input and builds a Transaction from it.
//
// The amount must be strictly positive and the description non-empty; type
// and category must be known values. An empty date means today. Nothing is
// persisted here: a rejected input has no side effects.
func NewTransaction(in TransactionInput) (Transaction, error) {
	date := Today()
	if v := strings.TrimSpace(in.Date); v != "" {
		d, err := ParseDate(v)
		if err != nil {
			return Transaction{}, err
		}
		date = d
	}

	typ, err := ParseType(in.Type)
	if err != nil {
		return Transaction{}, err
	}
	cat, err := ParseCategory(in.Category)
	if err != nil {
		return Transaction{}, err
	}
	amount, err := ParseAmount(in.Amount)
	if err != nil {
		return Transaction{}, err
	}

	desc := strings.TrimSpace(in.Description)
	if desc == "" {
		return Transaction{}, ErrEmptyDescription
	}
	if utf8.RuneCountInString(desc) > maxDescriptionLen {
		return Transaction{}, ErrDescriptionTooLong
	}

	tx := Transaction{
		Date:        date,
		Type:        typ,
		Category:    cat,
		Amount:      amount,
		Description: desc,
	}
	if err := tx.Validate(); err != nil {
		return Transaction{}, err
	}
	return tx, nil
}
