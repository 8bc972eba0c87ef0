package model

import "time"

// TransactionType indicates whether money left or entered the account.
type TransactionType string

const (
	// TypeExpense represents money paid out.
	TypeExpense TransactionType = "Expense"
	// TypeIncome represents money received.
	TypeIncome TransactionType = "Income"
)

// Valid reports whether t is one of the known transaction types.
func (t TransactionType) Valid() bool {
	return t == TypeExpense || t == TypeIncome
}

// Transaction represents a single ledger entry.
//
// A pending transaction has been recorded but not yet categorized by the
// user; it carries the default category until it is finalized.
type Transaction struct {
	Date        time.Time       `json:"date"`
	Description string          `json:"description"`
	Type        TransactionType `json:"type"`
	ID          int64           `json:"id"`
	CategoryID  int64           `json:"category_id"`
	Amount      float64         `json:"amount"`
	Pending     bool            `json:"pending"`
}
