package model

import "time"

// Merchant is a remembered mapping from a payment receiver to the category,
// description and type the user (or a confident classification) chose for it.
// Receiver is the exact identifier parsed out of the payment notification and
// is the upsert key: at most one entry exists per receiver.
type Merchant struct {
	LastUpdated time.Time       `json:"last_updated"`
	Receiver    string          `json:"receiver"`
	Category    string          `json:"category"`
	Description string          `json:"description"`
	Type        TransactionType `json:"type"`
	AlwaysAsk   bool            `json:"always_ask"`
}
