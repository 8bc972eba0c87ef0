// Package model defines the core domain types used throughout the application.
package model

import "strings"

// UnknownSentinel is the literal value the remote classifier returns for a
// field it could not determine. Compared case-insensitively.
const UnknownSentinel = "unknown"

// Suggestion is a classification returned by the remote classifier.
// Type is kept as a raw string because the classifier may answer "unknown",
// which is not a valid TransactionType.
type Suggestion struct {
	Category    string
	Description string
	Type        string
	Confidence  float64
}

// HasUnknownFields reports whether any field carries the "unknown" sentinel.
func (s Suggestion) HasUnknownFields() bool {
	return strings.EqualFold(s.Category, UnknownSentinel) ||
		strings.EqualFold(s.Description, UnknownSentinel) ||
		strings.EqualFold(s.Type, UnknownSentinel)
}

// TransactionType converts the suggested type, defaulting to Expense when the
// classifier returned something unexpected.
func (s Suggestion) TransactionType() TransactionType {
	if strings.EqualFold(s.Type, string(TypeIncome)) {
		return TypeIncome
	}
	return TypeExpense
}
