package model

import "testing"

func TestHasUnknownFields(t *testing.T) {
	tests := []struct {
		name       string
		suggestion Suggestion
		want       bool
	}{
		{
			name:       "all fields known",
			suggestion: Suggestion{Category: "Groceries", Description: "Blinkit", Type: "Expense"},
			want:       false,
		},
		{
			name:       "unknown category",
			suggestion: Suggestion{Category: "unknown", Description: "Blinkit", Type: "Expense"},
			want:       true,
		},
		{
			name:       "unknown in mixed case",
			suggestion: Suggestion{Category: "Groceries", Description: "Unknown", Type: "Expense"},
			want:       true,
		},
		{
			name:       "unknown type",
			suggestion: Suggestion{Category: "Groceries", Description: "Blinkit", Type: "UNKNOWN"},
			want:       true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.suggestion.HasUnknownFields(); got != tt.want {
				t.Errorf("HasUnknownFields() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSuggestionTransactionType(t *testing.T) {
	if got := (Suggestion{Type: "Income"}).TransactionType(); got != TypeIncome {
		t.Errorf("got %q, want Income", got)
	}
	if got := (Suggestion{Type: "income"}).TransactionType(); got != TypeIncome {
		t.Errorf("got %q, want Income for lowercase", got)
	}
	if got := (Suggestion{Type: "unknown"}).TransactionType(); got != TypeExpense {
		t.Errorf("got %q, want Expense fallback", got)
	}
	if got := (Suggestion{}).TransactionType(); got != TypeExpense {
		t.Errorf("got %q, want Expense for empty", got)
	}
}
