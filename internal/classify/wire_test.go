package classify

import (
	"errors"
	"testing"

	"rupeeflow/internal/common"
)

func TestParseSuggestion(t *testing.T) {
	t.Run("numeric confidence", func(t *testing.T) {
		s, err := parseSuggestion([]byte(`{"category":"Groceries","description":"Blinkit","type":"Expense","confidence_score":9.5}`))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if s.Category != "Groceries" || s.Confidence != 9.5 {
			t.Errorf("got %+v", s)
		}
	})

	t.Run("string confidence", func(t *testing.T) {
		s, err := parseSuggestion([]byte(`{"category":"Groceries","description":"Blinkit","type":"Expense","confidence_score":"8.7"}`))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if s.Confidence != 8.7 {
			t.Errorf("confidence = %v, want 8.7", s.Confidence)
		}
	})

	t.Run("missing confidence", func(t *testing.T) {
		s, err := parseSuggestion([]byte(`{"category":"Groceries","description":"Blinkit","type":"Expense"}`))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if s.Confidence != 0 {
			t.Errorf("confidence = %v, want 0", s.Confidence)
		}
	})

	t.Run("error payload", func(t *testing.T) {
		_, err := parseSuggestion([]byte(`{"error":"rate limited"}`))
		if !errors.Is(err, common.ErrNoSuggestion) {
			t.Errorf("err = %v, want ErrNoSuggestion", err)
		}
	})

	t.Run("empty category", func(t *testing.T) {
		_, err := parseSuggestion([]byte(`{"category":"","confidence_score":9}`))
		if !errors.Is(err, common.ErrNoSuggestion) {
			t.Errorf("err = %v, want ErrNoSuggestion", err)
		}
	})

	t.Run("malformed json", func(t *testing.T) {
		if _, err := parseSuggestion([]byte(`not json`)); err == nil {
			t.Error("expected error for malformed payload")
		}
	})

	t.Run("invalid confidence string", func(t *testing.T) {
		if _, err := parseSuggestion([]byte(`{"category":"X","confidence_score":"high"}`)); err == nil {
			t.Error("expected error for non-numeric confidence")
		}
	})
}

func TestStripCodeFences(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", `{"a":1}`, `{"a":1}`},
		{"fenced", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"fenced with language", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"leading whitespace", "  \n```json\n{\"a\":1}\n```\n", `{"a":1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := stripCodeFences(tt.in); got != tt.want {
				t.Errorf("stripCodeFences(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
