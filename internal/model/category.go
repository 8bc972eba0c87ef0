package model

import "time"

// DefaultCategoryName is the protected fallback category. One exists per
// transaction type, is seeded by migrations, and cannot be deleted; pending
// transactions reference it until the user picks a real category.
const DefaultCategoryName = "Uncategorized"

// Category represents an expense or income category.
// Name is unique within a type (case-insensitive).
type Category struct {
	CreatedAt time.Time       `json:"created_at"`
	Name      string          `json:"name"`
	Type      TransactionType `json:"type"`
	ID        int64           `json:"id"`
}

// IsDefault reports whether this is a protected default category.
func (c Category) IsDefault() bool {
	return c.Name == DefaultCategoryName
}
