// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"rupeeflow/internal/model"
)

// MonthlySummary aggregates ledger totals for one period.
type MonthlySummary struct {
	TotalExpenses float64
	TotalIncome   float64
}

// Store defines the persistence operations that can also run inside a
// database transaction.
type Store interface {
	// Ledger operations
	CreateTransaction(ctx context.Context, txn *model.Transaction) (int64, error)
	UpdateTransaction(ctx context.Context, txn *model.Transaction) error
	GetTransactionByID(ctx context.Context, id int64) (*model.Transaction, error)
	GetPendingTransactions(ctx context.Context) ([]model.Transaction, error)
	GetRecentTransactions(ctx context.Context, limit int) ([]model.Transaction, error)
	GetMonthlySummary(ctx context.Context, start, end time.Time) (*MonthlySummary, error)

	// Category operations
	GetCategories(ctx context.Context) ([]model.Category, error)
	GetCategoryByName(ctx context.Context, name string) (*model.Category, error)
	GetCategoryByNameAndType(ctx context.Context, name string, categoryType model.TransactionType) (*model.Category, error)
	ListCategoryNames(ctx context.Context) ([]string, error)
	CreateCategory(ctx context.Context, name string, categoryType model.TransactionType) (*model.Category, error)
	DeleteCategory(ctx context.Context, id int64) error

	// Merchant map operations
	GetMerchant(ctx context.Context, receiver string) (*model.Merchant, error)
	FindMerchantByDescription(ctx context.Context, description string) (*model.Merchant, error)
	SaveMerchant(ctx context.Context, merchant *model.Merchant) error
	DeleteMerchant(ctx context.Context, receiver string) error
	GetAllMerchants(ctx context.Context) ([]model.Merchant, error)
}

// Storage defines the contract for our persistence layer.
type Storage interface {
	Store

	// Database management
	Migrate(ctx context.Context) error
	BeginTx(ctx context.Context) (Transaction, error)
	Close() error
}

// Transaction represents a database transaction. All Store operations
// performed through it apply atomically on Commit.
type Transaction interface {
	Commit() error
	Rollback() error
	Store
}

// Notification is a user-facing push message carrying a deep link back into
// the host UI's categorization flow.
type Notification struct {
	ID       string
	Title    string
	Body     string
	DeepLink string
}

// Notifier delivers deferred-categorization notifications to the user.
type Notifier interface {
	Schedule(ctx context.Context, n Notification) error
}
