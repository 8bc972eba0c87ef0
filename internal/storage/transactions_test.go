package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"rupeeflow/internal/common"
	"rupeeflow/internal/model"
)

func seedExpense(t *testing.T, store *SQLiteStorage, amount float64, date time.Time, pending bool) int64 {
	t.Helper()
	ctx := context.Background()

	cat, err := store.GetCategoryByNameAndType(ctx, model.DefaultCategoryName, model.TypeExpense)
	if err != nil || cat == nil {
		t.Fatalf("Failed to get default category: %v", err)
	}

	id, err := store.CreateTransaction(ctx, &model.Transaction{
		CategoryID:  cat.ID,
		Amount:      amount,
		Date:        date,
		Description: "Test Merchant",
		Type:        model.TypeExpense,
		Pending:     pending,
	})
	if err != nil {
		t.Fatalf("Failed to create transaction: %v", err)
	}
	return id
}

func TestCreateAndGetTransaction(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	id := seedExpense(t, store, 250.50, time.Now(), false)
	if id == 0 {
		t.Fatal("Expected transaction ID to be set")
	}

	txn, err := store.GetTransactionByID(ctx, id)
	if err != nil {
		t.Fatalf("Failed to get transaction: %v", err)
	}
	if txn.Amount != 250.50 || txn.Pending {
		t.Errorf("Got %+v", txn)
	}

	if _, err := store.GetTransactionByID(ctx, 9999); !errors.Is(err, common.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestCreateTransactionValidation(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	tests := []struct {
		txn  *model.Transaction
		name string
	}{
		{name: "nil transaction", txn: nil},
		{name: "missing category", txn: &model.Transaction{Amount: 10, Date: time.Now(), Type: model.TypeExpense}},
		{name: "zero amount", txn: &model.Transaction{CategoryID: 1, Date: time.Now(), Type: model.TypeExpense}},
		{name: "negative amount", txn: &model.Transaction{CategoryID: 1, Amount: -5, Date: time.Now(), Type: model.TypeExpense}},
		{name: "bad type", txn: &model.Transaction{CategoryID: 1, Amount: 10, Date: time.Now(), Type: "Transfer"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := store.CreateTransaction(ctx, tt.txn); err == nil {
				t.Error("Expected validation error")
			}
		})
	}
}

func TestUpdateTransaction(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	id := seedExpense(t, store, 100, time.Now(), true)

	txn, err := store.GetTransactionByID(ctx, id)
	if err != nil {
		t.Fatalf("Failed to get transaction: %v", err)
	}

	txn.Pending = false
	txn.Description = "Finalized"
	if err := store.UpdateTransaction(ctx, txn); err != nil {
		t.Fatalf("Failed to update transaction: %v", err)
	}

	updated, err := store.GetTransactionByID(ctx, id)
	if err != nil {
		t.Fatalf("Failed to get transaction: %v", err)
	}
	if updated.Pending || updated.Description != "Finalized" {
		t.Errorf("Got %+v", updated)
	}

	// Updating a missing row reports not found.
	txn.ID = 9999
	if err := store.UpdateTransaction(ctx, txn); !errors.Is(err, common.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestGetPendingTransactions(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	now := time.Now()
	seedExpense(t, store, 10, now.Add(-2*time.Hour), true)
	seedExpense(t, store, 20, now.Add(-time.Hour), false)
	seedExpense(t, store, 30, now, true)

	pending, err := store.GetPendingTransactions(ctx)
	if err != nil {
		t.Fatalf("Failed to get pending transactions: %v", err)
	}
	if len(pending) != 2 {
		t.Fatalf("Expected 2 pending, got %d", len(pending))
	}
	// Newest first.
	if pending[0].Amount != 30 {
		t.Errorf("Expected newest pending first, got %+v", pending[0])
	}
}

func TestGetRecentTransactionsLimit(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 5; i++ {
		seedExpense(t, store, float64(i+1), base.Add(time.Duration(i)*time.Minute), false)
	}

	recent, err := store.GetRecentTransactions(ctx, 3)
	if err != nil {
		t.Fatalf("Failed to get recent transactions: %v", err)
	}
	if len(recent) != 3 {
		t.Fatalf("Expected 3 transactions, got %d", len(recent))
	}
	if recent[0].Amount != 5 {
		t.Errorf("Expected newest first, got %+v", recent[0])
	}
}

func TestGetMonthlySummary(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	expenseCat, err := store.GetCategoryByNameAndType(ctx, "Groceries", model.TypeExpense)
	if err != nil || expenseCat == nil {
		t.Fatalf("Failed to get category: %v", err)
	}
	incomeCat, err := store.GetCategoryByNameAndType(ctx, "Salary", model.TypeIncome)
	if err != nil || incomeCat == nil {
		t.Fatalf("Failed to get category: %v", err)
	}

	inMonth := time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)
	outOfMonth := time.Date(2025, 7, 1, 10, 0, 0, 0, time.UTC)

	for _, txn := range []model.Transaction{
		{CategoryID: expenseCat.ID, Amount: 250, Date: inMonth, Description: "Groceries run", Type: model.TypeExpense},
		{CategoryID: expenseCat.ID, Amount: 100, Date: inMonth, Description: "More groceries", Type: model.TypeExpense},
		{CategoryID: incomeCat.ID, Amount: 50000, Date: inMonth, Description: "Salary", Type: model.TypeIncome},
		{CategoryID: expenseCat.ID, Amount: 999, Date: outOfMonth, Description: "Next month", Type: model.TypeExpense},
	} {
		if _, err := store.CreateTransaction(ctx, &txn); err != nil {
			t.Fatalf("Failed to create transaction: %v", err)
		}
	}

	start := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)

	summary, err := store.GetMonthlySummary(ctx, start, end)
	if err != nil {
		t.Fatalf("Failed to get summary: %v", err)
	}
	if summary.TotalExpenses != 350 {
		t.Errorf("TotalExpenses = %v, want 350", summary.TotalExpenses)
	}
	if summary.TotalIncome != 50000 {
		t.Errorf("TotalIncome = %v, want 50000", summary.TotalIncome)
	}
}

func TestTransactionRollback(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	tx, err := store.BeginTx(ctx)
	if err != nil {
		t.Fatalf("Failed to begin transaction: %v", err)
	}

	cat, err := tx.GetCategoryByNameAndType(ctx, model.DefaultCategoryName, model.TypeExpense)
	if err != nil || cat == nil {
		t.Fatalf("Failed to get default category: %v", err)
	}

	if _, err := tx.CreateTransaction(ctx, &model.Transaction{
		CategoryID:  cat.ID,
		Amount:      10,
		Date:        time.Now(),
		Description: "Rolled back",
		Type:        model.TypeExpense,
	}); err != nil {
		t.Fatalf("Failed to create transaction in tx: %v", err)
	}

	if err := tx.Rollback(); err != nil {
		t.Fatalf("Failed to rollback: %v", err)
	}

	recent, err := store.GetRecentTransactions(ctx, 0)
	if err != nil {
		t.Fatalf("Failed to get transactions: %v", err)
	}
	if len(recent) != 0 {
		t.Errorf("Expected no transactions after rollback, got %d", len(recent))
	}
}
