// Package testutil provides shared helpers for package tests: in-memory
// databases with migrations applied and seeding shortcuts for merchants and
// categories.
package testutil

import (
	"context"
	"testing"

	"rupeeflow/internal/model"
	"rupeeflow/internal/service"
	"rupeeflow/internal/storage"
)

// TestDB wraps an in-memory test database.
type TestDB struct {
	Storage service.Storage
	t       *testing.T
}

// SetupTestDB creates a new in-memory database with all migrations applied,
// including the starter category set. Cleanup is registered automatically.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	store, err := storage.NewSQLiteStorage(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	ctx := context.Background()
	if err := store.Migrate(ctx); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("failed to close test database: %v", err)
		}
	})

	return &TestDB{Storage: store, t: t}
}

// SeedMerchant stores a merchant entry or fails the test.
func (db *TestDB) SeedMerchant(merchant *model.Merchant) {
	db.t.Helper()
	if err := db.Storage.SaveMerchant(context.Background(), merchant); err != nil {
		db.t.Fatalf("failed to seed merchant %q: %v", merchant.Receiver, err)
	}
}

// SeedCategory creates a category or fails the test.
func (db *TestDB) SeedCategory(name string, txnType model.TransactionType) *model.Category {
	db.t.Helper()
	cat, err := db.Storage.CreateCategory(context.Background(), name, txnType)
	if err != nil {
		db.t.Fatalf("failed to seed category %q: %v", name, err)
	}
	return cat
}

// MustCategoryID returns the id of the named category for the given type,
// failing the test when absent.
func (db *TestDB) MustCategoryID(name string, txnType model.TransactionType) int64 {
	db.t.Helper()
	cat, err := db.Storage.GetCategoryByNameAndType(context.Background(), name, txnType)
	if err != nil {
		db.t.Fatalf("failed to look up category %q: %v", name, err)
	}
	if cat == nil {
		db.t.Fatalf("category %q (%s) not found", name, txnType)
	}
	return cat.ID
}
