package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"rupeeflow/internal/model"
)

func TestMigrationSeedsStarterCategories(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	for _, name := range []string{model.DefaultCategoryName, "Groceries", "Fuel", "Medicines"} {
		cat, err := store.GetCategoryByNameAndType(ctx, name, model.TypeExpense)
		if err != nil {
			t.Fatalf("Failed to get category %q: %v", name, err)
		}
		if cat == nil {
			t.Errorf("Expected seeded expense category %q", name)
		}
	}

	for _, name := range []string{model.DefaultCategoryName, "Salary", "Bonus"} {
		cat, err := store.GetCategoryByNameAndType(ctx, name, model.TypeIncome)
		if err != nil {
			t.Fatalf("Failed to get category %q: %v", name, err)
		}
		if cat == nil {
			t.Errorf("Expected seeded income category %q", name)
		}
	}
}

func TestCreateCategory(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	cat, err := store.CreateCategory(ctx, "Pet Care", model.TypeExpense)
	if err != nil {
		t.Fatalf("Failed to create category: %v", err)
	}
	if cat.ID == 0 {
		t.Error("Expected category ID to be set")
	}
	if cat.Type != model.TypeExpense {
		t.Errorf("Type = %q", cat.Type)
	}

	// Creating again returns the existing category, case-insensitively.
	again, err := store.CreateCategory(ctx, "pet care", model.TypeExpense)
	if err != nil {
		t.Fatalf("Failed on duplicate create: %v", err)
	}
	if again.ID != cat.ID {
		t.Errorf("Expected existing category %d, got %d", cat.ID, again.ID)
	}

	// The same name under the other type is a distinct category.
	income, err := store.CreateCategory(ctx, "Pet Care", model.TypeIncome)
	if err != nil {
		t.Fatalf("Failed to create income category: %v", err)
	}
	if income.ID == cat.ID {
		t.Error("Expected separate category per type")
	}
}

func TestGetCategoryByName(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	cat, err := store.GetCategoryByName(ctx, "groceries")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if cat == nil {
		t.Fatal("Expected case-insensitive lookup to succeed")
	}

	missing, err := store.GetCategoryByName(ctx, "Nonexistent")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if missing != nil {
		t.Errorf("Expected nil for unknown category, got %+v", missing)
	}
}

func TestListCategoryNames(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	names, err := store.ListCategoryNames(ctx)
	if err != nil {
		t.Fatalf("Failed to list category names: %v", err)
	}
	if len(names) == 0 {
		t.Fatal("Expected seeded category names")
	}

	seen := make(map[string]bool, len(names))
	for _, name := range names {
		if seen[name] {
			t.Errorf("Duplicate name %q in list", name)
		}
		seen[name] = true
	}
	if !seen["Groceries"] {
		t.Error("Expected Groceries in category names")
	}
}

func TestDeleteCategoryProtections(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	t.Run("default category is protected", func(t *testing.T) {
		def, err := store.GetCategoryByNameAndType(ctx, model.DefaultCategoryName, model.TypeExpense)
		if err != nil || def == nil {
			t.Fatalf("Failed to get default category: %v", err)
		}
		if err := store.DeleteCategory(ctx, def.ID); !errors.Is(err, ErrProtectedCategory) {
			t.Errorf("Expected ErrProtectedCategory, got %v", err)
		}
	})

	t.Run("category in use is protected", func(t *testing.T) {
		cat, err := store.GetCategoryByNameAndType(ctx, "Fuel", model.TypeExpense)
		if err != nil || cat == nil {
			t.Fatalf("Failed to get category: %v", err)
		}

		_, err = store.CreateTransaction(ctx, &model.Transaction{
			CategoryID:  cat.ID,
			Amount:      500,
			Date:        time.Now(),
			Description: "HP Petrol Pump",
			Type:        model.TypeExpense,
		})
		if err != nil {
			t.Fatalf("Failed to create transaction: %v", err)
		}

		if err := store.DeleteCategory(ctx, cat.ID); !errors.Is(err, ErrCategoryInUse) {
			t.Errorf("Expected ErrCategoryInUse, got %v", err)
		}
	})

	t.Run("unused category deletes", func(t *testing.T) {
		cat, err := store.CreateCategory(ctx, "Temporary", model.TypeExpense)
		if err != nil {
			t.Fatalf("Failed to create category: %v", err)
		}
		if err := store.DeleteCategory(ctx, cat.ID); err != nil {
			t.Fatalf("Failed to delete category: %v", err)
		}
		gone, err := store.GetCategoryByNameAndType(ctx, "Temporary", model.TypeExpense)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if gone != nil {
			t.Error("Expected category to be deleted")
		}
	})
}
