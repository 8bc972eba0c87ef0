package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"rupeeflow/internal/common"
	"rupeeflow/internal/model"
)

// GetCategories returns all categories ordered by type then name.
func (s *SQLiteStorage) GetCategories(ctx context.Context) ([]model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.getCategoriesTx(ctx, s.db)
}

func (s *SQLiteStorage) getCategoriesTx(ctx context.Context, q queryable) ([]model.Category, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, name, type, created_at
		FROM categories
		ORDER BY type, name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var categories []model.Category
	for rows.Next() {
		var cat model.Category
		if err := rows.Scan(&cat.ID, &cat.Name, &cat.Type, &cat.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, cat)
	}

	return categories, rows.Err()
}

// GetCategoryByName returns a category by its name, matched case-insensitively.
// Returns nil without error when no category matches.
func (s *SQLiteStorage) GetCategoryByName(ctx context.Context, name string) (*model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(name, "name"); err != nil {
		return nil, err
	}
	return s.getCategoryByNameTx(ctx, s.db, name)
}

func (s *SQLiteStorage) getCategoryByNameTx(ctx context.Context, q queryable, name string) (*model.Category, error) {
	var cat model.Category

	// The name column is COLLATE NOCASE, so = already matches case-insensitively.
	err := q.QueryRowContext(ctx, `
		SELECT id, name, type, created_at
		FROM categories
		WHERE name = ?
		ORDER BY id
		LIMIT 1
	`, name).Scan(&cat.ID, &cat.Name, &cat.Type, &cat.CreatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil // Category not found
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query category: %w", err)
	}

	return &cat, nil
}

// GetCategoryByNameAndType returns a category matched case-insensitively by
// name within one transaction type. Returns nil without error when absent.
func (s *SQLiteStorage) GetCategoryByNameAndType(ctx context.Context, name string, categoryType model.TransactionType) (*model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(name, "name"); err != nil {
		return nil, err
	}
	if err := validateTransactionType(categoryType); err != nil {
		return nil, err
	}
	return s.getCategoryByNameAndTypeTx(ctx, s.db, name, categoryType)
}

func (s *SQLiteStorage) getCategoryByNameAndTypeTx(ctx context.Context, q queryable, name string, categoryType model.TransactionType) (*model.Category, error) {
	var cat model.Category

	err := q.QueryRowContext(ctx, `
		SELECT id, name, type, created_at
		FROM categories
		WHERE name = ? AND type = ?
	`, name, categoryType).Scan(&cat.ID, &cat.Name, &cat.Type, &cat.CreatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query category: %w", err)
	}

	return &cat, nil
}

// ListCategoryNames returns the names of all known categories. The list is
// handed to the remote classifier as its closed vocabulary hint.
func (s *SQLiteStorage) ListCategoryNames(ctx context.Context) ([]string, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.listCategoryNamesTx(ctx, s.db)
}

func (s *SQLiteStorage) listCategoryNamesTx(ctx context.Context, q queryable) ([]string, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT name FROM categories ORDER BY type, name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query category names: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan category name: %w", err)
		}
		names = append(names, name)
	}

	return names, rows.Err()
}

// CreateCategory creates a new category. Creating a name that already exists
// for the same type (case-insensitively) returns the existing category.
func (s *SQLiteStorage) CreateCategory(ctx context.Context, name string, categoryType model.TransactionType) (*model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(name, "name"); err != nil {
		return nil, err
	}
	if err := validateTransactionType(categoryType); err != nil {
		return nil, err
	}
	return s.createCategoryTx(ctx, s.db, name, categoryType)
}

func (s *SQLiteStorage) createCategoryTx(ctx context.Context, q queryable, name string, categoryType model.TransactionType) (*model.Category, error) {
	var existing model.Category
	err := q.QueryRowContext(ctx, `
		SELECT id, name, type, created_at
		FROM categories
		WHERE name = ? AND type = ?
	`, name, categoryType).Scan(&existing.ID, &existing.Name, &existing.Type, &existing.CreatedAt)

	if err == nil {
		return &existing, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to check existing category: %w", err)
	}

	result, err := q.ExecContext(ctx, `
		INSERT INTO categories (name, type) VALUES (?, ?)
	`, name, categoryType)
	if err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get category ID: %w", err)
	}

	slog.Info("created new category", "name", name, "type", categoryType, "id", id)

	return s.getCategoryByIDTx(ctx, q, id)
}

func (s *SQLiteStorage) getCategoryByIDTx(ctx context.Context, q queryable, id int64) (*model.Category, error) {
	var cat model.Category
	err := q.QueryRowContext(ctx, `
		SELECT id, name, type, created_at
		FROM categories
		WHERE id = ?
	`, id).Scan(&cat.ID, &cat.Name, &cat.Type, &cat.CreatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("category %d: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query category: %w", err)
	}

	return &cat, nil
}

// DeleteCategory removes a category. The protected default categories and
// categories still referenced by transactions cannot be deleted.
func (s *SQLiteStorage) DeleteCategory(ctx context.Context, id int64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return s.deleteCategoryTx(ctx, s.db, id)
}

func (s *SQLiteStorage) deleteCategoryTx(ctx context.Context, q queryable, id int64) error {
	cat, err := s.getCategoryByIDTx(ctx, q, id)
	if err != nil {
		return err
	}
	if cat.IsDefault() {
		return ErrProtectedCategory
	}

	var inUse bool
	if err := q.QueryRowContext(ctx, `
		SELECT EXISTS(SELECT 1 FROM transactions WHERE category_id = ?)
	`, id).Scan(&inUse); err != nil {
		return fmt.Errorf("failed to check category references: %w", err)
	}
	if inUse {
		return fmt.Errorf("category %q: %w", cat.Name, ErrCategoryInUse)
	}

	if _, err := q.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}

	return nil
}
