package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// ExpectedSchemaVersion is the latest schema version that the application expects.
// If the database cannot be migrated to this version, it's a fatal error.
const ExpectedSchemaVersion = 3

// Migration represents a database schema migration.
type Migration struct {
	Up          func(*sql.Tx) error
	Description string
	Version     int
}

var migrations = []Migration{
	{
		Version:     1,
		Description: "Initial schema",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE TABLE IF NOT EXISTS categories (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					name TEXT NOT NULL COLLATE NOCASE,
					type TEXT NOT NULL CHECK (type IN ('Expense', 'Income')),
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
					UNIQUE(name, type)
				)`,

				`CREATE TABLE IF NOT EXISTS transactions (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					category_id INTEGER NOT NULL REFERENCES categories(id),
					amount REAL NOT NULL,
					date DATETIME NOT NULL,
					description TEXT NOT NULL,
					type TEXT NOT NULL CHECK (type IN ('Expense', 'Income')),
					pending INTEGER NOT NULL DEFAULT 0
				)`,
				`CREATE INDEX idx_transactions_date ON transactions(date)`,
				`CREATE INDEX idx_transactions_pending ON transactions(pending)`,

				`CREATE TABLE IF NOT EXISTS merchants (
					receiver TEXT PRIMARY KEY,
					category TEXT NOT NULL,
					description TEXT NOT NULL COLLATE NOCASE,
					always_ask INTEGER NOT NULL DEFAULT 0,
					type TEXT NOT NULL CHECK (type IN ('Expense', 'Income')),
					last_updated DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
				`CREATE INDEX idx_merchants_description ON merchants(description)`,
			}

			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute query: %w", err)
				}
			}
			return nil
		},
	},
	{
		Version:     2,
		Description: "Seed protected default categories",
		Up: func(tx *sql.Tx) error {
			for _, categoryType := range []string{"Expense", "Income"} {
				if _, err := tx.Exec(`
					INSERT INTO categories (name, type)
					VALUES ('Uncategorized', ?)
					ON CONFLICT(name, type) DO NOTHING
				`, categoryType); err != nil {
					return fmt.Errorf("failed to seed default %s category: %w", categoryType, err)
				}
			}
			return nil
		},
	},
	{
		Version:     3,
		Description: "Seed starter categories",
		Up: func(tx *sql.Tx) error {
			starters := map[string][]string{
				"Expense": {
					"Groceries", "Restaurants", "Fast Food", "Public Transport",
					"Fuel", "Cab Services", "Movies & Subscriptions", "Clothing",
					"Electronics", "Education", "Medicines", "Doctor Visits",
					"Gifts", "Miscellaneous",
				},
				"Income": {
					"Salary", "Bonus", "Consulting Work", "Part-time Job", "Online Sales",
				},
			}

			for categoryType, names := range starters {
				for _, name := range names {
					if _, err := tx.Exec(`
						INSERT INTO categories (name, type)
						VALUES (?, ?)
						ON CONFLICT(name, type) DO NOTHING
					`, name, categoryType); err != nil {
						return fmt.Errorf("failed to seed category %q: %w", name, err)
					}
				}
			}
			return nil
		},
	},
}

// Migrate applies all pending database migrations.
func (s *SQLiteStorage) Migrate(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	// Get current version
	var currentVersion int
	err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&currentVersion)
	if err != nil {
		return fmt.Errorf("failed to get schema version: %w", err)
	}

	// Apply migrations
	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}

		tx, txErr := s.db.BeginTx(ctx, nil)
		if txErr != nil {
			return fmt.Errorf("failed to begin transaction: %w", txErr)
		}

		if upErr := migration.Up(tx); upErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d failed: %w", migration.Version, upErr)
		}

		// Update version
		if _, execErr := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", migration.Version)); execErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to update schema version: %w", execErr)
		}

		if commitErr := tx.Commit(); commitErr != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, commitErr)
		}

		slog.Info("Applied migration",
			"version", migration.Version,
			"description", migration.Description)
	}

	// Verify we're at the expected schema version
	var finalVersion int
	err = s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&finalVersion)
	if err != nil {
		return fmt.Errorf("failed to verify final schema version: %w", err)
	}

	if finalVersion != ExpectedSchemaVersion {
		return fmt.Errorf("database schema version mismatch: expected %d, got %d", ExpectedSchemaVersion, finalVersion)
	}

	return nil
}
