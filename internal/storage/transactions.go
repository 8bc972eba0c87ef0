package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"rupeeflow/internal/common"
	"rupeeflow/internal/model"
	"rupeeflow/internal/service"
)

// CreateTransaction inserts a ledger entry and returns its identifier.
func (s *SQLiteStorage) CreateTransaction(ctx context.Context, txn *model.Transaction) (int64, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	if err := validateTransaction(txn); err != nil {
		return 0, err
	}
	return s.createTransactionTx(ctx, s.db, txn)
}

func (s *SQLiteStorage) createTransactionTx(ctx context.Context, q queryable, txn *model.Transaction) (int64, error) {
	if txn.Date.IsZero() {
		txn.Date = time.Now()
	}

	result, err := q.ExecContext(ctx, `
		INSERT INTO transactions (category_id, amount, date, description, type, pending)
		VALUES (?, ?, ?, ?, ?, ?)
	`, txn.CategoryID, txn.Amount, txn.Date, txn.Description, txn.Type, boolToInt(txn.Pending))
	if err != nil {
		return 0, fmt.Errorf("failed to insert transaction: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get transaction ID: %w", err)
	}

	txn.ID = id
	return id, nil
}

// UpdateTransaction rewrites all mutable fields of a ledger entry. Finalizing
// a pending transaction goes through here (category, description, type and
// the pending flag updated together).
func (s *SQLiteStorage) UpdateTransaction(ctx context.Context, txn *model.Transaction) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateTransaction(txn); err != nil {
		return err
	}
	return s.updateTransactionTx(ctx, s.db, txn)
}

func (s *SQLiteStorage) updateTransactionTx(ctx context.Context, q queryable, txn *model.Transaction) error {
	result, err := q.ExecContext(ctx, `
		UPDATE transactions
		SET category_id = ?, amount = ?, date = ?, description = ?, type = ?, pending = ?
		WHERE id = ?
	`, txn.CategoryID, txn.Amount, txn.Date, txn.Description, txn.Type, boolToInt(txn.Pending), txn.ID)
	if err != nil {
		return fmt.Errorf("failed to update transaction: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("transaction %d: %w", txn.ID, common.ErrNotFound)
	}

	return nil
}

// GetTransactionByID retrieves a single ledger entry.
func (s *SQLiteStorage) GetTransactionByID(ctx context.Context, id int64) (*model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.getTransactionByIDTx(ctx, s.db, id)
}

func (s *SQLiteStorage) getTransactionByIDTx(ctx context.Context, q queryable, id int64) (*model.Transaction, error) {
	var txn model.Transaction
	var pending int

	err := q.QueryRowContext(ctx, `
		SELECT id, category_id, amount, date, description, type, pending
		FROM transactions
		WHERE id = ?
	`, id).Scan(&txn.ID, &txn.CategoryID, &txn.Amount, &txn.Date, &txn.Description, &txn.Type, &pending)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("transaction %d: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}

	txn.Pending = pending != 0
	return &txn, nil
}

// GetPendingTransactions returns all ledger entries awaiting categorization.
func (s *SQLiteStorage) GetPendingTransactions(ctx context.Context) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.getPendingTransactionsTx(ctx, s.db)
}

func (s *SQLiteStorage) getPendingTransactionsTx(ctx context.Context, q queryable) ([]model.Transaction, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, category_id, amount, date, description, type, pending
		FROM transactions
		WHERE pending = 1
		ORDER BY date DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query pending transactions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return scanTransactions(rows)
}

// GetRecentTransactions returns the most recent ledger entries, newest first.
func (s *SQLiteStorage) GetRecentTransactions(ctx context.Context, limit int) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.getRecentTransactionsTx(ctx, s.db, limit)
}

func (s *SQLiteStorage) getRecentTransactionsTx(ctx context.Context, q queryable, limit int) ([]model.Transaction, error) {
	if limit <= 0 {
		limit = 30
	}

	rows, err := q.QueryContext(ctx, `
		SELECT id, category_id, amount, date, description, type, pending
		FROM transactions
		ORDER BY date DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return scanTransactions(rows)
}

// GetMonthlySummary aggregates expense and income totals over a period.
func (s *SQLiteStorage) GetMonthlySummary(ctx context.Context, start, end time.Time) (*service.MonthlySummary, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if end.Before(start) {
		return nil, fmt.Errorf("%w: end date %v is before start date %v", ErrInvalidDateRange, end, start)
	}
	return s.getMonthlySummaryTx(ctx, s.db, start, end)
}

func (s *SQLiteStorage) getMonthlySummaryTx(ctx context.Context, q queryable, start, end time.Time) (*service.MonthlySummary, error) {
	var summary service.MonthlySummary

	err := q.QueryRowContext(ctx, `
		SELECT
			COALESCE(SUM(CASE WHEN type = 'Expense' THEN amount ELSE 0 END), 0) AS total_expenses,
			COALESCE(SUM(CASE WHEN type = 'Income' THEN amount ELSE 0 END), 0) AS total_income
		FROM transactions
		WHERE date >= ? AND date < ?
	`, start, end).Scan(&summary.TotalExpenses, &summary.TotalIncome)
	if err != nil {
		return nil, fmt.Errorf("failed to compute summary: %w", err)
	}

	return &summary, nil
}

func scanTransactions(rows *sql.Rows) ([]model.Transaction, error) {
	var transactions []model.Transaction
	for rows.Next() {
		var txn model.Transaction
		var pending int
		if err := rows.Scan(&txn.ID, &txn.CategoryID, &txn.Amount, &txn.Date, &txn.Description, &txn.Type, &pending); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		txn.Pending = pending != 0
		transactions = append(transactions, txn)
	}
	return transactions, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
