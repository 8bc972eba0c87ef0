package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"rupeeflow/internal/model"
	"rupeeflow/internal/service"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// queryable abstracts over *sql.DB and *sql.Tx so the same query helpers can
// run standalone or inside an atomic unit.
type queryable interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// SQLiteStorage implements the Storage interface using SQLite.
type SQLiteStorage struct {
	cacheExpiry   time.Time
	db            *sql.DB
	merchantCache map[string]*model.Merchant
	dbPath        string
	cacheMutex    sync.RWMutex
}

// NewSQLiteStorage creates a new SQLite storage instance.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	if err := validateString(dbPath, "dbPath"); err != nil {
		return nil, err
	}

	// Ensure directory exists
	if dbPath != ":memory:" {
		dir := filepath.Dir(dbPath)
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite doesn't benefit from multiple connections
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &SQLiteStorage{
		db:            db,
		dbPath:        dbPath,
		merchantCache: make(map[string]*model.Merchant),
	}, nil
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// BeginTx starts a new database transaction.
func (s *SQLiteStorage) BeginTx(ctx context.Context) (service.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}

	return &sqliteTransaction{
		tx:      tx,
		storage: s,
	}, nil
}

// sqliteTransaction wraps sql.Tx to implement service.Transaction.
type sqliteTransaction struct {
	tx       *sql.Tx
	storage  *SQLiteStorage
	cacheOps []merchantCacheOp
}

// merchantCacheOp is a merchant cache update held back until the transaction
// commits. A nil merchant means delete the receiver's entry.
type merchantCacheOp struct {
	merchant *model.Merchant
	receiver string
}

func (t *sqliteTransaction) Commit() error {
	if err := t.tx.Commit(); err != nil {
		return err
	}
	for _, op := range t.cacheOps {
		if op.merchant != nil {
			t.storage.cacheMerchant(op.merchant)
		} else {
			t.storage.uncacheMerchant(op.receiver)
		}
	}
	t.cacheOps = nil
	return nil
}

func (t *sqliteTransaction) Rollback() error {
	t.cacheOps = nil
	return t.tx.Rollback()
}

// Transaction methods delegate to the main storage with the transaction.
func (t *sqliteTransaction) CreateTransaction(ctx context.Context, txn *model.Transaction) (int64, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	if err := validateTransaction(txn); err != nil {
		return 0, err
	}
	return t.storage.createTransactionTx(ctx, t.tx, txn)
}

func (t *sqliteTransaction) UpdateTransaction(ctx context.Context, txn *model.Transaction) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateTransaction(txn); err != nil {
		return err
	}
	return t.storage.updateTransactionTx(ctx, t.tx, txn)
}

func (t *sqliteTransaction) GetTransactionByID(ctx context.Context, id int64) (*model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return t.storage.getTransactionByIDTx(ctx, t.tx, id)
}

func (t *sqliteTransaction) GetPendingTransactions(ctx context.Context) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return t.storage.getPendingTransactionsTx(ctx, t.tx)
}

func (t *sqliteTransaction) GetRecentTransactions(ctx context.Context, limit int) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return t.storage.getRecentTransactionsTx(ctx, t.tx, limit)
}

func (t *sqliteTransaction) GetMonthlySummary(ctx context.Context, start, end time.Time) (*service.MonthlySummary, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if end.Before(start) {
		return nil, fmt.Errorf("%w: end date %v is before start date %v", ErrInvalidDateRange, end, start)
	}
	return t.storage.getMonthlySummaryTx(ctx, t.tx, start, end)
}

func (t *sqliteTransaction) GetCategories(ctx context.Context) ([]model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return t.storage.getCategoriesTx(ctx, t.tx)
}

func (t *sqliteTransaction) GetCategoryByName(ctx context.Context, name string) (*model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(name, "name"); err != nil {
		return nil, err
	}
	return t.storage.getCategoryByNameTx(ctx, t.tx, name)
}

func (t *sqliteTransaction) GetCategoryByNameAndType(ctx context.Context, name string, categoryType model.TransactionType) (*model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(name, "name"); err != nil {
		return nil, err
	}
	if err := validateTransactionType(categoryType); err != nil {
		return nil, err
	}
	return t.storage.getCategoryByNameAndTypeTx(ctx, t.tx, name, categoryType)
}

func (t *sqliteTransaction) ListCategoryNames(ctx context.Context) ([]string, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return t.storage.listCategoryNamesTx(ctx, t.tx)
}

func (t *sqliteTransaction) CreateCategory(ctx context.Context, name string, categoryType model.TransactionType) (*model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(name, "name"); err != nil {
		return nil, err
	}
	if err := validateTransactionType(categoryType); err != nil {
		return nil, err
	}
	return t.storage.createCategoryTx(ctx, t.tx, name, categoryType)
}

func (t *sqliteTransaction) DeleteCategory(ctx context.Context, id int64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return t.storage.deleteCategoryTx(ctx, t.tx, id)
}

func (t *sqliteTransaction) GetMerchant(ctx context.Context, receiver string) (*model.Merchant, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(receiver, "receiver"); err != nil {
		return nil, err
	}
	return t.storage.getMerchantTx(ctx, t.tx, receiver)
}

func (t *sqliteTransaction) FindMerchantByDescription(ctx context.Context, description string) (*model.Merchant, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(description, "description"); err != nil {
		return nil, err
	}
	return t.storage.findMerchantByDescriptionTx(ctx, t.tx, description)
}

func (t *sqliteTransaction) SaveMerchant(ctx context.Context, merchant *model.Merchant) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateMerchant(merchant); err != nil {
		return err
	}
	if err := t.storage.saveMerchantTx(ctx, t.tx, merchant); err != nil {
		return err
	}
	t.cacheOps = append(t.cacheOps, merchantCacheOp{merchant: merchant, receiver: merchant.Receiver})
	return nil
}

func (t *sqliteTransaction) DeleteMerchant(ctx context.Context, receiver string) error {
	if err := t.storage.deleteMerchantTx(ctx, t.tx, receiver); err != nil {
		return err
	}
	t.cacheOps = append(t.cacheOps, merchantCacheOp{receiver: receiver})
	return nil
}

func (t *sqliteTransaction) GetAllMerchants(ctx context.Context) ([]model.Merchant, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return t.storage.getAllMerchantsTx(ctx, t.tx)
}
