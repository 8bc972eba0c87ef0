package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"rupeeflow/internal/common"
	"rupeeflow/internal/model"
)

// GetMerchant retrieves a merchant map entry by its exact receiver key.
// Returns nil without error when the receiver is unknown.
func (s *SQLiteStorage) GetMerchant(ctx context.Context, receiver string) (*model.Merchant, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(receiver, "receiver"); err != nil {
		return nil, err
	}

	// Check cache first
	if merchant := s.getCachedMerchant(receiver); merchant != nil {
		return merchant, nil
	}

	merchant, err := s.getMerchantTx(ctx, s.db, receiver)
	if err != nil {
		return nil, err
	}
	if merchant != nil {
		s.cacheMerchant(merchant)
	}
	return merchant, nil
}

// getMerchantTx reads straight from the given queryable. It never touches the
// cache: transactional reads must see only their own uncommitted state.
func (s *SQLiteStorage) getMerchantTx(ctx context.Context, q queryable, receiver string) (*model.Merchant, error) {
	return s.scanMerchantRow(q.QueryRowContext(ctx, `
		SELECT receiver, category, description, always_ask, type, last_updated
		FROM merchants
		WHERE receiver = ?
	`, receiver))
}

// FindMerchantByDescription retrieves a merchant map entry whose remembered
// description matches case-insensitively. Used to merge the same merchant
// appearing under a different receiver identifier. Returns nil when absent.
func (s *SQLiteStorage) FindMerchantByDescription(ctx context.Context, description string) (*model.Merchant, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(description, "description"); err != nil {
		return nil, err
	}
	return s.findMerchantByDescriptionTx(ctx, s.db, description)
}

func (s *SQLiteStorage) findMerchantByDescriptionTx(ctx context.Context, q queryable, description string) (*model.Merchant, error) {
	// The description column is COLLATE NOCASE.
	return s.scanMerchantRow(q.QueryRowContext(ctx, `
		SELECT receiver, category, description, always_ask, type, last_updated
		FROM merchants
		WHERE description = ?
		ORDER BY receiver
		LIMIT 1
	`, description))
}

func (s *SQLiteStorage) scanMerchantRow(row *sql.Row) (*model.Merchant, error) {
	var merchant model.Merchant
	var alwaysAsk int

	err := row.Scan(
		&merchant.Receiver,
		&merchant.Category,
		&merchant.Description,
		&alwaysAsk,
		&merchant.Type,
		&merchant.LastUpdated,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil // Not an error, just not found
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get merchant: %w", err)
	}

	merchant.AlwaysAsk = alwaysAsk != 0
	return &merchant, nil
}

// SaveMerchant inserts or updates the entry keyed by receiver.
func (s *SQLiteStorage) SaveMerchant(ctx context.Context, merchant *model.Merchant) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateMerchant(merchant); err != nil {
		return err
	}
	if err := s.saveMerchantTx(ctx, s.db, merchant); err != nil {
		return err
	}
	s.cacheMerchant(merchant)
	return nil
}

// saveMerchantTx writes through the given queryable without caching. Cache
// updates inside a transaction are buffered and applied on commit, so a
// rollback never leaves a phantom entry behind.
func (s *SQLiteStorage) saveMerchantTx(ctx context.Context, q queryable, merchant *model.Merchant) error {
	if merchant.LastUpdated.IsZero() {
		merchant.LastUpdated = time.Now()
	}

	_, err := q.ExecContext(ctx, `
		INSERT INTO merchants (receiver, category, description, always_ask, type, last_updated)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(receiver) DO UPDATE SET
			category = excluded.category,
			description = excluded.description,
			always_ask = excluded.always_ask,
			type = excluded.type,
			last_updated = excluded.last_updated
	`, merchant.Receiver, merchant.Category, merchant.Description,
		boolToInt(merchant.AlwaysAsk), merchant.Type, merchant.LastUpdated)
	if err != nil {
		return fmt.Errorf("failed to save merchant: %w", err)
	}

	return nil
}

// DeleteMerchant removes a merchant map entry.
func (s *SQLiteStorage) DeleteMerchant(ctx context.Context, receiver string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := s.deleteMerchantTx(ctx, s.db, receiver); err != nil {
		return err
	}
	s.uncacheMerchant(receiver)
	return nil
}

func (s *SQLiteStorage) deleteMerchantTx(ctx context.Context, q queryable, receiver string) error {
	if err := validateString(receiver, "receiver"); err != nil {
		return err
	}

	result, err := q.ExecContext(ctx, `DELETE FROM merchants WHERE receiver = ?`, receiver)
	if err != nil {
		return fmt.Errorf("failed to delete merchant: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return common.ErrNotFound
	}

	return nil
}

// GetAllMerchants retrieves all merchant map entries.
func (s *SQLiteStorage) GetAllMerchants(ctx context.Context) ([]model.Merchant, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.getAllMerchantsTx(ctx, s.db)
}

func (s *SQLiteStorage) getAllMerchantsTx(ctx context.Context, q queryable) ([]model.Merchant, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT receiver, category, description, always_ask, type, last_updated
		FROM merchants
		ORDER BY receiver
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query merchants: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var merchants []model.Merchant
	for rows.Next() {
		var merchant model.Merchant
		var alwaysAsk int
		err := rows.Scan(
			&merchant.Receiver,
			&merchant.Category,
			&merchant.Description,
			&alwaysAsk,
			&merchant.Type,
			&merchant.LastUpdated,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan merchant: %w", err)
		}
		merchant.AlwaysAsk = alwaysAsk != 0
		merchants = append(merchants, merchant)
	}

	return merchants, rows.Err()
}

// getCachedMerchant retrieves a merchant from the cache.
func (s *SQLiteStorage) getCachedMerchant(receiver string) *model.Merchant {
	s.cacheMutex.RLock()

	if time.Now().After(s.cacheExpiry) {
		// Cache expired, needs to be cleared
		s.cacheMutex.RUnlock()
		s.cacheMutex.Lock()
		defer s.cacheMutex.Unlock()

		// Double-check after acquiring write lock
		if time.Now().After(s.cacheExpiry) {
			s.merchantCache = make(map[string]*model.Merchant)
		}
		return nil
	}

	merchant := s.merchantCache[receiver]
	s.cacheMutex.RUnlock()
	return merchant
}

// cacheMerchant adds a merchant to the cache.
func (s *SQLiteStorage) cacheMerchant(merchant *model.Merchant) {
	s.cacheMutex.Lock()
	defer s.cacheMutex.Unlock()

	if len(s.merchantCache) == 0 {
		// Set cache expiry on first entry
		s.cacheExpiry = time.Now().Add(5 * time.Minute)
	}
	s.merchantCache[merchant.Receiver] = merchant
}

// uncacheMerchant drops a merchant from the cache.
func (s *SQLiteStorage) uncacheMerchant(receiver string) {
	s.cacheMutex.Lock()
	defer s.cacheMutex.Unlock()
	delete(s.merchantCache, receiver)
}
