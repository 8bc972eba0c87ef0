// Package storage provides the data persistence layer for the application.
package storage

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"rupeeflow/internal/model"
)

// Validation errors.
var (
	ErrNilContext         = errors.New("context cannot be nil")
	ErrEmptyString        = errors.New("string parameter cannot be empty")
	ErrNilParameter       = errors.New("parameter cannot be nil")
	ErrInvalidDateRange   = errors.New("start date must be before end date")
	ErrInvalidType        = errors.New("invalid transaction type")
	ErrInvalidTransaction = errors.New("invalid transaction")
	ErrInvalidMerchant    = errors.New("invalid merchant")
	ErrProtectedCategory  = errors.New("default category cannot be deleted")
	ErrCategoryInUse      = errors.New("category is referenced by transactions")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateTransactionType ensures the type is Expense or Income.
func validateTransactionType(t model.TransactionType) error {
	if !t.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidType, t)
	}
	return nil
}

// validateTransaction validates a single ledger entry.
func validateTransaction(txn *model.Transaction) error {
	if txn == nil {
		return fmt.Errorf("%w: transaction", ErrNilParameter)
	}
	if txn.CategoryID <= 0 {
		return fmt.Errorf("%w: missing category reference", ErrInvalidTransaction)
	}
	if txn.Amount <= 0 || math.IsNaN(txn.Amount) || math.IsInf(txn.Amount, 0) {
		return fmt.Errorf("%w: amount must be a positive number", ErrInvalidTransaction)
	}
	if txn.Date.IsZero() {
		return fmt.Errorf("%w: missing date", ErrInvalidTransaction)
	}
	if err := validateTransactionType(txn.Type); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidTransaction, err)
	}
	return nil
}

// validateMerchant validates a merchant map entry.
func validateMerchant(merchant *model.Merchant) error {
	if merchant == nil {
		return fmt.Errorf("%w: merchant", ErrNilParameter)
	}
	if strings.TrimSpace(merchant.Receiver) == "" {
		return fmt.Errorf("%w: missing receiver", ErrInvalidMerchant)
	}
	if strings.TrimSpace(merchant.Category) == "" {
		return fmt.Errorf("%w: missing category", ErrInvalidMerchant)
	}
	if err := validateTransactionType(merchant.Type); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidMerchant, err)
	}
	return nil
}
