package pipeline

import (
	"context"
	"errors"
	"fmt"

	"rupeeflow/internal/common"
	"rupeeflow/internal/model"
	"rupeeflow/internal/service"
)

// FinalizePending completes a deferred transaction with the user's chosen
// category, reached through the categorise deep link. The category is created
// if the user typed a new one, the merchant map is updated so the next event
// from this receiver resolves without asking, and the pending row is
// finalized, all in one atomic unit.
func (p *Pipeline) FinalizePending(ctx context.Context, transactionID int64, receiver, category, description string, txnType model.TransactionType, alwaysAsk bool) error {
	if !txnType.Valid() {
		txnType = model.TypeExpense
	}
	if description == "" {
		description = receiver
	}

	tx, err := p.store.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.CreateCategory(ctx, category, txnType); err != nil {
		return err
	}

	if err := tx.SaveMerchant(ctx, &model.Merchant{
		Receiver:    receiver,
		Category:    category,
		Description: description,
		Type:        txnType,
		AlwaysAsk:   alwaysAsk,
		LastUpdated: p.now(),
	}); err != nil {
		return err
	}

	txn, err := tx.GetTransactionByID(ctx, transactionID)
	if err != nil {
		return err
	}
	if !txn.Pending {
		return fmt.Errorf("transaction %d is already categorized", transactionID)
	}

	cat, err := tx.GetCategoryByNameAndType(ctx, category, txnType)
	if err != nil {
		return err
	}
	if cat == nil {
		return fmt.Errorf("category %q (%s): %w", category, txnType, common.ErrNotFound)
	}

	txn.CategoryID = cat.ID
	txn.Description = description
	txn.Type = txnType
	txn.Pending = false
	if err := tx.UpdateTransaction(ctx, txn); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit categorization: %w", err)
	}

	p.logger.Info("pending transaction categorized",
		"transaction_id", transactionID, "receiver", receiver,
		"category", category, "always_ask", alwaysAsk)
	return nil
}

// ResolvePending re-runs resolution for one pending transaction, finalizing
// it in place when the merchant map or the classifier now yields a confident
// answer. The row is left pending otherwise; no new rows or notifications are
// produced.
func (p *Pipeline) ResolvePending(ctx context.Context, txn *model.Transaction) (Outcome, error) {
	if !txn.Pending {
		return OutcomeIgnored, nil
	}

	// Deferred rows store the receiver as the description.
	fields := Fields{Receiver: txn.Description, Amount: txn.Amount}

	merchant, err := p.store.GetMerchant(ctx, fields.Receiver)
	if err != nil {
		return "", err
	}
	if merchant != nil {
		if merchant.AlwaysAsk {
			return OutcomeDeferred, nil
		}
		err := p.finalize(ctx, txn.ID, fields, merchant.Category, merchant.Description, merchant.Type, nil)
		if errors.Is(err, common.ErrNotFound) {
			return OutcomeDeferred, nil
		}
		return OutcomeFinalized, err
	}

	categories, err := p.store.ListCategoryNames(ctx)
	if err != nil {
		return "", err
	}

	suggestion, classifyErr := p.classifier.Classify(ctx, fields.Amount, fields.Receiver, categories)
	if classifyErr != nil || suggestion == nil || suggestion.Category == "" {
		if classifyErr != nil {
			p.logger.Warn("classifier unavailable", "error", classifyErr)
		}
		return OutcomeDeferred, nil
	}

	if suggestion.Confidence < autoAcceptConfidence || suggestion.HasUnknownFields() {
		return OutcomeDeferred, nil
	}

	upsert := &model.Merchant{
		Receiver:    fields.Receiver,
		Category:    suggestion.Category,
		Description: suggestion.Description,
		Type:        suggestion.TransactionType(),
		AlwaysAsk:   false,
	}

	if containsFold(categories, suggestion.Category) {
		err := p.finalize(ctx, txn.ID, fields, suggestion.Category, suggestion.Description, suggestion.TransactionType(), upsert)
		if errors.Is(err, common.ErrNotFound) {
			return OutcomeDeferred, nil
		}
		return OutcomeFinalized, err
	}

	if suggestion.Confidence >= newCategoryConfidence {
		return OutcomeFinalized, p.resolvePendingNewCategory(ctx, txn.ID, fields, suggestion, upsert)
	}

	return OutcomeDeferred, nil
}

func (p *Pipeline) resolvePendingNewCategory(ctx context.Context, pendingID int64, fields Fields, suggestion *model.Suggestion, upsert *model.Merchant) error {
	tx, err := p.store.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.CreateCategory(ctx, suggestion.Category, suggestion.TransactionType()); err != nil {
		return err
	}

	if err := p.finalizeTx(ctx, tx, pendingID, fields, suggestion.Category, suggestion.Description, suggestion.TransactionType()); err != nil {
		return err
	}

	upsert.LastUpdated = p.now()
	if err := tx.SaveMerchant(ctx, upsert); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Store exposes the pipeline's storage for read paths that live alongside it,
// like the HTTP listing endpoints.
func (p *Pipeline) Store() service.Storage {
	return p.store
}
