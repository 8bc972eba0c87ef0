// Package pipeline implements the notification-to-transaction pipeline: a
// heuristic filter over incoming notification text, a template-based field
// extractor, a resolver that decides the category from the merchant map or
// the remote classifier, and a dispatcher that writes the ledger, updates the
// merchant map and schedules deferred-categorization notifications.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"rupeeflow/internal/common"
	"rupeeflow/internal/model"
	"rupeeflow/internal/notify"
	"rupeeflow/internal/service"
)

const (
	// Confidence gates for accepting a classifier suggestion, on the
	// classifier's 0-10 scale. The higher bar applies when accepting the
	// suggestion requires creating a category that does not exist yet.
	autoAcceptConfidence  = 9.0
	newCategoryConfidence = 9.5

	// defaultDebounceWindow suppresses the burst of near-duplicate callbacks
	// the host platform delivers for a single real-world transaction.
	defaultDebounceWindow = 3 * time.Second

	notificationTitle = "New UPI Receiver"
)

// Outcome describes what the pipeline did with one notification.
type Outcome string

// Pipeline outcomes.
const (
	// OutcomeIgnored: not a payment notification, or unparseable.
	OutcomeIgnored Outcome = "ignored"
	// OutcomeDuplicate: dropped inside the debounce window.
	OutcomeDuplicate Outcome = "duplicate"
	// OutcomeFinalized: a categorized ledger entry was written.
	OutcomeFinalized Outcome = "finalized"
	// OutcomeDeferred: a pending entry was written and the user was asked.
	OutcomeDeferred Outcome = "deferred"
)

// Classifier defines the remote classification dependency.
type Classifier interface {
	Classify(ctx context.Context, amount float64, receiver string, categories []string) (*model.Suggestion, error)
}

// Config holds pipeline configuration.
type Config struct {
	// Now is the clock; defaults to time.Now. Injected so tests control the
	// debounce window directly.
	Now            func() time.Time
	DeepLinkBase   string
	DebounceWindow time.Duration
}

// Pipeline owns the classification state machine and the debounce state.
// HandleNotification is safe for concurrent use, though the host platform is
// expected to deliver notifications one at a time.
type Pipeline struct {
	now          func() time.Time
	store        service.Storage
	classifier   Classifier
	notifier     service.Notifier
	logger       *slog.Logger
	extractors   []Extractor
	deepLinkBase string
	debounce     time.Duration

	mu        sync.Mutex
	lastEvent time.Time
}

// New creates a pipeline with the default bullet-template extractor.
func New(store service.Storage, classifier Classifier, notifier service.Notifier, logger *slog.Logger, cfg Config) *Pipeline {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.DebounceWindow == 0 {
		cfg.DebounceWindow = defaultDebounceWindow
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Pipeline{
		store:        store,
		classifier:   classifier,
		notifier:     notifier,
		logger:       logger,
		extractors:   []Extractor{BulletExtractor{}},
		deepLinkBase: cfg.DeepLinkBase,
		debounce:     cfg.DebounceWindow,
		now:          cfg.Now,
	}
}

// RegisterExtractor adds an extractor for an additional notification
// template. Extractors are tried in registration order after the default.
func (p *Pipeline) RegisterExtractor(e Extractor) {
	p.extractors = append(p.extractors, e)
}

// HandleNotification is the pipeline entry point, invoked with the raw title
// and text of a newly delivered system notification.
//
// Parsing and classification problems degrade to the safest fallback (ignore,
// or record a pending entry and ask the user); only persistence failures are
// returned as errors, since silently losing a financial record is worse than
// a failed callback.
func (p *Pipeline) HandleNotification(ctx context.Context, title, text string) (Outcome, error) {
	if !p.admitEvent() {
		p.logger.Debug("duplicate notification skipped")
		return OutcomeDuplicate, nil
	}

	full := strings.TrimSpace(title + " " + text)

	if !LooksLikePayment(full) {
		p.logger.Debug("not a likely payment notification")
		return OutcomeIgnored, nil
	}

	fields, ok := p.extract(full)
	if !ok {
		p.logger.Debug("payment fields not extractable", "text", full)
		return OutcomeIgnored, nil
	}

	p.logger.Info("payment event parsed", "amount", fields.Amount, "receiver", fields.Receiver)
	return p.resolve(ctx, fields)
}

// admitEvent advances the debounce state; it returns false when the event
// falls inside the window of the previously admitted one.
func (p *Pipeline) admitEvent() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := p.now()
	if now.Sub(p.lastEvent) < p.debounce {
		return false
	}
	p.lastEvent = now
	return true
}

func (p *Pipeline) extract(text string) (Fields, bool) {
	for _, e := range p.extractors {
		if fields, ok := e.Extract(text); ok {
			return fields, true
		}
	}
	return Fields{}, false
}

// resolve decides how to record one extracted payment event.
func (p *Pipeline) resolve(ctx context.Context, fields Fields) (Outcome, error) {
	merchant, err := p.store.GetMerchant(ctx, fields.Receiver)
	if err != nil {
		return "", err
	}

	if merchant != nil {
		if merchant.AlwaysAsk {
			return OutcomeDeferred, p.deferEvent(ctx, fields, true)
		}
		err := p.finalize(ctx, 0, fields, merchant.Category, merchant.Description, merchant.Type, nil)
		if errors.Is(err, common.ErrNotFound) {
			// The remembered category no longer exists; ask the user instead
			// of losing the event.
			p.logger.Warn("remembered category missing, deferring",
				"receiver", fields.Receiver, "category", merchant.Category)
			return OutcomeDeferred, p.deferEvent(ctx, fields, false)
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
		return OutcomeDeferred, p.deferEvent(ctx, fields, false)
	}

	return p.reconcile(ctx, fields, suggestion, categories)
}

// reconcile applies the suggestion gates of the resolver state machine.
func (p *Pipeline) reconcile(ctx context.Context, fields Fields, suggestion *model.Suggestion, categories []string) (Outcome, error) {
	// The same merchant may appear under a different receiver string. When a
	// stored entry's description matches the suggested one, the entry is
	// re-keyed to the new receiver and its stored preference is authoritative
	// over the fresh suggestion.
	if suggestion.Description != "" {
		known, err := p.store.FindMerchantByDescription(ctx, suggestion.Description)
		if err != nil {
			return "", err
		}
		if known != nil {
			return p.mergeReceiver(ctx, fields, known)
		}
	}

	if suggestion.Confidence >= autoAcceptConfidence && !suggestion.HasUnknownFields() {
		upsert := &model.Merchant{
			Receiver:    fields.Receiver,
			Category:    suggestion.Category,
			Description: suggestion.Description,
			Type:        suggestion.TransactionType(),
			AlwaysAsk:   false,
		}

		if containsFold(categories, suggestion.Category) {
			err := p.finalize(ctx, 0, fields, suggestion.Category, suggestion.Description, suggestion.TransactionType(), upsert)
			if errors.Is(err, common.ErrNotFound) {
				// Known by name but not for the suggested type.
				return OutcomeDeferred, p.deferEvent(ctx, fields, false)
			}
			return OutcomeFinalized, err
		}

		if suggestion.Confidence >= newCategoryConfidence {
			return OutcomeFinalized, p.finalizeWithNewCategory(ctx, fields, suggestion, upsert)
		}
	}

	return OutcomeDeferred, p.deferEvent(ctx, fields, false)
}

// mergeReceiver re-keys an existing merchant entry to the new receiver and
// finalizes using the stored values, all in one atomic unit.
func (p *Pipeline) mergeReceiver(ctx context.Context, fields Fields, known *model.Merchant) (Outcome, error) {
	tx, err := p.store.BeginTx(ctx)
	if err != nil {
		return "", err
	}
	defer func() { _ = tx.Rollback() }()

	if err := tx.DeleteMerchant(ctx, known.Receiver); err != nil && !errors.Is(err, common.ErrNotFound) {
		return "", err
	}

	merged := *known
	merged.Receiver = fields.Receiver
	merged.LastUpdated = p.now()
	if err := tx.SaveMerchant(ctx, &merged); err != nil {
		return "", err
	}

	if err := p.finalizeTx(ctx, tx, 0, fields, known.Category, known.Description, known.Type); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			// Stored category vanished; fall back to asking the user. The
			// rollback above discards the re-key.
			_ = tx.Rollback()
			return OutcomeDeferred, p.deferEvent(ctx, fields, false)
		}
		return "", err
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit merge: %w", err)
	}

	p.logger.Info("merged merchant identity",
		"old_receiver", known.Receiver, "new_receiver", fields.Receiver,
		"description", known.Description)
	return OutcomeFinalized, nil
}

// finalize writes a categorized ledger entry (inserting a new row, or
// finalizing the pending row pendingID when non-zero), optionally upserting a
// merchant entry in the same atomic unit.
func (p *Pipeline) finalize(ctx context.Context, pendingID int64, fields Fields, categoryName, description string, txnType model.TransactionType, upsert *model.Merchant) error {
	tx, err := p.store.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if err := p.finalizeTx(ctx, tx, pendingID, fields, categoryName, description, txnType); err != nil {
		return err
	}

	if upsert != nil {
		upsert.LastUpdated = p.now()
		if err := tx.SaveMerchant(ctx, upsert); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	p.logger.Info("transaction finalized",
		"receiver", fields.Receiver, "amount", fields.Amount,
		"category", categoryName, "type", txnType)
	return nil
}

func (p *Pipeline) finalizeTx(ctx context.Context, tx service.Transaction, pendingID int64, fields Fields, categoryName, description string, txnType model.TransactionType) error {
	cat, err := tx.GetCategoryByNameAndType(ctx, categoryName, txnType)
	if err != nil {
		return err
	}
	if cat == nil {
		return fmt.Errorf("category %q (%s): %w", categoryName, txnType, common.ErrNotFound)
	}

	if description == "" {
		description = fields.Receiver
	}

	if pendingID > 0 {
		txn, err := tx.GetTransactionByID(ctx, pendingID)
		if err != nil {
			return err
		}
		txn.CategoryID = cat.ID
		txn.Description = description
		txn.Type = txnType
		txn.Pending = false
		return tx.UpdateTransaction(ctx, txn)
	}

	_, err = tx.CreateTransaction(ctx, &model.Transaction{
		CategoryID:  cat.ID,
		Amount:      fields.Amount,
		Date:        p.now(),
		Description: description,
		Type:        txnType,
		Pending:     false,
	})
	return err
}

// finalizeWithNewCategory creates the suggested category first, then
// finalizes against it, in one atomic unit.
func (p *Pipeline) finalizeWithNewCategory(ctx context.Context, fields Fields, suggestion *model.Suggestion, upsert *model.Merchant) error {
	tx, err := p.store.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.CreateCategory(ctx, suggestion.Category, suggestion.TransactionType()); err != nil {
		return err
	}

	if err := p.finalizeTx(ctx, tx, 0, fields, suggestion.Category, suggestion.Description, suggestion.TransactionType()); err != nil {
		return err
	}

	upsert.LastUpdated = p.now()
	if err := tx.SaveMerchant(ctx, upsert); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	p.logger.Info("transaction finalized with new category",
		"receiver", fields.Receiver, "amount", fields.Amount,
		"category", suggestion.Category, "type", suggestion.TransactionType())
	return nil
}

// deferEvent records a pending ledger entry and asks the user to categorize
// it via a deep-linked notification. The pending row is committed before the
// notification is sent: delivery failure costs a reminder, not the record.
func (p *Pipeline) deferEvent(ctx context.Context, fields Fields, alwaysAsk bool) error {
	tx, err := p.store.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	cat, err := tx.GetCategoryByNameAndType(ctx, model.DefaultCategoryName, model.TypeExpense)
	if err != nil {
		return err
	}
	if cat == nil {
		return fmt.Errorf("default category missing: %w", common.ErrNotFound)
	}

	id, err := tx.CreateTransaction(ctx, &model.Transaction{
		CategoryID:  cat.ID,
		Amount:      fields.Amount,
		Date:        p.now(),
		Description: fields.Receiver,
		Type:        model.TypeExpense,
		Pending:     true,
	})
	if err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit pending transaction: %w", err)
	}

	notification := service.Notification{
		Title:    notificationTitle,
		Body:     "Add category for " + fields.Receiver,
		DeepLink: notify.BuildCategoriseLink(p.deepLinkBase, fields.Receiver, fields.Amount, alwaysAsk, id),
	}
	if err := p.notifier.Schedule(ctx, notification); err != nil {
		p.logger.Error("failed to schedule notification",
			"receiver", fields.Receiver, "transaction_id", id, "error", err)
	}

	p.logger.Info("transaction deferred for categorization",
		"receiver", fields.Receiver, "amount", fields.Amount, "transaction_id", id)
	return nil
}

// containsFold reports whether names contains name, compared case-insensitively.
func containsFold(names []string, name string) bool {
	for _, n := range names {
		if strings.EqualFold(n, name) {
			return true
		}
	}
	return false
}
