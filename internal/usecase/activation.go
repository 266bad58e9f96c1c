// File: internal/usecase/activation.go
package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"promotion-platform/internal/domain"
	"promotion-platform/internal/domain/model"
	"promotion-platform/internal/domain/ports/repository"
	"promotion-platform/internal/infra/metrics"
)

// Activator grants one content type its paid window. New content types
// register an Activator instead of growing a switch.
type Activator interface {
	Activate(ctx context.Context, rec *model.PaymentLedgerRecord, expiry time.Time) error
}

// ContentActivator is the stock Activator over a ContentStore. It is
// idempotent: re-activating an already active record just re-applies the
// (same or later) expiry, because retries legitimately happen after a partial
// failure downstream of approval.
type ContentActivator struct {
	store repository.ContentStore
}

func NewContentActivator(store repository.ContentStore) *ContentActivator {
	return &ContentActivator{store: store}
}

func (a *ContentActivator) Activate(ctx context.Context, rec *model.PaymentLedgerRecord, expiry time.Time) error {
	content, err := a.store.FindByID(ctx, repository.NoTX, rec.ContentID)
	if err != nil {
		return fmt.Errorf("load content %s: %w", rec.ContentID, err)
	}
	if content.Status == model.ContentStatusActive && content.ExpiryDate != nil && !expiry.After(*content.ExpiryDate) {
		return nil // already active with an equal or later window
	}
	if err := a.store.MarkPaid(ctx, repository.NoTX, rec.ContentID); err != nil {
		return fmt.Errorf("mark paid %s: %w", rec.ContentID, err)
	}
	if err := a.store.SetActive(ctx, repository.NoTX, rec.ContentID, expiry); err != nil {
		return fmt.Errorf("set active %s: %w", rec.ContentID, err)
	}
	return nil
}

// ActivationDispatcher resolves the right Activator by service type and
// re-anchors the paid window at activation time: the purchased duration
// starts when the reviewer approves, not when the card was charged, so review
// latency never eats into the window.
type ActivationDispatcher struct {
	activators map[model.ServiceType]Activator
	ledger     repository.LedgerRepository
	now        func() time.Time
	log        *zerolog.Logger
}

func NewActivationDispatcher(ledger repository.LedgerRepository, now func() time.Time, logger *zerolog.Logger) *ActivationDispatcher {
	if now == nil {
		now = time.Now
	}
	compLog := logger.With().Str("component", "ActivationDispatcher").Logger()
	return &ActivationDispatcher{
		activators: make(map[model.ServiceType]Activator),
		ledger:     ledger,
		now:        now,
		log:        &compLog,
	}
}

// Register binds an Activator to a service type. Later registrations for the
// same type replace earlier ones.
func (d *ActivationDispatcher) Register(st model.ServiceType, a Activator) {
	d.activators[st] = a
}

// ContentStoreFor returns the backing store when the registered Activator is
// a ContentActivator, for lifecycle writes outside activation.
func (d *ActivationDispatcher) ContentStoreFor(st model.ServiceType) repository.ContentStore {
	if ca, ok := d.activators[st].(*ContentActivator); ok {
		return ca.store
	}
	return nil
}

// Activate grants rec's content its paid window. The expiry is computed from
// the review moment (or now, for reconciler retries) plus the purchased
// duration, and is written back to the ledger so ledger and content agree.
func (d *ActivationDispatcher) Activate(ctx context.Context, rec *model.PaymentLedgerRecord) error {
	act, ok := d.activators[rec.ServiceType]
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrNoActivator, rec.ServiceType)
	}

	anchor := d.now()
	if rec.ReviewedAt != nil {
		anchor = *rec.ReviewedAt
	}
	expiry := anchor.Add(time.Duration(rec.DurationDays) * 24 * time.Hour)
	if rec.ActivatedAt != nil && !rec.ExpiryDate.Before(expiry) {
		expiry = rec.ExpiryDate // a retry must never shorten an already granted window
	}

	if err := act.Activate(ctx, rec, expiry); err != nil {
		metrics.IncActivation(string(rec.ServiceType), "failed")
		return err
	}
	if err := d.ledger.MarkActivated(ctx, repository.NoTX, rec.ID, expiry, d.now()); err != nil {
		// Content is live; the next reconciler pass re-applies the same window.
		d.log.Error().Err(err).Str("payment_id", rec.ID).Msg("content active but ledger not marked")
		metrics.IncActivation(string(rec.ServiceType), "ledger_lag")
		return err
	}
	rec.ExpiryDate = expiry
	metrics.IncActivation(string(rec.ServiceType), "ok")
	return nil
}
