package sched

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"promotion-platform/internal/domain/ports/repository"
	"promotion-platform/internal/usecase"
)

// ActivationReconciler periodically scans for approved ledger records whose
// content never went active and re-dispatches activation. This covers the
// partial-failure window after approval: the ledger flip is durable, so
// activation is at-least-once and must be retried out-of-band rather than
// silently lost.
type ActivationReconciler struct {
	dispatcher *usecase.ActivationDispatcher
	ledger     repository.LedgerRepository
	interval   time.Duration // how often to scan
	staleAfter time.Duration // how old an approved record must be to retry
	log        *zerolog.Logger
}

func NewActivationReconciler(dispatcher *usecase.ActivationDispatcher, ledger repository.LedgerRepository, interval, staleAfter time.Duration, logger *zerolog.Logger) *ActivationReconciler {
	if interval <= 0 {
		interval = time.Minute
	}
	if staleAfter <= 0 {
		staleAfter = 5 * time.Minute
	}
	compLog := logger.With().Str("component", "ActivationReconciler").Logger()
	return &ActivationReconciler{
		dispatcher: dispatcher,
		ledger:     ledger,
		interval:   interval,
		staleAfter: staleAfter,
		log:        &compLog,
	}
}

func (w *ActivationReconciler) Run(ctx context.Context) error {
	w.log.Info().Msg("starting activation reconciler")
	t := time.NewTicker(w.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("stopping activation reconciler")
			return ctx.Err()
		case <-t.C:
			w.tick(ctx)
		}
	}
}

func (w *ActivationReconciler) tick(ctx context.Context) {
	cutoff := time.Now().Add(-w.staleAfter)
	stale, err := w.ledger.ListApprovedInactive(ctx, repository.NoTX, cutoff, 200)
	if err != nil {
		w.log.Error().Err(err).Msg("list approved-inactive failed")
		return
	}
	for _, rec := range stale {
		if err := w.dispatcher.Activate(ctx, rec); err != nil {
			w.log.Error().Err(err).Str("payment_id", rec.ID).Msg("activation retry failed")
			continue
		}
		w.log.Info().Str("payment_id", rec.ID).Str("content_id", rec.ContentID).Msg("activation reconciled")
	}
}
