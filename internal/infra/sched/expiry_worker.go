package sched

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"promotion-platform/internal/domain/model"
	"promotion-platform/internal/domain/ports/repository"
	"promotion-platform/internal/usecase"
)

// ExpiryWorker notifies owners of active content whose paid window ends
// within noticeDays. Deliveries are best-effort and deduped per content id
// per scan window.
type ExpiryWorker struct {
	interval   time.Duration
	noticeDays int
	stores     map[model.ServiceType]repository.ContentStore
	notify     usecase.NotificationUseCase
	log        *zerolog.Logger
}

func NewExpiryWorker(interval time.Duration, noticeDays int, stores map[model.ServiceType]repository.ContentStore, notify usecase.NotificationUseCase, logger *zerolog.Logger) *ExpiryWorker {
	if interval <= 0 {
		interval = 24 * time.Hour
	}
	if noticeDays <= 0 {
		noticeDays = 3
	}
	compLog := logger.With().Str("component", "ExpiryWorker").Logger()
	return &ExpiryWorker{
		interval:   interval,
		noticeDays: noticeDays,
		stores:     stores,
		notify:     notify,
		log:        &compLog,
	}
}

func (w *ExpiryWorker) Run(ctx context.Context) error {
	w.log.Info().Msg("starting expiry worker")
	// Run once on startup, then on every tick
	w.runCheck(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("stopping expiry worker")
			return ctx.Err()
		case <-ticker.C:
			w.runCheck(ctx)
		}
	}
}

func (w *ExpiryWorker) runCheck(ctx context.Context) {
	cutoff := time.Now().Add(time.Duration(w.noticeDays) * 24 * time.Hour)
	dedupeSince := time.Now().Add(-w.interval)
	sent := 0
	for st, store := range w.stores {
		items, err := store.ListActiveExpiringBefore(ctx, repository.NoTX, cutoff, 500)
		if err != nil {
			w.log.Error().Err(err).Str("service_type", string(st)).Msg("expiring scan failed")
			continue
		}
		for _, item := range items {
			if w.notify.AlreadySent(ctx, item.OwnerID, model.NotificationExpiringSoon, item.ID, dedupeSince) {
				continue
			}
			w.notify.Notify(ctx, item.OwnerID, model.NotificationExpiringSoon,
				"Your content expires soon",
				fmt.Sprintf("Your %s expires on %s.", st, item.ExpiryDate.Format("2006-01-02")),
				item.ID)
			sent++
		}
	}
	if sent > 0 {
		w.log.Info().Int("count", sent).Msg("expiry notifications sent")
	}
}
