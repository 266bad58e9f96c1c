// File: internal/usecase/pricing_uc.go
package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"promotion-platform/internal/domain/model"
	"promotion-platform/internal/domain/ports/repository"
	"promotion-platform/internal/infra/metrics"
)

// Compile-time check
var _ PricingUseCase = (*pricingUC)(nil)

// PricingUseCase resolves the current price/duration for a (serviceType, tier)
// pair. Quote never returns an error: on any catalog-source failure the last
// cached catalog is served, and failing that the compiled-in default table. A
// price lookup must never be the reason a user cannot see a quote.
type PricingUseCase interface {
	Quote(ctx context.Context, st model.ServiceType, tier model.Tier, forceRefresh bool) model.PriceCatalogEntry
	// Catalog returns every sellable entry, for the merchant-facing price list.
	Catalog(ctx context.Context) []model.PriceCatalogEntry
}

type catalogKey struct {
	st   model.ServiceType
	tier model.Tier
}

// catalogCache is the TTL cache for the full catalog. Refreshes are
// last-writer-wins: two concurrent refreshes may both store safely. The clock
// is injected so tests can step time.
type catalogCache struct {
	mu        sync.RWMutex
	entries   map[catalogKey]model.PriceCatalogEntry
	fetchedAt time.Time
	ttl       time.Duration
	now       func() time.Time
}

func (c *catalogCache) get(key catalogKey) (model.PriceCatalogEntry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.entries == nil || c.now().Sub(c.fetchedAt) >= c.ttl {
		return model.PriceCatalogEntry{}, false
	}
	e, ok := c.entries[key]
	return e, ok
}

// stale returns an entry regardless of TTL; used when the source is down.
func (c *catalogCache) stale(key catalogKey) (model.PriceCatalogEntry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[key]
	return e, ok
}

func (c *catalogCache) all() []model.PriceCatalogEntry {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]model.PriceCatalogEntry, 0, len(c.entries))
	for _, e := range c.entries {
		out = append(out, e)
	}
	return out
}

func (c *catalogCache) replace(entries []model.PriceCatalogEntry) {
	m := make(map[catalogKey]model.PriceCatalogEntry, len(entries))
	for _, e := range entries {
		m[catalogKey{st: e.ServiceType, tier: e.Tier}] = e
	}
	c.mu.Lock()
	c.entries = m
	c.fetchedAt = c.now()
	c.mu.Unlock()
}

type pricingUC struct {
	source   repository.CatalogRepository
	cache    *catalogCache
	defaults map[catalogKey]model.PriceCatalogEntry
	log      *zerolog.Logger
}

// NewPricingUseCase builds the catalog resolver. ttl is how long a fetched
// catalog stays fresh (5 minutes in production); now is the injected clock.
func NewPricingUseCase(source repository.CatalogRepository, ttl time.Duration, now func() time.Time, logger *zerolog.Logger) *pricingUC {
	if now == nil {
		now = time.Now
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	defaults := make(map[catalogKey]model.PriceCatalogEntry)
	for _, e := range model.DefaultPriceTable() {
		defaults[catalogKey{st: e.ServiceType, tier: e.Tier}] = e
	}
	compLog := logger.With().Str("component", "PricingUC").Logger()
	return &pricingUC{
		source:   source,
		cache:    &catalogCache{ttl: ttl, now: now},
		defaults: defaults,
		log:      &compLog,
	}
}

func (u *pricingUC) Quote(ctx context.Context, st model.ServiceType, tier model.Tier, forceRefresh bool) model.PriceCatalogEntry {
	key := catalogKey{st: st, tier: tier}

	if !forceRefresh {
		if e, ok := u.cache.get(key); ok {
			metrics.IncCacheRequest("catalog", "hit")
			return e
		}
	}
	metrics.IncCacheRequest("catalog", "miss")

	entries, err := u.source.ListAll(ctx, repository.NoTX)
	if err != nil {
		u.log.Warn().Err(err).Str("service_type", string(st)).Msg("catalog source unavailable, serving stale or default")
		metrics.IncCatalogFallback()
		if e, ok := u.cache.stale(key); ok {
			return e
		}
		return u.defaultEntry(key)
	}
	u.cache.replace(entries)

	if e, ok := u.cache.stale(key); ok {
		return e
	}
	// Source is up but has no row for this pair; the default table is as
	// authoritative as we can get.
	return u.defaultEntry(key)
}

func (u *pricingUC) Catalog(ctx context.Context) []model.PriceCatalogEntry {
	if entries, err := u.source.ListAll(ctx, repository.NoTX); err == nil {
		u.cache.replace(entries)
		return entries
	}
	if all := u.cache.all(); len(all) > 0 {
		return all
	}
	return model.DefaultPriceTable()
}

func (u *pricingUC) defaultEntry(key catalogKey) model.PriceCatalogEntry {
	if e, ok := u.defaults[key]; ok {
		return e
	}
	// Unknown pair: quote the service type's untiered default if one exists.
	if e, ok := u.defaults[catalogKey{st: key.st, tier: model.TierNone}]; ok {
		return e
	}
	return model.PriceCatalogEntry{
		ServiceType:  key.st,
		Tier:         key.tier,
		Price:        0,
		DurationDays: 30,
		DisplayName:  string(key.st),
	}
}
