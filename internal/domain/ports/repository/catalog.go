package repository

import (
	"context"

	"promotion-platform/internal/domain/model"
)

// CatalogRepository is the remote price-catalog source. Callers never see its
// failures directly; the pricing use case absorbs them behind its cache and
// the compiled-in default table.
type CatalogRepository interface {
	ListAll(ctx context.Context, tx Tx) ([]model.PriceCatalogEntry, error)
	Save(ctx context.Context, tx Tx, e model.PriceCatalogEntry) error
}
