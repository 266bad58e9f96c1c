package postgres

import (
	"context"

	"github.com/jackc/pgx/v4/pgxpool"

	"promotion-platform/internal/domain"
	"promotion-platform/internal/domain/model"
	"promotion-platform/internal/domain/ports/repository"
)

var _ repository.CatalogRepository = (*catalogRepo)(nil)

// catalogRepo is the remote source for the price catalog. The pricing use
// case absorbs its failures, so errors here are reported plainly.
type catalogRepo struct{ pool *pgxpool.Pool }

func NewCatalogRepo(pool *pgxpool.Pool) *catalogRepo {
	return &catalogRepo{pool: pool}
}

func (r *catalogRepo) ListAll(ctx context.Context, tx repository.Tx) ([]model.PriceCatalogEntry, error) {
	const q = `SELECT service_type, tier, price, duration_days, display_name FROM price_catalog;`
	rows, err := pickRows(ctx, r.pool, tx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.PriceCatalogEntry
	for rows.Next() {
		var e model.PriceCatalogEntry
		if err := rows.Scan(&e.ServiceType, &e.Tier, &e.Price, &e.DurationDays, &e.DisplayName); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, e)
	}
	if rows.Err() != nil {
		return nil, domain.ErrReadDatabaseRow
	}
	return out, nil
}

func (r *catalogRepo) Save(ctx context.Context, tx repository.Tx, e model.PriceCatalogEntry) error {
	const q = `
INSERT INTO price_catalog (service_type, tier, price, duration_days, display_name)
VALUES ($1,$2,$3,$4,$5)
ON CONFLICT (service_type, tier) DO UPDATE SET price=$3, duration_days=$4, display_name=$5;`
	_, err := execSQL(ctx, r.pool, tx, q, e.ServiceType, e.Tier, e.Price, e.DurationDays, e.DisplayName)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}
