package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"promotion-platform/internal/domain"
	"promotion-platform/internal/domain/model"
	"promotion-platform/internal/domain/ports/repository"
)

var _ repository.ContentStore = (*contentRepo)(nil)

// contentRepo implements the ContentStore contract over one per-type table.
// Every content type shares the column shape; the editorial payload lives in
// a JSONB column the lifecycle never inspects.
type contentRepo struct {
	pool        *pgxpool.Pool
	table       string
	serviceType model.ServiceType
}

func NewJobPostingStore(pool *pgxpool.Pool) *contentRepo {
	return &contentRepo{pool: pool, table: "job_postings", serviceType: model.ServiceJobPosting}
}

func NewSeminarStore(pool *pgxpool.Pool) *contentRepo {
	return &contentRepo{pool: pool, table: "seminars", serviceType: model.ServiceSeminar}
}

func NewLabAdvertisementStore(pool *pgxpool.Pool) *contentRepo {
	return &contentRepo{pool: pool, table: "lab_advertisements", serviceType: model.ServiceLabAdvertisement}
}

func NewAdvertisementStore(pool *pgxpool.Pool) *contentRepo {
	return &contentRepo{pool: pool, table: "advertisements", serviceType: model.ServiceAdvertisement}
}

func NewNewProductStore(pool *pgxpool.Pool) *contentRepo {
	return &contentRepo{pool: pool, table: "new_products", serviceType: model.ServiceNewProduct}
}

const contentColumns = `id, owner_id, status, is_paid, expiry_date, payload, created_at, updated_at`

func (r *contentRepo) Create(ctx context.Context, tx repository.Tx, rec *model.ContentRecord) error {
	q := `INSERT INTO ` + r.table + ` (` + contentColumns + `) VALUES ($1,$2,$3,$4,$5,$6,$7,$8);`
	_, err := execSQL(ctx, r.pool, tx, q,
		rec.ID, rec.OwnerID, rec.Status, rec.IsPaid, rec.ExpiryDate, rec.Payload, rec.CreatedAt, rec.UpdatedAt)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *contentRepo) scan(row pgx.Row) (*model.ContentRecord, error) {
	rec := &model.ContentRecord{ServiceType: r.serviceType}
	if err := row.Scan(&rec.ID, &rec.OwnerID, &rec.Status, &rec.IsPaid, &rec.ExpiryDate, &rec.Payload, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return rec, nil
}

func (r *contentRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.ContentRecord, error) {
	q := `SELECT ` + contentColumns + ` FROM ` + r.table + ` WHERE id=$1;`
	row, err := pickRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return nil, err
	}
	return r.scan(row)
}

func (r *contentRepo) MarkPaid(ctx context.Context, tx repository.Tx, id string) error {
	q := `UPDATE ` + r.table + ` SET is_paid=TRUE, updated_at=NOW() WHERE id=$1;`
	return r.exec(ctx, tx, q, id)
}

func (r *contentRepo) SetActive(ctx context.Context, tx repository.Tx, id string, expiry time.Time) error {
	q := `UPDATE ` + r.table + ` SET status='active', is_paid=TRUE, expiry_date=$2, updated_at=NOW() WHERE id=$1;`
	return r.exec(ctx, tx, q, id, expiry)
}

func (r *contentRepo) SetStatus(ctx context.Context, tx repository.Tx, id string, status model.ContentStatus) error {
	q := `UPDATE ` + r.table + ` SET status=$2, updated_at=NOW() WHERE id=$1;`
	return r.exec(ctx, tx, q, id, status)
}

func (r *contentRepo) ListOwn(ctx context.Context, tx repository.Tx, ownerID string) ([]*model.ContentRecord, error) {
	q := `SELECT ` + contentColumns + ` FROM ` + r.table + ` WHERE owner_id=$1 ORDER BY created_at DESC;`
	return r.list(ctx, tx, q, ownerID)
}

func (r *contentRepo) ListOwnPendingOrRejected(ctx context.Context, tx repository.Tx, ownerID string) ([]*model.ContentRecord, error) {
	q := `SELECT ` + contentColumns + ` FROM ` + r.table + ` WHERE owner_id=$1 AND status IN ('pending','rejected') ORDER BY created_at DESC;`
	return r.list(ctx, tx, q, ownerID)
}

func (r *contentRepo) ListActiveExpiringBefore(ctx context.Context, tx repository.Tx, cutoff time.Time, limit int) ([]*model.ContentRecord, error) {
	q := `SELECT ` + contentColumns + ` FROM ` + r.table + ` WHERE status='active' AND expiry_date IS NOT NULL AND expiry_date < $1 AND expiry_date > NOW() ORDER BY expiry_date ASC LIMIT $2;`
	return r.list(ctx, tx, q, cutoff, limit)
}

// Delete is restricted to the owner and refused while the record is active.
func (r *contentRepo) Delete(ctx context.Context, tx repository.Tx, id, actorID string) error {
	rec, err := r.FindByID(ctx, tx, id)
	if err != nil {
		return err
	}
	if rec.OwnerID != actorID {
		return domain.ErrNotAuthorized
	}
	if rec.Status == model.ContentStatusActive {
		return domain.ErrContentActive
	}
	q := `DELETE FROM ` + r.table + ` WHERE id=$1 AND owner_id=$2;`
	return r.exec(ctx, tx, q, id, actorID)
}

func (r *contentRepo) list(ctx context.Context, tx repository.Tx, q string, args ...interface{}) ([]*model.ContentRecord, error) {
	rows, err := pickRows(ctx, r.pool, tx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.ContentRecord
	for rows.Next() {
		rec, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if rows.Err() != nil {
		return nil, domain.ErrReadDatabaseRow
	}
	return out, nil
}

func (r *contentRepo) exec(ctx context.Context, tx repository.Tx, q string, args ...interface{}) error {
	_, err := execSQL(ctx, r.pool, tx, q, args...)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}
