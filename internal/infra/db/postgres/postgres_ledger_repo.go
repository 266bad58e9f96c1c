package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"promotion-platform/internal/domain"
	"promotion-platform/internal/domain/model"
	"promotion-platform/internal/domain/ports/repository"
)

var _ repository.LedgerRepository = (*ledgerRepo)(nil)

type ledgerRepo struct{ pool *pgxpool.Pool }

func NewLedgerRepo(pool *pgxpool.Pool) *ledgerRepo {
	return &ledgerRepo{pool: pool}
}

const ledgerColumns = `id, user_id, service_type, tier, order_number, tx_id, amount_paid, duration_days, expiry_date, content_id, snapshot, status, created_at, reviewed_by, reviewed_at, rejection_reason, refund_pending, activated_at`

func (r *ledgerRepo) Save(ctx context.Context, tx repository.Tx, rec *model.PaymentLedgerRecord) error {
	const q = `
INSERT INTO payment_ledger (
  ` + ledgerColumns + `
) VALUES (
  $1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18
);`
	_, err := execSQL(ctx, r.pool, tx, q,
		rec.ID, rec.UserID, rec.ServiceType, rec.Tier, rec.OrderNumber, rec.TxID,
		rec.AmountPaid, rec.DurationDays, rec.ExpiryDate, rec.ContentID, rec.Snapshot,
		rec.Status, rec.CreatedAt, rec.ReviewedBy, rec.ReviewedAt, rec.RejectionReason,
		rec.RefundPending, rec.ActivatedAt)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func scanLedger(row pgx.Row) (*model.PaymentLedgerRecord, error) {
	rec := &model.PaymentLedgerRecord{}
	if err := row.Scan(
		&rec.ID, &rec.UserID, &rec.ServiceType, &rec.Tier, &rec.OrderNumber, &rec.TxID,
		&rec.AmountPaid, &rec.DurationDays, &rec.ExpiryDate, &rec.ContentID, &rec.Snapshot,
		&rec.Status, &rec.CreatedAt, &rec.ReviewedBy, &rec.ReviewedAt, &rec.RejectionReason,
		&rec.RefundPending, &rec.ActivatedAt,
	); err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return rec, nil
}

func (r *ledgerRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.PaymentLedgerRecord, error) {
	q := `SELECT ` + ledgerColumns + ` FROM payment_ledger WHERE id=$1`
	if _, ok := tx.(pgx.Tx); ok {
		q += " FOR UPDATE"
	}
	q += ";"
	row, err := pickRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return nil, err
	}
	return scanLedger(row)
}

func (r *ledgerRepo) FindByOrderNumber(ctx context.Context, tx repository.Tx, orderNumber string) (*model.PaymentLedgerRecord, error) {
	q := `SELECT ` + ledgerColumns + ` FROM payment_ledger WHERE order_number=$1 LIMIT 1;`
	row, err := pickRow(ctx, r.pool, tx, q, orderNumber)
	if err != nil {
		return nil, err
	}
	return scanLedger(row)
}

func (r *ledgerRepo) List(ctx context.Context, tx repository.Tx, filter model.LedgerFilter) ([]*model.PaymentLedgerRecord, error) {
	var (
		conds []string
		args  []interface{}
	)
	if filter.ServiceType != "" {
		args = append(args, filter.ServiceType)
		conds = append(conds, fmt.Sprintf("service_type=$%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		conds = append(conds, fmt.Sprintf("status=$%d", len(args)))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		conds = append(conds, fmt.Sprintf("snapshot::text ILIKE $%d", len(args)))
	}
	q := `SELECT ` + ledgerColumns + ` FROM payment_ledger`
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += " ORDER BY order_number DESC;"

	rows, err := pickRows(ctx, r.pool, tx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectLedger(rows)
}

func (r *ledgerRepo) ListByUser(ctx context.Context, tx repository.Tx, userID string) ([]*model.PaymentLedgerRecord, error) {
	q := `SELECT ` + ledgerColumns + ` FROM payment_ledger WHERE user_id=$1 ORDER BY created_at DESC;`
	rows, err := pickRows(ctx, r.pool, tx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectLedger(rows)
}

func (r *ledgerRepo) ApproveIfPending(ctx context.Context, tx repository.Tx, id, adminID string, reviewedAt time.Time) (bool, error) {
	const q = `UPDATE payment_ledger SET status='approved', reviewed_by=$2, reviewed_at=$3 WHERE id=$1 AND status='pending';`
	tag, err := execSQL(ctx, r.pool, tx, q, id, adminID, reviewedAt)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return false, err
		}
		return false, domain.ErrOperationFailed
	}
	return tag.RowsAffected() == 1, nil
}

func (r *ledgerRepo) RejectIfPending(ctx context.Context, tx repository.Tx, id, adminID, reason string, reviewedAt time.Time) (bool, error) {
	const q = `UPDATE payment_ledger SET status='rejected', reviewed_by=$2, reviewed_at=$3, rejection_reason=$4 WHERE id=$1 AND status='pending';`
	tag, err := execSQL(ctx, r.pool, tx, q, id, adminID, reviewedAt, reason)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return false, err
		}
		return false, domain.ErrOperationFailed
	}
	return tag.RowsAffected() == 1, nil
}

func (r *ledgerRepo) MarkActivated(ctx context.Context, tx repository.Tx, id string, expiry, at time.Time) error {
	const q = `UPDATE payment_ledger SET expiry_date=$2, activated_at=COALESCE(activated_at, $3) WHERE id=$1;`
	_, err := execSQL(ctx, r.pool, tx, q, id, expiry, at)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *ledgerRepo) MarkRefundPending(ctx context.Context, tx repository.Tx, id string, pending bool) error {
	const q = `UPDATE payment_ledger SET refund_pending=$2 WHERE id=$1;`
	_, err := execSQL(ctx, r.pool, tx, q, id, pending)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *ledgerRepo) ListApprovedInactive(ctx context.Context, tx repository.Tx, cutoff time.Time, limit int) ([]*model.PaymentLedgerRecord, error) {
	const q = `SELECT ` + ledgerColumns + ` FROM payment_ledger
WHERE status='approved' AND activated_at IS NULL AND reviewed_at < $1
ORDER BY reviewed_at ASC LIMIT $2;`
	rows, err := pickRows(ctx, r.pool, tx, q, cutoff, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectLedger(rows)
}

func collectLedger(rows pgx.Rows) ([]*model.PaymentLedgerRecord, error) {
	var out []*model.PaymentLedgerRecord
	for rows.Next() {
		rec, err := scanLedger(rows)
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
