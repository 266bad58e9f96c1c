package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"

	"promotion-platform/internal/domain"
	"promotion-platform/internal/domain/model"
	"promotion-platform/internal/domain/ports/repository"
)

var _ repository.NotificationRepository = (*notificationRepo)(nil)

type notificationRepo struct{ pool *pgxpool.Pool }

func NewNotificationRepo(pool *pgxpool.Pool) *notificationRepo {
	return &notificationRepo{pool: pool}
}

func (r *notificationRepo) Save(ctx context.Context, tx repository.Tx, n *model.NotificationMessage) error {
	const q = `
INSERT INTO notifications (id, recipient_id, kind, title, body, related_id, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7);`
	_, err := execSQL(ctx, r.pool, tx, q, n.ID, n.RecipientID, n.Kind, n.Title, n.Body, n.RelatedID, n.CreatedAt)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *notificationRepo) ListByRecipient(ctx context.Context, tx repository.Tx, recipientID string, limit int) ([]*model.NotificationMessage, error) {
	const q = `SELECT id, recipient_id, kind, title, body, related_id, created_at FROM notifications WHERE recipient_id=$1 ORDER BY id DESC LIMIT $2;`
	rows, err := pickRows(ctx, r.pool, tx, q, recipientID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.NotificationMessage
	for rows.Next() {
		n := &model.NotificationMessage{}
		if err := rows.Scan(&n.ID, &n.RecipientID, &n.Kind, &n.Title, &n.Body, &n.RelatedID, &n.CreatedAt); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, n)
	}
	if rows.Err() != nil {
		return nil, domain.ErrReadDatabaseRow
	}
	return out, nil
}

func (r *notificationRepo) Exists(ctx context.Context, tx repository.Tx, recipientID string, kind model.NotificationKind, relatedID string, since time.Time) (bool, error) {
	const q = `SELECT EXISTS(SELECT 1 FROM notifications WHERE recipient_id=$1 AND kind=$2 AND related_id=$3 AND created_at >= $4);`
	row, err := pickRow(ctx, r.pool, tx, q, recipientID, kind, relatedID, since)
	if err != nil {
		return false, err
	}
	var exists bool
	if err := row.Scan(&exists); err != nil {
		return false, domain.ErrReadDatabaseRow
	}
	return exists, nil
}
