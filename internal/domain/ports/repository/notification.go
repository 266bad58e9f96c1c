package repository

import (
	"context"
	"time"

	"promotion-platform/internal/domain/model"
)

// NotificationRepository is the fire-and-forget sink. Writes are best-effort
// at the call site; the repository itself is an ordinary store.
type NotificationRepository interface {
	Save(ctx context.Context, tx Tx, n *model.NotificationMessage) error
	ListByRecipient(ctx context.Context, tx Tx, recipientID string, limit int) ([]*model.NotificationMessage, error)
	// Exists dedupes repeat sends, e.g. one expiring-soon notice per content id per day.
	Exists(ctx context.Context, tx Tx, recipientID string, kind model.NotificationKind, relatedID string, since time.Time) (bool, error)
}
