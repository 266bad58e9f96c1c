package repository

import (
	"context"
	"time"

	"promotion-platform/internal/domain/model"
)

// ContentStore is the staging contract every content type implements. The
// lifecycle only touches the four lifecycle fields (status, isPaid, expiry,
// owner); the editorial payload stays opaque.
type ContentStore interface {
	// Create stages a pending, unpaid record so the draft survives checkout
	// abandonment.
	Create(ctx context.Context, tx Tx, rec *model.ContentRecord) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.ContentRecord, error)
	MarkPaid(ctx context.Context, tx Tx, id string) error
	// SetActive grants the paid window. Overwrites any earlier expiry.
	SetActive(ctx context.Context, tx Tx, id string, expiry time.Time) error
	SetStatus(ctx context.Context, tx Tx, id string, status model.ContentStatus) error
	ListOwn(ctx context.Context, tx Tx, ownerID string) ([]*model.ContentRecord, error)
	ListOwnPendingOrRejected(ctx context.Context, tx Tx, ownerID string) ([]*model.ContentRecord, error)
	// ListActiveExpiringBefore supports the expiry notifier.
	ListActiveExpiringBefore(ctx context.Context, tx Tx, cutoff time.Time, limit int) ([]*model.ContentRecord, error)
	// Delete is owner-only and refused while the record is active.
	Delete(ctx context.Context, tx Tx, id, actorID string) error
}
