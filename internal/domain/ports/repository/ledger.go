package repository

import (
	"context"
	"time"

	"promotion-platform/internal/domain/model"
)

// LedgerRepository persists payment ledger records.
//
// The two conditional updates implement the transition guard at write time:
// they only touch rows whose status is still 'pending' and report whether a
// row changed, so a record can reach at most one terminal state no matter how
// many reviewers race.
type LedgerRepository interface {
	Save(ctx context.Context, tx Tx, rec *model.PaymentLedgerRecord) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.PaymentLedgerRecord, error)
	FindByOrderNumber(ctx context.Context, tx Tx, orderNumber string) (*model.PaymentLedgerRecord, error)
	List(ctx context.Context, tx Tx, filter model.LedgerFilter) ([]*model.PaymentLedgerRecord, error)
	ListByUser(ctx context.Context, tx Tx, userID string) ([]*model.PaymentLedgerRecord, error)

	// ApproveIfPending flips pending->approved. Returns false without error
	// when the record was not pending.
	ApproveIfPending(ctx context.Context, tx Tx, id, adminID string, reviewedAt time.Time) (bool, error)
	// RejectIfPending flips pending->rejected and stores the reason.
	RejectIfPending(ctx context.Context, tx Tx, id, adminID, reason string, reviewedAt time.Time) (bool, error)

	// MarkActivated records that the content went active and re-anchors the
	// paid window. Safe to call again on retries; the later expiry wins.
	MarkActivated(ctx context.Context, tx Tx, id string, expiry, at time.Time) error
	// MarkRefundPending flags a rejected record for manual finance reconciliation.
	MarkRefundPending(ctx context.Context, tx Tx, id string, pending bool) error

	// ListApprovedInactive returns approved records whose content never went
	// active, reviewed before cutoff. Feed for the activation reconciler.
	ListApprovedInactive(ctx context.Context, tx Tx, cutoff time.Time, limit int) ([]*model.PaymentLedgerRecord, error)
}
