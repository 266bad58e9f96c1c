// File: internal/usecase/approval_uc.go
package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"promotion-platform/internal/domain"
	"promotion-platform/internal/domain/model"
	"promotion-platform/internal/domain/ports/repository"
	"promotion-platform/internal/infra/metrics"
)

// Compile-time check
var _ ApprovalUseCase = (*approvalUC)(nil)

// ApprovalUseCase is the admin review surface.
//
// Approve: (a) ledger approve, (b) activate, (c) notify. Step (a) is the
// durability boundary: once it lands, the payment is approved even if (b) or
// (c) fail. A failed activation is retried out-of-band by the reconciler and
// never reported to the reviewer as an approval failure.
//
// Reject: (a) ledger reject, (b) refund, (c) notify the refund outcome. A
// failed refund flags the record for manual reconciliation; it does not
// revert (a).
type ApprovalUseCase interface {
	ListPayments(ctx context.Context, filter model.LedgerFilter) ([]*model.PaymentLedgerRecord, error)
	Approve(ctx context.Context, paymentID, adminID string) (*model.PaymentLedgerRecord, error)
	Reject(ctx context.Context, paymentID, adminID, reason string) (*model.PaymentLedgerRecord, error)
}

// Locker keeps concurrent reviewers off the same record. The pending-only
// guard in the ledger remains the correctness backstop; the lock only spares
// two admins from racing to the same decision.
type Locker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (token string, err error)
	Unlock(ctx context.Context, key, token string) error
}

type approvalUC struct {
	ledger     repository.LedgerRepository
	tm         repository.TransactionManager // optional; nil runs on the pool
	dispatcher *ActivationDispatcher
	refunds    RefundUseCase
	notify     NotificationUseCase
	locker     Locker // optional
	now        func() time.Time
	log        *zerolog.Logger
}

func NewApprovalUseCase(
	ledger repository.LedgerRepository,
	tm repository.TransactionManager,
	dispatcher *ActivationDispatcher,
	refunds RefundUseCase,
	notify NotificationUseCase,
	locker Locker,
	now func() time.Time,
	logger *zerolog.Logger,
) *approvalUC {
	if now == nil {
		now = time.Now
	}
	compLog := logger.With().Str("component", "ApprovalUC").Logger()
	return &approvalUC{
		ledger:     ledger,
		tm:         tm,
		dispatcher: dispatcher,
		refunds:    refunds,
		notify:     notify,
		locker:     locker,
		now:        now,
		log:        &compLog,
	}
}

// inTx runs fn inside a DB transaction when a TransactionManager is wired,
// so the row is read FOR UPDATE before the conditional flip. Without one, fn
// runs on the pool and the pending-only guard alone decides the race.
func (u *approvalUC) inTx(ctx context.Context, fn func(ctx context.Context, tx repository.Tx) error) error {
	if u.tm == nil {
		return fn(ctx, repository.NoTX)
	}
	return u.tm.WithTx(ctx, pgx.TxOptions{}, fn)
}

func (u *approvalUC) ListPayments(ctx context.Context, filter model.LedgerFilter) ([]*model.PaymentLedgerRecord, error) {
	return u.ledger.List(ctx, repository.NoTX, filter)
}

func (u *approvalUC) Approve(ctx context.Context, paymentID, adminID string) (*model.PaymentLedgerRecord, error) {
	unlock, err := u.lock(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	var rec *model.PaymentLedgerRecord
	reviewedAt := u.now()
	err = u.inTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		var err error
		rec, err = u.ledger.FindByID(ctx, tx, paymentID)
		if err != nil {
			return err
		}
		ok, err := u.ledger.ApproveIfPending(ctx, tx, paymentID, adminID, reviewedAt)
		if err != nil {
			return err
		}
		if !ok {
			return domain.ErrInvalidTransition
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	metrics.IncReview("approved")
	rec.Status = model.LedgerStatusApproved
	rec.ReviewedBy = &adminID
	rec.ReviewedAt = &reviewedAt

	if err := u.dispatcher.Activate(ctx, rec); err != nil {
		// At-least-once: observable, retried out-of-band, not an approval failure.
		u.log.Error().Err(err).Str("payment_id", paymentID).Msg("activation failed, reconciler will retry")
	}

	BestEffort(ctx, u.log, "notify-approved", func(ctx context.Context) error {
		u.notify.Notify(ctx, rec.UserID, model.NotificationApproved,
			"Your content has been approved",
			fmt.Sprintf("Order %s is now live until %s.", rec.OrderNumber, rec.ExpiryDate.Format("2006-01-02")),
			rec.ID)
		return nil
	})

	return rec, nil
}

func (u *approvalUC) Reject(ctx context.Context, paymentID, adminID, reason string) (*model.PaymentLedgerRecord, error) {
	unlock, err := u.lock(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	var rec *model.PaymentLedgerRecord
	reviewedAt := u.now()
	err = u.inTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		var err error
		rec, err = u.ledger.FindByID(ctx, tx, paymentID)
		if err != nil {
			return err
		}
		ok, err := u.ledger.RejectIfPending(ctx, tx, paymentID, adminID, reason, reviewedAt)
		if err != nil {
			return err
		}
		if !ok {
			return domain.ErrInvalidTransition
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	metrics.IncReview("rejected")
	rec.Status = model.LedgerStatusRejected
	rec.ReviewedBy = &adminID
	rec.ReviewedAt = &reviewedAt
	rec.RejectionReason = &reason

	// Push the content record out of the review queue too.
	if store := u.dispatcher.ContentStoreFor(rec.ServiceType); store != nil {
		if err := store.SetStatus(ctx, repository.NoTX, rec.ContentID, model.ContentStatusRejected); err != nil {
			u.log.Warn().Err(err).Str("content_id", rec.ContentID).Msg("content reject status not applied")
		}
	}

	refundErr := u.refunds.Refund(ctx, rec.TxID, rec.AmountPaid, reason)
	kind, title, body := model.NotificationRejected,
		"Your content was rejected",
		fmt.Sprintf("Order %s was rejected (%s); the payment has been refunded.", rec.OrderNumber, reason)
	if refundErr != nil {
		rec.RefundPending = true
		if err := u.ledger.MarkRefundPending(ctx, repository.NoTX, rec.ID, true); err != nil {
			u.log.Error().Err(err).Str("payment_id", rec.ID).Msg("refund-pending flag not persisted")
		}
		kind = model.NotificationRefundPending
		body = fmt.Sprintf("Order %s was rejected (%s); the refund is being processed.", rec.OrderNumber, reason)
	}

	BestEffort(ctx, u.log, "notify-rejected", func(ctx context.Context) error {
		u.notify.Notify(ctx, rec.UserID, kind, title, body, rec.ID)
		return nil
	})

	return rec, nil
}

// lock serializes review of one record. Without a locker this is a no-op.
func (u *approvalUC) lock(ctx context.Context, paymentID string) (func(), error) {
	if u.locker == nil {
		return func() {}, nil
	}
	key := "review:" + paymentID
	token, err := u.locker.TryLock(ctx, key, 30*time.Second)
	if err != nil {
		return nil, domain.ErrRecordLocked
	}
	return func() {
		if err := u.locker.Unlock(context.Background(), key, token); err != nil {
			u.log.Warn().Err(err).Str("key", key).Msg("review unlock failed")
		}
	}, nil
}
