// File: internal/usecase/payment_uc.go
package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"promotion-platform/internal/domain"
	"promotion-platform/internal/domain/model"
	"promotion-platform/internal/domain/ports/adapter"
	"promotion-platform/internal/domain/ports/repository"
	"promotion-platform/internal/infra/metrics"
)

// Compile-time check
var _ PaymentUseCase = (*paymentUC)(nil)

// PaymentUseCase runs the checkout leg of the lifecycle: ownership guard,
// quote, gateway charge, ledger create, admin broadcast. The gateway charge
// happens before any ledger write, so a failed or abandoned checkout leaves
// nothing behind except the pre-existing pending/unpaid content record.
type PaymentUseCase interface {
	CreateServicePayment(ctx context.Context, userID string, st model.ServiceType, tier model.Tier, contentID string) (*model.PaymentLedgerRecord, error)
	ListOwnPayments(ctx context.Context, userID string) ([]*model.PaymentLedgerRecord, error)
}

type paymentUC struct {
	ledger   repository.LedgerRepository
	accounts repository.AccountRepository
	contents map[model.ServiceType]repository.ContentStore
	pricing  PricingUseCase
	gateway  adapter.PaymentGateway
	notify   NotificationUseCase
	currency string
	now      func() time.Time
	log      *zerolog.Logger
}

func NewPaymentUseCase(
	ledger repository.LedgerRepository,
	accounts repository.AccountRepository,
	contents map[model.ServiceType]repository.ContentStore,
	pricing PricingUseCase,
	gateway adapter.PaymentGateway,
	notify NotificationUseCase,
	currency string,
	now func() time.Time,
	logger *zerolog.Logger,
) *paymentUC {
	if now == nil {
		now = time.Now
	}
	compLog := logger.With().Str("component", "PaymentUC").Logger()
	return &paymentUC{
		ledger:   ledger,
		accounts: accounts,
		contents: contents,
		pricing:  pricing,
		gateway:  gateway,
		notify:   notify,
		currency: currency,
		now:      now,
		log:      &compLog,
	}
}

func (u *paymentUC) CreateServicePayment(ctx context.Context, userID string, st model.ServiceType, tier model.Tier, contentID string) (*model.PaymentLedgerRecord, error) {
	if !st.Valid() || contentID == "" {
		return nil, domain.ErrInvalidArgument
	}

	account, err := u.accounts.FindByID(ctx, repository.NoTX, userID)
	if err != nil {
		return nil, err
	}
	// Ownership invariant: delegated/staff accounts are rejected before any
	// gateway call or write.
	if !account.CanOwnPayment() {
		return nil, domain.ErrOwnershipViolation
	}

	store, ok := u.contents[st]
	if !ok {
		return nil, fmt.Errorf("%w: no content store for %s", domain.ErrInvalidArgument, st)
	}
	content, err := store.FindByID(ctx, repository.NoTX, contentID)
	if err != nil {
		return nil, err
	}
	if content.OwnerID != userID {
		return nil, domain.ErrNotAuthorized
	}

	entry := u.pricing.Quote(ctx, st, tier, false)
	now := u.now()
	orderNumber := NewOrderNumber(st, now)

	receipt, err := u.gateway.Charge(ctx, adapter.ChargeRequest{
		MerchantOrderID: orderNumber,
		Amount:          entry.Price,
		Currency:        u.currency,
		BuyerName:       account.Name,
		BuyerEmail:      account.Email,
		BuyerPhone:      account.Phone,
		Metadata: map[string]interface{}{
			"service_type": string(st),
			"tier":         string(tier),
			"content_id":   contentID,
		},
	})
	if err != nil {
		metrics.IncPayment("charge_failed")
		return nil, err
	}

	rec := &model.PaymentLedgerRecord{
		ID:           uuid.NewString(),
		UserID:       userID,
		ServiceType:  st,
		Tier:         tier,
		OrderNumber:  orderNumber,
		TxID:         receipt.TransactionID,
		AmountPaid:   receipt.PaidAmount,
		DurationDays: entry.DurationDays,
		ExpiryDate:   now.Add(time.Duration(entry.DurationDays) * 24 * time.Hour),
		ContentID:    contentID,
		Snapshot:     content.Payload,
		Status:       model.LedgerStatusPending,
		CreatedAt:    now,
	}
	if err := u.ledger.Save(ctx, repository.NoTX, rec); err != nil {
		// Money taken, ledger write failed: this must be loudly observable,
		// the receipt is the only pointer finance has.
		u.log.Error().Err(err).
			Str("order_number", orderNumber).
			Str("tx_id", receipt.TransactionID).
			Msg("charge settled but ledger write failed")
		metrics.IncPayment("ledger_write_failed")
		return nil, err
	}
	if err := store.MarkPaid(ctx, repository.NoTX, contentID); err != nil {
		// The ledger row exists; the reconciler path works off the ledger, so
		// log and continue.
		u.log.Warn().Err(err).Str("content_id", contentID).Msg("mark paid failed")
	}
	metrics.IncPayment("created")

	u.notify.BroadcastToAdmins(ctx, model.NotificationPaymentSubmitted,
		"New paid content awaiting review",
		fmt.Sprintf("%s (%s) order %s", entry.DisplayName, account.Name, orderNumber),
		rec.ID)

	return rec, nil
}

func (u *paymentUC) ListOwnPayments(ctx context.Context, userID string) ([]*model.PaymentLedgerRecord, error) {
	return u.ledger.ListByUser(ctx, repository.NoTX, userID)
}
