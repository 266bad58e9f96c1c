// File: internal/usecase/refund_uc.go
package usecase

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"promotion-platform/internal/domain"
	"promotion-platform/internal/domain/ports/adapter"
	"promotion-platform/internal/infra/metrics"
)

// Compile-time check
var _ RefundUseCase = (*refundUC)(nil)

// RefundUseCase issues refunds against the gateway when paid content is
// rejected. Exactly one call per reject: without a gateway idempotency key a
// retry could refund twice, so any failure is classified uniformly as
// ErrRefundFailed and left to manual finance reconciliation.
type RefundUseCase interface {
	Refund(ctx context.Context, transactionID string, amount int64, reason string) error
}

type refundUC struct {
	gateway adapter.PaymentGateway
	log     *zerolog.Logger
}

func NewRefundUseCase(gateway adapter.PaymentGateway, logger *zerolog.Logger) *refundUC {
	compLog := logger.With().Str("component", "RefundUC").Logger()
	return &refundUC{gateway: gateway, log: &compLog}
}

func (u *refundUC) Refund(ctx context.Context, transactionID string, amount int64, reason string) error {
	if err := u.gateway.Refund(ctx, transactionID, amount, reason); err != nil {
		metrics.IncRefund("failed")
		u.log.Error().Err(err).
			Str("tx_id", transactionID).
			Int64("amount", amount).
			Msg("refund failed, flagged for manual reconciliation")
		return fmt.Errorf("%w: tx %s: %v", domain.ErrRefundFailed, transactionID, err)
	}
	metrics.IncRefund("ok")
	return nil
}
