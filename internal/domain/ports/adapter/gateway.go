package adapter

import "context"

// ChargeRequest is the provider-agnostic checkout request.
type ChargeRequest struct {
	MerchantOrderID string
	Amount          int64 // minor currency unit
	Currency        string
	BuyerName       string
	BuyerEmail      string
	BuyerPhone      string
	Metadata        map[string]interface{}
}

// Receipt is the structured success outcome of a checkout.
type Receipt struct {
	TransactionID string
	OrderNumber   string
	PaidAmount    int64
}

// PaymentGateway is the hex port for card-payment providers.
//
// Charge performs a synchronous checkout and resolves with a Receipt or a
// *domain.GatewayError. The adapter persists nothing: an abandoned checkout
// simply never returns a receipt.
//
// Refund is called exactly once per reject; implementations must not retry
// money movement on their own.
type PaymentGateway interface {
	Name() string
	Charge(ctx context.Context, req ChargeRequest) (Receipt, error)
	Refund(ctx context.Context, transactionID string, amount int64, reason string) error
}
