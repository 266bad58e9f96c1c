package model

import "time"

type LedgerStatus string

const (
	LedgerStatusPending  LedgerStatus = "pending"  // paid, awaiting admin review
	LedgerStatusApproved LedgerStatus = "approved" // reviewed and granted
	LedgerStatusRejected LedgerStatus = "rejected" // reviewed and refunded (or refund pending)
)

// PaymentLedgerRecord is the authoritative record of one payment attempt and
// its review outcome. Status moves pending->approved or pending->rejected,
// never reversed.
type PaymentLedgerRecord struct {
	ID          string // UUID
	UserID      string // UUID of the paying root business account
	ServiceType ServiceType
	Tier        Tier
	OrderNumber string // globally unique, human-sortable
	TxID        string // gateway transaction id, needed for refunds
	AmountPaid  int64  // minor currency unit, as settled by the gateway
	DurationDays int
	ExpiryDate  time.Time // provisional at creation; re-anchored at approval
	ContentID   string    // FK into the service type's content store
	Snapshot    map[string]interface{} // denormalized content copy for audit/search (JSONB)
	Status      LedgerStatus
	CreatedAt   time.Time
	ReviewedBy      *string
	ReviewedAt      *time.Time
	RejectionReason *string
	RefundPending   bool       // set when a reject's refund call failed; manual reconciliation
	ActivatedAt     *time.Time // set once the content actually went active
}

// Reviewed reports whether the record has reached a terminal state.
func (r *PaymentLedgerRecord) Reviewed() bool {
	return r.Status != LedgerStatusPending
}

// LedgerFilter narrows admin listings. Zero values mean "all".
type LedgerFilter struct {
	ServiceType ServiceType
	Status      LedgerStatus
	Search      string // free text over the denormalized snapshot
}
