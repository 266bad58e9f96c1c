package model

import "time"

type NotificationKind string

const (
	NotificationPaymentSubmitted NotificationKind = "payment_submitted"
	NotificationApproved         NotificationKind = "payment_approved"
	NotificationRejected         NotificationKind = "payment_rejected"
	NotificationRefundPending    NotificationKind = "refund_pending"
	NotificationExpiringSoon     NotificationKind = "content_expiring"
)

// NotificationMessage is fire-and-forget: no delivery guarantee, never part
// of the transactional invariants.
type NotificationMessage struct {
	ID          string // ULID, sortable by creation time
	RecipientID string
	Kind        NotificationKind
	Title       string
	Body        string
	RelatedID   string // ledger or content id the message refers to
	CreatedAt   time.Time
}
