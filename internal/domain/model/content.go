package model

import "time"

type ContentStatus string

const (
	ContentStatusPending  ContentStatus = "pending"
	ContentStatusActive   ContentStatus = "active"
	ContentStatusRejected ContentStatus = "rejected"
)

// ContentRecord is the lifecycle view of one staged promotional item. The
// editorial payload is type-specific and opaque to the lifecycle; only the
// four lifecycle fields are read or written here.
type ContentRecord struct {
	ID         string
	OwnerID    string
	ServiceType ServiceType
	Status     ContentStatus
	IsPaid     bool
	ExpiryDate *time.Time
	Payload    map[string]interface{} // editorial fields, stored as JSONB
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// IsActive reports whether the record is publicly visible at now.
// "Expired" is derived, never stored: an active record past its expiry is
// simply no longer active.
func (c *ContentRecord) IsActive(now time.Time) bool {
	if c.Status != ContentStatusActive || c.ExpiryDate == nil {
		return false
	}
	return now.Before(*c.ExpiryDate)
}
