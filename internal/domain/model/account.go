package model

import "time"

type AccountRole string

const (
	AccountRoleBusiness AccountRole = "business"
	AccountRoleAdmin    AccountRole = "admin"
)

// Account is a platform account. A delegated/staff account carries a
// reference to its parent company and may never own a payment.
type Account struct {
	ID        string // UUID
	CompanyID *string // parent company for delegated/staff accounts
	Role      AccountRole
	Name      string
	Email     string
	Phone     string
	CreatedAt time.Time
}

// CanOwnPayment reports whether this account may initiate payments.
// Only root business accounts qualify; delegated accounts are rejected
// before any gateway call or ledger write.
func (a *Account) CanOwnPayment() bool {
	return a.CompanyID == nil
}
