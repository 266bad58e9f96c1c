package domain

import (
	"errors"
	"fmt"
)

var (
	// Common domain errors
	ErrNotFound           = errors.New("entity not found")
	ErrAlreadyExists      = errors.New("entity already exists")
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrOperationFailed    = errors.New("operation failed")
	ErrReadDatabaseRow    = errors.New("failed to read database row")
	ErrInvalidExecContext = errors.New("invalid database execution context")

	// Paid-content lifecycle errors
	ErrOwnershipViolation = errors.New("delegated accounts may not own payments")
	ErrInvalidTransition  = errors.New("payment is not pending")
	ErrRefundFailed       = errors.New("refund failed")
	ErrNotAuthorized      = errors.New("actor is not authorized")
	ErrContentActive      = errors.New("content is active and cannot be deleted")
	ErrNoActivator        = errors.New("no activator registered for service type")
	ErrRecordLocked       = errors.New("record is locked by another reviewer")
)

// GatewayError carries the provider's error code and message back to the
// caller as a value. Nothing is persisted when a charge fails, so there is
// nothing to roll back.
type GatewayError struct {
	Code    string
	Message string
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("payment gateway error %s: %s", e.Code, e.Message)
}

// IsGatewayError reports whether err wraps a GatewayError.
func IsGatewayError(err error) bool {
	var ge *GatewayError
	return errors.As(err, &ge)
}
