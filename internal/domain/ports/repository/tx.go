package repository

import (
	"context"

	"github.com/jackc/pgx/v4"
)

// Tx is an opaque execution context handed to repositories. Concrete values
// are pgx.Tx (inside a transaction) or nil (run on the pool).
type Tx = any

// NoTX runs the statement directly on the pool.
var NoTX Tx = nil

// TransactionManager opens a transaction, runs fn, and commits or rolls back.
type TransactionManager interface {
	WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx Tx) error) error
}
