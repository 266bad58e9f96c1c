package repository

import (
	"context"

	"promotion-platform/internal/domain/model"
)

type AccountRepository interface {
	Save(ctx context.Context, tx Tx, a *model.Account) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.Account, error)
	// ListAdmins returns every admin account, for status broadcasts.
	ListAdmins(ctx context.Context, tx Tx) ([]*model.Account, error)
}
