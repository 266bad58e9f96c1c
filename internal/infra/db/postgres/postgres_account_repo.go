package postgres

import (
	"context"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"promotion-platform/internal/domain"
	"promotion-platform/internal/domain/model"
	"promotion-platform/internal/domain/ports/repository"
)

var _ repository.AccountRepository = (*accountRepo)(nil)

type accountRepo struct{ pool *pgxpool.Pool }

func NewAccountRepo(pool *pgxpool.Pool) *accountRepo {
	return &accountRepo{pool: pool}
}

func (r *accountRepo) Save(ctx context.Context, tx repository.Tx, a *model.Account) error {
	const q = `
INSERT INTO accounts (id, company_id, role, name, email, phone, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7)
ON CONFLICT (id) DO UPDATE SET company_id=$2, role=$3, name=$4, email=$5, phone=$6;`
	_, err := execSQL(ctx, r.pool, tx, q, a.ID, a.CompanyID, a.Role, a.Name, a.Email, a.Phone, a.CreatedAt)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *accountRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Account, error) {
	const q = `SELECT id, company_id, role, name, email, phone, created_at FROM accounts WHERE id=$1;`
	row, err := pickRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return nil, err
	}
	a := &model.Account{}
	if err := row.Scan(&a.ID, &a.CompanyID, &a.Role, &a.Name, &a.Email, &a.Phone, &a.CreatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return a, nil
}

func (r *accountRepo) ListAdmins(ctx context.Context, tx repository.Tx) ([]*model.Account, error) {
	const q = `SELECT id, company_id, role, name, email, phone, created_at FROM accounts WHERE role='admin';`
	rows, err := pickRows(ctx, r.pool, tx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Account
	for rows.Next() {
		a := &model.Account{}
		if err := rows.Scan(&a.ID, &a.CompanyID, &a.Role, &a.Name, &a.Email, &a.Phone, &a.CreatedAt); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, a)
	}
	if rows.Err() != nil {
		return nil, domain.ErrReadDatabaseRow
	}
	return out, nil
}
