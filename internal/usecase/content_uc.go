// File: internal/usecase/content_uc.go
package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"promotion-platform/internal/domain"
	"promotion-platform/internal/domain/model"
	"promotion-platform/internal/domain/ports/repository"
)

// Compile-time check
var _ ContentUseCase = (*contentUC)(nil)

// ContentUseCase is the merchant-facing staging surface. Drafts are created
// pending/unpaid before any payment attempt so they survive checkout
// abandonment.
type ContentUseCase interface {
	CreateDraft(ctx context.Context, ownerID string, st model.ServiceType, payload map[string]interface{}) (*model.ContentRecord, error)
	ListOwn(ctx context.Context, ownerID string, st model.ServiceType) ([]*model.ContentRecord, error)
	ListOwnPendingOrRejected(ctx context.Context, ownerID string, st model.ServiceType) ([]*model.ContentRecord, error)
	Delete(ctx context.Context, actorID string, st model.ServiceType, contentID string) error
}

type contentUC struct {
	stores map[model.ServiceType]repository.ContentStore
	now    func() time.Time
}

func NewContentUseCase(stores map[model.ServiceType]repository.ContentStore, now func() time.Time) *contentUC {
	if now == nil {
		now = time.Now
	}
	return &contentUC{stores: stores, now: now}
}

func (u *contentUC) store(st model.ServiceType) (repository.ContentStore, error) {
	s, ok := u.stores[st]
	if !ok {
		return nil, domain.ErrInvalidArgument
	}
	return s, nil
}

func (u *contentUC) CreateDraft(ctx context.Context, ownerID string, st model.ServiceType, payload map[string]interface{}) (*model.ContentRecord, error) {
	if ownerID == "" || len(payload) == 0 {
		return nil, domain.ErrInvalidArgument
	}
	s, err := u.store(st)
	if err != nil {
		return nil, err
	}
	now := u.now()
	rec := &model.ContentRecord{
		ID:          uuid.NewString(),
		OwnerID:     ownerID,
		ServiceType: st,
		Status:      model.ContentStatusPending,
		IsPaid:      false,
		Payload:     payload,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.Create(ctx, repository.NoTX, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

func (u *contentUC) ListOwn(ctx context.Context, ownerID string, st model.ServiceType) ([]*model.ContentRecord, error) {
	s, err := u.store(st)
	if err != nil {
		return nil, err
	}
	return s.ListOwn(ctx, repository.NoTX, ownerID)
}

func (u *contentUC) ListOwnPendingOrRejected(ctx context.Context, ownerID string, st model.ServiceType) ([]*model.ContentRecord, error) {
	s, err := u.store(st)
	if err != nil {
		return nil, err
	}
	return s.ListOwnPendingOrRejected(ctx, repository.NoTX, ownerID)
}

func (u *contentUC) Delete(ctx context.Context, actorID string, st model.ServiceType, contentID string) error {
	s, err := u.store(st)
	if err != nil {
		return err
	}
	return s.Delete(ctx, repository.NoTX, contentID, actorID)
}
