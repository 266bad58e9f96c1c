//go:build !integration

package usecase_test

import (
	"context"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"promotion-platform/internal/domain"
	"promotion-platform/internal/domain/model"
	"promotion-platform/internal/domain/ports/adapter"
	"promotion-platform/internal/domain/ports/repository"
)

// newTestLogger creates a silent zerolog.Logger for use in tests.
func newTestLogger() *zerolog.Logger {
	l := zerolog.New(io.Discard)
	return &l
}

// =============================
// Repositories
// =============================

// ---- Mock LedgerRepository ----

type MockLedgerRepo struct {
	mu      sync.RWMutex
	records map[string]*model.PaymentLedgerRecord

	SaveFunc             func(ctx context.Context, tx repository.Tx, rec *model.PaymentLedgerRecord) error
	FindByIDFunc         func(ctx context.Context, tx repository.Tx, id string) (*model.PaymentLedgerRecord, error)
	ApproveIfPendingFunc func(ctx context.Context, tx repository.Tx, id, adminID string, reviewedAt time.Time) (bool, error)
	RejectIfPendingFunc  func(ctx context.Context, tx repository.Tx, id, adminID, reason string, reviewedAt time.Time) (bool, error)
	MarkActivatedFunc    func(ctx context.Context, tx repository.Tx, id string, expiry, at time.Time) error
}

var _ repository.LedgerRepository = (*MockLedgerRepo)(nil)

func NewMockLedgerRepo() *MockLedgerRepo {
	return &MockLedgerRepo{records: make(map[string]*model.PaymentLedgerRecord)}
}

func (r *MockLedgerRepo) Save(ctx context.Context, tx repository.Tx, rec *model.PaymentLedgerRecord) error {
	if r.SaveFunc != nil {
		return r.SaveFunc(ctx, tx, rec)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *rec
	r.records[rec.ID] = &cp
	return nil
}

func (r *MockLedgerRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.PaymentLedgerRecord, error) {
	if r.FindByIDFunc != nil {
		return r.FindByIDFunc(ctx, tx, id)
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.records[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *rec
	return &cp, nil
}

func (r *MockLedgerRepo) FindByOrderNumber(ctx context.Context, tx repository.Tx, orderNumber string) (*model.PaymentLedgerRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, rec := range r.records {
		if rec.OrderNumber == orderNumber {
			cp := *rec
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *MockLedgerRepo) List(ctx context.Context, tx repository.Tx, filter model.LedgerFilter) ([]*model.PaymentLedgerRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*model.PaymentLedgerRecord
	for _, rec := range r.records {
		if filter.ServiceType != "" && rec.ServiceType != filter.ServiceType {
			continue
		}
		if filter.Status != "" && rec.Status != filter.Status {
			continue
		}
		cp := *rec
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OrderNumber > out[j].OrderNumber })
	return out, nil
}

func (r *MockLedgerRepo) ListByUser(ctx context.Context, tx repository.Tx, userID string) ([]*model.PaymentLedgerRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*model.PaymentLedgerRecord
	for _, rec := range r.records {
		if rec.UserID == userID {
			cp := *rec
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OrderNumber > out[j].OrderNumber })
	return out, nil
}

func (r *MockLedgerRepo) ApproveIfPending(ctx context.Context, tx repository.Tx, id, adminID string, reviewedAt time.Time) (bool, error) {
	if r.ApproveIfPendingFunc != nil {
		return r.ApproveIfPendingFunc(ctx, tx, id, adminID, reviewedAt)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[id]
	if !ok || rec.Status != model.LedgerStatusPending {
		return false, nil
	}
	rec.Status = model.LedgerStatusApproved
	rec.ReviewedBy = &adminID
	rec.ReviewedAt = &reviewedAt
	return true, nil
}

func (r *MockLedgerRepo) RejectIfPending(ctx context.Context, tx repository.Tx, id, adminID, reason string, reviewedAt time.Time) (bool, error) {
	if r.RejectIfPendingFunc != nil {
		return r.RejectIfPendingFunc(ctx, tx, id, adminID, reason, reviewedAt)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[id]
	if !ok || rec.Status != model.LedgerStatusPending {
		return false, nil
	}
	rec.Status = model.LedgerStatusRejected
	rec.ReviewedBy = &adminID
	rec.ReviewedAt = &reviewedAt
	rec.RejectionReason = &reason
	return true, nil
}

func (r *MockLedgerRepo) MarkActivated(ctx context.Context, tx repository.Tx, id string, expiry, at time.Time) error {
	if r.MarkActivatedFunc != nil {
		return r.MarkActivatedFunc(ctx, tx, id, expiry, at)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[id]
	if !ok {
		return domain.ErrNotFound
	}
	rec.ExpiryDate = expiry
	if rec.ActivatedAt == nil {
		cp := at
		rec.ActivatedAt = &cp
	}
	return nil
}

func (r *MockLedgerRepo) MarkRefundPending(ctx context.Context, tx repository.Tx, id string, pending bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[id]
	if !ok {
		return domain.ErrNotFound
	}
	rec.RefundPending = pending
	return nil
}

func (r *MockLedgerRepo) ListApprovedInactive(ctx context.Context, tx repository.Tx, cutoff time.Time, limit int) ([]*model.PaymentLedgerRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*model.PaymentLedgerRecord
	for _, rec := range r.records {
		if rec.Status != model.LedgerStatusApproved || rec.ActivatedAt != nil {
			continue
		}
		if rec.ReviewedAt == nil || !rec.ReviewedAt.Before(cutoff) {
			continue
		}
		cp := *rec
		out = append(out, &cp)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

// Get returns the stored record without copying, for test assertions.
func (r *MockLedgerRepo) Get(id string) *model.PaymentLedgerRecord {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.records[id]
}

// ---- Mock AccountRepository ----

type MockAccountRepo struct {
	mu       sync.RWMutex
	accounts map[string]*model.Account

	FindByIDFunc   func(ctx context.Context, tx repository.Tx, id string) (*model.Account, error)
	ListAdminsFunc func(ctx context.Context, tx repository.Tx) ([]*model.Account, error)
}

var _ repository.AccountRepository = (*MockAccountRepo)(nil)

func NewMockAccountRepo() *MockAccountRepo {
	return &MockAccountRepo{accounts: make(map[string]*model.Account)}
}

func (r *MockAccountRepo) Save(ctx context.Context, tx repository.Tx, a *model.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *a
	r.accounts[a.ID] = &cp
	return nil
}

func (r *MockAccountRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Account, error) {
	if r.FindByIDFunc != nil {
		return r.FindByIDFunc(ctx, tx, id)
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.accounts[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (r *MockAccountRepo) ListAdmins(ctx context.Context, tx repository.Tx) ([]*model.Account, error) {
	if r.ListAdminsFunc != nil {
		return r.ListAdminsFunc(ctx, tx)
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*model.Account
	for _, a := range r.accounts {
		if a.Role == model.AccountRoleAdmin {
			cp := *a
			out = append(out, &cp)
		}
	}
	return out, nil
}

// ---- Mock ContentStore ----

type MockContentStore struct {
	mu      sync.RWMutex
	records map[string]*model.ContentRecord

	FindByIDFunc  func(ctx context.Context, tx repository.Tx, id string) (*model.ContentRecord, error)
	MarkPaidFunc  func(ctx context.Context, tx repository.Tx, id string) error
	SetActiveFunc func(ctx context.Context, tx repository.Tx, id string, expiry time.Time) error
	SetStatusFunc func(ctx context.Context, tx repository.Tx, id string, status model.ContentStatus) error
}

var _ repository.ContentStore = (*MockContentStore)(nil)

func NewMockContentStore() *MockContentStore {
	return &MockContentStore{records: make(map[string]*model.ContentRecord)}
}

func (s *MockContentStore) Create(ctx context.Context, tx repository.Tx, rec *model.ContentRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[rec.ID]; ok {
		return domain.ErrAlreadyExists
	}
	cp := *rec
	s.records[rec.ID] = &cp
	return nil
}

func (s *MockContentStore) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.ContentRecord, error) {
	if s.FindByIDFunc != nil {
		return s.FindByIDFunc(ctx, tx, id)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *rec
	return &cp, nil
}

func (s *MockContentStore) MarkPaid(ctx context.Context, tx repository.Tx, id string) error {
	if s.MarkPaidFunc != nil {
		return s.MarkPaidFunc(ctx, tx, id)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[id]
	if !ok {
		return domain.ErrNotFound
	}
	rec.IsPaid = true
	return nil
}

func (s *MockContentStore) SetActive(ctx context.Context, tx repository.Tx, id string, expiry time.Time) error {
	if s.SetActiveFunc != nil {
		return s.SetActiveFunc(ctx, tx, id, expiry)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[id]
	if !ok {
		return domain.ErrNotFound
	}
	rec.Status = model.ContentStatusActive
	cp := expiry
	rec.ExpiryDate = &cp
	return nil
}

func (s *MockContentStore) SetStatus(ctx context.Context, tx repository.Tx, id string, status model.ContentStatus) error {
	if s.SetStatusFunc != nil {
		return s.SetStatusFunc(ctx, tx, id, status)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[id]
	if !ok {
		return domain.ErrNotFound
	}
	rec.Status = status
	return nil
}

func (s *MockContentStore) ListOwn(ctx context.Context, tx repository.Tx, ownerID string) ([]*model.ContentRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*model.ContentRecord
	for _, rec := range s.records {
		if rec.OwnerID == ownerID {
			cp := *rec
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *MockContentStore) ListOwnPendingOrRejected(ctx context.Context, tx repository.Tx, ownerID string) ([]*model.ContentRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*model.ContentRecord
	for _, rec := range s.records {
		if rec.OwnerID != ownerID {
			continue
		}
		if rec.Status == model.ContentStatusPending || rec.Status == model.ContentStatusRejected {
			cp := *rec
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *MockContentStore) ListActiveExpiringBefore(ctx context.Context, tx repository.Tx, cutoff time.Time, limit int) ([]*model.ContentRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*model.ContentRecord
	for _, rec := range s.records {
		if rec.Status != model.ContentStatusActive || rec.ExpiryDate == nil {
			continue
		}
		if rec.ExpiryDate.Before(cutoff) {
			cp := *rec
			out = append(out, &cp)
		}
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (s *MockContentStore) Delete(ctx context.Context, tx repository.Tx, id, actorID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[id]
	if !ok {
		return domain.ErrNotFound
	}
	if rec.OwnerID != actorID {
		return domain.ErrNotAuthorized
	}
	if rec.Status == model.ContentStatusActive {
		return domain.ErrContentActive
	}
	delete(s.records, id)
	return nil
}

func (s *MockContentStore) Get(id string) *model.ContentRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.records[id]
}

// ---- Mock NotificationRepository ----

type MockNotificationRepo struct {
	mu    sync.Mutex
	Saved []*model.NotificationMessage

	SaveFunc   func(ctx context.Context, tx repository.Tx, n *model.NotificationMessage) error
	ExistsFunc func(ctx context.Context, tx repository.Tx, recipientID string, kind model.NotificationKind, relatedID string, since time.Time) (bool, error)
}

var _ repository.NotificationRepository = (*MockNotificationRepo)(nil)

func (r *MockNotificationRepo) Save(ctx context.Context, tx repository.Tx, n *model.NotificationMessage) error {
	if r.SaveFunc != nil {
		return r.SaveFunc(ctx, tx, n)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *n
	r.Saved = append(r.Saved, &cp)
	return nil
}

func (r *MockNotificationRepo) ListByRecipient(ctx context.Context, tx repository.Tx, recipientID string, limit int) ([]*model.NotificationMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.NotificationMessage
	for _, n := range r.Saved {
		if n.RecipientID == recipientID {
			out = append(out, n)
		}
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (r *MockNotificationRepo) Exists(ctx context.Context, tx repository.Tx, recipientID string, kind model.NotificationKind, relatedID string, since time.Time) (bool, error) {
	if r.ExistsFunc != nil {
		return r.ExistsFunc(ctx, tx, recipientID, kind, relatedID, since)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range r.Saved {
		if n.RecipientID == recipientID && n.Kind == kind && n.RelatedID == relatedID && !n.CreatedAt.Before(since) {
			return true, nil
		}
	}
	return false, nil
}

func (r *MockNotificationRepo) Kinds() []model.NotificationKind {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.NotificationKind, len(r.Saved))
	for i, n := range r.Saved {
		out[i] = n.Kind
	}
	return out
}

// ---- Mock CatalogRepository ----

type MockCatalogRepo struct {
	mu      sync.RWMutex
	Entries []model.PriceCatalogEntry

	ListAllFunc func(ctx context.Context, tx repository.Tx) ([]model.PriceCatalogEntry, error)
}

var _ repository.CatalogRepository = (*MockCatalogRepo)(nil)

func (r *MockCatalogRepo) ListAll(ctx context.Context, tx repository.Tx) ([]model.PriceCatalogEntry, error) {
	if r.ListAllFunc != nil {
		return r.ListAllFunc(ctx, tx)
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]model.PriceCatalogEntry, len(r.Entries))
	copy(out, r.Entries)
	return out, nil
}

func (r *MockCatalogRepo) Save(ctx context.Context, tx repository.Tx, e model.PriceCatalogEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Entries = append(r.Entries, e)
	return nil
}

// =============================
// Adapters
// =============================

// ---- Mock PaymentGateway ----

type MockPaymentGateway struct {
	mu      sync.Mutex
	Charges []adapter.ChargeRequest
	Refunds []string // transaction ids

	ChargeFunc func(ctx context.Context, req adapter.ChargeRequest) (adapter.Receipt, error)
	RefundFunc func(ctx context.Context, transactionID string, amount int64, reason string) error
}

var _ adapter.PaymentGateway = (*MockPaymentGateway)(nil)

func (g *MockPaymentGateway) Name() string { return "mock" }

func (g *MockPaymentGateway) Charge(ctx context.Context, req adapter.ChargeRequest) (adapter.Receipt, error) {
	g.mu.Lock()
	g.Charges = append(g.Charges, req)
	g.mu.Unlock()
	if g.ChargeFunc != nil {
		return g.ChargeFunc(ctx, req)
	}
	return adapter.Receipt{
		TransactionID: "tx-" + req.MerchantOrderID,
		OrderNumber:   req.MerchantOrderID,
		PaidAmount:    req.Amount,
	}, nil
}

func (g *MockPaymentGateway) Refund(ctx context.Context, transactionID string, amount int64, reason string) error {
	g.mu.Lock()
	g.Refunds = append(g.Refunds, transactionID)
	g.mu.Unlock()
	if g.RefundFunc != nil {
		return g.RefundFunc(ctx, transactionID, amount, reason)
	}
	return nil
}

func (g *MockPaymentGateway) ChargeCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.Charges)
}

func (g *MockPaymentGateway) RefundCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.Refunds)
}

// ---- Mock TransactionManager ----

// MockTxManager runs the callback without a real transaction.
type MockTxManager struct {
	WithTxFunc func(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error
}

var _ repository.TransactionManager = (*MockTxManager)(nil)

func (m *MockTxManager) WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	if m.WithTxFunc != nil {
		return m.WithTxFunc(ctx, txOpt, fn)
	}
	return fn(ctx, repository.NoTX)
}

// ---- Mock Locker ----

type MockLocker struct {
	mu   sync.Mutex
	held map[string]bool

	TryLockFunc func(ctx context.Context, key string, ttl time.Duration) (string, error)
}

func NewMockLocker() *MockLocker {
	return &MockLocker{held: make(map[string]bool)}
}

func (l *MockLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (string, error) {
	if l.TryLockFunc != nil {
		return l.TryLockFunc(ctx, key, ttl)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held[key] {
		return "", domain.ErrRecordLocked
	}
	l.held[key] = true
	return "token-" + key, nil
}

func (l *MockLocker) Unlock(ctx context.Context, key, token string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.held, key)
	return nil
}
