// File: internal/usecase/notification_uc.go
package usecase

import (
	"context"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"promotion-platform/internal/domain/model"
	"promotion-platform/internal/domain/ports/repository"
	"promotion-platform/internal/infra/metrics"
)

// Compile-time check
var _ NotificationUseCase = (*notificationUC)(nil)

// NotificationUseCase fans out status messages. Every delivery is
// independent and best-effort: one failed recipient never aborts the others,
// and no failure ever propagates to the calling workflow step.
type NotificationUseCase interface {
	Notify(ctx context.Context, recipientID string, kind model.NotificationKind, title, body, relatedID string)
	BroadcastToAdmins(ctx context.Context, kind model.NotificationKind, title, body, relatedID string)
	// AlreadySent dedupes repeat sends within a window.
	AlreadySent(ctx context.Context, recipientID string, kind model.NotificationKind, relatedID string, since time.Time) bool
}

// TaskRunner is the seam for running best-effort work; satisfied by
// worker.Pool. A nil runner executes inline.
type TaskRunner interface {
	Submit(task func(ctx context.Context) error) error
}

type notificationUC struct {
	sink     repository.NotificationRepository
	accounts repository.AccountRepository
	runner   TaskRunner
	log      *zerolog.Logger
}

func NewNotificationUseCase(sink repository.NotificationRepository, accounts repository.AccountRepository, runner TaskRunner, logger *zerolog.Logger) *notificationUC {
	compLog := logger.With().Str("component", "NotificationUC").Logger()
	return &notificationUC{sink: sink, accounts: accounts, runner: runner, log: &compLog}
}

// BestEffort runs task, logs any failure, and never returns it. The contract
// "notification failure never blocks the workflow" lives here in the
// signature instead of inside scattered recover/ignore blocks.
func BestEffort(ctx context.Context, log *zerolog.Logger, name string, task func(ctx context.Context) error) {
	if err := task(ctx); err != nil {
		metrics.IncNotification("failed")
		log.Warn().Err(err).Str("task", name).Msg("best-effort task failed")
		return
	}
	metrics.IncNotification("delivered")
}

func (n *notificationUC) Notify(ctx context.Context, recipientID string, kind model.NotificationKind, title, body, relatedID string) {
	msg := &model.NotificationMessage{
		ID:          ulid.Make().String(),
		RecipientID: recipientID,
		Kind:        kind,
		Title:       title,
		Body:        body,
		RelatedID:   relatedID,
		CreatedAt:   time.Now(),
	}
	n.deliver(ctx, msg)
}

func (n *notificationUC) BroadcastToAdmins(ctx context.Context, kind model.NotificationKind, title, body, relatedID string) {
	admins, err := n.accounts.ListAdmins(ctx, repository.NoTX)
	if err != nil {
		// Listing admins is itself best-effort.
		n.log.Warn().Err(err).Msg("listing admins for broadcast failed")
		return
	}
	for _, a := range admins {
		msg := &model.NotificationMessage{
			ID:          ulid.Make().String(),
			RecipientID: a.ID,
			Kind:        kind,
			Title:       title,
			Body:        body,
			RelatedID:   relatedID,
			CreatedAt:   time.Now(),
		}
		n.deliver(ctx, msg)
	}
}

func (n *notificationUC) AlreadySent(ctx context.Context, recipientID string, kind model.NotificationKind, relatedID string, since time.Time) bool {
	ok, err := n.sink.Exists(ctx, repository.NoTX, recipientID, kind, relatedID, since)
	if err != nil {
		// When the sink is unreadable, err on the side of not re-sending.
		n.log.Warn().Err(err).Msg("notification dedupe check failed")
		return true
	}
	return ok
}

func (n *notificationUC) deliver(ctx context.Context, msg *model.NotificationMessage) {
	task := func(taskCtx context.Context) error {
		return n.sink.Save(taskCtx, repository.NoTX, msg)
	}
	if n.runner != nil {
		if err := n.runner.Submit(func(taskCtx context.Context) error {
			BestEffort(taskCtx, n.log, "notify:"+string(msg.Kind), task)
			return nil
		}); err == nil {
			return
		}
		// Pool saturated; fall through and deliver inline.
	}
	BestEffort(ctx, n.log, "notify:"+string(msg.Kind), task)
}
