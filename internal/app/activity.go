package app

import (
	"context"
	"time"

	"foodgram/internal/logging"
	"foodgram/internal/metrics"
	"foodgram/internal/model"
	"foodgram/internal/repository"
)

type ActivityPublisher interface {
	PublishActivity(ctx context.Context, event model.ActivityEvent) error
}

// ActivityLog records what users did. Recording is best effort: a failed
// publish is logged and never fails the caller's request.
type ActivityLog struct {
	publisher ActivityPublisher
	repo      *repository.ActivityRepository
}

// NewActivityLog writes through publisher, or straight to the repository when
// publisher is nil.
func NewActivityLog(publisher ActivityPublisher, repo *repository.ActivityRepository) *ActivityLog {
	if publisher == nil {
		publisher = directActivityPublisher{repo: repo}
	}
	return &ActivityLog{publisher: publisher, repo: repo}
}

func (l *ActivityLog) Record(ctx context.Context, userID uint, kind string, targetID uint) {
	event := model.ActivityEvent{
		UserID:    userID,
		Kind:      kind,
		TargetID:  targetID,
		CreatedAt: time.Now().UTC(),
	}
	if err := l.publisher.PublishActivity(context.WithoutCancel(ctx), event); err != nil {
		metrics.ActivityEvents.WithLabelValues("failed").Inc()
		logging.Ctx(ctx).Warn().Err(err).Uint("user_id", userID).Str("kind", kind).Msg("record activity failed")
		return
	}
	metrics.ActivityEvents.WithLabelValues("published").Inc()
}

func (l *ActivityLog) List(ctx context.Context, userID uint, limit int) ([]model.ActivityEvent, error) {
	return l.repo.ListByUserID(ctx, userID, limit)
}

type directActivityPublisher struct {
	repo *repository.ActivityRepository
}

func (p directActivityPublisher) PublishActivity(ctx context.Context, event model.ActivityEvent) error {
	return p.repo.Create(ctx, &event)
}
