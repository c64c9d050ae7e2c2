package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/JohnCarlosSebuco/bantay-bot-cloud-imgbb-sub000/internal/logger"
	"github.com/JohnCarlosSebuco/bantay-bot-cloud-imgbb-sub000/internal/models"
	"github.com/JohnCarlosSebuco/bantay-bot-cloud-imgbb-sub000/internal/repository"
)

// recordEvent appends to the event log. Failures are logged and swallowed:
// the log is an audit trail, never a precondition.
func recordEvent(ctx context.Context, repo repository.EventRepo, log *logger.Logger, at time.Time, typ, desc string, meta any) {
	if repo == nil {
		return
	}
	err := repo.Append(context.WithoutCancel(ctx), models.DeviceEvent{
		EventID:     uuid.NewString(),
		OccurredAt:  at.UTC(),
		Type:        typ,
		Description: desc,
		Metadata:    meta,
	})
	if err != nil && log != nil {
		log.Warnw("event_append_failed", "type", typ, "err", err)
	}
}
