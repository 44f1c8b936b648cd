package storesink

import (
	"context"
	"time"

	"github.com/goliatone/go-secretvars/pkg/activity"
	"github.com/goliatone/go-secretvars/pkg/domain"
	"github.com/goliatone/go-secretvars/pkg/interfaces/logger"
	"github.com/goliatone/go-secretvars/pkg/interfaces/store"
	"github.com/google/uuid"
)

// Hook adapts activity events into persisted AccessEvent records.
type Hook struct {
	Repository store.AccessEventRepository
	Logger     logger.Logger
}

// Notify maps the activity event into a domain.AccessEvent and stores it.
// Storage failures are logged and never surface to the caller.
func (h Hook) Notify(ctx context.Context, evt activity.Event) {
	if h.Repository == nil {
		return
	}
	record := &domain.AccessEvent{
		ID:         uuid.New(),
		Verb:       evt.Verb,
		ActorID:    evt.ActorID,
		Account:    evt.Account,
		Outcome:    evt.Outcome,
		Reason:     evt.Reason,
		Metadata:   domain.JSONMap(activity.CloneMetadata(evt.Metadata)),
		OccurredAt: evt.OccurredAt,
	}
	if record.OccurredAt.IsZero() {
		record.OccurredAt = time.Now().UTC()
	}
	if err := h.Repository.Create(ctx, record); err != nil && h.Logger != nil {
		h.Logger.Warn("activity: store access event failed",
			logger.Field{Key: "verb", Value: evt.Verb},
			logger.Field{Key: "error", Value: err},
		)
	}
}
