package usersink

import (
	"context"
	"time"

	"github.com/goliatone/go-secretvars/pkg/activity"
	"github.com/goliatone/go-users/pkg/types"
	"github.com/google/uuid"
)

const (
	objectType = "secret_store"
	channel    = "secretvars"
)

// Hook adapts access decisions into go-users ActivitySink records so hosts
// that already run go-users see them in the same feed.
type Hook struct {
	Sink types.ActivitySink
}

// Notify maps the activity event into a types.ActivityRecord and forwards it.
// Identities that are not UUIDs are carried in Data.
func (h Hook) Notify(ctx context.Context, evt activity.Event) {
	if h.Sink == nil {
		return
	}
	record := types.ActivityRecord{
		ID:         uuid.New(),
		UserID:     parseUUID(evt.Account),
		ActorID:    parseUUID(evt.ActorID),
		Verb:       "secretvars." + evt.Verb,
		ObjectType: objectType,
		ObjectID:   evt.Account,
		Channel:    channel,
		Data:       buildData(evt),
		OccurredAt: evt.OccurredAt,
	}
	if record.OccurredAt.IsZero() {
		record.OccurredAt = time.Now().UTC()
	}
	_ = h.Sink.Log(ctx, record)
}

func buildData(evt activity.Event) map[string]any {
	data := activity.CloneMetadata(evt.Metadata)
	if data == nil {
		data = make(map[string]any)
	}
	data["outcome"] = evt.Outcome
	if evt.Reason != "" {
		data["reason"] = evt.Reason
	}
	if evt.ActorID != "" {
		data["actor"] = evt.ActorID
	}
	return data
}

func parseUUID(raw string) uuid.UUID {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil
	}
	return id
}
