package activity

import (
	"context"
	"time"

	"github.com/goliatone/go-secretvars/pkg/domain"
	"github.com/goliatone/go-secretvars/pkg/interfaces/logger"
	"github.com/goliatone/go-secretvars/pkg/secrets"
)

// Event captures the fields consumers need to record an authorization decision.
// It never carries token, payload or seed material.
type Event struct {
	Verb       string
	ActorID    string
	Account    string
	Outcome    string
	Reason     string
	Metadata   map[string]any
	OccurredAt time.Time
}

// Hook observers receive activity events.
type Hook interface {
	Notify(ctx context.Context, evt Event)
}

// Hooks provides a convenient fan-out collection.
type Hooks []Hook

// Notify delivers the event to every hook, skipping nil entries.
func (h Hooks) Notify(ctx context.Context, evt Event) {
	if len(h) == 0 {
		return
	}
	if evt.OccurredAt.IsZero() {
		evt.OccurredAt = time.Now().UTC()
	}
	for _, hook := range h {
		if hook == nil {
			continue
		}
		hook.Notify(ctx, evt)
	}
}

// Nop is a no-op hook useful for defaults.
type Nop struct{}

func (Nop) Notify(_ context.Context, _ Event) {}

// LoggerHook writes each decision at debug level, denials at warn. Identities
// are masked.
type LoggerHook struct {
	Logger logger.Logger
}

func (h LoggerHook) Notify(_ context.Context, evt Event) {
	if h.Logger == nil {
		return
	}
	fields := []logger.Field{
		{Key: "verb", Value: evt.Verb},
		{Key: "actor", Value: secrets.MaskIdentity(evt.ActorID)},
		{Key: "outcome", Value: evt.Outcome},
	}
	if evt.Account != "" {
		fields = append(fields, logger.Field{Key: "account", Value: secrets.MaskIdentity(evt.Account)})
	}
	if evt.Reason != "" {
		fields = append(fields, logger.Field{Key: "reason", Value: evt.Reason})
	}
	if evt.Outcome == domain.OutcomeAllowed {
		h.Logger.Debug("access decision", fields...)
		return
	}
	h.Logger.Warn("access decision", fields...)
}

// CloneMetadata makes a shallow copy so hooks can mutate without affecting callers.
func CloneMetadata(src map[string]any) map[string]any {
	if len(src) == 0 {
		return nil
	}
	dst := make(map[string]any, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
