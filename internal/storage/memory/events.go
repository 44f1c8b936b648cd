package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/goliatone/go-secretvars/pkg/domain"
	"github.com/goliatone/go-secretvars/pkg/interfaces/store"
)

// AccessEventRepository keeps audit events in memory.
type AccessEventRepository struct {
	mu     sync.RWMutex
	events []domain.AccessEvent
}

var _ store.AccessEventRepository = (*AccessEventRepository)(nil)

func NewAccessEventRepository() *AccessEventRepository {
	return &AccessEventRepository{}
}

func (r *AccessEventRepository) Create(_ context.Context, event *domain.AccessEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	event.EnsureID()
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}
	r.events = append(r.events, *event)
	return nil
}

func (r *AccessEventRepository) List(_ context.Context, opts store.ListOptions) (store.ListResult[domain.AccessEvent], error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var filtered []domain.AccessEvent
	for _, event := range r.events {
		if !opts.Since.IsZero() && event.OccurredAt.Before(opts.Since) {
			continue
		}
		if !opts.Until.IsZero() && event.OccurredAt.After(opts.Until) {
			continue
		}
		filtered = append(filtered, event)
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].OccurredAt.Before(filtered[j].OccurredAt)
	})

	total := len(filtered)
	start := opts.Offset
	if start > total {
		start = total
	}
	end := total
	if opts.Limit > 0 && start+opts.Limit < end {
		end = start + opts.Limit
	}
	return store.ListResult[domain.AccessEvent]{Items: filtered[start:end], Total: total}, nil
}
