package bunrepo

import (
	"github.com/goliatone/go-secretvars/pkg/interfaces/store"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/uptrace/bun"
)

func withListOptions(opts store.ListOptions) repository.SelectCriteria {
	return func(q *bun.SelectQuery) *bun.SelectQuery {
		if opts.Limit > 0 {
			q = q.Limit(opts.Limit)
		}
		if opts.Offset > 0 {
			q = q.Offset(opts.Offset)
		}
		if !opts.Since.IsZero() {
			q = q.Where("occurred_at >= ?", opts.Since)
		}
		if !opts.Until.IsZero() {
			q = q.Where("occurred_at <= ?", opts.Until)
		}
		return q.Order("occurred_at ASC")
	}
}
