package bunrepo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/goliatone/go-secretvars/pkg/domain"
	"github.com/goliatone/go-secretvars/pkg/interfaces/store"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/uptrace/bun"
)

// Models lists every table owned by the Bun repositories.
func Models() []any {
	return []any{
		(*stateRecord)(nil),
		(*seedRecord)(nil),
		(*domain.ViewingKey)(nil),
		(*domain.AccessEvent)(nil),
	}
}

// EnsureSchema creates the tables used by the Bun repositories.
func EnsureSchema(ctx context.Context, db bun.IDB) error {
	for _, model := range Models() {
		if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("bunrepo: create table for %T: %w", model, err)
		}
	}
	return nil
}

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) || repository.IsRecordNotFound(err) {
		return store.ErrNotFound
	}
	return err
}
