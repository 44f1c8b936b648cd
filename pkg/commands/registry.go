package commands

import (
	command "github.com/goliatone/go-command"
	internalcommands "github.com/goliatone/go-secretvars/internal/commands"
	"github.com/goliatone/go-secretvars/pkg/gate"
	"github.com/goliatone/go-secretvars/pkg/interfaces/logger"
)

// Re-export request types so consumers need not import internal packages.
type (
	Instantiate        = internalcommands.Instantiate
	SetViewers         = internalcommands.SetViewers
	SetSecret          = internalcommands.SetSecret
	GenerateViewingKey = internalcommands.GenerateViewingKey
	ViewingKeyResult   = internalcommands.ViewingKeyResult
	QuerySecret        = internalcommands.QuerySecret
	SecretResult       = internalcommands.SecretResult
)

// Registry exposes go-command compatible handlers backed by the gate.
type Registry struct {
	Catalog            *internalcommands.Catalog
	Instantiate        command.Commander[Instantiate]
	SetViewers         command.Commander[SetViewers]
	SetSecret          command.Commander[SetSecret]
	GenerateViewingKey command.Commander[GenerateViewingKey]
	QuerySecret        command.Commander[QuerySecret]
}

// Dependencies mirror the internal command dependencies but keep them public.
type Dependencies struct {
	Gate   *gate.Gate
	Logger logger.Logger
}

// New builds the registry using the provided dependencies.
func New(deps Dependencies) (*Registry, error) {
	internalDeps := internalcommands.Dependencies{Logger: deps.Logger}
	if deps.Gate != nil {
		internalDeps.Gate = deps.Gate
	}
	catalog, err := internalcommands.NewCatalog(internalDeps)
	if err != nil {
		return nil, err
	}
	return &Registry{
		Catalog:            catalog,
		Instantiate:        catalog.Instantiate,
		SetViewers:         catalog.SetViewers,
		SetSecret:          catalog.SetSecret,
		GenerateViewingKey: catalog.GenerateViewingKey,
		QuerySecret:        catalog.QuerySecret,
	}, nil
}

// Commanders returns every handler so callers can register them with go-command registries.
func (r *Registry) Commanders() []any {
	if r == nil {
		return nil
	}
	return []any{
		r.Instantiate,
		r.SetViewers,
		r.SetSecret,
		r.GenerateViewingKey,
		r.QuerySecret,
	}
}
