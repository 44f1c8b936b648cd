package commands

import (
	"context"
	"errors"
	"time"

	command "github.com/goliatone/go-command"
	"github.com/goliatone/go-secretvars/pkg/interfaces/logger"
	"github.com/goliatone/go-secretvars/pkg/viewingkey"
)

// Catalog exposes go-command compatible handlers for host transports.
type Catalog struct {
	Instantiate        command.Commander[Instantiate]
	SetViewers         command.Commander[SetViewers]
	SetSecret          command.Commander[SetSecret]
	GenerateViewingKey command.Commander[GenerateViewingKey]
	QuerySecret        command.Commander[QuerySecret]
}

type gateService interface {
	Instantiate(ctx context.Context, caller string, seed []byte) error
	SetViewers(ctx context.Context, caller string, viewers []string) error
	SetSecret(ctx context.Context, caller, payload string) error
	GenerateViewingKey(ctx context.Context, caller, entropy string, call viewingkey.CallContext) (string, error)
	QuerySecret(ctx context.Context, token, account string) (string, error)
}

// Dependencies wires the gate into the command catalog.
type Dependencies struct {
	Gate   gateService
	Logger logger.Logger
}

var errResultRequired = errors.New("commands: result sink is required")

// NewCatalog builds the command catalog using the supplied dependencies.
func NewCatalog(deps Dependencies) (*Catalog, error) {
	if deps.Gate == nil {
		return nil, errors.New("commands: gate is required")
	}
	if deps.Logger == nil {
		deps.Logger = &logger.Nop{}
	}

	return &Catalog{
		Instantiate:        instantiateCommand{gate: deps.Gate},
		SetViewers:         setViewersCommand{gate: deps.Gate},
		SetSecret:          setSecretCommand{gate: deps.Gate},
		GenerateViewingKey: generateViewingKeyCommand{gate: deps.Gate},
		QuerySecret:        querySecretCommand{gate: deps.Gate},
	}, nil
}

// Instantiate initializes the store. Caller becomes the owner.
type Instantiate struct {
	Caller   string `json:"caller"`
	PRNGSeed []byte `json:"prng_seed"`
}

type instantiateCommand struct {
	gate gateService
}

func (c instantiateCommand) Execute(ctx context.Context, msg Instantiate) error {
	return c.gate.Instantiate(ctx, msg.Caller, msg.PRNGSeed)
}

// SetViewers replaces the allow-list.
type SetViewers struct {
	Caller  string   `json:"caller"`
	Viewers []string `json:"viewers"`
}

type setViewersCommand struct {
	gate gateService
}

func (c setViewersCommand) Execute(ctx context.Context, msg SetViewers) error {
	return c.gate.SetViewers(ctx, msg.Caller, msg.Viewers)
}

// SetSecret replaces the secret payload.
type SetSecret struct {
	Caller          string `json:"caller"`
	SecretVariables string `json:"secret_variables"`
}

type setSecretCommand struct {
	gate gateService
}

func (c setSecretCommand) Execute(ctx context.Context, msg SetSecret) error {
	return c.gate.SetSecret(ctx, msg.Caller, msg.SecretVariables)
}

// ViewingKeyResult receives the minted key.
type ViewingKeyResult struct {
	Key string `json:"key"`
}

// GenerateViewingKey mints a viewing key for Caller. Height, Time and Sender
// are optional; the gate fills them when empty.
type GenerateViewingKey struct {
	Caller  string            `json:"caller"`
	Entropy string            `json:"entropy"`
	Height  uint64            `json:"height,omitempty"`
	Time    time.Time         `json:"time,omitempty"`
	Sender  string            `json:"sender,omitempty"`
	Result  *ViewingKeyResult `json:"-"`
}

type generateViewingKeyCommand struct {
	gate gateService
}

func (c generateViewingKeyCommand) Execute(ctx context.Context, msg GenerateViewingKey) error {
	if msg.Result == nil {
		return errResultRequired
	}
	key, err := c.gate.GenerateViewingKey(ctx, msg.Caller, msg.Entropy, viewingkey.CallContext{
		Height: msg.Height,
		Time:   msg.Time,
		Sender: msg.Sender,
	})
	if err != nil {
		return err
	}
	msg.Result.Key = key
	return nil
}

// SecretResult receives the payload returned by a query.
type SecretResult struct {
	SecretVariables string `json:"secret_variables"`
}

// QuerySecret reads the payload with a viewing key.
type QuerySecret struct {
	ViewingKey string        `json:"viewing_key"`
	Account    string        `json:"account"`
	Result     *SecretResult `json:"-"`
}

type querySecretCommand struct {
	gate gateService
}

func (c querySecretCommand) Execute(ctx context.Context, msg QuerySecret) error {
	if msg.Result == nil {
		return errResultRequired
	}
	payload, err := c.gate.QuerySecret(ctx, msg.ViewingKey, msg.Account)
	if err != nil {
		return err
	}
	msg.Result.SecretVariables = payload
	return nil
}
