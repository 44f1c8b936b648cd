package domain

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// ContractState is the singleton record guarded by the state store.
type ContractState struct {
	Owner          string
	AllowedViewers StringList
	SecretPayload  string
	Revision       int64
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// NewContractState returns the initial state for the given owner.
func NewContractState(owner string, now time.Time) ContractState {
	return ContractState{
		Owner:          owner,
		AllowedViewers: StringList{},
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// Clone returns a deep copy so callers never alias stored slices.
func (s ContractState) Clone() ContractState {
	out := s
	if s.AllowedViewers != nil {
		out.AllowedViewers = append(StringList{}, s.AllowedViewers...)
	}
	return out
}

// IsViewer reports whether account appears in the allow-list.
func (s ContractState) IsViewer(account string) bool {
	for _, viewer := range s.AllowedViewers {
		if viewer == account {
			return true
		}
	}
	return false
}

// ViewingKey is the stored credential for one account. Only the digest of the
// issued token is kept.
type ViewingKey struct {
	bun.BaseModel `bun:"table:viewing_keys"`

	ID        int64     `bun:",pk,autoincrement"`
	Account   string    `bun:",unique,notnull"`
	KeyHash   []byte    `bun:",notnull"`
	CreatedAt time.Time `bun:",nullzero,notnull,default:current_timestamp"`
	UpdatedAt time.Time `bun:",nullzero,notnull,default:current_timestamp"`
}

// AccessEvent records a single authorization decision.
type AccessEvent struct {
	bun.BaseModel `bun:"table:access_events"`

	ID         uuid.UUID `bun:",pk,type:uuid" json:"id"`
	Verb       string    `bun:",nullzero,notnull" json:"verb"`
	ActorID    string    `bun:",nullzero" json:"actor_id"`
	Account    string    `bun:",nullzero" json:"account"`
	Outcome    string    `bun:",nullzero,notnull" json:"outcome"`
	Reason     string    `bun:",nullzero" json:"reason,omitempty"`
	Metadata   JSONMap   `bun:"type:jsonb,nullzero" json:"metadata,omitempty"`
	OccurredAt time.Time `bun:",nullzero,notnull,default:current_timestamp" json:"occurred_at"`
}

// EnsureID assigns a UUID when the event is about to be persisted.
func (e *AccessEvent) EnsureID() {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
}

// JSONMap persists arbitrary metadata fields as JSON.
type JSONMap map[string]any

// Value implements driver.Valuer.
func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return []byte("null"), nil
	}
	return json.Marshal(m)
}

// Scan implements sql.Scanner.
func (m *JSONMap) Scan(value any) error {
	if m == nil {
		return errors.New("JSONMap: Scan on nil pointer")
	}
	switch v := value.(type) {
	case nil:
		*m = nil
		return nil
	case []byte:
		return json.Unmarshal(v, m)
	case string:
		return json.Unmarshal([]byte(v), m)
	default:
		return fmt.Errorf("JSONMap: unsupported type %T", value)
	}
}

// StringList stores []string as JSON.
type StringList []string

func (s StringList) Value() (driver.Value, error) {
	if s == nil {
		return json.Marshal([]string{})
	}
	return json.Marshal([]string(s))
}

func (s *StringList) Scan(value any) error {
	if s == nil {
		return errors.New("StringList: Scan on nil pointer")
	}
	switch v := value.(type) {
	case nil:
		*s = nil
		return nil
	case []byte:
		return json.Unmarshal(v, (*[]string)(s))
	case string:
		return json.Unmarshal([]byte(v), (*[]string)(s))
	default:
		return fmt.Errorf("StringList: unsupported type %T", value)
	}
}

// Access event verbs.
const (
	VerbInstantiate        = "instantiate"
	VerbSetViewers         = "set_viewers"
	VerbSetSecret          = "set_secret"
	VerbGenerateViewingKey = "generate_viewing_key"
	VerbQuerySecret        = "query_secret"

	OutcomeAllowed = "allowed"
	OutcomeDenied  = "denied"
	OutcomeFailed  = "failed"
)
