// Package session implements the Call Session Store (CSS): the per-call
// conversation state keyed by call identifier, backed by internal/kv with
// a rolling TTL refreshed on every write.
package session

import (
	"context"
	"time"

	"github.com/ristoranteadam/sara/internal/kv"
)

// ttl is refreshed to this value on every Save, per spec.md §4.5.
const ttl = 2 * time.Hour

func keyFor(callID string) string {
	return "call:" + callID
}

// OrderLine is one parsed/confirmed item within a CallSession.
type OrderLine struct {
	Code        string  `json:"code"`
	DisplayName string  `json:"display_name"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
}

// CallSession is spec.md §3's CallSession entity: the DSM's working state
// for a single call.
type CallSession struct {
	CallID        string      `json:"call_id"`
	State         string      `json:"state"`
	Items         []OrderLine `json:"items"`
	Fulfilment    string      `json:"fulfilment"`
	Phone         string      `json:"phone"`
	Street        string      `json:"street"`
	HouseNumber   string      `json:"house_number"`
	Postcode      string      `json:"postcode"`
	PendingItem   string      `json:"pending_item,omitempty"`
	TurnCount     int         `json:"turn_count"`
}

// New returns the default session for a fresh call, per spec.md §4.5.
func New(callID string) CallSession {
	return CallSession{
		CallID: callID,
		State:  "greet",
	}
}

// Store is the CSS component.
type Store struct {
	kv kv.Setter
}

// NewStore creates a Store.
func NewStore(store kv.Setter) *Store {
	return &Store{kv: store}
}

// Get returns the stored session for callID, or a fresh default session if
// absent or the stored value fails to decode — per spec.md §4.5, a decode
// failure must never abort the call.
func (s *Store) Get(ctx context.Context, callID string) CallSession {
	var cs CallSession
	found, _ := s.kv.Get(ctx, keyFor(callID), &cs)
	if !found {
		return New(callID)
	}
	return cs
}

// Save persists the session and refreshes its TTL to 2 hours.
func (s *Store) Save(ctx context.Context, cs CallSession) error {
	return s.kv.Set(ctx, keyFor(cs.CallID), cs, ttl)
}

// Delete removes a finished call's session immediately.
func (s *Store) Delete(ctx context.Context, callID string) {
	s.kv.Delete(ctx, keyFor(callID))
}
