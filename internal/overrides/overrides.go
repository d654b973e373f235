// Package overrides implements the Override Store (OS): the single, keyed,
// TTL-bounded admin record that the Runtime Status Evaluator and Greeting
// Selector consult. Grounded on the teacher's
// internal/repository/settings_repository.go Get/Set shape, backed by
// internal/kv rather than Postgres.
package overrides

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ristoranteadam/sara/internal/kv"
)

// OpenOverride values for Overrides.IsOpenOverride.
const (
	OpenOverrideAuto   = "auto"
	OpenOverrideOpen   = "open"
	OpenOverrideClosed = "closed"
)

const storeKey = "overrides"

// allowedDelays is the valid set for delay_pasta_minutes/delay_schotels_minutes.
var allowedDelays = map[int]bool{0: true, 10: true, 20: true, 30: true, 45: true, 60: true}

// Overrides is spec.md §3's Overrides entity. Absence of a stored record
// means all defaults (bot enabled, kitchen open, auto hours, no delays).
type Overrides struct {
	BotEnabled           bool   `json:"bot_enabled"`
	KitchenClosed        bool   `json:"kitchen_closed"`
	PastaAvailable       bool   `json:"pasta_available"`
	DelayPastaMinutes    int    `json:"delay_pasta_minutes"`
	DelaySchotelsMinutes int    `json:"delay_schotels_minutes"`
	IsOpenOverride       string `json:"is_open_override"`
	DeliveryEnabled      *bool  `json:"delivery_enabled,omitempty"`
	PickupEnabled        *bool  `json:"pickup_enabled,omitempty"`
	TTLMinutes           int    `json:"ttl_minutes"`
}

// Default returns the all-defaults record used when no override is stored.
func Default() Overrides {
	return Overrides{
		BotEnabled:     true,
		PastaAvailable: true,
		IsOpenOverride: OpenOverrideAuto,
		TTLMinutes:     180,
	}
}

// Validate checks the admin-facing constraints from spec.md §4.2/invariant (2).
func (o Overrides) Validate() error {
	if !allowedDelays[o.DelayPastaMinutes] {
		return fmt.Errorf("delay_pasta_minutes must be one of 0,10,20,30,45,60, got %d", o.DelayPastaMinutes)
	}
	if !allowedDelays[o.DelaySchotelsMinutes] {
		return fmt.Errorf("delay_schotels_minutes must be one of 0,10,20,30,45,60, got %d", o.DelaySchotelsMinutes)
	}
	switch o.IsOpenOverride {
	case OpenOverrideAuto, OpenOverrideOpen, OpenOverrideClosed, "":
	default:
		return fmt.Errorf("is_open_override must be one of auto,open,closed, got %q", o.IsOpenOverride)
	}
	if o.TTLMinutes < 1 || o.TTLMinutes > 720 {
		return fmt.Errorf("ttl_minutes must be in [1,720], got %d", o.TTLMinutes)
	}
	return nil
}

// Store is the OS component: get/put backed by internal/kv.
type Store struct {
	kv     kv.Setter
	logger *zap.Logger
}

// NewStore creates a Store.
func NewStore(store kv.Setter, logger *zap.Logger) *Store {
	return &Store{kv: store, logger: logger}
}

// Get returns the current Overrides or the defaults if absent or the store
// is unreachable — per spec.md §4.2, errors never propagate to readers.
func (s *Store) Get(ctx context.Context) Overrides {
	var ov Overrides
	found, _ := s.kv.Get(ctx, storeKey, &ov)
	if !found {
		return Default()
	}
	return ov
}

// Put validates and persists Overrides with expiry ttl_minutes*60s. Store
// failures are returned so the admin caller can be told the write failed,
// per spec.md §4.2/§7.
func (s *Store) Put(ctx context.Context, ov Overrides) error {
	if ov.IsOpenOverride == "" {
		ov.IsOpenOverride = OpenOverrideAuto
	}
	if ov.TTLMinutes == 0 {
		ov.TTLMinutes = 180
	}
	if err := ov.Validate(); err != nil {
		return err
	}
	ttl := time.Duration(ov.TTLMinutes) * time.Minute
	if err := s.kv.Set(ctx, storeKey, ov, ttl); err != nil {
		s.logger.Error("overrides store write failed", zap.Error(err))
		return fmt.Errorf("overrides store unavailable: %w", err)
	}
	return nil
}
