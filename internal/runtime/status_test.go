package runtime

import (
	"testing"
	"time"

	"github.com/ristoranteadam/sara/internal/overrides"
)

func at(h, m, s int) time.Time {
	return time.Date(2026, 7, 31, h, m, s, 0, time.UTC)
}

func TestEvaluate_OpenWindowNoOverrides(t *testing.T) {
	ov := overrides.Default()
	tests := []struct {
		h, m, s      int
		wantMode     string
		wantPickup   bool
		wantDelivery bool
	}{
		{15, 59, 59, "closed", false, false},
		{16, 0, 0, "open", true, false},
		{21, 29, 59, "open", true, true},
		{21, 30, 0, "open", true, false},
		{21, 59, 59, "open", true, false},
		{22, 0, 0, "closed", false, false},
	}
	for _, tt := range tests {
		got := Evaluate(at(tt.h, tt.m, tt.s), ov)
		if got.Mode != tt.wantMode {
			t.Errorf("at %02d:%02d:%02d Mode = %q, want %q", tt.h, tt.m, tt.s, got.Mode, tt.wantMode)
		}
		if got.PickupEnabled != tt.wantPickup {
			t.Errorf("at %02d:%02d:%02d PickupEnabled = %v, want %v", tt.h, tt.m, tt.s, got.PickupEnabled, tt.wantPickup)
		}
		if got.DeliveryEnabled != tt.wantDelivery {
			t.Errorf("at %02d:%02d:%02d DeliveryEnabled = %v, want %v", tt.h, tt.m, tt.s, got.DeliveryEnabled, tt.wantDelivery)
		}
	}
}

func TestEvaluate_KitchenClosedShortCircuits(t *testing.T) {
	ov := overrides.Default()
	ov.KitchenClosed = true

	got := Evaluate(at(19, 0, 0), ov)
	if got.Mode != "closed" || got.DeliveryEnabled || got.PickupEnabled || !got.KitchenClosed {
		t.Errorf("kitchen_closed override did not short-circuit: %+v", got)
	}
}

func TestEvaluate_ForcedOpenOutsideHours(t *testing.T) {
	ov := overrides.Default()
	ov.IsOpenOverride = overrides.OpenOverrideOpen

	got := Evaluate(at(10, 0, 0), ov)
	if got.Mode != "open" {
		t.Errorf("expected mode=open with forced override, got %q", got.Mode)
	}
	if got.DeliveryEnabled {
		t.Error("delivery_enabled should still require the 17:00-21:30 window")
	}
}

func TestEvaluate_ForcedClosed(t *testing.T) {
	ov := overrides.Default()
	ov.IsOpenOverride = overrides.OpenOverrideClosed

	got := Evaluate(at(19, 0, 0), ov)
	if got.Mode != "closed" {
		t.Errorf("expected mode=closed with forced override, got %q", got.Mode)
	}
	if got.CloseReason == "" {
		t.Error("expected a close reason when forced closed")
	}
}

func TestEvaluate_DeliveryOverrideCanOnlyRestrict(t *testing.T) {
	ov := overrides.Default()
	enabled := true
	ov.DeliveryEnabled = &enabled

	// Inside delivery window: override doesn't disable it.
	got := Evaluate(at(19, 0, 0), ov)
	if !got.DeliveryEnabled {
		t.Error("expected delivery enabled inside window with override=true")
	}

	disabled := false
	ov.DeliveryEnabled = &disabled
	got = Evaluate(at(19, 0, 0), ov)
	if got.DeliveryEnabled {
		t.Error("expected delivery disabled with explicit override=false")
	}
}
