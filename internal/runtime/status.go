// Package runtime computes the restaurant's current operating status from
// the clock and the admin-controlled overrides. It is a pure function
// package: no I/O, no storage, just time.Time in and a Status value out.
package runtime

import (
	"time"

	"github.com/ristoranteadam/sara/internal/overrides"
)

// Status is the computed operating state for a single instant, spec.md §3's
// RuntimeStatus entity. It is never stored — recomputed on every request
// that depends on opening state.
type Status struct {
	Now                  time.Time
	Mode                 string // "open" or "closed"
	DeliveryEnabled      bool
	PickupEnabled        bool
	KitchenClosed        bool
	BotEnabled           bool
	PastaAvailable       bool
	DelayPastaMinutes    int
	DelaySchotelsMinutes int
	CloseReason          string
	Window               string
}

const (
	openStart  = 16 * 60 // 16:00
	openEnd    = 22 * 60 // 22:00
	delivStart = 17 * 60 // 17:00
	delivEnd   = 21*60 + 30
)

// windowDisplay is a fixed display string for the opening window, named in
// spec.md §3 as "window (fixed display strings)".
const windowDisplay = "16:00 - 22:00"

// Evaluate implements spec.md §4.1 steps 1-5 exactly.
func Evaluate(now time.Time, ov overrides.Overrides) Status {
	minuteOfDay := now.Hour()*60 + now.Minute()

	openAuto := minuteOfDay >= openStart && minuteOfDay < openEnd
	deliveryAuto := minuteOfDay >= delivStart && minuteOfDay < delivEnd
	pickupAuto := openAuto

	var openNow bool
	switch ov.IsOpenOverride {
	case overrides.OpenOverrideClosed:
		openNow = false
	case overrides.OpenOverrideOpen:
		openNow = true
	default:
		openNow = openAuto
	}

	base := Status{
		Now:                  now,
		BotEnabled:           ov.BotEnabled,
		PastaAvailable:       ov.PastaAvailable,
		DelayPastaMinutes:    ov.DelayPastaMinutes,
		DelaySchotelsMinutes: ov.DelaySchotelsMinutes,
		Window:               windowDisplay,
	}

	if ov.KitchenClosed {
		base.Mode = "closed"
		base.DeliveryEnabled = false
		base.PickupEnabled = false
		base.KitchenClosed = true
		base.CloseReason = ""
		return base
	}

	if !openNow {
		base.Mode = "closed"
		base.DeliveryEnabled = false
		base.PickupEnabled = false
		base.CloseReason = "We zijn op dit moment gesloten."
		return base
	}

	base.Mode = "open"
	delivery := deliveryAuto
	if ov.DeliveryEnabled != nil {
		delivery = delivery && *ov.DeliveryEnabled
	}
	pickup := pickupAuto
	if ov.PickupEnabled != nil {
		pickup = pickup && *ov.PickupEnabled
	}
	base.DeliveryEnabled = delivery
	base.PickupEnabled = pickup
	return base
}
