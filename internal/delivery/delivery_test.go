package delivery

import "testing"

func TestFeeFor_MatchesPrefix(t *testing.T) {
	cfg := Default()
	fee, inZone := cfg.FeeFor("1871 AB")
	if !inZone {
		t.Fatal("expected postcode 1871 to match a zone")
	}
	if fee != 0 {
		t.Errorf("fee = %v, want 0", fee)
	}

	fee, inZone = cfg.FeeFor("1862XY")
	if !inZone || fee != 1.5 {
		t.Errorf("fee/inZone = %v/%v, want 1.5/true", fee, inZone)
	}
}

func TestFeeFor_OutOfZone(t *testing.T) {
	cfg := Default()
	_, inZone := cfg.FeeFor("9999ZZ")
	if inZone {
		t.Error("expected unmatched postcode to be out of zone")
	}
}

func TestETAMinutes_AddsMaxDelay(t *testing.T) {
	cfg := Default()
	got := cfg.ETAMinutes("pickup", 20, 10)
	want := cfg.SLA.PickupMinutes + 20
	if got != want {
		t.Errorf("ETAMinutes() = %d, want %d", got, want)
	}
}

func TestETAMinutes_DeliveryBase(t *testing.T) {
	cfg := Default()
	got := cfg.ETAMinutes("delivery", 0, 0)
	if got != cfg.SLA.DeliveryMinutes {
		t.Errorf("ETAMinutes(delivery) = %d, want %d", got, cfg.SLA.DeliveryMinutes)
	}
}
