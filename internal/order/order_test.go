package order

import "testing"

func TestTotal_SumsQuantityTimesPrice(t *testing.T) {
	lines := []Line{
		{Code: "margherita", Quantity: 2, UnitPrice: 9.5},
		{Code: "cola", Quantity: 1, UnitPrice: 2.75},
	}
	got := Total(lines)
	want := 21.75
	if got != want {
		t.Errorf("Total() = %v, want %v", got, want)
	}
}

func TestNew_ComputesTotalFromLines(t *testing.T) {
	lines := []Line{{Code: "margherita", Quantity: 2, UnitPrice: 9.5}}
	ord := New("call-1", lines, FulfilmentPickup)
	if ord.TotalAmount != 19 {
		t.Errorf("TotalAmount = %v, want 19", ord.TotalAmount)
	}
	if ord.CallID != "call-1" || ord.Fulfilment != FulfilmentPickup {
		t.Errorf("unexpected order fields: %+v", ord)
	}
}
