package cart

import (
	"math"
	"testing"
)

const tolerance = 1e-9

func approx(a, b float64) bool {
	return math.Abs(a-b) < tolerance
}

func TestComputeTotalsEmpty(t *testing.T) {
	got := ComputeTotals(nil, true, false)
	if got.Items != 0 || got.Price != 0 || got.CarbonFootprint != GreenDeliveryFootprint {
		t.Fatalf("unexpected empty totals %+v", got)
	}

	got = ComputeTotals([]Line{}, false, true)
	if got.CarbonFootprint != StandardDeliveryFootprint {
		t.Fatalf("expected standard delivery only, got %v", got.CarbonFootprint)
	}
}

func TestComputeTotalsMixedLines(t *testing.T) {
	items := []Line{
		{ProductID: "p1", Quantity: 2, Product: ProductSnapshot{Price: 10, CarbonFootprint: 5}},
		{ProductID: "p2", Quantity: 3, Product: ProductSnapshot{Price: 0.1, CarbonFootprint: 0.2}},
	}

	got := ComputeTotals(items, true, false)
	if got.Items != 5 {
		t.Fatalf("expected 5 items, got %d", got.Items)
	}
	if !approx(got.Price, 20.3) {
		t.Fatalf("expected price 20.3, got %v", got.Price)
	}
	if !approx(got.CarbonFootprint, 10.6+0.5) {
		t.Fatalf("expected footprint 11.1, got %v", got.CarbonFootprint)
	}
}

func TestComputeTotalsOffsetRemovesEightyPercentOfProductFootprint(t *testing.T) {
	items := []Line{{ProductID: "p1", Quantity: 2, Product: ProductSnapshot{Price: 10, CarbonFootprint: 5}}}

	without := ComputeTotals(items, true, false)
	with := ComputeTotals(items, true, true)
	if !approx(without.CarbonFootprint-with.CarbonFootprint, 8) {
		t.Fatalf("expected offset of 8, got %v", without.CarbonFootprint-with.CarbonFootprint)
	}

	standard := ComputeTotals(items, false, true)
	if !approx(standard.CarbonFootprint, 10+2.0-8) {
		t.Fatalf("delivery term should be unaffected by the offset, got %v", standard.CarbonFootprint)
	}
}

func TestCarbonEfficiency(t *testing.T) {
	tests := []struct {
		price, footprint float64
		want             string
	}{
		{price: 10, footprint: 0, want: "Not Available"},
		{price: 10, footprint: -1, want: "Not Available"},
		{price: 500, footprint: 2, want: "Excellent"},
		{price: 120, footprint: 2, want: "Good"},
		{price: 100, footprint: 2, want: "Average"},
		{price: 40, footprint: 2, want: "Poor"},
	}
	for _, tt := range tests {
		got := ProductSnapshot{Price: tt.price, CarbonFootprint: tt.footprint}.CarbonEfficiency()
		if got != tt.want {
			t.Fatalf("price=%v footprint=%v: expected %s got %s", tt.price, tt.footprint, tt.want, got)
		}
	}
}

func TestGreenMetrics(t *testing.T) {
	state := Reduce(NewState(), AddItem{ProductID: "p1", Quantity: 2, Product: ProductSnapshot{Price: 10, CarbonFootprint: 5, SustainabilityScore: 85}})
	state = Reduce(state, AddItem{ProductID: "p2", Quantity: 1, Product: ProductSnapshot{Price: 3, CarbonFootprint: 1, SustainabilityScore: 70}})

	metrics := state.GreenMetrics()
	if metrics.SustainableItemsCount != 1 {
		t.Fatalf("score 70 is not sustainable, expected 1 got %d", metrics.SustainableItemsCount)
	}
	if !approx(metrics.CarbonSaved, 1.5) {
		t.Fatalf("expected green delivery saving 1.5, got %v", metrics.CarbonSaved)
	}

	state = Reduce(state, ToggleCarbonOffset{})
	metrics = state.GreenMetrics()
	if !approx(metrics.CarbonSaved, 1.5+0.8*11) {
		t.Fatalf("expected saving with offset, got %v", metrics.CarbonSaved)
	}
	if metrics.CarbonFootprint != state.CarbonFootprint || !metrics.CarbonOffset || !metrics.GreenDelivery {
		t.Fatalf("metrics should mirror state, got %+v", metrics)
	}
}
