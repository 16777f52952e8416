package cart

import (
	"math"

	"github.com/shopspring/decimal"
)

// Delivery and offset policy, in kg CO2e.
const (
	GreenDeliveryFootprint    = 0.5
	StandardDeliveryFootprint = 2.0
	CarbonOffsetRatio         = 0.8
)

// Totals are the values derived from a cart's lines and flags.
type Totals struct {
	Items           int
	Price           float64
	CarbonFootprint float64
}

// ComputeTotals derives item count, price and carbon footprint. It is pure and
// defined for the empty sequence, where only the delivery term remains.
func ComputeTotals(items []Line, greenDelivery, carbonOffset bool) Totals {
	count := 0
	price := decimal.Zero
	for _, line := range items {
		qty := decimal.NewFromInt(int64(line.Quantity))
		count += line.Quantity
		price = price.Add(amount(line.Product.Price).Mul(qty))
	}

	footprint := productFootprint(items).
		Add(deliveryFootprint(greenDelivery)).
		Sub(offsetAmount(items, carbonOffset))

	return Totals{
		Items:           count,
		Price:           price.InexactFloat64(),
		CarbonFootprint: footprint.InexactFloat64(),
	}
}

func productFootprint(items []Line) decimal.Decimal {
	sum := decimal.Zero
	for _, line := range items {
		qty := decimal.NewFromInt(int64(line.Quantity))
		sum = sum.Add(amount(line.Product.CarbonFootprint).Mul(qty))
	}
	return sum
}

// amount converts a per-unit value, counting NaN and infinities as zero.
func amount(v float64) decimal.Decimal {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return decimal.Zero
	}
	return decimal.NewFromFloat(v)
}

func deliveryFootprint(green bool) decimal.Decimal {
	if green {
		return decimal.NewFromFloat(GreenDeliveryFootprint)
	}
	return decimal.NewFromFloat(StandardDeliveryFootprint)
}

func offsetAmount(items []Line, carbonOffset bool) decimal.Decimal {
	if !carbonOffset {
		return decimal.Zero
	}
	return productFootprint(items).Mul(decimal.NewFromFloat(CarbonOffsetRatio))
}

func withTotals(s State) State {
	t := ComputeTotals(s.Items, s.GreenDelivery, s.CarbonOffset)
	s.TotalItems = t.Items
	s.TotalPrice = t.Price
	s.CarbonFootprint = t.CarbonFootprint
	return s
}
