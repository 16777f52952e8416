package cart

import "math"

// ProductSnapshot is the denormalized product data a line carries so totals
// can be computed without a remote round trip.
type ProductSnapshot struct {
	Name                string  `json:"name,omitempty"`
	Price               float64 `json:"price"`
	CarbonFootprint     float64 `json:"carbonFootprint"`
	SustainabilityScore int     `json:"sustainabilityScore"`
	Image               string  `json:"image,omitempty"`
}

const sustainableScoreThreshold = 70

// MaxQuantity is the largest quantity a single line can hold. Adds past it
// saturate.
const MaxQuantity = 9999

// Valid reports whether price and footprint are finite and not negative.
func (p ProductSnapshot) Valid() bool {
	return usable(p.Price) && usable(p.CarbonFootprint)
}

func usable(v float64) bool {
	return v >= 0 && !math.IsInf(v, 1)
}

// Sustainable reports whether the product counts toward the sustainable items metric.
func (p ProductSnapshot) Sustainable() bool {
	return p.SustainabilityScore > sustainableScoreThreshold
}

// CarbonEfficiency rates price per unit of footprint.
func (p ProductSnapshot) CarbonEfficiency() string {
	if p.CarbonFootprint <= 0 {
		return "Not Available"
	}
	ratio := p.Price / p.CarbonFootprint
	switch {
	case ratio > 100:
		return "Excellent"
	case ratio > 50:
		return "Good"
	case ratio > 20:
		return "Average"
	default:
		return "Poor"
	}
}

// Line is one product/quantity pair. Quantity is always in [1, MaxQuantity].
type Line struct {
	ProductID string          `json:"productId"`
	Quantity  int             `json:"quantity"`
	Product   ProductSnapshot `json:"productSnapshot"`
}

// State is the cart aggregate. Totals are derived from Items and the two
// flags and are only ever written by Reduce.
type State struct {
	Items           []Line  `json:"items"`
	GreenDelivery   bool    `json:"greenDelivery"`
	CarbonOffset    bool    `json:"carbonOffset"`
	TotalItems      int     `json:"totalItemCount"`
	TotalPrice      float64 `json:"totalPrice"`
	CarbonFootprint float64 `json:"carbonFootprint"`

	Loading   bool   `json:"loading"`
	LastError string `json:"lastError,omitempty"`
}

// NewState returns the empty cart: no items, green delivery on, no offset.
func NewState() State {
	return withTotals(State{Items: []Line{}, GreenDelivery: true})
}

// Line returns the line for productID, if present.
func (s State) Line(productID string) (Line, bool) {
	for _, line := range s.Items {
		if line.ProductID == productID {
			return line, true
		}
	}
	return Line{}, false
}

// IsEmpty reports whether the cart has no lines.
func (s State) IsEmpty() bool {
	return len(s.Items) == 0
}

// SameCart reports whether the persisted projection of s and other match.
// Loading and LastError are not part of it.
func (s State) SameCart(other State) bool {
	if s.GreenDelivery != other.GreenDelivery || s.CarbonOffset != other.CarbonOffset {
		return false
	}
	if len(s.Items) != len(other.Items) {
		return false
	}
	for i := range s.Items {
		if s.Items[i] != other.Items[i] {
			return false
		}
	}
	return s.TotalItems == other.TotalItems &&
		s.TotalPrice == other.TotalPrice &&
		s.CarbonFootprint == other.CarbonFootprint
}

// Clone returns a copy whose Items slice does not alias s.
func (s State) Clone() State {
	out := s
	out.Items = make([]Line, len(s.Items))
	copy(out.Items, s.Items)
	return out
}

// GreenMetrics summarizes the sustainability side of a cart.
type GreenMetrics struct {
	CarbonFootprint       float64 `json:"carbonFootprint"`
	CarbonSaved           float64 `json:"carbonSaved"`
	SustainableItemsCount int     `json:"sustainableItemsCount"`
	GreenDelivery         bool    `json:"greenDelivery"`
	CarbonOffset          bool    `json:"carbonOffset"`
}

// GreenMetrics derives the metrics for the current state.
func (s State) GreenMetrics() GreenMetrics {
	sustainable := 0
	for _, line := range s.Items {
		if line.Product.Sustainable() {
			sustainable++
		}
	}
	saved := offsetAmount(s.Items, s.CarbonOffset)
	if s.GreenDelivery {
		saved = saved.Add(deliveryFootprint(false).Sub(deliveryFootprint(true)))
	}
	return GreenMetrics{
		CarbonFootprint:       s.CarbonFootprint,
		CarbonSaved:           round(saved.InexactFloat64()),
		SustainableItemsCount: sustainable,
		GreenDelivery:         s.GreenDelivery,
		CarbonOffset:          s.CarbonOffset,
	}
}

func round(v float64) float64 {
	return math.Round(v*1e6) / 1e6
}
