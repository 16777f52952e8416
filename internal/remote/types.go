package remote

import "github.com/angelmondragon/greencart/internal/cart"

// CartSnapshot is the remote service's authoritative view of a cart.
type CartSnapshot struct {
	Items                 []cart.Line
	GreenDelivery         bool
	CarbonOffset          bool
	TotalItems            int
	TotalPrice            float64
	CarbonFootprint       float64
	SustainableItemsCount int
}

// Intent converts the snapshot into the reducer's replace intent.
func (s CartSnapshot) Intent() cart.ReplaceFromRemote {
	return cart.ReplaceFromRemote{Items: s.Items, GreenDelivery: s.GreenDelivery, CarbonOffset: s.CarbonOffset}
}

// GreenOptions carries the flags to update; nil fields are left unchanged.
type GreenOptions struct {
	GreenDelivery *bool
	CarbonOffset  *bool
}

type GreenOptionsResult struct {
	GreenDelivery   bool
	CarbonOffset    bool
	CarbonFootprint float64
}

type CheckoutRequest struct {
	GreenDelivery  bool
	CarbonOffset   bool
	IdempotencyKey string
}

// OrderConfirmation is returned by a successful checkout.
type OrderConfirmation struct {
	OrderID      string            `json:"orderId"`
	TotalPrice   float64           `json:"totalPrice"`
	Items        []cart.Line       `json:"items"`
	GreenMetrics cart.GreenMetrics `json:"greenMetrics"`
}
