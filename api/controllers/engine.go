package controllers

import (
	"context"

	"github.com/angelmondragon/greencart/internal/availability"
	"github.com/angelmondragon/greencart/internal/cart"
	"github.com/angelmondragon/greencart/internal/remote"
)

// CartEngine is the engine surface exposed to UI collaborators.
type CartEngine interface {
	State() cart.State
	AddItem(productID string, quantity int, product cart.ProductSnapshot) cart.State
	RemoveItem(productID string) cart.State
	SetQuantity(productID string, quantity int) cart.State
	ToggleGreenDelivery() cart.State
	ToggleCarbonOffset() cart.State
	FetchCart(ctx context.Context, showLoading bool) (cart.State, error)
	Checkout(ctx context.Context) (*remote.OrderConfirmation, error)
	Gate() *availability.Gate
	Online(ctx context.Context) bool
}

// ConnectivitySwitch is the manual online/offline signal, when the bridge
// owns one.
type ConnectivitySwitch interface {
	Online(ctx context.Context) bool
	Set(online bool)
}

type Pinger interface {
	Ping(ctx context.Context) error
}
