package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/greencart/api/responses"
	"github.com/angelmondragon/greencart/api/validators"
	"github.com/angelmondragon/greencart/internal/cart"
	pkgerrors "github.com/angelmondragon/greencart/pkg/errors"
	"github.com/angelmondragon/greencart/pkg/logger"
)

type cartResponse struct {
	cart.State
	GreenMetrics cart.GreenMetrics `json:"greenMetrics"`
}

func newCartResponse(s cart.State) cartResponse {
	return cartResponse{State: s, GreenMetrics: s.GreenMetrics()}
}

type productPayload struct {
	Name                string  `json:"name" validate:"required,max=200"`
	Price               float64 `json:"price" validate:"gte=0"`
	CarbonFootprint     float64 `json:"carbonFootprint" validate:"gte=0"`
	SustainabilityScore int     `json:"sustainabilityScore" validate:"gte=0,lte=100"`
	Image               string  `json:"image,omitempty" validate:"omitempty,max=2048"`
}

func (p productPayload) snapshot() cart.ProductSnapshot {
	return cart.ProductSnapshot{
		Name:                validators.SanitizeString(p.Name, 200),
		Price:               p.Price,
		CarbonFootprint:     p.CarbonFootprint,
		SustainabilityScore: p.SustainabilityScore,
		Image:               validators.SanitizeString(p.Image, 2048),
	}
}

// addItemRequest only caps quantity; the reducer treats anything below 1
// as 1. The cap matches cart.MaxQuantity.
type addItemRequest struct {
	ProductID string         `json:"productId" validate:"required"`
	Quantity  int            `json:"quantity" validate:"lte=9999"`
	Product   productPayload `json:"product"`
}

type setQuantityRequest struct {
	Quantity int `json:"quantity" validate:"gte=1,lte=9999"`
}

func CartGet(engine CartEngine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, newCartResponse(engine.State()))
	}
}

func CartAddItem(engine CartEngine, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload addItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		productID, err := validators.ProductID(payload.ProductID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		state := engine.AddItem(productID, payload.Quantity, payload.Product.snapshot())
		responses.WriteSuccess(w, newCartResponse(state))
	}
}

func CartSetQuantity(engine CartEngine, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := validators.ProductID(chi.URLParam(r, "productId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload setQuantityRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		state := engine.SetQuantity(productID, payload.Quantity)
		if _, ok := state.Line(productID); !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "item not in cart").
				WithDetails(map[string]any{"productId": productID}))
			return
		}
		responses.WriteSuccess(w, newCartResponse(state))
	}
}

func CartRemoveItem(engine CartEngine, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := validators.ProductID(chi.URLParam(r, "productId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartResponse(engine.RemoveItem(productID)))
	}
}

func CartToggleGreenDelivery(engine CartEngine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, newCartResponse(engine.ToggleGreenDelivery()))
	}
}

func CartToggleCarbonOffset(engine CartEngine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, newCartResponse(engine.ToggleCarbonOffset()))
	}
}

// CartSync reconciles with the cart service. On failure the engine has
// already fallen back to the stored cart; the error is still reported.
func CartSync(engine CartEngine, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		showLoading, err := validators.ParseQueryBool(r, "loading", true)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		state, err := engine.FetchCart(r.Context(), showLoading)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartResponse(state))
	}
}
