package remotetest

import (
	"encoding/json"
	"net/http"
)

type itemResponse struct {
	Product  Product `json:"product"`
	Quantity int     `json:"quantity"`
}

type cartDocument struct {
	Items         []itemResponse `json:"items"`
	GreenDelivery bool           `json:"greenDelivery"`
	CarbonOffset  bool           `json:"carbonOffset"`
}

type greenMetricsResponse struct {
	CarbonFootprint       float64 `json:"carbonFootprint"`
	CarbonSaved           float64 `json:"carbonSaved,omitempty"`
	SustainableItemsCount int     `json:"sustainableItemsCount"`
	GreenDelivery         bool    `json:"greenDelivery"`
	CarbonOffset          bool    `json:"carbonOffset"`
}

type cartResponse struct {
	Cart         cartDocument         `json:"cart"`
	TotalPrice   float64              `json:"totalPrice"`
	TotalItems   int                  `json:"totalItems"`
	GreenMetrics greenMetricsResponse `json:"greenMetrics"`
}

type checkoutResponse struct {
	OrderID      string               `json:"orderId"`
	TotalPrice   float64              `json:"totalPrice"`
	Items        []itemResponse       `json:"items"`
	GreenMetrics greenMetricsResponse `json:"greenMetrics"`
}

func writeSuccess(w http.ResponseWriter, message string, data any) {
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": message, "data": data})
}

func writeFailure(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"success": false, "message": message})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
