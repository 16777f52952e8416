package remote

import (
	"bytes"
	"encoding/json"
	"math"

	"github.com/angelmondragon/greencart/internal/cart"
)

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

type wireProduct struct {
	ID                  string  `json:"_id"`
	Name                string  `json:"name,omitempty"`
	Price               float64 `json:"price"`
	Image               string  `json:"image,omitempty"`
	CarbonFootprint     float64 `json:"carbonFootprint"`
	SustainabilityScore float64 `json:"sustainabilityScore"`
}

// UnmarshalJSON accepts either a populated product document or a bare id.
func (p *wireProduct) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '"' {
		return json.Unmarshal(trimmed, &p.ID)
	}
	type plain wireProduct
	var out plain
	if err := json.Unmarshal(trimmed, &out); err != nil {
		return err
	}
	*p = wireProduct(out)
	return nil
}

type wireItem struct {
	Product  wireProduct `json:"product"`
	Quantity int         `json:"quantity"`
}

type wireGreenMetrics struct {
	CarbonFootprint       float64 `json:"carbonFootprint"`
	CarbonSaved           float64 `json:"carbonSaved,omitempty"`
	SustainableItemsCount int     `json:"sustainableItemsCount,omitempty"`
	GreenDelivery         *bool   `json:"greenDelivery,omitempty"`
	CarbonOffset          *bool   `json:"carbonOffset,omitempty"`
}

type wireCart struct {
	Items         []wireItem `json:"items"`
	GreenDelivery *bool      `json:"greenDelivery,omitempty"`
	CarbonOffset  *bool      `json:"carbonOffset,omitempty"`
}

type cartData struct {
	Cart         wireCart         `json:"cart"`
	TotalPrice   float64          `json:"totalPrice"`
	TotalItems   int              `json:"totalItems"`
	GreenMetrics wireGreenMetrics `json:"greenMetrics"`
}

type greenOptionsData struct {
	GreenDelivery   bool    `json:"greenDelivery"`
	CarbonOffset    bool    `json:"carbonOffset"`
	CarbonFootprint float64 `json:"carbonFootprint"`
}

type checkoutData struct {
	OrderID      string           `json:"orderId"`
	TotalPrice   float64          `json:"totalPrice"`
	Items        []wireItem       `json:"items"`
	GreenMetrics wireGreenMetrics `json:"greenMetrics"`
}

type addRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
	UserID    string `json:"userId"`
}

type greenOptionsRequest struct {
	UserID        string `json:"userId"`
	GreenDelivery *bool  `json:"greenDelivery,omitempty"`
	CarbonOffset  *bool  `json:"carbonOffset,omitempty"`
}

type checkoutRequest struct {
	UserID        string `json:"userId"`
	GreenDelivery bool   `json:"greenDelivery"`
	CarbonOffset  bool   `json:"carbonOffset"`
}

func toLines(items []wireItem) []cart.Line {
	lines := make([]cart.Line, 0, len(items))
	for _, item := range items {
		lines = append(lines, cart.Line{
			ProductID: item.Product.ID,
			Quantity:  item.Quantity,
			Product: cart.ProductSnapshot{
				Name:                item.Product.Name,
				Price:               item.Product.Price,
				CarbonFootprint:     item.Product.CarbonFootprint,
				SustainabilityScore: int(math.Round(item.Product.SustainabilityScore)),
				Image:               item.Product.Image,
			},
		})
	}
	return lines
}

func firstBool(fallback bool, values ...*bool) bool {
	for _, v := range values {
		if v != nil {
			return *v
		}
	}
	return fallback
}
