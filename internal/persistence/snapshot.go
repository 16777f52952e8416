package persistence

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/angelmondragon/greencart/internal/cart"
)

// ErrCorrupt marks a stored blob that could not be decoded.
var ErrCorrupt = errors.New("persistence: corrupt cart snapshot")

// Snapshot is the persisted projection of a cart. Transient status fields
// are never stored.
type Snapshot struct {
	Items           []cart.Line `json:"items"`
	GreenDelivery   bool        `json:"greenDelivery"`
	CarbonOffset    bool        `json:"carbonOffset"`
	TotalItemCount  int         `json:"totalItemCount"`
	TotalPrice      float64     `json:"totalPrice"`
	CarbonFootprint float64     `json:"carbonFootprint"`
}

func FromState(s cart.State) Snapshot {
	items := make([]cart.Line, len(s.Items))
	copy(items, s.Items)
	return Snapshot{
		Items:           items,
		GreenDelivery:   s.GreenDelivery,
		CarbonOffset:    s.CarbonOffset,
		TotalItemCount:  s.TotalItems,
		TotalPrice:      s.TotalPrice,
		CarbonFootprint: s.CarbonFootprint,
	}
}

// Hydrate converts the snapshot into the reducer intent that restores it.
// Stored totals are ignored; the reducer derives them from the items.
func (s Snapshot) Hydrate() cart.Hydrate {
	return cart.Hydrate{Items: s.Items, GreenDelivery: s.GreenDelivery, CarbonOffset: s.CarbonOffset}
}

func Encode(s Snapshot) ([]byte, error) {
	if s.Items == nil {
		s.Items = []cart.Line{}
	}
	return json.Marshal(s)
}

func Decode(raw []byte) (*Snapshot, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, fmt.Errorf("%w: empty blob", ErrCorrupt)
	}
	var s Snapshot
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	return &s, nil
}
