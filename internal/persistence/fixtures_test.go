package persistence

import (
	"context"
	"errors"

	"github.com/angelmondragon/greencart/internal/cart"
)

func sampleState() cart.State {
	state := cart.Reduce(cart.NewState(), cart.AddItem{
		ProductID: "p1",
		Quantity:  2,
		Product:   cart.ProductSnapshot{Name: "Bamboo Toothbrush", Price: 10, CarbonFootprint: 5, SustainabilityScore: 90},
	})
	return cart.Reduce(state, cart.AddItem{
		ProductID: "p2",
		Quantity:  1,
		Product:   cart.ProductSnapshot{Name: "Organic Cotton Tote", Price: 12.5, CarbonFootprint: 1.2, SustainabilityScore: 75, Image: "/img/tote.jpg"},
	})
}

type failingStore struct {
	err error
}

func (f failingStore) Load(context.Context) (*Snapshot, error) { return nil, f.err }
func (f failingStore) Save(context.Context, Snapshot) error    { return f.err }
func (f failingStore) Clear(context.Context) error             { return f.err }

var errBackend = errors.New("quota exceeded")

type countingRecorder struct {
	ops []string
}

func (c *countingRecorder) IncPersistenceFailure(op string) {
	c.ops = append(c.ops, op)
}
