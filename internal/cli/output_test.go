package cli

import (
	"bytes"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/greencart/internal/cart"
	"github.com/angelmondragon/greencart/internal/remote"
	pkgerrors "github.com/angelmondragon/greencart/pkg/errors"
)

func newGoldie(t *testing.T) *goldie.Goldie {
	return goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
}

func TestTextStateMatchesGolden(t *testing.T) {
	state := cart.State{
		Items: []cart.Line{
			{ProductID: "mock-2", Quantity: 2, Product: cart.ProductSnapshot{Name: "Organic Cotton T-Shirt", Price: 29.99, CarbonFootprint: 5}},
			{ProductID: "mock-9", Quantity: 1, Product: cart.ProductSnapshot{Price: 3.5, CarbonFootprint: 0.25}},
		},
		GreenDelivery:   true,
		TotalItems:      3,
		TotalPrice:      63.48,
		CarbonFootprint: 10.75,
		LastError:       "Error during checkout",
	}

	var buf bytes.Buffer
	require.NoError(t, printer{format: formatText, out: &buf}.state(state))
	newGoldie(t).Assert(t, "state_text", buf.Bytes())
}

func TestTextEmptyStateMatchesGolden(t *testing.T) {
	state := cart.State{Items: []cart.Line{}, GreenDelivery: true, CarbonOffset: true, CarbonFootprint: 0.5}

	var buf bytes.Buffer
	require.NoError(t, printer{format: formatText, out: &buf}.state(state))
	newGoldie(t).Assert(t, "empty_state_text", buf.Bytes())
}

func TestJSONFailureUsesTypedCode(t *testing.T) {
	var buf bytes.Buffer
	p := printer{format: formatJSON, out: &buf}
	require.NoError(t, p.failure(pkgerrors.New(pkgerrors.CodeValidation, "Your cart is empty.")))

	assert.Contains(t, buf.String(), `"code": "VALIDATION_ERROR"`)
	assert.Contains(t, buf.String(), `"message": "Your cart is empty."`)
}

func TestTextFailureWritesNothing(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printer{format: formatText, out: &buf}.failure(assert.AnError))
	assert.Empty(t, buf.String())
}

func TestTextOrder(t *testing.T) {
	var buf bytes.Buffer
	order := &remote.OrderConfirmation{
		OrderID:      "ord-1",
		TotalPrice:   59.98,
		Items:        []cart.Line{{ProductID: "mock-2", Quantity: 2}},
		GreenMetrics: cart.GreenMetrics{CarbonSaved: 1.25},
	}
	require.NoError(t, printer{format: formatText, out: &buf}.order(order))
	assert.Equal(t, "order ord-1 placed: $59.98 for 1 line(s)\ncarbon saved: 1.25 kg CO2\n", buf.String())
}
