package persistence

import (
	"errors"
	"testing"

	"github.com/angelmondragon/greencart/internal/cart"
	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeMatchesGoldenBlob(t *testing.T) {
	raw, err := Encode(FromState(sampleState()))
	require.NoError(t, err)

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "cart_snapshot", raw)
}

func TestEncodeEmptyCartWritesEmptyItems(t *testing.T) {
	raw, err := Encode(Snapshot{GreenDelivery: true, CarbonFootprint: 0.5})
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"items":[]`)
}

func TestDecodeRoundTripRestoresCart(t *testing.T) {
	state := sampleState()
	raw, err := Encode(FromState(state))
	require.NoError(t, err)

	snapshot, err := Decode(raw)
	require.NoError(t, err)

	restored := cart.Reduce(cart.NewState(), snapshot.Hydrate())
	assert.True(t, restored.SameCart(state))
}

func TestDecodeRejectsCorruptBlobs(t *testing.T) {
	for _, raw := range []string{"", "   ", "{not json", `{"items":"nope"}`} {
		_, err := Decode([]byte(raw))
		require.Error(t, err, "blob %q", raw)
		assert.True(t, errors.Is(err, ErrCorrupt), "blob %q: %v", raw, err)
	}
}

func TestHydrateIgnoresStoredTotals(t *testing.T) {
	snapshot := FromState(sampleState())
	snapshot.TotalPrice = 9999
	snapshot.TotalItemCount = 42

	restored := cart.Reduce(cart.NewState(), snapshot.Hydrate())
	assert.Equal(t, 3, restored.TotalItems)
	assert.InDelta(t, 32.5, restored.TotalPrice, 1e-9)
}
