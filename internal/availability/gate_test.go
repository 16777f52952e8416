package availability

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/angelmondragon/greencart/pkg/enums"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)

func TestGateStartsAvailable(t *testing.T) {
	g := NewGate(time.Minute)
	assert.True(t, g.Available())
	assert.True(t, g.PermitAttempt(t0))
	assert.True(t, g.PermitAttempt(t0))
	assert.Equal(t, enums.GateStatusAvailable, g.Snapshot().Status)
}

func TestGateCooldownBoundary(t *testing.T) {
	cooldown := 60 * time.Second
	g := NewGate(cooldown)
	g.RecordFailure(t0)

	require.False(t, g.Available())
	assert.False(t, g.PermitAttempt(t0.Add(cooldown-time.Millisecond)))
	assert.True(t, g.PermitAttempt(t0.Add(cooldown)))
}

func TestGateProbeStampsWindow(t *testing.T) {
	g := NewGate(time.Minute)
	g.RecordFailure(t0)

	probe := t0.Add(2 * time.Minute)
	require.True(t, g.PermitAttempt(probe))
	assert.False(t, g.PermitAttempt(probe), "second attempt in the same window must be refused")
	assert.False(t, g.PermitAttempt(probe.Add(59*time.Second)))
	assert.True(t, g.PermitAttempt(probe.Add(time.Minute)))
}

func TestGateBurstYieldsSingleProbe(t *testing.T) {
	g := NewGate(time.Minute)
	g.RecordFailure(t0)
	at := t0.Add(time.Minute)

	var permitted atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if g.PermitAttempt(at) {
				permitted.Add(1)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), permitted.Load())
}

func TestGateSuccessRestoresAvailability(t *testing.T) {
	g := NewGate(time.Minute)
	g.RecordFailure(t0)
	g.RecordSuccess(t0.Add(time.Second))

	assert.True(t, g.Available())
	assert.True(t, g.PermitAttempt(t0.Add(2*time.Second)))
	assert.Nil(t, g.Snapshot().LastFailure)
}

func TestGateSnapshotWhileUnavailable(t *testing.T) {
	g := NewGate(30 * time.Second)
	g.RecordFailure(t0)

	snap := g.Snapshot()
	require.Equal(t, enums.GateStatusUnavailable, snap.Status)
	require.NotNil(t, snap.LastFailure)
	require.NotNil(t, snap.NextAttempt)
	assert.Equal(t, t0, *snap.LastFailure)
	assert.Equal(t, t0.Add(30*time.Second), *snap.NextAttempt)
}

func TestGateObserverSeesTransitionsOnly(t *testing.T) {
	var seen []enums.GateStatus
	g := NewGate(time.Minute, WithObserver(func(status enums.GateStatus, _ time.Time) {
		seen = append(seen, status)
	}))

	g.RecordSuccess(t0)
	g.RecordFailure(t0)
	g.RecordFailure(t0.Add(time.Second))
	g.RecordSuccess(t0.Add(2 * time.Second))

	assert.Equal(t, []enums.GateStatus{enums.GateStatusUnavailable, enums.GateStatusAvailable}, seen)
}

func TestNewGateDefaultsCooldown(t *testing.T) {
	assert.Equal(t, DefaultCooldown, NewGate(0).Snapshot().Cooldown)
}
