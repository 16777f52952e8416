package availability

import (
	"sync"
	"time"

	"github.com/angelmondragon/greencart/pkg/enums"
)

// DefaultCooldown is how long the gate waits after a connectivity failure
// before letting a single probe through.
const DefaultCooldown = 60 * time.Second

// Observer is notified on every Available/Unavailable transition.
type Observer func(status enums.GateStatus, at time.Time)

// Gate decides whether a remote call is worth attempting. It starts
// Available, flips to Unavailable on a connectivity failure and lets one
// attempt through per cooldown window until a call succeeds.
type Gate struct {
	mu          sync.Mutex
	available   bool
	lastFailure time.Time
	cooldown    time.Duration
	observers   []Observer
}

type Option func(*Gate)

// WithObserver registers fn for status transitions. Observers run with the
// gate lock released.
func WithObserver(fn Observer) Option {
	return func(g *Gate) {
		if fn != nil {
			g.observers = append(g.observers, fn)
		}
	}
}

// NewGate builds an Available gate. A non-positive cooldown falls back to
// DefaultCooldown.
func NewGate(cooldown time.Duration, opts ...Option) *Gate {
	if cooldown <= 0 {
		cooldown = DefaultCooldown
	}
	g := &Gate{available: true, cooldown: cooldown}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// PermitAttempt reports whether a remote call may be made at now. While
// Unavailable it returns true at most once per cooldown window and stamps
// the window start, so a burst of intents yields a single probe.
func (g *Gate) PermitAttempt(now time.Time) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.available {
		return true
	}
	if now.Sub(g.lastFailure) >= g.cooldown {
		g.lastFailure = now
		return true
	}
	return false
}

// RecordSuccess marks the remote service reachable.
func (g *Gate) RecordSuccess(now time.Time) {
	g.mu.Lock()
	changed := !g.available
	g.available = true
	g.lastFailure = time.Time{}
	observers := g.observers
	g.mu.Unlock()

	if changed {
		notify(observers, enums.GateStatusAvailable, now)
	}
}

// RecordFailure marks the remote service unreachable as of now. Only
// connectivity failures should be recorded here.
func (g *Gate) RecordFailure(now time.Time) {
	g.mu.Lock()
	changed := g.available
	g.available = false
	g.lastFailure = now
	observers := g.observers
	g.mu.Unlock()

	if changed {
		notify(observers, enums.GateStatusUnavailable, now)
	}
}

// Available reports the current belief without consuming a probe.
func (g *Gate) Available() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.available
}

// Snapshot is a point-in-time view for diagnostics.
type Snapshot struct {
	Status      enums.GateStatus `json:"status"`
	LastFailure *time.Time       `json:"lastFailure,omitempty"`
	NextAttempt *time.Time       `json:"nextAttempt,omitempty"`
	Cooldown    time.Duration    `json:"cooldown"`
}

func (g *Gate) Snapshot() Snapshot {
	g.mu.Lock()
	defer g.mu.Unlock()
	snap := Snapshot{Status: enums.GateStatusAvailable, Cooldown: g.cooldown}
	if !g.available {
		last := g.lastFailure
		next := last.Add(g.cooldown)
		snap.Status = enums.GateStatusUnavailable
		snap.LastFailure = &last
		snap.NextAttempt = &next
	}
	return snap
}

func notify(observers []Observer, status enums.GateStatus, at time.Time) {
	for _, fn := range observers {
		fn(status, at)
	}
}
