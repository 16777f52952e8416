package remote

import (
	"context"
	"sync/atomic"
)

// Connectivity is the local "are we online at all" signal, checked before
// any request is built.
type Connectivity interface {
	Online(ctx context.Context) bool
}

type AlwaysOnline struct{}

func (AlwaysOnline) Online(context.Context) bool { return true }

// OnlineFunc adapts a function to Connectivity.
type OnlineFunc func(ctx context.Context) bool

func (f OnlineFunc) Online(ctx context.Context) bool { return f(ctx) }

// Switch is a settable connectivity signal, flipped by UI collaborators that
// observe the platform's online/offline events.
type Switch struct {
	offline atomic.Bool
}

func NewSwitch(online bool) *Switch {
	s := &Switch{}
	s.offline.Store(!online)
	return s
}

func (s *Switch) Online(context.Context) bool { return !s.offline.Load() }

func (s *Switch) Set(online bool) { s.offline.Store(!online) }
