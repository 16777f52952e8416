package persistence

import (
	"context"

	pkgerrors "github.com/angelmondragon/greencart/pkg/errors"
	"github.com/angelmondragon/greencart/pkg/logger"
)

type failureRecorder interface {
	IncPersistenceFailure(op string)
}

// Safe wraps a Store so that callers never see a persistence failure. Load
// treats any error, including a corrupt blob, as "nothing stored"; Save and
// Clear log and count failures and return nothing.
type Safe struct {
	store   Store
	logg    *logger.Logger
	metrics failureRecorder
}

func NewSafe(store Store, logg *logger.Logger, metrics failureRecorder) *Safe {
	if logg == nil {
		logg = logger.Nop()
	}
	return &Safe{store: store, logg: logg, metrics: metrics}
}

func (s *Safe) Load(ctx context.Context) *Snapshot {
	if s == nil || s.store == nil {
		return nil
	}
	snapshot, err := s.store.Load(ctx)
	if err != nil {
		s.fail(ctx, "load", err)
		return nil
	}
	return snapshot
}

func (s *Safe) Save(ctx context.Context, snapshot Snapshot) {
	if s == nil || s.store == nil {
		return
	}
	if err := s.store.Save(ctx, snapshot); err != nil {
		s.fail(ctx, "save", err)
	}
}

func (s *Safe) Clear(ctx context.Context) {
	if s == nil || s.store == nil {
		return
	}
	if err := s.store.Clear(ctx); err != nil {
		s.fail(ctx, "clear", err)
	}
}

func (s *Safe) fail(ctx context.Context, op string, err error) {
	if s.metrics != nil {
		s.metrics.IncPersistenceFailure(op)
	}
	ctx = s.logg.WithFields(ctx, pkgerrors.Dump(err).Fields())
	s.logg.Warn(s.logg.WithField(ctx, "persistence_op", op), "cart persistence failed")
}
