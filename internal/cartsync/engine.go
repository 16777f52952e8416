package cartsync

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/angelmondragon/greencart/internal/availability"
	"github.com/angelmondragon/greencart/internal/cart"
	"github.com/angelmondragon/greencart/internal/persistence"
	"github.com/angelmondragon/greencart/internal/remote"
	"github.com/angelmondragon/greencart/pkg/enums"
	pkgerrors "github.com/angelmondragon/greencart/pkg/errors"
	"github.com/angelmondragon/greencart/pkg/logger"
	"github.com/angelmondragon/greencart/pkg/metrics"
	"github.com/google/uuid"
	"go.uber.org/multierr"
	"golang.org/x/sync/singleflight"
)

// Messages surfaced through State.LastError.
const (
	msgCheckoutOffline = "Cannot checkout while offline. Please try again when connected."
	msgCheckoutEmpty   = "Your cart is empty."
	msgCheckoutFailed  = "Error during checkout"
	msgFetchFailed     = "Could not load your cart from the server."
	msgFetchOffline    = "You are offline. Showing your saved cart."
)

// RemoteCart is the subset of the remote cart service the engine drives.
type RemoteCart interface {
	FetchCart(ctx context.Context) (*remote.CartSnapshot, error)
	AddItem(ctx context.Context, productID string, quantity int) (*remote.CartSnapshot, error)
	RemoveItem(ctx context.Context, productID string) (*remote.CartSnapshot, error)
	UpdateGreenOptions(ctx context.Context, opts remote.GreenOptions) (*remote.GreenOptionsResult, error)
	Checkout(ctx context.Context, req remote.CheckoutRequest) (*remote.OrderConfirmation, error)
}

// Params wires an Engine. Store and Remote are required.
type Params struct {
	Store        persistence.Store
	Remote       RemoteCart
	Connectivity remote.Connectivity
	Cooldown     time.Duration
	Logger       *logger.Logger
	Metrics      *metrics.SyncMetrics
	UserID       string
	Now          func() time.Time
	// NewIdempotencyKey defaults to random UUIDs.
	NewIdempotencyKey func() string
	// Closers are closed, in order, by Close.
	Closers []io.Closer
	// SaveTimeout bounds each store write. Defaults to DefaultSaveTimeout.
	SaveTimeout time.Duration
}

// DefaultSaveTimeout bounds a store write made while the engine lock is held.
const DefaultSaveTimeout = 2 * time.Second

// Engine owns the single authoritative cart state. Every transition goes
// through the reducer under one lock; remote propagation of mutating
// intents happens in the background and never rolls the local state back.
type Engine struct {
	mu    sync.Mutex
	state cart.State

	// held while subscribers run so they observe transitions in order
	notifyMu sync.Mutex
	subs     map[int]func(cart.State)
	nextSub  int

	checkoutMu sync.Mutex
	fetches    singleflight.Group

	store   *persistence.Safe
	remote  RemoteCart
	conn    remote.Connectivity
	gate    *availability.Gate
	logg    *logger.Logger
	metrics *metrics.SyncMetrics
	now     func() time.Time
	newKey  func() string
	closers []io.Closer

	saveTimeout time.Duration

	baseCtx context.Context
	rootCtx context.Context
	cancel  context.CancelFunc

	lifeMu sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

func New(p Params) (*Engine, error) {
	if p.Store == nil {
		return nil, fmt.Errorf("cart store required")
	}
	if p.Remote == nil {
		return nil, fmt.Errorf("remote cart client required")
	}
	if p.Connectivity == nil {
		p.Connectivity = remote.AlwaysOnline{}
	}
	if p.Logger == nil {
		p.Logger = logger.Nop()
	}
	if p.Now == nil {
		p.Now = time.Now
	}
	if p.NewIdempotencyKey == nil {
		p.NewIdempotencyKey = uuid.NewString
	}
	if p.SaveTimeout <= 0 {
		p.SaveTimeout = DefaultSaveTimeout
	}

	baseCtx := context.Background()
	if userID := strings.TrimSpace(p.UserID); userID != "" {
		baseCtx = p.Logger.WithUserID(baseCtx, userID)
	}
	rootCtx, cancel := context.WithCancel(baseCtx)

	e := &Engine{
		state:   cart.NewState(),
		subs:    map[int]func(cart.State){},
		store:   persistence.NewSafe(p.Store, p.Logger, p.Metrics),
		remote:  p.Remote,
		conn:    p.Connectivity,
		logg:    p.Logger,
		metrics: p.Metrics,
		now:     p.Now,
		newKey:  p.NewIdempotencyKey,
		closers: p.Closers,
		baseCtx: baseCtx,
		rootCtx: rootCtx,
		cancel:  cancel,

		saveTimeout: p.SaveTimeout,
	}
	e.gate = availability.NewGate(p.Cooldown, availability.WithObserver(e.onGateChange))
	return e, nil
}

// Hydrate loads the stored snapshot, if any, without touching the network.
func (e *Engine) Hydrate(ctx context.Context) cart.State {
	ctx = e.logg.WithOperation(e.withBase(ctx), "hydrate")
	snapshot := e.store.Load(ctx)
	if snapshot == nil {
		return e.State()
	}
	state := e.transition(snapshot.Hydrate(), false)
	e.logg.Info(e.logg.WithField(ctx, "items", len(state.Items)), "cart hydrated from local storage")
	return state
}

// Open hydrates the engine from local storage and starts a background
// fetch of the remote cart. It returns the hydrated state, marked loading
// until the fetch settles.
func (e *Engine) Open(ctx context.Context) cart.State {
	e.Hydrate(ctx)

	opened := e.transition(cart.BeginRequest{}, false)
	e.goTracked(func(ctx context.Context) {
		if _, err := e.FetchCart(ctx, true); err != nil {
			e.logg.Debug(e.logg.WithField(ctx, "error", err.Error()), "initial cart fetch did not apply")
		}
	})
	return opened
}

// State returns a copy of the current cart state.
func (e *Engine) State() cart.State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.Clone()
}

// Gate exposes the availability gate for diagnostics.
func (e *Engine) Gate() *availability.Gate {
	return e.gate
}

// Online reports the connectivity signal.
func (e *Engine) Online(ctx context.Context) bool {
	return e.conn.Online(ctx)
}

// Subscribe registers fn to receive every state transition. fn must not
// call mutating engine methods. The returned func unsubscribes.
func (e *Engine) Subscribe(fn func(cart.State)) func() {
	if fn == nil {
		return func() {}
	}
	e.notifyMu.Lock()
	id := e.nextSub
	e.nextSub++
	e.subs[id] = fn
	e.notifyMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			e.notifyMu.Lock()
			delete(e.subs, id)
			e.notifyMu.Unlock()
		})
	}
}

func (e *Engine) AddItem(productID string, quantity int, product cart.ProductSnapshot) cart.State {
	productID = strings.TrimSpace(productID)
	next := e.transition(cart.AddItem{ProductID: productID, Quantity: quantity, Product: product}, true)
	if productID == "" || !product.Valid() {
		return next
	}
	quantity = min(max(quantity, 1), cart.MaxQuantity)
	e.propagate(enums.OperationAddItem, func(ctx context.Context) error {
		_, err := e.remote.AddItem(ctx, productID, quantity)
		return err
	})
	return next
}

func (e *Engine) RemoveItem(productID string) cart.State {
	productID = strings.TrimSpace(productID)
	next := e.transition(cart.RemoveItem{ProductID: productID}, true)
	if productID == "" {
		return next
	}
	e.propagate(enums.OperationRemoveItem, func(ctx context.Context) error {
		_, err := e.remote.RemoveItem(ctx, productID)
		return err
	})
	return next
}

// SetQuantity changes a line's quantity locally. The remote service has no
// endpoint for it, so the change reaches the service at the next replace.
func (e *Engine) SetQuantity(productID string, quantity int) cart.State {
	next := e.transition(cart.SetQuantity{ProductID: strings.TrimSpace(productID), Quantity: quantity}, true)
	e.metrics.IncSkipped(enums.OperationSetQuantity.String(), "local_only")
	return next
}

func (e *Engine) ToggleGreenDelivery() cart.State {
	next := e.transition(cart.ToggleGreenDelivery{}, true)
	green := next.GreenDelivery
	e.propagate(enums.OperationGreenOptions, func(ctx context.Context) error {
		_, err := e.remote.UpdateGreenOptions(ctx, remote.GreenOptions{GreenDelivery: &green})
		return err
	})
	return next
}

func (e *Engine) ToggleCarbonOffset() cart.State {
	next := e.transition(cart.ToggleCarbonOffset{}, true)
	offset := next.CarbonOffset
	e.propagate(enums.OperationGreenOptions, func(ctx context.Context) error {
		_, err := e.remote.UpdateGreenOptions(ctx, remote.GreenOptions{CarbonOffset: &offset})
		return err
	})
	return next
}

// FetchCart replaces the local cart with the remote service's view. On any
// failure the cart falls back to the locally stored snapshot. Concurrent
// callers share one remote call. If ctx ends first the result is discarded.
func (e *Engine) FetchCart(ctx context.Context, showLoading bool) (cart.State, error) {
	ctx = e.logg.WithOperation(e.withBase(ctx), enums.OperationFetch.String())
	if showLoading {
		e.transition(cart.BeginRequest{}, false)
	}

	if reason, ok := e.permit(ctx); !ok {
		e.metrics.IncSkipped(enums.OperationFetch.String(), reason)
		err := pkgerrors.New(pkgerrors.CodeBackendUnavailable, "cart service unavailable, using the local cart").
			WithDetails(map[string]any{"reason": reason})
		return e.fallback(ctx, showLoading, err), err
	}

	ch := e.fetches.DoChan("fetch", func() (any, error) {
		start := time.Now()
		snapshot, err := e.remote.FetchCart(e.rootCtx)
		e.metrics.ObserveCall(enums.OperationFetch.String(), outcomeOf(err), time.Since(start))
		return snapshot, err
	})

	var res singleflight.Result
	select {
	case <-ctx.Done():
		return e.abandon(ctx, showLoading), ctx.Err()
	case res = <-ch:
	}
	if ctx.Err() != nil || e.rootCtx.Err() != nil {
		return e.abandon(ctx, showLoading), multierr.Combine(ctx.Err(), e.rootCtx.Err())
	}

	if res.Err != nil {
		e.recordFailure(ctx, res.Err)
		return e.fallback(ctx, showLoading, res.Err), res.Err
	}

	e.gate.RecordSuccess(e.now())
	snapshot := res.Val.(*remote.CartSnapshot)
	return e.transition(snapshot.Intent(), true), nil
}

// Checkout submits the cart. It is refused without a network call while the
// device is offline or the service is believed unavailable. On success the
// local cart and its stored snapshot are cleared.
func (e *Engine) Checkout(ctx context.Context) (*remote.OrderConfirmation, error) {
	ctx = e.logg.WithOperation(e.withBase(ctx), enums.OperationCheckout.String())
	e.checkoutMu.Lock()
	defer e.checkoutMu.Unlock()

	current := e.transition(cart.BeginRequest{}, false)

	if !e.conn.Online(ctx) || !e.gate.Available() {
		reason := "gate_unavailable"
		if !e.conn.Online(ctx) {
			reason = "offline"
		}
		e.metrics.IncSkipped(enums.OperationCheckout.String(), reason)
		e.transition(cart.RequestFailed{Message: msgCheckoutOffline}, false)
		e.logg.Warn(e.logg.WithField(ctx, "reason", reason), "checkout refused")
		return nil, pkgerrors.New(pkgerrors.CodeBackendUnavailable, msgCheckoutOffline).
			WithDetails(map[string]any{"reason": reason})
	}
	if current.IsEmpty() {
		e.transition(cart.RequestFailed{Message: msgCheckoutEmpty}, false)
		return nil, pkgerrors.New(pkgerrors.CodeValidation, msgCheckoutEmpty)
	}

	req := remote.CheckoutRequest{
		GreenDelivery:  current.GreenDelivery,
		CarbonOffset:   current.CarbonOffset,
		IdempotencyKey: e.newKey(),
	}
	ctx = e.logg.WithField(ctx, "idempotency_key", req.IdempotencyKey)

	start := time.Now()
	order, err := e.remote.Checkout(ctx, req)
	e.metrics.ObserveCall(enums.OperationCheckout.String(), outcomeOf(err), time.Since(start))

	if ctx.Err() != nil {
		e.transition(cart.EndRequest{}, false)
		return nil, ctx.Err()
	}
	if err != nil {
		e.recordFailure(ctx, err)
		e.transition(cart.RequestFailed{Message: checkoutMessage(err)}, false)
		return nil, err
	}

	e.gate.RecordSuccess(e.now())
	e.transition(cart.ClearCart{}, false)
	e.store.Clear(ctx)
	e.logg.Info(e.logg.WithField(ctx, "order_id", order.OrderID), "checkout completed")
	return order, nil
}

// WaitIdle blocks until background remote calls started so far have
// settled. It must not race with new intents.
func (e *Engine) WaitIdle() {
	e.wg.Wait()
}

// Close cancels in-flight remote calls, discards their results, waits for
// background work and closes the configured closers. Local intents keep
// working after Close but are no longer propagated.
func (e *Engine) Close() error {
	e.lifeMu.Lock()
	if e.closed {
		e.lifeMu.Unlock()
		return nil
	}
	e.closed = true
	e.cancel()
	e.lifeMu.Unlock()

	e.wg.Wait()

	var err error
	for _, c := range e.closers {
		if c != nil {
			err = multierr.Append(err, c.Close())
		}
	}
	return err
}

// transition applies intent under the engine lock, persists the new cart
// when it differs from the previous one and notifies subscribers in order.
func (e *Engine) transition(intent cart.Intent, persist bool) cart.State {
	out := e.apply(intent, persist)
	defer e.notifyMu.Unlock()
	for _, fn := range e.subs {
		fn(out.Clone())
	}
	return out
}

// apply returns with notifyMu held so subscribers see transitions in the
// order they were applied. e.mu is released even if the reducer panics.
func (e *Engine) apply(intent cart.Intent, persist bool) cart.State {
	e.mu.Lock()
	defer e.mu.Unlock()

	prev := e.state
	next := cart.Reduce(prev, intent)
	e.state = next
	if persist && !next.SameCart(prev) {
		ctx, cancel := context.WithTimeout(e.baseCtx, e.saveTimeout)
		e.store.Save(ctx, persistence.FromState(next))
		cancel()
	}

	e.notifyMu.Lock()
	return next.Clone()
}

// propagate runs call in the background when the gate and the connectivity
// signal permit it.
func (e *Engine) propagate(op enums.Operation, call func(ctx context.Context) error) {
	ctx := e.logg.WithOperation(e.baseCtx, op.String())
	if reason, ok := e.permit(ctx); !ok {
		e.metrics.IncSkipped(op.String(), reason)
		e.logg.Debug(e.logg.WithField(ctx, "reason", reason), "remote call skipped")
		return
	}

	e.goTracked(func(root context.Context) {
		start := time.Now()
		err := call(root)
		e.metrics.ObserveCall(op.String(), outcomeOf(err), time.Since(start))
		if root.Err() != nil {
			e.logg.Debug(ctx, "discarding remote result after close")
			return
		}
		if err != nil {
			e.recordFailure(ctx, err)
			return
		}
		e.gate.RecordSuccess(e.now())
	})
}

func (e *Engine) permit(ctx context.Context) (string, bool) {
	if e.rootCtx.Err() != nil {
		return "closed", false
	}
	if !e.conn.Online(ctx) {
		return "offline", false
	}
	if !e.gate.PermitAttempt(e.now()) {
		return "gate_unavailable", false
	}
	return "", true
}

// recordFailure flips the gate for connectivity failures only. Status
// errors mean the service answered.
func (e *Engine) recordFailure(ctx context.Context, err error) {
	ctx = e.logg.WithFields(ctx, pkgerrors.Dump(err).Fields())
	if remote.IsConnectivity(err) {
		e.gate.RecordFailure(e.now())
		e.logg.Warn(ctx, "cart service unreachable")
		return
	}
	e.logg.Warn(ctx, "cart service rejected request")
}

func (e *Engine) fallback(ctx context.Context, showLoading bool, err error) cart.State {
	if showLoading {
		e.transition(cart.RequestFailed{Message: fetchMessage(err)}, false)
	}
	snapshot := e.store.Load(ctx)
	if snapshot == nil {
		return e.State()
	}
	return e.transition(snapshot.Hydrate(), false)
}

func (e *Engine) abandon(ctx context.Context, showLoading bool) cart.State {
	e.logg.Debug(ctx, "fetch abandoned")
	if showLoading {
		return e.transition(cart.EndRequest{}, false)
	}
	return e.State()
}

func (e *Engine) goTracked(fn func(ctx context.Context)) {
	e.lifeMu.Lock()
	defer e.lifeMu.Unlock()
	if e.closed {
		return
	}
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		fn(e.rootCtx)
	}()
}

func (e *Engine) onGateChange(status enums.GateStatus, at time.Time) {
	available := status == enums.GateStatusAvailable
	e.metrics.SetGateAvailable(available)
	ctx := e.logg.WithField(e.baseCtx, "gate_status", status.String())
	if available {
		e.logg.Info(ctx, "cart service reachable again")
		return
	}
	e.logg.Warn(e.logg.WithField(ctx, "retry_after", at.Add(e.gate.Snapshot().Cooldown)), "cart service marked unavailable")
}

// withBase substitutes the engine context for a nil ctx.
func (e *Engine) withBase(ctx context.Context) context.Context {
	if ctx == nil {
		return e.baseCtx
	}
	return ctx
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return "success"
	case remote.IsCanceled(err):
		return "canceled"
	case remote.IsConnectivity(err):
		return "connectivity"
	default:
		return "rejected"
	}
}

func checkoutMessage(err error) string {
	if typed := pkgerrors.As(err); typed != nil && !remote.IsConnectivity(err) && typed.Message() != "" {
		return typed.Message()
	}
	return msgCheckoutFailed
}

func fetchMessage(err error) string {
	if pkgerrors.HasCode(err, pkgerrors.CodeBackendUnavailable) {
		return msgFetchOffline
	}
	return msgFetchFailed
}
