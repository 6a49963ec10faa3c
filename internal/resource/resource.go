// Package resource coordinates a network call with the local cache and turns
// the outcome into a stream of DataState values.
package resource

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sushihentaime/blogposts/internal/api"
)

// Descriptor selects the cache and network branches of one invocation.
type Descriptor struct {
	NetworkAvailable   bool
	IsNetworkRequest   bool
	CancelIfOffline    bool
	LoadFromCacheFirst bool
}

// Handlers configure a NetworkBoundResource for one operation. R is the
// network response body, C the cache object written through and V the
// value emitted to subscribers.
type Handlers[R, C, V any] struct {
	CreateCall    func(ctx context.Context) (*R, error)
	LoadFromCache func(ctx context.Context) (*V, error)
	UpdateLocalDB func(ctx context.Context, cacheObject *C) error
	HandleSuccess func(ctx context.Context, r *NetworkBoundResource[R, C, V], body *R)

	// CacheRequestAndReturn finishes cache-only runs. When nil the value
	// from LoadFromCache is returned as data.
	CacheRequestAndReturn func(ctx context.Context, r *NetworkBoundResource[R, C, V])
}

type Options struct {
	Key     string
	Timeout time.Duration
	Logger  *zap.Logger
}

// NetworkBoundResource is one running invocation. It emits an initial
// loading state, at most one cached loading state and exactly one terminal
// state, then closes its Updates channel.
type NetworkBoundResource[R, C, V any] struct {
	key    string
	id     string
	desc   Descriptor
	h      Handlers[R, C, V]
	logger *zap.Logger

	ctx    context.Context
	cancel context.CancelCauseFunc

	completed atomic.Bool
	mu        sync.Mutex
	updates   chan DataState[V]
	done      chan struct{}
	final     DataState[V]
}

// Start runs a new invocation bound to ctx and returns immediately.
func Start[R, C, V any](ctx context.Context, desc Descriptor, h Handlers[R, C, V], opts Options) *NetworkBoundResource[R, C, V] {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	jobCtx, cancel := context.WithCancelCause(ctx)
	r := &NetworkBoundResource[R, C, V]{
		key:     opts.Key,
		id:      uuid.NewString(),
		desc:    desc,
		h:       h,
		ctx:     jobCtx,
		cancel:  cancel,
		updates: make(chan DataState[V], 3),
		done:    make(chan struct{}),
	}
	r.logger = opts.Logger.With(zap.String("job", r.key), zap.String("job_id", r.id))

	r.logger.Debug("job started",
		zap.Bool("network_available", desc.NetworkAvailable),
		zap.Bool("network_request", desc.IsNetworkRequest),
		zap.Bool("cancel_if_offline", desc.CancelIfOffline),
		zap.Bool("cache_first", desc.LoadFromCacheFirst))

	r.emit(LoadingState[V](true, nil))

	if desc.LoadFromCacheFirst {
		go r.loadCacheFirst()
	}

	switch {
	case !desc.IsNetworkRequest:
		go r.CacheRequestAndReturn(r.ctx)
	case !desc.NetworkAvailable && desc.CancelIfOffline:
		r.OnErrorReturn(UnableToDoOperationWithoutInternet, true, false)
	case !desc.NetworkAvailable:
		go r.CacheRequestAndReturn(r.ctx)
	default:
		go r.doNetworkRequest()
	}

	go r.watch(desc.IsNetworkRequest && desc.NetworkAvailable, opts.Timeout)

	return r
}

// Updates is closed after the terminal state.
func (r *NetworkBoundResource[R, C, V]) Updates() <-chan DataState[V] {
	return r.updates
}

func (r *NetworkBoundResource[R, C, V]) Done() <-chan struct{} {
	return r.done
}

// Result waits for the terminal state.
func (r *NetworkBoundResource[R, C, V]) Result(ctx context.Context) (DataState[V], error) {
	select {
	case <-r.done:
		return r.final, nil
	case <-ctx.Done():
		return DataState[V]{}, ctx.Err()
	}
}

// Cancel stops the invocation. It is a no-op once the job has completed.
func (r *NetworkBoundResource[R, C, V]) Cancel(cause error) {
	r.cancel(cause)
}

func (r *NetworkBoundResource[R, C, V]) Completed() bool {
	return r.completed.Load()
}

// OnCompleteJob emits the terminal state. Only the first call has effect.
func (r *NetworkBoundResource[R, C, V]) OnCompleteJob(state DataState[V]) {
	if !r.completed.CompareAndSwap(false, true) {
		r.logger.Debug("job already completed, dropping state")
		return
	}

	r.mu.Lock()
	r.final = state
	r.updates <- state
	close(r.updates)
	r.mu.Unlock()

	close(r.done)
	r.cancel(errJobCompleted)

	if state.Error != nil {
		r.logger.Debug("job completed with error",
			zap.String("message", state.Error.Response.Message),
			zap.Stringer("response_type", state.Error.Response.Type))
		return
	}
	r.logger.Debug("job completed")
}

// OnErrorReturn completes the job with an error. Network failures are
// rewritten to a connection hint and never shown as a dialog.
func (r *NetworkBoundResource[R, C, V]) OnErrorReturn(message string, useDialog, useToast bool) {
	msg := message
	if msg == "" {
		msg = ErrorUnknown
	} else if IsNetworkError(msg) {
		msg = ErrorCheckNetworkConnection
		useDialog = false
	}

	responseType := ResponseNone
	if useToast {
		responseType = ResponseToast
	}
	if useDialog {
		responseType = ResponseDialog
	}

	r.OnCompleteJob(ErrorStateOf[V](Response{Message: msg, Type: responseType}))
}

func (r *NetworkBoundResource[R, C, V]) LoadFromCache(ctx context.Context) (*V, error) {
	if r.h.LoadFromCache == nil {
		return nil, nil
	}
	return r.h.LoadFromCache(ctx)
}

func (r *NetworkBoundResource[R, C, V]) UpdateLocalDB(ctx context.Context, cacheObject *C) error {
	if r.h.UpdateLocalDB == nil {
		return nil
	}
	return r.h.UpdateLocalDB(ctx, cacheObject)
}

// CacheRequestAndReturn finishes the job from the cache.
func (r *NetworkBoundResource[R, C, V]) CacheRequestAndReturn(ctx context.Context) {
	if r.h.CacheRequestAndReturn != nil {
		r.h.CacheRequestAndReturn(ctx, r)
		return
	}

	value, err := r.LoadFromCache(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		r.OnErrorReturn(err.Error(), true, false)
		return
	}
	r.OnCompleteJob(DataStateOf(value, nil))
}

func (r *NetworkBoundResource[R, C, V]) emit(state DataState[V]) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.completed.Load() {
		return
	}
	r.updates <- state
}

func (r *NetworkBoundResource[R, C, V]) loadCacheFirst() {
	if r.h.LoadFromCache == nil {
		return
	}

	cached, err := r.h.LoadFromCache(r.ctx)
	if err != nil {
		r.logger.Debug("cache-first read failed", zap.Error(err))
		return
	}
	r.emit(LoadingState(true, cached))
}

func (r *NetworkBoundResource[R, C, V]) doNetworkRequest() {
	body, err := r.h.CreateCall(r.ctx)
	if r.ctx.Err() != nil {
		return
	}

	switch {
	case err == nil && body != nil:
		r.h.HandleSuccess(r.ctx, r, body)
	case err == nil, errors.Is(err, api.ErrEmptyResponse):
		r.OnErrorReturn(api.ErrEmptyResponse.Error(), true, false)
	default:
		r.logger.Debug("network request failed", zap.Error(err))
		r.OnErrorReturn(errorMessage(err), true, false)
	}
}

// watch enforces the timeout on network runs and turns any cancellation
// into a silent error completion.
func (r *NetworkBoundResource[R, C, V]) watch(withTimeout bool, timeout time.Duration) {
	var expired <-chan time.Time
	if withTimeout {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		expired = timer.C
	}

	select {
	case <-r.done:
		return
	case <-expired:
		r.logger.Warn("job timed out", zap.Duration("timeout", timeout))
		r.cancel(ErrUnableToResolveHost)
	case <-r.ctx.Done():
	}

	if r.completed.Load() {
		return
	}

	cause := context.Cause(r.ctx)
	r.logger.Debug("job cancelled", zap.Error(cause))
	r.OnErrorReturn(cause.Error(), false, false)
}
