package enrich

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/arkankau/coffee-chatted/internal/outputfmt"
	"github.com/arkankau/coffee-chatted/internal/retryutil"
	"golang.org/x/sync/singleflight"
)

const defaultRequestTimeout = 15 * time.Second

type memoEntry[T any] struct {
	value T
	ok    bool
}

// Memo caches one result per key for its whole lifetime. Failed requests are
// cached as absent and never retried by Start. Lookup never blocks.
type Memo[T any] struct {
	name    string
	logger  *slog.Logger
	timeout time.Duration
	retry   retryutil.Policy

	ctx    context.Context
	cancel context.CancelFunc
	group  singleflight.Group
	wg     sync.WaitGroup

	mu       sync.Mutex
	done     map[string]memoEntry[T]
	inflight map[string]chan struct{}
	closed   bool
}

type MemoOptions struct {
	Logger  *slog.Logger
	Timeout time.Duration
	Retry   retryutil.Policy
}

func NewMemo[T any](name string, opts MemoOptions) *Memo[T] {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultRequestTimeout
	}
	if opts.Retry.Attempts <= 0 {
		opts.Retry.Attempts = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Memo[T]{
		name:     name,
		logger:   opts.Logger,
		timeout:  opts.Timeout,
		retry:    opts.Retry,
		ctx:      ctx,
		cancel:   cancel,
		done:     map[string]memoEntry[T]{},
		inflight: map[string]chan struct{}{},
	}
}

// Start launches fn for key in the background unless the key already has a
// result or a request in flight. It reports whether a request was launched.
func (m *Memo[T]) Start(key string, fn func(ctx context.Context) (T, error)) bool {
	if fn == nil {
		return false
	}
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return false
	}
	if _, ok := m.done[key]; ok {
		m.mu.Unlock()
		return false
	}
	if _, ok := m.inflight[key]; ok {
		m.mu.Unlock()
		return false
	}
	ch := make(chan struct{})
	m.inflight[key] = ch
	m.wg.Add(1)
	m.mu.Unlock()

	go func() {
		defer m.wg.Done()
		value, err := m.call(key, fn)
		m.mu.Lock()
		m.done[key] = memoEntry[T]{value: value, ok: err == nil}
		delete(m.inflight, key)
		close(ch)
		m.mu.Unlock()
	}()
	return true
}

// Get returns the memoized value for key, starting the request if nobody
// has. The request runs on the memo's own context; ctx only bounds how long
// Get waits.
func (m *Memo[T]) Get(ctx context.Context, key string, fn func(ctx context.Context) (T, error)) (T, bool) {
	if v, ok, known := m.peek(key); known {
		return v, ok
	}
	m.Start(key, fn)
	return m.Wait(ctx, key)
}

func (m *Memo[T]) Lookup(key string) (T, bool) {
	v, ok, _ := m.peek(key)
	return v, ok
}

func (m *Memo[T]) Pending(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.inflight[key]
	return ok
}

// Wait blocks until the request for key settles or ctx is done, then reads
// the memo.
func (m *Memo[T]) Wait(ctx context.Context, key string) (T, bool) {
	m.mu.Lock()
	ch, pending := m.inflight[key]
	m.mu.Unlock()
	if pending {
		select {
		case <-ctx.Done():
		case <-ch:
		}
	}
	return m.Lookup(key)
}

// WaitAll blocks until every request in flight at call time settles or ctx
// is done.
func (m *Memo[T]) WaitAll(ctx context.Context) {
	m.mu.Lock()
	chans := make([]chan struct{}, 0, len(m.inflight))
	for _, ch := range m.inflight {
		chans = append(chans, ch)
	}
	m.mu.Unlock()
	for _, ch := range chans {
		select {
		case <-ctx.Done():
			return
		case <-ch:
		}
	}
}

// Close cancels outstanding requests and waits for their goroutines.
func (m *Memo[T]) Close() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.closed = true
	m.mu.Unlock()
	m.cancel()
	m.wg.Wait()
}

func (m *Memo[T]) peek(key string) (T, bool, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, known := m.done[key]
	return e.value, e.ok, known
}

// call runs fn under the memo's lifetime context and request timeout.
func (m *Memo[T]) call(key string, fn func(ctx context.Context) (T, error)) (T, error) {
	v, err, _ := m.group.Do(key, func() (any, error) {
		reqCtx, cancel := context.WithTimeout(m.ctx, m.timeout)
		defer cancel()
		var out T
		err := retryutil.Do(reqCtx, m.logger, m.name, m.retry, func(ctx context.Context) error {
			v, err := fn(ctx)
			if err != nil {
				if errors.Is(err, ErrUnavailable) || errors.Is(err, ErrInvalidResponse) {
					return retryutil.NewPermanent(err)
				}
				return err
			}
			out = v
			return nil
		})
		return out, err
	})
	if err != nil {
		if m.logger != nil && !errors.Is(err, ErrUnavailable) {
			m.logger.Warn(m.name+"_failed", "key", key, "error", outputfmt.FormatErrorForDisplay(err))
		}
		var zero T
		return zero, err
	}
	return v.(T), nil
}
