// Package ratelimit provides a per-key concurrency gate with a bounded
// FIFO wait queue. Each store gets its own key so a slow retailer never
// starves the others.
package ratelimit

import (
	"context"
	"fmt"
	"sync"

	"github.com/cartcompare/backend/internal/domain"
)

const (
	DefaultMaxConcurrent = 2
	DefaultMaxQueueSize  = 50
)

// keyState tracks holders and waiters for one key. Waiters are granted
// strictly in arrival order.
type keyState struct {
	running int
	waiters []chan struct{}
}

// Limiter bounds concurrent work per key. All mutations of a key's
// counters and queue happen under mu; the work itself runs unlocked.
type Limiter struct {
	maxConcurrent int
	maxQueueSize  int

	mu   sync.Mutex
	keys map[string]*keyState
}

// New creates a limiter. Non-positive arguments fall back to defaults.
func New(maxConcurrent, maxQueueSize int) *Limiter {
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrent
	}
	if maxQueueSize <= 0 {
		maxQueueSize = DefaultMaxQueueSize
	}
	return &Limiter{
		maxConcurrent: maxConcurrent,
		maxQueueSize:  maxQueueSize,
		keys:          make(map[string]*keyState),
	}
}

// Acquire obtains a slot for key, blocking in FIFO order while the key is
// saturated. It fails fast with domain.ErrQueueFull when the wait queue is
// at capacity, and with ctx.Err() if the context ends while waiting.
func (l *Limiter) Acquire(ctx context.Context, key string) error {
	l.mu.Lock()
	st := l.keys[key]
	if st == nil {
		st = &keyState{}
		l.keys[key] = st
	}
	if st.running < l.maxConcurrent {
		st.running++
		l.mu.Unlock()
		return nil
	}
	if len(st.waiters) >= l.maxQueueSize {
		l.mu.Unlock()
		return fmt.Errorf("%w: key %q", domain.ErrQueueFull, key)
	}
	grant := make(chan struct{})
	st.waiters = append(st.waiters, grant)
	l.mu.Unlock()

	select {
	case <-grant:
		return nil
	case <-ctx.Done():
		l.mu.Lock()
		for i, w := range st.waiters {
			if w == grant {
				st.waiters = append(st.waiters[:i], st.waiters[i+1:]...)
				l.cleanupLocked(key, st)
				l.mu.Unlock()
				return ctx.Err()
			}
		}
		// The slot was handed to us concurrently with cancellation;
		// give it back so no capacity is leaked.
		err := l.releaseLocked(key, st)
		l.mu.Unlock()
		if err != nil {
			return err
		}
		return ctx.Err()
	}
}

// Release frees a slot for key. If waiters exist the slot is handed
// directly to the longest-waiting one, leaving the running count
// untouched. Releasing a key with no holders is a programming error and
// returns domain.ErrReleaseWithoutAcquire.
func (l *Limiter) Release(key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	st := l.keys[key]
	if st == nil {
		return fmt.Errorf("%w: key %q", domain.ErrReleaseWithoutAcquire, key)
	}
	return l.releaseLocked(key, st)
}

func (l *Limiter) releaseLocked(key string, st *keyState) error {
	if len(st.waiters) > 0 {
		grant := st.waiters[0]
		st.waiters = st.waiters[1:]
		close(grant)
		return nil
	}
	if st.running <= 0 {
		return fmt.Errorf("%w: key %q", domain.ErrReleaseWithoutAcquire, key)
	}
	st.running--
	l.cleanupLocked(key, st)
	return nil
}

func (l *Limiter) cleanupLocked(key string, st *keyState) {
	if st.running == 0 && len(st.waiters) == 0 {
		delete(l.keys, key)
	}
}

// Execute runs fn under a slot for key, releasing on every exit path
// including panics.
func (l *Limiter) Execute(ctx context.Context, key string, fn func() error) (err error) {
	if err = l.Acquire(ctx, key); err != nil {
		return err
	}
	defer func() {
		if relErr := l.Release(key); err == nil {
			err = relErr
		}
	}()
	return fn()
}

// Running reports the current holder count for key.
func (l *Limiter) Running(key string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	if st := l.keys[key]; st != nil {
		return st.running
	}
	return 0
}
