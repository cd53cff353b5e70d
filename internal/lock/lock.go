// Package lock serializes check-then-act booking sequences per scope.
package lock

import (
	"context"
	"fmt"
	"sync"
)

// Locker acquires an exclusive lock on key. The returned func releases it
// and is safe to call more than once.
type Locker interface {
	Lock(ctx context.Context, key string) (func(), error)
}

// Key builds the lock key for one scope and date.
func Key(scope, date string) string {
	if scope == "" {
		scope = "default"
	}
	return fmt.Sprintf("slots:%s:%s", scope, date)
}

// ===============================
// In-process
// ===============================

type entry struct {
	ch   chan struct{}
	refs int
}

type Local struct {
	mu   sync.Mutex
	keys map[string]*entry
}

func NewLocal() *Local {
	return &Local{keys: make(map[string]*entry)}
}

func (l *Local) Lock(ctx context.Context, key string) (func(), error) {
	l.mu.Lock()
	e, ok := l.keys[key]
	if !ok {
		e = &entry{ch: make(chan struct{}, 1)}
		l.keys[key] = e
	}
	e.refs++
	l.mu.Unlock()

	select {
	case e.ch <- struct{}{}:
	case <-ctx.Done():
		l.release(key, e)
		return nil, fmt.Errorf("acquire lock %q: %w", key, ctx.Err())
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-e.ch
			l.release(key, e)
		})
	}, nil
}

func (l *Local) release(key string, e *entry) {
	l.mu.Lock()
	defer l.mu.Unlock()

	e.refs--
	if e.refs == 0 {
		delete(l.keys, key)
	}
}

// held reports how many keys currently have waiters or holders.
func (l *Local) held() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.keys)
}

// ===============================
// No-op
// ===============================

type noop struct{}

func (noop) Lock(context.Context, string) (func(), error) {
	return func() {}, nil
}

// Noop performs no locking at all.
var Noop Locker = noop{}

var (
	_ Locker = (*Local)(nil)
	_ Locker = (*Redis)(nil)
)
