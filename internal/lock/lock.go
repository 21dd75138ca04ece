// Package lock provides keyed mutual exclusion used to serialize a user's
// limit-checked mutations, either in process or across replicas via redis.
package lock

import (
	"context"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
)

// Unlock releases a held lock. It is safe to call more than once.
type Unlock func()

// Locker acquires a lock for key, blocking until it is held or ctx is done.
type Locker interface {
	Lock(ctx context.Context, key string) (Unlock, error)
}

// New returns the Locker for driver: "memory", "redis" or "none".
// The redis driver requires a non-nil client.
func New(driver string, client *redis.Client) (Locker, error) {
	switch driver {
	case "", "memory":
		return NewMemory(), nil
	case "redis":
		if client == nil {
			return nil, fmt.Errorf("lock: redis driver selected but REDIS_ADDR is not set")
		}
		return NewRedis(client, RedisOptions{}), nil
	case "none":
		return Noop{}, nil
	default:
		return nil, fmt.Errorf("lock: unknown driver %q", driver)
	}
}

// Noop never blocks.
type Noop struct{}

// Lock implements Locker.
func (Noop) Lock(context.Context, string) (Unlock, error) { return func() {}, nil }

type entry struct {
	ch   chan struct{}
	refs int
}

// Memory is an in-process keyed mutex. Entries are dropped once nobody holds
// or waits on them.
type Memory struct {
	mu      sync.Mutex
	entries map[string]*entry
}

// NewMemory creates an empty Memory locker.
func NewMemory() *Memory {
	return &Memory{entries: make(map[string]*entry)}
}

// Lock implements Locker.
func (m *Memory) Lock(ctx context.Context, key string) (Unlock, error) {
	m.mu.Lock()
	e, ok := m.entries[key]
	if !ok {
		e = &entry{ch: make(chan struct{}, 1)}
		m.entries[key] = e
	}
	e.refs++
	m.mu.Unlock()

	select {
	case e.ch <- struct{}{}:
	case <-ctx.Done():
		m.release(key, e)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-e.ch
			m.release(key, e)
		})
	}, nil
}

func (m *Memory) release(key string, e *entry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e.refs--
	if e.refs == 0 {
		delete(m.entries, key)
	}
}

// size is the number of live entries, for tests.
func (m *Memory) size() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}
