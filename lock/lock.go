/*
Package lock serializes mutations per key.

PURPOSE:
  Registering and cancelling are read-check-write sequences against a
  store without transactions. Holding the employee's lock for the whole
  sequence keeps two submissions of the same employee from both passing
  the duplicate or quota check.

IMPLEMENTATIONS:
  - Keyed: in-process, one channel semaphore per live key
  - Redis: shared between instances, SET NX PX with a token and a
    compare-and-delete release

  The row store's compare-and-swap writes remain the last line: a lock
  that expired mid-operation shows up as a conflict, not as a lost update.
*/
package lock

import (
	"context"
	"sync"
)

// Locker acquires an exclusive lock on key. The returned function releases
// it and may be called more than once.
type Locker interface {
	Lock(ctx context.Context, key string) (func(), error)
}

// EmployeeKey is the lock key of one employee's records.
func EmployeeKey(employeeID string) string {
	return "employee:" + employeeID
}

// =============================================================================
// KEYED - In-process lock per key
// =============================================================================

// Keyed holds one semaphore per key while anyone holds or waits for it.
type Keyed struct {
	mu      sync.Mutex
	entries map[string]*entry
}

type entry struct {
	sem  chan struct{}
	refs int
}

func NewKeyed() *Keyed {
	return &Keyed{entries: make(map[string]*entry)}
}

// Lock blocks until key is free or ctx is done.
func (k *Keyed) Lock(ctx context.Context, key string) (func(), error) {
	k.mu.Lock()
	e, ok := k.entries[key]
	if !ok {
		e = &entry{sem: make(chan struct{}, 1)}
		k.entries[key] = e
	}
	e.refs++
	k.mu.Unlock()

	select {
	case e.sem <- struct{}{}:
	case <-ctx.Done():
		k.release(key, e)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-e.sem
			k.release(key, e)
		})
	}, nil
}

func (k *Keyed) release(key string, e *entry) {
	k.mu.Lock()
	defer k.mu.Unlock()
	e.refs--
	if e.refs == 0 {
		delete(k.entries, key)
	}
}

// Len returns the number of keys currently held or waited on.
func (k *Keyed) Len() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.entries)
}

var _ Locker = (*Keyed)(nil)
