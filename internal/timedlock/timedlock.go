// Package timedlock provides a mutual-exclusion lock whose acquisition is
// bounded by a timeout. Components guarding shared registries use it so that
// a stuck writer surfaces a lock-timeout failure instead of blocking callers
// indefinitely.
package timedlock

import (
	"errors"
	"time"
)

// ErrTimeout is returned when the lock could not be acquired in time.
var ErrTimeout = errors.New("timedlock: acquisition timed out")

// Lock is a mutex with bounded-wait acquisition. The zero value is not
// usable; create instances with New.
type Lock struct {
	ch chan struct{}
}

// New returns an unlocked Lock.
func New() *Lock {
	return &Lock{ch: make(chan struct{}, 1)}
}

// Acquire takes the lock, waiting at most timeout. A non-positive timeout
// fails immediately unless the lock is free.
func (l *Lock) Acquire(timeout time.Duration) error {
	select {
	case l.ch <- struct{}{}:
		return nil
	default:
	}
	if timeout <= 0 {
		return ErrTimeout
	}
	t := time.NewTimer(timeout)
	defer t.Stop()
	select {
	case l.ch <- struct{}{}:
		return nil
	case <-t.C:
		return ErrTimeout
	}
}

// Release frees the lock. Releasing an unheld lock panics.
func (l *Lock) Release() {
	select {
	case <-l.ch:
	default:
		panic("timedlock: release of unheld lock")
	}
}
