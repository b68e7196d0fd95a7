// Package registry implements the priority-ordered collection of backend
// handles every dispatcher builds on, together with the two dispatch
// primitives used against it: concurrent fan-out-collect and the sequential
// race-until-accepted loop.
package registry

import (
	"errors"
	"sort"
	"sync/atomic"
	"time"

	"github.com/chargenet/roaming/internal/timedlock"
)

// ErrLockTimeout is returned when a registry mutation could not acquire the
// write lock in time.
var ErrLockTimeout = errors.New("registry: lock timeout")

// ErrNotFound is returned when no entry exists for the given identifier.
var ErrNotFound = errors.New("registry: entry not found")

// DefaultLockTimeout bounds every registry mutation.
const DefaultLockTimeout = 2 * time.Second

// Entry pairs a backend handle with its assigned priority. Lower priorities
// sort first.
type Entry[T any] struct {
	Priority uint32
	ID       string
	Handle   T
}

// PriorityRegistry holds backend handles ordered by priority. Reads operate
// on an immutable snapshot, so iteration never observes concurrent mutation;
// mutations copy-on-write under a bounded-wait lock.
type PriorityRegistry[T any] struct {
	base        uint32
	lockTimeout time.Duration
	write       *timedlock.Lock
	entries     atomic.Pointer[[]Entry[T]]
}

// Option configures a PriorityRegistry.
type Option func(*config)

type config struct {
	base        uint32
	lockTimeout time.Duration
}

// WithBasePriority sets the priority assigned to the first Add when the
// registry is empty. The default is 1; the roaming-provider registry uses 10
// to leave headroom for manual overrides below it.
func WithBasePriority(p uint32) Option {
	return func(c *config) { c.base = p }
}

// WithLockTimeout overrides the mutation lock timeout.
func WithLockTimeout(d time.Duration) Option {
	return func(c *config) { c.lockTimeout = d }
}

// New creates an empty PriorityRegistry.
func New[T any](opts ...Option) *PriorityRegistry[T] {
	cfg := config{base: 1, lockTimeout: DefaultLockTimeout}
	for _, o := range opts {
		o(&cfg)
	}
	r := &PriorityRegistry[T]{
		base:        cfg.base,
		lockTimeout: cfg.lockTimeout,
		write:       timedlock.New(),
	}
	empty := make([]Entry[T], 0)
	r.entries.Store(&empty)
	return r
}

// Add registers the handle under the next free priority: max(existing)+1, or
// the registry's base priority when empty. Re-adding an existing identifier
// replaces its handle and keeps its priority. Returns the assigned priority.
func (r *PriorityRegistry[T]) Add(id string, handle T) (uint32, error) {
	if err := r.write.Acquire(r.lockTimeout); err != nil {
		return 0, ErrLockTimeout
	}
	defer r.write.Release()

	cur := *r.entries.Load()
	for i, e := range cur {
		if e.ID == id {
			next := append([]Entry[T](nil), cur...)
			next[i].Handle = handle
			r.entries.Store(&next)
			return e.Priority, nil
		}
	}
	prio := r.base
	if n := len(cur); n > 0 {
		prio = cur[n-1].Priority + 1
	}
	next := append(append([]Entry[T](nil), cur...), Entry[T]{Priority: prio, ID: id, Handle: handle})
	r.entries.Store(&next)
	return prio, nil
}

// Set registers the handle under an explicit priority, replacing any entry
// with the same identifier. Priorities are unique: an explicit priority held
// by a different identifier is rejected.
func (r *PriorityRegistry[T]) Set(id string, priority uint32, handle T) error {
	if err := r.write.Acquire(r.lockTimeout); err != nil {
		return ErrLockTimeout
	}
	defer r.write.Release()

	cur := *r.entries.Load()
	next := make([]Entry[T], 0, len(cur)+1)
	for _, e := range cur {
		if e.ID == id {
			continue
		}
		if e.Priority == priority {
			return errors.New("registry: priority already taken")
		}
		next = append(next, e)
	}
	next = append(next, Entry[T]{Priority: priority, ID: id, Handle: handle})
	sort.Slice(next, func(i, j int) bool { return next[i].Priority < next[j].Priority })
	r.entries.Store(&next)
	return nil
}

// Remove deletes the entry with the given identifier.
func (r *PriorityRegistry[T]) Remove(id string) error {
	if err := r.write.Acquire(r.lockTimeout); err != nil {
		return ErrLockTimeout
	}
	defer r.write.Release()

	cur := *r.entries.Load()
	for i, e := range cur {
		if e.ID == id {
			next := append([]Entry[T](nil), cur[:i]...)
			next = append(next, cur[i+1:]...)
			r.entries.Store(&next)
			return nil
		}
	}
	return ErrNotFound
}

// Get returns the handle registered under the given identifier.
func (r *PriorityRegistry[T]) Get(id string) (T, bool) {
	for _, e := range *r.entries.Load() {
		if e.ID == id {
			return e.Handle, true
		}
	}
	var zero T
	return zero, false
}

// Snapshot returns the entries in ascending priority order. The returned
// slice is a stable copy; later mutations do not affect it.
func (r *PriorityRegistry[T]) Snapshot() []Entry[T] {
	cur := *r.entries.Load()
	out := make([]Entry[T], len(cur))
	copy(out, cur)
	return out
}

// Len returns the number of registered entries.
func (r *PriorityRegistry[T]) Len() int {
	return len(*r.entries.Load())
}
