package directory

import (
	"github.com/chargenet/roaming/core/backend"
	"github.com/chargenet/roaming/core/model"
	"github.com/chargenet/roaming/core/registry"
	"github.com/chargenet/roaming/internal/timedlock"
)

// DefaultLockTimeout bounds provider index mutations.
const DefaultLockTimeout = registry.DefaultLockTimeout

// ProviderIndex holds the directly addressable operators and the registered
// e-mobility providers. Roaming providers live in the dispatch engine's
// priority registry instead; they are fallback backends, not directly
// addressable ones.
type ProviderIndex struct {
	lock      *timedlock.Lock
	operators map[model.OperatorID]backend.Operator
	emps      *registry.PriorityRegistry[backend.EMobilityProvider]
}

// NewProviderIndex creates an empty index.
func NewProviderIndex() *ProviderIndex {
	return &ProviderIndex{
		lock:      timedlock.New(),
		operators: make(map[model.OperatorID]backend.Operator),
		emps:      registry.New[backend.EMobilityProvider](),
	}
}

// AddOperator registers an operator backend under its id.
func (p *ProviderIndex) AddOperator(op backend.Operator) error {
	if err := p.lock.Acquire(DefaultLockTimeout); err != nil {
		return ErrLockTimeout
	}
	defer p.lock.Release()
	p.operators[op.ID()] = op
	return nil
}

// RemoveOperator drops the operator with the given id.
func (p *ProviderIndex) RemoveOperator(id model.OperatorID) error {
	if err := p.lock.Acquire(DefaultLockTimeout); err != nil {
		return ErrLockTimeout
	}
	defer p.lock.Release()
	if _, ok := p.operators[id]; !ok {
		return ErrNotFound
	}
	delete(p.operators, id)
	return nil
}

// OperatorByID returns the operator registered under the id.
func (p *ProviderIndex) OperatorByID(id model.OperatorID) (backend.Operator, bool) {
	if err := p.lock.Acquire(DefaultLockTimeout); err != nil {
		return nil, false
	}
	defer p.lock.Release()
	op, ok := p.operators[id]
	return op, ok
}

// AddProvider registers an e-mobility provider; the priority is assigned by
// the underlying registry (max+1).
func (p *ProviderIndex) AddProvider(emp backend.EMobilityProvider) error {
	_, err := p.emps.Add(string(emp.ID()), emp)
	if err != nil {
		return ErrLockTimeout
	}
	return nil
}

// ProviderByID returns the e-mobility provider registered under the id.
func (p *ProviderIndex) ProviderByID(id model.ProviderID) (backend.EMobilityProvider, bool) {
	return p.emps.Get(string(id))
}

// Providers returns all e-mobility providers in priority order.
func (p *ProviderIndex) Providers() []backend.EMobilityProvider {
	entries := p.emps.Snapshot()
	out := make([]backend.EMobilityProvider, len(entries))
	for i, e := range entries {
		out[i] = e.Handle
	}
	return out
}
