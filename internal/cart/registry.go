package cart

import (
	"context"
	"errors"
	"log"
	"sync"

	"github.com/TON618OFF/FactorioStore-sub000/internal/docstore"
	"github.com/TON618OFF/FactorioStore-sub000/internal/identity"
)

var ErrRegistryClosed = errors.New("cart registry is closed")

// Registry hands out one Manager per signed-in user and owns their
// lifecycles. Each manager is bound to its identity at construction and
// keeps a standing remote subscription until the registry is closed, so a
// session never leaks a live callback past teardown.
type Registry struct {
	store docstore.Store

	mu       sync.Mutex
	managers map[string]*Manager
	closed   bool
}

func NewRegistry(store docstore.Store) *Registry {
	return &Registry{
		store:    store,
		managers: make(map[string]*Manager),
	}
}

// Manager returns the cart manager for id, creating it and starting its
// remote watch on first use.
func (r *Registry) Manager(ctx context.Context, id identity.Identity) (*Manager, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil, ErrRegistryClosed
	}
	if m, ok := r.managers[id.UID]; ok {
		return m, nil
	}

	m := NewManager(r.store, identity.Static{ID: id})
	if err := m.Watch(ctx, nil); err != nil {
		return nil, err
	}
	r.managers[id.UID] = m
	return m, nil
}

// Release tears down one user's session, dropping their manager and its
// subscription.
func (r *Registry) Release(uid string) {
	r.mu.Lock()
	m := r.managers[uid]
	delete(r.managers, uid)
	r.mu.Unlock()

	if m != nil {
		m.Close()
	}
}

// Close releases every managed session.
func (r *Registry) Close() {
	r.mu.Lock()
	managers := r.managers
	r.managers = make(map[string]*Manager)
	r.closed = true
	r.mu.Unlock()

	for uid, m := range managers {
		log.Printf("cart: releasing session for user %s", uid)
		m.Close()
	}
}
