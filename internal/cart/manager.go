package cart

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"sync"

	"github.com/TON618OFF/FactorioStore-sub000/internal/docstore"
	"github.com/TON618OFF/FactorioStore-sub000/internal/identity"
)

var ErrNoIdentity = errors.New("no identity is signed in")

// Manager is the single source of truth for "what is in the cart right now"
// for one signed-in identity. It is constructed per session and injected,
// never shared as a process-wide global. Mutations update the in-memory
// mirror first and then issue the remote write; a remote failure is
// returned to the caller as a notification but the mirror keeps the
// optimistic value.
type Manager struct {
	store docstore.Store
	who   identity.Provider

	mu    sync.RWMutex
	lines map[string]Line
	sub   docstore.Subscription
}

func NewManager(store docstore.Store, who identity.Provider) *Manager {
	return &Manager{
		store: store,
		who:   who,
		lines: make(map[string]Line),
	}
}

// AddLine merges delta into an existing line for line.ProductID or creates
// one, then persists the merged line. Silently a no-op when nobody is
// signed in.
func (m *Manager) AddLine(ctx context.Context, line Line) error {
	id, ok := m.who.Current(ctx)
	if !ok {
		return nil
	}

	m.mu.Lock()
	merged := line
	if existing, found := m.lines[line.ProductID]; found {
		merged = existing
		merged.Quantity += line.Quantity
	}
	if merged.Quantity <= 0 {
		// A merge that lands at or below zero deletes the line outright.
		delete(m.lines, line.ProductID)
		m.mu.Unlock()
		return m.deleteRemote(ctx, id.UID, line.ProductID)
	}
	m.lines[line.ProductID] = merged
	m.mu.Unlock()

	if err := m.store.Set(ctx, linePath(id.UID, line.ProductID), merged.toDoc()); err != nil {
		log.Printf("cart: remote upsert of %s failed: %v", line.ProductID, err)
		return fmt.Errorf("failed to persist cart line: %w", err)
	}
	return nil
}

// SetQuantity sets the absolute quantity for productID. A quantity at or
// below zero removes the line from memory and deletes the remote document.
// No-op when nobody is signed in or the line does not exist.
func (m *Manager) SetQuantity(ctx context.Context, productID string, quantity int) error {
	id, ok := m.who.Current(ctx)
	if !ok {
		return nil
	}

	m.mu.Lock()
	line, found := m.lines[productID]
	if !found {
		m.mu.Unlock()
		return nil
	}
	if quantity <= 0 {
		delete(m.lines, productID)
		m.mu.Unlock()
		return m.deleteRemote(ctx, id.UID, productID)
	}
	line.Quantity = quantity
	m.lines[productID] = line
	m.mu.Unlock()

	if err := m.store.Set(ctx, linePath(id.UID, productID), line.toDoc()); err != nil {
		log.Printf("cart: remote quantity update of %s failed: %v", productID, err)
		return fmt.Errorf("failed to persist cart line: %w", err)
	}
	return nil
}

// Clear empties the cart: every remote line document is deleted, then the
// mirror is wiped. An already-empty cart clears without error; individual
// delete failures are reported but do not stop the sweep.
func (m *Manager) Clear(ctx context.Context) error {
	id, ok := m.who.Current(ctx)
	if !ok {
		return nil
	}

	docs, err := m.store.List(ctx, linesCollection(id.UID))
	if err != nil {
		log.Printf("cart: listing remote cart for clear failed: %v", err)
	}

	var firstErr error
	for productID := range docs {
		if errDel := m.deleteRemote(ctx, id.UID, productID); errDel != nil && firstErr == nil {
			firstErr = errDel
		}
	}

	m.mu.Lock()
	m.lines = make(map[string]Line)
	m.mu.Unlock()
	return firstErr
}

// Snapshot returns a point-in-time copy of the current lines, sorted by
// product id. The copy is read-consistent with the latest completed
// mutation; callers must never treat it as a live reference.
func (m *Manager) Snapshot() []Line {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Line, 0, len(m.lines))
	for _, line := range m.lines {
		out = append(out, line)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProductID < out[j].ProductID })
	return out
}

// Watch opens the standing subscription on the remote mirror. Every change
// notification replaces the mirror wholesale and invokes onChange (which
// may be nil). The subscription lives until Close; onChange must be
// idempotent to repeated invocation.
func (m *Manager) Watch(ctx context.Context, onChange func([]Line)) error {
	id, ok := m.who.Current(ctx)
	if !ok {
		return ErrNoIdentity
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sub != nil {
		return nil // already watching
	}

	sub, err := m.store.Subscribe(linesCollection(id.UID), func(docs map[string]docstore.Document, err error) {
		if err != nil {
			log.Printf("cart: subscription delivery failed: %v", err)
			return
		}

		next := make(map[string]Line, len(docs))
		for productID, doc := range docs {
			line := lineFromDoc(productID, doc)
			if line.Quantity <= 0 {
				continue // a zero line must not exist
			}
			next[productID] = line
		}

		m.mu.Lock()
		m.lines = next
		m.mu.Unlock()

		if onChange != nil {
			onChange(m.Snapshot())
		}
	})
	if err != nil {
		return fmt.Errorf("failed to subscribe to cart: %w", err)
	}
	m.sub = sub
	return nil
}

// Close releases the standing subscription. Safe to call without a prior
// Watch and safe to call more than once.
func (m *Manager) Close() {
	m.mu.Lock()
	sub := m.sub
	m.sub = nil
	m.mu.Unlock()

	if sub != nil {
		sub.Unsubscribe()
	}
}

func (m *Manager) deleteRemote(ctx context.Context, uid, productID string) error {
	err := m.store.Delete(ctx, linePath(uid, productID))
	if err != nil && !errors.Is(err, docstore.ErrNotFound) {
		log.Printf("cart: remote delete of %s failed: %v", productID, err)
		return fmt.Errorf("failed to delete cart line: %w", err)
	}
	return nil
}
