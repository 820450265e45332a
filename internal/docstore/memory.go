package docstore

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore implements Store with in-process storage. It backs unit tests
// and local development; semantics match the remote backends (per-document
// writes, full-snapshot change notifications).
type MemoryStore struct {
	mu   sync.RWMutex
	docs map[string]Document // document path -> fields
	subs map[*memorySub]struct{}
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		docs: make(map[string]Document),
		subs: make(map[*memorySub]struct{}),
	}
}

func (s *MemoryStore) Get(_ context.Context, path string) (Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.docs[path]
	if !ok {
		return nil, ErrNotFound
	}
	return doc.Clone(), nil
}

func (s *MemoryStore) Set(_ context.Context, path string, fields Document) error {
	if _, _, err := splitPath(path); err != nil {
		return err
	}

	s.mu.Lock()
	s.docs[path] = fields.Clone()
	s.notifyLocked(path)
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Update(_ context.Context, path string, fields Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.docs[path]
	if !ok {
		return ErrNotFound
	}
	for k, v := range fields {
		doc[k] = v
	}
	s.notifyLocked(path)
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.docs[path]; !ok {
		return ErrNotFound
	}
	delete(s.docs, path)
	s.notifyLocked(path)
	return nil
}

func (s *MemoryStore) Add(_ context.Context, collection string, fields Document) (string, error) {
	id := uuid.NewString()

	s.mu.Lock()
	path := collection + "/" + id
	s.docs[path] = fields.Clone()
	s.notifyLocked(path)
	s.mu.Unlock()
	return id, nil
}

func (s *MemoryStore) List(_ context.Context, collection string) (map[string]Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listLocked(collection), nil
}

func (s *MemoryStore) listLocked(collection string) map[string]Document {
	out := make(map[string]Document)
	prefix := collection + "/"
	for path, doc := range s.docs {
		key, ok := strings.CutPrefix(path, prefix)
		if !ok || strings.Contains(key, "/") {
			continue // not a direct member of this collection
		}
		out[key] = doc.Clone()
	}
	return out
}

func (s *MemoryStore) Subscribe(collection string, fn func(map[string]Document, error)) (Subscription, error) {
	sub := &memorySub{
		store:      s,
		collection: collection,
		fn:         fn,
		wake:       make(chan struct{}, 1),
		stop:       make(chan struct{}),
	}

	s.mu.Lock()
	s.subs[sub] = struct{}{}
	s.mu.Unlock()

	go sub.run()
	sub.signal() // initial snapshot
	return sub, nil
}

// notifyLocked wakes every subscription whose collection directly contains
// the mutated document. Callers hold s.mu.
func (s *MemoryStore) notifyLocked(path string) {
	for sub := range s.subs {
		key, ok := strings.CutPrefix(path, sub.collection+"/")
		if ok && !strings.Contains(key, "/") {
			sub.signal()
		}
	}
}

type memorySub struct {
	store      *MemoryStore
	collection string
	fn         func(map[string]Document, error)
	wake       chan struct{}
	stop       chan struct{}
	once       sync.Once
}

// run delivers snapshots asynchronously, coalescing back-to-back changes
// into the freshest snapshot.
func (m *memorySub) run() {
	for {
		select {
		case <-m.stop:
			return
		case <-m.wake:
			m.store.mu.RLock()
			snapshot := m.store.listLocked(m.collection)
			m.store.mu.RUnlock()
			m.fn(snapshot, nil)
		}
	}
}

func (m *memorySub) signal() {
	select {
	case m.wake <- struct{}{}:
	default: // a delivery is already pending
	}
}

func (m *memorySub) Unsubscribe() {
	m.once.Do(func() {
		m.store.mu.Lock()
		delete(m.store.subs, m)
		m.store.mu.Unlock()
		close(m.stop)
	})
}
