// Package docstore defines the document store contract the storefront core
// is written against. Documents are schemaless key/value maps addressed by
// slash-separated paths ("carts/u1/lines/p1"); the first segment names the
// top-level collection, the remainder is the document key within it.
package docstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrNotFound    = errors.New("document not found")
	ErrInvalidPath = errors.New("invalid document path")
)

// Document is a schemaless field map. Numeric fields may arrive as 64-bit
// integers or floats depending on the backing store, so readers go through
// the typed accessors instead of asserting concrete types.
type Document map[string]any

func (d Document) String(key string) string {
	if v, ok := d[key].(string); ok {
		return v
	}
	return ""
}

// Int64 narrows whatever numeric representation the store handed back.
func (d Document) Int64(key string) int64 {
	switch v := d[key].(type) {
	case int64:
		return v
	case int32:
		return int64(v)
	case int:
		return int64(v)
	case float64:
		return int64(v)
	}
	return 0
}

func (d Document) Time(key string) time.Time {
	switch v := d[key].(type) {
	case time.Time:
		return v
	case string:
		if t, err := time.Parse(time.RFC3339Nano, v); err == nil {
			return t
		}
	}
	return time.Time{}
}

func (d Document) Clone() Document {
	out := make(Document, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}

// Store is the narrow interface the core consumes. Writes are per-document
// and optimistic; there are no multi-document transactions. Consumers define
// this interface, not the backing implementation.
type Store interface {
	// Get returns the document at path, or ErrNotFound.
	Get(ctx context.Context, path string) (Document, error)

	// Set replaces the document at path, creating it if absent.
	Set(ctx context.Context, path string, fields Document) error

	// Update merges fields into an existing document; ErrNotFound if absent.
	Update(ctx context.Context, path string, fields Document) error

	// Delete removes the document at path; ErrNotFound if absent.
	Delete(ctx context.Context, path string) error

	// Add creates a document with a store-assigned id under collection and
	// returns that id.
	Add(ctx context.Context, collection string, fields Document) (string, error)

	// List returns every document directly under collection, keyed by the
	// final path segment. An empty collection yields an empty map, not an
	// error.
	List(ctx context.Context, collection string) (map[string]Document, error)

	// Subscribe registers a standing change subscription on collection. The
	// callback receives a full snapshot on every change (and once after a
	// subscription error); it runs until the returned handle is released.
	Subscribe(collection string, fn func(map[string]Document, error)) (Subscription, error)
}

// Subscription is a live change feed. Unsubscribe releases it; callers own
// the teardown (typically scoped to session lifetime).
type Subscription interface {
	Unsubscribe()
}

// splitPath breaks a document path into its top-level collection and the
// document key within it.
func splitPath(path string) (coll, key string, err error) {
	coll, key, ok := strings.Cut(path, "/")
	if !ok || coll == "" || key == "" {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidPath, path)
	}
	return coll, key, nil
}
