package diag

import (
	"context"
	"maps"
	"sync"
)

// Store is an ambient key/value store read by the log renderer.
type Store interface {
	Put(key, value string)
	GetAll() map[string]string
	Remove(key string)
}

// Map is the default Store. It is safe for concurrent use.
type Map struct {
	mu      sync.RWMutex
	entries map[string]string
}

// NewMap creates an empty diagnostic map.
func NewMap() *Map {
	return &Map{entries: make(map[string]string)}
}

// Put sets key to value.
func (m *Map) Put(key, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = value
}

// Get returns the value stored for key.
func (m *Map) Get(key string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.entries[key]
	return v, ok
}

// GetAll returns a copy of every entry.
func (m *Map) GetAll() map[string]string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return maps.Clone(m.entries)
}

// Remove deletes key.
func (m *Map) Remove(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
}

// Len returns the number of entries.
func (m *Map) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// Layer is a Store stacked on a parent. Writes stay in the layer; reads see
// the parent's entries overridden by the layer's own. Remove only affects
// keys put on the layer.
type Layer struct {
	parent Store
	own    *Map
}

// NewLayer creates an empty layer over parent. parent may be nil.
func NewLayer(parent Store) *Layer {
	return &Layer{parent: parent, own: NewMap()}
}

// Put sets key to value in the layer.
func (l *Layer) Put(key, value string) {
	l.own.Put(key, value)
}

// GetAll returns the merged entries of the parent and the layer.
func (l *Layer) GetAll() map[string]string {
	if l.parent == nil {
		return l.own.GetAll()
	}
	all := l.parent.GetAll()
	if all == nil {
		all = make(map[string]string)
	}
	maps.Copy(all, l.own.GetAll())
	return all
}

// Remove deletes key from the layer.
func (l *Layer) Remove(key string) {
	l.own.Remove(key)
}

type storeKey struct{}

// WithStore returns ctx carrying store.
func WithStore(ctx context.Context, store Store) context.Context {
	return context.WithValue(ctx, storeKey{}, store)
}

// FromContext returns the store carried by ctx.
func FromContext(ctx context.Context) (Store, bool) {
	s, ok := ctx.Value(storeKey{}).(Store)
	return s, ok
}

// Ensure returns ctx carrying a store, installing a new Map if ctx has none.
func Ensure(ctx context.Context) (context.Context, Store) {
	if s, ok := FromContext(ctx); ok {
		return ctx, s
	}
	m := NewMap()
	return WithStore(ctx, m), m
}

// Child returns ctx carrying a new Layer over the store of ctx, if any.
// Keys published on the layer are only seen through the returned context.
func Child(ctx context.Context) (context.Context, Store) {
	parent, _ := FromContext(ctx)
	l := NewLayer(parent)
	return WithStore(ctx, l), l
}
