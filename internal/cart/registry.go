package cart

import (
	"sync"
)

// Registry hands out one in-memory cart per cart key. A key identifies the
// active browser session; carts are not persisted across sessions.
type Registry struct {
	mu     sync.Mutex
	stores map[string]*Store
}

func NewRegistry() *Registry {
	return &Registry{stores: map[string]*Store{}}
}

func (r *Registry) ForKey(key string) *Store {
	r.mu.Lock()
	defer r.mu.Unlock()
	store, ok := r.stores[key]
	if !ok {
		store = NewStore()
		r.stores[key] = store
	}
	return store
}

func (r *Registry) Drop(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.stores, key)
}
