package relay

import (
	"errors"
	"slices"
	"sync"
	"sync/atomic"
)

// Registry holds the ordered webhook endpoint URLs and the process-wide
// rotation pointer. The pointer is advanced when an endpoint is observed to
// fail so that later requests start from the endpoint most recently known
// to work.
//
// Rotation uses an atomic counter; concurrent requests may race on it. The
// worst case is two requests trying the same endpoint once before diverging,
// which is harmless since attempts are bounded per request.
type Registry struct {
	mu   sync.RWMutex
	urls []string
	idx  atomic.Int64
}

// NewRegistry builds a registry from the configured endpoint list.
// The registry is never empty; an empty list is a configuration error.
func NewRegistry(urls []string) (*Registry, error) {
	if len(urls) == 0 {
		return nil, errors.New("endpoint registry requires at least one URL")
	}
	r := &Registry{urls: slices.Clone(urls)}
	return r, nil
}

// Len returns the number of registered endpoints.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.urls)
}

// URLs returns a copy of the endpoint list in registration order.
func (r *Registry) URLs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.urls)
}

// CurrentIndex returns the index the rotation pointer currently refers to.
func (r *Registry) CurrentIndex() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int(r.idx.Load() % int64(len(r.urls)))
}

// Current returns the endpoint at the rotation pointer.
func (r *Registry) Current() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.urls[int(r.idx.Load()%int64(len(r.urls)))]
}

// URL returns the endpoint at index i.
func (r *Registry) URL(i int) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.urls[i%len(r.urls)]
}

// Advance moves the rotation pointer to the next endpoint and returns it.
func (r *Registry) Advance() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	i := r.idx.Add(1)
	return r.urls[int(i%int64(len(r.urls)))]
}

// RotateTo pins the rotation pointer at index i. Used by the health prober
// to bias traffic toward the first reachable endpoint.
func (r *Registry) RotateTo(i int) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	r.idx.Store(int64(i % len(r.urls)))
}

// Reload replaces the endpoint list (config hot-reload) and resets the
// rotation pointer to the new primary.
func (r *Registry) Reload(urls []string) error {
	if len(urls) == 0 {
		return errors.New("endpoint registry requires at least one URL")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.urls = slices.Clone(urls)
	r.idx.Store(0)
	return nil
}
