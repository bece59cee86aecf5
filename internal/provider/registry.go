package provider

import (
	"sort"
	"sync"
)

// Factory constructs a fresh adapter instance for one provider.
type Factory func() Provider

// Registry is an immutable mapping from provider key to adapter factory.
// It is constructed once at startup with every supported provider and
// passed to consumers; there is no runtime registration. Instances are
// memoized so per-provider caches (dynamic domain lists, positional-id
// rehydration state) survive for the process lifetime.
type Registry struct {
	factories map[string]Factory
	keys      []string

	mu        sync.Mutex
	instances map[string]Provider
}

// NewRegistry builds a registry from an explicit key→factory mapping.
// Keys are enumerated in sorted order for stable presentation.
func NewRegistry(factories map[string]Factory) *Registry {
	keys := make([]string, 0, len(factories))
	for key := range factories {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	return &Registry{
		factories: factories,
		keys:      keys,
		instances: make(map[string]Provider),
	}
}

// Get returns the factory registered under key, or an
// *UnknownProviderError if the key was never registered.
func (r *Registry) Get(key string) (Factory, error) {
	f, ok := r.factories[key]
	if !ok {
		return nil, &UnknownProviderError{Key: key}
	}
	return f, nil
}

// Provider returns the memoized adapter instance for key, constructing
// it on first use.
func (r *Registry) Provider(key string) (Provider, error) {
	f, err := r.Get(key)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if p, ok := r.instances[key]; ok {
		return p, nil
	}
	p := f()
	r.instances[key] = p
	return p, nil
}

// Keys returns all registered provider keys in sorted order.
func (r *Registry) Keys() []string {
	out := make([]string, len(r.keys))
	copy(out, r.keys)
	return out
}
