package embedding

import "sync"

// Registry caches Provider instances by ComputeProviderKey, so a process
// serving N bots with identical embedding configuration shares one
// Provider (and its underlying HTTP client) rather than constructing N.
type Registry struct {
	mu        sync.Mutex
	providers map[string]*Provider
}

// NewRegistry builds an empty provider registry.
func NewRegistry() *Registry {
	return &Registry{providers: make(map[string]*Provider)}
}

// GetOrCreate returns the cached Provider for key, constructing it via
// build only on first use.
func (r *Registry) GetOrCreate(key string, build func() (*Provider, error)) (*Provider, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.providers[key]; ok {
		return p, nil
	}
	p, err := build()
	if err != nil {
		return nil, err
	}
	r.providers[key] = p
	return p, nil
}
