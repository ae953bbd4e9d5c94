package openrouter

import "sync"

// Cache reuses Client instances across calls, keyed by the credential
// string itself. Keying by value rather than holding one mutable slot means
// a credential change always yields a fresh client and an old credential can
// never leak into a new request.
type Cache struct {
	mu      sync.Mutex
	opts    []Option
	clients map[string]*Client
}

// NewCache builds a cache; opts are applied to every constructed client.
func NewCache(opts ...Option) *Cache {
	return &Cache{
		opts:    opts,
		clients: make(map[string]*Client),
	}
}

// Get returns the client for the given credential, constructing it on first
// use.
func (c *Cache) Get(apiKey string) *Client {
	c.mu.Lock()
	defer c.mu.Unlock()

	if client, ok := c.clients[apiKey]; ok {
		return client
	}
	client := NewClient(apiKey, c.opts...)
	c.clients[apiKey] = client
	return client
}
