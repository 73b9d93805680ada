package vkpool

// Factory produces and destroys native objects from descriptor values.
// Descriptors must be comparable value types; two descriptors compare
// equal exactly when every field matches, which is the cache key
// contract.
type Factory[D comparable, H any] interface {
	Create(descriptor D) (H, error)
	Destroy(handle H)
}

// Cache memoizes a Factory: the first retrieval for a descriptor value
// invokes the factory, later retrievals with an equal descriptor return
// the stored handle. Samplers are one instantiation; anything keyed by
// a small descriptor struct fits.
type Cache[D comparable, H any] struct {
	factory Factory[D, H]
	entries map[D]H
}

func NewCache[D comparable, H any](factory Factory[D, H]) *Cache[D, H] {
	return &Cache[D, H]{
		factory: factory,
		entries: make(map[D]H),
	}
}

// Retrieve returns the handle for descriptor, creating it on first use.
// A factory failure is propagated and nothing is stored.
func (c *Cache[D, H]) Retrieve(descriptor D) (H, error) {
	if handle, ok := c.entries[descriptor]; ok {
		return handle, nil
	}
	handle, err := c.factory.Create(descriptor)
	if err != nil {
		var zero H
		return zero, err
	}
	c.entries[descriptor] = handle
	return handle, nil
}

func (c *Cache[D, H]) Len() int {
	return len(c.entries)
}

// Purge destroys every cached handle and empties the cache.
func (c *Cache[D, H]) Purge() {
	for descriptor, handle := range c.entries {
		c.factory.Destroy(handle)
		delete(c.entries, descriptor)
	}
}
