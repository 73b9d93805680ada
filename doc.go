// Package vkpool pools and recycles Vulkan device resources: buffers,
// images with their views and samplers, and fences. A Pool owns every
// native object it hands out until an explicit Purge, deduplicates
// immutable sampler state through a descriptor-keyed cache, and scopes
// host access to device memory behind guards that flush and unmap on
// release.
//
// The package performs no internal locking; a Pool must be confined to
// one goroutine or serialized externally.
package vkpool
