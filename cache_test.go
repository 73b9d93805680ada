package vkpool

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	vk "github.com/vulkan-go/vulkan"
)

// countingFactory mints monotonically increasing handles so tests can
// tell cached results from fresh ones.
type countingFactory struct {
	next      int
	created   int
	destroyed int
	failNext  bool
}

func (f *countingFactory) Create(descriptor SamplerDescriptor) (int, error) {
	if f.failNext {
		f.failNext = false
		return 0, errors.New("create failed")
	}
	f.next++
	f.created++
	return f.next, nil
}

func (f *countingFactory) Destroy(handle int) {
	f.destroyed++
}

func linearClamp() SamplerDescriptor {
	return SamplerDescriptor{
		Filter:      vk.FilterLinear,
		MipmapMode:  vk.SamplerMipmapModeLinear,
		AddressMode: vk.SamplerAddressModeClampToEdge,
		Border:      vk.BorderColorFloatOpaqueBlack,
	}
}

func TestCacheDeduplicatesEqualDescriptors(t *testing.T) {
	factory := &countingFactory{}
	cache := NewCache[SamplerDescriptor, int](factory)

	first, err := cache.Retrieve(linearClamp())
	require.NoError(t, err)
	second, err := cache.Retrieve(linearClamp())
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, factory.created)
	assert.Equal(t, 1, cache.Len())
}

func TestCacheDistinguishesDescriptors(t *testing.T) {
	factory := &countingFactory{}
	cache := NewCache[SamplerDescriptor, int](factory)

	clamp, err := cache.Retrieve(linearClamp())
	require.NoError(t, err)

	repeat := linearClamp()
	repeat.AddressMode = vk.SamplerAddressModeRepeat
	repeated, err := cache.Retrieve(repeat)
	require.NoError(t, err)

	assert.NotEqual(t, clamp, repeated)
	assert.Equal(t, 2, factory.created)
	assert.Equal(t, 2, cache.Len())
}

func TestCacheDoesNotStoreFailedCreates(t *testing.T) {
	factory := &countingFactory{failNext: true}
	cache := NewCache[SamplerDescriptor, int](factory)

	_, err := cache.Retrieve(linearClamp())
	require.Error(t, err)
	assert.Equal(t, 0, cache.Len())

	// The next retrieval goes back through the factory.
	handle, err := cache.Retrieve(linearClamp())
	require.NoError(t, err)
	assert.NotZero(t, handle)
	assert.Equal(t, 1, cache.Len())
}

func TestCachePurgeDestroysEverything(t *testing.T) {
	factory := &countingFactory{}
	cache := NewCache[SamplerDescriptor, int](factory)

	repeat := linearClamp()
	repeat.AddressMode = vk.SamplerAddressModeRepeat
	_, err := cache.Retrieve(linearClamp())
	require.NoError(t, err)
	_, err = cache.Retrieve(repeat)
	require.NoError(t, err)

	cache.Purge()
	assert.Equal(t, 0, cache.Len())
	assert.Equal(t, 2, factory.destroyed)

	// Purged entries are recreated on demand, not resurrected.
	_, err = cache.Retrieve(linearClamp())
	require.NoError(t, err)
	assert.Equal(t, 3, factory.created)
}
