package vkpool

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	vk "github.com/vulkan-go/vulkan"
)

// newTestPool stands up a real platform; without a Vulkan loader and
// device the test is skipped.
func newTestPool(t *testing.T) *Pool {
	t.Helper()
	if err := InitVulkan(); err != nil {
		t.Skipf("no vulkan loader: %v", err)
	}
	platform, err := NewPlatform(BaseApplication{Name: "vkpool test"})
	if err != nil {
		t.Skipf("no vulkan device: %v", err)
	}
	t.Cleanup(platform.Destroy)

	pool := NewPool(platform)
	t.Cleanup(pool.Purge)
	return pool
}

func TestPoolBuffer(t *testing.T) {
	pool := newTestPool(t)

	buffer, err := pool.Buffer(BufferDescriptor{
		Size:   1024,
		Usage:  vk.BufferUsageFlags(vk.BufferUsageStorageBufferBit),
		Memory: MemoryUsageGPUOnly,
	})
	require.NoError(t, err)

	assert.True(t, buffer.Valid())
	assert.True(t, buffer.Object.Valid())
	assert.GreaterOrEqual(t, uint64(buffer.Memory.Size()), uint64(1024))
	assert.Equal(t, vk.DeviceSize(1024), buffer.Object.Range)
	assert.Equal(t, 1, pool.Stats().Buffers)
}

func TestPoolBufferMapRoundTrip(t *testing.T) {
	pool := newTestPool(t)

	buffer, err := pool.Buffer(BufferDescriptor{
		Size:   256,
		Usage:  vk.BufferUsageFlags(vk.BufferUsageStorageBufferBit),
		Memory: MemoryUsageCPUOnly,
	})
	require.NoError(t, err)
	require.True(t, buffer.Memory.HostVisible())

	payload := make([]byte, 256)
	for i := range payload {
		payload[i] = byte(i)
	}

	scope, err := buffer.Memory.Map(AccessWrite)
	require.NoError(t, err)
	n := scope.Write(payload)
	assert.Equal(t, len(payload), n)
	require.NoError(t, scope.Release())
	require.NoError(t, scope.Release()) // second release is a no-op

	scope, err = buffer.Memory.Map(AccessRead)
	require.NoError(t, err)
	defer scope.Release()

	readBack := make([]byte, 256)
	n = scope.Read(readBack)
	assert.Equal(t, len(readBack), n)
	assert.Equal(t, payload, readBack)

	// A read-only scope has no writable window.
	assert.Panics(t, func() { scope.Bytes() })
}

func TestPoolImageViewReinterpretation(t *testing.T) {
	pool := newTestPool(t)

	image, err := pool.Image(ImageDescriptor{
		Type:   vk.ImageType3d,
		Format: vk.FormatR8g8b8a8Unorm,
		Extent: vk.Extent3D{Width: 8, Height: 8, Depth: 4},
		Usage:  vk.ImageUsageFlags(vk.ImageUsageStorageBit | vk.ImageUsageSampledBit),
		Memory: MemoryUsageGPUOnly,
		View: ImageViewDescriptor{
			Type:   vk.ImageViewType3d,
			Format: vk.FormatR8g8b8a8Uint,
		},
		Sampler: SamplerDescriptor{
			Filter:      vk.FilterNearest,
			MipmapMode:  vk.SamplerMipmapModeNearest,
			AddressMode: vk.SamplerAddressModeClampToEdge,
			Border:      vk.BorderColorFloatOpaqueBlack,
		},
	})
	require.NoError(t, err)

	assert.True(t, image.Valid())
	assert.NotEqual(t, vk.NullImageView, image.Object.View)
	assert.NotEqual(t, vk.NullSampler, image.Object.Sampler)
	assert.Equal(t, vk.ImageLayoutUndefined, image.Object.Layout)
	assert.Equal(t, 1, pool.Stats().Images)
}

func TestPoolImagesShareCachedSampler(t *testing.T) {
	pool := newTestPool(t)

	descriptor := ImageDescriptor{
		Type:   vk.ImageType2d,
		Format: vk.FormatR8g8b8a8Unorm,
		Extent: vk.Extent3D{Width: 16, Height: 16, Depth: 1},
		Usage:  vk.ImageUsageFlags(vk.ImageUsageSampledBit),
		Memory: MemoryUsageGPUOnly,
		View: ImageViewDescriptor{
			Type:   vk.ImageViewType2d,
			Format: vk.FormatR8g8b8a8Unorm,
		},
		Sampler: SamplerDescriptor{
			Filter:      vk.FilterLinear,
			MipmapMode:  vk.SamplerMipmapModeLinear,
			AddressMode: vk.SamplerAddressModeClampToEdge,
			Border:      vk.BorderColorFloatOpaqueBlack,
		},
	}

	first, err := pool.Image(descriptor)
	require.NoError(t, err)
	second, err := pool.Image(descriptor)
	require.NoError(t, err)

	assert.Equal(t, first.Object.Sampler, second.Object.Sampler)
	assert.Equal(t, 1, pool.Stats().Samplers)

	descriptor.Sampler.AddressMode = vk.SamplerAddressModeRepeat
	third, err := pool.Image(descriptor)
	require.NoError(t, err)
	assert.NotEqual(t, first.Object.Sampler, third.Object.Sampler)
	assert.Equal(t, 2, pool.Stats().Samplers)
}

func TestPoolFenceLifecycle(t *testing.T) {
	pool := newTestPool(t)

	const n = 3
	fences := make([]Fence, 0, n)
	for i := 0; i < n; i++ {
		fence, err := pool.Fence()
		require.NoError(t, err)
		require.True(t, fence.Valid())
		fences = append(fences, fence)
	}
	assert.Equal(t, n, pool.Stats().FencesInUse)
	assert.Equal(t, 0, pool.Stats().FencesFree)

	// Nothing was submitted against these fences, so a bounded wait
	// reports a timeout rather than blocking.
	for _, fence := range fences {
		require.ErrorIs(t, fence.Wait(0), ErrTimeout)
	}

	require.NoError(t, pool.Retire(fences[0]))
	assert.Equal(t, n-1, pool.Stats().FencesInUse)
	assert.Equal(t, 1, pool.Stats().FencesFree)

	// The free fence is recycled instead of creating a new one.
	recycled, err := pool.Fence()
	require.NoError(t, err)
	assert.Equal(t, fences[0].Handle(), recycled.Handle())
	assert.Equal(t, 0, pool.Stats().FencesFree)

	pool.Purge()
	stats := pool.Stats()
	assert.Equal(t, 0, stats.FencesInUse)
	assert.Equal(t, 0, stats.FencesFree)

	// A fence requested after purge is freshly created.
	fresh, err := pool.Fence()
	require.NoError(t, err)
	assert.True(t, fresh.Valid())
	assert.Equal(t, 1, pool.Stats().FencesInUse)
}

func TestPoolPurgeEmptiesCollections(t *testing.T) {
	pool := newTestPool(t)

	_, err := pool.Buffer(BufferDescriptor{
		Size:   64,
		Usage:  vk.BufferUsageFlags(vk.BufferUsageUniformBufferBit),
		Memory: MemoryUsageCPUToGPU,
	})
	require.NoError(t, err)
	_, err = pool.Image(ImageDescriptor{
		Type:   vk.ImageType2d,
		Format: vk.FormatR8g8b8a8Unorm,
		Extent: vk.Extent3D{Width: 4, Height: 4, Depth: 1},
		Usage:  vk.ImageUsageFlags(vk.ImageUsageSampledBit),
		Memory: MemoryUsageGPUOnly,
		View: ImageViewDescriptor{
			Type:   vk.ImageViewType2d,
			Format: vk.FormatR8g8b8a8Unorm,
		},
		Sampler: SamplerDescriptor{
			Filter:      vk.FilterNearest,
			MipmapMode:  vk.SamplerMipmapModeNearest,
			AddressMode: vk.SamplerAddressModeClampToEdge,
			Border:      vk.BorderColorFloatOpaqueBlack,
		},
	})
	require.NoError(t, err)
	_, err = pool.Fence()
	require.NoError(t, err)

	pool.Purge()
	assert.Equal(t, PoolStats{}, pool.Stats())
}
