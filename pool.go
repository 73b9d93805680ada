package vkpool

import (
	"log"

	vk "github.com/vulkan-go/vulkan"
)

// reserve is the slot count pre-reserved per resource collection.
const reserve = 256

// Pool is the arena owning every buffer, image, sampler, and fence
// created through it. Values handed out by Buffer, Image, and Fence
// stay valid until Purge; after Purge they dangle and must not be used.
// A Pool is confined to a single goroutine.
type Pool struct {
	device   vk.Device
	memProps vk.PhysicalDeviceMemoryProperties

	buffers  []Buffer
	images   []Image
	samplers *SamplerCache

	freeFences  []vk.Fence
	inUseFences []vk.Fence
}

// NewPool binds a resource arena to the platform's device. The
// platform must outlive the Pool.
func NewPool(p Platform) *Pool {
	device := p.Device()
	return &Pool{
		device:      device,
		memProps:    p.MemoryProperties(),
		buffers:     make([]Buffer, 0, reserve),
		images:      make([]Image, 0, reserve),
		samplers:    NewSamplerCache(device),
		freeFences:  make([]vk.Fence, 0, reserve),
		inUseFences: make([]vk.Fence, 0, reserve),
	}
}

// allocate picks a memory type satisfying both the object's
// requirements and the usage hint, then allocates. No fallback to a
// different usage class happens on failure.
func (p *Pool) allocate(memReqs vk.MemoryRequirements, usage MemoryUsage) (Memory, error) {
	required, preferred := usage.propertyFlags()
	index, ok := findMemoryTypeFallback(p.memProps, memReqs.MemoryTypeBits, required, preferred)
	if !ok {
		log.Println("vulkan warning: no memory type matches the requested usage")
		return Memory{}, newError(vk.ErrorOutOfDeviceMemory)
	}
	var handle vk.DeviceMemory
	ret := vk.AllocateMemory(p.device, &vk.MemoryAllocateInfo{
		SType:           vk.StructureTypeMemoryAllocateInfo,
		AllocationSize:  memReqs.Size,
		MemoryTypeIndex: index,
	}, nil, &handle)
	if isError(ret) {
		return Memory{}, newError(ret)
	}
	p.memProps.MemoryTypes[index].Deref()
	return Memory{
		device: p.device,
		handle: handle,
		size:   memReqs.Size,
		flags:  p.memProps.MemoryTypes[index].PropertyFlags,
	}, nil
}

// PoolStats reports the sizes of the Pool's internal collections.
type PoolStats struct {
	Buffers     int
	Images      int
	Samplers    int
	FencesFree  int
	FencesInUse int
}

func (p *Pool) Stats() PoolStats {
	return PoolStats{
		Buffers:     len(p.buffers),
		Images:      len(p.images),
		Samplers:    p.samplers.Len(),
		FencesFree:  len(p.freeFences),
		FencesInUse: len(p.inUseFences),
	}
}

// Purge releases every resource this Pool ever created, free or
// in-use, and empties all collections. Previously returned Buffer,
// Image, and Fence values are dangling afterward; the caller must have
// synchronized with the device before purging, no waits happen here.
func (p *Pool) Purge() {
	for i := range p.buffers {
		vk.DestroyBuffer(p.device, p.buffers[i].Object.Handle, nil)
		vk.FreeMemory(p.device, p.buffers[i].Memory.handle, nil)
	}
	p.buffers = p.buffers[:0]

	for i := range p.images {
		vk.DestroyImageView(p.device, p.images[i].Object.View, nil)
		vk.DestroyImage(p.device, p.images[i].Object.Handle, nil)
		vk.FreeMemory(p.device, p.images[i].Memory.handle, nil)
	}
	p.images = p.images[:0]
	p.samplers.Purge()

	for _, fence := range p.freeFences {
		vk.DestroyFence(p.device, fence, nil)
	}
	p.freeFences = p.freeFences[:0]
	for _, fence := range p.inUseFences {
		vk.DestroyFence(p.device, fence, nil)
	}
	p.inUseFences = p.inUseFences[:0]
}
