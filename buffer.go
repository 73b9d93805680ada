package vkpool

import (
	vk "github.com/vulkan-go/vulkan"
)

// MemoryUsage is the placement hint for an allocation, resolved against
// the physical device's memory types at allocation time.
type MemoryUsage uint8

const (
	// MemoryUsageGPUOnly places the allocation in device-local memory.
	MemoryUsageGPUOnly MemoryUsage = iota
	// MemoryUsageCPUOnly places the allocation in host-visible,
	// host-coherent memory.
	MemoryUsageCPUOnly
	// MemoryUsageCPUToGPU is host-visible memory for upload, preferring
	// device-local types when the hardware exposes them.
	MemoryUsageCPUToGPU
	// MemoryUsageGPUToCPU is host-visible memory for readback,
	// preferring host-cached types.
	MemoryUsageGPUToCPU
)

func (u MemoryUsage) propertyFlags() (required, preferred vk.MemoryPropertyFlags) {
	switch u {
	case MemoryUsageGPUOnly:
		return vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit), 0
	case MemoryUsageCPUOnly:
		return vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit | vk.MemoryPropertyHostCoherentBit), 0
	case MemoryUsageCPUToGPU:
		return vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit),
			vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit)
	case MemoryUsageGPUToCPU:
		return vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit),
			vk.MemoryPropertyFlags(vk.MemoryPropertyHostCachedBit)
	}
	return vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit), 0
}

// BufferDescriptor describes a buffer request: byte size, native usage
// flags, and the placement hint for its memory.
type BufferDescriptor struct {
	Size   vk.DeviceSize
	Usage  vk.BufferUsageFlags
	Memory MemoryUsage
}

// BufferObject is the native buffer handle with the window it covers.
type BufferObject struct {
	Handle vk.Buffer
	Offset vk.DeviceSize
	Range  vk.DeviceSize
}

func (o BufferObject) Valid() bool {
	return o.Handle != vk.NullBuffer
}

// Buffer pairs a buffer object with its owning allocation. The value is
// a non-owning view; the Pool that created it keeps ownership until
// Purge.
type Buffer struct {
	Object BufferObject
	Memory Memory
}

func (b Buffer) Valid() bool {
	return b.Object.Valid()
}

// Buffer creates a buffer per descriptor and binds fresh memory to it.
// Every call produces a distinct buffer; there is no deduplication.
func (p *Pool) Buffer(descriptor BufferDescriptor) (Buffer, error) {
	var handle vk.Buffer
	ret := vk.CreateBuffer(p.device, &vk.BufferCreateInfo{
		SType:       vk.StructureTypeBufferCreateInfo,
		Size:        descriptor.Size,
		Usage:       descriptor.Usage,
		SharingMode: vk.SharingModeExclusive,
	}, nil, &handle)
	if isError(ret) {
		return Buffer{}, newError(ret)
	}

	// Ask the device about its memory requirements.
	var memReqs vk.MemoryRequirements
	vk.GetBufferMemoryRequirements(p.device, handle, &memReqs)
	memReqs.Deref()

	memory, err := p.allocate(memReqs, descriptor.Memory)
	if err != nil {
		vk.DestroyBuffer(p.device, handle, nil)
		return Buffer{}, err
	}
	ret = vk.BindBufferMemory(p.device, handle, memory.handle, 0)
	if isError(ret) {
		vk.FreeMemory(p.device, memory.handle, nil)
		vk.DestroyBuffer(p.device, handle, nil)
		return Buffer{}, newError(ret)
	}

	buffer := Buffer{
		Object: BufferObject{
			Handle: handle,
			Offset: 0,
			Range:  descriptor.Size,
		},
		Memory: memory,
	}
	p.buffers = append(p.buffers, buffer)
	return buffer, nil
}
