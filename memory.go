package vkpool

import (
	"unsafe"

	vk "github.com/vulkan-go/vulkan"
)

// Access declares what a host mapping will be used for. The only legal
// values are AccessRead, AccessWrite, and AccessRead|AccessWrite.
type Access uint8

const (
	AccessRead  Access = 1 << 0
	AccessWrite Access = 1 << 1
)

func (a Access) valid() bool {
	switch a {
	case AccessRead, AccessWrite, AccessRead | AccessWrite:
		return true
	}
	return false
}

// Memory is one device allocation owned by a Buffer or Image. It is
// created and freed by the Pool alongside its owner.
type Memory struct {
	device vk.Device
	handle vk.DeviceMemory
	size   vk.DeviceSize
	flags  vk.MemoryPropertyFlags
}

func (m *Memory) Valid() bool {
	return m != nil && m.handle != vk.NullDeviceMemory
}

// Size is the allocation size, which may exceed the requested size due
// to alignment.
func (m *Memory) Size() vk.DeviceSize {
	return m.size
}

func (m *Memory) HostVisible() bool {
	return m.flags&vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit) != 0
}

func (m *Memory) hostCoherent() bool {
	return m.flags&vk.MemoryPropertyFlags(vk.MemoryPropertyHostCoherentBit) != 0
}

// Map opens a scoped host window onto the allocation. The returned
// Scope must be released exactly once; the window is invalid afterward.
// Access flags are validated before any native call, and non-coherent
// read mappings are invalidated so the host observes device writes.
//
// Map has a pointer receiver on purpose: it must only be called on a
// named Memory reachable from a live Buffer or Image, never on a
// temporary, since the Scope's release acts on the allocation the
// receiver identifies.
func (m *Memory) Map(access Access) (*Scope, error) {
	if !access.valid() {
		return nil, ErrInvalidAccess
	}
	if !m.HostVisible() {
		return nil, ErrNotHostVisible
	}
	var ptr unsafe.Pointer
	ret := vk.MapMemory(m.device, m.handle, 0, vk.DeviceSize(vk.WholeSize), 0, &ptr)
	if isError(ret) {
		return nil, newError(ret)
	}
	if access&AccessRead != 0 && !m.hostCoherent() {
		ret = vk.InvalidateMappedMemoryRanges(m.device, 1, []vk.MappedMemoryRange{{
			SType:  vk.StructureTypeMappedMemoryRange,
			Memory: m.handle,
			Offset: 0,
			Size:   vk.DeviceSize(vk.WholeSize),
		}})
		if isError(ret) {
			vk.UnmapMemory(m.device, m.handle)
			return nil, newError(ret)
		}
	}
	return &Scope{
		memory: m,
		ptr:    ptr,
		access: access,
	}, nil
}

// Scope guards one host mapping. No host pointer into device memory
// exists outside a live Scope; Release flushes pending host writes and
// unmaps, after which every view obtained from the Scope is dangling.
type Scope struct {
	memory   *Memory
	ptr      unsafe.Pointer
	access   Access
	released bool
}

func (s *Scope) Len() int {
	return int(s.memory.size)
}

// Bytes is the writable mapped window. It panics when the Scope was
// mapped without AccessWrite; read-only scopes must go through Read.
func (s *Scope) Bytes() []byte {
	if s.access&AccessWrite == 0 {
		panic("vkpool: Bytes on a read-only memory scope")
	}
	if s.released {
		panic("vkpool: Bytes on a released memory scope")
	}
	return unsafe.Slice((*byte)(s.ptr), s.Len())
}

// Read copies out of the mapped window into dst and reports the number
// of bytes copied. Requires AccessRead.
func (s *Scope) Read(dst []byte) int {
	if s.access&AccessRead == 0 {
		panic("vkpool: Read on a write-only memory scope")
	}
	if s.released {
		panic("vkpool: Read on a released memory scope")
	}
	src := unsafe.Slice((*byte)(s.ptr), s.Len())
	return copy(dst, src)
}

// Write copies src into the mapped window and reports the number of
// bytes copied. Input beyond the window is truncated, never written
// past the allocation. Requires AccessWrite.
func (s *Scope) Write(src []byte) int {
	if s.access&AccessWrite == 0 {
		panic("vkpool: Write on a read-only memory scope")
	}
	if s.released {
		panic("vkpool: Write on a released memory scope")
	}
	if len(src) > s.Len() {
		src = src[:s.Len()]
	}
	return vk.Memcopy(s.ptr, src)
}

// Release flushes host writes on non-coherent memory and unmaps. The
// first call does the work; it is safe under defer on every exit path.
func (s *Scope) Release() error {
	if s.released {
		return nil
	}
	s.released = true
	var err error
	if s.access&AccessWrite != 0 && !s.memory.hostCoherent() {
		ret := vk.FlushMappedMemoryRanges(s.memory.device, 1, []vk.MappedMemoryRange{{
			SType:  vk.StructureTypeMappedMemoryRange,
			Memory: s.memory.handle,
			Offset: 0,
			Size:   vk.DeviceSize(vk.WholeSize),
		}})
		err = newError(ret)
	}
	vk.UnmapMemory(s.memory.device, s.memory.handle)
	s.ptr = nil
	return err
}
