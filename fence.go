package vkpool

import (
	"errors"
	"time"

	vk "github.com/vulkan-go/vulkan"
)

// NoTimeout makes Fence.Wait block until the device signals.
const NoTimeout time.Duration = -1

// Fence is a host/device synchronization primitive handed out by a
// Pool. The value is a non-owning view; the Pool retires or destroys
// the native fence.
type Fence struct {
	device vk.Device
	handle vk.Fence
}

func (f Fence) Valid() bool {
	return f.device != nil && f.handle != vk.NullFence
}

func (f Fence) Handle() vk.Fence {
	return f.handle
}

// Wait blocks until the device signals the fence or timeout elapses.
// Pass NoTimeout (or any negative duration) to wait without bound.
// An elapsed deadline reports ErrTimeout; device loss and other driver
// errors are fatal and reported as themselves. Wait does not reset the
// fence.
func (f Fence) Wait(timeout time.Duration) error {
	if !f.Valid() {
		return errors.New("vkpool: wait on an invalid fence")
	}
	deadline := uint64(vk.MaxUint64)
	if timeout >= 0 {
		deadline = uint64(timeout.Nanoseconds())
	}
	ret := vk.WaitForFences(f.device, 1, []vk.Fence{f.handle}, vk.True, deadline)
	return newError(ret)
}

// Fence returns a fence in the in-use state, recycling one from the
// free list when available and creating a native fence otherwise.
func (p *Pool) Fence() (Fence, error) {
	if n := len(p.freeFences); n > 0 {
		handle := p.freeFences[n-1]
		p.freeFences = p.freeFences[:n-1]
		p.inUseFences = append(p.inUseFences, handle)
		return Fence{device: p.device, handle: handle}, nil
	}
	var handle vk.Fence
	ret := vk.CreateFence(p.device, &vk.FenceCreateInfo{
		SType: vk.StructureTypeFenceCreateInfo,
	}, nil, &handle)
	if isError(ret) {
		return Fence{}, newError(ret)
	}
	p.inUseFences = append(p.inUseFences, handle)
	return Fence{device: p.device, handle: handle}, nil
}

// Retire resets a fence issued by this Pool and moves it from the
// in-use to the free list, making it eligible for reuse by Fence. The
// caller must no longer touch f afterward. Retiring a fence the device
// has not signaled yet is a caller error this layer does not detect.
func (p *Pool) Retire(f Fence) error {
	for i, handle := range p.inUseFences {
		if handle != f.handle {
			continue
		}
		ret := vk.ResetFences(p.device, 1, []vk.Fence{handle})
		if isError(ret) {
			return newError(ret)
		}
		p.inUseFences = append(p.inUseFences[:i], p.inUseFences[i+1:]...)
		p.freeFences = append(p.freeFences, handle)
		return nil
	}
	return errors.New("vkpool: fence is not in use by this pool")
}
