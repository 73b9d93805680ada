package vkpool

import (
	"errors"
	"fmt"
	"runtime"

	vk "github.com/vulkan-go/vulkan"
)

var (
	// ErrInvalidAccess reports an access flag combination outside
	// {Read, Write, Read|Write} passed to Memory.Map. It is raised
	// before any native call is made.
	ErrInvalidAccess = errors.New("vkpool: invalid memory access flags")

	// ErrNotHostVisible reports an attempt to map an allocation that
	// was not placed in host-visible memory.
	ErrNotHostVisible = errors.New("vkpool: memory is not host-visible")

	// ErrTimeout reports a fence wait that elapsed before the device
	// signaled. Callers may retry with a longer timeout.
	ErrTimeout = errors.New("vkpool: fence wait timed out")

	// ErrDeviceLost reports a lost device surfaced by the driver. Not
	// recoverable within this layer.
	ErrDeviceLost = errors.New("vkpool: device lost")
)

func isError(ret vk.Result) bool {
	return ret != vk.Success
}

// newError wraps a non-success vk.Result with the calling stack frame.
// vk.Timeout and vk.ErrorDeviceLost map onto their sentinels so callers
// can match with errors.Is.
func newError(ret vk.Result) error {
	switch ret {
	case vk.Success:
		return nil
	case vk.Timeout:
		return ErrTimeout
	case vk.ErrorDeviceLost:
		return ErrDeviceLost
	}
	pc, _, _, ok := runtime.Caller(1)
	if !ok {
		return fmt.Errorf("vulkan error: %s (%d)",
			vk.Error(ret).Error(), ret)
	}
	frame := newStackFrame(pc)
	return fmt.Errorf("vulkan error: %s (%d) on %s",
		vk.Error(ret).Error(), ret, frame.String())
}

func checkErr(err *error) {
	if v := recover(); v != nil {
		*err = fmt.Errorf("%+v", v)
	}
}
