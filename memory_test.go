package vkpool

import (
	"bytes"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapRejectsInvalidAccess(t *testing.T) {
	var memory Memory

	// Rejected before any native call, so a zero Memory is safe here.
	for _, access := range []Access{0, 1 << 2, AccessRead | 1<<2, AccessWrite | 1<<3} {
		_, err := memory.Map(access)
		require.ErrorIs(t, err, ErrInvalidAccess, "access %04b", access)
	}
}

func TestMapRejectsNonHostVisibleMemory(t *testing.T) {
	memory := Memory{size: 64} // no host-visible property flag

	_, err := memory.Map(AccessRead)
	require.ErrorIs(t, err, ErrNotHostVisible)
	_, err = memory.Map(AccessRead | AccessWrite)
	require.ErrorIs(t, err, ErrNotHostVisible)
}

func TestScopeWriteStaysInsideWindow(t *testing.T) {
	// Back an 8-byte window with a larger buffer so an overrun would
	// land in observable memory instead of past an allocation.
	backing := make([]byte, 16)
	scope := &Scope{
		memory: &Memory{size: 8},
		ptr:    unsafe.Pointer(&backing[0]),
		access: AccessWrite,
	}

	src := bytes.Repeat([]byte{0xAA}, 16)
	n := scope.Write(src)

	assert.Equal(t, 8, n)
	assert.Equal(t, bytes.Repeat([]byte{0xAA}, 8), backing[:8])
	assert.Equal(t, make([]byte, 8), backing[8:], "bytes past the window must stay untouched")
}

func TestScopeReadStaysInsideWindow(t *testing.T) {
	backing := bytes.Repeat([]byte{0x5A}, 16)
	scope := &Scope{
		memory: &Memory{size: 8},
		ptr:    unsafe.Pointer(&backing[0]),
		access: AccessRead,
	}

	dst := make([]byte, 16)
	n := scope.Read(dst)

	assert.Equal(t, 8, n)
	assert.Equal(t, bytes.Repeat([]byte{0x5A}, 8), dst[:8])
	assert.Equal(t, make([]byte, 8), dst[8:])
}

func TestAccessValidity(t *testing.T) {
	assert.True(t, AccessRead.valid())
	assert.True(t, AccessWrite.valid())
	assert.True(t, (AccessRead | AccessWrite).valid())
	assert.False(t, Access(0).valid())
	assert.False(t, Access(1<<2).valid())
}
