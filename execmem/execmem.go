//go:build unix

// Package execmem manages the write-then-execute memory lifecycle the JIT
// backend needs: allocate a private anonymous mapping, write generated
// machine code into it, flip it to executable, and release it when the
// scanner is closed.
//
// Uses golang.org/x/sys/unix for the mmap/mprotect/munmap syscalls,
// sibling package to golang.org/x/sys/cpu already used elsewhere in this
// module for CPU feature probing.
package execmem

import (
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/coregx/bytenfa/bytenfaerr"
)

// Region is an owned, page-backed memory mapping. It starts writable, is
// flipped to executable exactly once by MakeExecutable, and must be
// released with Free.
type Region struct {
	addr []byte
}

// Alloc maps a private, anonymous, read-write region of at least n bytes.
func Alloc(n int) (*Region, error) {
	if n == 0 {
		n = 1
	}
	addr, err := unix.Mmap(-1, 0, n, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil, &bytenfaerr.LibcError{Op: "mmap", Err: err}
	}
	return &Region{addr: addr}, nil
}

// Bytes returns the region's backing slice for writing generated code
// into. It must not be retained past MakeExecutable: on most platforms
// writing to executable pages is forbidden (W^X), and on all platforms
// writing after MakeExecutable is a logic error.
func (r *Region) Bytes() []byte {
	return r.addr
}

// MakeExecutable flips the region from read-write to execute-only. After
// this call the region's contents must not be written.
func (r *Region) MakeExecutable() error {
	if err := unix.Mprotect(r.addr, unix.PROT_EXEC); err != nil {
		return &bytenfaerr.LibcError{Op: "mprotect", Err: err}
	}
	return nil
}

// Entry returns the region's base address as a function-call target. The
// caller is responsible for invoking it with the correct calling
// convention; see jit.jitCall for the trampoline.
func (r *Region) Entry() uintptr {
	return uintptr(unsafe.Pointer(&r.addr[0]))
}

// Free unmaps the region. Safe to call more than once (later calls are
// no-ops); the region must not be used afterward.
func (r *Region) Free() error {
	if r.addr == nil {
		return nil
	}
	err := unix.Munmap(r.addr)
	r.addr = nil
	if err != nil {
		return &bytenfaerr.LibcError{Op: "munmap", Err: err}
	}
	return nil
}
