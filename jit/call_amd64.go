//go:build amd64

package jit

import "unsafe"

// jitCall invokes generated machine code at fn under its custom calling
// convention. buf/bufLen become rsi/rdi; bitmap's four words are loaded
// into r8..r11 before the call and stored back after. The return value
// packs the same bits the generated code leaves in eax: bit 0 is
// "accepted at the last step", bit 8 is "still has active states"
// (non-sink).
//
// A Go assembly stub does the register shuffle since Go cannot invoke a
// foreign calling convention — custom register assignment, no GC pointer
// in rsi/rdi's target — from pure Go.
//
//go:noescape
func jitCall(fn uintptr, buf unsafe.Pointer, bufLen uintptr, bitmap *[4]uint64) uint64
