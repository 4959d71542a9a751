// Package jitprefilter provides a fast single-byte scan, used by the JIT
// scanner to reject an input whose first byte is not its literal-prefix
// byte before falling into the per-byte wave loop; the scan does not skip
// ahead within the input. It is a pure Go SWAR (SIMD-within-a-register)
// scanner rather than hand-written amd64 assembly, so IndexByte stays
// portable on every platform. HasAVX2 is exposed purely as a diagnostic
// capability probe (surfaced through scanner.Scanner.Diagnostics) and
// does not gate any algorithmic difference.
package jitprefilter

import (
	"encoding/binary"
	"math/bits"

	"golang.org/x/sys/cpu"
)

// HasAVX2 reports whether the running CPU advertises AVX2 support. It is
// informational only; IndexByte never branches on it.
func HasAVX2() bool {
	return cpu.X86.HasAVX2
}

// IndexByte returns the index of the first occurrence of needle in
// haystack, or -1 if it is not present. Haystacks of 8 bytes or more are
// scanned 8 bytes at a time via a broadcast-XOR-and-zero-byte-detect
// technique; shorter ones fall back to a linear scan.
func IndexByte(haystack []byte, needle byte) int {
	n := len(haystack)
	if n == 0 {
		return -1
	}
	if n < 8 {
		for i := 0; i < n; i++ {
			if haystack[i] == needle {
				return i
			}
		}
		return -1
	}

	needleMask := uint64(needle) * 0x0101010101010101

	i := 0
	for i+8 <= n {
		chunk := binary.LittleEndian.Uint64(haystack[i:])
		xor := chunk ^ needleMask

		const lo8 = 0x0101010101010101
		const hi8 = 0x8080808080808080
		hasZero := (xor - lo8) &^ xor & hi8

		if hasZero != 0 {
			return i + bits.TrailingZeros64(hasZero)/8
		}
		i += 8
	}

	for i < n {
		if haystack[i] == needle {
			return i
		}
		i++
	}
	return -1
}
