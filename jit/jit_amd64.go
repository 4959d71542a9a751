//go:build amd64

// Package jit compiles an NFA into native amd64 machine code and executes
// it directly, avoiding the interpreter's per-byte dispatch overhead.
// Eligible covers the JIT's state-count ceiling (at most 256 states,
// since the generated code holds the active-state bitmap across exactly
// eight 64-bit registers); scanner.Scanner falls back to interp for
// anything larger.
package jit

import (
	"context"
	"unsafe"

	"github.com/coregx/bytenfa/bitsource"
	"github.com/coregx/bytenfa/bytenfaerr"
	"github.com/coregx/bytenfa/execmem"
	"github.com/coregx/bytenfa/jitprefilter"
	"github.com/coregx/bytenfa/nfa"
)

// maxStates is the largest NFA the JIT backend can compile: four 64-bit
// registers per bitmap buffer covers 256 states.
const maxStates = 256

// Eligible reports whether n's state count fits the JIT's register-
// resident bitmap (at most 256 states).
func Eligible(n *nfa.NFA) bool {
	return n.StateCount() <= maxStates
}

// Scanner is the JIT backend. Not safe for concurrent use; safe to reuse
// across many Match calls.
type Scanner struct {
	region *execmem.Region
	entry  uintptr

	initialBitmap      [4]uint64
	hasAcceptingSource bool

	hasLiteralPrefix bool
	literalPrefix    byte
}

// literalPrefixByte reports the fast literal-prefix byte for n, if one
// exists: every non-accept source state's range set must be a single
// disjoint byte (Lo == Hi, not Inverted), and all such source states must
// agree on the same byte, so a single jitprefilter.IndexByte scan can
// stand in for the first wave step.
func literalPrefixByte(n *nfa.NFA) (b byte, ok bool) {
	found := false
	for _, src := range n.Sources {
		if n.IsAccept(src) {
			continue
		}
		st := n.State(src)
		if st.Inverted || len(st.Ranges) != 1 || st.Ranges[0].Lo != st.Ranges[0].Hi {
			return 0, false
		}
		rb := st.Ranges[0].Lo
		if !found {
			b, found = rb, true
		} else if rb != b {
			return 0, false
		}
	}
	return b, found
}

// New compiles n into native code and maps it executable. It returns
// nfa.ErrTooManyStates when Eligible(n) is false. n must satisfy
// nfa.NFA.Validate; New does not re-check it.
func New(n *nfa.NFA) (*Scanner, error) {
	if !Eligible(n) {
		return nil, nfa.ErrTooManyStates
	}

	a := emitCode(n)
	size := a.Finalize()

	region, err := execmem.Alloc(size)
	if err != nil {
		return nil, err
	}
	if err := a.Link(region.Bytes()); err != nil {
		region.Free()
		return nil, err
	}
	if err := region.MakeExecutable(); err != nil {
		region.Free()
		return nil, err
	}

	s := &Scanner{region: region, entry: region.Entry()}
	for _, src := range n.Sources {
		idx := int(src)
		if n.IsAccept(src) {
			s.hasAcceptingSource = true
			continue
		}
		s.initialBitmap[idx/64] |= 1 << uint(idx%64)
	}
	s.literalPrefix, s.hasLiteralPrefix = literalPrefixByte(n)
	return s, nil
}

// Close releases the scanner's executable mapping. Safe to call more than
// once.
func (s *Scanner) Close() error {
	if s.region == nil {
		return nil
	}
	err := s.region.Free()
	s.region = nil
	return err
}

// Match consumes src to EOF and reports whether the input is accepted.
// See jitCall for the register-level calling convention and
// regex-runtime's rcs_jit_match for the original this is ported from.
func (s *Scanner) Match(ctx context.Context, src bitsource.Source) (bool, error) {
	if s.region == nil {
		return false, bytenfaerr.ErrScannerClosed
	}

	bitmap := s.initialBitmap
	ret := uint64(0x0100)
	if s.hasAcceptingSource {
		ret |= 0x1
	}

	buf := src.Buf()
	if len(buf) == 0 {
		n, err := src.Refill(ctx)
		if err != nil {
			return false, &bytenfaerr.ReaderError{Err: err}
		}
		if n > 0 {
			buf = src.Buf()
		}
	}

	// Fast literal prefix: every non-accept source requires the same
	// specific byte to fire at all, so if the first byte of the stream
	// isn't it, the active-state wavefront empties on the very first
	// wave step and can never recover (no backtracking, no restart).
	// One SWAR scan stands in for that doomed first step. This never
	// changes the verdict, only how fast a non-match is discovered.
	if s.hasLiteralPrefix && len(buf) > 0 && jitprefilter.IndexByte(buf, s.literalPrefix) != 0 {
		return false, nil
	}

	for {
		if len(buf) == 0 {
			n, err := src.Refill(ctx)
			if err != nil {
				return false, &bytenfaerr.ReaderError{Err: err}
			}
			if n == 0 {
				break
			}
			buf = src.Buf()
		}

		ret = jitCall(s.entry, unsafe.Pointer(&buf[0]), uintptr(len(buf)), &bitmap)
		if ret&0xff00 == 0 {
			return false, nil
		}
		buf = nil
	}

	return ret&0xff != 0, nil
}
