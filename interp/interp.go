// Package interp implements the portable reference scanner: the NFA wave
// algorithm over a double-buffered active-state bitmap. Unlike a
// thread-queue VM simulation, there is no capture tracking and no thread
// priority — the bitmap is a set, matching union semantics.
package interp

import (
	"context"

	"github.com/coregx/bytenfa/bitsource"
	"github.com/coregx/bytenfa/bytenfaerr"
	"github.com/coregx/bytenfa/internal/bitset"
	"github.com/coregx/bytenfa/nfa"
)

// Scanner is the reference interpreter backend. One Scanner may be reused
// across many Match calls (state is fully reinitialized at the top of
// Match) but is not safe for concurrent use.
type Scanner struct {
	n *nfa.NFA

	// current/next is the double-buffered active-state bitmap: current is
	// read while next is built, then they are cleared and swapped at the
	// end of each wave (one input byte).
	current *bitset.Set
	next    *bitset.Set
}

// New builds an interpreter scanner for n. n must already satisfy
// nfa.NFA.Validate (New does not re-validate it).
func New(n *nfa.NFA) *Scanner {
	count := uint32(n.StateCount())
	return &Scanner{
		n:       n,
		current: bitset.New(count),
		next:    bitset.New(count),
	}
}

// Close releases the scanner's bitmaps. It is safe to call Close more than
// once.
func (s *Scanner) Close() error {
	s.current = nil
	s.next = nil
	return nil
}

// Match consumes src to EOF and reports whether the input, read end to
// end, ends in the NFA's accept state.
func (s *Scanner) Match(ctx context.Context, src bitsource.Source) (bool, error) {
	s.current.ClearAll()
	s.next.ClearAll()

	acceptedLastStep := false
	hasActiveStates := false

	for _, src := range s.n.Sources {
		if s.n.IsAccept(src) {
			acceptedLastStep = true
		} else {
			s.current.Set(uint32(src))
			hasActiveStates = true
		}
	}

	pos := 0
	buf := src.Buf()

	for {
		if pos >= len(buf) {
			n, err := src.Refill(ctx)
			if err != nil {
				return false, &bytenfaerr.ReaderError{Err: err}
			}
			if n == 0 {
				return acceptedLastStep, nil
			}
			buf = src.Buf()
			pos = 0
		}

		if !hasActiveStates {
			return false, nil
		}

		c := buf[pos]
		pos++

		acceptedLastStep = false
		hasActiveStates = false

		s.current.Each(func(i uint32) {
			state := s.n.State(nfa.StateID(i))
			if !state.Matches(c) {
				return
			}
			for _, next := range state.Next {
				if s.n.IsAccept(next) {
					acceptedLastStep = true
				} else {
					s.next.Set(uint32(next))
					hasActiveStates = true
				}
			}
		})

		s.current.ClearAll()
		bitset.Swap(s.current, s.next)
	}
}
