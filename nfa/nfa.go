// Package nfa provides the byte-alphabet NFA data model used by the
// interpreter and JIT matching backends.
//
// The model is intentionally small: states carry an ordered list of byte
// ranges (optionally inverted) and an ordered list of outgoing transitions.
// There is exactly one accept state, identified structurally as the only
// state with zero outgoing transitions. This package compiles no patterns
// — callers construct the graph (directly, or state by state with Builder)
// and hand it to a scanner as an immutable, arena-indexed graph.
package nfa

import "fmt"

// StateID is a stable index into NFA.States. Indices never change once an
// NFA is handed to a scanner, so StateID may be used directly as a bitmap
// bit position.
type StateID uint32

// CharRange is a closed 8-bit interval [Lo, Hi], Lo <= Hi. Lo == Hi denotes
// a single byte.
type CharRange struct {
	Lo, Hi byte
}

// Contains reports whether c falls within the closed interval [Lo, Hi].
func (r CharRange) Contains(c byte) bool {
	return r.Lo <= c && c <= r.Hi
}

// State is a single NFA node.
//
// A state with no entries in Next is the accept state (there must be
// exactly one such state in a valid NFA, see NFA.Validate). Every other
// state must have at least one outgoing transition and consumes exactly
// one input byte when it matches.
type State struct {
	ID     StateID
	Next   []StateID
	Ranges []CharRange

	// Inverted selects the complement of Ranges' union over the 256-byte
	// alphabet: the state matches c iff c is NOT covered by any range.
	Inverted bool
}

// Matches reports whether the state matches byte c: a range hit XOR
// Inverted. A state with no ranges and Inverted false matches nothing; one
// with no ranges and Inverted true matches everything.
func (s *State) Matches(c byte) bool {
	hit := false
	for _, r := range s.Ranges {
		if r.Contains(c) {
			hit = true
			break
		}
	}
	return hit != s.Inverted
}

// IsAccept reports whether this state is the distinguished accept state
// (equivalently: it has no outgoing transitions).
func (s *State) IsAccept() bool {
	return len(s.Next) == 0
}

// NFA is an immutable, arena-indexed automaton: an owned slice of states
// (State.ID equals its position in States), an ordered list of entry
// points (Sources, duplicates permitted and treated as idempotent), and the
// index of the unique accept state.
//
// NFA is read-only for the lifetime of any scanner built from it; multiple
// scanners may share a single NFA so long as each owns its own mutable
// working memory (bitmaps or JIT register state).
type NFA struct {
	States  []State
	Sources []StateID
	Accept  StateID
}

// IsAccept reports whether id names the accept state.
func (n *NFA) IsAccept(id StateID) bool {
	return id == n.Accept
}

// State returns a pointer to the state at id. The caller must ensure id is
// in range; use Validate to check the whole graph up front.
func (n *NFA) State(id StateID) *State {
	return &n.States[id]
}

// Validate checks the following invariants:
//
//  1. every transition target is a valid index into States,
//  2. only the accept state has zero outgoing transitions,
//  3. the accept state has empty Ranges,
//  4. non-accept states are non-epsilon (Ranges non-empty or Inverted).
//
// Invariant 5 (state count <= 256) is the JIT backend's own eligibility
// check, not a general NFA validity requirement, and is not enforced here;
// see jit.Eligible.
func (n *NFA) Validate() error {
	if int(n.Accept) >= len(n.States) {
		return fmt.Errorf("%w: accept state %d out of range (%d states)", ErrInvalidNFA, n.Accept, len(n.States))
	}

	for i := range n.States {
		s := &n.States[i]
		if StateID(i) != s.ID {
			return fmt.Errorf("%w: state at index %d has mismatched ID %d", ErrInvalidNFA, i, s.ID)
		}
		for _, next := range s.Next {
			if int(next) >= len(n.States) {
				return fmt.Errorf("%w: state %d has out-of-range transition to %d", ErrInvalidNFA, i, next)
			}
		}

		isAccept := s.IsAccept()
		if isAccept != (StateID(i) == n.Accept) {
			return fmt.Errorf("%w: state %d has zero transitions but is not the declared accept state (or vice versa)", ErrInvalidNFA, i)
		}
		if isAccept && len(s.Ranges) != 0 {
			return fmt.Errorf("%w: accept state %d must have empty ranges", ErrInvalidNFA, i)
		}
		if !isAccept && len(s.Ranges) == 0 && !s.Inverted {
			return fmt.Errorf("%w: non-accept state %d is epsilon (matches nothing)", ErrInvalidNFA, i)
		}
	}

	for _, src := range n.Sources {
		if int(src) >= len(n.States) {
			return fmt.Errorf("%w: source state %d out of range (%d states)", ErrInvalidNFA, src, len(n.States))
		}
	}

	return nil
}

// StateCount returns the number of states in the arena.
func (n *NFA) StateCount() int {
	return len(n.States)
}
