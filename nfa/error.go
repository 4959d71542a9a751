package nfa

import "errors"

// Common NFA errors.
var (
	// ErrInvalidNFA indicates the NFA violates one of its structural
	// invariants (see NFA.Validate).
	ErrInvalidNFA = errors.New("nfa: invalid NFA graph")

	// ErrTooManyStates indicates the NFA has more states than the JIT
	// backend can address (256 states).
	ErrTooManyStates = errors.New("nfa: state count exceeds JIT backend limit")
)
