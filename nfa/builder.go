package nfa

import "github.com/coregx/bytenfa/internal/conv"

// Builder assembles an NFA one state at a time. It exists for tests and
// fixtures in this module (and for callers who already have a compiled
// graph in hand); it performs no regex parsing or pattern compilation,
// which remain out of scope for this package.
type Builder struct {
	states []State
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// AddState appends a new state and returns its ID. The returned state's
// Next and Ranges are empty; populate them before or after adding further
// states, since StateID values are stable once assigned.
//
// len(b.states) is narrowed through conv.IntToUint32, so growing a Builder
// past the uint32 StateID range panics instead of silently wrapping a
// StateID.
func (b *Builder) AddState() StateID {
	id := StateID(conv.IntToUint32(len(b.states)))
	b.states = append(b.states, State{ID: id})
	return id
}

// SetRanges overwrites the byte ranges and inversion flag for state id.
func (b *Builder) SetRanges(id StateID, inverted bool, ranges ...CharRange) {
	b.states[id].Ranges = append([]CharRange(nil), ranges...)
	b.states[id].Inverted = inverted
}

// AddTransition appends a transition from -> to. Order is preserved, which
// matters for JIT code generation (state bodies are emitted in range
// order, but Next order has no matching-semantics effect since the bitmap
// is a set).
func (b *Builder) AddTransition(from, to StateID) {
	b.states[from].Next = append(b.states[from].Next, to)
}

// Build finalizes the NFA with the given sources and accept state, then
// validates it. The Builder must not be reused afterward.
func (b *Builder) Build(accept StateID, sources ...StateID) (*NFA, error) {
	n := &NFA{
		States:  b.states,
		Sources: append([]StateID(nil), sources...),
		Accept:  accept,
	}
	if err := n.Validate(); err != nil {
		return nil, err
	}
	return n, nil
}
