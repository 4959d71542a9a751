//go:build !amd64

// Package jit compiles an NFA into native machine code on supported
// platforms. This build has no native backend; Eligible always reports
// false so scanner.New falls back to the interpreter.
package jit

import (
	"context"

	"github.com/coregx/bytenfa/bitsource"
	"github.com/coregx/bytenfa/bytenfaerr"
	"github.com/coregx/bytenfa/nfa"
)

// Eligible always returns false on non-amd64 targets.
func Eligible(n *nfa.NFA) bool { return false }

// Scanner is an unusable stand-in on this platform; New always fails.
type Scanner struct{}

// New always returns bytenfaerr.ErrUnsupportedPlatform.
func New(n *nfa.NFA) (*Scanner, error) {
	return nil, bytenfaerr.ErrUnsupportedPlatform
}

func (s *Scanner) Close() error { return nil }

func (s *Scanner) Match(ctx context.Context, src bitsource.Source) (bool, error) {
	return false, bytenfaerr.ErrUnsupportedPlatform
}
