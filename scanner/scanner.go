// Package scanner is the matching entry point: it picks the JIT backend
// when the target is eligible and the platform supports it, else falls
// back to the portable interpreter, hiding that choice behind a single
// type.
package scanner

import (
	"context"
	"runtime"

	"github.com/coregx/bytenfa/bitsource"
	"github.com/coregx/bytenfa/bytenfaerr"
	"github.com/coregx/bytenfa/interp"
	"github.com/coregx/bytenfa/jit"
	"github.com/coregx/bytenfa/jitprefilter"
	"github.com/coregx/bytenfa/nfa"
)

// Backend identifies which matching engine a Scanner ended up using.
type Backend int

const (
	// BackendInterp is the portable bitmap-wave interpreter.
	BackendInterp Backend = iota
	// BackendJIT is the compiled-native-code backend (amd64 only).
	BackendJIT
)

func (b Backend) String() string {
	switch b {
	case BackendJIT:
		return "jit"
	default:
		return "interp"
	}
}

// Options controls backend selection. The zero value is DefaultOptions.
type Options struct {
	// ForceInterpreter skips the JIT backend even when the NFA would be
	// eligible, useful for debugging and for differential testing
	// against the interpreter.
	ForceInterpreter bool

	// MaxJITStates overrides the JIT eligibility ceiling downward. Zero
	// means the backend's own default (256).
	MaxJITStates int
}

// DefaultOptions returns the zero-configuration Options: JIT when
// eligible, no artificial state ceiling below the backend's own limit.
func DefaultOptions() Options {
	return Options{MaxJITStates: 256}
}

// matcher is the minimal surface both backends implement.
type matcher interface {
	Match(ctx context.Context, src bitsource.Source) (bool, error)
	Close() error
}

// Scanner matches byte streams against a single compiled NFA. Not safe
// for concurrent use — per-scanner state (register-resident bitmaps in
// the JIT case, double-buffered bitsets in the interpreter case) is
// mutated in place across Match calls. Build one Scanner per goroutine,
// or serialize access to a shared one.
type Scanner struct {
	backend Backend
	impl    matcher
}

// New selects a backend for n and prepares a Scanner. JIT is chosen when
// running on amd64, n fits within the configured state ceiling, and
// opts.ForceInterpreter is false; otherwise the interpreter is used. n
// must satisfy nfa.NFA.Validate.
func New(n *nfa.NFA, opts ...Options) (*Scanner, error) {
	o := DefaultOptions()
	if len(opts) > 0 {
		o = opts[0]
	}
	if err := n.Validate(); err != nil {
		return nil, err
	}

	if !o.ForceInterpreter && runtime.GOARCH == "amd64" && withinJITLimit(n, o) {
		impl, err := jit.New(n)
		if err == nil {
			return &Scanner{backend: BackendJIT, impl: impl}, nil
		}
		// Any JIT build failure (allocation, platform) falls back to the
		// interpreter rather than failing the whole scanner.
	}

	return &Scanner{backend: BackendInterp, impl: interp.New(n)}, nil
}

func withinJITLimit(n *nfa.NFA, o Options) bool {
	limit := o.MaxJITStates
	if limit <= 0 {
		limit = 256
	}
	return jit.Eligible(n) && n.StateCount() <= limit
}

// Match consumes src to EOF and reports whether it is accepted.
// Single-threaded and synchronous; do not call Match concurrently on the
// same Scanner.
func (s *Scanner) Match(ctx context.Context, src bitsource.Source) (bool, error) {
	if s.impl == nil {
		return false, bytenfaerr.ErrScannerClosed
	}
	return s.impl.Match(ctx, src)
}

// Close releases backend resources (the JIT's executable mapping; a
// no-op for the interpreter). Safe to call more than once.
func (s *Scanner) Close() error {
	if s.impl == nil {
		return nil
	}
	err := s.impl.Close()
	s.impl = nil
	return err
}

// Backend reports which engine this Scanner is running.
func (s *Scanner) Backend() Backend {
	return s.backend
}

// Diagnostics reports informational capability probes surfaced for
// debugging and benchmarking; none of it gates matching behavior.
type Diagnostics struct {
	Backend Backend
	HasAVX2 bool
	GOARCH  string
}

// Diagnostics returns this Scanner's backend and the host's advertised
// CPU capabilities (see jitprefilter.HasAVX2).
func (s *Scanner) Diagnostics() Diagnostics {
	return Diagnostics{
		Backend: s.backend,
		HasAVX2: jitprefilter.HasAVX2(),
		GOARCH:  runtime.GOARCH,
	}
}
