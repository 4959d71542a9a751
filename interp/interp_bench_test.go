package interp

import (
	"context"
	"testing"

	"github.com/coregx/bytenfa/bitsource"
)

// BenchmarkThousandStateChain exercises a chain long enough to exceed the
// JIT's 256-state limit, so only the interpreter can run it.
func BenchmarkThousandStateChain(b *testing.B) {
	n := buildChain(b, 1000)
	input := []byte(repeat('a', 1000))
	s := New(n)
	defer s.Close()

	b.ReportAllocs()
	b.SetBytes(int64(len(input)))
	for i := 0; i < b.N; i++ {
		ok, err := s.Match(context.Background(), bitsource.FromBytes(input))
		if err != nil || !ok {
			b.Fatalf("Match = (%v, %v), want (true, nil)", ok, err)
		}
	}
}
