package nfadump

import (
	"bytes"
	"strings"
	"testing"

	"github.com/coregx/bytenfa/nfa"
)

func buildSample(t *testing.T) *nfa.NFA {
	t.Helper()
	b := nfa.NewBuilder()
	s := b.AddState()
	tr := b.AddState()
	accept := b.AddState()
	b.SetRanges(s, false, nfa.CharRange{Lo: 'a', Hi: 'a'})
	b.SetRanges(tr, true)
	b.AddTransition(s, tr)
	b.AddTransition(s, accept)
	b.AddTransition(tr, accept)
	n, err := b.Build(accept, s)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return n
}

func TestWriteReadRoundTrip(t *testing.T) {
	n := buildSample(t)

	var buf bytes.Buffer
	if err := Write(&buf, n); err != nil {
		t.Fatalf("Write: %v", err)
	}

	got, err := Read(&buf)
	if err != nil {
		t.Fatalf("Read: %v\n%s", err, buf.String())
	}

	if got.Accept != n.Accept {
		t.Errorf("Accept = %d, want %d", got.Accept, n.Accept)
	}
	if len(got.States) != len(n.States) {
		t.Fatalf("len(States) = %d, want %d", len(got.States), len(n.States))
	}
	for i := range n.States {
		want := n.States[i]
		have := got.States[i]
		if have.Inverted != want.Inverted {
			t.Errorf("state %d: Inverted = %v, want %v", i, have.Inverted, want.Inverted)
		}
		if len(have.Next) != len(want.Next) {
			t.Errorf("state %d: len(Next) = %d, want %d", i, len(have.Next), len(want.Next))
		}
		if len(have.Ranges) != len(want.Ranges) {
			t.Errorf("state %d: len(Ranges) = %d, want %d", i, len(have.Ranges), len(want.Ranges))
		}
	}
}

func TestReadRejectsMissingAccept(t *testing.T) {
	_, err := Read(strings.NewReader("state 0 97-97 -> 1\nstate 1\n"))
	if err == nil {
		t.Fatal("expected error for a dump with no accept line")
	}
}

func TestReadRejectsOutOfOrderStates(t *testing.T) {
	_, err := Read(strings.NewReader("accept 1\nstate 1\nstate 0 97-97 -> 1\n"))
	if err == nil {
		t.Fatal("expected error for out-of-order state declarations")
	}
}
