package asm

import "testing"

func TestSimpleFunctionRetLinks(t *testing.T) {
	a := New()
	a.Xor64(AX, AX)
	a.Ret()

	n := a.Finalize()
	if n != 4 {
		t.Fatalf("Finalize() = %d, want 4", n)
	}
	dst := make([]byte, n)
	if err := a.Link(dst); err != nil {
		t.Fatalf("Link: %v", err)
	}
	want := []byte{0x48, 0x31, 0xc0, 0xc3}
	if string(dst) != string(want) {
		t.Fatalf("Link() = % x, want % x", dst, want)
	}
}

func TestForwardJumpShrinksToRel8(t *testing.T) {
	a := New()
	end := a.NewLabel()
	a.Jmp(end)
	a.Nop()
	a.PlaceLabel(end)
	a.Ret()

	n := a.Finalize()
	// jmp rel8 (2 bytes) + nop (1) + ret (1) = 4
	if n != 4 {
		t.Fatalf("Finalize() = %d, want 4", n)
	}
	dst := make([]byte, n)
	if err := a.Link(dst); err != nil {
		t.Fatalf("Link: %v", err)
	}
	if dst[0] != 0xeb {
		t.Fatalf("expected short jmp opcode 0xeb, got %#x", dst[0])
	}
	if dst[1] != 1 {
		t.Fatalf("expected rel8 displacement 1, got %d", dst[1])
	}
}

func TestBackwardJumpShrinksToRel8(t *testing.T) {
	a := New()
	top := a.NewLabel()
	a.PlaceLabel(top)
	a.Xor64(AX, AX)
	a.Jmp(top)

	n := a.Finalize()
	// xor (3 bytes) + jmp rel8 (2 bytes) = 5
	if n != 5 {
		t.Fatalf("Finalize() = %d, want 5", n)
	}
	dst := make([]byte, n)
	if err := a.Link(dst); err != nil {
		t.Fatalf("Link: %v", err)
	}
	if dst[3] != 0xeb {
		t.Fatalf("expected short jmp opcode, got %#x", dst[3])
	}
	// jump starts three bytes past top (the start) and ends five bytes past
	// it, so the backward displacement is 5, encoded as two's complement in
	// a signed rel8 byte.
	if int8(dst[4]) != -5 {
		t.Fatalf("expected rel8 displacement -5, got %d", int8(dst[4]))
	}
}

// TestLongForwardJumpStaysRel32 exercises the rel8/rel32 boundary against
// a single isolated forward jump (nothing else between the jump and its
// target). The classifier judges a jump's
// fit before knowing whether the jump itself will shrink, so the cutoff
// it applies is conservative by exactly one jump's own rel32-to-rel8
// savings (3 bytes) relative to the true final displacement. One byte
// more of filler than the paired test below forces rel32.
func TestLongForwardJumpStaysRel32(t *testing.T) {
	const fillerLen = 125

	a := New()
	end := a.NewLabel()
	a.Jmp(end)
	for i := 0; i < fillerLen; i++ {
		a.Nop()
	}
	a.PlaceLabel(end)
	a.Ret()

	n := a.Finalize()
	// jmp rel32 (5 bytes) + 125 nops + ret (1) = 131
	if n != 5+fillerLen+1 {
		t.Fatalf("Finalize() = %d, want %d", n, 5+fillerLen+1)
	}
	dst := make([]byte, n)
	if err := a.Link(dst); err != nil {
		t.Fatalf("Link: %v", err)
	}
	if dst[0] != 0xe9 {
		t.Fatalf("expected long jmp opcode 0xe9, got %#x", dst[0])
	}
}

// TestOneShorterForwardJumpFitsRel8 is the one-byte-less sibling of the
// above: one byte less of filler and the same jump shrinks to rel8, with
// a real, verified-correct displacement.
func TestOneShorterForwardJumpFitsRel8(t *testing.T) {
	const fillerLen = 124

	a := New()
	end := a.NewLabel()
	a.Jmp(end)
	for i := 0; i < fillerLen; i++ {
		a.Nop()
	}
	a.PlaceLabel(end)
	a.Ret()

	n := a.Finalize()
	// jmp rel8 (2 bytes) + 124 nops + ret (1) = 127
	if n != 2+fillerLen+1 {
		t.Fatalf("Finalize() = %d, want %d", n, 2+fillerLen+1)
	}
	dst := make([]byte, n)
	if err := a.Link(dst); err != nil {
		t.Fatalf("Link: %v", err)
	}
	if dst[0] != 0xeb {
		t.Fatalf("expected short jmp opcode 0xeb, got %#x", dst[0])
	}
	if dst[1] != fillerLen {
		t.Fatalf("expected rel8 displacement %d, got %d", fillerLen, dst[1])
	}
}

func TestConditionalJumpEncoding(t *testing.T) {
	a := New()
	target := a.NewLabel()
	a.Jz(target)
	a.Nop()
	a.PlaceLabel(target)
	a.Ret()

	n := a.Finalize()
	dst := make([]byte, n)
	if err := a.Link(dst); err != nil {
		t.Fatalf("Link: %v", err)
	}
	if dst[0] != 0x74 { // short jz
		t.Fatalf("expected short jz opcode 0x74, got %#x", dst[0])
	}
}

func TestBtsAndBtr(t *testing.T) {
	a := New()
	a.Bts64(R8, 5)
	a.Btr64(R9, 6)
	a.Ret()

	n := a.Finalize()
	dst := make([]byte, n)
	if err := a.Link(dst); err != nil {
		t.Fatalf("Link: %v", err)
	}
	want := []byte{
		0x49, 0x0f, 0xba, 0xe8, 0x05, // bts r8, 5
		0x49, 0x0f, 0xba, 0xf1, 0x06, // btr r9, 6
		0xc3,
	}
	if string(dst) != string(want) {
		t.Fatalf("Link() = % x, want % x", dst, want)
	}
}

func TestLinkRejectsWrongBufferSize(t *testing.T) {
	a := New()
	a.Ret()
	n := a.Finalize()
	if err := a.Link(make([]byte, n+1)); err == nil {
		t.Fatal("expected error for mismatched buffer size")
	}
}
