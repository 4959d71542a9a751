//go:build unix

package execmem

import "testing"

func TestAllocWriteExecFree(t *testing.T) {
	r, err := Alloc(64)
	if err != nil {
		t.Fatalf("Alloc: %v", err)
	}
	defer r.Free()

	buf := r.Bytes()
	if len(buf) < 64 {
		t.Fatalf("Bytes() len = %d, want >= 64", len(buf))
	}
	// A single-byte "ret" so the region is at least a valid, harmless
	// amd64 function if anything ever calls through Entry().
	buf[0] = 0xc3

	if err := r.MakeExecutable(); err != nil {
		t.Fatalf("MakeExecutable: %v", err)
	}

	if r.Entry() == 0 {
		t.Fatal("Entry() returned nil address after MakeExecutable")
	}
}

func TestFreeIsIdempotent(t *testing.T) {
	r, err := Alloc(16)
	if err != nil {
		t.Fatalf("Alloc: %v", err)
	}
	if err := r.Free(); err != nil {
		t.Fatalf("first Free: %v", err)
	}
	if err := r.Free(); err != nil {
		t.Fatalf("second Free: %v", err)
	}
}

func TestAllocZeroLength(t *testing.T) {
	r, err := Alloc(0)
	if err != nil {
		t.Fatalf("Alloc(0): %v", err)
	}
	defer r.Free()
	if len(r.Bytes()) == 0 {
		t.Fatal("Bytes() should round a zero-length request up to at least one page byte")
	}
}
