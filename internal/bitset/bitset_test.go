package bitset

import "testing"

func TestSetBasic(t *testing.T) {
	s := New(100)
	if s.Any() {
		t.Error("new set should be empty")
	}
	if s.Test(5) {
		t.Error("empty set should not contain 5")
	}

	s.Set(5)
	if !s.Test(5) {
		t.Error("set should contain 5 after Set")
	}
	if !s.Any() {
		t.Error("Any() should report true once a bit is set")
	}

	s.Clear(5)
	if s.Test(5) {
		t.Error("set should not contain 5 after Clear")
	}
}

func TestSetSpansMultipleWords(t *testing.T) {
	s := New(200)
	s.Set(0)
	s.Set(63)
	s.Set(64)
	s.Set(199)

	want := map[uint32]bool{0: true, 63: true, 64: true, 199: true}
	var got []uint32
	s.Each(func(i uint32) { got = append(got, i) })

	if len(got) != len(want) {
		t.Fatalf("Each produced %d bits, want %d", len(got), len(want))
	}
	for _, i := range got {
		if !want[i] {
			t.Errorf("unexpected bit %d reported by Each", i)
		}
	}
}

func TestClearAll(t *testing.T) {
	s := New(128)
	s.Set(1)
	s.Set(100)
	s.ClearAll()
	if s.Any() {
		t.Error("ClearAll should empty the set")
	}
}

func TestSwap(t *testing.T) {
	a := New(64)
	b := New(64)
	a.Set(3)
	Swap(a, b)
	if a.Test(3) {
		t.Error("a should be empty after Swap")
	}
	if !b.Test(3) {
		t.Error("b should carry a's former bits after Swap")
	}
}

func TestOutOfRangePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic on out-of-range access")
		}
	}()
	s := New(10)
	s.Set(10)
}
