//go:build amd64

package jit

import (
	"github.com/coregx/bytenfa/asm"
	"github.com/coregx/bytenfa/nfa"
)

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}

// emitRangeCode emits the comparison ladder for one character range: a
// single cmp+jz when Lo==Hi, otherwise a two-sided bracket
// (jl next_range; cmp hi; jle exit).
func emitRangeCode(a *asm.Assembler, r nfa.CharRange, nextRange, exit asm.Label) {
	a.CmpCurChar(r.Lo)
	if r.Lo == r.Hi {
		a.Jz(exit)
		return
	}
	a.Jl(nextRange)
	a.CmpCurChar(r.Hi)
	a.Jle(exit)
}

// emitNextStatesBitmaskUpdate sets one bit per outgoing transition in the
// "next" bitmap registers (r12..r15) and, if the state has any
// transitions at all, raises the no-sink flag (ah).
func emitNextStatesBitmaskUpdate(a *asm.Assembler, n *nfa.NFA, state *nfa.State) {
	for _, next := range state.Next {
		idx := int(next)
		a.Bts64(asm.R12+asm.Register(idx/64), byte(idx%64))
	}
	if len(state.Next) != 0 {
		a.MovAhImm1()
	}
}

// emitStateCode emits one non-accept state's match-and-transition code:
// test the current byte against each range, and on a hit (XORed with
// Inverted) jump to the bitmask update; otherwise fall through to the
// next state's code.
func emitStateCode(a *asm.Assembler, n *nfa.NFA, stateIdx int) {
	state := n.State(nfa.StateID(stateIdx))

	end := a.NewLabel()
	nextState := a.NewLabel()

	for _, r := range state.Ranges {
		matchContinue := a.NewLabel()
		emitRangeCode(a, r, matchContinue, end)
		a.PlaceLabel(matchContinue)
	}

	if state.Inverted {
		emitNextStatesBitmaskUpdate(a, n, state)
		a.PlaceLabel(end)
	} else {
		a.Jmp(nextState)
		a.PlaceLabel(end)
		emitNextStatesBitmaskUpdate(a, n, state)
	}

	a.PlaceLabel(nextState)
}

// emitCode emits the full per-byte matching loop for n, under a custom
// calling convention: rsi/rdi as input pointers, r8..r11 as the current
// bitmap, r12..r15 as the next bitmap, dl as the current byte, ah as the
// "still has active states" flag, al (returned in eax) as "accepted at
// the last step".
func emitCode(n *nfa.NFA) *asm.Assembler {
	a := asm.New()

	bitmapRegs := ceilDiv(len(n.States), 64)

	loop := a.NewLabel()
	end := a.NewLabel()

	a.Xor64(asm.AX, asm.AX)
	a.LeaRsiRdi()
	a.MovAhImm1()
	a.PlaceLabel(loop)
	a.TestAhAh()
	a.Jz(end)
	for i := 0; i < bitmapRegs; i++ {
		r := asm.R12 + asm.Register(i)
		a.Xor64(r, r)
	}
	a.Cmp64(asm.SI, asm.DI)
	a.Jz(end)
	a.Xor64(asm.AX, asm.AX)
	a.LoadChar()
	a.Inc64(asm.SI)

	for i := range n.States {
		a.Shr64(asm.R8 + asm.Register(i/64))

		if n.IsAccept(nfa.StateID(i)) {
			continue
		}

		skipState := a.NewLabel()
		a.Jnc(skipState)
		emitStateCode(a, n, i)
		a.PlaceLabel(skipState)
	}

	acceptIdx := int(n.Accept)
	a.Btr64(asm.R12+asm.Register(acceptIdx/64), byte(acceptIdx%64))
	a.Setc(asm.AX)
	for i := 0; i < bitmapRegs; i++ {
		a.Mov64(asm.R8+asm.Register(i), asm.R12+asm.Register(i))
	}
	a.Jmp(loop)
	a.PlaceLabel(end)
	a.Ret()

	return a
}
