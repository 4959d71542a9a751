// Package asm is a small, single-use, position-independent amd64 byte
// emitter with symbolic labels and a two-pass rel8/rel32 jump-length
// optimizer.
//
// It exposes exactly the instruction subset the jit package's code
// generator needs. The label/fixup architecture — reserve a label, place
// it against the emission cursor, fix up jumps once the whole function
// has been emitted — follows the same shape as chronos-tachyon/go-peggy's
// peggyvm.Assembler, generalized here from that package's variable-length
// VM opcodes to amd64's fixed short/long jump forms.
package asm

import (
	"fmt"

	"github.com/coregx/bytenfa/bytenfaerr"
)

// Label is an opaque handle to a not-yet-placed (or already placed)
// address in the code stream.
type Label int

const noCondition = -1

const noAddress = ^uint64(0)

// jumpRec tracks one emitted jump pending optimization/linking.
type jumpRec struct {
	toLabel   Label
	addrPass1 uint64 // address in the pessimistic pass-1 stream
	addrPass2 uint64 // address after the running addr_adjustment is applied
	condition int    // noCondition, or the low nibble of a Jcc opcode
	isRel32   bool   // true until the optimizer proves rel8 suffices
}

// Assembler accumulates pass-1 code (every jump reserved at its full rel32
// size) and, once the function is fully emitted, optimizes jump lengths
// and links the final bytes into a caller-supplied destination buffer.
//
// An Assembler is single-use: build one function, call Finalize then Link,
// and discard it.
type Assembler struct {
	code       []byte
	labelAddrs []uint64
	labelOrder []Label
	jumps      []*jumpRec

	finalized  bool
	outputLen  int
	bytesSaved uint64
}

// New returns an empty Assembler.
func New() *Assembler {
	return &Assembler{}
}

// NewLabel reserves a label with no address yet.
func (a *Assembler) NewLabel() Label {
	a.labelAddrs = append(a.labelAddrs, noAddress)
	return Label(len(a.labelAddrs) - 1)
}

// PlaceLabel binds the current emission cursor to l. Labels must be placed
// in textual (emission) order; the optimizer relies on that ordering.
func (a *Assembler) PlaceLabel(l Label) {
	a.labelAddrs[l] = a.nextAddress()
	a.labelOrder = append(a.labelOrder, l)
}

func (a *Assembler) nextAddress() uint64 {
	return uint64(len(a.code))
}

// EmitBytes appends raw encoded bytes to the pass-1 stream.
func (a *Assembler) EmitBytes(b ...byte) {
	a.code = append(a.code, b...)
}

func (a *Assembler) regPair(opcode byte, dst, src Register) {
	rex := byte(0x48)
	d, s := dst, src
	if d >= R8 {
		rex |= 0x1
		d -= R8
	}
	if s >= R8 {
		rex |= 0x4
		s -= R8
	}
	modrm := byte(0xc0) | byte(s)<<3 | byte(d)
	a.EmitBytes(rex, opcode, modrm)
}

// Xor64 emits "xor dst, src" (both 64-bit GPRs).
func (a *Assembler) Xor64(dst, src Register) { a.regPair(0x31, dst, src) }

// Cmp64 emits "cmp dst, src".
func (a *Assembler) Cmp64(dst, src Register) { a.regPair(0x39, dst, src) }

// Mov64 emits "mov dst, src".
func (a *Assembler) Mov64(dst, src Register) { a.regPair(0x89, dst, src) }

// CmpCurChar emits "cmp dl, imm8", comparing the current input byte
// (always held in dl by the jit calling convention) against imm.
func (a *Assembler) CmpCurChar(imm byte) {
	a.EmitBytes(0x80, 0xfa, imm)
}

// Ret emits "ret".
func (a *Assembler) Ret() { a.EmitBytes(0xc3) }

// Nop emits a one-byte "nop".
func (a *Assembler) Nop() { a.EmitBytes(0x90) }

// LoadChar emits "movzx edx, byte [rsi]".
func (a *Assembler) LoadChar() {
	a.EmitBytes(0x0f, 0xb6, byte(DX)<<3|byte(SI))
}

// Inc64 emits "inc r64" for r < R8 (the jit generator only ever increments
// rsi, which fits that range; no REX.B extension is needed).
func (a *Assembler) Inc64(r Register) {
	a.EmitBytes(0x48, 0xff, 0xc0|byte(r))
}

// Shr64 emits "shr r64, 1" for r in [R8, R15] — the jit generator only
// shifts bitmap registers, which always live in that range, so the REX
// prefix is hardwired to set both REX.W and REX.B.
func (a *Assembler) Shr64(r Register) {
	a.EmitBytes(0x49, 0xd1, 0xe0|byte(r))
}

type btxMode byte

const (
	btxBT  btxMode = 0
	btxBTS btxMode = 1
	btxBTR btxMode = 2
)

func (a *Assembler) btx(mode btxMode, r Register, bit byte) {
	rex := byte(0x48)
	rr := r
	if rr >= R8 {
		rex |= 0x1
		rr -= R8
	}
	a.EmitBytes(rex, 0x0f, 0xba, 0xe0|byte(mode)<<3|byte(rr), bit)
}

// Bts64 emits "bts r64, imm8" (bit-test-and-set).
func (a *Assembler) Bts64(r Register, bit byte) { a.btx(btxBTS, r, bit) }

// Btr64 emits "btr r64, imm8" (bit-test-and-reset).
func (a *Assembler) Btr64(r Register, bit byte) { a.btx(btxBTR, r, bit) }

// Setc emits "setc r8" for r < R8 (only ever used on al).
func (a *Assembler) Setc(r Register) {
	a.EmitBytes(0x0f, 0x92, 0xc0|byte(r))
}

// LeaRsiRdi emits "lea rdi, [rsi+rdi]" — the prologue's one-shot
// buf_end = buf + length computation.
func (a *Assembler) LeaRsiRdi() {
	a.EmitBytes(0x48, 0x8d, 0x3c, 0x3e)
}

// MovAhImm1 emits "mov ah, 1".
func (a *Assembler) MovAhImm1() {
	a.EmitBytes(0xb4, 0x01)
}

// TestAhAh emits "test ah, ah".
func (a *Assembler) TestAhAh() {
	a.EmitBytes(0x84, 0xe4)
}

// jump reserves a pessimistic-size placeholder (5 bytes unconditional, 6
// conditional) filled with nop, and records the jump for pass 2.
func (a *Assembler) jump(condition int, to Label) {
	rec := &jumpRec{
		toLabel:   to,
		addrPass1: a.nextAddress(),
		addrPass2: a.nextAddress(),
		condition: condition,
		isRel32:   true,
	}
	a.jumps = append(a.jumps, rec)

	instrLen := 5
	if condition != noCondition {
		instrLen = 6
	}
	for i := 0; i < instrLen; i++ {
		a.Nop()
	}
}

// Jmp emits an unconditional jump to to.
func (a *Assembler) Jmp(to Label) { a.jump(noCondition, to) }

// Jz emits "jz to" (jump if ZF set).
func (a *Assembler) Jz(to Label) { a.jump(0x4, to) }

// Jl emits "jl to" (jump if less, signed).
func (a *Assembler) Jl(to Label) { a.jump(0xc, to) }

// Jle emits "jle to" (jump if less-or-equal, signed).
func (a *Assembler) Jle(to Label) { a.jump(0xe, to) }

// Jnc emits "jnc to" (jump if CF clear).
func (a *Assembler) Jnc(to Label) { a.jump(0x3, to) }

func condInstrLen(condition int) uint64 {
	if condition == noCondition {
		return 5
	}
	return 6
}

// optimizeJumpInstr classifies one jump as rel8 or leaves it rel32, and
// returns how many bytes that saves (0 if it must stay rel32).
func (a *Assembler) optimizeJumpInstr(j *jumpRec) uint64 {
	jumpToAddr := a.labelAddrs[j.toLabel]
	const rel8InstrSize = 2
	rel32InstrSize := condInstrLen(j.condition)

	var rel32Required bool
	if j.addrPass2 > jumpToAddr {
		// backward jump
		rel32Required = j.addrPass2-jumpToAddr > 128-rel8InstrSize
	} else {
		// forward jump
		rel32Required = jumpToAddr-j.addrPass2 > 127+rel8InstrSize
	}

	if !rel32Required {
		j.isRel32 = false
		return rel32InstrSize - rel8InstrSize
	}
	return 0
}

// optimizeJumps walks labels in placement order interleaved with jumps in
// emission order (both monotonic in pass-1 address), shrinking every jump
// that can be rel8 and tracking the running addr_adjustment. This is a
// single pass, never an iterative fixpoint: a jump's own address is used
// to judge its fit before its own (or any later jump's) shrink is known,
// which is what makes the cutoff conservative rather than exact.
func (a *Assembler) optimizeJumps() uint64 {
	labelOrdI := 0
	jumpI := 0
	var addrAdjustment uint64

	for labelOrdI < len(a.labelOrder) {
		labelIdx := a.labelOrder[labelOrdI]
		labelAddr := &a.labelAddrs[labelIdx]

		for jumpI < len(a.jumps) {
			j := a.jumps[jumpI]
			if j.addrPass1 >= *labelAddr {
				break
			}
			j.addrPass2 = j.addrPass1 - addrAdjustment
			addrAdjustment += a.optimizeJumpInstr(j)
			jumpI++
		}

		*labelAddr -= addrAdjustment
		labelOrdI++
	}

	for ; jumpI < len(a.jumps); jumpI++ {
		j := a.jumps[jumpI]
		j.addrPass2 = j.addrPass1 - addrAdjustment
		addrAdjustment += a.optimizeJumpInstr(j)
	}

	return addrAdjustment
}

// Finalize runs the jump-length optimizer and returns the final linked
// code size. It must be called exactly once, after all emission and label
// placement is complete, and before Link.
func (a *Assembler) Finalize() int {
	if a.finalized {
		panic("asm: Finalize called twice")
	}
	a.bytesSaved = a.optimizeJumps()
	a.outputLen = len(a.code) - int(a.bytesSaved)
	a.finalized = true
	return a.outputLen
}

// calcRelOffset computes the little-endian relative displacement encoding
// for a jump instruction ending at instrAddr+instrSize, targeting
// jumpToAddr, within the signed range of an operand whose all-ones mask is
// max (0xff for rel8, 0xffffffff for rel32).
func calcRelOffset(instrAddr, jumpToAddr, instrSize, max uint64) (uint64, error) {
	back := jumpToAddr <= instrAddr

	var absOffset uint64
	if back {
		absOffset = instrAddr + instrSize - jumpToAddr
	} else {
		absOffset = jumpToAddr - instrAddr - instrSize
	}

	// A signed operand reaches one byte further backward than forward.
	limit := max >> 1
	if back {
		limit++
	}
	if absOffset > limit {
		disp := int64(absOffset)
		if back {
			disp = -disp
		}
		return 0, &bytenfaerr.JumpTooLongError{Displacement: disp}
	}

	if back {
		return max - absOffset + 1, nil
	}
	return absOffset, nil
}

// Link streams the pass-1 code into dst, substituting each jump
// placeholder with its encoded short or long form. dst must be exactly
// Finalize's returned length. Returns bytenfaerr.JumpTooLongError if any
// jump's final displacement exceeds the rel32 range.
func (a *Assembler) Link(dst []byte) error {
	if !a.finalized {
		panic("asm: Link called before Finalize")
	}
	if len(dst) != a.outputLen {
		return fmt.Errorf("asm: destination buffer has length %d, want %d", len(dst), a.outputLen)
	}

	blockStart := uint64(0)
	dstOffset := 0

	for _, j := range a.jumps {
		blockEnd := j.addrPass1
		dstOffset += copy(dst[dstOffset:], a.code[blockStart:blockEnd])

		jumpToAddr := a.labelAddrs[j.toLabel]
		instrLen := condInstrLen(j.condition)

		if j.isRel32 {
			rel32, err := calcRelOffset(j.addrPass2, jumpToAddr, instrLen, 0xffffffff)
			if err != nil {
				return err
			}
			if j.condition == noCondition {
				dst[dstOffset] = 0xe9
				dstOffset++
			} else {
				dst[dstOffset] = 0x0f
				dst[dstOffset+1] = 0x80 | byte(j.condition)
				dstOffset += 2
			}
			dst[dstOffset] = byte(rel32)
			dst[dstOffset+1] = byte(rel32 >> 8)
			dst[dstOffset+2] = byte(rel32 >> 16)
			dst[dstOffset+3] = byte(rel32 >> 24)
			dstOffset += 4
		} else {
			rel8, err := calcRelOffset(j.addrPass2, jumpToAddr, 2, 0xff)
			if err != nil {
				return err
			}
			if j.condition == noCondition {
				dst[dstOffset] = 0xeb
			} else {
				dst[dstOffset] = 0x70 | byte(j.condition)
			}
			dst[dstOffset+1] = byte(rel8)
			dstOffset += 2
		}

		blockStart = blockEnd + instrLen
	}

	dstOffset += copy(dst[dstOffset:], a.code[blockStart:])
	if dstOffset != len(dst) {
		return fmt.Errorf("asm: linked %d bytes, want %d", dstOffset, len(dst))
	}
	return nil
}
