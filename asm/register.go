package asm

// Register names an amd64 general-purpose register by its 0-15 encoding,
// matching the order amd64 instruction encoding expects (AX=0 ... DI=7,
// R8=8 ... R15=15).
type Register uint8

const (
	AX Register = iota
	CX
	DX
	BX
	SP
	BP
	SI
	DI
	R8
	R9
	R10
	R11
	R12
	R13
	R14
	R15
)
