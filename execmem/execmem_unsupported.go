//go:build !unix

package execmem

import "github.com/coregx/bytenfa/bytenfaerr"

// Alloc is unavailable on non-unix targets; the scanner façade falls back
// to the interpreter backend when this returns ErrUnsupportedPlatform.
func Alloc(n int) (*Region, error) {
	return nil, bytenfaerr.ErrUnsupportedPlatform
}

type Region struct{}

func (r *Region) Bytes() []byte          { return nil }
func (r *Region) MakeExecutable() error  { return bytenfaerr.ErrUnsupportedPlatform }
func (r *Region) Entry() uintptr         { return 0 }
func (r *Region) Free() error            { return nil }
