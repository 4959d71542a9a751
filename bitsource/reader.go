package bitsource

import (
	"context"
	"io"
)

// readerSource adapts an io.Reader to Source using a single reusable
// scratch buffer.
type readerSource struct {
	r      io.Reader
	buf    []byte
	served int
}

// FromReader returns a Source that pulls bytes from r, chunk size
// defaultChunkSize at a time.
func FromReader(r io.Reader) Source {
	return &readerSource{r: r, buf: make([]byte, defaultChunkSize)}
}

func (s *readerSource) Refill(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	n, err := s.r.Read(s.buf)
	if n > 0 {
		s.served = n
		return n, nil
	}
	s.served = 0
	if err == io.EOF {
		return 0, nil
	}
	return 0, err
}

func (s *readerSource) Buf() []byte {
	return s.buf[:s.served]
}

// Unwind is not supported for an arbitrary io.Reader: once bytes have left
// the scratch buffer there is no general way to push them back onto an
// unbuffered stream. It reports false for any n > 0 to signal that to
// callers.
func (s *readerSource) Unwind(n uint64) bool {
	return n == 0
}
