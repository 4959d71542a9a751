package bitsource

import "context"

// defaultChunkSize mirrors bufio.defaultBufSize; FromBytes serves data in
// chunks of this size rather than all at once, so scanners built against it
// exercise the same multi-Refill loop a real streaming source would.
const defaultChunkSize = 4096

type byteSource struct {
	data   []byte
	pos    int
	chunk  []byte
	served int // bytes already handed out in the current chunk, for Unwind
}

// FromBytes returns a Source that serves b in fixed-size chunks.
func FromBytes(b []byte) Source {
	return &byteSource{data: b}
}

func (s *byteSource) Refill(_ context.Context) (int, error) {
	if s.pos >= len(s.data) {
		s.chunk = nil
		return 0, nil
	}
	end := s.pos + defaultChunkSize
	if end > len(s.data) {
		end = len(s.data)
	}
	s.chunk = s.data[s.pos:end]
	s.pos = end
	s.served = len(s.chunk)
	return len(s.chunk), nil
}

func (s *byteSource) Buf() []byte {
	return s.chunk
}

func (s *byteSource) Unwind(n uint64) bool {
	if n > uint64(s.served) {
		return false
	}
	s.pos -= int(n)
	s.served -= int(n)
	s.chunk = s.chunk[:len(s.chunk)-int(n)]
	return true
}
