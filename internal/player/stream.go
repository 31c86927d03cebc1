package player

import (
	"encoding/binary"
	"io"
	"math"
	"sync"
)

const bytesPerSample = 4 // float32

// pcmStream encodes a Source as float32 little endian bytes for the device.
// Reads and Close are serialized, so once Close returns no further samples
// are pulled from the source (and so none reach the tap).
type pcmStream struct {
	mu     sync.Mutex
	src    Source
	closer io.Closer
	onEOF  func()

	samples []float32
	raw     []byte
	carry   []byte // encoded bytes that did not fit the last read
	closed  bool
	eof     bool
}

func newPCMStream(src Source, closer io.Closer, onEOF func()) *pcmStream {
	return &pcmStream{src: src, closer: closer, onEOF: onEOF}
}

func (s *pcmStream) Read(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, io.EOF
	}
	if len(s.carry) > 0 {
		n := copy(p, s.carry)
		s.carry = s.carry[n:]
		return n, nil
	}
	if s.eof {
		return 0, io.EOF
	}

	count := max(len(p)/bytesPerSample, 1)
	if cap(s.samples) < count {
		s.samples = make([]float32, count)
	}
	n, err := s.src.ReadSamples(s.samples[:count])

	size := n * bytesPerSample
	if cap(s.raw) < size {
		s.raw = make([]byte, size)
	}
	raw := s.raw[:size]
	for i, v := range s.samples[:n] {
		binary.LittleEndian.PutUint32(raw[i*bytesPerSample:], math.Float32bits(v))
	}
	written := copy(p, raw)
	if written < len(raw) {
		s.carry = append(s.carry[:0], raw[written:]...)
	}

	if err != nil {
		s.eof = true
		if s.onEOF != nil {
			// The callback must not block; it only enqueues a command.
			s.onEOF()
		}
		if written > 0 {
			return written, nil
		}
		return 0, io.EOF
	}
	return written, nil
}

// Close stops the stream and releases the track.
func (s *pcmStream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	if s.closer != nil {
		return s.closer.Close()
	}
	return nil
}
