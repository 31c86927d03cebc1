package player

// session is what the controller currently owns: either nothing or one
// active stream on the device.
type session interface {
	isSession()
}

type sessionEmpty struct{}

type sessionActive struct {
	gen    uint64
	path   string
	stream *pcmStream
	sink   Sink
	paused bool
}

func (sessionEmpty) isSession()   {}
func (*sessionActive) isSession() {}

// teardown stops output and releases the track. Once it returns the stream
// will not read (or tap) another sample.
func (s *sessionActive) teardown() error {
	s.sink.Pause()
	streamErr := s.stream.Close()
	if err := s.sink.Close(); err != nil {
		return err
	}
	return streamErr
}

// drained reports whether the device has played everything it was given.
func (s *sessionActive) drained() bool {
	return !s.paused && !s.sink.IsPlaying()
}
