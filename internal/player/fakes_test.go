package player

import (
	"errors"
	"io"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// fakeTrack yields a constant value for a fixed number of samples.
type fakeTrack struct {
	value     float32
	rate      int
	channels  int
	remaining atomic.Int64
	closed    atomic.Bool
}

func newFakeTrack(value float32, samples int64) *fakeTrack {
	t := &fakeTrack{value: value, rate: 44100, channels: 2}
	t.remaining.Store(samples)
	return t
}

func (t *fakeTrack) ReadSamples(dst []float32) (int, error) {
	left := t.remaining.Load()
	if left <= 0 {
		return 0, io.EOF
	}
	n := int(min(int64(len(dst)), left))
	for i := range n {
		dst[i] = t.value
	}
	t.remaining.Add(-int64(n))
	return n, nil
}

func (t *fakeTrack) SampleRate() int   { return t.rate }
func (t *fakeTrack) ChannelCount() int { return t.channels }
func (t *fakeTrack) Frames() int64     { return 0 }
func (t *fakeTrack) Close() error {
	t.closed.Store(true)
	return nil
}

// fakeSink stands in for an oto player. Tests pull bytes through it by hand.
type fakeSink struct {
	r       io.Reader
	playing atomic.Bool
	closed  atomic.Bool
}

func (s *fakeSink) Play()           { s.playing.Store(true) }
func (s *fakeSink) Pause()          { s.playing.Store(false) }
func (s *fakeSink) IsPlaying() bool { return s.playing.Load() }
func (s *fakeSink) Close() error {
	s.closed.Store(true)
	return nil
}

// pull reads up to n bytes from the stream the way the device would.
func (s *fakeSink) pull(n int) int {
	buf := make([]byte, n)
	total := 0
	for total < n {
		k, err := s.r.Read(buf[total:])
		total += k
		if err != nil {
			s.playing.Store(false)
			break
		}
	}
	return total
}

type fakeDevice struct {
	mu      sync.Mutex
	sinks   []*fakeSink
	sinkErr error
	onSink  func() // runs on every NewSink call
}

func (d *fakeDevice) NewSink(r io.Reader) (Sink, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.onSink != nil {
		d.onSink()
	}
	if d.sinkErr != nil {
		return nil, d.sinkErr
	}
	s := &fakeSink{r: r}
	d.sinks = append(d.sinks, s)
	return s, nil
}

func (d *fakeDevice) SampleRate() int   { return 44100 }
func (d *fakeDevice) ChannelCount() int { return 2 }

func (d *fakeDevice) allSinks() []*fakeSink {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]*fakeSink(nil), d.sinks...)
}

// library hands out fake tracks by path and remembers every one it opened.
type library struct {
	mu      sync.Mutex
	values  map[string]float32
	samples int64
	opened  map[string][]*fakeTrack
	calls   atomic.Int32
	gate    chan struct{} // open waits on it when set
}

var errNoSuchTrack = errors.New("no such track")

func newLibrary(values map[string]float32) *library {
	return &library{values: values, samples: 1 << 20, opened: make(map[string][]*fakeTrack)}
}

func (l *library) open(path string) (Track, error) {
	l.calls.Add(1)
	l.mu.Lock()
	gate := l.gate
	l.mu.Unlock()
	if gate != nil {
		<-gate
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	v, ok := l.values[path]
	if !ok {
		return nil, errNoSuchTrack
	}
	t := newFakeTrack(v, l.samples)
	l.opened[path] = append(l.opened[path], t)
	return t, nil
}

func (l *library) last(t *testing.T, path string) *fakeTrack {
	t.Helper()
	l.mu.Lock()
	defer l.mu.Unlock()
	tracks := l.opened[path]
	require.NotEmpty(t, tracks, "track %q was never opened", path)
	return tracks[len(tracks)-1]
}

// sliceSource replays a fixed sample slice.
type sliceSource struct {
	data     []float32
	rate     int
	channels int
	err      error
}

func (s *sliceSource) ReadSamples(dst []float32) (int, error) {
	if len(s.data) == 0 {
		if s.err != nil {
			return 0, s.err
		}
		return 0, io.EOF
	}
	n := copy(dst, s.data)
	s.data = s.data[n:]
	return n, nil
}

func (s *sliceSource) SampleRate() int   { return s.rate }
func (s *sliceSource) ChannelCount() int { return s.channels }

type recorder struct {
	got []float32
}

func (r *recorder) Write(samples []float32) { r.got = append(r.got, samples...) }

// readAll drains src with reads of the given size.
func readAll(t *testing.T, src Source, chunk int) ([]float32, error) {
	t.Helper()
	var out []float32
	buf := make([]float32, chunk)
	for range 1 << 16 {
		n, err := src.ReadSamples(buf)
		out = append(out, buf[:n]...)
		if err != nil {
			return out, err
		}
	}
	t.Fatal("source never ended")
	return nil, nil
}
