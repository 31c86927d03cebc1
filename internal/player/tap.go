package player

// SampleWriter receives the tapped signal. *visualizer.RingBuffer implements it.
type SampleWriter interface {
	Write(samples []float32)
}

// Tap is a Source decorator that copies a mono mix of everything read
// through it into a SampleWriter. Samples returned to the caller are never
// modified, delayed or dropped.
type Tap struct {
	src      Source
	out      SampleWriter
	channels int

	mono    []float32
	partial float32 // running sum of an incomplete frame
	have    int     // channels accumulated in partial
}

// NewTap wraps src, writing its mono mix to out.
func NewTap(src Source, out SampleWriter) *Tap {
	return &Tap{
		src:      src,
		out:      out,
		channels: max(src.ChannelCount(), 1),
	}
}

func (t *Tap) SampleRate() int   { return t.src.SampleRate() }
func (t *Tap) ChannelCount() int { return t.src.ChannelCount() }

// ReadSamples reads from the wrapped source and forwards the mono mix.
func (t *Tap) ReadSamples(dst []float32) (int, error) {
	n, err := t.src.ReadSamples(dst)
	if n > 0 {
		t.capture(dst[:n])
	}
	return n, err
}

func (t *Tap) capture(samples []float32) {
	t.mono = t.mono[:0]
	for _, s := range samples {
		t.partial += s
		t.have++
		if t.have == t.channels {
			t.mono = append(t.mono, t.partial/float32(t.channels))
			t.partial, t.have = 0, 0
		}
	}
	if len(t.mono) > 0 {
		t.out.Write(t.mono)
	}
}
