package player

import (
	"fmt"
	"io"
)

// conformer presents src at a fixed sample rate and channel count. Channels
// are mapped first (mono is duplicated, extra channels are averaged down),
// then the rate is converted by linear interpolation between adjacent frames.
type conformer struct {
	src         Source
	outRate     int
	outChannels int
	srcChannels int
	step        float64 // source frames advanced per output frame

	in     []float32 // raw source samples
	inPos  int       // next unread sample in in
	inLen  int
	srcErr error

	prev, next []float32 // adjacent frames in output layout
	frac       float64
	primed     bool
	last       bool // prev is the final source frame
	done       bool
}

// conform wraps src so it matches rate and channels. It returns src
// unchanged when no conversion is needed.
func conform(src Source, rate, channels int) (Source, error) {
	if src.SampleRate() <= 0 {
		return nil, fmt.Errorf("unsupported sample rate: %d", src.SampleRate())
	}
	if src.ChannelCount() < 1 {
		return nil, fmt.Errorf("unsupported channel count: %d", src.ChannelCount())
	}
	if src.SampleRate() == rate && src.ChannelCount() == channels {
		return src, nil
	}
	return &conformer{
		src:         src,
		outRate:     rate,
		outChannels: channels,
		srcChannels: src.ChannelCount(),
		step:        float64(src.SampleRate()) / float64(rate),
		in:          make([]float32, 2048*src.ChannelCount()),
		prev:        make([]float32, channels),
		next:        make([]float32, channels),
	}, nil
}

func (c *conformer) SampleRate() int   { return c.outRate }
func (c *conformer) ChannelCount() int { return c.outChannels }

func (c *conformer) ReadSamples(dst []float32) (int, error) {
	if c.done {
		return 0, c.finalErr()
	}
	if !c.primed {
		if !c.readFrame(c.prev) {
			c.done = true
			return 0, c.finalErr()
		}
		if !c.readFrame(c.next) {
			copy(c.next, c.prev)
			c.last = true
		}
		c.primed = true
	}

	n := 0
	for n+c.outChannels <= len(dst) {
		for ch := range c.outChannels {
			a, b := c.prev[ch], c.next[ch]
			dst[n+ch] = a + (b-a)*float32(c.frac)
		}
		n += c.outChannels

		c.frac += c.step
		for c.frac >= 1 {
			c.frac--
			if c.last {
				c.done = true
				return n, nil
			}
			// Past the end, next repeats prev so the final frame fills its period.
			copy(c.prev, c.next)
			if !c.readFrame(c.next) {
				c.last = true
			}
		}
	}
	return n, nil
}

func (c *conformer) finalErr() error {
	if c.srcErr != nil && c.srcErr != io.EOF {
		return c.srcErr
	}
	return io.EOF
}

// readFrame decodes the next source frame into dst in output layout.
func (c *conformer) readFrame(dst []float32) bool {
	for c.inLen-c.inPos < c.srcChannels {
		if c.srcErr != nil {
			return false
		}
		rest := copy(c.in, c.in[c.inPos:c.inLen])
		n, err := c.src.ReadSamples(c.in[rest:])
		c.inPos, c.inLen = 0, rest+n
		if err != nil {
			c.srcErr = err
		} else if n == 0 {
			c.srcErr = io.ErrNoProgress
		}
	}
	frame := c.in[c.inPos : c.inPos+c.srcChannels]
	c.inPos += c.srcChannels
	mapChannels(dst, frame)
	return true
}

func mapChannels(dst, src []float32) {
	switch {
	case len(src) == len(dst):
		copy(dst, src)
	case len(src) == 1:
		for i := range dst {
			dst[i] = src[0]
		}
	case len(dst) == 1:
		var sum float32
		for _, s := range src {
			sum += s
		}
		dst[0] = sum / float32(len(src))
	default:
		// Keep the leading channels, repeating the last if outputs remain.
		copy(dst, src)
		for i := len(src); i < len(dst); i++ {
			dst[i] = src[len(src)-1]
		}
	}
}
