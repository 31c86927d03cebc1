package visualizer

import "sync"

const (
	// RingCapacity is the number of samples kept for analysis (~372ms at 44.1kHz).
	RingCapacity = 16384
	// MinSnapshot is the fewest samples a snapshot will return.
	MinSnapshot = 512
)

// RingBuffer is a thread-safe circular buffer of float32 samples. The
// playback path is the only writer and the analyzer the only reader.
type RingBuffer struct {
	buf  []float32
	size int
	w    int // write position
	len  int // current fill level
	mu   sync.Mutex
}

// NewRingBuffer creates a ring buffer holding up to size samples.
func NewRingBuffer(size int) *RingBuffer {
	if size < 1 {
		size = 1
	}
	return &RingBuffer{
		buf:  make([]float32, size),
		size: size,
	}
}

// Push appends one sample. When the buffer is full the oldest sample is
// evicted first.
func (rb *RingBuffer) Push(sample float32) {
	rb.mu.Lock()
	rb.push(sample)
	rb.mu.Unlock()
}

// Write pushes every sample in p in order, with the same eviction rule as
// Push. The lock is held once for the whole slice.
func (rb *RingBuffer) Write(p []float32) {
	rb.mu.Lock()
	defer rb.mu.Unlock()
	for _, s := range p {
		rb.push(s)
	}
}

func (rb *RingBuffer) push(sample float32) {
	rb.buf[rb.w] = sample
	rb.w = (rb.w + 1) % rb.size
	if rb.len < rb.size {
		rb.len++
	}
}

// Snapshot returns up to maxCount of the most recent samples, oldest first,
// without consuming them. ok is false when fewer than MinSnapshot samples
// are buffered; callers should skip the cycle rather than treat it as silence.
func (rb *RingBuffer) Snapshot(maxCount int) (out []float32, ok bool) {
	rb.mu.Lock()
	defer rb.mu.Unlock()

	if rb.len < MinSnapshot || maxCount <= 0 {
		return nil, false
	}
	n := min(maxCount, rb.len)

	out = make([]float32, n)
	start := (rb.w - n + rb.size) % rb.size
	if start+n <= rb.size {
		copy(out, rb.buf[start:start+n])
	} else {
		k := copy(out, rb.buf[start:])
		copy(out[k:], rb.buf[:n-k])
	}
	return out, true
}

// Len returns the number of buffered samples.
func (rb *RingBuffer) Len() int {
	rb.mu.Lock()
	defer rb.mu.Unlock()
	return rb.len
}

// Cap returns the buffer capacity.
func (rb *RingBuffer) Cap() int { return rb.size }

// Clear resets the buffer.
func (rb *RingBuffer) Clear() {
	rb.mu.Lock()
	defer rb.mu.Unlock()
	rb.w = 0
	rb.len = 0
}
