package visualizer

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fill(rb *RingBuffer, from, n int) {
	for i := range n {
		rb.Push(float32(from + i))
	}
}

func TestRingBufferLenNeverExceedsCapacity(t *testing.T) {
	rb := NewRingBuffer(1024)
	for i := range 5000 {
		rb.Push(float32(i))
		if rb.Len() > rb.Cap() {
			t.Fatalf("len %d exceeds capacity %d after %d pushes", rb.Len(), rb.Cap(), i+1)
		}
	}
}

func TestRingBufferKeepsLastCapacitySamplesInOrder(t *testing.T) {
	const capacity = 1024
	for _, extra := range []int{1, 7, capacity, 3*capacity + 5} {
		rb := NewRingBuffer(capacity)
		fill(rb, 0, capacity+extra)

		got, ok := rb.Snapshot(capacity)
		require.True(t, ok)
		require.Len(t, got, capacity)
		for i, v := range got {
			if want := float32(extra + i); v != want {
				t.Fatalf("extra=%d: sample %d = %v, want %v", extra, i, v, want)
			}
		}
	}
}

func TestRingBufferWriteMatchesPush(t *testing.T) {
	a := NewRingBuffer(600)
	b := NewRingBuffer(600)
	chunk := make([]float32, 0, 1500)
	for i := range 1500 {
		chunk = append(chunk, float32(i))
		a.Push(float32(i))
	}
	b.Write(chunk)

	sa, _ := a.Snapshot(600)
	sb, _ := b.Snapshot(600)
	assert.Equal(t, sa, sb)
}

func TestRingBufferSnapshotInsufficient(t *testing.T) {
	rb := NewRingBuffer(RingCapacity)
	fill(rb, 0, MinSnapshot-1)

	got, ok := rb.Snapshot(2048)
	assert.False(t, ok)
	assert.Nil(t, got)

	rb.Push(1)
	got, ok = rb.Snapshot(2048)
	assert.True(t, ok)
	assert.Len(t, got, MinSnapshot)
}

func TestRingBufferSnapshotReturnsNewestLast(t *testing.T) {
	rb := NewRingBuffer(RingCapacity)
	fill(rb, 0, 3000)

	got, ok := rb.Snapshot(2048)
	require.True(t, ok)
	require.Len(t, got, 2048)
	assert.Equal(t, float32(3000-2048), got[0])
	assert.Equal(t, float32(2999), got[len(got)-1])
	assert.Equal(t, 3000, rb.Len(), "snapshot must not consume samples")
}

func TestRingBufferClear(t *testing.T) {
	rb := NewRingBuffer(RingCapacity)
	fill(rb, 0, 4000)
	rb.Clear()

	assert.Equal(t, 0, rb.Len())
	_, ok := rb.Snapshot(2048)
	assert.False(t, ok)

	fill(rb, 10000, 600)
	got, ok := rb.Snapshot(2048)
	require.True(t, ok)
	for _, v := range got {
		if v < 10000 {
			t.Fatalf("found pre-clear sample %v", v)
		}
	}
}

func TestRingBufferConcurrentAccess(t *testing.T) {
	rb := NewRingBuffer(RingCapacity)
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := range 50000 {
			rb.Push(float32(i))
		}
	}()
	go func() {
		defer wg.Done()
		for range 500 {
			if s, ok := rb.Snapshot(2048); ok {
				for i := 1; i < len(s); i++ {
					if s[i] < s[i-1] {
						t.Errorf("snapshot out of order at %d", i)
						return
					}
				}
			}
		}
	}()
	wg.Wait()
}
