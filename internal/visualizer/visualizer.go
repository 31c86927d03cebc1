// Package visualizer turns recently played samples into a smoothed,
// perceptually banded spectrum for the terminal renderer.
package visualizer

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog"
)

// SampleSource is the snapshot accessor the visualizer reads from.
// *RingBuffer implements it.
type SampleSource interface {
	Snapshot(maxCount int) ([]float32, bool)
}

// Visualizer runs analysis cycles against a sample source and keeps the
// resulting smoothed and peak vectors.
type Visualizer struct {
	src      SampleSource
	analyzer *Analyzer
	state    *State
	log      zerolog.Logger

	mu sync.Mutex
}

// Option configures a Visualizer.
type Option func(*Visualizer)

// WithLogger sets the logger used for recovered cycle failures.
func WithLogger(l zerolog.Logger) Option {
	return func(v *Visualizer) { v.log = l }
}

// New creates a Visualizer reading from src.
func New(src SampleSource, opts ...Option) *Visualizer {
	v := &Visualizer{
		src:      src,
		analyzer: NewAnalyzer(NumBands),
		state:    NewState(NumBands),
		log:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// AnalyzeAndUpdate runs one cycle and returns a copy of the smoothed band
// vector. When the source has too few samples, or holds only digital
// silence, the cycle is skipped and the state decays instead.
func (v *Visualizer) AnalyzeAndUpdate() []float64 {
	v.mu.Lock()
	defer v.mu.Unlock()

	if err := v.cycle(); err != nil {
		v.log.Error().Err(err).Msg("analysis cycle failed")
		v.state.Decay()
	}
	return append([]float64(nil), v.state.Smoothed()...)
}

func (v *Visualizer) cycle() (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("recovered: %v", r)
		}
	}()

	samples, ok := v.src.Snapshot(MaxFFTSize)
	if !ok || silent(samples) {
		v.state.Decay()
		return nil
	}
	v.state.Update(v.analyzer.Compute(samples))
	return nil
}

// Smoothed returns a copy of the current smoothed vector.
func (v *Visualizer) Smoothed() []float64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]float64(nil), v.state.Smoothed()...)
}

// Peaks returns a copy of the current peak-hold vector.
func (v *Visualizer) Peaks() []float64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]float64(nil), v.state.Peaks()...)
}

// Sensitivity returns the analyzer's current dB window.
func (v *Visualizer) Sensitivity() (minDB, maxDB float64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.analyzer.Sensitivity()
}

func silent(samples []float32) bool {
	for _, s := range samples {
		if s != 0 {
			return false
		}
	}
	return true
}
