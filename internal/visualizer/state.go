package visualizer

const (
	smoothingFactor = 0.70
	peakDecay       = 0.87
	idleDecay       = 0.9
)

// State low-pass filters analyzer output and tracks a decaying peak per band.
type State struct {
	smoothed []float64
	peaks    []float64
}

// NewState creates a zeroed state for numBands bands.
func NewState(numBands int) *State {
	return &State{
		smoothed: make([]float64, numBands),
		peaks:    make([]float64, numBands),
	}
}

// Update folds one analysis result into the state.
func (s *State) Update(values []float64) {
	for i := range s.smoothed {
		var v float64
		if i < len(values) {
			v = values[i]
		}
		s.smoothed[i] = smoothingFactor*s.smoothed[i] + (1-smoothingFactor)*v
		if v > s.peaks[i] {
			s.peaks[i] = v
		} else {
			s.peaks[i] *= peakDecay
		}
	}
}

// Decay is applied on cycles where no analysis ran.
func (s *State) Decay() {
	for i := range s.smoothed {
		s.smoothed[i] *= idleDecay
		s.peaks[i] *= peakDecay
	}
}

// Smoothed returns the smoothed band values. The slice is owned by s.
func (s *State) Smoothed() []float64 { return s.smoothed }

// Peaks returns the peak-hold values. The slice is owned by s.
func (s *State) Peaks() []float64 { return s.peaks }
