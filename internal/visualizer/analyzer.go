package visualizer

import (
	"math"

	"gonum.org/v1/gonum/dsp/fourier"
)

const (
	// NumBands is the number of perceptual bands produced per cycle.
	NumBands = 64
	// MaxFFTSize caps the transform length.
	MaxFFTSize = 2048

	bandExponent   = 2.5
	emptyBandDB    = -80.0
	magnitudeFloor = 1e-10

	initialMaxDB    = -10.0
	initialMinDB    = -80.0
	maxDBFloor      = -30.0
	sensitivityKeep = 0.9
	windowDB        = 60.0
	outputExponent  = 1.2
)

// BandRange is the half-open bin range [Start, End) averaged into one band.
type BandRange struct {
	Start, End int
}

// Empty reports whether no bins are assigned to the band.
func (r BandRange) Empty() bool { return r.Start >= r.End }

// BandRanges partitions spectrumSize bins into numBands power-law spaced
// ranges. Adjacent ranges share their boundary, so the union is [0, spectrumSize).
func BandRanges(numBands, spectrumSize int) []BandRange {
	ranges := make([]BandRange, numBands)
	for i := range ranges {
		ranges[i] = BandRange{
			Start: bandEdge(i, numBands, spectrumSize),
			End:   bandEdge(i+1, numBands, spectrumSize),
		}
	}
	return ranges
}

func bandEdge(i, numBands, spectrumSize int) int {
	f := math.Pow(float64(i)/float64(numBands), bandExponent) * float64(spectrumSize)
	edge := int(math.Min(f, float64(spectrumSize)))
	return max(edge, 0)
}

// FFTSize returns the transform length used for n samples: the smallest
// power of two >= n, capped at MaxFFTSize.
func FFTSize(n int) int {
	size := 1
	for size < n && size < MaxFFTSize {
		size <<= 1
	}
	return size
}

// Analyzer turns sample snapshots into normalized band magnitudes. It keeps
// an auto-adjusting sensitivity window that persists for its whole lifetime.
// An Analyzer is not safe for concurrent use.
type Analyzer struct {
	numBands int
	minDB    float64
	maxDB    float64

	plans  map[int]*fourier.CmplxFFT
	ranges map[int][]BandRange
	buf    []complex128
	coeffs []complex128
	db     []float64
	bandDB []float64
}

// NewAnalyzer creates an analyzer producing numBands bands.
func NewAnalyzer(numBands int) *Analyzer {
	if numBands < 1 {
		numBands = NumBands
	}
	return &Analyzer{
		numBands: numBands,
		minDB:    initialMinDB,
		maxDB:    initialMaxDB,
		plans:    make(map[int]*fourier.CmplxFFT),
		ranges:   make(map[int][]BandRange),
		bandDB:   make([]float64, numBands),
	}
}

// Sensitivity returns the current [min, max] dB window.
func (a *Analyzer) Sensitivity() (minDB, maxDB float64) {
	return a.minDB, a.maxDB
}

// BandsDB returns the per-band dB values from the last Compute call.
func (a *Analyzer) BandsDB() []float64 {
	return a.bandDB
}

// Ranges returns the band partition used for a transform of fftSize samples.
func (a *Analyzer) Ranges(fftSize int) []BandRange {
	spectrumSize := fftSize / 2
	r, ok := a.ranges[spectrumSize]
	if !ok {
		r = BandRanges(a.numBands, spectrumSize)
		a.ranges[spectrumSize] = r
	}
	return r
}

// Compute runs one analysis cycle over samples and returns numBands values
// in [0, 1]. It updates the sensitivity window as a side effect.
func (a *Analyzer) Compute(samples []float32) []float64 {
	fftSize := FFTSize(len(samples))
	spectrumSize := fftSize / 2

	if cap(a.buf) < fftSize {
		a.buf = make([]complex128, fftSize)
	}
	buf := a.buf[:fftSize]
	for i := range buf {
		if i >= len(samples) {
			buf[i] = 0
			continue
		}
		w := 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(fftSize)))
		buf[i] = complex(float64(samples[i])*w, 0)
	}

	if cap(a.coeffs) < fftSize {
		a.coeffs = make([]complex128, fftSize)
	}
	coeffs := a.plan(fftSize).Coefficients(a.coeffs[:fftSize], buf)

	if cap(a.db) < spectrumSize {
		a.db = make([]float64, spectrumSize)
	}
	db := a.db[:spectrumSize]
	scale := 1 / float64(fftSize)
	for i := range db {
		re, im := real(coeffs[i]), imag(coeffs[i])
		mag := math.Sqrt(re*re+im*im) * scale
		db[i] = 20 * math.Log10(math.Max(mag, magnitudeFloor))
	}

	a.groupBands(db, a.Ranges(fftSize))
	return a.normalize()
}

func (a *Analyzer) plan(n int) *fourier.CmplxFFT {
	p, ok := a.plans[n]
	if !ok {
		p = fourier.NewCmplxFFT(n)
		a.plans[n] = p
	}
	return p
}

func (a *Analyzer) groupBands(db []float64, ranges []BandRange) {
	for i, r := range ranges {
		if r.Empty() || r.End > len(db) {
			a.bandDB[i] = emptyBandDB
			continue
		}
		sum := 0.0
		for _, v := range db[r.Start:r.End] {
			sum += v
		}
		a.bandDB[i] = sum / float64(r.End-r.Start)
	}
}

func (a *Analyzer) normalize() []float64 {
	frameMax := math.Inf(-1)
	for _, v := range a.bandDB {
		frameMax = math.Max(frameMax, v)
	}

	target := math.Max(frameMax, maxDBFloor)
	a.maxDB = sensitivityKeep*a.maxDB + (1-sensitivityKeep)*target
	a.minDB = a.maxDB - windowDB
	span := a.maxDB - a.minDB

	out := make([]float64, len(a.bandDB))
	for i, v := range a.bandDB {
		t := clamp01((v - a.minDB) / span)
		out[i] = math.Pow(t, outputExponent)
	}
	return out
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
