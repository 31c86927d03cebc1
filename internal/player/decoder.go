package player

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-audio/wav"
	"github.com/hajimehoshi/go-mp3"
	"github.com/jfreymuth/oggvorbis"
	"github.com/mewkiz/flac"
)

// Source is a stream of interleaved float32 samples in [-1, 1].
type Source interface {
	// ReadSamples fills dst with interleaved samples and returns how many
	// were written. It returns io.EOF once the stream is exhausted.
	ReadSamples(dst []float32) (int, error)
	SampleRate() int
	ChannelCount() int
}

// Track is a decoded file: a Source that owns an open file handle.
type Track interface {
	Source
	io.Closer
	// Frames returns the total number of sample frames, or 0 if unknown.
	Frames() int64
}

// Duration returns the playing time of t.
func Duration(t Track) time.Duration {
	if t.SampleRate() <= 0 {
		return 0
	}
	return time.Duration(t.Frames()) * time.Second / time.Duration(t.SampleRate())
}

// Open detects the format by file extension and returns a decoded track.
func Open(path string) (Track, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	t, err := newDecoder(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	return t, nil
}

func newDecoder(f *os.File) (Track, error) {
	ext := strings.ToLower(filepath.Ext(f.Name()))
	switch ext {
	case ".mp3":
		return newMP3Decoder(f)
	case ".wav":
		return newWAVDecoder(f)
	case ".flac":
		return newFLACDecoder(f)
	case ".ogg":
		return newOGGDecoder(f)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}
}

// pending holds decoded samples not yet handed to the caller.
type pending struct {
	buf []float32
}

func (p *pending) drain(dst []float32) int {
	n := copy(dst, p.buf)
	p.buf = p.buf[n:]
	return n
}

// --- MP3 decoder ---

type mp3Decoder struct {
	file *os.File
	dec  *mp3.Decoder
	raw  []byte
}

func newMP3Decoder(f *os.File) (*mp3Decoder, error) {
	dec, err := mp3.NewDecoder(f)
	if err != nil {
		return nil, fmt.Errorf("decoding MP3: %w", err)
	}
	return &mp3Decoder{file: f, dec: dec}, nil
}

// go-mp3 always produces 16-bit little endian stereo.
func (d *mp3Decoder) ReadSamples(dst []float32) (int, error) {
	frames := len(dst) / 2
	if frames == 0 {
		return 0, nil
	}
	size := frames * 4
	if cap(d.raw) < size {
		d.raw = make([]byte, size)
	}
	n, err := io.ReadFull(d.dec, d.raw[:size])
	samples := n / 2
	for i := range samples {
		dst[i] = float32(int16(binary.LittleEndian.Uint16(d.raw[i*2:]))) / 32768
	}
	if err == io.ErrUnexpectedEOF {
		err = io.EOF
	}
	if samples > 0 && err == io.EOF {
		err = nil
	}
	return samples, err
}

func (d *mp3Decoder) SampleRate() int   { return d.dec.SampleRate() }
func (d *mp3Decoder) ChannelCount() int { return 2 }
func (d *mp3Decoder) Frames() int64     { return d.dec.Length() / 4 }
func (d *mp3Decoder) Close() error      { return d.file.Close() }

// --- WAV decoder ---

type wavDecoder struct {
	file        *os.File
	sampleRate  int
	channels    int
	bitDepth    int
	float       bool
	totalFrames int64
	readFrames  int64
	raw         []byte
}

// wavFormatFloat is the WAVE_FORMAT_IEEE_FLOAT format tag.
const wavFormatFloat = 3

func newWAVDecoder(f *os.File) (*wavDecoder, error) {
	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("invalid WAV file")
	}

	// FwdToPCM positions the reader at the start of PCM data
	if err := dec.FwdToPCM(); err != nil {
		return nil, fmt.Errorf("reading WAV PCM data: %w", err)
	}

	channels := int(dec.NumChans)
	bitDepth := int(dec.BitDepth)
	if channels < 1 || bitDepth%8 != 0 || bitDepth < 8 || bitDepth > 32 {
		return nil, fmt.Errorf("unsupported WAV layout: %d channels, %d bits", channels, bitDepth)
	}
	frameSize := int64(channels * bitDepth / 8)

	return &wavDecoder{
		file:        f,
		sampleRate:  int(dec.SampleRate),
		channels:    channels,
		bitDepth:    bitDepth,
		float:       dec.WavAudioFormat == wavFormatFloat && bitDepth == 32,
		totalFrames: dec.PCMLen() / frameSize,
	}, nil
}

func (d *wavDecoder) ReadSamples(dst []float32) (int, error) {
	bytesPerSample := d.bitDepth / 8
	remaining := d.totalFrames - d.readFrames
	if remaining <= 0 {
		return 0, io.EOF
	}
	frames := int(min(int64(len(dst)/d.channels), remaining))
	if frames == 0 {
		return 0, nil
	}
	size := frames * d.channels * bytesPerSample
	if cap(d.raw) < size {
		d.raw = make([]byte, size)
	}
	n, err := io.ReadFull(d.file, d.raw[:size])
	// Truncate to whole frames
	samples := n / bytesPerSample / d.channels * d.channels
	for i := range samples {
		dst[i] = d.decodeSample(d.raw[i*bytesPerSample:])
	}
	d.readFrames += int64(samples / d.channels)
	if err == io.ErrUnexpectedEOF {
		err = io.EOF
	}
	if samples > 0 && err == io.EOF {
		err = nil
	}
	return samples, err
}

func (d *wavDecoder) decodeSample(b []byte) float32 {
	switch d.bitDepth {
	case 8:
		// 8-bit WAV is unsigned
		return float32(int(b[0])-128) / 128
	case 16:
		return float32(int16(binary.LittleEndian.Uint16(b))) / 32768
	case 24:
		s := int32(b[0]) | int32(b[1])<<8 | int32(b[2])<<16
		if s&0x800000 != 0 {
			s |= ^0xFFFFFF // sign extend
		}
		return float32(s) / 8388608
	default:
		bits := binary.LittleEndian.Uint32(b)
		if d.float {
			return math.Float32frombits(bits)
		}
		return float32(float64(int32(bits)) / 2147483648)
	}
}

func (d *wavDecoder) SampleRate() int   { return d.sampleRate }
func (d *wavDecoder) ChannelCount() int { return d.channels }
func (d *wavDecoder) Frames() int64     { return d.totalFrames }
func (d *wavDecoder) Close() error      { return d.file.Close() }

// --- FLAC decoder ---

type flacDecoder struct {
	stream *flac.Stream
	pending
	sampleRate int
	channels   int
	bps        int
	frames     int64
}

func newFLACDecoder(f *os.File) (*flacDecoder, error) {
	stream, err := flac.NewSeek(f)
	if err != nil {
		return nil, fmt.Errorf("decoding FLAC: %w", err)
	}

	info := stream.Info
	return &flacDecoder{
		stream:     stream,
		sampleRate: int(info.SampleRate),
		channels:   int(info.NChannels),
		bps:        int(info.BitsPerSample),
		frames:     int64(info.NSamples),
	}, nil
}

func (d *flacDecoder) ReadSamples(dst []float32) (int, error) {
	// Drain buffered data first
	if len(d.buf) > 0 {
		return d.drain(dst), nil
	}

	frame, err := d.stream.ParseNext()
	if err != nil {
		return 0, err
	}

	scale := float32(int64(1) << (d.bps - 1))
	nSamples := int(frame.Subframes[0].NSamples)
	out := make([]float32, nSamples*d.channels)
	for i := 0; i < nSamples; i++ {
		for ch := 0; ch < d.channels; ch++ {
			out[i*d.channels+ch] = float32(frame.Subframes[ch].Samples[i]) / scale
		}
	}
	d.buf = out
	return d.drain(dst), nil
}

func (d *flacDecoder) SampleRate() int   { return d.sampleRate }
func (d *flacDecoder) ChannelCount() int { return d.channels }
func (d *flacDecoder) Frames() int64     { return d.frames }
func (d *flacDecoder) Close() error      { return d.stream.Close() }

// --- OGG Vorbis decoder ---

type oggDecoder struct {
	file   *os.File
	reader *oggvorbis.Reader
}

func newOGGDecoder(f *os.File) (*oggDecoder, error) {
	reader, err := oggvorbis.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("decoding OGG: %w", err)
	}
	return &oggDecoder{file: f, reader: reader}, nil
}

func (d *oggDecoder) ReadSamples(dst []float32) (int, error) {
	n, err := d.reader.Read(dst)
	if n > 0 && err == io.EOF {
		err = nil
	}
	return n, err
}

func (d *oggDecoder) SampleRate() int   { return d.reader.SampleRate() }
func (d *oggDecoder) ChannelCount() int { return d.reader.Channels() }
func (d *oggDecoder) Frames() int64     { return d.reader.Length() }
func (d *oggDecoder) Close() error      { return d.file.Close() }
