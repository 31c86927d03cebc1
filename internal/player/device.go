package player

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/ebitengine/oto/v3"
)

var (
	// ErrDeviceUnavailable is returned when no audio output can be opened.
	ErrDeviceUnavailable = errors.New("audio device unavailable")
	// ErrUnsupportedFormat is returned for files with no matching decoder.
	ErrUnsupportedFormat = errors.New("unsupported format")
)

// Sink is one playing stream on a Device. *oto.Player implements it.
type Sink interface {
	Play()
	Pause()
	// IsPlaying is false once the sink is paused or has drained its reader.
	IsPlaying() bool
	Close() error
}

// Device is an audio output that pulls float32 little endian PCM from readers.
type Device interface {
	NewSink(r io.Reader) (Sink, error)
	SampleRate() int
	ChannelCount() int
}

// DeviceConfig describes the output format.
type DeviceConfig struct {
	SampleRate   int
	ChannelCount int
	BufferSize   time.Duration
}

type otoDevice struct {
	ctx *oto.Context
	cfg DeviceConfig
}

// OpenDevice opens the system audio output. oto allows only one context per
// process, so this is called once by the controller's goroutine.
func OpenDevice(cfg DeviceConfig) (Device, error) {
	op := &oto.NewContextOptions{
		SampleRate:   cfg.SampleRate,
		ChannelCount: cfg.ChannelCount,
		Format:       oto.FormatFloat32LE,
		BufferSize:   cfg.BufferSize,
	}
	ctx, ready, err := oto.NewContext(op)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDeviceUnavailable, err)
	}
	<-ready
	return &otoDevice{ctx: ctx, cfg: cfg}, nil
}

func (d *otoDevice) NewSink(r io.Reader) (Sink, error) {
	if err := d.ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDeviceUnavailable, err)
	}
	return d.ctx.NewPlayer(r), nil
}

func (d *otoDevice) SampleRate() int   { return d.cfg.SampleRate }
func (d *otoDevice) ChannelCount() int { return d.cfg.ChannelCount }
