package player

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// endRecheck is how long to wait before checking again whether a finished
// stream has drained out of the device buffer.
const endRecheck = 50 * time.Millisecond

// SampleBuffer receives the mono capture of whatever is playing.
// *visualizer.RingBuffer implements it.
type SampleBuffer interface {
	SampleWriter
	Clear()
}

// State is the playback state derived from the controller's flags.
type State int

const (
	Idle State = iota
	Playing
	Paused
)

func (s State) String() string {
	switch s {
	case Playing:
		return "playing"
	case Paused:
		return "paused"
	default:
		return "idle"
	}
}

type cmdKind int

const (
	cmdPlay cmdKind = iota
	cmdPause
	cmdResume
	cmdStop
	cmdEnded
	cmdSync
	cmdClose
)

type command struct {
	kind  cmdKind
	path  string
	gen   uint64
	reply chan struct{}
}

// mailbox is an unbounded FIFO of commands. send never blocks.
type mailbox struct {
	mu     sync.Mutex
	queue  []command
	signal chan struct{}
}

func newMailbox() *mailbox {
	return &mailbox{signal: make(chan struct{}, 1)}
}

func (m *mailbox) send(c command) {
	m.mu.Lock()
	m.queue = append(m.queue, c)
	m.mu.Unlock()
	select {
	case m.signal <- struct{}{}:
	default:
	}
}

func (m *mailbox) take() []command {
	m.mu.Lock()
	defer m.mu.Unlock()
	q := m.queue
	m.queue = nil
	return q
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the controller's logger.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Controller) { c.log = l }
}

// WithOpener replaces the function used to open tracks.
func WithOpener(open func(path string) (Track, error)) Option {
	return func(c *Controller) { c.open = open }
}

// WithDeviceOpener replaces the function used to acquire the output device.
func WithDeviceOpener(open func() (Device, error)) Option {
	return func(c *Controller) { c.openDevice = open }
}

// NowPlaying identifies the controller's session. Gen increases with every
// session started and is kept after the session ends; Path is empty when idle.
type NowPlaying struct {
	Gen  uint64
	Path string
}

// Controller serializes playback commands onto a single goroutine that owns
// the output device. All methods return immediately.
type Controller struct {
	mail       *mailbox
	buf        SampleBuffer
	log        zerolog.Logger
	open       func(path string) (Track, error)
	openDevice func() (Device, error)

	playing    atomic.Bool
	paused     atomic.Bool
	nowPlaying atomic.Pointer[NowPlaying]
	queued     atomic.Int64 // Play commands not yet handled

	closeOnce sync.Once
	exited    chan struct{}

	// Owned by the run goroutine.
	device  Device
	session session
	gen     uint64
}

// New starts a controller that plays through the device described by cfg and
// copies everything it plays into buf.
func New(buf SampleBuffer, cfg DeviceConfig, opts ...Option) *Controller {
	c := &Controller{
		mail:       newMailbox(),
		buf:        buf,
		log:        zerolog.Nop(),
		open:       Open,
		openDevice: func() (Device, error) { return OpenDevice(cfg) },
		exited:     make(chan struct{}),
		session:    sessionEmpty{},
	}
	for _, opt := range opts {
		opt(c)
	}
	c.nowPlaying.Store(&NowPlaying{})
	go c.run()
	return c
}

// Play replaces whatever is playing with the file at path. If the file
// cannot be opened nothing changes.
func (c *Controller) Play(path string) {
	c.queued.Add(1)
	c.mail.send(command{kind: cmdPlay, path: path})
}

// Pause pauses output. It does nothing when no track is loaded.
func (c *Controller) Pause() { c.mail.send(command{kind: cmdPause}) }

// Resume continues paused output. It does nothing when no track is loaded.
func (c *Controller) Resume() { c.mail.send(command{kind: cmdResume}) }

// Stop ends the current session.
func (c *Controller) Stop() { c.mail.send(command{kind: cmdStop}) }

// IsPlaying reports whether a track is loaded, paused or not.
func (c *Controller) IsPlaying() bool { return c.playing.Load() }

// IsPaused reports whether the loaded track is paused.
func (c *Controller) IsPaused() bool { return c.paused.Load() }

// Busy reports whether a Play call has not been applied yet.
func (c *Controller) Busy() bool { return c.queued.Load() > 0 }

// NowPlaying returns the current session. Read it once Busy reports false to
// learn whether the last Play took effect.
func (c *Controller) NowPlaying() NowPlaying { return *c.nowPlaying.Load() }

// State returns the current playback state.
func (c *Controller) State() State {
	switch {
	case !c.playing.Load():
		return Idle
	case c.paused.Load():
		return Paused
	default:
		return Playing
	}
}

// Close tears down any session and stops the controller goroutine. Commands
// sent after Close are ignored.
func (c *Controller) Close() {
	c.closeOnce.Do(func() {
		c.mail.send(command{kind: cmdClose})
	})
	<-c.exited
}

// flush blocks until every command sent before it has been handled.
func (c *Controller) flush() {
	reply := make(chan struct{})
	c.mail.send(command{kind: cmdSync, reply: reply})
	select {
	case <-reply:
	case <-c.exited:
	}
}

func (c *Controller) run() {
	defer close(c.exited)

	dev, err := c.openDevice()
	if err != nil {
		c.log.Warn().Err(err).Msg("audio output unavailable, playback disabled")
	}
	c.device = dev

	for range c.mail.signal {
		for _, cmd := range c.mail.take() {
			if cmd.kind == cmdClose {
				c.stop()
				return
			}
			c.handle(cmd)
		}
	}
}

func (c *Controller) handle(cmd command) {
	switch cmd.kind {
	case cmdSync:
		close(cmd.reply)
	case cmdPlay:
		c.play(cmd.path)
		c.queued.Add(-1)
	case cmdPause:
		if s, ok := c.session.(*sessionActive); ok && !s.paused {
			s.sink.Pause()
			s.paused = true
			c.paused.Store(true)
		}
	case cmdResume:
		if s, ok := c.session.(*sessionActive); ok && s.paused {
			s.sink.Play()
			s.paused = false
			c.paused.Store(false)
		}
	case cmdStop:
		c.stop()
	case cmdEnded:
		c.ended(cmd.gen)
	}
}

func (c *Controller) play(path string) {
	if c.device == nil {
		return
	}
	log := c.log.With().Str("path", path).Logger()

	track, err := c.open(path)
	if err != nil {
		log.Warn().Err(err).Msg("open failed")
		return
	}
	src, err := conform(track, c.device.SampleRate(), c.device.ChannelCount())
	if err != nil {
		track.Close()
		log.Warn().Err(err).Msg("cannot convert track to device format")
		return
	}

	// The flags stay up across the swap so observers never see a gap.
	c.teardown()
	c.buf.Clear()

	c.gen++
	gen := c.gen
	stream := newPCMStream(NewTap(src, c.buf), track, func() {
		c.mail.send(command{kind: cmdEnded, gen: gen})
	})
	sink, err := c.device.NewSink(stream)
	if err != nil {
		stream.Close()
		log.Error().Err(err).Msg("creating output stream")
		c.stop()
		return
	}
	sink.Play()

	c.session = &sessionActive{
		gen:    gen,
		path:   path,
		stream: stream,
		sink:   sink,
	}
	c.playing.Store(true)
	c.paused.Store(false)
	c.nowPlaying.Store(&NowPlaying{Gen: gen, Path: path})
	log.Debug().Uint64("session", gen).Msg("session started")
}

func (c *Controller) stop() {
	c.teardown()
	c.playing.Store(false)
	c.paused.Store(false)
	c.nowPlaying.Store(&NowPlaying{Gen: c.gen})
}

// teardown releases the active session without touching the flags.
func (c *Controller) teardown() {
	if s, ok := c.session.(*sessionActive); ok {
		if err := s.teardown(); err != nil {
			c.log.Warn().Err(err).Str("path", s.path).Msg("teardown")
		}
		c.log.Debug().Uint64("session", s.gen).Msg("session stopped")
	}
	c.session = sessionEmpty{}
}

// ended handles the end of a stream. The session is kept until the device
// has played out its buffer.
func (c *Controller) ended(gen uint64) {
	s, ok := c.session.(*sessionActive)
	if !ok || s.gen != gen {
		return
	}
	if !s.drained() {
		time.AfterFunc(endRecheck, func() {
			c.mail.send(command{kind: cmdEnded, gen: gen})
		})
		return
	}
	c.stop()
}
