// Package session runs one recording cycle at a time: a countdown of beeps,
// then blocking capture until the user stops, then delivery of the captured
// clip to the recording list.
package session

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/jwulff/vocabtrack/internal/audio"
	"github.com/jwulff/vocabtrack/internal/clips"
)

// State is the phase of the recording cycle.
type State int32

const (
	Idle State = iota
	CountingDown
	Capturing
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case CountingDown:
		return "counting down"
	case Capturing:
		return "capturing"
	default:
		return "unknown"
	}
}

var (
	// ErrBusy is returned by Start while a cycle is still running.
	ErrBusy = errors.New("a recording is already in progress")
	// ErrCanceled ends a cycle that was stopped before any audio was captured.
	ErrCanceled = errors.New("recording canceled")
)

// Countdown configures the beeps played before capture starts.
type Countdown struct {
	Steps    int
	Beep     time.Duration // length of each countdown beep
	Interval time.Duration // start-to-start spacing of countdown beeps
	Freq     float64
	GoBeep   time.Duration
	GoFreq   float64
}

// DefaultCountdown is three short beeps then a longer, higher one.
var DefaultCountdown = Countdown{
	Steps:    3,
	Beep:     100 * time.Millisecond,
	Interval: 150 * time.Millisecond,
	Freq:     440,
	GoBeep:   500 * time.Millisecond,
	GoFreq:   880,
}

// DeliverFunc receives each captured clip. It is called from the recording
// worker and is the only path by which a session changes the list.
type DeliverFunc func(clips.Clip) error

// Beeper plays countdown tones.
type Beeper interface {
	Beep(d time.Duration, freq float64) error
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Session) { s.log = l }
}

// WithCountdown overrides the countdown.
func WithCountdown(c Countdown) Option {
	return func(s *Session) { s.countdown = c }
}

// WithBeeper sets the tone player used for the countdown.
func WithBeeper(b Beeper) Option {
	return func(s *Session) { s.beeper = b }
}

// Session coordinates capture on a background worker. The zero value is not
// usable; call New.
type Session struct {
	dev       audio.Device
	format    audio.Format
	deliver   DeliverFunc
	beeper    Beeper
	countdown Countdown
	log       *zap.Logger

	mu     sync.Mutex
	state  atomic.Int32
	active atomic.Bool
	stop   chan struct{}
}

// New returns an idle session capturing from dev in format f and handing
// clips to deliver.
func New(dev audio.Device, f audio.Format, deliver DeliverFunc, opts ...Option) *Session {
	s := &Session{
		dev:       dev,
		format:    f,
		deliver:   deliver,
		countdown: DefaultCountdown,
		log:       zap.NewNop(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// State returns the current phase.
func (s *Session) State() State { return State(s.state.Load()) }

// Active reports whether the record toggle is on.
func (s *Session) Active() bool { return s.active.Load() }

// Start opens the capture stream and begins a cycle. The returned channel
// receives exactly one value when the cycle ends: nil after a clip was
// delivered, otherwise the reason nothing was.
func (s *Session) Start() (<-chan error, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.State() != Idle {
		return nil, ErrBusy
	}

	stream, err := s.dev.OpenCapture(s.format)
	if err != nil {
		s.log.Warn("open capture failed", zap.Error(err))
		return nil, fmt.Errorf("open capture: %w", err)
	}

	s.stop = make(chan struct{})
	s.active.Store(true)
	s.state.Store(int32(CountingDown))

	done := make(chan error, 1)
	go s.run(stream, s.stop, done)
	return done, nil
}

// Stop asks the running cycle to finish. Capture ends after the read in
// progress returns, so stop latency is at most one chunk.
func (s *Session) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.active.Load() {
		return
	}
	s.active.Store(false)
	close(s.stop)
}

// Toggle starts a cycle when idle and stops the running one otherwise. The
// channel is non-nil only when a cycle was started.
func (s *Session) Toggle() (<-chan error, error) {
	if s.Active() {
		s.Stop()
		return nil, nil
	}
	return s.Start()
}

func (s *Session) run(stream audio.Stream, stop <-chan struct{}, done chan<- error) {
	err := s.cycle(stream, stop)

	s.mu.Lock()
	if s.active.Load() {
		s.active.Store(false)
		close(s.stop)
	}
	s.state.Store(int32(Idle))
	s.mu.Unlock()

	done <- err
}

func (s *Session) cycle(stream audio.Stream, stop <-chan struct{}) error {
	if !s.count(stop) {
		stream.Close()
		s.log.Info("recording canceled during countdown")
		return ErrCanceled
	}

	s.state.Store(int32(Capturing))
	s.log.Info("recording started",
		zap.Int("sample_rate", s.format.SampleRate),
		zap.Int("channels", s.format.Channels),
		zap.Int("chunk_size", s.format.ChunkSize),
	)

	var chunks [][]byte
	for stopped := false; !stopped; {
		select {
		case <-stop:
			stopped = true
			continue
		default:
		}
		chunk, err := stream.Read()
		if err != nil {
			stream.Close()
			s.log.Error("capture failed", zap.Error(err), zap.Int("chunks", len(chunks)))
			return fmt.Errorf("capture: %w", err)
		}
		chunks = append(chunks, chunk)
	}

	if err := stream.Close(); err != nil {
		s.log.Warn("close capture stream", zap.Error(err))
	}
	if len(chunks) == 0 {
		return ErrCanceled
	}

	clip := clips.Clip{Chunks: chunks}
	s.log.Info("recording finished",
		zap.Int("bytes", clip.Len()),
		zap.Duration("duration", s.format.Duration(clip.Len())),
	)
	if s.deliver == nil {
		return nil
	}
	if err := s.deliver(clip); err != nil {
		return fmt.Errorf("deliver clip: %w", err)
	}
	return nil
}

// count plays the countdown and reports whether it ran to completion.
func (s *Session) count(stop <-chan struct{}) bool {
	c := s.countdown
	for i := 0; i < c.Steps; i++ {
		if stopped(stop) {
			return false
		}
		s.beep(c.Beep, c.Freq)
		if !wait(stop, c.Interval-c.Beep) {
			return false
		}
	}
	if stopped(stop) {
		return false
	}
	s.beep(c.GoBeep, c.GoFreq)
	return !stopped(stop)
}

func (s *Session) beep(d time.Duration, freq float64) {
	if s.beeper == nil || d <= 0 {
		return
	}
	if err := s.beeper.Beep(d, freq); err != nil {
		s.log.Warn("countdown beep failed", zap.Error(err))
	}
}

func stopped(stop <-chan struct{}) bool {
	select {
	case <-stop:
		return true
	default:
		return false
	}
}

func wait(stop <-chan struct{}, d time.Duration) bool {
	if d <= 0 {
		return !stopped(stop)
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-stop:
		return false
	case <-t.C:
		return true
	}
}
