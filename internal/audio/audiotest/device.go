// Package audiotest provides an in-memory audio device for tests.
package audiotest

import (
	"bytes"
	"errors"
	"sync"
	"time"

	"github.com/jwulff/vocabtrack/internal/audio"
)

// Device is a scripted audio.Device. Capture streams return Chunk
// repeatedly (after ReadDelay); playback streams record what was written.
type Device struct {
	mu sync.Mutex

	Chunk     []byte
	ReadDelay time.Duration

	OpenErr   error // returned by OpenCapture
	ReadErr   error // returned by Read once FailAfter chunks were read
	FailAfter int

	Listed []audio.DeviceInfo // returned by Devices

	Reads    int
	Played   [][]byte
	Captures int
	Closed   int
}

// New returns a device that captures chunkBytes bytes of 0x01 per read.
func New(chunkBytes int) *Device {
	return &Device{Chunk: bytes.Repeat([]byte{1}, chunkBytes)}
}

func (d *Device) OpenCapture(audio.Format) (audio.Stream, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.OpenErr != nil {
		return nil, errors.Join(audio.ErrDevice, d.OpenErr)
	}
	d.Captures++
	return &stream{dev: d}, nil
}

func (d *Device) OpenPlayback(audio.Format) (audio.Stream, error) {
	return &stream{dev: d, playback: true}, nil
}

// Devices returns Listed.
func (d *Device) Devices() ([]audio.DeviceInfo, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.Listed, nil
}

// PlayedCount returns how many playback streams wrote audio.
func (d *Device) PlayedCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.Played)
}

// ReadCount returns the number of successful reads.
func (d *Device) ReadCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.Reads
}

// ClosedCount returns how many streams were closed.
func (d *Device) ClosedCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.Closed
}

type stream struct {
	dev      *Device
	playback bool
	buf      bytes.Buffer
}

func (s *stream) Read() ([]byte, error) {
	if s.dev.ReadDelay > 0 {
		time.Sleep(s.dev.ReadDelay)
	}
	s.dev.mu.Lock()
	defer s.dev.mu.Unlock()
	if s.dev.ReadErr != nil && s.dev.Reads >= s.dev.FailAfter {
		return nil, errors.Join(audio.ErrDevice, s.dev.ReadErr)
	}
	s.dev.Reads++
	return bytes.Clone(s.dev.Chunk), nil
}

func (s *stream) Write(pcm []byte) error {
	s.buf.Write(pcm)
	return nil
}

func (s *stream) Close() error {
	s.dev.mu.Lock()
	defer s.dev.mu.Unlock()
	s.dev.Closed++
	if s.playback && s.buf.Len() > 0 {
		s.dev.Played = append(s.dev.Played, bytes.Clone(s.buf.Bytes()))
	}
	return nil
}
