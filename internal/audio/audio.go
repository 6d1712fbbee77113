// Package audio is the boundary to the sound hardware: blocking capture and
// playback streams of 16-bit signed little-endian PCM.
package audio

import (
	"errors"
	"fmt"
	"time"
)

// ErrDevice wraps every failure to open, read or write a stream.
var ErrDevice = errors.New("audio device error")

// BytesPerSample is fixed: all streams carry 16-bit samples.
const BytesPerSample = 2

// Format describes a stream. ChunkSize is in frames per read.
type Format struct {
	SampleRate int
	Channels   int
	ChunkSize  int
}

// DefaultFormat matches the capture settings the recorder has always used.
var DefaultFormat = Format{SampleRate: 44100, Channels: 1, ChunkSize: 1024}

// ChunkBytes returns the size of one read in bytes.
func (f Format) ChunkBytes() int {
	return f.ChunkSize * f.Channels * BytesPerSample
}

// Duration returns how long n bytes of PCM in this format play for.
func (f Format) Duration(n int) time.Duration {
	perSec := f.SampleRate * f.Channels * BytesPerSample
	if perSec == 0 {
		return 0
	}
	return time.Duration(n) * time.Second / time.Duration(perSec)
}

// Stream is an open capture or playback stream. Read and Write block.
type Stream interface {
	Read() ([]byte, error)
	Write(pcm []byte) error
	Close() error
}

// Device opens streams.
type Device interface {
	OpenCapture(f Format) (Stream, error)
	OpenPlayback(f Format) (Stream, error)
}

// DeviceInfo describes one sound device.
type DeviceInfo struct {
	Name           string
	HostAPI        string
	InputChannels  int
	OutputChannels int
	SampleRate     float64
	DefaultInput   bool
	DefaultOutput  bool
}

func (d DeviceInfo) String() string {
	return fmt.Sprintf("%s (%s) in=%d out=%d %.0fHz", d.Name, d.HostAPI, d.InputChannels, d.OutputChannels, d.SampleRate)
}

// Hardware is a Device that can also enumerate the sound devices it sees.
type Hardware interface {
	Device
	Devices() ([]DeviceInfo, error)
}

// DeviceError wraps a driver failure during op as ErrDevice.
func DeviceError(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrDevice, op, err)
}

// SamplesToBytes encodes samples as little-endian PCM.
func SamplesToBytes(dst []byte, samples []int16) []byte {
	for _, s := range samples {
		dst = append(dst, byte(uint16(s)), byte(uint16(s)>>8))
	}
	return dst
}

// BytesToSamples decodes little-endian PCM into dst, zero-filling any tail
// of dst not covered by pcm. It returns the number of bytes consumed.
func BytesToSamples(dst []int16, pcm []byte) int {
	n := min(len(dst), len(pcm)/BytesPerSample)
	for i := 0; i < n; i++ {
		dst[i] = int16(uint16(pcm[2*i]) | uint16(pcm[2*i+1])<<8)
	}
	clear(dst[n:])
	return n * BytesPerSample
}
