// Package portaudio is the audio.Device backed by the PortAudio library.
// Importing it requires cgo and the PortAudio headers.
package portaudio

import (
	"errors"
	"sync"

	pa "github.com/gordonklaus/portaudio"
	"go.uber.org/zap"

	"github.com/jwulff/vocabtrack/internal/audio"
)

// Device opens streams on the default input and output devices.
type Device struct {
	log *zap.Logger

	mu    sync.Mutex
	users int
}

// New returns a Device. The library is initialized on the first open and
// terminated when the last stream closes.
func New(log *zap.Logger) *Device {
	if log == nil {
		log = zap.NewNop()
	}
	return &Device{log: log}
}

func (d *Device) acquire() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.users == 0 {
		if err := pa.Initialize(); err != nil {
			return audio.DeviceError("initialize portaudio", err)
		}
	}
	d.users++
	return nil
}

func (d *Device) release() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.users--
	if d.users == 0 {
		pa.Terminate()
	}
}

// OpenCapture opens the default input device. Capture starts on the first
// Read so nothing is buffered while the countdown plays.
func (d *Device) OpenCapture(f audio.Format) (audio.Stream, error) {
	return d.open(f, f.Channels, 0, "open input stream")
}

// OpenPlayback opens the default output device.
func (d *Device) OpenPlayback(f audio.Format) (audio.Stream, error) {
	return d.open(f, 0, f.Channels, "open output stream")
}

func (d *Device) open(f audio.Format, in, out int, op string) (audio.Stream, error) {
	if err := d.acquire(); err != nil {
		return nil, err
	}
	buf := make([]int16, f.ChunkSize*f.Channels)
	s, err := pa.OpenDefaultStream(in, out, float64(f.SampleRate), f.ChunkSize, buf)
	if err != nil {
		d.release()
		return nil, audio.DeviceError(op, err)
	}
	return &stream{owner: d, s: s, buf: buf, chunkBytes: f.ChunkBytes()}, nil
}

type stream struct {
	owner      *Device
	s          *pa.Stream
	buf        []int16
	chunkBytes int
	started    bool
	closed     bool
	overflows  int
}

func (p *stream) start() error {
	if p.started {
		return nil
	}
	if err := p.s.Start(); err != nil {
		return audio.DeviceError("start stream", err)
	}
	p.started = true
	return nil
}

// Read blocks until one chunk has been captured. An input overflow drops
// audio the driver could not buffer but still fills the chunk, so capture
// goes on. Any other failure ends it.
func (p *stream) Read() ([]byte, error) {
	if err := p.start(); err != nil {
		return nil, err
	}
	if err := p.s.Read(); err != nil {
		if !recoverable(err) {
			return nil, audio.DeviceError("read", err)
		}
		p.overflows++
		p.owner.log.Warn("input overflowed", zap.Error(err), zap.Int("overflows", p.overflows))
	}
	return audio.SamplesToBytes(make([]byte, 0, p.chunkBytes), p.buf), nil
}

func recoverable(err error) bool {
	return errors.Is(err, pa.InputOverflowed)
}

// Write blocks until pcm has been handed to the device. A trailing partial
// chunk is padded with silence. Output underflow only means the device ran
// dry for a moment.
func (p *stream) Write(pcm []byte) error {
	if err := p.start(); err != nil {
		return err
	}
	for len(pcm) > 0 {
		n := audio.BytesToSamples(p.buf, pcm)
		pcm = pcm[n:]
		if err := p.s.Write(); err != nil && !errors.Is(err, pa.OutputUnderflowed) {
			return audio.DeviceError("write", err)
		}
		if n == 0 {
			break
		}
	}
	return nil
}

func (p *stream) Close() error {
	if p.closed {
		return nil
	}
	p.closed = true
	defer p.owner.release()
	if p.started {
		p.s.Stop()
	}
	if err := p.s.Close(); err != nil {
		return audio.DeviceError("close", err)
	}
	return nil
}

// Devices lists every device with at least one input or output channel.
func (d *Device) Devices() ([]audio.DeviceInfo, error) {
	if err := d.acquire(); err != nil {
		return nil, err
	}
	defer d.release()

	devs, err := pa.Devices()
	if err != nil {
		return nil, audio.DeviceError("list devices", err)
	}
	defIn, _ := pa.DefaultInputDevice()
	defOut, _ := pa.DefaultOutputDevice()

	var out []audio.DeviceInfo
	for _, dev := range devs {
		if dev.MaxInputChannels == 0 && dev.MaxOutputChannels == 0 {
			continue
		}
		info := audio.DeviceInfo{
			Name:           dev.Name,
			InputChannels:  dev.MaxInputChannels,
			OutputChannels: dev.MaxOutputChannels,
			SampleRate:     dev.DefaultSampleRate,
			DefaultInput:   defIn != nil && dev.Name == defIn.Name,
			DefaultOutput:  defOut != nil && dev.Name == defOut.Name,
		}
		if dev.HostApi != nil {
			info.HostAPI = dev.HostApi.Name
		}
		out = append(out, info)
	}
	return out, nil
}
