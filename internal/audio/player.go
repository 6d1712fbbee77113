package audio

import (
	"math"
	"time"
)

const toneVolume = 0.5

// Tone returns a mono sine beep of the given length and pitch.
func Tone(d time.Duration, freq float64, sampleRate int) []byte {
	n := int(d.Seconds() * float64(sampleRate))
	samples := make([]int16, n)
	for i := range samples {
		v := toneVolume * math.Sin(2*math.Pi*float64(i)*freq/float64(sampleRate))
		samples[i] = int16(v * math.MaxInt16)
	}
	return SamplesToBytes(make([]byte, 0, n*BytesPerSample), samples)
}

// Player plays PCM buffers on a device. Each call opens and closes its own
// stream and blocks until the audio has been written.
type Player struct {
	dev    Device
	format Format
}

// NewPlayer returns a player for clips recorded in format f.
func NewPlayer(dev Device, f Format) *Player {
	return &Player{dev: dev, format: f}
}

// Play writes pcm to a fresh playback stream.
func (p *Player) Play(pcm []byte) error {
	return play(p.dev, p.format, pcm)
}

// Beep plays a mono tone.
func (p *Player) Beep(d time.Duration, freq float64) error {
	f := p.format
	f.Channels = 1
	return play(p.dev, f, Tone(d, freq, f.SampleRate))
}

func play(dev Device, f Format, pcm []byte) error {
	s, err := dev.OpenPlayback(f)
	if err != nil {
		return err
	}
	if err := s.Write(pcm); err != nil {
		s.Close()
		return err
	}
	return s.Close()
}
