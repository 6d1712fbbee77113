package assemble

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/jwulff/vocabtrack/internal/clips"
)

const (
	bitDepth     = 16
	wavFormatPCM = 1
)

// Export writes the track for cs to a 16-bit PCM WAV file at path. No file is
// created when cs is empty.
func (a *Assembler) Export(path string, cs []clips.Clip) (err error) {
	if len(cs) == 0 {
		return ErrNothingToExport
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("close %s: %w", path, cerr)
		}
	}()

	enc := wav.NewEncoder(f, a.cfg.SampleRate, bitDepth, a.cfg.Channels, wavFormatPCM)
	pw := &pcmWriter{
		enc:    enc,
		format: &audio.Format{NumChannels: a.cfg.Channels, SampleRate: a.cfg.SampleRate},
	}

	if _, err := a.WriteTo(pw, cs); err != nil {
		enc.Close()
		return err
	}
	if err := pw.flush(); err != nil {
		enc.Close()
		return err
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("finalize wav: %w", err)
	}
	return nil
}

// ExportNamed writes the track into dir under the file name derived from
// name and returns the path written. Names that would leave dir are
// rejected.
func (a *Assembler) ExportNamed(dir, name string, now time.Time, cs []clips.Clip) (string, error) {
	if strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("%w: %q", ErrBadName, name)
	}
	path := filepath.Join(dir, FileName(name, now))
	if err := a.Export(path, cs); err != nil {
		return "", err
	}
	return path, nil
}

// pcmWriter feeds little-endian 16-bit PCM bytes to a wav encoder. Bytes
// that do not fill a whole frame are carried into the next write.
type pcmWriter struct {
	enc    *wav.Encoder
	format *audio.Format
	carry  []byte
	buf    audio.IntBuffer
}

func (p *pcmWriter) Write(b []byte) (int, error) {
	n := len(b)
	if len(p.carry) > 0 {
		b = append(p.carry, b...)
		p.carry = nil
	}
	if rem := len(b) % p.frameSize(); rem > 0 {
		p.carry = append([]byte(nil), b[len(b)-rem:]...)
		b = b[:len(b)-rem]
	}
	if len(b) == 0 {
		return n, nil
	}

	samples := len(b) / 2
	if cap(p.buf.Data) < samples {
		p.buf.Data = make([]int, samples)
	}
	p.buf.Data = p.buf.Data[:samples]
	for i := 0; i < samples; i++ {
		p.buf.Data[i] = int(int16(uint16(b[2*i]) | uint16(b[2*i+1])<<8))
	}
	p.buf.Format = p.format
	p.buf.SourceBitDepth = bitDepth

	if err := p.enc.Write(&p.buf); err != nil {
		return 0, fmt.Errorf("encode pcm: %w", err)
	}
	return n, nil
}

func (p *pcmWriter) frameSize() int {
	return bitDepth / 8 * p.format.NumChannels
}

// flush pads a dangling partial frame with zeros.
func (p *pcmWriter) flush() error {
	if len(p.carry) == 0 {
		return nil
	}
	_, err := p.Write(make([]byte, p.frameSize()-len(p.carry)))
	return err
}
