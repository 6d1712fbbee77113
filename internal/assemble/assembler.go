// Package assemble stitches the recording list into one drill track: the
// title, then each term followed by a pause long enough to answer, then its
// definition followed by a short break.
package assemble

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/jwulff/vocabtrack/internal/clips"
)

// ErrNothingToExport is returned when the list is empty.
var ErrNothingToExport = fmt.Errorf("%w: nothing to export, please make some recordings", clips.ErrUser)

// ErrBadName is returned for export names containing a path separator.
var ErrBadName = fmt.Errorf("%w: export name cannot contain / or \\", clips.ErrUser)

// DefaultShortBreak is the silence written after the title and after every
// definition, in bytes.
const DefaultShortBreak = 44100 * 4

// Config holds the output format. ShortBreak is a byte count.
type Config struct {
	SampleRate int
	Channels   int
	ShortBreak int
}

// Segment is one piece of the output: either a clip or a run of silence.
type Segment struct {
	Index   int // list index of the clip, or of the clip the silence follows
	Role    clips.Role
	Clip    []byte
	Silence int
}

// Len returns the segment's size in bytes.
func (s Segment) Len() int {
	if s.Silence > 0 {
		return s.Silence
	}
	return len(s.Clip)
}

// Assembler lays out and writes drill tracks.
type Assembler struct {
	cfg Config
}

// New returns an Assembler for cfg.
func New(cfg Config) (*Assembler, error) {
	if cfg.SampleRate <= 0 {
		return nil, errors.New("sample rate must be positive")
	}
	if cfg.Channels != 1 && cfg.Channels != 2 {
		return nil, fmt.Errorf("channels must be 1 or 2, got %d", cfg.Channels)
	}
	if cfg.ShortBreak < 0 {
		return nil, errors.New("short break must not be negative")
	}
	return &Assembler{cfg: cfg}, nil
}

// Config returns the output format.
func (a *Assembler) Config() Config { return a.cfg }

// TermDelay returns the pause written after a term of termLen bytes: the
// clip length floored to a multiple of the sample rate, but never shorter
// than the short break.
//
// The formula divides bytes by samples per second and ignores sample width
// and channel count, so the pause is only roughly one second per step. It is
// kept as-is because existing decks were timed with it.
func (a *Assembler) TermDelay(termLen int) int {
	return max((termLen/a.cfg.SampleRate)*a.cfg.SampleRate, a.cfg.ShortBreak)
}

// Plan returns the output layout for the clips in list order.
func (a *Assembler) Plan(cs []clips.Clip) ([]Segment, error) {
	if len(cs) == 0 {
		return nil, ErrNothingToExport
	}

	segs := make([]Segment, 0, 2*len(cs))
	for i, c := range cs {
		pcm := c.Bytes()
		role := clips.RoleAt(i)
		segs = append(segs, Segment{Index: i, Role: role, Clip: pcm})

		gap := a.cfg.ShortBreak
		if role == clips.RoleTerm {
			gap = a.TermDelay(len(pcm))
		}
		if gap > 0 {
			segs = append(segs, Segment{Index: i, Role: role, Silence: gap})
		}
	}
	return segs, nil
}

// Length returns the number of PCM bytes the track will contain.
func (a *Assembler) Length(cs []clips.Clip) (int, error) {
	segs, err := a.Plan(cs)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, s := range segs {
		n += s.Len()
	}
	return n, nil
}

const silenceBlock = 64 * 1024

// WriteTo streams the raw PCM track to w and returns the bytes written.
func (a *Assembler) WriteTo(w io.Writer, cs []clips.Clip) (int64, error) {
	segs, err := a.Plan(cs)
	if err != nil {
		return 0, err
	}

	var total int64
	zeros := make([]byte, silenceBlock)
	for _, s := range segs {
		if s.Silence == 0 {
			n, err := w.Write(s.Clip)
			total += int64(n)
			if err != nil {
				return total, fmt.Errorf("write clip %d: %w", s.Index, err)
			}
			continue
		}
		for left := s.Silence; left > 0; {
			n, err := w.Write(zeros[:min(left, silenceBlock)])
			total += int64(n)
			left -= n
			if err != nil {
				return total, fmt.Errorf("write silence after clip %d: %w", s.Index, err)
			}
		}
	}
	return total, nil
}

// FileName turns a user-supplied name into the output file name. Spaces
// become hyphens; an empty name falls back to the epoch seconds of now.
func FileName(name string, now time.Time) string {
	if strings.TrimSpace(name) == "" {
		name = strconv.FormatInt(now.Unix(), 10)
	}
	return strings.ReplaceAll(name, " ", "-") + ".wav"
}
