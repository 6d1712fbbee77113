// Package clips holds the recording list: captured clips, their display
// labels, the selection cursor and the editing modes that decide where a new
// recording lands.
package clips

import (
	"bytes"
	"fmt"
	"strconv"
	"time"
)

// Clip is one captured recording as the raw PCM chunks read from the device.
type Clip struct {
	Chunks [][]byte
}

// NewClip wraps a single PCM buffer as a clip.
func NewClip(pcm []byte) Clip {
	return Clip{Chunks: [][]byte{pcm}}
}

// Bytes joins the clip's chunks into one buffer.
func (c Clip) Bytes() []byte {
	return bytes.Join(c.Chunks, nil)
}

// Len returns the clip length in bytes.
func (c Clip) Len() int {
	n := 0
	for _, chunk := range c.Chunks {
		n += len(chunk)
	}
	return n
}

// Label is the display metadata stored alongside a clip. The role is not
// stored; it always comes from the clip's position.
type Label struct {
	ID        string
	CreatedAt time.Time
}

// Role is the part a clip plays in the drill, derived from its index.
type Role int

const (
	RoleTitle Role = iota
	RoleTerm
	RoleDefinition
)

func (r Role) String() string {
	switch r {
	case RoleTitle:
		return "Title"
	case RoleTerm:
		return "Term"
	case RoleDefinition:
		return "Def."
	default:
		return "Unknown"
	}
}

// RoleAt returns the role of the clip at index i.
func RoleAt(i int) Role {
	if i == 0 {
		return RoleTitle
	}
	if (i-1)%2 == 0 {
		return RoleTerm
	}
	return RoleDefinition
}

// PairAt returns the 1-based term/definition pair number for index i, or 0
// for the title.
func PairAt(i int) int {
	if i <= 0 {
		return 0
	}
	return (i + 1) / 2
}

// Caption renders the list label for the clip at index i,
// e.g. "Title (09:41:00)" or "Term 2 (09:42:13)".
func Caption(i int, l Label) string {
	ts := "(" + l.CreatedAt.Format("15:04:05") + ")"
	role := RoleAt(i)
	if role == RoleTitle {
		return role.String() + " " + ts
	}
	return fmt.Sprintf("%s %d %s", role, PairAt(i), ts)
}

// Mode decides where a new recording is placed.
type Mode int

const (
	ModeAppend Mode = iota
	ModePrepend
	ModeReRecord
)

func (m Mode) String() string {
	switch m {
	case ModeAppend:
		return "append"
	case ModePrepend:
		return "prepend"
	case ModeReRecord:
		return "rerecord"
	default:
		return "mode(" + strconv.Itoa(int(m)) + ")"
	}
}

// Next cycles Append → Prepend → ReRecord → Append.
func (m Mode) Next() Mode {
	switch m {
	case ModeAppend:
		return ModePrepend
	case ModePrepend:
		return ModeReRecord
	default:
		return ModeAppend
	}
}

// ParseMode accepts the names produced by Mode.String.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "append":
		return ModeAppend, nil
	case "prepend":
		return ModePrepend, nil
	case "rerecord", "re-record":
		return ModeReRecord, nil
	}
	return 0, fmt.Errorf("unknown mode %q", s)
}

// Selection is an optional index into the list.
type Selection struct {
	index int
	set   bool
}

// Unset returns the empty selection.
func Unset() Selection { return Selection{} }

// At returns a selection pointing at index i.
func At(i int) Selection { return Selection{index: i, set: true} }

// Index returns the selected index and whether one is set.
func (s Selection) Index() (int, bool) { return s.index, s.set }

// IsSet reports whether an index is selected.
func (s Selection) IsSet() bool { return s.set }

func (s Selection) String() string {
	if !s.set {
		return "none"
	}
	return strconv.Itoa(s.index)
}
