package clips

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Entry is one row of the list as the UI renders it.
type Entry struct {
	Index     int
	ID        string
	Role      Role
	Pair      int
	Caption   string
	Bytes     int
	CreatedAt time.Time
	Selected  bool
}

// View is a point-in-time copy of the editor state. Views are rebuilt after
// every change so no caller holds on to a stale index.
type View struct {
	Entries   []Entry
	Mode      Mode
	Selection Selection
}

// Editor owns the recording list, its cursor and the current insertion
// mode. It is safe for concurrent use: captures are delivered from the
// recording worker while the UI reads views.
type Editor struct {
	mu     sync.Mutex
	list   *List
	cursor *Cursor
	mode   Mode

	now   func() time.Time
	newID func() string
}

// NewEditor returns an empty editor in append mode.
func NewEditor() *Editor {
	list := NewList()
	return &Editor{
		list:   list,
		cursor: NewCursor(list),
		mode:   ModeAppend,
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

// Record stores a freshly captured clip using the editor's mode and
// selection. It is the standard delivery path for recording sessions.
func (e *Editor) Record(clip Clip) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	label := Label{ID: e.newID(), CreatedAt: e.now()}
	sel, err := e.list.Insert(clip, label, e.mode, e.cursor.Selection())
	if err != nil {
		return err
	}
	e.cursor.set(sel)
	return nil
}

// CanRecord reports whether Record would accept a clip in the current mode
// and selection, so a capture that would be rejected is never started.
func (e *Editor) CanRecord() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, set := e.cursor.Selection().Index(); e.mode == ModeReRecord && !set {
		return ErrReRecordNoSelection
	}
	return nil
}

// Delete removes the selected recording.
func (e *Editor) Delete() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	sel, err := e.list.Delete(e.cursor.Selection())
	if err != nil {
		return err
	}
	e.cursor.set(sel)
	return nil
}

// Select highlights index i.
func (e *Editor) Select(i int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cursor.Select(i)
}

func (e *Editor) StepForward() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cursor.StepForward()
}

func (e *Editor) StepBackward() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cursor.StepBackward()
}

func (e *Editor) NextPair() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cursor.NextPair()
}

func (e *Editor) PrevPair() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cursor.PrevPair()
}

// Mode returns the current insertion mode.
func (e *Editor) Mode() Mode {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.mode
}

// SetMode changes the insertion mode.
func (e *Editor) SetMode(m Mode) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.mode = m
}

// CycleMode advances to the next insertion mode and returns it.
func (e *Editor) CycleMode() Mode {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.mode = e.mode.Next()
	return e.mode
}

// Selected returns the highlighted clip and its index.
func (e *Editor) Selected() (Clip, int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	i, ok := e.cursor.Selection().Index()
	if !ok {
		return Clip{}, 0, ErrNothingSelected
	}
	c, err := e.list.Clip(i)
	return c, i, err
}

// Len returns the number of recordings.
func (e *Editor) Len() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.list.Len()
}

// Clips returns the clips in list order for export.
func (e *Editor) Clips() []Clip {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.list.Clips()
}

// Snapshot builds a view of the current state.
func (e *Editor) Snapshot() View {
	e.mu.Lock()
	defer e.mu.Unlock()

	sel := e.cursor.Selection()
	selIdx, selSet := sel.Index()
	v := View{
		Entries:   make([]Entry, 0, e.list.Len()),
		Mode:      e.mode,
		Selection: sel,
	}
	for i, c := range e.list.clips {
		l := e.list.labels[i]
		v.Entries = append(v.Entries, Entry{
			Index:     i,
			ID:        l.ID,
			Role:      RoleAt(i),
			Pair:      PairAt(i),
			Caption:   Caption(i, l),
			Bytes:     c.Len(),
			CreatedAt: l.CreatedAt,
			Selected:  selSet && selIdx == i,
		})
	}
	return v
}

// Restore replaces the editor state with a saved project. An out of range
// selection is dropped.
func (e *Editor) Restore(clips []Clip, labels []Label, mode Mode, sel Selection) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.list.Restore(clips, labels)
	e.mode = mode
	e.cursor.set(Unset())
	if i, ok := sel.Index(); ok {
		_ = e.cursor.Select(i)
	}
}

// Contents returns the clips, labels, mode and selection under one lock so
// they can be saved together.
func (e *Editor) Contents() ([]Clip, []Label, Mode, Selection) {
	e.mu.Lock()
	defer e.mu.Unlock()

	labels := make([]Label, e.list.Len())
	copy(labels, e.list.labels)
	return e.list.Clips(), labels, e.mode, e.cursor.Selection()
}
