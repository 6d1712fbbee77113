package clips

import "slices"

// List is the ordered store of clips and their labels. The two slices are
// kept the same length after every mutation.
type List struct {
	clips  []Clip
	labels []Label
}

// NewList returns an empty list.
func NewList() *List {
	return &List{}
}

// Len returns the number of recordings.
func (l *List) Len() int { return len(l.clips) }

// Clip returns the clip at index i.
func (l *List) Clip(i int) (Clip, error) {
	if i < 0 || i >= len(l.clips) {
		return Clip{}, indexError(i, len(l.clips))
	}
	return l.clips[i], nil
}

// Label returns the label at index i.
func (l *List) Label(i int) (Label, error) {
	if i < 0 || i >= len(l.labels) {
		return Label{}, indexError(i, len(l.labels))
	}
	return l.labels[i], nil
}

// Clips returns the clips in list order. The slice is a copy.
func (l *List) Clips() []Clip {
	return slices.Clone(l.clips)
}

// Insert places clip according to mode relative to the current selection and
// returns the selection that should follow.
//
// Append lands after the selection (an unset selection counts as 0, and the
// position is clamped to the end so the first recording lands at 0). Prepend
// lands at the selection, shifting the rest right. ReRecord replaces the
// selected entry. Any other mode appends at the end.
func (l *List) Insert(clip Clip, label Label, mode Mode, sel Selection) (Selection, error) {
	idx, set := sel.Index()
	if set && (idx < 0 || idx >= len(l.clips)) {
		return sel, indexError(idx, len(l.clips))
	}

	var target int
	switch mode {
	case ModeAppend:
		target = min(idx+1, len(l.clips))
		if !set {
			target = min(1, len(l.clips))
		}
	case ModePrepend:
		target = idx
	case ModeReRecord:
		if !set {
			return sel, ErrReRecordNoSelection
		}
		l.clips[idx] = clip
		l.labels[idx] = label
		l.check()
		return At(idx), nil
	default:
		target = len(l.clips)
	}

	l.clips = slices.Insert(l.clips, target, clip)
	l.labels = slices.Insert(l.labels, target, label)
	l.check()
	return At(target), nil
}

// Delete removes the selected entry. Removing index 0 leaves nothing
// selected; otherwise the predecessor becomes selected.
func (l *List) Delete(sel Selection) (Selection, error) {
	idx, set := sel.Index()
	if !set {
		return sel, ErrNothingSelected
	}
	if idx < 0 || idx >= len(l.clips) {
		return sel, indexError(idx, len(l.clips))
	}

	l.clips = slices.Delete(l.clips, idx, idx+1)
	l.labels = slices.Delete(l.labels, idx, idx+1)
	l.check()

	if idx == 0 {
		return Unset(), nil
	}
	return At(idx - 1), nil
}

// Restore replaces the whole list, e.g. when loading a saved project.
func (l *List) Restore(clips []Clip, labels []Label) {
	l.clips = slices.Clone(clips)
	l.labels = slices.Clone(labels)
	l.check()
}

func (l *List) check() {
	if len(l.clips) != len(l.labels) {
		panic(&InvariantError{Clips: len(l.clips), Labels: len(l.labels)})
	}
}
